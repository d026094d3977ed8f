package product

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

type Category string

const (
	CategoryTShirts  Category = "t-shirts"
	CategoryPants    Category = "pants"
	CategorySneakers Category = "sneakers"
)

func (c Category) Valid() bool {
	switch c {
	case CategoryTShirts, CategoryPants, CategorySneakers:
		return true
	}
	return false
}

type Product struct {
	ID          string          `json:"id"`
	SKU         string          `json:"sku"`
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Price       decimal.Decimal `json:"price"`
	Category    Category        `json:"category"`
	Images      []string        `json:"images"`
	Stock       int             `json:"stock"`
	Sizes       []string        `json:"sizes"`
	Colors      []string        `json:"colors"`
	Featured    bool            `json:"featured"`
	Rating      float64         `json:"rating"`
	NumReviews  int             `json:"numReviews"`
	ReleaseDate *time.Time      `json:"releaseDate,omitempty"`
	CreatedAt   time.Time       `json:"createdAt"`
	UpdatedAt   time.Time       `json:"updatedAt"`
}

func (p *Product) IsAvailable() bool {
	return p.Stock > 0
}

// ProductInput is the full writable shape used on create.
type ProductInput struct {
	SKU         string          `json:"sku"`
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Price       decimal.Decimal `json:"price"`
	Category    Category        `json:"category"`
	Images      []string        `json:"images"`
	Stock       int             `json:"stock"`
	Sizes       []string        `json:"sizes"`
	Colors      []string        `json:"colors"`
	Featured    bool            `json:"featured"`
	ReleaseDate *time.Time      `json:"releaseDate"`
}

// UpdateProductInput carries only the fields the caller wants to change.
type UpdateProductInput struct {
	SKU         *string          `json:"sku"`
	Name        *string          `json:"name"`
	Description *string          `json:"description"`
	Price       *decimal.Decimal `json:"price"`
	Category    *Category        `json:"category"`
	Images      []string         `json:"images"`
	Stock       *int             `json:"stock"`
	Sizes       []string         `json:"sizes"`
	Colors      []string         `json:"colors"`
	Featured    *bool            `json:"featured"`
	ReleaseDate *time.Time       `json:"releaseDate"`
}

func (in UpdateProductInput) apply(p *Product) {
	if in.SKU != nil {
		p.SKU = *in.SKU
	}
	if in.Name != nil {
		p.Name = *in.Name
	}
	if in.Description != nil {
		p.Description = *in.Description
	}
	if in.Price != nil {
		p.Price = *in.Price
	}
	if in.Category != nil {
		p.Category = *in.Category
	}
	if in.Images != nil {
		p.Images = in.Images
	}
	if in.Stock != nil {
		p.Stock = *in.Stock
	}
	if in.Sizes != nil {
		p.Sizes = in.Sizes
	}
	if in.Colors != nil {
		p.Colors = in.Colors
	}
	if in.Featured != nil {
		p.Featured = *in.Featured
	}
	if in.ReleaseDate != nil {
		p.ReleaseDate = in.ReleaseDate
	}
}

func validate(p *Product) error {
	switch {
	case p.SKU == "":
		return ErrMissingSKU
	case strings.TrimSpace(p.Name) == "":
		return ErrMissingName
	case p.Price.IsNegative():
		return ErrInvalidPrice
	case !p.Category.Valid():
		return ErrInvalidCategory
	case p.Stock < 0:
		return ErrInvalidStock
	}
	return nil
}

type ListOptions struct {
	Category Category
	Search   string
	MinPrice *decimal.Decimal
	MaxPrice *decimal.Decimal
	Page     int
	Limit    int
	Sort     string
}

type ListResult struct {
	Products []Product `json:"products"`
	Page     int       `json:"page"`
	Pages    int       `json:"pages"`
	Total    int       `json:"total"`
}

const (
	DefaultPageLimit = 12
	MaxPageLimit     = 100
	FeaturedLimit    = 8
)
