package cart

import (
	"time"

	"github.com/shopspring/decimal"
)

type Cart struct {
	ID        string          `json:"id"`
	UserID    uint            `json:"userId"`
	Items     []CartItem      `json:"items"`
	Total     decimal.Decimal `json:"total"`
	CreatedAt time.Time       `json:"createdAt"`
	UpdatedAt time.Time       `json:"updatedAt"`
}

// CartItem keeps the price captured when the line was added.
type CartItem struct {
	ID            string          `json:"id"`
	ProductID     string          `json:"productId"`
	Quantity      int             `json:"quantity"`
	Size          string          `json:"size"`
	Color         string          `json:"color"`
	Price         decimal.Decimal `json:"price"`
	Product       *ProductSummary `json:"product"`
	ProductExists bool            `json:"productExists"`
	IsAvailable   bool            `json:"isAvailable"`
}

// ProductSummary is the current catalog view of a line's product.
type ProductSummary struct {
	ID     string          `json:"id"`
	Name   string          `json:"name"`
	Price  decimal.Decimal `json:"price"`
	Images []string        `json:"images"`
	Stock  int             `json:"stock"`
}

type AddToCartInput struct {
	ProductID string `json:"productId"`
	Quantity  int    `json:"quantity"`
	Size      string `json:"size"`
	Color     string `json:"color"`
}

// computeTotal sums lines whose product still exists, in stock or not.
func (c *Cart) computeTotal() {
	total := decimal.Zero
	for i := range c.Items {
		item := &c.Items[i]
		item.ProductExists = item.Product != nil
		item.IsAvailable = item.Product != nil && item.Product.Stock > 0
		if !item.ProductExists {
			continue
		}
		total = total.Add(item.Price.Mul(decimal.NewFromInt(int64(item.Quantity))))
	}
	c.Total = total
}
