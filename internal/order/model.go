package order

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"time"

	"github.com/shopspring/decimal"
)

type PaymentMethod string

const (
	PaymentCard           PaymentMethod = "stripe"
	PaymentWalletRedirect PaymentMethod = "paypal"
	PaymentWalletQR       PaymentMethod = "gpay"
	PaymentCOD            PaymentMethod = "cod"
)

func (m PaymentMethod) Valid() bool {
	switch m {
	case PaymentCard, PaymentWalletRedirect, PaymentWalletQR, PaymentCOD:
		return true
	}
	return false
}

type Status string

const (
	StatusPending    Status = "pending"
	StatusProcessing Status = "processing"
	StatusShipped    Status = "shipped"
	StatusDelivered  Status = "delivered"
	StatusCancelled  Status = "cancelled"
)

func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusProcessing, StatusShipped, StatusDelivered, StatusCancelled:
		return true
	}
	return false
}

type ShippingAddress struct {
	Address    string `json:"address"`
	City       string `json:"city"`
	PostalCode string `json:"postalCode"`
	Country    string `json:"country"`
}

func (a ShippingAddress) Validate() error {
	if a.Address == "" || a.City == "" || a.PostalCode == "" || a.Country == "" {
		return ErrInvalidShippingAddress
	}
	return nil
}

// Value encodes as a string; lib/pq would send []byte as bytea.
func (a ShippingAddress) Value() (driver.Value, error) {
	return marshalJSONValue(a)
}

func (a *ShippingAddress) Scan(src any) error {
	return scanJSON(src, a)
}

// PaymentResult is the provider's confirmation as stored on the order.
type PaymentResult struct {
	ID           string `json:"id"`
	Status       string `json:"status"`
	UpdateTime   string `json:"update_time"`
	EmailAddress string `json:"email_address,omitempty"`
}

func (p PaymentResult) Value() (driver.Value, error) {
	return marshalJSONValue(p)
}

func marshalJSONValue(v any) (driver.Value, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

func scanJSON(src any, dst any) error {
	switch v := src.(type) {
	case []byte:
		return json.Unmarshal(v, dst)
	case string:
		return json.Unmarshal([]byte(v), dst)
	case nil:
		return nil
	}
	return errors.New("unsupported json column type")
}

type Order struct {
	ID              string          `json:"id"`
	UserID          uint            `json:"userId"`
	Items           []OrderItem     `json:"orderItems"`
	ShippingAddress ShippingAddress `json:"shippingAddress"`
	PaymentMethod   PaymentMethod   `json:"paymentMethod"`
	ItemsPrice      decimal.Decimal `json:"itemsPrice"`
	TaxPrice        decimal.Decimal `json:"taxPrice"`
	ShippingPrice   decimal.Decimal `json:"shippingPrice"`
	TotalPrice      decimal.Decimal `json:"totalPrice"`
	IsPaid          bool            `json:"isPaid"`
	PaidAt          *time.Time      `json:"paidAt,omitempty"`
	PaymentResult   *PaymentResult  `json:"paymentResult,omitempty"`
	Status          Status          `json:"status"`
	IsDelivered     bool            `json:"isDelivered"`
	DeliveredAt     *time.Time      `json:"deliveredAt,omitempty"`
	CreatedAt       time.Time       `json:"createdAt"`
	UpdatedAt       time.Time       `json:"updatedAt"`
}

// OrderItem is a snapshot of a cart line at checkout.
type OrderItem struct {
	ID        string          `json:"id"`
	ProductID string          `json:"productId"`
	Name      string          `json:"name"`
	Quantity  int             `json:"quantity"`
	Size      string          `json:"size"`
	Color     string          `json:"color"`
	Price     decimal.Decimal `json:"price"`
	Image     string          `json:"image"`
}

// Requester identifies who is asking for an order.
type Requester struct {
	UserID  uint
	IsAdmin bool
}

type CreateOrderInput struct {
	ShippingAddress ShippingAddress `json:"shippingAddress"`
	PaymentMethod   PaymentMethod   `json:"paymentMethod"`
}
