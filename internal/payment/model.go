package payment

import (
	"encoding/json"
	"time"

	"github.com/shopspring/decimal"
)

const (
	ProviderCard   = "STRIPE"
	ProviderWallet = "PAYPAL"

	EventIntentSucceeded = "payment_intent.succeeded"

	WalletStateCompleted = "COMPLETED"
)

// Payment is one attempt registered with a provider for an order.
type Payment struct {
	ID         int64
	OrderID    string
	Provider   string
	ExternalID string
	Amount     decimal.Decimal
	Currency   string
	Status     string
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// CardIntent is the provider's view of a card payment intent.
type CardIntent struct {
	ID           string
	ClientSecret string
	Status       string
	Amount       int64
	Currency     string
	Metadata     map[string]string
	ReceiptEmail string
}

// CardEvent is a verified webhook delivery.
type CardEvent struct {
	ID     string
	Type   string
	Intent CardIntent
	Raw    json.RawMessage
}

type WalletPaymentRequest struct {
	OrderID   string
	Total     decimal.Decimal
	Currency  string
	ReturnURL string
	CancelURL string
}

type WalletPayment struct {
	ID          string
	ApprovalURL string
}

type WalletExecution struct {
	ID         string
	State      string
	PayerEmail string
	UpdateTime string
	Raw        json.RawMessage
}

type CardIntentInput struct {
	OrderID string `json:"orderId"`
}

type CardIntentResult struct {
	ClientSecret    string `json:"clientSecret"`
	PaymentIntentID string `json:"paymentIntentId"`
}

type WalletPaymentInput struct {
	OrderID string `json:"orderId"`
}

type WalletPaymentResult struct {
	PaymentID   string `json:"paymentId"`
	ApprovalURL string `json:"approvalUrl"`
}

type ExecuteWalletInput struct {
	OrderID   string `json:"orderId"`
	PaymentID string `json:"paymentId"`
	PayerID   string `json:"payerId"`
}
