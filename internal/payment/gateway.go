package payment

import "context"

// CardGateway talks to the card processor.
type CardGateway interface {
	CreatePaymentIntent(ctx context.Context, amountCents int64, currency string, metadata map[string]string) (*CardIntent, error)
	ParseWebhook(payload []byte, sigHeader string) (*CardEvent, error)
}

// WalletGateway talks to the redirect wallet provider.
type WalletGateway interface {
	CreatePayment(ctx context.Context, req WalletPaymentRequest) (*WalletPayment, error)
	ExecutePayment(ctx context.Context, paymentID, payerID string) (*WalletExecution, error)
}
