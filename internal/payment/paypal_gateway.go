package payment

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"storefront-be/internal/logger"

	"github.com/plutov/paypal/v4"
	"go.uber.org/zap"
)

type paypalGateway struct {
	client *paypal.Client

	// the client refreshes an existing token itself but never fetches the first
	mu     sync.Mutex
	authed bool
}

// ----------------- Constructor -----------------

// NewPayPalGateway targets the live API when mode is "live" and the sandbox
// otherwise. The first call fetches a token; the client refreshes it after.
func NewPayPalGateway(clientID, clientSecret, mode string) (WalletGateway, error) {
	base := paypal.APIBaseSandBox
	if mode == "live" {
		base = paypal.APIBaseLive
	}
	gw, err := newPayPalGateway(clientID, clientSecret, base)
	if err != nil {
		return nil, err
	}
	return gw, nil
}

func newPayPalGateway(clientID, clientSecret, apiBase string) (*paypalGateway, error) {
	c, err := paypal.NewClient(clientID, clientSecret, apiBase)
	if err != nil {
		return nil, fmt.Errorf("paypal client: %w", err)
	}
	c.Client = &http.Client{Timeout: 15 * time.Second}

	return &paypalGateway{client: c}, nil
}

// ----------------- CreatePayment -----------------

func (p *paypalGateway) CreatePayment(ctx context.Context, in WalletPaymentRequest) (*WalletPayment, error) {
	log := logger.FromCtx(ctx).With(
		zap.String("provider", ProviderWallet),
		zap.String("order_id", in.OrderID),
		zap.String("amount", in.Total.StringFixed(2)),
	)

	units := []paypal.PurchaseUnitRequest{{
		ReferenceID: in.OrderID,
		CustomID:    in.OrderID,
		Description: "Order " + in.OrderID,
		Amount: &paypal.PurchaseUnitAmount{
			Currency: strings.ToUpper(in.Currency),
			Value:    in.Total.StringFixed(2),
		},
	}}
	appCtx := &paypal.ApplicationContext{
		ReturnURL: in.ReturnURL,
		CancelURL: in.CancelURL,
	}

	if err := p.authenticate(ctx); err != nil {
		log.Error("PayPal auth failed", zap.Error(err))
		return nil, err
	}

	res, err := p.client.CreateOrder(ctx, paypal.OrderIntentCapture, units, nil, appCtx)
	if err != nil {
		log.Error("PayPal create order failed", zap.Error(err))
		return nil, err
	}

	var approvalURL string
	for _, link := range res.Links {
		if link.Rel == "approve" || link.Rel == "payer-action" {
			approvalURL = link.Href
			break
		}
	}
	if approvalURL == "" {
		log.Error("PayPal response has no approval url", zap.String("payment_id", res.ID))
		return nil, fmt.Errorf("paypal error: approval url missing")
	}

	log.Info("PayPal order created",
		zap.String("payment_id", res.ID),
		zap.String("status", res.Status),
	)

	return &WalletPayment{ID: res.ID, ApprovalURL: approvalURL}, nil
}

// ----------------- ExecutePayment -----------------

// ExecutePayment captures the approved PayPal order. payerID is what PayPal
// appended to the return url; capture itself is keyed by the order alone.
func (p *paypalGateway) ExecutePayment(ctx context.Context, paymentID, payerID string) (*WalletExecution, error) {
	log := logger.FromCtx(ctx).With(
		zap.String("provider", ProviderWallet),
		zap.String("payment_id", paymentID),
		zap.String("payer_id", payerID),
	)

	if err := p.authenticate(ctx); err != nil {
		log.Error("PayPal auth failed", zap.Error(err))
		return nil, err
	}

	res, err := p.client.CaptureOrder(ctx, paymentID, paypal.CaptureOrderRequest{})
	if err != nil {
		log.Error("PayPal capture failed", zap.Error(err))
		return nil, err
	}

	raw, err := json.Marshal(res)
	if err != nil {
		return nil, err
	}

	var email string
	if res.Payer != nil {
		email = res.Payer.EmailAddress
	}

	log.Info("PayPal order captured", zap.String("status", res.Status))

	return &WalletExecution{
		ID:         res.ID,
		State:      res.Status,
		PayerEmail: email,
		Raw:        raw,
	}, nil
}

func (p *paypalGateway) authenticate(ctx context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.authed {
		return nil
	}
	if _, err := p.client.GetAccessToken(ctx); err != nil {
		return fmt.Errorf("paypal auth error: %w", err)
	}
	p.authed = true
	return nil
}
