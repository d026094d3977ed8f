package payment

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"storefront-be/internal/logger"

	"github.com/stripe/stripe-go/v82"
	"github.com/stripe/stripe-go/v82/paymentintent"
	"github.com/stripe/stripe-go/v82/webhook"
	"go.uber.org/zap"
)

type stripeGateway struct {
	intents       paymentintent.Client
	webhookSecret string
}

// ----------------- Constructor -----------------

func NewStripeGateway(secretKey, webhookSecret string) CardGateway {
	backend := stripe.GetBackendWithConfig(stripe.APIBackend, &stripe.BackendConfig{
		HTTPClient:        &http.Client{Timeout: 15 * time.Second},
		MaxNetworkRetries: stripe.Int64(2),
		LeveledLogger:     &stripe.LeveledLogger{Level: stripe.LevelError},
	})
	return newStripeGateway(secretKey, webhookSecret, backend)
}

func newStripeGateway(secretKey, webhookSecret string, backend stripe.Backend) *stripeGateway {
	if secretKey == "" {
		logger.L().Warn("Stripe secret key is empty")
	}
	if webhookSecret == "" {
		logger.L().Warn("Stripe webhook secret is empty, all webhooks will be rejected")
	}

	return &stripeGateway{
		intents:       paymentintent.Client{B: backend, Key: secretKey},
		webhookSecret: webhookSecret,
	}
}

// ----------------- CreatePaymentIntent -----------------

func (s *stripeGateway) CreatePaymentIntent(
	ctx context.Context,
	amountCents int64,
	currency string,
	metadata map[string]string,
) (*CardIntent, error) {

	log := logger.FromCtx(ctx).With(
		zap.String("provider", ProviderCard),
		zap.Int64("amount", amountCents),
		zap.String("currency", currency),
		zap.String("order_id", metadata["orderId"]),
	)

	params := &stripe.PaymentIntentParams{
		Amount:   stripe.Int64(amountCents),
		Currency: stripe.String(currency),
		AutomaticPaymentMethods: &stripe.PaymentIntentAutomaticPaymentMethodsParams{
			Enabled: stripe.Bool(true),
		},
	}
	params.Context = ctx
	for k, v := range metadata {
		params.AddMetadata(k, v)
	}

	log.Info("Sending payment intent request to Stripe")

	pi, err := s.intents.New(params)
	if err != nil {
		log.Error("Stripe payment intent failed", zap.Error(err))
		return nil, fmt.Errorf("stripe error: %s", stripeErrorMessage(err))
	}

	log.Info("Stripe payment intent created",
		zap.String("intent_id", pi.ID),
		zap.String("status", string(pi.Status)),
	)

	intent := toCardIntent(pi)
	return &intent, nil
}

// ----------------- ParseWebhook -----------------

// ParseWebhook verifies the Stripe-Signature header against the raw body and
// decodes the event. Any verification failure returns ErrInvalidSignature.
func (s *stripeGateway) ParseWebhook(payload []byte, sigHeader string) (*CardEvent, error) {
	// an empty secret would make every signature computable
	if s.webhookSecret == "" {
		logger.L().Warn("Stripe webhook rejected, no secret configured")
		return nil, ErrInvalidSignature
	}

	ev, err := webhook.ConstructEventWithOptions(payload, sigHeader, s.webhookSecret, webhook.ConstructEventOptions{
		IgnoreAPIVersionMismatch: true,
	})
	if err != nil {
		logger.L().Warn("Stripe webhook rejected", zap.Error(err))
		return nil, ErrInvalidSignature
	}

	out := &CardEvent{
		ID:   ev.ID,
		Type: string(ev.Type),
		Raw:  json.RawMessage(payload),
	}

	if strings.HasPrefix(out.Type, "payment_intent.") && ev.Data != nil && len(ev.Data.Raw) > 0 {
		var pi stripe.PaymentIntent
		if err := json.Unmarshal(ev.Data.Raw, &pi); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidSignature, err)
		}
		out.Intent = toCardIntent(&pi)
	}

	return out, nil
}

// ----------------- Mapping -----------------

func toCardIntent(pi *stripe.PaymentIntent) CardIntent {
	return CardIntent{
		ID:           pi.ID,
		ClientSecret: pi.ClientSecret,
		Status:       string(pi.Status),
		Amount:       pi.Amount,
		Currency:     string(pi.Currency),
		Metadata:     pi.Metadata,
		ReceiptEmail: pi.ReceiptEmail,
	}
}

func stripeErrorMessage(err error) string {
	if se, ok := err.(*stripe.Error); ok && se.Msg != "" {
		return se.Msg
	}
	return err.Error()
}
