package payment

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"storefront-be/internal/logger"
	"storefront-be/internal/order"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// OrderService is the part of order.Service payments need.
type OrderService interface {
	GetOrder(ctx context.Context, req order.Requester, id string) (*order.Order, error)
	GetPayableOrder(ctx context.Context, userID uint, id string, method order.PaymentMethod) (*order.Order, error)
	MarkAsPaid(ctx context.Context, id string, result order.PaymentResult) (*order.Order, error)
}

type Service interface {
	CreateCardIntent(ctx context.Context, userID uint, orderID string) (*CardIntentResult, error)
	HandleCardWebhook(ctx context.Context, payload []byte, sigHeader string) error
	CreateWalletPayment(ctx context.Context, userID uint, orderID string) (*WalletPaymentResult, error)
	ExecuteWalletPayment(ctx context.Context, userID uint, input ExecuteWalletInput) (*ExecuteWalletResult, error)
}

type ExecuteWalletResult struct {
	Success bool            `json:"success"`
	Order   *order.Order    `json:"order"`
	Payment json.RawMessage `json:"payment"`
}

type Options struct {
	Currency    string
	FrontendURL string
}

type service struct {
	repo   Repository
	orders OrderService
	card   CardGateway
	wallet WalletGateway
	opts   Options
}

// NewService wires the payment flows. A nil gateway disables its method.
func NewService(repo Repository, orders OrderService, card CardGateway, wallet WalletGateway, opts Options) Service {
	if opts.Currency == "" {
		opts.Currency = "usd"
	}
	opts.FrontendURL = strings.TrimRight(opts.FrontendURL, "/")

	return &service{
		repo:   repo,
		orders: orders,
		card:   card,
		wallet: wallet,
		opts:   opts,
	}
}

var hundred = decimal.NewFromInt(100)

func toCents(amount decimal.Decimal) int64 {
	return amount.Mul(hundred).Round(0).IntPart()
}

// ----------------- Card -----------------

func (s *service) CreateCardIntent(ctx context.Context, userID uint, orderID string) (*CardIntentResult, error) {
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "service"),
		zap.String("method", "CreateCardIntent"),
		zap.String("order_id", orderID),
	)

	if orderID == "" {
		return nil, ErrMissingOrderID
	}
	if s.card == nil {
		return nil, ErrProviderDisabled
	}

	o, err := s.orders.GetPayableOrder(ctx, userID, orderID, order.PaymentCard)
	if err != nil {
		return nil, err
	}

	intent, err := s.card.CreatePaymentIntent(ctx, toCents(o.TotalPrice), s.opts.Currency, map[string]string{
		"orderId": o.ID,
		"userId":  strconv.FormatUint(uint64(userID), 10),
	})
	if err != nil {
		log.Error("card intent failed", zap.Error(err))
		return nil, fmt.Errorf("%w: %v", ErrProviderFailed, err)
	}

	s.record(ctx, &Payment{
		OrderID:    o.ID,
		Provider:   ProviderCard,
		ExternalID: intent.ID,
		Amount:     o.TotalPrice,
		Currency:   s.opts.Currency,
		Status:     intent.Status,
	})

	return &CardIntentResult{
		ClientSecret:    intent.ClientSecret,
		PaymentIntentID: intent.ID,
	}, nil
}

// HandleCardWebhook verifies and applies one card processor delivery. A nil
// return tells the provider to stop redelivering.
func (s *service) HandleCardWebhook(ctx context.Context, payload []byte, sigHeader string) error {
	if s.card == nil {
		return ErrProviderDisabled
	}

	ev, err := s.card.ParseWebhook(payload, sigHeader)
	if err != nil {
		return err
	}

	orderID := ev.Intent.Metadata["orderId"]
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "service"),
		zap.String("method", "HandleCardWebhook"),
		zap.String("event_id", ev.ID),
		zap.String("event_type", ev.Type),
		zap.String("order_id", orderID),
	)

	eventID := ev.ID
	if eventID == "" {
		eventID = ev.Type + ":" + ev.Intent.ID
	}

	webhookID, duplicate, err := s.repo.SavePaymentWebhook(ctx, ProviderCard, eventID, ev.Type, ev.Intent.ID, ev.Raw, true)
	if err != nil {
		log.Error("failed to log webhook", zap.Error(err))
		return err
	}
	if duplicate {
		log.Info("webhook already processed")
		return nil
	}

	if ev.Type != EventIntentSucceeded || orderID == "" {
		log.Debug("webhook ignored")
		s.markProcessed(ctx, webhookID)
		return nil
	}

	if err := s.settleCardIntent(ctx, orderID, ev.Intent); err != nil {
		log.Warn("webhook processing failed", zap.Error(err))
		if markErr := s.repo.MarkWebhookFailed(ctx, webhookID, err.Error()); markErr != nil {
			log.Error("failed to mark webhook failed", zap.Error(markErr))
		}
		return err
	}

	s.markProcessed(ctx, webhookID)
	return nil
}

func (s *service) settleCardIntent(ctx context.Context, orderID string, intent CardIntent) error {
	log := logger.FromCtx(ctx).With(
		zap.String("order_id", orderID),
		zap.String("intent_id", intent.ID),
	)

	o, err := s.orders.GetOrder(ctx, order.Requester{IsAdmin: true}, orderID)
	if err != nil {
		return err
	}
	if o.PaymentMethod != order.PaymentCard {
		return order.ErrPaymentMethodMismatch
	}
	if o.IsPaid {
		log.Info("order already paid, webhook acknowledged")
		return nil
	}
	if want := toCents(o.TotalPrice); intent.Amount != 0 && intent.Amount != want {
		log.Warn("card amount differs from order total",
			zap.Int64("paid_cents", intent.Amount),
			zap.Int64("order_cents", want),
		)
	}

	_, err = s.orders.MarkAsPaid(ctx, orderID, order.PaymentResult{
		ID:           intent.ID,
		Status:       intent.Status,
		EmailAddress: intent.ReceiptEmail,
	})
	if errors.Is(err, order.ErrOrderAlreadyPaid) {
		log.Info("order paid concurrently, webhook acknowledged")
		return nil
	}
	if err != nil {
		return err
	}

	s.updateStatus(ctx, ProviderCard, intent.ID, intent.Status)
	return nil
}

// ----------------- Wallet -----------------

func (s *service) CreateWalletPayment(ctx context.Context, userID uint, orderID string) (*WalletPaymentResult, error) {
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "service"),
		zap.String("method", "CreateWalletPayment"),
		zap.String("order_id", orderID),
	)

	if orderID == "" {
		return nil, ErrMissingOrderID
	}
	if s.wallet == nil {
		return nil, ErrProviderDisabled
	}

	o, err := s.orders.GetPayableOrder(ctx, userID, orderID, order.PaymentWalletRedirect)
	if err != nil {
		return nil, err
	}

	p, err := s.wallet.CreatePayment(ctx, WalletPaymentRequest{
		OrderID:   o.ID,
		Total:     o.TotalPrice,
		Currency:  s.opts.Currency,
		ReturnURL: fmt.Sprintf("%s/checkout/success?orderId=%s", s.opts.FrontendURL, o.ID),
		CancelURL: s.opts.FrontendURL + "/checkout",
	})
	if err != nil {
		log.Error("wallet payment failed", zap.Error(err))
		return nil, fmt.Errorf("%w: %v", ErrProviderFailed, err)
	}

	// execute only accepts the payment recorded here, so this write must land
	if err := s.repo.SavePayment(ctx, &Payment{
		OrderID:    o.ID,
		Provider:   ProviderWallet,
		ExternalID: p.ID,
		Amount:     o.TotalPrice,
		Currency:   s.opts.Currency,
		Status:     "created",
	}); err != nil {
		log.Error("wallet payment not recorded", zap.String("payment_id", p.ID), zap.Error(err))
		return nil, err
	}

	return &WalletPaymentResult{
		PaymentID:   p.ID,
		ApprovalURL: p.ApprovalURL,
	}, nil
}

func (s *service) ExecuteWalletPayment(ctx context.Context, userID uint, input ExecuteWalletInput) (*ExecuteWalletResult, error) {
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "service"),
		zap.String("method", "ExecuteWalletPayment"),
		zap.String("order_id", input.OrderID),
		zap.String("payment_id", input.PaymentID),
	)

	if input.OrderID == "" {
		return nil, ErrMissingOrderID
	}
	if input.PaymentID == "" || input.PayerID == "" {
		return nil, ErrMissingPayment
	}
	if s.wallet == nil {
		return nil, ErrProviderDisabled
	}

	if _, err := s.orders.GetPayableOrder(ctx, userID, input.OrderID, order.PaymentWalletRedirect); err != nil {
		return nil, err
	}

	latest, err := s.repo.GetLatestByOrder(ctx, input.OrderID, ProviderWallet)
	if err != nil {
		return nil, err
	}
	if latest == nil || latest.ExternalID != input.PaymentID {
		log.Warn("wallet payment does not match order")
		return nil, ErrPaymentNotForOrder
	}

	exec, err := s.wallet.ExecutePayment(ctx, input.PaymentID, input.PayerID)
	if err != nil {
		log.Error("wallet execute failed", zap.Error(err))
		return nil, fmt.Errorf("%w: %v", ErrProviderFailed, err)
	}
	if !strings.EqualFold(exec.State, WalletStateCompleted) {
		log.Warn("wallet payment not completed", zap.String("state", exec.State))
		s.updateStatus(ctx, ProviderWallet, input.PaymentID, exec.State)
		return nil, ErrPaymentIncomplete
	}

	paid, err := s.orders.MarkAsPaid(ctx, input.OrderID, order.PaymentResult{
		ID:           exec.ID,
		Status:       exec.State,
		EmailAddress: exec.PayerEmail,
	})
	if err != nil {
		return nil, err
	}

	s.updateStatus(ctx, ProviderWallet, exec.ID, exec.State)

	return &ExecuteWalletResult{
		Success: true,
		Order:   paid,
		Payment: exec.Raw,
	}, nil
}

// ----------------- Ledger helpers -----------------

// The ledger is bookkeeping beside the order; its failures never fail a payment.

func (s *service) record(ctx context.Context, p *Payment) {
	if err := s.repo.SavePayment(ctx, p); err != nil {
		logger.FromCtx(ctx).Warn("payment attempt not recorded",
			zap.String("order_id", p.OrderID),
			zap.Error(err),
		)
	}
}

func (s *service) updateStatus(ctx context.Context, provider, externalID, status string) {
	if err := s.repo.UpdatePaymentStatus(ctx, provider, externalID, status); err != nil {
		logger.FromCtx(ctx).Warn("payment status not updated",
			zap.String("external_id", externalID),
			zap.Error(err),
		)
	}
}

func (s *service) markProcessed(ctx context.Context, webhookID int64) {
	if err := s.repo.MarkWebhookProcessed(ctx, webhookID); err != nil {
		logger.FromCtx(ctx).Warn("webhook not marked processed",
			zap.Int64("webhook_id", webhookID),
			zap.Error(err),
		)
	}
}
