package order

import (
	"context"
	"fmt"
	"time"

	"storefront-be/internal/events"
	"storefront-be/internal/logger"
	"storefront-be/internal/metrics"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// CatalogCache drops cached product reads after stock changes.
type CatalogCache interface {
	InvalidateCache(ctx context.Context, ids ...string)
}

type Service interface {
	CreateOrder(ctx context.Context, userID uint, input CreateOrderInput) (*Order, error)
	GetOrder(ctx context.Context, req Requester, id string) (*Order, error)
	GetMyOrders(ctx context.Context, userID uint) ([]Order, error)
	GetAllOrders(ctx context.Context, req Requester) ([]Order, error)
	UpdateOrderStatus(ctx context.Context, req Requester, id string, status Status) (*Order, error)
	ConfirmWalletQR(ctx context.Context, userID uint, id string) (*Order, error)
	GetPayableOrder(ctx context.Context, userID uint, id string, method PaymentMethod) (*Order, error)
	MarkAsPaid(ctx context.Context, id string, result PaymentResult) (*Order, error)
}

type service struct {
	repo      Repository
	publisher events.Publisher
	catalog   CatalogCache
	metrics   *metrics.Metrics
	now       func() time.Time
}

func NewService(repo Repository, publisher events.Publisher, catalog CatalogCache, m *metrics.Metrics) Service {
	if publisher == nil {
		publisher = events.NewNoopPublisher()
	}
	return &service{
		repo:      repo,
		publisher: publisher,
		catalog:   catalog,
		metrics:   m,
		now:       time.Now,
	}
}

func (s *service) CreateOrder(ctx context.Context, userID uint, input CreateOrderInput) (*Order, error) {
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "service"),
		zap.String("method", "CreateOrder"),
		zap.String("payment_method", string(input.PaymentMethod)),
	)

	if !input.PaymentMethod.Valid() {
		return nil, ErrInvalidPaymentMethod
	}
	if err := input.ShippingAddress.Validate(); err != nil {
		return nil, err
	}

	o, err := s.repo.CreateFromCart(ctx, userID, input)
	if err != nil {
		log.Warn("create order failed", zap.Error(err))
		return nil, err
	}

	productIDs := make([]string, 0, len(o.Items))
	for _, item := range o.Items {
		productIDs = append(productIDs, item.ProductID)
	}
	if s.catalog != nil {
		s.catalog.InvalidateCache(ctx, productIDs...)
	}

	s.metrics.IncOrderCreated()
	s.publish(ctx, events.Event{
		Type:    events.OrderCreated,
		OrderID: o.ID,
		UserID:  o.UserID,
		Payload: map[string]any{
			"paymentMethod": o.PaymentMethod,
			"totalPrice":    o.TotalPrice,
			"itemCount":     len(o.Items),
		},
	})

	log.Info("order placed", zap.String("order_id", o.ID))
	return o, nil
}

func (s *service) GetOrder(ctx context.Context, req Requester, id string) (*Order, error) {
	o, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if o.UserID != req.UserID && !req.IsAdmin {
		return nil, ErrNotOrderOwner
	}
	return o, nil
}

func (s *service) GetMyOrders(ctx context.Context, userID uint) ([]Order, error) {
	return s.repo.ListByUser(ctx, userID)
}

func (s *service) GetAllOrders(ctx context.Context, req Requester) ([]Order, error) {
	if !req.IsAdmin {
		return nil, ErrAdminOnly
	}
	return s.repo.ListAll(ctx)
}

// UpdateOrderStatus accepts any known status from any other; delivered also
// stamps the delivery time.
func (s *service) UpdateOrderStatus(ctx context.Context, req Requester, id string, status Status) (*Order, error) {
	if !req.IsAdmin {
		return nil, ErrAdminOnly
	}
	if !status.Valid() {
		return nil, ErrInvalidStatus
	}
	if _, err := uuid.Parse(id); err != nil {
		return nil, ErrOrderNotFound
	}

	var deliveredAt *time.Time
	if status == StatusDelivered {
		now := s.now()
		deliveredAt = &now
	}

	if err := s.repo.UpdateStatus(ctx, id, status, deliveredAt); err != nil {
		return nil, err
	}

	o, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	s.publish(ctx, events.Event{
		Type:    events.OrderStatusChanged,
		OrderID: o.ID,
		UserID:  o.UserID,
		Payload: map[string]any{"status": status},
	})
	return o, nil
}

// ConfirmWalletQR trusts the buyer's own confirmation; nothing is verified
// with a provider.
func (s *service) ConfirmWalletQR(ctx context.Context, userID uint, id string) (*Order, error) {
	if _, err := s.GetPayableOrder(ctx, userID, id, PaymentWalletQR); err != nil {
		return nil, err
	}

	now := s.now()
	logger.FromCtx(ctx).Info("wallet qr payment self-confirmed",
		zap.String("order_id", id),
		zap.Uint("user_id", userID),
	)

	return s.MarkAsPaid(ctx, id, PaymentResult{
		ID:         fmt.Sprintf("gpay_%d", now.UnixMilli()),
		Status:     "completed",
		UpdateTime: now.UTC().Format(time.RFC3339),
	})
}

// GetPayableOrder returns the order if userID may pay it with method now.
func (s *service) GetPayableOrder(ctx context.Context, userID uint, id string, method PaymentMethod) (*Order, error) {
	o, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if o.UserID != userID {
		return nil, ErrNotOrderOwner
	}
	if o.PaymentMethod != method {
		return nil, ErrPaymentMethodMismatch
	}
	if o.IsPaid {
		return nil, ErrOrderAlreadyPaid
	}
	return o, nil
}

func (s *service) MarkAsPaid(ctx context.Context, id string, result PaymentResult) (*Order, error) {
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "service"),
		zap.String("method", "MarkAsPaid"),
		zap.String("order_id", id),
	)

	if _, err := uuid.Parse(id); err != nil {
		return nil, ErrOrderNotFound
	}

	if result.UpdateTime == "" {
		result.UpdateTime = s.now().UTC().Format(time.RFC3339)
	}

	if err := s.repo.MarkAsPaid(ctx, id, result, s.now()); err != nil {
		return nil, err
	}

	o, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	s.metrics.IncOrderPaid(string(o.PaymentMethod))
	s.publish(ctx, events.Event{
		Type:    events.OrderPaid,
		OrderID: o.ID,
		UserID:  o.UserID,
		Payload: map[string]any{
			"paymentMethod": o.PaymentMethod,
			"paymentId":     result.ID,
		},
	})

	log.Info("order marked paid",
		zap.String("payment_method", string(o.PaymentMethod)),
		zap.String("payment_id", result.ID),
	)
	return o, nil
}

func (s *service) load(ctx context.Context, id string) (*Order, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, ErrOrderNotFound
	}
	return s.repo.GetByID(ctx, id)
}

// publish runs after the state change is committed, so a broker failure is
// only logged.
func (s *service) publish(ctx context.Context, e events.Event) {
	if err := s.publisher.Publish(ctx, e); err != nil {
		logger.FromCtx(ctx).Warn("order event not published",
			zap.String("type", e.Type),
			zap.String("order_id", e.OrderID),
			zap.Error(err),
		)
	}
}
