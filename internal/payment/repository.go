package payment

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"

	"storefront-be/internal/logger"

	"go.uber.org/zap"
)

type Repository interface {
	SavePayment(ctx context.Context, p *Payment) error
	UpdatePaymentStatus(ctx context.Context, provider, externalID, status string) error
	GetLatestByOrder(ctx context.Context, orderID, provider string) (*Payment, error)
	SavePaymentWebhook(
		ctx context.Context,
		provider string,
		eventID string,
		eventType string,
		externalID string,
		payload json.RawMessage,
		signatureValid bool,
	) (webhookID int64, isDuplicate bool, err error)

	MarkWebhookProcessed(ctx context.Context, webhookID int64) error
	MarkWebhookFailed(ctx context.Context, webhookID int64, reason string) error
}

type repository struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) Repository {
	return &repository{db: db}
}

// SavePayment records a provider attempt; saving the same external id again
// refreshes its status.
func (r *repository) SavePayment(ctx context.Context, p *Payment) error {
	const q = `
	INSERT INTO payments (
		order_id,
		provider,
		external_id,
		amount,
		currency,
		status
	)
	VALUES ($1, $2, $3, $4, $5, $6)
	ON CONFLICT (provider, external_id)
	DO UPDATE SET status = EXCLUDED.status, updated_at = NOW()
	RETURNING id, created_at, updated_at;
	`

	err := r.db.QueryRowContext(ctx, q,
		p.OrderID, p.Provider, p.ExternalID, p.Amount, p.Currency, p.Status,
	).Scan(&p.ID, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		logger.FromCtx(ctx).Error("failed to save payment",
			zap.String("layer", "repository"),
			zap.String("method", "SavePayment"),
			zap.String("order_id", p.OrderID),
			zap.String("provider", p.Provider),
			zap.Error(err),
		)
		return err
	}
	return nil
}

func (r *repository) UpdatePaymentStatus(ctx context.Context, provider, externalID, status string) error {
	_, err := r.db.ExecContext(ctx, `
		UPDATE payments SET status = $1, updated_at = NOW() WHERE provider = $2 AND external_id = $3
	`, status, provider, externalID)
	return err
}

// GetLatestByOrder returns nil, nil when the order has no attempt with provider.
func (r *repository) GetLatestByOrder(ctx context.Context, orderID, provider string) (*Payment, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT id, order_id, provider, external_id, amount, currency, status, created_at, updated_at
		FROM payments WHERE order_id = $1 AND provider = $2
		ORDER BY created_at DESC LIMIT 1
	`, orderID, provider)

	var p Payment
	err := row.Scan(
		&p.ID, &p.OrderID, &p.Provider, &p.ExternalID,
		&p.Amount, &p.Currency, &p.Status, &p.CreatedAt, &p.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// SavePaymentWebhook logs a delivery. A redelivery of an event that was not
// processed yet is handed back for another attempt.
func (r *repository) SavePaymentWebhook(
	ctx context.Context,
	provider string,
	eventID string,
	eventType string,
	externalID string,
	payload json.RawMessage,
	signatureValid bool,
) (int64, bool, error) {

	const q = `
	INSERT INTO payment_webhooks (
		provider,
		event_id,
		event_type,
		external_id,
		signature_valid,
		payload
	)
	VALUES ($1, $2, $3, $4, $5, $6)
	ON CONFLICT (provider, event_id)
	DO UPDATE SET process_error = NULL
	WHERE payment_webhooks.processed_at IS NULL
	RETURNING id;
	`

	var id int64
	err := r.db.QueryRowContext(
		ctx,
		q,
		provider,
		eventID,
		eventType,
		externalID,
		signatureValid,
		string(payload),
	).Scan(&id)

	if err != nil {
		// Already processed → idempotent success
		if errors.Is(err, sql.ErrNoRows) {
			return 0, true, nil
		}
		return 0, false, err
	}

	return id, false, nil
}

func (r *repository) MarkWebhookProcessed(
	ctx context.Context,
	webhookID int64,
) error {

	const q = `
	UPDATE payment_webhooks
	SET processed_at = now()
	WHERE id = $1;
	`

	_, err := r.db.ExecContext(ctx, q, webhookID)
	return err
}

func (r *repository) MarkWebhookFailed(
	ctx context.Context,
	webhookID int64,
	reason string,
) error {

	const q = `
	UPDATE payment_webhooks
	SET process_error = $2
	WHERE id = $1;
	`

	_, err := r.db.ExecContext(ctx, q, webhookID, reason)
	return err
}
