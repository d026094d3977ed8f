package order

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"storefront-be/internal/logger"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

type Repository interface {
	CreateFromCart(ctx context.Context, userID uint, input CreateOrderInput) (*Order, error)
	GetByID(ctx context.Context, id string) (*Order, error)
	ListByUser(ctx context.Context, userID uint) ([]Order, error)
	ListAll(ctx context.Context) ([]Order, error)
	UpdateStatus(ctx context.Context, id string, status Status, deliveredAt *time.Time) error
	MarkAsPaid(ctx context.Context, id string, result PaymentResult, paidAt time.Time) error
}

type repository struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) Repository {
	return &repository{db: db}
}

const orderColumns = `
	id, user_id, shipping_address, payment_method,
	items_price, tax_price, shipping_price, total_price,
	is_paid, paid_at, payment_result, status,
	is_delivered, delivered_at, created_at, updated_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanOrder(row rowScanner) (*Order, error) {
	var (
		o           Order
		paidAt      sql.NullTime
		deliveredAt sql.NullTime
		result      []byte
	)
	err := row.Scan(
		&o.ID, &o.UserID, &o.ShippingAddress, &o.PaymentMethod,
		&o.ItemsPrice, &o.TaxPrice, &o.ShippingPrice, &o.TotalPrice,
		&o.IsPaid, &paidAt, &result, &o.Status,
		&o.IsDelivered, &deliveredAt, &o.CreatedAt, &o.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if paidAt.Valid {
		o.PaidAt = &paidAt.Time
	}
	if deliveredAt.Valid {
		o.DeliveredAt = &deliveredAt.Time
	}
	if len(result) > 0 {
		o.PaymentResult = &PaymentResult{}
		if err := json.Unmarshal(result, o.PaymentResult); err != nil {
			return nil, fmt.Errorf("decode payment result: %w", err)
		}
	}
	o.Items = []OrderItem{}
	return &o, nil
}

// CreateFromCart turns the user's cart into an order in one transaction: the
// cart row is locked, every line's stock is decremented only if sufficient,
// and the cart is emptied. Any failure leaves stock and cart untouched.
func (r *repository) CreateFromCart(ctx context.Context, userID uint, input CreateOrderInput) (*Order, error) {
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "repository"),
		zap.String("method", "CreateFromCart"),
		zap.Uint("user_id", userID),
	)

	log.Debug("starting create order transaction")

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		log.Error("failed to begin transaction", zap.Error(err))
		return nil, err
	}

	committed := false
	defer func() {
		if !committed {
			if rbErr := tx.Rollback(); rbErr != nil {
				log.Error("failed to rollback transaction", zap.Error(rbErr))
			} else {
				log.Debug("transaction rolled back")
			}
		}
	}()

	var cartID string
	err = tx.QueryRowContext(ctx,
		`SELECT id FROM carts WHERE user_id = $1 FOR UPDATE`,
		userID,
	).Scan(&cartID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrEmptyCart
	}
	if err != nil {
		log.Error("failed to lock cart", zap.Error(err))
		return nil, err
	}

	items, err := loadCartLines(ctx, tx, cartID)
	if err != nil {
		return nil, err
	}
	if len(items) == 0 {
		return nil, ErrEmptyCart
	}

	itemsPrice := decimal.Zero
	for _, item := range items {
		itemsPrice = itemsPrice.Add(item.Price.Mul(decimal.NewFromInt(int64(item.Quantity))))
	}
	pricing := CalculatePricing(itemsPrice)

	o := &Order{
		ID:              uuid.NewString(),
		UserID:          userID,
		Items:           items,
		ShippingAddress: input.ShippingAddress,
		PaymentMethod:   input.PaymentMethod,
		ItemsPrice:      pricing.ItemsPrice,
		TaxPrice:        pricing.TaxPrice,
		ShippingPrice:   pricing.ShippingPrice,
		TotalPrice:      pricing.TotalPrice,
		Status:          StatusPending,
	}

	err = tx.QueryRowContext(ctx, `
		INSERT INTO orders (
			id, user_id, shipping_address, payment_method,
			items_price, tax_price, shipping_price, total_price, status
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING created_at, updated_at`,
		o.ID, o.UserID, o.ShippingAddress, string(o.PaymentMethod),
		o.ItemsPrice, o.TaxPrice, o.ShippingPrice, o.TotalPrice, string(o.Status),
	).Scan(&o.CreatedAt, &o.UpdatedAt)
	if err != nil {
		log.Error("failed to insert order", zap.Error(err))
		return nil, err
	}

	for i := range o.Items {
		item := &o.Items[i]
		item.ID = uuid.NewString()

		_, err = tx.ExecContext(ctx, `
			INSERT INTO order_items (
				id, order_id, product_id, name, quantity, size, color, price, image, position
			) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
			item.ID, o.ID, item.ProductID, item.Name, item.Quantity,
			item.Size, item.Color, item.Price, item.Image, i,
		)
		if err != nil {
			log.Error("failed to insert order item",
				zap.Int("item_index", i),
				zap.String("product_id", item.ProductID),
				zap.Error(err),
			)
			return nil, err
		}

		res, err := tx.ExecContext(ctx, `
			UPDATE products
			SET stock = stock - $1, updated_at = NOW()
			WHERE id = $2 AND stock >= $1`,
			item.Quantity, item.ProductID,
		)
		if err != nil {
			log.Error("failed to decrement stock", zap.String("product_id", item.ProductID), zap.Error(err))
			return nil, err
		}
		affected, err := res.RowsAffected()
		if err != nil {
			return nil, err
		}
		if affected == 0 {
			log.Info("order rejected for stock",
				zap.String("product_id", item.ProductID),
				zap.Int("quantity", item.Quantity),
			)
			return nil, fmt.Errorf("%w: %s", ErrInsufficientStock, item.Name)
		}
	}

	if _, err = tx.ExecContext(ctx, `DELETE FROM cart_items WHERE cart_id = $1`, cartID); err != nil {
		log.Error("failed to clear cart", zap.Error(err))
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		log.Error("failed to commit create order transaction", zap.Error(err))
		return nil, err
	}
	committed = true

	log.Info("order created",
		zap.String("order_id", o.ID),
		zap.Int("item_count", len(o.Items)),
		zap.String("total", o.TotalPrice.String()),
	)
	return o, nil
}

// loadCartLines snapshots the cart lines with the current product name and
// first image. Lines are closed before the caller issues further statements.
func loadCartLines(ctx context.Context, tx *sql.Tx, cartID string) ([]OrderItem, error) {
	rows, err := tx.QueryContext(ctx, `
		SELECT ci.product_id, ci.quantity, ci.size, ci.color, ci.price, p.name, p.images
		FROM cart_items ci
		LEFT JOIN products p ON p.id = ci.product_id
		WHERE ci.cart_id = $1
		ORDER BY ci.created_at, ci.id`,
		cartID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := []OrderItem{}
	for rows.Next() {
		var (
			item   OrderItem
			name   sql.NullString
			images pq.StringArray
		)
		if err := rows.Scan(
			&item.ProductID, &item.Quantity, &item.Size, &item.Color, &item.Price,
			&name, &images,
		); err != nil {
			return nil, err
		}
		if !name.Valid {
			return nil, ErrProductUnavailable
		}
		item.Name = name.String
		if len(images) > 0 {
			item.Image = images[0]
		}
		items = append(items, item)
	}
	return items, rows.Err()
}

func (r *repository) GetByID(ctx context.Context, id string) (*Order, error) {
	o, err := scanOrder(r.db.QueryRowContext(ctx,
		`SELECT `+orderColumns+` FROM orders WHERE id = $1`, id,
	))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrOrderNotFound
	}
	if err != nil {
		logger.FromCtx(ctx).Error("failed to get order",
			zap.String("layer", "repository"),
			zap.String("order_id", id),
			zap.Error(err),
		)
		return nil, err
	}

	orders := []Order{*o}
	if err := r.attachItems(ctx, orders); err != nil {
		return nil, err
	}
	return &orders[0], nil
}

func (r *repository) ListByUser(ctx context.Context, userID uint) ([]Order, error) {
	return r.list(ctx,
		`SELECT `+orderColumns+` FROM orders WHERE user_id = $1 ORDER BY created_at DESC`,
		userID,
	)
}

func (r *repository) ListAll(ctx context.Context) ([]Order, error) {
	return r.list(ctx, `SELECT `+orderColumns+` FROM orders ORDER BY created_at DESC`)
}

func (r *repository) list(ctx context.Context, query string, args ...any) ([]Order, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		logger.FromCtx(ctx).Error("failed to list orders",
			zap.String("layer", "repository"),
			zap.Error(err),
		)
		return nil, err
	}

	orders := []Order{}
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			rows.Close()
			return nil, err
		}
		orders = append(orders, *o)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, err
	}

	if err := r.attachItems(ctx, orders); err != nil {
		return nil, err
	}
	return orders, nil
}

// attachItems loads the lines of every order in one query.
func (r *repository) attachItems(ctx context.Context, orders []Order) error {
	if len(orders) == 0 {
		return nil
	}

	ids := make([]string, len(orders))
	index := make(map[string]int, len(orders))
	for i, o := range orders {
		ids[i] = o.ID
		index[o.ID] = i
	}

	rows, err := r.db.QueryContext(ctx, `
		SELECT id, order_id, product_id, name, quantity, size, color, price, image
		FROM order_items
		WHERE order_id = ANY($1)
		ORDER BY order_id, position`,
		pq.Array(ids),
	)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var (
			item    OrderItem
			orderID string
		)
		if err := rows.Scan(
			&item.ID, &orderID, &item.ProductID, &item.Name, &item.Quantity,
			&item.Size, &item.Color, &item.Price, &item.Image,
		); err != nil {
			return err
		}
		if i, ok := index[orderID]; ok {
			orders[i].Items = append(orders[i].Items, item)
		}
	}
	return rows.Err()
}

func (r *repository) UpdateStatus(ctx context.Context, id string, status Status, deliveredAt *time.Time) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE orders SET
			status = $2,
			is_delivered = is_delivered OR $3,
			delivered_at = COALESCE($4, delivered_at),
			updated_at = NOW()
		WHERE id = $1`,
		id, string(status), deliveredAt != nil, deliveredAt,
	)
	if err != nil {
		logger.FromCtx(ctx).Error("failed to update order status",
			zap.String("layer", "repository"),
			zap.String("order_id", id),
			zap.Error(err),
		)
		return err
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrOrderNotFound
	}
	return nil
}

// MarkAsPaid flips an unpaid order to paid. It never rewrites a paid order:
// ErrOrderAlreadyPaid tells the caller the order was paid before.
func (r *repository) MarkAsPaid(ctx context.Context, id string, result PaymentResult, paidAt time.Time) error {
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "repository"),
		zap.String("method", "MarkAsPaid"),
		zap.String("order_id", id),
	)

	res, err := r.db.ExecContext(ctx, `
		UPDATE orders SET
			is_paid = TRUE,
			paid_at = $2,
			payment_result = $3,
			updated_at = NOW()
		WHERE id = $1 AND is_paid = FALSE`,
		id, paidAt, result,
	)
	if err != nil {
		log.Error("failed to mark order paid", zap.Error(err))
		return err
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 1 {
		return nil
	}

	var exists bool
	if err := r.db.QueryRowContext(ctx,
		`SELECT EXISTS (SELECT 1 FROM orders WHERE id = $1)`, id,
	).Scan(&exists); err != nil {
		return err
	}
	if !exists {
		return ErrOrderNotFound
	}
	return ErrOrderAlreadyPaid
}
