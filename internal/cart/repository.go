package cart

import (
	"context"
	"database/sql"
	"errors"

	"storefront-be/internal/logger"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

type Repository interface {
	GetByUserID(ctx context.Context, userID uint) (*Cart, error)
	GetOrCreate(ctx context.Context, userID uint) (*Cart, error)
	GetItem(ctx context.Context, cartID, itemID string) (*CartItem, error)
	AddOrMergeItem(ctx context.Context, cartID string, item CartItem) error
	UpdateItemQuantity(ctx context.Context, cartID, itemID string, quantity int) error
	RemoveItem(ctx context.Context, cartID, itemID string) error
	ClearItems(ctx context.Context, cartID string) error
}

type repository struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) Repository {
	return &repository{db: db}
}

// GetByUserID returns ErrCartNotFound when the user never had a cart.
func (r *repository) GetByUserID(ctx context.Context, userID uint) (*Cart, error) {
	c := &Cart{UserID: userID}
	err := r.db.QueryRowContext(ctx,
		`SELECT id, created_at, updated_at FROM carts WHERE user_id = $1`,
		userID,
	).Scan(&c.ID, &c.CreatedAt, &c.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrCartNotFound
	}
	if err != nil {
		logger.FromCtx(ctx).Error("failed to get cart",
			zap.String("layer", "repository"),
			zap.String("method", "GetByUserID"),
			zap.Error(err),
		)
		return nil, err
	}

	if err := r.loadItems(ctx, c); err != nil {
		return nil, err
	}
	return c, nil
}

func (r *repository) GetOrCreate(ctx context.Context, userID uint) (*Cart, error) {
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "repository"),
		zap.String("method", "GetOrCreate"),
	)

	c := &Cart{UserID: userID}
	// the no-op update makes RETURNING yield the existing row on conflict
	err := r.db.QueryRowContext(ctx, `
		INSERT INTO carts (id, user_id)
		VALUES ($1, $2)
		ON CONFLICT (user_id) DO UPDATE SET user_id = EXCLUDED.user_id
		RETURNING id, created_at, updated_at`,
		uuid.NewString(), userID,
	).Scan(&c.ID, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		log.Error("failed to get or create cart", zap.Error(err))
		return nil, err
	}

	if err := r.loadItems(ctx, c); err != nil {
		return nil, err
	}
	return c, nil
}

func (r *repository) loadItems(ctx context.Context, c *Cart) error {
	rows, err := r.db.QueryContext(ctx, `
		SELECT
			ci.id, ci.product_id, ci.quantity, ci.size, ci.color, ci.price,
			p.name, p.price, p.images, p.stock
		FROM cart_items ci
		LEFT JOIN products p ON p.id = ci.product_id
		WHERE ci.cart_id = $1
		ORDER BY ci.created_at, ci.id`,
		c.ID,
	)
	if err != nil {
		logger.FromCtx(ctx).Error("failed to load cart items",
			zap.String("layer", "repository"),
			zap.String("cart_id", c.ID),
			zap.Error(err),
		)
		return err
	}
	defer rows.Close()

	c.Items = []CartItem{}
	for rows.Next() {
		var (
			item   CartItem
			name   sql.NullString
			price  decimal.NullDecimal
			images pq.StringArray
			stock  sql.NullInt64
		)
		if err := rows.Scan(
			&item.ID, &item.ProductID, &item.Quantity, &item.Size, &item.Color, &item.Price,
			&name, &price, &images, &stock,
		); err != nil {
			return err
		}

		// a NULL join means the product was deleted after the line was added
		if name.Valid {
			item.Product = &ProductSummary{
				ID:     item.ProductID,
				Name:   name.String,
				Price:  price.Decimal,
				Images: []string(images),
				Stock:  int(stock.Int64),
			}
		}
		c.Items = append(c.Items, item)
	}
	if err := rows.Err(); err != nil {
		return err
	}

	c.computeTotal()
	return nil
}

func (r *repository) GetItem(ctx context.Context, cartID, itemID string) (*CartItem, error) {
	item := &CartItem{}
	err := r.db.QueryRowContext(ctx, `
		SELECT id, product_id, quantity, size, color, price
		FROM cart_items
		WHERE cart_id = $1 AND id = $2`,
		cartID, itemID,
	).Scan(&item.ID, &item.ProductID, &item.Quantity, &item.Size, &item.Color, &item.Price)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrCartItemNotFound
	}
	if err != nil {
		return nil, err
	}
	return item, nil
}

// AddOrMergeItem adds quantity onto an existing (product, size, color) line.
// A merged line keeps the price captured when it was first added.
func (r *repository) AddOrMergeItem(ctx context.Context, cartID string, item CartItem) error {
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "repository"),
		zap.String("method", "AddOrMergeItem"),
		zap.String("cart_id", cartID),
		zap.String("product_id", item.ProductID),
	)

	_, err := r.db.ExecContext(ctx, `
		INSERT INTO cart_items (id, cart_id, product_id, quantity, size, color, price)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (cart_id, product_id, size, color)
		DO UPDATE SET quantity = cart_items.quantity + EXCLUDED.quantity`,
		uuid.NewString(), cartID, item.ProductID, item.Quantity, item.Size, item.Color, item.Price,
	)
	if err != nil {
		log.Error("failed to upsert cart item", zap.Error(err))
		return err
	}

	r.touch(ctx, cartID)
	log.Debug("cart item upserted", zap.Int("quantity", item.Quantity))
	return nil
}

func (r *repository) UpdateItemQuantity(ctx context.Context, cartID, itemID string, quantity int) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE cart_items SET quantity = $1 WHERE cart_id = $2 AND id = $3`,
		quantity, cartID, itemID,
	)
	if err != nil {
		return err
	}

	rowsAffected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if rowsAffected == 0 {
		return ErrCartItemNotFound
	}

	r.touch(ctx, cartID)
	return nil
}

// RemoveItem is a no-op for an id that is not in the cart.
func (r *repository) RemoveItem(ctx context.Context, cartID, itemID string) error {
	_, err := r.db.ExecContext(ctx,
		`DELETE FROM cart_items WHERE cart_id = $1 AND id = $2`,
		cartID, itemID,
	)
	if err != nil {
		return err
	}
	r.touch(ctx, cartID)
	return nil
}

func (r *repository) ClearItems(ctx context.Context, cartID string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM cart_items WHERE cart_id = $1`, cartID); err != nil {
		return err
	}
	r.touch(ctx, cartID)
	return nil
}

func (r *repository) touch(ctx context.Context, cartID string) {
	if _, err := r.db.ExecContext(ctx, `UPDATE carts SET updated_at = NOW() WHERE id = $1`, cartID); err != nil {
		logger.FromCtx(ctx).Warn("failed to touch cart", zap.String("cart_id", cartID), zap.Error(err))
	}
}
