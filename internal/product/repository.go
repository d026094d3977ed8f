package product

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"storefront-be/internal/logger"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

type Repository interface {
	GetByID(ctx context.Context, id string) (*Product, error)
	List(ctx context.Context, opts ListOptions) ([]Product, int, error)
	ListFeatured(ctx context.Context, limit int) ([]Product, error)
	Create(ctx context.Context, p *Product) error
	Update(ctx context.Context, p *Product) error
	Delete(ctx context.Context, id string) error
}

type repository struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) Repository {
	return &repository{db: db}
}

const productColumns = `
	p.id, p.sku, p.name, p.description, p.price, p.category, p.images,
	p.stock, p.sizes, p.colors, p.featured, p.rating, p.num_reviews,
	p.release_date, p.created_at, p.updated_at`

// sortColumns whitelists the sort keys accepted from the query string.
var sortColumns = map[string]string{
	"createdAt":  "p.created_at ASC",
	"-createdAt": "p.created_at DESC",
	"price":      "p.price ASC",
	"-price":     "p.price DESC",
	"name":       "p.name ASC",
	"-name":      "p.name DESC",
	"rating":     "p.rating ASC",
	"-rating":    "p.rating DESC",
}

const defaultSort = "-createdAt"

type rowScanner interface {
	Scan(dest ...any) error
}

func scanProduct(row rowScanner) (*Product, error) {
	var (
		p           Product
		releaseDate sql.NullTime
	)
	err := row.Scan(
		&p.ID, &p.SKU, &p.Name, &p.Description, &p.Price, &p.Category,
		pq.Array(&p.Images), &p.Stock, pq.Array(&p.Sizes), pq.Array(&p.Colors),
		&p.Featured, &p.Rating, &p.NumReviews,
		&releaseDate, &p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if releaseDate.Valid {
		t := releaseDate.Time
		p.ReleaseDate = &t
	}
	return &p, nil
}

func (r *repository) GetByID(ctx context.Context, id string) (*Product, error) {
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "repository"),
		zap.String("method", "GetByID"),
		zap.String("product_id", id),
	)

	query := `SELECT ` + productColumns + ` FROM products p WHERE p.id = $1`

	p, err := scanProduct(r.db.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrProductNotFound
	}
	if err != nil {
		log.Error("failed to get product", zap.Error(err))
		return nil, err
	}
	return p, nil
}

// buildListFilter returns the WHERE clause and its args for opts.
func buildListFilter(opts ListOptions) (string, []any) {
	var (
		conds []string
		args  []any
	)

	if opts.Category != "" {
		args = append(args, string(opts.Category))
		conds = append(conds, fmt.Sprintf("p.category = $%d", len(args)))
	}

	if search := strings.TrimSpace(opts.Search); search != "" {
		args = append(args, "%"+search+"%")
		n := len(args)
		or := []string{
			fmt.Sprintf("p.name ILIKE $%d", n),
			fmt.Sprintf("p.description ILIKE $%d", n),
			fmt.Sprintf("p.sku ILIKE $%d", n),
		}
		// a numeric search term also matches the exact price
		if price, err := decimal.NewFromString(search); err == nil {
			args = append(args, price)
			or = append(or, fmt.Sprintf("p.price = $%d", len(args)))
		}
		conds = append(conds, "("+strings.Join(or, " OR ")+")")
	}

	if opts.MinPrice != nil {
		args = append(args, *opts.MinPrice)
		conds = append(conds, fmt.Sprintf("p.price >= $%d", len(args)))
	}
	if opts.MaxPrice != nil {
		args = append(args, *opts.MaxPrice)
		conds = append(conds, fmt.Sprintf("p.price <= $%d", len(args)))
	}

	if len(conds) == 0 {
		return "", args
	}
	return " WHERE " + strings.Join(conds, " AND "), args
}

func (r *repository) List(ctx context.Context, opts ListOptions) ([]Product, int, error) {
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "repository"),
		zap.String("method", "List"),
	)

	start := time.Now()
	where, args := buildListFilter(opts)

	var total int
	countQuery := `SELECT COUNT(*) FROM products p` + where
	if err := r.db.QueryRowContext(ctx, countQuery, args...).Scan(&total); err != nil {
		log.Error("failed to count products", zap.Error(err))
		return nil, 0, err
	}

	orderBy, ok := sortColumns[opts.Sort]
	if !ok {
		orderBy = sortColumns[defaultSort]
	}

	args = append(args, opts.Limit, (opts.Page-1)*opts.Limit)
	query := fmt.Sprintf(
		`SELECT %s FROM products p%s ORDER BY %s, p.id LIMIT $%d OFFSET $%d`,
		productColumns, where, orderBy, len(args)-1, len(args),
	)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		log.Error("failed to list products", zap.Error(err))
		return nil, 0, err
	}
	defer rows.Close()

	products := []Product{}
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			log.Error("failed to scan product", zap.Error(err))
			return nil, 0, err
		}
		products = append(products, *p)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}

	log.Debug("list products done",
		zap.Int("count", len(products)),
		zap.Int("total", total),
		zap.Duration("duration", time.Since(start)),
	)
	return products, total, nil
}

func (r *repository) ListFeatured(ctx context.Context, limit int) ([]Product, error) {
	query := `SELECT ` + productColumns + `
		FROM products p
		WHERE p.featured
		ORDER BY p.created_at DESC
		LIMIT $1`

	rows, err := r.db.QueryContext(ctx, query, limit)
	if err != nil {
		logger.FromCtx(ctx).Error("failed to list featured products",
			zap.String("layer", "repository"),
			zap.Error(err),
		)
		return nil, err
	}
	defer rows.Close()

	products := []Product{}
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, err
		}
		products = append(products, *p)
	}
	return products, rows.Err()
}

func (r *repository) Create(ctx context.Context, p *Product) error {
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "repository"),
		zap.String("method", "Create"),
		zap.String("sku", p.SKU),
	)

	if p.ID == "" {
		p.ID = uuid.NewString()
	}

	err := r.db.QueryRowContext(ctx, `
		INSERT INTO products (
			id, sku, name, description, price, category, images,
			stock, sizes, colors, featured, release_date
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		RETURNING created_at, updated_at`,
		p.ID, p.SKU, p.Name, p.Description, p.Price, string(p.Category),
		pq.Array(p.Images), p.Stock, pq.Array(p.Sizes), pq.Array(p.Colors),
		p.Featured, p.ReleaseDate,
	).Scan(&p.CreatedAt, &p.UpdatedAt)

	if isUniqueViolation(err) {
		return ErrDuplicateSKU
	}
	if err != nil {
		log.Error("failed to insert product", zap.Error(err))
		return err
	}

	log.Info("product created", zap.String("product_id", p.ID))
	return nil
}

func (r *repository) Update(ctx context.Context, p *Product) error {
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "repository"),
		zap.String("method", "Update"),
		zap.String("product_id", p.ID),
	)

	err := r.db.QueryRowContext(ctx, `
		UPDATE products SET
			sku = $2, name = $3, description = $4, price = $5, category = $6,
			images = $7, stock = $8, sizes = $9, colors = $10, featured = $11,
			release_date = $12, updated_at = NOW()
		WHERE id = $1
		RETURNING updated_at`,
		p.ID, p.SKU, p.Name, p.Description, p.Price, string(p.Category),
		pq.Array(p.Images), p.Stock, pq.Array(p.Sizes), pq.Array(p.Colors),
		p.Featured, p.ReleaseDate,
	).Scan(&p.UpdatedAt)

	switch {
	case errors.Is(err, sql.ErrNoRows):
		return ErrProductNotFound
	case isUniqueViolation(err):
		return ErrDuplicateSKU
	case err != nil:
		log.Error("failed to update product", zap.Error(err))
		return err
	}
	return nil
}

func (r *repository) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM products WHERE id = $1`, id)
	if err != nil {
		logger.FromCtx(ctx).Error("failed to delete product",
			zap.String("layer", "repository"),
			zap.String("product_id", id),
			zap.Error(err),
		)
		return err
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrProductNotFound
	}
	return nil
}

func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == pgUniqueViolation
}
