package product

import (
	"context"
	"math"
	"time"

	"storefront-be/internal/logger"
	"storefront-be/internal/utils"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type Service interface {
	List(ctx context.Context, opts ListOptions) (*ListResult, error)
	GetFeatured(ctx context.Context) ([]Product, error)
	GetByID(ctx context.Context, id string) (*Product, error)
	Create(ctx context.Context, input ProductInput) (*Product, error)
	Update(ctx context.Context, id string, input UpdateProductInput) (*Product, error)
	Delete(ctx context.Context, id string) error
	InvalidateCache(ctx context.Context, ids ...string)
}

type service struct {
	repo  Repository
	cache Cache
}

func NewService(repo Repository, cache Cache) Service {
	if cache == nil {
		cache = NewNoopCache()
	}
	return &service{repo: repo, cache: cache}
}

func (s *service) List(ctx context.Context, opts ListOptions) (*ListResult, error) {
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "service"),
		zap.String("method", "List"),
	)

	start := time.Now()

	if opts.Page <= 0 {
		opts.Page = 1
	}
	if opts.Limit <= 0 {
		opts.Limit = DefaultPageLimit
	} else if opts.Limit > MaxPageLimit {
		opts.Limit = MaxPageLimit
	}
	if opts.Category != "" && !opts.Category.Valid() {
		return nil, ErrInvalidCategory
	}

	log.Debug("list products requested",
		zap.Int("page", opts.Page),
		zap.Int("limit", opts.Limit),
		zap.String("category", string(opts.Category)),
		zap.String("search", opts.Search),
		zap.String("sort", opts.Sort),
	)

	products, total, err := s.repo.List(ctx, opts)
	if err != nil {
		log.Error("failed to fetch product list", zap.Error(err))
		return nil, err
	}

	log.Info("list products success",
		zap.Int("count", len(products)),
		zap.Int("total", total),
		zap.Duration("duration", time.Since(start)),
	)

	return &ListResult{
		Products: products,
		Page:     opts.Page,
		Pages:    int(math.Ceil(float64(total) / float64(opts.Limit))),
		Total:    total,
	}, nil
}

func (s *service) GetFeatured(ctx context.Context) ([]Product, error) {
	return s.repo.ListFeatured(ctx, FeaturedLimit)
}

func (s *service) GetByID(ctx context.Context, id string) (*Product, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, ErrProductNotFound
	}

	if p, ok := s.cache.Get(ctx, id); ok {
		return p, nil
	}

	p, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	s.cache.Set(ctx, p)
	return p, nil
}

func (s *service) Create(ctx context.Context, input ProductInput) (*Product, error) {
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "service"),
		zap.String("method", "Create"),
	)

	p := &Product{
		SKU:         utils.NormalizeSKU(input.SKU),
		Name:        input.Name,
		Description: input.Description,
		Price:       input.Price,
		Category:    input.Category,
		Images:      nonNil(input.Images),
		Stock:       input.Stock,
		Sizes:       nonNil(input.Sizes),
		Colors:      nonNil(input.Colors),
		Featured:    input.Featured,
		ReleaseDate: input.ReleaseDate,
	}

	if err := validate(p); err != nil {
		log.Warn("invalid product input", zap.Error(err))
		return nil, err
	}

	if err := s.repo.Create(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

func (s *service) Update(ctx context.Context, id string, input UpdateProductInput) (*Product, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, ErrProductNotFound
	}

	p, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	input.apply(p)
	p.SKU = utils.NormalizeSKU(p.SKU)

	if err := validate(p); err != nil {
		return nil, err
	}

	if err := s.repo.Update(ctx, p); err != nil {
		return nil, err
	}

	s.cache.Invalidate(ctx, id)
	return p, nil
}

func (s *service) Delete(ctx context.Context, id string) error {
	if _, err := uuid.Parse(id); err != nil {
		return ErrProductNotFound
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}

	s.cache.Invalidate(ctx, id)
	logger.FromCtx(ctx).Info("product deleted", zap.String("product_id", id))
	return nil
}

// InvalidateCache drops cached copies after stock changes made elsewhere.
func (s *service) InvalidateCache(ctx context.Context, ids ...string) {
	s.cache.Invalidate(ctx, ids...)
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
