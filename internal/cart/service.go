package cart

import (
	"context"
	"errors"

	"storefront-be/internal/logger"
	"storefront-be/internal/product"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ProductReader is the catalog lookup the cart needs.
type ProductReader interface {
	GetByID(ctx context.Context, id string) (*product.Product, error)
}

type Service interface {
	GetCart(ctx context.Context, userID uint) (*Cart, error)
	AddToCart(ctx context.Context, userID uint, input AddToCartInput) (*Cart, error)
	UpdateCartItem(ctx context.Context, userID uint, itemID string, quantity int) (*Cart, error)
	RemoveFromCart(ctx context.Context, userID uint, itemID string) (*Cart, error)
	ClearCart(ctx context.Context, userID uint) error
}

type service struct {
	repo     Repository
	products ProductReader
}

func NewService(repo Repository, products ProductReader) Service {
	return &service{repo: repo, products: products}
}

func (s *service) GetCart(ctx context.Context, userID uint) (*Cart, error) {
	return s.repo.GetOrCreate(ctx, userID)
}

func (s *service) AddToCart(ctx context.Context, userID uint, input AddToCartInput) (*Cart, error) {
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "service"),
		zap.String("method", "AddToCart"),
		zap.String("product_id", input.ProductID),
		zap.Int("quantity", input.Quantity),
	)

	if input.Quantity < 1 {
		return nil, ErrInvalidQuantity
	}

	p, err := s.products.GetByID(ctx, input.ProductID)
	if err != nil {
		if !errors.Is(err, product.ErrProductNotFound) {
			log.Error("failed to load product", zap.Error(err))
		}
		return nil, err
	}

	// checked against total catalog stock, not stock left after this cart
	if input.Quantity > p.Stock {
		log.Info("add to cart rejected", zap.Int("stock", p.Stock))
		return nil, ErrInsufficientStock
	}

	c, err := s.repo.GetOrCreate(ctx, userID)
	if err != nil {
		return nil, err
	}

	err = s.repo.AddOrMergeItem(ctx, c.ID, CartItem{
		ProductID: p.ID,
		Quantity:  input.Quantity,
		Size:      input.Size,
		Color:     input.Color,
		Price:     p.Price,
	})
	if err != nil {
		return nil, err
	}

	return s.repo.GetByUserID(ctx, userID)
}

func (s *service) UpdateCartItem(ctx context.Context, userID uint, itemID string, quantity int) (*Cart, error) {
	if quantity < 1 {
		return nil, ErrInvalidQuantity
	}

	c, err := s.repo.GetByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}

	if _, err := uuid.Parse(itemID); err != nil {
		return nil, ErrCartItemNotFound
	}

	item, err := s.repo.GetItem(ctx, c.ID, itemID)
	if err != nil {
		return nil, err
	}

	p, err := s.products.GetByID(ctx, item.ProductID)
	if err != nil {
		return nil, err
	}
	if quantity > p.Stock {
		return nil, ErrInsufficientStock
	}

	if err := s.repo.UpdateItemQuantity(ctx, c.ID, itemID, quantity); err != nil {
		return nil, err
	}

	return s.repo.GetByUserID(ctx, userID)
}

func (s *service) RemoveFromCart(ctx context.Context, userID uint, itemID string) (*Cart, error) {
	c, err := s.repo.GetByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}

	if _, err := uuid.Parse(itemID); err != nil {
		return c, nil
	}

	if err := s.repo.RemoveItem(ctx, c.ID, itemID); err != nil {
		return nil, err
	}

	return s.repo.GetByUserID(ctx, userID)
}

func (s *service) ClearCart(ctx context.Context, userID uint) error {
	c, err := s.repo.GetByUserID(ctx, userID)
	if errors.Is(err, ErrCartNotFound) {
		return nil
	}
	if err != nil {
		return err
	}

	return s.repo.ClearItems(ctx, c.ID)
}
