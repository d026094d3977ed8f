package cart

import "storefront-be/internal/apperror"

var (
	ErrCartNotFound      = apperror.New(apperror.ErrNotFound, "cart not found")
	ErrCartItemNotFound  = apperror.New(apperror.ErrNotFound, "item not found in cart")
	ErrInvalidQuantity   = apperror.New(apperror.ErrValidation, "quantity must be at least 1")
	ErrInsufficientStock = apperror.New(apperror.ErrInsufficientStock, "insufficient stock")
)
