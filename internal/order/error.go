package order

import "storefront-be/internal/apperror"

var (
	ErrOrderNotFound          = apperror.New(apperror.ErrNotFound, "order not found")
	ErrNotOrderOwner          = apperror.New(apperror.ErrForbidden, "not authorized to access this order")
	ErrAdminOnly              = apperror.New(apperror.ErrForbidden, "not authorized as an admin")
	ErrEmptyCart              = apperror.New(apperror.ErrEmptyCart, "no order items")
	ErrInsufficientStock      = apperror.New(apperror.ErrInsufficientStock, "insufficient stock")
	ErrProductUnavailable     = apperror.New(apperror.ErrNotFound, "product in cart no longer exists")
	ErrOrderAlreadyPaid       = apperror.New(apperror.ErrInvalidState, "order is already paid")
	ErrPaymentMethodMismatch  = apperror.New(apperror.ErrInvalidState, "order payment method does not match")
	ErrInvalidStatus          = apperror.New(apperror.ErrValidation, "invalid order status")
	ErrInvalidPaymentMethod   = apperror.New(apperror.ErrValidation, "invalid payment method")
	ErrInvalidShippingAddress = apperror.New(apperror.ErrValidation, "shipping address is incomplete")
)
