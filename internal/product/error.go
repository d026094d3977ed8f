package product

import "storefront-be/internal/apperror"

var (
	ErrProductNotFound = apperror.New(apperror.ErrNotFound, "product not found")
	ErrDuplicateSKU    = apperror.New(apperror.ErrValidation, "product id already exists")

	ErrMissingSKU      = apperror.New(apperror.ErrValidation, "product id is required")
	ErrMissingName     = apperror.New(apperror.ErrValidation, "product name is required")
	ErrInvalidPrice    = apperror.New(apperror.ErrValidation, "price must not be negative")
	ErrInvalidCategory = apperror.New(apperror.ErrValidation, "category must be one of t-shirts, pants, sneakers")
	ErrInvalidStock    = apperror.New(apperror.ErrValidation, "stock must not be negative")
)

const pgUniqueViolation = "23505"
