package user

import "storefront-be/internal/apperror"

var (
	ErrUserNotFound       = apperror.New(apperror.ErrNotFound, "user not found")
	ErrEmailExists        = apperror.New(apperror.ErrValidation, "user already exists")
	ErrInvalidCredentials = apperror.New(apperror.ErrUnauthorized, "invalid email or password")

	ErrMissingName      = apperror.New(apperror.ErrValidation, "name is required")
	ErrInvalidEmail     = apperror.New(apperror.ErrValidation, "please include a valid email")
	ErrPasswordTooShort = apperror.New(apperror.ErrValidation, "password must be at least 6 characters")
	ErrMissingPassword  = apperror.New(apperror.ErrValidation, "password is required")
)

const pgUniqueViolation = "23505"
