package apperror

import (
	"errors"
	"net/http"
)

// Kinds shared by every domain package. Domain sentinels wrap exactly one of
// these so the transport layer can map them with errors.Is.
var (
	ErrNotFound          = errors.New("not found")
	ErrForbidden         = errors.New("forbidden")
	ErrUnauthorized      = errors.New("unauthorized")
	ErrInvalidState      = errors.New("invalid state")
	ErrInsufficientStock = errors.New("insufficient stock")
	ErrEmptyCart         = errors.New("cart is empty")
	ErrProvider          = errors.New("payment provider error")
	ErrValidation        = errors.New("validation failed")
)

type kindError struct {
	kind error
	msg  string
}

func (e *kindError) Error() string { return e.msg }
func (e *kindError) Unwrap() error { return e.kind }

// New returns an error with its own message that still matches kind.
func New(kind error, msg string) error {
	return &kindError{kind: kind, msg: msg}
}

// HTTPStatus maps an error to the status code the API answers with.
func HTTPStatus(err error) int {
	switch {
	case err == nil:
		return http.StatusOK
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, ErrUnauthorized):
		return http.StatusUnauthorized
	case errors.Is(err, ErrInvalidState),
		errors.Is(err, ErrInsufficientStock),
		errors.Is(err, ErrEmptyCart),
		errors.Is(err, ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, ErrProvider):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// IsClientError reports whether err belongs to the taxonomy, i.e. its message
// is safe to show to the caller.
func IsClientError(err error) bool {
	return HTTPStatus(err) != http.StatusInternalServerError
}
