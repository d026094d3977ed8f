package payment

import "storefront-be/internal/apperror"

var (
	ErrInvalidSignature = apperror.New(apperror.ErrValidation, "webhook signature verification failed")
	ErrProviderFailed   = apperror.New(apperror.ErrProvider, "payment provider request failed")
	ErrMissingOrderID   = apperror.New(apperror.ErrValidation, "orderId is required")
	ErrMissingPayment   = apperror.New(apperror.ErrValidation, "paymentId and payerId are required")
	ErrProviderDisabled = apperror.New(apperror.ErrProvider, "payment provider is not configured")

	ErrPaymentNotForOrder = apperror.New(apperror.ErrInvalidState, "payment does not belong to this order")
	ErrPaymentIncomplete  = apperror.New(apperror.ErrProvider, "payment was not completed by the provider")
)
