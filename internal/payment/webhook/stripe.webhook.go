package webhook

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"storefront-be/internal/apperror"
	"storefront-be/internal/logger"
	"storefront-be/internal/payment"

	"go.uber.org/zap"
)

const maxPayloadBytes = 64 << 10

// Handler receives card processor callbacks. It needs the raw body for
// signature verification, so it is mounted outside JSON binding.
type Handler struct {
	PaymentSvc payment.Service
}

func NewWebhookHandler(paymentSvc payment.Service) *Handler {
	return &Handler{PaymentSvc: paymentSvc}
}

func (h *Handler) CardWebhookHandler(w http.ResponseWriter, r *http.Request) {
	log := logger.FromCtx(r.Context()).With(zap.String("handler", "CardWebhook"))

	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxPayloadBytes))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]any{"message": "failed to read body"})
		return
	}
	defer r.Body.Close()

	err = h.PaymentSvc.HandleCardWebhook(r.Context(), body, r.Header.Get("Stripe-Signature"))
	switch {
	case err == nil:
		writeJSON(w, http.StatusOK, map[string]any{"received": true})
	case errors.Is(err, payment.ErrInvalidSignature):
		log.Warn("webhook signature rejected")
		writeJSON(w, http.StatusBadRequest, map[string]any{"message": "Webhook Error: " + err.Error()})
	case apperror.IsClientError(err):
		writeJSON(w, apperror.HTTPStatus(err), map[string]any{"message": err.Error()})
	default:
		log.Error("webhook processing failed", zap.Error(err))
		writeJSON(w, http.StatusInternalServerError, map[string]any{"message": "webhook processing failed"})
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
