package webhook

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"storefront-be/internal/order"
	"storefront-be/internal/payment"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

type MockPaymentService struct{ mock.Mock }

func (m *MockPaymentService) CreateCardIntent(ctx context.Context, userID uint, orderID string) (*payment.CardIntentResult, error) {
	args := m.Called(ctx, userID, orderID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*payment.CardIntentResult), args.Error(1)
}

func (m *MockPaymentService) HandleCardWebhook(ctx context.Context, payload []byte, sigHeader string) error {
	return m.Called(ctx, payload, sigHeader).Error(0)
}

func (m *MockPaymentService) CreateWalletPayment(ctx context.Context, userID uint, orderID string) (*payment.WalletPaymentResult, error) {
	args := m.Called(ctx, userID, orderID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*payment.WalletPaymentResult), args.Error(1)
}

func (m *MockPaymentService) ExecuteWalletPayment(ctx context.Context, userID uint, input payment.ExecuteWalletInput) (*payment.ExecuteWalletResult, error) {
	args := m.Called(ctx, userID, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*payment.ExecuteWalletResult), args.Error(1)
}

func TestHandler_CardWebhookHandler(t *testing.T) {
	body := []byte(`{"id":"evt_1","type":"payment_intent.succeeded"}`)
	sig := "t=1700000000,v1=deadbeef"

	newRequest := func() *http.Request {
		req := httptest.NewRequest(http.MethodPost, "/api/payments/card/webhook", bytes.NewReader(body))
		req.Header.Set("Stripe-Signature", sig)
		return req
	}

	tests := []struct {
		name       string
		svcErr     error
		wantStatus int
		wantKey    string
	}{
		{"Success", nil, http.StatusOK, "received"},
		{"InvalidSignature", payment.ErrInvalidSignature, http.StatusBadRequest, "message"},
		{"OrderNotFound", order.ErrOrderNotFound, http.StatusNotFound, "message"},
		{"MethodMismatch", order.ErrPaymentMethodMismatch, http.StatusBadRequest, "message"},
		{"InternalError", errors.New("db down"), http.StatusInternalServerError, "message"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := new(MockPaymentService)
			svc.On("HandleCardWebhook", mock.Anything, body, sig).Return(tt.svcErr)

			h := NewWebhookHandler(svc)
			w := httptest.NewRecorder()
			h.CardWebhookHandler(w, newRequest())

			assert.Equal(t, tt.wantStatus, w.Code)

			var resp map[string]any
			assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
			assert.Contains(t, resp, tt.wantKey)
			svc.AssertExpectations(t)
		})
	}

	t.Run("InternalErrorIsNotLeaked", func(t *testing.T) {
		svc := new(MockPaymentService)
		svc.On("HandleCardWebhook", mock.Anything, body, sig).Return(errors.New("pq: connection refused"))

		w := httptest.NewRecorder()
		NewWebhookHandler(svc).CardWebhookHandler(w, newRequest())

		assert.NotContains(t, w.Body.String(), "pq:")
	})
}
