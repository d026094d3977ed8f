package handler

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"storefront-be/internal/auth"
	"storefront-be/internal/cart"
	"storefront-be/internal/metrics"
	"storefront-be/internal/order"
	"storefront-be/internal/payment"
	"storefront-be/internal/product"
	"storefront-be/internal/user"
	"storefront-be/internal/utils"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

const orderID = "7f1a4c8e-0f4e-4c63-9d0e-3b1c2a7e9f10"

type testEnv struct {
	products *MockProductService
	carts    *MockCartService
	orders   *MockOrderService
	payments *MockPaymentService
	users    *MockUserService
	tokens   *auth.TokenManager
	handler  http.Handler
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)

	env := &testEnv{
		products: new(MockProductService),
		carts:    new(MockCartService),
		orders:   new(MockOrderService),
		payments: new(MockPaymentService),
		users:    new(MockUserService),
		tokens:   auth.NewTokenManager("test-secret", time.Hour),
	}

	reg := prometheus.NewRegistry()
	env.handler = NewRouter(Deps{
		Products:    env.products,
		Cart:        env.carts,
		Orders:      env.orders,
		Payments:    env.payments,
		Users:       env.users,
		Tokens:      env.tokens,
		Metrics:     metrics.New(reg),
		Gatherer:    reg,
		DB:          fakePinger{},
		CORSOrigins: []string{"http://localhost:3000"},
		TokenTTL:    time.Hour,
	})
	return env
}

func (e *testEnv) token(t *testing.T, userID uint, role string) string {
	t.Helper()
	tok, err := e.tokens.Generate(userID, "someone@example.com", role)
	require.NoError(t, err)
	return tok
}

func (e *testEnv) do(method, path string, body any, token string) *httptest.ResponseRecorder {
	var r io.Reader
	if body != nil {
		b, _ := json.Marshal(body)
		r = bytes.NewReader(b)
	}
	req := httptest.NewRequest(method, path, r)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	e.handler.ServeHTTP(w, req)
	return w
}

func decodeMessage(t *testing.T, w *httptest.ResponseRecorder) string {
	t.Helper()
	var body map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	msg, _ := body["message"].(string)
	return msg
}

func TestHealth(t *testing.T) {
	env := newTestEnv(t)

	w := env.do(http.MethodGet, "/api/health", nil, "")

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Connected")
	assert.NotEmpty(t, w.Header().Get("X-Request-ID"))
}

func TestHealth_DatabaseDown(t *testing.T) {
	gin.SetMode(gin.TestMode)
	h := NewRouter(Deps{
		Tokens: auth.NewTokenManager("test-secret", time.Hour),
		DB:     fakePinger{err: errors.New("connection refused")},
	})

	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/health", nil))

	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}

func TestGuards(t *testing.T) {
	env := newTestEnv(t)

	t.Run("AnonymousCart", func(t *testing.T) {
		w := env.do(http.MethodGet, "/api/cart", nil, "")
		assert.Equal(t, http.StatusUnauthorized, w.Code)
		assert.Equal(t, "not authorized, no token", decodeMessage(t, w))
	})

	t.Run("UserCreatingProduct", func(t *testing.T) {
		w := env.do(http.MethodPost, "/api/products", map[string]any{"name": "x"}, env.token(t, 2, utils.RoleUser))
		assert.Equal(t, http.StatusForbidden, w.Code)
		env.products.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})

	t.Run("UserListingAllOrders", func(t *testing.T) {
		w := env.do(http.MethodGet, "/api/orders/all", nil, env.token(t, 2, utils.RoleUser))
		assert.Equal(t, http.StatusForbidden, w.Code)
	})

	t.Run("BadTokenOnProtectedRoute", func(t *testing.T) {
		w := env.do(http.MethodGet, "/api/cart", nil, "garbage")
		assert.Equal(t, http.StatusUnauthorized, w.Code)
		assert.Equal(t, "not authorized, no token", decodeMessage(t, w))
	})
}

func TestProducts(t *testing.T) {
	t.Run("ListParsesQuery", func(t *testing.T) {
		env := newTestEnv(t)
		env.products.On("List", mock.Anything, mock.MatchedBy(func(o product.ListOptions) bool {
			return o.Category == product.CategoryPants &&
				o.Search == "blue" &&
				o.Page == 2 &&
				o.Limit == product.DefaultPageLimit &&
				o.Sort == "price" &&
				o.MinPrice != nil && o.MinPrice.Equal(decimal.NewFromInt(10)) &&
				o.MaxPrice == nil
		})).Return(&product.ListResult{Products: []product.Product{}, Page: 2, Pages: 3, Total: 30}, nil)

		w := env.do(http.MethodGet, "/api/products?category=pants&search=blue&page=2&sort=price&minPrice=10", nil, "")

		assert.Equal(t, http.StatusOK, w.Code)
		env.products.AssertExpectations(t)
	})

	t.Run("ListRejectsBadPrice", func(t *testing.T) {
		env := newTestEnv(t)
		w := env.do(http.MethodGet, "/api/products?maxPrice=cheap", nil, "")
		assert.Equal(t, http.StatusBadRequest, w.Code)
		env.products.AssertNotCalled(t, "List", mock.Anything, mock.Anything)
	})

	t.Run("GetNotFound", func(t *testing.T) {
		env := newTestEnv(t)
		env.products.On("GetByID", mock.Anything, "missing").Return(nil, product.ErrProductNotFound)

		w := env.do(http.MethodGet, "/api/products/missing", nil, "")

		assert.Equal(t, http.StatusNotFound, w.Code)
		assert.Equal(t, "product not found", decodeMessage(t, w))
	})

	t.Run("FeaturedIsNotAnID", func(t *testing.T) {
		env := newTestEnv(t)
		env.products.On("GetFeatured", mock.Anything).Return([]product.Product{}, nil)

		w := env.do(http.MethodGet, "/api/products/featured", nil, "")

		assert.Equal(t, http.StatusOK, w.Code)
		env.products.AssertNotCalled(t, "GetByID", mock.Anything, mock.Anything)
	})

	t.Run("AdminCreate", func(t *testing.T) {
		env := newTestEnv(t)
		env.products.On("Create", mock.Anything, mock.MatchedBy(func(in product.ProductInput) bool {
			return in.SKU == "ts-001" && in.Name == "Tee"
		})).Return(&product.Product{ID: "p1", SKU: "TS-001", Name: "Tee"}, nil)

		w := env.do(http.MethodPost, "/api/products", map[string]any{
			"sku": "ts-001", "name": "Tee", "price": "20", "category": "t-shirts",
		}, env.token(t, 1, utils.RoleAdmin))

		assert.Equal(t, http.StatusCreated, w.Code)
	})

	t.Run("DuplicateSKU", func(t *testing.T) {
		env := newTestEnv(t)
		env.products.On("Create", mock.Anything, mock.Anything).Return(nil, product.ErrDuplicateSKU)

		w := env.do(http.MethodPost, "/api/products", map[string]any{"sku": "ts-001"}, env.token(t, 1, utils.RoleAdmin))

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, "product id already exists", decodeMessage(t, w))
	})

	t.Run("AdminDelete", func(t *testing.T) {
		env := newTestEnv(t)
		env.products.On("Delete", mock.Anything, "p1").Return(nil)

		w := env.do(http.MethodDelete, "/api/products/p1", nil, env.token(t, 1, utils.RoleAdmin))

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "Product removed", decodeMessage(t, w))
	})
}

func TestCart(t *testing.T) {
	t.Run("Add", func(t *testing.T) {
		env := newTestEnv(t)
		in := cart.AddToCartInput{ProductID: "p1", Quantity: 2, Size: "M", Color: "black"}
		env.carts.On("AddToCart", mock.Anything, uint(5), in).Return(&cart.Cart{UserID: 5, Items: []cart.CartItem{}}, nil)

		w := env.do(http.MethodPost, "/api/cart", in, env.token(t, 5, utils.RoleUser))

		assert.Equal(t, http.StatusOK, w.Code)
		env.carts.AssertExpectations(t)
	})

	t.Run("AddInsufficientStock", func(t *testing.T) {
		env := newTestEnv(t)
		env.carts.On("AddToCart", mock.Anything, uint(5), mock.Anything).Return(nil, cart.ErrInsufficientStock)

		w := env.do(http.MethodPost, "/api/cart", map[string]any{"productId": "p1", "quantity": 99}, env.token(t, 5, utils.RoleUser))

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("UpdateQuantity", func(t *testing.T) {
		env := newTestEnv(t)
		env.carts.On("UpdateCartItem", mock.Anything, uint(5), "item-1", 3).Return(&cart.Cart{}, nil)

		w := env.do(http.MethodPut, "/api/cart/item-1", map[string]any{"quantity": 3}, env.token(t, 5, utils.RoleUser))

		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("Remove", func(t *testing.T) {
		env := newTestEnv(t)
		env.carts.On("RemoveFromCart", mock.Anything, uint(5), "item-1").Return(&cart.Cart{}, nil)

		w := env.do(http.MethodDelete, "/api/cart/item-1", nil, env.token(t, 5, utils.RoleUser))

		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("Clear", func(t *testing.T) {
		env := newTestEnv(t)
		env.carts.On("ClearCart", mock.Anything, uint(5)).Return(nil)

		w := env.do(http.MethodDelete, "/api/cart", nil, env.token(t, 5, utils.RoleUser))

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "Cart cleared", decodeMessage(t, w))
	})

	t.Run("MalformedBody", func(t *testing.T) {
		env := newTestEnv(t)
		req := httptest.NewRequest(http.MethodPost, "/api/cart", bytes.NewBufferString("{"))
		req.Header.Set("Authorization", "Bearer "+env.token(t, 5, utils.RoleUser))
		w := httptest.NewRecorder()

		env.handler.ServeHTTP(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestOrders(t *testing.T) {
	t.Run("Create", func(t *testing.T) {
		env := newTestEnv(t)
		in := order.CreateOrderInput{
			ShippingAddress: order.ShippingAddress{Address: "1 Main", City: "Springfield", PostalCode: "12345", Country: "US"},
			PaymentMethod:   order.PaymentCOD,
		}
		env.orders.On("CreateOrder", mock.Anything, uint(5), in).Return(&order.Order{ID: orderID, UserID: 5}, nil)

		w := env.do(http.MethodPost, "/api/orders", in, env.token(t, 5, utils.RoleUser))

		assert.Equal(t, http.StatusCreated, w.Code)
	})

	t.Run("CreateEmptyCart", func(t *testing.T) {
		env := newTestEnv(t)
		env.orders.On("CreateOrder", mock.Anything, uint(5), mock.Anything).Return(nil, order.ErrEmptyCart)

		w := env.do(http.MethodPost, "/api/orders", map[string]any{"paymentMethod": "cod"}, env.token(t, 5, utils.RoleUser))

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, "no order items", decodeMessage(t, w))
	})

	t.Run("GetForbidden", func(t *testing.T) {
		env := newTestEnv(t)
		env.orders.On("GetOrder", mock.Anything, order.Requester{UserID: 6}, orderID).Return(nil, order.ErrNotOrderOwner)

		w := env.do(http.MethodGet, "/api/orders/"+orderID, nil, env.token(t, 6, utils.RoleUser))

		assert.Equal(t, http.StatusForbidden, w.Code)
	})

	t.Run("MyOrdersIsNotAnID", func(t *testing.T) {
		env := newTestEnv(t)
		env.orders.On("GetMyOrders", mock.Anything, uint(5)).Return([]order.Order{}, nil)

		w := env.do(http.MethodGet, "/api/orders/myorders", nil, env.token(t, 5, utils.RoleUser))

		assert.Equal(t, http.StatusOK, w.Code)
		env.orders.AssertNotCalled(t, "GetOrder", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("AdminListAll", func(t *testing.T) {
		env := newTestEnv(t)
		env.orders.On("GetAllOrders", mock.Anything, order.Requester{UserID: 1, IsAdmin: true}).Return([]order.Order{}, nil)

		w := env.do(http.MethodGet, "/api/orders/all", nil, env.token(t, 1, utils.RoleAdmin))

		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("AdminUpdateStatus", func(t *testing.T) {
		env := newTestEnv(t)
		env.orders.On("UpdateOrderStatus", mock.Anything, order.Requester{UserID: 1, IsAdmin: true}, orderID, order.StatusDelivered).
			Return(&order.Order{ID: orderID, Status: order.StatusDelivered, IsDelivered: true}, nil)

		w := env.do(http.MethodPut, "/api/orders/"+orderID+"/status", map[string]any{"status": "delivered"}, env.token(t, 1, utils.RoleAdmin))

		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("ConfirmWalletQRWrongMethod", func(t *testing.T) {
		env := newTestEnv(t)
		env.orders.On("ConfirmWalletQR", mock.Anything, uint(5), orderID).Return(nil, order.ErrPaymentMethodMismatch)

		w := env.do(http.MethodPut, "/api/orders/"+orderID+"/confirm-gpay", nil, env.token(t, 5, utils.RoleUser))

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("InternalErrorIsMasked", func(t *testing.T) {
		env := newTestEnv(t)
		env.orders.On("GetMyOrders", mock.Anything, uint(5)).Return(nil, errors.New("pq: relation does not exist"))

		w := env.do(http.MethodGet, "/api/orders/myorders", nil, env.token(t, 5, utils.RoleUser))

		assert.Equal(t, http.StatusInternalServerError, w.Code)
		assert.Equal(t, "internal server error", decodeMessage(t, w))
	})
}

func TestPayments(t *testing.T) {
	t.Run("CreateCardIntent", func(t *testing.T) {
		env := newTestEnv(t)
		env.payments.On("CreateCardIntent", mock.Anything, uint(5), orderID).
			Return(&payment.CardIntentResult{ClientSecret: "pi_secret", PaymentIntentID: "pi_1"}, nil)

		w := env.do(http.MethodPost, "/api/payments/card/create-intent", map[string]any{"orderId": orderID}, env.token(t, 5, utils.RoleUser))

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), `"clientSecret":"pi_secret"`)
	})

	t.Run("CardIntentRequiresUser", func(t *testing.T) {
		env := newTestEnv(t)
		w := env.do(http.MethodPost, "/api/payments/card/create-intent", map[string]any{"orderId": orderID}, "")
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("WebhookPassesRawBody", func(t *testing.T) {
		env := newTestEnv(t)
		raw := []byte(`{"id":"evt_1","type":"payment_intent.succeeded"}`)
		env.payments.On("HandleCardWebhook", mock.Anything, raw, "t=1,v1=sig").Return(nil)

		req := httptest.NewRequest(http.MethodPost, "/api/payments/card/webhook", bytes.NewReader(raw))
		req.Header.Set("Stripe-Signature", "t=1,v1=sig")
		w := httptest.NewRecorder()
		env.handler.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.JSONEq(t, `{"received":true}`, w.Body.String())
	})

	t.Run("WalletCreateProviderFailure", func(t *testing.T) {
		env := newTestEnv(t)
		env.payments.On("CreateWalletPayment", mock.Anything, uint(5), orderID).Return(nil, payment.ErrProviderFailed)

		w := env.do(http.MethodPost, "/api/payments/wallet/create", map[string]any{"orderId": orderID}, env.token(t, 5, utils.RoleUser))

		assert.Equal(t, http.StatusBadGateway, w.Code)
	})

	t.Run("WalletExecute", func(t *testing.T) {
		env := newTestEnv(t)
		in := payment.ExecuteWalletInput{OrderID: orderID, PaymentID: "PAY-1", PayerID: "PAYER-9"}
		env.payments.On("ExecuteWalletPayment", mock.Anything, uint(5), in).
			Return(&payment.ExecuteWalletResult{Success: true, Order: &order.Order{ID: orderID, IsPaid: true}}, nil)

		w := env.do(http.MethodPost, "/api/payments/wallet/execute", in, env.token(t, 5, utils.RoleUser))

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), `"success":true`)
	})
}

func TestAuthRoutes(t *testing.T) {
	t.Run("RegisterSetsCookie", func(t *testing.T) {
		env := newTestEnv(t)
		in := user.RegisterInput{Name: "Jane", Email: "jane@example.com", Password: "password123"}
		env.users.On("Register", mock.Anything, in).
			Return(&user.AuthResponse{ID: 3, Name: "Jane", Email: "jane@example.com", Role: utils.RoleUser, Token: "tok"}, nil)

		w := env.do(http.MethodPost, "/api/auth/register", in, "")

		assert.Equal(t, http.StatusCreated, w.Code)
		assert.Contains(t, w.Header().Get("Set-Cookie"), auth.AccessTokenCookie+"=tok")
		assert.Contains(t, w.Header().Get("Set-Cookie"), "HttpOnly")
	})

	t.Run("LoginInvalidCredentials", func(t *testing.T) {
		env := newTestEnv(t)
		env.users.On("Login", mock.Anything, mock.Anything).Return(nil, user.ErrInvalidCredentials)

		w := env.do(http.MethodPost, "/api/auth/login", map[string]any{"email": "a@b.com", "password": "x"}, "")

		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("StaleTokenStillReachesPublicRoutes", func(t *testing.T) {
		env := newTestEnv(t)
		stale, err := auth.NewTokenManager("rotated-secret", time.Hour).Generate(3, "jane@example.com", utils.RoleUser)
		require.NoError(t, err)

		in := user.LoginInput{Email: "jane@example.com", Password: "password123"}
		env.users.On("Login", mock.Anything, in).
			Return(&user.AuthResponse{ID: 3, Name: "Jane", Email: "jane@example.com", Role: utils.RoleUser, Token: "fresh"}, nil)
		env.products.On("List", mock.Anything, mock.Anything).
			Return(&product.ListResult{Products: []product.Product{}, Page: 1, Pages: 1}, nil)

		w := env.do(http.MethodPost, "/api/auth/login", in, stale)
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Header().Get("Set-Cookie"), auth.AccessTokenCookie+"=fresh")

		w = env.do(http.MethodGet, "/api/products", nil, stale)
		assert.Equal(t, http.StatusOK, w.Code)

		w = env.do(http.MethodGet, "/api/orders/myorders", nil, stale)
		assert.Equal(t, http.StatusUnauthorized, w.Code)
		env.users.AssertExpectations(t)
	})

	t.Run("Me", func(t *testing.T) {
		env := newTestEnv(t)
		env.users.On("GetMe", mock.Anything, uint(3)).Return(&user.User{ID: 3, Name: "Jane", PasswordHash: "secret-hash"}, nil)

		w := env.do(http.MethodGet, "/api/auth/me", nil, env.token(t, 3, utils.RoleUser))

		assert.Equal(t, http.StatusOK, w.Code)
		assert.NotContains(t, w.Body.String(), "secret-hash")
	})
}

func TestMetricsEndpoint(t *testing.T) {
	env := newTestEnv(t)
	env.do(http.MethodGet, "/api/health", nil, "")

	w := env.do(http.MethodGet, "/metrics", nil, "")

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "storefront_http_requests_total")
}
