package handler

import (
	"context"

	"storefront-be/internal/cart"
	"storefront-be/internal/order"
	"storefront-be/internal/payment"
	"storefront-be/internal/product"
	"storefront-be/internal/user"

	"github.com/stretchr/testify/mock"
)

type MockProductService struct{ mock.Mock }

func (m *MockProductService) List(ctx context.Context, opts product.ListOptions) (*product.ListResult, error) {
	args := m.Called(ctx, opts)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*product.ListResult), args.Error(1)
}

func (m *MockProductService) GetFeatured(ctx context.Context) ([]product.Product, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]product.Product), args.Error(1)
}

func (m *MockProductService) GetByID(ctx context.Context, id string) (*product.Product, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*product.Product), args.Error(1)
}

func (m *MockProductService) Create(ctx context.Context, input product.ProductInput) (*product.Product, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*product.Product), args.Error(1)
}

func (m *MockProductService) Update(ctx context.Context, id string, input product.UpdateProductInput) (*product.Product, error) {
	args := m.Called(ctx, id, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*product.Product), args.Error(1)
}

func (m *MockProductService) Delete(ctx context.Context, id string) error {
	return m.Called(ctx, id).Error(0)
}

func (m *MockProductService) InvalidateCache(ctx context.Context, ids ...string) {
	m.Called(ctx, ids)
}

type MockCartService struct{ mock.Mock }

func (m *MockCartService) GetCart(ctx context.Context, userID uint) (*cart.Cart, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*cart.Cart), args.Error(1)
}

func (m *MockCartService) AddToCart(ctx context.Context, userID uint, input cart.AddToCartInput) (*cart.Cart, error) {
	args := m.Called(ctx, userID, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*cart.Cart), args.Error(1)
}

func (m *MockCartService) UpdateCartItem(ctx context.Context, userID uint, itemID string, quantity int) (*cart.Cart, error) {
	args := m.Called(ctx, userID, itemID, quantity)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*cart.Cart), args.Error(1)
}

func (m *MockCartService) RemoveFromCart(ctx context.Context, userID uint, itemID string) (*cart.Cart, error) {
	args := m.Called(ctx, userID, itemID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*cart.Cart), args.Error(1)
}

func (m *MockCartService) ClearCart(ctx context.Context, userID uint) error {
	return m.Called(ctx, userID).Error(0)
}

type MockOrderService struct{ mock.Mock }

func (m *MockOrderService) CreateOrder(ctx context.Context, userID uint, input order.CreateOrderInput) (*order.Order, error) {
	args := m.Called(ctx, userID, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*order.Order), args.Error(1)
}

func (m *MockOrderService) GetOrder(ctx context.Context, req order.Requester, id string) (*order.Order, error) {
	args := m.Called(ctx, req, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*order.Order), args.Error(1)
}

func (m *MockOrderService) GetMyOrders(ctx context.Context, userID uint) ([]order.Order, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]order.Order), args.Error(1)
}

func (m *MockOrderService) GetAllOrders(ctx context.Context, req order.Requester) ([]order.Order, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]order.Order), args.Error(1)
}

func (m *MockOrderService) UpdateOrderStatus(ctx context.Context, req order.Requester, id string, status order.Status) (*order.Order, error) {
	args := m.Called(ctx, req, id, status)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*order.Order), args.Error(1)
}

func (m *MockOrderService) ConfirmWalletQR(ctx context.Context, userID uint, id string) (*order.Order, error) {
	args := m.Called(ctx, userID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*order.Order), args.Error(1)
}

func (m *MockOrderService) GetPayableOrder(ctx context.Context, userID uint, id string, method order.PaymentMethod) (*order.Order, error) {
	args := m.Called(ctx, userID, id, method)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*order.Order), args.Error(1)
}

func (m *MockOrderService) MarkAsPaid(ctx context.Context, id string, result order.PaymentResult) (*order.Order, error) {
	args := m.Called(ctx, id, result)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*order.Order), args.Error(1)
}

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

type MockUserService struct{ mock.Mock }

func (m *MockUserService) Register(ctx context.Context, input user.RegisterInput) (*user.AuthResponse, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*user.AuthResponse), args.Error(1)
}

func (m *MockUserService) Login(ctx context.Context, input user.LoginInput) (*user.AuthResponse, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*user.AuthResponse), args.Error(1)
}

func (m *MockUserService) GetMe(ctx context.Context, userID uint) (*user.User, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*user.User), args.Error(1)
}

func (m *MockUserService) UpdateProfile(ctx context.Context, userID uint, input user.UpdateProfileInput) (*user.AuthResponse, error) {
	args := m.Called(ctx, userID, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*user.AuthResponse), args.Error(1)
}

func (m *MockUserService) PromoteToAdmin(ctx context.Context, email string) error {
	return m.Called(ctx, email).Error(0)
}

type fakePinger struct{ err error }

func (p fakePinger) PingContext(ctx context.Context) error { return p.err }
