package handler

import (
	"net/http"
	"time"

	"storefront-be/internal/auth"
	"storefront-be/internal/cart"
	"storefront-be/internal/logger"
	"storefront-be/internal/metrics"
	"storefront-be/internal/middleware"
	"storefront-be/internal/order"
	"storefront-be/internal/payment"
	"storefront-be/internal/payment/webhook"
	"storefront-be/internal/product"
	"storefront-be/internal/user"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
)

type Deps struct {
	Products product.Service
	Cart     cart.Service
	Orders   order.Service
	Payments payment.Service
	Users    user.Service

	Tokens   *auth.TokenManager
	Limiter  *middleware.RateLimiter
	Metrics  *metrics.Metrics
	Gatherer prometheus.Gatherer
	DB       Pinger

	CORSOrigins []string
	Production  bool
	TokenTTL    time.Duration
}

// NewRouter builds the API. Request id, access log, token parsing and rate
// limiting wrap the gin engine as plain net/http middleware.
func NewRouter(d Deps) http.Handler {
	if d.Production {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(cors.New(cors.Config{
		AllowOrigins:     d.CORSOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization", "X-Device-ID", "Stripe-Signature"},
		ExposeHeaders:    []string{"Content-Length", "X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))
	if d.Metrics != nil {
		r.Use(d.Metrics.Middleware())
	}

	registerRoutes(r, d)

	var h http.Handler = r
	if d.Limiter != nil {
		h = d.Limiter.Middleware(h)
	}
	h = middleware.AuthMiddleware(d.Tokens)(h)
	h = logger.LoggingMiddleware(h)
	h = logger.RequestIDMiddleware(h)
	return h
}

func registerRoutes(r *gin.Engine, d Deps) {
	products := &productHandler{svc: d.Products}
	carts := &cartHandler{svc: d.Cart}
	orders := &orderHandler{svc: d.Orders}
	payments := &paymentHandler{svc: d.Payments}
	users := &userHandler{
		svc:          d.Users,
		secureCookie: d.Production,
		cookieMaxAge: int(d.TokenTTL / time.Second),
	}
	hooks := webhook.NewWebhookHandler(d.Payments)

	if d.Gatherer != nil {
		r.GET("/metrics", gin.WrapH(metrics.Handler(d.Gatherer)))
	}

	api := r.Group("/api")
	{
		api.GET("/health", healthHandler(d.DB))

		authGroup := api.Group("/auth")
		{
			authGroup.POST("/register", users.register)
			authGroup.POST("/login", users.login)
			authGroup.GET("/me", requireUser(), users.me)
			authGroup.PUT("/profile", requireUser(), users.updateProfile)
		}

		productGroup := api.Group("/products")
		{
			productGroup.GET("", products.list)
			productGroup.GET("/featured", products.featured)
			productGroup.GET("/:id", products.get)
			productGroup.POST("", requireAdmin(), products.create)
			productGroup.PUT("/:id", requireAdmin(), products.update)
			productGroup.DELETE("/:id", requireAdmin(), products.delete)
		}

		cartGroup := api.Group("/cart", requireUser())
		{
			cartGroup.GET("", carts.get)
			cartGroup.POST("", carts.add)
			cartGroup.DELETE("", carts.clear)
			cartGroup.PUT("/:itemId", carts.update)
			cartGroup.DELETE("/:itemId", carts.remove)
		}

		orderGroup := api.Group("/orders", requireUser())
		{
			orderGroup.POST("", orders.create)
			orderGroup.GET("/myorders", orders.mine)
			orderGroup.GET("/all", requireAdmin(), orders.all)
			orderGroup.GET("/:id", orders.get)
			orderGroup.PUT("/:id/status", requireAdmin(), orders.updateStatus)
			orderGroup.PUT("/:id/confirm-gpay", orders.confirmWalletQR)
		}

		paymentGroup := api.Group("/payments")
		{
			// signed by the provider, not by a user token
			paymentGroup.POST("/card/webhook", gin.WrapF(hooks.CardWebhookHandler))

			paymentGroup.POST("/card/create-intent", requireUser(), payments.createCardIntent)
			paymentGroup.POST("/wallet/create", requireUser(), payments.createWalletPayment)
			paymentGroup.POST("/wallet/execute", requireUser(), payments.executeWalletPayment)
		}
	}
}
