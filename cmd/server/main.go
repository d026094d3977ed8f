package main

import (
	"context"
	"database/sql"
	"errors"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"storefront-be/internal/auth"
	"storefront-be/internal/cart"
	"storefront-be/internal/config"
	"storefront-be/internal/db"
	"storefront-be/internal/events"
	"storefront-be/internal/handler"
	"storefront-be/internal/logger"
	"storefront-be/internal/metrics"
	"storefront-be/internal/middleware"
	"storefront-be/internal/order"
	"storefront-be/internal/payment"
	"storefront-be/internal/product"
	"storefront-be/internal/user"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

func main() {
	migrateFirst := flag.Bool("migrate", false, "apply pending migrations before serving")
	flag.Parse()

	cfg, err := config.LoadConfig()
	if err != nil {
		logger.L().Fatal("failed to load config", zap.Error(err))
	}
	logger.Init(cfg.AppEnv)
	defer logger.Sync()

	if err := run(cfg, *migrateFirst); err != nil {
		logger.L().Error("server exited", zap.Error(err))
		logger.Sync()
		os.Exit(1)
	}
}

func run(cfg *config.Config, migrateFirst bool) error {
	log := logger.L()

	if cfg.JWTSecret == "" {
		return errMissingJWTSecret
	}

	// prices go out as JSON numbers
	decimal.MarshalJSONWithoutQuotes = true

	if migrateFirst {
		// the migrator closes the connection it is given
		conn, err := db.NewDatabase(cfg)
		if err != nil {
			return err
		}
		if err := db.Migrate(conn, db.MigrateUp); err != nil {
			return err
		}
	}

	database, err := db.NewDatabase(cfg)
	if err != nil {
		return err
	}
	defer database.Close()

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.New(reg)

	cache, closeCache := newProductCache(cfg)
	defer closeCache()

	publisher := newPublisher(cfg)
	defer publisher.Close()

	tokens := auth.NewTokenManager(cfg.JWTSecret, cfg.JWTTTL)
	limiter := middleware.NewRateLimiter()
	defer limiter.Stop()

	app := buildServices(cfg, database, cache, publisher, tokens, m)

	srv := &http.Server{
		Addr: ":" + cfg.AppPort,
		Handler: handler.NewRouter(handler.Deps{
			Products:    app.products,
			Cart:        app.cart,
			Orders:      app.orders,
			Payments:    app.payments,
			Users:       app.users,
			Tokens:      tokens,
			Limiter:     limiter,
			Metrics:     m,
			Gatherer:    reg,
			DB:          database,
			CORSOrigins: cfg.CORSOrigins,
			Production:  cfg.IsProduction(),
			TokenTTL:    cfg.JWTTTL,
		}),
		ReadHeaderTimeout: 10 * time.Second,
	}

	serverErr := make(chan error, 1)
	go func() {
		log.Info("starting http server", zap.String("addr", srv.Addr), zap.String("env", cfg.AppEnv))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	stopCh := make(chan os.Signal, 1)
	signal.Notify(stopCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-stopCh:
		log.Info("received signal, shutting down", zap.String("signal", sig.String()))
	case err := <-serverErr:
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Error("graceful shutdown failed", zap.Error(err))
		return err
	}
	log.Info("server stopped")
	return nil
}

var errMissingJWTSecret = errors.New("JWT_SECRET is not set")

type services struct {
	products product.Service
	cart     cart.Service
	orders   order.Service
	payments payment.Service
	users    user.Service
}

func buildServices(
	cfg *config.Config,
	database *sql.DB,
	cache product.Cache,
	publisher events.Publisher,
	tokens *auth.TokenManager,
	m *metrics.Metrics,
) services {
	productSvc := product.NewService(product.NewRepository(database), cache)
	cartSvc := cart.NewService(cart.NewRepository(database), productSvc)
	orderSvc := order.NewService(order.NewRepository(database), publisher, productSvc, m)

	card, wallet := newGateways(cfg)
	paymentSvc := payment.NewService(payment.NewRepository(database), orderSvc, card, wallet, payment.Options{
		Currency:    cfg.Currency,
		FrontendURL: cfg.FrontendURL,
	})

	return services{
		products: productSvc,
		cart:     cartSvc,
		orders:   orderSvc,
		payments: paymentSvc,
		users:    user.NewService(user.NewRepository(database), tokens),
	}
}

// newGateways leaves a provider nil when its credentials are missing; the
// payment service answers those routes with a provider-disabled error.
func newGateways(cfg *config.Config) (payment.CardGateway, payment.WalletGateway) {
	var (
		card   payment.CardGateway
		wallet payment.WalletGateway
	)
	if cfg.StripeSecretKey != "" {
		card = payment.NewStripeGateway(cfg.StripeSecretKey, cfg.StripeWebhookSecret)
		if cfg.StripeWebhookSecret == "" {
			logger.L().Warn("stripe webhook secret not set; card webhooks will be rejected")
		}
	} else {
		logger.L().Warn("stripe not configured; card payments disabled")
	}

	if cfg.PayPalClientID != "" && cfg.PayPalClientSecret != "" {
		gw, err := payment.NewPayPalGateway(cfg.PayPalClientID, cfg.PayPalClientSecret, cfg.PayPalMode)
		if err != nil {
			logger.L().Error("paypal client init failed; wallet payments disabled", zap.Error(err))
		} else {
			wallet = gw
		}
	} else {
		logger.L().Warn("paypal not configured; wallet payments disabled")
	}
	return card, wallet
}

func newProductCache(cfg *config.Config) (product.Cache, func()) {
	if cfg.RedisAddr == "" {
		return product.NewNoopCache(), func() {}
	}

	client := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		// reads fall through to postgres until redis comes back
		logger.L().Warn("redis unreachable at startup", zap.String("addr", cfg.RedisAddr), zap.Error(err))
	}

	return product.NewRedisCache(client, cfg.ProductCacheTTL), func() { _ = client.Close() }
}

func newPublisher(cfg *config.Config) events.Publisher {
	if len(cfg.KafkaBrokers) == 0 {
		return events.NewNoopPublisher()
	}
	logger.L().Info("publishing order events",
		zap.Strings("brokers", cfg.KafkaBrokers),
		zap.String("topic", cfg.KafkaTopic),
	)
	return events.NewKafkaPublisher(cfg.KafkaBrokers, cfg.KafkaTopic)
}
