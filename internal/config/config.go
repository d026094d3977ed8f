package config

import (
	"errors"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	AppEnv  string
	AppPort string

	DBHost     string
	DBUser     string
	DBPassword string
	DBName     string
	DBPort     string
	DBSSLMode  string

	JWTSecret string
	JWTTTL    time.Duration

	StripeSecretKey     string
	StripeWebhookSecret string
	Currency            string

	PayPalClientID     string
	PayPalClientSecret string
	PayPalMode         string
	FrontendURL        string

	RedisAddr       string
	RedisPassword   string
	ProductCacheTTL time.Duration

	KafkaBrokers []string
	KafkaTopic   string

	CORSOrigins     []string
	ShutdownTimeout time.Duration
}

var ErrMissingDBHost = errors.New("DB_HOST is not set")

// LoadConfig reads .env (when present) and the process environment.
func LoadConfig() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		AppEnv:  envOrDefault("APP_ENV", "development"),
		AppPort: envOrDefault("APP_PORT", "5000"),

		DBHost:     os.Getenv("DB_HOST"),
		DBUser:     os.Getenv("DB_USER"),
		DBPassword: os.Getenv("DB_PASSWORD"),
		DBName:     os.Getenv("DB_NAME"),
		DBPort:     envOrDefault("DB_PORT", "5432"),
		DBSSLMode:  envOrDefault("DB_SSLMODE", "disable"),

		JWTSecret: os.Getenv("JWT_SECRET"),
		JWTTTL:    envDuration("JWT_TTL_HOURS", time.Hour, 30*24*time.Hour),

		StripeSecretKey:     os.Getenv("STRIPE_SECRET_KEY"),
		StripeWebhookSecret: os.Getenv("STRIPE_WEBHOOK_SECRET"),
		Currency:            envOrDefault("CURRENCY", "usd"),

		PayPalClientID:     os.Getenv("PAYPAL_CLIENT_ID"),
		PayPalClientSecret: os.Getenv("PAYPAL_CLIENT_SECRET"),
		PayPalMode:         envOrDefault("PAYPAL_MODE", "sandbox"),
		FrontendURL:        envOrDefault("FRONTEND_URL", "http://localhost:3000"),

		RedisAddr:       os.Getenv("REDIS_ADDR"),
		RedisPassword:   os.Getenv("REDIS_PASSWORD"),
		ProductCacheTTL: envDuration("PRODUCT_CACHE_TTL_SECONDS", time.Second, 5*time.Minute),

		KafkaBrokers: splitCSV(os.Getenv("KAFKA_BROKERS")),
		KafkaTopic:   envOrDefault("KAFKA_TOPIC", "storefront.orders"),

		CORSOrigins:     splitCSV(envOrDefault("CORS_ORIGINS", "http://localhost:3000")),
		ShutdownTimeout: envDuration("SHUTDOWN_TIMEOUT_SECONDS", time.Second, 10*time.Second),
	}

	if cfg.DBHost == "" {
		return nil, ErrMissingDBHost
	}

	return cfg, nil
}

func (c *Config) IsProduction() bool {
	return c.AppEnv == "production"
}

func envOrDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func envDuration(key string, unit, def time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		n, err := strconv.Atoi(v)
		if err == nil && n > 0 {
			return time.Duration(n) * unit
		}
	}
	return def
}

func splitCSV(s string) []string {
	out := []string{}
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part != "" {
			out = append(out, part)
		}
	}
	return out
}
