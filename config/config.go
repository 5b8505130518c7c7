package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all configuration for the storefront service. Checkout
// business policy (shipping fee, phone country code, receipt limits) is
// configuration, not hardcoded constants, so the engine can be deployed
// for a different market without code changes.
type Config struct {
	Port string
	Env  string

	CartGatewayURL  string
	OrderGatewayURL string
	GatewayTimeout  time.Duration

	// Optional last-known-good cart snapshot cache. Empty disables it.
	RedisURL    string
	SnapshotTTL time.Duration

	JWTSecret string

	// Checkout policy
	ShippingFee      float64
	PhoneCountryCode string
	ReceiptMaxBytes  int64
	SweepInterval    time.Duration

	// Order submission retry tuning
	MaxAttempts   int
	BaseDelay     time.Duration
	BackoffFactor float64
	MaxDelay      time.Duration
}

// Load reads configuration from environment variables, with .env support
// for local development.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		Port:             getEnv("PORT", "8087"),
		Env:              getEnv("APP_ENV", "development"),
		CartGatewayURL:   os.Getenv("CART_GATEWAY_URL"),
		OrderGatewayURL:  os.Getenv("ORDER_GATEWAY_URL"),
		GatewayTimeout:   getDuration("GATEWAY_TIMEOUT", 15*time.Second),
		RedisURL:         os.Getenv("REDIS_URL"),
		SnapshotTTL:      getDuration("CART_SNAPSHOT_TTL", 7*24*time.Hour),
		JWTSecret:        os.Getenv("JWT_SECRET"),
		ShippingFee:      getFloat("SHIPPING_FEE", 100),
		PhoneCountryCode: getEnv("PHONE_COUNTRY_CODE", "977"),
		ReceiptMaxBytes:  getInt64("RECEIPT_MAX_BYTES", 5<<20),
		SweepInterval:    getDuration("CART_SWEEP_INTERVAL", 5*time.Minute),
		MaxAttempts:      getIntEnv("ORDER_MAX_ATTEMPTS", 3),
		BaseDelay:        getDuration("ORDER_RETRY_BASE_DELAY", time.Second),
		BackoffFactor:    getFloat("ORDER_RETRY_BACKOFF_FACTOR", 2),
		MaxDelay:         getDuration("ORDER_RETRY_MAX_DELAY", 10*time.Second),
	}

	if cfg.CartGatewayURL == "" {
		return nil, fmt.Errorf("CART_GATEWAY_URL is required")
	}
	if cfg.OrderGatewayURL == "" {
		return nil, fmt.Errorf("ORDER_GATEWAY_URL is required")
	}
	return cfg, nil
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func getIntEnv(key string, fallback int) int {
	if val := os.Getenv(key); val != "" {
		if n, err := strconv.Atoi(val); err == nil {
			return n
		}
	}
	return fallback
}

func getInt64(key string, fallback int64) int64 {
	if val := os.Getenv(key); val != "" {
		if n, err := strconv.ParseInt(val, 10, 64); err == nil {
			return n
		}
	}
	return fallback
}

func getFloat(key string, fallback float64) float64 {
	if val := os.Getenv(key); val != "" {
		if f, err := strconv.ParseFloat(val, 64); err == nil {
			return f
		}
	}
	return fallback
}

func getDuration(key string, fallback time.Duration) time.Duration {
	if val := os.Getenv(key); val != "" {
		if d, err := time.ParseDuration(val); err == nil {
			return d
		}
	}
	return fallback
}
