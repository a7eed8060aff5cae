package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
)

// Config holds the application configuration. Every knob the core uses -
// database URL, Shopify credentials, FX rate, markup, change-gate thresholds -
// is supplied here; nothing is hardcoded in the components.
type Config struct {
	Port        int
	LogLevel    string
	LogFormat   string
	Environment string
	Version     string

	DatabaseURL string

	ShopifyShopURL       string
	ShopifyAccessToken   string
	ShopifyAPIVersion    string
	ShopifyLocationID    int64
	ShopifyWebhookSecret string

	APIKey string

	// Pricing
	FXRate decimal.Decimal // USD -> CAD
	Markup decimal.Decimal

	// Change-gate thresholds
	MinChangeDollars     decimal.Decimal
	MinChangePercent     decimal.Decimal
	NotableChangeDollars decimal.Decimal
	NotableChangePercent decimal.Decimal

	// External sync
	ShopifyRateLimit float64 // requests per second
	RetryMaxAttempts int
	RetryBaseDelay   time.Duration

	// Background work
	AuditInterval  time.Duration
	SyncWorkers    int
	SyncQueueSize  int
	RefreshWorkers int

	// PriceFilePath points at the market price snapshot used by refreshes
	PriceFilePath string
}

// Load loads the configuration from environment variables
func Load() (*Config, error) {
	// Load .env file if it exists, but don't fail if it doesn't (could be real env vars)
	_ = godotenv.Load()

	cfg := &Config{
		LogLevel:             getEnv("LOG_LEVEL", "info"),
		LogFormat:            getEnv("LOG_FORMAT", "text"),
		Environment:          getEnv("ENVIRONMENT", "dev"),
		Version:              getEnv("VERSION", "dev"),
		DatabaseURL:          getEnv("DATABASE_URL", ""),
		ShopifyShopURL:       normalizeShopURL(getEnv("SHOPIFY_SHOP_URL", "")),
		ShopifyAccessToken:   getEnv("SHOPIFY_ACCESS_TOKEN", ""),
		ShopifyAPIVersion:    getEnv("SHOPIFY_API_VERSION", "2025-01"),
		ShopifyWebhookSecret: getEnv("SHOPIFY_WEBHOOK_SECRET", ""),
		APIKey:               getEnv("API_KEY", ""),
		PriceFilePath:        getEnv("PRICE_FILE", "data/prices.json"),
	}

	var err error
	if cfg.Port, err = getEnvInt("PORT", 8080); err != nil {
		return nil, err
	}
	if cfg.ShopifyLocationID, err = getEnvInt64("SHOPIFY_LOCATION_ID", 0); err != nil {
		return nil, err
	}
	if cfg.FXRate, err = getEnvDecimal("USD_TO_CAD", "1.35"); err != nil {
		return nil, err
	}
	if cfg.Markup, err = getEnvDecimal("MARKUP", "1.10"); err != nil {
		return nil, err
	}
	if cfg.MinChangeDollars, err = getEnvDecimal("MIN_CHANGE_DOLLARS", "0.50"); err != nil {
		return nil, err
	}
	if cfg.MinChangePercent, err = getEnvDecimal("MIN_CHANGE_PERCENT", "5"); err != nil {
		return nil, err
	}
	if cfg.NotableChangeDollars, err = getEnvDecimal("BIG_CHANGE_DOLLARS", "10"); err != nil {
		return nil, err
	}
	if cfg.NotableChangePercent, err = getEnvDecimal("BIG_CHANGE_PERCENT", "20"); err != nil {
		return nil, err
	}
	if cfg.ShopifyRateLimit, err = getEnvFloat("SHOPIFY_RATE_LIMIT", 2); err != nil {
		return nil, err
	}
	if cfg.RetryMaxAttempts, err = getEnvInt("RETRY_MAX_ATTEMPTS", 4); err != nil {
		return nil, err
	}
	if cfg.RetryBaseDelay, err = getEnvDuration("RETRY_BASE_DELAY", 500*time.Millisecond); err != nil {
		return nil, err
	}
	if cfg.AuditInterval, err = getEnvDuration("AUDIT_INTERVAL", 24*time.Hour); err != nil {
		return nil, err
	}
	if cfg.SyncWorkers, err = getEnvInt("SYNC_WORKERS", 2); err != nil {
		return nil, err
	}
	if cfg.SyncQueueSize, err = getEnvInt("SYNC_QUEUE_SIZE", 256); err != nil {
		return nil, err
	}
	if cfg.RefreshWorkers, err = getEnvInt("REFRESH_WORKERS", 4); err != nil {
		return nil, err
	}

	if cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL environment variable must be set")
	}

	return cfg, nil
}

// normalizeShopURL ensures the shop URL carries an https scheme, matching how
// operators tend to paste the bare myshopify domain.
func normalizeShopURL(u string) string {
	if u == "" || strings.HasPrefix(u, "https://") {
		return u
	}
	return "https://" + u
}

// getEnv retrieves an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) (int, error) {
	raw, exists := os.LookupEnv(key)
	if !exists {
		return defaultValue, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid %s value: %w", key, err)
	}
	return v, nil
}

func getEnvInt64(key string, defaultValue int64) (int64, error) {
	raw, exists := os.LookupEnv(key)
	if !exists {
		return defaultValue, nil
	}
	v, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s value: %w", key, err)
	}
	return v, nil
}

func getEnvFloat(key string, defaultValue float64) (float64, error) {
	raw, exists := os.LookupEnv(key)
	if !exists {
		return defaultValue, nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s value: %w", key, err)
	}
	return v, nil
}

func getEnvDecimal(key, defaultValue string) (decimal.Decimal, error) {
	raw := getEnv(key, defaultValue)
	v, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.Zero, fmt.Errorf("invalid %s value: %w", key, err)
	}
	return v, nil
}

func getEnvDuration(key string, defaultValue time.Duration) (time.Duration, error) {
	raw, exists := os.LookupEnv(key)
	if !exists {
		return defaultValue, nil
	}
	v, err := time.ParseDuration(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid %s value: %w", key, err)
	}
	return v, nil
}
