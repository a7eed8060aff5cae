package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/dumplingcollectibles/dumpling-price-automation/internal/audit"
	"github.com/dumplingcollectibles/dumpling-price-automation/internal/config"
	"github.com/dumplingcollectibles/dumpling-price-automation/internal/database"
	"github.com/dumplingcollectibles/dumpling-price-automation/internal/database/postgres"
	"github.com/dumplingcollectibles/dumpling-price-automation/internal/logger"
	"github.com/dumplingcollectibles/dumpling-price-automation/internal/shopify"
)

// Overwrites Shopify inventory levels with the local ledger quantities for
// every synced variant. The ledger is the source of truth; run this after
// drift shows up in an audit.
func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("Configuration failed", "error", err)
		os.Exit(1)
	}
	logger.InitLogger(logger.NewConfig(cfg.LogLevel, cfg.LogFormat, "syncinventory", cfg.Version, cfg.Environment, false))

	pool, err := database.NewPool(cfg.DatabaseURL, 4, 30*time.Minute, time.Hour)
	if err != nil {
		slog.Error("Failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer pool.Close()

	client := shopify.NewClient(shopify.Config{
		ShopURL:     cfg.ShopifyShopURL,
		AccessToken: cfg.ShopifyAccessToken,
		APIVersion:  cfg.ShopifyAPIVersion,
		LocationID:  cfg.ShopifyLocationID,
		RateLimit:   cfg.ShopifyRateLimit,
		MaxAttempts: cfg.RetryMaxAttempts,
		BaseDelay:   cfg.RetryBaseDelay,
	})

	svc := audit.NewService(postgres.NewVariantRepository(pool), client)

	pushed, failed, err := svc.PushInventory(context.Background())
	if err != nil {
		slog.Error("Inventory push failed", "error", err)
		os.Exit(1)
	}

	fmt.Printf("Pushed %d inventory levels to Shopify (%d failed)\n", pushed, failed)
	if failed > 0 {
		os.Exit(1)
	}
}
