package main

import (
	"context"
	"flag"
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

func main() {
	push := flag.Bool("push", false, "push local quantities to Shopify when drift is found")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("Configuration failed", "error", err)
		os.Exit(1)
	}
	logger.InitLogger(logger.NewConfig(cfg.LogLevel, cfg.LogFormat, "audit", cfg.Version, cfg.Environment, false))

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

	ctx := context.Background()
	report, err := svc.Run(ctx)
	if err != nil {
		slog.Error("Audit failed", "error", err)
		os.Exit(1)
	}

	fmt.Printf("Inventory audit %s\n", report.GeneratedAt.Format(time.RFC3339))
	fmt.Printf("  checked: %d  in sync: %d  drifted: %d  errors: %d\n",
		report.TotalChecked, report.InSync, report.Drifted, report.Errors)
	fmt.Printf("  health: %s\n", report.Health)

	if len(report.TopDrifted) > 0 {
		fmt.Println("\nLargest drifts (local vs Shopify):")
		for _, a := range report.TopDrifted {
			fmt.Printf("  %-24s %-4s local=%-4d shopify=%-4d delta=%+d\n",
				a.CardName, a.Condition, a.LocalQty, a.ExternalQty, a.Delta)
		}
	}
	for _, a := range report.ErrorDetails {
		fmt.Printf("  error: %s (%s): %s\n", a.CardName, a.SKU, a.Reason)
	}

	if report.RecommendPush {
		if *push {
			pushed, failed, err := svc.PushInventory(ctx)
			if err != nil {
				slog.Error("Inventory push failed", "error", err)
				os.Exit(1)
			}
			fmt.Printf("\nPushed %d levels to Shopify (%d failed)\n", pushed, failed)
		} else {
			fmt.Println("\nDrift found, re-run with -push to overwrite Shopify levels")
		}
	}
}
