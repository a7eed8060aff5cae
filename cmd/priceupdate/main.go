package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/dumplingcollectibles/dumpling-price-automation/internal/config"
	"github.com/dumplingcollectibles/dumpling-price-automation/internal/database"
	"github.com/dumplingcollectibles/dumpling-price-automation/internal/database/postgres"
	"github.com/dumplingcollectibles/dumpling-price-automation/internal/domain"
	"github.com/dumplingcollectibles/dumpling-price-automation/internal/logger"
	"github.com/dumplingcollectibles/dumpling-price-automation/internal/pricing"
	"github.com/dumplingcollectibles/dumpling-price-automation/internal/refresh"
	"github.com/dumplingcollectibles/dumpling-price-automation/internal/shopify"
)

func main() {
	pricesPath := flag.String("prices", "", "path to the market price snapshot (default PRICE_FILE)")
	bucketName := flag.String("bucket", "", "refresh a single bucket instead of all")
	noPush := flag.Bool("no-push", false, "persist locally without pushing prices to Shopify")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("Configuration failed", "error", err)
		os.Exit(1)
	}
	logger.InitLogger(logger.NewConfig(cfg.LogLevel, cfg.LogFormat, "priceupdate", cfg.Version, cfg.Environment, false))

	path := *pricesPath
	if path == "" {
		path = cfg.PriceFilePath
	}
	source, err := refresh.NewFileSource(path)
	if err != nil {
		slog.Error("Failed to load price snapshot", "path", path, "error", err)
		os.Exit(1)
	}
	slog.Info("Price snapshot loaded", "path", path, "prices", source.Len())

	pool, err := database.NewPool(cfg.DatabaseURL, 4, 30*time.Minute, time.Hour)
	if err != nil {
		slog.Error("Failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer pool.Close()

	var pusher refresh.PricePusher
	if !*noPush {
		pusher = shopify.NewClient(shopify.Config{
			ShopURL:     cfg.ShopifyShopURL,
			AccessToken: cfg.ShopifyAccessToken,
			APIVersion:  cfg.ShopifyAPIVersion,
			LocationID:  cfg.ShopifyLocationID,
			RateLimit:   cfg.ShopifyRateLimit,
			MaxAttempts: cfg.RetryMaxAttempts,
			BaseDelay:   cfg.RetryBaseDelay,
		})
	}

	calc := pricing.NewCalculator(cfg.FXRate, cfg.Markup)
	gate := pricing.NewChangeGate(cfg.MinChangeDollars, cfg.MinChangePercent, cfg.NotableChangeDollars, cfg.NotableChangePercent)
	svc := refresh.NewService(postgres.NewVariantRepository(pool), source, calc, gate, pusher, cfg.RefreshWorkers)

	ctx := context.Background()
	var summaries []refresh.BucketSummary
	if *bucketName != "" {
		bucket := domain.PriceBucket(*bucketName)
		if !bucket.Valid() {
			fmt.Fprintf(os.Stderr, "unknown bucket %q, valid buckets: %v\n", *bucketName, domain.PriceBuckets)
			os.Exit(2)
		}
		summary, err := svc.RefreshBucket(ctx, bucket)
		if err != nil {
			slog.Error("Price refresh failed", "bucket", bucket, "error", err)
			os.Exit(1)
		}
		summaries = append(summaries, summary)
	} else {
		summaries, err = svc.RefreshAll(ctx)
		if err != nil {
			slog.Error("Price refresh failed", "error", err)
			os.Exit(1)
		}
	}

	for _, s := range summaries {
		fmt.Printf("%-10s checked=%d updated=%d suppressed=%d notable=%d push_errors=%d\n",
			s.Bucket, s.Checked, s.Updated, s.Suppressed, s.Notable, s.PushErrors)
	}
}
