package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/dumplingcollectibles/dumpling-price-automation/internal/audit"
	"github.com/dumplingcollectibles/dumpling-price-automation/internal/config"
	"github.com/dumplingcollectibles/dumpling-price-automation/internal/credit"
	"github.com/dumplingcollectibles/dumpling-price-automation/internal/database"
	"github.com/dumplingcollectibles/dumpling-price-automation/internal/database/postgres"
	"github.com/dumplingcollectibles/dumpling-price-automation/internal/handler"
	"github.com/dumplingcollectibles/dumpling-price-automation/internal/ledger"
	"github.com/dumplingcollectibles/dumpling-price-automation/internal/logger"
	"github.com/dumplingcollectibles/dumpling-price-automation/internal/order"
	"github.com/dumplingcollectibles/dumpling-price-automation/internal/pricing"
	"github.com/dumplingcollectibles/dumpling-price-automation/internal/refresh"
	"github.com/dumplingcollectibles/dumpling-price-automation/internal/repository"
	"github.com/dumplingcollectibles/dumpling-price-automation/internal/scheduler"
	"github.com/dumplingcollectibles/dumpling-price-automation/internal/server"
	"github.com/dumplingcollectibles/dumpling-price-automation/internal/shopify"
	"github.com/dumplingcollectibles/dumpling-price-automation/internal/worker"
)

const (
	dbMaxConnections = 10
	dbMaxIdleTime    = 30 * time.Minute
	dbMaxLifetime    = time.Hour
	shutdownTimeout  = 10 * time.Second
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("Configuration failed", "error", err)
		os.Exit(1)
	}

	logger.InitLogger(logger.NewConfig(cfg.LogLevel, cfg.LogFormat, "price-automation", cfg.Version, cfg.Environment, false))
	handler.InitValidator()

	pool, err := database.NewPool(cfg.DatabaseURL, dbMaxConnections, dbMaxIdleTime, dbMaxLifetime)
	if err != nil {
		slog.Error("Failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer pool.Close()

	if err := database.Migrate(pool); err != nil {
		slog.Error("Failed to run migrations", "error", err)
		os.Exit(1)
	}

	// Repositories
	variantRepo := postgres.NewVariantRepository(pool)
	ledgerRepo := postgres.NewLedgerRepository(pool)
	creditRepo := postgres.NewCreditRepository(pool)
	userRepo := postgres.NewUserRepository(pool)
	orderRepo := postgres.NewOrderRepository(pool)

	// Shopify client, shared across every outbound path so the rate limiter
	// covers all calls
	shopifyClient := shopify.NewClient(shopify.Config{
		ShopURL:     cfg.ShopifyShopURL,
		AccessToken: cfg.ShopifyAccessToken,
		APIVersion:  cfg.ShopifyAPIVersion,
		LocationID:  cfg.ShopifyLocationID,
		RateLimit:   cfg.ShopifyRateLimit,
		MaxAttempts: cfg.RetryMaxAttempts,
		BaseDelay:   cfg.RetryBaseDelay,
	})

	// Background workers for best-effort inventory sync and scheduled audits
	syncPool := worker.NewPool(cfg.SyncWorkers, cfg.SyncQueueSize)
	syncPool.Start()
	defer syncPool.Stop()

	// Services
	ledgerService := ledger.NewService(ledgerRepo, variantRepo)
	creditService := credit.NewService(creditRepo, userRepo, shopifyClient)
	orderService := order.NewService(orderRepo, userRepo, variantRepo, shopifyClient, syncPool)
	auditService := audit.NewService(variantRepo, shopifyClient)
	refreshService := newRefreshService(cfg, variantRepo, shopifyClient)

	// Scheduled reconciliation
	sched := scheduler.New(syncPool)
	sched.Schedule(cfg.AuditInterval, audit.NewJob(auditService))
	defer sched.Stop()

	srv := server.NewServer(cfg.Port, cfg.APIKey, cfg.ShopifyWebhookSecret, pool, ledgerService, creditService, orderService, refreshService, auditService)

	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("Server failed", "error", err)
			os.Exit(1)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	slog.Info("Shutting down")
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Stop(ctx); err != nil {
		slog.Error("Graceful shutdown failed", "error", err)
	}
}

func newRefreshService(cfg *config.Config, variantRepo repository.Variant, client *shopify.Client) refresh.Service {
	source := refresh.NewReloadingFileSource(cfg.PriceFilePath)
	calc := pricing.NewCalculator(cfg.FXRate, cfg.Markup)
	gate := pricing.NewChangeGate(cfg.MinChangeDollars, cfg.MinChangePercent, cfg.NotableChangeDollars, cfg.NotableChangePercent)
	return refresh.NewService(variantRepo, source, calc, gate, client, cfg.RefreshWorkers)
}
