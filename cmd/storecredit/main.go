package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/shopspring/decimal"

	"github.com/dumplingcollectibles/dumpling-price-automation/internal/config"
	"github.com/dumplingcollectibles/dumpling-price-automation/internal/credit"
	"github.com/dumplingcollectibles/dumpling-price-automation/internal/database"
	"github.com/dumplingcollectibles/dumpling-price-automation/internal/database/postgres"
	"github.com/dumplingcollectibles/dumpling-price-automation/internal/logger"
	"github.com/dumplingcollectibles/dumpling-price-automation/internal/shopify"
)

const usage = `Usage: storecredit <command> [flags]

Commands:
  payout   -email <email> [-name <name>] -amount <amount> [-notes <text>] [-gift-card]
  adjust   -user <id> -amount <amount> [-notes <text>]
  balance  -user <id>
  history  -user <id> [-limit <n>]
`

func main() {
	if len(os.Args) < 2 {
		fmt.Fprint(os.Stderr, usage)
		os.Exit(2)
	}

	cfg, err := config.Load()
	if err != nil {
		slog.Error("Configuration failed", "error", err)
		os.Exit(1)
	}
	logger.InitLogger(logger.NewConfig(cfg.LogLevel, cfg.LogFormat, "storecredit", cfg.Version, cfg.Environment, false))

	pool, err := database.NewPool(cfg.DatabaseURL, 2, 30*time.Minute, time.Hour)
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

	svc := credit.NewService(postgres.NewCreditRepository(pool), postgres.NewUserRepository(pool), client)
	ctx := context.Background()

	switch os.Args[1] {
	case "payout":
		runPayout(ctx, svc, os.Args[2:])
	case "adjust":
		runAdjust(ctx, svc, os.Args[2:])
	case "balance":
		runBalance(ctx, svc, os.Args[2:])
	case "history":
		runHistory(ctx, svc, os.Args[2:])
	default:
		fmt.Fprint(os.Stderr, usage)
		os.Exit(2)
	}
}

func runPayout(ctx context.Context, svc credit.Service, args []string) {
	fs := flag.NewFlagSet("payout", flag.ExitOnError)
	email := fs.String("email", "", "customer email")
	name := fs.String("name", "", "customer name")
	amount := fs.String("amount", "", "payout amount")
	notes := fs.String("notes", "", "payout notes")
	giftCard := fs.Bool("gift-card", false, "back the credit with a Shopify gift card")
	fs.Parse(args)

	entry, err := svc.IssuePayout(ctx, credit.PayoutParams{
		Email:        *email,
		Name:         *name,
		Amount:       parseAmount(*amount),
		Notes:        *notes,
		WithGiftCard: *giftCard,
	})
	if err != nil {
		slog.Error("Payout failed", "email", *email, "error", err)
		os.Exit(1)
	}

	fmt.Printf("Issued %s store credit to %s (balance %s)\n", entry.Amount, *email, entry.BalanceAfter)
	if entry.GiftCardCode != nil {
		fmt.Printf("Gift card code: %s\n", *entry.GiftCardCode)
	}
}

func runAdjust(ctx context.Context, svc credit.Service, args []string) {
	fs := flag.NewFlagSet("adjust", flag.ExitOnError)
	userID := fs.Int64("user", 0, "user id")
	amount := fs.String("amount", "", "adjustment amount, negative to deduct")
	notes := fs.String("notes", "", "adjustment notes")
	fs.Parse(args)

	entry, err := svc.Adjust(ctx, *userID, parseAmount(*amount), *notes)
	if err != nil {
		slog.Error("Adjustment failed", "user_id", *userID, "error", err)
		os.Exit(1)
	}

	fmt.Printf("Adjusted user %d by %s (balance %s)\n", *userID, entry.Amount, entry.BalanceAfter)
}

func runBalance(ctx context.Context, svc credit.Service, args []string) {
	fs := flag.NewFlagSet("balance", flag.ExitOnError)
	userID := fs.Int64("user", 0, "user id")
	fs.Parse(args)

	balance, err := svc.GetBalance(ctx, *userID)
	if err != nil {
		slog.Error("Balance lookup failed", "user_id", *userID, "error", err)
		os.Exit(1)
	}

	fmt.Printf("User %d balance: %s\n", *userID, balance)
}

func runHistory(ctx context.Context, svc credit.Service, args []string) {
	fs := flag.NewFlagSet("history", flag.ExitOnError)
	userID := fs.Int64("user", 0, "user id")
	limit := fs.Int("limit", 0, "max entries")
	fs.Parse(args)

	entries, err := svc.GetHistory(ctx, *userID, *limit)
	if err != nil {
		slog.Error("History lookup failed", "user_id", *userID, "error", err)
		os.Exit(1)
	}

	for _, e := range entries {
		code := ""
		if e.GiftCardCode != nil {
			code = " gift_card=" + *e.GiftCardCode
		}
		fmt.Printf("%s  %-14s %10s  balance=%s%s  %s\n",
			e.CreatedAt.Format(time.RFC3339), e.Type, e.Amount, e.BalanceAfter, code, e.Notes)
	}
}

func parseAmount(raw string) decimal.Decimal {
	amount, err := decimal.NewFromString(raw)
	if err != nil {
		fmt.Fprintf(os.Stderr, "invalid amount %q\n", raw)
		os.Exit(2)
	}
	return amount
}
