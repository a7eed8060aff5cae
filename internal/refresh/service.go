package refresh

import (
	"context"
	"fmt"
	"sync"

	"github.com/shopspring/decimal"

	"github.com/dumplingcollectibles/dumpling-price-automation/internal/domain"
	"github.com/dumplingcollectibles/dumpling-price-automation/internal/logger"
	"github.com/dumplingcollectibles/dumpling-price-automation/internal/metrics"
	"github.com/dumplingcollectibles/dumpling-price-automation/internal/pricing"
	"github.com/dumplingcollectibles/dumpling-price-automation/internal/repository"
)

// MarketPriceSource yields current USD market prices for NM variants. ok is
// false when the source has no price for the card.
type MarketPriceSource interface {
	MarketPriceUSD(ctx context.Context, variant domain.Variant) (price decimal.Decimal, ok bool, err error)
}

// PricePusher pushes accepted prices to the storefront
type PricePusher interface {
	SetVariantPrice(ctx context.Context, shopifyVariantID string, price decimal.Decimal) error
}

// BucketSummary reports one bucket's refresh outcome
type BucketSummary struct {
	Bucket     domain.PriceBucket
	Checked    int
	Updated    int
	Suppressed int
	Notable    int
	PushErrors int
}

// Service defines the interface for bulk price refresh
type Service interface {
	RefreshBucket(ctx context.Context, bucket domain.PriceBucket) (BucketSummary, error)
	RefreshAll(ctx context.Context) ([]BucketSummary, error)
}

// service implements the Service interface
type service struct {
	variantRepo repository.Variant
	source      MarketPriceSource
	calc        pricing.Calculator
	gate        pricing.ChangeGate
	pusher      PricePusher
	workers     int
}

// NewService creates a new refresh service. pusher may be nil; accepted
// prices then persist locally without a storefront push. workers bounds how
// many buckets RefreshAll reprices at once.
func NewService(variantRepo repository.Variant, source MarketPriceSource, calc pricing.Calculator, gate pricing.ChangeGate, pusher PricePusher, workers int) Service {
	if workers < 1 {
		workers = 1
	}
	return &service{
		variantRepo: variantRepo,
		source:      source,
		calc:        calc,
		gate:        gate,
		pusher:      pusher,
		workers:     workers,
	}
}

// RefreshAll refreshes every bucket, at most workers at a time. Buckets
// partition the catalog by NM market price, so concurrent workers never touch
// the same product.
func (s *service) RefreshAll(ctx context.Context) ([]BucketSummary, error) {
	var (
		mu        sync.Mutex
		wg        sync.WaitGroup
		summaries []BucketSummary
		firstErr  error
	)

	sem := make(chan struct{}, s.workers)
	for _, bucket := range domain.PriceBuckets {
		wg.Add(1)
		go func(bucket domain.PriceBucket) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()

			summary, err := s.RefreshBucket(ctx, bucket)
			mu.Lock()
			defer mu.Unlock()
			if err != nil && firstErr == nil {
				firstErr = err
			}
			summaries = append(summaries, summary)
		}(bucket)
	}
	wg.Wait()
	return summaries, firstErr
}

// RefreshBucket reprices every NM variant in the bucket and fans each
// accepted change out to the product's other condition variants.
func (s *service) RefreshBucket(ctx context.Context, bucket domain.PriceBucket) (BucketSummary, error) {
	log := logger.FromContext(ctx)
	summary := BucketSummary{Bucket: bucket}

	variants, err := s.variantRepo.ListVariantsInBucket(ctx, bucket)
	if err != nil {
		return summary, fmt.Errorf(ErrMsgListFailed, err)
	}
	log.Info(LogMsgBucketStarted, "bucket", bucket, "variants", len(variants))

	for _, nm := range variants {
		summary.Checked++

		marketUSD, ok, err := s.source.MarketPriceUSD(ctx, nm)
		if err != nil {
			log.Warn(LogMsgSourceFailed, "variant_id", nm.ID, "sku", nm.SKU, "error", err)
			continue
		}
		if !ok {
			log.Debug(LogMsgSourceUnpriced, "variant_id", nm.ID, "sku", nm.SKU)
			continue
		}

		newSelling := s.calc.SellingPrice(marketUSD)
		if !s.gate.ShouldPropagate(nm.SellingPrice, newSelling) {
			log.Debug(LogMsgPriceSuppressed, "variant_id", nm.ID,
				"old", nm.SellingPrice, "new", newSelling)
			metrics.PriceChangesSuppressed.Inc()
			summary.Suppressed++
			continue
		}
		if s.gate.IsNotableChange(nm.SellingPrice, newSelling) {
			log.Warn(LogMsgNotableChange, "variant_id", nm.ID, "sku", nm.SKU,
				"old", nm.SellingPrice, "new", newSelling)
			summary.Notable++
		}

		if err := s.repriceProduct(ctx, nm, marketUSD, newSelling, &summary); err != nil {
			return summary, err
		}
		summary.Updated++
	}

	log.Info(LogMsgBucketCompleted, "bucket", bucket,
		"checked", summary.Checked, "updated", summary.Updated,
		"suppressed", summary.Suppressed, "notable", summary.Notable)
	return summary, nil
}

// repriceProduct persists and pushes the NM price plus every sibling
// condition derived from it
func (s *service) repriceProduct(ctx context.Context, nm domain.Variant, marketUSD, nmSelling decimal.Decimal, summary *BucketSummary) error {
	marketCAD := s.calc.MarketPriceCAD(marketUSD)
	nmCash, nmCredit := pricing.BuylistPrices(marketCAD, domain.ConditionNM, nil, nil)

	if err := s.persistAndPush(ctx, nm, repository.VariantPricing{
		MarketPrice:  marketCAD,
		SellingPrice: nmSelling,
		BuyCash:      nmCash,
		BuyCredit:    nmCredit,
	}, summary); err != nil {
		return err
	}

	siblings, err := s.variantRepo.ListVariantsByProduct(ctx, nm.ProductID)
	if err != nil {
		return fmt.Errorf(ErrMsgPersistFailed, err)
	}
	for _, sibling := range siblings {
		if sibling.ID == nm.ID || sibling.Condition == domain.ConditionNM {
			continue
		}
		cash, creditPrice := pricing.BuylistPrices(marketCAD, sibling.Condition, nmCash, nmCredit)
		if err := s.persistAndPush(ctx, sibling, repository.VariantPricing{
			MarketPrice:  marketCAD,
			SellingPrice: pricing.ConditionSellingPrice(nmSelling, sibling.Condition),
			BuyCash:      cash,
			BuyCredit:    creditPrice,
		}, summary); err != nil {
			return err
		}
	}
	return nil
}

// persistAndPush writes the pricing locally, then pushes to the storefront.
// A failed push is logged and counted, never rolled back; the local ledger is
// the source of truth and the next refresh will push again.
func (s *service) persistAndPush(ctx context.Context, variant domain.Variant, p repository.VariantPricing, summary *BucketSummary) error {
	if err := s.variantRepo.UpdatePricing(ctx, variant.ID, p); err != nil {
		return fmt.Errorf(ErrMsgPersistFailed, err)
	}
	if s.pusher == nil || variant.ShopifyVariantID == nil {
		return nil
	}
	if err := s.pusher.SetVariantPrice(ctx, *variant.ShopifyVariantID, p.SellingPrice); err != nil {
		logger.FromContext(ctx).Warn(LogMsgPushFailed,
			"variant_id", variant.ID, "sku", variant.SKU, "error", err)
		summary.PushErrors++
	}
	return nil
}
