package repository

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/dumplingcollectibles/dumpling-price-automation/internal/domain"
)

// VariantPricing carries a recomputed price set for a single variant.
// Nil buylist prices clear the stored values (the condition is not
// buylist-eligible or the NM base is missing).
type VariantPricing struct {
	MarketPrice  decimal.Decimal
	SellingPrice decimal.Decimal
	BuyCash      *decimal.Decimal
	BuyCredit    *decimal.Decimal
}

// Variant defines the interface for card variant persistence
type Variant interface {
	GetVariantByID(ctx context.Context, id int64) (*domain.Variant, error)
	GetVariantBySKU(ctx context.Context, sku string) (*domain.Variant, error)
	GetVariantByShopifyVariantID(ctx context.Context, shopifyVariantID string) (*domain.Variant, error)
	ListVariantsByProduct(ctx context.Context, productID int64) ([]domain.Variant, error)
	ListVariantsInBucket(ctx context.Context, bucket domain.PriceBucket) ([]domain.Variant, error)
	ListSyncedVariants(ctx context.Context) ([]domain.Variant, error)
	UpdatePricing(ctx context.Context, variantID int64, pricing VariantPricing) error
	UpdateShopifyIDs(ctx context.Context, variantID int64, shopifyVariantID string, inventoryItemID int64) error
}
