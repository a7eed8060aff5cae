package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/dumplingcollectibles/dumpling-price-automation/internal/domain"
	"github.com/dumplingcollectibles/dumpling-price-automation/internal/repository"
)

// variantColumns is the shared select list for variant queries. Card identity
// comes from the catalog join so callers never need a second lookup.
const variantColumns = `
	v.variant_id, v.product_id, c.card_name, c.set_code, c.card_number,
	v.condition, v.sku, v.inventory_qty, v.cost_basis_avg, v.total_units_purchased,
	v.market_price, v.selling_price, v.buy_cash, v.buy_credit,
	v.shopify_variant_id, v.shopify_inventory_item_id, v.updated_at
	FROM variants v
	JOIN products p ON v.product_id = p.product_id
	JOIN cards c ON p.card_id = c.card_id`

// VariantRepository implements the variant repository for PostgreSQL
type VariantRepository struct {
	db *pgxpool.Pool
}

// NewVariantRepository creates a new VariantRepository
func NewVariantRepository(db *pgxpool.Pool) *VariantRepository {
	return &VariantRepository{db: db}
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanVariant(row rowScanner) (*domain.Variant, error) {
	var (
		v            domain.Variant
		costBasis    decimal.NullDecimal
		buyCash      decimal.NullDecimal
		buyCredit    decimal.NullDecimal
		shopifyVarID sql.NullString
		shopifyInvID sql.NullInt64
	)
	err := row.Scan(
		&v.ID, &v.ProductID, &v.CardName, &v.SetCode, &v.CardNumber,
		&v.Condition, &v.SKU, &v.InventoryQty, &costBasis, &v.TotalUnitsPurchased,
		&v.MarketPrice, &v.SellingPrice, &buyCash, &buyCredit,
		&shopifyVarID, &shopifyInvID, &v.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if costBasis.Valid {
		v.CostBasisAvg = &costBasis.Decimal
	}
	if buyCash.Valid {
		v.BuyCash = &buyCash.Decimal
	}
	if buyCredit.Valid {
		v.BuyCredit = &buyCredit.Decimal
	}
	if shopifyVarID.Valid {
		v.ShopifyVariantID = &shopifyVarID.String
	}
	if shopifyInvID.Valid {
		v.ShopifyInventoryItemID = &shopifyInvID.Int64
	}
	return &v, nil
}

func (r *VariantRepository) getVariant(ctx context.Context, where string, arg any) (*domain.Variant, error) {
	query := "SELECT" + variantColumns + " WHERE " + where
	v, err := scanVariant(r.db.QueryRow(ctx, query, arg))
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, domain.ErrVariantNotFound
		}
		return nil, fmt.Errorf("%s: %w", ErrMsgFailedToGetVariant, err)
	}
	return v, nil
}

// GetVariantByID retrieves a variant by its internal id
func (r *VariantRepository) GetVariantByID(ctx context.Context, id int64) (*domain.Variant, error) {
	return r.getVariant(ctx, "v.variant_id = $1", id)
}

// GetVariantBySKU retrieves a variant by its SKU
func (r *VariantRepository) GetVariantBySKU(ctx context.Context, sku string) (*domain.Variant, error) {
	return r.getVariant(ctx, "v.sku = $1", sku)
}

// GetVariantByShopifyVariantID retrieves a variant by its external id
func (r *VariantRepository) GetVariantByShopifyVariantID(ctx context.Context, shopifyVariantID string) (*domain.Variant, error) {
	return r.getVariant(ctx, "v.shopify_variant_id = $1", shopifyVariantID)
}

func (r *VariantRepository) listVariants(ctx context.Context, query string, args ...any) ([]domain.Variant, error) {
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", ErrMsgFailedToListVariants, err)
	}
	defer rows.Close()

	var variants []domain.Variant
	for rows.Next() {
		v, err := scanVariant(rows)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", ErrMsgFailedToListVariants, err)
		}
		variants = append(variants, *v)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", ErrMsgFailedToListVariants, err)
	}
	return variants, nil
}

// ListVariantsByProduct retrieves all condition variants of a product
func (r *VariantRepository) ListVariantsByProduct(ctx context.Context, productID int64) ([]domain.Variant, error) {
	query := "SELECT" + variantColumns + " WHERE v.product_id = $1 ORDER BY v.variant_id"
	return r.listVariants(ctx, query, productID)
}

// ListVariantsInBucket retrieves all NM variants whose CAD market price falls in
// the bucket's range. Refresh workers fan out from the NM variant to the rest
// of the product's conditions, so only NM rows anchor a bucket.
func (r *VariantRepository) ListVariantsInBucket(ctx context.Context, bucket domain.PriceBucket) ([]domain.Variant, error) {
	minPrice, maxPrice := bucket.Bounds()
	if maxPrice == nil {
		query := "SELECT" + variantColumns + " WHERE v.condition = $1 AND v.market_price >= $2 ORDER BY v.variant_id"
		return r.listVariants(ctx, query, domain.ConditionNM, minPrice)
	}
	query := "SELECT" + variantColumns + " WHERE v.condition = $1 AND v.market_price >= $2 AND v.market_price < $3 ORDER BY v.variant_id"
	return r.listVariants(ctx, query, domain.ConditionNM, minPrice, *maxPrice)
}

// ListSyncedVariants retrieves every variant linked to a Shopify inventory item
func (r *VariantRepository) ListSyncedVariants(ctx context.Context) ([]domain.Variant, error) {
	query := "SELECT" + variantColumns + " WHERE v.shopify_inventory_item_id IS NOT NULL ORDER BY v.variant_id"
	return r.listVariants(ctx, query)
}

// UpdatePricing writes a recomputed price set for a variant
func (r *VariantRepository) UpdatePricing(ctx context.Context, variantID int64, pricing repository.VariantPricing) error {
	query := `
		UPDATE variants
		SET market_price = $1, selling_price = $2, buy_cash = $3, buy_credit = $4, updated_at = NOW()
		WHERE variant_id = $5
	`
	tag, err := r.db.Exec(ctx, query,
		pricing.MarketPrice, pricing.SellingPrice,
		nullDecimal(pricing.BuyCash), nullDecimal(pricing.BuyCredit), variantID)
	if err != nil {
		return fmt.Errorf("%s: %w", ErrMsgFailedToUpdatePricing, err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrVariantNotFound
	}
	return nil
}

// UpdateShopifyIDs links a variant to its external variant and inventory item
func (r *VariantRepository) UpdateShopifyIDs(ctx context.Context, variantID int64, shopifyVariantID string, inventoryItemID int64) error {
	query := `
		UPDATE variants
		SET shopify_variant_id = $1, shopify_inventory_item_id = $2, updated_at = NOW()
		WHERE variant_id = $3
	`
	tag, err := r.db.Exec(ctx, query, shopifyVariantID, inventoryItemID, variantID)
	if err != nil {
		return fmt.Errorf("%s: %w", ErrMsgFailedToUpdateShopifyIDs, err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrVariantNotFound
	}
	return nil
}

func nullDecimal(d *decimal.Decimal) decimal.NullDecimal {
	if d == nil {
		return decimal.NullDecimal{}
	}
	return decimal.NullDecimal{Decimal: *d, Valid: true}
}
