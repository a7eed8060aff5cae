package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Condition is a card condition grade, ordered NM > LP > MP > HP > DMG.
type Condition string

const (
	ConditionNM  Condition = "NM"
	ConditionLP  Condition = "LP"
	ConditionMP  Condition = "MP"
	ConditionHP  Condition = "HP"
	ConditionDMG Condition = "DMG"
)

// Conditions lists all grades in descending quality order.
var Conditions = []Condition{ConditionNM, ConditionLP, ConditionMP, ConditionHP, ConditionDMG}

// Valid reports whether c is one of the five known grades.
func (c Condition) Valid() bool {
	switch c {
	case ConditionNM, ConditionLP, ConditionMP, ConditionHP, ConditionDMG:
		return true
	}
	return false
}

// BuylistEligible reports whether the store buys cards in this condition.
// HP and DMG cards are never bought.
func (c Condition) BuylistEligible() bool {
	return c == ConditionNM || c == ConditionLP || c == ConditionMP
}

// Variant is a sellable (card, condition) unit. Its inventory_qty,
// cost_basis_avg and total_units_purchased columns are materialized views over
// inventory_transactions and are mutated only through transaction application.
type Variant struct {
	ID                     int64
	ProductID              int64
	CardName               string
	SetCode                string
	CardNumber             string
	Condition              Condition
	SKU                    string
	InventoryQty           int
	CostBasisAvg           *decimal.Decimal // nil until first purchase
	TotalUnitsPurchased    int
	MarketPrice            decimal.Decimal
	SellingPrice           decimal.Decimal
	BuyCash                *decimal.Decimal // nil for HP/DMG
	BuyCredit              *decimal.Decimal // nil for HP/DMG
	ShopifyVariantID       *string
	ShopifyInventoryItemID *int64
	UpdatedAt              time.Time
}

// TransactionKind classifies an inventory transaction.
type TransactionKind string

const (
	TransactionPurchase   TransactionKind = "purchase"
	TransactionSale       TransactionKind = "sale"
	TransactionAdjustment TransactionKind = "adjustment"
)

// Valid reports whether k is a known transaction kind.
func (k TransactionKind) Valid() bool {
	switch k {
	case TransactionPurchase, TransactionSale, TransactionAdjustment:
		return true
	}
	return false
}

// InventoryTransaction is an append-only ledger row. Rows are never updated or
// deleted; corrections are new offsetting rows. For any variant, the cached
// inventory_qty equals the sum of all transaction quantities.
type InventoryTransaction struct {
	ID            int64
	VariantID     int64
	Kind          TransactionKind
	Quantity      int              // positive = stock in, negative = stock out
	UnitCost      *decimal.Decimal // present only for purchases and sales (cost captured at sale time)
	ReferenceType string           // free-form source tag, e.g. "bulk_upload", "order"
	ReferenceID   *int64
	Notes         string
	CreatedAt     time.Time
}

// TransactionParams carries an inventory mutation request into the ledger.
type TransactionParams struct {
	VariantID     int64
	Quantity      int
	Kind          TransactionKind
	UnitCost      *decimal.Decimal
	ReferenceType string
	ReferenceID   *int64
	Notes         string
}

// PriceBucket partitions the catalog by NM market price so that bulk price
// refresh workers operate on disjoint variant sets.
type PriceBucket string

const (
	BucketUnder30 PriceBucket = "under-30"
	Bucket30To50  PriceBucket = "30-50"
	Bucket50To100 PriceBucket = "50-100"
	BucketOver100 PriceBucket = "100-plus"
)

// PriceBuckets lists all partitions in ascending price order.
var PriceBuckets = []PriceBucket{BucketUnder30, Bucket30To50, Bucket50To100, BucketOver100}

// Valid reports whether b is a known bucket.
func (b PriceBucket) Valid() bool {
	switch b {
	case BucketUnder30, Bucket30To50, Bucket50To100, BucketOver100:
		return true
	}
	return false
}

// Bounds returns the half-open [min, max) CAD market-price range of the
// bucket. A nil max means unbounded.
func (b PriceBucket) Bounds() (min decimal.Decimal, max *decimal.Decimal) {
	d := func(v int64) decimal.Decimal { return decimal.NewFromInt(v) }
	switch b {
	case BucketUnder30:
		m := d(30)
		return d(0), &m
	case Bucket30To50:
		m := d(50)
		return d(30), &m
	case Bucket50To100:
		m := d(100)
		return d(50), &m
	default:
		return d(100), nil
	}
}
