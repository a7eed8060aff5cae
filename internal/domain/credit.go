package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// CreditEntryType classifies a store-credit ledger entry.
type CreditEntryType string

const (
	CreditBuylistPayout CreditEntryType = "buylist_payout"
	CreditOrderPayment  CreditEntryType = "order_payment"
	CreditAdjustment    CreditEntryType = "adjustment"
	CreditRefund        CreditEntryType = "refund"
)

// Valid reports whether t is a known entry type.
func (t CreditEntryType) Valid() bool {
	switch t {
	case CreditBuylistPayout, CreditOrderPayment, CreditAdjustment, CreditRefund:
		return true
	}
	return false
}

// StoreCreditEntry is an append-only per-user ledger row. BalanceAfter of
// entry N equals BalanceAfter of entry N-1 for the same user plus Amount of
// entry N; the first entry's previous balance is zero.
type StoreCreditEntry struct {
	ID            int64
	UserID        int64
	Amount        decimal.Decimal
	Type          CreditEntryType
	BalanceAfter  decimal.Decimal
	GiftCardCode  *string // Shopify gift card backing this credit, if any
	ReferenceType string
	ReferenceID   *int64
	Notes         string
	CreatedAt     time.Time
}

// CreditEntryParams carries a store-credit mutation request into the ledger.
type CreditEntryParams struct {
	UserID        int64
	Amount        decimal.Decimal
	Type          CreditEntryType
	GiftCardCode  *string
	ReferenceType string
	ReferenceID   *int64
	Notes         string
}
