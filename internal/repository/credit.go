package repository

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/dumplingcollectibles/dumpling-price-automation/internal/domain"
)

// Credit defines the interface for store credit ledger persistence.
// AppendEntry locks the user's latest balance row so concurrent writes for
// the same customer serialize and every balance_after stays consistent.
type Credit interface {
	AppendEntry(ctx context.Context, params domain.CreditEntryParams) (*domain.StoreCreditEntry, error)
	GetBalance(ctx context.Context, userID int64) (decimal.Decimal, error)
	ListEntries(ctx context.Context, userID int64, limit int) ([]domain.StoreCreditEntry, error)
}
