package repository

import (
	"context"

	"github.com/dumplingcollectibles/dumpling-price-automation/internal/domain"
)

// Ledger defines the interface for inventory transaction persistence.
// ApplyTransaction is atomic: it locks the variant row, validates the
// resulting quantity, recomputes the weighted-average cost basis and writes
// the ledger row in a single database transaction.
type Ledger interface {
	ApplyTransaction(ctx context.Context, params domain.TransactionParams) (*domain.InventoryTransaction, error)
	ListTransactions(ctx context.Context, variantID int64, limit int) ([]domain.InventoryTransaction, error)
	ListTransactionsByReference(ctx context.Context, referenceType string, referenceID int64) ([]domain.InventoryTransaction, error)
}
