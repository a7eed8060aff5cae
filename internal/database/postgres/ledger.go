package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/dumplingcollectibles/dumpling-price-automation/internal/domain"
)

// LedgerRepository implements the inventory transaction repository for PostgreSQL
type LedgerRepository struct {
	db *pgxpool.Pool
}

// NewLedgerRepository creates a new LedgerRepository
func NewLedgerRepository(db *pgxpool.Pool) *LedgerRepository {
	return &LedgerRepository{db: db}
}

// ApplyTransaction applies a single inventory movement in its own database
// transaction. See applyInventoryTransaction for the locking and cost basis
// rules.
func (r *LedgerRepository) ApplyTransaction(ctx context.Context, params domain.TransactionParams) (*domain.InventoryTransaction, error) {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", ErrMsgFailedToBeginTransaction, err)
	}
	defer tx.Rollback(ctx)

	txn, err := applyInventoryTransaction(ctx, tx, params)
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("%s: %w", ErrMsgFailedToCommitTransaction, err)
	}
	return txn, nil
}

// applyInventoryTransaction is the single write path for inventory movements.
// It locks the variant row, rejects any movement that would take stock
// negative, folds purchases into the weighted-average cost basis, captures the
// current cost basis on sales, and appends the ledger row. Callers own the
// surrounding transaction.
func applyInventoryTransaction(ctx context.Context, tx pgx.Tx, params domain.TransactionParams) (*domain.InventoryTransaction, error) {
	if params.Quantity == 0 || !params.Kind.Valid() {
		return nil, domain.ErrInvalidInput
	}

	var (
		qty       int
		costBasis decimal.NullDecimal
		purchased int
	)
	lockQuery := `
		SELECT inventory_qty, cost_basis_avg, total_units_purchased
		FROM variants
		WHERE variant_id = $1
		FOR UPDATE
	`
	err := tx.QueryRow(ctx, lockQuery, params.VariantID).Scan(&qty, &costBasis, &purchased)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, domain.ErrVariantNotFound
		}
		return nil, fmt.Errorf("%s: %w", ErrMsgFailedToLockVariant, err)
	}

	newQty := qty + params.Quantity
	if newQty < 0 {
		return nil, fmt.Errorf("%w: variant %d has %d, requested %d",
			domain.ErrInsufficientInventory, params.VariantID, qty, -params.Quantity)
	}

	unitCost := params.UnitCost
	switch params.Kind {
	case domain.TransactionPurchase:
		if params.Quantity > 0 && unitCost != nil {
			avg := weightedAverageCost(qty, costBasis, params.Quantity, *unitCost)
			costBasis = decimal.NullDecimal{Decimal: avg, Valid: true}
			purchased += params.Quantity
		}
	case domain.TransactionSale:
		// Capture the cost basis in effect when the sale happened, so later
		// purchases never rewrite realized margins.
		if unitCost == nil && costBasis.Valid {
			unitCost = &costBasis.Decimal
		}
	}

	updateQuery := `
		UPDATE variants
		SET inventory_qty = $1, cost_basis_avg = $2, total_units_purchased = $3, updated_at = NOW()
		WHERE variant_id = $4
	`
	if _, err := tx.Exec(ctx, updateQuery, newQty, costBasis, purchased, params.VariantID); err != nil {
		return nil, fmt.Errorf("%s: %w", ErrMsgFailedToUpdateVariantStock, err)
	}

	txn := &domain.InventoryTransaction{
		VariantID:     params.VariantID,
		Kind:          params.Kind,
		Quantity:      params.Quantity,
		UnitCost:      unitCost,
		ReferenceType: params.ReferenceType,
		ReferenceID:   params.ReferenceID,
		Notes:         params.Notes,
	}
	insertQuery := `
		INSERT INTO inventory_transactions (variant_id, kind, quantity, unit_cost, reference_type, reference_id, notes)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING transaction_id, created_at
	`
	err = tx.QueryRow(ctx, insertQuery,
		txn.VariantID, txn.Kind, txn.Quantity, nullDecimal(txn.UnitCost),
		txn.ReferenceType, txn.ReferenceID, txn.Notes,
	).Scan(&txn.ID, &txn.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", ErrMsgFailedToInsertTransaction, err)
	}
	return txn, nil
}

// weightedAverageCost folds a purchase into the running average:
// (onHand*oldAvg + qty*cost) / (onHand+qty). A variant with no cost basis yet
// starts fresh at the purchase cost.
func weightedAverageCost(onHand int, oldAvg decimal.NullDecimal, qty int, cost decimal.Decimal) decimal.Decimal {
	if !oldAvg.Valid || onHand <= 0 {
		return cost
	}
	oldUnits := decimal.NewFromInt(int64(onHand))
	newUnits := decimal.NewFromInt(int64(qty))
	total := oldUnits.Mul(oldAvg.Decimal).Add(newUnits.Mul(cost))
	return total.Div(oldUnits.Add(newUnits)).Round(4)
}

func (r *LedgerRepository) listTransactions(ctx context.Context, query string, args ...any) ([]domain.InventoryTransaction, error) {
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", ErrMsgFailedToListTransactions, err)
	}
	defer rows.Close()

	var txns []domain.InventoryTransaction
	for rows.Next() {
		var (
			txn      domain.InventoryTransaction
			unitCost decimal.NullDecimal
		)
		err := rows.Scan(&txn.ID, &txn.VariantID, &txn.Kind, &txn.Quantity,
			&unitCost, &txn.ReferenceType, &txn.ReferenceID, &txn.Notes, &txn.CreatedAt)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", ErrMsgFailedToListTransactions, err)
		}
		if unitCost.Valid {
			txn.UnitCost = &unitCost.Decimal
		}
		txns = append(txns, txn)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", ErrMsgFailedToListTransactions, err)
	}
	return txns, nil
}

// ListTransactions retrieves the most recent movements for a variant
func (r *LedgerRepository) ListTransactions(ctx context.Context, variantID int64, limit int) ([]domain.InventoryTransaction, error) {
	query := `
		SELECT transaction_id, variant_id, kind, quantity, unit_cost, reference_type, reference_id, notes, created_at
		FROM inventory_transactions
		WHERE variant_id = $1
		ORDER BY created_at DESC, transaction_id DESC
		LIMIT $2
	`
	return r.listTransactions(ctx, query, variantID, limit)
}

// ListTransactionsByReference retrieves all movements recorded for a source
// document, e.g. every line applied from one order
func (r *LedgerRepository) ListTransactionsByReference(ctx context.Context, referenceType string, referenceID int64) ([]domain.InventoryTransaction, error) {
	query := `
		SELECT transaction_id, variant_id, kind, quantity, unit_cost, reference_type, reference_id, notes, created_at
		FROM inventory_transactions
		WHERE reference_type = $1 AND reference_id = $2
		ORDER BY transaction_id
	`
	return r.listTransactions(ctx, query, referenceType, referenceID)
}
