package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/dumplingcollectibles/dumpling-price-automation/internal/domain"
)

// CreditRepository implements the store credit repository for PostgreSQL
type CreditRepository struct {
	db *pgxpool.Pool
}

// NewCreditRepository creates a new CreditRepository
func NewCreditRepository(db *pgxpool.Pool) *CreditRepository {
	return &CreditRepository{db: db}
}

// AppendEntry appends a store credit entry in its own database transaction
func (r *CreditRepository) AppendEntry(ctx context.Context, params domain.CreditEntryParams) (*domain.StoreCreditEntry, error) {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", ErrMsgFailedToBeginTransaction, err)
	}
	defer tx.Rollback(ctx)

	entry, err := appendCreditEntry(ctx, tx, params)
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("%s: %w", ErrMsgFailedToCommitTransaction, err)
	}
	return entry, nil
}

// appendCreditEntry is the single write path for store credit. It locks the
// user row so concurrent entries for the same customer serialize, reads the
// latest balance and writes the new entry with its running balance. Callers
// own the surrounding transaction.
func appendCreditEntry(ctx context.Context, tx pgx.Tx, params domain.CreditEntryParams) (*domain.StoreCreditEntry, error) {
	if params.Amount.IsZero() || !params.Type.Valid() {
		return nil, domain.ErrInvalidInput
	}

	var lockedID int64
	err := tx.QueryRow(ctx, "SELECT user_id FROM users WHERE user_id = $1 FOR UPDATE", params.UserID).Scan(&lockedID)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, domain.ErrUserNotFound
		}
		return nil, fmt.Errorf("%s: %w", ErrMsgFailedToLockUser, err)
	}

	var balance decimal.Decimal
	balanceQuery := `
		SELECT COALESCE((
			SELECT balance_after FROM store_credit_ledger
			WHERE user_id = $1
			ORDER BY entry_id DESC
			LIMIT 1
		), 0)
	`
	if err := tx.QueryRow(ctx, balanceQuery, params.UserID).Scan(&balance); err != nil {
		return nil, fmt.Errorf("%s: %w", ErrMsgFailedToReadBalance, err)
	}

	entry := &domain.StoreCreditEntry{
		UserID:        params.UserID,
		Amount:        params.Amount,
		Type:          params.Type,
		BalanceAfter:  balance.Add(params.Amount),
		GiftCardCode:  params.GiftCardCode,
		ReferenceType: params.ReferenceType,
		ReferenceID:   params.ReferenceID,
		Notes:         params.Notes,
	}
	insertQuery := `
		INSERT INTO store_credit_ledger (user_id, amount, entry_type, balance_after, gift_card_code, reference_type, reference_id, notes)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING entry_id, created_at
	`
	err = tx.QueryRow(ctx, insertQuery,
		entry.UserID, entry.Amount, entry.Type, entry.BalanceAfter,
		entry.GiftCardCode, entry.ReferenceType, entry.ReferenceID, entry.Notes,
	).Scan(&entry.ID, &entry.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", ErrMsgFailedToInsertCreditEntry, err)
	}
	return entry, nil
}

// GetBalance returns the user's current store credit balance
func (r *CreditRepository) GetBalance(ctx context.Context, userID int64) (decimal.Decimal, error) {
	query := `
		SELECT COALESCE((
			SELECT balance_after FROM store_credit_ledger
			WHERE user_id = $1
			ORDER BY entry_id DESC
			LIMIT 1
		), 0)
	`
	var balance decimal.Decimal
	if err := r.db.QueryRow(ctx, query, userID).Scan(&balance); err != nil {
		return decimal.Zero, fmt.Errorf("%s: %w", ErrMsgFailedToReadBalance, err)
	}
	return balance, nil
}

// ListEntries retrieves the most recent credit entries for a user
func (r *CreditRepository) ListEntries(ctx context.Context, userID int64, limit int) ([]domain.StoreCreditEntry, error) {
	query := `
		SELECT entry_id, user_id, amount, entry_type, balance_after, gift_card_code, reference_type, reference_id, notes, created_at
		FROM store_credit_ledger
		WHERE user_id = $1
		ORDER BY entry_id DESC
		LIMIT $2
	`
	rows, err := r.db.Query(ctx, query, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", ErrMsgFailedToListCreditEntries, err)
	}
	defer rows.Close()

	var entries []domain.StoreCreditEntry
	for rows.Next() {
		var (
			entry    domain.StoreCreditEntry
			giftCode sql.NullString
		)
		err := rows.Scan(&entry.ID, &entry.UserID, &entry.Amount, &entry.Type, &entry.BalanceAfter,
			&giftCode, &entry.ReferenceType, &entry.ReferenceID, &entry.Notes, &entry.CreatedAt)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", ErrMsgFailedToListCreditEntries, err)
		}
		if giftCode.Valid {
			entry.GiftCardCode = &giftCode.String
		}
		entries = append(entries, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", ErrMsgFailedToListCreditEntries, err)
	}
	return entries, nil
}
