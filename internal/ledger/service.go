package ledger

import (
	"context"
	"errors"
	"fmt"

	"github.com/dumplingcollectibles/dumpling-price-automation/internal/domain"
	"github.com/dumplingcollectibles/dumpling-price-automation/internal/logger"
	"github.com/dumplingcollectibles/dumpling-price-automation/internal/metrics"
	"github.com/dumplingcollectibles/dumpling-price-automation/internal/repository"
)

// Service defines the interface for inventory ledger operations
type Service interface {
	ApplyTransaction(ctx context.Context, params domain.TransactionParams) (*domain.InventoryTransaction, error)
	ApplyBulk(ctx context.Context, batch []domain.TransactionParams) BulkResult
	GetHistory(ctx context.Context, variantID int64, limit int) ([]domain.InventoryTransaction, error)
	GetVariant(ctx context.Context, variantID int64) (*domain.Variant, error)
	GetVariantBySKU(ctx context.Context, sku string) (*domain.Variant, error)
}

// BulkFailure records one rejected item of a bulk intake
type BulkFailure struct {
	Index int
	Err   error
}

// BulkResult summarizes a bulk intake. Items apply independently; one bad
// line never blocks the rest of the batch.
type BulkResult struct {
	Applied []domain.InventoryTransaction
	Failed  []BulkFailure
}

// service implements the Service interface
type service struct {
	ledgerRepo  repository.Ledger
	variantRepo repository.Variant
}

// NewService creates a new ledger service
func NewService(ledgerRepo repository.Ledger, variantRepo repository.Variant) Service {
	return &service{
		ledgerRepo:  ledgerRepo,
		variantRepo: variantRepo,
	}
}

func validateParams(params domain.TransactionParams) error {
	if params.Quantity == 0 {
		return fmt.Errorf("%w: %s", domain.ErrInvalidInput, ErrMsgQuantityZero)
	}
	if !params.Kind.Valid() {
		return fmt.Errorf("%w: %s", domain.ErrInvalidInput, ErrMsgInvalidKind)
	}
	switch params.Kind {
	case domain.TransactionPurchase:
		if params.Quantity < 0 || params.UnitCost == nil {
			return fmt.Errorf("%w: %s", domain.ErrInvalidInput, ErrMsgPurchaseNeedsCost)
		}
	case domain.TransactionSale:
		if params.Quantity > 0 {
			return fmt.Errorf("%w: %s", domain.ErrInvalidInput, ErrMsgSaleMustDecrement)
		}
	}
	return nil
}

// ApplyTransaction validates and applies a single inventory movement
func (s *service) ApplyTransaction(ctx context.Context, params domain.TransactionParams) (*domain.InventoryTransaction, error) {
	log := logger.FromContext(ctx)

	if err := validateParams(params); err != nil {
		return nil, err
	}

	txn, err := s.ledgerRepo.ApplyTransaction(ctx, params)
	if err != nil {
		return nil, fmt.Errorf(ErrMsgApplyFailed, err)
	}

	metrics.InventoryTransactionsApplied.WithLabelValues(string(txn.Kind)).Inc()
	log.Info(LogMsgTransactionApplied,
		"transaction_id", txn.ID,
		"variant_id", txn.VariantID,
		"kind", txn.Kind,
		"quantity", txn.Quantity)
	return txn, nil
}

// ApplyBulk applies a batch of movements, typically a buylist intake or a
// stock count correction. Items that fail validation or application are
// collected per index and the rest continue.
func (s *service) ApplyBulk(ctx context.Context, batch []domain.TransactionParams) BulkResult {
	log := logger.FromContext(ctx)
	var result BulkResult

	for i, params := range batch {
		txn, err := s.ApplyTransaction(ctx, params)
		if err != nil {
			log.Warn(LogMsgBulkItemFailed, "index", i, "variant_id", params.VariantID, "error", err)
			result.Failed = append(result.Failed, BulkFailure{Index: i, Err: err})
			continue
		}
		result.Applied = append(result.Applied, *txn)
	}

	log.Info(LogMsgBulkCompleted, "applied", len(result.Applied), "failed", len(result.Failed))
	return result
}

// GetHistory returns the most recent movements for a variant
func (s *service) GetHistory(ctx context.Context, variantID int64, limit int) ([]domain.InventoryTransaction, error) {
	if limit <= 0 {
		limit = DefaultHistoryLimit
	}
	if _, err := s.variantRepo.GetVariantByID(ctx, variantID); err != nil {
		if errors.Is(err, domain.ErrVariantNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf(ErrMsgHistoryFailed, err)
	}
	txns, err := s.ledgerRepo.ListTransactions(ctx, variantID, limit)
	if err != nil {
		return nil, fmt.Errorf(ErrMsgHistoryFailed, err)
	}
	return txns, nil
}

// GetVariant returns a variant with its cached stock and cost basis
func (s *service) GetVariant(ctx context.Context, variantID int64) (*domain.Variant, error) {
	return s.variantRepo.GetVariantByID(ctx, variantID)
}

// GetVariantBySKU resolves a variant by its SKU, the identifier buylist
// spreadsheets and intake tools carry.
func (s *service) GetVariantBySKU(ctx context.Context, sku string) (*domain.Variant, error) {
	return s.variantRepo.GetVariantBySKU(ctx, sku)
}
