package credit

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/dumplingcollectibles/dumpling-price-automation/internal/domain"
	"github.com/dumplingcollectibles/dumpling-price-automation/internal/logger"
	"github.com/dumplingcollectibles/dumpling-price-automation/internal/metrics"
	"github.com/dumplingcollectibles/dumpling-price-automation/internal/repository"
)

// GiftCardIssuer creates gift cards on the commerce platform so issued credit
// is spendable at checkout
type GiftCardIssuer interface {
	CreateGiftCard(ctx context.Context, amount decimal.Decimal, note string) (string, error)
}

// PayoutParams carries a buylist payout request
type PayoutParams struct {
	Email             string
	Name              string
	ShopifyCustomerID string
	Amount            decimal.Decimal
	ReferenceType     string
	ReferenceID       *int64
	Notes             string
	WithGiftCard      bool
}

// Service defines the interface for store credit operations
type Service interface {
	IssuePayout(ctx context.Context, params PayoutParams) (*domain.StoreCreditEntry, error)
	Adjust(ctx context.Context, userID int64, amount decimal.Decimal, notes string) (*domain.StoreCreditEntry, error)
	GetBalance(ctx context.Context, userID int64) (decimal.Decimal, error)
	GetHistory(ctx context.Context, userID int64, limit int) ([]domain.StoreCreditEntry, error)
}

// service implements the Service interface
type service struct {
	creditRepo repository.Credit
	userRepo   repository.User
	giftCards  GiftCardIssuer
}

// NewService creates a new credit service. giftCards may be nil when no
// platform connection is configured; payouts then stay ledger-only.
func NewService(creditRepo repository.Credit, userRepo repository.User, giftCards GiftCardIssuer) Service {
	return &service{
		creditRepo: creditRepo,
		userRepo:   userRepo,
		giftCards:  giftCards,
	}
}

// IssuePayout credits a customer for a buylist intake. The customer row is
// created on first payout. When a gift card is requested the card is created
// before the ledger write, so every spendable card has a matching entry.
func (s *service) IssuePayout(ctx context.Context, params PayoutParams) (*domain.StoreCreditEntry, error) {
	log := logger.FromContext(ctx)

	if params.Amount.LessThanOrEqual(decimal.Zero) {
		return nil, fmt.Errorf("%w: %s", domain.ErrInvalidInput, ErrMsgPayoutNotPositive)
	}
	if params.Email == "" {
		return nil, fmt.Errorf("%w: %s", domain.ErrInvalidInput, ErrMsgEmailRequired)
	}

	user := &domain.User{
		Email:             params.Email,
		Name:              params.Name,
		ShopifyCustomerID: params.ShopifyCustomerID,
	}
	if err := s.userRepo.UpsertUser(ctx, user); err != nil {
		return nil, fmt.Errorf(ErrMsgUserResolUnavail, err)
	}

	var giftCardCode *string
	if params.WithGiftCard && s.giftCards != nil {
		code, err := s.giftCards.CreateGiftCard(ctx, params.Amount, params.Notes)
		if err != nil {
			return nil, fmt.Errorf(ErrMsgGiftCardFailed, err)
		}
		giftCardCode = &code
		log.Info(LogMsgGiftCardCreated, "user_id", user.ID, "amount", params.Amount)
	}

	entry, err := s.creditRepo.AppendEntry(ctx, domain.CreditEntryParams{
		UserID:        user.ID,
		Amount:        params.Amount,
		Type:          domain.CreditBuylistPayout,
		GiftCardCode:  giftCardCode,
		ReferenceType: params.ReferenceType,
		ReferenceID:   params.ReferenceID,
		Notes:         params.Notes,
	})
	if err != nil {
		if giftCardCode != nil {
			// The card exists but the ledger write failed; it needs a manual
			// void or a replayed payout.
			log.Error("Gift card issued without ledger entry", "user_id", user.ID, "amount", params.Amount)
		}
		return nil, fmt.Errorf(ErrMsgAppendFailed, err)
	}

	metrics.CreditEntriesWritten.WithLabelValues(string(entry.Type)).Inc()
	log.Info(LogMsgCreditIssued,
		"entry_id", entry.ID,
		"user_id", entry.UserID,
		"amount", entry.Amount,
		"balance_after", entry.BalanceAfter)
	return entry, nil
}

// Adjust writes a manual correction, positive or negative. A negative
// adjustment records as an order payment since that is what a manual
// debit against a customer balance represents.
func (s *service) Adjust(ctx context.Context, userID int64, amount decimal.Decimal, notes string) (*domain.StoreCreditEntry, error) {
	log := logger.FromContext(ctx)

	if amount.IsZero() {
		return nil, fmt.Errorf("%w: %s", domain.ErrInvalidInput, ErrMsgAmountZero)
	}

	entryType := domain.CreditAdjustment
	if amount.IsNegative() {
		entryType = domain.CreditOrderPayment
	}

	entry, err := s.creditRepo.AppendEntry(ctx, domain.CreditEntryParams{
		UserID: userID,
		Amount: amount,
		Type:   entryType,
		Notes:  notes,
	})
	if err != nil {
		return nil, fmt.Errorf(ErrMsgAppendFailed, err)
	}

	metrics.CreditEntriesWritten.WithLabelValues(string(entry.Type)).Inc()
	log.Info(LogMsgCreditAdjusted,
		"entry_id", entry.ID,
		"user_id", entry.UserID,
		"amount", entry.Amount,
		"balance_after", entry.BalanceAfter)
	return entry, nil
}

// GetBalance returns the customer's current balance
func (s *service) GetBalance(ctx context.Context, userID int64) (decimal.Decimal, error) {
	if _, err := s.userRepo.GetUserByID(ctx, userID); err != nil {
		return decimal.Zero, err
	}
	balance, err := s.creditRepo.GetBalance(ctx, userID)
	if err != nil {
		return decimal.Zero, fmt.Errorf(ErrMsgBalanceFailed, err)
	}
	return balance, nil
}

// GetHistory returns the most recent credit entries for a customer
func (s *service) GetHistory(ctx context.Context, userID int64, limit int) ([]domain.StoreCreditEntry, error) {
	if limit <= 0 {
		limit = DefaultHistoryLimit
	}
	if _, err := s.userRepo.GetUserByID(ctx, userID); err != nil {
		return nil, err
	}
	entries, err := s.creditRepo.ListEntries(ctx, userID, limit)
	if err != nil {
		return nil, fmt.Errorf(ErrMsgHistoryFailed, err)
	}
	return entries, nil
}
