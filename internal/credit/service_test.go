package credit

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dumplingcollectibles/dumpling-price-automation/internal/domain"
)

// mockCreditRepository implements repository.Credit with running balances
type mockCreditRepository struct {
	entries   map[int64][]domain.StoreCreditEntry
	users     *mockUserRepository
	appendErr error
	nextID    int64
}

func newMockCreditRepository(users *mockUserRepository) *mockCreditRepository {
	return &mockCreditRepository{entries: make(map[int64][]domain.StoreCreditEntry), users: users}
}

func (m *mockCreditRepository) AppendEntry(ctx context.Context, params domain.CreditEntryParams) (*domain.StoreCreditEntry, error) {
	if m.appendErr != nil {
		return nil, m.appendErr
	}
	if _, ok := m.users.byID[params.UserID]; !ok {
		return nil, domain.ErrUserNotFound
	}
	balance := decimal.Zero
	if prev := m.entries[params.UserID]; len(prev) > 0 {
		balance = prev[len(prev)-1].BalanceAfter
	}
	m.nextID++
	entry := domain.StoreCreditEntry{
		ID:            m.nextID,
		UserID:        params.UserID,
		Amount:        params.Amount,
		Type:          params.Type,
		BalanceAfter:  balance.Add(params.Amount),
		GiftCardCode:  params.GiftCardCode,
		ReferenceType: params.ReferenceType,
		ReferenceID:   params.ReferenceID,
		Notes:         params.Notes,
		CreatedAt:     time.Now(),
	}
	m.entries[params.UserID] = append(m.entries[params.UserID], entry)
	return &entry, nil
}

func (m *mockCreditRepository) GetBalance(ctx context.Context, userID int64) (decimal.Decimal, error) {
	if prev := m.entries[userID]; len(prev) > 0 {
		return prev[len(prev)-1].BalanceAfter, nil
	}
	return decimal.Zero, nil
}

func (m *mockCreditRepository) ListEntries(ctx context.Context, userID int64, limit int) ([]domain.StoreCreditEntry, error) {
	all := m.entries[userID]
	var out []domain.StoreCreditEntry
	for i := len(all) - 1; i >= 0 && len(out) < limit; i-- {
		out = append(out, all[i])
	}
	return out, nil
}

// mockUserRepository implements repository.User keyed on email
type mockUserRepository struct {
	byID    map[int64]*domain.User
	byEmail map[string]*domain.User
	nextID  int64
}

func newMockUserRepository() *mockUserRepository {
	return &mockUserRepository{byID: make(map[int64]*domain.User), byEmail: make(map[string]*domain.User)}
}

func (m *mockUserRepository) UpsertUser(ctx context.Context, user *domain.User) error {
	if existing, ok := m.byEmail[user.Email]; ok {
		user.ID = existing.ID
		user.CreatedAt = existing.CreatedAt
		if user.Name != "" {
			existing.Name = user.Name
		}
		if user.ShopifyCustomerID != "" {
			existing.ShopifyCustomerID = user.ShopifyCustomerID
		}
		return nil
	}
	m.nextID++
	user.ID = m.nextID
	user.CreatedAt = time.Now()
	stored := *user
	m.byID[user.ID] = &stored
	m.byEmail[user.Email] = &stored
	return nil
}

func (m *mockUserRepository) GetUserByID(ctx context.Context, userID int64) (*domain.User, error) {
	u, ok := m.byID[userID]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	return u, nil
}

func (m *mockUserRepository) GetUserByEmail(ctx context.Context, email string) (*domain.User, error) {
	u, ok := m.byEmail[email]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	return u, nil
}

func (m *mockUserRepository) GetUserByShopifyCustomerID(ctx context.Context, customerID string) (*domain.User, error) {
	for _, u := range m.byID {
		if u.ShopifyCustomerID == customerID {
			return u, nil
		}
	}
	return nil, domain.ErrUserNotFound
}

// mockGiftCardIssuer implements GiftCardIssuer
type mockGiftCardIssuer struct {
	created []decimal.Decimal
	err     error
}

func (m *mockGiftCardIssuer) CreateGiftCard(ctx context.Context, amount decimal.Decimal, note string) (string, error) {
	if m.err != nil {
		return "", m.err
	}
	m.created = append(m.created, amount)
	return fmt.Sprintf("GIFT-%04d", len(m.created)), nil
}

func newTestService() (Service, *mockCreditRepository, *mockUserRepository, *mockGiftCardIssuer) {
	users := newMockUserRepository()
	credits := newMockCreditRepository(users)
	issuer := &mockGiftCardIssuer{}
	return NewService(credits, users, issuer), credits, users, issuer
}

func d(s string) decimal.Decimal {
	v, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return v
}

func TestIssuePayout_CreatesUserAndEntry(t *testing.T) {
	svc, _, users, _ := newTestService()

	entry, err := svc.IssuePayout(context.Background(), PayoutParams{
		Email:  "collector@example.com",
		Name:   "Sam Reyes",
		Amount: d("25.00"),
		Notes:  "buylist intake #12",
	})
	require.NoError(t, err)
	assert.True(t, entry.Amount.Equal(d("25.00")))
	assert.True(t, entry.BalanceAfter.Equal(d("25.00")))
	assert.Equal(t, domain.CreditBuylistPayout, entry.Type)
	assert.Nil(t, entry.GiftCardCode)

	u, err := users.GetUserByEmail(context.Background(), "collector@example.com")
	require.NoError(t, err)
	assert.Equal(t, entry.UserID, u.ID)
}

func TestIssuePayout_WithGiftCard(t *testing.T) {
	svc, _, _, issuer := newTestService()

	entry, err := svc.IssuePayout(context.Background(), PayoutParams{
		Email:        "collector@example.com",
		Amount:       d("40.00"),
		WithGiftCard: true,
	})
	require.NoError(t, err)
	require.NotNil(t, entry.GiftCardCode)
	assert.Equal(t, "GIFT-0001", *entry.GiftCardCode)
	require.Len(t, issuer.created, 1)
	assert.True(t, issuer.created[0].Equal(d("40.00")))
}

func TestIssuePayout_GiftCardFailureStopsLedgerWrite(t *testing.T) {
	svc, credits, _, issuer := newTestService()
	issuer.err = errors.New("platform unavailable")

	_, err := svc.IssuePayout(context.Background(), PayoutParams{
		Email:        "collector@example.com",
		Amount:       d("40.00"),
		WithGiftCard: true,
	})
	assert.Error(t, err)
	assert.Empty(t, credits.entries)
}

func TestIssuePayout_Validation(t *testing.T) {
	svc, _, _, _ := newTestService()
	ctx := context.Background()

	_, err := svc.IssuePayout(ctx, PayoutParams{Email: "a@b.c", Amount: d("0")})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = svc.IssuePayout(ctx, PayoutParams{Email: "a@b.c", Amount: d("-5.00")})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = svc.IssuePayout(ctx, PayoutParams{Amount: d("5.00")})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestAdjust_RunningBalance(t *testing.T) {
	svc, _, users, _ := newTestService()
	ctx := context.Background()

	user := &domain.User{Email: "collector@example.com"}
	require.NoError(t, users.UpsertUser(ctx, user))

	first, err := svc.Adjust(ctx, user.ID, d("25.00"), "promo credit")
	require.NoError(t, err)
	assert.True(t, first.BalanceAfter.Equal(d("25.00")))
	assert.Equal(t, domain.CreditAdjustment, first.Type)

	second, err := svc.Adjust(ctx, user.ID, d("-10.00"), "correction")
	require.NoError(t, err)
	assert.True(t, second.BalanceAfter.Equal(d("15.00")))
	assert.Equal(t, domain.CreditOrderPayment, second.Type)

	balance, err := svc.GetBalance(ctx, user.ID)
	require.NoError(t, err)
	assert.True(t, balance.Equal(d("15.00")))
}

func TestAdjust_ZeroAmount(t *testing.T) {
	svc, _, _, _ := newTestService()

	_, err := svc.Adjust(context.Background(), 1, decimal.Zero, "noop")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestGetBalance_UnknownUser(t *testing.T) {
	svc, _, _, _ := newTestService()

	_, err := svc.GetBalance(context.Background(), 99)
	assert.ErrorIs(t, err, domain.ErrUserNotFound)
}

func TestGetHistory_NewestFirst(t *testing.T) {
	svc, _, users, _ := newTestService()
	ctx := context.Background()

	user := &domain.User{Email: "collector@example.com"}
	require.NoError(t, users.UpsertUser(ctx, user))

	for _, amount := range []string{"5.00", "10.00", "20.00"} {
		_, err := svc.Adjust(ctx, user.ID, d(amount), "")
		require.NoError(t, err)
	}

	entries, err := svc.GetHistory(ctx, user.ID, 2)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.True(t, entries[0].Amount.Equal(d("20.00")))
	assert.True(t, entries[1].Amount.Equal(d("10.00")))
}
