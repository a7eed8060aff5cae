package postgres

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dumplingcollectibles/dumpling-price-automation/internal/domain"
)

// TestConcurrentPurchases_Integration verifies the row lock in the inventory
// write path: concurrent purchases for one variant must serialize, so no
// update is lost from the quantity or the weighted average cost.
func TestConcurrentPurchases_Integration(t *testing.T) {
	pool := startTestDB(t)
	ctx := context.Background()

	ledgerRepo := NewLedgerRepository(pool)
	variantRepo := NewVariantRepository(pool)
	variantID := seedVariant(t, pool, "CONC-001-NM", domain.ConditionNM, 0)

	const concurrentOps = 20
	unitCost := decimal.RequireFromString("2.00")

	var wg sync.WaitGroup
	errChan := make(chan error, concurrentOps)
	wg.Add(concurrentOps)
	for i := 0; i < concurrentOps; i++ {
		go func() {
			defer wg.Done()
			_, err := ledgerRepo.ApplyTransaction(ctx, domain.TransactionParams{
				VariantID: variantID, Quantity: 1, Kind: domain.TransactionPurchase,
				UnitCost: &unitCost, ReferenceType: "buylist",
			})
			if err != nil {
				errChan <- err
			}
		}()
	}
	wg.Wait()
	close(errChan)

	for err := range errChan {
		t.Fatalf("concurrent purchase failed: %v", err)
	}

	v, err := variantRepo.GetVariantByID(ctx, variantID)
	require.NoError(t, err)
	assert.Equal(t, concurrentOps, v.InventoryQty, "lost inventory updates under concurrency")
	assert.Equal(t, concurrentOps, v.TotalUnitsPurchased)
	require.NotNil(t, v.CostBasisAvg)
	assert.True(t, v.CostBasisAvg.Equal(unitCost), "got %s", v.CostBasisAvg)

	txns, err := ledgerRepo.ListTransactions(ctx, variantID, concurrentOps*2)
	require.NoError(t, err)
	assert.Len(t, txns, concurrentOps)
}

// TestConcurrentSales_Integration verifies that the non-negative stock rule
// holds under concurrency: with 10 on hand and 20 racing sales, exactly 10
// succeed and the rest fail without touching stock.
func TestConcurrentSales_Integration(t *testing.T) {
	pool := startTestDB(t)
	ctx := context.Background()

	ledgerRepo := NewLedgerRepository(pool)
	variantRepo := NewVariantRepository(pool)
	variantID := seedVariant(t, pool, "CONC-002-NM", domain.ConditionNM, 10)

	const concurrentOps = 20

	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		succeeded int
		rejected  int
	)
	wg.Add(concurrentOps)
	for i := 0; i < concurrentOps; i++ {
		go func() {
			defer wg.Done()
			_, err := ledgerRepo.ApplyTransaction(ctx, domain.TransactionParams{
				VariantID: variantID, Quantity: -1, Kind: domain.TransactionSale,
			})
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				succeeded++
			case errors.Is(err, domain.ErrInsufficientInventory):
				rejected++
			default:
				t.Errorf("unexpected sale error: %v", err)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 10, succeeded)
	assert.Equal(t, 10, rejected)

	v, err := variantRepo.GetVariantByID(ctx, variantID)
	require.NoError(t, err)
	assert.Equal(t, 0, v.InventoryQty)
}

// TestConcurrentCreditEntries_Integration verifies the user row lock in the
// credit write path: every entry's balance_after must equal the previous
// balance plus its amount, with no gaps or duplicates in the running sum.
func TestConcurrentCreditEntries_Integration(t *testing.T) {
	pool := startTestDB(t)
	ctx := context.Background()

	creditRepo := NewCreditRepository(pool)
	userID := seedUser(t, pool, "concurrent@example.com")

	const concurrentOps = 20
	amount := decimal.RequireFromString("1.00")

	var wg sync.WaitGroup
	errChan := make(chan error, concurrentOps)
	wg.Add(concurrentOps)
	for i := 0; i < concurrentOps; i++ {
		go func() {
			defer wg.Done()
			_, err := creditRepo.AppendEntry(ctx, domain.CreditEntryParams{
				UserID: userID, Amount: amount, Type: domain.CreditBuylistPayout,
			})
			if err != nil {
				errChan <- err
			}
		}()
	}
	wg.Wait()
	close(errChan)

	for err := range errChan {
		t.Fatalf("concurrent credit entry failed: %v", err)
	}

	balance, err := creditRepo.GetBalance(ctx, userID)
	require.NoError(t, err)
	assert.True(t, balance.Equal(decimal.NewFromInt(concurrentOps)), "got %s", balance)

	entries, err := creditRepo.ListEntries(ctx, userID, concurrentOps*2)
	require.NoError(t, err)
	require.Len(t, entries, concurrentOps)

	// ListEntries returns newest first; walk oldest to newest and check the
	// running sum never skips or repeats.
	running := decimal.Zero
	for i := len(entries) - 1; i >= 0; i-- {
		running = running.Add(entries[i].Amount)
		assert.True(t, entries[i].BalanceAfter.Equal(running),
			"entry %d balance_after %s, want %s", entries[i].ID, entries[i].BalanceAfter, running)
	}
}
