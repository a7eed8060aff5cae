package audit

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dumplingcollectibles/dumpling-price-automation/internal/domain"
	"github.com/dumplingcollectibles/dumpling-price-automation/internal/repository"
)

type mockVariantRepo struct {
	variants []domain.Variant
	listErr  error
}

func (m *mockVariantRepo) ListSyncedVariants(ctx context.Context) ([]domain.Variant, error) {
	if m.listErr != nil {
		return nil, m.listErr
	}
	return m.variants, nil
}

func (m *mockVariantRepo) GetVariantByID(ctx context.Context, id int64) (*domain.Variant, error) {
	return nil, domain.ErrVariantNotFound
}

func (m *mockVariantRepo) GetVariantBySKU(ctx context.Context, sku string) (*domain.Variant, error) {
	return nil, domain.ErrVariantNotFound
}

func (m *mockVariantRepo) GetVariantByShopifyVariantID(ctx context.Context, id string) (*domain.Variant, error) {
	return nil, domain.ErrVariantNotFound
}

func (m *mockVariantRepo) ListVariantsByProduct(ctx context.Context, productID int64) ([]domain.Variant, error) {
	return nil, nil
}

func (m *mockVariantRepo) ListVariantsInBucket(ctx context.Context, bucket domain.PriceBucket) ([]domain.Variant, error) {
	return nil, nil
}

func (m *mockVariantRepo) UpdatePricing(ctx context.Context, variantID int64, pricing repository.VariantPricing) error {
	return nil
}

func (m *mockVariantRepo) UpdateShopifyIDs(ctx context.Context, variantID int64, shopifyVariantID string, inventoryItemID int64) error {
	return nil
}

type mockLevels struct {
	levels  map[int64]int
	written map[int64]int
	failOn  map[int64]error
}

func (m *mockLevels) GetInventoryLevel(ctx context.Context, inventoryItemID int64) (int, error) {
	if err, ok := m.failOn[inventoryItemID]; ok {
		return 0, err
	}
	return m.levels[inventoryItemID], nil
}

func (m *mockLevels) SetInventoryLevel(ctx context.Context, inventoryItemID int64, available int) error {
	if err, ok := m.failOn[inventoryItemID]; ok {
		return err
	}
	if m.written == nil {
		m.written = make(map[int64]int)
	}
	m.written[inventoryItemID] = available
	return nil
}

func i64Ptr(v int64) *int64 { return &v }

func syncedVariant(id int64, itemID int64, localQty int) domain.Variant {
	return domain.Variant{
		ID:                     id,
		CardName:               "Dark Magician",
		Condition:              domain.ConditionNM,
		SKU:                    fmt.Sprintf("SKU-%d", id),
		InventoryQty:           localQty,
		ShopifyInventoryItemID: i64Ptr(itemID),
	}
}

func TestRun_AllInSync(t *testing.T) {
	repo := &mockVariantRepo{variants: []domain.Variant{
		syncedVariant(1, 101, 5),
		syncedVariant(2, 102, 0),
	}}
	levels := &mockLevels{levels: map[int64]int{101: 5, 102: 0}}
	svc := NewService(repo, levels)

	report, err := svc.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, report.TotalChecked)
	assert.Equal(t, 2, report.InSync)
	assert.Equal(t, 0, report.Drifted)
	assert.Equal(t, domain.AuditExcellent, report.Health)
	assert.False(t, report.RecommendPush)
	assert.Empty(t, report.TopDrifted)
}

func TestRun_DetectsDrift(t *testing.T) {
	repo := &mockVariantRepo{variants: []domain.Variant{
		syncedVariant(1, 101, 5), // in sync
		syncedVariant(2, 102, 3), // external shows 7, delta -4
		syncedVariant(3, 103, 9), // external shows 8, delta +1
	}}
	levels := &mockLevels{levels: map[int64]int{101: 5, 102: 7, 103: 8}}
	svc := NewService(repo, levels)

	report, err := svc.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, report.InSync)
	assert.Equal(t, 2, report.Drifted)
	assert.Equal(t, domain.AuditGood, report.Health)
	assert.True(t, report.RecommendPush)

	// Sorted by |delta| descending
	require.Len(t, report.TopDrifted, 2)
	assert.Equal(t, int64(2), report.TopDrifted[0].VariantID)
	assert.Equal(t, -4, report.TopDrifted[0].Delta)
	assert.Equal(t, int64(3), report.TopDrifted[1].VariantID)
	assert.Equal(t, 1, report.TopDrifted[1].Delta)
}

func TestRun_ErrorsDoNotStopAudit(t *testing.T) {
	repo := &mockVariantRepo{variants: []domain.Variant{
		syncedVariant(1, 101, 5),
		syncedVariant(2, 102, 3),
	}}
	levels := &mockLevels{
		levels: map[int64]int{101: 5},
		failOn: map[int64]error{102: errors.New("not found")},
	}
	svc := NewService(repo, levels)

	report, err := svc.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, report.InSync)
	assert.Equal(t, 1, report.Errors)
	require.Len(t, report.ErrorDetails, 1)
	assert.Equal(t, domain.DriftError, report.ErrorDetails[0].Status)
	// Errors alone never grade excellent
	assert.Equal(t, domain.AuditGood, report.Health)
}

func TestRun_HealthGrades(t *testing.T) {
	variantCount := func(n int) []domain.Variant {
		var vs []domain.Variant
		for i := 1; i <= n; i++ {
			vs = append(vs, syncedVariant(int64(i), int64(100+i), 1))
		}
		return vs
	}

	tests := []struct {
		name    string
		drifted int
		want    domain.AuditHealth
	}{
		{"nine drifted is good", 9, domain.AuditGood},
		{"ten drifted needs attention", 10, domain.AuditAttentionNeeded},
		{"forty nine needs attention", 49, domain.AuditAttentionNeeded},
		{"fifty requires action", 50, domain.AuditActionRequired},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := &mockVariantRepo{variants: variantCount(tt.drifted)}
			// External reports zero everywhere, every variant drifts
			levels := &mockLevels{levels: map[int64]int{}}
			svc := NewService(repo, levels)

			report, err := svc.Run(context.Background())
			require.NoError(t, err)
			assert.Equal(t, tt.drifted, report.Drifted)
			assert.Equal(t, tt.want, report.Health)
			assert.LessOrEqual(t, len(report.TopDrifted), DefaultTopDrifted)
		})
	}
}

func TestPushInventory(t *testing.T) {
	repo := &mockVariantRepo{variants: []domain.Variant{
		syncedVariant(1, 101, 5),
		syncedVariant(2, 102, 3),
		syncedVariant(3, 103, 7),
	}}
	levels := &mockLevels{
		levels: map[int64]int{},
		failOn: map[int64]error{103: errors.New("rate limited")},
	}
	svc := NewService(repo, levels)

	pushed, failed, err := svc.PushInventory(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, pushed)
	assert.Equal(t, 1, failed)
	assert.Equal(t, 5, levels.written[101])
	assert.Equal(t, 3, levels.written[102])
}
