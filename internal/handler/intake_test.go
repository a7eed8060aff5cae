package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dumplingcollectibles/dumpling-price-automation/internal/domain"
	"github.com/dumplingcollectibles/dumpling-price-automation/internal/ledger"
)

type mockLedgerService struct {
	bySKU   map[string]*domain.Variant
	byID    map[int64]*domain.Variant
	applied []domain.TransactionParams
	history []domain.InventoryTransaction
	nextID  int64
}

func newMockLedgerService() *mockLedgerService {
	return &mockLedgerService{
		bySKU: make(map[string]*domain.Variant),
		byID:  make(map[int64]*domain.Variant),
	}
}

func (m *mockLedgerService) addVariant(v *domain.Variant) {
	m.bySKU[v.SKU] = v
	m.byID[v.ID] = v
}

func (m *mockLedgerService) ApplyTransaction(_ context.Context, params domain.TransactionParams) (*domain.InventoryTransaction, error) {
	if _, ok := m.byID[params.VariantID]; !ok {
		return nil, domain.ErrVariantNotFound
	}
	m.applied = append(m.applied, params)
	m.nextID++
	return &domain.InventoryTransaction{
		ID:        m.nextID,
		VariantID: params.VariantID,
		Kind:      params.Kind,
		Quantity:  params.Quantity,
		UnitCost:  params.UnitCost,
		Notes:     params.Notes,
		CreatedAt: time.Now(),
	}, nil
}

func (m *mockLedgerService) ApplyBulk(ctx context.Context, batch []domain.TransactionParams) ledger.BulkResult {
	var result ledger.BulkResult
	for i, params := range batch {
		txn, err := m.ApplyTransaction(ctx, params)
		if err != nil {
			result.Failed = append(result.Failed, ledger.BulkFailure{Index: i, Err: err})
			continue
		}
		result.Applied = append(result.Applied, *txn)
	}
	return result
}

func (m *mockLedgerService) GetHistory(_ context.Context, variantID int64, _ int) ([]domain.InventoryTransaction, error) {
	if _, ok := m.byID[variantID]; !ok {
		return nil, domain.ErrVariantNotFound
	}
	return m.history, nil
}

func (m *mockLedgerService) GetVariant(_ context.Context, variantID int64) (*domain.Variant, error) {
	v, ok := m.byID[variantID]
	if !ok {
		return nil, domain.ErrVariantNotFound
	}
	return v, nil
}

func (m *mockLedgerService) GetVariantBySKU(_ context.Context, sku string) (*domain.Variant, error) {
	v, ok := m.bySKU[sku]
	if !ok {
		return nil, domain.ErrVariantNotFound
	}
	return v, nil
}

func intakeVariant(id int64, sku string) *domain.Variant {
	return &domain.Variant{
		ID:        id,
		ProductID: id,
		CardName:  "Lightning Dumpling",
		SetCode:   "LOB",
		Condition: domain.ConditionNM,
		SKU:       sku,
	}
}

func TestHandleIntake_AppliesBatch(t *testing.T) {
	svc := newMockLedgerService()
	svc.addVariant(intakeVariant(1, "LOB-001-NM"))
	svc.addVariant(intakeVariant(2, "LOB-002-NM"))

	body := `{
		"source": "buylist",
		"items": [
			{"sku": "LOB-001-NM", "quantity": 3, "unit_cost": "4.50"},
			{"variant_id": 2, "quantity": 1, "unit_cost": "12.00"}
		]
	}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/intake", bytes.NewReader([]byte(body)))
	rec := httptest.NewRecorder()
	HandleIntake(svc)(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var resp IntakeResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, 2, resp.Applied)
	assert.Empty(t, resp.Failed)

	require.Len(t, svc.applied, 2)
	assert.Equal(t, int64(1), svc.applied[0].VariantID)
	assert.Equal(t, domain.TransactionPurchase, svc.applied[0].Kind)
	assert.Equal(t, "buylist", svc.applied[0].ReferenceType)
	require.NotNil(t, svc.applied[0].UnitCost)
	assert.True(t, svc.applied[0].UnitCost.Equal(decimal.RequireFromString("4.50")))
}

func TestHandleIntake_UnknownSKUFailsOnlyThatLine(t *testing.T) {
	svc := newMockLedgerService()
	svc.addVariant(intakeVariant(1, "LOB-001-NM"))

	body := `{
		"items": [
			{"sku": "NOPE-999-NM", "quantity": 3, "unit_cost": "4.50"},
			{"sku": "LOB-001-NM", "quantity": 1, "unit_cost": "2.00"}
		]
	}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/intake", bytes.NewReader([]byte(body)))
	rec := httptest.NewRecorder()
	HandleIntake(svc)(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var resp IntakeResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, 1, resp.Applied)
	require.Len(t, resp.Failed, 1)
	assert.Equal(t, 0, resp.Failed[0].Index)
}

func TestHandleIntake_RejectsInvalidQuantity(t *testing.T) {
	svc := newMockLedgerService()

	body := `{"items": [{"sku": "LOB-001-NM", "quantity": 0, "unit_cost": "4.50"}]}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/intake", bytes.NewReader([]byte(body)))
	rec := httptest.NewRecorder()
	HandleIntake(svc)(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Empty(t, svc.applied)
}

func TestHandleIntake_RejectsEmptyBatch(t *testing.T) {
	svc := newMockLedgerService()

	body := `{"items": []}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/intake", bytes.NewReader([]byte(body)))
	rec := httptest.NewRecorder()
	HandleIntake(svc)(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHandleAdjustInventory(t *testing.T) {
	svc := newMockLedgerService()
	svc.addVariant(intakeVariant(1, "LOB-001-NM"))

	body := `{"sku": "LOB-001-NM", "quantity": -2, "notes": "damaged in storage"}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/inventory/adjust", bytes.NewReader([]byte(body)))
	rec := httptest.NewRecorder()
	HandleAdjustInventory(svc)(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	require.Len(t, svc.applied, 1)
	assert.Equal(t, domain.TransactionAdjustment, svc.applied[0].Kind)
	assert.Equal(t, -2, svc.applied[0].Quantity)
}

func TestHandleGetVariant(t *testing.T) {
	svc := newMockLedgerService()
	svc.addVariant(intakeVariant(7, "LOB-007-NM"))

	r := chi.NewRouter()
	r.Get("/api/v1/variants/{id}", HandleGetVariant(svc))

	req := httptest.NewRequest(http.MethodGet, "/api/v1/variants/7", nil)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var resp VariantResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, int64(7), resp.ID)
	assert.Equal(t, "LOB-007-NM", resp.SKU)
}

func TestHandleGetVariant_NotFound(t *testing.T) {
	svc := newMockLedgerService()

	r := chi.NewRouter()
	r.Get("/api/v1/variants/{id}", HandleGetVariant(svc))

	req := httptest.NewRequest(http.MethodGet, "/api/v1/variants/404", nil)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestHandleGetVariantHistory_InvalidLimit(t *testing.T) {
	svc := newMockLedgerService()
	svc.addVariant(intakeVariant(7, "LOB-007-NM"))

	r := chi.NewRouter()
	r.Get("/api/v1/variants/{id}/history", HandleGetVariantHistory(svc))

	req := httptest.NewRequest(http.MethodGet, fmt.Sprintf("/api/v1/variants/%d/history?limit=abc", 7), nil)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
