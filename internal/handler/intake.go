package handler

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/dumplingcollectibles/dumpling-price-automation/internal/domain"
	"github.com/dumplingcollectibles/dumpling-price-automation/internal/ledger"
	"github.com/dumplingcollectibles/dumpling-price-automation/internal/logger"
)

// ReferenceTypeIntake tags ledger rows written through the intake endpoint
const ReferenceTypeIntake = "intake"

// IntakeItem is one line of a buylist or distributor intake. Either
// variant_id or sku identifies the variant; sku wins when both are set.
type IntakeItem struct {
	VariantID int64           `json:"variant_id"`
	SKU       string          `json:"sku"`
	Quantity  int             `json:"quantity" validate:"required,gt=0"`
	UnitCost  decimal.Decimal `json:"unit_cost"`
	Notes     string          `json:"notes"`
}

// IntakeRequest represents a bulk purchase intake
type IntakeRequest struct {
	Source string       `json:"source"`
	Items  []IntakeItem `json:"items" validate:"required,min=1,dive"`
}

// IntakeFailure reports one rejected intake line
type IntakeFailure struct {
	Index int    `json:"index"`
	Error string `json:"error"`
}

// IntakeResponse summarizes an intake batch
type IntakeResponse struct {
	Message string          `json:"message"`
	Applied int             `json:"applied"`
	Failed  []IntakeFailure `json:"failed,omitempty"`
}

// HandleIntake applies a batch of purchase transactions. Lines apply
// independently; failures come back per index so the caller can fix and
// resubmit just the rejects.
func HandleIntake(ledgerService ledger.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		log := logger.FromContext(r.Context())

		var req IntakeRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			log.Error("Failed to decode intake request", "error", err)
			respondError(w, http.StatusBadRequest, ErrMsgInvalidRequest)
			return
		}

		if err := GetValidator().ValidateStruct(req); err != nil {
			log.Warn("Intake request failed validation", "error", err)
			respondJSON(w, http.StatusBadRequest, map[string]interface{}{
				"error":  ErrMsgInvalidRequest,
				"fields": FormatValidationError(err),
			})
			return
		}

		source := req.Source
		if source == "" {
			source = ReferenceTypeIntake
		}

		var failures []IntakeFailure
		batch := make([]domain.TransactionParams, 0, len(req.Items))
		indexes := make([]int, 0, len(req.Items))

		for i, item := range req.Items {
			variantID := item.VariantID
			if item.SKU != "" {
				variant, err := ledgerService.GetVariantBySKU(r.Context(), item.SKU)
				if err != nil {
					_, msg := mapServiceErrorToUserMessage(err)
					failures = append(failures, IntakeFailure{Index: i, Error: msg})
					continue
				}
				variantID = variant.ID
			}

			cost := item.UnitCost
			batch = append(batch, domain.TransactionParams{
				VariantID:     variantID,
				Quantity:      item.Quantity,
				Kind:          domain.TransactionPurchase,
				UnitCost:      &cost,
				ReferenceType: source,
				Notes:         item.Notes,
			})
			indexes = append(indexes, i)
		}

		result := ledgerService.ApplyBulk(r.Context(), batch)
		for _, f := range result.Failed {
			_, msg := mapServiceErrorToUserMessage(f.Err)
			failures = append(failures, IntakeFailure{Index: indexes[f.Index], Error: msg})
		}

		log.Info("Intake batch processed",
			"source", source,
			"items", len(req.Items),
			"applied", len(result.Applied),
			"failed", len(failures))

		respondJSON(w, http.StatusOK, IntakeResponse{
			Message: MsgIntakeApplied,
			Applied: len(result.Applied),
			Failed:  failures,
		})
	}
}

// AdjustInventoryRequest represents a manual stock correction
type AdjustInventoryRequest struct {
	VariantID int64  `json:"variant_id"`
	SKU       string `json:"sku"`
	Quantity  int    `json:"quantity" validate:"required"`
	Notes     string `json:"notes"`
}

// HandleAdjustInventory applies a single adjustment transaction, the tool
// for shrink, damage and count corrections.
func HandleAdjustInventory(ledgerService ledger.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		log := logger.FromContext(r.Context())

		var req AdjustInventoryRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			log.Error("Failed to decode adjustment request", "error", err)
			respondError(w, http.StatusBadRequest, ErrMsgInvalidRequest)
			return
		}

		if err := GetValidator().ValidateStruct(req); err != nil {
			log.Warn("Adjustment request failed validation", "error", err)
			respondJSON(w, http.StatusBadRequest, map[string]interface{}{
				"error":  ErrMsgInvalidRequest,
				"fields": FormatValidationError(err),
			})
			return
		}

		variantID := req.VariantID
		if req.SKU != "" {
			variant, err := ledgerService.GetVariantBySKU(r.Context(), req.SKU)
			if err != nil {
				respondServiceError(w, err)
				return
			}
			variantID = variant.ID
		}

		txn, err := ledgerService.ApplyTransaction(r.Context(), domain.TransactionParams{
			VariantID:     variantID,
			Quantity:      req.Quantity,
			Kind:          domain.TransactionAdjustment,
			ReferenceType: ReferenceTypeIntake,
			Notes:         req.Notes,
		})
		if err != nil {
			log.Error("Failed to apply adjustment", "variant_id", variantID, "error", err)
			respondServiceError(w, err)
			return
		}

		respondJSON(w, http.StatusOK, DataResponse{
			Message: MsgAdjustmentApplied,
			Data:    toTransactionResponse(*txn),
		})
	}
}

// VariantResponse is the wire shape of a catalog variant
type VariantResponse struct {
	ID                  int64            `json:"id"`
	ProductID           int64            `json:"product_id"`
	CardName            string           `json:"card_name"`
	SetCode             string           `json:"set_code"`
	CardNumber          string           `json:"card_number"`
	Condition           string           `json:"condition"`
	SKU                 string           `json:"sku"`
	InventoryQty        int              `json:"inventory_qty"`
	CostBasisAvg        *decimal.Decimal `json:"cost_basis_avg,omitempty"`
	TotalUnitsPurchased int              `json:"total_units_purchased"`
	MarketPrice         decimal.Decimal  `json:"market_price"`
	SellingPrice        decimal.Decimal  `json:"selling_price"`
	BuyCash             *decimal.Decimal `json:"buy_cash,omitempty"`
	BuyCredit           *decimal.Decimal `json:"buy_credit,omitempty"`
	ShopifyVariantID    *string          `json:"shopify_variant_id,omitempty"`
	UpdatedAt           time.Time        `json:"updated_at"`
}

func toVariantResponse(v domain.Variant) VariantResponse {
	return VariantResponse{
		ID:                  v.ID,
		ProductID:           v.ProductID,
		CardName:            v.CardName,
		SetCode:             v.SetCode,
		CardNumber:          v.CardNumber,
		Condition:           string(v.Condition),
		SKU:                 v.SKU,
		InventoryQty:        v.InventoryQty,
		CostBasisAvg:        v.CostBasisAvg,
		TotalUnitsPurchased: v.TotalUnitsPurchased,
		MarketPrice:         v.MarketPrice,
		SellingPrice:        v.SellingPrice,
		BuyCash:             v.BuyCash,
		BuyCredit:           v.BuyCredit,
		ShopifyVariantID:    v.ShopifyVariantID,
		UpdatedAt:           v.UpdatedAt,
	}
}

// TransactionResponse is the wire shape of a ledger movement
type TransactionResponse struct {
	ID            int64            `json:"id"`
	VariantID     int64            `json:"variant_id"`
	Kind          string           `json:"kind"`
	Quantity      int              `json:"quantity"`
	UnitCost      *decimal.Decimal `json:"unit_cost,omitempty"`
	ReferenceType string           `json:"reference_type,omitempty"`
	ReferenceID   *int64           `json:"reference_id,omitempty"`
	Notes         string           `json:"notes,omitempty"`
	CreatedAt     time.Time        `json:"created_at"`
}

func toTransactionResponse(t domain.InventoryTransaction) TransactionResponse {
	return TransactionResponse{
		ID:            t.ID,
		VariantID:     t.VariantID,
		Kind:          string(t.Kind),
		Quantity:      t.Quantity,
		UnitCost:      t.UnitCost,
		ReferenceType: t.ReferenceType,
		ReferenceID:   t.ReferenceID,
		Notes:         t.Notes,
		CreatedAt:     t.CreatedAt,
	}
}

// HandleGetVariant returns one variant by id
func HandleGetVariant(ledgerService ledger.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		variantID, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
		if err != nil {
			respondError(w, http.StatusBadRequest, ErrMsgInvalidID)
			return
		}

		variant, err := ledgerService.GetVariant(r.Context(), variantID)
		if err != nil {
			respondServiceError(w, err)
			return
		}

		respondJSON(w, http.StatusOK, toVariantResponse(*variant))
	}
}

// HandleLookupVariant returns one variant by SKU
func HandleLookupVariant(ledgerService ledger.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sku := r.URL.Query().Get("sku")
		if sku == "" {
			respondError(w, http.StatusBadRequest, fmt.Sprintf(ErrMsgMissingQueryParam, "sku"))
			return
		}

		variant, err := ledgerService.GetVariantBySKU(r.Context(), sku)
		if err != nil {
			respondServiceError(w, err)
			return
		}

		respondJSON(w, http.StatusOK, toVariantResponse(*variant))
	}
}

// HandleGetVariantHistory returns the most recent ledger movements for a variant
func HandleGetVariantHistory(ledgerService ledger.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		variantID, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
		if err != nil {
			respondError(w, http.StatusBadRequest, ErrMsgInvalidID)
			return
		}

		limit, err := parseLimit(r)
		if err != nil {
			respondError(w, http.StatusBadRequest, ErrMsgInvalidLimit)
			return
		}

		txns, err := ledgerService.GetHistory(r.Context(), variantID, limit)
		if err != nil {
			respondServiceError(w, err)
			return
		}

		out := make([]TransactionResponse, 0, len(txns))
		for _, t := range txns {
			out = append(out, toTransactionResponse(t))
		}
		respondJSON(w, http.StatusOK, DataResponse{Data: out})
	}
}

// parseLimit reads an optional limit query parameter; zero means default
func parseLimit(r *http.Request) (int, error) {
	raw := r.URL.Query().Get("limit")
	if raw == "" {
		return 0, nil
	}
	limit, err := strconv.Atoi(raw)
	if err != nil || limit < 0 {
		return 0, strconv.ErrSyntax
	}
	return limit, nil
}
