package handler

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/shopspring/decimal"

	"github.com/dumplingcollectibles/dumpling-price-automation/internal/credit"
	"github.com/dumplingcollectibles/dumpling-price-automation/internal/domain"
	"github.com/dumplingcollectibles/dumpling-price-automation/internal/logger"
)

// PayoutRequest represents a buylist payout in store credit
type PayoutRequest struct {
	Email             string          `json:"email" validate:"required,email"`
	Name              string          `json:"name"`
	ShopifyCustomerID string          `json:"shopify_customer_id"`
	Amount            decimal.Decimal `json:"amount"`
	ReferenceType     string          `json:"reference_type"`
	ReferenceID       *int64          `json:"reference_id"`
	Notes             string          `json:"notes"`
	WithGiftCard      bool            `json:"with_gift_card"`
}

// CreditAdjustRequest represents a manual store-credit correction
type CreditAdjustRequest struct {
	UserID int64           `json:"user_id" validate:"required"`
	Amount decimal.Decimal `json:"amount"`
	Notes  string          `json:"notes"`
}

// CreditEntryResponse is the wire shape of a store-credit ledger entry
type CreditEntryResponse struct {
	ID           int64           `json:"id"`
	UserID       int64           `json:"user_id"`
	Amount       decimal.Decimal `json:"amount"`
	Type         string          `json:"type"`
	BalanceAfter decimal.Decimal `json:"balance_after"`
	GiftCardCode *string         `json:"gift_card_code,omitempty"`
	Notes        string          `json:"notes,omitempty"`
	CreatedAt    time.Time       `json:"created_at"`
}

func toCreditEntryResponse(e domain.StoreCreditEntry) CreditEntryResponse {
	return CreditEntryResponse{
		ID:           e.ID,
		UserID:       e.UserID,
		Amount:       e.Amount,
		Type:         string(e.Type),
		BalanceAfter: e.BalanceAfter,
		GiftCardCode: e.GiftCardCode,
		Notes:        e.Notes,
		CreatedAt:    e.CreatedAt,
	}
}

// HandlePayout issues a buylist payout in store credit, optionally backed by
// a Shopify gift card.
func HandlePayout(creditService credit.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		log := logger.FromContext(r.Context())

		var req PayoutRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			log.Error("Failed to decode payout request", "error", err)
			respondError(w, http.StatusBadRequest, ErrMsgInvalidRequest)
			return
		}

		if err := GetValidator().ValidateStruct(req); err != nil {
			log.Warn("Payout request failed validation", "error", err)
			respondJSON(w, http.StatusBadRequest, map[string]interface{}{
				"error":  ErrMsgInvalidRequest,
				"fields": FormatValidationError(err),
			})
			return
		}

		entry, err := creditService.IssuePayout(r.Context(), credit.PayoutParams{
			Email:             req.Email,
			Name:              req.Name,
			ShopifyCustomerID: req.ShopifyCustomerID,
			Amount:            req.Amount,
			ReferenceType:     req.ReferenceType,
			ReferenceID:       req.ReferenceID,
			Notes:             req.Notes,
			WithGiftCard:      req.WithGiftCard,
		})
		if err != nil {
			log.Error("Failed to issue payout", "email", req.Email, "error", err)
			respondServiceError(w, err)
			return
		}

		respondJSON(w, http.StatusCreated, DataResponse{
			Message: MsgPayoutIssued,
			Data:    toCreditEntryResponse(*entry),
		})
	}
}

// HandleAdjustCredit applies a manual store-credit correction
func HandleAdjustCredit(creditService credit.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		log := logger.FromContext(r.Context())

		var req CreditAdjustRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			log.Error("Failed to decode credit adjustment request", "error", err)
			respondError(w, http.StatusBadRequest, ErrMsgInvalidRequest)
			return
		}

		if err := GetValidator().ValidateStruct(req); err != nil {
			log.Warn("Credit adjustment failed validation", "error", err)
			respondJSON(w, http.StatusBadRequest, map[string]interface{}{
				"error":  ErrMsgInvalidRequest,
				"fields": FormatValidationError(err),
			})
			return
		}

		entry, err := creditService.Adjust(r.Context(), req.UserID, req.Amount, req.Notes)
		if err != nil {
			log.Error("Failed to adjust store credit", "user_id", req.UserID, "error", err)
			respondServiceError(w, err)
			return
		}

		respondJSON(w, http.StatusOK, DataResponse{
			Message: MsgCreditAdjusted,
			Data:    toCreditEntryResponse(*entry),
		})
	}
}

// BalanceResponse reports a customer's current store-credit balance
type BalanceResponse struct {
	UserID  int64           `json:"user_id"`
	Balance decimal.Decimal `json:"balance"`
}

// HandleGetBalance returns the current balance for a user
func HandleGetBalance(creditService credit.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, err := parseUserID(r)
		if err != nil {
			respondError(w, http.StatusBadRequest, ErrMsgInvalidID)
			return
		}

		balance, err := creditService.GetBalance(r.Context(), userID)
		if err != nil {
			respondServiceError(w, err)
			return
		}

		respondJSON(w, http.StatusOK, BalanceResponse{UserID: userID, Balance: balance})
	}
}

// HandleGetCreditHistory returns the most recent ledger entries for a user
func HandleGetCreditHistory(creditService credit.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, err := parseUserID(r)
		if err != nil {
			respondError(w, http.StatusBadRequest, ErrMsgInvalidID)
			return
		}

		limit, err := parseLimit(r)
		if err != nil {
			respondError(w, http.StatusBadRequest, ErrMsgInvalidLimit)
			return
		}

		entries, err := creditService.GetHistory(r.Context(), userID, limit)
		if err != nil {
			respondServiceError(w, err)
			return
		}

		out := make([]CreditEntryResponse, 0, len(entries))
		for _, e := range entries {
			out = append(out, toCreditEntryResponse(e))
		}
		respondJSON(w, http.StatusOK, DataResponse{Data: out})
	}
}

func parseUserID(r *http.Request) (int64, error) {
	return strconv.ParseInt(r.URL.Query().Get("user_id"), 10, 64)
}
