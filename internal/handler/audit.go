package handler

import (
	"net/http"
	"time"

	"github.com/dumplingcollectibles/dumpling-price-automation/internal/audit"
	"github.com/dumplingcollectibles/dumpling-price-automation/internal/domain"
	"github.com/dumplingcollectibles/dumpling-price-automation/internal/logger"
)

// VariantAuditResponse is the wire shape of one audited variant
type VariantAuditResponse struct {
	VariantID   int64  `json:"variant_id"`
	CardName    string `json:"card_name"`
	Condition   string `json:"condition"`
	SKU         string `json:"sku"`
	LocalQty    int    `json:"local_qty"`
	ExternalQty int    `json:"external_qty"`
	Delta       int    `json:"delta"`
	Status      string `json:"status"`
	Reason      string `json:"reason,omitempty"`
}

// AuditReportResponse is the wire shape of a reconciliation report
type AuditReportResponse struct {
	GeneratedAt   time.Time              `json:"generated_at"`
	TotalChecked  int                    `json:"total_checked"`
	InSync        int                    `json:"in_sync"`
	Drifted       int                    `json:"drifted"`
	Errors        int                    `json:"errors"`
	Health        string                 `json:"health"`
	RecommendPush bool                   `json:"recommend_push"`
	TopDrifted    []VariantAuditResponse `json:"top_drifted,omitempty"`
	ErrorDetails  []VariantAuditResponse `json:"error_details,omitempty"`
}

func toVariantAuditResponses(in []domain.VariantAudit) []VariantAuditResponse {
	out := make([]VariantAuditResponse, 0, len(in))
	for _, a := range in {
		out = append(out, VariantAuditResponse{
			VariantID:   a.VariantID,
			CardName:    a.CardName,
			Condition:   string(a.Condition),
			SKU:         a.SKU,
			LocalQty:    a.LocalQty,
			ExternalQty: a.ExternalQty,
			Delta:       a.Delta,
			Status:      string(a.Status),
			Reason:      a.Reason,
		})
	}
	return out
}

// HandleRunAudit runs a full drift audit and returns the report
func HandleRunAudit(auditService audit.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		log := logger.FromContext(r.Context())

		report, err := auditService.Run(r.Context())
		if err != nil {
			log.Error("Inventory audit failed", "error", err)
			respondError(w, http.StatusInternalServerError, ErrMsgAuditFailed)
			return
		}

		respondJSON(w, http.StatusOK, AuditReportResponse{
			GeneratedAt:   report.GeneratedAt,
			TotalChecked:  report.TotalChecked,
			InSync:        report.InSync,
			Drifted:       report.Drifted,
			Errors:        report.Errors,
			Health:        string(report.Health),
			RecommendPush: report.RecommendPush,
			TopDrifted:    toVariantAuditResponses(report.TopDrifted),
			ErrorDetails:  toVariantAuditResponses(report.ErrorDetails),
		})
	}
}

// PushInventoryResponse summarizes a level push
type PushInventoryResponse struct {
	Message string `json:"message"`
	Pushed  int    `json:"pushed"`
	Failed  int    `json:"failed"`
}

// HandlePushInventory overwrites Shopify inventory levels with local
// quantities for every synced variant.
func HandlePushInventory(auditService audit.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		log := logger.FromContext(r.Context())

		pushed, failed, err := auditService.PushInventory(r.Context())
		if err != nil {
			log.Error("Inventory push failed", "error", err)
			respondError(w, http.StatusInternalServerError, ErrMsgPushFailed)
			return
		}

		respondJSON(w, http.StatusOK, PushInventoryResponse{
			Message: MsgInventoryPushed,
			Pushed:  pushed,
			Failed:  failed,
		})
	}
}
