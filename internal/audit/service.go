package audit

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/dumplingcollectibles/dumpling-price-automation/internal/domain"
	"github.com/dumplingcollectibles/dumpling-price-automation/internal/logger"
	"github.com/dumplingcollectibles/dumpling-price-automation/internal/metrics"
	"github.com/dumplingcollectibles/dumpling-price-automation/internal/repository"
)

// InventoryLevels reads and writes platform stock levels
type InventoryLevels interface {
	GetInventoryLevel(ctx context.Context, inventoryItemID int64) (int, error)
	SetInventoryLevel(ctx context.Context, inventoryItemID int64, available int) error
}

// Service defines the interface for inventory reconciliation
type Service interface {
	Run(ctx context.Context) (*domain.AuditReport, error)
	PushInventory(ctx context.Context) (pushed, failed int, err error)
}

// service implements the Service interface
type service struct {
	variantRepo repository.Variant
	levels      InventoryLevels
	topN        int
}

// NewService creates a new audit service
func NewService(variantRepo repository.Variant, levels InventoryLevels) Service {
	return &service{
		variantRepo: variantRepo,
		levels:      levels,
		topN:        DefaultTopDrifted,
	}
}

// Run compares every linked variant's local quantity against the platform and
// reports drift. The audit is read-only: it recommends a push but never
// mutates either side.
func (s *service) Run(ctx context.Context) (*domain.AuditReport, error) {
	log := logger.FromContext(ctx)

	variants, err := s.variantRepo.ListSyncedVariants(ctx)
	if err != nil {
		return nil, fmt.Errorf(ErrMsgListFailed, err)
	}
	log.Info(LogMsgAuditStarted, "variants", len(variants))

	report := &domain.AuditReport{GeneratedAt: time.Now().UTC()}
	var drifted []domain.VariantAudit

	for _, v := range variants {
		report.TotalChecked++
		result := domain.VariantAudit{
			VariantID: v.ID,
			CardName:  v.CardName,
			Condition: v.Condition,
			SKU:       v.SKU,
			LocalQty:  v.InventoryQty,
		}

		external, err := s.levels.GetInventoryLevel(ctx, *v.ShopifyInventoryItemID)
		if err != nil {
			result.Status = domain.DriftError
			result.Reason = err.Error()
			report.Errors++
			report.ErrorDetails = append(report.ErrorDetails, result)
			log.Warn(LogMsgVariantErrored, "variant_id", v.ID, "sku", v.SKU, "error", err)
			continue
		}

		result.ExternalQty = external
		result.Delta = v.InventoryQty - external
		if result.Delta == 0 {
			result.Status = domain.DriftInSync
			report.InSync++
			continue
		}

		result.Status = domain.DriftDrifted
		report.Drifted++
		drifted = append(drifted, result)
		log.Warn(LogMsgVariantDrifted, "variant_id", v.ID, "sku", v.SKU,
			"local", result.LocalQty, "external", result.ExternalQty, "delta", result.Delta)
	}

	sort.Slice(drifted, func(i, j int) bool {
		return abs(drifted[i].Delta) > abs(drifted[j].Delta)
	})
	if len(drifted) > s.topN {
		drifted = drifted[:s.topN]
	}
	report.TopDrifted = drifted
	report.Health = healthOf(report)
	report.RecommendPush = report.Drifted > 0

	metrics.DriftedVariants.Set(float64(report.Drifted))
	metrics.AuditErrors.Set(float64(report.Errors))
	log.Info(LogMsgAuditCompleted,
		"checked", report.TotalChecked, "in_sync", report.InSync,
		"drifted", report.Drifted, "errors", report.Errors, "health", report.Health)
	return report, nil
}

// PushInventory overwrites the platform's stock levels with local quantities
// for every linked variant. Local is the source of truth; this is the
// recovery action an audit recommends.
func (s *service) PushInventory(ctx context.Context) (int, int, error) {
	log := logger.FromContext(ctx)

	variants, err := s.variantRepo.ListSyncedVariants(ctx)
	if err != nil {
		return 0, 0, fmt.Errorf(ErrMsgListFailed, err)
	}
	log.Info(LogMsgPushStarted, "variants", len(variants))

	pushed, failed := 0, 0
	for _, v := range variants {
		if err := s.levels.SetInventoryLevel(ctx, *v.ShopifyInventoryItemID, v.InventoryQty); err != nil {
			failed++
			log.Warn(LogMsgPushFailed, "variant_id", v.ID, "sku", v.SKU, "error", err)
			continue
		}
		pushed++
	}

	log.Info(LogMsgPushCompleted, "pushed", pushed, "failed", failed)
	return pushed, failed, nil
}

func healthOf(report *domain.AuditReport) domain.AuditHealth {
	switch {
	case report.Drifted == 0 && report.Errors == 0:
		return domain.AuditExcellent
	case report.Drifted < HealthGoodBelow:
		return domain.AuditGood
	case report.Drifted < HealthAttentionBelow:
		return domain.AuditAttentionNeeded
	default:
		return domain.AuditActionRequired
	}
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

// Job adapts the audit to the scheduler; each tick runs one full pass
type Job struct {
	svc Service
}

// NewJob creates a schedulable audit job
func NewJob(svc Service) *Job {
	return &Job{svc: svc}
}

// Process implements worker.Job
func (j *Job) Process(ctx context.Context) error {
	_, err := j.svc.Run(ctx)
	return err
}
