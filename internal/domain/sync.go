package domain

import "time"

// DriftStatus classifies one variant in a reconciliation pass.
type DriftStatus string

const (
	DriftInSync  DriftStatus = "in_sync"
	DriftDrifted DriftStatus = "drifted"
	DriftError   DriftStatus = "error"
)

// VariantAudit is the reconciliation result for a single variant.
type VariantAudit struct {
	VariantID   int64
	CardName    string
	Condition   Condition
	SKU         string
	LocalQty    int
	ExternalQty int
	Delta       int // LocalQty - ExternalQty, meaningful only when drifted
	Status      DriftStatus
	Reason      string // populated for DriftError
}

// AuditHealth grades an audit report the way the weekly report does: perfect
// sync, under 10 drifted, under 50 drifted, or worse.
type AuditHealth string

const (
	AuditExcellent       AuditHealth = "excellent"
	AuditGood            AuditHealth = "good"
	AuditAttentionNeeded AuditHealth = "attention_needed"
	AuditActionRequired  AuditHealth = "action_required"
)

// AuditReport summarizes a full reconciliation pass. The auditor never
// mutates local state; when drift is found the report recommends a one-way
// push of local quantities to the platform.
type AuditReport struct {
	GeneratedAt    time.Time
	TotalChecked   int
	InSync         int
	Drifted        int
	Errors         int
	TopDrifted     []VariantAudit // sorted by |Delta| descending, capped
	ErrorDetails   []VariantAudit
	Health         AuditHealth
	RecommendPush  bool
}
