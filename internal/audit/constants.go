package audit

// DefaultTopDrifted caps how many variants the report calls out by delta
const DefaultTopDrifted = 10

// Health thresholds on the drifted variant count
const (
	HealthGoodBelow      = 10
	HealthAttentionBelow = 50
)

// Error Messages
const (
	ErrMsgListFailed = "failed to list synced variants: %w"
)

// Log Messages
const (
	LogMsgAuditStarted    = "Reconciliation audit started"
	LogMsgAuditCompleted  = "Reconciliation audit completed"
	LogMsgVariantDrifted  = "Variant quantity drifted"
	LogMsgVariantErrored  = "Variant audit failed"
	LogMsgPushStarted     = "Inventory push started"
	LogMsgPushCompleted   = "Inventory push completed"
	LogMsgPushFailed      = "Inventory push failed for variant"
)
