package order

// ReferenceTypeOrder tags ledger rows written by order ingestion
const ReferenceTypeOrder = "order"

// GiftCardGateway is Shopify's gateway name for gift card payments
const GiftCardGateway = "gift_card"

// Line skip reasons, recorded in logs and metrics
const (
	SkipReasonUnknownVariant = "unknown_variant"
	SkipReasonNoStock        = "insufficient_inventory"
)

// Webhook outcomes
const (
	OutcomeApplied   = "applied"
	OutcomeDuplicate = "duplicate"
	OutcomeRejected  = "rejected"
)

// Error Messages
const (
	ErrMsgEmptyOrderID    = "order id is required"
	ErrMsgParseFailed     = "failed to parse order payload: %w"
	ErrMsgUserFailed      = "failed to resolve customer: %w"
	ErrMsgCreateFailed    = "failed to record order: %w"
	ErrMsgApplyFailed     = "failed to apply order: %w"
)

// Log Messages
const (
	LogMsgOrderReceived      = "Order webhook received"
	LogMsgOrderDuplicate     = "Order already processed, skipping"
	LogMsgOrderApplied       = "Order applied"
	LogMsgOrderRejected      = "Order application failed"
	LogMsgLineSkipped        = "Order line skipped"
	LogMsgGiftCardPayment    = "Gift card payment detected"
	LogMsgSyncEnqueued       = "Inventory sync enqueued"
	LogMsgSyncSkippedNoLink  = "Inventory sync skipped, variant not linked"
	LogMsgSyncPushed         = "Inventory level pushed"
)
