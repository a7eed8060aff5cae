package handler

// Generic HTTP error messages for client responses.
// These intentionally do not expose internal error details.
const (
	ErrMsgMethodNotAllowed = "Method not allowed"
	ErrMsgInvalidRequest   = "Invalid request body"

	// Query and path parameter error messages
	ErrMsgMissingQueryParam = "Missing %s query parameter"
	ErrMsgInvalidID         = "Invalid id"
	ErrMsgInvalidLimit      = "Invalid limit parameter"
	ErrMsgInvalidBucket     = "Invalid bucket"

	// Intake and ledger error messages
	ErrMsgIntakeFailed       = "Failed to apply intake batch"
	ErrMsgAdjustmentFailed   = "Failed to apply adjustment"
	ErrMsgGetVariantFailed   = "Failed to retrieve variant"
	ErrMsgGetHistoryFailed   = "Failed to retrieve history"

	// Store credit error messages
	ErrMsgPayoutFailed        = "Failed to issue payout"
	ErrMsgCreditAdjustFailed  = "Failed to adjust store credit"
	ErrMsgGetBalanceFailed    = "Failed to retrieve balance"

	// Pricing and audit error messages
	ErrMsgRefreshFailed = "Failed to refresh prices"
	ErrMsgAuditFailed   = "Failed to run inventory audit"
	ErrMsgPushFailed    = "Failed to push inventory levels"

	// Webhook error messages
	ErrMsgInvalidWebhookSignature = "Invalid webhook signature"
)

// Success messages for API responses
const (
	MsgIntakeApplied      = "Intake batch applied"
	MsgAdjustmentApplied  = "Adjustment applied"
	MsgPayoutIssued       = "Payout issued"
	MsgCreditAdjusted     = "Store credit adjusted"
	MsgPricesRefreshed    = "Price refresh completed"
	MsgInventoryPushed    = "Inventory levels pushed"
	MsgWebhookAccepted    = "ok"
)
