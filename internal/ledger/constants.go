package ledger

// Error Messages
const (
	ErrMsgQuantityZero       = "quantity must be non-zero"
	ErrMsgInvalidKind        = "unknown transaction kind"
	ErrMsgPurchaseNeedsCost  = "purchase requires a positive quantity and a unit cost"
	ErrMsgSaleMustDecrement  = "sale requires a negative quantity"
	ErrMsgApplyFailed        = "failed to apply transaction: %w"
	ErrMsgHistoryFailed      = "failed to load transaction history: %w"
)

// Log Messages
const (
	LogMsgTransactionApplied = "Inventory transaction applied"
	LogMsgBulkItemFailed     = "Bulk intake item failed"
	LogMsgBulkCompleted      = "Bulk intake completed"
)

// DefaultHistoryLimit caps history queries when the caller passes no limit
const DefaultHistoryLimit = 50
