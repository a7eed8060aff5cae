package credit

// Error Messages
const (
	ErrMsgAmountZero         = "amount must be non-zero"
	ErrMsgPayoutNotPositive  = "payout amount must be positive"
	ErrMsgEmailRequired      = "email is required"
	ErrMsgAppendFailed       = "failed to append credit entry: %w"
	ErrMsgGiftCardFailed     = "failed to create gift card: %w"
	ErrMsgBalanceFailed      = "failed to read balance: %w"
	ErrMsgHistoryFailed      = "failed to load credit history: %w"
	ErrMsgUserResolUnavail   = "failed to resolve user: %w"
)

// Log Messages
const (
	LogMsgCreditIssued     = "Store credit issued"
	LogMsgCreditAdjusted   = "Store credit adjusted"
	LogMsgGiftCardCreated  = "Gift card created for payout"
)

// DefaultHistoryLimit caps history queries when the caller passes no limit
const DefaultHistoryLimit = 50
