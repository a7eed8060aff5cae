package refresh

// Error Messages
const (
	ErrMsgListFailed    = "failed to list bucket variants: %w"
	ErrMsgPersistFailed = "failed to persist pricing: %w"
)

// Log Messages
const (
	LogMsgBucketStarted    = "Price refresh started for bucket"
	LogMsgBucketCompleted  = "Price refresh completed for bucket"
	LogMsgPriceSuppressed  = "Price change below thresholds, suppressed"
	LogMsgNotableChange    = "Notable price change"
	LogMsgPushFailed       = "Price push failed"
	LogMsgSourceUnpriced   = "No market price available, skipping"
	LogMsgSourceFailed     = "Market price lookup failed"
)
