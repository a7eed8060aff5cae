package postgres

// PostgreSQL Error Codes
const (
	// PgErrorCodeUniqueViolation is the PostgreSQL error code for unique constraint violations
	PgErrorCodeUniqueViolation = "23505"
)

// Error Messages - Transaction Operations
const (
	ErrMsgFailedToBeginTransaction  = "failed to begin transaction"
	ErrMsgFailedToCommitTransaction = "failed to commit transaction"
)

// Error Messages - Variant Operations
const (
	ErrMsgFailedToGetVariant         = "failed to get variant"
	ErrMsgFailedToListVariants       = "failed to list variants"
	ErrMsgFailedToUpdatePricing      = "failed to update variant pricing"
	ErrMsgFailedToUpdateShopifyIDs   = "failed to update variant shopify ids"
	ErrMsgFailedToLockVariant        = "failed to lock variant row"
	ErrMsgFailedToUpdateVariantStock = "failed to update variant stock"
)

// Error Messages - Ledger Operations
const (
	ErrMsgFailedToInsertTransaction = "failed to insert inventory transaction"
	ErrMsgFailedToListTransactions  = "failed to list inventory transactions"
)

// Error Messages - Store Credit Operations
const (
	ErrMsgFailedToLockUser          = "failed to lock user row"
	ErrMsgFailedToReadBalance       = "failed to read credit balance"
	ErrMsgFailedToInsertCreditEntry = "failed to insert credit entry"
	ErrMsgFailedToListCreditEntries = "failed to list credit entries"
)

// Error Messages - User Operations
const (
	ErrMsgFailedToUpsertUser = "failed to upsert user"
	ErrMsgFailedToGetUser    = "failed to get user"
)

// Error Messages - Order Operations
const (
	ErrMsgFailedToInsertOrder     = "failed to insert order"
	ErrMsgFailedToInsertOrderItem = "failed to insert order item"
	ErrMsgFailedToGetOrder        = "failed to get order"
	ErrMsgFailedToListOrderItems  = "failed to list order items"
	ErrMsgFailedToUpdateOrder     = "failed to update order status"
)
