package domain

import "errors"

// Error message string constants - single source of truth for error messages
// Use these in assert.Contains() checks when testing error messages
const (
	// Lookup errors
	ErrMsgVariantNotFound = "variant not found"
	ErrMsgUserNotFound    = "user not found"
	ErrMsgOrderNotFound   = "order not found"

	// Ledger errors
	ErrMsgInsufficientInventory = "insufficient inventory"
	ErrMsgDuplicateOrder        = "order already processed"

	// Validation errors
	ErrMsgInvalidInput     = "invalid input"
	ErrMsgInvalidCondition = "invalid condition"
	ErrMsgInvalidSignature = "invalid webhook signature"

	// Infrastructure errors
	ErrMsgTxClosed = "tx is closed"
)

// Common domain errors
// These errors should be used consistently across all layers of the application.
// Wrap these errors with fmt.Errorf("%w: %s", domain.ErrXxx, details) for additional context.
var (
	// Lookup errors
	ErrVariantNotFound = errors.New(ErrMsgVariantNotFound)
	ErrUserNotFound    = errors.New(ErrMsgUserNotFound)
	ErrOrderNotFound   = errors.New(ErrMsgOrderNotFound)

	// Ledger errors
	ErrInsufficientInventory = errors.New(ErrMsgInsufficientInventory)
	ErrDuplicateOrder        = errors.New(ErrMsgDuplicateOrder)

	// Validation errors
	ErrInvalidInput     = errors.New(ErrMsgInvalidInput)
	ErrInvalidCondition = errors.New(ErrMsgInvalidCondition)
	ErrInvalidSignature = errors.New(ErrMsgInvalidSignature)
)

// SyncError describes a failed call to the commerce platform. Terminal errors
// (404, auth failures) must not be retried; everything else is considered
// transient. A SyncError never unwinds a committed local ledger mutation - it
// surfaces as drift for the reconciliation auditor instead.
type SyncError struct {
	Op         string // e.g. "set_inventory_level"
	StatusCode int    // last HTTP status, 0 for transport errors
	Terminal   bool
	Err        error
}

func (e *SyncError) Error() string {
	if e.Err != nil {
		return "shopify " + e.Op + ": " + e.Err.Error()
	}
	return "shopify " + e.Op + " failed"
}

func (e *SyncError) Unwrap() error {
	return e.Err
}

// Retryable reports whether the failure is worth another attempt.
func (e *SyncError) Retryable() bool {
	return !e.Terminal
}
