package shopify

import "time"

// API Defaults
const (
	DefaultAPIVersion  = "2025-01"
	DefaultTimeout     = 15 * time.Second
	DefaultMaxAttempts = 4
	DefaultBaseDelay   = 500 * time.Millisecond

	// InventoryItemCacheSize bounds the variant -> inventory item id cache.
	InventoryItemCacheSize = 4096
	// InventoryItemCacheTTL expires cached ids; relinked variants pick up
	// fresh ids within this window.
	InventoryItemCacheTTL = time.Hour
)

// Operation names recorded on SyncError
const (
	OpGetVariant        = "get_variant"
	OpSetVariantPrice   = "set_variant_price"
	OpGetInventoryLevel = "get_inventory_level"
	OpSetInventoryLevel = "set_inventory_level"
	OpCreateGiftCard    = "create_gift_card"
)

// Log Messages
const (
	LogMsgRetryingRequest = "Retrying Shopify request"
	LogMsgRateLimited     = "Shopify rate limit hit, honoring Retry-After"
)
