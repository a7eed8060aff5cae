package domain

import "time"

// User is a store customer, identified by email and created lazily on first
// ledger interaction.
type User struct {
	ID                int64
	Email             string
	Name              string
	ShopifyCustomerID string
	CreatedAt         time.Time
}
