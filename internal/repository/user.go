package repository

import (
	"context"

	"github.com/dumplingcollectibles/dumpling-price-automation/internal/domain"
)

// User defines the interface for customer persistence
type User interface {
	UpsertUser(ctx context.Context, user *domain.User) error
	GetUserByID(ctx context.Context, userID int64) (*domain.User, error)
	GetUserByEmail(ctx context.Context, email string) (*domain.User, error)
	GetUserByShopifyCustomerID(ctx context.Context, customerID string) (*domain.User, error)
}
