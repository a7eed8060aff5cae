package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/dumplingcollectibles/dumpling-price-automation/internal/domain"
)

// UserRepository implements the customer repository for PostgreSQL
type UserRepository struct {
	db *pgxpool.Pool
}

// NewUserRepository creates a new UserRepository
func NewUserRepository(db *pgxpool.Pool) *UserRepository {
	return &UserRepository{db: db}
}

// UpsertUser inserts a customer keyed on email, or refreshes the name and
// Shopify customer id on an existing row. The id and created_at of the stored
// row are written back to user.
func (r *UserRepository) UpsertUser(ctx context.Context, user *domain.User) error {
	query := `
		INSERT INTO users (email, name, shopify_customer_id)
		VALUES ($1, $2, $3)
		ON CONFLICT (email) DO UPDATE
		SET name = CASE WHEN EXCLUDED.name <> '' THEN EXCLUDED.name ELSE users.name END,
		    shopify_customer_id = CASE WHEN EXCLUDED.shopify_customer_id <> '' THEN EXCLUDED.shopify_customer_id ELSE users.shopify_customer_id END
		RETURNING user_id, created_at
	`
	err := r.db.QueryRow(ctx, query, user.Email, user.Name, user.ShopifyCustomerID).
		Scan(&user.ID, &user.CreatedAt)
	if err != nil {
		return fmt.Errorf("%s: %w", ErrMsgFailedToUpsertUser, err)
	}
	return nil
}

func (r *UserRepository) getUser(ctx context.Context, where string, arg any) (*domain.User, error) {
	query := `
		SELECT user_id, email, name, shopify_customer_id, created_at
		FROM users
		WHERE ` + where
	var user domain.User
	err := r.db.QueryRow(ctx, query, arg).
		Scan(&user.ID, &user.Email, &user.Name, &user.ShopifyCustomerID, &user.CreatedAt)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, domain.ErrUserNotFound
		}
		return nil, fmt.Errorf("%s: %w", ErrMsgFailedToGetUser, err)
	}
	return &user, nil
}

// GetUserByID retrieves a customer by internal id
func (r *UserRepository) GetUserByID(ctx context.Context, userID int64) (*domain.User, error) {
	return r.getUser(ctx, "user_id = $1", userID)
}

// GetUserByEmail retrieves a customer by email
func (r *UserRepository) GetUserByEmail(ctx context.Context, email string) (*domain.User, error) {
	return r.getUser(ctx, "email = $1", email)
}

// GetUserByShopifyCustomerID retrieves a customer by their Shopify customer id
func (r *UserRepository) GetUserByShopifyCustomerID(ctx context.Context, customerID string) (*domain.User, error) {
	return r.getUser(ctx, "shopify_customer_id = $1 AND shopify_customer_id <> ''", customerID)
}
