package repository

import (
	"context"

	"github.com/dumplingcollectibles/dumpling-price-automation/internal/domain"
)

// Order defines the interface for order persistence
type Order interface {
	GetOrderByShopifyID(ctx context.Context, shopifyOrderID string) (*domain.Order, error)
	GetOrderByID(ctx context.Context, id int64) (*domain.Order, error)
	ListOrderItems(ctx context.Context, orderID int64) ([]domain.OrderItem, error)
	UpdateOrderStatus(ctx context.Context, orderID int64, status domain.OrderState) error
	BeginTx(ctx context.Context) (OrderTx, error)
}

// OrderTx defines the interface for order ingestion transactions. Everything
// an order touches - the order row, its items, inventory movements and store
// credit entries - commits or rolls back together.
type OrderTx interface {
	Tx
	CreateOrder(ctx context.Context, order *domain.Order) error
	AddOrderItem(ctx context.Context, item *domain.OrderItem) error
	ApplyTransaction(ctx context.Context, params domain.TransactionParams) (*domain.InventoryTransaction, error)
	AppendCreditEntry(ctx context.Context, params domain.CreditEntryParams) (*domain.StoreCreditEntry, error)
	SetOrderStatus(ctx context.Context, orderID int64, status domain.OrderState) error
}
