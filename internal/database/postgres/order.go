package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/dumplingcollectibles/dumpling-price-automation/internal/domain"
	"github.com/dumplingcollectibles/dumpling-price-automation/internal/repository"
)

const orderColumns = `
	order_id, shopify_order_id, order_number, user_id, order_date,
	total, cash_amount, credit_amount, subtotal, tax, shipping,
	payment_method, gift_card_codes, gift_card_amount, status, created_at`

// OrderRepository implements the order repository for PostgreSQL
type OrderRepository struct {
	db *pgxpool.Pool
}

// NewOrderRepository creates a new OrderRepository
func NewOrderRepository(db *pgxpool.Pool) *OrderRepository {
	return &OrderRepository{db: db}
}

// OrderTx implements repository.OrderTx
type OrderTx struct {
	tx pgx.Tx
}

// BeginTx starts a new order ingestion transaction
func (r *OrderRepository) BeginTx(ctx context.Context) (repository.OrderTx, error) {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", ErrMsgFailedToBeginTransaction, err)
	}
	return &OrderTx{tx: tx}, nil
}

// Commit commits the transaction
func (t *OrderTx) Commit(ctx context.Context) error {
	return t.tx.Commit(ctx)
}

// Rollback rolls back the transaction
func (t *OrderTx) Rollback(ctx context.Context) error {
	return t.tx.Rollback(ctx)
}

// CreateOrder inserts the order row. A duplicate shopify_order_id returns
// domain.ErrDuplicateOrder so ingestion can treat replayed webhooks as no-ops.
func (t *OrderTx) CreateOrder(ctx context.Context, order *domain.Order) error {
	query := `
		INSERT INTO orders (shopify_order_id, order_number, user_id, order_date, total, cash_amount,
			credit_amount, subtotal, tax, shipping, payment_method, gift_card_codes, gift_card_amount, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
		RETURNING order_id, created_at
	`
	err := t.tx.QueryRow(ctx, query,
		order.ShopifyOrderID, order.OrderNumber, order.UserID, order.OrderDate,
		order.Total, order.CashAmount, order.CreditAmount, order.Subtotal,
		order.Tax, order.Shipping, order.PaymentMethod, order.GiftCardCodes,
		order.GiftCardAmount, order.Status,
	).Scan(&order.ID, &order.CreatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == PgErrorCodeUniqueViolation {
			return domain.ErrDuplicateOrder
		}
		return fmt.Errorf("%s: %w", ErrMsgFailedToInsertOrder, err)
	}
	return nil
}

// AddOrderItem inserts an applied line item
func (t *OrderTx) AddOrderItem(ctx context.Context, item *domain.OrderItem) error {
	query := `
		INSERT INTO order_items (order_id, variant_id, quantity, unit_price, subtotal)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING order_item_id
	`
	err := t.tx.QueryRow(ctx, query,
		item.OrderID, item.VariantID, item.Quantity, item.UnitPrice, item.Subtotal,
	).Scan(&item.ID)
	if err != nil {
		return fmt.Errorf("%s: %w", ErrMsgFailedToInsertOrderItem, err)
	}
	return nil
}

// ApplyTransaction applies an inventory movement inside the order transaction
func (t *OrderTx) ApplyTransaction(ctx context.Context, params domain.TransactionParams) (*domain.InventoryTransaction, error) {
	return applyInventoryTransaction(ctx, t.tx, params)
}

// AppendCreditEntry appends a store credit entry inside the order transaction
func (t *OrderTx) AppendCreditEntry(ctx context.Context, params domain.CreditEntryParams) (*domain.StoreCreditEntry, error) {
	return appendCreditEntry(ctx, t.tx, params)
}

// SetOrderStatus updates the order's pipeline status inside the transaction
func (t *OrderTx) SetOrderStatus(ctx context.Context, orderID int64, status domain.OrderState) error {
	tag, err := t.tx.Exec(ctx, "UPDATE orders SET status = $1 WHERE order_id = $2", status, orderID)
	if err != nil {
		return fmt.Errorf("%s: %w", ErrMsgFailedToUpdateOrder, err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrOrderNotFound
	}
	return nil
}

func scanOrder(row rowScanner) (*domain.Order, error) {
	var order domain.Order
	err := row.Scan(
		&order.ID, &order.ShopifyOrderID, &order.OrderNumber, &order.UserID, &order.OrderDate,
		&order.Total, &order.CashAmount, &order.CreditAmount, &order.Subtotal, &order.Tax,
		&order.Shipping, &order.PaymentMethod, &order.GiftCardCodes, &order.GiftCardAmount,
		&order.Status, &order.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &order, nil
}

func (r *OrderRepository) getOrder(ctx context.Context, where string, arg any) (*domain.Order, error) {
	query := "SELECT" + orderColumns + " FROM orders WHERE " + where
	order, err := scanOrder(r.db.QueryRow(ctx, query, arg))
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, domain.ErrOrderNotFound
		}
		return nil, fmt.Errorf("%s: %w", ErrMsgFailedToGetOrder, err)
	}
	return order, nil
}

// GetOrderByShopifyID retrieves an order by the external order id
func (r *OrderRepository) GetOrderByShopifyID(ctx context.Context, shopifyOrderID string) (*domain.Order, error) {
	return r.getOrder(ctx, "shopify_order_id = $1", shopifyOrderID)
}

// GetOrderByID retrieves an order by internal id
func (r *OrderRepository) GetOrderByID(ctx context.Context, id int64) (*domain.Order, error) {
	return r.getOrder(ctx, "order_id = $1", id)
}

// ListOrderItems retrieves the applied line items of an order
func (r *OrderRepository) ListOrderItems(ctx context.Context, orderID int64) ([]domain.OrderItem, error) {
	query := `
		SELECT order_item_id, order_id, variant_id, quantity, unit_price, subtotal
		FROM order_items
		WHERE order_id = $1
		ORDER BY order_item_id
	`
	rows, err := r.db.Query(ctx, query, orderID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", ErrMsgFailedToListOrderItems, err)
	}
	defer rows.Close()

	var items []domain.OrderItem
	for rows.Next() {
		var item domain.OrderItem
		err := rows.Scan(&item.ID, &item.OrderID, &item.VariantID, &item.Quantity, &item.UnitPrice, &item.Subtotal)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", ErrMsgFailedToListOrderItems, err)
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", ErrMsgFailedToListOrderItems, err)
	}
	return items, nil
}

// UpdateOrderStatus updates the order's pipeline status
func (r *OrderRepository) UpdateOrderStatus(ctx context.Context, orderID int64, status domain.OrderState) error {
	tag, err := r.db.Exec(ctx, "UPDATE orders SET status = $1 WHERE order_id = $2", status, orderID)
	if err != nil {
		return fmt.Errorf("%s: %w", ErrMsgFailedToUpdateOrder, err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrOrderNotFound
	}
	return nil
}
