package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// OrderState tracks an inbound sale event through the ingestion pipeline.
type OrderState string

const (
	OrderReceived     OrderState = "received"
	OrderVerified     OrderState = "verified"
	OrderApplied      OrderState = "applied"
	OrderAcknowledged OrderState = "acknowledged"
	OrderRejected     OrderState = "rejected"
)

// PaymentMethod is the coarse payment classification recorded on an order.
type PaymentMethod string

const (
	PaymentGiftCard   PaymentMethod = "gift_card"
	PaymentCreditCard PaymentMethod = "credit_card"
	PaymentOther      PaymentMethod = "other"
)

// Order is a processed Shopify sale. ShopifyOrderID is the ingestion dedup
// key: an order id seen before is never re-applied.
type Order struct {
	ID             int64
	ShopifyOrderID string
	OrderNumber    string
	UserID         int64
	OrderDate      time.Time
	Total          decimal.Decimal
	CashAmount     decimal.Decimal
	CreditAmount   decimal.Decimal
	Subtotal       decimal.Decimal
	Tax            decimal.Decimal
	Shipping       decimal.Decimal
	PaymentMethod  PaymentMethod
	GiftCardCodes  []string
	GiftCardAmount decimal.Decimal
	Status         string
	CreatedAt      time.Time
}

// OrderItem is one sold line on an order.
type OrderItem struct {
	ID        int64
	OrderID   int64
	VariantID int64
	Quantity  int
	UnitPrice decimal.Decimal
	Subtotal  decimal.Decimal
}
