package shopify

import "github.com/shopspring/decimal"

// WebhookOrder is the orders/paid webhook payload, trimmed to the fields the
// ingestion pipeline reads. Shopify serializes money as strings; decimal
// handles both forms.
type WebhookOrder struct {
	ID                  int64            `json:"id"`
	OrderNumber         int64            `json:"order_number"`
	Email               string           `json:"email"`
	CreatedAt           string           `json:"created_at"`
	TotalPrice          decimal.Decimal  `json:"total_price"`
	CurrentTotalPrice   decimal.Decimal  `json:"current_total_price"`
	SubtotalPrice       decimal.Decimal  `json:"subtotal_price"`
	TotalTax            decimal.Decimal  `json:"total_tax"`
	TotalShipping       decimal.Decimal  `json:"total_shipping_price"`
	FinancialStatus     string           `json:"financial_status"`
	PaymentGatewayNames []string         `json:"payment_gateway_names"`
	Customer            *WebhookCustomer `json:"customer"`
	LineItems           []WebhookLine    `json:"line_items"`
	ShippingLines       []ShippingLine   `json:"shipping_lines"`
	Transactions        []Transaction    `json:"transactions"`
	GiftCards           []OrderGiftCard  `json:"gift_cards"`
}

// WebhookCustomer identifies the buyer
type WebhookCustomer struct {
	ID        int64  `json:"id"`
	Email     string `json:"email"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
}

// WebhookLine is one sold line item
type WebhookLine struct {
	ID        int64           `json:"id"`
	VariantID int64           `json:"variant_id"`
	SKU       string          `json:"sku"`
	Title     string          `json:"title"`
	Quantity  int             `json:"quantity"`
	Price     decimal.Decimal `json:"price"`
}

// ShippingLine carries the shipping charge when total_shipping_price is absent
type ShippingLine struct {
	Price decimal.Decimal `json:"price"`
}

// Transaction is a payment transaction attached to the order
type Transaction struct {
	Gateway string          `json:"gateway"`
	Kind    string          `json:"kind"`
	Status  string          `json:"status"`
	Amount  decimal.Decimal `json:"amount"`
}

// OrderGiftCard is a gift card redeemed against the order
type OrderGiftCard struct {
	ID             int64           `json:"id"`
	LastCharacters string          `json:"last_characters"`
	AmountUsed     decimal.Decimal `json:"amount_used"`
}

// apiVariant mirrors the Admin API variant resource
type apiVariant struct {
	ID              int64  `json:"id"`
	SKU             string `json:"sku"`
	Price           string `json:"price,omitempty"`
	InventoryItemID int64  `json:"inventory_item_id,omitempty"`
}

type variantEnvelope struct {
	Variant apiVariant `json:"variant"`
}

type inventoryLevel struct {
	InventoryItemID int64 `json:"inventory_item_id"`
	LocationID      int64 `json:"location_id"`
	Available       int   `json:"available"`
}

type inventoryLevelsEnvelope struct {
	InventoryLevels []inventoryLevel `json:"inventory_levels"`
}

type inventoryLevelEnvelope struct {
	InventoryLevel inventoryLevel `json:"inventory_level"`
}

type giftCard struct {
	ID           int64  `json:"id"`
	Code         string `json:"code,omitempty"`
	InitialValue string `json:"initial_value,omitempty"`
	Note         string `json:"note,omitempty"`
}

type giftCardEnvelope struct {
	GiftCard giftCard `json:"gift_card"`
}
