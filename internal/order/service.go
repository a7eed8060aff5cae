package order

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/shopspring/decimal"

	"github.com/dumplingcollectibles/dumpling-price-automation/internal/domain"
	"github.com/dumplingcollectibles/dumpling-price-automation/internal/logger"
	"github.com/dumplingcollectibles/dumpling-price-automation/internal/metrics"
	"github.com/dumplingcollectibles/dumpling-price-automation/internal/repository"
	"github.com/dumplingcollectibles/dumpling-price-automation/internal/shopify"
	"github.com/dumplingcollectibles/dumpling-price-automation/internal/worker"
)

// InventoryPusher pushes local stock levels to the commerce platform
type InventoryPusher interface {
	InventoryItemID(ctx context.Context, shopifyVariantID string) (int64, error)
	SetInventoryLevel(ctx context.Context, inventoryItemID int64, available int) error
}

// Service defines the interface for order ingestion
type Service interface {
	ProcessOrder(ctx context.Context, payload shopify.WebhookOrder) error
}

// service implements the Service interface
type service struct {
	orderRepo   repository.Order
	userRepo    repository.User
	variantRepo repository.Variant
	pusher      InventoryPusher
	syncPool    *worker.Pool
}

// NewService creates a new order ingestion service. syncPool and pusher may
// be nil; orders then commit locally without an external push.
func NewService(orderRepo repository.Order, userRepo repository.User, variantRepo repository.Variant, pusher InventoryPusher, syncPool *worker.Pool) Service {
	return &service{
		orderRepo:   orderRepo,
		userRepo:    userRepo,
		variantRepo: variantRepo,
		pusher:      pusher,
		syncPool:    syncPool,
	}
}

// ProcessOrder runs the ingestion pipeline: record the order, apply each
// resolvable line to the inventory ledger, debit any gift card payment from
// the credit ledger, then hand the external push to background workers. The
// local ledger commit never waits on the platform.
func (s *service) ProcessOrder(ctx context.Context, payload shopify.WebhookOrder) error {
	log := logger.FromContext(ctx)

	if payload.ID == 0 {
		return fmt.Errorf("%w: %s", domain.ErrInvalidInput, ErrMsgEmptyOrderID)
	}
	log.Info(LogMsgOrderReceived, "shopify_order_id", payload.ID, "lines", len(payload.LineItems))

	user, err := s.resolveCustomer(ctx, payload)
	if err != nil {
		return fmt.Errorf(ErrMsgUserFailed, err)
	}

	order, err := s.recordOrder(ctx, payload, user)
	if err != nil {
		if errors.Is(err, domain.ErrDuplicateOrder) {
			log.Info(LogMsgOrderDuplicate, "shopify_order_id", payload.ID)
			metrics.OrdersProcessed.WithLabelValues(OutcomeDuplicate).Inc()
			return nil
		}
		return fmt.Errorf(ErrMsgCreateFailed, err)
	}

	applied, err := s.applyOrder(ctx, order, payload)
	if err != nil {
		log.Error(LogMsgOrderRejected, "order_id", order.ID, "error", err)
		if updateErr := s.orderRepo.UpdateOrderStatus(ctx, order.ID, domain.OrderRejected); updateErr != nil {
			log.Error("Failed to mark order rejected", "order_id", order.ID, "error", updateErr)
		}
		metrics.OrdersProcessed.WithLabelValues(OutcomeRejected).Inc()
		return fmt.Errorf(ErrMsgApplyFailed, err)
	}

	s.enqueueSync(ctx, applied)

	if err := s.orderRepo.UpdateOrderStatus(ctx, order.ID, domain.OrderAcknowledged); err != nil {
		log.Warn("Failed to mark order acknowledged", "order_id", order.ID, "error", err)
	}

	metrics.OrdersProcessed.WithLabelValues(OutcomeApplied).Inc()
	log.Info(LogMsgOrderApplied, "order_id", order.ID, "applied_lines", len(applied))
	return nil
}

// resolveCustomer upserts the buyer from the payload. Orders without an email
// fall back to a synthetic per-customer address so the ledger still has an
// owner for gift card debits.
func (s *service) resolveCustomer(ctx context.Context, payload shopify.WebhookOrder) (*domain.User, error) {
	user := &domain.User{Email: payload.Email}
	if payload.Customer != nil {
		user.ShopifyCustomerID = strconv.FormatInt(payload.Customer.ID, 10)
		user.Name = payload.Customer.FirstName + " " + payload.Customer.LastName
		if user.Email == "" {
			user.Email = payload.Customer.Email
		}
	}
	if user.Email == "" {
		user.Email = fmt.Sprintf("unknown+%d@orders.invalid", payload.ID)
	}
	if err := s.userRepo.UpsertUser(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// recordOrder writes the dedup row in its own transaction. A replayed webhook
// fails the unique constraint here and nothing downstream runs.
func (s *service) recordOrder(ctx context.Context, payload shopify.WebhookOrder, user *domain.User) (*domain.Order, error) {
	giftAmount, giftCodes, method := detectPayment(ctx, payload)

	order := &domain.Order{
		ShopifyOrderID: strconv.FormatInt(payload.ID, 10),
		OrderNumber:    strconv.FormatInt(payload.OrderNumber, 10),
		UserID:         user.ID,
		OrderDate:      parseOrderDate(payload.CreatedAt),
		Total:          payload.TotalPrice,
		CashAmount:     payload.TotalPrice.Sub(giftAmount),
		CreditAmount:   giftAmount,
		Subtotal:       payload.SubtotalPrice,
		Tax:            payload.TotalTax,
		Shipping:       shippingTotal(payload),
		PaymentMethod:  method,
		GiftCardCodes:  giftCodes,
		GiftCardAmount: giftAmount,
		Status:         string(domain.OrderReceived),
	}

	tx, err := s.orderRepo.BeginTx(ctx)
	if err != nil {
		return nil, err
	}
	defer repository.SafeRollback(ctx, tx)

	if err := tx.CreateOrder(ctx, order); err != nil {
		return nil, err
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	return order, nil
}

// appliedLine pairs a committed sale with its variant for the sync push
type appliedLine struct {
	VariantID int64
}

// applyOrder applies the order's lines and credit debit in one transaction.
// Unresolvable or understocked lines are skipped and logged; they never block
// the rest of the order.
func (s *service) applyOrder(ctx context.Context, order *domain.Order, payload shopify.WebhookOrder) ([]appliedLine, error) {
	log := logger.FromContext(ctx)

	tx, err := s.orderRepo.BeginTx(ctx)
	if err != nil {
		return nil, err
	}
	defer repository.SafeRollback(ctx, tx)

	if err := tx.SetOrderStatus(ctx, order.ID, domain.OrderVerified); err != nil {
		return nil, err
	}

	var applied []appliedLine
	for _, line := range payload.LineItems {
		variant, err := s.resolveVariant(ctx, line)
		if err != nil {
			log.Warn(LogMsgLineSkipped, "order_id", order.ID, "sku", line.SKU,
				"title", line.Title, "reason", SkipReasonUnknownVariant)
			metrics.OrderLinesSkipped.WithLabelValues(SkipReasonUnknownVariant).Inc()
			continue
		}

		_, err = tx.ApplyTransaction(ctx, domain.TransactionParams{
			VariantID:     variant.ID,
			Quantity:      -line.Quantity,
			Kind:          domain.TransactionSale,
			ReferenceType: ReferenceTypeOrder,
			ReferenceID:   &order.ID,
			Notes:         fmt.Sprintf("order #%s", order.OrderNumber),
		})
		if err != nil {
			if errors.Is(err, domain.ErrInsufficientInventory) {
				// Oversell: the platform accepted a sale we cannot cover.
				// Record nothing and let the drift auditor surface it.
				log.Warn(LogMsgLineSkipped, "order_id", order.ID, "sku", line.SKU,
					"quantity", line.Quantity, "reason", SkipReasonNoStock)
				metrics.OrderLinesSkipped.WithLabelValues(SkipReasonNoStock).Inc()
				continue
			}
			return nil, err
		}

		lineTotal := line.Price.Mul(decimal.NewFromInt(int64(line.Quantity)))
		item := &domain.OrderItem{
			OrderID:   order.ID,
			VariantID: variant.ID,
			Quantity:  line.Quantity,
			UnitPrice: line.Price,
			Subtotal:  lineTotal,
		}
		if err := tx.AddOrderItem(ctx, item); err != nil {
			return nil, err
		}
		applied = append(applied, appliedLine{VariantID: variant.ID})
	}

	if order.GiftCardAmount.GreaterThan(decimal.Zero) {
		_, err := tx.AppendCreditEntry(ctx, domain.CreditEntryParams{
			UserID:        order.UserID,
			Amount:        order.GiftCardAmount.Neg(),
			Type:          domain.CreditOrderPayment,
			ReferenceType: ReferenceTypeOrder,
			ReferenceID:   &order.ID,
			Notes:         fmt.Sprintf("gift card payment on order #%s", order.OrderNumber),
		})
		if err != nil {
			return nil, err
		}
		metrics.CreditEntriesWritten.WithLabelValues(string(domain.CreditOrderPayment)).Inc()
	}

	if err := tx.SetOrderStatus(ctx, order.ID, domain.OrderApplied); err != nil {
		return nil, err
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	return applied, nil
}

// resolveVariant matches a sold line to the catalog, preferring the platform
// variant id and falling back to SKU
func (s *service) resolveVariant(ctx context.Context, line shopify.WebhookLine) (*domain.Variant, error) {
	if line.VariantID != 0 {
		variant, err := s.variantRepo.GetVariantByShopifyVariantID(ctx, strconv.FormatInt(line.VariantID, 10))
		if err == nil {
			return variant, nil
		}
		if !errors.Is(err, domain.ErrVariantNotFound) {
			return nil, err
		}
	}
	if line.SKU != "" {
		return s.variantRepo.GetVariantBySKU(ctx, line.SKU)
	}
	return nil, domain.ErrVariantNotFound
}

// enqueueSync hands applied lines to the background pool for a best-effort
// external push. A full queue drops the push; the auditor reconciles later.
func (s *service) enqueueSync(ctx context.Context, applied []appliedLine) {
	if s.syncPool == nil || s.pusher == nil {
		return
	}
	log := logger.FromContext(ctx)
	seen := make(map[int64]bool)
	for _, line := range applied {
		if seen[line.VariantID] {
			continue
		}
		seen[line.VariantID] = true
		job := &inventorySyncJob{
			variantID:   line.VariantID,
			variantRepo: s.variantRepo,
			pusher:      s.pusher,
		}
		if s.syncPool.TryEnqueue(job) {
			log.Debug(LogMsgSyncEnqueued, "variant_id", line.VariantID)
		}
	}
}

// detectPayment classifies how the order was paid and how much came from gift
// cards. Shopify reports gift card usage inconsistently across webhook
// versions, so this checks the gift card list, the transaction list, the
// gateway names, and finally the gap between the original and current order
// totals.
func detectPayment(ctx context.Context, payload shopify.WebhookOrder) (decimal.Decimal, []string, domain.PaymentMethod) {
	log := logger.FromContext(ctx)
	amount := decimal.Zero
	var codes []string

	for _, gc := range payload.GiftCards {
		amount = amount.Add(gc.AmountUsed)
		if gc.LastCharacters != "" {
			codes = append(codes, gc.LastCharacters)
		}
	}

	if amount.IsZero() {
		for _, txn := range payload.Transactions {
			if txn.Gateway == GiftCardGateway && txn.Status == "success" {
				amount = amount.Add(txn.Amount)
			}
		}
	}

	gatewayGift := false
	otherGateway := false
	for _, gw := range payload.PaymentGatewayNames {
		if gw == GiftCardGateway {
			gatewayGift = true
		} else {
			otherGateway = true
		}
	}

	if amount.IsZero() && gatewayGift && !otherGateway {
		amount = payload.TotalPrice
	}

	if amount.IsZero() && gatewayGift && payload.CurrentTotalPrice.GreaterThan(decimal.Zero) {
		// Mixed payment with no transaction detail: Shopify drops the redeemed
		// share from current_total_price, so the gap is the gift card amount.
		// Discounts reduce total_price itself and never show up here.
		if gap := payload.TotalPrice.Sub(payload.CurrentTotalPrice); gap.GreaterThan(decimal.Zero) {
			amount = gap
		}
	}

	method := domain.PaymentOther
	switch {
	case amount.GreaterThan(decimal.Zero):
		method = domain.PaymentGiftCard
		log.Info(LogMsgGiftCardPayment, "shopify_order_id", payload.ID, "amount", amount)
	case otherGateway:
		method = domain.PaymentCreditCard
	}

	if amount.GreaterThan(payload.TotalPrice) {
		amount = payload.TotalPrice
	}
	return amount, codes, method
}

func shippingTotal(payload shopify.WebhookOrder) decimal.Decimal {
	if !payload.TotalShipping.IsZero() {
		return payload.TotalShipping
	}
	total := decimal.Zero
	for _, line := range payload.ShippingLines {
		total = total.Add(line.Price)
	}
	return total
}

func parseOrderDate(raw string) time.Time {
	t, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return time.Now().UTC()
	}
	return t
}

// ParsePayload decodes a webhook body
func ParsePayload(body []byte) (shopify.WebhookOrder, error) {
	var payload shopify.WebhookOrder
	if err := json.Unmarshal(body, &payload); err != nil {
		return payload, fmt.Errorf(ErrMsgParseFailed, err)
	}
	return payload, nil
}

// inventorySyncJob pushes one variant's local quantity to the platform
type inventorySyncJob struct {
	variantID   int64
	variantRepo repository.Variant
	pusher      InventoryPusher
}

// Process implements worker.Job
func (j *inventorySyncJob) Process(ctx context.Context) error {
	log := logger.FromContext(ctx)

	variant, err := j.variantRepo.GetVariantByID(ctx, j.variantID)
	if err != nil {
		return err
	}

	itemID, ok, err := resolveInventoryItemID(ctx, j.pusher, variant)
	if err != nil {
		return err
	}
	if !ok {
		log.Debug(LogMsgSyncSkippedNoLink, "variant_id", variant.ID)
		return nil
	}

	if err := j.pusher.SetInventoryLevel(ctx, itemID, variant.InventoryQty); err != nil {
		return err
	}
	log.Info(LogMsgSyncPushed, "variant_id", variant.ID, "quantity", variant.InventoryQty)
	return nil
}

// resolveInventoryItemID finds the platform inventory item for a variant,
// resolving through the API when only the variant link is stored. ok is false
// for variants with no platform link at all.
func resolveInventoryItemID(ctx context.Context, pusher InventoryPusher, variant *domain.Variant) (int64, bool, error) {
	if variant.ShopifyInventoryItemID != nil {
		return *variant.ShopifyInventoryItemID, true, nil
	}
	if variant.ShopifyVariantID == nil {
		return 0, false, nil
	}
	id, err := pusher.InventoryItemID(ctx, *variant.ShopifyVariantID)
	if err != nil {
		return 0, false, err
	}
	return id, true, nil
}
