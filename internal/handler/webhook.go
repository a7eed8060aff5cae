package handler

import (
	"io"
	"net/http"

	"github.com/dumplingcollectibles/dumpling-price-automation/internal/logger"
	"github.com/dumplingcollectibles/dumpling-price-automation/internal/metrics"
	"github.com/dumplingcollectibles/dumpling-price-automation/internal/order"
)

// HeaderShopifyHmac carries the webhook signature Shopify computes over the
// raw request body.
const HeaderShopifyHmac = "X-Shopify-Hmac-Sha256"

// Webhook outcomes recorded in metrics
const (
	WebhookOutcomeAccepted     = "accepted"
	WebhookOutcomeBadSignature = "bad_signature"
	WebhookOutcomeBadPayload   = "bad_payload"
	WebhookOutcomeFailed       = "failed"
)

// HandleOrderWebhook receives Shopify orders/paid webhooks. A bad signature
// is the only rejection that returns a non-2xx status: Shopify retries
// failed deliveries, and a payload that could not be applied will not apply
// any better on redelivery. Processing failures are logged, the order row is
// left in rejected state for review, and the webhook is acknowledged.
func HandleOrderWebhook(webhookSecret string, orderService order.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		log := logger.FromContext(r.Context())

		body, err := io.ReadAll(r.Body)
		if err != nil {
			log.Error("Failed to read webhook body", "error", err)
			metrics.WebhooksReceived.WithLabelValues(WebhookOutcomeBadPayload).Inc()
			respondError(w, http.StatusBadRequest, ErrMsgInvalidRequest)
			return
		}

		signature := r.Header.Get(HeaderShopifyHmac)
		if !order.VerifySignature(webhookSecret, body, signature) {
			log.Warn("Webhook signature verification failed",
				"remote_addr", r.RemoteAddr,
				"has_signature", signature != "")
			metrics.WebhooksReceived.WithLabelValues(WebhookOutcomeBadSignature).Inc()
			respondError(w, http.StatusUnauthorized, ErrMsgInvalidWebhookSignature)
			return
		}

		payload, err := order.ParsePayload(body)
		if err != nil {
			log.Error("Failed to parse order webhook payload", "error", err)
			metrics.WebhooksReceived.WithLabelValues(WebhookOutcomeBadPayload).Inc()
			respondJSON(w, http.StatusOK, SuccessResponse{Message: MsgWebhookAccepted})
			return
		}

		if err := orderService.ProcessOrder(r.Context(), payload); err != nil {
			log.Error("Order webhook processing failed",
				"shopify_order_id", payload.ID,
				"error", err)
			metrics.WebhooksReceived.WithLabelValues(WebhookOutcomeFailed).Inc()
			respondJSON(w, http.StatusOK, SuccessResponse{Message: MsgWebhookAccepted})
			return
		}

		metrics.WebhooksReceived.WithLabelValues(WebhookOutcomeAccepted).Inc()
		respondJSON(w, http.StatusOK, SuccessResponse{Message: MsgWebhookAccepted})
	}
}
