package handler

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dumplingcollectibles/dumpling-price-automation/internal/shopify"
)

const testWebhookSecret = "shpss_test_secret"

type mockOrderService struct {
	processed []shopify.WebhookOrder
	err       error
}

func (m *mockOrderService) ProcessOrder(_ context.Context, payload shopify.WebhookOrder) error {
	m.processed = append(m.processed, payload)
	return m.err
}

func sign(secret string, body []byte) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(body)
	return base64.StdEncoding.EncodeToString(mac.Sum(nil))
}

func postWebhook(t *testing.T, svc *mockOrderService, body []byte, signature string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/webhooks/orders", bytes.NewReader(body))
	if signature != "" {
		req.Header.Set(HeaderShopifyHmac, signature)
	}
	rec := httptest.NewRecorder()
	HandleOrderWebhook(testWebhookSecret, svc)(rec, req)
	return rec
}

func TestHandleOrderWebhook_ValidSignature(t *testing.T) {
	svc := &mockOrderService{}
	body := []byte(`{"id": 5001, "order_number": 1042, "total_price": "31.50"}`)

	rec := postWebhook(t, svc, body, sign(testWebhookSecret, body))

	assert.Equal(t, http.StatusOK, rec.Code)
	require.Len(t, svc.processed, 1)
	assert.Equal(t, int64(5001), svc.processed[0].ID)
}

func TestHandleOrderWebhook_BadSignature(t *testing.T) {
	svc := &mockOrderService{}
	body := []byte(`{"id": 5001}`)

	rec := postWebhook(t, svc, body, sign("wrong_secret", body))

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Empty(t, svc.processed)
}

func TestHandleOrderWebhook_MissingSignature(t *testing.T) {
	svc := &mockOrderService{}
	body := []byte(`{"id": 5001}`)

	rec := postWebhook(t, svc, body, "")

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Empty(t, svc.processed)
}

func TestHandleOrderWebhook_TamperedBody(t *testing.T) {
	svc := &mockOrderService{}
	body := []byte(`{"id": 5001}`)
	signature := sign(testWebhookSecret, body)

	rec := postWebhook(t, svc, []byte(`{"id": 9999}`), signature)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Empty(t, svc.processed)
}

func TestHandleOrderWebhook_ProcessingErrorStillAcknowledges(t *testing.T) {
	svc := &mockOrderService{err: errors.New("db down")}
	body := []byte(`{"id": 5001}`)

	rec := postWebhook(t, svc, body, sign(testWebhookSecret, body))

	// Shopify retries non-2xx deliveries; a failed order is parked as
	// rejected instead of being redelivered forever.
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, svc.processed, 1)
}

func TestHandleOrderWebhook_MalformedPayload(t *testing.T) {
	svc := &mockOrderService{}
	body := []byte(`{not json`)

	rec := postWebhook(t, svc, body, sign(testWebhookSecret, body))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, svc.processed)
}
