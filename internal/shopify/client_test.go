package shopify

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dumplingcollectibles/dumpling-price-automation/internal/domain"
)

func testClient(serverURL string) *Client {
	return NewClient(Config{
		ShopURL:     serverURL,
		AccessToken: "shpat_test",
		LocationID:  77,
		RateLimit:   10000,
		MaxAttempts: 3,
		BaseDelay:   time.Millisecond,
	})
}

func TestSetVariantPrice(t *testing.T) {
	var gotPath, gotToken, gotPrice string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotToken = r.Header.Get("X-Shopify-Access-Token")

		var env variantEnvelope
		require.NoError(t, json.NewDecoder(r.Body).Decode(&env))
		gotPrice = env.Variant.Price

		assert.Equal(t, http.MethodPut, r.Method)
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	client := testClient(server.URL)
	err := client.SetVariantPrice(context.Background(), "9001", decimal.RequireFromString("15.5"))

	require.NoError(t, err)
	assert.Equal(t, "/admin/api/"+DefaultAPIVersion+"/variants/9001.json", gotPath)
	assert.Equal(t, "shpat_test", gotToken)
	assert.Equal(t, "15.50", gotPrice)
}

func TestDoRequest_RetriesServerErrors(t *testing.T) {
	var calls int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&calls, 1) < 3 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	client := testClient(server.URL)
	err := client.SetInventoryLevel(context.Background(), 42, 5)

	require.NoError(t, err)
	assert.Equal(t, int32(3), atomic.LoadInt32(&calls))
}

func TestDoRequest_ExhaustsRetries(t *testing.T) {
	var calls int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	client := testClient(server.URL)
	err := client.SetInventoryLevel(context.Background(), 42, 5)

	require.Error(t, err)
	var syncErr *domain.SyncError
	require.ErrorAs(t, err, &syncErr)
	assert.Equal(t, http.StatusInternalServerError, syncErr.StatusCode)
	assert.False(t, syncErr.Terminal)
	assert.Equal(t, int32(3), atomic.LoadInt32(&calls))
}

func TestDoRequest_TerminalOn404(t *testing.T) {
	var calls int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		http.Error(w, `{"errors":"Not Found"}`, http.StatusNotFound)
	}))
	defer server.Close()

	client := testClient(server.URL)
	_, err := client.InventoryItemID(context.Background(), "9001")

	require.Error(t, err)
	var syncErr *domain.SyncError
	require.ErrorAs(t, err, &syncErr)
	assert.True(t, syncErr.Terminal)
	assert.Equal(t, http.StatusNotFound, syncErr.StatusCode)
	assert.Equal(t, OpGetVariant, syncErr.Op)
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls), "terminal errors must not retry")
}

func TestDoRequest_HonorsRetryAfter(t *testing.T) {
	var calls int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&calls, 1) == 1 {
			w.Header().Set("Retry-After", "0.01")
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	client := testClient(server.URL)
	start := time.Now()
	err := client.SetInventoryLevel(context.Background(), 42, 5)

	require.NoError(t, err)
	assert.Equal(t, int32(2), atomic.LoadInt32(&calls))
	assert.GreaterOrEqual(t, time.Since(start), 10*time.Millisecond)
}

func TestInventoryItemID_CachesLookups(t *testing.T) {
	var calls int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		json.NewEncoder(w).Encode(variantEnvelope{Variant: apiVariant{ID: 9001, InventoryItemID: 5555}})
	}))
	defer server.Close()

	client := testClient(server.URL)

	id, err := client.InventoryItemID(context.Background(), "9001")
	require.NoError(t, err)
	assert.Equal(t, int64(5555), id)

	id, err = client.InventoryItemID(context.Background(), "9001")
	require.NoError(t, err)
	assert.Equal(t, int64(5555), id)

	assert.Equal(t, int32(1), atomic.LoadInt32(&calls), "second lookup should hit the cache")
}

func TestGetInventoryLevel(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "42", r.URL.Query().Get("inventory_item_ids"))
		assert.Equal(t, "77", r.URL.Query().Get("location_ids"))
		json.NewEncoder(w).Encode(inventoryLevelsEnvelope{
			InventoryLevels: []inventoryLevel{{InventoryItemID: 42, Available: 7}},
		})
	}))
	defer server.Close()

	client := testClient(server.URL)
	available, err := client.GetInventoryLevel(context.Background(), 42)

	require.NoError(t, err)
	assert.Equal(t, 7, available)
}

func TestGetInventoryLevel_MissingItem(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(inventoryLevelsEnvelope{})
	}))
	defer server.Close()

	client := testClient(server.URL)
	_, err := client.GetInventoryLevel(context.Background(), 42)

	var syncErr *domain.SyncError
	require.ErrorAs(t, err, &syncErr)
	assert.True(t, syncErr.Terminal)
	assert.Equal(t, http.StatusNotFound, syncErr.StatusCode)
}

func TestCreateGiftCard(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var env giftCardEnvelope
		require.NoError(t, json.NewDecoder(r.Body).Decode(&env))
		assert.Equal(t, "25.00", env.GiftCard.InitialValue)
		assert.Equal(t, "buylist payout", env.GiftCard.Note)

		json.NewEncoder(w).Encode(giftCardEnvelope{GiftCard: giftCard{Code: "dumpg1ftc0de"}})
	}))
	defer server.Close()

	client := testClient(server.URL)
	code, err := client.CreateGiftCard(context.Background(), decimal.RequireFromString("25"), "buylist payout")

	require.NoError(t, err)
	assert.Equal(t, "dumpg1ftc0de", code)
}
