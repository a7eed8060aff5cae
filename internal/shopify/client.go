package shopify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
	"github.com/shopspring/decimal"

	"github.com/dumplingcollectibles/dumpling-price-automation/internal/domain"
	"github.com/dumplingcollectibles/dumpling-price-automation/internal/logger"
	"github.com/dumplingcollectibles/dumpling-price-automation/internal/metrics"
)

// Client talks to the Shopify Admin REST API. All requests flow through one
// shared rate limiter and retry transient failures with linear backoff.
type Client struct {
	baseURL     string
	token       string
	apiVersion  string
	locationID  int64
	httpClient  *http.Client
	limiter     *Limiter
	maxAttempts int
	baseDelay   time.Duration

	// variant id -> inventory_item_id, saves one GET per inventory push
	invItemCache *expirable.LRU[string, int64]
}

// Config carries Client construction parameters
type Config struct {
	ShopURL     string
	AccessToken string
	APIVersion  string
	LocationID  int64
	RateLimit   float64
	MaxAttempts int
	BaseDelay   time.Duration
}

// NewClient creates a Shopify API client
func NewClient(cfg Config) *Client {
	if cfg.APIVersion == "" {
		cfg.APIVersion = DefaultAPIVersion
	}
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = DefaultMaxAttempts
	}
	if cfg.BaseDelay <= 0 {
		cfg.BaseDelay = DefaultBaseDelay
	}
	return &Client{
		baseURL:     cfg.ShopURL,
		token:       cfg.AccessToken,
		apiVersion:  cfg.APIVersion,
		locationID:  cfg.LocationID,
		httpClient:  &http.Client{Timeout: DefaultTimeout},
		limiter:     NewLimiter(cfg.RateLimit),
		maxAttempts: cfg.MaxAttempts,
		baseDelay:   cfg.BaseDelay,
		invItemCache: expirable.NewLRU[string, int64](
			InventoryItemCacheSize, nil, InventoryItemCacheTTL),
	}
}

// doRequest performs one API call with rate limiting and retries. Transient
// failures (transport errors, 429, 5xx) back off linearly; 429 honors
// Retry-After when the header parses. Terminal statuses return immediately
// wrapped in a SyncError.
func (c *Client) doRequest(ctx context.Context, op, method, path string, body, out any) error {
	var reqBody []byte
	if body != nil {
		var err error
		reqBody, err = json.Marshal(body)
		if err != nil {
			return &domain.SyncError{Op: op, Terminal: true, Err: err}
		}
	}

	url := fmt.Sprintf("%s/admin/api/%s%s", c.baseURL, c.apiVersion, path)
	log := logger.FromContext(ctx)

	var lastErr error
	for attempt := 0; attempt < c.maxAttempts; attempt++ {
		if attempt > 0 {
			delay := c.baseDelay * time.Duration(attempt)
			log.Info(LogMsgRetryingRequest, "attempt", attempt, "op", op, "delay", delay)
			metrics.ShopifyRetries.WithLabelValues(op).Inc()
			select {
			case <-time.After(delay):
			case <-ctx.Done():
				return &domain.SyncError{Op: op, Terminal: true, Err: ctx.Err()}
			}
		}

		if err := c.limiter.Wait(ctx); err != nil {
			return &domain.SyncError{Op: op, Terminal: true, Err: err}
		}

		req, err := http.NewRequestWithContext(ctx, method, url, bytes.NewReader(reqBody))
		if err != nil {
			return &domain.SyncError{Op: op, Terminal: true, Err: err}
		}
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("X-Shopify-Access-Token", c.token)

		start := time.Now()
		resp, err := c.httpClient.Do(req)
		metrics.ShopifyCallDuration.WithLabelValues(op).Observe(time.Since(start).Seconds())
		if err != nil {
			metrics.ShopifyCalls.WithLabelValues(op, "transport_error").Inc()
			lastErr = &domain.SyncError{Op: op, Err: err}
			continue
		}
		metrics.ShopifyCalls.WithLabelValues(op, strconv.Itoa(resp.StatusCode)).Inc()

		switch {
		case resp.StatusCode >= 200 && resp.StatusCode < 300:
			err := decodeBody(resp.Body, out)
			resp.Body.Close()
			if err != nil {
				return &domain.SyncError{Op: op, StatusCode: resp.StatusCode, Terminal: true, Err: err}
			}
			return nil

		case resp.StatusCode == http.StatusTooManyRequests:
			retryAfter := parseRetryAfter(resp.Header.Get("Retry-After"))
			resp.Body.Close()
			lastErr = &domain.SyncError{Op: op, StatusCode: resp.StatusCode, Err: fmt.Errorf("rate limited")}
			if retryAfter > 0 {
				log.Warn(LogMsgRateLimited, "op", op, "retry_after", retryAfter)
				select {
				case <-time.After(retryAfter):
				case <-ctx.Done():
					return &domain.SyncError{Op: op, Terminal: true, Err: ctx.Err()}
				}
			}

		case resp.StatusCode >= 500:
			resp.Body.Close()
			lastErr = &domain.SyncError{Op: op, StatusCode: resp.StatusCode, Err: fmt.Errorf("server error: %d", resp.StatusCode)}

		default:
			// 4xx other than 429 will not improve on retry
			msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
			resp.Body.Close()
			return &domain.SyncError{
				Op:         op,
				StatusCode: resp.StatusCode,
				Terminal:   true,
				Err:        fmt.Errorf("status %d: %s", resp.StatusCode, msg),
			}
		}
	}

	if se, ok := lastErr.(*domain.SyncError); ok {
		return se
	}
	return &domain.SyncError{Op: op, Err: lastErr}
}

func decodeBody(r io.Reader, out any) error {
	if out == nil {
		io.Copy(io.Discard, r)
		return nil
	}
	return json.NewDecoder(r).Decode(out)
}

func parseRetryAfter(header string) time.Duration {
	if header == "" {
		return 0
	}
	secs, err := strconv.ParseFloat(header, 64)
	if err != nil || secs <= 0 {
		return 0
	}
	return time.Duration(secs * float64(time.Second))
}

// InventoryItemID resolves a Shopify variant id to its inventory item id,
// caching results
func (c *Client) InventoryItemID(ctx context.Context, shopifyVariantID string) (int64, error) {
	if id, ok := c.invItemCache.Get(shopifyVariantID); ok {
		return id, nil
	}
	var env variantEnvelope
	path := fmt.Sprintf("/variants/%s.json", shopifyVariantID)
	if err := c.doRequest(ctx, OpGetVariant, http.MethodGet, path, nil, &env); err != nil {
		return 0, err
	}
	c.invItemCache.Add(shopifyVariantID, env.Variant.InventoryItemID)
	return env.Variant.InventoryItemID, nil
}

// SetVariantPrice pushes a new price to a storefront variant
func (c *Client) SetVariantPrice(ctx context.Context, shopifyVariantID string, price decimal.Decimal) error {
	id, err := strconv.ParseInt(shopifyVariantID, 10, 64)
	if err != nil {
		return &domain.SyncError{Op: OpSetVariantPrice, Terminal: true, Err: err}
	}
	body := variantEnvelope{Variant: apiVariant{ID: id, Price: price.StringFixed(2)}}
	path := fmt.Sprintf("/variants/%s.json", shopifyVariantID)
	if err := c.doRequest(ctx, OpSetVariantPrice, http.MethodPut, path, body, nil); err != nil {
		return err
	}
	metrics.PriceUpdatesPushed.Inc()
	return nil
}

// GetInventoryLevel reads the available quantity for an inventory item at the
// configured location
func (c *Client) GetInventoryLevel(ctx context.Context, inventoryItemID int64) (int, error) {
	var env inventoryLevelsEnvelope
	path := fmt.Sprintf("/inventory_levels.json?inventory_item_ids=%d&location_ids=%d",
		inventoryItemID, c.locationID)
	if err := c.doRequest(ctx, OpGetInventoryLevel, http.MethodGet, path, nil, &env); err != nil {
		return 0, err
	}
	for _, level := range env.InventoryLevels {
		if level.InventoryItemID == inventoryItemID {
			return level.Available, nil
		}
	}
	return 0, &domain.SyncError{
		Op:         OpGetInventoryLevel,
		StatusCode: http.StatusNotFound,
		Terminal:   true,
		Err:        fmt.Errorf("no inventory level for item %d at location %d", inventoryItemID, c.locationID),
	}
}

// SetInventoryLevel overwrites the available quantity for an inventory item
// at the configured location
func (c *Client) SetInventoryLevel(ctx context.Context, inventoryItemID int64, available int) error {
	body := map[string]any{
		"location_id":       c.locationID,
		"inventory_item_id": inventoryItemID,
		"available":         available,
	}
	var env inventoryLevelEnvelope
	return c.doRequest(ctx, OpSetInventoryLevel, http.MethodPost, "/inventory_levels/set.json", body, &env)
}

// CreateGiftCard issues a new gift card and returns its code
func (c *Client) CreateGiftCard(ctx context.Context, amount decimal.Decimal, note string) (string, error) {
	body := giftCardEnvelope{GiftCard: giftCard{InitialValue: amount.StringFixed(2), Note: note}}
	var env giftCardEnvelope
	if err := c.doRequest(ctx, OpCreateGiftCard, http.MethodPost, "/gift_cards.json", body, &env); err != nil {
		return "", err
	}
	return env.GiftCard.Code, nil
}
