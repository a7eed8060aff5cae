package metrics

// Metric names
const (
	MetricNameHTTPRequestsTotal    = "http_requests_total"
	MetricNameHTTPRequestDuration  = "http_request_duration_seconds"
	MetricNameHTTPRequestsInFlight = "http_requests_in_flight"

	MetricNameWebhooksReceived     = "webhooks_received_total"
	MetricNameOrdersProcessed      = "orders_processed_total"
	MetricNameOrderLinesSkipped    = "order_lines_skipped_total"
	MetricNameInventoryTxApplied   = "inventory_transactions_applied_total"
	MetricNameCreditEntriesWritten = "store_credit_entries_total"

	MetricNameShopifyCalls        = "shopify_api_calls_total"
	MetricNameShopifyRetries      = "shopify_api_retries_total"
	MetricNameShopifyCallDuration = "shopify_api_call_duration_seconds"

	MetricNamePriceUpdatesPushed  = "price_updates_pushed_total"
	MetricNamePriceChangesSkipped = "price_changes_suppressed_total"

	MetricNameDriftedVariants = "reconciliation_drifted_variants"
	MetricNameAuditErrors     = "reconciliation_errors"
)

// Help text
const (
	HelpTextHTTPRequestsTotal    = "Total number of HTTP requests"
	HelpTextHTTPRequestDuration  = "HTTP request latency in seconds"
	HelpTextHTTPRequestsInFlight = "Current number of in-flight HTTP requests"

	HelpTextWebhooksReceived     = "Total webhooks received, by outcome"
	HelpTextOrdersProcessed      = "Total orders processed through the ingestion pipeline, by outcome"
	HelpTextOrderLinesSkipped    = "Total order line items skipped, by reason"
	HelpTextInventoryTxApplied   = "Total inventory ledger transactions applied, by kind"
	HelpTextCreditEntriesWritten = "Total store credit ledger entries written, by type"

	HelpTextShopifyCalls        = "Total Shopify API calls, by operation and result"
	HelpTextShopifyRetries      = "Total Shopify API retries, by operation"
	HelpTextShopifyCallDuration = "Shopify API call latency in seconds, by operation"

	HelpTextPriceUpdatesPushed  = "Total price changes accepted by the change-gate and pushed"
	HelpTextPriceChangesSkipped = "Total price changes suppressed by the change-gate"

	HelpTextDriftedVariants = "Variants found drifted in the last reconciliation pass"
	HelpTextAuditErrors     = "Variants that could not be checked in the last reconciliation pass"
)

// Label names
const (
	LabelMethod    = "method"
	LabelPath      = "path"
	LabelStatus    = "status"
	LabelOutcome   = "outcome"
	LabelReason    = "reason"
	LabelKind      = "kind"
	LabelType      = "type"
	LabelOperation = "operation"
	LabelResult    = "result"
)

// HTTPLatencyBuckets covers webhook handling latencies
var HTTPLatencyBuckets = []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5}

// ShopifyLatencyBuckets covers external call latencies including retries
var ShopifyLatencyBuckets = []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30}
