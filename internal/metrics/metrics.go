package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// HTTP Metrics
var (
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: MetricNameHTTPRequestsTotal,
			Help: HelpTextHTTPRequestsTotal,
		},
		[]string{LabelMethod, LabelPath, LabelStatus},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    MetricNameHTTPRequestDuration,
			Help:    HelpTextHTTPRequestDuration,
			Buckets: HTTPLatencyBuckets,
		},
		[]string{LabelMethod, LabelPath},
	)

	HTTPRequestsInFlight = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: MetricNameHTTPRequestsInFlight,
			Help: HelpTextHTTPRequestsInFlight,
		},
	)
)

// Ledger & ingestion metrics
var (
	WebhooksReceived = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: MetricNameWebhooksReceived,
			Help: HelpTextWebhooksReceived,
		},
		[]string{LabelOutcome},
	)

	OrdersProcessed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: MetricNameOrdersProcessed,
			Help: HelpTextOrdersProcessed,
		},
		[]string{LabelOutcome},
	)

	OrderLinesSkipped = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: MetricNameOrderLinesSkipped,
			Help: HelpTextOrderLinesSkipped,
		},
		[]string{LabelReason},
	)

	InventoryTransactionsApplied = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: MetricNameInventoryTxApplied,
			Help: HelpTextInventoryTxApplied,
		},
		[]string{LabelKind},
	)

	CreditEntriesWritten = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: MetricNameCreditEntriesWritten,
			Help: HelpTextCreditEntriesWritten,
		},
		[]string{LabelType},
	)
)

// External sync metrics
var (
	ShopifyCalls = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: MetricNameShopifyCalls,
			Help: HelpTextShopifyCalls,
		},
		[]string{LabelOperation, LabelResult},
	)

	ShopifyRetries = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: MetricNameShopifyRetries,
			Help: HelpTextShopifyRetries,
		},
		[]string{LabelOperation},
	)

	ShopifyCallDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    MetricNameShopifyCallDuration,
			Help:    HelpTextShopifyCallDuration,
			Buckets: ShopifyLatencyBuckets,
		},
		[]string{LabelOperation},
	)
)

// Pricing & reconciliation metrics
var (
	PriceUpdatesPushed = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: MetricNamePriceUpdatesPushed,
			Help: HelpTextPriceUpdatesPushed,
		},
	)

	PriceChangesSuppressed = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: MetricNamePriceChangesSkipped,
			Help: HelpTextPriceChangesSkipped,
		},
	)

	DriftedVariants = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: MetricNameDriftedVariants,
			Help: HelpTextDriftedVariants,
		},
	)

	AuditErrors = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: MetricNameAuditErrors,
			Help: HelpTextAuditErrors,
		},
	)
)
