// internal/common/metrics/metrics.go
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	ChatRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "chat_requests_total",
			Help: "Total number of chat messages answered, by resolved intent",
		},
		[]string{"intent"},
	)

	ChatRequestsFailed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "chat_requests_failed_total",
			Help: "Total number of chat messages that ended in an error response",
		},
		[]string{"error_code"},
	)

	ChatRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name: "chat_request_duration_seconds",
			Help: "Duration of chat message handling in seconds",
		},
		[]string{"intent"},
	)

	DelegateRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "delegate_requests_total",
			Help: "Total number of generative delegate calls, by outcome",
		},
		[]string{"outcome"},
	)

	ProductSearchRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "product_search_requests_total",
			Help: "Total number of product listing requests",
		},
		[]string{"names_only"},
	)

	CatalogProductsLoaded = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "catalog_products_loaded",
			Help: "Number of products held by the in-memory catalog",
		},
	)
)

// Delegate outcomes.
const (
	OutcomeSuccess       = "success"
	OutcomeCacheHit      = "cache_hit"
	OutcomeKeyMissing    = "key_missing"
	OutcomeUpstreamError = "upstream_error"
	OutcomeRequestError  = "request_error"
)
