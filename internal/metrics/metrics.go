package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "scraper_http_requests_total",
			Help: "Total number of HTTP requests.",
		},
		[]string{"method", "path", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "scraper_http_request_duration_seconds",
			Help:    "Duration of HTTP requests.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path", "status"},
	)

	// ExtractionsTotal counts finished extractions.
	// outcome: success, invalid_input, upstream_error, failure
	ExtractionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "scraper_extractions_total",
			Help: "Total number of extraction requests by mode, target kind and outcome.",
		},
		[]string{"mode", "target", "outcome"},
	)

	UpstreamDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "scraper_upstream_request_duration_seconds",
			Help:    "Duration of calls to the model provider.",
			Buckets: []float64{1, 5, 10, 30, 60, 120, 180},
		},
		[]string{"status"},
	)

	FetchedDocumentsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "scraper_fetched_documents_total",
			Help: "Documents retrieved by the provider's fetch tool.",
		},
	)
)
