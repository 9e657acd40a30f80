package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// RateLimitRejections counts requests rejected by a rate limiter.
	RateLimitRejections = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "draftdesk_rate_limit_rejections_total",
		Help: "Total number of operations rejected by the rate limiter",
	}, []string{"limiter"})

	// Generations counts generated drafts by the path that produced them.
	Generations = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "draftdesk_generations_total",
		Help: "Total number of generated drafts by source",
	}, []string{"source"})

	// BackendLatency records generation backend round trips.
	BackendLatency = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "draftdesk_generation_backend_latency_seconds",
		Help:    "Generation backend request latency in seconds",
		Buckets: []float64{0.25, 0.5, 1, 2, 5, 10, 20, 40},
	})

	// ErrorsLogged counts error log appends by error code.
	ErrorsLogged = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "draftdesk_errors_logged_total",
		Help: "Total number of errors recorded in the error log",
	}, []string{"code"})

	// StoreErrors counts key-value store failures by driver and operation.
	StoreErrors = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "draftdesk_store_errors_total",
		Help: "Total number of key-value store errors",
	}, []string{"driver", "operation"})
)
