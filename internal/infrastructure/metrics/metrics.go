package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Debate-API metrics
var (
	// Request counters
	RequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "kopi",
			Subsystem: "debate_api",
			Name:      "requests_total",
			Help:      "Total number of HTTP requests",
		},
		[]string{"method", "endpoint", "status"},
	)

	// Request duration histogram
	RequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "kopi",
			Subsystem: "debate_api",
			Name:      "request_duration_seconds",
			Help:      "HTTP request duration in seconds",
			Buckets:   []float64{0.1, 0.5, 1, 2, 5, 10, 30, 60},
		},
		[]string{"method", "endpoint"},
	)

	// Model call counters
	ModelCallsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "kopi",
			Subsystem: "debate_api",
			Name:      "model_calls_total",
			Help:      "Total language model invocations",
		},
		[]string{"model", "operation", "status"},
	)

	// Model call duration histogram
	ModelCallDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "kopi",
			Subsystem: "debate_api",
			Name:      "model_call_duration_seconds",
			Help:      "Language model call duration in seconds",
			Buckets:   []float64{0.25, 0.5, 1, 2, 5, 10, 30},
		},
		[]string{"model", "operation"},
	)

	// Fallback replies served instead of a model answer
	FallbackRepliesTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: "kopi",
			Subsystem: "debate_api",
			Name:      "fallback_replies_total",
			Help:      "Total chat turns answered with the fallback reply",
		},
	)

	// New conversations
	ConversationsCreatedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: "kopi",
			Subsystem: "debate_api",
			Name:      "conversations_created_total",
			Help:      "Total conversations created",
		},
	)

	// DB query duration
	DBQueryDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "kopi",
			Subsystem: "debate_api",
			Name:      "db_query_duration_seconds",
			Help:      "Database query duration in seconds",
			Buckets:   []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1},
		},
		[]string{"operation"},
	)
)

// RecordRequest records one finished HTTP request.
func RecordRequest(method, endpoint, status string, duration float64) {
	RequestsTotal.WithLabelValues(method, endpoint, status).Inc()
	RequestDuration.WithLabelValues(method, endpoint).Observe(duration)
}

// RecordModelCall records one finished language model invocation.
func RecordModelCall(model, operation, status string, duration float64) {
	ModelCallsTotal.WithLabelValues(model, operation, status).Inc()
	ModelCallDuration.WithLabelValues(model, operation).Observe(duration)
}
