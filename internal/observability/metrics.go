package observability

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	registerOnce sync.Once

	apiRequestsTotal  *prometheus.CounterVec
	apiLatencySeconds *prometheus.HistogramVec
	apiErrorsTotal    *prometheus.CounterVec

	reviewAttemptsTotal   *prometheus.CounterVec
	reviewBatchesTotal    *prometheus.CounterVec
	reviewBatchSize       prometheus.Histogram
	reviewSaveFailures    prometheus.Counter
	reviewLatencySeconds  prometheus.Histogram
	reviewEventsPublished *prometheus.CounterVec
)

// RegisterMetrics initialises the Prometheus collectors used by the API and the review pipeline.
func RegisterMetrics() {
	registerOnce.Do(func() {
		apiRequestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "api_requests_total",
			Help: "Total number of API requests served.",
		}, []string{"method", "route", "status"})

		apiLatencySeconds = prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "api_latency_seconds",
			Help:    "Latency distribution for API requests.",
			Buckets: []float64{0.01, 0.05, 0.1, 0.5, 1, 2.5, 5, 10, 30, 60, 120},
		}, []string{"method", "route"})

		apiErrorsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "api_errors_total",
			Help: "Total number of error responses returned by API endpoints.",
		}, []string{"method", "route", "status"})

		reviewAttemptsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "review_attempts_total",
			Help: "Language model review attempts by outcome.",
		}, []string{"outcome"})

		reviewBatchesTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "review_batches_total",
			Help: "Review batches by final outcome.",
		}, []string{"outcome"})

		reviewBatchSize = prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "review_batch_size",
			Help:    "Number of applications sent to the model per batch.",
			Buckets: prometheus.LinearBuckets(1, 1, 10),
		})

		reviewSaveFailures = prometheus.NewCounter(prometheus.CounterOpts{
			Name: "review_save_failures_total",
			Help: "Reviews that could not be persisted.",
		})

		reviewLatencySeconds = prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "review_batch_latency_seconds",
			Help:    "End to end duration of a review batch including retries.",
			Buckets: []float64{1, 2.5, 5, 10, 20, 40, 60, 120, 180},
		})

		reviewEventsPublished = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "review_events_published_total",
			Help: "Review completion events published per broker.",
		}, []string{"broker", "status"})

		prometheus.MustRegister(
			apiRequestsTotal, apiLatencySeconds, apiErrorsTotal,
			reviewAttemptsTotal, reviewBatchesTotal, reviewBatchSize,
			reviewSaveFailures, reviewLatencySeconds, reviewEventsPublished,
		)
	})
}

// APIRequests exposes the counter for API requests.
func APIRequests() *prometheus.CounterVec {
	RegisterMetrics()
	return apiRequestsTotal
}

// APILatency exposes the latency histogram for API requests.
func APILatency() *prometheus.HistogramVec {
	RegisterMetrics()
	return apiLatencySeconds
}

// APIErrors exposes the counter for API error responses.
func APIErrors() *prometheus.CounterVec {
	RegisterMetrics()
	return apiErrorsTotal
}

// ReviewAttempts counts model attempts labelled accepted, rejected or model_error.
func ReviewAttempts() *prometheus.CounterVec {
	RegisterMetrics()
	return reviewAttemptsTotal
}

// ReviewBatches counts finished batches labelled validated or exhausted.
func ReviewBatches() *prometheus.CounterVec {
	RegisterMetrics()
	return reviewBatchesTotal
}

func ReviewBatchSize() prometheus.Histogram {
	RegisterMetrics()
	return reviewBatchSize
}

func ReviewSaveFailures() prometheus.Counter {
	RegisterMetrics()
	return reviewSaveFailures
}

func ReviewLatency() prometheus.Histogram {
	RegisterMetrics()
	return reviewLatencySeconds
}

// ReviewEventsPublished counts broker publishes labelled by broker and success or error.
func ReviewEventsPublished() *prometheus.CounterVec {
	RegisterMetrics()
	return reviewEventsPublished
}
