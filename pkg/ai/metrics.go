package ai

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

var (
	aiDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "reviewer",
		Subsystem: "ai",
		Name:      "generation_duration_seconds",
		Help:      "Duration of language model generation requests",
		Buckets:   []float64{0.5, 1, 2.5, 5, 10, 20, 40, 60, 120},
	}, []string{"provider", "model"})

	aiFailures = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "reviewer",
		Subsystem: "ai",
		Name:      "generation_failures_total",
		Help:      "Number of failed language model generation requests",
	}, []string{"provider", "model"})
)

func observe(span trace.Span, provider, model string, start time.Time, err error) {
	aiDuration.WithLabelValues(provider, model).Observe(time.Since(start).Seconds())
	if err != nil {
		aiFailures.WithLabelValues(provider, model).Inc()
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
}
