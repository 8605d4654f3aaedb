// Package metrics provides Prometheus metrics instrumentation.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// RequestDuration tracks HTTP request duration.
	RequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "api_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10, 30, 60},
		},
		[]string{"method", "path", "status"},
	)

	// RequestsTotal tracks total HTTP requests.
	RequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "api_requests_total",
			Help: "Total HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	// ExtractionDuration tracks end-to-end extraction duration per model.
	ExtractionDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "extraction_duration_seconds",
			Help:    "Action item extraction duration in seconds",
			Buckets: []float64{.5, 1, 2, 5, 10, 20, 30, 60, 120},
		},
		[]string{"model", "status"},
	)

	// ExtractionsTotal tracks extraction validity per model. The ratio of
	// valid to total is the JSON-validity regression signal recorded for the
	// two fine-tuned variants.
	ExtractionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "extractions_total",
			Help: "Total extractions by model and validity",
		},
		[]string{"model", "valid"},
	)

	// LLMTokensTotal tracks total backend tokens processed.
	LLMTokensTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "llm_tokens_total",
			Help: "Total LLM tokens processed",
		},
		[]string{"model", "direction"},
	)

	// ActionItemsExtracted tracks the number of action items produced.
	ActionItemsExtracted = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "action_items_extracted_total",
			Help: "Total action items extracted",
		},
		[]string{"model"},
	)

	// JobsInFlight tracks async extraction jobs currently running.
	JobsInFlight = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "extraction_jobs_in_flight",
			Help: "Number of extraction jobs currently running",
		},
	)
)

// RecordRequest records metrics for an HTTP request.
func RecordRequest(method, path, status string, duration float64) {
	RequestDuration.WithLabelValues(method, path, status).Observe(duration)
	RequestsTotal.WithLabelValues(method, path, status).Inc()
}

// RecordExtraction records metrics for one extraction run.
func RecordExtraction(model string, valid bool, duration float64, tokensIn, tokensOut, items int) {
	validLabel := "false"
	status := "invalid"
	if valid {
		validLabel = "true"
		status = "ok"
	}
	ExtractionDuration.WithLabelValues(model, status).Observe(duration)
	ExtractionsTotal.WithLabelValues(model, validLabel).Inc()
	LLMTokensTotal.WithLabelValues(model, "in").Add(float64(tokensIn))
	LLMTokensTotal.WithLabelValues(model, "out").Add(float64(tokensOut))
	if items > 0 {
		ActionItemsExtracted.WithLabelValues(model).Add(float64(items))
	}
}
