package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Request counters
	RequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "vision_chat",
			Name:      "requests_total",
			Help:      "Total number of HTTP requests",
		},
		[]string{"method", "endpoint", "status"},
	)

	// Request duration histogram
	RequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "vision_chat",
			Name:      "request_duration_seconds",
			Help:      "HTTP request duration in seconds",
			Buckets:   []float64{0.1, 0.5, 1, 2, 5, 10, 30, 60},
		},
		[]string{"method", "endpoint"},
	)

	// Completion task counters
	CompletionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "vision_chat",
			Name:      "completions_total",
			Help:      "Total completion tasks run",
		},
		[]string{"status"},
	)

	// Completion duration histogram
	CompletionDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "vision_chat",
			Name:      "completion_duration_seconds",
			Help:      "Completion task duration in seconds",
			Buckets:   []float64{0.5, 1, 2, 5, 10, 30, 60, 120, 300},
		},
	)

	// Image tool counters
	ImageGenerationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "vision_chat",
			Name:      "image_generations_total",
			Help:      "Total image tool invocations",
		},
		[]string{"status"},
	)

	// Upload counters
	FileUploadsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "vision_chat",
			Name:      "file_uploads_total",
			Help:      "Total file uploads",
		},
		[]string{"kind", "status"},
	)
)

// RecordRequest records an HTTP request
func RecordRequest(method, endpoint, status string, durationSec float64) {
	RequestsTotal.WithLabelValues(method, endpoint, status).Inc()
	RequestDuration.WithLabelValues(method, endpoint).Observe(durationSec)
}

// RecordCompletion records a finished completion task
func RecordCompletion(status string, durationSec float64) {
	CompletionsTotal.WithLabelValues(status).Inc()
	CompletionDuration.Observe(durationSec)
}

// RecordImageGeneration records an image tool invocation
func RecordImageGeneration(status string) {
	ImageGenerationsTotal.WithLabelValues(status).Inc()
}

// RecordFileUpload records an upload attempt
func RecordFileUpload(kind, status string) {
	FileUploadsTotal.WithLabelValues(kind, status).Inc()
}
