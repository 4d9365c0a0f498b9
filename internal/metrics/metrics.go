package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Registry holds every mapper collector. A dedicated registry keeps the
// textfile dump free of Go runtime metrics.
var Registry = prometheus.NewRegistry()

const (
	StatusSuccess = "success"
	StatusInvalid = "invalid"
	StatusFailed  = "failed"
)

var (
	FilesProcessed = promauto.With(Registry).NewCounterVec(
		prometheus.CounterOpts{
			Name: "varsheet_files_processed_total",
			Help: "Total number of VAR sheets processed",
		},
		[]string{"dialect", "status"},
	)

	DialectDetections = promauto.With(Registry).NewCounterVec(
		prometheus.CounterOpts{
			Name: "varsheet_dialect_detections_total",
			Help: "Dialect resolutions by source (flag, detected, fallback)",
		},
		[]string{"dialect", "source"},
	)

	ValidationIssues = promauto.With(Registry).NewCounterVec(
		prometheus.CounterOpts{
			Name: "varsheet_validation_issues_total",
			Help: "Validation issues raised per severity",
		},
		[]string{"dialect", "severity"},
	)

	FieldsExtracted = promauto.With(Registry).NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "varsheet_fields_extracted",
			Help:    "Number of raw fields extracted per sheet",
			Buckets: prometheus.LinearBuckets(0, 5, 8),
		},
		[]string{"dialect"},
	)

	ProcessingDuration = promauto.With(Registry).NewHistogramVec(
		prometheus.HistogramOpts{
			Name: "varsheet_processing_duration_seconds",
			Help: "Duration of sheet processing in seconds",
		},
		[]string{"dialect"},
	)

	FilesActive = promauto.With(Registry).NewGauge(
		prometheus.GaugeOpts{
			Name: "varsheet_files_active",
			Help: "Number of sheets currently being processed",
		},
	)
)

// ObserveFile records the outcome of one processed sheet.
func ObserveFile(dialect, status string, fields int, duration time.Duration) {
	FilesProcessed.WithLabelValues(dialect, status).Inc()
	FieldsExtracted.WithLabelValues(dialect).Observe(float64(fields))
	ProcessingDuration.WithLabelValues(dialect).Observe(duration.Seconds())
}

// ObserveIssues adds validation issue counts for a sheet.
func ObserveIssues(dialect string, errors, warnings int) {
	if errors > 0 {
		ValidationIssues.WithLabelValues(dialect, "error").Add(float64(errors))
	}
	if warnings > 0 {
		ValidationIssues.WithLabelValues(dialect, "warning").Add(float64(warnings))
	}
}

// WriteTextfile dumps the registry in the node_exporter textfile format.
func WriteTextfile(path string) error {
	return prometheus.WriteToTextfile(path, Registry)
}
