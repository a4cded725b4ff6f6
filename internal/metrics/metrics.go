// Package metrics provides Prometheus metrics for the memories service.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "memories"

var (
	// SearchTotal counts search operations by kind (search, load_more) and outcome.
	SearchTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "search_total",
			Help:      "Total number of search operations",
		},
		[]string{"kind", "outcome"},
	)

	SearchDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "search_duration_seconds",
			Help:      "Duration of store queries issued by searches in seconds",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"kind"},
	)

	// StaleResponses counts responses discarded because a newer search superseded them.
	StaleResponses = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "search_stale_responses_total",
			Help:      "Search responses discarded by the generation guard",
		},
	)

	ActiveSessions = promauto.NewGauge(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "active_sessions",
			Help:      "Number of open search sessions",
		},
	)

	UploadFiles = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "upload_files_total",
			Help:      "Uploaded files by outcome",
		},
		[]string{"outcome"},
	)

	UploadBytes = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "upload_bytes_total",
			Help:      "Bytes before and after compression",
		},
		[]string{"stage"},
	)

	UploadDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "upload_batch_duration_seconds",
			Help:      "Duration of upload batches in seconds",
			Buckets:   []float64{.05, .1, .25, .5, 1, 2.5, 5, 10, 30, 60},
		},
	)
)

// RecordSearch records one search or load-more call.
func RecordSearch(kind, outcome string, seconds float64) {
	SearchTotal.WithLabelValues(kind, outcome).Inc()
	SearchDuration.WithLabelValues(kind).Observe(seconds)
}

// RecordUpload records one finished upload batch.
func RecordUpload(succeeded, failed int, originalBytes, compressedBytes int64, seconds float64) {
	UploadFiles.WithLabelValues("success").Add(float64(succeeded))
	UploadFiles.WithLabelValues("failure").Add(float64(failed))
	UploadBytes.WithLabelValues("original").Add(float64(originalBytes))
	UploadBytes.WithLabelValues("compressed").Add(float64(compressedBytes))
	UploadDuration.Observe(seconds)
}
