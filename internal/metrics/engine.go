package metrics

import "github.com/prometheus/client_golang/prometheus"

// Engine Prometheus metrics.
var (
	SelectDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "zenithds",
			Name:      "select_duration_seconds",
			Help:      "Select duration in seconds",
			Buckets:   []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		},
		[]string{"collection", "status"},
	)

	FilesScannedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "zenithds",
			Name:      "files_scanned_total",
			Help:      "Total files scanned by select workers",
		},
		[]string{"collection", "result"}, // "ok" / "error"
	)

	BytesScannedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "zenithds",
			Name:      "bytes_scanned_total",
			Help:      "Total bytes of files dispatched to select workers",
		},
		[]string{"collection"},
	)

	RowsReturnedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "zenithds",
			Name:      "rows_returned_total",
			Help:      "Total rows merged into select results",
		},
		[]string{"collection"},
	)

	WritesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "zenithds",
			Name:      "writes_total",
			Help:      "Total insert and delete operations",
		},
		[]string{"operation", "status"},
	)
)

var engineMetricsRegistered bool

// RegisterEngineMetrics registers Prometheus engine metrics. Must be called once from main.
func RegisterEngineMetrics() {
	if engineMetricsRegistered {
		return
	}
	prometheus.MustRegister(SelectDuration)
	prometheus.MustRegister(FilesScannedTotal)
	prometheus.MustRegister(BytesScannedTotal)
	prometheus.MustRegister(RowsReturnedTotal)
	prometheus.MustRegister(WritesTotal)
	engineMetricsRegistered = true
}

// UnresolvedCollection labels selects that failed before the collection was listed.
const UnresolvedCollection = "_unresolved"

// Status returns the "ok"/"error" label for an operation outcome.
func Status(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}
