package metrics

import "github.com/prometheus/client_golang/prometheus"

// Archive, kinematics and selection metrics.
var (
	ArchiveRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "gaiachat",
			Name:      "archive_requests_total",
			Help:      "Total number of ADQL queries sent to the archive",
		},
		[]string{"status"},
	)

	ArchiveRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "gaiachat",
			Name:      "archive_request_duration_seconds",
			Help:      "Archive query duration in seconds",
			Buckets:   []float64{0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30, 60, 120},
		},
		[]string{"status"},
	)

	ArchiveRowsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "gaiachat",
			Name:      "archive_rows_total",
			Help:      "Total rows returned by the archive",
		},
	)

	KinematicsRowsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "gaiachat",
			Name:      "kinematics_rows_total",
			Help:      "Rows processed by the Galactocentric transform",
		},
		[]string{"status"}, // "derived" / "unconvertible" / "unavailable"
	)

	SelectionKeptRowsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "gaiachat",
			Name:      "selection_kept_rows_total",
			Help:      "Rows kept by population velocity predicates",
		},
		[]string{"population"},
	)

	SessionCacheTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "gaiachat",
			Name:      "session_cache_total",
			Help:      "Session store lookups",
		},
		[]string{"result"}, // "hit" / "miss"
	)
)

var catalogMetricsRegistered bool

// RegisterCatalogMetrics registers the archive, kinematics, selection and session metrics.
// Must be called once from main.
func RegisterCatalogMetrics() {
	if catalogMetricsRegistered {
		return
	}
	prometheus.MustRegister(ArchiveRequestsTotal)
	prometheus.MustRegister(ArchiveRequestDuration)
	prometheus.MustRegister(ArchiveRowsTotal)
	prometheus.MustRegister(KinematicsRowsTotal)
	prometheus.MustRegister(SelectionKeptRowsTotal)
	prometheus.MustRegister(SessionCacheTotal)
	catalogMetricsRegistered = true
}
