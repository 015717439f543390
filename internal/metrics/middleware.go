package metrics

import (
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
)

// Route groups used as the "group" label of the HTTP metrics.
const (
	GroupSearch  = "search"
	GroupQuery   = "query"
	GroupSession = "session"
	GroupChat    = "chat"
	GroupPlot    = "plot"
	GroupOps     = "ops"
	GroupOther   = "other"
)

var firstSegmentGroups = map[string]string{
	"search":      GroupSearch,
	"query":       GroupQuery,
	"populations": GroupQuery,
	"sessions":    GroupSession,
	"health":      GroupOps,
	"metrics":     GroupOps,
}

var (
	// Searches wait on the archive, so the buckets reach two minutes.
	httpRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "gaiachat",
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request duration in seconds by route group and route",
			Buckets:   []float64{0.005, 0.025, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30, 60, 120},
		},
		[]string{"group", "route", "status"},
	)

	httpRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "gaiachat",
			Name:      "http_requests_total",
			Help:      "HTTP requests by route group, method and status class",
		},
		[]string{"group", "method", "status"},
	)

	httpRequestsInFlight = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: "gaiachat",
			Name:      "http_requests_in_flight",
			Help:      "HTTP requests currently being served by route group",
		},
		[]string{"group"},
	)
)

var httpMetricsRegistered bool

// RegisterHTTPMetrics registers the HTTP middleware metrics. Must be called once from main.
func RegisterHTTPMetrics() {
	if httpMetricsRegistered {
		return
	}
	prometheus.MustRegister(httpRequestDuration)
	prometheus.MustRegister(httpRequestsTotal)
	prometheus.MustRegister(httpRequestsInFlight)
	httpMetricsRegistered = true
}

// Middleware records request count, duration and in-flight requests per route group.
func Middleware() func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			group := routeGroup(r.URL.Path)

			inFlight := httpRequestsInFlight.WithLabelValues(group)
			inFlight.Inc()
			defer inFlight.Dec()

			ww := chiMiddleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r)

			status := statusClass(ww.Status())
			httpRequestDuration.WithLabelValues(group, routeLabel(r), status).Observe(time.Since(start).Seconds())
			httpRequestsTotal.WithLabelValues(group, r.Method, status).Inc()
		})
	}
}

// routeGroup maps a request path or route pattern onto its group.
// Chat turns and plots live under /sessions but are grouped on their own.
func routeGroup(path string) string {
	p := strings.TrimPrefix(path, "/")
	first, _, _ := strings.Cut(p, "/")
	group, ok := firstSegmentGroups[first]
	if !ok {
		return GroupOther
	}
	if group == GroupSession {
		switch {
		case strings.HasSuffix(p, "/chat"):
			return GroupChat
		case strings.Contains(p, "/plots/"):
			return GroupPlot
		}
	}
	return group
}

// routeLabel is the chi pattern, never the raw path, to bound cardinality.
func routeLabel(r *http.Request) string {
	rctx := chi.RouteContext(r.Context())
	if rctx == nil || rctx.RoutePattern() == "" {
		return "unmatched"
	}
	return rctx.RoutePattern()
}

// statusClass collapses a status code to "2xx", "4xx" and so on. A handler
// that wrote nothing answered 200.
func statusClass(code int) string {
	if code == 0 {
		code = http.StatusOK
	}
	if code < 100 || code > 599 {
		return "unknown"
	}
	return string(rune('0'+code/100)) + "xx"
}
