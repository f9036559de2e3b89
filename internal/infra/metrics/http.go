package metrics

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
)

func init() { register(httpRequestDurationMs) }

var httpRequestDurationMs = prometheus.NewHistogramVec(
	prometheus.HistogramOpts{
		Name:    "http_request_duration_ms",
		Help:    "HTTP request duration by route pattern and status.",
		Buckets: []float64{5, 10, 25, 50, 100, 250, 500, 1000, 2500, 5000, 10000},
	},
	[]string{"route", "status"},
)

func ObserveHTTPRequest(route string, status int, ms float64) {
	if route == "" {
		route = "unmatched"
	}
	httpRequestDurationMs.WithLabelValues(route, strconv.Itoa(status)).Observe(ms)
}
