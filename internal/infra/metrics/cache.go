package metrics

import "github.com/prometheus/client_golang/prometheus"

func init() { register(cacheRequestsTotal, rateLimitedTotal) }

var (
	cacheRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cache_requests_total",
			Help: "Cache hits, misses and errors per cache.",
		},
		[]string{"cache", "result"}, // e.g., cache="plan", result="hit"
	)

	rateLimitedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "rate_limited_total",
			Help: "Requests rejected by the API key rate limiter.",
		},
		[]string{"backend"}, // 'redis', 'memory'
	)
)

func IncCacheRequest(cacheName, result string) {
	cacheRequestsTotal.WithLabelValues(norm(cacheName), norm(result)).Inc()
}

func IncRateLimited(backend string) {
	rateLimitedTotal.WithLabelValues(norm(backend)).Inc()
}
