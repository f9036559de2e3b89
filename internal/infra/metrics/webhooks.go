package metrics

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
)

func init() {
	register(
		webhookForwardsTotal,
		webhookForwardLatencyMs,
		emailsTotal,
	)
}

var (
	webhookForwardsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "webhook_forwards_total",
			Help: "Forwards to customer webhook endpoints by event type and success.",
		},
		[]string{"event_type", "success"},
	)

	webhookForwardLatencyMs = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "webhook_forward_latency_ms",
			Help:    "Customer webhook round trip in milliseconds.",
			Buckets: []float64{10, 25, 50, 100, 250, 500, 1000, 2000, 5000},
		},
		[]string{"event_type"},
	)

	emailsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "emails_total",
			Help: "Transactional emails by template and result.",
		},
		[]string{"template", "result"},
	)
)

func ObserveWebhookForward(eventType string, success bool, latencyMs int64) {
	webhookForwardsTotal.WithLabelValues(norm(eventType), strconv.FormatBool(success)).Inc()
	webhookForwardLatencyMs.WithLabelValues(norm(eventType)).Observe(float64(latencyMs))
}

func IncEmail(template, result string) {
	emailsTotal.WithLabelValues(norm(template), norm(result)).Inc()
}
