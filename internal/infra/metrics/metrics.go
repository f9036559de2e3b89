// File: internal/infra/metrics/metrics.go
package metrics

import (
	"strings"

	"github.com/prometheus/client_golang/prometheus"
)

func init() {
	register(
		messagesSentTotal,
		quotaRejectionsTotal,
		apiKeyAuthTotal,
	)
}

var (
	messagesSentTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "messages_sent_total",
			Help: "Outbound WhatsApp messages by type and result.",
		},
		[]string{"type", "result"}, // result: 'sent', 'failed'
	)

	quotaRejectionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "quota_rejections_total",
			Help: "Sends rejected by the quota ledger.",
		},
		[]string{"reason"}, // 'limit_reached', 'no_subscription'
	)

	apiKeyAuthTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "api_key_auth_total",
			Help: "API key authentication attempts by outcome.",
		},
		[]string{"outcome"},
	)
)

func IncMessageSent(msgType, result string) {
	messagesSentTotal.WithLabelValues(norm(msgType), norm(result)).Inc()
}

func IncQuotaRejection(reason string) {
	quotaRejectionsTotal.WithLabelValues(norm(reason)).Inc()
}

func IncAPIKeyAuth(outcome string) {
	apiKeyAuthTotal.WithLabelValues(norm(outcome)).Inc()
}

func norm(s string) string { return strings.ToLower(strings.TrimSpace(s)) }
