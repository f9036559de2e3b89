package metrics

import "github.com/prometheus/client_golang/prometheus"

func init() {
	register(
		paymentsTotal,
		paymentsRevenueTotal,
		paymentCallbacksTotal,
		subscriptionCutoversTotal,
		invoicesTotal,
	)
}

var (
	paymentsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "payments_total",
			Help: "Payments by status (pending/paid/failed/expired/refund).",
		},
		[]string{"status"},
	)

	paymentsRevenueTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "payments_revenue_total",
			Help: "The total monetary value of paid payments, labeled by currency.",
		},
		[]string{"currency"},
	)

	paymentCallbacksTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "payment_callbacks_total",
			Help: "Gateway callbacks by result.",
		},
		[]string{"result"}, // 'applied', 'noop', 'bad_signature', 'unsigned', 'not_found', 'error'
	)

	subscriptionCutoversTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "subscription_cutovers_total",
			Help: "Subscriptions activated by a paid payment.",
		},
	)

	invoicesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "invoices_total",
			Help: "Invoice issuance attempts by result.",
		},
		[]string{"result"},
	)
)

func IncPayment(status string) {
	paymentsTotal.WithLabelValues(norm(status)).Inc()
}

func AddPaymentRevenue(currency string, amount int64) {
	paymentsRevenueTotal.WithLabelValues(norm(currency)).Add(float64(amount))
}

func IncPaymentCallback(result string) {
	paymentCallbacksTotal.WithLabelValues(norm(result)).Inc()
}

func IncSubscriptionCutover() { subscriptionCutoversTotal.Inc() }

func IncInvoice(result string) {
	invoicesTotal.WithLabelValues(norm(result)).Inc()
}
