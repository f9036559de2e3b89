package metrics

import "github.com/prometheus/client_golang/prometheus"

func init() { register(dbPoolConns, dbErrorsTotal) }

var (
	dbPoolConns = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "db_pool_connections",
			Help: "Connections in the pgx pool by state.",
		},
		[]string{"state"}, // 'total', 'idle', 'in_use'
	)

	dbErrorsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "db_errors_total",
			Help: "Repository errors by table and operation.",
		},
		[]string{"table", "op"},
	)
)

func SetDBPoolStats(total, idle, inUse int32) {
	dbPoolConns.WithLabelValues("total").Set(float64(total))
	dbPoolConns.WithLabelValues("idle").Set(float64(idle))
	dbPoolConns.WithLabelValues("in_use").Set(float64(inUse))
}

func IncDBError(table, op string) {
	dbErrorsTotal.WithLabelValues(norm(table), norm(op)).Inc()
}
