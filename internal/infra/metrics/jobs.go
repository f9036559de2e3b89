package metrics

import "github.com/prometheus/client_golang/prometheus"

func init() { register(backgroundTasksTotal) }

var backgroundTasksTotal = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "background_tasks_total",
		Help: "Best-effort background tasks, labeled by task name and status.",
	},
	[]string{"task", "status"}, // 'completed', 'failed', 'dropped'
)

func IncBackgroundTask(task, status string) {
	backgroundTasksTotal.WithLabelValues(norm(task), norm(status)).Inc()
}
