package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	once       sync.Once
	collectors []prometheus.Collector
)

// register queues collectors from each file's init().
func register(cs ...prometheus.Collector) {
	collectors = append(collectors, cs...)
}

// MustRegister adds every queued collector to the default registry once.
// Safe to call from both the server and the CLI.
func MustRegister() {
	once.Do(func() {
		if len(collectors) > 0 {
			prometheus.MustRegister(collectors...)
		}
	})
}
