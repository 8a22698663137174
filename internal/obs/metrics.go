package obs

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics bundles the Prometheus collectors exercised by the dispatcher
// (call counts, elapsed time, retries) and by cmd/relayforge's gauge
// poller (SSH pool size, loaded plugins). A single instance is created
// at startup and threaded through the components that need it.
type Metrics struct {
	DispatchTotal    *prometheus.CounterVec
	DispatchRetries  *prometheus.CounterVec
	DispatchElapsed  *prometheus.HistogramVec
	SSHPoolSize      prometheus.Gauge
	PluginsLoaded    prometheus.Gauge
}

// NewMetrics registers and returns the collector set against reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		DispatchTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "relayforge_dispatch_calls_total",
			Help: "Total tool invocations processed by the dispatcher, by tool and outcome.",
		}, []string{"tool", "kind"}),
		DispatchRetries: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "relayforge_dispatch_retries_total",
			Help: "Total retry attempts issued by the dispatcher, by tool.",
		}, []string{"tool"}),
		DispatchElapsed: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "relayforge_dispatch_elapsed_seconds",
			Help:    "Elapsed wall-clock time per tool invocation.",
			Buckets: prometheus.DefBuckets,
		}, []string{"tool"}),
		SSHPoolSize: factory.NewGauge(prometheus.GaugeOpts{
			Name: "relayforge_ssh_pool_entries",
			Help: "Current number of live SSH connection pool entries.",
		}),
		PluginsLoaded: factory.NewGauge(prometheus.GaugeOpts{
			Name: "relayforge_plugins_loaded",
			Help: "Current number of successfully loaded plugins.",
		}),
	}
}
