package monitoring

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics tracks verification activity for the serve mode /metrics endpoint.
// Each instance carries its own registry so tests can construct as many as
// they need without collector collisions.
type Metrics struct {
	registry *prometheus.Registry

	runsTotal   *prometheus.CounterVec
	runDuration prometheus.Histogram
	runsActive  prometheus.Gauge
	checksTotal *prometheus.CounterVec
}

func NewMetrics() *Metrics {
	registry := prometheus.NewRegistry()
	factory := promauto.With(registry)

	return &Metrics{
		registry: registry,
		runsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "pinncheck",
			Name:      "runs_total",
			Help:      "Verification runs by terminal status.",
		}, []string{"status"}),
		runDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: "pinncheck",
			Name:      "run_duration_seconds",
			Help:      "Wall-clock duration of verification runs.",
			Buckets:   prometheus.DefBuckets,
		}),
		runsActive: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: "pinncheck",
			Name:      "runs_active",
			Help:      "Verification runs currently executing.",
		}),
		checksTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "pinncheck",
			Name:      "checks_total",
			Help:      "Executed checks by kind and result.",
		}, []string{"kind", "result"}),
	}
}

func (m *Metrics) RunStarted() {
	m.runsActive.Inc()
}

func (m *Metrics) RunFinished(status string, duration time.Duration) {
	m.runsActive.Dec()
	m.runsTotal.WithLabelValues(status).Inc()
	m.runDuration.Observe(duration.Seconds())
}

func (m *Metrics) CheckExecuted(kind, result string) {
	m.checksTotal.WithLabelValues(kind, result).Inc()
}

// Handler serves this instance's registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
