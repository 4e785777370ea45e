package telemetry

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics — Prometheus метрики движков.
//
// Создаётся один раз на процесс (promauto регистрирует коллекторы
// в глобальном реестре) и передаётся движкам через конфигурацию.
type Metrics struct {
	stepsTotal   *prometheus.CounterVec
	runsTotal    *prometheus.CounterVec
	stepDuration prometheus.Histogram
	runDuration  *prometheus.HistogramVec
}

// NewMetrics создаёт и регистрирует метрики.
func NewMetrics() *Metrics {
	return &Metrics{
		stepsTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "gatekeeper_steps_total",
			Help: "Total executed gate steps by status",
		}, []string{"status"}),

		runsTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "gatekeeper_runs_total",
			Help: "Total gate runs by engine and verdict",
		}, []string{"engine", "verdict"}),

		stepDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "gatekeeper_step_duration_seconds",
			Help:    "Gate step execution duration",
			Buckets: prometheus.ExponentialBuckets(0.1, 2, 12),
		}),

		runDuration: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "gatekeeper_run_duration_seconds",
			Help:    "Gate run duration by engine",
			Buckets: prometheus.ExponentialBuckets(1, 2, 12),
		}, []string{"engine"}),
	}
}

// ObserveStep фиксирует исход одного шага.
func (m *Metrics) ObserveStep(status string, d time.Duration) {
	m.stepsTotal.WithLabelValues(status).Inc()
	m.stepDuration.Observe(d.Seconds())
}

// ObserveRun фиксирует завершение одного запуска.
func (m *Metrics) ObserveRun(engine string, verdict bool, d time.Duration) {
	v := "fail"
	if verdict {
		v = "pass"
	}
	m.runsTotal.WithLabelValues(engine, v).Inc()
	m.runDuration.WithLabelValues(engine).Observe(d.Seconds())
}
