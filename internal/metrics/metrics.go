// Package metrics exports run results in the Prometheus text format, for a
// node_exporter textfile collector to pick up after each run.
package metrics

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/kerkeslager/fur-infinity/internal/harness"
)

// Metrics holds the collectors for harness runs.
type Metrics struct {
	registry *prometheus.Registry

	casesTotal          *prometheus.CounterVec
	caseDurationSeconds *prometheus.HistogramVec
	runDurationSeconds  prometheus.Gauge
	lastRunTimestamp    prometheus.Gauge
	lastRunSuccess      prometheus.Gauge
}

// New creates the collectors on a private registry.
func New() *Metrics {
	m := &Metrics{registry: prometheus.NewRegistry()}

	m.casesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "furtest_cases_total",
			Help: "Conformance cases executed, by kind, suite and status",
		},
		[]string{"kind", "suite", "status"},
	)

	m.caseDurationSeconds = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "furtest_case_duration_seconds",
			Help:    "Wall time of one conformance case",
			Buckets: []float64{0.01, 0.05, 0.1, 0.5, 1, 5, 30},
		},
		[]string{"kind"},
	)

	m.runDurationSeconds = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "furtest_run_duration_seconds",
		Help: "Wall time of the last run",
	})
	m.lastRunTimestamp = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "furtest_last_run_timestamp_seconds",
		Help: "Unix time the last run finished",
	})
	m.lastRunSuccess = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "furtest_last_run_success",
		Help: "1 if every case of the last run passed, 0 otherwise",
	})

	m.registry.MustRegister(
		m.casesTotal,
		m.caseDurationSeconds,
		m.runDurationSeconds,
		m.lastRunTimestamp,
		m.lastRunSuccess,
	)
	return m
}

// Registry returns the registry the collectors are registered on.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Record adds the outcomes of r.
func (m *Metrics) Record(r *harness.Report) {
	for _, o := range r.Outcomes {
		m.casesTotal.WithLabelValues(string(o.Kind), o.Suite, string(o.Status)).Inc()
		m.caseDurationSeconds.WithLabelValues(string(o.Kind)).Observe(o.Duration.Seconds())
	}
	m.runDurationSeconds.Set(r.FinishedAt.Sub(r.StartedAt).Seconds())
	m.lastRunTimestamp.Set(float64(r.FinishedAt.Unix()))
	if r.OK() {
		m.lastRunSuccess.Set(1)
	} else {
		m.lastRunSuccess.Set(0)
	}
}

// WriteTextfile atomically writes every collected metric to path.
func (m *Metrics) WriteTextfile(path string) error {
	if err := prometheus.WriteToTextfile(path, m.registry); err != nil {
		return fmt.Errorf("write metrics to %s: %w", path, err)
	}
	return nil
}
