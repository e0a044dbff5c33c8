package metrics

import (
	"fmt"
	"math"
	"sync"

	"github.com/drakos74/free-descent/internal/report"
	"github.com/prometheus/client_golang/prometheus"
)

// Observer is the default metrics collector.
var Observer = NewMetrics()

type Metrics struct {
	mutex      *sync.RWMutex
	prometheus Prometheus
	registered bool
}

func NewMetrics() *Metrics {
	return &Metrics{
		mutex:      new(sync.RWMutex),
		prometheus: NewPrometheusMetrics(),
	}
}

// Register registers the collectors with the given registry.
// Registering more than once is a no-op.
func (m *Metrics) Register(registry prometheus.Registerer) error {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	if m.registered {
		return nil
	}
	for _, c := range m.prometheus.collectors() {
		if err := registry.Register(c); err != nil {
			return fmt.Errorf("could not register collector: %w", err)
		}
	}
	m.registered = true
	return nil
}

// Observe tracks the outcome of the given run.
func (m *Metrics) Observe(r report.Report) {
	method := string(r.Config.Method)
	m.prometheus.Runs.WithLabelValues(method, string(r.Summary.Regime)).Inc()
	m.prometheus.Iterations.WithLabelValues(method).Add(float64(len(r.Records)))
	if len(r.Records) > 0 && !math.IsNaN(r.Summary.Final) {
		m.prometheus.Errors.WithLabelValues(method).Observe(r.Summary.Final)
	}
}

// Runs returns the counter of runs for the given method and regime.
func (m *Metrics) Runs(method string, regime report.Regime) prometheus.Counter {
	return m.prometheus.Runs.WithLabelValues(method, string(regime))
}

// Iterations returns the counter of iterations for the given method.
func (m *Metrics) Iterations(method string) prometheus.Counter {
	return m.prometheus.Iterations.WithLabelValues(method)
}
