package metrics

import "github.com/prometheus/client_golang/prometheus"

type Prometheus struct {
	Runs       *prometheus.CounterVec
	Iterations *prometheus.CounterVec
	Errors     *prometheus.HistogramVec
}

func NewPrometheusMetrics() Prometheus {
	return Prometheus{
		Runs: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "descent",
				Name:      "runs",
			}, []string{"method", "regime"}),
		Iterations: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "descent",
				Name:      "iterations",
			}, []string{"method"}),
		Errors: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: "descent",
				Name:      "final_error",
				Buckets:   prometheus.ExponentialBuckets(1e-12, 10, 24),
			}, []string{"method"}),
	}
}

func (p Prometheus) collectors() []prometheus.Collector {
	return []prometheus.Collector{p.Runs, p.Iterations, p.Errors}
}
