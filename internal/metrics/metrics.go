// Package metrics exposes forecast and training counters for Prometheus
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "pricecast"

// Metrics holds all collectors. Each instance owns a private registry so
// tests and multiple engines do not collide.
type Metrics struct {
	registry *prometheus.Registry

	Forecasts        *prometheus.CounterVec // kind, method
	Fallbacks        *prometheus.CounterVec // kind, from, to
	ForecastFailures *prometheus.CounterVec // kind
	ModelCache       *prometheus.CounterVec // result: fresh, stale, corrupt, error
	ModelFits        *prometheus.CounterVec // trigger, result
	FitDuration      prometheus.Histogram
	Training         *prometheus.CounterVec // status
	ModelEvents      *prometheus.CounterVec // direction: published, received, failed
}

// New creates and registers all metrics
func New() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	f := promauto.With(reg)

	return &Metrics{
		registry: reg,
		Forecasts: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "forecasts_total",
			Help:      "Forecasts served, by horizon kind and producing method",
		}, []string{"kind", "method"}),
		Fallbacks: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "forecast_fallbacks_total",
			Help:      "Transitions from a failed forecasting method to the next one",
		}, []string{"kind", "from", "to"}),
		ForecastFailures: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "forecast_failures_total",
			Help:      "Forecast requests where every method failed",
		}, []string{"kind"}),
		ModelCache: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "model_cache_total",
			Help:      "Model cache lookups by result",
		}, []string{"result"}),
		ModelFits: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "model_fits_total",
			Help:      "Model fits by trigger and result",
		}, []string{"trigger", "result"}),
		FitDuration: f.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "model_fit_duration_seconds",
			Help:      "Time spent fitting a model",
			Buckets:   prometheus.ExponentialBuckets(0.001, 4, 10),
		}),
		Training: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "training_total",
			Help:      "Per-commodity training outcomes",
		}, []string{"status"}),
		ModelEvents: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "model_events_total",
			Help:      "Model lifecycle events",
		}, []string{"direction"}),
	}
}

// Registry returns the private registry
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// RegisterGaugeFunc adds a gauge computed on scrape
func (m *Metrics) RegisterGaugeFunc(name, help string, fn func() float64) {
	promauto.With(m.registry).NewGaugeFunc(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      name,
		Help:      help,
	}, fn)
}

// Handler serves the registry in the Prometheus text format
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}
