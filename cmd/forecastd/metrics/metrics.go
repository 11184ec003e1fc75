// Package metrics provides Prometheus metrics instrumentation for
// forecastd.
//
// It exposes operational metrics about the forecasting pipeline's
// performance: the duration of each stage (fit, forecast), the age of
// the cached baseline, the fitted Easter coefficient, and error
// tracking. All metrics are exposed via the /metrics HTTP endpoint for
// Prometheus scraping.
//
// Metrics exposed:
//   - forecastd_fit_seconds: Histogram of model-fit duration
//   - forecastd_forecast_seconds: Histogram of forecast-generation duration
//   - forecastd_baseline_age_seconds: Gauge of the cached baseline's age
//   - forecastd_easter_coefficient: Gauge of the most recently fitted Easter coefficient
//   - forecastd_scenarios_total: Gauge of the number of stored scenarios
//   - forecastd_errors_total: Counter of errors by component and reason
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics for forecastd.
type Metrics struct {
	FitSeconds         prometheus.Histogram
	ForecastSeconds    prometheus.Histogram
	BaselineAgeSeconds prometheus.Gauge
	EasterCoefficient  prometheus.Gauge
	ScenariosTotal     prometheus.Gauge
	ErrorsTotal        *prometheus.CounterVec
}

// New creates and registers all Prometheus metrics.
func New() *Metrics {
	return &Metrics{
		FitSeconds: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "forecastd_fit_seconds",
			Help:    "Time spent fitting the ARIMAX model",
			Buckets: prometheus.DefBuckets,
		}),

		ForecastSeconds: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "forecastd_forecast_seconds",
			Help:    "Time spent generating a forecast from a fitted model",
			Buckets: prometheus.DefBuckets,
		}),

		BaselineAgeSeconds: promauto.NewGauge(prometheus.GaugeOpts{
			Name: "forecastd_baseline_age_seconds",
			Help: "Age of the cached baseline series in seconds",
		}),

		EasterCoefficient: promauto.NewGauge(prometheus.GaugeOpts{
			Name: "forecastd_easter_coefficient",
			Help: "Most recently fitted Easter invoice-month coefficient",
		}),

		ScenariosTotal: promauto.NewGauge(prometheus.GaugeOpts{
			Name: "forecastd_scenarios_total",
			Help: "Number of scenarios currently stored",
		}),

		ErrorsTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "forecastd_errors_total",
			Help: "Total number of errors by component and reason",
		}, []string{"component", "reason"}),
	}
}

// RecordFit records the time spent fitting a model.
func (m *Metrics) RecordFit(seconds float64) {
	m.FitSeconds.Observe(seconds)
}

// RecordForecast records the time spent generating a forecast.
func (m *Metrics) RecordForecast(seconds float64) {
	m.ForecastSeconds.Observe(seconds)
}

// SetBaselineAge sets the current baseline's age.
func (m *Metrics) SetBaselineAge(seconds float64) {
	m.BaselineAgeSeconds.Set(seconds)
}

// SetEasterCoefficient sets the most recently fitted Easter coefficient.
func (m *Metrics) SetEasterCoefficient(coef float64) {
	m.EasterCoefficient.Set(coef)
}

// SetScenariosTotal sets the current scenario count.
func (m *Metrics) SetScenariosTotal(count int) {
	m.ScenariosTotal.Set(float64(count))
}

// RecordError increments the error counter.
func (m *Metrics) RecordError(component, reason string) {
	m.ErrorsTotal.WithLabelValues(component, reason).Inc()
}
