package metrics

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Outcome label values.
const (
	OutcomeSuccess = "success"
	OutcomeFailure = "failure"
)

var (
	resolutionsTotal     *prometheus.CounterVec
	storeFetchDuration   *prometheus.HistogramVec
	configHealthy        prometheus.Gauge
	resolutionErrorTotal *prometheus.CounterVec

	// Registration guard
	metricsOnce       sync.Once
	metricsRegistered bool
)

// Metrics records resolution and store-fetch metrics. The zero value is usable;
// nothing is recorded until InitMetrics has run.
type Metrics struct{}

// New returns a Metrics recorder.
func New() *Metrics {
	return &Metrics{}
}

// InitMetrics registers all collectors with the default Prometheus registry.
// Safe to call more than once.
func InitMetrics() {
	metricsOnce.Do(func() {
		resolutionsTotal = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "secretcfg_resolutions_total",
				Help: "Total number of secret configuration resolutions",
			},
			[]string{"provenance", "outcome"},
		)

		resolutionErrorTotal = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "secretcfg_resolution_errors_total",
				Help: "Total number of failed resolutions by error kind",
			},
			[]string{"kind"},
		)

		storeFetchDuration = promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "secretcfg_store_fetch_duration_seconds",
				Help:    "Duration of secret store fetches in seconds",
				Buckets: []float64{0.01, 0.05, 0.1, 0.5, 1, 5},
			},
			[]string{"outcome"},
		)

		configHealthy = promauto.NewGauge(
			prometheus.GaugeOpts{
				Name: "secretcfg_config_healthy",
				Help: "Whether the resolved secret configuration is usable (1=healthy, 0=unhealthy)",
			},
		)

		metricsRegistered = true
	})
}

// RecordResolution counts one resolution attempt. errorKind is empty on success.
func (m *Metrics) RecordResolution(provenance, errorKind string) {
	if !metricsRegistered {
		return
	}

	outcome := OutcomeSuccess
	if errorKind != "" {
		outcome = OutcomeFailure
		resolutionErrorTotal.WithLabelValues(errorKind).Inc()
	}
	resolutionsTotal.WithLabelValues(provenance, outcome).Inc()
	m.SetHealthy(errorKind == "")
}

// ObserveStoreFetch records the latency of one store fetch.
func (m *Metrics) ObserveStoreFetch(outcome string, d time.Duration) {
	if !metricsRegistered {
		return
	}
	storeFetchDuration.WithLabelValues(outcome).Observe(d.Seconds())
}

// SetHealthy updates the health gauge.
func (m *Metrics) SetHealthy(healthy bool) {
	if !metricsRegistered {
		return
	}
	if healthy {
		configHealthy.Set(1)
	} else {
		configHealthy.Set(0)
	}
}
