package observability

import (
	"time"

	"github.com/boddenberg/treasury-stress-go/internal/domain"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	dto "github.com/prometheus/client_model/go"
)

// Metrics holds all Prometheus metrics for the treasury service.
type Metrics struct {
	// Registry is the Prometheus registry that owns these metrics.
	// Exposed so the /metrics endpoint can use it.
	Registry *prometheus.Registry

	requestDuration   *prometheus.HistogramVec
	externalErrors    *prometheus.CounterVec
	cacheHits         *prometheus.CounterVec
	cacheMisses       *prometheus.CounterVec
	simulations       *prometheus.CounterVec
	dataQualityIssues prometheus.Counter
	baselineMinCash   prometheus.Gauge
	baselineRunway    prometheus.Gauge
}

// NewMetrics creates a dedicated Prometheus registry and registers all
// application metrics in it. Using a private registry avoids "duplicate
// collector" panics when NewMetrics is called more than once (e.g. in tests).
func NewMetrics() *Metrics {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	return &Metrics{
		Registry: reg,

		requestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "treasury_request_duration_seconds",
				Help:    "Duration of treasury operations.",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"operation"},
		),
		externalErrors: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "treasury_external_errors_total",
				Help: "Total errors from the record sources.",
			},
			[]string{"service"},
		),
		cacheHits: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "treasury_cache_hits_total",
				Help: "Total cache hits.",
			},
			[]string{"cache"},
		),
		cacheMisses: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "treasury_cache_misses_total",
				Help: "Total cache misses.",
			},
			[]string{"cache"},
		),
		simulations: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "treasury_simulations_total",
				Help: "Simulation runs by outcome.",
			},
			[]string{"status"},
		),
		dataQualityIssues: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "treasury_data_quality_issues_total",
				Help: "Records simulated with a substituted date.",
			},
		),
		baselineMinCash: factory.NewGauge(
			prometheus.GaugeOpts{
				Name: "treasury_baseline_min_cash",
				Help: "Projected minimum cash of the last baseline refresh.",
			},
		),
		baselineRunway: factory.NewGauge(
			prometheus.GaugeOpts{
				Name: "treasury_baseline_runway_days",
				Help: "Runway of the last baseline refresh, -1 when sustainable.",
			},
		),
	}
}

// RecordRequestDuration records the duration of an operation.
func (m *Metrics) RecordRequestDuration(operation string, d time.Duration) {
	m.requestDuration.WithLabelValues(operation).Observe(d.Seconds())
}

// IncrExternalError increments the external error counter.
func (m *Metrics) IncrExternalError(service string) {
	m.externalErrors.WithLabelValues(service).Inc()
}

// IncrCacheHit increments the cache hit counter.
func (m *Metrics) IncrCacheHit(cache string) {
	m.cacheHits.WithLabelValues(cache).Inc()
}

// IncrCacheMiss increments the cache miss counter.
func (m *Metrics) IncrCacheMiss(cache string) {
	m.cacheMisses.WithLabelValues(cache).Inc()
}

// RecordSimulation counts a finished run and its data-quality issues.
func (m *Metrics) RecordSimulation(status domain.SimulationStatus, issues int) {
	m.simulations.WithLabelValues(string(status)).Inc()
	if issues > 0 {
		m.dataQualityIssues.Add(float64(issues))
	}
}

// IncrRejected counts a run refused before simulation.
func (m *Metrics) IncrRejected() {
	m.simulations.WithLabelValues("REJECTED").Inc()
}

// SetBaseline publishes the latest scheduled baseline.
func (m *Metrics) SetBaseline(result *domain.SimulationResult) {
	m.baselineMinCash.Set(float64(result.MinCash))
	runway := -1.0
	if result.RunwayDays != nil {
		runway = float64(*result.RunwayDays)
	}
	m.baselineRunway.Set(runway)
}

// GetTreasurySnapshot returns the counters behind GET /v1/metrics/treasury.
func (m *Metrics) GetTreasurySnapshot() *domain.TreasuryMetrics {
	// Prometheus counters expose cumulative values.
	hits := getCounterValue(m.cacheHits, "simulation")
	misses := getCounterValue(m.cacheMisses, "simulation")

	cacheHitRate := float64(0)
	if hits+misses > 0 {
		cacheHitRate = hits / (hits + misses)
	}

	return &domain.TreasuryMetrics{
		SustainableRuns:   int64(getCounterValue(m.simulations, string(domain.StatusSustainable))),
		InsolventRuns:     int64(getCounterValue(m.simulations, string(domain.StatusInsolvent))),
		RejectedRuns:      int64(getCounterValue(m.simulations, "REJECTED")),
		CacheHitRate:      cacheHitRate,
		DataQualityIssues: int64(metricValue(m.dataQualityIssues)),
		BaselineMinCash:   metricValue(m.baselineMinCash),
		Period:            "all_time",
	}
}

// getCounterValue extracts the current float64 value from a CounterVec for a given label.
func getCounterValue(cv *prometheus.CounterVec, label string) float64 {
	return metricValue(cv.WithLabelValues(label))
}

func metricValue(c prometheus.Metric) float64 {
	m := &dto.Metric{}
	if err := c.Write(m); err != nil {
		return 0
	}
	switch {
	case m.Counter != nil && m.Counter.Value != nil:
		return *m.Counter.Value
	case m.Gauge != nil && m.Gauge.Value != nil:
		return *m.Gauge.Value
	}
	return 0
}
