package metrics

import (
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// ExposureMetrics contains Prometheus metrics for exposure aggregation and report generation.
type ExposureMetrics struct {
	ComputationsTotal   *prometheus.CounterVec // Aggregations by result
	ComputationDuration prometheus.Histogram   // Aggregation latency
	ScansPerComputation prometheus.Histogram   // Scans aggregated per window
	ReportsGenerated    *prometheus.CounterVec // Reports by period type and status
	TrendCacheLookups   *prometheus.CounterVec // Trend window cache lookups by result

	registry *prometheus.Registry
}

// NewExposureMetrics creates and registers exposure metrics.
func NewExposureMetrics(registry *prometheus.Registry) (*ExposureMetrics, error) {
	m := &ExposureMetrics{registry: registry}
	m.initMetrics()
	if err := registry.Register(m); err != nil {
		return nil, fmt.Errorf("failed to register exposure metrics: %w", err)
	}
	return m, nil
}

func (m *ExposureMetrics) initMetrics() {
	m.ComputationsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "edc_exposure_computations_total",
			Help: "Total number of exposure aggregations by result",
		},
		[]string{"result"},
	)

	m.ComputationDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "edc_exposure_computation_duration_seconds",
			Help:    "Time taken to aggregate exposure for one window",
			Buckets: computationBuckets,
		},
	)

	m.ScansPerComputation = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "edc_exposure_scans_per_computation",
			Help:    "Number of scans aggregated per exposure window",
			Buckets: scanCountBuckets,
		},
	)

	m.ReportsGenerated = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "edc_exposure_reports_generated_total",
			Help: "Total number of persisted exposure reports by period type and status",
		},
		[]string{"period_type", "status"},
	)

	m.TrendCacheLookups = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "edc_exposure_trend_cache_lookups_total",
			Help: "Trend window cache lookups by result",
		},
		[]string{"result"},
	)
}

// Describe implements the prometheus.Collector interface.
func (m *ExposureMetrics) Describe(ch chan<- *prometheus.Desc) {
	m.ComputationsTotal.Describe(ch)
	m.ComputationDuration.Describe(ch)
	m.ScansPerComputation.Describe(ch)
	m.ReportsGenerated.Describe(ch)
	m.TrendCacheLookups.Describe(ch)
}

// Collect implements the prometheus.Collector interface.
func (m *ExposureMetrics) Collect(ch chan<- prometheus.Metric) {
	m.ComputationsTotal.Collect(ch)
	m.ComputationDuration.Collect(ch)
	m.ScansPerComputation.Collect(ch)
	m.ReportsGenerated.Collect(ch)
	m.TrendCacheLookups.Collect(ch)
}

// RecordComputation records one aggregation. Safe on a nil receiver.
func (m *ExposureMetrics) RecordComputation(duration time.Duration, scanCount int, err error) {
	if m == nil {
		return
	}
	if err != nil {
		m.ComputationsTotal.WithLabelValues(ResultError).Inc()
		return
	}
	m.ComputationsTotal.WithLabelValues(ResultSuccess).Inc()
	m.ComputationDuration.Observe(duration.Seconds())
	m.ScansPerComputation.Observe(float64(scanCount))
}

// RecordReport records a persisted report. Safe on a nil receiver.
func (m *ExposureMetrics) RecordReport(periodType, status string) {
	if m == nil {
		return
	}
	m.ReportsGenerated.WithLabelValues(periodType, status).Inc()
}

// RecordTrendCache records a trend cache lookup. Safe on a nil receiver.
func (m *ExposureMetrics) RecordTrendCache(hit bool) {
	if m == nil {
		return
	}
	result := CacheMiss
	if hit {
		result = CacheHit
	}
	m.TrendCacheLookups.WithLabelValues(result).Inc()
}
