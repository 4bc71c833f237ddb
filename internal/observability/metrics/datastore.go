package metrics

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
)

// Connection pool state label values.
const (
	ConnOpen  = "open"
	ConnInUse = "in_use"
	ConnIdle  = "idle"
)

// DatabaseMetrics tracks connection pool usage and store health checks.
type DatabaseMetrics struct {
	Connections  *prometheus.GaugeVec
	PoolWaits    prometheus.Gauge
	HealthChecks *prometheus.CounterVec

	registry *prometheus.Registry
}

// NewDatabaseMetrics creates and registers database metrics.
func NewDatabaseMetrics(registry *prometheus.Registry) (*DatabaseMetrics, error) {
	m := &DatabaseMetrics{registry: registry}
	m.Connections = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "edc_db_connections",
			Help: "Database connections by pool state",
		},
		[]string{"state"},
	)
	m.PoolWaits = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "edc_db_pool_wait_count",
			Help: "Total number of connections waited for, as reported by the pool",
		},
	)
	m.HealthChecks = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "edc_db_health_checks_total",
			Help: "Database ping results",
		},
		[]string{"result"},
	)
	if err := registry.Register(m); err != nil {
		return nil, fmt.Errorf("failed to register database metrics: %w", err)
	}
	return m, nil
}

// Describe implements the prometheus.Collector interface.
func (m *DatabaseMetrics) Describe(ch chan<- *prometheus.Desc) {
	m.Connections.Describe(ch)
	m.PoolWaits.Describe(ch)
	m.HealthChecks.Describe(ch)
}

// Collect implements the prometheus.Collector interface.
func (m *DatabaseMetrics) Collect(ch chan<- prometheus.Metric) {
	m.Connections.Collect(ch)
	m.PoolWaits.Collect(ch)
	m.HealthChecks.Collect(ch)
}

// UpdateConnections sets the pool gauges. Safe on a nil receiver.
func (m *DatabaseMetrics) UpdateConnections(open, inUse, idle int, waitCount int64) {
	if m == nil {
		return
	}
	m.Connections.WithLabelValues(ConnOpen).Set(float64(open))
	m.Connections.WithLabelValues(ConnInUse).Set(float64(inUse))
	m.Connections.WithLabelValues(ConnIdle).Set(float64(idle))
	m.PoolWaits.Set(float64(waitCount))
}

// RecordHealthCheck counts one ping. Safe on a nil receiver.
func (m *DatabaseMetrics) RecordHealthCheck(err error) {
	if m == nil {
		return
	}
	result := ResultSuccess
	if err != nil {
		result = ResultError
	}
	m.HealthChecks.WithLabelValues(result).Inc()
}
