package metrics

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
)

// AlertMetrics contains Prometheus metrics for the alert engine.
type AlertMetrics struct {
	AlertsCreated    *prometheus.CounterVec // Alerts created by type and severity
	AlertsSuppressed *prometheus.CounterVec // Alerts skipped by the cooldown, by type
	Operations       *prometheus.CounterVec // Alert operations by operation and result

	registry *prometheus.Registry
}

// NewAlertMetrics creates and registers alert metrics.
func NewAlertMetrics(registry *prometheus.Registry) (*AlertMetrics, error) {
	m := &AlertMetrics{registry: registry}
	m.initMetrics()
	if err := registry.Register(m); err != nil {
		return nil, fmt.Errorf("failed to register alert metrics: %w", err)
	}
	return m, nil
}

func (m *AlertMetrics) initMetrics() {
	m.AlertsCreated = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "edc_alerts_created_total",
			Help: "Total number of exposure alerts created by type and severity",
		},
		[]string{"alert_type", "severity"},
	)

	m.AlertsSuppressed = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "edc_alerts_suppressed_total",
			Help: "Total number of alerts not created because an identical alert is inside the cooldown",
		},
		[]string{"alert_type"},
	)

	m.Operations = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "edc_alert_operations_total",
			Help: "Alert engine operations by operation and result",
		},
		[]string{"operation", "result"},
	)
}

// Describe implements the prometheus.Collector interface.
func (m *AlertMetrics) Describe(ch chan<- *prometheus.Desc) {
	m.AlertsCreated.Describe(ch)
	m.AlertsSuppressed.Describe(ch)
	m.Operations.Describe(ch)
}

// Collect implements the prometheus.Collector interface.
func (m *AlertMetrics) Collect(ch chan<- prometheus.Metric) {
	m.AlertsCreated.Collect(ch)
	m.AlertsSuppressed.Collect(ch)
	m.Operations.Collect(ch)
}

// RecordAlertCreated counts a persisted alert. Safe on a nil receiver.
func (m *AlertMetrics) RecordAlertCreated(alertType, severity string) {
	if m == nil {
		return
	}
	m.AlertsCreated.WithLabelValues(alertType, severity).Inc()
}

// RecordSuppressed counts an alert skipped by the cooldown. Safe on a nil receiver.
func (m *AlertMetrics) RecordSuppressed(alertType string) {
	if m == nil {
		return
	}
	m.AlertsSuppressed.WithLabelValues(alertType).Inc()
}

// RecordOperation counts an alert operation outcome. Safe on a nil receiver.
func (m *AlertMetrics) RecordOperation(operation string, err error) {
	if m == nil {
		return
	}
	result := ResultSuccess
	if err != nil {
		result = ResultError
	}
	m.Operations.WithLabelValues(operation, result).Inc()
}
