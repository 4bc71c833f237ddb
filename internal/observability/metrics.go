// Package observability owns the Prometheus registry and the metric collectors
// shared by the exposure engine, the alert engine and the HTTP API.
package observability

import (
	"fmt"
	"net/http"

	"github.com/edctrack/exposure/internal/logger"
	"github.com/edctrack/exposure/internal/observability/metrics"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds all the metric collectors for the application.
type Metrics struct {
	registry *prometheus.Registry
	Exposure *metrics.ExposureMetrics
	Alerts   *metrics.AlertMetrics
	HTTP     *metrics.HTTPMetrics
	Database *metrics.DatabaseMetrics
}

// NewMetrics creates a registry with process and Go runtime collectors and
// registers every application collector on it.
func NewMetrics() (*Metrics, error) {
	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	exposureMetrics, err := metrics.NewExposureMetrics(registry)
	if err != nil {
		return nil, fmt.Errorf("failed to create exposure metrics: %w", err)
	}

	alertMetrics, err := metrics.NewAlertMetrics(registry)
	if err != nil {
		return nil, fmt.Errorf("failed to create alert metrics: %w", err)
	}

	httpMetrics, err := metrics.NewHTTPMetrics(registry)
	if err != nil {
		return nil, fmt.Errorf("failed to create HTTP metrics: %w", err)
	}

	databaseMetrics, err := metrics.NewDatabaseMetrics(registry)
	if err != nil {
		return nil, fmt.Errorf("failed to create database metrics: %w", err)
	}

	return &Metrics{
		registry: registry,
		Exposure: exposureMetrics,
		Alerts:   alertMetrics,
		HTTP:     httpMetrics,
		Database: databaseMetrics,
	}, nil
}

// Registry exposes the underlying registry, mainly for tests.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler returns the /metrics HTTP handler.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{
		ErrorLog:      promErrorLogger{},
		ErrorHandling: promhttp.ContinueOnError,
	})
}

// promErrorLogger routes promhttp errors to the module logger.
type promErrorLogger struct{}

func (promErrorLogger) Println(v ...any) {
	getLogger().Warn("metrics handler error", logger.String("detail", fmt.Sprint(v...)))
}
