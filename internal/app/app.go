// Package app assembles the runtime from loaded settings: logging, optional
// Sentry reporting, metrics, the datastore and both engines.
package app

import (
	"context"
	"time"

	"github.com/edctrack/exposure/internal/alerting"
	"github.com/edctrack/exposure/internal/api"
	"github.com/edctrack/exposure/internal/buildinfo"
	"github.com/edctrack/exposure/internal/conf"
	"github.com/edctrack/exposure/internal/datastore"
	"github.com/edctrack/exposure/internal/errors"
	"github.com/edctrack/exposure/internal/exposure"
	"github.com/edctrack/exposure/internal/logger"
	"github.com/edctrack/exposure/internal/observability"
)

const telemetryFlushTimeout = 2 * time.Second

// App holds the long-lived components shared by every command.
type App struct {
	Settings *conf.Settings
	Build    *buildinfo.Context
	Store    *datastore.Store
	Metrics  *observability.Metrics
	Exposure *exposure.Engine
	Alerts   *alerting.Engine

	central *logger.CentralLogger
	log     logger.Logger
}

// New builds the application. On error everything opened so far is closed.
func New(ctx context.Context, settings *conf.Settings, build *buildinfo.Context) (*App, error) {
	central, err := logger.NewCentralLogger(settings.LoggingConfig())
	if err != nil {
		return nil, errors.New(err).
			Component("app").
			Category(errors.CategoryConfiguration).
			Context("operation", "logger_init").
			Build()
	}
	logger.SetGlobal(central)

	a := &App{
		Settings: settings,
		Build:    build,
		central:  central,
		log:      central.Module("app"),
	}

	if err := a.init(ctx); err != nil {
		_ = a.Close()
		return nil, err
	}
	return a, nil
}

func (a *App) init(ctx context.Context) error {
	s := a.Settings

	if s.Sentry.Enabled {
		if err := errors.InitSentry(s.Sentry.DSN, s.Sentry.Environment, a.Build.Version()); err != nil {
			return err
		}
		a.log.Info("sentry error reporting enabled", logger.String("environment", s.Sentry.Environment))
	}

	m, err := observability.NewMetrics()
	if err != nil {
		return errors.New(err).
			Component("app").
			Category(errors.CategoryConfiguration).
			Context("operation", "metrics_init").
			Build()
	}
	a.Metrics = m

	policy, err := s.ExposurePolicy()
	if err != nil {
		return err
	}

	store, err := datastore.Open(ctx, s.DatastoreConfig())
	if err != nil {
		return err
	}
	a.Store = store

	exposureOpts := []exposure.Option{exposure.WithMetrics(m.Exposure)}
	if s.Exposure.TrendCacheTTL > 0 {
		exposureOpts = append(exposureOpts, exposure.WithTrendCache(s.Exposure.TrendCacheTTL))
	}
	a.Exposure = exposure.NewEngine(store.Scans, store.Reports, policy, exposureOpts...)

	a.Alerts, err = alerting.NewEngine(a.Exposure, store.Reports, store.Alerts, s.AlertThresholds(),
		alerting.WithMetrics(m.Alerts))
	if err != nil {
		return err
	}

	a.log.Debug("application initialized",
		logger.String("version", a.Build.Version()),
		logger.String("database", store.Dialect))
	return nil
}

// APIServer builds the HTTP server over the application's engines.
func (a *App) APIServer() *api.Server {
	controller := api.NewController(a.Exposure, a.Alerts, api.WithHealthChecker(a.Store))
	return api.NewServer(a.apiConfig(), controller, a.Metrics)
}

func (a *App) apiConfig() api.Config {
	s := a.Settings.API
	return api.Config{
		Listen:       s.Listen,
		RateLimit:    s.RateLimit,
		Burst:        s.Burst,
		ReadTimeout:  s.ReadTimeout,
		WriteTimeout: s.WriteTimeout,
	}
}

// Close releases the store, flushes telemetry and closes log outputs.
func (a *App) Close() error {
	if a == nil {
		return nil
	}

	var errs []error
	if a.Store != nil {
		if err := a.Store.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	if a.Settings.Sentry.Enabled {
		errors.FlushTelemetry(telemetryFlushTimeout)
	}
	if a.central != nil {
		if err := a.central.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
