// Package alerting evaluates a fresh weekly exposure report against alert
// thresholds, persists the resulting alerts and manages their
// acknowledged and sent flags.
package alerting

import (
	"context"
	"time"

	"github.com/edctrack/exposure/internal/datastore"
	"github.com/edctrack/exposure/internal/errors"
	"github.com/edctrack/exposure/internal/exposure"
	"github.com/edctrack/exposure/internal/logger"
	"github.com/edctrack/exposure/internal/observability/metrics"
)

// ReportGenerator produces and persists exposure reports.
type ReportGenerator interface {
	GenerateReport(ctx context.Context, req exposure.ReportRequest) (*exposure.Report, error)
}

// ReportLocator finds the user's most recent report snapshot.
type ReportLocator interface {
	LatestReportID(ctx context.Context, userID string) (uint, bool, error)
}

// AlertStore persists alerts. datastore.AlertRepository satisfies it.
type AlertStore interface {
	SaveAlert(ctx context.Context, alert *datastore.ExposureAlert) error
	ListAlerts(ctx context.Context, userID string, unacknowledgedOnly bool, limit int) ([]datastore.ExposureAlert, error)
	Acknowledge(ctx context.Context, id uint, at time.Time) (*datastore.ExposureAlert, error)
	MarkSent(ctx context.Context, id uint, at time.Time) (*datastore.ExposureAlert, error)
	LatestAlert(ctx context.Context, userID, alertType, subject string, since time.Time) (*datastore.ExposureAlert, bool, error)
}

// Engine runs the alert detectors.
type Engine struct {
	reports    ReportGenerator
	snapshots  ReportLocator
	alerts     AlertStore
	thresholds Thresholds
	now        func() time.Time
	metrics    *metrics.AlertMetrics
	log        logger.Logger
}

// Option configures an Engine.
type Option func(*Engine)

// WithClock replaces the wall clock used for lifecycle timestamps and the
// cooldown window.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) {
		if now != nil {
			e.now = now
		}
	}
}

// WithMetrics records alert metrics.
func WithMetrics(m *metrics.AlertMetrics) Option {
	return func(e *Engine) { e.metrics = m }
}

// WithLogger overrides the package logger.
func WithLogger(log logger.Logger) Option {
	return func(e *Engine) {
		if log != nil {
			e.log = log
		}
	}
}

// NewEngine creates an alert engine. The thresholds are validated here so
// a bad configuration fails at startup rather than on the first check.
func NewEngine(reports ReportGenerator, snapshots ReportLocator, alerts AlertStore, thresholds Thresholds, opts ...Option) (*Engine, error) {
	if err := thresholds.Validate(); err != nil {
		return nil, err
	}
	e := &Engine{
		reports:    reports,
		snapshots:  snapshots,
		alerts:     alerts,
		thresholds: thresholds,
		now:        func() time.Time { return time.Now().UTC() },
		log:        getLogger(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e, nil
}

// Thresholds returns the engine's thresholds.
func (e *Engine) Thresholds() Thresholds { return e.thresholds }

// CheckAndCreateAlerts generates a weekly report for the user, runs every
// detector against it and persists each alert as it is produced. On a
// store failure the alerts saved so far are returned with the error.
func (e *Engine) CheckAndCreateAlerts(ctx context.Context, userID string) ([]*datastore.ExposureAlert, error) {
	alerts, err := e.checkAndCreate(ctx, userID)
	e.metrics.RecordOperation(metrics.OpCheck, err)
	return alerts, err
}

func (e *Engine) checkAndCreate(ctx context.Context, userID string) ([]*datastore.ExposureAlert, error) {
	if userID == "" {
		return nil, errors.ValidationError("user_id", "user_id is required")
	}

	report, err := e.reports.GenerateReport(ctx, exposure.ReportRequest{UserID: userID, PeriodType: exposure.PeriodWeekly})
	if err != nil {
		return nil, err
	}

	candidates := e.detect(report)
	if len(candidates) == 0 {
		e.log.Debug("no alert conditions met",
			logger.String("user_id", userID),
			logger.Float64("percent_of_limit", report.PercentOfLimit))
		return []*datastore.ExposureAlert{}, nil
	}

	// zero when the user has no snapshot
	reportID, _, err := e.snapshots.LatestReportID(ctx, userID)
	if err != nil {
		return nil, err
	}

	created := make([]*datastore.ExposureAlert, 0, len(candidates))
	for _, c := range candidates {
		suppressed, err := e.inCooldown(ctx, userID, c)
		if err != nil {
			return created, err
		}
		if suppressed {
			e.metrics.RecordSuppressed(string(c.alertType))
			e.log.Debug("alert suppressed by cooldown",
				logger.String("user_id", userID),
				logger.String("alert_type", string(c.alertType)),
				logger.String("subject", c.subject))
			continue
		}

		alert := c.toAlert(userID, reportID, e.now())
		if err := e.alerts.SaveAlert(ctx, alert); err != nil {
			return created, err
		}
		created = append(created, alert)

		e.metrics.RecordAlertCreated(string(c.alertType), string(c.severity))
		e.log.Info("exposure alert created",
			logger.String("user_id", userID),
			logger.String("alert_type", string(c.alertType)),
			logger.String("severity", string(c.severity)),
			logger.Uint64("alert_id", uint64(alert.ID)))
	}

	return created, nil
}

func (e *Engine) inCooldown(ctx context.Context, userID string, c candidate) (bool, error) {
	if e.thresholds.Cooldown <= 0 {
		return false, nil
	}
	_, found, err := e.alerts.LatestAlert(ctx, userID, string(c.alertType), c.subject, e.now().Add(-e.thresholds.Cooldown))
	return found, err
}
