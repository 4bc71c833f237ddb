// Package exposure aggregates product scans into weighted EDC exposure,
// compares it to safety limits and builds persisted exposure reports with
// trend series and recommendations.
//
// The engine holds no per-user state. Every call reads scans through a
// ScanSource and, for reports, writes one immutable snapshot through a
// ReportSink as its final step.
package exposure

import (
	"context"
	"time"

	"github.com/patrickmn/go-cache"

	"github.com/edctrack/exposure/internal/datastore"
	"github.com/edctrack/exposure/internal/errors"
	"github.com/edctrack/exposure/internal/logger"
	"github.com/edctrack/exposure/internal/observability/metrics"
)

// ScanSource returns a user's scans in the closed interval [start, end],
// newest first.
type ScanSource interface {
	FetchScans(ctx context.Context, userID string, start, end time.Time) ([]datastore.ProductScan, error)
}

// ReportSink persists report snapshots.
type ReportSink interface {
	SaveReport(ctx context.Context, report *datastore.ExposureReport) error
}

// Engine computes exposure and generates reports.
type Engine struct {
	scans      ScanSource
	reports    ReportSink
	policy     *Policy
	now        func() time.Time
	metrics    *metrics.ExposureMetrics
	trendCache *cache.Cache
	log        logger.Logger
}

// Option configures an Engine.
type Option func(*Engine)

// WithClock replaces the wall clock used for omitted window ends.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) {
		if now != nil {
			e.now = now
		}
	}
}

// WithMetrics records aggregation and report metrics.
func WithMetrics(m *metrics.ExposureMetrics) Option {
	return func(e *Engine) { e.metrics = m }
}

// WithTrendCache memoizes trend windows per (user, start, end) for ttl.
// A non-positive ttl leaves memoization off.
func WithTrendCache(ttl time.Duration) Option {
	return func(e *Engine) {
		if ttl > 0 {
			e.trendCache = cache.New(ttl, 2*ttl)
		}
	}
}

// WithLogger overrides the package logger.
func WithLogger(log logger.Logger) Option {
	return func(e *Engine) {
		if log != nil {
			e.log = log
		}
	}
}

// NewEngine creates an engine. A nil policy selects DefaultPolicy. reports
// may be nil for engines that never generate reports.
func NewEngine(scans ScanSource, reports ReportSink, policy *Policy, opts ...Option) *Engine {
	if policy == nil {
		policy = DefaultPolicy()
	}
	e := &Engine{
		scans:   scans,
		reports: reports,
		policy:  policy,
		now:     func() time.Time { return time.Now().UTC() },
		log:     getLogger(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Policy returns the engine's policy.
func (e *Engine) Policy() *Policy { return e.policy }

// Now returns the engine clock's current time.
func (e *Engine) Now() time.Time { return e.now() }

func validateUser(userID string) error {
	if userID == "" {
		return validationError("user_id", "user_id is required", userID)
	}
	return nil
}

func validationError(field, message string, value any) error {
	return errors.Newf("%s", message).
		Component("exposure").
		Category(errors.CategoryValidation).
		Context("field", field).
		Context("value", value).
		Build()
}
