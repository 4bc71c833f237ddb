package alerting

import (
	"context"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/edctrack/exposure/internal/datastore"
	"github.com/edctrack/exposure/internal/exposure"
	"github.com/edctrack/exposure/internal/logger"
)

var baseTime = time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)

// stubReports returns a canned weekly report.
type stubReports struct {
	mu      sync.Mutex
	report  *exposure.Report
	err     error
	lastReq exposure.ReportRequest
	calls   int
}

func (s *stubReports) GenerateReport(_ context.Context, req exposure.ReportRequest) (*exposure.Report, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls++
	s.lastReq = req
	if s.err != nil {
		return nil, s.err
	}
	r := *s.report
	r.UserID = req.UserID
	return &r, nil
}

type stubLocator struct {
	id    uint
	found bool
	err   error
}

func (s stubLocator) LatestReportID(context.Context, string) (uint, bool, error) {
	return s.id, s.found, s.err
}

// testClock is a settable clock.
type testClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *testClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *testClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func newTestStore(t *testing.T) *datastore.Store {
	t.Helper()
	store, err := datastore.Open(context.Background(), datastore.Config{
		Type:        datastore.DialectSQLite,
		SQLitePath:  ":memory:",
		AutoMigrate: true,
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func testLogger() logger.Logger {
	return logger.NewWriterLogger(io.Discard, logger.LogLevelError).Module("alerting")
}

func newTestEngine(t *testing.T, reports ReportGenerator, locator ReportLocator, store AlertStore, thresholds Thresholds, opts ...Option) *Engine {
	t.Helper()
	clock := &testClock{now: baseTime}
	base := []Option{WithClock(clock.Now), WithLogger(testLogger())}
	engine, err := NewEngine(reports, locator, store, thresholds, append(base, opts...)...)
	require.NoError(t, err)
	return engine
}

// weeklyReport builds a report with the given percent of the 50.0 weekly limit.
func weeklyReport(percent float64) *exposure.Report {
	return &exposure.Report{
		ExposureData: exposure.ExposureData{
			PeriodStart:        baseTime.Add(-7 * 24 * time.Hour),
			PeriodEnd:          baseTime,
			TotalExposure:      percent / 2,
			ExposureByType:     map[string]float64{},
			ExposureByCategory: map[string]float64{},
		},
		PeriodType:     exposure.PeriodWeekly,
		ExposureLimit:  50,
		PercentOfLimit: percent,
	}
}

func alertTypes(alerts []*datastore.ExposureAlert) []string {
	out := make([]string, len(alerts))
	for i, a := range alerts {
		out[i] = a.AlertType
	}
	return out
}
