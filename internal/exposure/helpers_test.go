package exposure

import (
	"context"
	"io"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/edctrack/exposure/internal/datastore"
	"github.com/edctrack/exposure/internal/logger"
)

var baseTime = time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)

func ptr[T any](v T) *T { return &v }

// fakeScans filters an in-memory scan list the way the store does.
type fakeScans struct {
	mu    sync.Mutex
	scans []datastore.ProductScan
	calls int
	err   error
}

func (f *fakeScans) FetchScans(_ context.Context, userID string, start, end time.Time) ([]datastore.ProductScan, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if f.err != nil {
		return nil, f.err
	}

	var out []datastore.ProductScan
	for _, s := range f.scans {
		if s.UserID == userID && !s.ScannedAt.Before(start) && !s.ScannedAt.After(end) {
			out = append(out, s)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].ScannedAt.After(out[j].ScannedAt) })
	return out, nil
}

func (f *fakeScans) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

// memReports assigns ids and keeps every saved snapshot.
type memReports struct {
	mu    sync.Mutex
	saved []*datastore.ExposureReport
}

func (m *memReports) SaveReport(_ context.Context, r *datastore.ExposureReport) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	r.ID = uint(len(m.saved) + 1)
	r.CreatedAt = baseTime
	m.saved = append(m.saved, r)
	return nil
}

type mockReports struct {
	mock.Mock
}

func (m *mockReports) SaveReport(ctx context.Context, r *datastore.ExposureReport) error {
	args := m.Called(ctx, r)
	return args.Error(0)
}

func testLogger() logger.Logger {
	return logger.NewWriterLogger(io.Discard, logger.LogLevelError).Module("exposure")
}

func newTestEngine(t *testing.T, scans ScanSource, reports ReportSink, opts ...Option) *Engine {
	t.Helper()
	base := []Option{
		WithClock(func() time.Time { return baseTime }),
		WithLogger(testLogger()),
	}
	return NewEngine(scans, reports, DefaultPolicy(), append(base, opts...)...)
}

func scan(id uint, user, name, category string, score *float64, at time.Time, chems ...datastore.FlaggedChemical) datastore.ProductScan {
	return datastore.ProductScan{
		ID:               id,
		UserID:           user,
		ProductName:      name,
		Category:         category,
		OverallScore:     score,
		FlaggedChemicals: chems,
		ScannedAt:        at,
	}
}

func chemical(name string, risk, confidence float64, types ...string) datastore.FlaggedChemical {
	return datastore.FlaggedChemical{Name: name, EDCTypes: types, RiskScore: &risk, Confidence: &confidence}
}
