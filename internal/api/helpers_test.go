package api

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/edctrack/exposure/internal/datastore"
	"github.com/edctrack/exposure/internal/exposure"
	"github.com/edctrack/exposure/internal/logger"
	"github.com/edctrack/exposure/internal/observability"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

var fixedNow = time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)

type mockExposure struct{ mock.Mock }

func (m *mockExposure) GenerateReport(ctx context.Context, req exposure.ReportRequest) (*exposure.Report, error) {
	args := m.Called(ctx, req)
	r, _ := args.Get(0).(*exposure.Report)
	return r, args.Error(1)
}

func (m *mockExposure) ComputeTrend(ctx context.Context, userID string, period exposure.PeriodType, anchor time.Time, numPeriods int) ([]datastore.TrendPoint, error) {
	args := m.Called(ctx, userID, period, anchor, numPeriods)
	points, _ := args.Get(0).([]datastore.TrendPoint)
	return points, args.Error(1)
}

func (m *mockExposure) CurrentExposure(ctx context.Context, userID string, days int) (*exposure.CurrentExposure, error) {
	args := m.Called(ctx, userID, days)
	c, _ := args.Get(0).(*exposure.CurrentExposure)
	return c, args.Error(1)
}

func (m *mockExposure) Now() time.Time { return fixedNow }

type mockAlerts struct{ mock.Mock }

func (m *mockAlerts) CheckAndCreateAlerts(ctx context.Context, userID string) ([]*datastore.ExposureAlert, error) {
	args := m.Called(ctx, userID)
	alerts, _ := args.Get(0).([]*datastore.ExposureAlert)
	return alerts, args.Error(1)
}

func (m *mockAlerts) GetUserAlerts(ctx context.Context, userID string, unacknowledgedOnly bool, limit int) ([]datastore.ExposureAlert, error) {
	args := m.Called(ctx, userID, unacknowledgedOnly, limit)
	alerts, _ := args.Get(0).([]datastore.ExposureAlert)
	return alerts, args.Error(1)
}

func (m *mockAlerts) AcknowledgeAlert(ctx context.Context, alertID uint) (bool, error) {
	args := m.Called(ctx, alertID)
	return args.Bool(0), args.Error(1)
}

func (m *mockAlerts) MarkAlertSent(ctx context.Context, alertID uint) (bool, error) {
	args := m.Called(ctx, alertID)
	return args.Bool(0), args.Error(1)
}

type stubPinger struct{ err error }

func (p stubPinger) Ping(context.Context) error { return p.err }

type testServer struct {
	server   *Server
	exposure *mockExposure
	alerts   *mockAlerts
}

// newTestServer builds a server around fresh mocks. Mock expectations are
// asserted at cleanup.
func newTestServer(t *testing.T, config Config, metrics *observability.Metrics, opts ...Option) *testServer {
	t.Helper()

	exp := &mockExposure{}
	alerts := &mockAlerts{}
	opts = append([]Option{WithLogger(logger.NewWriterLogger(io.Discard, logger.LogLevelError).Module("api"))}, opts...)
	controller := NewController(exp, alerts, opts...)

	t.Cleanup(func() {
		exp.AssertExpectations(t)
		alerts.AssertExpectations(t)
	})

	return &testServer{
		server:   NewServer(config, controller, metrics),
		exposure: exp,
		alerts:   alerts,
	}
}

func (ts *testServer) do(t *testing.T, method, target string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, target, http.NoBody)
	rec := httptest.NewRecorder()
	ts.server.Handler().ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), rec.Body.String())
	return v
}

func sampleReport(userID string) *exposure.Report {
	return &exposure.Report{
		ID: 7,
		ExposureData: exposure.ExposureData{
			UserID:             userID,
			PeriodStart:        fixedNow.Add(-7 * 24 * time.Hour),
			PeriodEnd:          fixedNow,
			TotalExposure:      42.5,
			ExposureByType:     map[string]float64{"bpa": 12, "paraben": 30},
			ExposureByCategory: map[string]float64{"cosmetic": 40, "food": 2.5},
			TopSources: []datastore.TopSource{
				{ScanID: 3, ProductName: "Face Cream", Category: "cosmetic", ExposureContribution: 40},
			},
			ScanCount: 2,
		},
		PeriodType:     exposure.PeriodWeekly,
		ExposureLimit:  50,
		PercentOfLimit: 85,
		Status:         exposure.StatusApproaching,
		Trend: []datastore.TrendPoint{
			{PeriodStart: fixedNow.Add(-14 * 24 * time.Hour), PeriodEnd: fixedNow.Add(-7 * 24 * time.Hour), TotalExposure: 20, ScanCount: 1},
		},
		Recommendations: []string{"WARNING"},
		GeneratedAt:     fixedNow,
	}
}
