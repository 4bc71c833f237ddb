package alerting

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/edctrack/exposure/internal/datastore"
	"github.com/edctrack/exposure/internal/exposure"
)

func ptr[T any](v T) *T { return &v }

func TestCheckAndCreateAlertsEndToEnd(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	store := newTestStore(t)
	now := func() time.Time { return baseTime }

	start := baseTime.Add(-7 * 24 * time.Hour)
	require.NoError(t, store.Scans.SaveScans(ctx, []datastore.ProductScan{
		{UserID: "u1", ProductName: "Toner", Category: "cosmetic", OverallScore: ptr(95.0), ScannedAt: start.Add(time.Hour)},
		{UserID: "u1", ProductName: "Granola", Category: "food", OverallScore: ptr(92.0), ScannedAt: start.Add(3 * 24 * time.Hour)},
		{UserID: "u1", ProductName: "Sponge", OverallScore: ptr(90.0), ScannedAt: start.Add(6 * 24 * time.Hour)},
	}))

	exposureEngine := exposure.NewEngine(store.Scans, store.Reports, exposure.DefaultPolicy(), exposure.WithClock(now))
	engine := newTestEngine(t, exposureEngine, store.Reports, store.Alerts, DefaultThresholds(), WithClock(now))

	alerts, err := engine.CheckAndCreateAlerts(ctx, "u1")
	require.NoError(t, err)

	// food is the largest contributor but the week stays well under the limit,
	// and the previous week is empty so no trend alert fires
	for _, a := range alerts {
		assert.NotEqual(t, string(AlertWeeklyLimitExceeded), a.AlertType)
		assert.NotEqual(t, string(AlertApproachingLimit), a.AlertType)
	}
	require.Len(t, alerts, 1)
	assert.Equal(t, string(AlertCriticalSource), alerts[0].AlertType)
	assert.Equal(t, "Granola", alerts[0].Subject)

	latest, found, err := store.Reports.LatestReportID(ctx, "u1")
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, latest, alerts[0].ReportID)

	report, err := store.Reports.GetReport(ctx, latest)
	require.NoError(t, err)
	assert.Equal(t, string(exposure.PeriodWeekly), report.PeriodType)
	assert.Equal(t, 3, report.ScanCount)
}
