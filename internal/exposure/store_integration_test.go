package exposure

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/edctrack/exposure/internal/datastore"
)

func TestGenerateReportWithSQLiteStore(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	store, err := datastore.Open(ctx, datastore.Config{
		Type:        datastore.DialectSQLite,
		SQLitePath:  filepath.Join(t.TempDir(), "exposure.db"),
		AutoMigrate: true,
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	require.NoError(t, store.Scans.SaveScans(ctx, []datastore.ProductScan{
		scan(0, "u1", "Receipt Paper", "household", ptr(10.0), baseTime.Add(-day), chemical("bpa", 9, 0.9, "bpa")),
		scan(0, "u1", "Nail Polish", "cosmetic", ptr(25.0), baseTime.Add(-2*day), chemical("dbp", 7, 0.8, "phthalate")),
		scan(0, "u2", "Other User", "food", ptr(0.0), baseTime.Add(-day)),
	}))

	engine := newTestEngine(t, store.Scans, store.Reports)

	report, err := engine.GenerateReport(ctx, ReportRequest{UserID: "u1", PeriodType: PeriodWeekly})
	require.NoError(t, err)
	require.NotZero(t, report.ID)
	assert.Equal(t, 2, report.ScanCount)
	assert.Equal(t, "Nail Polish", report.TopSources[0].ProductName)

	latest, found, err := store.Reports.LatestReportID(ctx, "u1")
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, report.ID, latest)

	saved, err := store.Reports.GetReport(ctx, report.ID)
	require.NoError(t, err)
	rebuilt := ReportFromSnapshot(saved)
	assert.Equal(t, report.Status, rebuilt.Status)
	assert.InDelta(t, report.ExposureByType["bpa"], rebuilt.ExposureByType["bpa"], 1e-9)
	assert.Len(t, rebuilt.Trend, DefaultTrendPeriods)
	assert.Equal(t, report.Recommendations, rebuilt.Recommendations)
}
