package alerting

import (
	"context"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/edctrack/exposure/internal/datastore"
	"github.com/edctrack/exposure/internal/errors"
	"github.com/edctrack/exposure/internal/exposure"
	"github.com/edctrack/exposure/internal/observability/metrics"
)

func TestWeeklyLimitAlerts(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name         string
		percent      float64
		wantType     string
		wantSeverity string
	}{
		{"exceeded", 120, string(AlertWeeklyLimitExceeded), string(SeverityCritical)},
		{"exactly at limit", 100, string(AlertWeeklyLimitExceeded), string(SeverityCritical)},
		{"approaching", 85, string(AlertApproachingLimit), string(SeverityWarning)},
		{"approaching threshold", 70, string(AlertApproachingLimit), string(SeverityWarning)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			store := newTestStore(t)
			engine := newTestEngine(t, &stubReports{report: weeklyReport(tt.percent)}, stubLocator{}, store.Alerts, DefaultThresholds())

			alerts, err := engine.CheckAndCreateAlerts(context.Background(), "u1")
			require.NoError(t, err)
			require.Len(t, alerts, 1)
			assert.Equal(t, tt.wantType, alerts[0].AlertType)
			assert.Equal(t, tt.wantSeverity, alerts[0].Severity)
			assert.NotZero(t, alerts[0].ID)
			assert.NotEmpty(t, alerts[0].ReductionStrategies)
			assert.Equal(t, scanBeforeYouBuy, alerts[0].ReductionStrategies[len(alerts[0].ReductionStrategies)-1])
		})
	}
}

func TestNoAlertsBelowThresholds(t *testing.T) {
	t.Parallel()
	store := newTestStore(t)
	reports := &stubReports{report: weeklyReport(69.9)}
	engine := newTestEngine(t, reports, stubLocator{}, store.Alerts, DefaultThresholds())

	alerts, err := engine.CheckAndCreateAlerts(context.Background(), "u1")
	require.NoError(t, err)
	assert.Empty(t, alerts)
	assert.Equal(t, exposure.PeriodWeekly, reports.lastReq.PeriodType, "alerts are always evaluated on a weekly report")

	stored, err := store.Alerts.ListAlerts(context.Background(), "u1", false, 50)
	require.NoError(t, err)
	assert.Empty(t, stored)
}

func TestHighEDCTypeAlerts(t *testing.T) {
	t.Parallel()
	report := weeklyReport(10)
	report.TotalExposure = 50
	report.ExposureByType = map[string]float64{"bpa": 40, "phthalate": 10}
	report.TopSources = []datastore.TopSource{
		{ProductName: "Tin Can", ExposureContribution: 15, EDCTypes: []string{"bpa"}},
		{ProductName: "Perfume", ExposureContribution: 14, EDCTypes: []string{"phthalate"}},
		{ProductName: "Bottle", ExposureContribution: 13, EDCTypes: []string{"bpa", "phthalate"}},
		{ProductName: "Soap", ExposureContribution: 8},
	}
	store := newTestStore(t)
	engine := newTestEngine(t, &stubReports{report: report}, stubLocator{}, store.Alerts, DefaultThresholds())

	alerts, err := engine.CheckAndCreateAlerts(context.Background(), "u1")
	require.NoError(t, err)
	require.Len(t, alerts, 1, "bpa is 80 percent, phthalate only 20")

	alert := alerts[0]
	assert.Equal(t, string(AlertHighEDCType), alert.AlertType)
	assert.Equal(t, "bpa", alert.Subject)
	assert.Equal(t, "HIGH EXPOSURE: BPA", alert.Title)
	assert.Contains(t, alert.Message, "80%")
	assert.Equal(t, "BPA Reduction Plan:", alert.ReductionStrategies[0])
	assert.Len(t, alert.ReductionStrategies, 6)
	require.Len(t, alert.PrimarySources, 2)
	assert.Equal(t, "Tin Can", alert.PrimarySources[0].ProductName)
	assert.Equal(t, "Bottle", alert.PrimarySources[1].ProductName)
}

func TestHighEDCTypeFallsBackToTopSources(t *testing.T) {
	t.Parallel()
	report := weeklyReport(10)
	report.TotalExposure = 10
	report.ExposureByType = map[string]float64{"triclosan": 5}
	report.TopSources = []datastore.TopSource{
		{ProductName: "A", ExposureContribution: 3},
		{ProductName: "B", ExposureContribution: 3},
		{ProductName: "C", ExposureContribution: 2},
		{ProductName: "D", ExposureContribution: 2},
	}
	thresholds := DefaultThresholds()
	thresholds.CriticalSourcePercent = 100
	store := newTestStore(t)
	engine := newTestEngine(t, &stubReports{report: report}, stubLocator{}, store.Alerts, thresholds)

	alerts, err := engine.CheckAndCreateAlerts(context.Background(), "u1")
	require.NoError(t, err)
	require.Len(t, alerts, 1)
	assert.Equal(t, []string{"Focus on reducing triclosan exposure by choosing certified organic and EDC-free products."}, []string(alerts[0].ReductionStrategies))
	assert.Len(t, alerts[0].PrimarySources, 3)
}

func TestTrendAlert(t *testing.T) {
	t.Parallel()

	trend := func(totals ...float64) []datastore.TrendPoint {
		out := make([]datastore.TrendPoint, len(totals))
		for i, v := range totals {
			out[i].TotalExposure = v
		}
		return out
	}

	tests := []struct {
		name  string
		total float64
		trend []datastore.TrendPoint
		want  bool
	}{
		{"increase above threshold", 25, trend(5, 20), true},
		{"exactly twenty percent", 24, trend(5, 20), false},
		{"exactly twenty percent of a fractional total", 0.84, trend(5, 0.70), false},
		{"previous week empty", 25, trend(5, 0), false},
		{"single trend point", 100, trend(20), false},
		{"decrease", 10, trend(5, 20), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			report := weeklyReport(10)
			report.TotalExposure = tt.total
			report.Trend = tt.trend
			store := newTestStore(t)
			engine := newTestEngine(t, &stubReports{report: report}, stubLocator{}, store.Alerts, DefaultThresholds())

			alerts, err := engine.CheckAndCreateAlerts(context.Background(), "u1")
			require.NoError(t, err)
			if !tt.want {
				assert.Empty(t, alerts)
				return
			}
			require.Len(t, alerts, 1)
			assert.Equal(t, string(AlertTrendIncreasing), alerts[0].AlertType)
			assert.Contains(t, alerts[0].Message, "increased by 25%")
			assert.Equal(t, "Your exposure increased 25% this week. Review products you started using recently.", alerts[0].ReductionStrategies[0])
		})
	}
}

func TestTrendAlertAgreesWithRecommendations(t *testing.T) {
	t.Parallel()
	engine := &Engine{thresholds: DefaultThresholds()}

	for prevCents := 1; prevCents <= 2000; prevCents += 7 {
		previous := float64(prevCents) / 100
		for _, total := range []float64{previous * 1.2, float64(prevCents*12/10) / 100, float64(prevCents*12/10+1) / 100} {
			report := weeklyReport(10)
			report.TotalExposure = total
			report.Trend = []datastore.TrendPoint{{TotalExposure: 5}, {TotalExposure: previous}}

			_, fired := engine.detectTrend(report)
			series := []datastore.TrendPoint{{TotalExposure: previous}, {TotalExposure: total}}
			assert.Equal(t, exposure.TrendIncreasing(series), fired, "previous %.2f total %.2f", previous, total)
		}
	}
}

func TestCriticalSourceAlert(t *testing.T) {
	t.Parallel()
	report := weeklyReport(10)
	report.TotalExposure = 5
	report.TopSources = []datastore.TopSource{
		{ProductName: "Air Freshener", ExposureContribution: 2},
		{ProductName: "Candle", ExposureContribution: 1},
	}
	store := newTestStore(t)
	engine := newTestEngine(t, &stubReports{report: report}, stubLocator{}, store.Alerts, DefaultThresholds())

	alerts, err := engine.CheckAndCreateAlerts(context.Background(), "u1")
	require.NoError(t, err)
	require.Len(t, alerts, 1)

	alert := alerts[0]
	assert.Equal(t, string(AlertCriticalSource), alert.AlertType)
	assert.Equal(t, "Air Freshener", alert.Subject)
	assert.Equal(t, "CRITICAL SOURCE: Air Freshener", alert.Title)
	assert.Contains(t, alert.Message, "40%")
	require.Len(t, alert.PrimarySources, 1)
	assert.Equal(t, "Air Freshener", alert.PrimarySources[0].ProductName)
	assert.Equal(t, "IMMEDIATE ACTION REQUIRED:", alert.ReductionStrategies[0])
}

func TestAllDetectorsInOrder(t *testing.T) {
	t.Parallel()
	report := weeklyReport(120)
	report.TotalExposure = 60
	report.Trend = []datastore.TrendPoint{{TotalExposure: 30}, {TotalExposure: 40}}
	report.ExposureByType = map[string]float64{"phthalate": 20, "bpa": 30, "paraben": 1}
	report.ExposureByCategory = map[string]float64{"cosmetic": 40, "food": 20}
	report.TopSources = []datastore.TopSource{
		{ProductName: "Nail Polish", ExposureContribution: 30, EDCTypes: []string{"phthalate"}},
		{ProductName: "Tin Can", ExposureContribution: 20, EDCTypes: []string{"bpa"}},
	}
	store := newTestStore(t)
	engine := newTestEngine(t, &stubReports{report: report}, stubLocator{id: 42, found: true}, store.Alerts, DefaultThresholds())

	alerts, err := engine.CheckAndCreateAlerts(context.Background(), "u1")
	require.NoError(t, err)

	assert.Equal(t, []string{
		string(AlertWeeklyLimitExceeded),
		string(AlertTrendIncreasing),
		string(AlertHighEDCType),
		string(AlertHighEDCType),
		string(AlertCriticalSource),
	}, alertTypes(alerts))
	assert.Equal(t, "bpa", alerts[2].Subject)
	assert.Equal(t, "phthalate", alerts[3].Subject)
	for _, a := range alerts {
		assert.Equal(t, uint(42), a.ReportID)
		assert.Equal(t, baseTime, a.CreatedAt.UTC())
		assert.False(t, a.Sent)
		assert.False(t, a.Acknowledged)
	}

	general := alerts[0].ReductionStrategies
	assert.Contains(t, general[0], "clean beauty")
	assert.Contains(t, general[1], "food packaging")
	assert.Contains(t, general[2], "Eliminate BPA")
	assert.Contains(t, general[3], "Reduce phthalates")
	assert.Contains(t, general[4], "'Nail Polish'")
	assert.Equal(t, scanBeforeYouBuy, general[5])
}

func TestAlertsLinkZeroReportWhenNoSnapshot(t *testing.T) {
	t.Parallel()
	store := newTestStore(t)
	engine := newTestEngine(t, &stubReports{report: weeklyReport(150)}, stubLocator{}, store.Alerts, DefaultThresholds())

	alerts, err := engine.CheckAndCreateAlerts(context.Background(), "u1")
	require.NoError(t, err)
	require.Len(t, alerts, 1)
	assert.Zero(t, alerts[0].ReportID)
}

func TestCheckPropagatesReportError(t *testing.T) {
	t.Parallel()
	reportErr := errors.NewStd("scan store unavailable")
	store := newTestStore(t)
	engine := newTestEngine(t, &stubReports{err: reportErr}, stubLocator{}, store.Alerts, DefaultThresholds())

	_, err := engine.CheckAndCreateAlerts(context.Background(), "u1")
	require.ErrorIs(t, err, reportErr)

	_, err = engine.CheckAndCreateAlerts(context.Background(), "")
	assert.True(t, errors.IsValidation(err))
}

func TestRepeatedChecksWithoutCooldownDuplicate(t *testing.T) {
	t.Parallel()
	store := newTestStore(t)
	engine := newTestEngine(t, &stubReports{report: weeklyReport(120)}, stubLocator{}, store.Alerts, DefaultThresholds())
	ctx := context.Background()

	for range 3 {
		_, err := engine.CheckAndCreateAlerts(ctx, "u1")
		require.NoError(t, err)
	}

	stored, err := store.Alerts.ListAlerts(ctx, "u1", false, 50)
	require.NoError(t, err)
	assert.Len(t, stored, 3)
}

func TestCooldownSuppressesRepeats(t *testing.T) {
	t.Parallel()
	report := weeklyReport(120)
	report.TotalExposure = 60
	report.ExposureByType = map[string]float64{"bpa": 30}
	store := newTestStore(t)
	clock := &testClock{now: baseTime}
	thresholds := DefaultThresholds()
	thresholds.Cooldown = 24 * time.Hour

	reg := prometheus.NewRegistry()
	m, err := metrics.NewAlertMetrics(reg)
	require.NoError(t, err)

	engine := newTestEngine(t, &stubReports{report: report}, stubLocator{}, store.Alerts, thresholds,
		WithClock(clock.Now), WithMetrics(m))
	ctx := context.Background()

	first, err := engine.CheckAndCreateAlerts(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, first, 2)

	clock.Advance(time.Hour)
	second, err := engine.CheckAndCreateAlerts(ctx, "u1")
	require.NoError(t, err)
	assert.Empty(t, second)
	assert.InDelta(t, 1, testutil.ToFloat64(m.AlertsSuppressed.WithLabelValues(string(AlertHighEDCType))), 0)

	// a new subject is not covered by the cooldown of another
	report.ExposureByType = map[string]float64{"bpa": 30, "paraben": 29}
	third, err := engine.CheckAndCreateAlerts(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, third, 1)
	assert.Equal(t, "paraben", third[0].Subject)

	clock.Advance(25 * time.Hour)
	fourth, err := engine.CheckAndCreateAlerts(ctx, "u1")
	require.NoError(t, err)
	assert.Len(t, fourth, 3, "cooldown expired for every condition")

	assert.InDelta(t, 4, testutil.ToFloat64(m.AlertsCreated.WithLabelValues(string(AlertHighEDCType), string(SeverityWarning))), 0)
	assert.InDelta(t, 4, testutil.ToFloat64(m.Operations.WithLabelValues(metrics.OpCheck, metrics.ResultSuccess)), 0)
}

func TestThresholdsValidate(t *testing.T) {
	t.Parallel()
	require.NoError(t, DefaultThresholds().Validate())

	bad := Thresholds{
		WarningPercent:        100,
		CriticalPercent:       90,
		TrendIncreasePercent:  -1,
		HighEDCPercent:        0,
		CriticalSourcePercent: 120,
		Cooldown:              -time.Second,
	}
	err := bad.Validate()
	require.Error(t, err)
	assert.True(t, errors.IsCategory(err, errors.CategoryConfiguration))
	for _, want := range []string{"warning percent", "trend increase", "high EDC", "critical source", "cooldown"} {
		assert.Contains(t, err.Error(), want)
	}

	_, err = NewEngine(nil, nil, nil, bad)
	assert.Error(t, err)
}
