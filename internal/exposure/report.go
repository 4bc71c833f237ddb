package exposure

import (
	"context"
	"time"

	"gorm.io/datatypes"

	"github.com/edctrack/exposure/internal/datastore"
	"github.com/edctrack/exposure/internal/errors"
	"github.com/edctrack/exposure/internal/logger"
)

// Report is a generated exposure report. ID is the id of its persisted
// snapshot.
type Report struct {
	ID           uint `json:"id" yaml:"id"`
	ExposureData `yaml:",inline"`

	PeriodType      PeriodType             `json:"period_type" yaml:"period_type"`
	ExposureLimit   float64                `json:"exposure_limit" yaml:"exposure_limit"`
	PercentOfLimit  float64                `json:"percent_of_limit" yaml:"percent_of_limit"`
	Status          Status                 `json:"status" yaml:"status"`
	Trend           []datastore.TrendPoint `json:"trend" yaml:"trend"`
	Recommendations []string               `json:"recommendations" yaml:"recommendations"`
	GeneratedAt     time.Time              `json:"generated_at" yaml:"generated_at"`
}

// ReportRequest selects the report window. A zero End means now; a zero
// Start is derived from PeriodType.
type ReportRequest struct {
	UserID     string
	PeriodType PeriodType
	Start      time.Time
	End        time.Time
}

// GenerateReport aggregates the primary window, compares it to the limit,
// computes the trailing trend and recommendations, then persists the
// snapshot. Nothing is written if any earlier step fails.
func (e *Engine) GenerateReport(ctx context.Context, req ReportRequest) (*Report, error) {
	if err := validateUser(req.UserID); err != nil {
		return nil, err
	}
	period, err := ParsePeriodType(string(req.PeriodType))
	if err != nil {
		return nil, err
	}

	end := req.End
	if end.IsZero() {
		end = e.now()
	}
	start := req.Start
	if start.IsZero() {
		start = period.DefaultStart(end)
	}
	if err := validateWindow(start, end); err != nil {
		return nil, err
	}
	if e.reports == nil {
		return nil, errors.Newf("exposure engine has no report store").
			Component("exposure").
			Category(errors.CategoryConfiguration).
			Build()
	}

	data, err := e.ComputeExposure(ctx, req.UserID, start, end)
	if err != nil {
		return nil, err
	}

	limit, percent, status := e.CompareToLimit(data.TotalExposure, period)

	trend, err := e.computeTrend(ctx, req.UserID, period, start, e.policy.TrendPeriods())
	if err != nil {
		return nil, err
	}

	report := &Report{
		ExposureData:    *data,
		PeriodType:      period,
		ExposureLimit:   limit,
		PercentOfLimit:  percent,
		Status:          status,
		Trend:           trend,
		Recommendations: Recommendations(data, status, percent, trend),
	}

	snapshot := report.snapshot()
	if err := e.reports.SaveReport(ctx, snapshot); err != nil {
		return nil, err
	}
	report.ID = snapshot.ID
	report.GeneratedAt = snapshot.CreatedAt
	if report.GeneratedAt.IsZero() {
		report.GeneratedAt = e.now()
	}

	e.metrics.RecordReport(string(period), string(status))
	e.log.Info("exposure report generated",
		logger.String("user_id", req.UserID),
		logger.String("period_type", string(period)),
		logger.String("status", string(status)),
		logger.Float64("percent_of_limit", percent),
		logger.Uint64("report_id", uint64(report.ID)))

	return report, nil
}

func (r *Report) snapshot() *datastore.ExposureReport {
	return &datastore.ExposureReport{
		UserID:             r.UserID,
		PeriodType:         string(r.PeriodType),
		PeriodStart:        r.PeriodStart,
		PeriodEnd:          r.PeriodEnd,
		TotalExposure:      r.TotalExposure,
		ExposureLimit:      r.ExposureLimit,
		PercentOfLimit:     r.PercentOfLimit,
		Status:             string(r.Status),
		ScanCount:          r.ScanCount,
		ExposureByType:     datastore.NewExposureMap(r.ExposureByType),
		ExposureByCategory: datastore.NewExposureMap(r.ExposureByCategory),
		TopSources:         datatypes.JSONSlice[datastore.TopSource](r.TopSources),
		Trend:              datatypes.JSONSlice[datastore.TrendPoint](r.Trend),
		Recommendations:    datatypes.JSONSlice[string](r.Recommendations),
	}
}

// ReportFromSnapshot rebuilds a report from a persisted snapshot.
func ReportFromSnapshot(s *datastore.ExposureReport) *Report {
	return &Report{
		ID: s.ID,
		ExposureData: ExposureData{
			UserID:             s.UserID,
			PeriodStart:        s.PeriodStart,
			PeriodEnd:          s.PeriodEnd,
			TotalExposure:      s.TotalExposure,
			ExposureByType:     s.ExposureByType.Data(),
			ExposureByCategory: s.ExposureByCategory.Data(),
			TopSources:         []datastore.TopSource(s.TopSources),
			ScanCount:          s.ScanCount,
		},
		PeriodType:      PeriodType(s.PeriodType),
		ExposureLimit:   s.ExposureLimit,
		PercentOfLimit:  s.PercentOfLimit,
		Status:          Status(s.Status),
		Trend:           []datastore.TrendPoint(s.Trend),
		Recommendations: []string(s.Recommendations),
		GeneratedAt:     s.CreatedAt,
	}
}
