package api

import (
	"net/http"

	"github.com/edctrack/exposure/internal/datastore"
	"github.com/edctrack/exposure/internal/exposure"
	"github.com/edctrack/exposure/internal/logger"
	"github.com/labstack/echo/v4"
)

// ReportResponse wraps a generated report.
type ReportResponse struct {
	Success bool             `json:"success"`
	Report  *exposure.Report `json:"report"`
}

// TrendResponse lists trailing window aggregates, oldest first.
type TrendResponse struct {
	Success    bool                   `json:"success"`
	UserID     string                 `json:"user_id"`
	PeriodType exposure.PeriodType    `json:"period_type"`
	NumPeriods int                    `json:"num_periods"`
	Trends     []datastore.TrendPoint `json:"trends"`
}

// CurrentExposureResponse wraps a rolling-window exposure.
type CurrentExposureResponse struct {
	Success bool `json:"success"`
	*exposure.CurrentExposure
}

// VisualizationResponse wraps chart-ready report series.
type VisualizationResponse struct {
	Success           bool                    `json:"success"`
	UserID            string                  `json:"user_id"`
	PeriodType        exposure.PeriodType     `json:"period_type"`
	ReportID          uint                    `json:"report_id"`
	VisualizationData *exposure.Visualization `json:"visualization_data"`
}

// GetReport handles GET /report: generates and persists a report for the
// requested window.
func (c *Controller) GetReport(ctx echo.Context) error {
	period, err := periodParam(ctx)
	if err != nil {
		return c.HandleError(ctx, err, "Invalid period_type")
	}
	start, err := timeParam(ctx, "period_start")
	if err != nil {
		return c.HandleError(ctx, err, "Invalid period_start")
	}
	end, err := timeParam(ctx, "period_end")
	if err != nil {
		return c.HandleError(ctx, err, "Invalid period_end")
	}

	report, err := c.exposure.GenerateReport(ctx.Request().Context(), exposure.ReportRequest{
		UserID:     ctx.QueryParam("user_id"),
		PeriodType: period,
		Start:      start,
		End:        end,
	})
	if err != nil {
		return c.HandleError(ctx, err, "Failed to generate exposure report")
	}

	c.log.Info("generated exposure report",
		logger.String("user_id", report.UserID),
		logger.Uint64("report_id", uint64(report.ID)))

	return ctx.JSON(http.StatusOK, ReportResponse{Success: true, Report: report})
}

// GetTrends handles GET /trends: trailing windows ending now.
func (c *Controller) GetTrends(ctx echo.Context) error {
	period, err := periodParam(ctx)
	if err != nil {
		return c.HandleError(ctx, err, "Invalid period_type")
	}
	numPeriods, err := intParam(ctx, "num_periods", exposure.DefaultTrendPeriods)
	if err != nil {
		return c.HandleError(ctx, err, "Invalid num_periods")
	}

	userID := ctx.QueryParam("user_id")
	trends, err := c.exposure.ComputeTrend(ctx.Request().Context(), userID, period, c.exposure.Now(), numPeriods)
	if err != nil {
		return c.HandleError(ctx, err, "Failed to get exposure trends")
	}

	return ctx.JSON(http.StatusOK, TrendResponse{
		Success:    true,
		UserID:     userID,
		PeriodType: period,
		NumPeriods: numPeriods,
		Trends:     trends,
	})
}

// GetCurrentExposure handles GET /current: exposure over the last N days.
// Nothing is persisted.
func (c *Controller) GetCurrentExposure(ctx echo.Context) error {
	days, err := intParam(ctx, "days", defaultDays)
	if err != nil {
		return c.HandleError(ctx, err, "Invalid days")
	}

	current, err := c.exposure.CurrentExposure(ctx.Request().Context(), ctx.QueryParam("user_id"), days)
	if err != nil {
		return c.HandleError(ctx, err, "Failed to get current exposure")
	}

	return ctx.JSON(http.StatusOK, CurrentExposureResponse{Success: true, CurrentExposure: current})
}

// GetVisualizationData handles GET /visualization-data: a fresh report for
// the period ending now, reshaped into chart series.
func (c *Controller) GetVisualizationData(ctx echo.Context) error {
	period, err := periodParam(ctx)
	if err != nil {
		return c.HandleError(ctx, err, "Invalid period_type")
	}

	report, err := c.exposure.GenerateReport(ctx.Request().Context(), exposure.ReportRequest{
		UserID:     ctx.QueryParam("user_id"),
		PeriodType: period,
	})
	if err != nil {
		return c.HandleError(ctx, err, "Failed to get visualization data")
	}

	return ctx.JSON(http.StatusOK, VisualizationResponse{
		Success:           true,
		UserID:            report.UserID,
		PeriodType:        period,
		ReportID:          report.ID,
		VisualizationData: exposure.VisualizationData(report),
	})
}
