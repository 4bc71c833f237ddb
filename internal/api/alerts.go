package api

import (
	"net/http"

	"github.com/edctrack/exposure/internal/datastore"
	"github.com/edctrack/exposure/internal/logger"
	"github.com/labstack/echo/v4"
)

// AlertListResponse lists a user's alerts, newest first.
type AlertListResponse struct {
	Success    bool                      `json:"success"`
	UserID     string                    `json:"user_id"`
	AlertCount int                       `json:"alert_count"`
	Alerts     []datastore.ExposureAlert `json:"alerts"`
}

// AlertCheckResponse lists the alerts created by one check.
type AlertCheckResponse struct {
	Success       bool                       `json:"success"`
	UserID        string                     `json:"user_id"`
	NewAlertCount int                        `json:"new_alert_count"`
	Alerts        []*datastore.ExposureAlert `json:"alerts"`
}

// AlertActionResponse confirms a lifecycle transition.
type AlertActionResponse struct {
	Success bool   `json:"success"`
	AlertID uint   `json:"alert_id"`
	Message string `json:"message"`
}

// GetAlerts handles GET /alerts.
func (c *Controller) GetAlerts(ctx echo.Context) error {
	unackOnly, err := boolParam(ctx, "unacknowledged_only")
	if err != nil {
		return c.HandleError(ctx, err, "Invalid unacknowledged_only")
	}
	limit, err := intParam(ctx, "limit", defaultAlertLimit)
	if err != nil {
		return c.HandleError(ctx, err, "Invalid limit")
	}

	userID := ctx.QueryParam("user_id")
	alerts, err := c.alerts.GetUserAlerts(ctx.Request().Context(), userID, unackOnly, limit)
	if err != nil {
		return c.HandleError(ctx, err, "Failed to get exposure alerts")
	}
	if alerts == nil {
		alerts = []datastore.ExposureAlert{}
	}

	return ctx.JSON(http.StatusOK, AlertListResponse{
		Success:    true,
		UserID:     userID,
		AlertCount: len(alerts),
		Alerts:     alerts,
	})
}

// CheckAlerts handles POST /alerts/check: evaluates a fresh weekly report and
// persists any triggered alerts. Alerts saved before a store failure are
// still returned alongside the error.
func (c *Controller) CheckAlerts(ctx echo.Context) error {
	userID := ctx.QueryParam("user_id")
	created, err := c.alerts.CheckAndCreateAlerts(ctx.Request().Context(), userID)
	if err != nil {
		if len(created) > 0 {
			c.log.Warn("alert check failed after partial creation",
				logger.String("user_id", userID),
				logger.Int("created", len(created)))
		}
		return c.HandleError(ctx, err, "Failed to check exposure alerts")
	}
	if created == nil {
		created = []*datastore.ExposureAlert{}
	}

	c.log.Info("checked exposure alerts",
		logger.String("user_id", userID),
		logger.Int("created", len(created)))

	return ctx.JSON(http.StatusOK, AlertCheckResponse{
		Success:       true,
		UserID:        userID,
		NewAlertCount: len(created),
		Alerts:        created,
	})
}

// AcknowledgeAlert handles POST /alerts/:id/acknowledge.
func (c *Controller) AcknowledgeAlert(ctx echo.Context) error {
	id, err := alertIDParam(ctx)
	if err != nil {
		return c.HandleError(ctx, err, "Invalid alert id")
	}

	if _, err := c.alerts.AcknowledgeAlert(ctx.Request().Context(), id); err != nil {
		return c.HandleError(ctx, err, "Failed to acknowledge alert")
	}

	return ctx.JSON(http.StatusOK, AlertActionResponse{
		Success: true,
		AlertID: id,
		Message: "Alert acknowledged successfully",
	})
}

// MarkAlertSent handles POST /alerts/:id/mark-sent, called by whatever
// delivers the alert.
func (c *Controller) MarkAlertSent(ctx echo.Context) error {
	id, err := alertIDParam(ctx)
	if err != nil {
		return c.HandleError(ctx, err, "Invalid alert id")
	}

	if _, err := c.alerts.MarkAlertSent(ctx.Request().Context(), id); err != nil {
		return c.HandleError(ctx, err, "Failed to mark alert as sent")
	}

	return ctx.JSON(http.StatusOK, AlertActionResponse{
		Success: true,
		AlertID: id,
		Message: "Alert marked as sent successfully",
	})
}
