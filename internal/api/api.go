// Package api exposes the exposure and alert engines over HTTP with echo.
package api

import (
	"context"
	"net/http"
	"time"

	"github.com/edctrack/exposure/internal/datastore"
	"github.com/edctrack/exposure/internal/errors"
	"github.com/edctrack/exposure/internal/exposure"
	"github.com/edctrack/exposure/internal/logger"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

// ExposureService is the part of the exposure engine served by the API.
type ExposureService interface {
	GenerateReport(ctx context.Context, req exposure.ReportRequest) (*exposure.Report, error)
	ComputeTrend(ctx context.Context, userID string, period exposure.PeriodType, anchor time.Time, numPeriods int) ([]datastore.TrendPoint, error)
	CurrentExposure(ctx context.Context, userID string, days int) (*exposure.CurrentExposure, error)
	Now() time.Time
}

// AlertService is the part of the alert engine served by the API.
type AlertService interface {
	CheckAndCreateAlerts(ctx context.Context, userID string) ([]*datastore.ExposureAlert, error)
	GetUserAlerts(ctx context.Context, userID string, unacknowledgedOnly bool, limit int) ([]datastore.ExposureAlert, error)
	AcknowledgeAlert(ctx context.Context, alertID uint) (bool, error)
	MarkAlertSent(ctx context.Context, alertID uint) (bool, error)
}

// HealthChecker reports whether a dependency is usable.
type HealthChecker interface {
	Ping(ctx context.Context) error
}

// Controller manages the API routes and handlers
type Controller struct {
	exposure ExposureService
	alerts   AlertService
	health   HealthChecker
	log      logger.Logger
}

// Option is a functional option for configuring the Controller.
type Option func(*Controller)

// WithHealthChecker makes /healthz ping the given dependency.
func WithHealthChecker(h HealthChecker) Option {
	return func(c *Controller) {
		c.health = h
	}
}

// WithLogger replaces the module logger.
func WithLogger(l logger.Logger) Option {
	return func(c *Controller) {
		c.log = l
	}
}

// NewController creates a controller for the given services.
func NewController(exposureSvc ExposureService, alertSvc AlertService, opts ...Option) *Controller {
	c := &Controller{
		exposure: exposureSvc,
		alerts:   alertSvc,
		log:      getLogger(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// RegisterRoutes mounts the exposure endpoints on g.
func (c *Controller) RegisterRoutes(g *echo.Group) {
	g.GET("/report", c.GetReport)
	g.GET("/trends", c.GetTrends)
	g.GET("/current", c.GetCurrentExposure)
	g.GET("/visualization-data", c.GetVisualizationData)

	g.GET("/alerts", c.GetAlerts)
	g.POST("/alerts/check", c.CheckAlerts)
	g.POST("/alerts/:id/acknowledge", c.AcknowledgeAlert)
	g.POST("/alerts/:id/mark-sent", c.MarkAlertSent)
}

// HealthCheck reports service health, including the store when configured.
func (c *Controller) HealthCheck(ctx echo.Context) error {
	if c.health != nil {
		if err := c.health.Ping(ctx.Request().Context()); err != nil {
			c.log.Warn("health check failed", logger.Error(err))
			return ctx.JSON(http.StatusServiceUnavailable, map[string]string{
				"status": "unavailable",
				"error":  err.Error(),
			})
		}
	}
	return ctx.JSON(http.StatusOK, map[string]string{"status": "ok"})
}

// ErrorResponse represents a standardized error response for the API
type ErrorResponse struct {
	Error         string `json:"error"`
	Message       string `json:"message"`
	Field         string `json:"field,omitempty"`
	Code          int    `json:"code"`
	CorrelationID string `json:"correlation_id"` // Unique identifier for tracking this error
}

// NewErrorResponse creates a new API error response
func NewErrorResponse(err error, message string, code int, correlationID string) *ErrorResponse {
	errorStr := message
	if err != nil {
		errorStr = err.Error()
	}
	if correlationID == "" {
		correlationID = uuid.NewString()
	}

	return &ErrorResponse{
		Error:         errorStr,
		Message:       message,
		Field:         errors.Field(err),
		Code:          code,
		CorrelationID: correlationID,
	}
}

// statusCode maps an error category to an HTTP status.
func statusCode(err error) int {
	switch {
	case errors.IsValidation(err):
		return http.StatusBadRequest
	case errors.IsNotFound(err):
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

// HandleError logs err and writes the matching error response.
func (c *Controller) HandleError(ctx echo.Context, err error, message string) error {
	code := statusCode(err)
	errorResp := NewErrorResponse(err, message, code, ctx.Response().Header().Get(echo.HeaderXRequestID))

	fields := []logger.Field{
		logger.String("correlation_id", errorResp.CorrelationID),
		logger.String("message", message),
		logger.Int("code", code),
		logger.String("path", ctx.Request().URL.Path),
		logger.String("method", ctx.Request().Method),
		logger.String("ip", ctx.RealIP()),
		logger.Error(err),
	}
	if code >= http.StatusInternalServerError {
		c.log.Error("API error", fields...)
	} else {
		c.log.Warn("API request rejected", fields...)
	}

	return ctx.JSON(code, errorResp)
}
