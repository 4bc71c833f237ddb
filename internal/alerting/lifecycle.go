package alerting

import (
	"context"
	"fmt"

	"github.com/edctrack/exposure/internal/datastore"
	"github.com/edctrack/exposure/internal/errors"
	"github.com/edctrack/exposure/internal/logger"
	"github.com/edctrack/exposure/internal/observability/metrics"
)

// Bounds for GetUserAlerts.
const (
	MinAlertLimit     = 1
	MaxAlertLimit     = 50
	DefaultAlertLimit = 10
)

// GetUserAlerts returns up to limit alerts for the user, newest first.
func (e *Engine) GetUserAlerts(ctx context.Context, userID string, unacknowledgedOnly bool, limit int) ([]datastore.ExposureAlert, error) {
	if userID == "" {
		return nil, errors.ValidationError("user_id", "user_id is required")
	}
	if limit < MinAlertLimit || limit > MaxAlertLimit {
		return nil, errors.ValidationError("limit", fmt.Sprintf("limit must be between %d and %d", MinAlertLimit, MaxAlertLimit))
	}

	alerts, err := e.alerts.ListAlerts(ctx, userID, unacknowledgedOnly, limit)
	e.metrics.RecordOperation(metrics.OpList, err)
	return alerts, err
}

// AcknowledgeAlert marks the alert acknowledged. Acknowledging an already
// acknowledged alert succeeds and keeps the original timestamp. A missing
// alert yields false and a not-found error.
func (e *Engine) AcknowledgeAlert(ctx context.Context, alertID uint) (bool, error) {
	alert, err := e.alerts.Acknowledge(ctx, alertID, e.now())
	e.metrics.RecordOperation(metrics.OpAcknowledge, err)
	if err != nil {
		e.logLifecycleFailure("acknowledge", alertID, err)
		return false, err
	}
	e.log.Info("alert acknowledged",
		logger.Uint64("alert_id", uint64(alertID)),
		logger.String("user_id", alert.UserID))
	return true, nil
}

// MarkAlertSent marks the alert as delivered, with the same semantics as
// AcknowledgeAlert.
func (e *Engine) MarkAlertSent(ctx context.Context, alertID uint) (bool, error) {
	alert, err := e.alerts.MarkSent(ctx, alertID, e.now())
	e.metrics.RecordOperation(metrics.OpMarkSent, err)
	if err != nil {
		e.logLifecycleFailure("mark_sent", alertID, err)
		return false, err
	}
	e.log.Info("alert marked as sent",
		logger.Uint64("alert_id", uint64(alertID)),
		logger.String("user_id", alert.UserID))
	return true, nil
}

func (e *Engine) logLifecycleFailure(operation string, alertID uint, err error) {
	if errors.IsNotFound(err) {
		e.log.Warn("alert not found",
			logger.String("operation", operation),
			logger.Uint64("alert_id", uint64(alertID)))
		return
	}
	e.log.Error("alert update failed",
		logger.String("operation", operation),
		logger.Uint64("alert_id", uint64(alertID)),
		logger.Error(err))
}
