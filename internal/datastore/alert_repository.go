package datastore

import (
	"context"
	"time"

	"github.com/edctrack/exposure/internal/errors"
	"gorm.io/gorm"
)

// AlertRepository stores exposure alerts and their lifecycle flags.
type AlertRepository interface {
	SaveAlert(ctx context.Context, alert *ExposureAlert) error
	GetAlert(ctx context.Context, id uint) (*ExposureAlert, error)
	// ListAlerts returns the user's alerts newest first.
	ListAlerts(ctx context.Context, userID string, unacknowledgedOnly bool, limit int) ([]ExposureAlert, error)
	// Acknowledge sets the acknowledged flag and timestamp once. Repeated
	// calls leave the first timestamp in place.
	Acknowledge(ctx context.Context, id uint, at time.Time) (*ExposureAlert, error)
	// MarkSent sets the sent flag and timestamp once.
	MarkSent(ctx context.Context, id uint, at time.Time) (*ExposureAlert, error)
	// LatestAlert returns the newest alert of the given type and subject
	// created at or after since.
	LatestAlert(ctx context.Context, userID, alertType, subject string, since time.Time) (*ExposureAlert, bool, error)
}

type alertRepository struct {
	db *gorm.DB
}

// NewAlertRepository creates a new AlertRepository.
func NewAlertRepository(db *gorm.DB) AlertRepository {
	return &alertRepository{db: db}
}

func (r *alertRepository) SaveAlert(ctx context.Context, alert *ExposureAlert) error {
	if alert == nil || alert.UserID == "" {
		return validationError("alert must have a user id", "user_id", "")
	}
	if !alert.CreatedAt.IsZero() {
		alert.CreatedAt = alert.CreatedAt.UTC()
	}

	if err := r.db.WithContext(ctx).Create(alert).Error; err != nil {
		return dbError(err, "save_alert", errors.PriorityHigh, "alert_type", alert.AlertType)
	}
	return nil
}

func (r *alertRepository) GetAlert(ctx context.Context, id uint) (*ExposureAlert, error) {
	return r.getAlert(r.db.WithContext(ctx), id)
}

func (r *alertRepository) getAlert(db *gorm.DB, id uint) (*ExposureAlert, error) {
	var alert ExposureAlert
	err := db.First(&alert, id).Error
	if isRecordNotFound(err) {
		return nil, notFoundError(ErrAlertNotFound, "alert", id)
	}
	if err != nil {
		return nil, dbError(err, "get_alert", errors.PriorityMedium, "alert_id", id)
	}
	return &alert, nil
}

func (r *alertRepository) ListAlerts(ctx context.Context, userID string, unacknowledgedOnly bool, limit int) ([]ExposureAlert, error) {
	if limit <= 0 {
		return nil, validationError("limit must be positive", "limit", limit)
	}

	query := r.db.WithContext(ctx).Where("user_id = ?", userID)
	if unacknowledgedOnly {
		query = query.Where("acknowledged = ?", false)
	}

	var alerts []ExposureAlert
	if err := query.Order("created_at DESC, id DESC").Limit(limit).Find(&alerts).Error; err != nil {
		return nil, dbError(err, "list_alerts", errors.PriorityMedium)
	}
	return alerts, nil
}

func (r *alertRepository) Acknowledge(ctx context.Context, id uint, at time.Time) (*ExposureAlert, error) {
	return r.setFlagOnce(ctx, id, "acknowledged", "acknowledged_at", at)
}

func (r *alertRepository) MarkSent(ctx context.Context, id uint, at time.Time) (*ExposureAlert, error) {
	return r.setFlagOnce(ctx, id, "sent", "sent_at", at)
}

// setFlagOnce flips a boolean column to true together with its timestamp,
// guarded so a concurrent or repeated call cannot overwrite the timestamp.
func (r *alertRepository) setFlagOnce(ctx context.Context, id uint, flagColumn, timeColumn string, at time.Time) (*ExposureAlert, error) {
	var alert *ExposureAlert
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if _, err := r.getAlert(tx, id); err != nil {
			return err
		}

		err := tx.Model(&ExposureAlert{}).
			Where("id = ? AND "+flagColumn+" = ?", id, false).
			Updates(map[string]any{flagColumn: true, timeColumn: at.UTC()}).Error
		if err != nil {
			return dbError(err, "set_"+flagColumn, errors.PriorityMedium, "alert_id", id)
		}

		alert, err = r.getAlert(tx, id)
		return err
	})
	if err != nil {
		return nil, err
	}
	return alert, nil
}

func (r *alertRepository) LatestAlert(ctx context.Context, userID, alertType, subject string, since time.Time) (*ExposureAlert, bool, error) {
	var alerts []ExposureAlert
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND alert_type = ? AND subject = ? AND created_at >= ?", userID, alertType, subject, since.UTC()).
		Order("created_at DESC, id DESC").
		Limit(1).
		Find(&alerts).Error
	if err != nil {
		return nil, false, dbError(err, "latest_alert", errors.PriorityMedium, "alert_type", alertType)
	}
	if len(alerts) == 0 {
		return nil, false, nil
	}
	return &alerts[0], true, nil
}
