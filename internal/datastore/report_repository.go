package datastore

import (
	"context"

	"github.com/edctrack/exposure/internal/errors"
	"gorm.io/gorm"
)

// ReportRepository stores immutable exposure report snapshots.
type ReportRepository interface {
	SaveReport(ctx context.Context, report *ExposureReport) error
	GetReport(ctx context.Context, id uint) (*ExposureReport, error)
	// LatestReportID returns the id of the user's most recent snapshot.
	// found is false when the user has none.
	LatestReportID(ctx context.Context, userID string) (id uint, found bool, err error)
	ListReports(ctx context.Context, userID string, limit int) ([]ExposureReport, error)
}

type reportRepository struct {
	db *gorm.DB
}

// NewReportRepository creates a new ReportRepository.
func NewReportRepository(db *gorm.DB) ReportRepository {
	return &reportRepository{db: db}
}

func (r *reportRepository) SaveReport(ctx context.Context, report *ExposureReport) error {
	if report == nil || report.UserID == "" {
		return validationError("report must have a user id", "user_id", "")
	}
	if report.ID != 0 {
		return validationError("report snapshots are immutable", "id", report.ID)
	}

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return tx.Create(report).Error
	})
	if err != nil {
		return dbError(err, "save_report", errors.PriorityHigh, "period_type", report.PeriodType)
	}
	return nil
}

func (r *reportRepository) GetReport(ctx context.Context, id uint) (*ExposureReport, error) {
	var report ExposureReport
	err := r.db.WithContext(ctx).First(&report, id).Error
	if isRecordNotFound(err) {
		return nil, notFoundError(ErrReportNotFound, "report", id)
	}
	if err != nil {
		return nil, dbError(err, "get_report", errors.PriorityMedium, "report_id", id)
	}
	return &report, nil
}

func (r *reportRepository) LatestReportID(ctx context.Context, userID string) (uint, bool, error) {
	var ids []uint
	err := r.db.WithContext(ctx).Model(&ExposureReport{}).
		Where("user_id = ?", userID).
		Order("created_at DESC, id DESC").
		Limit(1).
		Pluck("id", &ids).Error
	if err != nil {
		return 0, false, dbError(err, "latest_report_id", errors.PriorityMedium)
	}
	if len(ids) == 0 {
		return 0, false, nil
	}
	return ids[0], true, nil
}

func (r *reportRepository) ListReports(ctx context.Context, userID string, limit int) ([]ExposureReport, error) {
	if limit <= 0 {
		return nil, validationError("limit must be positive", "limit", limit)
	}

	var reports []ExposureReport
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC, id DESC").
		Limit(limit).
		Find(&reports).Error
	if err != nil {
		return nil, dbError(err, "list_reports", errors.PriorityMedium)
	}
	return reports, nil
}
