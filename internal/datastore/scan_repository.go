package datastore

import (
	"context"
	"time"

	"github.com/edctrack/exposure/internal/errors"
	"github.com/edctrack/exposure/internal/logger"
	"gorm.io/gorm"
)

// ScanRepository reads and writes product scans.
type ScanRepository interface {
	// FetchScans returns the user's scans with start <= scanned_at <= end, newest first.
	FetchScans(ctx context.Context, userID string, start, end time.Time) ([]ProductScan, error)
	SaveScan(ctx context.Context, scan *ProductScan) error
	// SaveScans inserts all scans in one transaction.
	SaveScans(ctx context.Context, scans []ProductScan) error
}

type scanRepository struct {
	db *gorm.DB
}

// NewScanRepository creates a new ScanRepository.
func NewScanRepository(db *gorm.DB) ScanRepository {
	return &scanRepository{db: db}
}

func (r *scanRepository) FetchScans(ctx context.Context, userID string, start, end time.Time) ([]ProductScan, error) {
	if userID == "" {
		return nil, validationError("user id must not be empty", "user_id", userID)
	}
	if start.After(end) {
		return nil, validationError("period start must not be after period end", "period_start", start)
	}

	var scans []ProductScan
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND scanned_at >= ? AND scanned_at <= ?", userID, start.UTC(), end.UTC()).
		Order("scanned_at DESC, id DESC").
		Find(&scans).Error
	if err != nil {
		return nil, dbError(err, "fetch_scans", errors.PriorityMedium,
			"start", start.UTC().Format(time.RFC3339), "end", end.UTC().Format(time.RFC3339))
	}

	return scans, nil
}

func (r *scanRepository) SaveScan(ctx context.Context, scan *ProductScan) error {
	if err := ValidateScan(scan); err != nil {
		return err
	}
	scan.ScannedAt = scan.ScannedAt.UTC()

	if err := r.db.WithContext(ctx).Create(scan).Error; err != nil {
		return dbError(err, "save_scan", errors.PriorityMedium, "product", scan.ProductName)
	}
	return nil
}

func (r *scanRepository) SaveScans(ctx context.Context, scans []ProductScan) error {
	if len(scans) == 0 {
		return nil
	}
	for i := range scans {
		if err := ValidateScan(&scans[i]); err != nil {
			return err
		}
		scans[i].ScannedAt = scans[i].ScannedAt.UTC()
	}

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return tx.CreateInBatches(scans, 100).Error
	})
	if err != nil {
		return dbError(err, "save_scans", errors.PriorityMedium, "count", len(scans))
	}

	getLogger().Debug("scans imported", logger.Int("count", len(scans)))
	return nil
}

// ValidateScan checks the invariants of a scan before it is stored.
func ValidateScan(scan *ProductScan) error {
	if scan == nil {
		return validationError("scan must not be nil", "scan", nil)
	}
	if scan.UserID == "" {
		return validationError("user id must not be empty", "user_id", scan.UserID)
	}
	if scan.ScannedAt.IsZero() {
		return validationError("scan timestamp must be set", "scanned_at", scan.ScannedAt)
	}
	if s := scan.OverallScore; s != nil && (*s < 0 || *s > 100) {
		return validationError("overall score must be between 0 and 100", "overall_score", *s)
	}
	for _, chem := range scan.FlaggedChemicals {
		if c := chem.Confidence; c != nil && (*c < 0 || *c > 1) {
			return validationError("chemical confidence must be between 0 and 1", "confidence", *c)
		}
		if rs := chem.RiskScore; rs != nil && *rs < 0 {
			return validationError("chemical risk score must not be negative", "risk_score", *rs)
		}
	}
	return nil
}
