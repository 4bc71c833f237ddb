package datastore

import (
	"time"

	"gorm.io/datatypes"
)

// FlaggedChemical is a chemical flagged on a scanned product. RiskScore and
// Confidence are optional; consumers default them to 0 and 1.0.
type FlaggedChemical struct {
	Name       string   `json:"name" yaml:"name"`
	EDCTypes   []string `json:"edc_types,omitempty" yaml:"edc_types"`
	RiskScore  *float64 `json:"risk_score,omitempty" yaml:"risk_score"`
	Confidence *float64 `json:"confidence,omitempty" yaml:"confidence"`
}

// ProductScan is a single product scan. Rows are written by the import path
// and read by the exposure engine; ScannedAt never changes after insert.
type ProductScan struct {
	ID               uint                                 `gorm:"primaryKey" json:"id"`
	UserID           string                               `gorm:"size:64;not null;index:idx_scans_user_time,priority:1" json:"user_id"`
	ProductName      string                               `gorm:"size:255" json:"product_name"`
	Category         string                               `gorm:"size:64" json:"category,omitempty"`
	OverallScore     *float64                             `json:"overall_score,omitempty"`
	RiskLevel        string                               `gorm:"size:32" json:"risk_level,omitempty"`
	FlaggedChemicals datatypes.JSONSlice[FlaggedChemical] `json:"flagged_chemicals,omitempty"`
	ScannedAt        time.Time                            `gorm:"not null;index:idx_scans_user_time,priority:2" json:"scanned_at"`
	CreatedAt        time.Time                            `json:"created_at"`
}

func (ProductScan) TableName() string { return "product_scans" }

// TopSource is one scan's share of a window's exposure.
type TopSource struct {
	ScanID               uint      `json:"scan_id"`
	ProductName          string    `json:"product_name"`
	Category             string    `json:"category"`
	ExposureContribution float64   `json:"exposure_contribution"`
	ScannedAt            time.Time `json:"scanned_at"`
	RiskLevel            string    `json:"risk_level,omitempty"`
	EDCTypes             []string  `json:"edc_types,omitempty"`
}

// TrendPoint is the aggregate of one trailing window.
type TrendPoint struct {
	PeriodStart   time.Time `json:"period_start"`
	PeriodEnd     time.Time `json:"period_end"`
	TotalExposure float64   `json:"total_exposure"`
	ScanCount     int       `json:"scan_count"`
}

// ExposureReport is an immutable report snapshot. Rows are inserted once and
// never updated.
type ExposureReport struct {
	ID                 uint                                   `gorm:"primaryKey" json:"id"`
	UserID             string                                 `gorm:"size:64;not null;index:idx_reports_user_created,priority:1" json:"user_id"`
	PeriodType         string                                 `gorm:"size:16;not null" json:"period_type"`
	PeriodStart        time.Time                              `gorm:"not null" json:"period_start"`
	PeriodEnd          time.Time                              `gorm:"not null" json:"period_end"`
	TotalExposure      float64                                `json:"total_exposure"`
	ExposureLimit      float64                                `json:"exposure_limit"`
	PercentOfLimit     float64                                `json:"percent_of_limit"`
	Status             string                                 `gorm:"size:32" json:"status"`
	ScanCount          int                                    `json:"scan_count"`
	ExposureByType     datatypes.JSONType[map[string]float64] `json:"exposure_by_type"`
	ExposureByCategory datatypes.JSONType[map[string]float64] `json:"exposure_by_category"`
	TopSources         datatypes.JSONSlice[TopSource]         `json:"top_sources"`
	Trend              datatypes.JSONSlice[TrendPoint]        `json:"trend"`
	Recommendations    datatypes.JSONSlice[string]            `json:"recommendations"`
	CreatedAt          time.Time                              `gorm:"index:idx_reports_user_created,priority:2" json:"created_at"`
}

func (ExposureReport) TableName() string { return "exposure_reports" }

// ExposureAlert is a persisted alert. Only the sent and acknowledged flags
// change after insert, and only from false to true.
type ExposureAlert struct {
	ID                  uint                           `gorm:"primaryKey" json:"id"`
	UserID              string                         `gorm:"size:64;not null;index:idx_alerts_user_created,priority:1" json:"user_id"`
	ReportID            uint                           `gorm:"index" json:"report_id"`
	AlertType           string                         `gorm:"size:32;not null" json:"alert_type"`
	Severity            string                         `gorm:"size:16;not null" json:"severity"`
	Subject             string                         `gorm:"size:255" json:"subject,omitempty"`
	Title               string                         `gorm:"size:255" json:"title"`
	Message             string                         `gorm:"type:text" json:"message"`
	ReductionStrategies datatypes.JSONSlice[string]    `json:"reduction_strategies"`
	PrimarySources      datatypes.JSONSlice[TopSource] `json:"primary_sources"`
	Sent                bool                           `gorm:"not null;default:false" json:"sent"`
	SentAt              *time.Time                     `json:"sent_at,omitempty"`
	Acknowledged        bool                           `gorm:"not null;default:false;index" json:"acknowledged"`
	AcknowledgedAt      *time.Time                     `json:"acknowledged_at,omitempty"`
	CreatedAt           time.Time                      `gorm:"index:idx_alerts_user_created,priority:2" json:"created_at"`
}

func (ExposureAlert) TableName() string { return "exposure_alerts" }

// allModels lists every table managed by Migrate.
func allModels() []any {
	return []any{&ProductScan{}, &ExposureReport{}, &ExposureAlert{}}
}

// NewExposureMap wraps a per-type or per-category exposure map for a JSON column.
func NewExposureMap(m map[string]float64) datatypes.JSONType[map[string]float64] {
	if m == nil {
		m = map[string]float64{}
	}
	return datatypes.NewJSONType(m)
}
