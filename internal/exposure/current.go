package exposure

import (
	"context"
	"time"
)

// MaxCurrentDays bounds the lookback of CurrentExposure.
const MaxCurrentDays = 365

// CurrentExposure is a quick status check without a persisted snapshot.
type CurrentExposure struct {
	ExposureData `yaml:",inline"`

	PeriodDays     int        `json:"period_days" yaml:"period_days"`
	PeriodType     PeriodType `json:"period_type" yaml:"period_type"`
	ExposureLimit  float64    `json:"exposure_limit" yaml:"exposure_limit"`
	PercentOfLimit float64    `json:"percent_of_limit" yaml:"percent_of_limit"`
	Status         Status     `json:"status" yaml:"status"`
}

// CurrentExposure aggregates the last days days and compares the total to
// the limit of the matching period type.
func (e *Engine) CurrentExposure(ctx context.Context, userID string, days int) (*CurrentExposure, error) {
	if err := validateUser(userID); err != nil {
		return nil, err
	}
	if days < 1 || days > MaxCurrentDays {
		return nil, validationError("days", "days must be between 1 and 365", days)
	}

	end := e.now()
	start := end.Add(-time.Duration(days) * day)
	data, err := e.ComputeExposure(ctx, userID, start, end)
	if err != nil {
		return nil, err
	}

	period := PeriodForDays(days)
	limit, percent, status := e.CompareToLimit(data.TotalExposure, period)

	return &CurrentExposure{
		ExposureData:   *data,
		PeriodDays:     days,
		PeriodType:     period,
		ExposureLimit:  limit,
		PercentOfLimit: percent,
		Status:         status,
	}, nil
}
