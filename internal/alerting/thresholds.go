package alerting

import (
	"fmt"
	"strings"
	"time"

	"github.com/edctrack/exposure/internal/errors"
)

// Thresholds configures the detectors. All percentages are 0-100.
// A zero Cooldown disables suppression of repeated alerts.
type Thresholds struct {
	WarningPercent        float64
	CriticalPercent       float64
	TrendIncreasePercent  float64
	HighEDCPercent        float64
	CriticalSourcePercent float64
	Cooldown              time.Duration
}

// DefaultThresholds returns the built-in detector thresholds.
func DefaultThresholds() Thresholds {
	return Thresholds{
		WarningPercent:        70,
		CriticalPercent:       100,
		TrendIncreasePercent:  20,
		HighEDCPercent:        30,
		CriticalSourcePercent: 40,
	}
}

// Validate reports every invalid threshold at once.
func (t Thresholds) Validate() error {
	var problems []string
	if t.WarningPercent <= 0 || t.WarningPercent >= t.CriticalPercent {
		problems = append(problems, "warning percent must be positive and below critical percent")
	}
	if t.TrendIncreasePercent < 0 {
		problems = append(problems, "trend increase percent must not be negative")
	}
	if t.HighEDCPercent <= 0 || t.HighEDCPercent > 100 {
		problems = append(problems, fmt.Sprintf("high EDC percent must be in (0, 100], got %v", t.HighEDCPercent))
	}
	if t.CriticalSourcePercent <= 0 || t.CriticalSourcePercent > 100 {
		problems = append(problems, fmt.Sprintf("critical source percent must be in (0, 100], got %v", t.CriticalSourcePercent))
	}
	if t.Cooldown < 0 {
		problems = append(problems, "cooldown must not be negative")
	}

	if len(problems) == 0 {
		return nil
	}
	return errors.Newf("invalid alert thresholds: %s", strings.Join(problems, "; ")).
		Component("alerting").
		Category(errors.CategoryConfiguration).
		Context("problems", problems).
		Build()
}
