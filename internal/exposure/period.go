package exposure

import (
	"strings"
	"time"

	"github.com/edctrack/exposure/internal/errors"
)

// PeriodType is the length class of a reporting window.
type PeriodType string

const (
	PeriodDaily   PeriodType = "daily"
	PeriodWeekly  PeriodType = "weekly"
	PeriodMonthly PeriodType = "monthly"
)

const day = 24 * time.Hour

// PeriodTypes lists every period type in ascending length.
func PeriodTypes() []PeriodType {
	return []PeriodType{PeriodDaily, PeriodWeekly, PeriodMonthly}
}

// ParsePeriodType parses a period type case-insensitively. Unknown values
// are rejected; there is no silent default.
func ParsePeriodType(s string) (PeriodType, error) {
	p := PeriodType(strings.ToLower(strings.TrimSpace(s)))
	if !p.Valid() {
		return "", errors.Newf("invalid period_type %q: must be one of daily, weekly, monthly", s).
			Component("exposure").
			Category(errors.CategoryValidation).
			Context("field", "period_type").
			Context("value", s).
			Build()
	}
	return p, nil
}

// Valid reports whether p is one of the known period types.
func (p PeriodType) Valid() bool {
	switch p {
	case PeriodDaily, PeriodWeekly, PeriodMonthly:
		return true
	default:
		return false
	}
}

func (p PeriodType) String() string { return string(p) }

// WindowLength is the fixed length of one trend window.
func (p PeriodType) WindowLength() time.Duration {
	switch p {
	case PeriodDaily:
		return day
	case PeriodWeekly:
		return 7 * day
	case PeriodMonthly:
		return 30 * day
	default:
		panic("exposure: unknown period type " + string(p))
	}
}

// DefaultStart derives the window start used when a caller omits it.
// Daily windows start at midnight of end's day in end's location.
func (p PeriodType) DefaultStart(end time.Time) time.Time {
	switch p {
	case PeriodDaily:
		y, m, d := end.Date()
		return time.Date(y, m, d, 0, 0, 0, 0, end.Location())
	case PeriodWeekly, PeriodMonthly:
		return end.Add(-p.WindowLength())
	default:
		panic("exposure: unknown period type " + string(p))
	}
}

// PeriodForDays picks the limit class for an ad-hoc lookback of days.
func PeriodForDays(days int) PeriodType {
	switch {
	case days <= 1:
		return PeriodDaily
	case days <= 7:
		return PeriodWeekly
	default:
		return PeriodMonthly
	}
}

// timeLayouts are the accepted window bound formats, tried in order. Values
// without a zone are read as UTC.
var timeLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02",
}

// ParseTime parses an ISO 8601 date or date-time. Failures are validation
// errors naming field.
func ParseTime(field, raw string) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	for _, layout := range timeLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return t, nil
		}
	}
	return time.Time{}, validationError(field,
		"invalid "+field+" format, use ISO format (YYYY-MM-DD or YYYY-MM-DDTHH:MM:SS)", raw)
}
