package alerting

// AlertType identifies the detector that raised an alert.
type AlertType string

const (
	AlertWeeklyLimitExceeded AlertType = "weekly_limit_exceeded"
	AlertApproachingLimit    AlertType = "approaching_limit"
	AlertTrendIncreasing     AlertType = "trend_increasing"
	AlertHighEDCType         AlertType = "high_edc_type"
	AlertCriticalSource      AlertType = "critical_source"
)

// AlertTypes lists every alert type in detector order.
func AlertTypes() []AlertType {
	return []AlertType{
		AlertWeeklyLimitExceeded,
		AlertApproachingLimit,
		AlertTrendIncreasing,
		AlertHighEDCType,
		AlertCriticalSource,
	}
}

// Valid reports whether t is a known alert type.
func (t AlertType) Valid() bool {
	switch t {
	case AlertWeeklyLimitExceeded, AlertApproachingLimit, AlertTrendIncreasing, AlertHighEDCType, AlertCriticalSource:
		return true
	default:
		return false
	}
}

// Severity ranks alerts.
type Severity string

const (
	SeverityWarning  Severity = "warning"
	SeverityCritical Severity = "critical"
)

// Valid reports whether s is a known severity.
func (s Severity) Valid() bool {
	switch s {
	case SeverityWarning, SeverityCritical:
		return true
	default:
		return false
	}
}

// Rank orders severities, higher is more severe.
func (s Severity) Rank() int {
	switch s {
	case SeverityCritical:
		return 2
	case SeverityWarning:
		return 1
	default:
		return 0
	}
}
