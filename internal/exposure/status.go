package exposure

// Status classifies exposure against the safety limit.
type Status string

const (
	StatusSafe        Status = "SAFE"
	StatusApproaching Status = "APPROACHING_LIMIT"
	StatusExceeds     Status = "EXCEEDS_LIMIT"
)

func (s Status) String() string { return string(s) }

// Valid reports whether s is a known status.
func (s Status) Valid() bool {
	switch s {
	case StatusSafe, StatusApproaching, StatusExceeds:
		return true
	default:
		return false
	}
}
