// Package metrics provides Prometheus collectors for the exposure and alert
// engines, the HTTP adapter and the database connection pool.
package metrics

// Result label values.
const (
	ResultSuccess = "success"
	ResultError   = "error"

	CacheHit  = "hit"
	CacheMiss = "miss"
)

// Alert lifecycle operation label values.
const (
	OpAcknowledge = "acknowledge"
	OpMarkSent    = "mark_sent"
	OpCheck       = "check"
	OpList        = "list"
)

// Histogram buckets.
var (
	// computationBuckets spans 1ms to 5s.
	computationBuckets = []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5}

	// scanCountBuckets spans an empty window to a heavy month of scanning.
	scanCountBuckets = []float64{0, 1, 5, 10, 25, 50, 100, 250, 500, 1000}
)
