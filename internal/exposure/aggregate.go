package exposure

import (
	"context"
	"math"
	"sort"
	"time"

	"github.com/edctrack/exposure/internal/datastore"
	"github.com/edctrack/exposure/internal/logger"
)

const (
	maxTopSources       = 5
	defaultOverallScore = 50.0
	defaultConfidence   = 1.0
	unknownCategory     = "unknown"
)

// ExposureData is the aggregate of one window. TotalExposure is rounded to
// two decimals; the per-type and per-category maps are not.
type ExposureData struct {
	UserID             string                `json:"user_id" yaml:"user_id"`
	PeriodStart        time.Time             `json:"period_start" yaml:"period_start"`
	PeriodEnd          time.Time             `json:"period_end" yaml:"period_end"`
	TotalExposure      float64               `json:"total_exposure" yaml:"total_exposure"`
	ExposureByType     map[string]float64    `json:"exposure_by_type" yaml:"exposure_by_type"`
	ExposureByCategory map[string]float64    `json:"exposure_by_category" yaml:"exposure_by_category"`
	TopSources         []datastore.TopSource `json:"top_sources" yaml:"top_sources"`
	ScanCount          int                   `json:"scan_count" yaml:"scan_count"`
}

// ComputeExposure aggregates the user's scans in [start, end]. Both bounds
// are required. An empty window yields a zero-valued result.
func (e *Engine) ComputeExposure(ctx context.Context, userID string, start, end time.Time) (*ExposureData, error) {
	if err := validateUser(userID); err != nil {
		return nil, err
	}
	if err := validateWindow(start, end); err != nil {
		return nil, err
	}

	began := time.Now()
	scans, err := e.scans.FetchScans(ctx, userID, start, end)
	if err != nil {
		e.metrics.RecordComputation(time.Since(began), 0, err)
		return nil, err
	}

	data := e.aggregate(userID, start, end, scans)
	e.metrics.RecordComputation(time.Since(began), data.ScanCount, nil)

	e.log.Debug("exposure computed",
		logger.String("user_id", userID),
		logger.Time("period_start", start),
		logger.Time("period_end", end),
		logger.Float64("total_exposure", data.TotalExposure),
		logger.Int("scan_count", data.ScanCount),
		logger.Int("edc_types", len(data.ExposureByType)))

	return data, nil
}

func validateWindow(start, end time.Time) error {
	if start.IsZero() {
		return validationError("period_start", "period_start is required", "")
	}
	if end.IsZero() {
		return validationError("period_end", "period_end is required", "")
	}
	if start.After(end) {
		return validationError("period_start", "period_start must not be after period_end", start.Format(time.RFC3339))
	}
	return nil
}

type contribution struct {
	scan  *datastore.ProductScan
	value float64
}

// aggregate is the pure part of ComputeExposure. scans must be newest first
// so equal contributions keep that order in the ranking.
func (e *Engine) aggregate(userID string, start, end time.Time, scans []datastore.ProductScan) *ExposureData {
	data := &ExposureData{
		UserID:             userID,
		PeriodStart:        start,
		PeriodEnd:          end,
		ExposureByType:     map[string]float64{},
		ExposureByCategory: map[string]float64{},
		TopSources:         []datastore.TopSource{},
		ScanCount:          len(scans),
	}
	if len(scans) == 0 {
		return data
	}

	k := decayRate(start, end)
	contributions := make([]contribution, 0, len(scans))
	total := 0.0

	for i := range scans {
		scan := &scans[i]
		frequency := e.policy.CategoryWeight(scan.Category)
		value := baseExposure(scan) * frequency * math.Exp(-k*float64(daysBetween(scan.ScannedAt, end)))

		total += value
		contributions = append(contributions, contribution{scan: scan, value: value})
		data.ExposureByCategory[categoryKey(scan.Category)] += value

		// type attribution is severity weighted and does not decay
		for _, chem := range scan.FlaggedChemicals {
			chemical := chemicalExposure(chem) * frequency
			for _, t := range chem.EDCTypes {
				if key := normalizeKey(t); key != "" {
					data.ExposureByType[key] += chemical
				}
			}
		}
	}

	sort.SliceStable(contributions, func(i, j int) bool {
		return contributions[i].value > contributions[j].value
	})
	for _, c := range contributions[:min(maxTopSources, len(contributions))] {
		data.TopSources = append(data.TopSources, topSource(c))
	}

	data.TotalExposure = round(total, 2)
	return data
}

// decayRate gives a half-life of half the window, at least one day.
func decayRate(start, end time.Time) float64 {
	periodDays := float64(daysBetween(start, end) + 1)
	return math.Ln2 / math.Max(periodDays/2, 1)
}

// daysBetween counts whole days from t to end, clamped at zero.
func daysBetween(t, end time.Time) int {
	days := int(math.Floor(end.Sub(t).Hours() / 24))
	return max(days, 0)
}

func baseExposure(scan *datastore.ProductScan) float64 {
	score := defaultOverallScore
	if scan.OverallScore != nil {
		score = *scan.OverallScore
	}
	return 100 - score
}

func chemicalExposure(chem datastore.FlaggedChemical) float64 {
	risk, confidence := 0.0, defaultConfidence
	if chem.RiskScore != nil {
		risk = *chem.RiskScore
	}
	if chem.Confidence != nil {
		confidence = *chem.Confidence
	}
	return risk * confidence
}

func categoryKey(category string) string {
	if key := normalizeKey(category); key != "" {
		return key
	}
	return unknownCategory
}

func topSource(c contribution) datastore.TopSource {
	return datastore.TopSource{
		ScanID:               c.scan.ID,
		ProductName:          c.scan.ProductName,
		Category:             categoryKey(c.scan.Category),
		ExposureContribution: c.value,
		ScannedAt:            c.scan.ScannedAt,
		RiskLevel:            c.scan.RiskLevel,
		EDCTypes:             scanEDCTypes(c.scan),
	}
}

// scanEDCTypes lists the distinct EDC types flagged on a scan in first-seen order.
func scanEDCTypes(scan *datastore.ProductScan) []string {
	var types []string
	seen := map[string]bool{}
	for _, chem := range scan.FlaggedChemicals {
		for _, t := range chem.EDCTypes {
			key := normalizeKey(t)
			if key == "" || seen[key] {
				continue
			}
			seen[key] = true
			types = append(types, key)
		}
	}
	return types
}

// CompareToLimit returns the safety limit for period, the total as a
// percent of it rounded to one decimal, and the status for that percent.
// It panics if the limit is not positive.
func (e *Engine) CompareToLimit(totalExposure float64, period PeriodType) (limit, percentOfLimit float64, status Status) {
	limit = e.policy.Limit(period)
	if limit <= 0 || math.IsNaN(limit) {
		panic("exposure: non-positive safety limit for period " + string(period))
	}
	percentOfLimit = round(totalExposure/limit*100, 1)
	return limit, percentOfLimit, e.policy.Status(percentOfLimit)
}
