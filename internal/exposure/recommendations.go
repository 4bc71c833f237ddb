package exposure

import (
	"fmt"

	"github.com/edctrack/exposure/internal/datastore"
)

const (
	maxTypeRecommendations     = 3
	maxCategoryRecommendations = 2

	// latest trend total must exceed the previous one by this factor
	trendIncreaseFactor = 1.2
)

var edcGuidance = map[string]string{
	"bpa":         "PRIMARY SOURCE - BPA: Switch to BPA-free products. Avoid heating plastic containers.",
	"phthalate":   "PRIMARY SOURCE - Phthalates: Choose phthalate-free personal care products. Avoid fragranced products.",
	"paraben":     "PRIMARY SOURCE - Parabens: Look for paraben-free cosmetics and lotions.",
	"heavy_metal": "PRIMARY SOURCE - Heavy Metals: Avoid products with lead, mercury, or cadmium. Check cosmetics and traditional products.",
}

var categoryGuidance = map[string]string{
	"cosmetic":      "FOCUS AREA - Cosmetics: This is your highest exposure category. Prioritize switching to clean beauty products.",
	"food":          "FOCUS AREA - Food: This is your highest exposure category. Choose organic when possible and avoid plastic packaging.",
	"personal_care": "FOCUS AREA - Personal Care: This is your highest exposure category. Switch to natural, EDC-free products.",
}

// Recommendations builds the ordered advice for a report: one status
// message, an optional trend warning, up to three EDC type messages, up to
// two category messages and a replacement message for the top source.
func Recommendations(data *ExposureData, status Status, percentOfLimit float64, trend []datastore.TrendPoint) []string {
	recs := []string{statusRecommendation(status, percentOfLimit)}

	if TrendIncreasing(trend) {
		recs = append(recs, "TREND ALERT: Your exposure is increasing. Review recent product changes and consider alternatives.")
	}

	for _, entry := range topN(Rank(data.ExposureByType), maxTypeRecommendations) {
		recs = append(recs, edcRecommendation(entry.Key))
	}

	for _, entry := range topN(Rank(data.ExposureByCategory), maxCategoryRecommendations) {
		if msg, ok := categoryGuidance[entry.Key]; ok {
			recs = append(recs, msg)
		}
	}

	if len(data.TopSources) > 0 && data.TotalExposure > 0 {
		top := data.TopSources[0]
		share := top.ExposureContribution / data.TotalExposure * 100
		recs = append(recs, fmt.Sprintf("TOP PRIORITY: Replace '%s' - it contributes %.0f%% of your total exposure.", top.ProductName, share))
	}

	return recs
}

func statusRecommendation(status Status, percent float64) string {
	switch status {
	case StatusExceeds:
		return fmt.Sprintf("CRITICAL: Your EDC exposure is %.0f%% of the safe limit. Immediate action recommended to reduce exposure.", percent)
	case StatusApproaching:
		return fmt.Sprintf("WARNING: Your EDC exposure is %.0f%% of the safe limit. Consider reducing exposure to stay within safe limits.", percent)
	case StatusSafe:
		return fmt.Sprintf("SAFE: Your EDC exposure is %.0f%% of the safe limit. Continue monitoring to maintain safe levels.", percent)
	default:
		panic("exposure: unknown status " + string(status))
	}
}

func edcRecommendation(edcType string) string {
	if msg, ok := edcGuidance[edcType]; ok {
		return msg
	}
	return fmt.Sprintf("PRIMARY SOURCE - %s: Check ingredient lists and reduce products that contain it.", DisplayName(edcType))
}

// TrendIncreasing reports whether the newest trend total exceeds the one
// before it by more than 20 percent.
func TrendIncreasing(trend []datastore.TrendPoint) bool {
	if len(trend) < 2 {
		return false
	}
	last, prev := trend[len(trend)-1].TotalExposure, trend[len(trend)-2].TotalExposure
	return last > prev*trendIncreaseFactor
}

func topN(entries []RankedEntry, n int) []RankedEntry {
	return entries[:min(n, len(entries))]
}
