package alerting

import (
	"fmt"
	"slices"
	"strings"
	"time"

	"gorm.io/datatypes"

	"github.com/edctrack/exposure/internal/datastore"
	"github.com/edctrack/exposure/internal/exposure"
)

const maxPrimarySources = 3

// candidate is an alert produced by a detector but not yet persisted.
type candidate struct {
	alertType  AlertType
	severity   Severity
	subject    string
	title      string
	message    string
	strategies []string
	sources    []datastore.TopSource
}

func (c candidate) toAlert(userID string, reportID uint, createdAt time.Time) *datastore.ExposureAlert {
	return &datastore.ExposureAlert{
		UserID:              userID,
		ReportID:            reportID,
		AlertType:           string(c.alertType),
		Severity:            string(c.severity),
		Subject:             c.subject,
		Title:               c.title,
		Message:             c.message,
		ReductionStrategies: datatypes.JSONSlice[string](c.strategies),
		PrimarySources:      datatypes.JSONSlice[datastore.TopSource](c.sources),
		CreatedAt:           createdAt,
	}
}

// detect runs the detectors in their fixed order.
func (e *Engine) detect(r *exposure.Report) []candidate {
	var out []candidate
	if c, ok := e.detectWeeklyLimit(r); ok {
		out = append(out, c)
	}
	if c, ok := e.detectTrend(r); ok {
		out = append(out, c)
	}
	out = append(out, e.detectHighEDCTypes(r)...)
	if c, ok := e.detectCriticalSource(r); ok {
		out = append(out, c)
	}
	return out
}

// detectWeeklyLimit raises at most one of the critical and warning alerts.
func (e *Engine) detectWeeklyLimit(r *exposure.Report) (candidate, bool) {
	pct := r.PercentOfLimit
	switch {
	case pct >= e.thresholds.CriticalPercent:
		return candidate{
			alertType: AlertWeeklyLimitExceeded,
			severity:  SeverityCritical,
			title:     "CRITICAL: Weekly EDC Limit Exceeded",
			message: fmt.Sprintf("Your EDC exposure this week is %.0f%% of the safe limit. "+
				"This exceeds recommended safety thresholds. Immediate action is recommended to reduce exposure.", pct),
			strategies: reductionStrategies(r),
			sources:    primarySources(r.TopSources),
		}, true
	case pct >= e.thresholds.WarningPercent:
		return candidate{
			alertType: AlertApproachingLimit,
			severity:  SeverityWarning,
			title:     "WARNING: Approaching Weekly EDC Limit",
			message: fmt.Sprintf("Your EDC exposure this week is %.0f%% of the safe limit. "+
				"You're approaching the recommended safety threshold. Consider reducing exposure to stay within safe limits.", pct),
			strategies: reductionStrategies(r),
			sources:    primarySources(r.TopSources),
		}, true
	default:
		return candidate{}, false
	}
}

// detectTrend compares this week's total with the previous week, the last
// point of the trend series.
func (e *Engine) detectTrend(r *exposure.Report) (candidate, bool) {
	if len(r.Trend) < 2 {
		return candidate{}, false
	}
	previous := r.Trend[len(r.Trend)-1].TotalExposure
	if previous <= 0 {
		return candidate{}, false
	}
	if r.TotalExposure <= previous*(1+e.thresholds.TrendIncreasePercent/100) {
		return candidate{}, false
	}
	increase := (r.TotalExposure - previous) / previous * 100

	return candidate{
		alertType: AlertTrendIncreasing,
		severity:  SeverityWarning,
		title:     "TREND ALERT: Exposure Increasing",
		message: fmt.Sprintf("Your EDC exposure has increased by %.0f%% compared to last week. "+
			"Review recent product changes and consider alternatives.", increase),
		strategies: trendStrategies(r, increase),
		sources:    primarySources(r.TopSources),
	}, true
}

// detectHighEDCTypes raises one alert per EDC type whose share of the
// total reaches the threshold, largest share first.
func (e *Engine) detectHighEDCTypes(r *exposure.Report) []candidate {
	if r.TotalExposure <= 0 || len(r.ExposureByType) == 0 {
		return nil
	}

	var out []candidate
	for _, entry := range exposure.Rank(r.ExposureByType) {
		share := entry.Value / r.TotalExposure * 100
		if share < e.thresholds.HighEDCPercent {
			continue
		}
		label := strings.ToUpper(entry.Key)
		out = append(out, candidate{
			alertType: AlertHighEDCType,
			severity:  SeverityWarning,
			subject:   entry.Key,
			title:     "HIGH EXPOSURE: " + label,
			message: fmt.Sprintf("%s contributes %.0f%% of your total EDC exposure. "+
				"This is a primary concern for your health.", label, share),
			strategies: edcStrategies(entry.Key),
			sources:    edcSources(r.TopSources, entry.Key),
		})
	}
	return out
}

func (e *Engine) detectCriticalSource(r *exposure.Report) (candidate, bool) {
	if len(r.TopSources) == 0 || r.TotalExposure <= 0 {
		return candidate{}, false
	}
	top := r.TopSources[0]
	share := top.ExposureContribution / r.TotalExposure * 100
	if share < e.thresholds.CriticalSourcePercent {
		return candidate{}, false
	}

	return candidate{
		alertType: AlertCriticalSource,
		severity:  SeverityWarning,
		subject:   top.ProductName,
		title:     "CRITICAL SOURCE: " + top.ProductName,
		message: fmt.Sprintf("'%s' contributes %.0f%% of your total EDC exposure. "+
			"Replacing this product should be your top priority.", top.ProductName, share),
		strategies: sourceStrategies(top, share),
		sources:    []datastore.TopSource{top},
	}, true
}

func primarySources(sources []datastore.TopSource) []datastore.TopSource {
	out := make([]datastore.TopSource, 0, maxPrimarySources)
	return append(out, sources[:min(maxPrimarySources, len(sources))]...)
}

// edcSources picks the top sources whose scan flagged edcType, falling back
// to the overall top sources when none did.
func edcSources(sources []datastore.TopSource, edcType string) []datastore.TopSource {
	var matched []datastore.TopSource
	for _, s := range sources {
		if slices.Contains(s.EDCTypes, edcType) {
			matched = append(matched, s)
			if len(matched) == maxPrimarySources {
				break
			}
		}
	}
	if len(matched) == 0 {
		return primarySources(sources)
	}
	return matched
}
