package exposure

import (
	"context"
	"fmt"
	"time"

	"github.com/patrickmn/go-cache"

	"github.com/edctrack/exposure/internal/datastore"
)

// ComputeTrend aggregates numPeriods fixed-length windows ending at anchor,
// oldest first. Window i ends where window i+1 starts.
func (e *Engine) ComputeTrend(ctx context.Context, userID string, period PeriodType, anchor time.Time, numPeriods int) ([]datastore.TrendPoint, error) {
	if err := validateUser(userID); err != nil {
		return nil, err
	}
	if _, err := ParsePeriodType(string(period)); err != nil {
		return nil, err
	}
	if anchor.IsZero() {
		return nil, validationError("anchor_start", "anchor_start is required", "")
	}
	return e.computeTrend(ctx, userID, period, anchor, numPeriods)
}

func (e *Engine) computeTrend(ctx context.Context, userID string, period PeriodType, anchor time.Time, numPeriods int) ([]datastore.TrendPoint, error) {
	if numPeriods < 1 || numPeriods > MaxTrendPeriods {
		return nil, validationError("num_periods", fmt.Sprintf("num_periods must be between 1 and %d", MaxTrendPeriods), numPeriods)
	}

	length := period.WindowLength()
	points := make([]datastore.TrendPoint, 0, numPeriods)
	for i := numPeriods; i > 0; i-- {
		end := anchor.Add(-length * time.Duration(i-1))
		start := end.Add(-length)

		point, err := e.trendPoint(ctx, userID, start, end)
		if err != nil {
			return nil, err
		}
		points = append(points, point)
	}
	return points, nil
}

func (e *Engine) trendPoint(ctx context.Context, userID string, start, end time.Time) (datastore.TrendPoint, error) {
	key := trendCacheKey(userID, start, end)
	if e.trendCache != nil {
		if cached, found := e.trendCache.Get(key); found {
			e.metrics.RecordTrendCache(true)
			return cached.(datastore.TrendPoint), nil
		}
		e.metrics.RecordTrendCache(false)
	}

	data, err := e.ComputeExposure(ctx, userID, start, end)
	if err != nil {
		return datastore.TrendPoint{}, err
	}
	point := datastore.TrendPoint{
		PeriodStart:   start,
		PeriodEnd:     end,
		TotalExposure: data.TotalExposure,
		ScanCount:     data.ScanCount,
	}

	if e.trendCache != nil {
		e.trendCache.Set(key, point, cache.DefaultExpiration)
	}
	return point, nil
}

// InvalidateTrends drops every memoized trend window. Call it after writing
// scans so later trends see them.
func (e *Engine) InvalidateTrends() {
	if e.trendCache != nil {
		e.trendCache.Flush()
	}
}

func trendCacheKey(userID string, start, end time.Time) string {
	return fmt.Sprintf("%s|%d|%d", userID, start.UnixNano(), end.UnixNano())
}
