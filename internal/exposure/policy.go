package exposure

import (
	"fmt"
	"maps"
	"strings"

	"github.com/edctrack/exposure/internal/errors"
)

// Default policy values.
const (
	DefaultCategoryWeight     = 0.5
	DefaultApproachingPercent = 70.0
	DefaultExceedsPercent     = 100.0
	DefaultTrendPeriods       = 6
	MaxTrendPeriods           = 12
)

// Policy holds the weighting tables, safety limits and status thresholds
// used by the engine. Build one with NewPolicy or DefaultPolicy; the maps
// are copied so later changes by the caller have no effect.
type Policy struct {
	categoryWeights    map[string]float64
	defaultWeight      float64
	limits             map[PeriodType]float64
	approachingPercent float64
	exceedsPercent     float64
	trendPeriods       int
}

// PolicyConfig is the mutable input to NewPolicy.
type PolicyConfig struct {
	CategoryWeights    map[string]float64
	DefaultWeight      float64
	Limits             map[PeriodType]float64
	ApproachingPercent float64
	ExceedsPercent     float64
	TrendPeriods       int
}

// DefaultPolicyConfig returns the built-in weights and limits.
func DefaultPolicyConfig() PolicyConfig {
	return PolicyConfig{
		CategoryWeights: map[string]float64{
			"cosmetic":      1.0,
			"personal_care": 1.5,
			"food":          2.0,
			"household":     0.3,
		},
		DefaultWeight: DefaultCategoryWeight,
		Limits: map[PeriodType]float64{
			PeriodDaily:   10.0,
			PeriodWeekly:  50.0,
			PeriodMonthly: 200.0,
		},
		ApproachingPercent: DefaultApproachingPercent,
		ExceedsPercent:     DefaultExceedsPercent,
		TrendPeriods:       DefaultTrendPeriods,
	}
}

// DefaultPolicy returns the built-in policy.
func DefaultPolicy() *Policy {
	p, err := NewPolicy(DefaultPolicyConfig())
	if err != nil {
		panic(fmt.Sprintf("exposure: default policy is invalid: %v", err))
	}
	return p
}

// NewPolicy validates cfg and returns an immutable policy.
func NewPolicy(cfg PolicyConfig) (*Policy, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	weights := make(map[string]float64, len(cfg.CategoryWeights))
	for k, v := range cfg.CategoryWeights {
		weights[normalizeKey(k)] = v
	}

	return &Policy{
		categoryWeights:    weights,
		defaultWeight:      cfg.DefaultWeight,
		limits:             maps.Clone(cfg.Limits),
		approachingPercent: cfg.ApproachingPercent,
		exceedsPercent:     cfg.ExceedsPercent,
		trendPeriods:       cfg.TrendPeriods,
	}, nil
}

// Validate checks every field and reports all problems at once.
func (cfg PolicyConfig) Validate() error {
	var problems []string

	for k, v := range cfg.CategoryWeights {
		if strings.TrimSpace(k) == "" {
			problems = append(problems, "category weight with empty category name")
		}
		if v < 0 {
			problems = append(problems, fmt.Sprintf("category weight for %q must not be negative", k))
		}
	}
	if cfg.DefaultWeight < 0 {
		problems = append(problems, "default category weight must not be negative")
	}
	for _, p := range PeriodTypes() {
		if cfg.Limits[p] <= 0 {
			problems = append(problems, fmt.Sprintf("%s limit must be positive", p))
		}
	}
	if cfg.ApproachingPercent <= 0 || cfg.ApproachingPercent >= cfg.ExceedsPercent {
		problems = append(problems, "approaching percent must be positive and below exceeds percent")
	}
	if cfg.TrendPeriods < 1 || cfg.TrendPeriods > MaxTrendPeriods {
		problems = append(problems, fmt.Sprintf("trend periods must be between 1 and %d", MaxTrendPeriods))
	}

	if len(problems) == 0 {
		return nil
	}
	return errors.Newf("invalid exposure policy: %s", strings.Join(problems, "; ")).
		Component("exposure").
		Category(errors.CategoryConfiguration).
		Context("problems", problems).
		Build()
}

// CategoryWeight returns the frequency weight for a product category.
// Lookups are case-insensitive; unknown categories get the default weight.
func (p *Policy) CategoryWeight(category string) float64 {
	if w, ok := p.categoryWeights[normalizeKey(category)]; ok {
		return w
	}
	return p.defaultWeight
}

// Limit returns the safety limit for a period type.
func (p *Policy) Limit(period PeriodType) float64 {
	return p.limits[period]
}

// TrendPeriods is the number of trailing windows included in reports.
func (p *Policy) TrendPeriods() int { return p.trendPeriods }

// Status classifies a percent of limit.
func (p *Policy) Status(percentOfLimit float64) Status {
	switch {
	case percentOfLimit < p.approachingPercent:
		return StatusSafe
	case percentOfLimit < p.exceedsPercent:
		return StatusApproaching
	default:
		return StatusExceeds
	}
}

// Config returns a copy of the policy's settings.
func (p *Policy) Config() PolicyConfig {
	return PolicyConfig{
		CategoryWeights:    maps.Clone(p.categoryWeights),
		DefaultWeight:      p.defaultWeight,
		Limits:             maps.Clone(p.limits),
		ApproachingPercent: p.approachingPercent,
		ExceedsPercent:     p.exceedsPercent,
		TrendPeriods:       p.trendPeriods,
	}
}

func normalizeKey(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
