package exposure

import "github.com/edctrack/exposure/internal/datastore"

// Chart is a labelled series for a frontend chart.
type Chart struct {
	Labels    []string  `json:"labels" yaml:"labels"`
	Values    []float64 `json:"values" yaml:"values"`
	ChartType string    `json:"chart_type" yaml:"chart_type"`
}

// Gauge shows the total against the limit.
type Gauge struct {
	Current   float64 `json:"current" yaml:"current"`
	Limit     float64 `json:"limit" yaml:"limit"`
	Percent   float64 `json:"percent" yaml:"percent"`
	Status    Status  `json:"status" yaml:"status"`
	ChartType string  `json:"chart_type" yaml:"chart_type"`
}

// Visualization is chart-ready data derived from a report.
type Visualization struct {
	ExposureByType     Chart                 `json:"exposure_by_type_chart" yaml:"exposure_by_type_chart"`
	ExposureByCategory Chart                 `json:"exposure_by_category_chart" yaml:"exposure_by_category_chart"`
	Trend              Chart                 `json:"trend_chart" yaml:"trend_chart"`
	LimitGauge         Gauge                 `json:"limit_gauge" yaml:"limit_gauge"`
	TopSources         []datastore.TopSource `json:"top_sources_table" yaml:"top_sources_table"`
}

// VisualizationData formats a report for charts. Map-based series are
// ranked largest first; trend labels are the window start dates.
func VisualizationData(r *Report) *Visualization {
	v := &Visualization{
		ExposureByType:     rankedChart(r.ExposureByType, "pie"),
		ExposureByCategory: rankedChart(r.ExposureByCategory, "bar"),
		Trend: Chart{
			Labels:    make([]string, 0, len(r.Trend)),
			Values:    make([]float64, 0, len(r.Trend)),
			ChartType: "line",
		},
		LimitGauge: Gauge{
			Current:   r.TotalExposure,
			Limit:     r.ExposureLimit,
			Percent:   r.PercentOfLimit,
			Status:    r.Status,
			ChartType: "gauge",
		},
		TopSources: r.TopSources,
	}
	for _, p := range r.Trend {
		v.Trend.Labels = append(v.Trend.Labels, p.PeriodStart.Format("2006-01-02"))
		v.Trend.Values = append(v.Trend.Values, p.TotalExposure)
	}
	return v
}

func rankedChart(m map[string]float64, chartType string) Chart {
	c := Chart{Labels: make([]string, 0, len(m)), Values: make([]float64, 0, len(m)), ChartType: chartType}
	for _, entry := range Rank(m) {
		c.Labels = append(c.Labels, entry.Key)
		c.Values = append(c.Values, entry.Value)
	}
	return c
}
