package config

// Default bad-value sentinels rewritten to UNKNOWN on designated
// fields. The numeric codes are malformed values observed in the wild
// in categorical columns of the incident feed; the rule set is a known
// approximation and stays configurable rather than hard-wired.
var DefaultBadValues = []string{"", "(null)", "NONE", "U", "UNKNOWN", "1020", "224", "940"}

// DefaultDatasets returns the two built-in pipeline instances: the
// point-event incident dataset and the cumulative per-region epidemic
// dataset.
func DefaultDatasets() []DatasetConfig {
	return []DatasetConfig{
		{
			Name: "incidents",
			Source: SourceConfig{
				Path:   "data/incidents.csv",
				Format: "csv",
			},
			DateColumn: "occur_date",
			DateLayout: "1/2/2006",
			Normalize: NormalizeConfig{
				Fields: []string{
					"perp_age_group", "perp_sex", "perp_race",
					"vic_age_group", "vic_sex", "vic_race",
				},
				BadValues: DefaultBadValues,
			},
			Aggregations: []AggregationConfig{
				{Name: "by_weekday", Keys: []string{"weekday"}},
				{Name: "by_area", Keys: []string{"boro"}},
				{Name: "daily", Keys: []string{"day_offset"}, OrderKey: "day_offset", Cumulative: true},
			},
			Trend: TrendConfig{Aggregation: "daily", X: "day_offset", Y: "value"},
		},
		{
			Name: "epidemic",
			Source: SourceConfig{
				Path:   "data/epidemic.csv",
				Format: "csv",
			},
			DateColumn: "date",
			DateLayout: "2006-01-02",
			Normalize: NormalizeConfig{
				Fields:    []string{"region"},
				BadValues: DefaultBadValues,
			},
			Ratios: []RatioConfig{
				{Name: "fatality_rate", Numerator: "deaths", Denominator: "cases"},
			},
			Aggregations: []AggregationConfig{
				{Name: "cases_by_date", Keys: []string{"date"}, Measure: "cases", OrderKey: "date", Cumulative: true},
				{Name: "deaths_by_date", Keys: []string{"date"}, Measure: "deaths", OrderKey: "date", Cumulative: true},
				{Name: "cases_by_region", Keys: []string{"region"}, Measure: "cases"},
			},
			Trend: TrendConfig{X: "cases", Y: "deaths"},
		},
	}
}
