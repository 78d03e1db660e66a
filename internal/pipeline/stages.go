package pipeline

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"unicode/utf8"

	"trendcli/internal/aggregate"
	"trendcli/internal/config"
	apperrors "trendcli/internal/errors"
	"trendcli/internal/features"
	"trendcli/internal/ingest"
	"trendcli/internal/normalize"
	"trendcli/internal/trend"
	"trendcli/pkg/contracts/domain"
)

// Steps builds the ordered step list for one dataset.
func Steps(cfg config.DatasetConfig) []Step {
	return []Step{
		&IngestStep{cfg: cfg},
		&NormalizeStep{cfg: cfg},
		&DeriveStep{cfg: cfg},
		&AggregateStep{cfg: cfg},
		&TrendStep{cfg: cfg},
		&EvaluateStep{},
	}
}

// IngestStep parses the dataset's tabular source into raw records.
type IngestStep struct {
	cfg config.DatasetConfig
}

func (s *IngestStep) ID() string   { return StepIDIngest }
func (s *IngestStep) Name() string { return StepNameIngest }

func (s *IngestStep) Execute(ctx context.Context, state *RunState) error {
	opts := ingest.Options{Sheet: s.cfg.Source.Sheet}
	if s.cfg.Source.Delimiter != "" {
		opts.Delimiter, _ = utf8.DecodeRuneInString(s.cfg.Source.Delimiter)
	}

	var table *domain.Table
	var err error
	switch s.cfg.Source.Format {
	case "xlsx":
		table, err = ingest.ReadExcelFile(ctx, s.cfg.Source.Path, opts)
	default:
		table, err = ingest.ReadCSVFile(ctx, s.cfg.Source.Path, opts)
	}
	if err != nil {
		return err
	}
	state.Table = table
	return nil
}

// NormalizeStep canonicalizes designated categorical fields.
type NormalizeStep struct {
	cfg config.DatasetConfig
}

func (s *NormalizeStep) ID() string   { return StepIDNormalize }
func (s *NormalizeStep) Name() string { return StepNameNormalize }

func (s *NormalizeStep) Execute(ctx context.Context, state *RunState) error {
	rules := normalize.NewRules(s.cfg.Normalize.Fields, s.cfg.Normalize.BadValues, s.cfg.Normalize.PerField)
	canonical, err := normalize.ApplyAll(ctx, rules, state.Table)
	if err != nil {
		return err
	}
	state.Canonical = canonical
	return nil
}

// DeriveStep computes temporal and ratio features.
type DeriveStep struct {
	cfg config.DatasetConfig
}

func (s *DeriveStep) ID() string   { return StepIDDerive }
func (s *DeriveStep) Name() string { return StepNameDerive }

func (s *DeriveStep) Execute(ctx context.Context, state *RunState) error {
	deriver := features.Deriver{
		DateColumn: s.cfg.DateColumn,
		DateLayout: s.cfg.DateLayout,
	}
	for _, r := range s.cfg.Ratios {
		deriver.Ratios = append(deriver.Ratios, features.Ratio{
			Name:        r.Name,
			Numerator:   r.Numerator,
			Denominator: r.Denominator,
		})
	}
	records, err := deriver.Derive(ctx, state.Canonical)
	if err != nil {
		return err
	}
	state.Records = records
	return nil
}

// AggregateStep runs every configured aggregation and builds the
// requested cumulative series.
type AggregateStep struct {
	cfg config.DatasetConfig
}

func (s *AggregateStep) ID() string   { return StepIDAggregate }
func (s *AggregateStep) Name() string { return StepNameAggregate }

func (s *AggregateStep) Execute(ctx context.Context, state *RunState) error {
	for _, aggCfg := range s.cfg.Aggregations {
		set, err := aggregate.Group(ctx, state.Records, aggregate.Spec{
			Name:    aggCfg.Name,
			Keys:    aggCfg.Keys,
			Measure: aggCfg.Measure,
		})
		if err != nil {
			return fmt.Errorf("aggregation %q: %w", aggCfg.Name, err)
		}
		state.Aggregates[aggCfg.Name] = set

		if aggCfg.Cumulative {
			series, err := aggregate.Cumulative(set, aggCfg.OrderKey)
			if err != nil {
				return fmt.Errorf("aggregation %q: %w", aggCfg.Name, err)
			}
			state.Series[aggCfg.Name] = series
		}
	}
	return nil
}

// TrendStep assembles the configured (x, y) pairs and fits the model.
type TrendStep struct {
	cfg config.DatasetConfig
}

func (s *TrendStep) ID() string   { return StepIDTrend }
func (s *TrendStep) Name() string { return StepNameTrend }

func (s *TrendStep) Execute(ctx context.Context, state *RunState) error {
	points, err := s.assemblePoints(state)
	if err != nil {
		return err
	}
	state.TrendPoints = points

	fit, err := trend.Fit(points)
	if err != nil {
		return err
	}
	state.Trend = &domain.TrendReport{
		XField: s.cfg.Trend.X,
		YField: s.cfg.Trend.Y,
		Fit:    fit,
	}
	return nil
}

// assemblePoints draws fitting pairs either from an aggregation's
// buckets or straight from the records, per the trend configuration.
func (s *TrendStep) assemblePoints(state *RunState) ([]trend.Point, error) {
	tc := s.cfg.Trend
	if tc.Aggregation != "" {
		return aggregationPoints(state, tc)
	}
	return recordPoints(state.Records, tc)
}

func aggregationPoints(state *RunState, tc config.TrendConfig) ([]trend.Point, error) {
	set, ok := state.Aggregates[tc.Aggregation]
	if !ok {
		return nil, fmt.Errorf("trend references unknown aggregation %q", tc.Aggregation)
	}

	xIdx := -1
	for i, field := range set.KeyFields {
		if field == tc.X {
			xIdx = i
			break
		}
	}
	if xIdx == -1 {
		return nil, fmt.Errorf("trend x %q is not a grouping key of aggregation %q", tc.X, tc.Aggregation)
	}

	if tc.Y == "running" {
		series, ok := state.Series[tc.Aggregation]
		if !ok {
			return nil, fmt.Errorf("trend y \"running\" requires cumulative aggregation %q", tc.Aggregation)
		}
		points := make([]trend.Point, 0, len(series.Points))
		for _, p := range series.Points {
			x, err := strconv.ParseFloat(p.Key[xIdx], 64)
			if err != nil {
				return nil, fmt.Errorf("trend x %q is not numeric in aggregation %q: %w", tc.X, tc.Aggregation, err)
			}
			points = append(points, trend.Point{X: x, Y: p.Running})
		}
		return points, nil
	}

	points := make([]trend.Point, 0, len(set.Buckets))
	for _, b := range set.Buckets {
		x, err := strconv.ParseFloat(b.Key[xIdx], 64)
		if err != nil {
			return nil, fmt.Errorf("trend x %q is not numeric in aggregation %q: %w", tc.X, tc.Aggregation, err)
		}
		points = append(points, trend.Point{X: x, Y: b.Value})
	}
	return points, nil
}

// recordPoints pairs two numeric record features. Records on which
// either side is an undefined ratio are excluded from the fit.
func recordPoints(records []domain.Record, tc config.TrendConfig) ([]trend.Point, error) {
	points := make([]trend.Point, 0, len(records))
	for _, rec := range records {
		x, ok, err := numericFeature(rec, tc.X)
		if err != nil {
			return nil, err
		}
		if !ok {
			continue
		}
		y, ok, err := numericFeature(rec, tc.Y)
		if err != nil {
			return nil, err
		}
		if !ok {
			continue
		}
		points = append(points, trend.Point{X: x, Y: y})
	}
	return points, nil
}

// numericFeature resolves a record feature as a float: the derived
// day_offset, a defined ratio, or a numeric raw field. ok is false for
// a ratio left undefined on this record.
func numericFeature(rec domain.Record, name string) (value float64, ok bool, err error) {
	if name == aggregate.KeyDayOffset {
		return float64(rec.DayOffset), true, nil
	}
	if raw, isField := rec.Fields[name]; isField {
		v, err := strconv.ParseFloat(strings.ReplaceAll(raw, ",", ""), 64)
		if err != nil {
			return 0, false, apperrors.NewFieldParseError(rec.Row, name, raw, "unparseable number", err)
		}
		return v, true, nil
	}
	if v, defined := rec.Ratio(name); defined {
		return v, true, nil
	}
	return 0, false, nil
}

// EvaluateStep produces the per-point prediction diagnostics for the
// fitted model.
type EvaluateStep struct{}

func (s *EvaluateStep) ID() string   { return StepIDEvaluate }
func (s *EvaluateStep) Name() string { return StepNameEvaluate }

func (s *EvaluateStep) Execute(ctx context.Context, state *RunState) error {
	if state.Trend == nil {
		return fmt.Errorf("evaluate requires a fitted model")
	}
	predictions, err := trend.EvaluatePoints(state.Trend.Fit, state.TrendPoints)
	if err != nil {
		return err
	}
	state.Trend.Predictions = predictions
	return nil
}
