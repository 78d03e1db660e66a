// Package services hosts the application services bridging the pipeline
// to the CLI and the report API.
package services

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"sync"

	"golang.org/x/sync/errgroup"

	"trendcli/internal/config"
	"trendcli/internal/exporter"
	"trendcli/internal/pipeline"
)

// ReportService runs the configured dataset pipelines and owns their
// results. Results are handed out as read-only snapshots; callers must
// not mutate them.
type ReportService struct {
	cfg     *config.Config
	manager *pipeline.Manager
	logger  *slog.Logger

	mu   sync.RWMutex
	runs map[string]*pipeline.RunState
}

// NewReportService creates a report service.
func NewReportService(cfg *config.Config, manager *pipeline.Manager, logger *slog.Logger) *ReportService {
	if logger == nil {
		logger = slog.Default()
	}
	return &ReportService{
		cfg:     cfg,
		manager: manager,
		logger:  logger.With(slog.String("component", "report_service")),
		runs:    make(map[string]*pipeline.RunState),
	}
}

// RunAll executes every configured dataset pipeline. Datasets are
// independent, so they run concurrently; the first fatal pipeline error
// cancels the remaining runs.
func (s *ReportService) RunAll(ctx context.Context) error {
	g, ctx := errgroup.WithContext(ctx)

	for _, ds := range s.cfg.Datasets {
		g.Go(func() error {
			return s.runDataset(ctx, ds)
		})
	}
	return g.Wait()
}

// RunDataset executes the pipeline for one named dataset.
func (s *ReportService) RunDataset(ctx context.Context, name string) error {
	ds, ok := s.cfg.Dataset(name)
	if !ok {
		return fmt.Errorf("unknown dataset %q", name)
	}
	return s.runDataset(ctx, ds)
}

func (s *ReportService) runDataset(ctx context.Context, ds config.DatasetConfig) error {
	state, err := s.manager.Run(ctx, ds)
	if err != nil {
		return fmt.Errorf("dataset %s: %w", ds.Name, err)
	}
	s.mu.Lock()
	s.runs[ds.Name] = state
	s.mu.Unlock()
	return nil
}

// Datasets returns the configured dataset names, sorted.
func (s *ReportService) Datasets() []string {
	names := make([]string, 0, len(s.cfg.Datasets))
	for _, ds := range s.cfg.Datasets {
		names = append(names, ds.Name)
	}
	sort.Strings(names)
	return names
}

// Run returns the completed run state for a dataset, if one exists.
func (s *ReportService) Run(name string) (*pipeline.RunState, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	state, ok := s.runs[name]
	return state, ok
}

// Export writes every aggregation, series, and trend summary of a
// completed run under outDir.
func (s *ReportService) Export(ctx context.Context, name, outDir string) error {
	state, ok := s.Run(name)
	if !ok {
		return fmt.Errorf("dataset %q has no completed run", name)
	}

	writer := exporter.NewCSVWriter(outDir)

	for aggName, set := range state.Aggregates {
		file := fmt.Sprintf("%s_%s.csv", name, aggName)
		if err := writer.WriteBucketSet(file, set); err != nil {
			return fmt.Errorf("export aggregation %s: %w", aggName, err)
		}
	}
	for aggName, series := range state.Series {
		file := fmt.Sprintf("%s_%s_cumulative.csv", name, aggName)
		if err := writer.WriteSeries(file, series); err != nil {
			return fmt.Errorf("export series %s: %w", aggName, err)
		}
	}
	if state.Trend != nil {
		summary := exporter.TrendSummary{
			Dataset:     name,
			RunID:       state.RunID,
			XField:      state.Trend.XField,
			YField:      state.Trend.YField,
			Fit:         state.Trend.Fit,
			Predictions: state.Trend.Predictions,
		}
		file := fmt.Sprintf("%s_trend.json", name)
		if err := writer.WriteTrendSummary(file, summary); err != nil {
			return fmt.Errorf("export trend summary: %w", err)
		}
	}

	s.logger.InfoContext(ctx, "exported run outputs",
		slog.String("dataset", name),
		slog.String("out_dir", outDir),
		slog.Int("aggregations", len(state.Aggregates)),
		slog.Int("series", len(state.Series)),
		slog.Bool("trend", state.Trend != nil))
	return nil
}
