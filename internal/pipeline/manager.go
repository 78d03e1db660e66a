package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"trendcli/internal/config"
	apperrors "trendcli/internal/errors"
	"trendcli/internal/infrastructure"
)

// Manager executes dataset pipelines.
type Manager struct {
	logger      *slog.Logger
	tracer      trace.Tracer
	metrics     *Metrics
	broadcaster Broadcaster
}

// ManagerOption configures a Manager.
type ManagerOption func(*Manager)

// WithTracer sets the tracer used for per-step spans.
func WithTracer(tracer trace.Tracer) ManagerOption {
	return func(m *Manager) { m.tracer = tracer }
}

// WithMetrics sets the Prometheus collectors.
func WithMetrics(metrics *Metrics) ManagerOption {
	return func(m *Manager) { m.metrics = metrics }
}

// WithBroadcaster sets the progress event sink.
func WithBroadcaster(b Broadcaster) ManagerOption {
	return func(m *Manager) { m.broadcaster = b }
}

// NewManager creates a pipeline manager.
func NewManager(logger *slog.Logger, opts ...ManagerOption) *Manager {
	if logger == nil {
		logger = slog.Default()
	}
	m := &Manager{
		logger:      infrastructure.WithComponent(logger, "pipeline"),
		tracer:      otel.Tracer("trendcli/pipeline"),
		broadcaster: NopBroadcaster{},
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Run executes the full pipeline for one dataset and returns its run
// state. Stages run strictly in order; a failure in ingestion,
// normalization, derivation, or aggregation aborts the run. A
// degenerate trend fit is recorded on the state and the run still
// completes, because the aggregates stay valid without the model.
func (m *Manager) Run(ctx context.Context, cfg config.DatasetConfig) (*RunState, error) {
	ctx = infrastructure.EnsureTraceID(ctx)
	state := NewRunState(cfg.Name)
	steps := Steps(cfg)
	for _, step := range steps {
		state.Steps = append(state.Steps, NewStepState(step.ID(), step.Name()))
	}

	logger := m.logger.With(
		slog.String("dataset", cfg.Name),
		slog.String("run_id", state.RunID))

	logger.InfoContext(ctx, "pipeline run started",
		slog.String("source", cfg.Source.Path),
		slog.Int("steps", len(steps)))

	trendFailed := false
	for i, step := range steps {
		if err := ctx.Err(); err != nil {
			return state, fmt.Errorf("pipeline cancelled before step %s: %w", step.ID(), err)
		}

		stepState := state.Steps[i]

		if trendFailed && step.ID() == StepIDEvaluate {
			stepState.Skip("no fitted model")
			m.broadcast(state, stepState)
			continue
		}

		if err := m.runStep(ctx, step, stepState, state, logger); err != nil {
			if recoverableModelError(step.ID(), err) {
				state.TrendErr = err
				trendFailed = true
				logger.WarnContext(ctx, "trend fitting failed, aggregates remain valid",
					slog.String("step", step.ID()),
					slog.String("error", err.Error()))
				continue
			}
			m.countRun(cfg.Name, "failed")
			logger.ErrorContext(ctx, "pipeline run failed",
				slog.String("step", step.ID()),
				slog.String("error", err.Error()))
			return state, fmt.Errorf("step %s: %w", step.ID(), err)
		}

		if step.ID() == StepIDIngest && m.metrics != nil {
			m.metrics.RecordsTotal.WithLabelValues(cfg.Name).Add(float64(len(state.Table.Rows)))
		}
	}

	state.CompletedAt = time.Now()
	m.countRun(cfg.Name, "completed")

	logger.InfoContext(ctx, "pipeline run completed",
		slog.Int("records", len(state.Records)),
		slog.Int("aggregations", len(state.Aggregates)),
		slog.Bool("model_fitted", state.Trend != nil),
		slog.Duration("elapsed", state.CompletedAt.Sub(state.StartedAt)))

	return state, nil
}

// runStep executes one step with span, metrics, and progress wiring.
func (m *Manager) runStep(ctx context.Context, step Step, stepState *StepState, state *RunState, logger *slog.Logger) error {
	ctx, span := m.tracer.Start(ctx, "pipeline."+step.ID(),
		trace.WithAttributes(
			attribute.String("dataset", state.Dataset),
			attribute.String("run_id", state.RunID),
		))
	defer span.End()

	stepState.Start()
	m.broadcast(state, stepState)

	logger.InfoContext(ctx, "step started", slog.String("step", step.ID()))
	start := time.Now()

	err := step.Execute(ctx, state)
	elapsed := time.Since(start)

	if m.metrics != nil {
		m.metrics.StepDuration.WithLabelValues(state.Dataset, step.ID()).Observe(elapsed.Seconds())
	}

	if err != nil {
		stepState.Fail(err)
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		if m.metrics != nil {
			m.metrics.StepFailures.WithLabelValues(state.Dataset, step.ID()).Inc()
		}
		m.broadcast(state, stepState)
		return err
	}

	stepState.Complete("")
	span.SetStatus(codes.Ok, "")
	m.broadcast(state, stepState)

	logger.InfoContext(ctx, "step completed",
		slog.String("step", step.ID()),
		slog.Duration("elapsed", elapsed))
	return nil
}

// recoverableModelError reports whether err is a model-only failure on
// a modeling step: upstream results stay valid, the run continues.
func recoverableModelError(stepID string, err error) bool {
	if stepID != StepIDTrend {
		return false
	}
	var degenerate *apperrors.DegenerateInputError
	return errors.As(err, &degenerate)
}

func (m *Manager) countRun(dataset, status string) {
	if m.metrics != nil {
		m.metrics.RunsTotal.WithLabelValues(dataset, status).Inc()
	}
}

func (m *Manager) broadcast(state *RunState, stepState *StepState) {
	status, message := stepState.Snapshot()
	m.broadcaster.BroadcastProgress(ProgressEvent{
		RunID:     state.RunID,
		Dataset:   state.Dataset,
		StepID:    stepState.ID,
		StepName:  stepState.Name,
		Status:    status,
		Message:   message,
		Timestamp: time.Now(),
	})
}
