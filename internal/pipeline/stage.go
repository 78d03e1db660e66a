package pipeline

import (
	"context"
)

// Step identifiers, in execution order.
const (
	StepIDIngest    = "ingest"
	StepIDNormalize = "normalize"
	StepIDDerive    = "derive"
	StepIDAggregate = "aggregate"
	StepIDTrend     = "trend"
	StepIDEvaluate  = "evaluate"
)

// Step human-readable names.
const (
	StepNameIngest    = "Ingestion"
	StepNameNormalize = "Normalization"
	StepNameDerive    = "Feature Derivation"
	StepNameAggregate = "Aggregation"
	StepNameTrend     = "Trend Fitting"
	StepNameEvaluate  = "Prediction Evaluation"
)

// Step is a single pipeline stage. Execute reads its inputs from state
// and writes its own output back; it never modifies another stage's
// output.
type Step interface {
	// ID returns the unique identifier for this step.
	ID() string

	// Name returns the human-readable name for this step.
	Name() string

	// Execute runs the step against the run state.
	Execute(ctx context.Context, state *RunState) error
}
