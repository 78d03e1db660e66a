package pipeline

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"trendcli/internal/trend"
	"trendcli/pkg/contracts/domain"
)

// StepStatus represents the current status of a pipeline step.
type StepStatus string

const (
	StepStatusPending   StepStatus = "pending"
	StepStatusActive    StepStatus = "active"
	StepStatusCompleted StepStatus = "completed"
	StepStatusFailed    StepStatus = "failed"
	StepStatusSkipped   StepStatus = "skipped"
)

// StepState is the runtime state of one step within a run.
type StepState struct {
	mu        sync.RWMutex
	ID        string     `json:"id"`
	Name      string     `json:"name"`
	Status    StepStatus `json:"status"`
	StartTime *time.Time `json:"start_time,omitempty"`
	EndTime   *time.Time `json:"end_time,omitempty"`
	Message   string     `json:"message,omitempty"`
	Err       error      `json:"-"`
}

// NewStepState creates a pending step state.
func NewStepState(id, name string) *StepState {
	return &StepState{ID: id, Name: name, Status: StepStatusPending}
}

// Start marks the step active.
func (s *StepState) Start() {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := time.Now()
	s.StartTime = &now
	s.Status = StepStatusActive
}

// Complete marks the step completed.
func (s *StepState) Complete(message string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := time.Now()
	s.EndTime = &now
	s.Status = StepStatusCompleted
	s.Message = message
}

// Fail marks the step failed with err.
func (s *StepState) Fail(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := time.Now()
	s.EndTime = &now
	s.Status = StepStatusFailed
	s.Err = err
	if err != nil {
		s.Message = err.Error()
	}
}

// Skip marks the step skipped with a reason.
func (s *StepState) Skip(reason string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := time.Now()
	s.EndTime = &now
	s.Status = StepStatusSkipped
	s.Message = reason
}

// Snapshot returns the step's externally visible state.
func (s *StepState) Snapshot() (StepStatus, string) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.Status, s.Message
}

// RunState carries everything a run produces. Each stage writes its own
// output exactly once; consumers downstream of the run treat all of it
// as read-only.
type RunState struct {
	RunID   string
	Dataset string

	StartedAt   time.Time
	CompletedAt time.Time

	Table       *domain.Table
	Canonical   []domain.RawRecord
	Records     []domain.Record
	Aggregates  map[string]domain.BucketSet
	Series      map[string]domain.Series
	TrendPoints []trend.Point
	Trend       *domain.TrendReport

	// TrendErr records a degenerate model fit. Aggregates remain valid
	// and usable independent of model success.
	TrendErr error

	Steps []*StepState
}

// NewRunState creates a run state with a fresh run ID.
func NewRunState(dataset string) *RunState {
	return &RunState{
		RunID:      uuid.New().String(),
		Dataset:    dataset,
		StartedAt:  time.Now(),
		Aggregates: make(map[string]domain.BucketSet),
		Series:     make(map[string]domain.Series),
	}
}

// Step returns the step state with the given ID, if present.
func (s *RunState) Step(id string) (*StepState, bool) {
	for _, step := range s.Steps {
		if step.ID == id {
			return step, true
		}
	}
	return nil, false
}
