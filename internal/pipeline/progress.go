package pipeline

import (
	"time"
)

// ProgressEvent describes a step state transition during a run. Events
// are delivered to an optional Broadcaster, typically the websocket hub
// of the report server.
type ProgressEvent struct {
	RunID     string     `json:"run_id"`
	Dataset   string     `json:"dataset"`
	StepID    string     `json:"step_id"`
	StepName  string     `json:"step_name"`
	Status    StepStatus `json:"status"`
	Message   string     `json:"message,omitempty"`
	Timestamp time.Time  `json:"timestamp"`
}

// Broadcaster delivers progress events to interested clients. Implementations
// must not block the pipeline.
type Broadcaster interface {
	BroadcastProgress(event ProgressEvent)
}

// NopBroadcaster discards all events.
type NopBroadcaster struct{}

func (NopBroadcaster) BroadcastProgress(ProgressEvent) {}
