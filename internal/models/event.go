package models

import "time"

// Pipeline event type constants
const (
	EventDataIngested  = "data_ingested"
	EventDataProcessed = "data_processed"
)

// PipelineEvent is the broadcast message exchanged on the data pipeline topic.
// The service publishes data_processed events and reacts to data_ingested.
type PipelineEvent struct {
	Event          string        `json:"event"`
	Timestamp      string        `json:"timestamp"`
	FilesProcessed int           `json:"files_processed,omitempty"`
	Summary        *BatchSummary `json:"summary,omitempty"`
}

// NewPipelineEvent builds an event stamped with the current time.
func NewPipelineEvent(event string) PipelineEvent {
	return PipelineEvent{
		Event:     event,
		Timestamp: time.Now().Format(time.RFC3339),
	}
}
