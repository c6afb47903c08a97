package storage

import "time"

// EventWriter is the interface for recording tool invocation outcomes.
// Write() must NEVER block the caller.
type EventWriter interface {
	Write(event *InvocationEvent)
	Close()
}

// InvocationEvent is one dispatched tool call's outcome, persisted for
// operators and analytics.
type InvocationEvent struct {
	RequestID     string
	CorrelationID string
	Timestamp     time.Time
	UserID        string
	ToolName      string
	WorkflowName  string // empty for direct dispatches
	StepName      string // empty for direct dispatches
	Outcome       string // "success", "connection_required", "failure"
	ErrorKind     string // empty unless Outcome == "failure"
	Provider      string
	MissingScopes []string
	Message       string
	LatencyMs     float32
	Source        string // "dispatch" or "workflow"
}
