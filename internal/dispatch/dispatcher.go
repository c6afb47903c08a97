package dispatch

import (
	"context"
	"fmt"
	"time"

	"github.com/descope-sample-apps/connected-agent-sub002/internal/storage"
	"github.com/descope-sample-apps/connected-agent-sub002/internal/tool"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Invocation is one model-issued tool call: name, caller identity, raw
// arguments, and a correlation id for UI progress reporting. Created per
// call, discarded after.
type Invocation struct {
	ToolName      string
	UserID        string
	Args          map[string]any
	CorrelationID string

	// Workflow/Step identify the enclosing workflow step, if any.
	// Only used for event attribution.
	Workflow string
	Step     string
}

// Dispatcher maps model tool calls onto registered tools: lookup, argument
// validation, execution with panic containment, and result normalization.
// No retries happen here — a connection gap needs user action, and transient
// provider failures are the caller's call to retry.
type Dispatcher struct {
	registry *tool.Registry
	writer   storage.EventWriter
	logger   *zap.Logger
}

// New creates a Dispatcher over the given registry.
func New(registry *tool.Registry, writer storage.EventWriter, logger *zap.Logger) *Dispatcher {
	return &Dispatcher{
		registry: registry,
		writer:   writer,
		logger:   logger,
	}
}

// Dispatch resolves and executes one tool invocation.
//
//  1. Unknown name → Failure(unknown_tool); no tool code runs.
//  2. Schema validation failure → Failure(invalid_arguments); Execute is
//     never called, so repeated invalid dispatches never touch the network.
//  3. Execute, with panics converted to Failure(tool_crashed) — one tool's
//     defect must not take down the conversation transport.
//  4. Everything else passes through verbatim; in particular a
//     connection-required result is forwarded untouched so the caller sees
//     the exact provider and scopes needed.
func (d *Dispatcher) Dispatch(ctx context.Context, inv Invocation) tool.Result {
	start := time.Now()

	if inv.CorrelationID == "" {
		inv.CorrelationID = uuid.New().String()
	}

	t, schema, ok := d.registry.Lookup(inv.ToolName)
	if !ok {
		res := tool.Failf(tool.ErrUnknownTool, "no tool registered with name %q", inv.ToolName)
		d.writeEvent(inv, res, time.Since(start))
		return res
	}

	if verr := tool.ValidateArgs(schema, inv.Args); verr != nil {
		res := tool.Fail(tool.ErrInvalidArguments, verr.Details)
		d.writeEvent(inv, res, time.Since(start))
		return res
	}

	res := d.safeExecute(ctx, t, inv)
	d.writeEvent(inv, res, time.Since(start))
	return res
}

// safeExecute runs the tool with panic containment.
func (d *Dispatcher) safeExecute(ctx context.Context, t tool.Tool, inv Invocation) (res tool.Result) {
	defer func() {
		if r := recover(); r != nil {
			d.logger.Error("tool panicked",
				zap.String("tool_name", inv.ToolName),
				zap.String("correlation_id", inv.CorrelationID),
				zap.Any("panic", r),
			)
			res = tool.Failf(tool.ErrToolCrashed, "tool %q crashed: %v", inv.ToolName, r)
		}
	}()
	return t.Execute(ctx, inv.UserID, inv.Args)
}

// writeEvent fires an invocation event to the async writer.
func (d *Dispatcher) writeEvent(inv Invocation, res tool.Result, elapsed time.Duration) {
	if d.writer == nil {
		return
	}

	event := &storage.InvocationEvent{
		RequestID:     uuid.New().String(),
		CorrelationID: inv.CorrelationID,
		Timestamp:     time.Now(),
		UserID:        inv.UserID,
		ToolName:      inv.ToolName,
		WorkflowName:  inv.Workflow,
		StepName:      inv.Step,
		LatencyMs:     float32(float64(elapsed) / float64(time.Millisecond)),
		Source:        "dispatch",
	}
	if inv.Workflow != "" {
		event.Source = "workflow"
	}

	switch res.Kind {
	case tool.KindSuccess:
		event.Outcome = "success"
	case tool.KindConnectionRequired:
		event.Outcome = "connection_required"
		if res.Signal != nil {
			event.Provider = res.Signal.Provider
			event.MissingScopes = res.Signal.MissingScopes
			event.Message = res.Signal.Message
		}
	case tool.KindFailure:
		event.Outcome = "failure"
		event.ErrorKind = res.ErrKind.String()
		event.Message = res.Message
	default:
		event.Outcome = fmt.Sprintf("unknown(%d)", res.Kind)
	}

	d.writer.Write(event)
}
