package workflow

import (
	"context"
	"time"

	"github.com/descope-sample-apps/connected-agent-sub002/internal/dispatch"
	"github.com/descope-sample-apps/connected-agent-sub002/internal/tool"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Engine runs workflow specs by driving the dispatcher one step at a time.
// It owns exactly one policy: critical steps stop the run, best-effort steps
// don't. Everything else a workflow does is declared in its Spec.
type Engine struct {
	dispatcher *dispatch.Dispatcher
	logger     *zap.Logger
}

// NewEngine creates an Engine over the given dispatcher.
func NewEngine(dispatcher *dispatch.Dispatcher, logger *zap.Logger) *Engine {
	return &Engine{
		dispatcher: dispatcher,
		logger:     logger,
	}
}

// Run executes the spec's steps strictly in order on behalf of userID.
//
// Per step: arguments are resolved against the binding scope, the step is
// dispatched, and its outcome recorded with timing. A successful step's
// output becomes visible to later bindings. A failed critical step stops the
// run immediately — the steps completed so far are still returned for
// partial-progress reporting; later steps never execute. A failed best-effort
// step is recorded and the run continues.
//
// The aggregate Success flag is true iff every critical step succeeded.
func (e *Engine) Run(ctx context.Context, spec Spec, userID string, input map[string]any) Result {
	start := time.Now()
	correlationID := uuid.New().String()

	sc := newScope(input)
	result := Result{
		Workflow:      spec.Name,
		CorrelationID: correlationID,
		Success:       true,
	}

	for _, step := range spec.Steps {
		stepStart := time.Now()

		args := sc.resolveArgs(step.Args)
		res := e.dispatcher.Dispatch(ctx, dispatch.Invocation{
			ToolName:      step.Tool,
			UserID:        userID,
			Args:          args,
			CorrelationID: correlationID,
			Workflow:      spec.Name,
			Step:          step.Name,
		})

		stepResult := StepResult{
			Name:      step.Name,
			Tool:      step.Tool,
			Critical:  step.Critical,
			ElapsedMs: float64(time.Since(stepStart)) / float64(time.Millisecond),
		}

		switch res.Kind {
		case tool.KindSuccess:
			stepResult.Success = true
			stepResult.Output = res.Data
			sc.record(step.Name, res.Data)

		case tool.KindConnectionRequired:
			stepResult.Signal = res.Signal
			if res.Signal != nil {
				stepResult.Error = res.Signal.Message
			}

		case tool.KindFailure:
			stepResult.Error = res.Message
		}

		result.Steps = append(result.Steps, stepResult)

		if !stepResult.Success {
			if step.Critical {
				result.Success = false
				result.Signal = stepResult.Signal
				e.logger.Warn("workflow stopped on critical step",
					zap.String("workflow", spec.Name),
					zap.String("step", step.Name),
					zap.String("correlation_id", correlationID),
					zap.String("error", stepResult.Error),
				)
				break
			}
			e.logger.Debug("best-effort step failed, continuing",
				zap.String("workflow", spec.Name),
				zap.String("step", step.Name),
				zap.String("correlation_id", correlationID),
			)
		}
	}

	if result.Success {
		result.Data = e.assembleOutput(spec, sc)
	}
	result.ElapsedMs = float64(time.Since(start)) / float64(time.Millisecond)
	return result
}

// assembleOutput materializes the spec's output bindings. References into
// failed best-effort steps simply resolve to nothing.
func (e *Engine) assembleOutput(spec Spec, sc *scope) map[string]any {
	if len(spec.Output) == 0 {
		return nil
	}
	out := make(map[string]any, len(spec.Output))
	for k, v := range spec.Output {
		if val, ok := sc.resolveValue(v); ok {
			out[k] = val
		}
	}
	return out
}
