package api

import (
	"github.com/descope-sample-apps/connected-agent-sub002/internal/tool"
	"github.com/descope-sample-apps/connected-agent-sub002/internal/workflow"
)

// ErrorResp is the generic error body.
type ErrorResp struct {
	Detail string `json:"detail"`
}

// --- POST /v1/tools/dispatch ---

// DispatchRequest is the JSON body for a single tool dispatch.
type DispatchRequest struct {
	Tool          string         `json:"tool"`
	Arguments     map[string]any `json:"arguments"`
	UserID        string         `json:"user_id"`
	CorrelationID string         `json:"correlation_id,omitempty"`
}

// The response body is the tool.Result wire encoding directly.

// --- POST /v1/workflows/run ---

// RunWorkflowRequest is the JSON body for a workflow run.
type RunWorkflowRequest struct {
	Workflow  string         `json:"workflow"`
	Arguments map[string]any `json:"arguments"`
	UserID    string         `json:"user_id"`
}

// StepResp is one executed workflow step on the wire.
type StepResp struct {
	Name            string  `json:"name"`
	Tool            string  `json:"tool"`
	Critical        bool    `json:"critical"`
	Success         bool    `json:"success"`
	ExecutionTimeMs float64 `json:"executionTimeMs"`
	Error           *string `json:"error,omitempty"`
}

// WorkflowResp is the aggregate workflow outcome on the wire. The ui field
// carries the same connection-required shape as a single tool dispatch, so
// the consuming UI has one reconnect code path regardless of call depth.
type WorkflowResp struct {
	Success         bool           `json:"success"`
	Workflow        string         `json:"workflow"`
	CorrelationID   string         `json:"correlation_id"`
	ExecutionTimeMs float64        `json:"executionTimeMs"`
	Steps           []StepResp     `json:"steps"`
	Data            map[string]any `json:"data,omitempty"`
	Error           string         `json:"error,omitempty"`
	UI              map[string]any `json:"ui,omitempty"`
}

// --- GET /v1/tools, GET /v1/workflows ---

// ToolInfo advertises one tool to the model-prompting layer.
type ToolInfo struct {
	Name        string         `json:"name"`
	Description string         `json:"description"`
	Parameters  map[string]any `json:"parameters"`
	Provider    string         `json:"provider,omitempty"`
	Scopes      []string       `json:"scopes,omitempty"`
}

// WorkflowInfo advertises one workflow.
type WorkflowInfo struct {
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Steps       []string `json:"steps"`
}

// --- GET /v1/connections/{provider}/authorize-url ---

// AuthorizeURLResp carries the identity system's redirect URL.
type AuthorizeURLResp struct {
	URL string `json:"url"`
}

// toWorkflowResp maps an engine result onto the wire shape.
func toWorkflowResp(res workflow.Result) WorkflowResp {
	steps := make([]StepResp, 0, len(res.Steps))
	for _, s := range res.Steps {
		sr := StepResp{
			Name:            s.Name,
			Tool:            s.Tool,
			Critical:        s.Critical,
			Success:         s.Success,
			ExecutionTimeMs: s.ElapsedMs,
		}
		if s.Error != "" {
			e := s.Error
			sr.Error = &e
		}
		steps = append(steps, sr)
	}

	resp := WorkflowResp{
		Success:         res.Success,
		Workflow:        res.Workflow,
		CorrelationID:   res.CorrelationID,
		ExecutionTimeMs: res.ElapsedMs,
		Steps:           steps,
		Data:            res.Data,
	}

	if res.Signal != nil {
		resp.Error = "connection_required"
		resp.UI = connectionUI(res.Signal)
	} else if !res.Success {
		resp.Error = "workflow_failed"
	}
	return resp
}

// connectionUI renders a ConnectionSignal in the same shape tool.Result uses.
func connectionUI(sig *tool.ConnectionSignal) map[string]any {
	scopes := sig.MissingScopes
	if scopes == nil {
		scopes = []string{}
	}
	return map[string]any{
		"type":    "connection_required",
		"service": sig.Provider,
		"message": sig.Message,
		"connectButton": map[string]any{
			"text":   "Connect",
			"action": sig.Action,
		},
		"requiredScopes": scopes,
	}
}
