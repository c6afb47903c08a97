package api

import (
	"net/http"
)

// handleRunWorkflow implements POST /v1/workflows/run.
func (d *Dependencies) handleRunWorkflow(w http.ResponseWriter, r *http.Request) {
	var req RunWorkflowRequest
	if err := readJSON(r, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, ErrorResp{Detail: "Invalid JSON body"})
		return
	}
	if req.Workflow == "" {
		writeJSON(w, http.StatusBadRequest, ErrorResp{Detail: "workflow is required"})
		return
	}
	if req.UserID == "" {
		writeJSON(w, http.StatusBadRequest, ErrorResp{Detail: "user_id is required"})
		return
	}

	spec, ok := d.Workflows.Get(req.Workflow)
	if !ok {
		writeJSON(w, http.StatusNotFound, ErrorResp{Detail: "unknown workflow: " + req.Workflow})
		return
	}

	res := d.Engine.Run(r.Context(), spec, req.UserID, req.Arguments)
	writeJSON(w, http.StatusOK, toWorkflowResp(res))
}

// handleListWorkflows implements GET /v1/workflows.
func (d *Dependencies) handleListWorkflows(w http.ResponseWriter, _ *http.Request) {
	specs := d.Workflows.List()
	out := make([]WorkflowInfo, 0, len(specs))
	for _, s := range specs {
		steps := make([]string, 0, len(s.Steps))
		for _, st := range s.Steps {
			steps = append(steps, st.Name)
		}
		out = append(out, WorkflowInfo{
			Name:        s.Name,
			Description: s.Description,
			Steps:       steps,
		})
	}
	writeJSON(w, http.StatusOK, map[string]any{"workflows": out})
}
