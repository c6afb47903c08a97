package api

import (
	"net/http"

	"github.com/descope-sample-apps/connected-agent-sub002/internal/dispatch"
	"go.uber.org/zap"
)

// handleDispatch implements POST /v1/tools/dispatch.
// The response body is the tool result's wire encoding: success payload,
// connection-required signal, or failure — always HTTP 200, because a tool
// outcome is data for the conversation layer, not a transport error.
func (d *Dependencies) handleDispatch(w http.ResponseWriter, r *http.Request) {
	var req DispatchRequest
	if err := readJSON(r, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, ErrorResp{Detail: "Invalid JSON body"})
		return
	}
	if req.Tool == "" {
		writeJSON(w, http.StatusBadRequest, ErrorResp{Detail: "tool is required"})
		return
	}
	if req.UserID == "" {
		writeJSON(w, http.StatusBadRequest, ErrorResp{Detail: "user_id is required"})
		return
	}

	client := clientFromContext(r.Context())
	res := d.Dispatcher.Dispatch(r.Context(), dispatch.Invocation{
		ToolName:      req.Tool,
		UserID:        req.UserID,
		Args:          req.Arguments,
		CorrelationID: req.CorrelationID,
	})

	d.Logger.Debug("tool dispatched",
		zap.String("client_id", client.ClientID),
		zap.String("tool", req.Tool),
		zap.String("user_id", req.UserID),
		zap.Int("kind", int(res.Kind)),
	)

	writeJSON(w, http.StatusOK, res)
}
