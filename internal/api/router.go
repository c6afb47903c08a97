package api

import (
	"net/http"

	"github.com/descope-sample-apps/connected-agent-sub002/internal/auth"
	"github.com/descope-sample-apps/connected-agent-sub002/internal/broker"
	"github.com/descope-sample-apps/connected-agent-sub002/internal/dispatch"
	"github.com/descope-sample-apps/connected-agent-sub002/internal/tool"
	"github.com/descope-sample-apps/connected-agent-sub002/internal/workflow"
	"go.uber.org/zap"
)

// Dependencies holds shared state injected into all HTTP handlers.
type Dependencies struct {
	Registry   *tool.Registry
	Dispatcher *dispatch.Dispatcher
	Engine     *workflow.Engine
	Workflows  *workflow.Catalog
	Broker     *broker.Broker
	Auth       auth.Authenticator
	Logger     *zap.Logger
}

// NewRouter builds the HTTP mux with all routes wired up.
func NewRouter(deps *Dependencies) http.Handler {
	mux := http.NewServeMux()

	// Orchestration surface (auth required via Bearer cak_ key)
	mux.HandleFunc("POST /v1/tools/dispatch", deps.authMiddleware(deps.handleDispatch))
	mux.HandleFunc("POST /v1/workflows/run", deps.authMiddleware(deps.handleRunWorkflow))
	mux.HandleFunc("GET /v1/tools", deps.authMiddleware(deps.handleListTools))
	mux.HandleFunc("GET /v1/workflows", deps.authMiddleware(deps.handleListWorkflows))
	mux.HandleFunc("GET /v1/connections/{provider}/authorize-url", deps.authMiddleware(deps.handleAuthorizeURL))

	// Health check
	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	return corsMiddleware(requestLogging(mux, deps.Logger))
}
