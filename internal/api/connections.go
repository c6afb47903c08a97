package api

import (
	"errors"
	"net/http"
	"strings"

	"github.com/descope-sample-apps/connected-agent-sub002/internal/broker"
	"go.uber.org/zap"
)

// handleAuthorizeURL implements GET /v1/connections/{provider}/authorize-url.
// Passthrough to the identity system's URL issuance: the client re-drives the
// OAuth handshake by redirecting the user to the returned URL.
func (d *Dependencies) handleAuthorizeURL(w http.ResponseWriter, r *http.Request) {
	providerID := r.PathValue("provider")
	q := r.URL.Query()

	userID := q.Get("user_id")
	if userID == "" {
		writeJSON(w, http.StatusBadRequest, ErrorResp{Detail: "user_id is required"})
		return
	}
	redirect := q.Get("redirect")
	if redirect == "" {
		writeJSON(w, http.StatusBadRequest, ErrorResp{Detail: "redirect is required"})
		return
	}

	var scopes []string
	if raw := q.Get("scopes"); raw != "" {
		scopes = strings.Fields(raw)
	}

	url, err := d.Broker.AuthorizeURL(r.Context(), broker.AuthorizeRequest{
		Provider:       providerID,
		UserID:         userID,
		RequiredScopes: scopes,
		RedirectURL:    redirect,
		State:          q.Get("state"),
	})
	if err != nil {
		if errors.Is(err, broker.ErrUnknownProvider) {
			writeJSON(w, http.StatusNotFound, ErrorResp{Detail: "unknown provider: " + providerID})
			return
		}
		d.Logger.Error("authorize url issuance failed",
			zap.String("provider", providerID),
			zap.Error(err),
		)
		writeJSON(w, http.StatusBadGateway, ErrorResp{Detail: "identity service unavailable"})
		return
	}

	writeJSON(w, http.StatusOK, AuthorizeURLResp{URL: url})
}
