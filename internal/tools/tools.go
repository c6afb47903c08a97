// Package tools holds the concrete integrations the assistant can invoke.
// Every provider-backed tool acquires its token through the broker inside
// Execute and maps provider auth failures (401/403, expired, revoked) onto
// connection-required results — the user remediation is the same reconnect
// either way.
package tools

import (
	"fmt"
	"net/http"
	"time"

	"github.com/descope-sample-apps/connected-agent-sub002/internal/broker"
	"github.com/descope-sample-apps/connected-agent-sub002/internal/tool"
	"go.uber.org/zap"
)

// Provider ids. Must match the provider catalog.
const (
	ProviderCRM      = "custom-crm"
	ProviderCalendar = "google-calendar"
	ProviderDocs     = "google-docs"
)

// Scopes per provider operation.
const (
	ScopeContactsRead  = "contacts:read"
	ScopeContactsWrite = "contacts:write"
	ScopeDealsRead     = "deals:read"
	ScopeNotesRead     = "notes:read"

	ScopeCalendarRead  = "https://www.googleapis.com/auth/calendar.readonly"
	ScopeCalendarWrite = "https://www.googleapis.com/auth/calendar"

	ScopeDocsWrite = "https://www.googleapis.com/auth/documents"
)

// Config wires the tool set to its collaborators.
type Config struct {
	Broker *broker.Broker

	CRMBaseURL      string
	CalendarBaseURL string
	DocsBaseURL     string
	WeatherBaseURL  string

	// HTTPClient is shared by all provider calls. Defaults to a 15s-timeout client.
	HTTPClient *http.Client

	// Now is injectable for date-parsing tests. Defaults to time.Now.
	Now func() time.Time

	Logger *zap.Logger
}

// All builds the full built-in tool set.
func All(cfg Config) []tool.Tool {
	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 15 * time.Second}
	}
	now := cfg.Now
	if now == nil {
		now = time.Now
	}

	crm := newProviderClient(cfg.CRMBaseURL, httpClient)
	cal := newProviderClient(cfg.CalendarBaseURL, httpClient)
	docs := newProviderClient(cfg.DocsBaseURL, httpClient)
	weather := newProviderClient(cfg.WeatherBaseURL, httpClient)

	return []tool.Tool{
		NewCRMContactsSearch(cfg.Broker, crm),
		NewCRMContactCreate(cfg.Broker, crm),
		NewCRMDealLookup(cfg.Broker, crm),
		NewCRMDealNotes(cfg.Broker, crm),
		NewCalendarListEvents(cfg.Broker, cal),
		NewCalendarCreateEvent(cfg.Broker, cal),
		NewDocumentCreate(cfg.Broker, docs),
		NewWeatherCurrent(weather),
		NewParseDate(now),
	}
}

// connectionResult turns a broker authorization failure into the uniform
// connection-required result. NotConnected carries the tool's own declared
// scopes so the UI asks for exactly what the blocked operation needs;
// InsufficientScope carries the broker's exact set difference.
func connectionResult(b *broker.Broker, f *broker.AuthFailure, declaredScopes []string, activity string) tool.Result {
	name := b.ProviderName(f.Provider)

	missing := f.MissingScopes
	var message string
	switch f.Reason {
	case broker.InsufficientScope:
		message = fmt.Sprintf("Your %s connection is missing permissions needed to %s. Reconnect to grant them.", name, activity)
	default:
		missing = declaredScopes
		message = fmt.Sprintf("Connect your %s account to %s.", name, activity)
	}

	return tool.NeedConnection(tool.ConnectionSignal{
		Provider:      f.Provider,
		MissingScopes: missing,
		Message:       message,
		Action:        b.ConnectAction(f.Provider, missing),
	})
}

// reconnectResult handles the provider rejecting a token the broker thought
// was valid (revoked out-of-band, 401/403 mid-call).
func reconnectResult(b *broker.Broker, providerID string, declaredScopes []string, activity string) tool.Result {
	name := b.ProviderName(providerID)
	return tool.NeedConnection(tool.ConnectionSignal{
		Provider:      providerID,
		MissingScopes: declaredScopes,
		Message:       fmt.Sprintf("Your %s connection is no longer valid. Reconnect to %s.", name, activity),
		Action:        b.ConnectAction(providerID, declaredScopes),
	})
}

// stringArg reads an optional string argument.
func stringArg(args map[string]any, key string) string {
	v, _ := args[key].(string)
	return v
}
