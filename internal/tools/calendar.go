package tools

import (
	"context"
	"net/url"

	"github.com/descope-sample-apps/connected-agent-sub002/internal/broker"
	"github.com/descope-sample-apps/connected-agent-sub002/internal/tool"
)

// --- calendar_list_events ---

// CalendarListEvents lists the user's events for one day.
type CalendarListEvents struct {
	broker *broker.Broker
	client *providerClient
}

func NewCalendarListEvents(b *broker.Broker, client *providerClient) *CalendarListEvents {
	return &CalendarListEvents{broker: b, client: client}
}

func (t *CalendarListEvents) Descriptor() tool.Descriptor {
	return tool.Descriptor{
		Name:        "calendar_list_events",
		Description: "List calendar events for a given date.",
		Parameters: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"date": map[string]any{
					"type":        "string",
					"description": "Date in YYYY-MM-DD form",
					"pattern":     `^\d{4}-\d{2}-\d{2}$`,
				},
			},
			"required":             []any{"date"},
			"additionalProperties": false,
		},
		Provider:       ProviderCalendar,
		RequiredScopes: []string{ScopeCalendarRead},
	}
}

func (t *CalendarListEvents) Execute(ctx context.Context, userID string, args map[string]any) tool.Result {
	desc := t.Descriptor()
	const activity = "read your calendar"

	tok, blocked := acquireOrSignal(ctx, t.broker, userID, desc, activity)
	if blocked != nil {
		return *blocked
	}

	var out struct {
		Events []map[string]any `json:"events"`
	}
	path := "/events?date=" + url.QueryEscape(stringArg(args, "date"))
	if err := t.client.get(ctx, path, tok.Value, &out); err != nil {
		if isAuthError(err) {
			return reconnectResult(t.broker, desc.Provider, desc.RequiredScopes, activity)
		}
		return tool.Failf(tool.ErrProviderError, "calendar listing failed: %v", err)
	}

	return tool.Succeed(map[string]any{
		"events": out.Events,
		"count":  len(out.Events),
	})
}

// --- calendar_create_event ---

// CalendarCreateEvent creates an event on the user's primary calendar.
type CalendarCreateEvent struct {
	broker *broker.Broker
	client *providerClient
}

func NewCalendarCreateEvent(b *broker.Broker, client *providerClient) *CalendarCreateEvent {
	return &CalendarCreateEvent{broker: b, client: client}
}

func (t *CalendarCreateEvent) Descriptor() tool.Descriptor {
	return tool.Descriptor{
		Name:        "calendar_create_event",
		Description: "Create a calendar event.",
		Parameters: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"title": map[string]any{"type": "string"},
				"date": map[string]any{
					"type":    "string",
					"pattern": `^\d{4}-\d{2}-\d{2}$`,
				},
				"start_time": map[string]any{
					"type":        "string",
					"description": "Start time in HH:MM (24h), defaults to 09:00",
				},
				"duration_minutes": map[string]any{
					"type":    "integer",
					"minimum": 1,
				},
				"attendees": map[string]any{
					"type":  "array",
					"items": map[string]any{"type": "string"},
				},
			},
			"required":             []any{"title", "date"},
			"additionalProperties": false,
		},
		Provider:       ProviderCalendar,
		RequiredScopes: []string{ScopeCalendarWrite},
	}
}

func (t *CalendarCreateEvent) Execute(ctx context.Context, userID string, args map[string]any) tool.Result {
	desc := t.Descriptor()
	const activity = "create calendar events"

	tok, blocked := acquireOrSignal(ctx, t.broker, userID, desc, activity)
	if blocked != nil {
		return *blocked
	}

	var created map[string]any
	if err := t.client.post(ctx, "/events", tok.Value, args, &created); err != nil {
		if isAuthError(err) {
			return reconnectResult(t.broker, desc.Provider, desc.RequiredScopes, activity)
		}
		return tool.Failf(tool.ErrProviderError, "event creation failed: %v", err)
	}
	return tool.Succeed(created)
}
