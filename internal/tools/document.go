package tools

import (
	"context"

	"github.com/descope-sample-apps/connected-agent-sub002/internal/broker"
	"github.com/descope-sample-apps/connected-agent-sub002/internal/tool"
)

// DocumentCreate creates a document in the user's document store.
type DocumentCreate struct {
	broker *broker.Broker
	client *providerClient
}

func NewDocumentCreate(b *broker.Broker, client *providerClient) *DocumentCreate {
	return &DocumentCreate{broker: b, client: client}
}

func (t *DocumentCreate) Descriptor() tool.Descriptor {
	return tool.Descriptor{
		Name:        "document_create",
		Description: "Create a document with the given title and content.",
		Parameters: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"title":   map[string]any{"type": "string"},
				"content": map[string]any{"type": "string"},
			},
			"required":             []any{"title"},
			"additionalProperties": false,
		},
		Provider:       ProviderDocs,
		RequiredScopes: []string{ScopeDocsWrite},
	}
}

func (t *DocumentCreate) Execute(ctx context.Context, userID string, args map[string]any) tool.Result {
	desc := t.Descriptor()
	const activity = "create documents"

	tok, blocked := acquireOrSignal(ctx, t.broker, userID, desc, activity)
	if blocked != nil {
		return *blocked
	}

	var created map[string]any
	if err := t.client.post(ctx, "/documents", tok.Value, args, &created); err != nil {
		if isAuthError(err) {
			return reconnectResult(t.broker, desc.Provider, desc.RequiredScopes, activity)
		}
		return tool.Failf(tool.ErrProviderError, "document creation failed: %v", err)
	}
	return tool.Succeed(created)
}
