package tools

import (
	"context"
	"net/url"

	"github.com/descope-sample-apps/connected-agent-sub002/internal/broker"
	"github.com/descope-sample-apps/connected-agent-sub002/internal/provider"
	"github.com/descope-sample-apps/connected-agent-sub002/internal/tool"
)

// acquireOrSignal resolves a token for the tool's declared scopes, or returns
// the result to hand back when authorization is missing or broken.
func acquireOrSignal(ctx context.Context, b *broker.Broker, userID string, desc tool.Descriptor, activity string) (*broker.AccessToken, *tool.Result) {
	required := provider.NewScopeSet(desc.RequiredScopes...)
	tok, fail, err := b.AcquireToken(ctx, userID, desc.Provider, required)
	if err != nil {
		res := tool.Failf(tool.ErrProviderError, "token acquisition failed: %v", err)
		return nil, &res
	}
	if fail != nil {
		res := connectionResult(b, fail, desc.RequiredScopes, activity)
		return nil, &res
	}
	return tok, nil
}

// --- crm_contacts_search ---

// CRMContactsSearch finds contacts matching a free-text query.
type CRMContactsSearch struct {
	broker *broker.Broker
	client *providerClient
}

func NewCRMContactsSearch(b *broker.Broker, client *providerClient) *CRMContactsSearch {
	return &CRMContactsSearch{broker: b, client: client}
}

func (t *CRMContactsSearch) Descriptor() tool.Descriptor {
	return tool.Descriptor{
		Name:        "crm_contacts_search",
		Description: "Search CRM contacts by name, email, or company.",
		Parameters: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"query": map[string]any{
					"type":        "string",
					"description": "Free-text search over contact name, email, and company",
				},
			},
			"required":             []any{"query"},
			"additionalProperties": false,
		},
		Provider:       ProviderCRM,
		RequiredScopes: []string{ScopeContactsRead},
	}
}

func (t *CRMContactsSearch) Execute(ctx context.Context, userID string, args map[string]any) tool.Result {
	desc := t.Descriptor()
	const activity = "search contacts"

	tok, blocked := acquireOrSignal(ctx, t.broker, userID, desc, activity)
	if blocked != nil {
		return *blocked
	}

	var out struct {
		Contacts []map[string]any `json:"contacts"`
	}
	path := "/contacts?query=" + url.QueryEscape(stringArg(args, "query"))
	if err := t.client.get(ctx, path, tok.Value, &out); err != nil {
		if isAuthError(err) {
			return reconnectResult(t.broker, desc.Provider, desc.RequiredScopes, activity)
		}
		return tool.Failf(tool.ErrProviderError, "contact search failed: %v", err)
	}

	return tool.Succeed(map[string]any{
		"contacts": out.Contacts,
		"count":    len(out.Contacts),
	})
}

// --- crm_contact_create ---

// CRMContactCreate creates a new CRM contact.
type CRMContactCreate struct {
	broker *broker.Broker
	client *providerClient
}

func NewCRMContactCreate(b *broker.Broker, client *providerClient) *CRMContactCreate {
	return &CRMContactCreate{broker: b, client: client}
}

func (t *CRMContactCreate) Descriptor() tool.Descriptor {
	return tool.Descriptor{
		Name:        "crm_contact_create",
		Description: "Create a contact in the CRM.",
		Parameters: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"name":    map[string]any{"type": "string"},
				"email":   map[string]any{"type": "string"},
				"company": map[string]any{"type": "string"},
				"phone":   map[string]any{"type": "string"},
			},
			"required":             []any{"name", "email"},
			"additionalProperties": false,
		},
		Provider:       ProviderCRM,
		RequiredScopes: []string{ScopeContactsWrite},
	}
}

func (t *CRMContactCreate) Execute(ctx context.Context, userID string, args map[string]any) tool.Result {
	desc := t.Descriptor()
	const activity = "create contacts"

	tok, blocked := acquireOrSignal(ctx, t.broker, userID, desc, activity)
	if blocked != nil {
		return *blocked
	}

	var created map[string]any
	if err := t.client.post(ctx, "/contacts", tok.Value, args, &created); err != nil {
		if isAuthError(err) {
			return reconnectResult(t.broker, desc.Provider, desc.RequiredScopes, activity)
		}
		return tool.Failf(tool.ErrProviderError, "contact creation failed: %v", err)
	}
	return tool.Succeed(created)
}

// --- crm_deal_lookup ---

// CRMDealLookup fetches one deal with its pipeline state and summary fields.
type CRMDealLookup struct {
	broker *broker.Broker
	client *providerClient
}

func NewCRMDealLookup(b *broker.Broker, client *providerClient) *CRMDealLookup {
	return &CRMDealLookup{broker: b, client: client}
}

func (t *CRMDealLookup) Descriptor() tool.Descriptor {
	return tool.Descriptor{
		Name:        "crm_deal_lookup",
		Description: "Fetch a CRM deal by id, including stage, value, company, and summary.",
		Parameters: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"deal_id": map[string]any{
					"type":        "string",
					"description": "CRM deal identifier",
				},
			},
			"required":             []any{"deal_id"},
			"additionalProperties": false,
		},
		Provider:       ProviderCRM,
		RequiredScopes: []string{ScopeDealsRead},
	}
}

func (t *CRMDealLookup) Execute(ctx context.Context, userID string, args map[string]any) tool.Result {
	desc := t.Descriptor()
	const activity = "look up deals"

	tok, blocked := acquireOrSignal(ctx, t.broker, userID, desc, activity)
	if blocked != nil {
		return *blocked
	}

	var deal map[string]any
	path := "/deals/" + url.PathEscape(stringArg(args, "deal_id"))
	if err := t.client.get(ctx, path, tok.Value, &deal); err != nil {
		if isAuthError(err) {
			return reconnectResult(t.broker, desc.Provider, desc.RequiredScopes, activity)
		}
		return tool.Failf(tool.ErrProviderError, "deal lookup failed: %v", err)
	}
	return tool.Succeed(deal)
}

// --- crm_deal_notes ---

// CRMDealNotes fetches the notes attached to a deal.
type CRMDealNotes struct {
	broker *broker.Broker
	client *providerClient
}

func NewCRMDealNotes(b *broker.Broker, client *providerClient) *CRMDealNotes {
	return &CRMDealNotes{broker: b, client: client}
}

func (t *CRMDealNotes) Descriptor() tool.Descriptor {
	return tool.Descriptor{
		Name:        "crm_deal_notes",
		Description: "Fetch the notes recorded against a CRM deal.",
		Parameters: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"deal_id": map[string]any{
					"type":        "string",
					"description": "CRM deal identifier",
				},
			},
			"required":             []any{"deal_id"},
			"additionalProperties": false,
		},
		Provider:       ProviderCRM,
		RequiredScopes: []string{ScopeDealsRead, ScopeNotesRead},
	}
}

func (t *CRMDealNotes) Execute(ctx context.Context, userID string, args map[string]any) tool.Result {
	desc := t.Descriptor()
	const activity = "read deal notes"

	tok, blocked := acquireOrSignal(ctx, t.broker, userID, desc, activity)
	if blocked != nil {
		return *blocked
	}

	var out struct {
		Notes []map[string]any `json:"notes"`
	}
	path := "/deals/" + url.PathEscape(stringArg(args, "deal_id")) + "/notes"
	if err := t.client.get(ctx, path, tok.Value, &out); err != nil {
		if isAuthError(err) {
			return reconnectResult(t.broker, desc.Provider, desc.RequiredScopes, activity)
		}
		return tool.Failf(tool.ErrProviderError, "deal notes fetch failed: %v", err)
	}

	return tool.Succeed(map[string]any{
		"notes": out.Notes,
		"count": len(out.Notes),
	})
}
