package tool

import "context"

// Descriptor describes a registered tool: its name, what it does, the JSON
// Schema of its parameters, and the delegated access it needs. Created once
// at registration, immutable thereafter — declared scopes are evaluated at
// dispatch time, never mutated.
type Descriptor struct {
	Name        string
	Description string
	// Parameters is a JSON Schema object (type/properties/required).
	// nil means the tool takes no arguments.
	Parameters map[string]any
	// Provider is the external system the tool needs delegated access to.
	// Empty for tools that need no authorization (weather, date parsing).
	Provider string
	// RequiredScopes is the scope set the tool needs against Provider.
	RequiredScopes []string
}

// Tool is a named unit of capability the model can invoke. Implementations
// acquire their own tokens through the broker inside Execute and map every
// provider outcome onto a Result — nothing else crosses this boundary.
type Tool interface {
	Descriptor() Descriptor

	// Execute performs the tool's action on behalf of userID.
	// Provider 401/403 must become a connection-required result, not a failure:
	// an expired or revoked token needs the same user remediation as one that
	// was never granted.
	Execute(ctx context.Context, userID string, args map[string]any) Result
}
