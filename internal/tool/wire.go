package tool

import (
	"encoding/json"
	"fmt"
)

// Wire JSON shape consumed by the conversation/UI layer:
//
//	{"success": true, "data": {...}}
//	{"success": false, "error": "connection_required", "ui": {
//	    "type": "connection_required", "service": "...", "message": "...",
//	    "connectButton": {"text": "...", "action": "connect://..."},
//	    "requiredScopes": ["..."]}}
//	{"success": false, "error": "<kind>", "message": "..."}

const uiTypeConnectionRequired = "connection_required"

type wireButton struct {
	Text   string `json:"text"`
	Action string `json:"action"`
}

type wireUI struct {
	Type           string     `json:"type"`
	Service        string     `json:"service"`
	Message        string     `json:"message"`
	ConnectButton  wireButton `json:"connectButton"`
	RequiredScopes []string   `json:"requiredScopes"`
}

type wireResult struct {
	Success bool           `json:"success"`
	Data    map[string]any `json:"data,omitempty"`
	Error   string         `json:"error,omitempty"`
	Message string         `json:"message,omitempty"`
	UI      *wireUI        `json:"ui,omitempty"`
}

// MarshalJSON encodes the result in the wire shape above.
func (r Result) MarshalJSON() ([]byte, error) {
	switch r.Kind {
	case KindSuccess:
		return json.Marshal(wireResult{Success: true, Data: r.Data})
	case KindConnectionRequired:
		sig := r.Signal
		if sig == nil {
			return nil, fmt.Errorf("tool: connection-required result without signal")
		}
		scopes := sig.MissingScopes
		if scopes == nil {
			scopes = []string{}
		}
		return json.Marshal(wireResult{
			Success: false,
			Error:   uiTypeConnectionRequired,
			UI: &wireUI{
				Type:           uiTypeConnectionRequired,
				Service:        sig.Provider,
				Message:        sig.Message,
				ConnectButton:  wireButton{Text: "Connect", Action: sig.Action},
				RequiredScopes: scopes,
			},
		})
	case KindFailure:
		return json.Marshal(wireResult{
			Success: false,
			Error:   r.ErrKind.String(),
			Message: r.Message,
		})
	default:
		return nil, fmt.Errorf("tool: cannot marshal result with kind %d", r.Kind)
	}
}

// UnmarshalJSON decodes the wire shape back into a tagged Result.
// Round-trips provider id and missing scopes exactly.
func (r *Result) UnmarshalJSON(data []byte) error {
	var w wireResult
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}

	switch {
	case w.Success:
		*r = Succeed(w.Data)
	case w.UI != nil && w.UI.Type == uiTypeConnectionRequired:
		*r = NeedConnection(ConnectionSignal{
			Provider:      w.UI.Service,
			MissingScopes: w.UI.RequiredScopes,
			Message:       w.UI.Message,
			Action:        w.UI.ConnectButton.Action,
		})
	default:
		*r = Fail(errorKindFromString(w.Error), w.Message)
	}
	return nil
}
