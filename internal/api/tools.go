package api

import (
	"net/http"
)

// handleListTools implements GET /v1/tools — the capability advertisement
// the model-prompting layer turns into the model's tool definitions.
func (d *Dependencies) handleListTools(w http.ResponseWriter, _ *http.Request) {
	descs := d.Registry.List()
	out := make([]ToolInfo, 0, len(descs))
	for _, desc := range descs {
		params := desc.Parameters
		if params == nil {
			params = map[string]any{"type": "object", "properties": map[string]any{}}
		}
		out = append(out, ToolInfo{
			Name:        desc.Name,
			Description: desc.Description,
			Parameters:  params,
			Provider:    desc.Provider,
			Scopes:      desc.RequiredScopes,
		})
	}
	writeJSON(w, http.StatusOK, map[string]any{"tools": out})
}
