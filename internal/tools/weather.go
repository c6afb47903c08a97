package tools

import (
	"context"
	"fmt"

	"github.com/descope-sample-apps/connected-agent-sub002/internal/tool"
)

// WeatherCurrent fetches current conditions from the public weather API.
// No provider connection needed — the API takes no delegated credentials.
type WeatherCurrent struct {
	client *providerClient
}

func NewWeatherCurrent(client *providerClient) *WeatherCurrent {
	return &WeatherCurrent{client: client}
}

func (t *WeatherCurrent) Descriptor() tool.Descriptor {
	return tool.Descriptor{
		Name:        "weather_current",
		Description: "Get current weather conditions for a location.",
		Parameters: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"latitude": map[string]any{
					"type":    "number",
					"minimum": -90,
					"maximum": 90,
				},
				"longitude": map[string]any{
					"type":    "number",
					"minimum": -180,
					"maximum": 180,
				},
			},
			"required":             []any{"latitude", "longitude"},
			"additionalProperties": false,
		},
	}
}

func (t *WeatherCurrent) Execute(ctx context.Context, _ string, args map[string]any) tool.Result {
	lat, _ := args["latitude"].(float64)
	lon, _ := args["longitude"].(float64)

	var out struct {
		Current map[string]any `json:"current"`
	}
	path := fmt.Sprintf("/forecast?latitude=%.4f&longitude=%.4f&current=temperature_2m,wind_speed_10m,weather_code", lat, lon)
	if err := t.client.get(ctx, path, "", &out); err != nil {
		return tool.Failf(tool.ErrProviderError, "weather fetch failed: %v", err)
	}

	return tool.Succeed(map[string]any{
		"latitude":  lat,
		"longitude": lon,
		"current":   out.Current,
	})
}
