package judge

import (
	"encoding/json"
	"fmt"
	"strings"

	"hotel-curator/internal/domain"
)

// responseSchema constrains providers that accept a JSON schema for structured output.
var responseSchema = map[string]any{
	"type": "object",
	"properties": map[string]any{
		"results": map[string]any{
			"type": "array",
			"items": map[string]any{
				"type": "object",
				"properties": map[string]any{
					"hotel_id":           map[string]any{"type": "string"},
					"score":              map[string]any{"type": "number"},
					"top_reasons":        map[string]any{"type": "array", "items": map[string]any{"type": "string"}},
					"score_penalties":    map[string]any{"type": "array", "items": map[string]any{"type": "string"}},
					"selected_rate_hash": map[string]any{"type": []string{"string", "null"}},
				},
				"required": []string{"hotel_id", "score", "top_reasons", "score_penalties"},
			},
		},
	},
	"required": []string{"results"},
}

type scoringResponse struct {
	Results []domain.JudgedScore `json:"results"`
}

// parseScores decodes a model reply. Markdown fences and surrounding prose are tolerated.
func parseScores(raw string) ([]domain.JudgedScore, error) {
	text, err := jsonObject(raw)
	if err != nil {
		return nil, err
	}

	var resp scoringResponse
	if err := json.Unmarshal([]byte(text), &resp); err != nil {
		return nil, fmt.Errorf("%w: failed to parse judge response: %v", domain.ErrValidation, err)
	}
	if resp.Results == nil {
		return nil, fmt.Errorf("%w: judge response has no results", domain.ErrValidation)
	}
	return resp.Results, nil
}

// jsonObject cuts the outermost {...} out of a reply.
func jsonObject(raw string) (string, error) {
	text := strings.TrimSpace(raw)
	if text == "" {
		return "", fmt.Errorf("%w: empty judge response", domain.ErrValidation)
	}
	if i := strings.Index(text, "{"); i >= 0 {
		if j := strings.LastIndex(text, "}"); j > i {
			text = text[i : j+1]
		}
	}
	return text, nil
}
