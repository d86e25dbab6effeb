package judge

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"hotel-curator/internal/domain"
)

const (
	anthropicVersion       = "2023-06-01"
	anthropicCharsPerToken = 3.5
)

type anthropicMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type anthropicRequest struct {
	Model       string             `json:"model"`
	MaxTokens   int                `json:"max_tokens"`
	System      string             `json:"system,omitempty"`
	Messages    []anthropicMessage `json:"messages"`
	Temperature float64            `json:"temperature"`
}

type anthropicResponse struct {
	Content []struct {
		Type string `json:"type"`
		Text string `json:"text"`
	} `json:"content"`
	StopReason string `json:"stop_reason"`
}

type anthropicBackend struct {
	baseURL   string
	apiKey    string
	model     string
	maxTokens int
	client    *http.Client
}

func (b *anthropicBackend) complete(ctx context.Context, p Prompt) (string, error) {
	req := anthropicRequest{
		Model:       b.model,
		MaxTokens:   b.maxTokens,
		System:      p.System,
		Messages:    []anthropicMessage{{Role: "user", Content: p.User}},
		Temperature: temperature,
	}
	headers := map[string]string{
		"x-api-key":         b.apiKey,
		"anthropic-version": anthropicVersion,
	}

	body, err := postJSON(ctx, b.client, b.baseURL+"/v1/messages", headers, req)
	if err != nil {
		return "", err
	}

	var resp anthropicResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return "", fmt.Errorf("%w: failed to decode messages response: %v", domain.ErrUpstream, err)
	}
	if resp.StopReason == "max_tokens" {
		return "", fmt.Errorf("%w: reply truncated at max_tokens", domain.ErrValidation)
	}

	var sb strings.Builder
	for _, block := range resp.Content {
		if block.Type == "text" {
			sb.WriteString(block.Text)
		}
	}
	return sb.String(), nil
}
