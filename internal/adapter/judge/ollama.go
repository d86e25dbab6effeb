package judge

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"hotel-curator/internal/domain"
)

const (
	ollamaCharsPerToken = 4.0
	ollamaNumCtx        = 16384
)

type ollamaMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type ollamaChatRequest struct {
	Model     string          `json:"model"`
	Messages  []ollamaMessage `json:"messages"`
	Stream    bool            `json:"stream"`
	KeepAlive int             `json:"keep_alive"`
	Format    map[string]any  `json:"format"`
	Options   map[string]any  `json:"options,omitempty"`
}

type ollamaChatResponse struct {
	Message struct {
		Content string `json:"content"`
	} `json:"message"`
	Done       bool   `json:"done"`
	DoneReason string `json:"done_reason"`
}

type ollamaBackend struct {
	baseURL   string
	model     string
	maxTokens int
	client    *http.Client
}

func (b *ollamaBackend) buildOptions() map[string]any {
	opts := map[string]any{
		"temperature": temperature,
		"num_ctx":     ollamaNumCtx,
	}
	if b.maxTokens > 0 {
		opts["num_predict"] = b.maxTokens
	}
	return opts
}

func (b *ollamaBackend) complete(ctx context.Context, p Prompt) (string, error) {
	req := ollamaChatRequest{
		Model: b.model,
		Messages: []ollamaMessage{
			{Role: "system", Content: p.System},
			{Role: "user", Content: p.User},
		},
		KeepAlive: -1,
		Format:    p.Schema,
		Options:   b.buildOptions(),
	}

	body, err := postJSON(ctx, b.client, b.baseURL+"/api/chat", nil, req)
	if err != nil {
		return "", err
	}

	var resp ollamaChatResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return "", fmt.Errorf("%w: failed to decode chat response: %v", domain.ErrUpstream, err)
	}
	if resp.DoneReason == "length" {
		return "", fmt.Errorf("%w: reply truncated at num_predict", domain.ErrValidation)
	}
	return resp.Message.Content, nil
}
