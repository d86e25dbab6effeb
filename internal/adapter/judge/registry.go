package judge

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
)

const (
	ProviderAnthropic = "anthropic"
	ProviderGoogle    = "google"
	ProviderOllama    = "ollama"
)

// Config selects and configures the judgment provider.
type Config struct {
	Model           string
	MaxTokens       int
	AnthropicURL    string
	AnthropicAPIKey string
	GeminiURL       string
	GeminiAPIKey    string
	OllamaURL       string
}

// ProviderFor resolves a model identifier to its provider.
func ProviderFor(model string) string {
	m := strings.ToLower(strings.TrimSpace(model))
	switch {
	case strings.HasPrefix(m, "claude"):
		return ProviderAnthropic
	case strings.HasPrefix(m, "gemini"):
		return ProviderGoogle
	default:
		return ProviderOllama
	}
}

// New builds the judge for cfg.Model.
func New(cfg Config, client *http.Client, logger *slog.Logger) (*Judge, error) {
	if strings.TrimSpace(cfg.Model) == "" {
		return nil, errors.New("judge model is required")
	}
	if client == nil {
		client = http.DefaultClient
	}

	switch provider := ProviderFor(cfg.Model); provider {
	case ProviderAnthropic:
		if cfg.AnthropicAPIKey == "" {
			return nil, fmt.Errorf("model %q requires an Anthropic API key", cfg.Model)
		}
		return newJudge(provider, cfg.Model, &anthropicBackend{
			baseURL:   strings.TrimRight(cfg.AnthropicURL, "/"),
			apiKey:    cfg.AnthropicAPIKey,
			model:     cfg.Model,
			maxTokens: cfg.MaxTokens,
			client:    client,
		}, anthropicCharsPerToken, logger), nil
	case ProviderGoogle:
		if cfg.GeminiAPIKey == "" {
			return nil, fmt.Errorf("model %q requires a Gemini API key", cfg.Model)
		}
		return newJudge(provider, cfg.Model, &geminiBackend{
			baseURL:   strings.TrimRight(cfg.GeminiURL, "/"),
			apiKey:    cfg.GeminiAPIKey,
			model:     cfg.Model,
			maxTokens: cfg.MaxTokens,
			client:    client,
		}, geminiCharsPerToken, logger), nil
	default:
		if cfg.OllamaURL == "" {
			return nil, fmt.Errorf("model %q requires an Ollama URL", cfg.Model)
		}
		return newJudge(provider, cfg.Model, &ollamaBackend{
			baseURL:   strings.TrimRight(cfg.OllamaURL, "/"),
			model:     cfg.Model,
			maxTokens: cfg.MaxTokens,
			client:    client,
		}, ollamaCharsPerToken, logger), nil
	}
}
