package llm

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/heartmarshall/lexicon/internal/config"
)

var ErrMissingAPIKey = errors.New("llm api key is not configured")

// Default models per provider, used when llm.model is empty.
var defaultModels = map[string]string{
	"deepseek":  DeepSeekModel,
	"openai":    "gpt-4o-mini",
	"ollama":    "llama3.1",
	"anthropic": "claude-3-5-haiku-latest",
	"gemini":    "gemini-1.5-flash",
}

const defaultOllamaURL = "http://localhost:11434"

// New builds the Completer for the configured provider, wrapped with the
// configured per-attempt timeout and retry policy.
func New(ctx context.Context, cfg config.LLMConfig, logger *slog.Logger) (Completer, error) {
	provider := strings.ToLower(cfg.Provider)
	model := cfg.Model
	if model == "" {
		model = defaultModels[provider]
	}

	if cfg.APIKey == "" && provider != "ollama" {
		return nil, fmt.Errorf("%s: %w", provider, ErrMissingAPIKey)
	}

	var c Completer
	switch provider {
	case "deepseek":
		baseURL := cfg.BaseURL
		if baseURL == "" {
			baseURL = DeepSeekBaseURL
		}
		c = NewOpenAIClient(provider, cfg.APIKey, model, baseURL, nil, logger)

	case "openai":
		c = NewOpenAIClient(provider, cfg.APIKey, model, cfg.BaseURL, nil, logger)

	case "ollama":
		baseURL := cfg.BaseURL
		if baseURL == "" {
			baseURL = defaultOllamaURL
		}
		if !strings.HasSuffix(baseURL, "/v1") {
			baseURL = strings.TrimRight(baseURL, "/") + "/v1"
		}
		apiKey := cfg.APIKey
		if apiKey == "" {
			apiKey = "ollama" // ignored by ollama, required by the client
		}
		c = NewOpenAIClient(provider, apiKey, model, baseURL, nil, logger)

	case "anthropic":
		c = NewAnthropicClient(cfg.APIKey, model, cfg.BaseURL, nil, logger)

	case "gemini":
		g, err := NewGeminiClient(ctx, cfg.APIKey, model, cfg.BaseURL, logger)
		if err != nil {
			return nil, err
		}
		c = g

	default:
		return nil, fmt.Errorf("unsupported llm provider: %s", cfg.Provider)
	}

	logger.Info("llm provider configured",
		slog.String("provider", provider),
		slog.String("model", model),
		slog.Int("max_retries", cfg.MaxRetries),
	)

	return WithRetry(c, Policy{
		Timeout:    cfg.Timeout,
		MaxRetries: cfg.MaxRetries,
		Backoff:    cfg.RetryBackoff,
		MaxTokens:  cfg.MaxTokens,
	}, logger), nil
}
