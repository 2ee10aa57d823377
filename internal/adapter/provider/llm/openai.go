package llm

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/sashabaranov/go-openai"
)

const (
	DeepSeekBaseURL = "https://api.deepseek.com"
	DeepSeekModel   = "deepseek-chat"
)

// OpenAIClient talks to any OpenAI-compatible chat completions endpoint
// (DeepSeek, OpenAI, Ollama).
type OpenAIClient struct {
	client   *openai.Client
	model    string
	provider string
	log      *slog.Logger
}

// NewOpenAIClient creates a client. An empty baseURL uses the OpenAI default.
func NewOpenAIClient(provider, apiKey, model, baseURL string, httpClient *http.Client, logger *slog.Logger) *OpenAIClient {
	cfg := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		cfg.BaseURL = baseURL
	}
	if httpClient != nil {
		cfg.HTTPClient = httpClient
	}
	return &OpenAIClient{
		client:   openai.NewClientWithConfig(cfg),
		model:    model,
		provider: provider,
		log:      logger.With("adapter", "llm", "provider", provider),
	}
}

func (c *OpenAIClient) Complete(ctx context.Context, req Request) (string, error) {
	msgs := make([]openai.ChatCompletionMessage, 0, len(req.System)+1)
	for _, s := range req.System {
		msgs = append(msgs, openai.ChatCompletionMessage{Role: openai.ChatMessageRoleSystem, Content: s})
	}
	msgs = append(msgs, openai.ChatCompletionMessage{Role: openai.ChatMessageRoleUser, Content: req.Prompt})

	creq := openai.ChatCompletionRequest{
		Model:     c.model,
		Messages:  msgs,
		MaxTokens: maxTokens(req),
	}
	if req.Temperature != nil {
		creq.Temperature = *req.Temperature
	}

	c.log.DebugContext(ctx, "llm request", slog.String("model", c.model), slog.Int("messages", len(msgs)))

	resp, err := c.client.CreateChatCompletion(ctx, creq)
	if err != nil {
		return "", remoteErr(c.provider, err)
	}
	if len(resp.Choices) == 0 {
		return "", remoteErr(c.provider, ErrEmptyResponse)
	}

	c.log.DebugContext(ctx, "llm response",
		slog.String("model", c.model),
		slog.Int("prompt_tokens", resp.Usage.PromptTokens),
		slog.Int("completion_tokens", resp.Usage.CompletionTokens),
	)

	return nonEmpty(c.provider, resp.Choices[0].Message.Content)
}
