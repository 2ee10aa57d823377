package llm

import (
	"context"
	"log/slog"
	"net/http"

	anthropic "github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
)

const providerAnthropic = "anthropic"

// AnthropicClient calls the Claude Messages API.
type AnthropicClient struct {
	client anthropic.Client
	model  string
	log    *slog.Logger
}

// NewAnthropicClient creates a client. SDK-level retries are disabled;
// retries are configured with WithRetry.
func NewAnthropicClient(apiKey, model, baseURL string, httpClient *http.Client, logger *slog.Logger) *AnthropicClient {
	opts := []option.RequestOption{
		option.WithAPIKey(apiKey),
		option.WithMaxRetries(0),
	}
	if baseURL != "" {
		opts = append(opts, option.WithBaseURL(baseURL))
	}
	if httpClient != nil {
		opts = append(opts, option.WithHTTPClient(httpClient))
	}
	return &AnthropicClient{
		client: anthropic.NewClient(opts...),
		model:  model,
		log:    logger.With("adapter", "llm", "provider", providerAnthropic),
	}
}

func (c *AnthropicClient) Complete(ctx context.Context, req Request) (string, error) {
	params := anthropic.MessageNewParams{
		Model:     anthropic.Model(c.model),
		MaxTokens: int64(maxTokens(req)),
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(req.Prompt)),
		},
	}
	for _, s := range req.System {
		params.System = append(params.System, anthropic.TextBlockParam{Text: s})
	}
	if req.Temperature != nil {
		params.Temperature = anthropic.Float(float64(*req.Temperature))
	}

	c.log.DebugContext(ctx, "llm request", slog.String("model", c.model))

	msg, err := c.client.Messages.New(ctx, params)
	if err != nil {
		return "", remoteErr(providerAnthropic, err)
	}
	if len(msg.Content) == 0 {
		return "", remoteErr(providerAnthropic, ErrEmptyResponse)
	}

	return nonEmpty(providerAnthropic, msg.Content[0].Text)
}
