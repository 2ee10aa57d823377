package llm

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"
)

const providerGemini = "gemini"

// GeminiClient calls the Google Generative Language API.
type GeminiClient struct {
	client *genai.Client
	model  string
	log    *slog.Logger
}

func NewGeminiClient(ctx context.Context, apiKey, model, baseURL string, logger *slog.Logger) (*GeminiClient, error) {
	opts := []option.ClientOption{option.WithAPIKey(apiKey)}
	if baseURL != "" {
		opts = append(opts, option.WithEndpoint(baseURL))
	}
	client, err := genai.NewClient(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("gemini: create client: %w", err)
	}
	return &GeminiClient{
		client: client,
		model:  model,
		log:    logger.With("adapter", "llm", "provider", providerGemini),
	}, nil
}

func (c *GeminiClient) Complete(ctx context.Context, req Request) (string, error) {
	model := c.client.GenerativeModel(c.model)
	model.SystemInstruction = systemContent(req.System)
	model.SetMaxOutputTokens(int32(maxTokens(req)))
	if req.Temperature != nil {
		model.SetTemperature(*req.Temperature)
	}

	c.log.DebugContext(ctx, "llm request", slog.String("model", c.model))

	resp, err := model.GenerateContent(ctx, genai.Text(req.Prompt))
	if err != nil {
		return "", remoteErr(providerGemini, err)
	}
	return nonEmpty(providerGemini, responseText(resp))
}

// Close releases the underlying connection.
func (c *GeminiClient) Close() error {
	return c.client.Close()
}

func systemContent(system []string) *genai.Content {
	if len(system) == 0 {
		return nil
	}
	parts := make([]genai.Part, 0, len(system))
	for _, s := range system {
		parts = append(parts, genai.Text(s))
	}
	return &genai.Content{Parts: parts}
}

// responseText concatenates the text parts of the first candidate.
func responseText(resp *genai.GenerateContentResponse) string {
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return ""
	}
	var b strings.Builder
	for _, p := range resp.Candidates[0].Content.Parts {
		if t, ok := p.(genai.Text); ok {
			b.WriteString(string(t))
		}
	}
	return b.String()
}
