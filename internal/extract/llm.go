package extract

import (
	"context"
	"fmt"
	"strings"

	"github.com/adityarathi/finsight/internal/metrics"
	"google.golang.org/genai"
)

// GenerateOptions are the per-call generation parameters the pipeline tunes.
type GenerateOptions struct {
	Temperature     float32
	MaxOutputTokens int32
}

// LLMClient is the language-model collaborator seam. Implementations send a
// single user prompt and return the first candidate's text.
type LLMClient interface {
	GenerateText(ctx context.Context, prompt string, opts GenerateOptions) (string, error)
}

// GeminiClient is the production LLMClient backed by the Gemini API.
type GeminiClient struct {
	client *genai.Client
	model  string
}

// NewGeminiClient creates the client once at startup; per-request calls
// reuse it.
func NewGeminiClient(ctx context.Context, apiKey, model string) (*GeminiClient, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("NewGeminiClient: api key is required")
	}
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:      apiKey,
		HTTPOptions: genai.HTTPOptions{APIVersion: "v1"},
	})
	if err != nil {
		return nil, fmt.Errorf("NewGeminiClient: create genai client: %w", err)
	}
	return &GeminiClient{client: client, model: model}, nil
}

// GenerateText implements LLMClient.
func (g *GeminiClient) GenerateText(ctx context.Context, prompt string, opts GenerateOptions) (string, error) {
	contents := []*genai.Content{
		{
			Role:  "user",
			Parts: []*genai.Part{{Text: prompt}},
		},
	}

	var cfg *genai.GenerateContentConfig
	if opts.Temperature != 0 || opts.MaxOutputTokens != 0 {
		cfg = &genai.GenerateContentConfig{}
		if opts.Temperature != 0 {
			cfg.Temperature = genai.Ptr(opts.Temperature)
		}
		if opts.MaxOutputTokens != 0 {
			cfg.MaxOutputTokens = opts.MaxOutputTokens
		}
	}

	resp, err := g.client.Models.GenerateContent(ctx, g.model, contents, cfg)
	if err != nil {
		metrics.CollaboratorCalls.WithLabelValues("llm", "error").Inc()
		return "", fmt.Errorf("GenerateText: generate content: %w", err)
	}

	text := strings.TrimSpace(resp.Text())
	if text == "" {
		metrics.CollaboratorCalls.WithLabelValues("llm", "empty").Inc()
		return "", fmt.Errorf("GenerateText: empty response from model")
	}

	metrics.CollaboratorCalls.WithLabelValues("llm", "ok").Inc()
	return text, nil
}
