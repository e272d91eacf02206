package engine

import (
	"context"

	"github.com/kalambet/promptpilot/internal/proxy"
)

const defaultOpenRouterModel = "google/gemini-2.0-flash-001"

// OpenRouterEngine routes generation through OpenRouter's OpenAI-compatible API.
type OpenRouterEngine struct {
	client *proxy.Client
	model  string
}

func NewOpenRouterEngine(client *proxy.Client, model string) *OpenRouterEngine {
	if model == "" {
		model = defaultOpenRouterModel
	}
	return &OpenRouterEngine{client: client, model: model}
}

func (e *OpenRouterEngine) Name() string { return ProviderOpenRouter }

func (e *OpenRouterEngine) Generate(ctx context.Context, req Request) (string, error) {
	return e.client.Complete(ctx, proxy.ChatRequest{
		Model:       req.model(e.model),
		Messages:    []proxy.Message{{Role: "user", Content: req.Prompt}},
		Temperature: req.Temperature,
		MaxTokens:   req.maxTokens(),
	})
}
