package engine

import (
	"context"

	"github.com/kalambet/promptpilot/internal/ollama"
)

const defaultOllamaModel = "llama3.2"

// OllamaEngine adapts the internal/ollama.Client to the Engine interface.
type OllamaEngine struct {
	client *ollama.Client
	model  string
}

// NewOllamaEngine creates an OllamaEngine backed by an Ollama server at baseURL.
func NewOllamaEngine(baseURL, model string) *OllamaEngine {
	if model == "" {
		model = defaultOllamaModel
	}
	return &OllamaEngine{client: ollama.New(baseURL), model: model}
}

func (e *OllamaEngine) Name() string { return ProviderOllama }

// Client exposes the underlying client for model management at startup.
func (e *OllamaEngine) Client() *ollama.Client { return e.client }

// Model returns the default model.
func (e *OllamaEngine) Model() string { return e.model }

func (e *OllamaEngine) Generate(ctx context.Context, req Request) (string, error) {
	opts := &ollama.Options{
		Temperature: req.Temperature,
		NumPredict:  req.maxTokens(),
	}
	var format *ollama.Schema
	if req.JSON {
		format = &ollama.Schema{Type: "object", Properties: map[string]ollama.SchemaProperty{}}
	}
	return e.client.Chat(ctx, req.model(e.model), []ollama.Message{
		{Role: "user", Content: req.Prompt},
	}, format, opts)
}
