package engine

import (
	"context"
	"errors"
)

// ErrUnavailable is returned when no generation provider is configured.
var ErrUnavailable = errors.New("text generation is not configured")

// Engine abstracts a text generation backend (Gemini, OpenAI, Anthropic,
// OpenRouter or a local Ollama server). Consumers such as the reranker,
// chain executor and optimizer use this interface instead of depending on a
// concrete client.
type Engine interface {
	// Name returns the provider name, e.g. "gemini".
	Name() string

	// Generate sends a single user prompt and returns the model's text.
	Generate(ctx context.Context, req Request) (string, error)
}
