package engine

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/kalambet/promptpilot/internal/proxy"
)

// DetectConfig holds the provider selection and credentials.
type DetectConfig struct {
	Provider         string
	Model            string
	GeminiAPIKey     string
	OpenAIAPIKey     string
	AnthropicAPIKey  string
	OpenRouterAPIKey string
	OllamaBaseURL    string
}

// Registry holds every provider that has credentials, plus the default one.
// A Registry with no default means generation is unavailable and callers
// should degrade.
type Registry struct {
	engines map[string]Engine
	def     string
}

// NewRegistry builds a registry from explicit engines. def names the default
// and may be empty.
func NewRegistry(def string, engines ...Engine) *Registry {
	r := &Registry{engines: make(map[string]Engine, len(engines))}
	for _, e := range engines {
		r.engines[e.Name()] = e
	}
	if _, ok := r.engines[def]; ok {
		r.def = def
	}
	return r
}

// Detect builds every provider whose credentials are present. The configured
// provider becomes the default; if it has no credentials there is no default
// and Default returns nil.
func Detect(ctx context.Context, cfg DetectConfig) (*Registry, error) {
	provider := strings.ToLower(strings.TrimSpace(cfg.Provider))
	if provider != ProviderNone && provider != "" && !knownProvider(provider) {
		return nil, fmt.Errorf("unknown generation provider %q", cfg.Provider)
	}

	// The configured model only applies to the configured provider.
	modelFor := func(name string) string {
		if name == provider {
			return cfg.Model
		}
		return ""
	}

	var engines []Engine
	if cfg.GeminiAPIKey != "" {
		e, err := NewGeminiEngine(ctx, cfg.GeminiAPIKey, modelFor(ProviderGemini), "")
		if err != nil {
			return nil, err
		}
		engines = append(engines, e)
	}
	if cfg.OpenAIAPIKey != "" {
		e, err := NewOpenAIEngine(cfg.OpenAIAPIKey, modelFor(ProviderOpenAI), "")
		if err != nil {
			return nil, err
		}
		engines = append(engines, e)
	}
	if cfg.AnthropicAPIKey != "" {
		e, err := NewAnthropicEngine(cfg.AnthropicAPIKey, modelFor(ProviderAnthropic), "")
		if err != nil {
			return nil, err
		}
		engines = append(engines, e)
	}
	if cfg.OpenRouterAPIKey != "" {
		engines = append(engines, NewOpenRouterEngine(proxy.NewClient(cfg.OpenRouterAPIKey), modelFor(ProviderOpenRouter)))
	}
	// Ollama needs no credentials; it is only registered when selected.
	if provider == ProviderOllama && cfg.OllamaBaseURL != "" {
		engines = append(engines, NewOllamaEngine(cfg.OllamaBaseURL, cfg.Model))
	}

	r := NewRegistry(provider, engines...)
	if r.Default() == nil && provider != ProviderNone {
		slog.Warn("generation provider has no credentials; running degraded", "provider", provider)
	}
	return r, nil
}

func knownProvider(name string) bool {
	switch name {
	case ProviderGemini, ProviderOpenAI, ProviderAnthropic, ProviderOpenRouter, ProviderOllama:
		return true
	}
	return false
}

// Default returns the configured engine, or nil when none is available.
func (r *Registry) Default() Engine {
	if r == nil || r.def == "" {
		return nil
	}
	return r.engines[r.def]
}

// Get returns the engine registered under name.
func (r *Registry) Get(name string) (Engine, bool) {
	if r == nil {
		return nil, false
	}
	e, ok := r.engines[name]
	return e, ok
}

// Resolve picks an engine for a prompt's informational model hint
// ("GPT-4", "Claude", "Gemini", "llama3"...), falling back to the default
// engine when the hinted provider is not configured.
func (r *Registry) Resolve(hint string) Engine {
	if name := ProviderForHint(hint); name != "" {
		if e, ok := r.Get(name); ok {
			return e
		}
	}
	return r.Default()
}

// ProviderForHint maps a model hint to a provider name, or "" when unknown.
func ProviderForHint(hint string) string {
	h := strings.ToLower(hint)
	switch {
	case h == "":
		return ""
	case strings.Contains(h, "gpt") || strings.HasPrefix(h, "o1") || strings.HasPrefix(h, "o3") || strings.HasPrefix(h, "o4"):
		return ProviderOpenAI
	case strings.Contains(h, "claude"):
		return ProviderAnthropic
	case strings.Contains(h, "gemini"):
		return ProviderGemini
	case strings.Contains(h, "/"):
		return ProviderOpenRouter
	case strings.Contains(h, "llama"), strings.Contains(h, "mistral"), strings.Contains(h, "qwen"), strings.Contains(h, "phi"), strings.Contains(h, "gemma"):
		return ProviderOllama
	}
	return ""
}
