package engine

// Provider names accepted by generation.provider.
const (
	ProviderGemini     = "gemini"
	ProviderOpenAI     = "openai"
	ProviderAnthropic  = "anthropic"
	ProviderOpenRouter = "openrouter"
	ProviderOllama     = "ollama"
	ProviderNone       = "none"
)

// Request is one single-turn generation call.
type Request struct {
	// Model overrides the engine's default model when non-empty.
	Model string
	// Prompt is sent as the user message.
	Prompt string
	// Temperature is left to the provider default when nil.
	Temperature *float32
	// MaxTokens caps the response length; 0 uses the engine default.
	MaxTokens int
	// JSON asks providers that support it for a JSON-only response.
	JSON bool
}

// Temperature returns a pointer to t for use in Request.
func Temperature(t float32) *float32 {
	return &t
}

const defaultMaxTokens = 2048

func (r Request) maxTokens() int {
	if r.MaxTokens > 0 {
		return r.MaxTokens
	}
	return defaultMaxTokens
}

func (r Request) model(fallback string) string {
	if r.Model != "" {
		return r.Model
	}
	return fallback
}
