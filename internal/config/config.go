package config

import (
	"strings"
	"time"
)

type Config struct {
	Server     ServerConfig
	Storage    StorageConfig
	Log        LogConfig
	Vault      VaultConfig
	Generation GenerationConfig
	Ollama     OllamaConfig
	Rerank     RerankConfig
	Selection  SelectionConfig
	Search     SearchConfig
	History    HistoryConfig
}

type ServerConfig struct {
	Port int
}

type StorageConfig struct {
	DataDir string
}

type LogConfig struct {
	Level string
}

// VaultConfig identifies whose prompts the local process serves.
type VaultConfig struct {
	OwnerID string
}

// GenerationConfig selects the text generation provider and holds the
// credentials for every supported cloud provider.
type GenerationConfig struct {
	Provider         string
	Model            string
	Timeout          string
	GeminiAPIKey     string
	OpenAIAPIKey     string
	AnthropicAPIKey  string
	OpenRouterAPIKey string
}

type OllamaConfig struct {
	BaseURL string
}

type RerankConfig struct {
	Enabled bool
	Timeout string
}

// SelectionConfig holds the relevance weights used by the candidate selector.
type SelectionConfig struct {
	WeightTitleAction    int
	WeightContentAction  int
	WeightTitleKeyword   int
	WeightContentKeyword int
}

type SearchConfig struct {
	Fuzziness int
	CacheSize int
}

// HistoryConfig controls how long chain runs are kept. A zero or invalid
// Retention keeps runs forever.
type HistoryConfig struct {
	Retention     string
	PruneInterval string
}

func defaults() Config {
	return Config{
		Server:  ServerConfig{Port: 4040},
		Storage: StorageConfig{DataDir: defaultDataDir()},
		Log:     LogConfig{Level: "info"},
		Vault:   VaultConfig{OwnerID: "local"},
		Generation: GenerationConfig{
			Provider: "gemini",
			Timeout:  "60s",
		},
		Ollama: OllamaConfig{BaseURL: "http://localhost:11434"},
		Rerank: RerankConfig{
			Enabled: true,
			Timeout: "15s",
		},
		Selection: SelectionConfig{
			WeightTitleAction:    5,
			WeightContentAction:  2,
			WeightTitleKeyword:   3,
			WeightContentKeyword: 1,
		},
		Search: SearchConfig{
			Fuzziness: 1,
			CacheSize: 64,
		},
		History: HistoryConfig{
			Retention:     "720h",
			PruneInterval: "1h",
		},
	}
}

// Load reads configuration from the platform-native backend, environment
// variables, and platform secret store.
//
// On macOS the backend is UserDefaults (domain: com.promptpilot.app) and
// secrets fall back to macOS Keychain.
// On Linux the backend is a JSON file at $XDG_CONFIG_HOME/promptpilot/config.json
// and secrets are read from a 0600 secrets file in the data directory.
//
// Environment variables (PROMPTPILOT_*) override backend values on all
// platforms. Missing provider credentials are not an error: the planner and
// executor run degraded without a generation engine.
func Load() (Config, error) {
	return loadWith(newPlatformBackend(), keychainReader{})
}

// keychain abstracts Keychain access for testing.
type keychain interface {
	Get(service, account string) (string, error)
}

const keychainService = "promptpilot"

func loadWith(b ConfigBackend, kc keychain) (Config, error) {
	cfg := defaults()

	if err := applyBackend(&cfg, b); err != nil {
		return Config{}, err
	}

	applyEnvOverrides(&cfg)
	applySecrets(&cfg, kc)

	return cfg, nil
}

// applySecrets fills empty secret keys from the keychain. GEMINI_API_KEY is
// honored as a last resort since most Gemini tooling exports it.
func applySecrets(cfg *Config, kc keychain) {
	for _, s := range specs {
		if !s.secret {
			continue
		}
		if v, _ := s.extract(*cfg).(string); v != "" {
			continue
		}
		account := strings.ReplaceAll(s.key, ".", "_")
		if key, err := kc.Get(keychainService, account); err == nil && key != "" {
			s.apply(cfg, key)
		}
	}
	if cfg.Generation.GeminiAPIKey == "" {
		cfg.Generation.GeminiAPIKey = lookupEnv("GEMINI_API_KEY")
	}
}

// GenerationTimeout parses Generation.Timeout, falling back to 60s.
func (c Config) GenerationTimeout() time.Duration {
	return parseDuration(c.Generation.Timeout, 60*time.Second)
}

// RerankTimeout parses Rerank.Timeout, falling back to 15s.
func (c Config) RerankTimeout() time.Duration {
	return parseDuration(c.Rerank.Timeout, 15*time.Second)
}

// HistoryRetention parses History.Retention. Zero means runs are never
// pruned.
func (c Config) HistoryRetention() time.Duration {
	return parseDuration(c.History.Retention, 0)
}

// HistoryPruneInterval parses History.PruneInterval, falling back to 1h.
func (c Config) HistoryPruneInterval() time.Duration {
	return parseDuration(c.History.PruneInterval, time.Hour)
}

func parseDuration(raw string, fallback time.Duration) time.Duration {
	d, err := time.ParseDuration(raw)
	if err != nil || d <= 0 {
		return fallback
	}
	return d
}

// keychainReader reads from the platform secret store.
type keychainReader struct{}

func (keychainReader) Get(service, account string) (string, error) {
	out, err := keychainGet(service, account)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(out)), nil
}
