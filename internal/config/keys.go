package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
)

type keyType int

const (
	kString keyType = iota
	kInt
	kBool
)

type keySpec struct {
	key     string
	typ     keyType
	env     string
	secret  bool
	apply   func(cfg *Config, v any)
	extract func(cfg Config) any
}

var specs = []keySpec{
	{
		key: "server.port", typ: kInt, env: "PROMPTPILOT_SERVER_PORT",
		apply:   func(cfg *Config, v any) { cfg.Server.Port = v.(int) },
		extract: func(cfg Config) any { return cfg.Server.Port },
	},
	{
		key: "storage.data_dir", typ: kString, env: "PROMPTPILOT_STORAGE_DATA_DIR",
		apply:   func(cfg *Config, v any) { cfg.Storage.DataDir = v.(string) },
		extract: func(cfg Config) any { return cfg.Storage.DataDir },
	},
	{
		key: "log.level", typ: kString, env: "PROMPTPILOT_LOG_LEVEL",
		apply:   func(cfg *Config, v any) { cfg.Log.Level = v.(string) },
		extract: func(cfg Config) any { return cfg.Log.Level },
	},
	{
		key: "vault.owner_id", typ: kString, env: "PROMPTPILOT_VAULT_OWNER_ID",
		apply:   func(cfg *Config, v any) { cfg.Vault.OwnerID = v.(string) },
		extract: func(cfg Config) any { return cfg.Vault.OwnerID },
	},
	{
		key: "generation.provider", typ: kString, env: "PROMPTPILOT_GENERATION_PROVIDER",
		apply:   func(cfg *Config, v any) { cfg.Generation.Provider = v.(string) },
		extract: func(cfg Config) any { return cfg.Generation.Provider },
	},
	{
		key: "generation.model", typ: kString, env: "PROMPTPILOT_GENERATION_MODEL",
		apply:   func(cfg *Config, v any) { cfg.Generation.Model = v.(string) },
		extract: func(cfg Config) any { return cfg.Generation.Model },
	},
	{
		key: "generation.timeout", typ: kString, env: "PROMPTPILOT_GENERATION_TIMEOUT",
		apply:   func(cfg *Config, v any) { cfg.Generation.Timeout = v.(string) },
		extract: func(cfg Config) any { return cfg.Generation.Timeout },
	},
	{
		key: "gemini.api_key", typ: kString, env: "PROMPTPILOT_GEMINI_API_KEY",
		secret:  true,
		apply:   func(cfg *Config, v any) { cfg.Generation.GeminiAPIKey = v.(string) },
		extract: func(cfg Config) any { return cfg.Generation.GeminiAPIKey },
	},
	{
		key: "openai.api_key", typ: kString, env: "PROMPTPILOT_OPENAI_API_KEY",
		secret:  true,
		apply:   func(cfg *Config, v any) { cfg.Generation.OpenAIAPIKey = v.(string) },
		extract: func(cfg Config) any { return cfg.Generation.OpenAIAPIKey },
	},
	{
		key: "anthropic.api_key", typ: kString, env: "PROMPTPILOT_ANTHROPIC_API_KEY",
		secret:  true,
		apply:   func(cfg *Config, v any) { cfg.Generation.AnthropicAPIKey = v.(string) },
		extract: func(cfg Config) any { return cfg.Generation.AnthropicAPIKey },
	},
	{
		key: "openrouter.api_key", typ: kString, env: "PROMPTPILOT_OPENROUTER_API_KEY",
		secret:  true,
		apply:   func(cfg *Config, v any) { cfg.Generation.OpenRouterAPIKey = v.(string) },
		extract: func(cfg Config) any { return cfg.Generation.OpenRouterAPIKey },
	},
	{
		key: "ollama.base_url", typ: kString, env: "PROMPTPILOT_OLLAMA_BASE_URL",
		apply:   func(cfg *Config, v any) { cfg.Ollama.BaseURL = v.(string) },
		extract: func(cfg Config) any { return cfg.Ollama.BaseURL },
	},
	{
		key: "rerank.enabled", typ: kBool, env: "PROMPTPILOT_RERANK_ENABLED",
		apply:   func(cfg *Config, v any) { cfg.Rerank.Enabled = v.(bool) },
		extract: func(cfg Config) any { return cfg.Rerank.Enabled },
	},
	{
		key: "rerank.timeout", typ: kString, env: "PROMPTPILOT_RERANK_TIMEOUT",
		apply:   func(cfg *Config, v any) { cfg.Rerank.Timeout = v.(string) },
		extract: func(cfg Config) any { return cfg.Rerank.Timeout },
	},
	{
		key: "selection.weight_title_action", typ: kInt, env: "PROMPTPILOT_SELECTION_WEIGHT_TITLE_ACTION",
		apply:   func(cfg *Config, v any) { cfg.Selection.WeightTitleAction = v.(int) },
		extract: func(cfg Config) any { return cfg.Selection.WeightTitleAction },
	},
	{
		key: "selection.weight_content_action", typ: kInt, env: "PROMPTPILOT_SELECTION_WEIGHT_CONTENT_ACTION",
		apply:   func(cfg *Config, v any) { cfg.Selection.WeightContentAction = v.(int) },
		extract: func(cfg Config) any { return cfg.Selection.WeightContentAction },
	},
	{
		key: "selection.weight_title_keyword", typ: kInt, env: "PROMPTPILOT_SELECTION_WEIGHT_TITLE_KEYWORD",
		apply:   func(cfg *Config, v any) { cfg.Selection.WeightTitleKeyword = v.(int) },
		extract: func(cfg Config) any { return cfg.Selection.WeightTitleKeyword },
	},
	{
		key: "selection.weight_content_keyword", typ: kInt, env: "PROMPTPILOT_SELECTION_WEIGHT_CONTENT_KEYWORD",
		apply:   func(cfg *Config, v any) { cfg.Selection.WeightContentKeyword = v.(int) },
		extract: func(cfg Config) any { return cfg.Selection.WeightContentKeyword },
	},
	{
		key: "search.fuzziness", typ: kInt, env: "PROMPTPILOT_SEARCH_FUZZINESS",
		apply:   func(cfg *Config, v any) { cfg.Search.Fuzziness = v.(int) },
		extract: func(cfg Config) any { return cfg.Search.Fuzziness },
	},
	{
		key: "search.cache_size", typ: kInt, env: "PROMPTPILOT_SEARCH_CACHE_SIZE",
		apply:   func(cfg *Config, v any) { cfg.Search.CacheSize = v.(int) },
		extract: func(cfg Config) any { return cfg.Search.CacheSize },
	},
	{
		key: "history.retention", typ: kString, env: "PROMPTPILOT_HISTORY_RETENTION",
		apply:   func(cfg *Config, v any) { cfg.History.Retention = v.(string) },
		extract: func(cfg Config) any { return cfg.History.Retention },
	},
	{
		key: "history.prune_interval", typ: kString, env: "PROMPTPILOT_HISTORY_PRUNE_INTERVAL",
		apply:   func(cfg *Config, v any) { cfg.History.PruneInterval = v.(string) },
		extract: func(cfg Config) any { return cfg.History.PruneInterval },
	},
}

func applyBackend(cfg *Config, b ConfigBackend) error {
	for _, s := range specs {
		if s.secret {
			continue
		}
		switch s.typ {
		case kString:
			v, ok, err := b.GetString(s.key)
			if err != nil {
				return fmt.Errorf("reading %s: %w", s.key, err)
			}
			if ok {
				s.apply(cfg, v)
			}
		case kInt:
			v, ok, err := b.GetInt(s.key)
			if err != nil {
				return fmt.Errorf("reading %s: %w", s.key, err)
			}
			if ok {
				s.apply(cfg, v)
			}
		case kBool:
			v, ok, err := b.GetString(s.key)
			if err != nil {
				return fmt.Errorf("reading %s: %w", s.key, err)
			}
			if ok && v != "" {
				if bv, err := strconv.ParseBool(v); err == nil {
					s.apply(cfg, bv)
				} else {
					fmt.Fprintf(os.Stderr, "[WARN] could not parse bool from config key %s=%q: %v. Using default value.\n", s.key, v, err)
				}
			}
		}
	}
	return nil
}

func applyEnvOverrides(cfg *Config) {
	for _, s := range specs {
		if s.env == "" {
			continue
		}
		raw := lookupEnv(s.env)
		if raw == "" {
			continue
		}
		switch s.typ {
		case kString:
			s.apply(cfg, raw)
		case kInt:
			if i, err := strconv.Atoi(raw); err == nil {
				s.apply(cfg, i)
			} else {
				fmt.Fprintf(os.Stderr, "[WARN] could not parse integer from env var %s=%q: %v. Using default value.\n", s.env, raw, err)
			}
		case kBool:
			if b, err := strconv.ParseBool(raw); err == nil {
				s.apply(cfg, b)
			} else {
				fmt.Fprintf(os.Stderr, "[WARN] could not parse bool from env var %s=%q: %v. Using default value.\n", s.env, raw, err)
			}
		}
	}
}

func lookupEnv(name string) string {
	return strings.TrimSpace(os.Getenv(name))
}
