// Package optimizer rewrites a draft prompt's title, tags and content with a
// generation model.
package optimizer

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/kalambet/promptpilot/internal/composer"
	"github.com/kalambet/promptpilot/internal/engine"
)

var (
	// ErrEmptyDraft is returned when both title and content are blank.
	ErrEmptyDraft = errors.New("either title or prompt content is required for optimization")
	// ErrInvalidResponse is returned when the model's answer cannot be parsed.
	ErrInvalidResponse = errors.New("the optimizer returned an invalid response; please try again")
)

const (
	maxTitleRunes = 60
	maxTags       = 6
	defaultModel  = "GPT-4"
	temperature   = 0.7
	maxTokens     = 2048
)

// Draft is the prompt to optimize.
type Draft struct {
	Title   string   `json:"title"`
	Content string   `json:"content"`
	Tags    []string `json:"tags"`
	// Model is the target model hint; it also routes the request to a
	// matching provider when one is configured.
	Model string `json:"model"`
}

// Result is the optimized prompt.
type Result struct {
	Title   string   `json:"title"`
	Tags    []string `json:"tags"`
	Content string   `json:"content"`
}

// EngineResolver picks an engine for a model hint. *engine.Registry
// implements it.
type EngineResolver interface {
	Resolve(hint string) engine.Engine
}

// Optimizer asks a model for an improved version of a prompt.
type Optimizer struct {
	engines EngineResolver
}

func New(engines EngineResolver) *Optimizer {
	return &Optimizer{engines: engines}
}

// Optimize returns a rewritten title, tag set and content for d.
func (o *Optimizer) Optimize(ctx context.Context, d Draft) (Result, error) {
	if strings.TrimSpace(d.Title) == "" && strings.TrimSpace(d.Content) == "" {
		return Result{}, ErrEmptyDraft
	}
	if d.Model == "" {
		d.Model = defaultModel
	}

	eng := o.engines.Resolve(d.Model)
	if eng == nil {
		return Result{}, engine.ErrUnavailable
	}

	resp, err := eng.Generate(ctx, engine.Request{
		Prompt:      buildPrompt(d),
		Temperature: engine.Temperature(temperature),
		MaxTokens:   maxTokens,
		JSON:        true,
	})
	if err != nil {
		return Result{}, fmt.Errorf("optimizing prompt with %s: %w", eng.Name(), err)
	}

	res, err := parseResult(resp)
	if err != nil {
		slog.Warn("optimizer response unparseable", "engine", eng.Name(), "error", err)
		return Result{}, err
	}
	return res, nil
}

func parseResult(resp string) (Result, error) {
	obj, ok := composer.ExtractObject(resp)
	if !ok {
		return Result{}, fmt.Errorf("%w: no JSON object found", ErrInvalidResponse)
	}
	var r Result
	if err := json.Unmarshal([]byte(obj), &r); err != nil {
		return Result{}, fmt.Errorf("%w: %v", ErrInvalidResponse, err)
	}
	r.Title = strings.TrimSpace(r.Title)
	r.Content = strings.TrimSpace(r.Content)
	if r.Title == "" && r.Content == "" {
		return Result{}, fmt.Errorf("%w: empty title and content", ErrInvalidResponse)
	}
	r.Title = truncateRunes(r.Title, maxTitleRunes)
	r.Tags = cleanTags(r.Tags)
	return r, nil
}

// cleanTags trims, drops blanks and case-insensitive duplicates, and caps
// the set at maxTags.
func cleanTags(tags []string) []string {
	out := []string{}
	seen := make(map[string]bool)
	for _, t := range tags {
		t = strings.TrimSpace(t)
		key := strings.ToLower(t)
		if t == "" || seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, t)
		if len(out) == maxTags {
			break
		}
	}
	return out
}

func truncateRunes(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return strings.TrimSpace(string(r[:n]))
}

func buildPrompt(d Draft) string {
	var b strings.Builder
	b.WriteString("You are an expert prompt engineer. Optimize the title, tags and content of the prompt below so it is more effective, clear and engaging.\n\n")
	b.WriteString("CURRENT DATA:\n")
	fmt.Fprintf(&b, "Title: %q\n", d.Title)
	fmt.Fprintf(&b, "Content: %q\n", d.Content)
	fmt.Fprintf(&b, "Current Tags: [%s]\n", strings.Join(d.Tags, ", "))
	fmt.Fprintf(&b, "Target Model: %s\n\n", d.Model)
	fmt.Fprintf(&b, "1. TITLE: concise, descriptive and action-oriented (max %d characters).\n", maxTitleRunes)
	fmt.Fprintf(&b, "2. TAGS: replace the current tags with the most relevant set for discovery (max %d tags, each 1-3 words).\n", maxTags)
	b.WriteString("3. CONTENT: improve clarity and structure for the target model while keeping the original intent.\n\n")
	b.WriteString("Return a single valid JSON object only, with no markdown or extra text:\n")
	b.WriteString(`{"title": "...", "tags": ["..."], "content": "..."}`)
	return b.String()
}
