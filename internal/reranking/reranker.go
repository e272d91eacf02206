package reranking

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"regexp"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/kalambet/promptpilot/internal/engine"
	"github.com/kalambet/promptpilot/internal/storage"
)

// Outcome tells callers how a rerank result was produced.
type Outcome string

const (
	// Applied means the model's ordering was used.
	Applied Outcome = "applied"
	// Degraded means the model could not be used and candidates pass through.
	Degraded Outcome = "degraded"
	// Disabled means reranking is switched off in config.
	Disabled Outcome = "disabled"
)

// Result is the reranked prompt list plus how it was obtained.
type Result struct {
	Prompts []storage.Prompt `json:"-"`
	Outcome Outcome          `json:"outcome"`
	// Reason explains a Degraded outcome.
	Reason string `json:"reason,omitempty"`
}

// Reranker reorders and filters candidate prompts for a task. It never fails:
// problems are reported as a Degraded result carrying the candidates unchanged.
type Reranker interface {
	Rerank(ctx context.Context, task string, candidates []storage.Prompt) Result
}

// NewReranker returns an LLMReranker if enabled, NoOpReranker otherwise.
// A nil engine is allowed and makes every call degrade.
func NewReranker(eng engine.Engine, enabled bool, timeout time.Duration) Reranker {
	if !enabled {
		return &NoOpReranker{}
	}
	return &LLMReranker{engine: eng, timeout: timeout}
}

// previewRunes is how much of each prompt body the model sees.
const previewRunes = 100

var idArrayPattern = regexp.MustCompile(`(?s)\[.*?\]`)

// LLMReranker asks a generation model which candidates suit the task and in
// what order.
type LLMReranker struct {
	engine  engine.Engine
	timeout time.Duration
}

type candidateView struct {
	ID      int64  `json:"id"`
	Title   string `json:"title"`
	Content string `json:"content"`
}

// Rerank returns the candidates in the model's order, dropping the ones it
// left out. An empty array from the model is a valid "nothing fits" answer.
// Any failure (no engine, timeout, network error, unparseable reply) returns
// the candidates unchanged with a Degraded outcome.
func (r *LLMReranker) Rerank(ctx context.Context, task string, candidates []storage.Prompt) Result {
	if len(candidates) == 0 {
		return Result{Prompts: candidates, Outcome: Applied}
	}
	if r.engine == nil {
		return degrade(candidates, engine.ErrUnavailable)
	}

	prompt, err := buildPrompt(task, candidates)
	if err != nil {
		return degrade(candidates, err)
	}

	if r.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.timeout)
		defer cancel()
	}

	resp, err := r.engine.Generate(ctx, engine.Request{Prompt: prompt, Temperature: engine.Temperature(0)})
	if err != nil {
		return degrade(candidates, fmt.Errorf("generation failed: %w", err))
	}

	ids, err := parseIDs(resp)
	if err != nil {
		return degrade(candidates, err)
	}

	return Result{Prompts: applyOrder(candidates, ids), Outcome: Applied}
}

func degrade(candidates []storage.Prompt, err error) Result {
	slog.Warn("reranker: using candidates unchanged", "error", err)
	return Result{Prompts: candidates, Outcome: Degraded, Reason: err.Error()}
}

func buildPrompt(task string, candidates []storage.Prompt) (string, error) {
	views := make([]candidateView, len(candidates))
	for i, p := range candidates {
		views[i] = candidateView{ID: p.ID, Title: p.Title, Content: preview(p.Content)}
	}
	list, err := json.MarshalIndent(views, "", "  ")
	if err != nil {
		return "", fmt.Errorf("encoding candidates: %w", err)
	}

	var sb strings.Builder
	sb.WriteString("You are an expert task dispatcher. A user wants to accomplish the following task:\n")
	fmt.Fprintf(&sb, "%q\n\n", task)
	sb.WriteString("Here is a list of available prompts (tools) that could help:\n")
	sb.Write(list)
	sb.WriteString("\n\nSelect the prompts that are genuinely useful for this task and order them as the steps should run. ")
	sb.WriteString("Respond with ONLY a JSON array of prompt IDs, for example [3, 1]. ")
	sb.WriteString("If none of the prompts fit, respond with [].")
	return sb.String(), nil
}

func preview(content string) string {
	if utf8.RuneCountInString(content) <= previewRunes {
		return content + "..."
	}
	return string([]rune(content)[:previewRunes]) + "..."
}

// parseIDs extracts the first bracketed array from a model reply. Small
// models often wrap it in prose or code fences.
func parseIDs(resp string) ([]int64, error) {
	raw := idArrayPattern.FindString(resp)
	if raw == "" {
		return nil, errors.New("no JSON array in response")
	}
	var ids []int64
	if err := json.Unmarshal([]byte(raw), &ids); err != nil {
		return nil, fmt.Errorf("unmarshal ids: %w", err)
	}
	return ids, nil
}

// applyOrder maps ids back to candidates, skipping unknown and repeated ids.
func applyOrder(candidates []storage.Prompt, ids []int64) []storage.Prompt {
	byID := make(map[int64]storage.Prompt, len(candidates))
	for _, p := range candidates {
		byID[p.ID] = p
	}
	out := make([]storage.Prompt, 0, len(ids))
	seen := make(map[int64]bool, len(ids))
	for _, id := range ids {
		p, ok := byID[id]
		if !ok {
			slog.Debug("reranker: ignoring unknown prompt id", "prompt_id", id)
			continue
		}
		if seen[id] {
			continue
		}
		seen[id] = true
		out = append(out, p)
	}
	return out
}

// NoOpReranker passes candidates through unchanged. Used when reranking is disabled.
type NoOpReranker struct{}

func (n *NoOpReranker) Rerank(_ context.Context, _ string, candidates []storage.Prompt) Result {
	return Result{Prompts: candidates, Outcome: Disabled}
}
