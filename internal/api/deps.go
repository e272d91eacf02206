package api

import (
	"encoding/json"
	"time"
	"unicode/utf8"

	"github.com/kalambet/promptpilot/internal/composer"
	"github.com/kalambet/promptpilot/internal/judge"
	"github.com/kalambet/promptpilot/internal/optimizer"
	"github.com/kalambet/promptpilot/internal/pipeline"
	"github.com/kalambet/promptpilot/internal/retrieval"
	"github.com/kalambet/promptpilot/internal/storage"
)

// Deps holds the services shared by the HTTP API and the MCP server. All
// requests act on the vault of OwnerID.
type Deps struct {
	Store     *storage.Store
	OwnerID   string
	Planner   *pipeline.Planner
	Executor  *pipeline.Executor
	Searcher  *retrieval.Searcher
	Optimizer *optimizer.Optimizer
	Judge     *judge.Judge
}

// promptsChanged drops derived state after a vault write.
func (d Deps) promptsChanged() {
	if d.Searcher != nil {
		d.Searcher.Invalidate(d.OwnerID)
	}
}

// ownedPrompt returns the prompt only if it belongs to the served owner.
func (d Deps) ownedPrompt(id int64) (storage.Prompt, error) {
	p, err := d.Store.GetPrompt(id)
	if err != nil {
		return storage.Prompt{}, err
	}
	if p.OwnerID != d.OwnerID {
		return storage.Prompt{}, storage.ErrNotFound
	}
	return p, nil
}

// promptDetail is a prompt plus what a caller needs before running it: the
// {{placeholders}} to fill and a rough size.
type promptDetail struct {
	storage.Prompt
	Variables       []string `json:"variables"`
	EstimatedTokens int      `json:"estimated_tokens"`
}

func newPromptDetail(p storage.Prompt) promptDetail {
	vars := composer.Placeholders(p.Content)
	if vars == nil {
		vars = []string{}
	}
	return promptDetail{Prompt: p, Variables: vars, EstimatedTokens: composer.EstimateTokens(p.Content)}
}

type runView struct {
	storage.Run
	Trace json.RawMessage `json:"trace"`
}

func newRunView(r storage.Run) runView {
	trace := json.RawMessage(r.TraceJSON)
	if !json.Valid(trace) {
		trace = json.RawMessage("[]")
	}
	return runView{Run: r, Trace: trace}
}

const runSummaryAnswerRunes = 200

type runSummary struct {
	ID          string    `json:"id"`
	Status      string    `json:"status"`
	StepCount   int       `json:"step_count"`
	FinalAnswer string    `json:"final_answer"`
	CreatedAt   time.Time `json:"created_at"`
}

func summarizeRuns(runs []storage.Run) []runSummary {
	out := make([]runSummary, len(runs))
	for i, r := range runs {
		answer := r.FinalAnswer
		if utf8.RuneCountInString(answer) > runSummaryAnswerRunes {
			answer = string([]rune(answer)[:runSummaryAnswerRunes]) + "..."
		}
		out[i] = runSummary{
			ID:          r.ID,
			Status:      r.Status,
			StepCount:   r.StepCount,
			FinalAnswer: answer,
			CreatedAt:   r.CreatedAt,
		}
	}
	return out
}
