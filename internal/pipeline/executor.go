package pipeline

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/kalambet/promptpilot/internal/composer"
	"github.com/kalambet/promptpilot/internal/engine"
	"github.com/kalambet/promptpilot/internal/storage"
)

// Step is one prompt to run in a chain.
type Step struct {
	ID        int64             `json:"id"`
	Title     string            `json:"title"`
	Content   string            `json:"content"`
	Variables map[string]string `json:"variables,omitempty"`
}

// TraceEntry records one executed step.
type TraceEntry struct {
	Step     int    `json:"step"`
	PromptID int64  `json:"promptId"`
	Title    string `json:"title"`
	Content  string `json:"content"`
	Input    string `json:"input"`
	Output   string `json:"output"`
}

// PendingStep is a step that was not executed because generation is
// unavailable. The caller can run it itself.
type PendingStep struct {
	Step     int    `json:"step"`
	PromptID int64  `json:"promptId"`
	Title    string `json:"title"`
	Content  string `json:"content"`
}

// ChainResult is the outcome of Execute.
type ChainResult struct {
	RunID       string        `json:"run_id,omitempty"`
	Trace       []TraceEntry  `json:"trace"`
	FinalAnswer string        `json:"finalAnswer"`
	Degraded    bool          `json:"degraded,omitempty"`
	Reason      string        `json:"reason,omitempty"`
	Pending     []PendingStep `json:"pending,omitempty"`
}

// RunRecorder persists chain executions.
type RunRecorder interface {
	SaveRun(r storage.Run) error
}

// Executor runs chains of prompts against a generation engine.
type Executor struct {
	engine engine.Engine
	runs   RunRecorder
	now    func() time.Time
}

// NewExecutor creates an Executor. eng may be nil, in which case every
// execution degrades to returning the pending steps. runs may be nil to
// disable run history.
func NewExecutor(eng engine.Engine, runs RunRecorder) *Executor {
	return &Executor{engine: eng, runs: runs, now: time.Now}
}

// Execute runs steps strictly in order. Each step receives the previous
// step's output as context; the first step receives an empty context.
//
// A step with empty content fails the whole request with ErrInvalidStep
// before any generation happens. The first generation failure stops the
// chain and the partial trace is returned along with a *StepError.
func (e *Executor) Execute(ctx context.Context, ownerID string, steps []Step) (ChainResult, error) {
	for i, s := range steps {
		if strings.TrimSpace(s.Content) == "" {
			return ChainResult{}, fmt.Errorf("%w: step %d (prompt %d) has empty content", ErrInvalidStep, i+1, s.ID)
		}
	}

	res := ChainResult{Trace: []TraceEntry{}}
	if len(steps) == 0 {
		return res, nil
	}
	res.RunID = uuid.New().String()

	if e.engine == nil {
		res.Degraded = true
		res.Reason = engine.ErrUnavailable.Error()
		res.Pending = make([]PendingStep, len(steps))
		for i, s := range steps {
			res.Pending[i] = PendingStep{
				Step:     i + 1,
				PromptID: s.ID,
				Title:    s.Title,
				Content:  composer.Substitute(s.Content, s.Variables),
			}
		}
		slog.Warn("chain execution degraded", "run_id", res.RunID, "steps", len(steps), "reason", res.Reason)
		e.record(ownerID, res, len(steps), storage.RunDegraded, nil)
		return res, nil
	}

	start := time.Now()
	var prev string
	for i, s := range steps {
		content := composer.Substitute(s.Content, s.Variables)
		out, err := e.engine.Generate(ctx, engine.Request{
			Prompt: composer.StepPrompt(prev, content),
		})
		if err != nil {
			stepErr := &StepError{Step: i + 1, PromptID: s.ID, Err: err}
			slog.Warn("chain step failed", "run_id", res.RunID, "step", i+1, "prompt_id", s.ID, "error", err)
			e.record(ownerID, res, len(steps), storage.RunFailed, stepErr)
			return res, stepErr
		}

		res.Trace = append(res.Trace, TraceEntry{
			Step:     i + 1,
			PromptID: s.ID,
			Title:    s.Title,
			Content:  content,
			Input:    prev,
			Output:   out,
		})
		slog.Debug("chain step done", "run_id", res.RunID, "step", i+1, "prompt_id", s.ID, "output_len", len(out))
		prev = out
	}
	res.FinalAnswer = prev

	slog.Info("chain executed",
		"run_id", res.RunID,
		"engine", e.engine.Name(),
		"steps", len(steps),
		"duration_ms", time.Since(start).Milliseconds(),
	)
	e.record(ownerID, res, len(steps), storage.RunCompleted, nil)
	return res, nil
}

// record persists the run. Storage failures are logged, never returned.
func (e *Executor) record(ownerID string, res ChainResult, stepCount int, status string, runErr error) {
	if e.runs == nil {
		return
	}
	traceJSON := "[]"
	if len(res.Trace) > 0 {
		b, err := json.Marshal(res.Trace)
		if err != nil {
			slog.Warn("encoding run trace", "run_id", res.RunID, "error", err)
		} else {
			traceJSON = string(b)
		}
	}

	run := storage.Run{
		ID:          res.RunID,
		OwnerID:     ownerID,
		Status:      status,
		StepCount:   stepCount,
		FinalAnswer: res.FinalAnswer,
		TraceJSON:   traceJSON,
		CreatedAt:   e.now().UTC(),
	}
	switch {
	case runErr != nil:
		run.Error = runErr.Error()
	case status == storage.RunDegraded:
		run.Error = res.Reason
	}
	if err := e.runs.SaveRun(run); err != nil {
		slog.Warn("saving run history", "run_id", res.RunID, "error", err)
	}
}
