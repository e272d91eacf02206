// Package pipeline turns a task into an ordered plan of vault prompts and
// runs such plans as sequential generation chains.
package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/kalambet/promptpilot/internal/intent"
	"github.com/kalambet/promptpilot/internal/reranking"
	"github.com/kalambet/promptpilot/internal/retrieval"
	"github.com/kalambet/promptpilot/internal/storage"
)

const planInstructions = "Execute these prompts in order. Pass the output of each prompt as context to the next one, " +
	"or call execute_prompt_chain with the prompts to run the whole chain."

// PromptLister reads an owner's vault in insertion order.
type PromptLister interface {
	ListPromptsByOwner(ownerID string) ([]storage.Prompt, error)
}

// PlannedPrompt is a prompt with its 1-based position in the plan.
type PlannedPrompt struct {
	Order int `json:"order"`
	storage.Prompt
}

// Plan is the ordered set of prompts chosen for a task.
type Plan struct {
	Task         string           `json:"task"`
	Analysis     intent.Analysis  `json:"analysis"`
	Prompts      []PlannedPrompt  `json:"prompts"`
	Rerank       reranking.Result `json:"rerank"`
	Instructions string           `json:"instructions"`
}

// Steps converts the plan into executor input.
func (p Plan) Steps() []Step {
	steps := make([]Step, len(p.Prompts))
	for i, pp := range p.Prompts {
		steps[i] = Step{ID: pp.ID, Title: pp.Title, Content: pp.Content}
	}
	return steps
}

// Planner runs analysis, candidate selection and reranking for a task.
type Planner struct {
	store    PromptLister
	selector *retrieval.Selector
	reranker reranking.Reranker
}

// NewPlanner creates a Planner wired to all planning stages.
func NewPlanner(store PromptLister, selector *retrieval.Selector, reranker reranking.Reranker) *Planner {
	return &Planner{store: store, selector: selector, reranker: reranker}
}

// CreatePlan builds a plan for task from ownerID's vault:
//  1. Analyze the task into actions and keywords
//  2. Load the owner's prompts
//  3. Select at most one prompt per action
//  4. Let the reranker reorder or filter the candidates
//
// Reranker problems degrade to the selector's order; they never fail the
// plan. An empty vault or an empty selection are user errors.
func (p *Planner) CreatePlan(ctx context.Context, ownerID, task string) (Plan, error) {
	if strings.TrimSpace(task) == "" {
		return Plan{}, ErrEmptyTask
	}
	start := time.Now()

	analysis := intent.Analyze(task)

	prompts, err := p.store.ListPromptsByOwner(ownerID)
	if err != nil {
		return Plan{}, fmt.Errorf("loading vault: %w", err)
	}
	if len(prompts) == 0 {
		return Plan{}, ErrEmptyVault
	}

	candidates := p.selector.Select(analysis, prompts)
	if len(candidates) == 0 {
		return Plan{}, ErrNoCandidates
	}

	reranked := p.reranker.Rerank(ctx, task, candidates)

	planned := make([]PlannedPrompt, len(reranked.Prompts))
	for i, pr := range reranked.Prompts {
		planned[i] = PlannedPrompt{Order: i + 1, Prompt: pr}
	}

	slog.Debug("plan created",
		"owner", ownerID,
		"actions", len(analysis.Actions),
		"candidates", len(candidates),
		"planned", len(planned),
		"rerank", reranked.Outcome,
		"duration_ms", time.Since(start).Milliseconds(),
	)

	return Plan{
		Task:         task,
		Analysis:     analysis,
		Prompts:      planned,
		Rerank:       reranked,
		Instructions: planInstructions,
	}, nil
}
