// Package judge runs two prompts side by side and asks a model to compare
// the results.
package judge

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/kalambet/promptpilot/internal/composer"
	"github.com/kalambet/promptpilot/internal/engine"
)

// ErrEmptyPrompt is returned when either side of the comparison is blank.
var ErrEmptyPrompt = errors.New("both prompts are required")

// Winner labels.
const (
	PromptA = "promptA"
	PromptB = "promptB"
)

const (
	generateTemperature = 0.9
	generateMaxTokens   = 2048
)

// Scores rates one prompt and its response, each dimension 0-100.
type Scores struct {
	Clarity       int `json:"clarity"`
	Engagement    int `json:"engagement"`
	Creativity    int `json:"creativity"`
	Effectiveness int `json:"effectiveness"`
	Specificity   int `json:"specificity"`
}

// Total sums all dimensions.
func (s Scores) Total() int {
	return s.Clarity + s.Engagement + s.Creativity + s.Effectiveness + s.Specificity
}

type Pair[T any] struct {
	PromptA T `json:"promptA"`
	PromptB T `json:"promptB"`
}

// Verdict is the judge's comparison of two prompts.
type Verdict struct {
	Feedback          string         `json:"feedback"`
	Scores            Pair[Scores]   `json:"scores"`
	Winner            string         `json:"winner"`
	Reasoning         string         `json:"reasoning"`
	Recommendations   Pair[[]string] `json:"recommendations"`
	OverallAssessment string         `json:"overallAssessment"`
	// Fallback is set when the model verdict was unusable and the scores
	// come from response heuristics.
	Fallback bool `json:"fallback"`
}

// Comparison is a full playground run.
type Comparison struct {
	ResponseA string `json:"responseA"`
	ResponseB string `json:"responseB"`
	Verdict
}

// Engines resolves generation engines. *engine.Registry implements it.
type Engines interface {
	Resolve(hint string) engine.Engine
	Default() engine.Engine
}

type Judge struct {
	engines Engines
}

func New(engines Engines) *Judge {
	return &Judge{engines: engines}
}

// Compare generates a response for each prompt concurrently on the engine
// matching model, then asks the default engine to judge them. Generation
// failures are returned; judging failures fall back to heuristic scoring.
func (j *Judge) Compare(ctx context.Context, promptA, promptB, model string) (Comparison, error) {
	if strings.TrimSpace(promptA) == "" || strings.TrimSpace(promptB) == "" {
		return Comparison{}, ErrEmptyPrompt
	}
	gen := j.engines.Resolve(model)
	if gen == nil {
		return Comparison{}, engine.ErrUnavailable
	}

	var c Comparison
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		out, err := generate(gctx, gen, promptA)
		if err != nil {
			return fmt.Errorf("generating response A: %w", err)
		}
		c.ResponseA = out
		return nil
	})
	g.Go(func() error {
		out, err := generate(gctx, gen, promptB)
		if err != nil {
			return fmt.Errorf("generating response B: %w", err)
		}
		c.ResponseB = out
		return nil
	})
	if err := g.Wait(); err != nil {
		return Comparison{}, err
	}

	c.Verdict = j.Judge(ctx, promptA, promptB, c.ResponseA, c.ResponseB)
	return c, nil
}

func generate(ctx context.Context, eng engine.Engine, prompt string) (string, error) {
	return eng.Generate(ctx, engine.Request{
		Prompt:      prompt,
		Temperature: engine.Temperature(generateTemperature),
		MaxTokens:   generateMaxTokens,
	})
}

// Judge scores two prompt/response pairs. It never fails: an unavailable
// engine or an unusable answer produces a heuristic Fallback verdict.
func (j *Judge) Judge(ctx context.Context, promptA, promptB, responseA, responseB string) Verdict {
	eng := j.engines.Default()
	if eng == nil {
		slog.Warn("judge unavailable; using heuristic verdict")
		return fallbackVerdict(responseA, responseB)
	}

	resp, err := eng.Generate(ctx, engine.Request{
		Prompt: buildJudgePrompt(promptA, promptB, responseA, responseB),
		JSON:   true,
	})
	if err != nil {
		slog.Warn("judge call failed; using heuristic verdict", "engine", eng.Name(), "error", err)
		return fallbackVerdict(responseA, responseB)
	}
	v, err := parseVerdict(resp)
	if err != nil {
		slog.Warn("judge response unusable; using heuristic verdict", "engine", eng.Name(), "error", err)
		return fallbackVerdict(responseA, responseB)
	}
	return v
}

type rawScores struct {
	Clarity       float64 `json:"clarity"`
	Engagement    float64 `json:"engagement"`
	Creativity    float64 `json:"creativity"`
	Effectiveness float64 `json:"effectiveness"`
	Specificity   float64 `json:"specificity"`
}

type rawVerdict struct {
	Feedback          string            `json:"feedback"`
	Scores            *Pair[*rawScores] `json:"scores"`
	Winner            string            `json:"winner"`
	Reasoning         string            `json:"reasoning"`
	Recommendations   Pair[[]string]    `json:"recommendations"`
	OverallAssessment string            `json:"overallAssessment"`
}

func parseVerdict(resp string) (Verdict, error) {
	obj, ok := composer.ExtractObject(resp)
	if !ok {
		return Verdict{}, errors.New("no JSON object in judge response")
	}
	var raw rawVerdict
	if err := json.Unmarshal([]byte(obj), &raw); err != nil {
		return Verdict{}, fmt.Errorf("decoding judge response: %w", err)
	}
	if raw.Feedback == "" || raw.Reasoning == "" || raw.Scores == nil || raw.Scores.PromptA == nil || raw.Scores.PromptB == nil {
		return Verdict{}, errors.New("judge response is missing required fields")
	}

	v := Verdict{
		Feedback:          raw.Feedback,
		Scores:            Pair[Scores]{PromptA: raw.Scores.PromptA.clamp(), PromptB: raw.Scores.PromptB.clamp()},
		Winner:            raw.Winner,
		Reasoning:         raw.Reasoning,
		Recommendations:   raw.Recommendations,
		OverallAssessment: raw.OverallAssessment,
	}
	if v.Winner != PromptA && v.Winner != PromptB {
		v.Winner = PromptA
		if v.Scores.PromptB.Total() > v.Scores.PromptA.Total() {
			v.Winner = PromptB
		}
	}
	if v.Recommendations.PromptA == nil {
		v.Recommendations.PromptA = []string{}
	}
	if v.Recommendations.PromptB == nil {
		v.Recommendations.PromptB = []string{}
	}
	if v.OverallAssessment == "" {
		v.OverallAssessment = "Both prompts show potential with room for improvement."
	}
	return v, nil
}

func (r *rawScores) clamp() Scores {
	return Scores{
		Clarity:       clamp(r.Clarity),
		Engagement:    clamp(r.Engagement),
		Creativity:    clamp(r.Creativity),
		Effectiveness: clamp(r.Effectiveness),
		Specificity:   clamp(r.Specificity),
	}
}

func clamp(f float64) int {
	if math.IsNaN(f) {
		return 0
	}
	return int(math.Round(math.Min(100, math.Max(0, f))))
}

func buildJudgePrompt(promptA, promptB, responseA, responseB string) string {
	var b strings.Builder
	b.WriteString("You are an expert prompt engineering judge. Compare two prompts and the responses they produced.\n\n")
	b.WriteString("Score each prompt from 0 to 100 on:\n")
	b.WriteString("- clarity: how clear and unambiguous the prompt is\n")
	b.WriteString("- engagement: how compelling the response is\n")
	b.WriteString("- creativity: how original the response is\n")
	b.WriteString("- effectiveness: how well the prompt achieves its goal\n")
	b.WriteString("- specificity: how specific and detailed the instructions are\n\n")
	fmt.Fprintf(&b, "PROMPT A:\n---\n%s\n---\n\nRESPONSE A:\n---\n%s\n---\n\n", promptA, responseA)
	fmt.Fprintf(&b, "PROMPT B:\n---\n%s\n---\n\nRESPONSE B:\n---\n%s\n---\n\n", promptB, responseB)
	b.WriteString("Return a single valid JSON object only, with no markdown or extra text:\n")
	b.WriteString(`{"feedback": "...", "scores": {"promptA": {"clarity": 0, "engagement": 0, "creativity": 0, "effectiveness": 0, "specificity": 0}, ` +
		`"promptB": {"clarity": 0, "engagement": 0, "creativity": 0, "effectiveness": 0, "specificity": 0}}, ` +
		`"winner": "promptA or promptB", "reasoning": "...", "recommendations": {"promptA": ["..."], "promptB": ["..."]}, "overallAssessment": "..."}`)
	return b.String()
}
