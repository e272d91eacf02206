package judge

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/kalambet/promptpilot/internal/engine"
)

// mockEngine answers generation prompts by echoing them and judge prompts
// with judgeResp.
type mockEngine struct {
	name      string
	judgeResp string
	judgeErr  error
	genErr    error

	mu    sync.Mutex
	calls []engine.Request
}

func (m *mockEngine) Name() string { return m.name }

func (m *mockEngine) Generate(_ context.Context, req engine.Request) (string, error) {
	m.mu.Lock()
	m.calls = append(m.calls, req)
	m.mu.Unlock()
	if req.JSON {
		return m.judgeResp, m.judgeErr
	}
	if m.genErr != nil {
		return "", m.genErr
	}
	return "response to " + req.Prompt, nil
}

const validVerdict = `Here you go:
{"feedback": "B is sharper.",
 "scores": {"promptA": {"clarity": 60, "engagement": 140, "creativity": -5, "effectiveness": 70.6, "specificity": 50},
            "promptB": {"clarity": 80, "engagement": 85, "creativity": 90, "effectiveness": 88, "specificity": 92}},
 "winner": "promptB",
 "reasoning": "More specific instructions.",
 "recommendations": {"promptA": ["Name the audience"]}}`

func TestCompare_GeneratesAndJudges(t *testing.T) {
	eng := &mockEngine{name: "gemini", judgeResp: validVerdict}
	j := New(engine.NewRegistry("gemini", eng))

	c, err := j.Compare(context.Background(), "write a poem", "write a sonnet about tides", "Gemini")
	if err != nil {
		t.Fatalf("Compare: %v", err)
	}
	if c.ResponseA != "response to write a poem" || c.ResponseB != "response to write a sonnet about tides" {
		t.Errorf("responses = %q / %q", c.ResponseA, c.ResponseB)
	}
	if c.Fallback {
		t.Error("Fallback = true, want model verdict")
	}
	if c.Winner != PromptB {
		t.Errorf("Winner = %q, want promptB", c.Winner)
	}
	wantA := Scores{Clarity: 60, Engagement: 100, Creativity: 0, Effectiveness: 71, Specificity: 50}
	if diff := cmp.Diff(wantA, c.Scores.PromptA); diff != "" {
		t.Errorf("clamped scores mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{}, c.Recommendations.PromptB); diff != "" {
		t.Errorf("missing recommendations not defaulted (-want +got):\n%s", diff)
	}
	if c.OverallAssessment == "" {
		t.Error("OverallAssessment empty")
	}

	if len(eng.calls) != 3 {
		t.Fatalf("engine called %d times, want 3", len(eng.calls))
	}
	judgeReq := eng.calls[2]
	if !judgeReq.JSON || !strings.Contains(judgeReq.Prompt, "RESPONSE B:\n---\nresponse to write a sonnet about tides") {
		t.Errorf("judge request does not embed both responses:\n%s", judgeReq.Prompt)
	}
}

func TestCompare_GenerationFailure(t *testing.T) {
	boom := errors.New("upstream 500")
	j := New(engine.NewRegistry("gemini", &mockEngine{name: "gemini", genErr: boom}))

	_, err := j.Compare(context.Background(), "a", "b", "")
	if !errors.Is(err, boom) {
		t.Errorf("error = %v, want %v", err, boom)
	}
}

func TestCompare_Validation(t *testing.T) {
	j := New(engine.NewRegistry("gemini", &mockEngine{name: "gemini"}))
	if _, err := j.Compare(context.Background(), "a", "  ", ""); !errors.Is(err, ErrEmptyPrompt) {
		t.Errorf("blank prompt: err = %v, want ErrEmptyPrompt", err)
	}

	j = New(engine.NewRegistry(""))
	if _, err := j.Compare(context.Background(), "a", "b", ""); !errors.Is(err, engine.ErrUnavailable) {
		t.Errorf("no engine: err = %v, want ErrUnavailable", err)
	}
}

func TestJudge_FallsBack(t *testing.T) {
	long := strings.Repeat("word ", 120) + "Really? Yes. It is. Done."
	tests := []struct {
		name string
		eng  *mockEngine
	}{
		{"engine error", &mockEngine{name: "gemini", judgeErr: errors.New("timeout")}},
		{"not json", &mockEngine{name: "gemini", judgeResp: "I prefer B."}},
		{"missing fields", &mockEngine{name: "gemini", judgeResp: `{"feedback": "x", "winner": "promptA"}`}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := New(engine.NewRegistry("gemini", tt.eng)).Judge(context.Background(), "a", "b", "short", long)
			if !v.Fallback {
				t.Fatal("Fallback = false, want heuristic verdict")
			}
			if v.Winner != PromptB {
				t.Errorf("Winner = %q, want promptB", v.Winner)
			}
		})
	}
}

func TestHeuristicScore(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want int
	}{
		{"empty", "", 50},
		{"punctuation", "Really?", 55},
		{"quotes", `He said "hi"`, 55},
		{"sentences", "One. Two. Three. Four", 55},
		{"long", strings.Repeat("a", 201), 60},
		{"very long", strings.Repeat("a", 501), 70},
		{"everything", strings.Repeat("a", 501) + ` "x"! One. Two. Three.`, 85},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := heuristicScore(tt.in); got != tt.want {
				t.Errorf("heuristicScore = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestParseVerdict_InvalidWinnerUsesTotals(t *testing.T) {
	v, err := parseVerdict(`{"feedback": "f", "reasoning": "r", "winner": "tie",
		"scores": {"promptA": {"clarity": 10}, "promptB": {"clarity": 20}}}`)
	if err != nil {
		t.Fatalf("parseVerdict: %v", err)
	}
	if v.Winner != PromptB {
		t.Errorf("Winner = %q, want promptB", v.Winner)
	}
}
