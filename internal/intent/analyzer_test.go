package intent

import (
	"encoding/json"
	"testing"
	"unicode/utf8"

	"github.com/google/go-cmp/cmp"
)

func TestAnalyze_Actions(t *testing.T) {
	tests := []struct {
		name string
		task string
		want []Action
	}{
		{"no verb", "a poem about the sea", []Action{General}},
		{"empty", "", []Action{General}},
		{"single", "Write a poem", []Action{Write}},
		{"textual order", "summarize the paper then research its citations", []Action{Summarize, Research}},
		{"reverse declaration order", "debug the parser and review the fix", []Action{Code, Review}},
		{"case insensitive", "INVESTIGATE outages", []Action{Research}},
		{"substring match", "researching tools", []Action{Research}},
		{"all five", "find, draft, recap, check, build", []Action{Research, Write, Summarize, Review, Code}},
		{"repeat verb counts once", "write and write again", []Action{Write}},
		{"scenario", "research AI safety and make a summary", []Action{Research, Summarize}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Analyze(tt.task).Actions
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("Analyze(%q).Actions mismatch (-want +got):\n%s", tt.task, diff)
			}
		})
	}
}

// TestAnalyze_AdjacentMatches checks ordering when verbs are glued together
// inside one token.
func TestAnalyze_AdjacentMatches(t *testing.T) {
	got := Analyze("checkbuild").Actions
	want := []Action{Review, Code}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("mismatch (-want +got):\n%s", diff)
	}

	got = Analyze("codefind").Actions
	want = []Action{Code, Research}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("mismatch (-want +got):\n%s", diff)
	}
}

func TestAnalyze_Keywords(t *testing.T) {
	got := Analyze("Research AI safety and make a summary of alignment safety papers").Keywords
	want := []string{"safety", "alignment", "papers"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("keywords mismatch (-want +got):\n%s", diff)
	}
}

func TestKeywords_Invariants(t *testing.T) {
	tasks := []string{
		"write a blog post about kubernetes operators with examples",
		"the quick brown fox jumps over the lazy developer",
		"review and critique this draft essay for clarity",
		"ünïcode wörds ärë fine",
	}
	for _, task := range tasks {
		for _, kw := range Analyze(task).Keywords {
			if utf8.RuneCountInString(kw) <= 3 {
				t.Errorf("%q: keyword %q too short", task, kw)
			}
			if fillerPattern.MatchString(kw) {
				t.Errorf("%q: keyword %q is a filler word", task, kw)
			}
			for _, a := range Detectable {
				if a.Pattern().MatchString(kw) {
					t.Errorf("%q: keyword %q matches action %v", task, kw, a)
				}
			}
		}
	}
}

func TestKeywords_EmptyIsNotNil(t *testing.T) {
	kw := Analyze("write").Keywords
	if kw == nil || len(kw) != 0 {
		t.Errorf("Keywords = %#v, want empty non-nil slice", kw)
	}
}

func TestAction_StringAndParse(t *testing.T) {
	for _, a := range append(Detectable, General) {
		got, err := ParseAction(a.String())
		if err != nil {
			t.Fatalf("ParseAction(%q): %v", a.String(), err)
		}
		if got != a {
			t.Errorf("ParseAction(%q) = %v, want %v", a.String(), got, a)
		}
	}
	if _, err := ParseAction("dance"); err == nil {
		t.Error("expected error for unknown action")
	}
	if General.Pattern() != nil {
		t.Error("General must not carry a matcher")
	}
}

func TestAnalysis_JSON(t *testing.T) {
	b, err := json.Marshal(Analyze("write code"))
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	want := `{"actions":["write","code"],"keywords":[]}`
	if string(b) != want {
		t.Errorf("json = %s, want %s", b, want)
	}
}
