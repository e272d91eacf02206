package pack

import (
	"bytes"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/kalambet/promptpilot/internal/storage"
)

func TestStarter(t *testing.T) {
	p := Starter()
	if len(p.Prompts) != 9 {
		t.Fatalf("starter has %d prompts, want 9", len(p.Prompts))
	}
	var titles []string
	for _, e := range p.Prompts[5:] {
		titles = append(titles, e.Title)
	}
	want := []string{"Information Gathering Prompt", "Key Point Extractor", "Thematic Synthesizer", "High-Level Summary Prompt"}
	if diff := cmp.Diff(want, titles); diff != "" {
		t.Errorf("workflow titles mismatch (-want +got):\n%s", diff)
	}
	if !strings.Contains(p.Prompts[6].Content, "\n  - Insight 1\n") {
		t.Errorf("block scalar indentation lost: %q", p.Prompts[6].Content)
	}
}

func TestParse_Validation(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"empty", "", "empty"},
		{"unknown field", "name: x\nprompts:\n  - title: a\n    content: b\n    likes: 3\n", "likes"},
		{"missing title", "name: x\nprompts:\n  - content: b\n", "title is required"},
		{"missing content", "name: x\nprompts:\n  - title: a\n", "content is required"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse(strings.NewReader(tt.in))
			if err == nil || !strings.Contains(err.Error(), tt.want) {
				t.Errorf("error = %v, want mention of %q", err, tt.want)
			}
		})
	}
}

func TestEncodeParse(t *testing.T) {
	in := FromPrompts("mine", []storage.Prompt{
		{ID: 3, OwnerID: "alice", Title: "Reviewer", Content: "Review this:\n{{diff}}", Tags: []string{"code", "review"}, Model: "Claude"},
	})

	var buf bytes.Buffer
	if err := Encode(&buf, in); err != nil {
		t.Fatalf("Encode: %v", err)
	}
	out, err := Parse(&buf)
	if err != nil {
		t.Fatalf("Parse: %v\n%s", err, buf.String())
	}
	if diff := cmp.Diff(in, out); diff != "" {
		t.Errorf("pack mismatch (-want +got):\n%s", diff)
	}
}

func TestImport(t *testing.T) {
	s, err := storage.Open(":memory:")
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { s.Close() })

	if _, err := s.CreatePrompt(storage.Prompt{OwnerID: "alice", Title: "recipe creator", Content: "mine"}); err != nil {
		t.Fatalf("CreatePrompt: %v", err)
	}

	res, err := Import(s, "alice", Starter())
	if err != nil {
		t.Fatalf("Import: %v", err)
	}
	if res != (ImportResult{Created: 8, Skipped: 1}) {
		t.Errorf("result = %+v, want 8 created, 1 skipped", res)
	}

	res, err = Import(s, "alice", Starter())
	if err != nil {
		t.Fatalf("second Import: %v", err)
	}
	if res.Created != 0 || res.Skipped != 9 {
		t.Errorf("second import = %+v, want everything skipped", res)
	}

	n, err := s.CountPrompts("alice")
	if err != nil {
		t.Fatalf("CountPrompts: %v", err)
	}
	if n != 9 {
		t.Errorf("vault has %d prompts, want 9", n)
	}
	if n, _ := s.CountPrompts("bob"); n != 0 {
		t.Errorf("bob's vault has %d prompts, want 0", n)
	}
}
