package engine

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestOllamaEngine_Generate(t *testing.T) {
	var got map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/chat" {
			http.NotFound(w, r)
			return
		}
		json.NewDecoder(r.Body).Decode(&got)
		json.NewEncoder(w).Encode(map[string]any{
			"message": map[string]string{"role": "assistant", "content": "hello from ollama"},
		})
	}))
	defer srv.Close()

	e := NewOllamaEngine(srv.URL, "")
	result, err := e.Generate(context.Background(), Request{Prompt: "hi", Temperature: Temperature(0.3)})
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if result != "hello from ollama" {
		t.Errorf("got %q, want %q", result, "hello from ollama")
	}
	if got["model"] != defaultOllamaModel {
		t.Errorf("model = %v, want %q", got["model"], defaultOllamaModel)
	}
	opts, _ := got["options"].(map[string]any)
	if opts["num_predict"] != float64(defaultMaxTokens) {
		t.Errorf("num_predict = %v, want %d", opts["num_predict"], defaultMaxTokens)
	}
	if _, ok := got["format"]; ok {
		t.Error("format should be omitted for plain text requests")
	}
}

func TestOllamaEngine_GenerateJSON(t *testing.T) {
	var got map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewDecoder(r.Body).Decode(&got)
		json.NewEncoder(w).Encode(map[string]any{
			"message": map[string]string{"role": "assistant", "content": `{"ok":true}`},
		})
	}))
	defer srv.Close()

	e := NewOllamaEngine(srv.URL, "mistral-nemo")
	if _, err := e.Generate(context.Background(), Request{Prompt: "json please", JSON: true, Model: "qwen2.5"}); err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if got["model"] != "qwen2.5" {
		t.Errorf("model = %v, want request override qwen2.5", got["model"])
	}
	if _, ok := got["format"].(map[string]any); !ok {
		t.Errorf("format = %v, want schema object", got["format"])
	}
}

func TestOllamaEngine_ServerDown(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close()

	e := NewOllamaEngine(srv.URL, "")
	if _, err := e.Generate(context.Background(), Request{Prompt: "hi"}); err == nil {
		t.Error("expected error when server is down")
	}
}
