package api

import (
	"context"
	"encoding/json"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/mark3labs/mcp-go/mcp"

	"github.com/kalambet/promptpilot/internal/pipeline"
	"github.com/kalambet/promptpilot/internal/storage"
)

// --- helpers ---

func toolText(t *testing.T, result *mcp.CallToolResult) string {
	t.Helper()
	if len(result.Content) == 0 {
		t.Fatal("no content in result")
	}
	tc, ok := result.Content[0].(mcp.TextContent)
	if !ok {
		t.Fatalf("expected TextContent, got %T", result.Content[0])
	}
	return tc.Text
}

func makeCallToolRequest(name string, args map[string]any) mcp.CallToolRequest {
	return mcp.CallToolRequest{
		Params: mcp.CallToolParams{
			Name:      name,
			Arguments: args,
		},
	}
}

func makeReadResourceRequest(uri string) mcp.ReadResourceRequest {
	return mcp.ReadResourceRequest{
		Params: mcp.ReadResourceParams{
			URI: uri,
		},
	}
}

func callOK(t *testing.T, result *mcp.CallToolResult, err error) string {
	t.Helper()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.IsError {
		t.Fatalf("unexpected tool error: %s", toolText(t, result))
	}
	return toolText(t, result)
}

// --- tests ---

func TestMCPTool_ListPrompts(t *testing.T) {
	deps, store := newTestDeps(t, nil)
	seedStarter(t, store)
	if _, err := store.CreatePrompt(storage.Prompt{OwnerID: "someone-else", Title: "Research", Content: "research"}); err != nil {
		t.Fatalf("CreatePrompt: %v", err)
	}

	text := callOK(t, mcpListPrompts(deps)(context.Background(), makeCallToolRequest("list_prompts", map[string]any{
		"category": "summary",
	})))
	var got []storage.Prompt
	if err := json.Unmarshal([]byte(text), &got); err != nil {
		t.Fatalf("decoding result: %v", err)
	}
	if len(got) != 1 || got[0].Title != "High-Level Summary Prompt" {
		t.Errorf("category filter returned %+v", got)
	}

	text = callOK(t, mcpListPrompts(deps)(context.Background(), makeCallToolRequest("list_prompts", nil)))
	if err := json.Unmarshal([]byte(text), &got); err != nil {
		t.Fatalf("decoding result: %v", err)
	}
	if len(got) != 9 {
		t.Errorf("listed %d prompts, want the owner's 9", len(got))
	}
}

func TestMCPTool_GetPrompt(t *testing.T) {
	deps, store := newTestDeps(t, nil)
	mine, _ := store.CreatePrompt(storage.Prompt{OwnerID: testOwner, Title: "Mine", Content: "c"})
	theirs, _ := store.CreatePrompt(storage.Prompt{OwnerID: "bob", Title: "Theirs", Content: "c"})

	text := callOK(t, mcpGetPrompt(deps)(context.Background(), makeCallToolRequest("get_prompt", map[string]any{"id": float64(mine.ID)})))
	if !strings.Contains(text, `"title": "Mine"`) {
		t.Errorf("unexpected prompt: %s", text)
	}

	result, err := mcpGetPrompt(deps)(context.Background(), makeCallToolRequest("get_prompt", map[string]any{"id": float64(theirs.ID)}))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !result.IsError || !strings.Contains(toolText(t, result), "not found") {
		t.Errorf("another owner's prompt was returned: %s", toolText(t, result))
	}
}

func TestMCPTool_SearchPrompts(t *testing.T) {
	deps, store := newTestDeps(t, nil)
	seedStarter(t, store)

	text := callOK(t, mcpSearchPrompts(deps)(context.Background(), makeCallToolRequest("search_prompts", map[string]any{
		"query": "recipe ingredients",
		"limit": float64(3),
	})))
	var hits []struct {
		Prompt storage.Prompt `json:"prompt"`
	}
	if err := json.Unmarshal([]byte(text), &hits); err != nil {
		t.Fatalf("decoding result: %v", err)
	}
	if len(hits) == 0 || hits[0].Prompt.Title != "Recipe Creator" {
		t.Errorf("top hit = %+v, want Recipe Creator", hits)
	}
}

func TestMCPTool_CreatePlan(t *testing.T) {
	deps, store := newTestDeps(t, nil)
	seedStarter(t, store)

	text := callOK(t, mcpCreatePlan(deps)(context.Background(), makeCallToolRequest("create_execution_plan", map[string]any{
		"task": "Research AI safety and summarize the findings",
	})))
	var plan pipeline.Plan
	if err := json.Unmarshal([]byte(text), &plan); err != nil {
		t.Fatalf("decoding plan: %v", err)
	}
	var titles []string
	for _, p := range plan.Prompts {
		titles = append(titles, p.Title)
	}
	want := []string{"Information Gathering Prompt", "High-Level Summary Prompt"}
	if diff := cmp.Diff(want, titles); diff != "" {
		t.Errorf("plan mismatch (-want +got):\n%s", diff)
	}
	if plan.Rerank.Outcome != "disabled" {
		t.Errorf("rerank outcome = %q, want disabled", plan.Rerank.Outcome)
	}
}

func TestMCPTool_CreatePlan_EmptyVault(t *testing.T) {
	deps, _ := newTestDeps(t, nil)

	result, err := mcpCreatePlan(deps)(context.Background(), makeCallToolRequest("create_execution_plan", map[string]any{
		"task": "research tides",
	}))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !result.IsError || toolText(t, result) != pipeline.ErrEmptyVault.Error() {
		t.Errorf("result = %q, want empty vault message", toolText(t, result))
	}
}

func TestMCPTool_ExecuteChain(t *testing.T) {
	deps, store := newTestDeps(t, &mockEngine{})

	text := callOK(t, mcpExecuteChain(deps)(context.Background(), makeCallToolRequest("execute_prompt_chain", map[string]any{
		"prompts": []any{
			map[string]any{"id": float64(1), "title": "a", "content": "Research {{topic}}", "variables": map[string]any{"topic": "tides"}},
			map[string]any{"id": float64(2), "title": "b", "content": "Summarize"},
		},
	})))
	var res pipeline.ChainResult
	if err := json.Unmarshal([]byte(text), &res); err != nil {
		t.Fatalf("decoding result: %v", err)
	}
	if len(res.Trace) != 2 || res.FinalAnswer != "step output" {
		t.Errorf("result = %+v", res)
	}
	if res.Trace[0].Content != "Research tides" {
		t.Errorf("variables not substituted: %q", res.Trace[0].Content)
	}

	runs, err := store.GetRecentRuns(testOwner, 10)
	if err != nil {
		t.Fatalf("GetRecentRuns: %v", err)
	}
	if len(runs) != 1 || runs[0].ID != res.RunID {
		t.Errorf("runs = %+v, want the executed run", runs)
	}
}

func TestMCPTool_ExecuteChain_InvalidStep(t *testing.T) {
	deps, _ := newTestDeps(t, &mockEngine{})

	result, err := mcpExecuteChain(deps)(context.Background(), makeCallToolRequest("execute_prompt_chain", map[string]any{
		"prompts": []any{map[string]any{"id": float64(1), "title": "a", "content": ""}},
	}))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !result.IsError || !strings.HasPrefix(toolText(t, result), "invalid request:") {
		t.Errorf("result = %q, want invalid request error", toolText(t, result))
	}
}

func TestMCPTool_ExecuteChain_Degraded(t *testing.T) {
	deps, _ := newTestDeps(t, nil)

	text := callOK(t, mcpExecuteChain(deps)(context.Background(), makeCallToolRequest("execute_prompt_chain", map[string]any{
		"prompts": []any{map[string]any{"id": float64(1), "title": "a", "content": "do it"}},
	})))
	var res pipeline.ChainResult
	if err := json.Unmarshal([]byte(text), &res); err != nil {
		t.Fatalf("decoding result: %v", err)
	}
	if !res.Degraded || len(res.Pending) != 1 || res.Pending[0].Content != "do it" {
		t.Errorf("result = %+v, want degraded inert plan", res)
	}
}

func TestMCPTool_Optimize(t *testing.T) {
	deps, _ := newTestDeps(t, &mockEngine{jsonResp: `{"title": "Better", "tags": ["x"], "content": "Improved"}`})

	text := callOK(t, mcpOptimize(deps)(context.Background(), makeCallToolRequest("optimize_prompt", map[string]any{
		"content": "make it better",
	})))
	if !strings.Contains(text, `"title": "Better"`) {
		t.Errorf("unexpected result: %s", text)
	}

	result, _ := mcpOptimize(deps)(context.Background(), makeCallToolRequest("optimize_prompt", nil))
	if !result.IsError {
		t.Error("empty draft accepted")
	}
}

func TestMCPResource_RecentRuns(t *testing.T) {
	deps, store := newTestDeps(t, nil)
	long := strings.Repeat("ж", 250)
	if err := store.SaveRun(storage.Run{ID: "r1", OwnerID: testOwner, Status: storage.RunCompleted, StepCount: 1, FinalAnswer: long}); err != nil {
		t.Fatalf("SaveRun: %v", err)
	}

	contents, err := mcpResourceRecentRuns(deps)(context.Background(), makeReadResourceRequest("vault://runs/recent"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	tc, ok := contents[0].(mcp.TextResourceContents)
	if !ok {
		t.Fatalf("expected TextResourceContents, got %T", contents[0])
	}
	var runs []runSummary
	if err := json.Unmarshal([]byte(tc.Text), &runs); err != nil {
		t.Fatalf("decoding runs: %v", err)
	}
	if len(runs) != 1 {
		t.Fatalf("got %d runs, want 1", len(runs))
	}
	if want := strings.Repeat("ж", 200) + "..."; runs[0].FinalAnswer != want {
		t.Errorf("answer not truncated to 200 runes: %d runes", len([]rune(runs[0].FinalAnswer)))
	}
}

func TestMCPResource_Prompts(t *testing.T) {
	deps, store := newTestDeps(t, nil)
	seedStarter(t, store)

	contents, err := mcpResourcePrompts(deps)(context.Background(), makeReadResourceRequest("vault://prompts"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	tc := contents[0].(mcp.TextResourceContents)
	var prompts []storage.Prompt
	if err := json.Unmarshal([]byte(tc.Text), &prompts); err != nil {
		t.Fatalf("decoding prompts: %v", err)
	}
	if len(prompts) != 9 || prompts[0].Title != "Creative Story Starter" {
		t.Errorf("resource returned %d prompts, first %q", len(prompts), prompts[0].Title)
	}
}
