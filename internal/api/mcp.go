package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/kalambet/promptpilot/internal/optimizer"
	"github.com/kalambet/promptpilot/internal/pipeline"
	"github.com/kalambet/promptpilot/internal/storage"
)

const recentRunsLimit = 10

// NewMCPServer creates an MCP server exposing the prompt vault, the planner
// and the chain executor as tools.
func NewMCPServer(deps Deps) *server.MCPServer {
	s := server.NewMCPServer(
		"promptpilot",
		"1.0.0",
		server.WithToolCapabilities(true),
		server.WithResourceCapabilities(false, true),
		server.WithInstructions("promptpilot: a vault of reusable prompts. Use create_execution_plan to pick prompts for a task, then execute_prompt_chain to run them in order."),
		server.WithRecovery(),
	)

	s.AddTool(
		mcp.NewTool("list_prompts",
			mcp.WithDescription("List prompts in the vault, newest first."),
			mcp.WithString("category", mcp.Description("Only prompts carrying this tag")),
			mcp.WithString("search", mcp.Description("Case-insensitive text to look for in title or content")),
		),
		mcpListPrompts(deps),
	)

	s.AddTool(
		mcp.NewTool("get_prompt",
			mcp.WithDescription("Fetch one prompt by ID."),
			mcp.WithNumber("id", mcp.Description("Prompt ID"), mcp.Required()),
		),
		mcpGetPrompt(deps),
	)

	s.AddTool(
		mcp.NewTool("search_prompts",
			mcp.WithDescription("Fuzzy full-text search over titles, tags, descriptions and content."),
			mcp.WithString("query", mcp.Description("Search text"), mcp.Required()),
			mcp.WithNumber("limit", mcp.Description("Maximum number of results (default 10)")),
		),
		mcpSearchPrompts(deps),
	)

	s.AddTool(
		mcp.NewTool("create_execution_plan",
			mcp.WithDescription("Analyze a task and return an ordered plan of vault prompts to run for it."),
			mcp.WithString("task", mcp.Description("What you want to accomplish"), mcp.Required()),
		),
		mcpCreatePlan(deps),
	)

	s.AddTool(
		mcp.NewTool("execute_prompt_chain",
			mcp.WithDescription("Run prompts in order, feeding each output into the next, and return the trace and final answer."),
			mcp.WithArray("prompts",
				mcp.Description("Steps to run, usually the prompts of a plan"),
				mcp.Required(),
				mcp.Items(map[string]any{
					"type": "object",
					"properties": map[string]any{
						"id":        map[string]any{"type": "number"},
						"title":     map[string]any{"type": "string"},
						"content":   map[string]any{"type": "string"},
						"variables": map[string]any{"type": "object", "additionalProperties": map[string]any{"type": "string"}},
					},
					"required": []string{"content"},
				}),
			),
		),
		mcpExecuteChain(deps),
	)

	s.AddTool(
		mcp.NewTool("optimize_prompt",
			mcp.WithDescription("Rewrite a prompt's title, tags and content to be clearer and more effective."),
			mcp.WithString("title", mcp.Description("Current title")),
			mcp.WithString("content", mcp.Description("Current prompt content")),
			mcp.WithArray("tags", mcp.Description("Current tags"), mcp.WithStringItems()),
			mcp.WithString("model", mcp.Description("Target model, e.g. GPT-4 or Claude")),
		),
		mcpOptimize(deps),
	)

	s.AddResource(
		mcp.NewResource(
			"vault://prompts",
			"Prompt Vault",
			mcp.WithResourceDescription("All prompts in the vault as JSON"),
			mcp.WithMIMEType("application/json"),
		),
		mcpResourcePrompts(deps),
	)

	s.AddResource(
		mcp.NewResource(
			"vault://runs/recent",
			"Recent Runs",
			mcp.WithResourceDescription("Last 10 chain executions (answers truncated)"),
			mcp.WithMIMEType("application/json"),
		),
		mcpResourceRecentRuns(deps),
	)

	return s
}

func mcpListPrompts(deps Deps) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		prompts, err := deps.Store.ListPrompts(deps.OwnerID, storage.PromptFilter{
			Tag:    req.GetString("category", ""),
			Search: req.GetString("search", ""),
		})
		if err != nil {
			return mcpError(fmt.Sprintf("failed to list prompts: %v", err)), nil
		}
		if prompts == nil {
			prompts = []storage.Prompt{}
		}
		return mcpJSON(prompts), nil
	}
}

func mcpGetPrompt(deps Deps) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		id, err := req.RequireInt("id")
		if err != nil || id <= 0 {
			return mcpError("invalid request: id must be a positive integer"), nil
		}
		p, err := deps.ownedPrompt(int64(id))
		if errors.Is(err, storage.ErrNotFound) {
			return mcpError(fmt.Sprintf("prompt %d not found", id)), nil
		}
		if err != nil {
			return mcpError(fmt.Sprintf("failed to get prompt: %v", err)), nil
		}
		return mcpJSON(newPromptDetail(p)), nil
	}
}

func mcpSearchPrompts(deps Deps) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		query, err := req.RequireString("query")
		if err != nil || strings.TrimSpace(query) == "" {
			return mcpError("query is required"), nil
		}

		limit := req.GetInt("limit", 10)
		if limit <= 0 {
			limit = 10
		}
		if limit > 50 {
			limit = 50
		}

		hits, err := deps.Searcher.Search(ctx, deps.OwnerID, query, limit)
		if err != nil {
			return mcpError(fmt.Sprintf("search failed: %v", err)), nil
		}
		return mcpJSON(hits), nil
	}
}

func mcpCreatePlan(deps Deps) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		task, err := req.RequireString("task")
		if err != nil {
			return mcpError("task is required"), nil
		}

		plan, err := deps.Planner.CreatePlan(ctx, deps.OwnerID, task)
		if pipeline.IsUserError(err) {
			return mcpError(err.Error()), nil
		}
		if err != nil {
			return mcpError(fmt.Sprintf("failed to create plan: %v", err)), nil
		}
		return mcpJSON(plan), nil
	}
}

func mcpExecuteChain(deps Deps) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		var args executeRequest
		if err := req.BindArguments(&args); err != nil {
			return mcpError(fmt.Sprintf("invalid request: %v", err)), nil
		}
		if args.Prompts == nil {
			return mcpError("invalid request: prompts is required"), nil
		}

		res, err := deps.Executor.Execute(ctx, deps.OwnerID, args.Prompts)
		if errors.Is(err, pipeline.ErrInvalidStep) {
			return mcpError("invalid request: " + err.Error()), nil
		}
		var stepErr *pipeline.StepError
		if errors.As(err, &stepErr) {
			b, _ := json.MarshalIndent(res, "", "  ")
			return mcpError(fmt.Sprintf("chain stopped: %v\npartial result:\n%s", err, b)), nil
		}
		if err != nil {
			return mcpError(fmt.Sprintf("failed to execute chain: %v", err)), nil
		}
		return mcpJSON(res), nil
	}
}

func mcpOptimize(deps Deps) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		res, err := deps.Optimizer.Optimize(ctx, optimizer.Draft{
			Title:   req.GetString("title", ""),
			Content: req.GetString("content", ""),
			Tags:    req.GetStringSlice("tags", nil),
			Model:   req.GetString("model", ""),
		})
		if err != nil {
			return mcpError(err.Error()), nil
		}
		return mcpJSON(res), nil
	}
}

func mcpResourcePrompts(deps Deps) server.ResourceHandlerFunc {
	return func(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
		prompts, err := deps.Store.ListPromptsByOwner(deps.OwnerID)
		if err != nil {
			return nil, fmt.Errorf("failed to list prompts: %w", err)
		}
		if prompts == nil {
			prompts = []storage.Prompt{}
		}
		return jsonResource(req.Params.URI, prompts)
	}
}

func mcpResourceRecentRuns(deps Deps) server.ResourceHandlerFunc {
	return func(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
		runs, err := deps.Store.GetRecentRuns(deps.OwnerID, recentRunsLimit)
		if err != nil {
			return nil, fmt.Errorf("failed to get recent runs: %w", err)
		}
		return jsonResource(req.Params.URI, summarizeRuns(runs))
	}
}

func jsonResource(uri string, v any) ([]mcp.ResourceContents, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal resource: %w", err)
	}
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      uri,
			MIMEType: "application/json",
			Text:     string(b),
		},
	}, nil
}

func mcpJSON(v any) *mcp.CallToolResult {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return mcpError(fmt.Sprintf("failed to marshal result: %v", err))
	}
	return mcpText(string(b))
}

func mcpText(text string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			mcp.TextContent{Type: "text", Text: text},
		},
	}
}

func mcpError(msg string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			mcp.TextContent{Type: "text", Text: msg},
		},
		IsError: true,
	}
}
