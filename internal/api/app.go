package api

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/mark3labs/mcp-go/server"

	"github.com/kalambet/promptpilot/internal/judge"
	"github.com/kalambet/promptpilot/internal/optimizer"
	"github.com/kalambet/promptpilot/internal/pipeline"
	"github.com/kalambet/promptpilot/internal/storage"
)

type AppDeps struct {
	Deps
	Token string
}

// NewAppHandler returns the HTTP API. Everything except /health requires
// the bearer token, including the streamable HTTP MCP endpoint at /mcp.
func NewAppHandler(deps AppDeps) http.Handler {
	r := chi.NewRouter()
	r.Get("/health", handleHealth)

	r.Group(func(r chi.Router) {
		r.Use(BearerAuth(deps.Token))

		r.Get("/vault", handleVaultStats(deps.Deps))
		r.Get("/prompts", handleListPrompts(deps.Deps))
		r.Post("/prompts", handleCreatePrompt(deps.Deps))
		r.Get("/prompts/search", handleSearchPrompts(deps.Deps))
		r.Get("/prompts/{id}", handleGetPrompt(deps.Deps))
		r.Patch("/prompts/{id}", handleUpdatePrompt(deps.Deps))
		r.Delete("/prompts/{id}", handleDeletePrompt(deps.Deps))

		r.Post("/packs", handleImportPack(deps.Deps))
		r.Post("/packs/starter", handleImportStarter(deps.Deps))
		r.Get("/packs/export", handleExportPack(deps.Deps))

		r.Post("/plans", handleCreatePlan(deps.Deps))
		r.Post("/executions", handleExecute(deps.Deps))
		r.Get("/runs", handleListRuns(deps.Deps))
		r.Get("/runs/{id}", handleGetRun(deps.Deps))

		r.Post("/optimize", handleOptimize(deps.Deps))
		r.Post("/playground", handlePlayground(deps.Deps))

		r.Handle("/mcp", server.NewStreamableHTTPServer(NewMCPServer(deps.Deps)))
	})

	return r
}

type vaultStats struct {
	Owner    string `json:"owner"`
	Prompts  int    `json:"prompts"`
	Revision int64  `json:"revision"`
}

func handleVaultStats(deps Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		n, err := deps.Store.CountPrompts(deps.OwnerID)
		if err != nil {
			writeServiceError(w, "vault", err)
			return
		}
		rev, err := deps.Store.VaultRevision(deps.OwnerID)
		if err != nil {
			writeServiceError(w, "vault", err)
			return
		}
		writeJSON(w, http.StatusOK, vaultStats{Owner: deps.OwnerID, Prompts: n, Revision: rev})
	}
}

func promptID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		httpError(w, http.StatusBadRequest, "invalid_request_error", "invalid prompt id %q", chi.URLParam(r, "id"))
		return 0, false
	}
	return id, true
}

func handleListPrompts(deps Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		prompts, err := deps.Store.ListPrompts(deps.OwnerID, storage.PromptFilter{
			Tag:    q.Get("tag"),
			Search: q.Get("search"),
			Limit:  parseIntParam(r, "limit", 0, 500),
		})
		if err != nil {
			writeServiceError(w, "listing prompts", err)
			return
		}
		if prompts == nil {
			prompts = []storage.Prompt{}
		}
		writeJSON(w, http.StatusOK, prompts)
	}
}

type createPromptRequest struct {
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Content     string   `json:"content"`
	Tags        []string `json:"tags"`
	Model       string   `json:"model"`
	Public      bool     `json:"public"`
}

func handleCreatePrompt(deps Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req createPromptRequest
		if !decodeBody(w, r, &req) {
			return
		}
		p, err := deps.Store.CreatePrompt(storage.Prompt{
			OwnerID:     deps.OwnerID,
			Title:       req.Title,
			Description: req.Description,
			Content:     req.Content,
			Tags:        req.Tags,
			Model:       req.Model,
			Public:      req.Public,
		})
		if err != nil {
			writeServiceError(w, "creating prompt", err)
			return
		}
		deps.promptsChanged()
		writeJSON(w, http.StatusCreated, p)
	}
}

func handleSearchPrompts(deps Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query().Get("q")
		if q == "" {
			httpError(w, http.StatusBadRequest, "invalid_request_error", "q is required")
			return
		}
		hits, err := deps.Searcher.Search(r.Context(), deps.OwnerID, q, parseIntParam(r, "limit", 10, 50))
		if err != nil {
			writeServiceError(w, "searching prompts", err)
			return
		}
		writeJSON(w, http.StatusOK, hits)
	}
}

func handleGetPrompt(deps Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := promptID(w, r)
		if !ok {
			return
		}
		p, err := deps.ownedPrompt(id)
		if err != nil {
			writeServiceError(w, "prompt", err)
			return
		}
		writeJSON(w, http.StatusOK, newPromptDetail(p))
	}
}

func handleUpdatePrompt(deps Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := promptID(w, r)
		if !ok {
			return
		}
		var u storage.PromptUpdate
		if !decodeBody(w, r, &u) {
			return
		}
		p, err := deps.Store.UpdatePrompt(deps.OwnerID, id, u)
		if err != nil {
			writeServiceError(w, "prompt", err)
			return
		}
		deps.promptsChanged()
		writeJSON(w, http.StatusOK, p)
	}
}

func handleDeletePrompt(deps Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := promptID(w, r)
		if !ok {
			return
		}
		if err := deps.Store.DeletePrompt(deps.OwnerID, id); err != nil {
			writeServiceError(w, "prompt", err)
			return
		}
		deps.promptsChanged()
		writeJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
	}
}

type planRequest struct {
	Task string `json:"task"`
}

func handleCreatePlan(deps Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req planRequest
		if !decodeBody(w, r, &req) {
			return
		}
		plan, err := deps.Planner.CreatePlan(r.Context(), deps.OwnerID, req.Task)
		if err != nil {
			writeServiceError(w, "creating plan", err)
			return
		}
		writeJSON(w, http.StatusOK, plan)
	}
}

type executeRequest struct {
	Prompts []pipeline.Step `json:"prompts"`
}

func handleExecute(deps Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req executeRequest
		if !decodeBody(w, r, &req) {
			return
		}
		res, err := deps.Executor.Execute(r.Context(), deps.OwnerID, req.Prompts)
		var stepErr *pipeline.StepError
		if errors.As(err, &stepErr) {
			// The partial trace is still useful to the caller.
			writeJSON(w, http.StatusBadGateway, map[string]any{
				"error":  map[string]any{"message": err.Error(), "type": "api_error"},
				"run_id": res.RunID,
				"trace":  res.Trace,
			})
			return
		}
		if err != nil {
			writeServiceError(w, "executing chain", err)
			return
		}
		writeJSON(w, http.StatusOK, res)
	}
}

func handleListRuns(deps Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		runs, err := deps.Store.GetRecentRuns(deps.OwnerID, parseIntParam(r, "limit", 20, 100))
		if err != nil {
			writeServiceError(w, "listing runs", err)
			return
		}
		writeJSON(w, http.StatusOK, summarizeRuns(runs))
	}
}

func handleGetRun(deps Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		run, err := deps.Store.GetRun(deps.OwnerID, chi.URLParam(r, "id"))
		if err != nil {
			writeServiceError(w, "run", err)
			return
		}
		writeJSON(w, http.StatusOK, newRunView(run))
	}
}

func handleOptimize(deps Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var d optimizer.Draft
		if !decodeBody(w, r, &d) {
			return
		}
		res, err := deps.Optimizer.Optimize(r.Context(), d)
		if err != nil {
			writeServiceError(w, "optimizing prompt", err)
			return
		}
		writeJSON(w, http.StatusOK, res)
	}
}

type playgroundRequest struct {
	PromptA string `json:"promptA"`
	PromptB string `json:"promptB"`
	Model   string `json:"model"`
}

func handlePlayground(deps Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req playgroundRequest
		if !decodeBody(w, r, &req) {
			return
		}
		res, err := deps.Judge.Compare(r.Context(), req.PromptA, req.PromptB, req.Model)
		if err != nil {
			writeServiceError(w, "running playground", err)
			return
		}
		writeJSON(w, http.StatusOK, res)
	}
}
