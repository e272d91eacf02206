package api

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/kalambet/promptpilot/internal/engine"
	"github.com/kalambet/promptpilot/internal/judge"
	"github.com/kalambet/promptpilot/internal/optimizer"
	"github.com/kalambet/promptpilot/internal/pack"
	"github.com/kalambet/promptpilot/internal/pipeline"
	"github.com/kalambet/promptpilot/internal/reranking"
	"github.com/kalambet/promptpilot/internal/retrieval"
	"github.com/kalambet/promptpilot/internal/storage"
)

const testOwner = "local"

// mockEngine answers JSON requests with jsonResp and everything else by
// numbering its calls.
type mockEngine struct {
	jsonResp string
	err      error
	calls    int
}

func (m *mockEngine) Name() string { return engine.ProviderGemini }

func (m *mockEngine) Generate(_ context.Context, req engine.Request) (string, error) {
	m.calls++
	if m.err != nil {
		return "", m.err
	}
	if req.JSON {
		return m.jsonResp, nil
	}
	if strings.HasPrefix(req.Prompt, "previous context:") {
		return "step output", nil
	}
	return "generated", nil
}

// newTestDeps wires real services over an in-memory store. eng may be nil
// to simulate missing provider credentials.
func newTestDeps(t *testing.T, eng engine.Engine) (Deps, *storage.Store) {
	t.Helper()
	store, err := storage.Open(":memory:")
	if err != nil {
		t.Fatalf("opening store: %v", err)
	}
	t.Cleanup(func() { store.Close() })

	searcher, err := retrieval.NewSearcher(store, retrieval.SearchConfig{Fuzziness: 1, CacheSize: 4})
	if err != nil {
		t.Fatalf("creating searcher: %v", err)
	}
	t.Cleanup(searcher.Close)

	reg := engine.NewRegistry("")
	if eng != nil {
		reg = engine.NewRegistry(eng.Name(), eng)
	}

	return Deps{
		Store:     store,
		OwnerID:   testOwner,
		Planner:   pipeline.NewPlanner(store, retrieval.NewSelector(retrieval.DefaultWeights()), reranking.NewReranker(nil, false, time.Second)),
		Executor:  pipeline.NewExecutor(reg.Default(), store),
		Searcher:  searcher,
		Optimizer: optimizer.New(reg),
		Judge:     judge.New(reg),
	}, store
}

func seedStarter(t *testing.T, store *storage.Store) {
	t.Helper()
	if _, err := pack.Import(store, testOwner, pack.Starter()); err != nil {
		t.Fatalf("importing starter pack: %v", err)
	}
}
