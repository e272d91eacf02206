package storage

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(":memory:")
	if err != nil {
		t.Fatalf("Open(:memory:) failed: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

// TestMigrationsIdempotent runs Open twice on the same database and verifies
// the schema_version count stays correct (migration not re-applied).
func TestMigrationsIdempotent(t *testing.T) {
	dir := t.TempDir()

	s1, err := Open(dir)
	if err != nil {
		t.Fatalf("first Open failed: %v", err)
	}

	v1, err := s1.AppliedMigrations()
	if err != nil {
		t.Fatalf("AppliedMigrations: %v", err)
	}
	s1.Close()

	s2, err := Open(dir)
	if err != nil {
		t.Fatalf("second Open failed: %v", err)
	}
	defer s2.Close()

	v2, err := s2.AppliedMigrations()
	if err != nil {
		t.Fatalf("AppliedMigrations: %v", err)
	}

	if len(v1) != len(v2) {
		t.Errorf("migration count changed: %d -> %d", len(v1), len(v2))
	}
}

// TestMigrationsOrdered verifies migrations are applied in ascending numeric order.
func TestMigrationsOrdered(t *testing.T) {
	s := openTestStore(t)

	versions, err := s.AppliedMigrations()
	if err != nil {
		t.Fatalf("AppliedMigrations: %v", err)
	}

	if len(versions) == 0 {
		t.Fatal("expected at least one applied migration")
	}

	for i := 1; i < len(versions); i++ {
		if versions[i] <= versions[i-1] {
			t.Errorf("migrations not in ascending order: %v", versions)
			break
		}
	}
}

// TestIndexesExist verifies that indexes are created by the migrations.
func TestIndexesExist(t *testing.T) {
	s := openTestStore(t)

	indexes := []string{"idx_prompts_owner", "idx_runs_owner_created"}
	for _, idx := range indexes {
		var count int
		err := s.db.QueryRow("SELECT COUNT(*) FROM sqlite_master WHERE type='index' AND name=?", idx).Scan(&count)
		if err != nil {
			t.Fatalf("querying sqlite_master for %q: %v", idx, err)
		}
		if count != 1 {
			t.Errorf("index %q not found in sqlite_master", idx)
		}
	}
}

func mustCreate(t *testing.T, s *Store, p Prompt) Prompt {
	t.Helper()
	out, err := s.CreatePrompt(p)
	if err != nil {
		t.Fatalf("CreatePrompt(%q): %v", p.Title, err)
	}
	return out
}

func TestCreateAndGetPrompt(t *testing.T) {
	s := openTestStore(t)

	created := mustCreate(t, s, Prompt{
		OwnerID:     "alice",
		Title:       "Key Point Extractor",
		Description: "Pulls out the main points",
		Content:     "Extract the key points from the text.",
		Tags:        []string{"analysis", "research"},
		Model:       "Claude",
		Public:      true,
	})
	if created.ID == 0 {
		t.Fatal("expected store-assigned ID")
	}

	got, err := s.GetPrompt(created.ID)
	if err != nil {
		t.Fatalf("GetPrompt: %v", err)
	}
	if diff := cmp.Diff(created, got); diff != "" {
		t.Errorf("GetPrompt mismatch (-want +got):\n%s", diff)
	}
}

func TestGetPromptNotFound(t *testing.T) {
	s := openTestStore(t)

	_, err := s.GetPrompt(404)
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestListPromptsByOwner_InsertionOrder(t *testing.T) {
	s := openTestStore(t)

	for i := 0; i < 3; i++ {
		mustCreate(t, s, Prompt{OwnerID: "alice", Title: fmt.Sprintf("a%d", i), Content: "x"})
		mustCreate(t, s, Prompt{OwnerID: "bob", Title: fmt.Sprintf("b%d", i), Content: "x"})
	}

	got, err := s.ListPromptsByOwner("alice")
	if err != nil {
		t.Fatalf("ListPromptsByOwner: %v", err)
	}
	var titles []string
	for _, p := range got {
		titles = append(titles, p.Title)
	}
	if diff := cmp.Diff([]string{"a0", "a1", "a2"}, titles); diff != "" {
		t.Errorf("titles mismatch (-want +got):\n%s", diff)
	}

	empty, err := s.ListPromptsByOwner("carol")
	if err != nil {
		t.Fatalf("ListPromptsByOwner: %v", err)
	}
	if len(empty) != 0 {
		t.Errorf("expected empty vault, got %d prompts", len(empty))
	}
}

func TestListPrompts_Filters(t *testing.T) {
	s := openTestStore(t)

	mustCreate(t, s, Prompt{OwnerID: "alice", Title: "Research Helper", Content: "find sources", Tags: []string{"Research"}})
	mustCreate(t, s, Prompt{OwnerID: "alice", Title: "Blog Writer", Content: "write a 100% original post", Tags: []string{"writing"}})
	mustCreate(t, s, Prompt{OwnerID: "alice", Title: "Summary", Content: "condense text", Tags: []string{"writing", "summary"}})

	byTag, err := s.ListPrompts("alice", PromptFilter{Tag: "writing"})
	if err != nil {
		t.Fatalf("ListPrompts: %v", err)
	}
	if len(byTag) != 2 || byTag[0].Title != "Summary" || byTag[1].Title != "Blog Writer" {
		t.Errorf("tag filter returned %v", titlesOf(byTag))
	}

	caseInsensitiveTag, err := s.ListPrompts("alice", PromptFilter{Tag: "research"})
	if err != nil {
		t.Fatalf("ListPrompts: %v", err)
	}
	if len(caseInsensitiveTag) != 1 {
		t.Errorf("tag match should ignore case, got %v", titlesOf(caseInsensitiveTag))
	}

	bySearch, err := s.ListPrompts("alice", PromptFilter{Search: "SOURCES"})
	if err != nil {
		t.Fatalf("ListPrompts: %v", err)
	}
	if len(bySearch) != 1 || bySearch[0].Title != "Research Helper" {
		t.Errorf("search filter returned %v", titlesOf(bySearch))
	}

	literalPercent, err := s.ListPrompts("alice", PromptFilter{Search: "100%"})
	if err != nil {
		t.Fatalf("ListPrompts: %v", err)
	}
	if len(literalPercent) != 1 {
		t.Errorf("percent should match literally, got %v", titlesOf(literalPercent))
	}

	limited, err := s.ListPrompts("alice", PromptFilter{Limit: 1})
	if err != nil {
		t.Fatalf("ListPrompts: %v", err)
	}
	if len(limited) != 1 {
		t.Errorf("limit ignored: got %d", len(limited))
	}
}

func titlesOf(ps []Prompt) []string {
	var out []string
	for _, p := range ps {
		out = append(out, p.Title)
	}
	return out
}

func TestUpdatePrompt(t *testing.T) {
	s := openTestStore(t)

	p := mustCreate(t, s, Prompt{OwnerID: "alice", Title: "Draft", Content: "v1", Tags: []string{"a"}})

	title := "Final"
	tags := []string{"b", "c"}
	got, err := s.UpdatePrompt("alice", p.ID, PromptUpdate{Title: &title, Tags: &tags})
	if err != nil {
		t.Fatalf("UpdatePrompt: %v", err)
	}
	if got.Title != "Final" || got.Content != "v1" {
		t.Errorf("unexpected update result: %+v", got)
	}

	reloaded, err := s.GetPrompt(p.ID)
	if err != nil {
		t.Fatalf("GetPrompt: %v", err)
	}
	if diff := cmp.Diff([]string{"b", "c"}, reloaded.Tags); diff != "" {
		t.Errorf("tags mismatch (-want +got):\n%s", diff)
	}

	if _, err := s.UpdatePrompt("mallory", p.ID, PromptUpdate{Title: &title}); !errors.Is(err, ErrNotFound) {
		t.Errorf("foreign owner update: expected ErrNotFound, got %v", err)
	}

	blank := ""
	if _, err := s.UpdatePrompt("alice", p.ID, PromptUpdate{Content: &blank}); err == nil {
		t.Error("expected error when clearing content")
	}
}

func TestDeletePrompt(t *testing.T) {
	s := openTestStore(t)

	p := mustCreate(t, s, Prompt{OwnerID: "alice", Title: "Temp", Content: "x"})

	if err := s.DeletePrompt("bob", p.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("foreign owner delete: expected ErrNotFound, got %v", err)
	}
	if err := s.DeletePrompt("alice", p.ID); err != nil {
		t.Fatalf("DeletePrompt: %v", err)
	}
	if _, err := s.GetPrompt(p.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound after delete, got %v", err)
	}
	n, err := s.CountPrompts("alice")
	if err != nil {
		t.Fatalf("CountPrompts: %v", err)
	}
	if n != 0 {
		t.Errorf("CountPrompts = %d, want 0", n)
	}
}

func TestSaveAndGetRun(t *testing.T) {
	s := openTestStore(t)

	now := time.Now().UTC().Truncate(time.Second)
	want := Run{
		ID:          "run-001",
		OwnerID:     "alice",
		Status:      RunCompleted,
		StepCount:   2,
		FinalAnswer: "done",
		TraceJSON:   `[{"step":1}]`,
		CreatedAt:   now,
	}
	if err := s.SaveRun(want); err != nil {
		t.Fatalf("SaveRun: %v", err)
	}

	got, err := s.GetRun("alice", "run-001")
	if err != nil {
		t.Fatalf("GetRun: %v", err)
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("GetRun mismatch (-want +got):\n%s", diff)
	}

	if _, err := s.GetRun("bob", "run-001"); !errors.Is(err, ErrNotFound) {
		t.Errorf("foreign owner: expected ErrNotFound, got %v", err)
	}
}

func TestSaveRun_Defaults(t *testing.T) {
	s := openTestStore(t)

	if err := s.SaveRun(Run{ID: "r", OwnerID: "alice"}); err != nil {
		t.Fatalf("SaveRun: %v", err)
	}
	got, err := s.GetRun("alice", "r")
	if err != nil {
		t.Fatalf("GetRun: %v", err)
	}
	if got.Status != RunCompleted {
		t.Errorf("Status = %q, want %q", got.Status, RunCompleted)
	}
	if got.TraceJSON != "[]" {
		t.Errorf("TraceJSON = %q, want []", got.TraceJSON)
	}
}

func TestGetRecentRuns(t *testing.T) {
	s := openTestStore(t)

	base := time.Now().UTC().Truncate(time.Second)
	for i := 0; i < 5; i++ {
		err := s.SaveRun(Run{
			ID:        fmt.Sprintf("run-%d", i),
			OwnerID:   "alice",
			CreatedAt: base.Add(time.Duration(i) * time.Minute),
		})
		if err != nil {
			t.Fatalf("SaveRun: %v", err)
		}
	}

	runs, err := s.GetRecentRuns("alice", 3)
	if err != nil {
		t.Fatalf("GetRecentRuns: %v", err)
	}
	if len(runs) != 3 {
		t.Fatalf("got %d runs, want 3", len(runs))
	}
	if runs[0].ID != "run-4" || runs[2].ID != "run-2" {
		t.Errorf("unexpected order: %s, %s, %s", runs[0].ID, runs[1].ID, runs[2].ID)
	}
}

func TestCreatePrompt_RequiresFields(t *testing.T) {
	s := openTestStore(t)

	for _, p := range []Prompt{
		{Title: "t", Content: "c"},
		{OwnerID: "alice", Title: " ", Content: "c"},
		{OwnerID: "alice", Title: "t", Content: ""},
	} {
		if _, err := s.CreatePrompt(p); !errors.Is(err, ErrInvalidPrompt) {
			t.Errorf("CreatePrompt(%+v) error = %v, want ErrInvalidPrompt", p, err)
		}
	}

	created, err := s.CreatePrompt(Prompt{OwnerID: "alice", Title: "t", Content: "c"})
	if err != nil {
		t.Fatalf("CreatePrompt: %v", err)
	}
	empty := ""
	if _, err := s.UpdatePrompt("alice", created.ID, PromptUpdate{Content: &empty}); !errors.Is(err, ErrInvalidPrompt) {
		t.Errorf("UpdatePrompt with empty content: err = %v, want ErrInvalidPrompt", err)
	}
}

func TestPruneRuns(t *testing.T) {
	s := openTestStore(t)

	now := time.Now().UTC().Truncate(time.Second)
	for i, age := range []time.Duration{72 * time.Hour, 48 * time.Hour, time.Hour} {
		if err := s.SaveRun(Run{ID: fmt.Sprintf("run-%d", i), OwnerID: "alice", CreatedAt: now.Add(-age)}); err != nil {
			t.Fatalf("SaveRun: %v", err)
		}
	}
	if err := s.SaveRun(Run{ID: "bob-old", OwnerID: "bob", CreatedAt: now.Add(-96 * time.Hour)}); err != nil {
		t.Fatalf("SaveRun: %v", err)
	}

	cutoff := now.Add(-24 * time.Hour)

	n, err := s.PruneRuns(cutoff, 1)
	if err != nil {
		t.Fatalf("PruneRuns: %v", err)
	}
	if n != 1 {
		t.Fatalf("first batch removed %d rows, want 1", n)
	}
	if _, err := s.GetRun("bob", "bob-old"); !errors.Is(err, ErrNotFound) {
		t.Errorf("oldest run should go first, GetRun err = %v", err)
	}

	n, err = s.PruneRuns(cutoff, 0)
	if err != nil {
		t.Fatalf("PruneRuns: %v", err)
	}
	if n != 2 {
		t.Errorf("removed %d rows, want 2", n)
	}

	runs, err := s.GetRecentRuns("alice", 10)
	if err != nil {
		t.Fatalf("GetRecentRuns: %v", err)
	}
	if len(runs) != 1 || runs[0].ID != "run-2" {
		t.Errorf("remaining runs = %+v, want only run-2", runs)
	}
}

func TestVaultRevision(t *testing.T) {
	s := openTestStore(t)

	rev := func(owner string) int64 {
		t.Helper()
		r, err := s.VaultRevision(owner)
		if err != nil {
			t.Fatalf("VaultRevision(%s): %v", owner, err)
		}
		return r
	}

	if got := rev("alice"); got != 0 {
		t.Fatalf("fresh vault revision = %d, want 0", got)
	}

	p := mustCreate(t, s, Prompt{OwnerID: "alice", Title: "Draft", Content: "v1"})
	afterCreate := rev("alice")
	if afterCreate == 0 {
		t.Fatal("revision unchanged after create")
	}

	title := "Final"
	if _, err := s.UpdatePrompt("alice", p.ID, PromptUpdate{Title: &title}); err != nil {
		t.Fatalf("UpdatePrompt: %v", err)
	}
	afterUpdate := rev("alice")
	if afterUpdate == afterCreate {
		t.Error("revision unchanged after update")
	}

	if err := s.DeletePrompt("alice", p.ID); err != nil {
		t.Fatalf("DeletePrompt: %v", err)
	}
	if rev("alice") == afterUpdate {
		t.Error("revision unchanged after delete")
	}

	if got := rev("bob"); got != 0 {
		t.Errorf("other owner's revision = %d, want 0", got)
	}
}

func TestVaultRevision_SeesOtherConnections(t *testing.T) {
	dir := t.TempDir()
	reader, err := Open(dir)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer reader.Close()
	writer, err := Open(dir)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer writer.Close()

	before, err := reader.VaultRevision("alice")
	if err != nil {
		t.Fatalf("VaultRevision: %v", err)
	}
	mustCreate(t, writer, Prompt{OwnerID: "alice", Title: "Haiku Composer", Content: "Write a haiku"})

	after, err := reader.VaultRevision("alice")
	if err != nil {
		t.Fatalf("VaultRevision: %v", err)
	}
	if after == before {
		t.Errorf("revision = %d after a write on another connection, want a change", after)
	}
}
