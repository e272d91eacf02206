package retrieval

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"sync"

	"github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/search/query"
	lru "github.com/hashicorp/golang-lru/v2"
	"golang.org/x/sync/singleflight"

	"github.com/kalambet/promptpilot/internal/storage"
)

// PromptSource is the read side of the prompt store the index is built from.
// VaultRevision must change whenever the owner's prompts change, so writes
// made by another process sharing the store are noticed.
type PromptSource interface {
	ListPromptsByOwner(ownerID string) ([]storage.Prompt, error)
	VaultRevision(ownerID string) (int64, error)
}

// SearchConfig tunes the Searcher.
type SearchConfig struct {
	// Fuzziness is the edit distance allowed per query term (0-2).
	Fuzziness int
	// CacheSize bounds the number of owner indexes kept in memory.
	CacheSize int
}

// Hit is one search result.
type Hit struct {
	Prompt storage.Prompt `json:"prompt"`
	Score  float64        `json:"score"`
}

var errIndexClosed = errors.New("index closed")

// ownerIndex is an in-memory full-text index over one owner's prompts.
type ownerIndex struct {
	mu       sync.RWMutex
	closed   bool
	idx      bleve.Index
	prompts  map[string]storage.Prompt
	revision int64
}

type promptDoc struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Content     string `json:"content"`
	Tags        string `json:"tags"`
}

func buildOwnerIndex(prompts []storage.Prompt) (*ownerIndex, error) {
	idx, err := bleve.NewMemOnly(bleve.NewIndexMapping())
	if err != nil {
		return nil, fmt.Errorf("creating index: %w", err)
	}

	batch := idx.NewBatch()
	byID := make(map[string]storage.Prompt, len(prompts))
	for _, p := range prompts {
		id := strconv.FormatInt(p.ID, 10)
		byID[id] = p
		doc := promptDoc{
			Title:       p.Title,
			Description: p.Description,
			Content:     p.Content,
			Tags:        strings.Join(p.Tags, " "),
		}
		if err := batch.Index(id, doc); err != nil {
			idx.Close()
			return nil, fmt.Errorf("indexing prompt %s: %w", id, err)
		}
	}
	if err := idx.Batch(batch); err != nil {
		idx.Close()
		return nil, fmt.Errorf("committing index batch: %w", err)
	}
	return &ownerIndex{idx: idx, prompts: byID}, nil
}

func (o *ownerIndex) search(q query.Query, limit int) ([]Hit, error) {
	o.mu.RLock()
	defer o.mu.RUnlock()
	if o.closed {
		return nil, errIndexClosed
	}

	req := bleve.NewSearchRequestOptions(q, limit, 0, false)
	res, err := o.idx.Search(req)
	if err != nil {
		return nil, fmt.Errorf("search failed: %w", err)
	}

	hits := make([]Hit, 0, len(res.Hits))
	for _, h := range res.Hits {
		p, ok := o.prompts[h.ID]
		if !ok {
			continue
		}
		hits = append(hits, Hit{Prompt: p, Score: h.Score})
	}
	return hits, nil
}

func (o *ownerIndex) close() {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.closed {
		return
	}
	o.closed = true
	if err := o.idx.Close(); err != nil {
		slog.Debug("closing prompt index", "error", err)
	}
}

// Searcher answers fuzzy full-text queries over an owner's vault. Indexes are
// built lazily per owner and cached in an LRU. A cached index is rebuilt when
// the source reports a new vault revision or after Invalidate.
type Searcher struct {
	src       PromptSource
	fuzziness int
	cache     *lru.Cache[string, *ownerIndex]
	group     singleflight.Group

	mu          sync.Mutex
	generations map[string]uint64
}

// NewSearcher creates a Searcher reading prompts from src.
func NewSearcher(src PromptSource, cfg SearchConfig) (*Searcher, error) {
	size := cfg.CacheSize
	if size <= 0 {
		size = 64
	}
	fuzz := cfg.Fuzziness
	if fuzz < 0 {
		fuzz = 0
	}
	if fuzz > 2 {
		fuzz = 2
	}
	cache, err := lru.NewWithEvict(size, func(_ string, o *ownerIndex) { o.close() })
	if err != nil {
		return nil, fmt.Errorf("creating index cache: %w", err)
	}
	return &Searcher{src: src, fuzziness: fuzz, cache: cache, generations: make(map[string]uint64)}, nil
}

// Search returns up to limit prompts of ownerID matching text, best first.
// Title matches weigh more than content matches.
func (s *Searcher) Search(ctx context.Context, ownerID, text string, limit int) ([]Hit, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return []Hit{}, nil
	}
	if limit <= 0 {
		limit = 10
	}
	q := s.buildQuery(text)

	// One retry covers an index evicted between lookup and search.
	for attempt := 0; attempt < 2; attempt++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		o, err := s.index(ownerID)
		if err != nil {
			return nil, err
		}
		hits, err := o.search(q, limit)
		if errors.Is(err, errIndexClosed) {
			continue
		}
		return hits, err
	}
	return nil, errIndexClosed
}

func (s *Searcher) buildQuery(text string) query.Query {
	field := func(name string, boost float64) query.Query {
		mq := bleve.NewMatchQuery(text)
		mq.SetField(name)
		mq.SetFuzziness(s.fuzziness)
		mq.SetBoost(boost)
		return mq
	}
	return bleve.NewDisjunctionQuery(
		field("title", 3),
		field("tags", 2),
		field("description", 1.5),
		field("content", 1),
	)
}

// maxBuildAttempts bounds rebuilds when Invalidate keeps landing mid-build.
const maxBuildAttempts = 3

func (s *Searcher) index(ownerID string) (*ownerIndex, error) {
	rev, err := s.src.VaultRevision(ownerID)
	if err != nil {
		return nil, fmt.Errorf("checking vault revision: %w", err)
	}
	if o, ok := s.cache.Get(ownerID); ok && o.revision == rev {
		return o, nil
	}
	v, err, _ := s.group.Do(ownerID, func() (any, error) {
		return s.build(ownerID, rev)
	})
	if err != nil {
		return nil, err
	}
	return v.(*ownerIndex), nil
}

// build replaces the cached index of ownerID with one at revision rev or
// newer. An index whose build overlapped an Invalidate is discarded and
// rebuilt, since the prompts it loaded may predate the write.
func (s *Searcher) build(ownerID string, rev int64) (*ownerIndex, error) {
	if o, ok := s.cache.Get(ownerID); ok {
		if o.revision == rev {
			return o, nil
		}
		s.cache.Remove(ownerID)
	}

	var o *ownerIndex
	for attempt := 1; ; attempt++ {
		gen := s.generation(ownerID)
		// Read the revision before the prompts: a write in between leaves
		// the index one revision behind and the next search rebuilds it.
		current, err := s.src.VaultRevision(ownerID)
		if err != nil {
			return nil, fmt.Errorf("checking vault revision: %w", err)
		}
		prompts, err := s.src.ListPromptsByOwner(ownerID)
		if err != nil {
			return nil, fmt.Errorf("loading prompts: %w", err)
		}
		o, err = buildOwnerIndex(prompts)
		if err != nil {
			return nil, err
		}
		o.revision = current
		if s.generation(ownerID) == gen || attempt == maxBuildAttempts {
			slog.Debug("built prompt index", "owner", ownerID, "prompts", len(prompts), "revision", current)
			break
		}
		o.close()
	}
	// Add replaces an existing key without calling the evict hook, so an
	// index cached by a concurrent build is removed (and closed) first.
	if old, ok := s.cache.Peek(ownerID); ok && old != o {
		s.cache.Remove(ownerID)
	}
	s.cache.Add(ownerID, o)
	return o, nil
}

func (s *Searcher) generation(ownerID string) uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.generations[ownerID]
}

// Invalidate drops the cached index of ownerID so the next search rebuilds
// it. Call after any prompt write made through this process. A build already
// in flight is discarded rather than cached.
func (s *Searcher) Invalidate(ownerID string) {
	s.mu.Lock()
	s.generations[ownerID]++
	s.mu.Unlock()
	s.group.Forget(ownerID)
	s.cache.Remove(ownerID)
}

// Close releases every cached index.
func (s *Searcher) Close() {
	s.cache.Purge()
}
