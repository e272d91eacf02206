// Package retrieval chooses prompts from a vault: the Selector scores them
// against an analyzed task and the Searcher answers free-text queries.
package retrieval

import (
	"regexp"
	"strings"

	"github.com/kalambet/promptpilot/internal/intent"
	"github.com/kalambet/promptpilot/internal/storage"
)

// summaryPattern decides whether a plan already covers summarization.
var summaryPattern = regexp.MustCompile(`(?i)summary|summarize|condense|recap`)

// Weights are the relevance points awarded per match.
type Weights struct {
	TitleAction    int
	ContentAction  int
	TitleKeyword   int
	ContentKeyword int
}

// DefaultWeights returns the stock 5/2/3/1 weighting.
func DefaultWeights() Weights {
	return Weights{TitleAction: 5, ContentAction: 2, TitleKeyword: 3, ContentKeyword: 1}
}

// Selector picks at most one prompt per detected action.
type Selector struct {
	weights Weights
}

func NewSelector(w Weights) *Selector {
	return &Selector{weights: w}
}

// Relevance scores p against an action matcher and the task keywords.
// A nil pattern contributes nothing.
func (s *Selector) Relevance(p storage.Prompt, pattern *regexp.Regexp, keywords []string) int {
	title := strings.ToLower(p.Title)
	content := strings.ToLower(p.Content)

	score := 0
	if pattern != nil {
		if pattern.MatchString(title) {
			score += s.weights.TitleAction
		}
		if pattern.MatchString(content) {
			score += s.weights.ContentAction
		}
	}
	for _, kw := range keywords {
		if strings.Contains(title, kw) {
			score += s.weights.TitleKeyword
		}
		if strings.Contains(content, kw) {
			score += s.weights.ContentKeyword
		}
	}
	return score
}

// Select walks the analysis actions in order and takes the best unused
// prompt for each. Ties keep the earliest prompt in the given order; a prompt
// is used at most once. If summarization was requested but nothing selected
// covers it, the best remaining summary-style prompt is appended.
//
// The result is in action order, never re-sorted by score, and may be empty.
func (s *Selector) Select(a intent.Analysis, prompts []storage.Prompt) []storage.Prompt {
	used := make(map[int64]bool)
	var selected []storage.Prompt

	for _, action := range a.Actions {
		if action == intent.General {
			continue
		}
		if best, ok := s.best(prompts, used, action.Pattern(), a.Keywords, nil); ok {
			used[best.ID] = true
			selected = append(selected, best)
		}
	}

	if a.Has(intent.Summarize) && !coversSummary(selected) {
		onlySummaries := func(p storage.Prompt) bool { return summaryPattern.MatchString(summaryText(p)) }
		if best, ok := s.best(prompts, used, summaryPattern, a.Keywords, onlySummaries); ok {
			selected = append(selected, best)
		}
	}

	return selected
}

func (s *Selector) best(prompts []storage.Prompt, used map[int64]bool, pattern *regexp.Regexp, keywords []string, keep func(storage.Prompt) bool) (storage.Prompt, bool) {
	var best storage.Prompt
	bestScore := 0
	for _, p := range prompts {
		if used[p.ID] || (keep != nil && !keep(p)) {
			continue
		}
		if score := s.Relevance(p, pattern, keywords); score > bestScore {
			best, bestScore = p, score
		}
	}
	return best, bestScore > 0
}

func coversSummary(selected []storage.Prompt) bool {
	for _, p := range selected {
		if summaryPattern.MatchString(summaryText(p)) {
			return true
		}
	}
	return false
}

// summaryText is title and content run together, so a pattern may match
// across the boundary.
func summaryText(p storage.Prompt) string {
	return p.Title + p.Content
}
