// Package intent turns a free-text task description into the ordered action
// categories and keywords the candidate selector scores prompts against.
package intent

import (
	"regexp"
	"sort"
	"strings"
	"unicode/utf8"
)

// minKeywordLen is exclusive: keywords must be longer than this many runes.
const minKeywordLen = 3

var fillerPattern = regexp.MustCompile(`\b(and|make|the|a|an|for|to|in|on|with|is|are)\b`)

// Analysis is the structured intent of one task.
type Analysis struct {
	// Actions is ordered by first textual occurrence and never empty.
	Actions []Action `json:"actions"`
	// Keywords are lowercase, de-duplicated in first-occurrence order.
	Keywords []string `json:"keywords"`
}

// Has reports whether a was detected.
func (an Analysis) Has(a Action) bool {
	for _, x := range an.Actions {
		if x == a {
			return true
		}
	}
	return false
}

// Analyze detects the actions mentioned in task and extracts its keywords.
// It is pure and never fails: a task with no recognized verb yields
// [General].
func Analyze(task string) Analysis {
	lower := strings.ToLower(task)

	type hit struct {
		action Action
		index  int
	}
	var hits []hit
	for _, a := range Detectable {
		if loc := a.Pattern().FindStringIndex(lower); loc != nil {
			hits = append(hits, hit{action: a, index: loc[0]})
		}
	}
	// Stable sort keeps declaration order for equal indexes.
	sort.SliceStable(hits, func(i, j int) bool { return hits[i].index < hits[j].index })

	actions := make([]Action, 0, len(hits))
	for _, h := range hits {
		actions = append(actions, h.action)
	}
	if len(actions) == 0 {
		actions = append(actions, General)
	}

	return Analysis{Actions: actions, Keywords: Keywords(lower)}
}

// Keywords splits text on whitespace and keeps the lowercase tokens longer
// than three runes that are neither filler words nor action verbs.
func Keywords(text string) []string {
	seen := make(map[string]bool)
	keywords := []string{}
	for _, tok := range strings.Fields(strings.ToLower(text)) {
		if utf8.RuneCountInString(tok) <= minKeywordLen || seen[tok] {
			continue
		}
		if fillerPattern.MatchString(tok) || isActionToken(tok) {
			continue
		}
		seen[tok] = true
		keywords = append(keywords, tok)
	}
	return keywords
}

func isActionToken(tok string) bool {
	for _, a := range Detectable {
		if a.Pattern().MatchString(tok) {
			return true
		}
	}
	return false
}
