package intent

import (
	"fmt"
	"regexp"
	"strings"
)

// Action is a task-intent category detected in free text.
type Action int

// Declaration order is also the tie-break order when two actions first
// match at the same index.
const (
	Research Action = iota
	Write
	Summarize
	Review
	Code
	General
)

var actionNames = [...]string{
	Research:  "research",
	Write:     "write",
	Summarize: "summarize",
	Review:    "review",
	Code:      "code",
	General:   "general",
}

// Matchers are case-insensitive and match anywhere in the text, so
// "researching" counts as research.
var actionPatterns = [...]*regexp.Regexp{
	Research:  regexp.MustCompile(`(?i)research|analyze|investigate|study|explore|find`),
	Write:     regexp.MustCompile(`(?i)write|compose|create|draft|author|generate`),
	Summarize: regexp.MustCompile(`(?i)summarize|summarise|condense|brief|recap|summary`),
	Review:    regexp.MustCompile(`(?i)review|evaluate|assess|critique|check`),
	Code:      regexp.MustCompile(`(?i)code|program|develop|build|implement|debug`),
	General:   nil,
}

// Detectable lists the actions that carry a matcher, in declaration order.
var Detectable = []Action{Research, Write, Summarize, Review, Code}

func (a Action) String() string {
	if a < 0 || int(a) >= len(actionNames) {
		return fmt.Sprintf("Action(%d)", int(a))
	}
	return actionNames[a]
}

// Pattern returns the action's matcher. General has none and returns nil.
func (a Action) Pattern() *regexp.Regexp {
	if a < 0 || int(a) >= len(actionPatterns) {
		return nil
	}
	return actionPatterns[a]
}

// ParseAction is the inverse of String.
func ParseAction(s string) (Action, error) {
	for i, name := range actionNames {
		if strings.EqualFold(s, name) {
			return Action(i), nil
		}
	}
	return 0, fmt.Errorf("unknown action %q", s)
}

func (a Action) MarshalText() ([]byte, error) {
	return []byte(a.String()), nil
}

func (a *Action) UnmarshalText(b []byte) error {
	v, err := ParseAction(string(b))
	if err != nil {
		return err
	}
	*a = v
	return nil
}
