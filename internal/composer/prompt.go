// Package composer builds the text sent to the model for each chain step.
package composer

import (
	"regexp"
	"strings"
)

var placeholderPattern = regexp.MustCompile(`\{\{\s*([A-Za-z0-9_.-]+)\s*\}\}`)

// StepPrompt threads the previous step's output into the next step's
// instructions. The layout is fixed; downstream prompts rely on it.
func StepPrompt(previous, instructions string) string {
	return "previous context:\n" + previous + "\nthis step's instructions:\n" + instructions
}

// Substitute replaces {{name}} placeholders with values from vars.
// Placeholders without a value are left intact.
func Substitute(content string, vars map[string]string) string {
	if len(vars) == 0 || !strings.Contains(content, "{{") {
		return content
	}
	return placeholderPattern.ReplaceAllStringFunc(content, func(m string) string {
		name := placeholderPattern.FindStringSubmatch(m)[1]
		if v, ok := vars[name]; ok {
			return v
		}
		return m
	})
}

// Placeholders lists the distinct placeholder names in content, in order of
// first appearance.
func Placeholders(content string) []string {
	var names []string
	seen := make(map[string]bool)
	for _, m := range placeholderPattern.FindAllStringSubmatch(content, -1) {
		if !seen[m[1]] {
			seen[m[1]] = true
			names = append(names, m[1])
		}
	}
	return names
}

// EstimateTokens returns a rough token count (4 bytes per token).
func EstimateTokens(text string) int {
	return (len(text) + 3) / 4
}
