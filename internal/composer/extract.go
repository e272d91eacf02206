package composer

import "strings"

// ExtractObject returns the text between the first '{' and the last '}' of a
// model response, which strips markdown fences and chatter around a JSON
// object. ok is false when no such span exists.
func ExtractObject(text string) (obj string, ok bool) {
	start := strings.IndexByte(text, '{')
	end := strings.LastIndexByte(text, '}')
	if start < 0 || end < start {
		return "", false
	}
	return text[start : end+1], true
}
