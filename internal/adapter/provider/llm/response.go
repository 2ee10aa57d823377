package llm

import (
	"regexp"
	"strings"
)

var fenceLineRe = regexp.MustCompile("(?m)^\\s*```[A-Za-z0-9_-]*\\s*$")

// StripCodeFences removes Markdown code fences the model may wrap around a
// JSON payload, including the single-line form ```json {...}```.
func StripCodeFences(s string) string {
	s = fenceLineRe.ReplaceAllString(s, "")
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, "```") {
		s = strings.TrimPrefix(s, "```")
		s = strings.TrimPrefix(s, "json")
		s = strings.TrimPrefix(s, "JSON")
	}
	s = strings.TrimSuffix(s, "```")
	return strings.TrimSpace(s)
}

// ExtractJSONObject returns the text between the first '{' and the last '}'.
// ok is false when there is no such span.
func ExtractJSONObject(s string) (string, bool) {
	start := strings.Index(s, "{")
	end := strings.LastIndex(s, "}")
	if start == -1 || end == -1 || end <= start {
		return "", false
	}
	return s[start : end+1], true
}
