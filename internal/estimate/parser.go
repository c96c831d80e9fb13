package estimate

import (
	"encoding/json"
	"strings"
)

// ExtractJSON pulls the JSON object out of a raw completion that may wrap it
// in prose or code fences. It takes the largest brace-delimited span (first
// '{' through last '}'); when no braces are present the whole trimmed text is
// tried. The returned bytes are guaranteed to be syntactically valid JSON.
func ExtractJSON(raw string) ([]byte, error) {
	text := stripCodeFences(strings.TrimSpace(raw))

	candidate := text
	start := strings.IndexByte(text, '{')
	end := strings.LastIndexByte(text, '}')
	if start >= 0 && end > start {
		candidate = text[start : end+1]
	}

	var probe json.RawMessage
	if err := json.Unmarshal([]byte(candidate), &probe); err != nil {
		return nil, newParseError(err)
	}
	return []byte(candidate), nil
}

func stripCodeFences(s string) string {
	if !strings.HasPrefix(s, "```") {
		return s
	}
	if parts := strings.SplitN(s, "\n", 2); len(parts) == 2 {
		s = parts[1]
	}
	s = strings.TrimPrefix(s, "json")
	return strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(s), "```"))
}
