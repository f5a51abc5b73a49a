package llm

import (
	"regexp"
	"strings"
)

var jsonObjectPattern = regexp.MustCompile(`(?s)\{.*\}`)

// StripCodeFence removes a surrounding markdown code fence such as ```json.
func StripCodeFence(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}

	s = strings.TrimPrefix(s, "```")
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		// drop the language tag line
		s = s[i+1:]
	}
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")

	return strings.TrimSpace(s)
}

// ExtractJSONObject returns the span from the first '{' to the last '}' of a
// model reply.
func ExtractJSONObject(s string) (string, bool) {
	match := jsonObjectPattern.FindString(StripCodeFence(s))
	if match == "" {
		return "", false
	}
	return match, true
}
