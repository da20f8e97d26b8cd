package retrieval

import (
	"regexp"
	"strings"
)

var nonWordRe = regexp.MustCompile(`[^\w\s]`)

// ValidQuery reports whether a query is worth searching for. Queries that are
// empty or consist entirely of punctuation are rejected; single meaningful
// words ("Rock", "Happy") are allowed.
func ValidQuery(query string) bool {
	trimmed := strings.TrimSpace(query)
	if trimmed == "" {
		return false
	}
	cleaned := nonWordRe.ReplaceAllString(trimmed, "")
	return len(strings.Fields(cleaned)) > 0
}
