package api

import (
	"net/http"
	"strings"
)

// tailParam returns the single path segment after prefix, or "" when the
// remainder is empty or nested.
func tailParam(r *http.Request, prefix string) string {
	rest := strings.TrimPrefix(r.URL.Path, prefix)
	if rest == r.URL.Path || rest == "" || strings.Contains(rest, "/") {
		return ""
	}
	return rest
}
