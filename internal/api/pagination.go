package api

import (
	"regexp"
	"strings"
)

var linkNextRE = regexp.MustCompile(`<([^>]+)>;\s*rel="next"`)

// findNextPage pulls the rel="next" URL out of a Link response header.
// Returns "" when the server signals exhaustion.
func findNextPage(linkHeader string) string {
	for _, part := range strings.Split(linkHeader, ",") {
		if m := linkNextRE.FindStringSubmatch(part); m != nil {
			return m[1]
		}
	}
	return ""
}
