package utils

import (
	"strings"

	"github.com/mozillazg/go-unidecode"
)

// NormalizeQuery folds a free-text search query to lowercase ASCII and
// collapses runs of whitespace to single spaces, so cache keys for the same
// logical query always match.
func NormalizeQuery(query string) string {
	ascii := unidecode.Unidecode(query)
	ascii = strings.ToLower(strings.TrimSpace(ascii))
	return strings.Join(strings.Fields(ascii), " ")
}
