package corpus

import (
	"regexp"
	"strings"
)

var (
	htmlTagRegex = regexp.MustCompile(`<[^>]+>`)
	spaceRegex   = regexp.MustCompile(`\s+`)
)

// Normalize produces the canonical searchable form of text: HTML tags become
// spaces, whitespace is collapsed, and the result is trimmed. Applied
// identically at index build time and query time.
func Normalize(text string) string {
	text = htmlTagRegex.ReplaceAllString(text, " ")
	text = spaceRegex.ReplaceAllString(text, " ")
	return strings.TrimSpace(text)
}

// NormalizeTitle canonicalizes a title for deduplication: lowercase with
// collapsed whitespace. Two documents with equal normalized titles are
// considered duplicates at merge time.
func NormalizeTitle(title string) string {
	return strings.ToLower(Normalize(title))
}
