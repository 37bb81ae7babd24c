package chunker

import (
	"regexp"
	"strings"
)

var (
	whitespace = regexp.MustCompile(`\s+`)
	disallowed = regexp.MustCompile(`[^\w\s.,!?-]`)
	// Scraped content keeps Polish letters; everything else outside the
	// allow-list is dropped.
	disallowedPL = regexp.MustCompile(`[^\w\s.,!?ąćęłńóśźżĄĆĘŁŃÓŚŹŻ-]`)
)

// Clean collapses runs of whitespace into single spaces and strips characters
// outside the allow-list (word characters, whitespace, basic punctuation).
// This is lossy: diacritics are removed.
func Clean(text string) string {
	text = disallowed.ReplaceAllString(text, "")
	text = whitespace.ReplaceAllString(text, " ")
	return strings.TrimSpace(text)
}

// CleanLocale is Clean with Polish letters added to the allow-list, used for
// scraped website content.
func CleanLocale(text string) string {
	text = disallowedPL.ReplaceAllString(text, "")
	text = whitespace.ReplaceAllString(text, " ")
	return strings.TrimSpace(text)
}
