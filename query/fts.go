package query

import (
	"strings"
	"unicode"
)

// DefaultMaxQueryLength bounds accepted query strings; longer input is
// rejected before any storage access.
const DefaultMaxQueryLength = 200

// Normalize reduces free-form query text to search tokens: lowercase,
// strip every rune that is not a letter, digit, space or hyphen
// (Unicode-aware), collapse whitespace and split. Punctuation-only input
// reduces to zero tokens.
func Normalize(text string) []string {
	var b strings.Builder
	b.Grow(len(text))

	for _, r := range strings.ToLower(text) {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r) || r == '-':
			b.WriteRune(r)
		case unicode.IsSpace(r):
			b.WriteRune(' ')
		}
	}

	return strings.Fields(b.String())
}

// BuildMatch renders tokens as an FTS5 MATCH expression. Every token is a
// quoted exact term; in autocomplete mode the final token becomes a prefix
// term, favoring exact matches on all but the currently-typed word.
//
// Returns "" for an empty token list; callers must not pass that to the
// full-text engine.
func BuildMatch(tokens []string, autocomplete bool) string {
	if len(tokens) == 0 {
		return ""
	}

	terms := make([]string, len(tokens))
	for i, tok := range tokens {
		terms[i] = `"` + tok + `"`
	}
	if autocomplete {
		terms[len(terms)-1] += "*"
	}

	return strings.Join(terms, " ")
}
