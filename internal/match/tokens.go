// Package match decides whether a catalog record describes the same book as
// a wish-list entry. Titles are compared as token sets, authors as
// phonetically folded surname codes, so transliteration variants of the same
// name compare equal.
package match

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var (
	tokenSplit    = regexp.MustCompile(`[^a-z0-9]+`)
	trailingParen = regexp.MustCompile(`\s*\(.*?\)\s*$`)

	asciiFolder = transform.Chain(norm.NFKD, runes.Remove(runes.In(unicode.Mn)))
)

// ASCIIFold strips accents/diacritics and returns lowercase plain ASCII.
func ASCIIFold(s string) string {
	folded, _, err := transform.String(asciiFolder, s)
	if err != nil {
		folded = s
	}
	var b strings.Builder
	for _, r := range folded {
		if r < 128 {
			b.WriteRune(r)
		}
	}
	return strings.ToLower(b.String())
}

// Tokenize splits s into a set of lowercase ASCII tokens. Any run of
// non-alphanumeric characters is a separator.
func Tokenize(s string) map[string]bool {
	tokens := make(map[string]bool)
	for _, tok := range tokenSplit.Split(ASCIIFold(s), -1) {
		if tok != "" {
			tokens[tok] = true
		}
	}
	return tokens
}

// StripTrailingParens removes a trailing parenthetical from a title,
// e.g. "Dune (Dune, #1)" → "Dune".
func StripTrailingParens(title string) string {
	return strings.TrimSpace(trailingParen.ReplaceAllString(title, ""))
}

// Surname extracts the author's surname. Accepts both "Lastname, Firstname"
// (the Goodreads CSV convention) and "Firstname Lastname". The result is
// ASCII-folded but may still contain separators ("saint-exupery"); tokenize
// it before comparing.
func Surname(author string) string {
	a := ASCIIFold(author)
	if before, _, found := strings.Cut(a, ","); found {
		parts := strings.Fields(before)
		if len(parts) > 0 {
			return parts[0]
		}
		return ""
	}
	parts := strings.Fields(a)
	if len(parts) == 0 {
		return ""
	}
	return parts[len(parts)-1]
}

// isSubset reports whether every key of want is present in have.
func isSubset(want, have map[string]bool) bool {
	for tok := range want {
		if !have[tok] {
			return false
		}
	}
	return true
}
