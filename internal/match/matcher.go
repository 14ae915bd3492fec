package match

import (
	"strings"
)

// SameBook reports whether a record's display title/author describe the
// wanted book.
//
// Title: every token of the (paren-stripped) wanted title must appear among
// the record's combined title+author tokens. A single-word title ("Dune")
// must instead start the record title as a whole token, so common short
// words embedded mid-string don't over-match.
//
// Author: the wanted surname's tokens, phonetically folded, must be a subset
// of the folded record tokens. No extractable surname passes vacuously.
//
// An empty recTitle fails closed: if the title field could not be extracted
// there is nothing trustworthy to compare.
func SameBook(wantTitle, wantAuthor, recTitle, recAuthor string) bool {
	if recTitle == "" {
		return false
	}

	wantedToks := Tokenize(StripTrailingParens(wantTitle))
	recordToks := Tokenize(recTitle)
	for tok := range Tokenize(recAuthor) {
		recordToks[tok] = true
	}

	if !titleMatches(wantedToks, recordToks, recTitle) {
		return false
	}

	surnameToks := Tokenize(Surname(wantAuthor))
	if len(surnameToks) == 0 {
		return true
	}
	return isSubset(foldAll(surnameToks), foldAll(recordToks))
}

func titleMatches(wantedToks, recordToks map[string]bool, recTitle string) bool {
	switch len(wantedToks) {
	case 0:
		// nothing to test against
		return true
	case 1:
		var word string
		for tok := range wantedToks {
			word = tok
		}
		return startsWithToken(recTitle, word)
	default:
		return isSubset(wantedToks, recordToks)
	}
}

// startsWithToken reports whether the folded record title begins with word
// followed by a non-alphanumeric boundary or end of string.
func startsWithToken(recTitle, word string) bool {
	folded := strings.TrimLeft(ASCIIFold(recTitle), " ")
	if !strings.HasPrefix(folded, word) {
		return false
	}
	rest := folded[len(word):]
	if rest == "" {
		return true
	}
	c := rest[0]
	return !(c >= 'a' && c <= 'z' || c >= '0' && c <= '9')
}
