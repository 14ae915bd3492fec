package match

import (
	"regexp"
	"strings"

	"github.com/antzucaro/matchr"
)

// Slavic and Baltic surnames reach catalogs through several transliteration
// traditions ("Aleksijevitš" vs "Alexievich", "Dostojevski" vs "Dostoevsky").
// FoldName runs an ordered rule pipeline that neutralizes the known variant
// groups, then reduces the remainder to a double-metaphone primary code so
// the surviving spelling differences collapse to one key.

// glideRule neutralizes -jev-/-jov-/-yev-/-yov- glides before anything else
var glideRule = regexp.MustCompile(`[jy][eo]v`)

// multiRules are multi-character substitutions applied in order
var multiRules = []struct {
	pattern, replacement string
}{
	{"oe", "o"}, // Dost-oe-vsky
	{"yo", "o"},
	{"jo", "o"},
	{"io", "o"},
	{"ya", "a"},
	{"ja", "a"},
	// Cyrillic ч/ж/ш/х reach Estonian as tš/ž/š/hh and English as
	// ch/zh/sh/kh; ASCII folding handles the Estonian side, these rules
	// bring the English digraphs to the same form so "-vits" and "-vich"
	// endings compare equal
	{"tsch", "ts"},
	{"tch", "ts"},
	{"ch", "ts"},
	{"zh", "z"},
	{"sh", "s"},
	{"kh", "h"},
}

// singleRules are one-character fixes applied after the multi-character pass
var singleRules = strings.NewReplacer(
	"ё", "o",
	"œ", "o",
)

var (
	skFamily  = regexp.MustCompile(`(sky|ski|skij|skyi)$`)
	nonLetter = regexp.MustCompile(`[^a-z]`)
)

// collapseDoubles squeezes runs of the same letter: "kk" → "k", "yy" → "y"
func collapseDoubles(s string) string {
	var b strings.Builder
	prev := rune(-1)
	for _, r := range s {
		if r != prev {
			b.WriteRune(r)
			prev = r
		}
	}
	return b.String()
}

// FoldName returns one short ASCII fingerprint for a surname token.
// Spelling variants of the same name yield the same code; if the phonetic
// step produces an empty string the cleaned ASCII form is returned instead.
func FoldName(token string) string {
	s := strings.ToLower(token)

	s = glideRule.ReplaceAllString(s, "ev")
	for _, rule := range multiRules {
		s = strings.ReplaceAll(s, rule.pattern, rule.replacement)
	}
	s = singleRules.Replace(s)
	s = ASCIIFold(s)

	s = skFamily.ReplaceAllString(s, "sk")
	s = collapseDoubles(s)
	s = nonLetter.ReplaceAllString(s, "")

	code, _ := matchr.DoubleMetaphone(s)
	if code == "" {
		return s
	}
	return code
}

// foldAll maps FoldName over a token set.
func foldAll(tokens map[string]bool) map[string]bool {
	out := make(map[string]bool, len(tokens))
	for tok := range tokens {
		out[FoldName(tok)] = true
	}
	return out
}
