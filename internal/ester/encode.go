package ester

import (
	"fmt"
	"net/url"
	"regexp"
	"strings"
	"unicode"
)

var (
	whitespaceRun = regexp.MustCompile(`\s{2,}`)
	// hyphen, non-breaking hyphen, figure dash, en dash, em dash,
	// horizontal bar and minus sign
	dashVariant = regexp.MustCompile("[‐-―−]")
)

// EscapeNonASCII encodes every non-ASCII rune in Sierra's {uXXXX} form,
// which is how the catalog expects accented characters in search arguments.
func EscapeNonASCII(s string) string {
	var b strings.Builder
	for _, r := range s {
		if r < 128 {
			b.WriteRune(r)
		} else {
			fmt.Fprintf(&b, "{u%04X}", r)
		}
	}
	return b.String()
}

// Squeeze collapses runs of whitespace into a single space.
func Squeeze(s string) string {
	return whitespaceRun.ReplaceAllString(s, " ")
}

// NormalizeDashes replaces typographic dash variants with a plain hyphen.
func NormalizeDashes(s string) string {
	return dashVariant.ReplaceAllString(s, "-")
}

// StripControl removes control and format characters. Catalog pages embed
// soft hyphens and bidi marks inside titles.
func StripControl(s string) string {
	var b strings.Builder
	for _, r := range s {
		if unicode.In(r, unicode.C) {
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

// queryEscape is url.QueryEscape except that curly braces survive, so the
// {uXXXX} escapes stay readable to the catalog.
func queryEscape(s string) string {
	return braceUnescaper.Replace(url.QueryEscape(s))
}

var braceUnescaper = strings.NewReplacer("%7B", "{", "%7D", "}")
