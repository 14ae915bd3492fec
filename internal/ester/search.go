package ester

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/lepinkainen/goodreader/internal/match"
)

// probeLimit caps how many candidate records one probe collects before the
// comparator gets to veto them.
const probeLimit = 4

func (c *Catalog) searchURL(searchType, arg string) string {
	return fmt.Sprintf(
		"%s/search~%s/X?searchtype=%s&searcharg=%s&searchscope=8&SORT=DZ&extended=0&SUBMIT=OTSI",
		c.baseURL, c.scope, searchType, arg)
}

func (c *Catalog) probe(ctx context.Context, label, term, url string) []string {
	links := c.CollectRecords(ctx, url, probeLimit)
	slog.Debug("Search probe", "probe", label, "term", term, "hits", len(links))
	return links
}

// ByISBN runs a keyword probe on a bare ISBN.
func (c *Catalog) ByISBN(ctx context.Context, isbn string) []string {
	return c.probe(ctx, "keyword-isbn", isbn, c.searchURL("X", isbn))
}

// ByTitleIndex probes the catalog's title index.
func (c *Catalog) ByTitleIndex(ctx context.Context, title string) []string {
	arg := queryEscape(EscapeNonASCII(NormalizeDashes(title)))
	return c.probe(ctx, "title-index", title, c.searchURL("t", arg))
}

// ByKeyword runs a free keyword probe over author and title combined.
// Pass an empty author for a title-only probe.
func (c *Catalog) ByKeyword(ctx context.Context, author, title string) []string {
	term := Squeeze(strings.TrimSpace(author + " " + title))
	arg := queryEscape(EscapeNonASCII(NormalizeDashes(term)))
	return c.probe(ctx, "keyword", term, c.searchURL("X", arg))
}

// Search locates at most one catalog record for a wanted book. Probes run
// from most to least precise: ISBN, title index, keyword author+title,
// keyword title only. An ISBN hit is taken on faith, it identifies the
// exact edition; every other candidate must convince the title/author
// comparator first.
func (c *Catalog) Search(ctx context.Context, author, title, isbn string) (string, bool) {
	title = match.StripTrailingParens(title)

	if isbn != "" {
		if recs := c.ByISBN(ctx, isbn); len(recs) > 0 {
			return recs[0], true
		}
	}

	probes := []struct {
		label string
		run   func() []string
	}{
		{"title-index", func() []string { return c.ByTitleIndex(ctx, title) }},
		{"keyword-author-title", func() []string { return c.ByKeyword(ctx, author, title) }},
		{"keyword-title-only", func() []string { return c.ByKeyword(ctx, "", title) }},
	}

	for _, p := range probes {
		for _, rec := range p.run() {
			recTitle, recAuthor := c.RecordFields(ctx, rec)
			if match.SameBook(title, author, recTitle, recAuthor) {
				slog.Debug("Search matched", "probe", p.label, "record", rec)
				return rec, true
			}
			slog.Debug("Comparator rejected candidate", "probe", p.label, "record", rec)
		}
	}
	return "", false
}
