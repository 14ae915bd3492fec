package ester

import (
	"context"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

var bibIDPattern = regexp.MustCompile(`\b(b\d{7})`)

// BibID extracts the Sierra bibliographic id ("b1234567") from a record URL.
// Returns "" when the URL carries none.
func BibID(recordURL string) string {
	return bibIDPattern.FindString(recordURL)
}

// RecordFields returns the display title and author of a record page.
// Catalog instances render the bib area in three layouts, tried in order:
// heading elements, the bibTitle cell, and labeled bibInfo rows. Either
// field may come back empty when the page lacks it.
func (c *Catalog) RecordFields(ctx context.Context, recordURL string) (title, author string) {
	doc := c.document(ctx, recordURL)

	if sel := doc.Find("h1.title, h2.title").First(); sel.Length() > 0 {
		title = cleanText(sel)
	} else if sel := doc.Find("td#bibTitle").First(); sel.Length() > 0 {
		title = cleanText(sel)
	} else {
		title = bibInfoField(doc, "Pealkiri")
	}

	author = bibInfoField(doc, "Autor")
	return title, author
}

// bibInfoField finds the bibInfoData cell following the bibInfoLabel cell
// whose text contains label.
func bibInfoField(doc *goquery.Document, label string) string {
	var out string
	doc.Find("td.bibInfoLabel").EachWithBreak(func(_ int, sel *goquery.Selection) bool {
		if !strings.Contains(sel.Text(), label) {
			return true
		}
		next := sel.Next()
		if next.HasClass("bibInfoData") {
			out = cleanText(next)
			return false
		}
		return true
	})
	return out
}
