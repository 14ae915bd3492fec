package ester

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// Holding is one shelf copy: where it sits, its call number and its status
// string, already uppercased so availability checks are plain substring
// tests. The JSON backend does not expose call numbers, so CallNumber may
// be empty.
type Holding struct {
	Location   string
	CallNumber string
	Status     string
}

// Holdings returns the physical copies of a record. Three sources are tried
// in order until one yields rows: the classic holdings page, the "available
// copies" variant, and finally the JSON backend. An empty result means the
// record genuinely has no listed copies anywhere.
func (c *Catalog) Holdings(ctx context.Context, recordURL string) []Holding {
	bib := BibID(recordURL)
	if bib == "" {
		slog.Debug("No bib id in record URL", "url", recordURL)
		return nil
	}

	primary := fmt.Sprintf("%s/search~%s?/.%s/.%s/1,1,1,B/holdings~%s&FF=&1,0,/indexsort=-",
		c.baseURL, c.scope, bib, bib, bib)
	if rows := c.scrapeHoldings(ctx, primary); len(rows) > 0 {
		return rows
	}

	alt := strings.Replace(primary, "holdings~", "holdingsa~", 1)
	if rows := c.scrapeHoldings(ctx, alt); len(rows) > 0 {
		return rows
	}

	slog.Debug("Holdings HTML empty, asking JSON backend", "bib", bib)
	return c.ItemsByCode(ctx, bib)
}

func (c *Catalog) scrapeHoldings(ctx context.Context, url string) []Holding {
	doc := c.document(ctx, url)

	var out []Holding
	doc.Find("#tab-copies tr[class*='bibItemsEntry'], .additionalCopies tr[class*='bibItemsEntry']").
		Each(func(_ int, row *goquery.Selection) {
			cells := row.Find("td")
			if cells.Length() < 3 {
				return
			}
			out = append(out, Holding{
				Location:   cleanText(cells.Eq(0)),
				CallNumber: cleanText(cells.Eq(1)),
				Status:     strings.ToUpper(cleanText(cells.Eq(2))),
			})
		})
	return out
}
