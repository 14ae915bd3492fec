package ester

import (
	"context"
	"log/slog"
	"net/url"

	"github.com/PuerkitoBio/goquery"
)

// maxVisitedPages caps how many distinct pages one crawl may open. Sierra
// hit lists link to themselves in endless cosmetic variations; past this
// point more pages stopped yielding new records.
const maxVisitedPages = 13

// badLeads filters frame/link targets that never lead to records: patron
// account pages, redirect trampolines and "save record" noise.
var badLeads = []string{
	"/clientredirect", "/patroninfo~", "/validate/patroninfo",
	"/requestmulti~", "/mylistsmulti", "/logout",
	"?save=", "&save=",
	"?saved=", "&saved=",
	"?clear_saves=", "&clear_saves=",
	"/frameset&save", "?save_func=",
}

// CollectRecords crawls from startURL (a frameset or plain hit list) and
// returns the URLs of physical book records, in discovery order.
//
// The frontier is breadth first and dedupes pages on their canonical URL.
// Record links are classified before acceptance; e-resources and non-book
// carriers are skipped. The crawl stops once limit records are accepted or
// maxVisitedPages distinct pages have been opened.
func (c *Catalog) CollectRecords(ctx context.Context, startURL string, limit int) []string {
	queue := []string{startURL}
	seenPages := map[string]bool{}
	var out []string

	for len(queue) > 0 {
		pageURL := queue[0]
		queue = queue[1:]

		key := CanonicalURL(pageURL)
		if seenPages[key] {
			continue
		}
		seenPages[key] = true

		slog.Debug("Crawling page", "url", pageURL)
		doc := c.document(ctx, pageURL)

		accepted, done := c.harvestRecords(ctx, doc, pageURL, limit, out)
		out = accepted
		if done {
			return out
		}

		for _, lead := range pageLeads(doc) {
			next := resolveHref(pageURL, lead)
			if next == "" || containsAny(next, badLeads) {
				continue
			}
			if seenPages[CanonicalURL(next)] {
				continue
			}
			if len(seenPages) >= maxVisitedPages {
				slog.Debug("Crawl aborted, page budget exhausted", "visited", len(seenPages))
				return out
			}
			queue = append(queue, next)
		}
	}
	return out
}

// harvestRecords collects and classifies the record links on one page.
// The second return value is true when limit has been reached.
func (c *Catalog) harvestRecords(ctx context.Context, doc *goquery.Document, pageURL string, limit int, out []string) ([]string, bool) {
	done := false
	doc.Find(`a[href*="/record=b"]`).EachWithBreak(func(_ int, sel *goquery.Selection) bool {
		href, _ := sel.Attr("href")
		rec := resolveHref(pageURL, href)
		if rec == "" {
			return true
		}

		switch c.Classify(ctx, rec) {
		case EResource:
			slog.Debug("Skipping record", "verdict", "e-resource", "url", rec)
			return true
		case NonBook:
			slog.Debug("Skipping record", "verdict", "non-book", "url", rec)
			return true
		}
		for _, have := range out {
			if have == rec {
				slog.Debug("Skipping record", "verdict", "duplicate", "url", rec)
				return true
			}
		}

		slog.Debug("Accepted record", "url", rec)
		out = append(out, rec)
		if limit > 0 && len(out) >= limit {
			done = true
			return false
		}
		return true
	})
	return out, done
}

// pageLeads returns frameset links plus frame/iframe sources, the paths a
// Sierra result page hides its actual content behind.
func pageLeads(doc *goquery.Document) []string {
	var leads []string
	doc.Find(`a[href*="/frameset"]`).Each(func(_ int, sel *goquery.Selection) {
		if href, ok := sel.Attr("href"); ok {
			leads = append(leads, href)
		}
	})
	doc.Find("frame[src], iframe[src]").Each(func(_ int, sel *goquery.Selection) {
		if src, ok := sel.Attr("src"); ok {
			leads = append(leads, src)
		}
	})
	return leads
}

// resolveHref resolves href against the page it appeared on.
func resolveHref(pageURL, href string) string {
	if href == "" {
		return ""
	}
	base, err := url.Parse(pageURL)
	if err != nil {
		return ""
	}
	ref, err := url.Parse(href)
	if err != nil {
		return ""
	}
	return base.ResolveReference(ref).String()
}
