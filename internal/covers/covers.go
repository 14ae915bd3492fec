// Package covers hunts down jacket images for resolved records. Sources are
// tried from cheapest to most speculative: images inlined on the record page,
// the catalog's image backend, Google Books and finally OpenLibrary. The
// winning URL is cached persistently per record.
package covers

import (
	"context"
	"fmt"
	"net/http"
	"regexp"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/lepinkainen/goodreader/internal/cache"
	"github.com/lepinkainen/goodreader/internal/ester"
	"github.com/lepinkainen/goodreader/internal/fetch"
)

const (
	coversTable = "covers_cache"

	// minImageBytes rejects tracking pixels and broken thumbnails
	minImageBytes = 1337
	// googlePlaceholderBytes: the Google Books "no cover" tile is a small
	// image without an &edge= parameter; real covers carry one
	googlePlaceholderBytes = 15000

	// inlineImageLimit: past this size an inline base64 image is large
	// enough that a hosted URL is the better thing to put in a page
	inlineImageLimit = 300_000
)

// cover URL templates are vars so tests can point them at a local server
var (
	googleCoverURL      = "https://books.google.com/books/content?vid=ISBN%s&printsec=frontcover&img=1&zoom=1"
	openLibraryCoverURL = "https://covers.openlibrary.org/b/isbn/%s-M.jpg?default=false"
)

var (
	badImagePattern = regexp.MustCompile(`(?i)/screens/|spinner|transparent\.gif|\.svg$|fonts\.gstatic\.com`)
	isbnPattern     = regexp.MustCompile(`\b\d{9}[\dXx]|\d{13}\b`)
)

var imageAttrs = []string{"data-src", "data-original", "data-large", "data-iiif-high", "src"}

// Result is a discovered cover: its URL (possibly a data: URI) and which
// source produced it. An empty URL means every source came up dry.
type Result struct {
	URL    string `json:"url"`
	Source string `json:"source"`
}

// Finder discovers covers for catalog records.
type Finder struct {
	catalog *ester.Catalog
	fetcher *fetch.Client
	http    *http.Client
}

// NewFinder builds a Finder sharing the run's catalog and page fetcher.
func NewFinder(catalog *ester.Catalog, fetcher *fetch.Client) *Finder {
	return &Finder{
		catalog: catalog,
		fetcher: fetcher,
		http:    &http.Client{Timeout: 5 * time.Second},
	}
}

// SetHTTPClient replaces the image-probing client. Test hook.
func (f *Finder) SetHTTPClient(hc *http.Client) {
	f.http = hc
}

// Find returns the cover for a record, consulting the persistent cache
// first. A cached empty result is honored too, so records known to have no
// cover don't trigger the whole chain on every run.
func (f *Finder) Find(ctx context.Context, recordURL, isbnHint string) Result {
	result, _, err := cache.GetOrFetchWithTTL(coversTable, recordURL,
		func() (Result, error) { return f.discover(ctx, recordURL, isbnHint), nil },
		cache.SelectNegativeCacheTTL(func(r Result) bool { return r.URL == "" }))
	if err != nil {
		return Result{}
	}
	return result
}

func (f *Finder) discover(ctx context.Context, recordURL, isbnHint string) Result {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(f.fetcher.Get(ctx, recordURL)))
	if err != nil {
		return Result{}
	}

	if hit := f.probe(ctx, f.inlineCandidates(doc)); hit != "" {
		return Result{URL: hit, Source: "inline/og"}
	}

	if result, ok := f.fromImageBackend(ctx, recordURL); ok {
		return result
	}

	isbns := scrapeISBNs(doc)
	if len(isbns) == 0 && isbnHint != "" {
		isbns = []string{isbnHint}
	}

	var googleURLs []string
	for _, isbn := range isbns {
		googleURLs = append(googleURLs, fmt.Sprintf(googleCoverURL, isbn))
	}
	if hit := f.probe(ctx, googleURLs); hit != "" {
		return Result{URL: hit, Source: "gbooks"}
	}

	var openLibURLs []string
	for _, isbn := range isbns {
		openLibURLs = append(openLibURLs, fmt.Sprintf(openLibraryCoverURL, isbn))
	}
	if hit := f.probe(ctx, openLibURLs); hit != "" {
		return Result{URL: hit, Source: "openlibrary"}
	}

	return Result{}
}

// fromImageBackend consults the catalog's JSON image backend plus its IIIF
// endpoint. A small inline base64 image is returned as a data: URI.
func (f *Finder) fromImageBackend(ctx context.Context, recordURL string) (Result, bool) {
	code := ester.BibID(recordURL)
	if code == "" {
		return Result{}, false
	}

	urls := []string{f.catalog.IIIFCoverURL(code)}
	if img, err := f.catalog.ImagesByCode(ctx, code); err == nil {
		hosted := img.URLLarge
		if hosted == "" {
			hosted = img.URLSmall
		}
		if img.ImageData != "" {
			if len(img.ImageData) > inlineImageLimit && hosted != "" {
				urls = append(urls, hosted)
			} else {
				return Result{URL: "data:image/jpeg;base64," + img.ImageData, Source: "epik-inline"}, true
			}
		} else if hosted != "" {
			urls = append(urls, hosted)
		}
	}

	if hit := f.probe(ctx, urls); hit != "" {
		return Result{URL: hit, Source: "epik"}, true
	}
	return Result{}, false
}

// inlineCandidates gathers jacket-looking image URLs from the record page
// itself, plus the og:image meta tag.
func (f *Finder) inlineCandidates(doc *goquery.Document) []string {
	var urls []string
	add := func(src string) {
		if looksLikeJacket(src) {
			urls = append(urls, f.absolutize(src))
		}
	}

	doc.Find("img, noscript img").Each(func(_ int, sel *goquery.Selection) {
		for _, attr := range imageAttrs {
			if src, ok := sel.Attr(attr); ok {
				add(strings.TrimSpace(src))
			}
		}
	})
	doc.Find(`meta[property="og:image"], meta[name="og:image"]`).Each(func(_ int, sel *goquery.Selection) {
		if content, ok := sel.Attr("content"); ok {
			add(strings.TrimSpace(content))
		}
	})
	return urls
}

func looksLikeJacket(src string) bool {
	if src == "" {
		return false
	}
	if !strings.HasPrefix(src, "http://") && !strings.HasPrefix(src, "https://") &&
		!strings.HasPrefix(src, "/iiif/") && !strings.HasPrefix(src, "data:image/") {
		return false
	}
	return !badImagePattern.MatchString(src)
}

func (f *Finder) absolutize(src string) string {
	if strings.HasPrefix(src, "http") || strings.HasPrefix(src, "data:") {
		return src
	}
	return f.catalog.BaseURL() + src
}

// scrapeISBNs pulls ISBN-looking numbers out of the record page's links.
func scrapeISBNs(doc *goquery.Document) []string {
	var isbns []string
	doc.Find(`a[href*="isbn"]`).Each(func(_ int, sel *goquery.Selection) {
		if m := isbnPattern.FindString(sel.Text()); m != "" {
			isbns = append(isbns, m)
		}
	})
	return isbns
}

// probe GETs candidate URLs and returns the first one that answers with a
// plausible image. The Google Books placeholder tile is filtered by its
// size and missing &edge= parameter.
func (f *Finder) probe(ctx context.Context, urls []string) string {
	for _, u := range urls {
		if u == "" {
			continue
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
		if err != nil {
			continue
		}
		resp, err := f.http.Do(req)
		if err != nil {
			continue
		}
		contentType := resp.Header.Get("Content-Type")
		size := resp.ContentLength
		finalURL := resp.Request.URL.String()
		_ = resp.Body.Close()

		if strings.Contains(u, "books/content") &&
			!strings.Contains(u, "&edge=") && size < googlePlaceholderBytes {
			continue
		}

		if resp.StatusCode < 300 && strings.HasPrefix(contentType, "image") && size >= minImageBytes {
			return finalURL
		}
	}
	return ""
}
