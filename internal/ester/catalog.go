// Package ester talks to a Sierra-based library catalog: searching for
// records, crawling hit lists, classifying records by carrier type and
// extracting their physical holdings.
package ester

import (
	"context"
	"strings"
	"sync"

	"github.com/PuerkitoBio/goquery"

	"github.com/lepinkainen/goodreader/internal/config"
	"github.com/lepinkainen/goodreader/internal/fetch"
)

const defaultEpikBaseURL = "https://epik.ester.ee"

// Catalog is a handle to one catalog instance. All page access goes through
// the shared fetch client, so within a run every page is downloaded at most
// once no matter how many operations touch it.
type Catalog struct {
	fetcher *fetch.Client
	baseURL string
	scope   string
	epikURL string

	mu       sync.Mutex
	verdicts map[string]Classification
}

// New builds a Catalog pointing at the configured catalog instance.
func New(fetcher *fetch.Client) *Catalog {
	return NewAt(config.CatalogBaseURL, config.SearchScope, fetcher)
}

// NewAt builds a Catalog with an explicit base URL and search scope.
// Tests use it to point at an httptest server.
func NewAt(baseURL, scope string, fetcher *fetch.Client) *Catalog {
	return &Catalog{
		fetcher:  fetcher,
		baseURL:  strings.TrimRight(baseURL, "/"),
		scope:    scope,
		epikURL:  defaultEpikBaseURL,
		verdicts: make(map[string]Classification),
	}
}

// SetEpikBase overrides the JSON backend base URL. Test hook.
func (c *Catalog) SetEpikBase(baseURL string) {
	c.epikURL = strings.TrimRight(baseURL, "/")
}

// BaseURL returns the catalog root, without a trailing slash.
func (c *Catalog) BaseURL() string {
	return c.baseURL
}

// document fetches a page and parses it. A failed fetch yields an empty
// document, selections on it simply match nothing.
func (c *Catalog) document(ctx context.Context, url string) *goquery.Document {
	return parseHTML(c.fetcher.Get(ctx, url))
}

func parseHTML(body string) *goquery.Document {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(body))
	if err != nil {
		doc, _ = goquery.NewDocumentFromReader(strings.NewReader(""))
	}
	return doc
}

// cleanText extracts the selection's text with control characters removed
// and whitespace normalized to single spaces.
func cleanText(sel *goquery.Selection) string {
	return strings.Join(strings.Fields(StripControl(sel.Text())), " ")
}
