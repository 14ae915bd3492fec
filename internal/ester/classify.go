package ester

import (
	"context"
	"strings"
)

// Classification is the carrier-type verdict for one catalog record.
type Classification int

const (
	// Physical is a paper book with (potential) shelf copies
	Physical Classification = iota
	// EResource is a virtual-only record: ebook, online PDF, web link
	EResource
	// NonBook is a physical carrier that is not a book: DVD, CD, tape
	NonBook
)

func (c Classification) String() string {
	switch c {
	case EResource:
		return "e-resource"
	case NonBook:
		return "non-book"
	default:
		return "physical"
	}
}

// eResourceMarkers are lowercase substrings whose presence marks a record
// page as virtual-only, provided the page shows no holdings table.
var eResourceMarkers = []string{
	"1 võrguressurss", "tekstifail", "audiofile", "videosalvestis",
	"võrguteavik", "1 online resource", "online resource",
	"electronic bk", "electronic resource",
	"e-raamat", "ebook", "e-audiobook",
	"digitaalkogu", "internetiväljaanne", "pdf (online)", "pdf-fail",
	"www-link",
}

// nonBookMarkers mark physical non-book carriers
var nonBookMarkers = []string{
	"videosalvestis", "dvd", "blu-ray",
	"cd-plaat", "audiofile", "helisalvestis",
}

// Classify fetches a record page and decides its carrier type. Verdicts are
// memoized per record URL, crawls revisit the same records constantly.
func (c *Catalog) Classify(ctx context.Context, recordURL string) Classification {
	c.mu.Lock()
	if verdict, ok := c.verdicts[recordURL]; ok {
		c.mu.Unlock()
		return verdict
	}
	c.mu.Unlock()

	verdict := classifyPage(c.fetcher.Get(ctx, recordURL))

	c.mu.Lock()
	c.verdicts[recordURL] = verdict
	c.mu.Unlock()
	return verdict
}

func classifyPage(page string) Classification {
	doc := parseHTML(page)
	lower := strings.ToLower(page)

	// A holdings table means physical copies exist somewhere, however the
	// description reads. Without one, e-resource vocabulary is decisive.
	hasHoldings := doc.Find("tr[class*='bibItemsEntry']").Length() > 0
	if !hasHoldings && containsAny(lower, eResourceMarkers) {
		return EResource
	}
	if containsAny(lower, nonBookMarkers) {
		return NonBook
	}
	return Physical
}

func containsAny(haystack string, needles []string) bool {
	for _, needle := range needles {
		if strings.Contains(haystack, needle) {
			return true
		}
	}
	return false
}
