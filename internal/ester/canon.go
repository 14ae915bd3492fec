package ester

import (
	"net/url"
	"regexp"
	"strings"
)

// Sierra hit-list URLs grow cosmetic junk on every click: slice counters
// like "&1,1," and save/saved/clear_saves parameters. Left alone they make
// each revisit look like a brand new page and the crawl never converges.
var frameScrub = regexp.MustCompile(`(?i)&\d+(,\d+)*,?$|[&?](save|saved|clear_saves)=[^&]*`)

// CanonicalURL reduces a page URL to the key the crawl frontier dedupes on.
//
// Hit-list pages (anything with "/frameset" in the path or query) keep the
// meaningful part of their query with the junk scrubbed off; for every other
// page the query string is dropped entirely. The result is a cache key, not
// necessarily a fetchable URL. Idempotent.
func CanonicalURL(raw string) string {
	u, err := url.Parse(raw)
	if err != nil {
		return raw
	}

	path := u.Path
	query := u.RawQuery
	if unescaped, err := url.QueryUnescape(query); err == nil {
		query = unescaped
	}

	if strings.Contains(path, "/frameset") || strings.Contains(query, "/frameset") {
		tail := path
		if query != "" {
			tail = path + "?" + query
		}
		tail = frameScrub.ReplaceAllString(tail, "")
		return u.Scheme + "://" + u.Host + tail
	}

	return u.Scheme + "://" + u.Host + path
}
