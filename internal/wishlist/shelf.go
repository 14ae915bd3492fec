package wishlist

import (
	"context"
	"fmt"
	"log/slog"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/lepinkainen/goodreader/internal/fetch"
)

// shelfBaseURL is swappable so tests can point at an httptest server.
var shelfBaseURL = "https://www.goodreads.com/review/list"

var isbn13Run = regexp.MustCompile(`\b\d{13}\b`)

// ScrapeShelf walks the public table view of a user's to-read shelf, page by
// page, until a page comes back without review rows. A limit of 0 means no
// limit.
func ScrapeShelf(ctx context.Context, fetcher *fetch.Client, userID string, limit int) []Entry {
	var entries []Entry

	for page := 1; ; page++ {
		url := fmt.Sprintf("%s/%s?shelf=to-read&per_page=200&page=%d&sort=date_added&view=table",
			shelfBaseURL, userID, page)
		slog.Debug("Fetching shelf page", "url", url)

		doc, err := goquery.NewDocumentFromReader(strings.NewReader(fetcher.Get(ctx, url)))
		if err != nil {
			break
		}

		rows := doc.Find("tr[id^='review_']")
		if rows.Length() == 0 {
			break
		}

		done := false
		rows.EachWithBreak(func(_ int, row *goquery.Selection) bool {
			author := strings.TrimSpace(row.Find("td.field.author a").First().Text())
			title := strings.TrimSpace(row.Find("td.field.title a").First().Text())
			if author == "" || title == "" {
				return true
			}

			entries = append(entries, Entry{
				Author: author,
				Title:  title,
				ISBN:   shelfISBN(row),
			})
			if limit > 0 && len(entries) >= limit {
				done = true
				return false
			}
			return true
		})
		if done {
			break
		}
	}

	slog.Info("Scraped wish list from shelf", "user", userID, "entries", len(entries))
	return entries
}

// shelfISBN digs the ISBN out of the isbn13 cell. The cell renders as
// <span class="greyText">13</span>9789916127209, so only the last 13-digit
// run is the actual number.
func shelfISBN(row *goquery.Selection) string {
	cell := row.Find("td.field.isbn13").First()
	if cell.Length() == 0 {
		return ""
	}
	runs := isbn13Run.FindAllString(cell.Text(), -1)
	if len(runs) == 0 {
		return ""
	}
	return runs[len(runs)-1]
}
