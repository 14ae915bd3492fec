package wishlist

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/lepinkainen/goodreader/internal/fetch"
)

const shelfPage = `<html><body><table>
<tr id="review_1">
  <td class="field title"><a href="/book/1">Sõda ja rahu</a></td>
  <td class="field author"><a href="/author/1">Tolstoi, Lev</a></td>
  <td class="field isbn13"><span class="greyText">13</span>9789916127209</td>
</tr>
<tr id="review_2">
  <td class="field title"><a href="/book/2">Dune</a></td>
  <td class="field author"><a href="/author/2">Herbert, Frank</a></td>
  <td class="field isbn13"><span class="greyText">13</span></td>
</tr>
</table></body></html>`

func newShelfServer(t *testing.T) *fetch.Client {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("page") == "1" {
			_, _ = w.Write([]byte(shelfPage))
			return
		}
		_, _ = w.Write([]byte(`<html><body><p>No more rows</p></body></html>`))
	}))
	t.Cleanup(server.Close)

	orig := shelfBaseURL
	shelfBaseURL = server.URL + "/review/list"
	t.Cleanup(func() { shelfBaseURL = orig })

	client := fetch.NewWithHTTPClient(server.Client(), 1)
	client.SetSleep(func(time.Duration) {})
	return client
}

func TestScrapeShelf(t *testing.T) {
	fetcher := newShelfServer(t)

	entries := ScrapeShelf(context.Background(), fetcher, "12345-reader", 0)

	assert.Equal(t, []Entry{
		{Author: "Tolstoi, Lev", Title: "Sõda ja rahu", ISBN: "9789916127209"},
		{Author: "Herbert, Frank", Title: "Dune", ISBN: ""},
	}, entries)
}

func TestScrapeShelfLimit(t *testing.T) {
	fetcher := newShelfServer(t)

	entries := ScrapeShelf(context.Background(), fetcher, "12345-reader", 1)
	assert.Equal(t, []Entry{
		{Author: "Tolstoi, Lev", Title: "Sõda ja rahu", ISBN: "9789916127209"},
	}, entries)
}

func TestScrapeShelfEmptyShelf(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `<html><body>nothing here</body></html>`)
	}))
	defer server.Close()

	orig := shelfBaseURL
	shelfBaseURL = server.URL + "/review/list"
	defer func() { shelfBaseURL = orig }()

	fetcher := fetch.NewWithHTTPClient(server.Client(), 1)
	assert.Empty(t, ScrapeShelf(context.Background(), fetcher, "nobody", 0))
}
