package ester

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func newSearchSite(t *testing.T) (*Catalog, *httptest.Server) {
	t.Helper()

	records := map[string]string{
		"/record=b1111111~S8*est": `<html><body>
<h1 class="title">Dune</h1>
<table><tr><td class="bibInfoLabel">Autor</td><td class="bibInfoData">Herbert, Frank</td></tr></table>
</body></html>`,
		"/record=b2222222~S8*est": `<html><body>
<h1 class="title">Dune</h1>
<table><tr><td class="bibInfoLabel">Autor</td><td class="bibInfoData">Asimov, Isaac</td></tr></table>
</body></html>`,
		"/record=b3333333~S8*est": `<html><body>
<h1 class="title">Dune : ulmeromaan</h1>
<table><tr><td class="bibInfoLabel">Autor</td><td class="bibInfoData">Herbert, Frank</td></tr></table>
</body></html>`,
	}

	hitList := func(record string) string {
		return `<html><body><a href="` + record + `">hit</a></body></html>`
	}

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if page, ok := records[r.URL.Path]; ok {
			_, _ = w.Write([]byte(page))
			return
		}
		if r.URL.Path != "/search~S8*est/X" {
			w.WriteHeader(http.StatusNotFound)
			return
		}

		searchType := r.URL.Query().Get("searchtype")
		arg := r.URL.Query().Get("searcharg")
		switch {
		case searchType == "X" && arg == "9789916127209":
			_, _ = w.Write([]byte(hitList("/record=b1111111~S8*est")))
		case searchType == "t" && arg == "Dune":
			_, _ = w.Write([]byte(hitList("/record=b2222222~S8*est")))
		case searchType == "X" && strings.Contains(arg, "Herbert") && strings.Contains(arg, "Dune"):
			_, _ = w.Write([]byte(hitList("/record=b3333333~S8*est")))
		default:
			_, _ = w.Write([]byte(`<html><body>No entries found</body></html>`))
		}
	}))
	t.Cleanup(server.Close)

	cat, _ := newTestCatalog(t, server)
	return cat, server
}

func TestSearchISBNTakenOnFaith(t *testing.T) {
	cat, server := newSearchSite(t)

	// The ISBN identifies the edition; the comparator never runs, so even a
	// nonsense author/title pair accepts the hit
	rec, ok := cat.Search(context.Background(), "Wrong, Author", "Wrong Title", "9789916127209")
	assert.True(t, ok)
	assert.Equal(t, server.URL+"/record=b1111111~S8*est", rec)
}

func TestSearchComparatorVetoesAndFallsThrough(t *testing.T) {
	cat, server := newSearchSite(t)

	// Title-index probe yields a wrong-author record, which the comparator
	// rejects; the keyword probe then finds the real one
	rec, ok := cat.Search(context.Background(), "Herbert, Frank", "Dune", "")
	assert.True(t, ok)
	assert.Equal(t, server.URL+"/record=b3333333~S8*est", rec)
}

func TestSearchNothingFound(t *testing.T) {
	cat, _ := newSearchSite(t)

	rec, ok := cat.Search(context.Background(), "Nobody, At All", "Unfindable Book", "")
	assert.False(t, ok)
	assert.Equal(t, "", rec)
}

func TestSearchStripsSeriesParenthetical(t *testing.T) {
	cat, server := newSearchSite(t)

	rec, ok := cat.Search(context.Background(), "Herbert, Frank", "Dune (Dune, #1)", "")
	assert.True(t, ok)
	assert.Equal(t, server.URL+"/record=b3333333~S8*est", rec)
}
