package ester

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/lepinkainen/goodreader/internal/fetch"
)

const physicalRecordPage = `<html><body>
<h1 class="title">Sõda ja rahu : romaan</h1>
<table><tr class="bibItemsEntry">
<td>TLÜAR hoidla</td><td>894.511</td><td>KOHAL</td>
</tr></table>
</body></html>`

func TestClassifyPage(t *testing.T) {
	tests := []struct {
		name     string
		page     string
		expected Classification
	}{
		{
			name:     "holdings table means physical",
			page:     physicalRecordPage,
			expected: Physical,
		},
		{
			name:     "ebook vocabulary without holdings",
			page:     `<html><body><td class="bibInfoData">1 võrguressurss (PDF-fail)</td></body></html>`,
			expected: EResource,
		},
		{
			name:     "english online resource",
			page:     `<html><body>1 online resource (320 p.)</body></html>`,
			expected: EResource,
		},
		{
			name:     "dvd is non-book",
			page:     `<html><body>1 DVD : värviline</body></html>`,
			expected: NonBook,
		},
		{
			name: "video with shelf copies is still non-book",
			page: `<html><body>videosalvestis
<table><tr class="bibItemsEntry"><td>a</td><td>b</td><td>KOHAL</td></tr></table>
</body></html>`,
			expected: NonBook,
		},
		{
			name:     "plain book page defaults to physical",
			page:     `<html><body><h2 class="title">Kalevipoeg</h2></body></html>`,
			expected: Physical,
		},
		{
			name:     "empty page defaults to physical",
			page:     "",
			expected: Physical,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, classifyPage(tt.page))
		})
	}
}

func TestClassificationString(t *testing.T) {
	assert.Equal(t, "physical", Physical.String())
	assert.Equal(t, "e-resource", EResource.String())
	assert.Equal(t, "non-book", NonBook.String())
}

func TestClassifyMemoizes(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(physicalRecordPage))
	}))
	defer server.Close()

	cat, _ := newTestCatalog(t, server)
	url := server.URL + "/record=b1234567~S8*est"

	assert.Equal(t, Physical, cat.Classify(context.Background(), url))
	assert.Equal(t, Physical, cat.Classify(context.Background(), url))

	cat.mu.Lock()
	defer cat.mu.Unlock()
	assert.Len(t, cat.verdicts, 1)
}

// newTestCatalog wires a Catalog to an already-running httptest server.
func newTestCatalog(t *testing.T, server *httptest.Server) (*Catalog, *fetch.Client) {
	t.Helper()
	fetcher := fetch.NewWithHTTPClient(server.Client(), 1)
	fetcher.SetSleep(func(time.Duration) {})
	cat := NewAt(server.URL, "S8*est", fetcher)
	cat.SetEpikBase(server.URL)
	return cat, fetcher
}
