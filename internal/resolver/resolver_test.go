package resolver

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/lepinkainen/goodreader/internal/ester"
	"github.com/lepinkainen/goodreader/internal/wishlist"
)

// stubCatalog serves canned search results and holdings, and tracks how many
// workers are inside Search at once.
type stubCatalog struct {
	records  map[string]string
	holdings map[string][]ester.Holding
	delay    time.Duration

	mu      sync.Mutex
	active  int
	maxSeen int
}

func (s *stubCatalog) Search(_ context.Context, _, title, _ string) (string, bool) {
	s.mu.Lock()
	s.active++
	if s.active > s.maxSeen {
		s.maxSeen = s.active
	}
	s.mu.Unlock()

	if s.delay > 0 {
		time.Sleep(s.delay)
	}

	s.mu.Lock()
	s.active--
	s.mu.Unlock()

	rec, ok := s.records[title]
	return rec, ok
}

func (s *stubCatalog) Holdings(_ context.Context, recordURL string) []ester.Holding {
	return s.holdings[recordURL]
}

func TestResolveAll(t *testing.T) {
	catalog := &stubCatalog{
		records: map[string]string{
			"Dune":       "https://catalog.test/record=b1111111",
			"Foundation": "https://catalog.test/record=b2222222",
			"Hyperion":   "https://catalog.test/record=b3333333",
			"Kevade":     "https://catalog.test/record=b4444444",
		},
		holdings: map[string][]ester.Holding{
			"https://catalog.test/record=b1111111": {
				{Location: "TlnRK KALAMAJA", Status: "KOHAL"},
				{Location: "TlnRK KALAMAJA", Status: "KOHAL (RIIUL)"},
				{Location: "RaRa hoidla", Status: "KOHAL"},
				{Location: "RaRa hoidla", Status: "TAGASTUSTÄHTAEG 12.09.26"},
			},
			"https://catalog.test/record=b2222222": {
				{Location: "TÜR hoidla", Status: "TELLITUD"},
			},
			"https://catalog.test/record=b3333333": {},
			"https://catalog.test/record=b4444444": {
				{Location: "Mystery stacks", Status: "KOHAL"},
			},
		},
	}

	entries := []wishlist.Entry{
		{Author: "Herbert, Frank", Title: "Dune"},
		{Author: "Asimov, Isaac", Title: "Foundation"},
		{Author: "Simmons, Dan", Title: "Hyperion"},
		{Author: "Luts, Oskar", Title: "Kevade"},
		{Author: "Nobody", Title: "Unknown Book"},
	}

	summary := NewWith(catalog, 2, "KOHAL").ResolveAll(context.Background(), entries)

	// Results come back in input order
	assert.Len(t, summary.Results, 5)
	for i, result := range summary.Results {
		assert.Equal(t, entries[i], result.Entry)
	}

	dune := summary.Results[0]
	assert.Equal(t, "https://catalog.test/record=b1111111", dune.RecordURL)
	assert.Equal(t, 3, dune.AvailableCount())
	assert.Equal(t, 2, dune.Available["TKR Kalamaja|Kotzebue 9, Tallinn"])
	assert.Equal(t, 1, dune.Available["Eesti Rahvusraamatukogu|Tõnismägi 2, Tallinn, Estonia"])
	// the checked-out RaRa copy still registers the place
	assert.Len(t, dune.Places, 2)

	foundation := summary.Results[1]
	assert.Equal(t, 0, foundation.AvailableCount())
	assert.Len(t, foundation.Places, 1)

	// unknown location passes through as a name with no address
	kevade := summary.Results[3]
	assert.Equal(t, 1, kevade.Available["Mystery stacks|"])

	assert.Equal(t, []wishlist.Entry{entries[4]}, summary.NotFound)
	assert.Equal(t, []wishlist.Entry{entries[1], entries[2]}, summary.NoneAvailable)

	// places aggregate across all found entries
	assert.Contains(t, summary.Places, "TKR Kalamaja|Kotzebue 9, Tallinn")
	assert.Contains(t, summary.Places, "Tartu Ülikooli Raamatukogu|W. Struve 1, Tartu, Estonia")
	assert.Equal(t, "Kotzebue 9, Tallinn", summary.Places["TKR Kalamaja|Kotzebue 9, Tallinn"].Address)
}

func TestResolveAllBoundsWorkers(t *testing.T) {
	catalog := &stubCatalog{
		records: map[string]string{},
		delay:   20 * time.Millisecond,
	}

	var entries []wishlist.Entry
	for range 8 {
		entries = append(entries, wishlist.Entry{Author: "A", Title: "T"})
	}

	NewWith(catalog, 3, "KOHAL").ResolveAll(context.Background(), entries)

	catalog.mu.Lock()
	defer catalog.mu.Unlock()
	assert.LessOrEqual(t, catalog.maxSeen, 3)
	assert.Greater(t, catalog.maxSeen, 1)
}

func TestResolveAllEmpty(t *testing.T) {
	summary := NewWith(&stubCatalog{}, 4, "KOHAL").ResolveAll(context.Background(), nil)
	assert.Empty(t, summary.Results)
	assert.Empty(t, summary.NotFound)
	assert.Empty(t, summary.NoneAvailable)
	assert.Empty(t, summary.Places)
}
