// Package resolver drives the whole pipeline for a wish list: search the
// catalog for each entry, pull holdings for the matched record, resolve
// locations and count available copies.
package resolver

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/lepinkainen/goodreader/internal/config"
	"github.com/lepinkainen/goodreader/internal/ester"
	"github.com/lepinkainen/goodreader/internal/locations"
	"github.com/lepinkainen/goodreader/internal/wishlist"
)

// Catalog is the slice of the catalog client the resolver needs.
type Catalog interface {
	Search(ctx context.Context, author, title, isbn string) (string, bool)
	Holdings(ctx context.Context, recordURL string) []ester.Holding
}

// BookResult is the outcome for one wish-list entry. RecordURL is "" when
// no catalog record matched. Available counts available copies per place
// key; Places holds every place that has copies at all, available or not.
type BookResult struct {
	Entry     wishlist.Entry
	RecordURL string
	Available map[string]int
	Places    map[string]locations.Place
}

// AvailableCount is the total number of available copies anywhere.
func (r BookResult) AvailableCount() int {
	total := 0
	for _, n := range r.Available {
		total += n
	}
	return total
}

// Summary aggregates a whole run. Results keeps the input order regardless
// of worker scheduling; NotFound and NoneAvailable list the entries that
// had no matching record, or a record but zero available copies.
type Summary struct {
	Results       []BookResult
	Places        map[string]locations.Place
	NotFound      []wishlist.Entry
	NoneAvailable []wishlist.Entry
}

// Resolver runs entries through the catalog with a bounded worker pool.
type Resolver struct {
	catalog Catalog
	workers int
	marker  string
}

// New builds a Resolver with the configured worker count and availability
// marker.
func New(catalog Catalog) *Resolver {
	return NewWith(catalog, config.Workers, config.AvailabilityMarker)
}

// NewWith builds a Resolver with explicit settings.
func NewWith(catalog Catalog, workers int, marker string) *Resolver {
	if workers < 1 {
		workers = 1
	}
	return &Resolver{catalog: catalog, workers: workers, marker: marker}
}

// ResolveAll processes every entry and aggregates the results. Each entry is
// independent; a failed or empty entry never stops the rest.
func (r *Resolver) ResolveAll(ctx context.Context, entries []wishlist.Entry) *Summary {
	results := make([]BookResult, len(entries))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(r.workers)
	for i, entry := range entries {
		g.Go(func() error {
			results[i] = r.resolveOne(gctx, i+1, len(entries), entry)
			return nil
		})
	}
	// workers never return errors, they degrade to empty results
	_ = g.Wait()

	summary := &Summary{
		Results: results,
		Places:  make(map[string]locations.Place),
	}
	for _, result := range results {
		if result.RecordURL == "" {
			summary.NotFound = append(summary.NotFound, result.Entry)
			continue
		}
		if result.AvailableCount() == 0 {
			summary.NoneAvailable = append(summary.NoneAvailable, result.Entry)
		}
		for key, place := range result.Places {
			summary.Places[key] = place
		}
	}
	return summary
}

func (r *Resolver) resolveOne(ctx context.Context, idx, total int, entry wishlist.Entry) BookResult {
	start := time.Now()
	slog.Info("Resolving entry", "n", idx, "total", total, "author", entry.Author, "title", entry.Title)

	result := BookResult{
		Entry:     entry,
		Available: make(map[string]int),
		Places:    make(map[string]locations.Place),
	}

	rec, found := r.catalog.Search(ctx, entry.Author, entry.Title, entry.ISBN)
	if !found {
		slog.Warn("No matching record", "author", entry.Author, "title", entry.Title)
		return result
	}
	result.RecordURL = rec

	for _, holding := range r.catalog.Holdings(ctx, rec) {
		place := locations.Resolve(holding.Location)
		key := PlaceKey(place)
		result.Places[key] = place

		if strings.Contains(holding.Status, r.marker) {
			result.Available[key]++
		}
	}

	if n := result.AvailableCount(); n > 0 {
		slog.Info("Copies available", "title", entry.Title, "copies", n, "elapsed", time.Since(start))
	} else {
		slog.Warn("Record found but no copies available", "title", entry.Title, "elapsed", time.Since(start))
	}
	return result
}

// PlaceKey is the aggregation key for one resolved place.
func PlaceKey(place locations.Place) string {
	return place.Name + "|" + place.Address
}
