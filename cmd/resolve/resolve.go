// Package resolve wires the whole pipeline behind the resolve command: load
// the wish list, match it against the catalog, geocode the libraries and
// write the map and cover gallery.
package resolve

import (
	"context"
	"crypto/sha1"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/lepinkainen/goodreader/internal/config"
	"github.com/lepinkainen/goodreader/internal/covers"
	serviceerrors "github.com/lepinkainen/goodreader/internal/errors"
	"github.com/lepinkainen/goodreader/internal/ester"
	"github.com/lepinkainen/goodreader/internal/fetch"
	"github.com/lepinkainen/goodreader/internal/geocode"
	"github.com/lepinkainen/goodreader/internal/locations"
	"github.com/lepinkainen/goodreader/internal/render"
	"github.com/lepinkainen/goodreader/internal/resolver"
	"github.com/lepinkainen/goodreader/internal/wishlist"
)

// Options controls one resolution run. Exactly one of CSVPath and UserID
// selects the wish-list source.
type Options struct {
	CSVPath string
	UserID  string
	Limit   int

	MapFile     string
	GalleryFile string

	DownloadCovers bool
	CoversDir      string
}

// Run executes the pipeline and prints the summary.
func Run(ctx context.Context, opts Options) error {
	fetcher := fetch.New(fetch.Options{
		ConnectTimeout: config.ConnectTimeout,
		ReadTimeout:    config.ReadTimeout,
		Retries:        config.FetchRetries,
	})

	entries, err := loadEntries(ctx, fetcher, opts)
	if err != nil {
		return err
	}
	if len(entries) == 0 {
		return fmt.Errorf("wish list is empty, nothing to resolve")
	}
	slog.Info("Wish list loaded", "entries", len(entries))

	catalog := ester.New(fetcher)
	summary := resolver.New(catalog).ResolveAll(ctx, entries)

	coords := geocodePlaces(ctx, geocode.New(), summary.Places)
	if err := render.WriteMap(opts.MapFile, render.BuildMarkers(summary, coords)); err != nil {
		return err
	}
	slog.Info("Map written", "file", opts.MapFile)

	items, sources := gatherCovers(ctx, covers.NewFinder(catalog, fetcher), summary)
	if err := render.WriteGallery(opts.GalleryFile, items); err != nil {
		return err
	}
	slog.Info("Gallery written", "file", opts.GalleryFile, "covers", len(items))

	if opts.DownloadCovers {
		downloadCovers(ctx, items, opts.CoversDir)
	}

	fmt.Println(render.FormatSummary(summary, sources))
	return nil
}

func loadEntries(ctx context.Context, fetcher *fetch.Client, opts Options) ([]wishlist.Entry, error) {
	switch {
	case opts.CSVPath != "":
		return wishlist.LoadCSV(opts.CSVPath, opts.Limit)
	case opts.UserID != "":
		return wishlist.ScrapeShelf(ctx, fetcher, opts.UserID, opts.Limit), nil
	default:
		return nil, fmt.Errorf("either a CSV export or a Goodreads user id is required")
	}
}

// geocoder is the slice of the geocode client this package needs.
type geocoder interface {
	Geocode(ctx context.Context, address string) (geocode.Result, error)
}

// geocodePlaces looks up coordinates for every resolved place that carries
// an address. A rate-limited geocoder stops the loop, cached answers from
// earlier runs already cover the common libraries.
func geocodePlaces(ctx context.Context, client geocoder, places map[string]locations.Place) map[string]geocode.Result {
	coords := make(map[string]geocode.Result, len(places))
	for key, place := range places {
		if place.Address == "" {
			continue
		}
		result, err := client.Geocode(ctx, place.Address)
		if err != nil {
			if serviceerrors.IsRateLimitError(err) {
				slog.Warn("Geocoder rate limited, map will be partial")
				break
			}
			slog.Warn("Geocoding failed", "address", place.Address, "error", err)
			continue
		}
		coords[key] = result
	}
	return coords
}

// coverFinder is the slice of the cover finder this package needs.
type coverFinder interface {
	Find(ctx context.Context, recordURL, isbnHint string) covers.Result
}

func gatherCovers(ctx context.Context, finder coverFinder, summary *resolver.Summary) ([]render.GalleryItem, map[string]int) {
	var items []render.GalleryItem
	sources := make(map[string]int)
	for _, result := range summary.Results {
		if result.RecordURL == "" {
			continue
		}
		cover := finder.Find(ctx, result.RecordURL, result.Entry.ISBN)
		if cover.URL == "" {
			continue
		}
		sources[cover.Source]++
		items = append(items, render.GalleryItem{
			Author:    result.Entry.Author,
			Title:     result.Entry.Title,
			RecordURL: result.RecordURL,
			CoverURL:  cover.URL,
		})
	}
	return items, sources
}

func downloadCovers(ctx context.Context, items []render.GalleryItem, dir string) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		slog.Error("Failed to create covers directory", "dir", dir, "error", err)
		return
	}

	hc := &http.Client{Timeout: 30 * time.Second}
	for _, item := range items {
		dest := filepath.Join(dir, coverFileName(item))
		if err := covers.Download(ctx, hc, item.CoverURL, dest); err != nil {
			slog.Warn("Cover download failed", "title", item.Title, "error", err)
			continue
		}
		slog.Debug("Cover saved", "file", dest)
	}
}

func coverFileName(item render.GalleryItem) string {
	if code := ester.BibID(item.RecordURL); code != "" {
		return code + ".jpg"
	}
	sum := sha1.Sum([]byte(item.Author + item.Title))
	return fmt.Sprintf("%x.jpg", sum[:8])
}
