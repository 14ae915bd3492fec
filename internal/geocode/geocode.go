// Package geocode turns library street addresses into map coordinates via
// Nominatim. Answers are cached persistently, the address set is small and
// essentially static, and Nominatim's usage policy is unforgiving.
package geocode

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/lepinkainen/goodreader/internal/cache"
	serviceerrors "github.com/lepinkainen/goodreader/internal/errors"
	"github.com/lepinkainen/goodreader/internal/ratelimit"
)

const (
	nominatimBaseURL = "https://nominatim.openstreetmap.org"
	userAgent        = "goodreader/1.0"
	geocodeTable     = "geocode_cache"
)

// Result is one geocoding answer. Found false means Nominatim had no match
// for the address; that answer is cached too, just for a shorter time.
type Result struct {
	Found bool    `json:"found"`
	Lat   float64 `json:"lat"`
	Lon   float64 `json:"lon"`
}

// Client queries Nominatim at most once per second.
type Client struct {
	http    *http.Client
	limiter *ratelimit.Limiter
	baseURL string
}

// New builds a Client against the public Nominatim instance.
func New() *Client {
	return NewAt(nominatimBaseURL, &http.Client{Timeout: 10 * time.Second})
}

// NewAt builds a Client against an explicit endpoint. Test hook.
func NewAt(baseURL string, hc *http.Client) *Client {
	return &Client{
		http:    hc,
		limiter: ratelimit.NewStrict("nominatim", 1),
		baseURL: baseURL,
	}
}

// Geocode resolves an address, consulting the persistent cache first.
func (c *Client) Geocode(ctx context.Context, address string) (Result, error) {
	result, _, err := cache.GetOrFetchWithTTL(geocodeTable, address,
		func() (Result, error) { return c.lookup(ctx, address) },
		cache.SelectNegativeCacheTTL(func(r Result) bool { return !r.Found }))
	return result, err
}

func (c *Client) lookup(ctx context.Context, address string) (Result, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return Result{}, err
	}

	params := url.Values{
		"q":      {address},
		"format": {"jsonv2"},
		"limit":  {"1"},
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/search?"+params.Encode(), nil)
	if err != nil {
		return Result{}, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := c.http.Do(req)
	if err != nil {
		return Result{}, fmt.Errorf("geocode request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode == http.StatusTooManyRequests {
		return Result{}, serviceerrors.NewRateLimitError("nominatim rate limit exceeded")
	}
	if resp.StatusCode != http.StatusOK {
		return Result{}, fmt.Errorf("unexpected status: HTTP %d", resp.StatusCode)
	}

	// Nominatim returns coordinates as strings
	var places []struct {
		Lat string `json:"lat"`
		Lon string `json:"lon"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&places); err != nil {
		return Result{}, fmt.Errorf("failed to decode response: %w", err)
	}
	if len(places) == 0 {
		return Result{Found: false}, nil
	}

	lat, err := strconv.ParseFloat(places[0].Lat, 64)
	if err != nil {
		return Result{}, fmt.Errorf("invalid latitude %q: %w", places[0].Lat, err)
	}
	lon, err := strconv.ParseFloat(places[0].Lon, 64)
	if err != nil {
		return Result{}, fmt.Errorf("invalid longitude %q: %w", places[0].Lon, err)
	}
	return Result{Found: true, Lat: lat, Lon: lon}, nil
}
