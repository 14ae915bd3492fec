// Package fetch implements the cached, retrying HTTP layer every catalog
// lookup goes through. Within one run a URL is fetched from the network at
// most once; failures degrade to an empty body so that callers fall back to
// "no data" instead of aborting the whole resolution.
package fetch

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"sync"
	"time"
)

const defaultUserAgent = "goodreader/1.0"

// Options controls client behavior.
type Options struct {
	// ConnectTimeout bounds the TCP dial; ReadTimeout bounds the whole
	// response. ReadTimeout should be much larger, catalog pages can take
	// tens of seconds to render their holdings tables.
	ConnectTimeout time.Duration
	ReadTimeout    time.Duration
	// Retries is the number of attempts per URL (default 3)
	Retries   int
	UserAgent string
}

// Client is a caching HTTP client. The page cache is keyed by the exact URL,
// no normalization: canonicalization is the crawl frontier's concern.
type Client struct {
	http      *http.Client
	retries   int
	userAgent string

	// sleep is swappable so retry backoff can be tested without waiting
	sleep func(time.Duration)

	mu    sync.Mutex
	pages map[string]string
}

// New builds a Client.
func New(opts Options) *Client {
	if opts.ConnectTimeout <= 0 {
		opts.ConnectTimeout = 8 * time.Second
	}
	if opts.ReadTimeout <= 0 {
		opts.ReadTimeout = 60 * time.Second
	}
	if opts.Retries <= 0 {
		opts.Retries = 3
	}
	if opts.UserAgent == "" {
		opts.UserAgent = defaultUserAgent
	}

	transport := &http.Transport{
		DialContext: (&net.Dialer{
			Timeout: opts.ConnectTimeout,
		}).DialContext,
		TLSHandshakeTimeout: opts.ConnectTimeout,
	}

	return &Client{
		http: &http.Client{
			Transport: transport,
			Timeout:   opts.ReadTimeout,
		},
		retries:   opts.Retries,
		userAgent: opts.UserAgent,
		sleep:     time.Sleep,
		pages:     make(map[string]string),
	}
}

// NewWithHTTPClient builds a Client around an existing http.Client.
// Used by tests to point at an httptest server.
func NewWithHTTPClient(hc *http.Client, retries int) *Client {
	if retries <= 0 {
		retries = 3
	}
	return &Client{
		http:      hc,
		retries:   retries,
		userAgent: defaultUserAgent,
		sleep:     time.Sleep,
		pages:     make(map[string]string),
	}
}

// SetSleep replaces the backoff sleep function. Test hook.
func (c *Client) SetSleep(fn func(time.Duration)) {
	c.sleep = fn
}

// Get fetches url, serving repeats from the in-memory cache. Transient
// failures are retried with exponential backoff (2s, 4s, ...); a final
// failure is cached as an empty body and returned as such, never an error.
func (c *Client) Get(ctx context.Context, url string) string {
	c.mu.Lock()
	if body, ok := c.pages[url]; ok {
		c.mu.Unlock()
		return body
	}
	c.mu.Unlock()

	body := c.download(ctx, url)

	c.mu.Lock()
	c.pages[url] = body
	c.mu.Unlock()
	return body
}

func (c *Client) download(ctx context.Context, url string) string {
	for attempt := 1; attempt <= c.retries; attempt++ {
		body, retryable, err := c.attempt(ctx, url)
		if err == nil {
			return body
		}

		if !retryable || attempt == c.retries {
			slog.Warn("Fetch failed, treating as empty page", "url", url, "attempt", attempt, "error", err)
			return ""
		}

		backoff := time.Duration(1<<attempt) * time.Second
		slog.Debug("Fetch retry", "url", url, "attempt", attempt, "backoff", backoff, "error", err)
		c.sleep(backoff)
	}
	return ""
}

// attempt performs one GET. The second return value reports whether the
// failure is worth retrying (timeouts and 5xx yes, 4xx no).
func (c *Client) attempt(ctx context.Context, url string) (string, bool, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", false, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.http.Do(req)
	if err != nil {
		return "", true, fmt.Errorf("request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode >= 500 {
		return "", true, fmt.Errorf("server error: HTTP %d", resp.StatusCode)
	}
	if resp.StatusCode >= 400 {
		return "", false, fmt.Errorf("client error: HTTP %d", resp.StatusCode)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", true, fmt.Errorf("failed to read response body: %w", err)
	}
	return string(data), false, nil
}

// PostJSON posts payload as JSON and decodes the response into out.
// POST responses are not cached; the JSON backend is only consulted when the
// HTML tiers came up empty and its answers are cheap.
func (c *Client) PostJSON(ctx context.Context, url string, payload any, out any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unexpected status: HTTP %d", resp.StatusCode)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}

// CachedPages returns the number of distinct URLs fetched so far.
func (c *Client) CachedPages() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.pages)
}
