package fetch

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(retries int) *Client {
	c := NewWithHTTPClient(&http.Client{Timeout: 5 * time.Second}, retries)
	c.SetSleep(func(time.Duration) {})
	return c
}

func TestGetCachesByExactURL(t *testing.T) {
	var hits atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		_, _ = w.Write([]byte("page body"))
	}))
	defer server.Close()

	c := newTestClient(3)
	ctx := context.Background()

	assert.Equal(t, "page body", c.Get(ctx, server.URL+"/record=b1234567"))
	assert.Equal(t, "page body", c.Get(ctx, server.URL+"/record=b1234567"))
	assert.Equal(t, int32(1), hits.Load())

	// A different query string is a different cache key, no normalization here
	c.Get(ctx, server.URL+"/record=b1234567?x=1")
	assert.Equal(t, int32(2), hits.Load())
	assert.Equal(t, 2, c.CachedPages())
}

func TestGetRetriesServerErrors(t *testing.T) {
	var hits atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if hits.Add(1) < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		_, _ = w.Write([]byte("recovered"))
	}))
	defer server.Close()

	c := newTestClient(3)
	assert.Equal(t, "recovered", c.Get(context.Background(), server.URL))
	assert.Equal(t, int32(3), hits.Load())
}

func TestGetFailsSoftAfterRetriesExhausted(t *testing.T) {
	var hits atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer server.Close()

	c := newTestClient(3)
	assert.Equal(t, "", c.Get(context.Background(), server.URL))
	assert.Equal(t, int32(3), hits.Load())

	// The failure itself is cached; no further network traffic
	assert.Equal(t, "", c.Get(context.Background(), server.URL))
	assert.Equal(t, int32(3), hits.Load())
}

func TestGetDoesNotRetryClientErrors(t *testing.T) {
	var hits atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	c := newTestClient(3)
	assert.Equal(t, "", c.Get(context.Background(), server.URL))
	assert.Equal(t, int32(1), hits.Load())
}

func TestPostJSON(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "application/json", r.Header.Get("Content-Type"))
		_, _ = w.Write([]byte(`[{"items":[{"libraryNameEst":"TLÜAR","statusEst":"kohal"}]}]`))
	}))
	defer server.Close()

	c := newTestClient(3)

	var out []struct {
		Items []struct {
			LibraryNameEst string `json:"libraryNameEst"`
			StatusEst      string `json:"statusEst"`
		} `json:"items"`
	}
	err := c.PostJSON(context.Background(), server.URL, []string{"b1234567"}, &out)
	require.NoError(t, err)
	require.Len(t, out, 1)
	assert.Equal(t, "TLÜAR", out[0].Items[0].LibraryNameEst)
}

func TestPostJSONErrorStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	c := newTestClient(3)
	var out any
	err := c.PostJSON(context.Background(), server.URL, []string{"b1234567"}, &out)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "HTTP 500")
}
