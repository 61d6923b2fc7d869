package client

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestServer(t *testing.T, handler http.HandlerFunc) (*httptest.Server, *Client) {
	t.Helper()

	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	c := New(srv.URL, WithBackoff(time.Millisecond, 5*time.Millisecond))
	return srv, c
}

func TestSearch(t *testing.T) {
	var gotQuery string
	_, c := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/search", r.URL.Path)
		gotQuery = r.URL.Query().Get("q")
		assert.Equal(t, "5", r.URL.Query().Get("limit"))
		// Omitted so the server's autocomplete default applies.
		assert.False(t, r.URL.Query().Has("autocomplete"))

		_ = json.NewEncoder(w).Encode(map[string]any{
			"results": []Result{{ID: "g-boston", Name: "Boston", Type: "locality", Importance: 0.8}},
		})
	})

	results, err := c.Search(context.Background(), SearchRequest{
		Query: "boston", Limit: 5,
	})
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "boston", gotQuery)
	assert.Equal(t, "g-boston", results[0].ID)
}

func TestSearchDisableAutocomplete(t *testing.T) {
	_, c := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "false", r.URL.Query().Get("autocomplete"))
		_ = json.NewEncoder(w).Encode(map[string]any{"results": []Result{}})
	})

	_, err := c.Search(context.Background(), SearchRequest{
		Query: "boston", DisableAutocomplete: true,
	})
	require.NoError(t, err)
}

func TestReverse(t *testing.T) {
	_, c := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/reverse", r.URL.Path)
		assert.Equal(t, "42.36", r.URL.Query().Get("lat"))

		_ = json.NewEncoder(w).Encode(map[string]any{
			"results": []ReverseResult{{
				ID: "g-boston", Subtype: "locality", Confidence: "bbox",
				Hierarchy: []HierarchyEntry{{ID: "g-boston", Subtype: "locality"}},
			}},
		})
	})

	results, err := c.Reverse(context.Background(), 42.36, -71.06)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "bbox", results[0].Confidence)
}

func TestHealth(t *testing.T) {
	_, c := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]string{"status": "ok", "version": "2026-08-20.0"})
	})

	version, err := c.Health(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "2026-08-20.0", version)
}

func TestRetriesTransientFailures(t *testing.T) {
	var calls atomic.Int32
	_, c := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			http.Error(w, `{"error":"try later"}`, http.StatusServiceUnavailable)
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]any{"results": []Result{}})
	})

	_, err := c.Search(context.Background(), SearchRequest{Query: "boston"})
	require.NoError(t, err)
	assert.Equal(t, int32(3), calls.Load())
}

func TestClientErrorNotRetried(t *testing.T) {
	var calls atomic.Int32
	_, c := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusBadRequest)
		_ = json.NewEncoder(w).Encode(map[string]string{"error": "query too long"})
	})

	_, err := c.Search(context.Background(), SearchRequest{Query: "boston"})
	require.Error(t, err)
	assert.Equal(t, int32(1), calls.Load())

	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusBadRequest, apiErr.StatusCode)
	assert.Equal(t, "query too long", apiErr.Message)
}

func TestGivesUpAfterMaxRetries(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusInternalServerError)
	}))
	t.Cleanup(srv.Close)

	c := New(srv.URL, WithMaxRetries(2), WithBackoff(time.Millisecond, 2*time.Millisecond))

	_, err := c.Search(context.Background(), SearchRequest{Query: "boston"})
	require.Error(t, err)
	assert.Equal(t, int32(3), calls.Load())

	var apiErr *APIError
	assert.ErrorAs(t, err, &apiErr)
}

func TestContextCancellation(t *testing.T) {
	_, c := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := c.Search(ctx, SearchRequest{Query: "boston"})
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
}
