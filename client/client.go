// Package client is a Go client for the geocoding HTTP API.
//
// Transient failures (transport errors and 5xx responses) are retried
// with exponential backoff; 4xx responses are returned immediately.
package client

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/jpillora/backoff"
)

// DefaultMaxRetries bounds retry attempts for transient failures.
const DefaultMaxRetries = 3

// Client talks to a geocoding API server.
type Client struct {
	baseURL    string
	httpClient *http.Client
	maxRetries int
	backoffMin time.Duration
	backoffMax time.Duration
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// WithMaxRetries bounds the number of retry attempts.
func WithMaxRetries(n int) Option {
	return func(c *Client) {
		c.maxRetries = n
	}
}

// WithBackoff sets the retry delay bounds.
func WithBackoff(min, max time.Duration) Option {
	return func(c *Client) {
		c.backoffMin = min
		c.backoffMax = max
	}
}

// New creates a Client for the API server at baseURL.
func New(baseURL string, optFns ...Option) *Client {
	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: 10 * time.Second},
		maxRetries: DefaultMaxRetries,
		backoffMin: 100 * time.Millisecond,
		backoffMax: 2 * time.Second,
	}
	for _, fn := range optFns {
		fn(c)
	}
	return c
}

// SearchRequest carries forward-search parameters.
type SearchRequest struct {
	Query   string
	Limit   int
	Country string

	// DisableAutocomplete turns off the server's default prefix match
	// on the final token.
	DisableAutocomplete bool
}

// Result mirrors the server's forward-search result document.
type Result struct {
	ID         string     `json:"id"`
	Name       string     `json:"name"`
	Type       string     `json:"type"`
	Lat        float64    `json:"lat"`
	Lon        float64    `json:"lon"`
	BBox       [4]float64 `json:"bbox"`
	Importance float64    `json:"importance"`
	Country    string     `json:"country,omitempty"`
	Region     string     `json:"region,omitempty"`
}

// ReverseResult mirrors the server's reverse result document.
type ReverseResult struct {
	ID         string           `json:"id"`
	Name       string           `json:"name"`
	Subtype    string           `json:"subtype"`
	Lat        float64          `json:"lat"`
	Lon        float64          `json:"lon"`
	BBox       [4]float64       `json:"bbox"`
	DistanceKM float64          `json:"distance_km"`
	Confidence string           `json:"confidence"`
	Hierarchy  []HierarchyEntry `json:"hierarchy"`
}

// HierarchyEntry is one level of a reverse result's containment chain.
type HierarchyEntry struct {
	ID      string `json:"id"`
	Subtype string `json:"subtype"`
	Name    string `json:"name"`
}

// APIError is a non-2xx response from the server.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("api error: status %d: %s", e.StatusCode, e.Message)
}

// Search runs a forward geocoding query.
func (c *Client) Search(ctx context.Context, req SearchRequest) ([]Result, error) {
	params := url.Values{}
	params.Set("q", req.Query)
	if req.Limit > 0 {
		params.Set("limit", strconv.Itoa(req.Limit))
	}
	if req.Country != "" {
		params.Set("country", req.Country)
	}
	if req.DisableAutocomplete {
		params.Set("autocomplete", "false")
	}

	var body struct {
		Results []Result `json:"results"`
	}
	if err := c.getJSON(ctx, "/search", params, &body); err != nil {
		return nil, err
	}
	return body.Results, nil
}

// Reverse resolves a coordinate to its containing divisions.
func (c *Client) Reverse(ctx context.Context, lat, lon float64) ([]ReverseResult, error) {
	params := url.Values{}
	params.Set("lat", strconv.FormatFloat(lat, 'f', -1, 64))
	params.Set("lon", strconv.FormatFloat(lon, 'f', -1, 64))

	var body struct {
		Results []ReverseResult `json:"results"`
	}
	if err := c.getJSON(ctx, "/reverse", params, &body); err != nil {
		return nil, err
	}
	return body.Results, nil
}

// Health reports the server's dataset version.
func (c *Client) Health(ctx context.Context) (string, error) {
	var body struct {
		Status  string `json:"status"`
		Version string `json:"version"`
	}
	if err := c.getJSON(ctx, "/healthz", nil, &body); err != nil {
		return "", err
	}
	return body.Version, nil
}

func (c *Client) getJSON(ctx context.Context, path string, params url.Values, out any) error {
	u := c.baseURL + path
	if len(params) > 0 {
		u += "?" + params.Encode()
	}

	b := &backoff.Backoff{
		Min:    c.backoffMin,
		Max:    c.backoffMax,
		Jitter: true,
	}

	var lastErr error
	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(b.Duration()):
			}
		}

		data, retryable, err := c.do(ctx, u)
		if err == nil {
			return json.Unmarshal(data, out)
		}
		if !retryable {
			return err
		}
		lastErr = err
	}
	return fmt.Errorf("giving up after %d attempts: %w", c.maxRetries+1, lastErr)
}

// do performs one GET. The second return reports whether a failure is
// worth retrying.
func (c *Client) do(ctx context.Context, u string) ([]byte, bool, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, false, err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return nil, false, ctx.Err()
		}
		return nil, true, err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, 10<<20))
	if err != nil {
		return nil, true, err
	}

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return data, false, nil
	}

	apiErr := &APIError{StatusCode: resp.StatusCode}
	var e struct {
		Error string `json:"error"`
	}
	if json.Unmarshal(data, &e) == nil {
		apiErr.Message = e.Error
	}
	return nil, resp.StatusCode >= 500, apiErr
}
