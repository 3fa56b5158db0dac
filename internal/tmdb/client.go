// Marquee - Movie and TV Discovery Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/marquee

// Package tmdb talks to The Movie Database REST API.
//
// Layers, from the wire up:
//
//   - Client: signs requests with the api_key query parameter, applies the
//     per-route freshness cache, and returns raw upstream JSON (Fetch).
//   - CircuitBreakerClient: optional gobreaker wrapper around any Fetcher.
//   - Catalog: typed accessors (movies, TV, genres, credits) over a Fetcher.
//   - Accessor: the presentation-facing facade that logs every error and
//     substitutes an empty default, so a page never fails on one widget.
//
// Requests are never retried.
package tmdb

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"regexp"
	"sort"
	"strings"
	"time"

	"github.com/goccy/go-json"

	"github.com/tomtom215/marquee/internal/cache"
	"github.com/tomtom215/marquee/internal/config"
	"github.com/tomtom215/marquee/internal/logging"
	"github.com/tomtom215/marquee/internal/metrics"
)

// maxErrorBodySize limits how much of an error response body is kept (64KB).
const maxErrorBodySize = 64 * 1024

// maxResponseSize caps successful upstream bodies.
const maxResponseSize = 16 * 1024 * 1024

// Freshness windows per upstream route family.
const (
	SearchTTL   = 5 * time.Minute
	DiscoverTTL = time.Hour
	GenreTTL    = 24 * time.Hour
	DefaultTTL  = time.Hour
)

// ErrAPIKeyMissing is returned before any network I/O when no credential is configured.
var ErrAPIKeyMissing = errors.New("tmdb: api key not configured")

// APIError is a non-2xx upstream response.
type APIError struct {
	Endpoint   string
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("tmdb: %s returned status %d: %s", e.Endpoint, e.StatusCode, e.Body)
}

// Fetcher returns raw upstream JSON for a path relative to the API root,
// e.g. "discover/movie".
type Fetcher interface {
	Fetch(ctx context.Context, path string, params url.Values) (json.RawMessage, error)
}

// Client is the HTTP client for the upstream API. Safe for concurrent use.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
	cache      *cache.Cache
}

// NewClient creates a client. responses may be nil to disable caching.
func NewClient(cfg *config.TMDBConfig, responses *cache.Cache) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = config.DefaultTMDBBaseURL
	}
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		apiKey:     cfg.APIKey,
		httpClient: &http.Client{Timeout: timeout},
		cache:      responses,
	}
}

// HasAPIKey reports whether the client can make upstream calls.
func (c *Client) HasAPIKey() bool {
	return c.apiKey != ""
}

// readBodyForError reads up to maxErrorBodySize bytes of an error response.
func readBodyForError(r io.Reader) []byte {
	body, err := io.ReadAll(io.LimitReader(r, maxErrorBodySize))
	if err != nil {
		return []byte("(failed to read response body)")
	}
	if len(body) == maxErrorBodySize {
		return append(body, []byte("\n... (truncated)")...)
	}
	return body
}

// Fetch performs a GET against path with params, attaching the api_key.
// Successful bodies are returned unchanged and cached for the route's window.
func (c *Client) Fetch(ctx context.Context, path string, params url.Values) (json.RawMessage, error) {
	path = strings.Trim(path, "/")
	endpoint := endpointLabel(path)

	if c.apiKey == "" {
		metrics.RecordUpstreamError(endpoint, "no_api_key")
		return nil, ErrAPIKeyMissing
	}

	key := cacheKey(path, params)
	if c.cache != nil {
		if v, ok := c.cache.Get(key); ok {
			if raw, ok := v.(json.RawMessage); ok {
				return raw, nil
			}
		}
	}

	query := make(url.Values, len(params)+1)
	for k, vs := range params {
		query[k] = append([]string(nil), vs...)
	}
	query.Set("api_key", c.apiKey)
	reqURL := c.baseURL + "/" + path + "?" + query.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("failed to create %s request: %w", endpoint, err)
	}
	req.Header.Set("Accept", "application/json")

	logging.Ctx(ctx).Debug().Str("endpoint", endpoint).Msg("Fetching from TMDB")

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		metrics.RecordUpstreamRequest(endpoint, 0, time.Since(start))
		metrics.RecordUpstreamError(endpoint, "network")
		// url.Error embeds the request URL, which carries the api_key.
		var uerr *url.Error
		if errors.As(err, &uerr) {
			err = uerr.Err
		}
		return nil, fmt.Errorf("tmdb %s request failed: %w", endpoint, err)
	}
	defer resp.Body.Close()
	metrics.RecordUpstreamRequest(endpoint, resp.StatusCode, time.Since(start))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		metrics.RecordUpstreamError(endpoint, "status")
		return nil, &APIError{
			Endpoint:   endpoint,
			StatusCode: resp.StatusCode,
			Body:       string(readBodyForError(resp.Body)),
		}
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		metrics.RecordUpstreamError(endpoint, "network")
		return nil, fmt.Errorf("failed to read %s response: %w", endpoint, err)
	}
	if !json.Valid(body) {
		metrics.RecordUpstreamError(endpoint, "decode")
		return nil, fmt.Errorf("failed to decode %s response: invalid JSON", endpoint)
	}

	raw := json.RawMessage(body)
	if c.cache != nil {
		c.cache.SetWithTTL(key, raw, TTLFor(path))
	}
	return raw, nil
}

// TTLFor returns the freshness window for an upstream path.
func TTLFor(path string) time.Duration {
	path = strings.TrimPrefix(path, "/")
	switch {
	case strings.HasPrefix(path, "search/"):
		return SearchTTL
	case strings.HasPrefix(path, "discover/"):
		return DiscoverTTL
	case strings.HasPrefix(path, "genre/"):
		return GenreTTL
	default:
		return DefaultTTL
	}
}

func cacheKey(path string, params url.Values) string {
	keys := make([]string, 0, len(params))
	for k := range params {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	var b strings.Builder
	b.WriteString(path)
	for _, k := range keys {
		for _, v := range params[k] {
			b.WriteByte('|')
			b.WriteString(k)
			b.WriteByte('=')
			b.WriteString(v)
		}
	}
	return cache.GenerateKey("tmdb", b.String())
}

var numericSegment = regexp.MustCompile(`/\d+(/|$)`)

// endpointLabel collapses numeric IDs so metrics have bounded cardinality.
func endpointLabel(path string) string {
	return numericSegment.ReplaceAllString(path, "/{id}$1")
}
