// Marquee - Movie and TV Discovery Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/marquee

package api

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/goccy/go-json"

	"github.com/tomtom215/marquee/internal/auth"
	"github.com/tomtom215/marquee/internal/config"
	"github.com/tomtom215/marquee/internal/logging"
	"github.com/tomtom215/marquee/internal/tmdb"
	"github.com/tomtom215/marquee/internal/watchlist"
	ws "github.com/tomtom215/marquee/internal/websocket"
)

//nolint:gochecknoinits // silence logging in tests
func init() {
	logging.Init(logging.Config{Level: "disabled", Output: io.Discard})
}

// fakeFetcher records calls and answers from a fixed table.
type fakeFetcher struct {
	mu        sync.Mutex
	responses map[string]string
	err       error
	calls     []fetchCall
}

type fetchCall struct {
	path   string
	params url.Values
}

func (f *fakeFetcher) Fetch(_ context.Context, path string, params url.Values) (json.RawMessage, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, fetchCall{path: path, params: params})
	if f.err != nil {
		return nil, f.err
	}
	body, ok := f.responses[path]
	if !ok {
		return nil, &tmdb.APIError{Endpoint: path, StatusCode: http.StatusNotFound, Body: "{}"}
	}
	return json.RawMessage(body), nil
}

func (f *fakeFetcher) lastCall(t *testing.T) fetchCall {
	t.Helper()
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.calls) == 0 {
		t.Fatal("expected an upstream call")
	}
	return f.calls[len(f.calls)-1]
}

func (f *fakeFetcher) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

type testServer struct {
	handler http.Handler
	fetcher *fakeFetcher
	store   *watchlist.Store
	cookies []*http.Cookie
}

func newTestServer(t *testing.T, apiKey string, backend watchlist.Backend) *testServer {
	t.Helper()

	cfg := &config.Config{
		TMDB: config.TMDBConfig{APIKey: apiKey, ImageBaseURL: "https://cdn.marquee.test/t/p"},
		Security: config.SecurityConfig{
			RateLimitDisabled: true,
			ProfileSecret:     "0123456789abcdef0123456789abcdef",
			ProfileMaxAge:     time.Hour,
		},
	}
	fetcher := &fakeFetcher{responses: map[string]string{}}
	if backend == nil {
		backend = watchlist.NewMemoryBackend()
	}
	hub := ws.NewHub()
	store := watchlist.NewStore(backend, hub)

	profiles, err := auth.NewProfileManager(&cfg.Security, nil, "marquee_session")
	if err != nil {
		t.Fatalf("NewProfileManager: %v", err)
	}
	authHandlers := auth.NewHandlers(nil, nil, profiles, "marquee_session", 0, false)

	router := NewRouter(NewHandler(cfg, fetcher, nil, store, hub), profiles, authHandlers, cfg)
	return &testServer{handler: router.SetupChi(), fetcher: fetcher, store: store}
}

// do sends a request, carrying and collecting cookies like a browser would.
func (s *testServer) do(t *testing.T, method, target, body string) *httptest.ResponseRecorder {
	t.Helper()
	var rdr io.Reader
	if body != "" {
		rdr = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, rdr)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	for _, c := range s.cookies {
		req.AddCookie(c)
	}
	rec := httptest.NewRecorder()
	s.handler.ServeHTTP(rec, req)
	s.cookies = append(s.cookies, rec.Result().Cookies()...)
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	if err := json.Unmarshal(rec.Body.Bytes(), v); err != nil {
		t.Fatalf("decode %q: %v", rec.Body.String(), err)
	}
}

func errorBody(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var body struct {
		Error string `json:"error"`
	}
	decodeBody(t, rec, &body)
	return body.Error
}

// errFailingBackend fails every operation.
type errFailingBackend struct{}

var errStorage = errors.New("disk on fire")

func (errFailingBackend) Load(context.Context, string) ([]byte, error) { return nil, errStorage }
func (errFailingBackend) Save(context.Context, string, []byte) error   { return errStorage }
func (errFailingBackend) Delete(context.Context, string) error         { return errStorage }
