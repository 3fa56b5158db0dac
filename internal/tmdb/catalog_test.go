// Marquee - Movie and TV Discovery Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/marquee

package tmdb

import (
	"context"
	"errors"
	"net/url"
	"sync"
	"testing"

	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stubFetcher answers from a path->body map and records calls.
type stubFetcher struct {
	mu     sync.Mutex
	bodies map[string]string
	err    error
	calls  []stubCall
}

type stubCall struct {
	path   string
	params url.Values
}

func (s *stubFetcher) Fetch(_ context.Context, path string, params url.Values) (json.RawMessage, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls = append(s.calls, stubCall{path: path, params: params})
	if s.err != nil {
		return nil, s.err
	}
	body, ok := s.bodies[path]
	if !ok {
		return nil, &APIError{Endpoint: path, StatusCode: 404, Body: "not found"}
	}
	return json.RawMessage(body), nil
}

func (s *stubFetcher) lastCall() stubCall {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.calls) == 0 {
		return stubCall{}
	}
	return s.calls[len(s.calls)-1]
}

func TestDiscoverParams_Defaults(t *testing.T) {
	v := DiscoverParams{}.MovieValues()
	assert.Equal(t, "1", v.Get("page"))
	assert.Equal(t, DefaultSortBy, v.Get("sort_by"))
	for _, k := range []string{"with_genres", "primary_release_year", "vote_average.gte", "vote_average.lte"} {
		assert.False(t, v.Has(k), k)
	}
}

func TestDiscoverParams_AllSet(t *testing.T) {
	p := DiscoverParams{Page: 3, SortBy: "vote_average.desc", WithGenres: "28,12", Year: 1999, VoteAverageGte: 7.5, VoteAverageLte: 9}

	mv := p.MovieValues()
	assert.Equal(t, "3", mv.Get("page"))
	assert.Equal(t, "vote_average.desc", mv.Get("sort_by"))
	assert.Equal(t, "28,12", mv.Get("with_genres"))
	assert.Equal(t, "1999", mv.Get("primary_release_year"))
	assert.Equal(t, "7.5", mv.Get("vote_average.gte"))
	assert.Equal(t, "9", mv.Get("vote_average.lte"))

	tv := p.TVValues()
	assert.Equal(t, "1999", tv.Get("first_air_date_year"))
	assert.False(t, tv.Has("primary_release_year"))
}

func TestCatalog_TrendingWindow(t *testing.T) {
	f := &stubFetcher{bodies: map[string]string{
		"trending/movie/week": `{"page":1,"results":[{"id":1,"title":"A"}],"total_pages":1,"total_results":1}`,
		"trending/movie/day":  `{"page":1,"results":[],"total_pages":0,"total_results":0}`,
	}}
	c := NewCatalog(f)

	page, err := c.Trending(context.Background(), "")
	require.NoError(t, err)
	require.Len(t, page.Results, 1)
	assert.Equal(t, "A", page.Results[0].Title)
	assert.Equal(t, "trending/movie/week", f.lastCall().path)

	_, err = c.Trending(context.Background(), "bogus")
	require.NoError(t, err)
	assert.Equal(t, "trending/movie/week", f.lastCall().path)

	_, err = c.Trending(context.Background(), WindowDay)
	require.NoError(t, err)
	assert.Equal(t, "trending/movie/day", f.lastCall().path)
}

func TestCatalog_GenresUnwrapped(t *testing.T) {
	f := &stubFetcher{bodies: map[string]string{
		"genre/movie/list": `{"genres":[{"id":28,"name":"Action"},{"id":35,"name":"Comedy"}]}`,
		"genre/tv/list":    `{"genres":[{"id":18,"name":"Drama"}]}`,
	}}
	c := NewCatalog(f)

	g, err := c.Genres(context.Background())
	require.NoError(t, err)
	assert.Len(t, g, 2)
	assert.Equal(t, "Action", g[0].Name)

	tg, err := c.TVGenres(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "Drama", tg[0].Name)
}

func TestCatalog_SearchAndPaging(t *testing.T) {
	f := &stubFetcher{bodies: map[string]string{
		"search/movie":  `{"page":2,"results":[],"total_pages":2,"total_results":21}`,
		"movie/popular": `{"page":1,"results":[],"total_pages":1,"total_results":0}`,
	}}
	c := NewCatalog(f)

	page, err := c.Search(context.Background(), "alien", 2)
	require.NoError(t, err)
	assert.Equal(t, 2, page.Page)
	call := f.lastCall()
	assert.Equal(t, "alien", call.params.Get("query"))
	assert.Equal(t, "2", call.params.Get("page"))

	_, err = c.Popular(context.Background(), 0)
	require.NoError(t, err)
	assert.Equal(t, "1", f.lastCall().params.Get("page"))
}

func TestCatalog_DetailsAndCredits(t *testing.T) {
	f := &stubFetcher{bodies: map[string]string{
		"movie/550":         `{"id":550,"title":"Fight Club","runtime":139,"genres":[{"id":18,"name":"Drama"}]}`,
		"movie/550/credits": `{"id":550,"cast":[{"id":1,"name":"Edward Norton","character":"Narrator"}],"crew":[{"id":2,"name":"David Fincher","job":"Director"}]}`,
		"tv/1399/similar":   `{"page":1,"results":[{"id":2,"name":"Other"}],"total_pages":1,"total_results":1}`,
	}}
	c := NewCatalog(f)

	d, err := c.Details(context.Background(), 550)
	require.NoError(t, err)
	assert.Equal(t, "Fight Club", d.Title)
	assert.Equal(t, 139, d.Runtime)

	cr, err := c.Credits(context.Background(), 550)
	require.NoError(t, err)
	require.Len(t, cr.Directors(), 1)
	assert.Equal(t, "David Fincher", cr.Directors()[0].Name)

	sim, err := c.SimilarTV(context.Background(), 1399)
	require.NoError(t, err)
	assert.Equal(t, "Other", sim.Results[0].Name)
}

func TestCatalog_PropagatesErrors(t *testing.T) {
	f := &stubFetcher{err: ErrAPIKeyMissing}
	c := NewCatalog(f)

	_, err := c.Upcoming(context.Background(), 1)
	assert.True(t, errors.Is(err, ErrAPIKeyMissing))

	_, err = c.TVDetails(context.Background(), 1)
	assert.True(t, errors.Is(err, ErrAPIKeyMissing))
}

func TestCatalog_DecodeError(t *testing.T) {
	f := &stubFetcher{bodies: map[string]string{"movie/top_rated": `{"results":"nope"}`}}
	_, err := NewCatalog(f).TopRated(context.Background(), 1)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to decode movie/top_rated")
}
