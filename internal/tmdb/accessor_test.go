// Marquee - Movie and TV Discovery Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/marquee

package tmdb

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAccessor_DefaultsOnFailure(t *testing.T) {
	a := NewAccessor(NewCatalog(&stubFetcher{err: errors.New("boom")}))
	ctx := context.Background()

	p := a.Popular(ctx, 1)
	require.NotNil(t, p)
	assert.Equal(t, 1, p.Page)
	assert.Empty(t, p.Results)
	assert.NotNil(t, p.Results)
	assert.Zero(t, p.TotalPages)
	assert.Zero(t, p.TotalResults)

	tv := a.AiringToday(ctx, 1)
	require.NotNil(t, tv)
	assert.Equal(t, 1, tv.Page)
	assert.NotNil(t, tv.Results)

	g := a.Genres(ctx)
	assert.NotNil(t, g)
	assert.Empty(t, g)

	assert.Nil(t, a.Details(ctx, 1))
	assert.Nil(t, a.Credits(ctx, 1))
	assert.Nil(t, a.TVDetails(ctx, 1))
	assert.Nil(t, a.TVCredits(ctx, 1))
}

func TestAccessor_EmptySearchSkipsUpstream(t *testing.T) {
	f := &stubFetcher{}
	a := NewAccessor(NewCatalog(f))

	p := a.Search(context.Background(), "", 1)
	assert.Empty(t, p.Results)
	assert.Empty(t, a.SearchTV(context.Background(), "", 1).Results)
	assert.Empty(t, f.calls)
}

func TestAccessor_PassesThroughSuccess(t *testing.T) {
	f := &stubFetcher{bodies: map[string]string{
		"movie/now_playing": `{"page":1,"results":[{"id":7,"title":"Now"}],"total_pages":3,"total_results":50}`,
		"genre/tv/list":     `{"genres":[{"id":1,"name":"Drama"}]}`,
		"tv/on_the_air":     `{"page":1,"total_pages":0,"total_results":0}`,
	}}
	a := NewAccessor(NewCatalog(f))

	p := a.NowPlaying(context.Background(), 1)
	assert.Equal(t, 3, p.TotalPages)
	assert.Equal(t, int64(7), p.Results[0].ID)

	assert.Len(t, a.TVGenres(context.Background()), 1)

	// A missing results array decodes to an empty slice, not null.
	assert.NotNil(t, a.OnTheAir(context.Background(), 1).Results)
}
