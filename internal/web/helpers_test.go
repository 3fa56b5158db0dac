// Marquee - Movie and TV Discovery Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/marquee

package web

import (
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPaginationWindow(t *testing.T) {
	tests := []struct {
		name        string
		page, total int
		want        []int
	}{
		{"no pages", 1, 0, nil},
		{"single page", 1, 1, []int{1}},
		{"fewer than window", 2, 4, []int{1, 2, 3, 4}},
		{"exactly window", 5, 5, []int{1, 2, 3, 4, 5}},
		{"first page", 1, 20, []int{1, 2, 3, 4, 5}},
		{"page three", 3, 20, []int{1, 2, 3, 4, 5}},
		{"page four slides", 4, 20, []int{2, 3, 4, 5, 6}},
		{"middle", 10, 20, []int{8, 9, 10, 11, 12}},
		{"third from end", 18, 20, []int{16, 17, 18, 19, 20}},
		{"last page", 20, 20, []int{16, 17, 18, 19, 20}},
		{"six pages at four", 4, 6, []int{2, 3, 4, 5, 6}},
		{"capped total", 500, 500, []int{496, 497, 498, 499, 500}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, PaginationWindow(tt.page, tt.total))
		})
	}
}

func TestCapTotalPages(t *testing.T) {
	assert.Equal(t, 500, CapTotalPages(38211))
	assert.Equal(t, 12, CapTotalPages(12))
	assert.Equal(t, 0, CapTotalPages(-1))
}

func TestGreeting(t *testing.T) {
	tests := map[int]string{
		0:  "Good morning",
		11: "Good morning",
		12: "Good afternoon",
		17: "Good afternoon",
		18: "Good evening",
		23: "Good evening",
	}
	for hour, want := range tests {
		assert.Equal(t, want, Greeting(hour), "hour %d", hour)
	}
}

func TestFormatRuntime(t *testing.T) {
	assert.Equal(t, "2h 19m", FormatRuntime(139))
	assert.Equal(t, "0h 45m", FormatRuntime(45))
	assert.Equal(t, "3h 0m", FormatRuntime(180))
	assert.Equal(t, "", FormatRuntime(0))
}

func TestYearOptions(t *testing.T) {
	years := YearOptions(time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC))
	require.Len(t, years, YearRange+1)
	assert.Equal(t, 2026, years[0])
	assert.Equal(t, 1976, years[len(years)-1])
}

func TestParseFilters(t *testing.T) {
	f := ParseFilters(url.Values{
		"genre": {"28", "12,abc"},
		"year":  {"1999"},
		"min":   {"6.5"},
		"max":   {"10"},
		"sort":  {"vote_average.desc"},
		"page":  {"9999"},
	})
	assert.Equal(t, []int{28, 12}, f.Genres)
	assert.Equal(t, 1999, f.Year)
	assert.Equal(t, 6.5, f.RatingMin)
	assert.Equal(t, 500, f.Page)
	assert.False(t, f.Searching())

	p := f.DiscoverParams()
	assert.Equal(t, "28,12", p.WithGenres)
	assert.Equal(t, 6.5, p.VoteAverageGte)
	assert.Zero(t, p.VoteAverageLte, "max of 10 must not be sent")

	v := p.MovieValues()
	assert.Equal(t, "6.5", v.Get("vote_average.gte"))
	_, hasLte := v["vote_average.lte"]
	assert.False(t, hasLte)
}

func TestParseFilters_Defaults(t *testing.T) {
	f := ParseFilters(url.Values{"year": {"abc"}, "min": {"-3"}, "sort": {"hacked.desc"}, "page": {"0"}})
	assert.Equal(t, 0, f.Year)
	assert.Zero(t, f.RatingMin)
	assert.Equal(t, 10.0, f.RatingMax)
	assert.Equal(t, "popularity.desc", f.SortBy)
	assert.Equal(t, 1, f.Page)

	p := f.DiscoverParams()
	assert.Zero(t, p.VoteAverageGte, "min of 0 must not be sent")
	assert.Zero(t, p.VoteAverageLte)
}

func TestFilterState_URL(t *testing.T) {
	f := FilterState{Genres: []int{28}, Year: 2001, RatingMin: 0, RatingMax: 8, SortBy: "popularity.desc", Page: 1}
	assert.Equal(t, "/movies?genre=28&max=8&page=3&year=2001", f.URL(3))
	assert.Equal(t, "/movies", FilterState{RatingMax: 10, SortBy: "popularity.desc"}.URL(1))

	search := FilterState{Query: "alien", Genres: []int{28}, RatingMax: 10}
	assert.Equal(t, "/movies?page=2&q=alien", search.URL(2))

	// The parsed URL yields the same filters.
	u, err := url.Parse(f.URL(3))
	require.NoError(t, err)
	back := ParseFilters(u.Query())
	assert.Equal(t, f.Genres, back.Genres)
	assert.Equal(t, f.Year, back.Year)
	assert.Equal(t, f.RatingMax, back.RatingMax)
	assert.Equal(t, 3, back.Page)
}

func TestNewPagination(t *testing.T) {
	f := FilterState{RatingMax: 10, SortBy: "popularity.desc"}
	p := newPagination(f, 1, 1200)
	assert.Equal(t, 500, p.Total)
	assert.Empty(t, p.PrevURL)
	assert.Equal(t, "/movies?page=2", p.NextURL)
	require.Len(t, p.Pages, 5)
	assert.True(t, p.Pages[0].Current)

	last := newPagination(f, 500, 1200)
	assert.Empty(t, last.NextURL)
	assert.Equal(t, 496, last.Pages[0].Number)
}
