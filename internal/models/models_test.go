// Marquee - Movie and TV Discovery Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/marquee

package models

import (
	"testing"
	"time"

	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMovie_ReleaseYear(t *testing.T) {
	tests := []struct {
		date string
		want int
	}{
		{"2024-03-01", 2024},
		{"1999", 1999},
		{"", 0},
		{"soon", 0},
	}
	for _, tt := range tests {
		m := Movie{ReleaseDate: tt.date}
		assert.Equal(t, tt.want, m.ReleaseYear(), tt.date)
	}
}

func TestWatchlistEntry_JSONShape(t *testing.T) {
	poster := "/p.jpg"
	entry := WatchlistEntry{
		Movie:   Movie{ID: 42, Title: "Arrival", PosterPath: &poster, VoteAverage: 7.9},
		AddedAt: time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC),
	}

	data, err := json.Marshal(entry)
	require.NoError(t, err)

	var raw map[string]interface{}
	require.NoError(t, json.Unmarshal(data, &raw))

	// The movie fields are flattened next to addedAt.
	assert.Equal(t, float64(42), raw["id"])
	assert.Equal(t, "Arrival", raw["title"])
	assert.Equal(t, "/p.jpg", raw["poster_path"])
	assert.Equal(t, "2026-01-02T03:04:05Z", raw["addedAt"])
}

func TestMovieDetails_DecodesUpstream(t *testing.T) {
	body := `{"id":603,"title":"The Matrix","runtime":136,"genres":[{"id":28,"name":"Action"}],
		"poster_path":null,"production_countries":[{"iso_3166_1":"US","name":"United States of America"}],
		"budget":63000000,"tagline":"Welcome to the Real World."}`

	var d MovieDetails
	require.NoError(t, json.Unmarshal([]byte(body), &d))

	assert.Equal(t, int64(603), d.ID)
	assert.Equal(t, "The Matrix", d.Title)
	assert.Equal(t, 136, d.Runtime)
	assert.Nil(t, d.PosterPath)
	require.Len(t, d.Genres, 1)
	assert.Equal(t, "Action", d.Genres[0].Name)
	assert.Equal(t, "US", d.ProductionCountries[0].ISO3166_1)
}

func TestCredits_DirectorsAndTopCast(t *testing.T) {
	c := &Credits{
		Cast: []CastMember{{Name: "A"}, {Name: "B"}, {Name: "C"}},
		Crew: []CrewMember{
			{Name: "W", Job: "Writer"},
			{Name: "D1", Job: "Director"},
			{Name: "D2", Job: "Director"},
		},
	}

	dirs := c.Directors()
	require.Len(t, dirs, 2)
	assert.Equal(t, "D1", dirs[0].Name)
	assert.Len(t, c.TopCast(2), 2)
	assert.Len(t, c.TopCast(10), 3)

	var nilCredits *Credits
	assert.Nil(t, nilCredits.Directors())
	assert.Nil(t, nilCredits.TopCast(5))
}

func TestEmptyPage(t *testing.T) {
	p := EmptyPage[Movie]()
	data, err := json.Marshal(p)
	require.NoError(t, err)
	assert.JSONEq(t, `{"page":1,"results":[],"total_pages":0,"total_results":0}`, string(data))
}

func TestNewError(t *testing.T) {
	resp := NewError("VALIDATION_ERROR", "bad id")
	assert.Equal(t, "error", resp.Status)
	require.NotNil(t, resp.Error)
	assert.Equal(t, "VALIDATION_ERROR", resp.Error.Code)
	assert.False(t, resp.Metadata.Timestamp.IsZero())
}
