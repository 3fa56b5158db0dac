// Marquee - Movie and TV Discovery Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/marquee

package tmdb

import (
	"context"
	"fmt"
	"net/url"
	"strconv"

	"github.com/goccy/go-json"

	"github.com/tomtom215/marquee/internal/models"
)

// Trending time windows.
const (
	WindowDay  = "day"
	WindowWeek = "week"
)

// DefaultSortBy is the discover ordering when none is given.
const DefaultSortBy = "popularity.desc"

// DiscoverParams filters a discover query. Zero values are omitted.
type DiscoverParams struct {
	Page           int
	SortBy         string
	WithGenres     string  // comma-separated genre IDs
	Year           int     // primary_release_year (movies) or first_air_date_year (TV)
	VoteAverageGte float64 // sent only when > 0
	VoteAverageLte float64 // sent only when > 0
}

func (p DiscoverParams) values(yearKey string) url.Values {
	v := url.Values{}
	page := p.Page
	if page < 1 {
		page = 1
	}
	v.Set("page", strconv.Itoa(page))
	sortBy := p.SortBy
	if sortBy == "" {
		sortBy = DefaultSortBy
	}
	v.Set("sort_by", sortBy)
	if p.WithGenres != "" {
		v.Set("with_genres", p.WithGenres)
	}
	if p.Year != 0 {
		v.Set(yearKey, strconv.Itoa(p.Year))
	}
	if p.VoteAverageGte > 0 {
		v.Set("vote_average.gte", strconv.FormatFloat(p.VoteAverageGte, 'f', -1, 64))
	}
	if p.VoteAverageLte > 0 {
		v.Set("vote_average.lte", strconv.FormatFloat(p.VoteAverageLte, 'f', -1, 64))
	}
	return v
}

// MovieValues encodes p for /discover/movie.
func (p DiscoverParams) MovieValues() url.Values { return p.values("primary_release_year") }

// TVValues encodes p for /discover/tv.
func (p DiscoverParams) TVValues() url.Values { return p.values("first_air_date_year") }

// Catalog exposes typed accessors over a Fetcher.
type Catalog struct {
	fetcher Fetcher
}

// NewCatalog wraps f.
func NewCatalog(f Fetcher) *Catalog {
	return &Catalog{fetcher: f}
}

func get[T any](ctx context.Context, f Fetcher, path string, params url.Values) (*T, error) {
	raw, err := f.Fetch(ctx, path, params)
	if err != nil {
		return nil, err
	}
	var out T
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, fmt.Errorf("failed to decode %s: %w", endpointLabel(path), err)
	}
	return &out, nil
}

func pageParams(page int) url.Values {
	if page < 1 {
		page = 1
	}
	return url.Values{"page": {strconv.Itoa(page)}}
}

func normalizeWindow(window string) string {
	if window == WindowDay {
		return WindowDay
	}
	return WindowWeek
}

// ---- Movies ----

// Trending returns trending movies for the day or week window (default week).
func (c *Catalog) Trending(ctx context.Context, window string) (*models.MoviePage, error) {
	return get[models.MoviePage](ctx, c.fetcher, "trending/movie/"+normalizeWindow(window), nil)
}

// Popular returns a page of popular movies.
func (c *Catalog) Popular(ctx context.Context, page int) (*models.MoviePage, error) {
	return get[models.MoviePage](ctx, c.fetcher, "movie/popular", pageParams(page))
}

// NowPlaying returns movies currently in theatres.
func (c *Catalog) NowPlaying(ctx context.Context, page int) (*models.MoviePage, error) {
	return get[models.MoviePage](ctx, c.fetcher, "movie/now_playing", pageParams(page))
}

// Upcoming returns movies to be released soon.
func (c *Catalog) Upcoming(ctx context.Context, page int) (*models.MoviePage, error) {
	return get[models.MoviePage](ctx, c.fetcher, "movie/upcoming", pageParams(page))
}

// TopRated returns the highest rated movies.
func (c *Catalog) TopRated(ctx context.Context, page int) (*models.MoviePage, error) {
	return get[models.MoviePage](ctx, c.fetcher, "movie/top_rated", pageParams(page))
}

// Search finds movies by free-text query.
func (c *Catalog) Search(ctx context.Context, query string, page int) (*models.MoviePage, error) {
	params := pageParams(page)
	params.Set("query", query)
	return get[models.MoviePage](ctx, c.fetcher, "search/movie", params)
}

// Discover lists movies matching p.
func (c *Catalog) Discover(ctx context.Context, p DiscoverParams) (*models.MoviePage, error) {
	return get[models.MoviePage](ctx, c.fetcher, "discover/movie", p.MovieValues())
}

// Genres returns the movie genre list.
func (c *Catalog) Genres(ctx context.Context) ([]models.Genre, error) {
	list, err := get[models.GenreList](ctx, c.fetcher, "genre/movie/list", nil)
	if err != nil {
		return nil, err
	}
	return list.Genres, nil
}

// Details returns the full movie record.
func (c *Catalog) Details(ctx context.Context, id int64) (*models.MovieDetails, error) {
	return get[models.MovieDetails](ctx, c.fetcher, fmt.Sprintf("movie/%d", id), nil)
}

// Credits returns cast and crew for a movie.
func (c *Catalog) Credits(ctx context.Context, id int64) (*models.Credits, error) {
	return get[models.Credits](ctx, c.fetcher, fmt.Sprintf("movie/%d/credits", id), nil)
}

// Similar returns movies similar to id.
func (c *Catalog) Similar(ctx context.Context, id int64) (*models.MoviePage, error) {
	return get[models.MoviePage](ctx, c.fetcher, fmt.Sprintf("movie/%d/similar", id), nil)
}

// ---- TV ----

// TrendingTV returns trending series for the day or week window (default week).
func (c *Catalog) TrendingTV(ctx context.Context, window string) (*models.TVShowPage, error) {
	return get[models.TVShowPage](ctx, c.fetcher, "trending/tv/"+normalizeWindow(window), nil)
}

// PopularTV returns a page of popular series.
func (c *Catalog) PopularTV(ctx context.Context, page int) (*models.TVShowPage, error) {
	return get[models.TVShowPage](ctx, c.fetcher, "tv/popular", pageParams(page))
}

// SearchTV finds series by free-text query.
func (c *Catalog) SearchTV(ctx context.Context, query string, page int) (*models.TVShowPage, error) {
	params := pageParams(page)
	params.Set("query", query)
	return get[models.TVShowPage](ctx, c.fetcher, "search/tv", params)
}

// DiscoverTV lists series matching p.
func (c *Catalog) DiscoverTV(ctx context.Context, p DiscoverParams) (*models.TVShowPage, error) {
	return get[models.TVShowPage](ctx, c.fetcher, "discover/tv", p.TVValues())
}

// TVGenres returns the series genre list.
func (c *Catalog) TVGenres(ctx context.Context) ([]models.Genre, error) {
	list, err := get[models.GenreList](ctx, c.fetcher, "genre/tv/list", nil)
	if err != nil {
		return nil, err
	}
	return list.Genres, nil
}

// TVDetails returns the full series record.
func (c *Catalog) TVDetails(ctx context.Context, id int64) (*models.TVShowDetails, error) {
	return get[models.TVShowDetails](ctx, c.fetcher, fmt.Sprintf("tv/%d", id), nil)
}

// OnTheAir returns series with an episode airing in the next week.
func (c *Catalog) OnTheAir(ctx context.Context, page int) (*models.TVShowPage, error) {
	return get[models.TVShowPage](ctx, c.fetcher, "tv/on_the_air", pageParams(page))
}

// AiringToday returns series with an episode airing today.
func (c *Catalog) AiringToday(ctx context.Context, page int) (*models.TVShowPage, error) {
	return get[models.TVShowPage](ctx, c.fetcher, "tv/airing_today", pageParams(page))
}

// TopRatedTV returns the highest rated series.
func (c *Catalog) TopRatedTV(ctx context.Context, page int) (*models.TVShowPage, error) {
	return get[models.TVShowPage](ctx, c.fetcher, "tv/top_rated", pageParams(page))
}

// TVCredits returns cast and crew for a series.
func (c *Catalog) TVCredits(ctx context.Context, id int64) (*models.Credits, error) {
	return get[models.Credits](ctx, c.fetcher, fmt.Sprintf("tv/%d/credits", id), nil)
}

// SimilarTV returns series similar to id.
func (c *Catalog) SimilarTV(ctx context.Context, id int64) (*models.TVShowPage, error) {
	return get[models.TVShowPage](ctx, c.fetcher, fmt.Sprintf("tv/%d/similar", id), nil)
}
