// Marquee - Movie and TV Discovery Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/marquee

package tmdb

import (
	"context"

	"github.com/tomtom215/marquee/internal/logging"
	"github.com/tomtom215/marquee/internal/models"
)

// Accessor is the catch-and-default view of a Catalog used by page rendering.
// Every failure is logged and replaced with an empty value:
//   - pages become models.EmptyPage (page 1, no results, zero totals)
//   - genre lists become an empty slice
//   - details and credits become nil
type Accessor struct {
	catalog *Catalog
}

// NewAccessor wraps c.
func NewAccessor(c *Catalog) *Accessor {
	return &Accessor{catalog: c}
}

func moviePage(ctx context.Context, what string, p *models.MoviePage, err error) *models.MoviePage {
	if err != nil {
		logging.Ctx(ctx).Error().Err(err).Msg("Error fetching " + what)
		return models.EmptyPage[models.Movie]()
	}
	if p.Results == nil {
		p.Results = []models.Movie{}
	}
	return p
}

func tvPage(ctx context.Context, what string, p *models.TVShowPage, err error) *models.TVShowPage {
	if err != nil {
		logging.Ctx(ctx).Error().Err(err).Msg("Error fetching " + what)
		return models.EmptyPage[models.TVShow]()
	}
	if p.Results == nil {
		p.Results = []models.TVShow{}
	}
	return p
}

func genres(ctx context.Context, what string, g []models.Genre, err error) []models.Genre {
	if err != nil {
		logging.Ctx(ctx).Error().Err(err).Msg("Error fetching " + what)
		return []models.Genre{}
	}
	if g == nil {
		return []models.Genre{}
	}
	return g
}

func orNil[T any](ctx context.Context, what string, v *T, err error) *T {
	if err != nil {
		logging.Ctx(ctx).Error().Err(err).Msg("Error fetching " + what)
		return nil
	}
	return v
}

// Trending movies.
func (a *Accessor) Trending(ctx context.Context, window string) *models.MoviePage {
	p, err := a.catalog.Trending(ctx, window)
	return moviePage(ctx, "trending movies", p, err)
}

// Popular movies.
func (a *Accessor) Popular(ctx context.Context, page int) *models.MoviePage {
	p, err := a.catalog.Popular(ctx, page)
	return moviePage(ctx, "popular movies", p, err)
}

// NowPlaying movies.
func (a *Accessor) NowPlaying(ctx context.Context, page int) *models.MoviePage {
	p, err := a.catalog.NowPlaying(ctx, page)
	return moviePage(ctx, "now playing movies", p, err)
}

// Upcoming movies.
func (a *Accessor) Upcoming(ctx context.Context, page int) *models.MoviePage {
	p, err := a.catalog.Upcoming(ctx, page)
	return moviePage(ctx, "upcoming movies", p, err)
}

// TopRated movies.
func (a *Accessor) TopRated(ctx context.Context, page int) *models.MoviePage {
	p, err := a.catalog.TopRated(ctx, page)
	return moviePage(ctx, "top rated movies", p, err)
}

// Search movies. An empty query yields an empty page without an upstream call.
func (a *Accessor) Search(ctx context.Context, query string, page int) *models.MoviePage {
	if query == "" {
		return models.EmptyPage[models.Movie]()
	}
	p, err := a.catalog.Search(ctx, query, page)
	return moviePage(ctx, "movie search results", p, err)
}

// Discover movies.
func (a *Accessor) Discover(ctx context.Context, params DiscoverParams) *models.MoviePage {
	p, err := a.catalog.Discover(ctx, params)
	return moviePage(ctx, "discovered movies", p, err)
}

// Genres for movies.
func (a *Accessor) Genres(ctx context.Context) []models.Genre {
	g, err := a.catalog.Genres(ctx)
	return genres(ctx, "genres", g, err)
}

// Details for a movie, or nil.
func (a *Accessor) Details(ctx context.Context, id int64) *models.MovieDetails {
	d, err := a.catalog.Details(ctx, id)
	return orNil(ctx, "movie details", d, err)
}

// Credits for a movie, or nil.
func (a *Accessor) Credits(ctx context.Context, id int64) *models.Credits {
	c, err := a.catalog.Credits(ctx, id)
	return orNil(ctx, "movie credits", c, err)
}

// Similar movies.
func (a *Accessor) Similar(ctx context.Context, id int64) *models.MoviePage {
	p, err := a.catalog.Similar(ctx, id)
	return moviePage(ctx, "similar movies", p, err)
}

// TrendingTV series.
func (a *Accessor) TrendingTV(ctx context.Context, window string) *models.TVShowPage {
	p, err := a.catalog.TrendingTV(ctx, window)
	return tvPage(ctx, "trending TV shows", p, err)
}

// PopularTV series.
func (a *Accessor) PopularTV(ctx context.Context, page int) *models.TVShowPage {
	p, err := a.catalog.PopularTV(ctx, page)
	return tvPage(ctx, "popular TV shows", p, err)
}

// SearchTV series.
func (a *Accessor) SearchTV(ctx context.Context, query string, page int) *models.TVShowPage {
	if query == "" {
		return models.EmptyPage[models.TVShow]()
	}
	p, err := a.catalog.SearchTV(ctx, query, page)
	return tvPage(ctx, "TV search results", p, err)
}

// DiscoverTV series.
func (a *Accessor) DiscoverTV(ctx context.Context, params DiscoverParams) *models.TVShowPage {
	p, err := a.catalog.DiscoverTV(ctx, params)
	return tvPage(ctx, "discovered TV shows", p, err)
}

// TVGenres for series.
func (a *Accessor) TVGenres(ctx context.Context) []models.Genre {
	g, err := a.catalog.TVGenres(ctx)
	return genres(ctx, "TV genres", g, err)
}

// TVDetails for a series, or nil.
func (a *Accessor) TVDetails(ctx context.Context, id int64) *models.TVShowDetails {
	d, err := a.catalog.TVDetails(ctx, id)
	return orNil(ctx, "TV show details", d, err)
}

// OnTheAir series.
func (a *Accessor) OnTheAir(ctx context.Context, page int) *models.TVShowPage {
	p, err := a.catalog.OnTheAir(ctx, page)
	return tvPage(ctx, "on the air TV shows", p, err)
}

// AiringToday series.
func (a *Accessor) AiringToday(ctx context.Context, page int) *models.TVShowPage {
	p, err := a.catalog.AiringToday(ctx, page)
	return tvPage(ctx, "airing today TV shows", p, err)
}

// TopRatedTV series.
func (a *Accessor) TopRatedTV(ctx context.Context, page int) *models.TVShowPage {
	p, err := a.catalog.TopRatedTV(ctx, page)
	return tvPage(ctx, "top rated TV shows", p, err)
}

// TVCredits for a series, or nil.
func (a *Accessor) TVCredits(ctx context.Context, id int64) *models.Credits {
	c, err := a.catalog.TVCredits(ctx, id)
	return orNil(ctx, "TV show credits", c, err)
}

// SimilarTV series.
func (a *Accessor) SimilarTV(ctx context.Context, id int64) *models.TVShowPage {
	p, err := a.catalog.SimilarTV(ctx, id)
	return tvPage(ctx, "similar TV shows", p, err)
}
