// Marquee - Movie and TV Discovery Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/marquee

// Package models defines catalog records as returned by the upstream media
// database, the watchlist entry type, and the JSON envelope used by
// Marquee's own (non-proxy) API routes.
//
// Catalog records are decoded verbatim from upstream JSON and are never
// mutated by Marquee. Field names follow the upstream wire format.
package models

import (
	"strconv"
	"strings"
)

// Movie is a movie as it appears in upstream list results.
type Movie struct {
	ID               int64   `json:"id"`
	Title            string  `json:"title"`
	Overview         string  `json:"overview"`
	PosterPath       *string `json:"poster_path"`
	BackdropPath     *string `json:"backdrop_path"`
	ReleaseDate      string  `json:"release_date"`
	VoteAverage      float64 `json:"vote_average"`
	VoteCount        int     `json:"vote_count"`
	Popularity       float64 `json:"popularity"`
	GenreIDs         []int   `json:"genre_ids"`
	Adult            bool    `json:"adult"`
	OriginalLanguage string  `json:"original_language"`
	OriginalTitle    string  `json:"original_title"`
	Video            bool    `json:"video"`
}

// ReleaseYear returns the year part of ReleaseDate, or 0 when unknown.
func (m *Movie) ReleaseYear() int {
	return yearOf(m.ReleaseDate)
}

// TVShow is a series as it appears in upstream list results.
type TVShow struct {
	ID               int64    `json:"id"`
	Name             string   `json:"name"`
	Overview         string   `json:"overview"`
	PosterPath       *string  `json:"poster_path"`
	BackdropPath     *string  `json:"backdrop_path"`
	FirstAirDate     string   `json:"first_air_date"`
	VoteAverage      float64  `json:"vote_average"`
	VoteCount        int      `json:"vote_count"`
	Popularity       float64  `json:"popularity"`
	GenreIDs         []int    `json:"genre_ids"`
	Adult            bool     `json:"adult"`
	OriginalLanguage string   `json:"original_language"`
	OriginalName     string   `json:"original_name"`
	OriginCountry    []string `json:"origin_country"`
}

// FirstAirYear returns the year part of FirstAirDate, or 0 when unknown.
func (s *TVShow) FirstAirYear() int {
	return yearOf(s.FirstAirDate)
}

// Genre is a catalog genre.
type Genre struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

// GenreList is the upstream /genre/*/list envelope.
type GenreList struct {
	Genres []Genre `json:"genres"`
}

// ProductionCompany is a studio credited on a title.
type ProductionCompany struct {
	ID       int64   `json:"id"`
	Name     string  `json:"name"`
	LogoPath *string `json:"logo_path"`
}

// ProductionCountry is a country credited on a title.
type ProductionCountry struct {
	ISO3166_1 string `json:"iso_3166_1"`
	Name      string `json:"name"`
}

// SpokenLanguage is a language spoken in a title.
type SpokenLanguage struct {
	ISO639_1 string `json:"iso_639_1"`
	Name     string `json:"name"`
}

// MovieDetails is the full /movie/{id} record.
type MovieDetails struct {
	Movie
	Runtime             int                 `json:"runtime"`
	Genres              []Genre             `json:"genres"`
	ProductionCompanies []ProductionCompany `json:"production_companies"`
	ProductionCountries []ProductionCountry `json:"production_countries"`
	SpokenLanguages     []SpokenLanguage    `json:"spoken_languages"`
	Status              string              `json:"status"`
	Tagline             string              `json:"tagline"`
	Budget              int64               `json:"budget"`
	Revenue             int64               `json:"revenue"`
}

// Season is one season of a series.
type Season struct {
	ID           int64   `json:"id"`
	Name         string  `json:"name"`
	Overview     string  `json:"overview"`
	PosterPath   *string `json:"poster_path"`
	SeasonNumber int     `json:"season_number"`
	EpisodeCount int     `json:"episode_count"`
	AirDate      string  `json:"air_date"`
}

// Creator is a credited series creator.
type Creator struct {
	ID          int64   `json:"id"`
	Name        string  `json:"name"`
	ProfilePath *string `json:"profile_path"`
}

// Network is a broadcaster or streaming network.
type Network struct {
	ID       int64   `json:"id"`
	Name     string  `json:"name"`
	LogoPath *string `json:"logo_path"`
}

// TVShowDetails is the full /tv/{id} record.
type TVShowDetails struct {
	TVShow
	EpisodeRunTime      []int               `json:"episode_run_time"`
	Genres              []Genre             `json:"genres"`
	ProductionCompanies []ProductionCompany `json:"production_companies"`
	ProductionCountries []ProductionCountry `json:"production_countries"`
	SpokenLanguages     []SpokenLanguage    `json:"spoken_languages"`
	Status              string              `json:"status"`
	Tagline             string              `json:"tagline"`
	NumberOfEpisodes    int                 `json:"number_of_episodes"`
	NumberOfSeasons     int                 `json:"number_of_seasons"`
	Seasons             []Season            `json:"seasons"`
	CreatedBy           []Creator           `json:"created_by"`
	Networks            []Network           `json:"networks"`
}

// CastMember is an actor credit.
type CastMember struct {
	ID          int64   `json:"id"`
	Name        string  `json:"name"`
	Character   string  `json:"character"`
	ProfilePath *string `json:"profile_path"`
	Order       int     `json:"order"`
}

// CrewMember is a crew credit.
type CrewMember struct {
	ID          int64   `json:"id"`
	Name        string  `json:"name"`
	Job         string  `json:"job"`
	Department  string  `json:"department"`
	ProfilePath *string `json:"profile_path"`
}

// Credits holds cast and crew for a title.
type Credits struct {
	ID   int64        `json:"id"`
	Cast []CastMember `json:"cast"`
	Crew []CrewMember `json:"crew"`
}

// Directors returns crew members whose job is Director, in credit order.
func (c *Credits) Directors() []CrewMember {
	if c == nil {
		return nil
	}
	var out []CrewMember
	for _, m := range c.Crew {
		if m.Job == "Director" {
			out = append(out, m)
		}
	}
	return out
}

// TopCast returns at most n cast members.
func (c *Credits) TopCast(n int) []CastMember {
	if c == nil {
		return nil
	}
	if len(c.Cast) <= n {
		return c.Cast
	}
	return c.Cast[:n]
}

// PagedResponse is the upstream list envelope.
type PagedResponse[T any] struct {
	Page         int `json:"page"`
	Results      []T `json:"results"`
	TotalPages   int `json:"total_pages"`
	TotalResults int `json:"total_results"`
}

// EmptyPage returns the default page served when a listing fails:
// page 1, no results, zero totals.
func EmptyPage[T any]() *PagedResponse[T] {
	return &PagedResponse[T]{Page: 1, Results: []T{}, TotalPages: 0, TotalResults: 0}
}

// MoviePage is a page of movies.
type MoviePage = PagedResponse[Movie]

// TVShowPage is a page of series.
type TVShowPage = PagedResponse[TVShow]

func yearOf(date string) int {
	y, _, _ := strings.Cut(date, "-")
	n, err := strconv.Atoi(y)
	if err != nil {
		return 0
	}
	return n
}
