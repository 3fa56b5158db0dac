// Marquee - Movie and TV Discovery Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/marquee

package web

import (
	"net/url"
	"strconv"
	"strings"

	"github.com/tomtom215/marquee/internal/models"
	"github.com/tomtom215/marquee/internal/tmdb"
	"github.com/tomtom215/marquee/internal/validation"
)

// WidgetState is the render state of one page section. Sections are fetched
// independently; one that comes back empty or failed shows its empty state
// while the rest of the page renders normally.
type WidgetState string

const (
	WidgetLoaded WidgetState = "loaded"
	WidgetEmpty  WidgetState = "empty"
)

// Media kinds.
const (
	KindMovie = "movie"
	KindTV    = "tv"
)

// Card is one poster tile.
type Card struct {
	ID       int64
	Kind     string
	Title    string
	Year     string
	Rating   string
	Overview string
	Poster   string
	Backdrop string
	Href     string

	// Movie is set for movie cards so watchlist forms can post it.
	Movie *models.Movie
}

// Row is a titled strip of cards.
type Row struct {
	Title string
	State WidgetState
	Cards []Card
}

func newRow(title string, cards []Card) Row {
	state := WidgetLoaded
	if len(cards) == 0 {
		state = WidgetEmpty
	}
	return Row{Title: title, State: state, Cards: cards}
}

// images builds absolute image URLs from upstream paths.
type images struct {
	base string
}

func (im images) url(path *string, size string) string {
	if path == nil || *path == "" {
		return ""
	}
	return im.base + "/" + size + *path
}

func (im images) movieCard(m models.Movie) Card {
	mv := m
	return Card{
		ID:       m.ID,
		Kind:     KindMovie,
		Title:    m.Title,
		Year:     yearOf(m.ReleaseDate),
		Rating:   FormatRating(m.VoteAverage),
		Overview: m.Overview,
		Poster:   im.url(m.PosterPath, "w500"),
		Backdrop: im.url(m.BackdropPath, "original"),
		Href:     "/movie/" + strconv.FormatInt(m.ID, 10),
		Movie:    &mv,
	}
}

func (im images) tvCard(s models.TVShow) Card {
	return Card{
		ID:       s.ID,
		Kind:     KindTV,
		Title:    s.Name,
		Year:     yearOf(s.FirstAirDate),
		Rating:   FormatRating(s.VoteAverage),
		Overview: s.Overview,
		Poster:   im.url(s.PosterPath, "w500"),
		Backdrop: im.url(s.BackdropPath, "original"),
		Href:     "/tv/" + strconv.FormatInt(s.ID, 10),
	}
}

func (im images) movieCards(movies []models.Movie, limit int) []Card {
	if limit > 0 && len(movies) > limit {
		movies = movies[:limit]
	}
	cards := make([]Card, 0, len(movies))
	for _, m := range movies {
		cards = append(cards, im.movieCard(m))
	}
	return cards
}

func (im images) tvCards(shows []models.TVShow, limit int) []Card {
	if limit > 0 && len(shows) > limit {
		shows = shows[:limit]
	}
	cards := make([]Card, 0, len(shows))
	for _, s := range shows {
		cards = append(cards, im.tvCard(s))
	}
	return cards
}

// Option is a select or checkbox choice.
type Option struct {
	Value    string
	Label    string
	Selected bool
}

// browseSortOptions are the discover orders offered on /movies.
var browseSortOptions = []Option{
	{Value: "popularity.desc", Label: "Most Popular"},
	{Value: "popularity.asc", Label: "Least Popular"},
	{Value: "release_date.desc", Label: "Newest First"},
	{Value: "release_date.asc", Label: "Oldest First"},
	{Value: "vote_average.desc", Label: "Highest Rated"},
	{Value: "vote_average.asc", Label: "Lowest Rated"},
	{Value: "title.asc", Label: "Title A-Z"},
	{Value: "title.desc", Label: "Title Z-A"},
	{Value: "revenue.desc", Label: "Highest Revenue"},
}

func validBrowseSort(v string) bool {
	for _, o := range browseSortOptions {
		if o.Value == v {
			return true
		}
	}
	return false
}

// FilterState is the browse page's query, read from and written back to the URL.
type FilterState struct {
	Query     string
	Genres    []int
	Year      int // 0 = any
	RatingMin float64
	RatingMax float64
	SortBy    string
	Page      int
}

// ParseFilters reads browse filters leniently: unparseable or out-of-range
// values fall back to their defaults.
func ParseFilters(q url.Values) FilterState {
	f := FilterState{
		Query:     strings.TrimSpace(q.Get("q")),
		RatingMin: 0,
		RatingMax: 10,
		SortBy:    tmdb.DefaultSortBy,
		Page:      1,
	}
	for _, raw := range q["genre"] {
		for _, part := range strings.Split(raw, ",") {
			if id, err := strconv.Atoi(strings.TrimSpace(part)); err == nil && id > 0 {
				f.Genres = append(f.Genres, id)
			}
		}
	}
	if y, err := strconv.Atoi(q.Get("year")); err == nil && y >= 1874 && y <= 2100 {
		f.Year = y
	}
	if v, err := strconv.ParseFloat(q.Get("min"), 64); err == nil && v >= 0 && v <= 10 {
		f.RatingMin = v
	}
	if v, err := strconv.ParseFloat(q.Get("max"), 64); err == nil && v >= 0 && v <= 10 {
		f.RatingMax = v
	}
	if f.RatingMin > f.RatingMax {
		f.RatingMin, f.RatingMax = f.RatingMax, f.RatingMin
	}
	if s := q.Get("sort"); validBrowseSort(s) {
		f.SortBy = s
	}
	if p, err := strconv.Atoi(q.Get("page")); err == nil && p >= 1 {
		f.Page = min(p, validation.MaxPage)
	}
	return f
}

// Searching reports whether a free-text query replaces the filters.
func (f FilterState) Searching() bool {
	return f.Query != ""
}

// DiscoverParams maps the filters onto a discover query. The rating bounds
// are only sent when they narrow the full 0..10 range.
func (f FilterState) DiscoverParams() tmdb.DiscoverParams {
	p := tmdb.DiscoverParams{
		Page:   f.Page,
		SortBy: f.SortBy,
		Year:   f.Year,
	}
	if len(f.Genres) > 0 {
		ids := make([]string, len(f.Genres))
		for i, g := range f.Genres {
			ids[i] = strconv.Itoa(g)
		}
		p.WithGenres = strings.Join(ids, ",")
	}
	if f.RatingMin > 0 {
		p.VoteAverageGte = f.RatingMin
	}
	if f.RatingMax < 10 {
		p.VoteAverageLte = f.RatingMax
	}
	return p
}

// HasGenre reports whether id is checked.
func (f FilterState) HasGenre(id int) bool {
	for _, g := range f.Genres {
		if g == id {
			return true
		}
	}
	return false
}

// URL returns the /movies link for these filters at page.
func (f FilterState) URL(page int) string {
	q := url.Values{}
	if f.Query != "" {
		q.Set("q", f.Query)
	} else {
		for _, g := range f.Genres {
			q.Add("genre", strconv.Itoa(g))
		}
		if f.Year != 0 {
			q.Set("year", strconv.Itoa(f.Year))
		}
		if f.RatingMin > 0 {
			q.Set("min", strconv.FormatFloat(f.RatingMin, 'f', -1, 64))
		}
		if f.RatingMax < 10 {
			q.Set("max", strconv.FormatFloat(f.RatingMax, 'f', -1, 64))
		}
		if f.SortBy != tmdb.DefaultSortBy {
			q.Set("sort", f.SortBy)
		}
	}
	if page > 1 {
		q.Set("page", strconv.Itoa(page))
	}
	if len(q) == 0 {
		return "/movies"
	}
	return "/movies?" + q.Encode()
}

// PageLink is one pagination entry.
type PageLink struct {
	Number  int
	URL     string
	Current bool
}

// Pagination is the rendered pager.
type Pagination struct {
	Pages   []PageLink
	PrevURL string
	NextURL string
	Page    int
	Total   int
}

func newPagination(f FilterState, page, totalPages int) Pagination {
	total := CapTotalPages(totalPages)
	p := Pagination{Page: page, Total: total}
	for _, n := range PaginationWindow(page, total) {
		p.Pages = append(p.Pages, PageLink{Number: n, URL: f.URL(n), Current: n == page})
	}
	if page > 1 {
		p.PrevURL = f.URL(page - 1)
	}
	if page < total {
		p.NextURL = f.URL(page + 1)
	}
	return p
}
