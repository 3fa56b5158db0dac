// Marquee - Movie and TV Discovery Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/marquee

package web

import (
	"context"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/sourcegraph/conc"

	"github.com/tomtom215/marquee/internal/auth"
	"github.com/tomtom215/marquee/internal/logging"
	"github.com/tomtom215/marquee/internal/models"
	"github.com/tomtom215/marquee/internal/tmdb"
	"github.com/tomtom215/marquee/internal/watchlist"
)

// heroPool is how many leading trending titles the hero is drawn from.
const heroPool = 10

// fetchAll runs every fetch concurrently and waits for all of them. A
// panicking fetch is logged and leaves its widget at the zero value.
func fetchAll(ctx context.Context, fetches ...func()) {
	var wg conc.WaitGroup
	for _, f := range fetches {
		wg.Go(f)
	}
	if rec := wg.WaitAndRecover(); rec != nil {
		logging.Ctx(ctx).Error().Str("panic", rec.String()).Msg("Widget fetch panicked")
	}
}

// pickHero draws a random card from the first heroPool cards.
func (s *Site) pickHero(cards []Card) *Card {
	n := min(len(cards), heroPool)
	if n == 0 {
		return nil
	}
	hero := cards[s.pick(n)]
	return &hero
}

// homeContent is the payload of / and /tv.
type homeContent struct {
	Hero *Card
	Rows []Row
}

// Home renders the movie landing page.
func (s *Site) Home(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	var trending, popular, topRated, nowPlaying, upcoming *models.MoviePage

	fetchAll(ctx,
		func() { trending = s.catalog.Trending(ctx, tmdb.WindowWeek) },
		func() { popular = s.catalog.Popular(ctx, 1) },
		func() { topRated = s.catalog.TopRated(ctx, 1) },
		func() { nowPlaying = s.catalog.NowPlaying(ctx, 1) },
		func() { upcoming = s.catalog.Upcoming(ctx, 1) },
	)

	trendingCards := s.images.movieCards(results(trending), 0)
	s.render(w, r, http.StatusOK, "home.html", "Home", "home", homeContent{
		Hero: s.pickHero(trendingCards),
		Rows: []Row{
			newRow("Trending Now", trendingCards),
			newRow("Popular", s.images.movieCards(results(popular), 0)),
			newRow("Top Rated", s.images.movieCards(results(topRated), 0)),
			newRow("Now Playing", s.images.movieCards(results(nowPlaying), 0)),
			newRow("Coming Soon", s.images.movieCards(results(upcoming), 0)),
		},
	})
}

// TV renders the series landing page.
func (s *Site) TV(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	var trending, popular, topRated, onTheAir, airingToday *models.TVShowPage

	fetchAll(ctx,
		func() { trending = s.catalog.TrendingTV(ctx, tmdb.WindowWeek) },
		func() { popular = s.catalog.PopularTV(ctx, 1) },
		func() { topRated = s.catalog.TopRatedTV(ctx, 1) },
		func() { onTheAir = s.catalog.OnTheAir(ctx, 1) },
		func() { airingToday = s.catalog.AiringToday(ctx, 1) },
	)

	trendingCards := s.images.tvCards(results(trending), 0)
	s.render(w, r, http.StatusOK, "tv.html", "TV Shows", "tv", homeContent{
		Hero: s.pickHero(trendingCards),
		Rows: []Row{
			newRow("Trending", trendingCards),
			newRow("Popular", s.images.tvCards(results(popular), 0)),
			newRow("Top Rated", s.images.tvCards(results(topRated), 0)),
			newRow("On The Air", s.images.tvCards(results(onTheAir), 0)),
			newRow("Airing Today", s.images.tvCards(results(airingToday), 0)),
		},
	})
}

// results tolerates a nil page left behind by a panicked fetch.
func results[T any](p *models.PagedResponse[T]) []T {
	if p == nil {
		return nil
	}
	return p.Results
}

// GenreOption is one genre checkbox.
type GenreOption struct {
	ID      int
	Name    string
	Checked bool
}

// YearOption is one entry of the year select.
type YearOption struct {
	Year     int
	Selected bool
}

// browseContent is the /movies payload.
type browseContent struct {
	Filters      FilterState
	Genres       []GenreOption
	Years        []YearOption
	SortOptions  []Option
	Results      Row
	TotalResults int
	Pagination   Pagination
}

// Movies renders the browse page: discover with filters, or search when q is set.
func (s *Site) Movies(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	f := ParseFilters(r.URL.Query())

	var page *models.MoviePage
	var genres []models.Genre
	fetchAll(ctx,
		func() {
			if f.Searching() {
				page = s.catalog.Search(ctx, f.Query, f.Page)
			} else {
				page = s.catalog.Discover(ctx, f.DiscoverParams())
			}
		},
		func() { genres = s.catalog.Genres(ctx) },
	)
	if page == nil {
		page = models.EmptyPage[models.Movie]()
	}

	title := "Discover Movies"
	if f.Searching() {
		title = "Search results for “" + f.Query + "”"
	}

	content := browseContent{
		Filters:      f,
		Results:      newRow(title, s.images.movieCards(page.Results, 0)),
		TotalResults: page.TotalResults,
		Pagination:   newPagination(f, f.Page, page.TotalPages),
	}
	for _, g := range genres {
		content.Genres = append(content.Genres, GenreOption{ID: g.ID, Name: g.Name, Checked: f.HasGenre(g.ID)})
	}
	for _, y := range YearOptions(s.now()) {
		content.Years = append(content.Years, YearOption{Year: y, Selected: y == f.Year})
	}
	for _, o := range browseSortOptions {
		o.Selected = o.Value == f.SortBy
		content.SortOptions = append(content.SortOptions, o)
	}

	s.render(w, r, http.StatusOK, "movies.html", "Movies", "movies", content)
}

// detailContent is the /movie/{id} and /tv/{id} payload.
type detailContent struct {
	Card      Card
	Tagline   string
	Runtime   string
	Genres    []string
	Status    string
	Cast      []models.CastMember
	Directors []models.CrewMember
	Similar   Row
	InList    bool
	Seasons   int
	Episodes  int
	Available bool
}

// castLimit is how many cast members the detail page shows.
const castLimit = 10

func genreNames(genres []models.Genre) []string {
	names := make([]string, 0, len(genres))
	for _, g := range genres {
		names = append(names, g.Name)
	}
	return names
}

func detailID(r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	return id, err == nil && id > 0
}

// MovieDetail renders a movie with credits, similar titles and watchlist state.
func (s *Site) MovieDetail(w http.ResponseWriter, r *http.Request) {
	id, ok := detailID(r)
	if !ok {
		s.notFound(w, r, "That movie does not exist.")
		return
	}
	ctx := r.Context()
	profile := auth.ProfileID(r)

	var details *models.MovieDetails
	var credits *models.Credits
	var similar *models.MoviePage
	var inList bool
	fetchAll(ctx,
		func() { details = s.catalog.Details(ctx, id) },
		func() { credits = s.catalog.Credits(ctx, id) },
		func() { similar = s.catalog.Similar(ctx, id) },
		func() {
			var err error
			if inList, err = s.watchlist.Contains(ctx, profile, id); err != nil {
				logging.Ctx(ctx).Warn().Err(err).Msg("Failed to read watchlist")
			}
		},
	)

	content := detailContent{
		Cast:      credits.TopCast(castLimit),
		Directors: credits.Directors(),
		Similar:   newRow("More Like This", s.images.movieCards(results(similar), 0)),
		InList:    inList,
	}
	title := "Movie"
	if details != nil {
		content.Available = true
		content.Card = s.images.movieCard(details.Movie)
		content.Tagline = details.Tagline
		content.Runtime = FormatRuntime(details.Runtime)
		content.Genres = genreNames(details.Genres)
		content.Status = details.Status
		title = details.Title
	}

	s.render(w, r, http.StatusOK, "movie.html", title, "movies", content)
}

// ShowDetail renders a series with credits and similar titles.
func (s *Site) ShowDetail(w http.ResponseWriter, r *http.Request) {
	id, ok := detailID(r)
	if !ok {
		s.notFound(w, r, "That show does not exist.")
		return
	}
	ctx := r.Context()

	var details *models.TVShowDetails
	var credits *models.Credits
	var similar *models.TVShowPage
	fetchAll(ctx,
		func() { details = s.catalog.TVDetails(ctx, id) },
		func() { credits = s.catalog.TVCredits(ctx, id) },
		func() { similar = s.catalog.SimilarTV(ctx, id) },
	)

	content := detailContent{
		Cast:    credits.TopCast(castLimit),
		Similar: newRow("More Like This", s.images.tvCards(results(similar), 0)),
	}
	title := "TV Show"
	if details != nil {
		content.Available = true
		content.Card = s.images.tvCard(details.TVShow)
		content.Tagline = details.Tagline
		if len(details.EpisodeRunTime) > 0 {
			content.Runtime = FormatRuntime(details.EpisodeRunTime[0])
		}
		content.Genres = genreNames(details.Genres)
		content.Status = details.Status
		content.Seasons = details.NumberOfSeasons
		content.Episodes = details.NumberOfEpisodes
		for _, c := range details.CreatedBy {
			content.Directors = append(content.Directors, models.CrewMember{ID: c.ID, Name: c.Name, Job: "Creator"})
		}
		title = details.Name
	}

	s.render(w, r, http.StatusOK, "show.html", title, "tv", content)
}

// myListContent is the /my-list payload.
type myListContent struct {
	Entries     []listEntry
	Count       int
	Sort        string
	SortOptions []Option
	State       WidgetState
}

// listEntry is one saved movie with its card.
type listEntry struct {
	Card    Card
	AddedAt string
}

// MyList renders the caller's watchlist in ?sort order.
func (s *Site) MyList(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	by := r.URL.Query().Get("sort")
	if !watchlist.ValidSort(by) {
		by = watchlist.SortRecent
	}

	entries, err := s.watchlist.List(ctx, auth.ProfileID(r))
	if err != nil {
		logging.Ctx(ctx).Error().Err(err).Msg("Failed to load watchlist")
		entries = nil
	}
	entries = watchlist.Sort(entries, by)

	content := myListContent{Count: len(entries), Sort: by, State: WidgetLoaded}
	if len(entries) == 0 {
		content.State = WidgetEmpty
	}
	for _, e := range entries {
		content.Entries = append(content.Entries, listEntry{
			Card:    s.images.movieCard(e.Movie),
			AddedAt: e.AddedAt.Format("Jan 2, 2006"),
		})
	}
	for _, o := range watchlist.SortOptions {
		content.SortOptions = append(content.SortOptions, Option{Value: o.Value, Label: o.Label, Selected: o.Value == by})
	}

	s.render(w, r, http.StatusOK, "mylist.html", "My List", "my-list", content)
}

// Dashboard widget sizes.
const (
	recentlyAddedLimit   = 5
	nowPlayingLimit      = 5
	recommendationsLimit = 3
)

// dashboardContent is the /dashboard payload.
type dashboardContent struct {
	Greeting        string
	WatchlistCount  int
	RecentlyAdded   Row
	NowPlaying      Row
	Recommendations Row
}

// Dashboard renders the greeting and summary widgets.
func (s *Site) Dashboard(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	profile := auth.ProfileID(r)

	var entries []models.WatchlistEntry
	var nowPlaying, popular *models.MoviePage
	fetchAll(ctx,
		func() {
			var err error
			if entries, err = s.watchlist.List(ctx, profile); err != nil {
				logging.Ctx(ctx).Warn().Err(err).Msg("Failed to load watchlist")
			}
		},
		func() { nowPlaying = s.catalog.NowPlaying(ctx, 1) },
		func() { popular = s.catalog.Popular(ctx, 1) },
	)

	recent := make([]models.Movie, 0, recentlyAddedLimit)
	for _, e := range watchlist.Sort(entries, watchlist.SortRecent) {
		if len(recent) == recentlyAddedLimit {
			break
		}
		recent = append(recent, e.Movie)
	}

	s.render(w, r, http.StatusOK, "dashboard.html", "Dashboard", "dashboard", dashboardContent{
		Greeting:        Greeting(s.now().Hour()),
		WatchlistCount:  len(entries),
		RecentlyAdded:   newRow("Recently Added", s.images.movieCards(recent, 0)),
		NowPlaying:      newRow("Now Playing", s.images.movieCards(results(nowPlaying), nowPlayingLimit)),
		Recommendations: newRow("Recommended for You", s.images.movieCards(results(popular), recommendationsLimit)),
	})
}

// settingsContent is the /settings payload.
type settingsContent struct {
	Profile   *auth.Profile
	SignedIn  bool
	LoginURL  string
	LogoutURL string
}

// Settings renders the profile card.
func (s *Site) Settings(w http.ResponseWriter, r *http.Request) {
	p := auth.ProfileFromContext(r.Context())
	content := settingsContent{
		Profile:   p,
		SignedIn:  p != nil && !p.Anonymous,
		LoginURL:  "/auth/login?redirect=%2Fsettings",
		LogoutURL: "/auth/logout",
	}
	s.render(w, r, http.StatusOK, "settings.html", "Settings", "settings", content)
}
