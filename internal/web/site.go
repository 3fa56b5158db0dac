// Marquee - Movie and TV Discovery Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/marquee

package web

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"io/fs"
	"math/rand/v2"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/tomtom215/marquee/internal/auth"
	"github.com/tomtom215/marquee/internal/logging"
	"github.com/tomtom215/marquee/internal/tmdb"
	"github.com/tomtom215/marquee/internal/watchlist"
)

//go:embed templates/*.html static/*
var assets embed.FS

// pageNames are the templates under templates/ that render a full page.
var pageNames = []string{
	"home.html",
	"tv.html",
	"movies.html",
	"movie.html",
	"show.html",
	"mylist.html",
	"dashboard.html",
	"settings.html",
	"error.html",
}

// Config configures the presentation layer.
type Config struct {
	Catalog       *tmdb.Accessor
	Watchlist     *watchlist.Store
	ImageBaseURL  string
	SignInEnabled bool
}

// Site renders the server-side pages.
type Site struct {
	catalog       *tmdb.Accessor
	watchlist     *watchlist.Store
	images        images
	signInEnabled bool
	pages         map[string]*template.Template
	static        http.Handler

	now  func() time.Time
	pick func(n int) int
}

// NewSite parses the embedded templates.
func NewSite(cfg Config) (*Site, error) {
	if cfg.Catalog == nil || cfg.Watchlist == nil {
		return nil, fmt.Errorf("web: catalog and watchlist are required")
	}
	base := strings.TrimRight(cfg.ImageBaseURL, "/")
	if base == "" {
		base = "https://image.tmdb.org/t/p"
	}

	pages := make(map[string]*template.Template, len(pageNames))
	for _, name := range pageNames {
		t, err := template.New(name).Funcs(funcMap()).ParseFS(assets,
			"templates/layout.html", "templates/partials.html", "templates/"+name)
		if err != nil {
			return nil, fmt.Errorf("web: parse %s: %w", name, err)
		}
		pages[name] = t
	}

	static, err := fs.Sub(assets, "static")
	if err != nil {
		return nil, fmt.Errorf("web: static assets: %w", err)
	}

	return &Site{
		catalog:       cfg.Catalog,
		watchlist:     cfg.Watchlist,
		images:        images{base: base},
		signInEnabled: cfg.SignInEnabled,
		pages:         pages,
		static:        http.StripPrefix("/static/", http.FileServer(http.FS(static))),
		now:           time.Now,
		pick:          rand.IntN,
	}, nil
}

func funcMap() template.FuncMap {
	return template.FuncMap{
		"runtime": FormatRuntime,
		"rating":  FormatRating,
		"join":    strings.Join,
		"add":     func(a, b int) int { return a + b },
	}
}

// Routes registers the pages on r. The caller installs the profile middleware.
func (s *Site) Routes(r chi.Router) {
	r.Handle("/static/*", s.static)

	r.Get("/", s.Home)
	r.Get("/tv", s.TV)
	r.Get("/movies", s.Movies)
	r.Get("/movie/{id}", s.MovieDetail)
	r.Get("/tv/{id}", s.ShowDetail)
	r.Get("/my-list", s.MyList)
	r.Get("/dashboard", s.Dashboard)
	r.Get("/settings", s.Settings)

	r.Post("/my-list/add", s.AddToList)
	r.Post("/my-list/remove", s.RemoveFromList)
	r.Post("/my-list/clear", s.ClearList)
}

// layout is the data every page template receives.
type layout struct {
	Title          string
	Nav            string
	Path           string
	Profile        *auth.Profile
	SignInEnabled  bool
	WatchlistCount int
	Content        any
}

// render executes page into a buffer so a template failure never leaves a
// half-written response.
func (s *Site) render(w http.ResponseWriter, r *http.Request, status int, page, title, nav string, content any) {
	ctx := r.Context()
	t, ok := s.pages[page]
	if !ok {
		logging.Ctx(ctx).Error().Str("page", page).Msg("Unknown page template")
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	data := layout{
		Title:         title,
		Nav:           nav,
		Path:          r.URL.RequestURI(),
		Profile:       auth.ProfileFromContext(ctx),
		SignInEnabled: s.signInEnabled,
		Content:       content,
	}
	if profile := auth.ProfileID(r); profile != "" {
		n, err := s.watchlist.Count(ctx, profile)
		if err != nil {
			logging.Ctx(ctx).Warn().Err(err).Msg("Failed to count watchlist")
		}
		data.WatchlistCount = n
	}

	var buf bytes.Buffer
	if err := t.ExecuteTemplate(&buf, "layout", data); err != nil {
		logging.Ctx(ctx).Error().Err(err).Str("page", page).Msg("Failed to render page")
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(status)
	if _, err := buf.WriteTo(w); err != nil {
		logging.Ctx(ctx).Debug().Err(err).Msg("Failed to write page")
	}
}

// errorContent is the error.html payload.
type errorContent struct {
	Heading string
	Message string
}

func (s *Site) notFound(w http.ResponseWriter, r *http.Request, message string) {
	s.render(w, r, http.StatusNotFound, "error.html", "Not Found", "", errorContent{
		Heading: "Not found",
		Message: message,
	})
}
