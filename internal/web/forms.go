// Marquee - Movie and TV Discovery Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/marquee

package web

import (
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/tomtom215/marquee/internal/auth"
	"github.com/tomtom215/marquee/internal/logging"
	"github.com/tomtom215/marquee/internal/models"
	"github.com/tomtom215/marquee/internal/validation"
)

// maxFormSize bounds watchlist form bodies.
const maxFormSize = 16 * 1024

// backTo returns the local page a form should redirect to: the "redirect"
// field, then the Referer path, then /my-list.
func backTo(r *http.Request) string {
	if target := r.PostFormValue("redirect"); target != "" {
		return auth.SafeRedirect(target)
	}
	if ref, err := url.Parse(r.Referer()); err == nil && ref.Path != "" && (ref.Host == "" || ref.Host == r.Host) {
		return auth.SafeRedirect(ref.RequestURI())
	}
	return "/my-list"
}

func parseForm(w http.ResponseWriter, r *http.Request) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxFormSize)
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Invalid form", http.StatusBadRequest)
		return false
	}
	return true
}

func optionalString(v string) *string {
	v = strings.TrimSpace(v)
	if v == "" {
		return nil
	}
	return &v
}

// movieFromForm reads the hidden fields of an add form.
func movieFromForm(r *http.Request) models.Movie {
	id, _ := strconv.ParseInt(r.PostFormValue("id"), 10, 64)
	rating, _ := strconv.ParseFloat(r.PostFormValue("vote_average"), 64)
	return models.Movie{
		ID:           id,
		Title:        strings.TrimSpace(r.PostFormValue("title")),
		Overview:     r.PostFormValue("overview"),
		PosterPath:   optionalString(r.PostFormValue("poster_path")),
		BackdropPath: optionalString(r.PostFormValue("backdrop_path")),
		ReleaseDate:  strings.TrimSpace(r.PostFormValue("release_date")),
		VoteAverage:  rating,
	}
}

// AddToList handles POST /my-list/add and redirects back.
func (s *Site) AddToList(w http.ResponseWriter, r *http.Request) {
	if !parseForm(w, r) {
		return
	}
	ctx := r.Context()
	movie := movieFromForm(r)
	if verr := validation.ValidateStruct(&validation.WatchlistItemRequest{ID: movie.ID, Title: movie.Title}); verr != nil {
		http.Error(w, verr.Error(), http.StatusBadRequest)
		return
	}

	if _, err := s.watchlist.Add(ctx, auth.ProfileID(r), movie); err != nil {
		logging.Ctx(ctx).Error().Err(err).Int64("movie_id", movie.ID).Msg("Failed to add to watchlist")
		http.Error(w, "Failed to update your list", http.StatusInternalServerError)
		return
	}
	http.Redirect(w, r, backTo(r), http.StatusSeeOther)
}

// RemoveFromList handles POST /my-list/remove and redirects back.
func (s *Site) RemoveFromList(w http.ResponseWriter, r *http.Request) {
	if !parseForm(w, r) {
		return
	}
	ctx := r.Context()
	id, err := strconv.ParseInt(r.PostFormValue("id"), 10, 64)
	if err != nil || id <= 0 {
		http.Error(w, "Invalid id", http.StatusBadRequest)
		return
	}

	if err := s.watchlist.Remove(ctx, auth.ProfileID(r), id); err != nil {
		logging.Ctx(ctx).Error().Err(err).Int64("movie_id", id).Msg("Failed to remove from watchlist")
		http.Error(w, "Failed to update your list", http.StatusInternalServerError)
		return
	}
	http.Redirect(w, r, backTo(r), http.StatusSeeOther)
}

// ClearList handles POST /my-list/clear and redirects back.
func (s *Site) ClearList(w http.ResponseWriter, r *http.Request) {
	if !parseForm(w, r) {
		return
	}
	ctx := r.Context()
	if err := s.watchlist.Clear(ctx, auth.ProfileID(r)); err != nil {
		logging.Ctx(ctx).Error().Err(err).Msg("Failed to clear watchlist")
		http.Error(w, "Failed to clear your list", http.StatusInternalServerError)
		return
	}
	http.Redirect(w, r, backTo(r), http.StatusSeeOther)
}
