// Marquee - Movie and TV Discovery Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/marquee

package api

import (
	"errors"
	"net/http"

	"github.com/tomtom215/marquee/internal/auth"
	"github.com/tomtom215/marquee/internal/logging"
	"github.com/tomtom215/marquee/internal/models"
	"github.com/tomtom215/marquee/internal/validation"
	"github.com/tomtom215/marquee/internal/watchlist"
)

// WatchlistCount is the /api/watchlist/count payload.
type WatchlistCount struct {
	Count int `json:"count"`
}

// WatchlistMembership is the /api/watchlist/{id} payload.
type WatchlistMembership struct {
	InList bool `json:"inList"`
}

// WatchlistAddResult reports whether an add changed the list.
type WatchlistAddResult struct {
	Added bool `json:"added"`
	Count int  `json:"count"`
}

// profileOf returns the caller's profile id or answers 401.
func profileOf(w http.ResponseWriter, r *http.Request) (string, bool) {
	id := auth.ProfileID(r)
	if id == "" {
		respondJSON(w, http.StatusUnauthorized, models.NewError("UNAUTHORIZED", "No profile"))
		return "", false
	}
	return id, true
}

// WatchlistList returns the caller's entries in ?sort order (default recent).
// Storage failures degrade to an empty list.
func (h *Handler) WatchlistList(w http.ResponseWriter, r *http.Request) {
	profile, ok := profileOf(w, r)
	if !ok {
		return
	}

	by := r.URL.Query().Get("sort")
	if by == "" {
		by = watchlist.SortRecent
	}
	if !watchlist.ValidSort(by) {
		respondJSON(w, http.StatusBadRequest, models.NewError("VALIDATION_ERROR", "sort must be one of recent, title, rating, year"))
		return
	}

	entries, err := h.watchlist.List(r.Context(), profile)
	if err != nil {
		logging.Ctx(r.Context()).Error().Err(err).Msg("Failed to load watchlist")
		entries = []models.WatchlistEntry{}
	}
	respondJSON(w, http.StatusOK, models.NewSuccess(watchlist.Sort(entries, by)))
}

// WatchlistAdd stores the posted movie. It answers 201 when added and 200
// when the id was already present.
func (h *Handler) WatchlistAdd(w http.ResponseWriter, r *http.Request) {
	profile, ok := profileOf(w, r)
	if !ok {
		return
	}

	var movie models.Movie
	if err := decodeJSONBody(w, r, &movie); err != nil {
		respondError(r.Context(), w, http.StatusBadRequest, "INVALID_BODY", "Request body must be a movie object", nil)
		return
	}
	if verr := validation.ValidateStruct(&validation.WatchlistItemRequest{ID: movie.ID, Title: movie.Title}); verr != nil {
		respondValidationError(w, verr)
		return
	}

	added, err := h.watchlist.Add(r.Context(), profile, movie)
	switch {
	case errors.Is(err, watchlist.ErrInvalidEntry):
		respondError(r.Context(), w, http.StatusBadRequest, "VALIDATION_ERROR", "id must be positive", nil)
		return
	case err != nil:
		respondError(r.Context(), w, http.StatusInternalServerError, "STORAGE_ERROR", "Failed to update watchlist", err)
		return
	}

	count, err := h.watchlist.Count(r.Context(), profile)
	if err != nil {
		logging.Ctx(r.Context()).Warn().Err(err).Msg("Failed to count watchlist")
	}
	status := http.StatusOK
	if added {
		status = http.StatusCreated
	}
	respondJSON(w, status, models.NewSuccess(WatchlistAddResult{Added: added, Count: count}))
}

// WatchlistRemove drops {id}. Removing an absent id succeeds.
func (h *Handler) WatchlistRemove(w http.ResponseWriter, r *http.Request) {
	profile, ok := profileOf(w, r)
	if !ok {
		return
	}
	id, ok := idParam(r)
	if !ok {
		respondError(r.Context(), w, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid id", nil)
		return
	}

	if err := h.watchlist.Remove(r.Context(), profile, id); err != nil {
		respondError(r.Context(), w, http.StatusInternalServerError, "STORAGE_ERROR", "Failed to update watchlist", err)
		return
	}
	count, err := h.watchlist.Count(r.Context(), profile)
	if err != nil {
		logging.Ctx(r.Context()).Warn().Err(err).Msg("Failed to count watchlist")
	}
	respondJSON(w, http.StatusOK, models.NewSuccess(WatchlistCount{Count: count}))
}

// WatchlistClear empties the caller's list.
func (h *Handler) WatchlistClear(w http.ResponseWriter, r *http.Request) {
	profile, ok := profileOf(w, r)
	if !ok {
		return
	}
	if err := h.watchlist.Clear(r.Context(), profile); err != nil {
		respondError(r.Context(), w, http.StatusInternalServerError, "STORAGE_ERROR", "Failed to clear watchlist", err)
		return
	}
	respondJSON(w, http.StatusOK, models.NewSuccess(WatchlistCount{Count: 0}))
}

// WatchlistContains reports whether {id} is saved. Storage failures read as false.
func (h *Handler) WatchlistContains(w http.ResponseWriter, r *http.Request) {
	profile, ok := profileOf(w, r)
	if !ok {
		return
	}
	id, ok := idParam(r)
	if !ok {
		respondError(r.Context(), w, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid id", nil)
		return
	}

	in, err := h.watchlist.Contains(r.Context(), profile, id)
	if err != nil {
		logging.Ctx(r.Context()).Error().Err(err).Msg("Failed to read watchlist")
	}
	respondJSON(w, http.StatusOK, models.NewSuccess(WatchlistMembership{InList: in}))
}

// WatchlistCountHandler returns the number of saved entries. Storage failures read as 0.
func (h *Handler) WatchlistCountHandler(w http.ResponseWriter, r *http.Request) {
	profile, ok := profileOf(w, r)
	if !ok {
		return
	}
	count, err := h.watchlist.Count(r.Context(), profile)
	if err != nil {
		logging.Ctx(r.Context()).Error().Err(err).Msg("Failed to count watchlist")
		count = 0
	}
	respondJSON(w, http.StatusOK, models.NewSuccess(WatchlistCount{Count: count}))
}
