// Marquee - Movie and TV Discovery Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/marquee

package api

import (
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/goccy/go-json"

	"github.com/tomtom215/marquee/internal/logging"
	"github.com/tomtom215/marquee/internal/tmdb"
	"github.com/tomtom215/marquee/internal/validation"
)

// Upstream names of the discover year filter.
const (
	movieYearKey = "primary_release_year"
	tvYearKey    = "first_air_date_year"
)

// RequireAPIKey answers 500 {"error":"API key not configured"} before any
// parameter handling when no TMDB key is set.
func (h *Handler) RequireAPIKey(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !h.apiKeyConfigured() {
			logging.Ctx(r.Context()).Error().Msg("TMDB API key is not configured")
			respondProxyError(w, http.StatusInternalServerError, "API key not configured")
			return
		}
		next(w, r)
	}
}

// proxy fetches path and relays the body, or the fixed error body on failure.
func (h *Handler) proxy(w http.ResponseWriter, r *http.Request, path string, params url.Values, failMsg string) {
	raw, err := h.fetcher.Fetch(r.Context(), path, params)
	if err != nil {
		respondUpstreamError(r.Context(), w, failMsg, err)
		return
	}
	respondRaw(w, raw)
}

// discoverValues encodes validated discover parameters. Defaults are always
// sent; filters only when present.
func discoverValues(req *validation.DiscoverRequest, yearKey string) url.Values {
	v := url.Values{}
	v.Set("page", strconv.Itoa(req.Page))
	sortBy := req.SortBy
	if sortBy == "" {
		sortBy = tmdb.DefaultSortBy
	}
	v.Set("sort_by", sortBy)
	if req.WithGenres != "" {
		v.Set("with_genres", req.WithGenres)
	}
	if req.Year != 0 {
		v.Set(yearKey, strconv.Itoa(req.Year))
	}
	if req.VoteAverageGte != nil {
		v.Set("vote_average.gte", strconv.FormatFloat(*req.VoteAverageGte, 'f', -1, 64))
	}
	if req.VoteAverageLte != nil {
		v.Set("vote_average.lte", strconv.FormatFloat(*req.VoteAverageLte, 'f', -1, 64))
	}
	return v
}

func (h *Handler) discover(path, yearKey, failMsg string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		req, verr := validation.ParseDiscover(r.URL.Query(), yearKey)
		if verr != nil {
			respondProxyError(w, http.StatusBadRequest, verr.ToAPIError().Message)
			return
		}
		h.proxy(w, r, path, discoverValues(req, yearKey), failMsg)
	}
}

func (h *Handler) search(path, failMsg string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		if strings.TrimSpace(q.Get("query")) == "" {
			respondProxyError(w, http.StatusBadRequest, "Query parameter is required")
			return
		}
		req, verr := validation.ParseSearch(q)
		if verr != nil {
			respondProxyError(w, http.StatusBadRequest, verr.ToAPIError().Message)
			return
		}
		logging.Ctx(r.Context()).Debug().Str("query", logging.SanitizeLogValue(req.Query)).Msg("Searching catalog")
		h.proxy(w, r, path, url.Values{
			"query": {req.Query},
			"page":  {strconv.Itoa(req.Page)},
		}, failMsg)
	}
}

// genres relays only the genres array of a genre list.
func (h *Handler) genres(path, failMsg string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		raw, err := h.fetcher.Fetch(r.Context(), path, nil)
		if err != nil {
			respondUpstreamError(r.Context(), w, failMsg, err)
			return
		}
		var list struct {
			Genres json.RawMessage `json:"genres"`
		}
		if err := json.Unmarshal(raw, &list); err != nil {
			respondUpstreamError(r.Context(), w, failMsg, fmt.Errorf("failed to decode %s: %w", path, err))
			return
		}
		if len(list.Genres) == 0 || string(list.Genres) == "null" {
			list.Genres = json.RawMessage("[]")
		}
		respondRaw(w, list.Genres)
	}
}

// byID proxies a path built from the {id} segment, e.g. "movie/%d/credits".
func (h *Handler) byID(format, failMsg string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := idParam(r)
		if !ok {
			respondProxyError(w, http.StatusBadRequest, "Invalid id")
			return
		}
		h.proxy(w, r, fmt.Sprintf(format, id), nil, failMsg)
	}
}

// listing proxies a paged list, forwarding ?page.
func (h *Handler) listing(path, failMsg string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		page, verr := validation.ParsePage(r.URL.Query())
		if verr != nil {
			respondProxyError(w, http.StatusBadRequest, verr.ToAPIError().Message)
			return
		}
		h.proxy(w, r, path, url.Values{"page": {strconv.Itoa(page)}}, failMsg)
	}
}

// trending proxies trending/{media}/{window}. Anything but "day" means week.
func (h *Handler) trending(media, failMsg string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		window := tmdb.WindowWeek
		if r.URL.Query().Get("window") == tmdb.WindowDay {
			window = tmdb.WindowDay
		}
		h.proxy(w, r, "trending/"+media+"/"+window, nil, failMsg)
	}
}
