// Marquee - Movie and TV Discovery Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/marquee

package validation

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"
)

// MaxPage is the deepest page the upstream will serve.
const MaxPage = 500

// DiscoverRequest holds discover query parameters. YearKey selects the
// upstream name of the year filter (primary_release_year or first_air_date_year).
type DiscoverRequest struct {
	Page           int      `query:"page" validate:"min=1,max=500"`
	SortBy         string   `query:"sort_by" validate:"omitempty,sortkey"`
	WithGenres     string   `query:"with_genres" validate:"omitempty,genre_ids"`
	Year           int      `query:"year" validate:"omitempty,min=1874,max=2100"`
	VoteAverageGte *float64 `query:"vote_average.gte" validate:"omitempty,gte=0,lte=10"`
	VoteAverageLte *float64 `query:"vote_average.lte" validate:"omitempty,gte=0,lte=10"`
}

// SearchRequest holds free-text search parameters.
type SearchRequest struct {
	Query string `query:"query" validate:"required,max=500"`
	Page  int    `query:"page" validate:"min=1,max=500"`
}

// PageRequest holds the page of a plain listing.
type PageRequest struct {
	Page int `query:"page" validate:"min=1,max=500"`
}

// WatchlistItemRequest is the minimum a watchlist add must carry.
type WatchlistItemRequest struct {
	ID    int64  `json:"id" validate:"gt=0"`
	Title string `json:"title" validate:"required,max=500"`
}

func parseError(field, kind string, value string) *RequestValidationError {
	return &RequestValidationError{fields: []FieldError{{
		Field:   field,
		Tag:     kind,
		Value:   value,
		Message: fmt.Sprintf("%s must be %s", field, kind),
	}}}
}

// parsePage reads page, defaulting to 1 when absent.
func parsePage(q url.Values) (int, *RequestValidationError) {
	raw := strings.TrimSpace(q.Get("page"))
	if raw == "" {
		return 1, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, parseError("page", "a number", raw)
	}
	return n, nil
}

func parseFloat(q url.Values, key string) (*float64, *RequestValidationError) {
	raw := strings.TrimSpace(q.Get(key))
	if raw == "" {
		return nil, nil
	}
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return nil, parseError(key, "a number", raw)
	}
	return &f, nil
}

// ParseDiscover reads and validates discover parameters. yearKey is the query
// parameter holding the year.
func ParseDiscover(q url.Values, yearKey string) (*DiscoverRequest, *RequestValidationError) {
	page, verr := parsePage(q)
	if verr != nil {
		return nil, verr
	}
	req := &DiscoverRequest{
		Page:       page,
		SortBy:     strings.TrimSpace(q.Get("sort_by")),
		WithGenres: strings.TrimSpace(q.Get("with_genres")),
	}
	if raw := strings.TrimSpace(q.Get(yearKey)); raw != "" {
		y, err := strconv.Atoi(raw)
		if err != nil {
			return nil, parseError(yearKey, "a number", raw)
		}
		req.Year = y
	}
	if req.VoteAverageGte, verr = parseFloat(q, "vote_average.gte"); verr != nil {
		return nil, verr
	}
	if req.VoteAverageLte, verr = parseFloat(q, "vote_average.lte"); verr != nil {
		return nil, verr
	}
	if verr := ValidateStruct(req); verr != nil {
		return nil, verr
	}
	return req, nil
}

// ParseSearch reads and validates search parameters. The caller is expected
// to have rejected a missing query already.
func ParseSearch(q url.Values) (*SearchRequest, *RequestValidationError) {
	page, verr := parsePage(q)
	if verr != nil {
		return nil, verr
	}
	req := &SearchRequest{Query: strings.TrimSpace(q.Get("query")), Page: page}
	if verr := ValidateStruct(req); verr != nil {
		return nil, verr
	}
	return req, nil
}

// ParsePage reads and validates a plain page parameter.
func ParsePage(q url.Values) (int, *RequestValidationError) {
	page, verr := parsePage(q)
	if verr != nil {
		return 0, verr
	}
	if verr := ValidateStruct(&PageRequest{Page: page}); verr != nil {
		return 0, verr
	}
	return page, nil
}
