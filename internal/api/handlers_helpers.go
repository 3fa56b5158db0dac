// Marquee - Movie and TV Discovery Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/marquee

package api

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/goccy/go-json"

	"github.com/tomtom215/marquee/internal/logging"
	"github.com/tomtom215/marquee/internal/models"
	"github.com/tomtom215/marquee/internal/tmdb"
	"github.com/tomtom215/marquee/internal/validation"
)

// maxRequestBodySize bounds JSON bodies accepted by write routes.
const maxRequestBodySize = 64 * 1024

// respondJSON sends an envelope response with an ETag.
func respondJSON(w http.ResponseWriter, status int, response *models.APIResponse) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Cache-Control", "no-store")

	data, err := json.Marshal(response)
	if err != nil {
		logging.Error().Err(err).Msg("Failed to marshal JSON response")
		w.WriteHeader(http.StatusInternalServerError)
		return
	}

	w.Header().Set("ETag", generateETag(data))
	w.WriteHeader(status)
	if _, err := w.Write(data); err != nil {
		logging.Error().Err(err).Msg("Failed to write JSON response")
	}
}

// generateETag creates a simple ETag from data using FNV-1a hash
func generateETag(data []byte) string {
	hash := uint32(2166136261)
	for _, b := range data {
		hash ^= uint32(b)
		hash *= 16777619
	}
	return `"` + strconv.FormatUint(uint64(hash), 16) + `"`
}

// respondError sends an error envelope and logs err, if any.
func respondError(ctx context.Context, w http.ResponseWriter, status int, code, message string, err error) {
	if err != nil {
		logging.Ctx(ctx).Error().
			Str("code", code).
			Str("error", logging.SanitizeLogValue(err.Error())).
			Msg("API error")
	}
	respondJSON(w, status, models.NewError(code, message))
}

// respondValidationError sends a VALIDATION_ERROR envelope.
func respondValidationError(w http.ResponseWriter, verr *validation.RequestValidationError) {
	apiErr := verr.ToAPIError()
	resp := models.NewError(apiErr.Code, apiErr.Message)
	resp.Error.Details = apiErr.Details
	respondJSON(w, http.StatusBadRequest, resp)
}

// respondRaw relays an upstream body unchanged.
func respondRaw(w http.ResponseWriter, body []byte) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(body); err != nil {
		logging.Debug().Err(err).Msg("Failed to write proxy response")
	}
}

// respondProxyError writes the fixed {"error": msg} body used by proxy routes.
func respondProxyError(w http.ResponseWriter, status int, msg string) {
	data, err := json.Marshal(models.ProxyError{Error: msg})
	if err != nil {
		w.WriteHeader(http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(data)
}

// respondUpstreamError maps a fetch failure to the proxy's 500 body. A
// missing key gets its own message; everything else gets msg.
func respondUpstreamError(ctx context.Context, w http.ResponseWriter, msg string, err error) {
	if errors.Is(err, tmdb.ErrAPIKeyMissing) {
		logging.Ctx(ctx).Error().Msg("TMDB API key is not configured")
		respondProxyError(w, http.StatusInternalServerError, "API key not configured")
		return
	}
	if errors.Is(err, context.Canceled) {
		logging.Ctx(ctx).Debug().Msg("Client went away before upstream answered")
	} else {
		logging.Ctx(ctx).Error().Err(err).Msg(msg)
	}
	respondProxyError(w, http.StatusInternalServerError, msg)
}

// idParam reads the positive integer {id} route segment.
func idParam(r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}

// decodeJSONBody decodes a bounded JSON request body into v.
func decodeJSONBody(w http.ResponseWriter, r *http.Request, v interface{}) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxRequestBodySize)
	return json.NewDecoder(r.Body).Decode(v)
}
