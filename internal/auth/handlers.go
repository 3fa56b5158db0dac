// Marquee - Movie and TV Discovery Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/marquee

package auth

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/goccy/go-json"

	"github.com/tomtom215/marquee/internal/logging"
	"github.com/tomtom215/marquee/internal/metrics"
	"github.com/tomtom215/marquee/internal/models"
)

// Handlers serves the /auth routes. flow is nil when sign-in is disabled;
// /auth/me still works and the other routes answer 404.
type Handlers struct {
	flow          *Flow
	sessions      SessionStore
	profiles      *ProfileManager
	sessionCookie string
	sessionMaxAge time.Duration
	secure        bool
}

// NewHandlers wires the auth routes.
func NewHandlers(flow *Flow, sessions SessionStore, profiles *ProfileManager, sessionCookie string, sessionMaxAge time.Duration, secure bool) *Handlers {
	if sessionMaxAge <= 0 {
		sessionMaxAge = 24 * time.Hour
	}
	return &Handlers{
		flow:          flow,
		sessions:      sessions,
		profiles:      profiles,
		sessionCookie: sessionCookie,
		sessionMaxAge: sessionMaxAge,
		secure:        secure,
	}
}

// SignInEnabled reports whether a provider is configured.
func (h *Handlers) SignInEnabled() bool {
	return h.flow != nil
}

// MeResponse is the /auth/me payload.
type MeResponse struct {
	Profile
	SignInEnabled bool `json:"signInEnabled"`
}

// Me returns the resolved profile of the caller.
func (h *Handlers) Me(w http.ResponseWriter, r *http.Request) {
	p := ProfileFromContext(r.Context())
	if p == nil {
		writeJSON(w, http.StatusUnauthorized, models.NewError("UNAUTHORIZED", "No profile"))
		return
	}
	writeJSON(w, http.StatusOK, models.NewSuccess(MeResponse{Profile: *p, SignInEnabled: h.SignInEnabled()}))
}

// Login redirects to the provider. ?redirect= names a local path to return to.
func (h *Handlers) Login(w http.ResponseWriter, r *http.Request) {
	if h.flow == nil {
		http.NotFound(w, r)
		return
	}

	authURL, err := h.flow.AuthorizationURL(r.Context(), SafeRedirect(r.URL.Query().Get("redirect")))
	if err != nil {
		logging.Ctx(r.Context()).Error().Err(err).Msg("Failed to start sign-in")
		http.Error(w, "Failed to start sign-in", http.StatusInternalServerError)
		return
	}
	http.Redirect(w, r, authURL, http.StatusFound)
}

// Callback completes the code flow and starts a session.
func (h *Handlers) Callback(w http.ResponseWriter, r *http.Request) {
	if h.flow == nil {
		http.NotFound(w, r)
		return
	}
	ctx := r.Context()
	q := r.URL.Query()

	if e := q.Get("error"); e != "" {
		metrics.RecordAuthLogin("provider_error")
		logging.Ctx(ctx).Warn().
			Str("error", logging.SanitizeLogValue(e)).
			Str("description", logging.SanitizeLogValue(q.Get("error_description"))).
			Msg("Provider returned an error")
		http.Error(w, "Sign-in was not completed", http.StatusBadRequest)
		return
	}

	code, state := q.Get("code"), q.Get("state")
	if code == "" || state == "" {
		metrics.RecordAuthLogin("invalid_state")
		http.Error(w, "Missing code or state", http.StatusBadRequest)
		return
	}

	id, err := h.flow.HandleCallback(ctx, code, state)
	if err != nil {
		if errors.Is(err, ErrInvalidState) {
			metrics.RecordAuthLogin("invalid_state")
			http.Error(w, "Invalid or expired sign-in request", http.StatusBadRequest)
			return
		}
		metrics.RecordAuthLogin("exchange_failed")
		logging.Ctx(ctx).Error().Err(err).Msg("Sign-in callback failed")
		http.Error(w, "Sign-in failed", http.StatusBadGateway)
		return
	}

	session, err := NewSession(id, h.sessionMaxAge)
	if err == nil {
		err = h.sessions.Create(ctx, session)
	}
	if err != nil {
		metrics.RecordAuthLogin("session_error")
		logging.Ctx(ctx).Error().Err(err).Msg("Failed to create session")
		http.Error(w, "Failed to create session", http.StatusInternalServerError)
		return
	}
	metrics.RecordAuthLogin("success")

	http.SetCookie(w, &http.Cookie{
		Name:     h.sessionCookie,
		Value:    session.ID,
		Path:     "/",
		MaxAge:   int(h.sessionMaxAge.Seconds()),
		HttpOnly: true,
		Secure:   h.secure,
		SameSite: http.SameSiteLaxMode,
	})

	target := id.PostLoginRedirect
	if target == "" {
		target = "/"
	}
	http.Redirect(w, r, target, http.StatusFound)
}

// Logout ends the local session and, when supported, the provider session.
// Without a session it just returns home.
func (h *Handlers) Logout(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var idToken string
	if session, err := h.profiles.SessionFromRequest(r); err == nil {
		idToken = session.IDToken
		if err := h.sessions.Delete(ctx, session.ID); err != nil {
			logging.Ctx(ctx).Warn().Err(err).Msg("Failed to delete session")
		}
	}

	http.SetCookie(w, &http.Cookie{
		Name:     h.sessionCookie,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   h.secure,
		SameSite: http.SameSiteLaxMode,
	})

	target := "/"
	if h.flow != nil {
		if u := h.flow.LogoutURL(idToken); u != "" && idToken != "" {
			target = u
		} else if p := h.flow.PostLogoutRedirect(); p != "" {
			target = p
		}
	}
	http.Redirect(w, r, target, http.StatusFound)
}

// SafeRedirect returns target when it is a local absolute path, "/" otherwise.
func SafeRedirect(target string) string {
	if !strings.HasPrefix(target, "/") || strings.HasPrefix(target, "//") || strings.Contains(target, `\`) {
		return "/"
	}
	return target
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logging.Error().Err(err).Msg("Failed to encode JSON response")
	}
}

// CleanupService purges expired sessions and states under the supervisor.
type CleanupService struct {
	sessions SessionStore
	states   StateStore
	interval time.Duration
}

// NewCleanupService creates the purge service. Either store may be nil.
func NewCleanupService(sessions SessionStore, states StateStore, interval time.Duration) *CleanupService {
	if interval <= 0 {
		interval = 15 * time.Minute
	}
	return &CleanupService{sessions: sessions, states: states, interval: interval}
}

// Serve implements suture.Service.
func (s *CleanupService) Serve(ctx context.Context) error {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			s.RunOnce(ctx)
		}
	}
}

// RunOnce performs one purge pass.
func (s *CleanupService) RunOnce(ctx context.Context) {
	if s.sessions != nil {
		if n, err := s.sessions.CleanupExpired(ctx); err != nil {
			logging.Warn().Err(err).Msg("Session cleanup failed")
		} else if n > 0 {
			logging.Debug().Int("count", n).Msg("Removed expired sessions")
		}
	}
	if s.states != nil {
		if n, err := s.states.CleanupExpired(ctx); err != nil {
			logging.Warn().Err(err).Msg("State cleanup failed")
		} else if n > 0 {
			logging.Debug().Int("count", n).Msg("Removed expired sign-in states")
		}
	}
}

// String implements fmt.Stringer for supervisor logging.
func (s *CleanupService) String() string {
	return "auth-cleanup"
}
