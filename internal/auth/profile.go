// Marquee - Movie and TV Discovery Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/marquee

package auth

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/tomtom215/marquee/internal/config"
	"github.com/tomtom215/marquee/internal/logging"
	"github.com/tomtom215/marquee/internal/metrics"
)

const (
	// ProfileCookieName carries the anonymous profile token.
	ProfileCookieName = "marquee_profile"

	// ProviderOIDC marks profiles backed by a provider subject.
	ProviderOIDC = "oidc"

	profileIssuer = "marquee"
)

type contextKey string

const profileContextKey contextKey = "profile"

// Profile is the resolved owner of the current request.
type Profile struct {
	ID        string `json:"profileId"`
	Anonymous bool   `json:"anonymous"`
	Username  string `json:"username,omitempty"`
	Email     string `json:"email,omitempty"`
}

// ProfileFromContext returns the request's profile, or nil outside the
// profile middleware.
func ProfileFromContext(ctx context.Context) *Profile {
	p, _ := ctx.Value(profileContextKey).(*Profile)
	return p
}

// ProfileID returns the request's profile id, or "".
func ProfileID(r *http.Request) string {
	if p := ProfileFromContext(r.Context()); p != nil {
		return p.ID
	}
	return ""
}

// ContextWithProfile stores p in ctx, including the logging profile field.
func ContextWithProfile(ctx context.Context, p *Profile) context.Context {
	ctx = context.WithValue(ctx, profileContextKey, p)
	return logging.ContextWithProfileID(ctx, p.ID)
}

// ProfileManager issues and verifies anonymous profile tokens and resolves
// the effective profile of each request.
type ProfileManager struct {
	secret        []byte
	maxAge        time.Duration
	secure        bool
	sessions      SessionStore
	sessionCookie string
	now           func() time.Time
}

// NewProfileManager builds a manager from security settings. sessions may be
// nil when sign-in is disabled. An empty secret is replaced by a random one,
// which invalidates existing profile cookies on restart.
func NewProfileManager(sec *config.SecurityConfig, sessions SessionStore, sessionCookie string) (*ProfileManager, error) {
	secret := []byte(sec.ProfileSecret)
	if len(secret) == 0 {
		secret = make([]byte, 32)
		if _, err := rand.Read(secret); err != nil {
			return nil, fmt.Errorf("generate profile secret: %w", err)
		}
		logging.Warn().Msg("PROFILE_SECRET not set; anonymous profiles will reset on restart")
	}

	maxAge := sec.ProfileMaxAge
	if maxAge <= 0 {
		maxAge = 365 * 24 * time.Hour
	}

	return &ProfileManager{
		secret:        secret,
		maxAge:        maxAge,
		secure:        sec.CookieSecure,
		sessions:      sessions,
		sessionCookie: sessionCookie,
		now:           time.Now,
	}, nil
}

// Issue creates a new anonymous profile and its signed token.
func (m *ProfileManager) Issue() (profileID, token string, err error) {
	profileID = uuid.New().String()
	now := m.now()

	claims := jwt.RegisteredClaims{
		Issuer:    profileIssuer,
		Subject:   profileID,
		IssuedAt:  jwt.NewNumericDate(now),
		NotBefore: jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(m.maxAge)),
	}

	token, err = jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.secret)
	if err != nil {
		return "", "", fmt.Errorf("failed to sign profile token: %w", err)
	}
	return profileID, token, nil
}

// Verify returns the profile id of a valid token. Only HS256 tokens issued
// by this service with a UUID subject are accepted.
func (m *ProfileManager) Verify(token string) (string, error) {
	claims := &jwt.RegisteredClaims{}
	parsed, err := jwt.ParseWithClaims(token, claims,
		func(*jwt.Token) (interface{}, error) { return m.secret, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(profileIssuer),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(m.now),
	)
	if err != nil {
		return "", fmt.Errorf("failed to parse profile token: %w", err)
	}
	if !parsed.Valid {
		return "", errors.New("invalid profile token")
	}
	if _, err := uuid.Parse(claims.Subject); err != nil {
		return "", fmt.Errorf("invalid profile subject: %w", err)
	}
	return claims.Subject, nil
}

// Middleware attaches a Profile to every request. A live session wins;
// otherwise the anonymous cookie is used, and a new one is issued when it is
// missing or invalid.
func (m *ProfileManager) Middleware(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		profile := m.fromSession(r)
		if profile == nil {
			profile = m.anonymous(w, r)
		}
		if profile == nil {
			http.Error(w, "Internal server error", http.StatusInternalServerError)
			return
		}
		next(w, r.WithContext(ContextWithProfile(r.Context(), profile)))
	}
}

// SessionFromRequest returns the live session named by the session cookie.
func (m *ProfileManager) SessionFromRequest(r *http.Request) (*Session, error) {
	if m.sessions == nil {
		return nil, ErrSessionNotFound
	}
	c, err := r.Cookie(m.sessionCookie)
	if err != nil || c.Value == "" {
		return nil, ErrSessionNotFound
	}
	return m.sessions.Get(r.Context(), c.Value)
}

func (m *ProfileManager) fromSession(r *http.Request) *Profile {
	session, err := m.SessionFromRequest(r)
	if err != nil {
		if !errors.Is(err, ErrSessionNotFound) && !errors.Is(err, ErrSessionExpired) {
			logging.Ctx(r.Context()).Warn().Err(err).Msg("Session lookup failed")
		}
		return nil
	}
	return &Profile{
		ID:       session.ProfileID(),
		Username: session.Username,
		Email:    session.Email,
	}
}

func (m *ProfileManager) anonymous(w http.ResponseWriter, r *http.Request) *Profile {
	if c, err := r.Cookie(ProfileCookieName); err == nil && c.Value != "" {
		id, err := m.Verify(c.Value)
		if err == nil {
			return &Profile{ID: id, Anonymous: true}
		}
		logging.Ctx(r.Context()).Debug().Err(err).Msg("Replacing invalid profile cookie")
	}

	id, token, err := m.Issue()
	if err != nil {
		logging.Ctx(r.Context()).Error().Err(err).Msg("Failed to issue profile")
		return nil
	}
	metrics.ProfilesIssued.Inc()

	http.SetCookie(w, &http.Cookie{
		Name:     ProfileCookieName,
		Value:    token,
		Path:     "/",
		MaxAge:   int(m.maxAge.Seconds()),
		HttpOnly: true,
		Secure:   m.secure,
		SameSite: http.SameSiteLaxMode,
	})
	return &Profile{ID: id, Anonymous: true}
}
