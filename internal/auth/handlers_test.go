// Marquee - Movie and TV Discovery Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/marquee

package auth

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tomtom215/marquee/internal/config"
)

type authFixture struct {
	provider *mockOIDCServer
	flow     *Flow
	sessions *MemorySessionStore
	profiles *ProfileManager
	handlers *Handlers
}

func newAuthFixture(t *testing.T) *authFixture {
	t.Helper()
	provider := newMockOIDCServer(t, "marquee")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	flow, err := NewFlow(ctx, &config.OIDCConfig{
		IssuerURL:             provider.issuer,
		ClientID:              "marquee",
		ClientSecret:          "shh",
		RedirectURL:           "http://localhost:3857/auth/callback",
		PostLogoutRedirectURI: "http://localhost:3857/",
		PKCEEnabled:           true,
	}, nil)
	require.NoError(t, err)

	sessions := NewMemorySessionStore()
	profiles := newTestProfileManager(t, sessions)
	return &authFixture{
		provider: provider,
		flow:     flow,
		sessions: sessions,
		profiles: profiles,
		handlers: NewHandlers(flow, sessions, profiles, "marquee_session", time.Hour, false),
	}
}

// login runs /auth/login and returns the provider redirect.
func (f *authFixture) login(t *testing.T, redirect string) *url.URL {
	t.Helper()
	rec := httptest.NewRecorder()
	f.handlers.Login(rec, httptest.NewRequest(http.MethodGet, "/auth/login?redirect="+url.QueryEscape(redirect), nil))
	require.Equal(t, http.StatusFound, rec.Code)
	u, err := url.Parse(rec.Header().Get("Location"))
	require.NoError(t, err)
	return u
}

func (f *authFixture) callback(code, state string) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	q := url.Values{"code": {code}, "state": {state}}
	f.handlers.Callback(rec, httptest.NewRequest(http.MethodGet, "/auth/callback?"+q.Encode(), nil))
	return rec
}

func TestNewFlow_Validation(t *testing.T) {
	ctx := context.Background()
	tests := []struct {
		name string
		cfg  *config.OIDCConfig
	}{
		{"nil", nil},
		{"no issuer", &config.OIDCConfig{ClientID: "c", RedirectURL: "http://x/cb"}},
		{"no client", &config.OIDCConfig{IssuerURL: "http://x", RedirectURL: "http://x/cb"}},
		{"no redirect", &config.OIDCConfig{IssuerURL: "http://x", ClientID: "c"}},
		{"no openid scope", &config.OIDCConfig{IssuerURL: "http://x", ClientID: "c", RedirectURL: "http://x/cb", Scopes: []string{"email"}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewFlow(ctx, tt.cfg, nil)
			assert.Error(t, err)
		})
	}
}

func TestLogin_RedirectsWithStateAndPKCE(t *testing.T) {
	f := newAuthFixture(t)
	u := f.login(t, "/my-list")

	assert.Equal(t, "/authorize", u.Path)
	q := u.Query()
	assert.Equal(t, "marquee", q.Get("client_id"))
	assert.NotEmpty(t, q.Get("state"))
	assert.NotEmpty(t, q.Get("code_challenge"))
	assert.Equal(t, "S256", q.Get("code_challenge_method"))
}

func TestCallback_CreatesSession(t *testing.T) {
	f := newAuthFixture(t)
	u := f.login(t, "/my-list")
	code := f.provider.issueCode(u.Query().Get("code_challenge"))

	rec := f.callback(code, u.Query().Get("state"))

	require.Equal(t, http.StatusFound, rec.Code, rec.Body.String())
	assert.Equal(t, "/my-list", rec.Header().Get("Location"))

	var sid string
	for _, c := range rec.Result().Cookies() {
		if c.Name == "marquee_session" {
			sid = c.Value
		}
	}
	require.NotEmpty(t, sid)

	session, err := f.sessions.Get(context.Background(), sid)
	require.NoError(t, err)
	assert.Equal(t, "oidc:user123", session.ProfileID())
	assert.Equal(t, "moviefan", session.Username)
	assert.NotEmpty(t, session.IDToken)
}

func TestCallback_StateIsSingleUse(t *testing.T) {
	f := newAuthFixture(t)
	u := f.login(t, "/")
	state := u.Query().Get("state")
	challenge := u.Query().Get("code_challenge")

	require.Equal(t, http.StatusFound, f.callback(f.provider.issueCode(challenge), state).Code)
	assert.Equal(t, http.StatusBadRequest, f.callback(f.provider.issueCode(challenge), state).Code)
}

func TestCallback_Failures(t *testing.T) {
	f := newAuthFixture(t)

	t.Run("unknown state", func(t *testing.T) {
		assert.Equal(t, http.StatusBadRequest, f.callback("c", "forged").Code)
	})

	t.Run("missing params", func(t *testing.T) {
		rec := httptest.NewRecorder()
		f.handlers.Callback(rec, httptest.NewRequest(http.MethodGet, "/auth/callback", nil))
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("provider error", func(t *testing.T) {
		rec := httptest.NewRecorder()
		f.handlers.Callback(rec, httptest.NewRequest(http.MethodGet, "/auth/callback?error=access_denied", nil))
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("pkce mismatch", func(t *testing.T) {
		u := f.login(t, "/")
		code := f.provider.issueCode("not-the-challenge")
		assert.Equal(t, http.StatusBadGateway, f.callback(code, u.Query().Get("state")).Code)
		assert.Equal(t, 0, f.sessions.Count())
	})
}

func TestLogout(t *testing.T) {
	f := newAuthFixture(t)
	u := f.login(t, "/")
	rec := f.callback(f.provider.issueCode(u.Query().Get("code_challenge")), u.Query().Get("state"))
	require.Equal(t, http.StatusFound, rec.Code)

	req := httptest.NewRequest(http.MethodGet, "/auth/logout", nil)
	for _, c := range rec.Result().Cookies() {
		req.AddCookie(c)
	}
	out := httptest.NewRecorder()
	f.handlers.Logout(out, req)

	require.Equal(t, http.StatusFound, out.Code)
	loc, err := url.Parse(out.Header().Get("Location"))
	require.NoError(t, err)
	assert.Equal(t, "/logout", loc.Path)
	assert.NotEmpty(t, loc.Query().Get("id_token_hint"))
	assert.Equal(t, 0, f.sessions.Count())

	// Without a session, logout lands on the configured page.
	out = httptest.NewRecorder()
	f.handlers.Logout(out, httptest.NewRequest(http.MethodGet, "/auth/logout", nil))
	assert.Equal(t, "http://localhost:3857/", out.Header().Get("Location"))
}

func TestMe(t *testing.T) {
	m := newTestProfileManager(t, nil)
	h := NewHandlers(nil, nil, m, "marquee_session", 0, false)

	rec := httptest.NewRecorder()
	m.Middleware(h.Me)(rec, httptest.NewRequest(http.MethodGet, "/auth/me", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Status string     `json:"status"`
		Data   MeResponse `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "success", body.Status)
	assert.True(t, body.Data.Anonymous)
	assert.NotEmpty(t, body.Data.ID)
	assert.False(t, body.Data.SignInEnabled)

	rec = httptest.NewRecorder()
	h.Me(rec, httptest.NewRequest(http.MethodGet, "/auth/me", nil))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestSignInDisabled(t *testing.T) {
	h := NewHandlers(nil, nil, newTestProfileManager(t, nil), "marquee_session", 0, false)

	rec := httptest.NewRecorder()
	h.Login(rec, httptest.NewRequest(http.MethodGet, "/auth/login", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = httptest.NewRecorder()
	h.Logout(rec, httptest.NewRequest(http.MethodGet, "/auth/logout", nil))
	assert.Equal(t, "/", rec.Header().Get("Location"))
}

func TestSafeRedirect(t *testing.T) {
	tests := map[string]string{
		"":                    "/",
		"/my-list":            "/my-list",
		"/movies?page=2":      "/movies?page=2",
		"https://evil.com":    "/",
		"//evil.com":          "/",
		`/\evil.com`:          "/",
		"javascript:alert(1)": "/",
	}
	for in, want := range tests {
		assert.Equal(t, want, SafeRedirect(in), in)
	}
}
