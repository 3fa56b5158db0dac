// Marquee - Movie and TV Discovery Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/marquee

package auth

import (
	"crypto/rand"
	"crypto/rsa"
	"crypto/sha256"
	"encoding/base64"
	"math/big"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/goccy/go-json"
	"github.com/golang-jwt/jwt/v5"
)

// mockOIDCServer implements discovery, JWKS and the token endpoint. Codes
// are minted directly by tests instead of through a browser.
type mockOIDCServer struct {
	server   *httptest.Server
	issuer   string
	clientID string

	key   *rsa.PrivateKey
	keyID string

	mu    sync.Mutex
	codes map[string]mockCode

	subject  string
	username string
	email    string
}

type mockCode struct {
	challenge string
	used      bool
}

func newMockOIDCServer(t *testing.T, clientID string) *mockOIDCServer {
	t.Helper()

	key, err := rsa.GenerateKey(rand.Reader, 2048)
	if err != nil {
		t.Fatalf("generate RSA key: %v", err)
	}

	m := &mockOIDCServer{
		clientID: clientID,
		key:      key,
		keyID:    "test-key",
		codes:    make(map[string]mockCode),
		subject:  "user123",
		username: "moviefan",
		email:    "fan@example.com",
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/.well-known/openid-configuration", m.handleDiscovery)
	mux.HandleFunc("/jwks", m.handleJWKS)
	mux.HandleFunc("/token", m.handleToken)
	m.server = httptest.NewServer(mux)
	m.issuer = m.server.URL
	t.Cleanup(m.server.Close)
	return m
}

// issueCode records an authorization code bound to a PKCE challenge.
func (m *mockOIDCServer) issueCode(challenge string) string {
	m.mu.Lock()
	defer m.mu.Unlock()
	code := "code-" + base64.RawURLEncoding.EncodeToString(big.NewInt(int64(len(m.codes)+1)).Bytes())
	m.codes[code] = mockCode{challenge: challenge}
	return code
}

func (m *mockOIDCServer) handleDiscovery(w http.ResponseWriter, _ *http.Request) {
	writeMockJSON(w, http.StatusOK, map[string]interface{}{
		"issuer":                                m.issuer,
		"authorization_endpoint":                m.issuer + "/authorize",
		"token_endpoint":                        m.issuer + "/token",
		"userinfo_endpoint":                     m.issuer + "/userinfo",
		"jwks_uri":                              m.issuer + "/jwks",
		"end_session_endpoint":                  m.issuer + "/logout",
		"response_types_supported":              []string{"code"},
		"subject_types_supported":               []string{"public"},
		"id_token_signing_alg_values_supported": []string{"RS256"},
		"code_challenge_methods_supported":      []string{"S256"},
	})
}

func (m *mockOIDCServer) handleJWKS(w http.ResponseWriter, _ *http.Request) {
	pub := m.key.PublicKey
	writeMockJSON(w, http.StatusOK, map[string]interface{}{
		"keys": []map[string]interface{}{{
			"kty": "RSA",
			"kid": m.keyID,
			"use": "sig",
			"alg": "RS256",
			"n":   base64.RawURLEncoding.EncodeToString(pub.N.Bytes()),
			"e":   base64.RawURLEncoding.EncodeToString(big.NewInt(int64(pub.E)).Bytes()),
		}},
	})
}

func (m *mockOIDCServer) handleToken(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil || r.FormValue("grant_type") != "authorization_code" {
		writeMockJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid_request"})
		return
	}

	code := r.FormValue("code")
	m.mu.Lock()
	c, ok := m.codes[code]
	replay := ok && c.used
	if ok {
		c.used = true
		m.codes[code] = c
	}
	m.mu.Unlock()

	if !ok || replay {
		writeMockJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid_grant"})
		return
	}
	if c.challenge != "" {
		sum := sha256.Sum256([]byte(r.FormValue("code_verifier")))
		if base64.RawURLEncoding.EncodeToString(sum[:]) != c.challenge {
			writeMockJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid_grant", "error_description": "PKCE mismatch"})
			return
		}
	}

	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodRS256, jwt.MapClaims{
		"iss":                m.issuer,
		"sub":                m.subject,
		"aud":                m.clientID,
		"exp":                now.Add(time.Hour).Unix(),
		"iat":                now.Unix(),
		"preferred_username": m.username,
		"email":              m.email,
	})
	token.Header["kid"] = m.keyID
	idToken, err := token.SignedString(m.key)
	if err != nil {
		writeMockJSON(w, http.StatusInternalServerError, map[string]string{"error": "server_error"})
		return
	}

	writeMockJSON(w, http.StatusOK, map[string]interface{}{
		"access_token": "access-" + m.subject,
		"token_type":   "Bearer",
		"expires_in":   3600,
		"id_token":     idToken,
	})
}

func writeMockJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
