// Package auth implements the admin session: a single credential pair
// from the environment and a signed JWT carried in a cookie or bearer
// header. There are no roles; a valid session unlocks everything.
package auth

import (
	"crypto/subtle"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const SessionCookie = "condoflow_session"

var (
	ErrDisabled           = errors.New("authentication disabled: no admin password configured")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrInvalidToken       = errors.New("invalid session token")
)

type Manager struct {
	secret        []byte
	ttl           time.Duration
	adminEmail    string
	adminPassword string
}

func NewManager(secret, adminEmail, adminPassword string, ttl time.Duration) *Manager {
	return &Manager{
		secret:        []byte(secret),
		ttl:           ttl,
		adminEmail:    adminEmail,
		adminPassword: adminPassword,
	}
}

// Enabled reports whether login is configured at all. With no password
// the app runs open, which suits local demos.
func (m *Manager) Enabled() bool {
	return m.adminPassword != "" && len(m.secret) > 0
}

// TTL is the lifetime of issued session tokens.
func (m *Manager) TTL() time.Duration {
	return m.ttl
}

// Login checks the admin credentials and issues a session token.
func (m *Manager) Login(email, password string) (string, error) {
	if !m.Enabled() {
		return "", ErrDisabled
	}
	emailOK := subtle.ConstantTimeCompare([]byte(email), []byte(m.adminEmail)) == 1
	passOK := subtle.ConstantTimeCompare([]byte(password), []byte(m.adminPassword)) == 1
	if !emailOK || !passOK {
		return "", ErrInvalidCredentials
	}

	now := time.Now()
	claims := jwt.RegisteredClaims{
		Subject:   email,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(m.ttl)),
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.secret)
	if err != nil {
		return "", fmt.Errorf("sign session token: %w", err)
	}
	return token, nil
}

// Verify parses and validates a session token, returning its subject.
func (m *Manager) Verify(token string) (string, error) {
	if !m.Enabled() {
		return "", ErrDisabled
	}
	parsed, err := jwt.ParseWithClaims(token, &jwt.RegisteredClaims{}, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return m.secret, nil
	})
	if err != nil || !parsed.Valid {
		return "", ErrInvalidToken
	}
	claims, ok := parsed.Claims.(*jwt.RegisteredClaims)
	if !ok {
		return "", ErrInvalidToken
	}
	return claims.Subject, nil
}

// Middleware rejects requests without a valid session. With auth
// disabled it passes everything through.
func (m *Manager) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !m.Enabled() {
			next.ServeHTTP(w, r)
			return
		}

		token := tokenFromRequest(r)
		if token == "" {
			http.Error(w, "authentication required", http.StatusUnauthorized)
			return
		}
		if _, err := m.Verify(token); err != nil {
			slog.WarnContext(r.Context(), "Rejected session token", "error", err, "path", r.URL.Path)
			http.Error(w, "invalid session", http.StatusUnauthorized)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func tokenFromRequest(r *http.Request) string {
	if h := r.Header.Get("Authorization"); strings.HasPrefix(h, "Bearer ") {
		return strings.TrimPrefix(h, "Bearer ")
	}
	if c, err := r.Cookie(SessionCookie); err == nil {
		return c.Value
	}
	return ""
}
