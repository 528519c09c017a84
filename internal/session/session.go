// Package session holds the signed-in demo user.
//
// A Session is created on sign-in, carried between requests in a signed cookie and placed in the
// request context by the auth middleware. It is cleared on sign-out.
package session

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/eduvision-ai/eduvision/internal/config"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

var (
	ErrNoSession      = errors.New("no session cookie")
	ErrInvalidSession = errors.New("invalid session")
)

// Session is the session marker for a signed-in user
type Session struct {
	ID        uuid.UUID
	Role      string
	Email     string
	IssuedAt  time.Time
	ExpiresAt time.Time
}

type sessionClaims struct {
	Role  string `json:"role"`
	Email string `json:"email"`
	jwt.RegisteredClaims
}

// Manager issues, loads and clears session cookies
type Manager struct {
	secret      []byte
	ttl         time.Duration
	environment string
	now         func() time.Time
}

func NewManager(secret string, ttl time.Duration, environment string) *Manager {
	return &Manager{
		secret:      []byte(secret),
		ttl:         ttl,
		environment: environment,
		now:         time.Now,
	}
}

// Issue creates a session for the user and sets the session cookie on the response
func (m *Manager) Issue(w http.ResponseWriter, role, email string) (*Session, error) {
	now := m.now().Truncate(time.Second)
	s := &Session{
		ID:        uuid.New(),
		Role:      role,
		Email:     email,
		IssuedAt:  now,
		ExpiresAt: now.Add(m.ttl),
	}

	claims := sessionClaims{
		Role:  role,
		Email: email,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    config.SessionIssuer,
			Subject:   email,
			ID:        s.ID.String(),
			IssuedAt:  jwt.NewNumericDate(s.IssuedAt),
			ExpiresAt: jwt.NewNumericDate(s.ExpiresAt),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.secret)
	if err != nil {
		return nil, fmt.Errorf("failed to sign session token: %w", err)
	}

	http.SetCookie(w, &http.Cookie{
		Name:     config.SessionCookieName,
		Value:    signed,
		Path:     "/",
		HttpOnly: true,
		Secure:   m.environment == "prod",
		SameSite: http.SameSiteStrictMode,
		MaxAge:   int(m.ttl.Seconds()),
	})

	return s, nil
}

// Load reads the session from the request cookie.
// Returns ErrNoSession when there is no cookie and an error wrapping ErrInvalidSession when the cookie cannot be trusted.
func (m *Manager) Load(r *http.Request) (*Session, error) {
	cookie, err := r.Cookie(config.SessionCookieName)
	if err != nil {
		return nil, ErrNoSession
	}

	claims := &sessionClaims{}
	_, err = jwt.ParseWithClaims(cookie.Value, claims,
		func(token *jwt.Token) (any, error) {
			return m.secret, nil
		},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(config.SessionIssuer),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(m.now),
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidSession, err)
	}

	id, err := uuid.Parse(claims.ID)
	if err != nil {
		return nil, fmt.Errorf("%w: session id: %v", ErrInvalidSession, err)
	}

	s := &Session{
		ID:    id,
		Role:  claims.Role,
		Email: claims.Email,
	}
	if claims.IssuedAt != nil {
		s.IssuedAt = claims.IssuedAt.Time
	}
	if claims.ExpiresAt != nil {
		s.ExpiresAt = claims.ExpiresAt.Time
	}

	return s, nil
}

// Clear removes the session cookie
func (m *Manager) Clear(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     config.SessionCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   m.environment == "prod",
		SameSite: http.SameSiteStrictMode,
	})
}
