// Package auth implements the demo sign-in.
//
// The credentials are three hardcoded accounts, one per role. This is a placeholder for a real identity
// provider and must not be treated as a security design: there is no account store, lockout or password policy.
package auth

import (
	"errors"
	"fmt"
	"net/http"

	"golang.org/x/crypto/bcrypt"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/eduvision-ai/eduvision/internal/results"
	"github.com/eduvision-ai/eduvision/internal/session"
)

// Role of a signed-in user
type Role string

const (
	RoleAdmin   Role = "admin"
	RoleTeacher Role = "teacher"
	RoleStudent Role = "student"
)

// Roles in the order they are offered on the sign-in page
var Roles = []Role{RoleAdmin, RoleTeacher, RoleStudent}

var ErrInvalidCredentials = errors.New("Invalid email or password")

var titleCaser = cases.Title(language.English)

// Label is the role name for display
func (r Role) Label() string {
	return titleCaser.String(string(r))
}

// LandingRoute is where the user is sent after signing in
func (r Role) LandingRoute() string {
	switch r {
	case RoleAdmin:
		return "/admin/dashboard"
	case RoleTeacher:
		return "/teacher/dashboard"
	default:
		return "/features"
	}
}

// DemoCredential is an email/password pair offered on the sign-in page
type DemoCredential struct {
	Role     Role
	Email    string
	Password string
}

var demoCredentials = []DemoCredential{
	{Role: RoleAdmin, Email: "admin@eduvision.ai", Password: "admin123"},
	{Role: RoleTeacher, Email: "teacher@eduvision.ai", Password: "teacher123"},
	{Role: RoleStudent, Email: "student@eduvision.ai", Password: "student123"},
}

// DemoCredentials returns the demo accounts so the sign-in page can prefill them
func DemoCredentials() []DemoCredential {
	out := make([]DemoCredential, len(demoCredentials))
	copy(out, demoCredentials)
	return out
}

type account struct {
	role         Role
	email        string
	passwordHash []byte
}

// AuthService checks demo credentials and manages the session of the signed-in user
type AuthService struct {
	accounts []account
	sessions *session.Manager
	results  *results.Store
}

// NewAuthService hashes the demo passwords. Sign-out forgets the user's stored results.
func NewAuthService(sessions *session.Manager, store *results.Store) (*AuthService, error) {
	a := &AuthService{
		sessions: sessions,
		results:  store,
	}
	for _, cred := range demoCredentials {
		hash, err := bcrypt.GenerateFromPassword([]byte(cred.Password), bcrypt.DefaultCost)
		if err != nil {
			return nil, fmt.Errorf("failed to hash demo password for %s: %w", cred.Role, err)
		}
		a.accounts = append(a.accounts, account{role: cred.Role, email: cred.Email, passwordHash: hash})
	}
	return a, nil
}

// Authenticate returns the role of the matching demo account or ErrInvalidCredentials
func (a *AuthService) Authenticate(email, password string) (Role, error) {
	for _, acc := range a.accounts {
		if acc.email != email {
			continue
		}
		if err := bcrypt.CompareHashAndPassword(acc.passwordHash, []byte(password)); err != nil {
			return "", ErrInvalidCredentials
		}
		return acc.role, nil
	}
	return "", ErrInvalidCredentials
}

// SignIn authenticates the user and issues a session cookie on success.
// No cookie is set when the credentials do not match.
func (a *AuthService) SignIn(w http.ResponseWriter, email, password string) (*session.Session, error) {
	role, err := a.Authenticate(email, password)
	if err != nil {
		return nil, err
	}
	return a.sessions.Issue(w, string(role), email)
}

// SignOut clears the session cookie and any results held for the session
func (a *AuthService) SignOut(w http.ResponseWriter, s *session.Session) {
	a.sessions.Clear(w)
	if s != nil && a.results != nil {
		a.results.Forget(s.ID)
	}
}

// CurrentSession loads the session from the request cookie
func (a *AuthService) CurrentSession(r *http.Request) (*session.Session, error) {
	return a.sessions.Load(r)
}
