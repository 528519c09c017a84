package auth

import (
	"errors"
	"log/slog"
	"net/http"
	"slices"

	"github.com/eduvision-ai/eduvision/internal/logger"
	"github.com/eduvision-ai/eduvision/internal/session"
)

// RequireSession is middleware that loads the session cookie and stores the session in the request context.
// Requests without a valid session are redirected to the sign-in page (an expired or tampered cookie is also cleared).
func (a *AuthService) RequireSession(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		reqLogger := logger.ContextRequestLogger(r.Context())

		s, err := a.sessions.Load(r)
		if err != nil {
			if !errors.Is(err, session.ErrNoSession) {
				reqLogger.Debug("Session rejected - clearing cookie",
					slog.String("component", "auth.RequireSession"),
					slog.String("error", err.Error()),
				)
				a.sessions.Clear(w)
			}
			RedirectToSignIn(w, r)
			return
		}

		reqLogger.Debug("Session check successful",
			slog.String("component", "auth.RequireSession"),
			slog.String("role", s.Role),
		)

		logger.ContextWithLogAttrs(r.Context(),
			slog.String("role", s.Role),
			slog.String("session_id", s.ID.String()),
		)

		next.ServeHTTP(w, r.WithContext(session.ContextWithSession(r.Context(), s)))
	})
}

// RequireRole is middleware that only admits sessions with one of the roles. Use after RequireSession.
func (a *AuthService) RequireRole(roles ...Role) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			reqLogger := logger.ContextRequestLogger(r.Context())

			s, ok := session.FromContext(r.Context())
			if !ok {
				reqLogger.Error("RequireRole used without a session in context",
					slog.String("component", "auth.RequireRole"),
				)
				RedirectToSignIn(w, r)
				return
			}

			if !slices.Contains(roles, Role(s.Role)) {
				reqLogger.Debug("Access denied - role not permitted",
					slog.String("component", "auth.RequireRole"),
					slog.String("role", s.Role),
				)
				RedirectToAccessDenied(w, r)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// RedirectToSignIn redirects to the sign-in page for both HTMX and direct requests
func RedirectToSignIn(w http.ResponseWriter, r *http.Request) {
	redirect(w, r, "/signin")
}

// RedirectToAccessDenied redirects to the access denied page for both HTMX and direct requests
func RedirectToAccessDenied(w http.ResponseWriter, r *http.Request) {
	redirect(w, r, "/access-denied")
}

func redirect(w http.ResponseWriter, r *http.Request, location string) {
	if r.Header.Get("HX-Request") == "true" {
		w.Header().Set("HX-Redirect", location)
		w.WriteHeader(http.StatusOK)
		return
	}
	http.Redirect(w, r, location, http.StatusSeeOther)
}
