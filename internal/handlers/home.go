package handlers

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/eduvision-ai/eduvision/internal/auth"
	"github.com/eduvision-ai/eduvision/internal/logger"
	"github.com/eduvision-ai/eduvision/internal/session"
	"github.com/eduvision-ai/eduvision/internal/templates"
)

// HandleHome redirects signed-in users to their landing page and everyone else to sign-in
func (h *HandlerService) HandleHome(w http.ResponseWriter, r *http.Request) {
	s, err := h.AuthService.CurrentSession(r)
	if err != nil {
		auth.RedirectToSignIn(w, r)
		return
	}
	http.Redirect(w, r, auth.Role(s.Role).LandingRoute(), http.StatusSeeOther)
}

func (h *HandlerService) HandleSignIn(w http.ResponseWriter, r *http.Request) {
	if s, err := h.AuthService.CurrentSession(r); err == nil {
		http.Redirect(w, r, auth.Role(s.Role).LandingRoute(), http.StatusSeeOther)
		return
	}
	h.render(w, r, templates.SignInPage(h.Environment), "sign-in page")
}

// HandleSignInPost checks the demo credentials, issues the session cookie and sends the user to the role's landing page
func (h *HandlerService) HandleSignInPost(w http.ResponseWriter, r *http.Request) {
	email := strings.TrimSpace(r.FormValue("email"))
	password := r.FormValue("password")

	reqLogger := logger.ContextRequestLogger(r.Context())

	if email == "" || password == "" {
		h.RenderError(w, r, "Email and password are required")
		return
	}

	s, err := h.AuthService.SignIn(w, email, password)
	if err != nil {
		if errors.Is(err, auth.ErrInvalidCredentials) {
			reqLogger.Info("Sign-in rejected", slog.String("email", email))
			h.RenderError(w, r, err.Error())
			return
		}
		reqLogger.Error("Failed to issue session", slog.String("error", err.Error()))
		h.RenderError(w, r, "An error occurred. Please try again.")
		return
	}

	// add the role to the final request log
	logger.ContextWithLogAttrs(r.Context(),
		slog.String("role", s.Role),
		slog.String("session_id", s.ID.String()),
	)

	landing := auth.Role(s.Role).LandingRoute()
	if r.Header.Get("HX-Request") == "true" {
		w.Header().Set("HX-Redirect", landing)
		w.WriteHeader(http.StatusOK)
		return
	}
	http.Redirect(w, r, landing, http.StatusSeeOther)
}

// HandleSignOut clears the session and the results held for it
func (h *HandlerService) HandleSignOut(w http.ResponseWriter, r *http.Request) {
	s, _ := session.FromContext(r.Context())
	h.AuthService.SignOut(w, s)

	auth.RedirectToSignIn(w, r)
}

// HandleAccessDenied renders the access denied page. The msg query parameter overrides the default message.
func (h *HandlerService) HandleAccessDenied(w http.ResponseWriter, r *http.Request) {
	msg := r.URL.Query().Get("msg")
	if msg == "" {
		msg = "You do not have permission to use this feature"
	}
	w.WriteHeader(http.StatusForbidden)
	h.render(w, r, templates.AccessDeniedPage(h.page(r, "Access Denied"), msg), "access denied page")
}
