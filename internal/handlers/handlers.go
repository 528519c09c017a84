package handlers

import (
	"log/slog"
	"net/http"

	"github.com/a-h/templ"
	"github.com/google/uuid"

	"github.com/eduvision-ai/eduvision/internal/auth"
	"github.com/eduvision-ai/eduvision/internal/client"
	"github.com/eduvision-ai/eduvision/internal/logger"
	"github.com/eduvision-ai/eduvision/internal/results"
	"github.com/eduvision-ai/eduvision/internal/session"
	"github.com/eduvision-ai/eduvision/internal/templates"
)

type HandlerService struct {
	AuthService *auth.AuthService
	ApiClient   *client.Client
	Results     *results.Store
	Environment string
}

// page returns the data shared by full pages, including the signed-in user when there is one
func (h *HandlerService) page(r *http.Request, title string) templates.Page {
	p := templates.Page{Title: title, Environment: h.Environment}

	s, ok := session.FromContext(r.Context())
	if !ok {
		// pages outside the session guard (access denied) still show the navigation for signed-in users
		var err error
		if s, err = h.AuthService.CurrentSession(r); err != nil {
			return p
		}
	}
	p.User = &templates.User{Email: s.Email, Role: auth.Role(s.Role)}
	return p
}

// render writes the component; what is the name used in the log if rendering fails
func (h *HandlerService) render(w http.ResponseWriter, r *http.Request, component templ.Component, what string) {
	if err := component.Render(r.Context(), w); err != nil {
		reqLogger := logger.ContextRequestLogger(r.Context())
		reqLogger.Error("Failed to render "+what, slog.String("error", err.Error()))
	}
}

// RenderError displays an error message inside the fragment target
func (h *HandlerService) RenderError(w http.ResponseWriter, r *http.Request, msg string) {
	h.render(w, r, templates.ErrorAlert(msg), "error alert")
}

// resultComponent returns the fragment for a stored result
func (h *HandlerService) resultComponent(value any) templ.Component {
	switch res := value.(type) {
	case client.Result[client.DocumentAnswer]:
		return templates.DocumentQAResult(res)
	case client.Result[client.VisualAnswer]:
		return templates.VisualQAResult(res)
	case client.Result[client.Summary]:
		return templates.SummaryResult(res)
	case client.Result[client.Speech]:
		return templates.SpeechResult(res, h.audioURL(res))
	case client.Result[client.UploadReceipt]:
		return templates.UploadResult(res)
	default:
		return templates.ErrorAlert("Unknown result")
	}
}

func (h *HandlerService) audioURL(res client.Result[client.Speech]) string {
	if res.Data == nil {
		return ""
	}
	return h.ApiClient.ResolveURL(res.Data.Audio())
}

// storedResults returns the session's stored results in tab order
func (h *HandlerService) storedResults(sessionID uuid.UUID) []templ.Component {
	var components []templ.Component
	for _, tab := range templates.Tabs {
		if entry, ok := h.Results.Get(sessionID, string(tab.Capability)); ok {
			components = append(components, h.resultComponent(entry.Value))
		}
	}
	return components
}
