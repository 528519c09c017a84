package handlers

import (
	"html/template"
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

// HandleFeatures renders the features page. The tab query parameter selects the active form.
func (h *HandlerService) HandleFeatures(w http.ResponseWriter, r *http.Request) {
	reqLogger := logger.ContextRequestLogger(r.Context())

	s, ok := session.FromContext(r.Context())
	if !ok {
		reqLogger.Error("features page requested without a session in context")
		auth.RedirectToSignIn(w, r)
		return
	}

	var stored []template.HTML
	for _, component := range h.storedResults(s.ID) {
		html, err := templates.ToHTML(r.Context(), component)
		if err != nil {
			reqLogger.Error("Failed to render stored result", slog.String("error", err.Error()))
			continue
		}
		stored = append(stored, html)
	}

	data := templates.FeaturesData{
		Page:       h.page(r, "Features"),
		Active:     templates.ActiveTab(r.URL.Query().Get("tab")),
		DocumentID: h.Results.DocumentID(s.ID),
		Results:    stored,
	}

	h.render(w, r, templates.FeaturesPage(data), "features page")
}

// complete stores the result of a capability call and renders the session's results panel.
//
// The panel reflects the result store rather than this response alone, so a response that arrives after
// the response to a newer request does not replace it on screen (see results.LatestRequest).
func complete[T any](h *HandlerService, w http.ResponseWriter, r *http.Request, ticket results.Ticket, res client.Result[T]) {
	finish(h, w, r, ticket, res, h.Results.Complete(ticket, res))
}

// finish logs the outcome of a capability call whose result the store has already accepted or discarded
func finish[T any](h *HandlerService, w http.ResponseWriter, r *http.Request, ticket results.Ticket, res client.Result[T], kept bool) {
	reqLogger := logger.ContextRequestLogger(r.Context())

	outcome := "success"
	if res.Cause != nil {
		outcome = res.Cause.Kind.String() + "_error"
		reqLogger.Warn("Capability call failed",
			slog.String("capability", string(res.Capability)),
			slog.String("error", res.Cause.Error()),
		)
	}

	if !kept {
		reqLogger.Debug("Discarded out of order result",
			slog.String("capability", string(res.Capability)),
			slog.Uint64("ticket", ticket.Seq),
		)
	}

	logger.ContextWithLogAttrs(r.Context(),
		slog.String("capability", string(res.Capability)),
		slog.String("outcome", outcome),
		slog.Bool("stored", kept),
	)

	h.renderResults(w, r, ticket.SessionID, h.resultComponent(res))
}

// renderResults renders the stored results, or fallback when nothing is stored for the session (e.g. it signed out mid-request)
func (h *HandlerService) renderResults(w http.ResponseWriter, r *http.Request, sessionID uuid.UUID, fallback templ.Component) {
	components := h.storedResults(sessionID)
	if len(components) == 0 {
		components = []templ.Component{fallback}
	}
	h.render(w, r, templ.Join(components...), "results")
}
