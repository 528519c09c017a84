package handlers

import (
	"log/slog"
	"net/http"

	"github.com/eduvision-ai/eduvision/internal/logger"
)

// HandleLiveness reports that the UI server is running
func (h *HandlerService) HandleLiveness(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("OK"))
}

// HandleReadiness reports whether the backend is reachable and describes itself as healthy
func (h *HandlerService) HandleReadiness(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")

	health, err := h.ApiClient.HealthCheck(r.Context())
	if err != nil || !health.Healthy() {
		reqLogger := logger.ContextRequestLogger(r.Context())
		attrs := []any{slog.String("component", "HandleReadiness")}
		if err != nil {
			attrs = append(attrs, slog.String("error", err.Error()))
		} else {
			attrs = append(attrs, slog.String("status", health.Status))
		}
		reqLogger.Warn("Backend not ready", attrs...)

		w.WriteHeader(http.StatusServiceUnavailable)
		_, _ = w.Write([]byte("Service Unavailable"))
		return
	}

	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("OK"))
}
