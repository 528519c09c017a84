package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"sync"

	"github.com/go-chi/chi/v5"

	"github.com/eduvision-ai/eduvision/internal/client"
	"github.com/eduvision-ai/eduvision/internal/logger"
	"github.com/eduvision-ai/eduvision/internal/templates"
)

// smokeTest is a canned request sent from the dashboard to check a capability end to end
type smokeTest struct {
	templates.SmokeTest
	run func(ctx context.Context, c *client.Client) string
}

var smokeTests = []smokeTest{
	{
		SmokeTest: templates.SmokeTest{Capability: client.CapabilityDocumentQA, Label: "Test Document Q&A"},
		run: func(ctx context.Context, c *client.Client) string {
			return c.DocumentQA(ctx, "What is machine learning?", "").IndentedRaw()
		},
	},
	{
		SmokeTest: templates.SmokeTest{Capability: client.CapabilitySummarize, Label: "Test Summarization"},
		run: func(ctx context.Context, c *client.Client) string {
			return c.Summarize(ctx, "This is a long text about artificial intelligence and machine learning that needs to be summarized for better understanding.", 0).IndentedRaw()
		},
	},
	{
		SmokeTest: templates.SmokeTest{Capability: client.CapabilityTextToSpeech, Label: "Test Text-to-Speech"},
		run: func(ctx context.Context, c *client.Client) string {
			return c.TextToSpeech(ctx, "Hello, this is a test of the text-to-speech functionality.", "").IndentedRaw()
		},
	},
	{
		SmokeTest: templates.SmokeTest{Capability: client.CapabilityAnalytics, Label: "Get Analytics"},
		run: func(ctx context.Context, c *client.Client) string {
			analytics, err := c.GetAnalytics(ctx)
			if err != nil {
				return errorJSON("Failed to fetch Analytics")
			}
			return indent(analytics.Raw)
		},
	},
}

func errorJSON(msg string) string {
	data, _ := json.MarshalIndent(map[string]string{"error": msg}, "", "  ")
	return string(data)
}

func indent(raw json.RawMessage) string {
	data, err := json.MarshalIndent(raw, "", "  ")
	if err != nil {
		return string(raw)
	}
	return string(data)
}

func findSmokeTest(capability string) (smokeTest, bool) {
	for _, st := range smokeTests {
		if string(st.Capability) == capability {
			return st, true
		}
	}
	return smokeTest{}, false
}

// userMessage returns the message to display for an informational call failure
func userMessage(err error, fallback string) string {
	var clientErr *client.ClientError
	if errors.As(err, &clientErr) {
		return clientErr.UserError()
	}
	return fallback
}

// HandleAdminDashboard renders the admin dashboard. Access control is handled by the RequireRole middleware.
func (h *HandlerService) HandleAdminDashboard(w http.ResponseWriter, r *http.Request) {
	h.renderDashboard(w, r, "Admin Dashboard", "EduVision AI Dashboard")
}

// HandleTeacherDashboard renders the teacher dashboard (also open to admins)
func (h *HandlerService) HandleTeacherDashboard(w http.ResponseWriter, r *http.Request) {
	h.renderDashboard(w, r, "Teacher Dashboard", "Teacher Dashboard")
}

// renderDashboard calls the informational endpoints concurrently. Each failure is shown in its own section.
func (h *HandlerService) renderDashboard(w http.ResponseWriter, r *http.Request, title, heading string) {
	ctx := r.Context()
	reqLogger := logger.ContextRequestLogger(ctx)

	data := templates.DashboardData{
		Page:       h.page(r, title),
		Heading:    heading,
		APIBaseURL: h.ApiClient.BaseURL(),
	}
	for _, st := range smokeTests {
		data.SmokeTests = append(data.SmokeTests, st.SmokeTest)
	}

	var wg sync.WaitGroup
	wg.Add(3)

	go func() {
		defer wg.Done()
		health, err := h.ApiClient.HealthCheck(ctx)
		if err != nil {
			reqLogger.Warn("Backend health check failed", slog.String("error", err.Error()))
			data.HealthError = userMessage(err, "Backend not reachable")
			return
		}
		data.Health = health
	}()

	go func() {
		defer wg.Done()
		analytics, err := h.ApiClient.GetAnalytics(ctx)
		if err != nil {
			reqLogger.Warn("Failed to fetch analytics", slog.String("error", err.Error()))
			data.AnalyticsError = "Failed to fetch Analytics"
			return
		}
		data.Analytics = analytics
	}()

	go func() {
		defer wg.Done()
		conversations, err := h.ApiClient.GetConversations(ctx, client.DefaultConversationLimit)
		if err != nil {
			reqLogger.Warn("Failed to fetch conversations", slog.String("error", err.Error()))
			data.ConversationsError = "Failed to fetch conversations"
			return
		}
		data.Conversations = conversations
	}()

	wg.Wait()

	h.render(w, r, templates.DashboardPage(data), "dashboard")
}

// HandleSmokeTest sends the canned request for the capability and renders the raw response
func (h *HandlerService) HandleSmokeTest(w http.ResponseWriter, r *http.Request) {
	capability := chi.URLParam(r, "capability")

	st, ok := findSmokeTest(capability)
	if !ok {
		w.WriteHeader(http.StatusNotFound)
		h.RenderError(w, r, "Unknown capability: "+capability)
		return
	}

	logger.ContextWithLogAttrs(r.Context(), slog.String("smoke_test", capability))

	h.render(w, r, templates.SmokeResult(st.Label, st.run(r.Context(), h.ApiClient)), "smoke test result")
}
