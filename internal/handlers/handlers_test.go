package handlers

import (
	"bytes"
	"context"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/eduvision-ai/eduvision/internal/auth"
	"github.com/eduvision-ai/eduvision/internal/client"
	"github.com/eduvision-ai/eduvision/internal/logger"
	"github.com/eduvision-ai/eduvision/internal/results"
	"github.com/eduvision-ai/eduvision/internal/session"
)

const testSecret = "test-secret-that-is-long-enough-for-prod"

// backendRoute is a canned backend reply
type backendRoute struct {
	status int
	body   string
}

// newBackend starts a fake backend serving the routes (keyed by path) and counts the calls it receives
func newBackend(t *testing.T, routes map[string]backendRoute) (string, *atomic.Int32) {
	t.Helper()
	calls := &atomic.Int32{}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		route, ok := routes[r.URL.Path]
		if !ok {
			w.WriteHeader(http.StatusNotFound)
			_, _ = io.WriteString(w, `{"detail":"Not Found"}`)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(route.status)
		_, _ = io.WriteString(w, route.body)
	}))
	t.Cleanup(server.Close)
	return server.URL, calls
}

func unreachableURL(t *testing.T) string {
	t.Helper()
	server := httptest.NewServer(http.NotFoundHandler())
	url := server.URL
	server.Close()
	return url
}

func newTestHandlers(t *testing.T, baseURL string, policy results.Policy) *HandlerService {
	t.Helper()
	store := results.NewStore(policy)
	authService, err := auth.NewAuthService(session.NewManager(testSecret, time.Hour, "dev"), store)
	if err != nil {
		t.Fatalf("NewAuthService() error = %v", err)
	}
	return &HandlerService{
		AuthService: authService,
		ApiClient:   client.NewClient(baseURL, client.WithLogger(logger.Discard())),
		Results:     store,
		Environment: "dev",
	}
}

func studentSession() *session.Session {
	return &session.Session{ID: uuid.New(), Role: string(auth.RoleStudent), Email: "student@eduvision.ai"}
}

type formFileField struct {
	field    string
	filename string
	content  string
}

// multipartRequest builds an HTMX form post carrying the session in its context
func multipartRequest(t *testing.T, path string, s *session.Session, fields map[string]string, file *formFileField) *http.Request {
	t.Helper()
	body := &bytes.Buffer{}
	mw := multipart.NewWriter(body)
	for name, value := range fields {
		if err := mw.WriteField(name, value); err != nil {
			t.Fatal(err)
		}
	}
	if file != nil {
		part, err := mw.CreateFormFile(file.field, file.filename)
		if err != nil {
			t.Fatal(err)
		}
		_, _ = io.WriteString(part, file.content)
	}
	if err := mw.Close(); err != nil {
		t.Fatal(err)
	}

	req := httptest.NewRequest(http.MethodPost, path, body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.Header.Set("HX-Request", "true")
	if s != nil {
		req = req.WithContext(session.ContextWithSession(req.Context(), s))
	}
	return req
}

func TestCapabilityHandlers(t *testing.T) {
	backendURL, calls := newBackend(t, map[string]backendRoute{
		"/document-qa":    {http.StatusOK, `{"answer":"Machine learning is a field of AI","document_title":"Intro"}`},
		"/visual-qa":      {http.StatusOK, `{"answer":"A diagram of a cell"}`},
		"/summarize":      {http.StatusOK, `{"summary":"AI in brief"}`},
		"/text-to-speech": {http.StatusOK, `{"message":"Speech generated","audio_url":"webspeech:Hello there"}`},
		"/upload":         {http.StatusOK, `{"message":"File uploaded","document_id":9}`},
	})

	tests := []struct {
		name      string
		handler   func(h *HandlerService) http.HandlerFunc
		path      string
		fields    map[string]string
		file      *formFileField
		want      string
		wantCalls int32
	}{
		{
			name:      "document qa",
			handler:   func(h *HandlerService) http.HandlerFunc { return h.HandleDocumentQA },
			path:      "/ui-api/document-qa",
			fields:    map[string]string{"question": "What is machine learning?"},
			want:      "Machine learning is a field of AI",
			wantCalls: 1,
		},
		{
			name:    "document qa without a question",
			handler: func(h *HandlerService) http.HandlerFunc { return h.HandleDocumentQA },
			path:    "/ui-api/document-qa",
			fields:  map[string]string{"question": "   "},
			want:    "Please enter a question.",
		},
		{
			name:      "visual qa",
			handler:   func(h *HandlerService) http.HandlerFunc { return h.HandleVisualQA },
			path:      "/ui-api/visual-qa",
			fields:    map[string]string{"question": "What is shown?"},
			file:      &formFileField{"image", "cell.png", "png-bytes"},
			want:      "A diagram of a cell",
			wantCalls: 1,
		},
		{
			name:    "visual qa without an image",
			handler: func(h *HandlerService) http.HandlerFunc { return h.HandleVisualQA },
			path:    "/ui-api/visual-qa",
			fields:  map[string]string{"question": "What is shown?"},
			want:    "Please select an image.",
		},
		{
			name:      "summarize with an invalid length",
			handler:   func(h *HandlerService) http.HandlerFunc { return h.HandleSummarize },
			path:      "/ui-api/summarize",
			fields:    map[string]string{"text": "A long text", "max_length": "lots"},
			want:      "AI in brief",
			wantCalls: 1,
		},
		{
			name:      "text to speech",
			handler:   func(h *HandlerService) http.HandlerFunc { return h.HandleTextToSpeech },
			path:      "/ui-api/text-to-speech",
			fields:    map[string]string{"text": "Hello there"},
			want:      `data-speak="Hello there"`,
			wantCalls: 1,
		},
		{
			name:    "text to speech without text",
			handler: func(h *HandlerService) http.HandlerFunc { return h.HandleTextToSpeech },
			path:    "/ui-api/text-to-speech",
			want:    "Please enter text to convert.",
		},
		{
			name:      "upload",
			handler:   func(h *HandlerService) http.HandlerFunc { return h.HandleUpload },
			path:      "/ui-api/upload",
			file:      &formFileField{"file", "notes.txt", "lecture notes"},
			want:      "Document ID: 9",
			wantCalls: 1,
		},
		{
			name:    "upload of an unsupported type",
			handler: func(h *HandlerService) http.HandlerFunc { return h.HandleUpload },
			path:    "/ui-api/upload",
			file:    &formFileField{"file", "photo.png", "png-bytes"},
			want:    "Unsupported file type",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newTestHandlers(t, backendURL, results.LatestRequest)
			before := calls.Load()

			rr := httptest.NewRecorder()
			tt.handler(h)(rr, multipartRequest(t, tt.path, studentSession(), tt.fields, tt.file))

			if rr.Code != http.StatusOK {
				t.Errorf("got status %d, want 200", rr.Code)
			}
			if !strings.Contains(rr.Body.String(), tt.want) {
				t.Errorf("body does not contain %q:\n%s", tt.want, rr.Body.String())
			}
			if got := calls.Load() - before; got != tt.wantCalls {
				t.Errorf("backend called %d times, want %d", got, tt.wantCalls)
			}
		})
	}
}

func TestCapabilityFailureShowsStaticMessage(t *testing.T) {
	h := newTestHandlers(t, unreachableURL(t), results.LatestRequest)

	rr := httptest.NewRecorder()
	h.HandleSummarize(rr, multipartRequest(t, "/ui-api/summarize", studentSession(), map[string]string{"text": "Some text"}, nil))

	if !strings.Contains(rr.Body.String(), "Failed to generate summary") {
		t.Errorf("got body %s", rr.Body.String())
	}
}

func TestUploadRemembersDocumentID(t *testing.T) {
	backendURL, _ := newBackend(t, map[string]backendRoute{
		"/upload": {http.StatusOK, `{"message":"File uploaded","document_id":"doc-5"}`},
	})
	h := newTestHandlers(t, backendURL, results.LatestRequest)
	s := studentSession()

	rr := httptest.NewRecorder()
	h.HandleUpload(rr, multipartRequest(t, "/ui-api/upload", s, nil, &formFileField{"file", "notes.pdf", "%PDF"}))

	if got := h.Results.DocumentID(s.ID); got != "doc-5" {
		t.Errorf("got document id %q, want doc-5", got)
	}

	req := httptest.NewRequest(http.MethodGet, "/features?tab=document-qa", nil)
	req = req.WithContext(session.ContextWithSession(req.Context(), s))
	rr = httptest.NewRecorder()
	h.HandleFeatures(rr, req)

	body := rr.Body.String()
	if !strings.Contains(body, `value="doc-5"`) {
		t.Error("document qa form not prefilled with the uploaded document id")
	}
	if !strings.Contains(body, "File uploaded") {
		t.Error("stored upload result not shown on the features page")
	}
}

func TestOverlappingUploadsKeepNewerDocument(t *testing.T) {
	received := make(chan struct{})
	release := make(chan struct{})
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseMultipartForm(1 << 20); err != nil {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		if r.MultipartForm.File["file"][0].Filename == "old.pdf" {
			close(received)
			<-release
			_, _ = io.WriteString(w, `{"message":"old uploaded","document_id":1}`)
			return
		}
		_, _ = io.WriteString(w, `{"message":"new uploaded","document_id":2}`)
	}))
	t.Cleanup(server.Close)

	h := newTestHandlers(t, server.URL, results.LatestRequest)
	s := studentSession()

	oldReq := multipartRequest(t, "/ui-api/upload", s, nil, &formFileField{"file", "old.pdf", "%PDF"})
	newReq := multipartRequest(t, "/ui-api/upload", s, nil, &formFileField{"file", "new.pdf", "%PDF"})

	// the older upload is issued first and answered after the newer one
	done := make(chan struct{})
	go func() {
		defer close(done)
		h.HandleUpload(httptest.NewRecorder(), oldReq)
	}()
	<-received

	h.HandleUpload(httptest.NewRecorder(), newReq)
	close(release)
	<-done

	if got := h.Results.DocumentID(s.ID); got != "2" {
		t.Errorf("got document id %q, want 2", got)
	}

	req := httptest.NewRequest(http.MethodGet, "/features?tab=document-qa", nil)
	req = req.WithContext(session.ContextWithSession(req.Context(), s))
	rr := httptest.NewRecorder()
	h.HandleFeatures(rr, req)

	body := rr.Body.String()
	if !strings.Contains(body, `value="2"`) {
		t.Error("document qa form not prefilled with the newer document id")
	}
	if !strings.Contains(body, "new uploaded") || strings.Contains(body, "old uploaded") {
		t.Errorf("stored upload result is not the newer one: %s", body)
	}
}

func TestOutOfOrderResponseKeepsNewerResult(t *testing.T) {
	backendURL, _ := newBackend(t, map[string]backendRoute{
		"/summarize": {http.StatusOK, `{"summary":"newer summary"}`},
	})

	tests := []struct {
		name   string
		policy results.Policy
		want   string
	}{
		{"latest request wins", results.LatestRequest, "newer summary"},
		{"last arrival wins", results.LastArrival, "older summary"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newTestHandlers(t, backendURL, tt.policy)
			s := studentSession()

			// the older request is issued first but its response arrives last
			older := h.Results.Begin(s.ID, string(client.CapabilitySummarize))

			rr := httptest.NewRecorder()
			h.HandleSummarize(rr, multipartRequest(t, "/ui-api/summarize", s, map[string]string{"text": "text"}, nil))

			summary := "older summary"
			stale := client.Result[client.Summary]{
				Capability: client.CapabilitySummarize,
				Data:       &client.Summary{Summary: summary},
				Raw:        []byte(`{"summary":"older summary"}`),
			}
			req := multipartRequest(t, "/ui-api/summarize", s, nil, nil)
			rr = httptest.NewRecorder()
			complete(h, rr, req, older, stale)

			if !strings.Contains(rr.Body.String(), tt.want) {
				t.Errorf("got body %s, want %q", rr.Body.String(), tt.want)
			}
		})
	}
}

func TestSignInPost(t *testing.T) {
	h := newTestHandlers(t, unreachableURL(t), results.LatestRequest)

	tests := []struct {
		name         string
		email        string
		password     string
		wantRedirect string
		wantBody     string
	}{
		{"admin", "admin@eduvision.ai", "admin123", "/admin/dashboard", ""},
		{"teacher", "teacher@eduvision.ai", "teacher123", "/teacher/dashboard", ""},
		{"student", "student@eduvision.ai", "student123", "/features", ""},
		{"wrong password", "admin@eduvision.ai", "nope", "", "Invalid email or password"},
		{"missing fields", "", "", "", "Email and password are required"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := multipartRequest(t, "/signin", nil, map[string]string{"email": tt.email, "password": tt.password}, nil)
			rr := httptest.NewRecorder()
			h.HandleSignInPost(rr, req)

			if got := rr.Header().Get("HX-Redirect"); got != tt.wantRedirect {
				t.Errorf("HX-Redirect = %q, want %q", got, tt.wantRedirect)
			}
			cookies := rr.Result().Cookies()
			if tt.wantRedirect != "" && len(cookies) != 1 {
				t.Errorf("got %d cookies, want a session cookie", len(cookies))
			}
			if tt.wantRedirect == "" && len(cookies) != 0 {
				t.Errorf("got cookies %v, want none", cookies)
			}
			if !strings.Contains(rr.Body.String(), tt.wantBody) {
				t.Errorf("body does not contain %q", tt.wantBody)
			}
		})
	}
}

func TestHome(t *testing.T) {
	h := newTestHandlers(t, unreachableURL(t), results.LatestRequest)

	rr := httptest.NewRecorder()
	h.HandleHome(rr, httptest.NewRequest(http.MethodGet, "/", nil))
	if got := rr.Header().Get("Location"); got != "/signin" {
		t.Errorf("signed out: got Location %q, want /signin", got)
	}

	signIn := httptest.NewRecorder()
	if _, err := h.AuthService.SignIn(signIn, "teacher@eduvision.ai", "teacher123"); err != nil {
		t.Fatal(err)
	}
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(signIn.Result().Cookies()[0])
	rr = httptest.NewRecorder()
	h.HandleHome(rr, req)
	if got := rr.Header().Get("Location"); got != "/teacher/dashboard" {
		t.Errorf("signed in: got Location %q, want /teacher/dashboard", got)
	}
}

func TestSignOutForgetsResults(t *testing.T) {
	h := newTestHandlers(t, unreachableURL(t), results.LatestRequest)
	s := studentSession()
	h.Results.CompleteUpload(h.Results.Begin(s.ID, string(client.CapabilityUpload)), "uploaded", "4")
	if h.Results.DocumentID(s.ID) != "4" {
		t.Fatal("document id not stored")
	}

	req := httptest.NewRequest(http.MethodPost, "/signout", nil)
	req = req.WithContext(session.ContextWithSession(req.Context(), s))
	rr := httptest.NewRecorder()
	h.HandleSignOut(rr, req)

	if h.Results.DocumentID(s.ID) != "" {
		t.Error("results survived sign-out")
	}
	if got := rr.Header().Get("Location"); got != "/signin" {
		t.Errorf("got Location %q, want /signin", got)
	}
}

func TestDashboard(t *testing.T) {
	t.Run("backend available", func(t *testing.T) {
		backendURL, _ := newBackend(t, map[string]backendRoute{
			"/health":        {http.StatusOK, `{"status":"healthy","database":"connected"}`},
			"/analytics":     {http.StatusOK, `{"total_users":12,"documents_processed":3,"questions_answered":40}`},
			"/conversations": {http.StatusOK, `[{"id":1,"service_type":"document-qa","question":"What is AI?","answer":"A field","timestamp":"2025-01-01T00:00:00"}]`},
		})
		h := newTestHandlers(t, backendURL, results.LatestRequest)

		rr := httptest.NewRecorder()
		h.HandleAdminDashboard(rr, httptest.NewRequest(http.MethodGet, "/admin/dashboard", nil))

		body := rr.Body.String()
		for _, want := range []string{"Connected", "12", "What is AI?", "Test Document Q&amp;A"} {
			if !strings.Contains(body, want) {
				t.Errorf("dashboard does not contain %q", want)
			}
		}
	})

	t.Run("backend unreachable", func(t *testing.T) {
		h := newTestHandlers(t, unreachableURL(t), results.LatestRequest)

		rr := httptest.NewRecorder()
		h.HandleTeacherDashboard(rr, httptest.NewRequest(http.MethodGet, "/teacher/dashboard", nil))

		if rr.Code != http.StatusOK {
			t.Errorf("got status %d, want 200", rr.Code)
		}
		body := rr.Body.String()
		for _, want := range []string{"Disconnected", "Failed to fetch Analytics", "Failed to fetch conversations"} {
			if !strings.Contains(body, want) {
				t.Errorf("dashboard does not contain %q", want)
			}
		}
	})
}

func TestSmokeTest(t *testing.T) {
	backendURL, _ := newBackend(t, map[string]backendRoute{
		"/document-qa": {http.StatusOK, `{"answer":"canned answer"}`},
	})
	h := newTestHandlers(t, backendURL, results.LatestRequest)

	router := chi.NewRouter()
	router.Post("/ui-api/smoke/{capability}", h.HandleSmokeTest)

	tests := []struct {
		capability string
		wantStatus int
		want       string
	}{
		{"document-qa", http.StatusOK, "canned answer"},
		{"analytics", http.StatusOK, "Failed to fetch Analytics"},
		{"summarize", http.StatusOK, "Failed to generate summary"},
		{"upload", http.StatusNotFound, "Unknown capability"},
	}

	for _, tt := range tests {
		t.Run(tt.capability, func(t *testing.T) {
			rr := httptest.NewRecorder()
			router.ServeHTTP(rr, httptest.NewRequest(http.MethodPost, "/ui-api/smoke/"+tt.capability, nil))

			if rr.Code != tt.wantStatus {
				t.Errorf("got status %d, want %d", rr.Code, tt.wantStatus)
			}
			if !strings.Contains(rr.Body.String(), tt.want) {
				t.Errorf("body does not contain %q:\n%s", tt.want, rr.Body.String())
			}
		})
	}
}

func TestReadiness(t *testing.T) {
	healthyURL, _ := newBackend(t, map[string]backendRoute{"/health": {http.StatusOK, `{"status":"healthy"}`}})
	degradedURL, _ := newBackend(t, map[string]backendRoute{"/health": {http.StatusOK, `{"status":"unhealthy","error":"db down"}`}})

	tests := []struct {
		name       string
		baseURL    string
		wantStatus int
	}{
		{"healthy backend", healthyURL, http.StatusOK},
		{"unhealthy backend", degradedURL, http.StatusServiceUnavailable},
		{"unreachable backend", unreachableURL(t), http.StatusServiceUnavailable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newTestHandlers(t, tt.baseURL, results.LatestRequest)
			rr := httptest.NewRecorder()
			h.HandleReadiness(rr, httptest.NewRequest(http.MethodGet, "/health/ready", nil).WithContext(context.Background()))
			if rr.Code != tt.wantStatus {
				t.Errorf("got status %d, want %d", rr.Code, tt.wantStatus)
			}
		})
	}
}
