package handlers

import (
	"errors"
	"log/slog"
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"

	"github.com/eduvision-ai/eduvision/internal/auth"
	"github.com/eduvision-ai/eduvision/internal/client"
	"github.com/eduvision-ai/eduvision/internal/logger"
	"github.com/eduvision-ai/eduvision/internal/session"
)

// memory used for multipart parsing before parts are spooled to disk
const maxMultipartMemory = 8 << 20

// formSession parses the form and returns the session set by RequireSession.
// It renders the response itself and returns false when the request cannot continue.
func (h *HandlerService) formSession(w http.ResponseWriter, r *http.Request) (*session.Session, bool) {
	reqLogger := logger.ContextRequestLogger(r.Context())

	s, ok := session.FromContext(r.Context())
	if !ok {
		reqLogger.Error("ui-api request without a session in context")
		auth.RedirectToSignIn(w, r)
		return nil, false
	}

	if err := r.ParseMultipartForm(maxMultipartMemory); err != nil && !errors.Is(err, http.ErrNotMultipart) {
		var maxBytesErr *http.MaxBytesError
		if errors.As(err, &maxBytesErr) {
			h.RenderError(w, r, "The file is too large.")
			return nil, false
		}
		reqLogger.Warn("Failed to parse form", slog.String("error", err.Error()))
		h.RenderError(w, r, "The form could not be read. Please try again.")
		return nil, false
	}
	return s, true
}

// formFile returns the named file as an attachment. ok is false when no file was sent.
func formFile(r *http.Request, field string) (client.Attachment, func(), bool) {
	file, header, err := r.FormFile(field)
	if err != nil {
		return client.Attachment{}, func() {}, false
	}
	return attachment(file, header), func() { _ = file.Close() }, true
}

func attachment(file multipart.File, header *multipart.FileHeader) client.Attachment {
	return client.Attachment{
		Filename:    header.Filename,
		ContentType: header.Header.Get("Content-Type"),
		Content:     file,
	}
}

func blank(s string) bool {
	return strings.TrimSpace(s) == ""
}

// HandleDocumentQA asks a question about an uploaded document. An empty document id uses the default document.
func (h *HandlerService) HandleDocumentQA(w http.ResponseWriter, r *http.Request) {
	s, ok := h.formSession(w, r)
	if !ok {
		return
	}

	question := r.FormValue("question")
	if blank(question) {
		h.RenderError(w, r, "Please enter a question.")
		return
	}
	documentID := strings.TrimSpace(r.FormValue("document_id"))

	ticket := h.Results.Begin(s.ID, string(client.CapabilityDocumentQA))
	res := h.ApiClient.DocumentQA(r.Context(), question, documentID)
	complete(h, w, r, ticket, res)
}

// HandleVisualQA asks a question about an image
func (h *HandlerService) HandleVisualQA(w http.ResponseWriter, r *http.Request) {
	s, ok := h.formSession(w, r)
	if !ok {
		return
	}

	question := r.FormValue("question")
	if blank(question) {
		h.RenderError(w, r, "Please enter a question about the image.")
		return
	}
	image, closeFile, ok := formFile(r, "image")
	if !ok {
		h.RenderError(w, r, "Please select an image.")
		return
	}
	defer closeFile()

	ticket := h.Results.Begin(s.ID, string(client.CapabilityVisualQA))
	res := h.ApiClient.VisualQA(r.Context(), question, image)
	complete(h, w, r, ticket, res)
}

// HandleSummarize summarizes text. A missing or invalid max_length uses the default length.
func (h *HandlerService) HandleSummarize(w http.ResponseWriter, r *http.Request) {
	s, ok := h.formSession(w, r)
	if !ok {
		return
	}

	text := r.FormValue("text")
	if blank(text) {
		h.RenderError(w, r, "Please enter text to summarize.")
		return
	}
	maxLength, _ := strconv.Atoi(r.FormValue("max_length")) // 0 is sent as the default length

	ticket := h.Results.Begin(s.ID, string(client.CapabilitySummarize))
	res := h.ApiClient.Summarize(r.Context(), text, maxLength)
	complete(h, w, r, ticket, res)
}

// HandleTextToSpeech converts text to speech with the selected voice
func (h *HandlerService) HandleTextToSpeech(w http.ResponseWriter, r *http.Request) {
	s, ok := h.formSession(w, r)
	if !ok {
		return
	}

	text := r.FormValue("text")
	if blank(text) {
		h.RenderError(w, r, "Please enter text to convert.")
		return
	}

	ticket := h.Results.Begin(s.ID, string(client.CapabilityTextToSpeech))
	res := h.ApiClient.TextToSpeech(r.Context(), text, r.FormValue("voice"))
	complete(h, w, r, ticket, res)
}

// HandleUpload uploads a document. The returned document id prefills the document Q&A form.
func (h *HandlerService) HandleUpload(w http.ResponseWriter, r *http.Request) {
	s, ok := h.formSession(w, r)
	if !ok {
		return
	}

	file, closeFile, ok := formFile(r, "file")
	if !ok {
		h.RenderError(w, r, "Please select a file to upload.")
		return
	}
	defer closeFile()

	if !client.SupportedUpload(file.Filename) {
		h.RenderError(w, r, "Unsupported file type. Please upload a PDF, DOCX, TXT or MD file.")
		return
	}

	ticket := h.Results.Begin(s.ID, string(client.CapabilityUpload))
	res := h.ApiClient.UploadFile(r.Context(), file)

	var documentID string
	if res.OK() {
		documentID = res.Data.DocumentID.String()
	}
	finish(h, w, r, ticket, res, h.Results.CompleteUpload(ticket, res, documentID))
}
