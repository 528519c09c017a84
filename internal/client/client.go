// the client package is used by the UI handlers and the CLI to call the EduVision backend API.
//
// Each backend capability is a single best-effort request/response round trip (no retries, no caching).
// Processing capabilities (document and visual Q&A, summarization, text-to-speech, upload) never return an error:
// failures are folded into a Result carrying the capability's user facing message, with the technical detail kept for logging.
// Informational capabilities (health, analytics, conversations) return the error to the caller (see client/errors.go).
package client

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"strings"
	"time"

	"github.com/eduvision-ai/eduvision/internal/metrics"
)

const (
	DefaultTimeout = 30 * time.Second

	// maximum size of a backend response body
	maxResponseSize = 10 << 20
)

// Client handles communication with the EduVision backend API
type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     *slog.Logger
}

// Option configures a Client
type Option func(*Client)

// WithHTTPClient replaces the default http client (its Timeout is left as supplied)
func WithHTTPClient(httpClient *http.Client) Option {
	return func(c *Client) {
		c.httpClient = httpClient
	}
}

// WithTimeout sets the per-request timeout of the default http client
func WithTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		c.httpClient.Timeout = timeout
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) {
		c.logger = logger
	}
}

func NewClient(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: DefaultTimeout,
		},
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// BaseURL returns the backend origin used by the client
func (c *Client) BaseURL() string {
	return c.baseURL
}

type formField struct {
	name  string
	value string
}

// filePart is a binary form field
type filePart struct {
	field      string
	attachment Attachment
}

// Attachment is a file sent to the backend as a multipart part
type Attachment struct {
	Filename    string
	ContentType string
	Content     io.Reader
}

func (a Attachment) missing() bool {
	return a.Content == nil || a.Filename == ""
}

// postMultipart sends the fields (in order) and an optional file to the capability's path and returns the validated response body
func (c *Client) postMultipart(ctx context.Context, capability Capability, fields []formField, file *filePart) ([]byte, *ClientError) {
	body := &bytes.Buffer{}
	mw := multipart.NewWriter(body)

	for _, f := range fields {
		if err := mw.WriteField(f.name, f.value); err != nil {
			return nil, NewClientInternalError(err, fmt.Sprintf("writing %s form field", f.name))
		}
	}

	if file != nil {
		if err := writeFilePart(mw, file); err != nil {
			return nil, NewClientInternalError(err, fmt.Sprintf("writing %s form file", file.field))
		}
	}

	if err := mw.Close(); err != nil {
		return nil, NewClientInternalError(err, "closing multipart body")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+capability.Path(), body)
	if err != nil {
		return nil, NewClientInternalError(err, fmt.Sprintf("creating %s request", capability))
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.Header.Set("Accept", "application/json")

	return c.do(req, capability)
}

func writeFilePart(mw *multipart.Writer, file *filePart) error {
	contentType := file.attachment.ContentType
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", fmt.Sprintf(`form-data; name="%s"; filename="%s"`,
		escapeQuotes(file.field), escapeQuotes(file.attachment.Filename)))
	h.Set("Content-Type", contentType)

	part, err := mw.CreatePart(h)
	if err != nil {
		return err
	}
	_, err = io.Copy(part, file.attachment.Content)
	return err
}

var quoteEscaper = strings.NewReplacer("\\", "\\\\", `"`, "\\\"")

func escapeQuotes(s string) string {
	return quoteEscaper.Replace(s)
}

// get issues a GET to the capability's path
func (c *Client) get(ctx context.Context, capability Capability, query string) ([]byte, *ClientError) {
	url := c.baseURL + capability.Path()
	if query != "" {
		url += "?" + query
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, NewClientInternalError(err, fmt.Sprintf("creating %s request", capability))
	}
	req.Header.Set("Accept", "application/json")

	return c.do(req, capability)
}

// do executes the request, records metrics and returns the response body once it has passed the capability's schema.
func (c *Client) do(req *http.Request, capability Capability) ([]byte, *ClientError) {
	start := time.Now()
	metrics.ClientRequestsInFlight.WithLabelValues(string(capability)).Inc()
	defer metrics.ClientRequestsInFlight.WithLabelValues(string(capability)).Dec()

	body, clientErr := c.roundTrip(req, capability)

	metrics.ObserveClientRequest(string(capability), outcome(clientErr), time.Since(start))

	return body, clientErr
}

func (c *Client) roundTrip(req *http.Request, capability Capability) ([]byte, *ClientError) {
	res, err := c.httpClient.Do(req)
	if err != nil {
		return nil, NewClientConnectionError(err)
	}
	defer res.Body.Close()

	body, err := io.ReadAll(io.LimitReader(res.Body, maxResponseSize))
	if err != nil {
		return nil, NewClientConnectionError(err)
	}

	if res.StatusCode < 200 || res.StatusCode > 299 {
		return nil, NewClientApiError(res.StatusCode, body)
	}

	if err := validateResponse(capability, body); err != nil {
		return nil, NewClientParseError(err, fmt.Sprintf("validating %s response", capability))
	}

	return body, nil
}

// logFailure mirrors the failure into the client's log; callers render the user message
func (c *Client) logFailure(ctx context.Context, capability Capability, err *ClientError) {
	c.logger.LogAttrs(ctx, slog.LevelWarn, "backend call failed",
		slog.String("component", "client"),
		slog.String("capability", string(capability)),
		slog.String("kind", err.Kind.String()),
		slog.Int("status", err.StatusCode),
		slog.String("error", err.Error()),
	)
}

func outcome(err *ClientError) string {
	if err == nil {
		return metrics.OutcomeSuccess
	}
	switch err.Kind {
	case KindTransport:
		if err.StatusCode > 0 {
			return metrics.OutcomeAPIError
		}
		return metrics.OutcomeTransportError
	case KindParse:
		return metrics.OutcomeParseError
	case KindValidation:
		return metrics.OutcomeValidationError
	default:
		return metrics.OutcomeInternalError
	}
}
