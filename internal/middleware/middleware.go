package middleware

import (
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/jub0bs/cors"
	"golang.org/x/time/rate"

	"github.com/eduvision-ai/eduvision/internal/config"
	"github.com/eduvision-ai/eduvision/internal/logger"
	"github.com/eduvision-ai/eduvision/internal/templates"
)

// MaxRequestSizeHeader advertises the request body limit to clients
const MaxRequestSizeHeader = "EduVision-Max-Request-Size"

// NewCORS creates the CORS middleware for the /ui-api routes. It returns nil when no origins are configured.
func NewCORS(origins []string) (*cors.Middleware, error) {
	if len(origins) == 0 {
		return nil, nil
	}

	corsMiddleware, err := cors.NewMiddleware(cors.Config{
		Origins: origins,
		Methods: []string{
			http.MethodGet,
			http.MethodPost,
		},
		RequestHeaders: []string{
			"Content-Type",
			"HX-Current-URL",
			"HX-Request",
			"HX-Target",
			"HX-Trigger",
		},
		Credentialed:    true,
		MaxAgeInSeconds: config.CORSMaxAgeInSeconds,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create CORS middleware: %w", err)
	}
	return corsMiddleware, nil
}

// CORS returns a CORS middleware using the provided pre-built middleware instance (a nil instance disables CORS)
func CORS(middleware *cors.Middleware) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if middleware == nil {
			return next
		}
		return middleware.Wrap(next)
	}
}

// SecurityHeaders sets the response security headers.
// mediaOrigin is the backend origin, which serves the generated audio.
func SecurityHeaders(environment string, mediaOrigin string) func(http.Handler) http.Handler {
	csp := strings.Join([]string{
		"default-src 'self'",
		"script-src 'self' https://unpkg.com",
		"style-src 'self' 'unsafe-inline'", // highlighted JSON uses inline styles
		"img-src 'self' data: blob:",
		"media-src 'self' " + mediaOrigin,
		"frame-ancestors 'none'",
	}, "; ") + ";"

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {

			w.Header().Set("X-Content-Type-Options", "nosniff")

			// for legacy support
			w.Header().Set("X-Frame-Options", "DENY")

			w.Header().Set("Content-Security-Policy", csp)

			w.Header().Set("Referrer-Policy", "strict-origin-when-cross-origin")

			if environment == "prod" || environment == "staging" {
				w.Header().Set("Strict-Transport-Security", "max-age=31536000; includeSubDomains")
			}

			next.ServeHTTP(w, r)
		})
	}
}

// RequestSizeLimit limits the size of request bodies and adds the limit as a header for client awareness
func RequestSizeLimit(maxBytes int64) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {

			w.Header().Set(MaxRequestSizeHeader, strconv.FormatInt(maxBytes, 10))

			// Check Content-Length header first (if present)
			if r.ContentLength > maxBytes {
				reqLogger := logger.ContextRequestLogger(r.Context())

				reqLogger.Warn("Request size limit exceeded",
					slog.String("component", "RequestSizeLimit"),
					slog.Int64("content_length", r.ContentLength),
					slog.Int64("max_bytes", maxBytes),
				)

				logger.ContextWithLogAttrs(r.Context(),
					slog.Int64("content_length", r.ContentLength),
					slog.Int64("max_bytes", maxBytes),
				)

				respondWithAlert(w, r, http.StatusRequestEntityTooLarge,
					fmt.Sprintf("The request exceeds the maximum size of %d MB", maxBytes>>20))
				return
			}

			// bodies without a Content-Length are cut off by the reader; the handler reports the parse error
			r.Body = http.MaxBytesReader(w, r.Body, maxBytes)

			next.ServeHTTP(w, r)
		})
	}
}

// RateLimit limits requests per second. If requestsPerSecond <= 0, rate limiting is disabled.
func RateLimit(requestsPerSecond int32, burst int32) func(http.Handler) http.Handler {
	if requestsPerSecond <= 0 {
		return func(next http.Handler) http.Handler {
			return next
		}
	}

	limiter := rate.NewLimiter(rate.Limit(requestsPerSecond), int(burst))

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !limiter.Allow() {
				reqLogger := logger.ContextRequestLogger(r.Context())

				reqLogger.Warn("Rate limit exceeded",
					slog.String("component", "RateLimit"),
					slog.String("remote_addr", r.RemoteAddr),
				)

				logger.ContextWithLogAttrs(r.Context(),
					slog.String("remote_addr", r.RemoteAddr),
				)

				respondWithAlert(w, r, http.StatusTooManyRequests, "Too many requests. Please try again in a few moments.")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// respondWithAlert writes an error alert fragment.
// HTMX does not swap error responses, so they are sent with status 200 and the HX-Reswap header for HTMX requests.
func respondWithAlert(w http.ResponseWriter, r *http.Request, status int, message string) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if r.Header.Get("HX-Request") == "true" {
		w.Header().Set("HX-Reswap", "innerHTML")
		w.Header().Set("EduVision-Error-Status", strconv.Itoa(status))
		status = http.StatusOK
	}
	w.WriteHeader(status)

	if err := templates.ErrorAlert(message).Render(r.Context(), w); err != nil {
		logger.ContextRequestLogger(r.Context()).Error("Failed to render error alert", slog.String("error", err.Error()))
	}
}
