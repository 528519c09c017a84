package server

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/jub0bs/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/eduvision-ai/eduvision/internal/auth"
	"github.com/eduvision-ai/eduvision/internal/client"
	"github.com/eduvision-ai/eduvision/internal/config"
	"github.com/eduvision-ai/eduvision/internal/handlers"
	"github.com/eduvision-ai/eduvision/internal/logger"
	"github.com/eduvision-ai/eduvision/internal/middleware"
	"github.com/eduvision-ai/eduvision/internal/results"
	"github.com/eduvision-ai/eduvision/internal/session"
	"github.com/eduvision-ai/eduvision/internal/templates"
)

// how often idle session results are pruned
const resultPruneInterval = 10 * time.Minute

type Server struct {
	router      *chi.Mux
	config      *config.Config
	logger      *slog.Logger
	authService *auth.AuthService
	apiClient   *client.Client
	results     *results.Store
	cors        *cors.Middleware
}

// NewServer wires the UI server: the API client, the session manager, the result store and the routes
func NewServer(cfg *config.Config, logger *slog.Logger) (*Server, error) {
	policy, err := results.ParsePolicy(cfg.ResultPolicy)
	if err != nil {
		return nil, err
	}
	store := results.NewStore(policy)

	authService, err := auth.NewAuthService(session.NewManager(cfg.SessionSecret, cfg.SessionTTL, cfg.Environment), store)
	if err != nil {
		return nil, fmt.Errorf("failed to create auth service: %w", err)
	}

	corsMiddleware, err := middleware.NewCORS(cfg.AllowedOrigins)
	if err != nil {
		return nil, err
	}

	s := &Server{
		router:      chi.NewRouter(),
		config:      cfg,
		logger:      logger,
		authService: authService,
		apiClient: client.NewClient(cfg.APIBaseURL,
			client.WithTimeout(cfg.ClientTimeout),
			client.WithLogger(logger),
		),
		results: store,
		cors:    corsMiddleware,
	}

	s.setupMiddleware()
	s.RegisterRoutes(s.router)
	return s, nil
}

// Router returns the configured router (used by tests)
func (s *Server) Router() http.Handler {
	return s.router
}

// RegisterRoutes registers the UI routes
func (s *Server) RegisterRoutes(router *chi.Mux) {

	handlerService := &handlers.HandlerService{
		AuthService: s.authService,
		ApiClient:   s.apiClient,
		Results:     s.results,
		Environment: s.config.Environment,
	}

	// Static assets (no auth required)
	router.Handle("/static/*", http.StripPrefix("/static/", http.FileServer(http.FS(templates.Static()))))

	// Probes and metrics
	router.Get("/health/live", handlerService.HandleLiveness)
	router.Get("/health/ready", handlerService.HandleReadiness)
	router.Handle("/metrics", promhttp.Handler())

	// Public routes (no auth required)
	router.Get("/", handlerService.HandleHome)
	router.Get("/signin", handlerService.HandleSignIn)
	router.With(middleware.RequestSizeLimit(formRequestSize)).Post("/signin", handlerService.HandleSignInPost)
	router.Get("/access-denied", handlerService.HandleAccessDenied)

	// Protected routes (require a session)
	router.Group(func(r chi.Router) {
		r.Use(s.authService.RequireSession)

		r.Post("/signout", handlerService.HandleSignOut)
		r.Get("/features", handlerService.HandleFeatures)

		r.With(s.authService.RequireRole(auth.RoleAdmin)).Get("/admin/dashboard", handlerService.HandleAdminDashboard)
		r.With(s.authService.RequireRole(auth.RoleAdmin, auth.RoleTeacher)).Get("/teacher/dashboard", handlerService.HandleTeacherDashboard)
	})

	// UI API endpoints (used by the feature forms and the dashboard smoke tests).
	// CORS runs before the session check so preflight requests are answered.
	router.Route("/ui-api", func(r chi.Router) {
		r.Use(middleware.CORS(s.cors))
		r.Use(s.authService.RequireSession)
		r.Use(middleware.RateLimit(s.config.RateLimitRPS, s.config.RateLimitBurst))

		r.Group(func(r chi.Router) {
			r.Use(middleware.RequestSizeLimit(formRequestSize))
			r.Post("/document-qa", handlerService.HandleDocumentQA)
			r.Post("/summarize", handlerService.HandleSummarize)
			r.Post("/text-to-speech", handlerService.HandleTextToSpeech)
		})

		r.Group(func(r chi.Router) {
			r.Use(middleware.RequestSizeLimit(s.config.MaxUploadSize))
			r.Post("/visual-qa", handlerService.HandleVisualQA)
			r.Post("/upload", handlerService.HandleUpload)
		})

		r.Group(func(r chi.Router) {
			r.Use(s.authService.RequireRole(auth.RoleAdmin, auth.RoleTeacher))
			r.Use(middleware.RequestSizeLimit(formRequestSize))
			r.Post("/smoke/{capability}", handlerService.HandleSmokeTest)
		})
	})
}

// maximum body size of the text-only forms
const formRequestSize = 1 << 20

func (s *Server) setupMiddleware() {
	s.router.Use(chimiddleware.RequestID)
	s.router.Use(chimiddleware.RealIP)
	s.router.Use(logger.RequestLogging(s.logger))
	s.router.Use(chimiddleware.Recoverer)
	s.router.Use(chimiddleware.Timeout(config.HandlerTimeout))
	s.router.Use(middleware.SecurityHeaders(s.config.Environment, s.config.APIBaseURL))
}

// Start the UI server and block until ctx is cancelled or the server fails
func (s *Server) Start(ctx context.Context) error {
	addr := fmt.Sprintf("%s:%d", s.config.Host, s.config.Port)

	server := &http.Server{
		Addr:         addr,
		Handler:      s.router,
		ReadTimeout:  s.config.ReadTimeout,
		WriteTimeout: s.config.WriteTimeout,
		IdleTimeout:  s.config.IdleTimeout,
	}

	go s.pruneResults(ctx)

	// Start server in a goroutine
	serverErr := make(chan error, 1)
	go func() {
		s.logger.Info("UI server listening",
			slog.String("address", addr),
			slog.String("api_base_url", s.config.APIBaseURL),
			slog.String("result_policy", s.results.Policy().String()),
		)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			serverErr <- err
		}
	}()

	// Wait for context cancellation or server error
	select {
	case err := <-serverErr:
		return fmt.Errorf("server failed to start: %w", err)
	case <-ctx.Done():
		s.logger.Info("Shutting down UI server...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), config.ServerShutdownTimeout)
		defer cancel()

		if err := server.Shutdown(shutdownCtx); err != nil {
			s.logger.Error("Server forced to shutdown", slog.String("error", err.Error()))
			return err
		}
	}

	return nil
}

// pruneResults drops the results of sessions that have been idle for longer than the session lifetime
func (s *Server) pruneResults(ctx context.Context) {
	ticker := time.NewTicker(resultPruneInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if removed := s.results.Prune(s.config.SessionTTL); removed > 0 {
				s.logger.Debug("Pruned idle session results", slog.Int("sessions", removed))
			}
		}
	}
}
