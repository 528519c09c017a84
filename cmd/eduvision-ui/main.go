package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/eduvision-ai/eduvision/internal/config"
	"github.com/eduvision-ai/eduvision/internal/logger"
	"github.com/eduvision-ai/eduvision/internal/server"
	"github.com/eduvision-ai/eduvision/internal/version"

	// root certificates for containers without a system trust store
	_ "golang.org/x/crypto/x509roots/fallback"
)

func main() {
	cmd := &cobra.Command{
		Use:   "eduvision-ui",
		Short: "EduVision web user interface",
		Long:  `Web UI for the EduVision AI services: document and visual Q&A, summarization, text-to-speech and uploads`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run()
		},
	}

	cmd.Version = version.Get().String()

	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.NewConfig()
	if err != nil {
		slog.Error("Failed to load UI configuration", slog.String("error", err.Error()))
		return err
	}

	serverLogger := logger.InitLogger(logger.ParseLogLevel(cfg.LogLevel), cfg.Environment)
	slog.SetDefault(serverLogger)

	serverLogger.Info("Starting UI server",
		slog.String("version", version.Get().Version),
		slog.String("environment", cfg.Environment),
	)

	s, err := server.NewServer(cfg, serverLogger)
	if err != nil {
		serverLogger.Error("Failed to create UI server", slog.String("error", err.Error()))
		return err
	}

	// Set up graceful shutdown handling
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := s.Start(ctx); err != nil {
		serverLogger.Error("UI server error", slog.String("error", err.Error()))
		return err
	}

	serverLogger.Info("UI server shutdown complete")
	return nil
}
