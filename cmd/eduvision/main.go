// eduvision is a command line client for the EduVision backend API.
//
// It calls the same client package as the UI server and prints the backend's JSON responses.
package main

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"os/signal"
	"time"

	"github.com/spf13/cobra"

	"github.com/eduvision-ai/eduvision/internal/client"
	"github.com/eduvision-ai/eduvision/internal/config"
	"github.com/eduvision-ai/eduvision/internal/logger"
	"github.com/eduvision-ai/eduvision/internal/version"

	// root certificates for containers without a system trust store
	_ "golang.org/x/crypto/x509roots/fallback"
)

// app holds the global flags and the objects built from them
type app struct {
	apiBaseURL string
	timeout    time.Duration
	color      string
	verbose    bool

	client  *client.Client
	printer *printer
	logger  *slog.Logger
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := newRootCmd(&app{}).ExecuteContext(ctx); err != nil {
		stop()
		os.Exit(1)
	}
}

func defaultAPIBaseURL() string {
	if url := os.Getenv("API_BASE_URL"); url != "" {
		return url
	}
	environment := os.Getenv("ENVIRONMENT")
	if environment == "" {
		environment = "dev"
	}
	return config.BaseURLForEnvironment(environment)
}

func newRootCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "eduvision",
		Short: "EduVision API command line client",
		Long: `Calls the EduVision backend API and prints the JSON responses.

The backend is selected with --api, API_BASE_URL, or the default for ENVIRONMENT (dev: ` + config.DevelopmentAPIBaseURL + `).`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.init(cmd)
		},
	}

	cmd.Version = version.Get().String()

	flags := cmd.PersistentFlags()
	flags.StringVar(&a.apiBaseURL, "api", defaultAPIBaseURL(), "backend base URL")
	flags.DurationVar(&a.timeout, "timeout", client.DefaultTimeout, "request timeout")
	flags.StringVar(&a.color, "color", colorAuto, "colourise output: auto, always or never")
	flags.BoolVarP(&a.verbose, "verbose", "v", false, "log requests to stderr")

	cmd.AddCommand(
		newHealthCmd(a),
		newAskCmd(a),
		newVisualCmd(a),
		newSummarizeCmd(a),
		newSpeakCmd(a),
		newUploadCmd(a),
		newAnalyticsCmd(a),
		newHistoryCmd(a),
	)

	return cmd
}

func (a *app) init(cmd *cobra.Command) error {
	p, err := newPrinter(cmd.OutOrStdout(), a.color)
	if err != nil {
		return err
	}
	a.printer = p
	a.logger = logger.InitCLILogger(cmd.ErrOrStderr(), a.verbose)
	a.client = client.NewClient(a.apiBaseURL,
		client.WithTimeout(a.timeout),
		client.WithLogger(a.logger),
	)

	a.logger.Debug("using EduVision API", slog.String("url", a.client.BaseURL()))
	return nil
}

// errFailed is returned by commands whose failure has already been printed
var errFailed = errors.New("request failed")
