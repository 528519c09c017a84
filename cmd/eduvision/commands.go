package main

import (
	"fmt"
	"io"
	"mime"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/eduvision-ai/eduvision/internal/client"
)

// printResult prints a processing capability result and turns a failure into errFailed so the exit status is non-zero
func printResult[T any](a *app, res client.Result[T]) error {
	if err := a.printer.print(res); err != nil {
		return err
	}
	if !res.OK() {
		if res.Cause != nil {
			a.logger.Debug("request failed", "kind", res.Cause.Kind.String(), "error", res.Cause.Error())
			return fmt.Errorf("%s: %s", res.Error, res.Cause.UserError())
		}
		return errFailed
	}
	return nil
}

// openAttachment opens a file for upload. The content type is guessed from the extension.
func openAttachment(path string) (client.Attachment, func(), error) {
	f, err := os.Open(path)
	if err != nil {
		return client.Attachment{}, nil, err
	}
	return client.Attachment{
		Filename:    filepath.Base(path),
		ContentType: mime.TypeByExtension(filepath.Ext(path)),
		Content:     f,
	}, func() { _ = f.Close() }, nil
}

// textArg returns the joined arguments, or stdin when the only argument is "-"
func textArg(cmd *cobra.Command, args []string) (string, error) {
	if len(args) == 1 && args[0] == "-" {
		data, err := io.ReadAll(cmd.InOrStdin())
		if err != nil {
			return "", fmt.Errorf("failed to read stdin: %w", err)
		}
		return string(data), nil
	}
	return strings.Join(args, " "), nil
}

func newHealthCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "health",
		Short: "Check the backend status",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			health, err := a.client.HealthCheck(cmd.Context())
			if err != nil {
				return err
			}
			if err := a.printer.printJSON(health.Raw); err != nil {
				return err
			}
			if !health.Healthy() {
				return fmt.Errorf("backend status: %s", health.Status)
			}
			return nil
		},
	}
}

func newAskCmd(a *app) *cobra.Command {
	var documentID string

	cmd := &cobra.Command{
		Use:   "ask QUESTION...",
		Short: "Ask a question about an uploaded document",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			question, err := textArg(cmd, args)
			if err != nil {
				return err
			}
			return printResult(a, a.client.DocumentQA(cmd.Context(), question, documentID))
		},
	}
	cmd.Flags().StringVarP(&documentID, "document-id", "d", "", "document to ask about (default "+client.DefaultDocumentID+")")
	return cmd
}

func newVisualCmd(a *app) *cobra.Command {
	var imagePath string

	cmd := &cobra.Command{
		Use:   "visual QUESTION...",
		Short: "Ask a question about an image",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			question, err := textArg(cmd, args)
			if err != nil {
				return err
			}
			image, closeFile, err := openAttachment(imagePath)
			if err != nil {
				return err
			}
			defer closeFile()

			return printResult(a, a.client.VisualQA(cmd.Context(), question, image))
		},
	}
	cmd.Flags().StringVarP(&imagePath, "image", "i", "", "image file")
	_ = cmd.MarkFlagRequired("image")
	return cmd
}

func newSummarizeCmd(a *app) *cobra.Command {
	var maxLength int

	cmd := &cobra.Command{
		Use:   "summarize TEXT... | -",
		Short: "Summarize text (use - to read stdin)",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			text, err := textArg(cmd, args)
			if err != nil {
				return err
			}
			return printResult(a, a.client.Summarize(cmd.Context(), text, maxLength))
		},
	}
	cmd.Flags().IntVarP(&maxLength, "max-length", "m", client.DefaultSummaryMaxLength, "maximum summary length in words")
	return cmd
}

func newSpeakCmd(a *app) *cobra.Command {
	var voice string

	cmd := &cobra.Command{
		Use:   "speak TEXT... | -",
		Short: "Convert text to speech",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			text, err := textArg(cmd, args)
			if err != nil {
				return err
			}

			res := a.client.TextToSpeech(cmd.Context(), text, voice)
			if err := printResult(a, res); err != nil {
				return err
			}

			switch audio := res.Data.Audio(); audio.Kind {
			case client.AudioRemote:
				fmt.Fprintf(cmd.ErrOrStderr(), "audio: %s\n", a.client.ResolveURL(audio))
			case client.AudioSpeech:
				fmt.Fprintf(cmd.ErrOrStderr(), "audio: synthesize locally: %q\n", audio.Text)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&voice, "voice", client.DefaultVoice, "voice: "+strings.Join(client.Voices, ", "))
	return cmd
}

func newUploadCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "upload FILE",
		Short: "Upload a document (" + strings.Join(client.SupportedUploadExtensions, ", ") + ")",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if !client.SupportedUpload(args[0]) {
				return fmt.Errorf("unsupported file type %q", filepath.Ext(args[0]))
			}
			file, closeFile, err := openAttachment(args[0])
			if err != nil {
				return err
			}
			defer closeFile()

			return printResult(a, a.client.UploadFile(cmd.Context(), file))
		},
	}
}

func newAnalyticsCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "analytics",
		Short: "Show platform usage analytics",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			analytics, err := a.client.GetAnalytics(cmd.Context())
			if err != nil {
				return err
			}
			return a.printer.printJSON(analytics.Raw)
		},
	}
}

func newHistoryCmd(a *app) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show recent conversations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			conversations, err := a.client.GetConversations(cmd.Context(), limit)
			if err != nil {
				return err
			}
			if conversations == nil {
				conversations = []client.Conversation{}
			}
			return a.printer.print(conversations)
		},
	}
	cmd.Flags().IntVarP(&limit, "limit", "n", client.DefaultConversationLimit, "number of conversations")
	return cmd
}
