package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"

	"github.com/jonathan/skincare-intake/internal/config"
	"github.com/jonathan/skincare-intake/internal/intake"
	"github.com/jonathan/skincare-intake/internal/observability"
	"github.com/jonathan/skincare-intake/internal/report"
	"github.com/jonathan/skincare-intake/internal/webhook"
	"github.com/spf13/cobra"
)

var (
	submitEmail      string
	submitConcerns   string
	submitImages     []string
	submitWebhookURL string
	submitFormat     string
	submitStyle      string
	submitVerbose    bool
)

var submitCmd = &cobra.Command{
	Use:   "submit",
	Short: "Send a submission to the webhook from the command line",
	Long:  "Validate an email, concerns and 1-3 photos, post them to the recommendation webhook and print the formatted reply.",
	RunE:  runSubmit,
}

func init() {
	submitCmd.Flags().StringVar(&submitEmail, "email", "", "Email address (required)")
	submitCmd.Flags().StringVar(&submitConcerns, "concerns", "", "Skin concerns (required)")
	submitCmd.Flags().StringArrayVar(&submitImages, "image", nil, "Path to a photo; repeat for up to 3")
	submitCmd.Flags().StringVar(&submitWebhookURL, "webhook-url", "", "Webhook URL (overrides WEBHOOK_URL)")
	submitCmd.Flags().StringVarP(&submitFormat, "format", "f", formatTerminal, "Output format: markdown, html or terminal")
	submitCmd.Flags().StringVar(&submitStyle, "style", "", "Terminal style (defaults to RENDER_STYLE or dark)")
	submitCmd.Flags().BoolVarP(&submitVerbose, "verbose", "v", false, "Print submission and response summaries to stderr")

	_ = submitCmd.MarkFlagRequired("email")
	_ = submitCmd.MarkFlagRequired("concerns")
	_ = submitCmd.MarkFlagRequired("image")
	rootCmd.AddCommand(submitCmd)
}

func runSubmit(cmd *cobra.Command, _ []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	env := config.FromEnv()
	cfg := env.MergeWithDefaults(config.Defaults())
	if submitWebhookURL != "" {
		cfg.WebhookURL = submitWebhookURL
	}

	var printer *observability.Printer
	if submitVerbose {
		printer = observability.NewPrinter(cmd.ErrOrStderr())
	}

	return submit(ctx, cmd.OutOrStdout(), printer, cfg)
}

// submit runs one submission end to end. printer may be nil.
func submit(ctx context.Context, out io.Writer, printer *observability.Printer, cfg config.Config) error {
	limits := cfg.Limits()

	images, err := intake.LoadImages(ctx, submitImages, limits)
	if err != nil {
		return userError(err)
	}

	sub := intake.NewSubmission(submitEmail, submitConcerns, images)
	if err := sub.Validate(limits); err != nil {
		return userError(err)
	}
	if printer != nil {
		printer.PrintSubmission(sub)
	}

	if cfg.WebhookURL == "" {
		return fmt.Errorf("no webhook URL: pass --webhook-url or set WEBHOOK_URL")
	}

	opts := webhook.DefaultOptions()
	opts.Timeout = cfg.WebhookTimeout()
	client := webhook.NewClient(nil, opts)

	resp, err := client.Submit(ctx, cfg.WebhookURL, sub)
	if err != nil {
		if printer != nil {
			printer.PrintError("webhook", err)
		}
		return fmt.Errorf("submission failed: %w", err)
	}

	doc := report.Parse(resp.Body)
	if printer != nil {
		printer.PrintWebhookResponse(resp, doc)
		printer.PrintDocument(doc)
	}

	rendered, err := formatReport(doc.Markdown(), submitFormat, terminalStyle(submitStyle))
	if err != nil {
		return err
	}
	_, err = io.WriteString(out, rendered)
	return err
}

// userError prefers the message meant for people over the internal one.
func userError(err error) error {
	if msg := intake.UserMessage(err); msg != "" {
		return fmt.Errorf("%s (%w)", msg, err)
	}
	return err
}
