package commands

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/iampreetdave-max/analyze-text/pkg/analyzer"
	"github.com/iampreetdave-max/analyze-text/pkg/archive"
	"github.com/iampreetdave-max/analyze-text/pkg/config"
	"github.com/iampreetdave-max/analyze-text/pkg/parser"
	"github.com/iampreetdave-max/analyze-text/pkg/report"
	"github.com/iampreetdave-max/analyze-text/pkg/webhook"
)

// ExitCode is set by commands to indicate the result
var ExitCode = 0

// AnalyzeOptions holds command-line options for the analyze command.
type AnalyzeOptions struct {
	Output  string
	Config  string
	OutFile string
	Save    bool
	Verbose bool
	Quiet   bool

	// Webhook options
	WebhookURL     string
	WebhookToken   string
	WebhookTrigger string
}

// NewAnalyzeCommand creates the analyze command.
func NewAnalyzeCommand() *cobra.Command {
	opts := &AnalyzeOptions{}

	cmd := &cobra.Command{
		Use:   "analyze <chat-export>...",
		Short: "Analyze a chat export",
		Long: `Analyze one or more chat export files and report conversation statistics.

Multiple files are treated as chunks of the same chat and merged in
chronological order before analysis.

Reports:
  - Per-participant message, word, emoji, media, and link counts
  - Sentiment, questions, response times
  - Champions (message champion, night owl, conversation starter, ...)
  - Daily and hourly activity patterns

Exit codes:
  0 - Analysis completed
  1 - No messages recognized in the export
  2 - Configuration or runtime error`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAnalyze(cmd, args, opts)
		},
	}

	// Flags
	cmd.Flags().StringVarP(&opts.Output, "output", "o", "text", "Output format (text|json|csv)")
	cmd.Flags().StringVar(&opts.Config, "config", "", "Path to config file")
	cmd.Flags().StringVar(&opts.OutFile, "out", "", "Write report to file instead of stdout")
	cmd.Flags().BoolVar(&opts.Save, "save", false, "Save the run to the local archive")
	cmd.Flags().BoolVarP(&opts.Verbose, "verbose", "v", false, "Show best lines and daily activity")
	cmd.Flags().BoolVarP(&opts.Quiet, "quiet", "q", false, "Summary only, no details")

	// Webhook flags
	cmd.Flags().StringVar(&opts.WebhookURL, "webhook-url", "", "Webhook endpoint URL")
	cmd.Flags().StringVar(&opts.WebhookToken, "webhook-token", "", "Bearer token for webhook auth")
	cmd.Flags().StringVar(&opts.WebhookTrigger, "webhook-trigger", "always", "When to fire webhook (always|never)")

	return cmd
}

func runAnalyze(cmd *cobra.Command, args []string, opts *AnalyzeOptions) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	// Load configuration if given, otherwise run with built-in defaults
	cfg := config.DefaultConfig()
	if opts.Config != "" {
		loaded, err := config.Load(ctx, opts.Config)
		if err != nil {
			return fmt.Errorf("loading config: %w", err)
		}
		cfg = loaded
	}

	// Create parser with any configured extra header patterns
	var parserOpts []parser.Option
	if formats := cfg.HeaderFormats(); formats != nil {
		parserOpts = append(parserOpts, parser.WithExtraFormats(formats))
	}
	p := parser.New(parserOpts...)

	messages, err := p.ParseFiles(args)
	if err != nil {
		return err
	}

	source := strings.Join(args, ", ")

	if len(messages) == 0 {
		// The empty report is still printed so scripted callers get a
		// well-formed document either way.
		fmt.Fprintf(os.Stderr, "Warning: no messages recognized in %s\n", source)
		ExitCode = 1
	}

	// Run analysis
	engine := analyzer.New(
		analyzer.WithMediaPlaceholders(cfg.Placeholders.Media),
		analyzer.WithDeletedMarkers(cfg.Placeholders.Deleted),
	)
	analysis := engine.Analyze(messages)

	// Create report
	rep := report.NewReport(analysis, source)

	// Create formatter
	formatter, err := createFormatter(opts)
	if err != nil {
		return err
	}

	// Output report
	out := os.Stdout
	if opts.OutFile != "" {
		f, err := os.Create(opts.OutFile) // #nosec G304 -- user-provided output path is expected
		if err != nil {
			return fmt.Errorf("creating output file: %w", err)
		}
		defer f.Close()
		out = f
	}
	if err := formatter.Format(ctx, rep, out); err != nil {
		return fmt.Errorf("formatting output: %w", err)
	}

	// Send webhooks (errors logged but don't fail analysis)
	sendWebhooks(ctx, cfg, opts, rep)

	// Archive the run when asked to, or when the config names an archive
	if opts.Save || cfg.Archive.Path != "" {
		if err := saveRun(ctx, cfg, source, messages, rep); err != nil {
			fmt.Fprintf(os.Stderr, "Warning: archiving run failed: %v\n", err)
		}
	}

	return nil
}

func createFormatter(opts *AnalyzeOptions) (report.Formatter, error) {
	formatOpts := report.FormatOptions{
		Verbose: opts.Verbose,
		Quiet:   opts.Quiet,
	}

	switch opts.Output {
	case "text":
		return report.NewTextFormatter(formatOpts), nil
	case "json":
		return report.NewJSONFormatter(formatOpts), nil
	case "csv":
		return report.NewCSVFormatter(formatOpts), nil
	default:
		return nil, fmt.Errorf("unknown output format %q (use text, json, or csv)", opts.Output)
	}
}

// sendWebhooks sends the report to all configured webhooks.
// Errors are logged to stderr but don't fail the analysis.
func sendWebhooks(ctx context.Context, cfg *config.Config, opts *AnalyzeOptions, rep *report.Report) {
	// Collect webhooks from config and CLI
	webhooks := collectWebhooks(cfg, opts)

	if len(webhooks) == 0 {
		return
	}

	client := webhook.NewClient()

	for _, wh := range webhooks {
		// Check trigger condition
		if !shouldFireWebhook(wh.Trigger) {
			continue
		}

		// Send webhook
		resp := client.Send(ctx, rep, webhook.SendOptions{
			URL:     wh.URL,
			Token:   wh.Token,
			Timeout: wh.Timeout,
		})

		// Log result
		name := wh.Name
		if name == "" {
			name = wh.URL
		}

		if resp.Success() {
			fmt.Fprintf(os.Stderr, "Webhook %s: sent (%d, %s)\n", name, resp.StatusCode, resp.Duration)
		} else {
			fmt.Fprintf(os.Stderr, "Webhook %s: failed (%v)\n", name, resp.Error)
		}
	}
}

// collectWebhooks merges config file webhooks with CLI webhook.
func collectWebhooks(cfg *config.Config, opts *AnalyzeOptions) []config.WebhookConfig {
	webhooks := make([]config.WebhookConfig, 0, len(cfg.Webhooks)+1)

	// Add config file webhooks
	webhooks = append(webhooks, cfg.Webhooks...)

	// Add CLI webhook if specified
	if opts.WebhookURL != "" {
		trigger := config.WebhookTrigger(opts.WebhookTrigger)
		if trigger == "" {
			trigger = config.WebhookTriggerAlways
		}

		webhooks = append(webhooks, config.WebhookConfig{
			Name:    "cli",
			URL:     opts.WebhookURL,
			Token:   opts.WebhookToken,
			Trigger: trigger,
			Timeout: config.DefaultWebhookTimeout,
		})
	}

	return webhooks
}

// shouldFireWebhook determines if a webhook should fire based on its trigger.
func shouldFireWebhook(trigger config.WebhookTrigger) bool {
	return trigger != config.WebhookTriggerNever
}

// saveRun records the analysis in the local history database.
func saveRun(ctx context.Context, cfg *config.Config, source string, messages []parser.Message, rep *report.Report) error {
	path, err := archivePath(cfg)
	if err != nil {
		return err
	}

	store, err := archive.Open(path)
	if err != nil {
		return err
	}
	defer store.Close()

	id, err := store.Save(ctx, source, parser.Info(messages), rep)
	if err != nil {
		return err
	}

	// Prune old runs so the archive doesn't grow without bound
	keep := cfg.Archive.Keep
	if keep == 0 {
		keep = config.DefaultArchiveKeep
	}
	removed, err := store.Prune(ctx, keep)
	if err != nil {
		return err
	}

	if removed > 0 {
		fmt.Fprintf(os.Stderr, "Saved run %s (pruned %d old runs)\n", shortID(id), removed)
	} else {
		fmt.Fprintf(os.Stderr, "Saved run %s\n", shortID(id))
	}
	return nil
}
