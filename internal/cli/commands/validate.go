package commands

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/iampreetdave-max/analyze-text/pkg/config"
)

// NewValidateCommand creates the validate command.
func NewValidateCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "validate <config-file>",
		Short: "Validate a configuration file",
		Long: `Validate a ChatLyze configuration file without running analysis.

Checks:
  - YAML syntax
  - Header pattern validity and capture group counts
  - Webhook URLs and triggers
  - Archive settings`,
		Args: cobra.ExactArgs(1),
		RunE: runValidate,
	}
}

func runValidate(cmd *cobra.Command, args []string) error {
	configPath := args[0]
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	fmt.Printf("Validating %s...\n", configPath)

	// Load and validate config
	cfg, err := config.Load(ctx, configPath)
	if err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	// Report what we found
	fmt.Printf("\nConfiguration valid!\n")
	fmt.Printf("  Extra patterns:     %d\n", len(cfg.Patterns))
	fmt.Printf("  Media placeholders: %d\n", len(cfg.Placeholders.Media))
	fmt.Printf("  Deleted markers:    %d\n", len(cfg.Placeholders.Deleted))
	fmt.Printf("  Webhooks:           %d\n", len(cfg.Webhooks))

	if len(cfg.Patterns) > 0 {
		fmt.Printf("\nPatterns:\n")
		for i, p := range cfg.Patterns {
			fmt.Printf("  %d. %s\n", i+1, p.Name)
			if p.Example != "" {
				fmt.Printf("     e.g. %s\n", p.Example)
			}
		}
	}

	if len(cfg.Webhooks) > 0 {
		fmt.Printf("\nWebhooks:\n")
		for i, wh := range cfg.Webhooks {
			name := wh.Name
			if name == "" {
				name = wh.URL
			}
			fmt.Printf("  %d. %s (trigger: %s, timeout: %s)\n", i+1, name, wh.Trigger, wh.Timeout)
		}
	}

	if cfg.Archive.Path != "" {
		fmt.Printf("\nArchive: %s (keep %d)\n", cfg.Archive.Path, cfg.Archive.Keep)
	}

	return nil
}
