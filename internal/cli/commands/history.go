package commands

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/iampreetdave-max/analyze-text/pkg/archive"
	"github.com/iampreetdave-max/analyze-text/pkg/config"
)

// HistoryOptions holds command-line options for the history command.
type HistoryOptions struct {
	Config string
	Limit  int
	Keep   int
}

// NewHistoryCommand creates the history command with its subcommands.
func NewHistoryCommand() *cobra.Command {
	opts := &HistoryOptions{}

	cmd := &cobra.Command{
		Use:   "history",
		Short: "Browse archived analysis runs",
		Long: `Browse analysis runs recorded with 'chatlyze analyze --save'.

The archive location is resolved in order:
  1. archive.path in the config file
  2. The CHATLYZE_ARCHIVE environment variable
  3. ~/.chatlyze/history.db`,
	}

	cmd.PersistentFlags().StringVar(&opts.Config, "config", "", "Path to config file")

	cmd.AddCommand(newHistoryListCommand(opts))
	cmd.AddCommand(newHistoryShowCommand(opts))
	cmd.AddCommand(newHistoryPruneCommand(opts))

	return cmd
}

func newHistoryListCommand(opts *HistoryOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List archived runs, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runHistoryList(cmd, opts)
		},
	}
	cmd.Flags().IntVar(&opts.Limit, "limit", 20, "Maximum number of runs to list (0 for all)")
	return cmd
}

func newHistoryShowCommand(opts *HistoryOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "show <run-id>",
		Short: "Show the stored report for a run",
		Long: `Show the stored report for an archived run.

The run id may be abbreviated to any unique prefix, such as the short id
printed by 'history list'.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runHistoryShow(cmd, args[0], opts)
		},
	}
}

func newHistoryPruneCommand(opts *HistoryOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "prune",
		Short: "Delete old runs, keeping the newest",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runHistoryPrune(cmd, opts)
		},
	}
	cmd.Flags().IntVar(&opts.Keep, "keep", config.DefaultArchiveKeep, "Number of newest runs to keep")
	return cmd
}

func runHistoryList(cmd *cobra.Command, opts *HistoryOptions) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	store, err := openArchive(ctx, opts.Config)
	if err != nil {
		return err
	}
	defer store.Close()

	runs, err := store.List(ctx, opts.Limit)
	if err != nil {
		return err
	}

	if len(runs) == 0 {
		fmt.Println("No archived runs. Use 'chatlyze analyze --save' to record one.")
		return nil
	}

	fmt.Printf("%-10s %-20s %-9s %-13s %s\n", "ID", "SAVED", "MESSAGES", "PARTICIPANTS", "SOURCE")
	for _, run := range runs {
		fmt.Printf("%-10s %-20s %-9d %-13d %s\n",
			shortID(run.ID),
			run.CreatedAt.Local().Format("2006-01-02 15:04:05"),
			run.TotalMessages,
			run.Participants,
			run.Source,
		)
	}
	return nil
}

func runHistoryShow(cmd *cobra.Command, id string, opts *HistoryOptions) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	store, err := openArchive(ctx, opts.Config)
	if err != nil {
		return err
	}
	defer store.Close()

	run, err := store.Get(ctx, id)
	if err != nil {
		return err
	}

	fmt.Printf("Run:      %s\n", run.ID)
	fmt.Printf("Saved:    %s\n", run.CreatedAt.Local().Format("2006-01-02 15:04:05"))
	fmt.Printf("Source:   %s\n", run.Source)
	fmt.Printf("Messages: %d from %d participants\n", run.TotalMessages, run.Participants)
	fmt.Println()
	fmt.Println(run.Report)
	return nil
}

func runHistoryPrune(cmd *cobra.Command, opts *HistoryOptions) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	store, err := openArchive(ctx, opts.Config)
	if err != nil {
		return err
	}
	defer store.Close()

	removed, err := store.Prune(ctx, opts.Keep)
	if err != nil {
		return err
	}

	if removed == 0 {
		fmt.Println("Nothing to prune.")
	} else {
		fmt.Printf("Pruned %d run(s).\n", removed)
	}
	return nil
}

// openArchive opens the history database named by the config (or defaults).
func openArchive(ctx context.Context, configPath string) (*archive.Store, error) {
	cfg := config.DefaultConfig()
	if configPath != "" {
		loaded, err := config.Load(ctx, configPath)
		if err != nil {
			return nil, fmt.Errorf("loading config: %w", err)
		}
		cfg = loaded
	}

	path, err := archivePath(cfg)
	if err != nil {
		return nil, err
	}
	return archive.Open(path)
}

// archivePath resolves the history database location: config first, then
// the environment, then the per-user default.
func archivePath(cfg *config.Config) (string, error) {
	if cfg.Archive.Path != "" {
		return cfg.Archive.Path, nil
	}
	if path := os.Getenv(config.EnvArchivePath); path != "" {
		return path, nil
	}
	return archive.DefaultPath()
}

// shortID returns the first 8 characters of a run id for display.
func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
