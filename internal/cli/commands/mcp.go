package commands

import (
	"github.com/spf13/cobra"

	"github.com/iampreetdave-max/analyze-text/internal/mcp"
)

// NewMCPCommand creates the mcp command.
func NewMCPCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "mcp",
		Short: "Serve analysis tools over the Model Context Protocol",
		Long: `Run a Model Context Protocol server on stdin/stdout.

Exposes chat export analysis as MCP tools:
  - chatlyze_analyze:    full analysis report for an export file
  - chatlyze_info:       quick summary (participants, message count, date range)
  - chatlyze_best_lines: highest scoring lines across participants

Configure it in an MCP client as a stdio server running 'chatlyze mcp'.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			server := mcp.NewServer(Version)
			if ctx := cmd.Context(); ctx != nil {
				return server.ServeContext(ctx)
			}
			return server.Serve()
		},
	}
}
