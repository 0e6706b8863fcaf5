package commands

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/iampreetdave-max/analyze-text/pkg/detector"
)

// DetectOptions holds command-line options for the detect command.
type DetectOptions struct {
	Output      string
	SampleSize  int
	ShowAll     bool
	WriteConfig string
}

// NewDetectCommand creates the detect command.
func NewDetectCommand() *cobra.Command {
	opts := &DetectOptions{}

	cmd := &cobra.Command{
		Use:   "detect <chat-export>",
		Short: "Detect the header format of a chat export",
		Long: `Analyze a chat export to identify its message header dialect.

Samples lines from the file and tests them against the known header
formats. Reports the detected format with a confidence score, evidence
about day/month date ordering, and a ready-to-use YAML configuration
snippet.

Optionally generates a starter config file with --write-config.

Example:
  chatlyze detect chat.txt
  chatlyze detect --sample 500 big-export.txt
  chatlyze detect --write-config chatlyze.yaml chat.txt
  chatlyze detect -w chatlyze.yaml chat.txt`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDetect(cmd, args, opts)
		},
	}

	cmd.Flags().StringVarP(&opts.Output, "output", "o", "text", "Output format (text|json)")
	cmd.Flags().IntVarP(&opts.SampleSize, "sample", "n", 100, "Number of lines to sample")
	cmd.Flags().BoolVar(&opts.ShowAll, "all", false, "Show all detected formats, not just the best match")
	cmd.Flags().StringVarP(&opts.WriteConfig, "write-config", "w", "", "Write starter config to file (will not overwrite)")

	return cmd
}

func runDetect(cmd *cobra.Command, args []string, opts *DetectOptions) error {
	exportFile := args[0]
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	// Check file exists
	if _, err := os.Stat(exportFile); os.IsNotExist(err) {
		return fmt.Errorf("export file not found: %s", exportFile)
	}

	// Create detector
	d := detector.New(detector.WithSampleSize(opts.SampleSize))

	// Run detection
	result, err := d.DetectFromFile(ctx, exportFile)
	if err != nil {
		return fmt.Errorf("detection failed: %w", err)
	}

	// Write config file if requested
	if opts.WriteConfig != "" {
		if err := writeStarterConfig(result, exportFile, opts.WriteConfig); err != nil {
			return err
		}
	}

	// Output results
	switch opts.Output {
	case "json":
		return outputDetectJSON(result, exportFile, opts)
	default:
		return outputDetectText(result, exportFile, opts)
	}
}

func outputDetectText(result *detector.DetectionResult, exportFile string, opts *DetectOptions) error {
	fmt.Println("=== Header Format Detection ===")
	fmt.Println()
	fmt.Printf("File: %s\n", exportFile)
	fmt.Printf("Lines sampled: %d\n", result.SampledLines)
	fmt.Printf("Header lines: %d\n", result.HeaderLines)
	fmt.Println()

	if !result.HasMatch() {
		fmt.Println("No header format detected.")
		fmt.Println()
		fmt.Println("Tip: The export may use an uncommon header dialect.")
		fmt.Println("Check the first few lines manually and add a custom pattern to your config.")
		return nil
	}

	// Show best match
	best := result.BestMatch()
	fmt.Printf("Detected Format: %s\n", best.Format.Name)
	fmt.Printf("Confidence: %.1f%% (%d/%d lines matched)\n",
		best.Confidence*100, best.MatchCount, result.SampledLines)
	fmt.Println()
	fmt.Printf("Sample match:\n  %s\n", best.SampleLine)
	fmt.Printf("Parsed as: %s\n", best.ParsedTime.Format("2006-01-02 15:04:05"))
	fmt.Println()

	// Date ordering evidence
	if result.DateOrderNote != "" {
		fmt.Printf("Note: %s\n", result.DateOrderNote)
		fmt.Println()
	}
	if result.TwelveHourShare > 0 {
		fmt.Printf("12-hour clock: %.0f%% of headers carry an AM/PM marker\n", result.TwelveHourShare*100)
		fmt.Println()
	}

	// YAML snippet
	fmt.Println("--- Configuration snippet (copy to your config file) ---")
	fmt.Println()
	fmt.Println("patterns:")
	fmt.Printf("  - name: '%s'\n", best.Format.Name)
	fmt.Printf("    pattern: '%s'\n", best.Format.PatternStr)
	if best.Format.Example != "" {
		fmt.Printf("    example: '%s'\n", best.Format.Example)
	}
	fmt.Println()

	// Show alternatives if requested
	if opts.ShowAll && len(result.Matches) > 1 {
		fmt.Println("--- Alternative formats detected ---")
		for i, m := range result.Matches[1:] {
			fmt.Printf("%d. %s (%.1f%% confidence)\n", i+2, m.Format.Name, m.Confidence*100)
			fmt.Printf("   pattern: '%s'\n", m.Format.PatternStr)
		}
		fmt.Println()
	}

	return nil
}

// JSONMatch represents a format match in JSON output.
type JSONMatch struct {
	Name       string  `json:"name"`
	Pattern    string  `json:"pattern"`
	Example    string  `json:"example,omitempty"`
	Confidence float64 `json:"confidence"`
	MatchCount int     `json:"match_count"`
	SampleLine string  `json:"sample_line"`
	ParsedTime string  `json:"parsed_time,omitempty"`
}

// JSONOutput represents the full JSON output.
type JSONOutput struct {
	File            string      `json:"file"`
	Matches         []JSONMatch `json:"matches"`
	SampledLines    int         `json:"sampled_lines"`
	HeaderLines     int         `json:"header_lines"`
	DateOrderNote   string      `json:"date_order_note,omitempty"`
	TwelveHourShare float64     `json:"twelve_hour_share"`
}

func outputDetectJSON(result *detector.DetectionResult, exportFile string, opts *DetectOptions) error {
	output := JSONOutput{
		File:            exportFile,
		SampledLines:    result.SampledLines,
		HeaderLines:     result.HeaderLines,
		DateOrderNote:   result.DateOrderNote,
		TwelveHourShare: result.TwelveHourShare,
		Matches:         make([]JSONMatch, 0),
	}

	matches := result.Matches
	if !opts.ShowAll && len(matches) > 1 {
		matches = matches[:1] // Only show best match
	}

	for _, m := range matches {
		jm := JSONMatch{
			Name:       m.Format.Name,
			Pattern:    m.Format.PatternStr,
			Example:    m.Format.Example,
			Confidence: m.Confidence,
			MatchCount: m.MatchCount,
			SampleLine: m.SampleLine,
		}
		if !m.ParsedTime.IsZero() {
			jm.ParsedTime = m.ParsedTime.Format("2006-01-02 15:04:05")
		}
		output.Matches = append(output.Matches, jm)
	}

	encoder := json.NewEncoder(os.Stdout)
	encoder.SetIndent("", "  ")
	return encoder.Encode(output)
}

// writeStarterConfig generates a starter config file with the detected format.
func writeStarterConfig(result *detector.DetectionResult, exportFile, configPath string) error {
	// Check if file already exists
	if _, err := os.Stat(configPath); err == nil {
		return fmt.Errorf("config file already exists: %s (will not overwrite)", configPath)
	}

	// Need a detected format to generate config
	if !result.HasMatch() {
		return fmt.Errorf("cannot generate config: no header format detected")
	}

	best := result.BestMatch()

	// Generate the config content
	content := generateStarterConfig(exportFile, best)

	// Write the file
	// #nosec G306 - config file doesn't need restrictive permissions
	if err := os.WriteFile(configPath, []byte(content), 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	fmt.Printf("Wrote starter config to: %s\n\n", configPath)
	return nil
}

// generateStarterConfig creates a YAML config template.
func generateStarterConfig(exportFile string, match *detector.FormatMatch) string {
	// Get absolute path for the export if possible
	absExportFile := exportFile
	if abs, err := filepath.Abs(exportFile); err == nil {
		absExportFile = abs
	}

	example := ""
	if match.Format.Example != "" {
		example = fmt.Sprintf("    example: '%s'\n", match.Format.Example)
	}

	return fmt.Sprintf(`# ChatLyze Configuration
# Generated by: chatlyze detect
# Export: %s
# Detected format: %s (%.0f%% confidence)

# Extra header patterns, tried after the built-in formats.
# Each pattern needs exactly four capture groups: date, time, author, body.
# The detected format below is built in and listed for reference only.
patterns:
  - name: '%s'
    pattern: '%s'
%s
# Placeholder substrings recognized in message bodies.
# Entries extend the built-in set; matching is case-insensitive.
placeholders:
  media:
    - "<Media omitted>"
  deleted:
    - "This message was deleted"

# Local analysis history. An empty path selects ~/.chatlyze/history.db
# (or the CHATLYZE_ARCHIVE environment variable).
archive:
  path: ""
  keep: 50

# Webhooks receive the JSON report after each analysis.
# webhooks:
#   - name: team-hook
#     url: https://hooks.example.com/chatlyze
#     token: ${CHATLYZE_WEBHOOK_TOKEN}
#     trigger: always
#     timeout: 10s
webhooks: []
`, absExportFile, match.Format.Name, match.Confidence*100,
		match.Format.Name,
		match.Format.PatternStr,
		example)
}
