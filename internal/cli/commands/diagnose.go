package commands

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"strings"
	"unicode/utf8"

	"github.com/spf13/cobra"

	"github.com/iampreetdave-max/analyze-text/pkg/config"
	"github.com/iampreetdave-max/analyze-text/pkg/detector"
)

// DiagnoseOptions holds options for the diagnose command
type DiagnoseOptions struct {
	Verbose bool
	Config  string
	Sample  int
}

// DiagnosticResult represents the result of a single diagnostic check
type DiagnosticResult struct {
	Check    string
	Status   string // "ok", "warning", "error"
	Message  string
	Details  []string
	Suggests []string
}

// NewDiagnoseCommand creates the diagnose command
func NewDiagnoseCommand() *cobra.Command {
	opts := &DiagnoseOptions{}

	cmd := &cobra.Command{
		Use:   "diagnose <chat-export>",
		Short: "Diagnose common export file issues",
		Long: `Diagnose common problems with a chat export before analyzing it.

This command checks the export file for common problems:
- File existence and accessibility
- Text encoding (UTF-8 vs UTF-16, byte order marks)
- Share of lines that look like message headers
- Header dialect and date ordering ambiguity
- Config file validity and pattern coverage (with --config)

Example:
  chatlyze diagnose chat.txt
  chatlyze diagnose -v chat.txt             # verbose output
  chatlyze diagnose --config my.yaml chat.txt`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if ctx == nil {
				ctx = context.Background()
			}
			return runDiagnose(ctx, args[0], opts)
		},
	}

	cmd.Flags().BoolVarP(&opts.Verbose, "verbose", "v", false, "Show detailed diagnostic output")
	cmd.Flags().StringVar(&opts.Config, "config", "", "Also check a config file against the export")
	cmd.Flags().IntVarP(&opts.Sample, "sample", "n", 100, "Number of lines to sample")

	return cmd
}

func runDiagnose(ctx context.Context, exportPath string, opts *DiagnoseOptions) error {
	results := []DiagnosticResult{}

	// 1. Check export file existence
	result := checkExportExists(exportPath)
	results = append(results, result)
	if result.Status == "error" {
		printDiagnostics(results, opts)
		return nil
	}

	// 2. Check text encoding
	result = checkEncoding(exportPath)
	results = append(results, result)
	if result.Status == "error" {
		printDiagnostics(results, opts)
		return nil
	}

	// 3. Run format detection once; the remaining checks read from it
	d := detector.New(detector.WithSampleSize(opts.Sample))
	detection, err := d.DetectFromFile(ctx, exportPath)
	if err != nil {
		results = append(results, DiagnosticResult{
			Check:   "Header Detection",
			Status:  "error",
			Message: fmt.Sprintf("Detection failed: %v", err),
		})
		printDiagnostics(results, opts)
		return nil
	}

	// 4. Check how much of the file looks like message headers
	results = append(results, checkHeaderRatio(detection))

	// 5. Check the header dialect
	results = append(results, checkDialect(detection, opts))

	// 6. Check date ordering evidence
	results = append(results, checkDateOrder(detection))

	// 7. Check config file if given
	if opts.Config != "" {
		results = append(results, checkConfig(ctx, opts.Config, exportPath)...)
	}

	printDiagnostics(results, opts)
	return nil
}

func checkExportExists(path string) DiagnosticResult {
	result := DiagnosticResult{
		Check: "Export File",
	}

	info, err := os.Stat(path)
	if os.IsNotExist(err) {
		result.Status = "error"
		result.Message = fmt.Sprintf("Export file not found: %s", path)
		result.Suggests = []string{
			"Check the file path is correct",
			"Export the chat again and note where the app saves the file",
		}
		return result
	}
	if err != nil {
		result.Status = "error"
		result.Message = fmt.Sprintf("Cannot access export file: %v", err)
		result.Suggests = []string{"Check file permissions"}
		return result
	}
	if info.IsDir() {
		result.Status = "error"
		result.Message = "Path is a directory, not a file"
		return result
	}
	if info.Size() == 0 {
		result.Status = "error"
		result.Message = "Export file is empty"
		return result
	}

	result.Status = "ok"
	result.Message = fmt.Sprintf("Found: %s (%d bytes)", path, info.Size())
	return result
}

func checkEncoding(path string) DiagnosticResult {
	result := DiagnosticResult{
		Check: "Encoding",
	}

	data, err := os.ReadFile(path) // #nosec G304 -- user-provided export path is expected
	if err != nil {
		result.Status = "error"
		result.Message = fmt.Sprintf("Cannot read file: %v", err)
		return result
	}

	// UTF-16 first: ASCII text encoded as UTF-16LE still passes a UTF-8
	// validity check because NUL bytes are valid UTF-8.
	if len(data) >= 2 && ((data[0] == 0xFF && data[1] == 0xFE) || (data[0] == 0xFE && data[1] == 0xFF)) {
		result.Status = "error"
		result.Message = "File looks UTF-16 encoded (byte order mark found)"
		result.Suggests = []string{
			"Convert to UTF-8 first: iconv -f UTF-16 -t UTF-8 export.txt > export-utf8.txt",
		}
		return result
	}

	if !utf8.Valid(data) {
		result.Status = "error"
		result.Message = "File contains invalid UTF-8"
		result.Suggests = []string{
			"Check the export's encoding with 'file' and convert it with iconv",
		}
		return result
	}

	if bytes.HasPrefix(data, []byte{0xEF, 0xBB, 0xBF}) {
		result.Status = "warning"
		result.Message = "File starts with a UTF-8 byte order mark"
		result.Details = []string{
			"The first header line will not match until the mark is stripped",
		}
		return result
	}

	result.Status = "ok"
	result.Message = fmt.Sprintf("Valid UTF-8 (%d bytes)", len(data))
	return result
}

func checkHeaderRatio(detection *detector.DetectionResult) DiagnosticResult {
	result := DiagnosticResult{
		Check: "Header Ratio",
	}

	if detection.SampledLines == 0 {
		result.Status = "error"
		result.Message = "Export contains no non-empty lines"
		return result
	}

	if detection.HeaderLines == 0 {
		result.Status = "error"
		result.Message = fmt.Sprintf("No message headers in %d sampled lines", detection.SampledLines)
		result.Suggests = []string{
			"Run 'chatlyze detect' to see which formats were tried",
			"Add a custom pattern to your config if the dialect is unusual",
		}
		return result
	}

	ratio := float64(detection.HeaderLines) / float64(detection.SampledLines)
	if ratio < 0.25 {
		result.Status = "warning"
		result.Message = fmt.Sprintf("Only %d/%d sampled lines are message headers", detection.HeaderLines, detection.SampledLines)
		result.Details = []string{
			"A low ratio is normal for chats with long multi-line messages",
		}
		return result
	}

	result.Status = "ok"
	result.Message = fmt.Sprintf("Message headers in %d/%d sampled lines", detection.HeaderLines, detection.SampledLines)
	return result
}

func checkDialect(detection *detector.DetectionResult, opts *DiagnoseOptions) DiagnosticResult {
	result := DiagnosticResult{
		Check: "Header Dialect",
	}

	if !detection.HasMatch() {
		result.Status = "error"
		result.Message = "No known header dialect matched"
		result.Suggests = []string{
			"Add a custom pattern to your config file",
		}
		return result
	}

	best := detection.BestMatch()

	// Equal confidence means the sampled lines can't tell the formats apart
	if len(detection.Matches) > 1 && detection.Matches[1].Confidence == best.Confidence {
		result.Status = "warning"
		result.Message = fmt.Sprintf("Multiple dialects match equally well (%s, %s)",
			best.Format.Name, detection.Matches[1].Format.Name)
		result.Details = []string{
			"The first matching format wins during parsing",
		}
		return result
	}

	result.Status = "ok"
	result.Message = fmt.Sprintf("%s (%.1f%% confidence)", best.Format.Name, best.Confidence*100)
	if opts.Verbose {
		result.Details = []string{
			fmt.Sprintf("Sample: %s", truncate(best.SampleLine, 80)),
			fmt.Sprintf("Parsed as: %s", best.ParsedTime.Format("2006-01-02 15:04:05")),
		}
	}
	return result
}

func checkDateOrder(detection *detector.DetectionResult) DiagnosticResult {
	result := DiagnosticResult{
		Check: "Date Ordering",
	}

	note := detection.DateOrderNote
	if note == "" {
		result.Status = "ok"
		result.Message = "No slash or dot dates sampled"
		return result
	}

	result.Message = note
	if strings.Contains(note, "ambiguous") || strings.Contains(note, "Mixed") {
		result.Status = "warning"
		result.Suggests = []string{
			"Ambiguous dates parse day-first; verify a known message date in the output",
		}
	} else {
		result.Status = "ok"
	}
	return result
}

func checkConfig(ctx context.Context, configPath, exportPath string) []DiagnosticResult {
	results := []DiagnosticResult{}

	result := DiagnosticResult{
		Check: "Config File",
	}

	cfg, err := config.Load(ctx, configPath)
	if err != nil {
		result.Status = "error"
		result.Message = fmt.Sprintf("Failed to load config: %v", err)
		if strings.Contains(err.Error(), "yaml") {
			result.Suggests = []string{
				"Check YAML syntax - ensure proper indentation (use spaces, not tabs)",
			}
		}
		return append(results, result)
	}

	result.Status = "ok"
	result.Message = "Config file loaded"
	result.Details = []string{
		fmt.Sprintf("Extra patterns: %d", len(cfg.Patterns)),
		fmt.Sprintf("Webhooks: %d", len(cfg.Webhooks)),
	}
	results = append(results, result)

	if len(cfg.Patterns) > 0 {
		results = append(results, checkConfigPatterns(cfg, exportPath))
	}

	return results
}

// checkConfigPatterns tests configured patterns against the export sample.
func checkConfigPatterns(cfg *config.Config, exportPath string) DiagnosticResult {
	result := DiagnosticResult{
		Check: "Config Patterns",
	}

	data, err := os.ReadFile(exportPath) // #nosec G304 -- user-provided export path is expected
	if err != nil {
		result.Status = "warning"
		result.Message = fmt.Sprintf("Cannot read export: %v", err)
		return result
	}

	lines := strings.Split(string(data), "\n")
	if len(lines) > 100 {
		lines = lines[:100]
	}

	matched := 0
	for _, format := range cfg.HeaderFormats() {
		count := 0
		for _, line := range lines {
			if line == "" {
				continue
			}
			if format.Pattern.MatchString(line) {
				count++
			}
		}
		result.Details = append(result.Details, fmt.Sprintf("%s: %d line(s)", format.Name, count))
		if count > 0 {
			matched++
		}
	}

	if matched == 0 {
		result.Status = "warning"
		result.Message = "No configured pattern matches the sampled lines"
		result.Suggests = []string{
			"The built-in formats may already cover this export",
			"Run 'chatlyze detect' to see which format matches",
		}
	} else {
		result.Status = "ok"
		result.Message = fmt.Sprintf("%d/%d configured pattern(s) match", matched, len(cfg.Patterns))
	}
	return result
}

func printDiagnostics(results []DiagnosticResult, opts *DiagnoseOptions) {
	fmt.Println("=== ChatLyze Export Diagnostics ===")
	fmt.Println()

	okCount := 0
	warnCount := 0
	errCount := 0

	for _, r := range results {
		// Status icon
		var icon string
		switch r.Status {
		case "ok":
			icon = "PASS"
			okCount++
		case "warning":
			icon = "WARN"
			warnCount++
		case "error":
			icon = "FAIL"
			errCount++
		}

		fmt.Printf("[%s] %s\n", icon, r.Check)
		fmt.Printf("    %s\n", r.Message)

		if opts.Verbose || r.Status != "ok" {
			for _, d := range r.Details {
				fmt.Printf("      - %s\n", d)
			}
		}

		for _, s := range r.Suggests {
			fmt.Printf("      Hint: %s\n", s)
		}

		fmt.Println()
	}

	// Summary
	fmt.Println("---")
	fmt.Printf("Summary: %d passed, %d warnings, %d errors\n", okCount, warnCount, errCount)

	if errCount > 0 {
		fmt.Println("\nFix the errors above before running analysis.")
	} else if warnCount > 0 {
		fmt.Println("\nExport is usable but has warnings.")
	} else {
		fmt.Println("\nExport looks good!")
	}
}

func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen-3] + "..."
}
