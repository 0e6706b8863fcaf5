// Package detector identifies which header dialect a chat export uses.
package detector

import (
	"bufio"
	"context"
	"os"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/iampreetdave-max/analyze-text/pkg/parser"
)

// DetectionResult holds the result of analyzing an export file.
type DetectionResult struct {
	Matches       []FormatMatch // Formats that matched, sorted by confidence descending
	SampledLines  int           // Number of lines sampled
	HeaderLines   int           // Lines matching the best format
	DateOrderNote string        // Evidence about day/month field ordering

	// TwelveHourShare is the fraction of matched header lines carrying an
	// AM/PM marker.
	TwelveHourShare float64
}

// FormatMatch represents a header format that matched with its confidence.
type FormatMatch struct {
	Format     *parser.HeaderFormat
	Confidence float64   // 0.0 to 1.0 (share of sampled lines that are headers)
	MatchCount int       // Number of lines that matched
	SampleLine string    // Example line that matched
	ParsedTime time.Time // Resolved timestamp from the sample
}

// Detector analyzes export files to identify their header format.
//
// Chat exports mix header lines with continuation lines, so even a clean
// file rarely reaches 100% confidence; the score ranks formats against
// each other rather than judging the file.
type Detector struct {
	formats    []*parser.HeaderFormat
	sampleSize int
}

// Option configures the Detector.
type Option func(*Detector)

// WithSampleSize sets the number of lines to sample (default 100).
func WithSampleSize(n int) Option {
	return func(d *Detector) {
		if n > 0 {
			d.sampleSize = n
		}
	}
}

// New creates a Detector over the built-in header formats.
func New(opts ...Option) *Detector {
	d := &Detector{
		formats:    parser.DefaultFormats(),
		sampleSize: 100,
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// DetectFromFile analyzes an export file and returns detected formats.
func (d *Detector) DetectFromFile(ctx context.Context, path string) (*DetectionResult, error) {
	lines, err := d.sampleFile(ctx, path)
	if err != nil {
		return nil, err
	}
	return d.DetectFromLines(lines), nil
}

// DetectFromLines analyzes a slice of export lines.
func (d *Detector) DetectFromLines(lines []string) *DetectionResult {
	result := &DetectionResult{
		SampledLines: len(lines),
	}

	if len(lines) == 0 {
		return result
	}

	type formatStats struct {
		format     *parser.HeaderFormat
		matchCount int
		sampleLine string
		parsedTime time.Time
	}

	stats := make(map[string]*formatStats)

	var headerCount, meridiemCount int
	var sawDayFirst, sawMonthFirst bool

	for _, line := range lines {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		lineIsHeader := false
		for _, format := range d.formats {
			groups := format.Pattern.FindStringSubmatch(line)
			if groups == nil {
				continue
			}

			ts, err := parser.ResolveTimestamp(groups[1], groups[2])
			if err != nil {
				continue
			}

			if !lineIsHeader {
				lineIsHeader = true
				headerCount++

				lower := strings.ToLower(groups[2])
				if strings.Contains(lower, "am") || strings.Contains(lower, "pm") {
					meridiemCount++
				}
				if a, b, ok := dateFields(groups[1]); ok {
					if a > 12 {
						sawDayFirst = true
					} else if b > 12 {
						sawMonthFirst = true
					}
				}
			}

			key := format.Name
			if stats[key] == nil {
				stats[key] = &formatStats{
					format:     format,
					sampleLine: line,
					parsedTime: ts,
				}
			}
			stats[key].matchCount++
		}
	}

	for _, s := range stats {
		result.Matches = append(result.Matches, FormatMatch{
			Format:     s.format,
			Confidence: float64(s.matchCount) / float64(len(lines)),
			MatchCount: s.matchCount,
			SampleLine: s.sampleLine,
			ParsedTime: s.parsedTime,
		})
	}

	// Sort by confidence descending; prefer longer patterns on ties since
	// they are more specific.
	sort.Slice(result.Matches, func(i, j int) bool {
		if result.Matches[i].Confidence != result.Matches[j].Confidence {
			return result.Matches[i].Confidence > result.Matches[j].Confidence
		}
		return len(result.Matches[i].Format.PatternStr) > len(result.Matches[j].Format.PatternStr)
	})

	if len(result.Matches) > 0 {
		result.HeaderLines = result.Matches[0].MatchCount
	}

	if headerCount > 0 {
		result.TwelveHourShare = float64(meridiemCount) / float64(headerCount)
		result.DateOrderNote = dateOrderNote(sawDayFirst, sawMonthFirst)
	}

	return result
}

// dateOrderNote summarizes the day/month ordering evidence found in the
// sampled headers.
func dateOrderNote(sawDayFirst, sawMonthFirst bool) string {
	switch {
	case sawDayFirst && sawMonthFirst:
		return "Mixed date ordering evidence in sample; verify the export manually."
	case sawDayFirst:
		return "Day-first dates confirmed (day values above 12 present)."
	case sawMonthFirst:
		return "Month-first dates confirmed (second field values above 12 present)."
	default:
		return "All sampled date fields are 12 or less; dates are ambiguous and parse day-first."
	}
}

// dateFields splits a captured date into its first two numeric fields.
func dateFields(dateStr string) (a, b int, ok bool) {
	parts := strings.Split(strings.ReplaceAll(dateStr, ".", "/"), "/")
	if len(parts) != 3 {
		return 0, 0, false
	}
	a, errA := strconv.Atoi(parts[0])
	b, errB := strconv.Atoi(parts[1])
	if errA != nil || errB != nil {
		return 0, 0, false
	}
	return a, b, true
}

// sampleFile reads up to sampleSize non-empty lines from a file.
// Uses simple head sampling for efficiency.
func (d *Detector) sampleFile(_ context.Context, path string) ([]string, error) {
	// #nosec G304 - path is provided by user via CLI
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	var lines []string
	scanner := bufio.NewScanner(file)

	for scanner.Scan() && len(lines) < d.sampleSize {
		line := scanner.Text()
		if strings.TrimSpace(line) != "" {
			lines = append(lines, line)
		}
	}

	if err := scanner.Err(); err != nil {
		return nil, err
	}

	return lines, nil
}

// BestMatch returns the highest confidence match, or nil if none found.
func (r *DetectionResult) BestMatch() *FormatMatch {
	if len(r.Matches) == 0 {
		return nil
	}
	return &r.Matches[0]
}

// HasMatch returns true if at least one format matched.
func (r *DetectionResult) HasMatch() bool {
	return len(r.Matches) > 0
}
