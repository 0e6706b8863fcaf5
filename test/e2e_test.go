package test

import (
	"bytes"
	"context"
	"encoding/csv"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/iampreetdave-max/analyze-text/internal/cli/commands"
	"github.com/iampreetdave-max/analyze-text/pkg/analyzer"
	"github.com/iampreetdave-max/analyze-text/pkg/archive"
	"github.com/iampreetdave-max/analyze-text/pkg/config"
	"github.com/iampreetdave-max/analyze-text/pkg/detector"
	"github.com/iampreetdave-max/analyze-text/pkg/parser"
	"github.com/iampreetdave-max/analyze-text/pkg/report"
	"github.com/iampreetdave-max/analyze-text/pkg/webhook"
)

var (
	testDir  string
	rootOnce sync.Once
)

// chdir changes to the directory containing this test file.
// Test data files use paths relative to the test directory.
func chdir(t *testing.T) {
	t.Helper()
	rootOnce.Do(func() {
		// Get the directory containing this test file
		_, filename, _, _ := runtime.Caller(0)
		testDir = filepath.Dir(filename)
	})
	if err := os.Chdir(testDir); err != nil {
		t.Fatalf("Failed to chdir to test directory: %v", err)
	}
}

// requireFile fails the test if the required test file doesn't exist.
// We never skip tests - missing test data is a test failure.
func requireFile(t *testing.T, path string) {
	t.Helper()
	if _, err := os.Stat(path); os.IsNotExist(err) {
		t.Fatalf("Required test file not found: %s", path)
	}
}

// captureStdout runs fn and returns everything it wrote to stdout.
func captureStdout(t *testing.T, fn func() error) (string, error) {
	t.Helper()
	old := os.Stdout
	r, w, err := os.Pipe()
	if err != nil {
		t.Fatalf("Failed to create pipe: %v", err)
	}
	os.Stdout = w

	fnErr := fn()

	w.Close()
	os.Stdout = old

	var buf bytes.Buffer
	if _, err := buf.ReadFrom(r); err != nil {
		t.Fatalf("Failed to read captured output: %v", err)
	}
	return buf.String(), fnErr
}

// loadGroupTrip parses the group trip export shared by the pipeline tests.
func loadGroupTrip(t *testing.T) []parser.Message {
	t.Helper()
	chdir(t)
	exportFile := filepath.Join("testdata", "exports", "group_trip.txt")
	requireFile(t, exportFile)

	messages, err := parser.New().ParseFile(exportFile)
	if err != nil {
		t.Fatalf("Failed to parse export: %v", err)
	}
	return messages
}

// groupTripReport runs the full pipeline over the group trip export.
func groupTripReport(t *testing.T) *report.Report {
	t.Helper()
	messages := loadGroupTrip(t)
	analysis := analyzer.New().Analyze(messages)
	return report.NewReport(analysis, filepath.Join("testdata", "exports", "group_trip.txt"))
}

// ============================================================================
// Full Pipeline E2E Tests
// ============================================================================

// TestE2E_GroupTrip parses a three-day group chat export and checks the
// recovered chronology. The export carries an encryption banner, one
// multi-line message and known per-day message counts.
func TestE2E_GroupTrip(t *testing.T) {
	messages := loadGroupTrip(t)

	if len(messages) != 18 {
		t.Fatalf("Expected 18 messages, got %d", len(messages))
	}

	// The banner line before the first header must not become a message.
	first := messages[0]
	if first.Author != "Alice" {
		t.Errorf("Expected first message from Alice, got %q", first.Author)
	}
	if first.Body != "Morning everyone, trip planning starts today 🎉" {
		t.Errorf("Unexpected first body: %q", first.Body)
	}

	// Continuation lines fold into the message above them.
	packing := messages[13]
	if !strings.Contains(packing.Body, "bluetooth speaker and charger") {
		t.Errorf("Packing list continuation lines missing from body: %q", packing.Body)
	}
	if strings.Count(packing.Body, "\n") < 2 {
		t.Errorf("Expected 2 continuation lines in packing list, body: %q", packing.Body)
	}

	info := parser.Info(messages)
	if info.TotalMessages != 18 {
		t.Errorf("Expected 18 total messages, got %d", info.TotalMessages)
	}
	if info.Participants != 3 {
		t.Errorf("Expected 3 participants, got %d", info.Participants)
	}

	wantNames := []string{"Alice", "Bob", "Carol"}
	if len(info.ParticipantNames) != len(wantNames) {
		t.Fatalf("Expected participants %v, got %v", wantNames, info.ParticipantNames)
	}
	for i, name := range wantNames {
		if info.ParticipantNames[i] != name {
			t.Errorf("Participant %d: expected %q, got %q", i, name, info.ParticipantNames[i])
		}
	}

	wantStart := time.Date(2024, 3, 14, 8, 2, 0, 0, time.UTC)
	wantEnd := time.Date(2024, 3, 16, 7, 52, 0, 0, time.UTC)
	if !info.StartDate.Equal(wantStart) {
		t.Errorf("Expected start %v, got %v", wantStart, info.StartDate)
	}
	if !info.EndDate.Equal(wantEnd) {
		t.Errorf("Expected end %v, got %v", wantEnd, info.EndDate)
	}

	// 47h50m of chat truncates to one full day.
	if info.DurationDays != 1 {
		t.Errorf("Expected duration of 1 day, got %d", info.DurationDays)
	}
}

// TestE2E_GroupTrip_Analysis checks every statistics family against
// hand-counted values for the group trip export.
func TestE2E_GroupTrip_Analysis(t *testing.T) {
	messages := loadGroupTrip(t)
	analysis := analyzer.New().Analyze(messages)

	if analysis.TotalMessages != 18 {
		t.Errorf("Expected 18 messages, got %d", analysis.TotalMessages)
	}
	if analysis.TotalWords != 134 {
		t.Errorf("Expected 134 words, got %d", analysis.TotalWords)
	}
	if analysis.MediaCount != 2 {
		t.Errorf("Expected 2 media messages, got %d", analysis.MediaCount)
	}
	if analysis.DeletedMessages != 1 {
		t.Errorf("Expected 1 deleted message, got %d", analysis.DeletedMessages)
	}
	if analysis.LinkCount != 1 {
		t.Errorf("Expected 1 link, got %d", analysis.LinkCount)
	}

	if len(analysis.Users) != 3 {
		t.Fatalf("Expected 3 users, got %d", len(analysis.Users))
	}
	alice := analysis.Users["Alice"]
	bob := analysis.Users["Bob"]
	carol := analysis.Users["Carol"]
	if alice == nil || bob == nil || carol == nil {
		t.Fatalf("Missing user entries: %v", analysis.Users)
	}

	if alice.MessageCount != 6 || bob.MessageCount != 7 || carol.MessageCount != 5 {
		t.Errorf("Message counts: Alice=%d Bob=%d Carol=%d, want 6/7/5",
			alice.MessageCount, bob.MessageCount, carol.MessageCount)
	}
	if alice.WordCount != 61 || bob.WordCount != 49 || carol.WordCount != 24 {
		t.Errorf("Word counts: Alice=%d Bob=%d Carol=%d, want 61/49/24",
			alice.WordCount, bob.WordCount, carol.WordCount)
	}

	if bob.QuestionCount != 2 {
		t.Errorf("Expected 2 questions from Bob, got %d", bob.QuestionCount)
	}
	if carol.MediaCount != 2 {
		t.Errorf("Expected 2 media messages from Carol, got %d", carol.MediaCount)
	}
	if carol.LinkCount != 1 {
		t.Errorf("Expected 1 link from Carol, got %d", carol.LinkCount)
	}

	if alice.MorningScore != 3 {
		t.Errorf("Expected morning score 3 for Alice, got %d", alice.MorningScore)
	}
	if bob.NightOwlScore != 1 {
		t.Errorf("Expected night owl score 1 for Bob, got %d", bob.NightOwlScore)
	}
	if alice.ConversationStarters != 3 {
		t.Errorf("Expected 3 conversation starters for Alice, got %d", alice.ConversationStarters)
	}
	if bob.AvgResponseTime == nil {
		t.Error("Expected a response time for Bob, got nil")
	} else if *bob.AvgResponseTime <= 0 {
		t.Errorf("Expected positive response time for Bob, got %f", *bob.AvgResponseTime)
	}

	if bob.EmojiCount != 6 {
		t.Errorf("Expected 6 emojis from Bob, got %d", bob.EmojiCount)
	}
	if len(analysis.TopEmojis) < 2 {
		t.Fatalf("Expected at least 2 emoji entries, got %d", len(analysis.TopEmojis))
	}
	if analysis.TopEmojis[0].Emoji != "🎉" || analysis.TopEmojis[0].Count != 4 {
		t.Errorf("Expected top emoji 🎉 x4, got %s x%d",
			analysis.TopEmojis[0].Emoji, analysis.TopEmojis[0].Count)
	}
	if analysis.TopEmojis[1].Emoji != "😂" || analysis.TopEmojis[1].Count != 3 {
		t.Errorf("Expected second emoji 😂 x3, got %s x%d",
			analysis.TopEmojis[1].Emoji, analysis.TopEmojis[1].Count)
	}

	if analysis.HourlyActivity[8] != 6 {
		t.Errorf("Expected 6 messages in the 08:00 hour, got %d", analysis.HourlyActivity[8])
	}
	if analysis.WeekdayActivity[int(time.Thursday)] != 9 {
		t.Errorf("Expected 9 messages on Thursday, got %d", analysis.WeekdayActivity[int(time.Thursday)])
	}

	if len(analysis.DailyActivity) != 30 {
		t.Fatalf("Expected a 30-day activity window, got %d days", len(analysis.DailyActivity))
	}
	last := analysis.DailyActivity[29]
	if last.Date != "2024-03-16" || last.Count != 2 {
		t.Errorf("Expected window to end at 2024-03-16 with 2 messages, got %s with %d", last.Date, last.Count)
	}
	for _, day := range analysis.DailyActivity {
		if day.Date == "2024-03-14" && day.Count != 9 {
			t.Errorf("Expected 9 messages on 2024-03-14, got %d", day.Count)
		}
	}
}

// ============================================================================
// Output Format E2E Tests
// ============================================================================

func TestE2E_GroupTrip_TextOutput(t *testing.T) {
	rep := groupTripReport(t)

	var buf bytes.Buffer
	formatter := report.NewTextFormatter(report.FormatOptions{})
	if err := formatter.Format(context.Background(), rep, &buf); err != nil {
		t.Fatalf("Text formatting failed: %v", err)
	}
	out := buf.String()

	for _, want := range []string{
		"=== ChatLyze Analysis Report ===",
		"Total messages:   18",
		"Deleted messages: 1",
		"[USER] Bob",
		"[USER] Alice",
		"[USER] Carol",
		"Bob (7 messages sent)",
		"Alice (3 morning messages)",
		"Top Emojis",
		"Most active hour: 08:00",
		"Most active day: Thursday",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("Text output missing %q", want)
		}
	}

	// Best lines only appear in verbose mode.
	if strings.Contains(out, "Best lines:") {
		t.Error("Best lines shown without verbose mode")
	}

	buf.Reset()
	verbose := report.NewTextFormatter(report.FormatOptions{Verbose: true})
	if err := verbose.Format(context.Background(), rep, &buf); err != nil {
		t.Fatalf("Verbose text formatting failed: %v", err)
	}
	if !strings.Contains(buf.String(), "Best lines:") {
		t.Error("Verbose output missing best lines")
	}
}

func TestE2E_GroupTrip_QuietOutput(t *testing.T) {
	rep := groupTripReport(t)

	var buf bytes.Buffer
	formatter := report.NewTextFormatter(report.FormatOptions{Quiet: true})
	if err := formatter.Format(context.Background(), rep, &buf); err != nil {
		t.Fatalf("Quiet formatting failed: %v", err)
	}

	want := "ChatLyze: 18 messages from 3 users, 134 words, 2 media\n"
	if buf.String() != want {
		t.Errorf("Quiet output:\n got: %q\nwant: %q", buf.String(), want)
	}
}

func TestE2E_GroupTrip_JSONOutput(t *testing.T) {
	rep := groupTripReport(t)

	var buf bytes.Buffer
	formatter := report.NewJSONFormatter(report.FormatOptions{})
	if err := formatter.Format(context.Background(), rep, &buf); err != nil {
		t.Fatalf("JSON formatting failed: %v", err)
	}

	// Media placeholders keep their angle brackets in the payload.
	if strings.Contains(buf.String(), `\u003c`) {
		t.Error("JSON output HTML-escapes angle brackets")
	}
	if !strings.Contains(buf.String(), "<Media omitted>") {
		t.Error("JSON output missing the literal media placeholder")
	}

	var decoded report.Report
	if err := json.Unmarshal(buf.Bytes(), &decoded); err != nil {
		t.Fatalf("JSON output does not parse: %v", err)
	}

	if decoded.Summary.TotalMessages != 18 || decoded.Summary.TotalUsers != 3 {
		t.Errorf("Summary: got %d messages and %d users, want 18 and 3",
			decoded.Summary.TotalMessages, decoded.Summary.TotalUsers)
	}
	if decoded.Summary.TotalWords != 134 || decoded.Summary.MediaCount != 2 || decoded.Summary.DeletedMessages != 1 {
		t.Errorf("Summary counts: words=%d media=%d deleted=%d, want 134/2/1",
			decoded.Summary.TotalWords, decoded.Summary.MediaCount, decoded.Summary.DeletedMessages)
	}

	bob := decoded.Users["Bob"]
	if bob == nil {
		t.Fatal("JSON output missing Bob")
	}
	if bob.MessageCount != 7 {
		t.Errorf("Expected 7 messages for Bob, got %d", bob.MessageCount)
	}
	if bob.AvgMessageLength != 7.0 {
		t.Errorf("Expected average length 7.0 for Bob, got %f", bob.AvgMessageLength)
	}
	alice := decoded.Users["Alice"]
	if alice == nil {
		t.Fatal("JSON output missing Alice")
	}
	if alice.AvgMessageLength != 10.17 {
		t.Errorf("Expected average length 10.17 for Alice, got %f", alice.AvgMessageLength)
	}
	if len(alice.BestLines) == 0 {
		t.Error("Expected best lines for Alice")
	}

	if decoded.Metadata.AnalyzerVersion != report.AnalyzerVersion {
		t.Errorf("Expected analyzer version %s, got %s", report.AnalyzerVersion, decoded.Metadata.AnalyzerVersion)
	}
	if !strings.HasSuffix(decoded.Metadata.SourceFile, "group_trip.txt") {
		t.Errorf("Unexpected source file: %s", decoded.Metadata.SourceFile)
	}

	if len(decoded.TopEmojis) == 0 || decoded.TopEmojis[0].Emoji != "🎉" || decoded.TopEmojis[0].Count != 4 {
		t.Errorf("Unexpected top emojis: %v", decoded.TopEmojis)
	}
	if decoded.Activity.Hourly[8] != 6 {
		t.Errorf("Expected 6 messages in the 08:00 bucket, got %d", decoded.Activity.Hourly[8])
	}
}

func TestE2E_GroupTrip_CSVOutput(t *testing.T) {
	rep := groupTripReport(t)

	var buf bytes.Buffer
	formatter := report.NewCSVFormatter(report.FormatOptions{})
	if err := formatter.Format(context.Background(), rep, &buf); err != nil {
		t.Fatalf("CSV formatting failed: %v", err)
	}

	reader := csv.NewReader(&buf)
	reader.FieldsPerRecord = -1
	rows, err := reader.ReadAll()
	if err != nil {
		t.Fatalf("CSV output does not parse: %v", err)
	}
	if len(rows) < 5 {
		t.Fatalf("Expected at least 5 CSV rows, got %d", len(rows))
	}

	if rows[0][0] != "Username" || len(rows[0]) != 12 {
		t.Errorf("Unexpected CSV header: %v", rows[0])
	}

	// User rows are ordered by message count, most active first.
	if rows[1][0] != "Bob" || rows[1][1] != "7" || rows[1][2] != "49" || rows[1][3] != "7.00" {
		t.Errorf("Unexpected first user row: %v", rows[1])
	}
	if rows[2][0] != "Alice" || rows[2][3] != "10.17" {
		t.Errorf("Unexpected second user row: %v", rows[2])
	}
	if rows[3][0] != "Carol" || rows[3][3] != "4.80" {
		t.Errorf("Unexpected third user row: %v", rows[3])
	}

	wantPairs := map[string]string{
		"Total Messages":   "18",
		"Total Words":      "134",
		"Deleted Messages": "1",
		"🎉":                "4",
	}
	for _, row := range rows {
		if len(row) != 2 {
			continue
		}
		if want, ok := wantPairs[row[0]]; ok {
			if row[1] != want {
				t.Errorf("CSV row %s: got %s, want %s", row[0], row[1], want)
			}
			delete(wantPairs, row[0])
		}
	}
	for key := range wantPairs {
		t.Errorf("CSV output missing row for %s", key)
	}
}

// ============================================================================
// Multi-File Merge E2E Tests
// ============================================================================

// TestE2E_MultiFile_Merge parses two export chunks given out of order and
// checks the combined chronology is sorted.
func TestE2E_MultiFile_Merge(t *testing.T) {
	chdir(t)
	part1 := filepath.Join("testdata", "exports", "trip_part1.txt")
	part2 := filepath.Join("testdata", "exports", "trip_part2.txt")
	requireFile(t, part1)
	requireFile(t, part2)

	// Later chunk first on purpose.
	messages, err := parser.New().ParseFiles([]string{part2, part1})
	if err != nil {
		t.Fatalf("Failed to parse chunks: %v", err)
	}

	if len(messages) != 4 {
		t.Fatalf("Expected 4 messages, got %d", len(messages))
	}

	for i := 1; i < len(messages); i++ {
		if messages[i].Timestamp.Before(messages[i-1].Timestamp) {
			t.Errorf("Messages out of order at %d: %v after %v",
				i, messages[i].Timestamp, messages[i-1].Timestamp)
		}
	}

	if messages[0].Author != "Erin" || messages[0].Body != "Packing tonight, list is done" {
		t.Errorf("Unexpected first message: %s: %q", messages[0].Author, messages[0].Body)
	}
	wantLast := time.Date(2024, 3, 21, 9, 5, 0, 0, time.UTC)
	if !messages[3].Timestamp.Equal(wantLast) {
		t.Errorf("Expected last timestamp %v, got %v", wantLast, messages[3].Timestamp)
	}

	info := parser.Info(messages)
	if info.Participants != 2 {
		t.Errorf("Expected 2 participants, got %d", info.Participants)
	}
}

// ============================================================================
// Format Detection E2E Tests
// ============================================================================

func TestE2E_Detect_DashDialect(t *testing.T) {
	chdir(t)
	exportFile := filepath.Join("testdata", "exports", "group_trip.txt")
	requireFile(t, exportFile)

	result, err := detector.New().DetectFromFile(context.Background(), exportFile)
	if err != nil {
		t.Fatalf("Detection failed: %v", err)
	}

	if !result.HasMatch() {
		t.Fatal("Expected to detect a format")
	}

	best := result.BestMatch()
	if best.Format.Name != "dash separated, slash dates" {
		t.Errorf("Expected dash dialect, got %q", best.Format.Name)
	}

	// 18 headers, 1 banner line and 2 continuation lines.
	if result.SampledLines != 21 {
		t.Errorf("Expected 21 sampled lines, got %d", result.SampledLines)
	}
	if best.MatchCount != 18 {
		t.Errorf("Expected 18 matching lines, got %d", best.MatchCount)
	}
	if best.Confidence <= 0.8 || best.Confidence >= 1.0 {
		t.Errorf("Expected confidence between 0.8 and 1.0, got %f", best.Confidence)
	}

	if result.DateOrderNote != "Day-first dates confirmed (day values above 12 present)." {
		t.Errorf("Unexpected date order note: %q", result.DateOrderNote)
	}
	if result.TwelveHourShare != 0 {
		t.Errorf("Expected no AM/PM markers, got share %f", result.TwelveHourShare)
	}
}

func TestE2E_Detect_BracketDialect(t *testing.T) {
	chdir(t)
	exportFile := filepath.Join("testdata", "exports", "bracket_style.txt")
	requireFile(t, exportFile)

	result, err := detector.New().DetectFromFile(context.Background(), exportFile)
	if err != nil {
		t.Fatalf("Detection failed: %v", err)
	}

	best := result.BestMatch()
	if best == nil {
		t.Fatal("Expected to detect a format")
	}
	if best.Format.Name != "bracketed, slash dates" {
		t.Errorf("Expected bracket dialect, got %q", best.Format.Name)
	}
	if best.Confidence != 1.0 {
		t.Errorf("Expected confidence 1.0 for all-header file, got %f", best.Confidence)
	}
	if best.MatchCount != 3 {
		t.Errorf("Expected 3 matching lines, got %d", best.MatchCount)
	}
}

func TestE2E_Detect_AmbiguousDates(t *testing.T) {
	chdir(t)
	exportFile := filepath.Join("testdata", "exports", "ambiguous_dates.txt")
	requireFile(t, exportFile)

	result, err := detector.New().DetectFromFile(context.Background(), exportFile)
	if err != nil {
		t.Fatalf("Detection failed: %v", err)
	}

	if !result.HasMatch() {
		t.Fatal("Expected to detect a format")
	}
	want := "All sampled date fields are 12 or less; dates are ambiguous and parse day-first."
	if result.DateOrderNote != want {
		t.Errorf("Date order note:\n got: %q\nwant: %q", result.DateOrderNote, want)
	}
}

func TestE2E_Detect_NoHeaders(t *testing.T) {
	chdir(t)
	exportFile := filepath.Join("testdata", "exports", "notes.txt")
	requireFile(t, exportFile)

	result, err := detector.New().DetectFromFile(context.Background(), exportFile)
	if err != nil {
		t.Fatalf("Detection failed: %v", err)
	}

	if result.HasMatch() {
		t.Errorf("Expected no format match for plain notes, got %q", result.BestMatch().Format.Name)
	}
	if result.BestMatch() != nil {
		t.Error("Expected nil best match")
	}
}

// TestE2E_Detect_WriteConfig runs the detect command with --write-config
// and loads the generated file back through the config package.
func TestE2E_Detect_WriteConfig(t *testing.T) {
	chdir(t)
	exportFile := filepath.Join("testdata", "exports", "group_trip.txt")
	requireFile(t, exportFile)
	configPath := filepath.Join(t.TempDir(), "starter.yaml")

	cmd := commands.NewDetectCommand()
	cmd.SetArgs([]string{exportFile, "--write-config", configPath})
	out, err := captureStdout(t, cmd.Execute)
	if err != nil {
		t.Fatalf("Detect command failed: %v", err)
	}
	if !strings.Contains(out, "Wrote starter config") {
		t.Errorf("Missing write confirmation in output:\n%s", out)
	}

	cfg, err := config.Load(context.Background(), configPath)
	if err != nil {
		t.Fatalf("Generated config is invalid: %v", err)
	}
	if len(cfg.Patterns) != 1 {
		t.Fatalf("Expected 1 pattern in generated config, got %d", len(cfg.Patterns))
	}
	if cfg.Patterns[0].Name != "dash separated, slash dates" {
		t.Errorf("Expected detected format in config, got %q", cfg.Patterns[0].Name)
	}

	header := "14/03/2024, 08:02 - Alice: Morning everyone, trip planning starts today 🎉"
	if !cfg.Patterns[0].CompiledPattern().MatchString(header) {
		t.Errorf("Generated pattern does not match the export's header lines")
	}
	if cfg.Archive.Keep != 50 {
		t.Errorf("Expected archive keep default 50, got %d", cfg.Archive.Keep)
	}
}

// ============================================================================
// Custom Pattern E2E Tests
// ============================================================================

// TestE2E_CustomPattern parses a pipe-delimited dialect that only the
// configured extra pattern recognizes.
func TestE2E_CustomPattern(t *testing.T) {
	chdir(t)
	exportFile := filepath.Join("testdata", "exports", "pipe_style.txt")
	configFile := filepath.Join("testdata", "configs", "custom_pattern.yaml")
	requireFile(t, exportFile)
	requireFile(t, configFile)
	ctx := context.Background()

	// Built-in formats alone recognize nothing in this dialect.
	plain, err := parser.New().ParseFile(exportFile)
	if err != nil {
		t.Fatalf("Failed to parse export: %v", err)
	}
	if len(plain) != 0 {
		t.Fatalf("Expected 0 messages without the extra pattern, got %d", len(plain))
	}

	cfg, err := config.Load(ctx, configFile)
	if err != nil {
		t.Fatalf("Failed to load config: %v", err)
	}

	p := parser.New(parser.WithExtraFormats(cfg.HeaderFormats()))
	messages, err := p.ParseFile(exportFile)
	if err != nil {
		t.Fatalf("Failed to parse export: %v", err)
	}
	if len(messages) != 4 {
		t.Fatalf("Expected 4 messages with the extra pattern, got %d", len(messages))
	}

	if messages[0].Author != "Alice" || messages[0].Body != "Landed at the hotel" {
		t.Errorf("Unexpected first message: %s: %q", messages[0].Author, messages[0].Body)
	}
	wantFirst := time.Date(2024, 3, 14, 10, 30, 0, 0, time.UTC)
	if !messages[0].Timestamp.Equal(wantFirst) {
		t.Errorf("Expected timestamp %v, got %v", wantFirst, messages[0].Timestamp)
	}

	// The configured media placeholder extends the built-in set.
	engine := analyzer.New(
		analyzer.WithMediaPlaceholders(cfg.Placeholders.Media),
		analyzer.WithDeletedMarkers(cfg.Placeholders.Deleted),
	)
	analysis := engine.Analyze(messages)
	if analysis.MediaCount != 1 {
		t.Errorf("Expected 1 media message via configured placeholder, got %d", analysis.MediaCount)
	}
	if bob := analysis.Users["Bob"]; bob == nil || bob.QuestionCount != 1 {
		t.Errorf("Expected 1 question from Bob, got %+v", bob)
	}
}

// ============================================================================
// Archive E2E Tests
// ============================================================================

func TestE2E_Archive_SaveListGet(t *testing.T) {
	messages := loadGroupTrip(t)
	source := filepath.Join("testdata", "exports", "group_trip.txt")
	rep := report.NewReport(analyzer.New().Analyze(messages), source)
	ctx := context.Background()

	store, err := archive.Open(filepath.Join(t.TempDir(), "history.db"))
	if err != nil {
		t.Fatalf("Failed to open archive: %v", err)
	}
	defer store.Close()

	id, err := store.Save(ctx, source, parser.Info(messages), rep)
	if err != nil {
		t.Fatalf("Failed to save run: %v", err)
	}
	if len(id) != 36 {
		t.Errorf("Expected a UUID run id, got %q", id)
	}

	runs, err := store.List(ctx, 0)
	if err != nil {
		t.Fatalf("Failed to list runs: %v", err)
	}
	if len(runs) != 1 {
		t.Fatalf("Expected 1 archived run, got %d", len(runs))
	}
	run := runs[0]
	if run.ID != id || run.Source != source {
		t.Errorf("Unexpected run summary: %+v", run)
	}
	if run.TotalMessages != 18 || run.Participants != 3 {
		t.Errorf("Expected 18 messages from 3 participants, got %d from %d",
			run.TotalMessages, run.Participants)
	}
	wantStart := time.Date(2024, 3, 14, 8, 2, 0, 0, time.UTC)
	if !run.StartDate.Equal(wantStart) {
		t.Errorf("Expected start date %v, got %v", wantStart, run.StartDate)
	}

	// A unique id prefix resolves to the full run.
	got, err := store.Get(ctx, id[:8])
	if err != nil {
		t.Fatalf("Failed to get run by prefix: %v", err)
	}
	if got.ID != id {
		t.Errorf("Expected run %s, got %s", id, got.ID)
	}

	var stored report.Report
	if err := json.Unmarshal([]byte(got.Report), &stored); err != nil {
		t.Fatalf("Stored report does not parse: %v", err)
	}
	if stored.Summary.TotalMessages != 18 {
		t.Errorf("Expected 18 messages in stored report, got %d", stored.Summary.TotalMessages)
	}

	if _, err := store.Get(ctx, "ffffffff"); !errors.Is(err, archive.ErrNotFound) {
		t.Errorf("Expected ErrNotFound for unknown prefix, got %v", err)
	}
}

func TestE2E_Archive_Prune(t *testing.T) {
	messages := loadGroupTrip(t)
	source := filepath.Join("testdata", "exports", "group_trip.txt")
	rep := report.NewReport(analyzer.New().Analyze(messages), source)
	info := parser.Info(messages)
	ctx := context.Background()

	store, err := archive.Open(filepath.Join(t.TempDir(), "history.db"))
	if err != nil {
		t.Fatalf("Failed to open archive: %v", err)
	}
	defer store.Close()

	var ids []string
	for i := 0; i < 3; i++ {
		id, err := store.Save(ctx, source, info, rep)
		if err != nil {
			t.Fatalf("Failed to save run %d: %v", i, err)
		}
		ids = append(ids, id)
	}

	count, err := store.Count(ctx)
	if err != nil {
		t.Fatalf("Failed to count runs: %v", err)
	}
	if count != 3 {
		t.Fatalf("Expected 3 runs before pruning, got %d", count)
	}

	removed, err := store.Prune(ctx, 1)
	if err != nil {
		t.Fatalf("Failed to prune runs: %v", err)
	}
	if removed != 2 {
		t.Errorf("Expected 2 pruned runs, got %d", removed)
	}

	runs, err := store.List(ctx, 0)
	if err != nil {
		t.Fatalf("Failed to list runs: %v", err)
	}
	if len(runs) != 1 {
		t.Fatalf("Expected 1 run after pruning, got %d", len(runs))
	}
	if runs[0].ID != ids[2] {
		t.Errorf("Expected newest run %s to survive, got %s", ids[2], runs[0].ID)
	}
}

// ============================================================================
// Webhook E2E Tests
// ============================================================================

func TestE2E_Webhook_Send(t *testing.T) {
	rep := groupTripReport(t)

	var gotAuth, gotContentType, gotUserAgent string
	var gotBody []byte
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		gotContentType = r.Header.Get("Content-Type")
		gotUserAgent = r.Header.Get("User-Agent")
		gotBody, _ = io.ReadAll(r.Body)
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	client := webhook.NewClient()
	resp := client.Send(context.Background(), rep, webhook.SendOptions{
		URL:   server.URL,
		Token: "secret-token",
	})

	if !resp.Success() {
		t.Fatalf("Expected successful send, got status %d error %v", resp.StatusCode, resp.Error)
	}
	if resp.StatusCode != http.StatusOK {
		t.Errorf("Expected status 200, got %d", resp.StatusCode)
	}

	if gotAuth != "Bearer secret-token" {
		t.Errorf("Expected bearer token header, got %q", gotAuth)
	}
	if gotContentType != "application/json" {
		t.Errorf("Expected JSON content type, got %q", gotContentType)
	}
	if gotUserAgent != "chatlyze-webhook" {
		t.Errorf("Expected chatlyze-webhook user agent, got %q", gotUserAgent)
	}

	var received report.Report
	if err := json.Unmarshal(gotBody, &received); err != nil {
		t.Fatalf("Webhook payload does not parse: %v", err)
	}
	if received.Summary.TotalMessages != 18 {
		t.Errorf("Expected 18 messages in payload, got %d", received.Summary.TotalMessages)
	}
}

func TestE2E_Webhook_ServerError(t *testing.T) {
	rep := groupTripReport(t)

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "internal error", http.StatusInternalServerError)
	}))
	defer server.Close()

	resp := webhook.NewClient().Send(context.Background(), rep, webhook.SendOptions{URL: server.URL})

	if resp.Success() {
		t.Error("Expected failure for 500 response")
	}
	if resp.StatusCode != http.StatusInternalServerError {
		t.Errorf("Expected status 500, got %d", resp.StatusCode)
	}
	if resp.Error == nil {
		t.Error("Expected an error for 500 response")
	}
}

// ============================================================================
// CLI E2E Tests
// ============================================================================

func TestE2E_Analyze_CLI_JSON(t *testing.T) {
	chdir(t)
	defer func() { commands.ExitCode = 0 }()
	exportFile := filepath.Join("testdata", "exports", "group_trip.txt")
	requireFile(t, exportFile)
	outFile := filepath.Join(t.TempDir(), "report.json")

	cmd := commands.NewAnalyzeCommand()
	cmd.SetArgs([]string{exportFile, "-o", "json", "--out", outFile})
	if err := cmd.Execute(); err != nil {
		t.Fatalf("Analyze command failed: %v", err)
	}
	if commands.ExitCode != 0 {
		t.Errorf("Expected exit code 0, got %d", commands.ExitCode)
	}

	data, err := os.ReadFile(outFile)
	if err != nil {
		t.Fatalf("Failed to read report file: %v", err)
	}
	var rep report.Report
	if err := json.Unmarshal(data, &rep); err != nil {
		t.Fatalf("Report file does not parse: %v", err)
	}
	if rep.Summary.TotalMessages != 18 || rep.Summary.TotalUsers != 3 {
		t.Errorf("Expected 18 messages and 3 users, got %d and %d",
			rep.Summary.TotalMessages, rep.Summary.TotalUsers)
	}
	if rep.Users["Alice"] == nil {
		t.Error("Report file missing Alice")
	}
}

func TestE2E_Analyze_CLI_ConfigPattern(t *testing.T) {
	chdir(t)
	defer func() { commands.ExitCode = 0 }()
	exportFile := filepath.Join("testdata", "exports", "pipe_style.txt")
	configFile := filepath.Join("testdata", "configs", "custom_pattern.yaml")
	requireFile(t, exportFile)
	requireFile(t, configFile)
	outFile := filepath.Join(t.TempDir(), "report.json")

	cmd := commands.NewAnalyzeCommand()
	cmd.SetArgs([]string{exportFile, "--config", configFile, "-o", "json", "--out", outFile})
	if err := cmd.Execute(); err != nil {
		t.Fatalf("Analyze command failed: %v", err)
	}
	if commands.ExitCode != 0 {
		t.Errorf("Expected exit code 0, got %d", commands.ExitCode)
	}

	data, err := os.ReadFile(outFile)
	if err != nil {
		t.Fatalf("Failed to read report file: %v", err)
	}
	var rep report.Report
	if err := json.Unmarshal(data, &rep); err != nil {
		t.Fatalf("Report file does not parse: %v", err)
	}
	if rep.Summary.TotalMessages != 4 {
		t.Errorf("Expected 4 messages via configured pattern, got %d", rep.Summary.TotalMessages)
	}
	if rep.Summary.MediaCount != 1 {
		t.Errorf("Expected 1 media message via configured placeholder, got %d", rep.Summary.MediaCount)
	}
}

// TestE2E_Analyze_CLI_NoMessages checks that an unrecognized export still
// produces a well-formed empty report and flags exit code 1.
func TestE2E_Analyze_CLI_NoMessages(t *testing.T) {
	chdir(t)
	defer func() { commands.ExitCode = 0 }()
	exportFile := filepath.Join("testdata", "exports", "notes.txt")
	requireFile(t, exportFile)
	outFile := filepath.Join(t.TempDir(), "report.txt")

	cmd := commands.NewAnalyzeCommand()
	cmd.SetArgs([]string{exportFile, "--out", outFile})
	if err := cmd.Execute(); err != nil {
		t.Fatalf("Analyze command failed: %v", err)
	}
	if commands.ExitCode != 1 {
		t.Errorf("Expected exit code 1 for unrecognized export, got %d", commands.ExitCode)
	}

	data, err := os.ReadFile(outFile)
	if err != nil {
		t.Fatalf("Failed to read report file: %v", err)
	}
	if !strings.Contains(string(data), "Total messages:   0") {
		t.Errorf("Expected empty report to still render, got:\n%s", data)
	}
}
