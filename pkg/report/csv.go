package report

import (
	"context"
	"encoding/csv"
	"io"
	"strconv"
)

// csvHeader is the user table column set.
var csvHeader = []string{
	"Username",
	"Messages",
	"Words",
	"Avg Message Length",
	"Emojis",
	"Media",
	"Questions",
	"Sentiment Score",
	"Night Owl Score",
	"Morning Score",
	"Conversation Starters",
	"Avg Response Time (min)",
}

// CSVFormatter formats reports as CSV.
type CSVFormatter struct {
	opts FormatOptions
}

// NewCSVFormatter creates a new CSV formatter with the given options.
func NewCSVFormatter(opts FormatOptions) *CSVFormatter {
	return &CSVFormatter{opts: opts}
}

// Name returns the format name.
func (f *CSVFormatter) Name() string {
	return "csv"
}

// Format renders the report as CSV: the user table followed by summary
// and top-emoji sections separated by blank rows.
func (f *CSVFormatter) Format(ctx context.Context, report *Report, w io.Writer) error {
	writer := csv.NewWriter(w)

	if err := writer.Write(csvHeader); err != nil {
		return err
	}

	for _, name := range report.UsersByMessageCount() {
		if err := writer.Write(userRow(name, report.Users[name])); err != nil {
			return err
		}
	}

	rows := [][]string{
		{},
		{"SUMMARY"},
		{"Total Messages", strconv.Itoa(report.Summary.TotalMessages)},
		{"Total Users", strconv.Itoa(report.Summary.TotalUsers)},
		{"Total Words", strconv.Itoa(report.Summary.TotalWords)},
		{"Media Count", strconv.Itoa(report.Summary.MediaCount)},
		{"Deleted Messages", strconv.Itoa(report.Summary.DeletedMessages)},
		{},
		{"TOP EMOJIS"},
		{"Emoji", "Count"},
	}
	for _, e := range report.TopEmojis {
		rows = append(rows, []string{e.Emoji, strconv.Itoa(e.Count)})
	}

	// WriteAll flushes the underlying writer.
	return writer.WriteAll(rows)
}

func userRow(name string, u *UserReport) []string {
	responseTime := "N/A"
	if u.AvgResponseTime != nil {
		responseTime = strconv.FormatFloat(*u.AvgResponseTime, 'f', 2, 64)
	}

	return []string{
		name,
		strconv.Itoa(u.MessageCount),
		strconv.Itoa(u.WordCount),
		strconv.FormatFloat(u.AvgMessageLength, 'f', 2, 64),
		strconv.Itoa(u.EmojiCount),
		strconv.Itoa(u.MediaCount),
		strconv.Itoa(u.QuestionCount),
		strconv.Itoa(u.SentimentScore),
		strconv.Itoa(u.NightOwlScore),
		strconv.Itoa(u.MorningScore),
		strconv.Itoa(u.ConversationStarters),
		responseTime,
	}
}
