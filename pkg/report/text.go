package report

import (
	"context"
	"fmt"
	"io"
	"sort"
)

// weekdayNames indexes display names by weekday value (Sunday = 0).
var weekdayNames = [7]string{"Sunday", "Monday", "Tuesday", "Wednesday", "Thursday", "Friday", "Saturday"}

// championCategory is one award computed over all users.
type championCategory struct {
	title  string
	label  string
	metric func(*UserReport) int
}

// championCategories in display order. A category is skipped when no
// user scores above zero.
var championCategories = []championCategory{
	{"Message Champion", "messages sent", func(u *UserReport) int { return u.MessageCount }},
	{"Word Master", "total words", func(u *UserReport) int { return u.WordCount }},
	{"Emoji King/Queen", "emojis used", func(u *UserReport) int { return u.EmojiCount }},
	{"Media Sharer", "media shared", func(u *UserReport) int { return u.MediaCount }},
	{"Curious Mind", "questions asked", func(u *UserReport) int { return u.QuestionCount }},
	{"Night Owl", "late messages", func(u *UserReport) int { return u.NightOwlScore }},
	{"Early Bird", "morning messages", func(u *UserReport) int { return u.MorningScore }},
	{"Conversation Starter", "convos started", func(u *UserReport) int { return u.ConversationStarters }},
	{"Positive Vibes", "sentiment score", func(u *UserReport) int { return u.SentimentScore }},
}

// TextFormatter formats reports as human-readable text.
type TextFormatter struct {
	opts FormatOptions
}

// NewTextFormatter creates a new text formatter with the given options.
func NewTextFormatter(opts FormatOptions) *TextFormatter {
	return &TextFormatter{opts: opts}
}

// Name returns the format name.
func (f *TextFormatter) Name() string {
	return "text"
}

// Format renders the report as text.
func (f *TextFormatter) Format(ctx context.Context, report *Report, w io.Writer) error {
	if f.opts.Quiet {
		return f.formatQuiet(report, w)
	}
	return f.formatFull(report, w)
}

func (f *TextFormatter) formatQuiet(report *Report, w io.Writer) error {
	fmt.Fprintf(w, "ChatLyze: %d messages from %d users, %d words, %d media\n",
		report.Summary.TotalMessages,
		report.Summary.TotalUsers,
		report.Summary.TotalWords,
		report.Summary.MediaCount)
	return nil
}

func (f *TextFormatter) formatFull(report *Report, w io.Writer) error {
	// Header
	fmt.Fprintln(w, "=== ChatLyze Analysis Report ===")
	fmt.Fprintf(w, "Source: %s\n", report.Metadata.SourceFile)
	fmt.Fprintf(w, "Generated: %s\n", report.Metadata.GeneratedAt)
	fmt.Fprintln(w)

	f.formatSummary(report, w)
	f.formatChampions(report, w)
	f.formatUsers(report, w)
	f.formatTopEmojis(report, w)
	f.formatActivity(report, w)

	return nil
}

func (f *TextFormatter) formatSummary(report *Report, w io.Writer) {
	s := report.Summary
	fmt.Fprintln(w, "Summary")
	fmt.Fprintf(w, "  Total messages:   %d\n", s.TotalMessages)
	fmt.Fprintf(w, "  Total users:      %d\n", s.TotalUsers)
	fmt.Fprintf(w, "  Total words:      %d\n", s.TotalWords)
	fmt.Fprintf(w, "  Media shared:     %d\n", s.MediaCount)
	fmt.Fprintf(w, "  Deleted messages: %d\n", s.DeletedMessages)
	fmt.Fprintln(w)
}

func (f *TextFormatter) formatChampions(report *Report, w io.Writer) {
	if len(report.Users) == 0 {
		return
	}

	// Names sorted so ties resolve the same way every run.
	names := make([]string, 0, len(report.Users))
	for name := range report.Users {
		names = append(names, name)
	}
	sort.Strings(names)

	printedHeader := false
	for _, cat := range championCategories {
		bestName, bestValue := "", 0
		for _, name := range names {
			if v := cat.metric(report.Users[name]); v > bestValue {
				bestName, bestValue = name, v
			}
		}
		if bestValue <= 0 {
			continue
		}
		if !printedHeader {
			fmt.Fprintln(w, "Champions")
			printedHeader = true
		}
		fmt.Fprintf(w, "  %-21s %s (%d %s)\n", cat.title, bestName, bestValue, cat.label)
	}
	if printedHeader {
		fmt.Fprintln(w)
	}
}

func (f *TextFormatter) formatUsers(report *Report, w io.Writer) {
	for _, name := range report.UsersByMessageCount() {
		f.formatUser(name, report.Users[name], w)
	}
}

func (f *TextFormatter) formatUser(name string, u *UserReport, w io.Writer) {
	fmt.Fprintf(w, "[USER] %s\n", name)
	fmt.Fprintf(w, "  Messages: %d (%.2f words avg)\n", u.MessageCount, u.AvgMessageLength)
	fmt.Fprintf(w, "  Words: %d  Emojis: %d  Media: %d  Questions: %d  Links: %d\n",
		u.WordCount, u.EmojiCount, u.MediaCount, u.QuestionCount, u.LinkCount)
	fmt.Fprintf(w, "  Sentiment: %+d  Night owl: %d  Morning: %d  Starters: %d\n",
		u.SentimentScore, u.NightOwlScore, u.MorningScore, u.ConversationStarters)

	if u.AvgResponseTime != nil {
		fmt.Fprintf(w, "  Avg response time: %.2f min\n", *u.AvgResponseTime)
	}

	if len(u.TopEmojis) > 0 {
		fmt.Fprintf(w, "  Top emojis:")
		for _, e := range u.TopEmojis {
			fmt.Fprintf(w, " %s (%d)", e.Emoji, e.Count)
		}
		fmt.Fprintln(w)
	}

	if f.opts.Verbose && len(u.BestLines) > 0 {
		fmt.Fprintln(w, "  Best lines:")
		for _, bl := range u.BestLines {
			fmt.Fprintf(w, "    [%d] %s (%s)\n", bl.Score, bl.Message, bl.Timestamp)
		}
	}

	fmt.Fprintln(w)
}

func (f *TextFormatter) formatTopEmojis(report *Report, w io.Writer) {
	if len(report.TopEmojis) == 0 {
		return
	}

	limit := len(report.TopEmojis)
	if limit > 10 {
		limit = 10
	}

	fmt.Fprintln(w, "Top Emojis")
	for i := 0; i < limit; i++ {
		e := report.TopEmojis[i]
		fmt.Fprintf(w, "  %2d. %s  %d\n", i+1, e.Emoji, e.Count)
	}
	fmt.Fprintln(w)
}

func (f *TextFormatter) formatActivity(report *Report, w io.Writer) {
	if report.Summary.TotalMessages == 0 {
		return
	}

	peakHour := maxIndex(report.Activity.Hourly[:])
	peakDay := maxIndex(report.Activity.Weekday[:])

	fmt.Fprintln(w, "Activity")
	fmt.Fprintf(w, "  Most active hour: %02d:00\n", peakHour)
	fmt.Fprintf(w, "  Most active day: %s\n", weekdayNames[peakDay])

	if f.opts.Verbose {
		for _, d := range report.Activity.Daily {
			if d.Count > 0 {
				fmt.Fprintf(w, "  %s  %d\n", d.Date, d.Count)
			}
		}
	}
}

// maxIndex returns the index of the largest value, first index on ties.
func maxIndex(values []int) int {
	best := 0
	for i, v := range values {
		if v > values[best] {
			best = i
		}
	}
	return best
}
