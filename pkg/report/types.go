// Package report builds serializable reports from analysis results and
// renders them as JSON, text, or CSV.
package report

import (
	"math"
	"sort"
	"time"

	"github.com/iampreetdave-max/analyze-text/pkg/analyzer"
)

// AnalyzerVersion is stamped into report metadata.
const AnalyzerVersion = "1.0.0"

// Emoji ranking caps applied when building a report.
const (
	globalEmojiLimit  = 20
	perUserEmojiLimit = 10
)

// Report is the complete serializable analysis output.
type Report struct {
	// Metadata provides context about the report.
	Metadata Metadata `json:"metadata"`

	// Summary provides chat-wide aggregate statistics.
	Summary Summary `json:"summary"`

	// Users maps author names to their statistics block.
	Users map[string]*UserReport `json:"users"`

	// TopEmojis is the chat-wide emoji ranking, most frequent first.
	TopEmojis []EmojiEntry `json:"top_emojis"`

	// Activity groups the time-bucketed histograms.
	Activity ActivityPatterns `json:"activity_patterns"`
}

// Metadata provides context about the report.
type Metadata struct {
	GeneratedAt     string `json:"generated_at"`
	SourceFile      string `json:"source_file"`
	AnalyzerVersion string `json:"analyzer_version"`
}

// Summary provides chat-wide aggregate statistics.
type Summary struct {
	TotalMessages   int `json:"total_messages"`
	TotalUsers      int `json:"total_users"`
	TotalWords      int `json:"total_words"`
	MediaCount      int `json:"media_count"`
	DeletedMessages int `json:"deleted_messages"`
}

// UserReport is the per-author statistics block.
type UserReport struct {
	MessageCount         int             `json:"message_count"`
	WordCount            int             `json:"word_count"`
	AvgMessageLength     float64         `json:"avg_message_length"`
	EmojiCount           int             `json:"emoji_count"`
	MediaCount           int             `json:"media_count"`
	QuestionCount        int             `json:"question_count"`
	LinkCount            int             `json:"link_count"`
	SentimentScore       int             `json:"sentiment_score"`
	NightOwlScore        int             `json:"night_owl_score"`
	MorningScore         int             `json:"morning_score"`
	ConversationStarters int             `json:"conversation_starters"`
	AvgResponseTime      *float64        `json:"avg_response_time"`
	TopEmojis            []EmojiEntry    `json:"top_emojis"`
	BestLines            []BestLineEntry `json:"best_lines"`
}

// EmojiEntry pairs an emoji with its occurrence count.
type EmojiEntry struct {
	Emoji string `json:"emoji"`
	Count int    `json:"count"`
}

// BestLineEntry is a highly scored message from a user's history.
type BestLineEntry struct {
	Message   string `json:"message"`
	Timestamp string `json:"timestamp"`
	Score     int    `json:"score"`
}

// ActivityPatterns groups the time-bucketed histograms.
type ActivityPatterns struct {
	// Hourly counts messages per hour of day (index 0 = midnight).
	Hourly [24]int `json:"hourly"`

	// Weekday counts messages per day of week (index 0 = Sunday).
	Weekday [7]int `json:"weekday"`

	// Daily is the trailing 30-day series, zero-filled.
	Daily []DailyEntry `json:"daily"`
}

// DailyEntry is the message count for one calendar day.
type DailyEntry struct {
	Date  string `json:"date"`
	Count int    `json:"count"`
}

// NewReport builds a Report from analysis results.
func NewReport(analysis *analyzer.Analysis, sourceFile string) *Report {
	report := &Report{
		Metadata: Metadata{
			GeneratedAt:     time.Now().Format(time.RFC3339),
			SourceFile:      sourceFile,
			AnalyzerVersion: AnalyzerVersion,
		},
		Summary: Summary{
			TotalMessages:   analysis.TotalMessages,
			TotalUsers:      len(analysis.Users),
			TotalWords:      analysis.TotalWords,
			MediaCount:      analysis.MediaCount,
			DeletedMessages: analysis.DeletedMessages,
		},
		Users:     make(map[string]*UserReport, len(analysis.Users)),
		TopEmojis: emojiEntries(analysis.TopEmojis, globalEmojiLimit),
		Activity: ActivityPatterns{
			Hourly:  analysis.HourlyActivity,
			Weekday: analysis.WeekdayActivity,
			Daily:   dailyEntries(analysis.DailyActivity),
		},
	}

	for name, stats := range analysis.Users {
		report.Users[name] = newUserReport(stats)
	}

	return report
}

func newUserReport(stats *analyzer.UserStats) *UserReport {
	u := &UserReport{
		MessageCount:         stats.MessageCount,
		WordCount:            stats.WordCount,
		AvgMessageLength:     round2(stats.AvgMessageLength),
		EmojiCount:           stats.EmojiCount,
		MediaCount:           stats.MediaCount,
		QuestionCount:        stats.QuestionCount,
		LinkCount:            stats.LinkCount,
		SentimentScore:       stats.SentimentScore,
		NightOwlScore:        stats.NightOwlScore,
		MorningScore:         stats.MorningScore,
		ConversationStarters: stats.ConversationStarters,
		TopEmojis:            emojiEntries(stats.TopEmojis, perUserEmojiLimit),
		BestLines:            bestLineEntries(stats.BestLines),
	}

	if stats.AvgResponseTime != nil {
		avg := round2(*stats.AvgResponseTime)
		u.AvgResponseTime = &avg
	}

	return u
}

// UsersByMessageCount returns author names ordered most active first.
// Ties are ordered by name so output is deterministic.
func (r *Report) UsersByMessageCount() []string {
	names := make([]string, 0, len(r.Users))
	for name := range r.Users {
		names = append(names, name)
	}
	sort.Slice(names, func(i, j int) bool {
		a, b := r.Users[names[i]], r.Users[names[j]]
		if a.MessageCount != b.MessageCount {
			return a.MessageCount > b.MessageCount
		}
		return names[i] < names[j]
	})
	return names
}

func emojiEntries(counts []analyzer.EmojiCount, limit int) []EmojiEntry {
	if limit > 0 && len(counts) > limit {
		counts = counts[:limit]
	}
	entries := make([]EmojiEntry, 0, len(counts))
	for _, ec := range counts {
		entries = append(entries, EmojiEntry{Emoji: ec.Emoji, Count: ec.Count})
	}
	return entries
}

func dailyEntries(daily []analyzer.DailyCount) []DailyEntry {
	entries := make([]DailyEntry, 0, len(daily))
	for _, dc := range daily {
		entries = append(entries, DailyEntry{Date: dc.Date, Count: dc.Count})
	}
	return entries
}

func bestLineEntries(lines []analyzer.BestLine) []BestLineEntry {
	entries := make([]BestLineEntry, 0, len(lines))
	for _, bl := range lines {
		entries = append(entries, BestLineEntry{
			Message:   bl.Body,
			Timestamp: bl.Timestamp.Format("2006-01-02 15:04:05"),
			Score:     bl.Score,
		})
	}
	return entries
}

// round2 rounds to two decimal places for presentation.
func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
