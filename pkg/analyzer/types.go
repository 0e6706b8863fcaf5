package analyzer

import "time"

// Analysis is the complete result of analyzing a chat.
type Analysis struct {
	// TotalMessages is the number of messages analyzed.
	TotalMessages int

	// Users maps author display names to their statistics.
	Users map[string]*UserStats

	// TopEmojis ranks emoji across the whole chat, most frequent first,
	// capped at 50. Ties keep first-encounter order.
	TopEmojis []EmojiCount

	// HourlyActivity counts messages per hour of day.
	HourlyActivity [24]int

	// WeekdayActivity counts messages per weekday, Sunday first.
	WeekdayActivity [7]int

	// DailyActivity covers the trailing 30-day window ending at the latest
	// message. Every day in the window appears, zero-filled when quiet.
	DailyActivity []DailyCount

	// MediaCount is the number of media placeholder messages.
	MediaCount int

	// TotalWords counts whitespace-delimited tokens across all bodies.
	TotalWords int

	// DeletedMessages counts messages carrying a deletion marker.
	DeletedMessages int

	// LinkCount counts messages containing a URL.
	LinkCount int
}

// UserStats holds per-author statistics.
type UserStats struct {
	MessageCount int
	WordCount    int

	// AvgMessageLength is words per message, 0 when no messages.
	AvgMessageLength float64

	// EmojiCount is the total number of emoji codepoints used.
	EmojiCount int

	// TopEmojis ranks this author's emoji by count, ties by first use.
	TopEmojis []EmojiCount

	MediaCount     int
	QuestionCount  int
	LinkCount      int
	SentimentScore int

	// NightOwlScore counts messages sent between 22:00 and 04:00.
	NightOwlScore int

	// MorningScore counts messages sent between 05:00 and 09:00.
	MorningScore int

	// ConversationStarters counts messages opening a new burst of activity
	// after a two hour lull, or the very first message of the chat.
	ConversationStarters int

	// AvgResponseTime is the mean minutes taken to reply to another
	// author, counting only replies under an hour. Nil when the author has
	// no qualifying replies.
	AvgResponseTime *float64

	// BestLines holds up to 5 of the author's messages ranked by quality
	// score, highest first.
	BestLines []BestLine
}

// EmojiCount pairs an emoji with its occurrence count.
type EmojiCount struct {
	Emoji string
	Count int
}

// DailyCount is one day of the daily activity series.
type DailyCount struct {
	Date  string // YYYY-MM-DD
	Count int
}

// BestLine is a message selected by the quality ranking.
type BestLine struct {
	Body      string
	Timestamp time.Time
	Score     int
}
