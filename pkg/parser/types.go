// Package parser converts plain-text chat exports into structured messages.
package parser

import "time"

// Message is a single chat message recovered from an export.
type Message struct {
	// Timestamp is the message time, second resolution. Exports carry no
	// timezone marker, so timestamps are constructed in UTC.
	Timestamp time.Time

	// Author is the sender's display name exactly as exported, trimmed.
	// It is an opaque identity key; no normalization is applied.
	Author string

	// Body is the message text. Multi-line messages keep their embedded
	// newlines. Media and deletion placeholders stay as exported text.
	Body string
}

// ChatInfo summarizes a parsed chat.
type ChatInfo struct {
	// TotalMessages is the number of parsed messages.
	TotalMessages int

	// Participants is the number of distinct authors.
	Participants int

	// ParticipantNames lists authors in order of first appearance.
	ParticipantNames []string

	// StartDate and EndDate are the first and last message timestamps.
	StartDate time.Time
	EndDate   time.Time

	// DurationDays is the whole number of days between first and last message.
	DurationDays int
}
