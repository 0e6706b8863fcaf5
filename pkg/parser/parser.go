package parser

import (
	"fmt"
	"os"
	"sort"
	"strings"
)

// Parser recovers messages from chat export text.
//
// A Parser holds only its compiled header format table and keeps no state
// across calls, so a single instance is safe to reuse.
type Parser struct {
	formats []*HeaderFormat
}

// Option configures a Parser.
type Option func(*Parser)

// WithExtraFormats appends additional header formats after the built-ins.
// Extra formats keep the same contract: four capture groups in the order
// date, time, author, body.
func WithExtraFormats(formats []*HeaderFormat) Option {
	return func(p *Parser) {
		p.formats = append(p.formats, formats...)
	}
}

// New creates a Parser with the built-in header formats.
func New(opts ...Option) *Parser {
	p := &Parser{
		formats: DefaultFormats(),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Formats returns the parser's header format table in priority order.
func (p *Parser) Formats() []*HeaderFormat {
	return p.formats
}

// Parse converts export text into messages.
//
// Lines matching a header format start a new message; all other lines
// extend the body of the message currently open. Lines arriving before any
// header are dropped (export banners, encryption notices). A header whose
// timestamp is not a valid calendar date/time is treated as a continuation
// line, never as a message with a fabricated time.
//
// The result is sorted by timestamp; messages with equal timestamps keep
// their original file order.
func (p *Parser) Parse(text string) []Message {
	var messages []Message
	var current *Message

	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)

		if line == "" {
			// Blank lines inside a message keep their place in the body.
			if current != nil {
				current.Body += "\n"
			}
			continue
		}

		if msg, ok := p.matchHeader(line); ok {
			if current != nil {
				messages = append(messages, *current)
			}
			current = &msg
			continue
		}

		if current != nil {
			current.Body += "\n" + line
		}
	}

	if current != nil {
		messages = append(messages, *current)
	}

	// Guard against out-of-order export quirks. Stable keeps file order
	// for identical timestamps.
	sort.SliceStable(messages, func(i, j int) bool {
		return messages[i].Timestamp.Before(messages[j].Timestamp)
	})

	return messages
}

// matchHeader tries each header format in priority order against a line.
func (p *Parser) matchHeader(line string) (Message, bool) {
	for _, format := range p.formats {
		groups := format.Pattern.FindStringSubmatch(line)
		if groups == nil {
			continue
		}

		ts, err := ResolveTimestamp(groups[1], groups[2])
		if err != nil {
			// Looked like a header but the date is impossible. Reject the
			// match so the line falls through to the continuation rule.
			return Message{}, false
		}

		return Message{
			Timestamp: ts,
			Author:    strings.TrimSpace(groups[3]),
			Body:      strings.TrimSpace(groups[4]),
		}, true
	}
	return Message{}, false
}

// ParseFile reads and parses a single export file.
func (p *Parser) ParseFile(path string) ([]Message, error) {
	data, err := os.ReadFile(path) // #nosec G304 -- user-provided export path is expected
	if err != nil {
		return nil, fmt.Errorf("reading export file: %w", err)
	}
	return p.Parse(string(data)), nil
}

// ParseFiles parses several export chunks into one chronology.
//
// WhatsApp limits export size, so long chats arrive as multiple files.
// Each chunk parses independently and the combined set is re-sorted;
// equal timestamps keep argument order.
func (p *Parser) ParseFiles(paths []string) ([]Message, error) {
	var combined []Message
	for _, path := range paths {
		msgs, err := p.ParseFile(path)
		if err != nil {
			return nil, fmt.Errorf("parsing %s: %w", path, err)
		}
		combined = append(combined, msgs...)
	}

	sort.SliceStable(combined, func(i, j int) bool {
		return combined[i].Timestamp.Before(combined[j].Timestamp)
	})

	return combined, nil
}
