// Package analyzer computes per-author and chat-wide statistics from
// parsed chat messages.
package analyzer

import (
	"strings"

	"github.com/iampreetdave-max/analyze-text/pkg/parser"
)

// collector accumulates one family of statistics during a single pass over
// the message sequence. Each collector sees every message in chronological
// order, then writes its results into the Analysis.
type collector interface {
	// process handles a single message, updating internal state.
	process(m *parser.Message)

	// finalize completes the computation and fills in the Analysis.
	// Called once after all messages have been processed.
	finalize(a *Analysis)
}

// Engine computes chat statistics.
type Engine struct {
	media   []string // lowercase media placeholder substrings
	deleted []string // lowercase deletion marker substrings
}

// Option configures an Engine.
type Option func(*Engine)

// WithMediaPlaceholders appends extra media placeholder substrings to the
// built-in set. Matching is case-insensitive.
func WithMediaPlaceholders(placeholders []string) Option {
	return func(e *Engine) {
		for _, p := range placeholders {
			e.media = append(e.media, strings.ToLower(p))
		}
	}
}

// WithDeletedMarkers appends extra deletion marker substrings to the
// built-in set. Matching is case-insensitive.
func WithDeletedMarkers(markers []string) Option {
	return func(e *Engine) {
		for _, m := range markers {
			e.deleted = append(e.deleted, strings.ToLower(m))
		}
	}
}

// New creates an Engine with the built-in placeholder sets.
func New(opts ...Option) *Engine {
	e := &Engine{
		media:   defaultMediaPlaceholders(),
		deleted: defaultDeletedMarkers(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Analyze computes statistics for a chronologically sorted message
// sequence. The input is only read; the returned Analysis holds no
// reference to it. Empty input yields a well-formed zero Analysis.
func (e *Engine) Analyze(messages []parser.Message) *Analysis {
	a := &Analysis{
		TotalMessages: len(messages),
		Users:         make(map[string]*UserStats),
		TopEmojis:     []EmojiCount{},
		DailyActivity: []DailyCount{},
	}

	collectors := []collector{
		newCountsCollector(e),
		newEmojiCollector(),
		newActivityCollector(),
		newFlowCollector(),
		newQualityCollector(e),
	}

	for i := range messages {
		for _, c := range collectors {
			c.process(&messages[i])
		}
	}

	for _, c := range collectors {
		c.finalize(a)
	}

	return a
}

// user returns the stats entry for name, creating it on first use.
func (a *Analysis) user(name string) *UserStats {
	u, ok := a.Users[name]
	if !ok {
		u = &UserStats{}
		a.Users[name] = u
	}
	return u
}
