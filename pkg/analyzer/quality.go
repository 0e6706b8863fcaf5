package analyzer

import (
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/iampreetdave-max/analyze-text/pkg/parser"
)

const (
	// bestLineLimit is how many top messages each author keeps.
	bestLineLimit = 5

	// minQualityLength excludes trivially short bodies from ranking.
	minQualityLength = 10
)

// qualityCollector ranks each author's messages by a heuristic quality
// score. Media placeholders and very short bodies are skipped.
type qualityCollector struct {
	engine *Engine
	users  map[string][]BestLine
}

func newQualityCollector(e *Engine) *qualityCollector {
	return &qualityCollector{
		engine: e,
		users:  make(map[string][]BestLine),
	}
}

func (c *qualityCollector) process(m *parser.Message) {
	if c.engine.isMedia(m.Body) {
		return
	}
	length := utf8.RuneCountInString(m.Body)
	if length < minQualityLength {
		return
	}

	score := 0
	switch {
	case length >= 20 && length <= 100:
		score += 3
	case length > 100:
		score += 2
	default:
		score++
	}

	if n := countEmojis(m.Body); n >= 1 && n <= 3 {
		score += 2
	}

	if strings.ContainsAny(m.Body, "?!") {
		score++
	}

	for _, w := range strings.Fields(strings.ToLower(m.Body)) {
		if positiveWords[w] {
			score += 2
			break
		}
	}

	c.users[m.Author] = append(c.users[m.Author], BestLine{
		Body:      m.Body,
		Timestamp: m.Timestamp,
		Score:     score,
	})
}

func (c *qualityCollector) finalize(a *Analysis) {
	for name, lines := range c.users {
		// Stable keeps chronological order among equal scores.
		sort.SliceStable(lines, func(i, j int) bool {
			return lines[i].Score > lines[j].Score
		})
		if len(lines) > bestLineLimit {
			lines = lines[:bestLineLimit]
		}
		a.user(name).BestLines = lines
	}
}
