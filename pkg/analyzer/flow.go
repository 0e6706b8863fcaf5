package analyzer

import (
	"time"

	"github.com/iampreetdave-max/analyze-text/pkg/parser"
)

const (
	// starterGap is the silence before a message counts as starting a
	// new conversation.
	starterGap = 2 * time.Hour

	// responseWindow is the longest gap still counted as a reply.
	// Gaps must be strictly under the window.
	responseWindow = 60 * time.Minute
)

// flowCollector derives conversation-starter counts and response times.
//
// Both metrics need "the most recent earlier message" relative to each
// message in the sorted sequence, so the collector keeps O(1) running
// state instead of rescanning: the previous message overall, plus a
// two-slot record of the newest message and the newest message by anyone
// other than its author. The second slot answers "latest message not by
// me" even when one author sends an uninterrupted run.
type flowCollector struct {
	prev    time.Time
	hasPrev bool

	lastAuthor string
	last       time.Time
	hasLast    bool
	other      time.Time // newest message by someone other than lastAuthor
	hasOther   bool

	users map[string]*flowTally
}

type flowTally struct {
	starters    int
	responseSum float64
	responseN   int
}

func newFlowCollector() *flowCollector {
	return &flowCollector{
		users: make(map[string]*flowTally),
	}
}

func (c *flowCollector) process(m *parser.Message) {
	t := c.users[m.Author]
	if t == nil {
		t = &flowTally{}
		c.users[m.Author] = t
	}

	if !c.hasPrev || m.Timestamp.Sub(c.prev) >= starterGap {
		t.starters++
	}
	c.prev = m.Timestamp
	c.hasPrev = true

	var prevOther time.Time
	var ok bool
	if c.hasLast && c.lastAuthor != m.Author {
		prevOther, ok = c.last, true
	} else if c.hasOther {
		prevOther, ok = c.other, true
	}
	if ok {
		if gap := m.Timestamp.Sub(prevOther); gap < responseWindow {
			t.responseSum += gap.Minutes()
			t.responseN++
		}
	}

	if c.hasLast && c.lastAuthor != m.Author {
		c.other = c.last
		c.hasOther = true
	}
	c.lastAuthor = m.Author
	c.last = m.Timestamp
	c.hasLast = true
}

func (c *flowCollector) finalize(a *Analysis) {
	for name, t := range c.users {
		u := a.user(name)
		u.ConversationStarters = t.starters
		if t.responseN > 0 {
			avg := t.responseSum / float64(t.responseN)
			u.AvgResponseTime = &avg
		}
	}
}
