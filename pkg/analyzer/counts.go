package analyzer

import (
	"strings"

	"github.com/iampreetdave-max/analyze-text/pkg/parser"
)

// countsCollector accumulates message, word, media, question, link and
// sentiment counts, globally and per author.
type countsCollector struct {
	engine *Engine
	users  map[string]*userTally

	totalWords   int
	totalMedia   int
	totalDeleted int
	totalLinks   int
}

type userTally struct {
	messages  int
	words     int
	questions int
	media     int
	links     int
	sentiment int
}

func newCountsCollector(e *Engine) *countsCollector {
	return &countsCollector{
		engine: e,
		users:  make(map[string]*userTally),
	}
}

func (c *countsCollector) process(m *parser.Message) {
	t := c.users[m.Author]
	if t == nil {
		t = &userTally{}
		c.users[m.Author] = t
	}
	t.messages++

	words := len(strings.Fields(m.Body))
	t.words += words
	c.totalWords += words

	if strings.Contains(m.Body, "?") {
		t.questions++
	}

	if c.engine.isMedia(m.Body) {
		t.media++
		c.totalMedia++
	}
	if c.engine.isDeleted(m.Body) {
		c.totalDeleted++
	}
	if hasLink(m.Body) {
		t.links++
		c.totalLinks++
	}

	for _, w := range strings.Fields(strings.ToLower(m.Body)) {
		if positiveWords[w] {
			t.sentiment++
		}
		if negativeWords[w] {
			t.sentiment--
		}
	}
}

func (c *countsCollector) finalize(a *Analysis) {
	a.TotalWords = c.totalWords
	a.MediaCount = c.totalMedia
	a.DeletedMessages = c.totalDeleted
	a.LinkCount = c.totalLinks

	for name, t := range c.users {
		u := a.user(name)
		u.MessageCount = t.messages
		u.WordCount = t.words
		if t.messages > 0 {
			u.AvgMessageLength = float64(t.words) / float64(t.messages)
		}
		u.QuestionCount = t.questions
		u.MediaCount = t.media
		u.LinkCount = t.links
		u.SentimentScore = t.sentiment
	}
}
