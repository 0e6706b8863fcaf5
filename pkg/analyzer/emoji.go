package analyzer

import (
	"sort"

	"github.com/iampreetdave-max/analyze-text/pkg/parser"
)

// topEmojiLimit caps the chat-wide emoji ranking.
const topEmojiLimit = 50

// emojiRanges lists the codepoint blocks counted as emoji. The wide
// U+24C2..U+1F251 span covers enclosed characters and a large legacy
// region; it is kept as-is so rankings stay comparable across versions.
var emojiRanges = [...][2]rune{
	{0x1F600, 0x1F64F}, // emoticons
	{0x1F300, 0x1F5FF}, // symbols and pictographs
	{0x1F680, 0x1F6FF}, // transport and map symbols
	{0x1F1E0, 0x1F1FF}, // regional indicators (flags)
	{0x2702, 0x27B0},   // dingbats
	{0x24C2, 0x1F251},  // enclosed characters and legacy span
	{0x1F900, 0x1F9FF}, // supplemental symbols
	{0x1FA00, 0x1FAFF}, // extended symbols
}

func isEmoji(r rune) bool {
	for _, rng := range emojiRanges {
		if r >= rng[0] && r <= rng[1] {
			return true
		}
	}
	return false
}

// countEmojis counts emoji codepoints in body.
func countEmojis(body string) int {
	n := 0
	for _, r := range body {
		if isEmoji(r) {
			n++
		}
	}
	return n
}

// emojiCollector counts emoji codepoints globally and per author. Each
// codepoint counts individually; multi-rune sequences are not joined.
type emojiCollector struct {
	global      map[string]int
	globalFirst map[string]int
	users       map[string]*userEmojis
	seq         int
}

type userEmojis struct {
	counts map[string]int
	first  map[string]int
}

func newEmojiCollector() *emojiCollector {
	return &emojiCollector{
		global:      make(map[string]int),
		globalFirst: make(map[string]int),
		users:       make(map[string]*userEmojis),
	}
}

func (c *emojiCollector) process(m *parser.Message) {
	var u *userEmojis
	for _, r := range m.Body {
		if !isEmoji(r) {
			continue
		}
		if u == nil {
			u = c.users[m.Author]
			if u == nil {
				u = &userEmojis{
					counts: make(map[string]int),
					first:  make(map[string]int),
				}
				c.users[m.Author] = u
			}
		}

		e := string(r)
		c.seq++
		if _, ok := c.global[e]; !ok {
			c.globalFirst[e] = c.seq
		}
		c.global[e]++
		if _, ok := u.counts[e]; !ok {
			u.first[e] = c.seq
		}
		u.counts[e]++
	}
}

func (c *emojiCollector) finalize(a *Analysis) {
	a.TopEmojis = rankEmojis(c.global, c.globalFirst, topEmojiLimit)

	for name, ue := range c.users {
		u := a.user(name)
		for _, n := range ue.counts {
			u.EmojiCount += n
		}
		u.TopEmojis = rankEmojis(ue.counts, ue.first, 0)
	}
}

// rankEmojis orders counts most-frequent-first, breaking ties by first
// encounter. A limit of 0 means unlimited.
func rankEmojis(counts, first map[string]int, limit int) []EmojiCount {
	ranked := make([]EmojiCount, 0, len(counts))
	for e, n := range counts {
		ranked = append(ranked, EmojiCount{Emoji: e, Count: n})
	}
	sort.Slice(ranked, func(i, j int) bool {
		if ranked[i].Count != ranked[j].Count {
			return ranked[i].Count > ranked[j].Count
		}
		return first[ranked[i].Emoji] < first[ranked[j].Emoji]
	})
	if limit > 0 && len(ranked) > limit {
		ranked = ranked[:limit]
	}
	return ranked
}
