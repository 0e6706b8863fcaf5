package analyzer

import (
	"time"

	"github.com/iampreetdave-max/analyze-text/pkg/parser"
)

// dailyWindowDays is the length of the daily activity series.
const dailyWindowDays = 30

// activityCollector buckets messages by hour, weekday and day, and tracks
// per-author time-of-day counts.
type activityCollector struct {
	hourly  [24]int
	weekday [7]int
	stamps  []time.Time
	users   map[string]*timeOfDay
}

type timeOfDay struct {
	night   int
	morning int
}

func newActivityCollector() *activityCollector {
	return &activityCollector{
		users: make(map[string]*timeOfDay),
	}
}

func (c *activityCollector) process(m *parser.Message) {
	h := m.Timestamp.Hour()
	c.hourly[h]++
	c.weekday[int(m.Timestamp.Weekday())]++
	c.stamps = append(c.stamps, m.Timestamp)

	t := c.users[m.Author]
	if t == nil {
		t = &timeOfDay{}
		c.users[m.Author] = t
	}
	if h >= 22 || h < 4 {
		t.night++
	}
	if h >= 5 && h < 9 {
		t.morning++
	}
}

func (c *activityCollector) finalize(a *Analysis) {
	a.HourlyActivity = c.hourly
	a.WeekdayActivity = c.weekday
	a.DailyActivity = dailySeries(c.stamps)

	for name, t := range c.users {
		u := a.user(name)
		u.NightOwlScore = t.night
		u.MorningScore = t.morning
	}
}

// dailySeries buckets messages into the trailing 30-day window ending at
// the latest timestamp. The cutoff keeps its time of day, so messages on
// the first window date but before the cutoff instant are excluded.
func dailySeries(stamps []time.Time) []DailyCount {
	series := make([]DailyCount, 0, dailyWindowDays)
	if len(stamps) == 0 {
		return series
	}

	latest := stamps[0]
	for _, ts := range stamps[1:] {
		if ts.After(latest) {
			latest = ts
		}
	}
	cutoff := latest.AddDate(0, 0, -(dailyWindowDays - 1))

	counts := make(map[string]int)
	for _, ts := range stamps {
		if ts.Before(cutoff) {
			continue
		}
		counts[ts.Format("2006-01-02")]++
	}

	for day := 0; day < dailyWindowDays; day++ {
		date := cutoff.AddDate(0, 0, day).Format("2006-01-02")
		series = append(series, DailyCount{Date: date, Count: counts[date]})
	}
	return series
}
