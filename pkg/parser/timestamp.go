package parser

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// meridiemRe strips AM/PM markers out of a captured time string.
var meridiemRe = regexp.MustCompile(`\s*[AaPp][Mm]\s*`)

// ResolveTimestamp parses the date and time capture groups of a header line.
//
// Date fields are disambiguated deterministically: a field greater than 12
// forces the other field into the month slot; when both are 12 or less the
// day-first reading is used. Two-digit years are windowed into 2000-2099.
// Time accepts hour[:minute[:second]] with an optional case-insensitive
// AM/PM marker.
//
// Returns an error when the fields do not form a valid calendar date/time.
// Callers treat that as a non-match for the line, never as a fatal failure.
func ResolveTimestamp(dateStr, timeStr string) (time.Time, error) {
	normalized := strings.ReplaceAll(dateStr, ".", "/")
	parts := strings.Split(normalized, "/")
	if len(parts) != 3 {
		return time.Time{}, fmt.Errorf("date %q: want 3 fields, got %d", dateStr, len(parts))
	}

	a, err := strconv.Atoi(parts[0])
	if err != nil {
		return time.Time{}, fmt.Errorf("date %q: %w", dateStr, err)
	}
	b, err := strconv.Atoi(parts[1])
	if err != nil {
		return time.Time{}, fmt.Errorf("date %q: %w", dateStr, err)
	}
	year, err := strconv.Atoi(parts[2])
	if err != nil {
		return time.Time{}, fmt.Errorf("date %q: %w", dateStr, err)
	}

	var day, month int
	switch {
	case a > 12:
		// A month can never exceed 12, so the first field must be the day.
		day, month = a, b
	case b > 12:
		day, month = b, a
	default:
		// Genuinely ambiguous. Day-first is the documented default.
		day, month = a, b
	}

	if year < 100 {
		year += 2000
	}

	timeStr = strings.TrimSpace(timeStr)
	lower := strings.ToLower(timeStr)
	isPM := strings.Contains(lower, "pm")
	isAM := strings.Contains(lower, "am")
	timeStr = meridiemRe.ReplaceAllString(timeStr, "")

	fields := strings.Split(timeStr, ":")
	hour, err := strconv.Atoi(fields[0])
	if err != nil {
		return time.Time{}, fmt.Errorf("time %q: %w", timeStr, err)
	}
	minute, second := 0, 0
	if len(fields) > 1 {
		if minute, err = strconv.Atoi(fields[1]); err != nil {
			return time.Time{}, fmt.Errorf("time %q: %w", timeStr, err)
		}
	}
	if len(fields) > 2 {
		if second, err = strconv.Atoi(fields[2]); err != nil {
			return time.Time{}, fmt.Errorf("time %q: %w", timeStr, err)
		}
	}

	if isPM && hour != 12 {
		hour += 12
	} else if isAM && hour == 12 {
		hour = 0
	}

	ts := time.Date(year, time.Month(month), day, hour, minute, second, 0, time.UTC)

	// time.Date normalizes out-of-range fields (day 32 rolls into the next
	// month), so a round-trip mismatch means the input was not a real
	// calendar date/time.
	if ts.Year() != year || ts.Month() != time.Month(month) || ts.Day() != day ||
		ts.Hour() != hour || ts.Minute() != minute || ts.Second() != second {
		return time.Time{}, fmt.Errorf("invalid calendar value %04d-%02d-%02d %02d:%02d:%02d",
			year, month, day, hour, minute, second)
	}

	return ts, nil
}
