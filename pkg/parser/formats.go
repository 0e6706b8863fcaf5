package parser

import "regexp"

// HeaderFormat represents a known message header shape.
// Each pattern captures exactly four groups: date, time, author, body.
type HeaderFormat struct {
	Name       string         // Human-readable name
	Pattern    *regexp.Regexp // Compiled regex (set during construction)
	PatternStr string         // Pattern string for config output
	Example    string         // Example header line
}

// DefaultFormats returns the built-in header formats.
// Formats are tried in order per line; the first match wins, so the order
// is part of the parsing contract.
func DefaultFormats() []*HeaderFormat {
	formats := []*HeaderFormat{
		// DD/MM/YYYY, HH:MM - Author: Message (optional seconds and AM/PM)
		{
			Name:       "dash separated, slash dates",
			PatternStr: `^(\d{1,2}/\d{1,2}/\d{2,4}),?\s+(\d{1,2}:\d{2}(?::\d{2})?\s*(?:AM|PM|am|pm)?)\s*-\s*([^:]+):\s*(.*)$`,
			Example:    "01/02/2024, 10:30 - Alice: Hello",
		},
		// [DD/MM/YYYY, HH:MM:SS] Author: Message
		{
			Name:       "bracketed, slash dates",
			PatternStr: `^\[(\d{1,2}/\d{1,2}/\d{2,4}),?\s+(\d{1,2}:\d{2}(?::\d{2})?\s*(?:AM|PM|am|pm)?)\]\s*([^:]+):\s*(.*)$`,
			Example:    "[01/02/2024, 10:30:45] Alice: Hello",
		},
		// DD/MM/YY, HH:MM - Author: Message (24-hour clock)
		{
			Name:       "dash separated, 24-hour clock",
			PatternStr: `^(\d{1,2}/\d{1,2}/\d{2,4}),?\s+(\d{1,2}:\d{2})\s*-\s*([^:]+):\s*(.*)$`,
			Example:    "01/02/24, 22:15 - Alice: Hello",
		},
		// MM/DD/YY, HH:MM AM/PM - Author: Message (US exports)
		{
			Name:       "dash separated, 12-hour clock",
			PatternStr: `^(\d{1,2}/\d{1,2}/\d{2,4}),?\s+(\d{1,2}:\d{2}\s*(?:AM|PM|am|pm))\s*-\s*([^:]+):\s*(.*)$`,
			Example:    "2/1/24, 10:30 PM - Alice: Hello",
		},
		// DD.MM.YY, HH:MM - Author: Message (European exports)
		{
			Name:       "dash separated, dot dates",
			PatternStr: `^(\d{1,2}\.\d{1,2}\.\d{2,4}),?\s+(\d{1,2}:\d{2})\s*-\s*([^:]+):\s*(.*)$`,
			Example:    "01.02.24, 22:15 - Alice: Hello",
		},
	}

	for _, f := range formats {
		f.Pattern = regexp.MustCompile(f.PatternStr)
	}

	return formats
}
