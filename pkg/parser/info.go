package parser

// Info summarizes a parsed chronology without analyzing content.
//
// Participant names appear in order of first message. An empty input
// yields a zero ChatInfo.
func Info(messages []Message) ChatInfo {
	if len(messages) == 0 {
		return ChatInfo{}
	}

	seen := make(map[string]bool)
	var names []string
	for _, m := range messages {
		if !seen[m.Author] {
			seen[m.Author] = true
			names = append(names, m.Author)
		}
	}

	start := messages[0].Timestamp
	end := messages[len(messages)-1].Timestamp

	return ChatInfo{
		TotalMessages:    len(messages),
		Participants:     len(names),
		ParticipantNames: names,
		StartDate:        start,
		EndDate:          end,
		DurationDays:     int(end.Sub(start).Hours() / 24),
	}
}
