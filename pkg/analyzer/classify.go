package analyzer

import (
	"regexp"
	"strings"
)

// urlRe matches URLs anywhere in a message body.
var urlRe = regexp.MustCompile(`http[s]?://(?:[a-zA-Z]|[0-9]|[$-_@.&+]|[!*\\(\\),]|(?:%[0-9a-fA-F][0-9a-fA-F]))+`)

// defaultMediaPlaceholders returns the built-in media placeholder
// substrings, lowercased. Export apps substitute these for attachments.
func defaultMediaPlaceholders() []string {
	return []string{
		"<media omitted>",
		"image omitted",
		"video omitted",
		"audio omitted",
		"document omitted",
		"sticker omitted",
		"gif omitted",
	}
}

// defaultDeletedMarkers returns the built-in deletion marker substrings,
// lowercased.
func defaultDeletedMarkers() []string {
	return []string{
		"deleted",
		"this message was deleted",
	}
}

func (e *Engine) isMedia(body string) bool {
	lower := strings.ToLower(body)
	for _, p := range e.media {
		if strings.Contains(lower, p) {
			return true
		}
	}
	return false
}

func (e *Engine) isDeleted(body string) bool {
	lower := strings.ToLower(body)
	for _, m := range e.deleted {
		if strings.Contains(lower, m) {
			return true
		}
	}
	return false
}

func hasLink(body string) bool {
	return urlRe.MatchString(body)
}
