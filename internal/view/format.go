package view

import (
	"fmt"
	"strings"
	"time"
	"unicode/utf8"
)

// PreviewLength is the number of characters kept by Preview.
const PreviewLength = 100

// RelativeTime labels t relative to now. Elapsed time is floored to whole
// minutes, hours or days; anything a week or older prints as a calendar
// date in the local zone. Timestamps in the future count as "just now".
func RelativeTime(t, now time.Time) string {
	d := now.Sub(t)
	minutes := int64(d / time.Minute)
	hours := int64(d / time.Hour)
	days := int64(d / (24 * time.Hour))

	switch {
	case minutes < 1:
		return "just now"
	case minutes < 60:
		return fmt.Sprintf("%d minutes ago", minutes)
	case hours < 24:
		return fmt.Sprintf("%d hours ago", hours)
	case days < 7:
		return fmt.Sprintf("%d days ago", days)
	default:
		return t.Local().Format("2006/1/2")
	}
}

// Preview truncates s to PreviewLength characters followed by "...".
func Preview(s string) string {
	if utf8.RuneCountInString(s) <= PreviewLength {
		return s
	}
	return string([]rune(s)[:PreviewLength]) + "..."
}

// Paragraphs splits content on newlines, dropping blank lines.
func Paragraphs(content string) []string {
	var out []string
	for _, line := range strings.Split(content, "\n") {
		if strings.TrimSpace(line) != "" {
			out = append(out, line)
		}
	}
	return out
}
