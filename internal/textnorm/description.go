package textnorm

import (
	"regexp"
	"strings"
)

var (
	bullet         = regexp.MustCompile(`[ \t]*•[ \t]*`)
	hoursLine      = regexp.MustCompile(`[ \t]*(\d+ Hours/)`)
	sectionHeaders = regexp.MustCompile(`[ \t]*(Work Location:|Additional Information:|To Apply:|Hours/Shift:)`)
	blankLines     = regexp.MustCompile(`\n\s*\n\s*\n`)
)

// FormatDescription normalizes a job description and lays it out as paragraphs and
// "- " prefixed list items.
func FormatDescription(raw string) string {
	if raw == "" {
		return raw
	}

	s := Normalize(raw)
	s = bullet.ReplaceAllString(s, "\n- ")
	s = hoursLine.ReplaceAllString(s, "\n$1")
	s = sectionHeaders.ReplaceAllString(s, "\n\n$1")
	s = blankLines.ReplaceAllString(s, "\n\n")
	return strings.TrimSpace(s)
}
