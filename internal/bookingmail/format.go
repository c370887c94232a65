package bookingmail

import (
	"regexp"
	"strings"
	"time"
)

var yearRE = regexp.MustCompile(`\b\d{4}\b`)

var eventDateLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02",
	"2006/01/02",
	"01/02/2006",
	"1/2/2006",
	"January 2, 2006",
	"January 2 2006",
	"Jan 2, 2006",
	"Jan 2 2006",
	"2 January 2006",
	"Monday, January 2, 2006",
	"Mon, Jan 2, 2006",
	"January 2",
	"Jan 2",
	"1/2",
}

// FormatEventDate renders a visitor-supplied date as "June 14, 2025", or as
// "June 14" when the input carried no four-digit year. Input that does not
// parse is returned unchanged.
func FormatEventDate(s string) string {
	trimmed := strings.TrimSpace(s)
	if trimmed == "" {
		return s
	}
	for _, layout := range eventDateLayouts {
		t, err := time.Parse(layout, trimmed)
		if err != nil {
			continue
		}
		if yearRE.MatchString(trimmed) {
			return t.Format("January 2, 2006")
		}
		return t.Format("January 2")
	}
	return s
}
