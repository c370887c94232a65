package dispatch

import (
	"fmt"
	"strings"
	"time"
)

// DateLayout is the canonical calendar-day key used everywhere in the domain.
const DateLayout = "2006-01-02"

// FormatDate renders t as a canonical date in t's location.
func FormatDate(t time.Time) string {
	return t.Format(DateLayout)
}

// ParseDate parses a canonical date as midnight UTC.
func ParseDate(s string) (time.Time, error) {
	t, err := time.Parse(DateLayout, strings.TrimSpace(s))
	if err != nil {
		return time.Time{}, fmt.Errorf("dispatch: invalid date %q: %w", s, err)
	}
	return t, nil
}

// ValidDate reports whether s is a canonical date.
func ValidDate(s string) bool {
	_, err := ParseDate(s)
	return err == nil
}

// AddDays shifts a canonical date by n calendar days (n may be negative).
func AddDays(date string, n int) (string, error) {
	t, err := ParseDate(date)
	if err != nil {
		return "", err
	}
	return FormatDate(t.AddDate(0, 0, n)), nil
}

// Today returns the canonical date of now in now's location.
func Today(now time.Time) string {
	return FormatDate(now)
}

// ShortDate renders a canonical date as "Jan 2"; invalid input is returned as-is.
func ShortDate(date string) string {
	t, err := ParseDate(date)
	if err != nil {
		return date
	}
	return t.Format("Jan 2")
}

var weekdays = map[string]time.Weekday{
	"sunday":    time.Sunday,
	"monday":    time.Monday,
	"tuesday":   time.Tuesday,
	"wednesday": time.Wednesday,
	"thursday":  time.Thursday,
	"friday":    time.Friday,
	"saturday":  time.Saturday,
}

// ParseWeekday resolves a lowercase or mixed-case English weekday name.
func ParseWeekday(name string) (time.Weekday, bool) {
	d, ok := weekdays[strings.ToLower(strings.TrimSpace(name))]
	return d, ok
}

// NextWeekday returns the canonical date of the next occurrence of day strictly
// after now's calendar day. Asking for today's weekday yields a week out.
func NextWeekday(now time.Time, day time.Weekday) string {
	delta := int(day) - int(now.Weekday())
	if delta <= 0 {
		delta += 7
	}
	return FormatDate(now.AddDate(0, 0, delta))
}

// IsWeekday reports Monday through Friday.
func IsWeekday(t time.Time) bool {
	d := t.Weekday()
	return d > time.Sunday && d < time.Saturday
}
