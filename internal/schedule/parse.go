package schedule

import (
	"strings"
	"time"
)

const (
	dateOnlyLayout = "2006-01-02"
	clockLayout    = "15:04"
)

// ParseDateOnly parses a YYYY-MM-DD calendar date as local midnight.
func ParseDateOnly(value string) (time.Time, bool) {
	s := strings.TrimSpace(value)
	if len(s) != len(dateOnlyLayout) {
		return time.Time{}, false
	}
	t, err := time.ParseInLocation(dateOnlyLayout, s, time.Local)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

// ParseClock parses an HH:mm wall-clock time into hour and minute.
func ParseClock(value string) (hour, minute int, ok bool) {
	s := strings.TrimSpace(value)
	if len(s) != len(clockLayout) {
		return 0, 0, false
	}
	t, err := time.Parse(clockLayout, s)
	if err != nil {
		return 0, 0, false
	}
	return t.Hour(), t.Minute(), true
}

// FormatDateOnly renders a time's calendar date as YYYY-MM-DD.
func FormatDateOnly(t time.Time) string {
	return t.Format(dateOnlyLayout)
}

// FormatClock renders a time's wall clock as HH:mm.
func FormatClock(t time.Time) string {
	return t.Format(clockLayout)
}
