package schedule

import (
	"strings"
	"time"

	"ms-attendance/internal/models"
)

// Recurrence enumerates the supported occurrence patterns. Keeping it a
// closed enum lets each computation switch exhaustively over the variants
// instead of comparing raw strings.
type Recurrence int

const (
	RecurrenceNone Recurrence = iota
	RecurrenceDaily
	RecurrenceWeekday
	RecurrenceWeekly
	RecurrenceBiweekly
	RecurrenceMonthly
)

// ParseRecurrence normalizes a stored recurrence value. An empty string means
// NONE; anything outside the known set reports ok=false.
func ParseRecurrence(value string) (Recurrence, bool) {
	switch strings.ToUpper(strings.TrimSpace(value)) {
	case "", "NONE":
		return RecurrenceNone, true
	case "DAILY":
		return RecurrenceDaily, true
	case "WEEKDAY":
		return RecurrenceWeekday, true
	case "WEEKLY":
		return RecurrenceWeekly, true
	case "BIWEEKLY":
		return RecurrenceBiweekly, true
	case "MONTHLY":
		return RecurrenceMonthly, true
	}
	return RecurrenceNone, false
}

func (r Recurrence) String() string {
	switch r {
	case RecurrenceDaily:
		return "DAILY"
	case RecurrenceWeekday:
		return "WEEKDAY"
	case RecurrenceWeekly:
		return "WEEKLY"
	case RecurrenceBiweekly:
		return "BIWEEKLY"
	case RecurrenceMonthly:
		return "MONTHLY"
	}
	return "NONE"
}

// Schedule is the fully validated recurrence description of a group: the
// anchor instant (first possible occurrence), the pattern and the occurrence
// duration. No occurrence ever starts before the anchor.
type Schedule struct {
	Recurrence Recurrence
	Anchor     time.Time
	Duration   time.Duration
	EventName  string
}

// FromGroup derives a group's schedule. It returns nil whenever recurrence is
// NONE or any schedule field is missing or invalid; callers must treat nil as
// "recurrence inactive". Malformed data never reaches the occurrence math.
func FromGroup(g *models.EventGroup) *Schedule {
	if g == nil {
		return nil
	}
	rec, ok := ParseRecurrence(g.Recurrence)
	if !ok || rec == RecurrenceNone {
		return nil
	}
	date, ok := ParseDateOnly(g.RecurrenceStartDate)
	if !ok {
		return nil
	}
	hour, minute, ok := ParseClock(g.RecurrenceTime)
	if !ok {
		return nil
	}
	if g.DefaultDuration <= 0 {
		return nil
	}

	anchor := time.Date(date.Year(), date.Month(), date.Day(), hour, minute, 0, 0, time.Local)
	return &Schedule{
		Recurrence: rec,
		Anchor:     anchor,
		Duration:   time.Duration(g.DefaultDuration) * time.Minute,
		EventName:  strings.TrimSpace(g.DefaultEventName),
	}
}

// CurrentOccurrence returns the start of the occurrence in progress at now,
// if any. An occurrence is in progress only while now falls inside its
// half-open window [start, start+duration); once a window closes there is no
// current occurrence until the next one begins.
func (s *Schedule) CurrentOccurrence(now time.Time) (time.Time, bool) {
	if s == nil || s.Recurrence == RecurrenceNone {
		return time.Time{}, false
	}

	var candidate time.Time
	switch s.Recurrence {
	case RecurrenceDaily:
		candidate = currentDaily(s.Anchor, now)
	case RecurrenceWeekday:
		candidate = currentWeekday(s.Anchor, now)
	case RecurrenceWeekly:
		candidate = currentWeekly(s.Anchor, now)
	case RecurrenceBiweekly:
		candidate = currentBiweekly(s.Anchor, now)
	case RecurrenceMonthly:
		candidate = currentMonthly(s.Anchor, now)
	}

	if now.Before(candidate) || !now.Before(candidate.Add(s.Duration)) {
		return time.Time{}, false
	}
	return candidate, true
}

// NextOccurrence returns the earliest occurrence start strictly after now,
// never earlier than the anchor. When now precedes the anchor entirely the
// anchor itself is the next occurrence.
func (s *Schedule) NextOccurrence(now time.Time) time.Time {
	if s == nil || s.Recurrence == RecurrenceNone {
		return time.Time{}
	}

	var candidate time.Time
	switch s.Recurrence {
	case RecurrenceDaily:
		candidate = nextDaily(s.Anchor, now)
	case RecurrenceWeekday:
		candidate = nextWeekday(s.Anchor, now)
	case RecurrenceWeekly:
		candidate = nextWeekly(s.Anchor, now)
	case RecurrenceBiweekly:
		candidate = nextBiweekly(s.Anchor, now)
	case RecurrenceMonthly:
		candidate = nextMonthly(s.Anchor, now)
	}

	if candidate.Before(s.Anchor) {
		return s.Anchor
	}
	return candidate
}

// ---- per-pattern candidates, "current" side ----

func currentDaily(anchor, now time.Time) time.Time {
	candidate := atClock(now, anchor)
	if candidate.Before(anchor) {
		candidate = anchor
	}
	return candidate
}

func currentWeekday(anchor, now time.Time) time.Time {
	candidate := currentDaily(anchor, now)
	// Walk backward over weekend days, but never past the anchor.
	for isWeekend(candidate) {
		candidate = atClock(candidate.AddDate(0, 0, -1), anchor)
		if candidate.Before(anchor) {
			return anchor
		}
	}
	return candidate
}

func currentWeekly(anchor, now time.Time) time.Time {
	candidate := atClock(now, anchor)
	back := (int(candidate.Weekday()) - int(anchor.Weekday()) + 7) % 7
	candidate = atClock(candidate.AddDate(0, 0, -back), anchor)
	if candidate.Before(anchor) {
		candidate = anchor
	}
	return candidate
}

func currentBiweekly(anchor, now time.Time) time.Time {
	days := int(now.Sub(anchor) / (24 * time.Hour))
	candidate := atClock(anchor.AddDate(0, 0, (days/14)*14), anchor)
	if candidate.After(now) {
		candidate = atClock(candidate.AddDate(0, 0, -14), anchor)
	}
	if candidate.Before(anchor) {
		candidate = anchor
	}
	return candidate
}

func currentMonthly(anchor, now time.Time) time.Time {
	candidate := monthlyOn(now.Year(), now.Month(), anchor)
	if candidate.After(now) {
		year, month := prevMonth(now.Year(), now.Month())
		candidate = monthlyOn(year, month, anchor)
	}
	if candidate.Before(anchor) {
		candidate = anchor
	}
	return candidate
}

// ---- per-pattern candidates, "next" side ----

func nextDaily(anchor, now time.Time) time.Time {
	candidate := atClock(now, anchor)
	if !candidate.After(now) {
		candidate = atClock(candidate.AddDate(0, 0, 1), anchor)
	}
	return candidate
}

func nextWeekday(anchor, now time.Time) time.Time {
	candidate := nextDaily(anchor, now)
	for isWeekend(candidate) {
		candidate = atClock(candidate.AddDate(0, 0, 1), anchor)
	}
	return candidate
}

func nextWeekly(anchor, now time.Time) time.Time {
	candidate := atClock(now, anchor)
	ahead := (int(anchor.Weekday()) - int(candidate.Weekday()) + 7) % 7
	candidate = atClock(candidate.AddDate(0, 0, ahead), anchor)
	if !candidate.After(now) {
		candidate = atClock(candidate.AddDate(0, 0, 7), anchor)
	}
	return candidate
}

func nextBiweekly(anchor, now time.Time) time.Time {
	const stride = 14 * 24 * time.Hour
	intervals := 0
	if diff := now.Sub(anchor); diff > 0 {
		intervals = int((diff + stride - 1) / stride)
	}
	candidate := atClock(anchor.AddDate(0, 0, intervals*14), anchor)
	if !candidate.After(now) {
		candidate = atClock(candidate.AddDate(0, 0, 14), anchor)
	}
	return candidate
}

func nextMonthly(anchor, now time.Time) time.Time {
	candidate := monthlyOn(now.Year(), now.Month(), anchor)
	if !candidate.After(now) {
		year, month := nextMonth(now.Year(), now.Month())
		candidate = monthlyOn(year, month, anchor)
	}
	return candidate
}

// ---- calendar helpers ----

// atClock places day's calendar date at the anchor's wall-clock time.
func atClock(day, ref time.Time) time.Time {
	return time.Date(day.Year(), day.Month(), day.Day(), ref.Hour(), ref.Minute(), 0, 0, day.Location())
}

func isWeekend(t time.Time) bool {
	wd := t.Weekday()
	return wd == time.Saturday || wd == time.Sunday
}

// monthlyOn is the anchor's day-of-month placed in the target month, clamped
// to that month's last day. The clamp is recomputed per month, so a day-31
// anchor lands on Feb 28/29, Apr 30 and so on.
func monthlyOn(year int, month time.Month, anchor time.Time) time.Time {
	day := anchor.Day()
	if last := daysInMonth(year, month); day > last {
		day = last
	}
	return time.Date(year, month, day, anchor.Hour(), anchor.Minute(), 0, 0, anchor.Location())
}

func daysInMonth(year int, month time.Month) int {
	// Day zero of the following month normalizes to this month's last day.
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.Local).Day()
}

func prevMonth(year int, month time.Month) (int, time.Month) {
	if month == time.January {
		return year - 1, time.December
	}
	return year, month - 1
}

func nextMonth(year int, month time.Month) (int, time.Month) {
	if month == time.December {
		return year + 1, time.January
	}
	return year, month + 1
}
