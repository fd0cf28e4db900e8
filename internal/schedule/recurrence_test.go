package schedule

import (
	"testing"
	"time"

	"ms-attendance/internal/models"
)

func at(year int, month time.Month, day, hour, minute int) time.Time {
	return time.Date(year, month, day, hour, minute, 0, 0, time.Local)
}

func weeklySchedule() *Schedule {
	// Monday 2024-01-01 at 09:00, hour-long occurrences
	return &Schedule{
		Recurrence: RecurrenceWeekly,
		Anchor:     at(2024, time.January, 1, 9, 0),
		Duration:   60 * time.Minute,
	}
}

func TestParseRecurrence(t *testing.T) {
	tests := []struct {
		in     string
		want   Recurrence
		wantOK bool
	}{
		{"", RecurrenceNone, true},
		{"NONE", RecurrenceNone, true},
		{"daily", RecurrenceDaily, true},
		{" WEEKLY ", RecurrenceWeekly, true},
		{"BIWEEKLY", RecurrenceBiweekly, true},
		{"Monthly", RecurrenceMonthly, true},
		{"WEEKDAY", RecurrenceWeekday, true},
		{"FORTNIGHTLY", RecurrenceNone, false},
	}
	for _, tt := range tests {
		got, ok := ParseRecurrence(tt.in)
		if got != tt.want || ok != tt.wantOK {
			t.Errorf("ParseRecurrence(%q) = (%v, %v), want (%v, %v)", tt.in, got, ok, tt.want, tt.wantOK)
		}
	}
}

func TestFromGroup(t *testing.T) {
	valid := &models.EventGroup{
		Recurrence:          "WEEKLY",
		RecurrenceStartDate: "2024-01-01",
		RecurrenceTime:      "09:00",
		DefaultDuration:     60,
		DefaultEventName:    "  Standup  ",
	}

	s := FromGroup(valid)
	if s == nil {
		t.Fatal("expected a schedule for a fully populated group")
	}
	if !s.Anchor.Equal(at(2024, time.January, 1, 9, 0)) {
		t.Errorf("Anchor = %v", s.Anchor)
	}
	if s.Duration != 60*time.Minute {
		t.Errorf("Duration = %v", s.Duration)
	}
	if s.EventName != "Standup" {
		t.Errorf("EventName = %q", s.EventName)
	}

	broken := []*models.EventGroup{
		nil,
		{Recurrence: "NONE", RecurrenceStartDate: "2024-01-01", RecurrenceTime: "09:00", DefaultDuration: 60},
		{Recurrence: "WEEKLY", RecurrenceStartDate: "01/01/2024", RecurrenceTime: "09:00", DefaultDuration: 60},
		{Recurrence: "WEEKLY", RecurrenceStartDate: "2024-01-01", RecurrenceTime: "9am", DefaultDuration: 60},
		{Recurrence: "WEEKLY", RecurrenceStartDate: "2024-01-01", RecurrenceTime: "09:00", DefaultDuration: 0},
		{Recurrence: "SOMETIMES", RecurrenceStartDate: "2024-01-01", RecurrenceTime: "09:00", DefaultDuration: 60},
	}
	for i, g := range broken {
		if FromGroup(g) != nil {
			t.Errorf("case %d: expected nil schedule", i)
		}
	}
}

func TestWeeklyCurrentAndNext(t *testing.T) {
	s := weeklySchedule()

	// One week after the anchor, half an hour into the occurrence.
	now := at(2024, time.January, 8, 9, 30)
	current, ok := s.CurrentOccurrence(now)
	if !ok {
		t.Fatal("expected a current occurrence at 09:30")
	}
	if want := at(2024, time.January, 8, 9, 0); !current.Equal(want) {
		t.Errorf("current = %v, want %v", current, want)
	}
	if next, want := s.NextOccurrence(now), at(2024, time.January, 15, 9, 0); !next.Equal(want) {
		t.Errorf("next = %v, want %v", next, want)
	}

	// After the window closes there is no current occurrence.
	now = at(2024, time.January, 8, 10, 30)
	if _, ok := s.CurrentOccurrence(now); ok {
		t.Error("expected no current occurrence after the window closed")
	}
	if next, want := s.NextOccurrence(now), at(2024, time.January, 15, 9, 0); !next.Equal(want) {
		t.Errorf("next = %v, want %v", next, want)
	}
}

func TestWeeklyBeforeAnchor(t *testing.T) {
	s := weeklySchedule()
	now := at(2023, time.December, 25, 8, 0)

	if _, ok := s.CurrentOccurrence(now); ok {
		t.Error("expected no current occurrence before the anchor")
	}
	if next := s.NextOccurrence(now); !next.Equal(s.Anchor) {
		t.Errorf("next = %v, want the anchor %v", next, s.Anchor)
	}
}

func TestWeeklyExactlyAtAnchor(t *testing.T) {
	s := weeklySchedule()

	current, ok := s.CurrentOccurrence(s.Anchor)
	if !ok || !current.Equal(s.Anchor) {
		t.Errorf("current = (%v, %v), want the anchor open", current, ok)
	}
	if next, want := s.NextOccurrence(s.Anchor), at(2024, time.January, 8, 9, 0); !next.Equal(want) {
		t.Errorf("next = %v, want %v", next, want)
	}
}

func TestDailyOccurrences(t *testing.T) {
	s := &Schedule{
		Recurrence: RecurrenceDaily,
		Anchor:     at(2024, time.January, 1, 9, 0),
		Duration:   30 * time.Minute,
	}

	now := at(2024, time.January, 5, 9, 10)
	current, ok := s.CurrentOccurrence(now)
	if !ok || !current.Equal(at(2024, time.January, 5, 9, 0)) {
		t.Errorf("current = (%v, %v)", current, ok)
	}
	if next, want := s.NextOccurrence(now), at(2024, time.January, 6, 9, 0); !next.Equal(want) {
		t.Errorf("next = %v, want %v", next, want)
	}

	// Before today's start time there is no current occurrence yet.
	now = at(2024, time.January, 5, 8, 0)
	if _, ok := s.CurrentOccurrence(now); ok {
		t.Error("expected no current occurrence before today's start")
	}
	if next, want := s.NextOccurrence(now), at(2024, time.January, 5, 9, 0); !next.Equal(want) {
		t.Errorf("next = %v, want %v", next, want)
	}
}

func TestWeekdaySkipsWeekends(t *testing.T) {
	s := &Schedule{
		Recurrence: RecurrenceWeekday,
		Anchor:     at(2024, time.January, 1, 9, 0), // Monday
		Duration:   60 * time.Minute,
	}

	// Friday evening: the next occurrence jumps over the weekend to Monday.
	now := at(2024, time.January, 5, 10, 0)
	if next, want := s.NextOccurrence(now), at(2024, time.January, 8, 9, 0); !next.Equal(want) {
		t.Errorf("next = %v, want Monday %v", next, want)
	}

	// Saturday: no current occurrence, next is still Monday.
	now = at(2024, time.January, 6, 9, 30)
	if _, ok := s.CurrentOccurrence(now); ok {
		t.Error("expected no current occurrence on a Saturday")
	}
	if next, want := s.NextOccurrence(now), at(2024, time.January, 8, 9, 0); !next.Equal(want) {
		t.Errorf("next = %v, want Monday %v", next, want)
	}

	// Next occurrences never land on a weekend across a whole month of nows.
	for day := 1; day <= 31; day++ {
		next := s.NextOccurrence(at(2024, time.January, day, 12, 0))
		if isWeekend(next) {
			t.Errorf("next from Jan %d lands on a weekend: %v", day, next)
		}
	}
}

func TestBiweeklyKeepsFourteenDayStride(t *testing.T) {
	s := &Schedule{
		Recurrence: RecurrenceBiweekly,
		Anchor:     at(2024, time.January, 1, 9, 0),
		Duration:   60 * time.Minute,
	}

	// Fourteen days after the anchor, inside the window.
	now := at(2024, time.January, 15, 9, 30)
	current, ok := s.CurrentOccurrence(now)
	if !ok || !current.Equal(at(2024, time.January, 15, 9, 0)) {
		t.Errorf("current = (%v, %v)", current, ok)
	}
	if next, want := s.NextOccurrence(now), at(2024, time.January, 29, 9, 0); !next.Equal(want) {
		t.Errorf("next = %v, want %v", next, want)
	}

	// The off week has no occurrence; the next one is the upcoming stride.
	now = at(2024, time.January, 8, 9, 30)
	if _, ok := s.CurrentOccurrence(now); ok {
		t.Error("expected no current occurrence on the off week")
	}
	if next, want := s.NextOccurrence(now), at(2024, time.January, 15, 9, 0); !next.Equal(want) {
		t.Errorf("next = %v, want %v", next, want)
	}
}

func TestMonthlyClampsToShortMonths(t *testing.T) {
	s := &Schedule{
		Recurrence: RecurrenceMonthly,
		Anchor:     at(2024, time.January, 31, 9, 0),
		Duration:   60 * time.Minute,
	}

	// Leap-year February clamps day 31 to the 29th.
	now := at(2024, time.February, 29, 9, 30)
	current, ok := s.CurrentOccurrence(now)
	if !ok || !current.Equal(at(2024, time.February, 29, 9, 0)) {
		t.Errorf("current = (%v, %v)", current, ok)
	}
	if next, want := s.NextOccurrence(now), at(2024, time.March, 31, 9, 0); !next.Equal(want) {
		t.Errorf("next = %v, want %v", next, want)
	}

	// Mid-April: nothing running, next is April's clamped day 30.
	now = at(2024, time.April, 15, 12, 0)
	if _, ok := s.CurrentOccurrence(now); ok {
		t.Error("expected no current occurrence mid-month")
	}
	if next, want := s.NextOccurrence(now), at(2024, time.April, 30, 9, 0); !next.Equal(want) {
		t.Errorf("next = %v, want %v", next, want)
	}
}

func TestMonthlyNonLeapFebruary(t *testing.T) {
	s := &Schedule{
		Recurrence: RecurrenceMonthly,
		Anchor:     at(2023, time.January, 31, 9, 0),
		Duration:   60 * time.Minute,
	}

	now := at(2023, time.February, 20, 12, 0)
	if next, want := s.NextOccurrence(now), at(2023, time.February, 28, 9, 0); !next.Equal(want) {
		t.Errorf("next = %v, want %v", next, want)
	}
}

func TestNilScheduleHasNoOccurrences(t *testing.T) {
	var s *Schedule
	if _, ok := s.CurrentOccurrence(time.Now()); ok {
		t.Error("nil schedule reported a current occurrence")
	}
	if next := s.NextOccurrence(time.Now()); !next.IsZero() {
		t.Errorf("nil schedule reported a next occurrence: %v", next)
	}
}
