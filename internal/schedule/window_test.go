package schedule

import (
	"testing"
	"time"

	"ms-attendance/internal/models"
)

func TestEventWindowBoundaries(t *testing.T) {
	start := time.Date(2024, time.March, 4, 10, 0, 0, 0, time.Local)

	tests := []struct {
		name     string
		now      time.Time
		duration int
		wantOpen bool
	}{
		{"one minute before start", start.Add(-time.Minute), 30, false},
		{"exactly at start", start, 30, true},
		{"mid window", start.Add(15 * time.Minute), 30, true},
		{"last minute of window", start.Add(29 * time.Minute), 30, true},
		{"exactly at end", start.Add(30 * time.Minute), 30, false},
		{"after end", start.Add(45 * time.Minute), 30, false},
		{"zero duration", start, 0, false},
		{"negative duration", start, -10, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := EventWindow(start, tt.duration, tt.now)
			if w.IsOpen != tt.wantOpen {
				t.Errorf("IsOpen = %v, want %v", w.IsOpen, tt.wantOpen)
			}
			wantStatus := models.StatusClosed
			if tt.wantOpen {
				wantStatus = models.StatusOpen
			}
			if w.Status != wantStatus {
				t.Errorf("Status = %q, want %q", w.Status, wantStatus)
			}
		})
	}
}

func TestEventWindowNinetyMinuteEvent(t *testing.T) {
	start := time.Date(2024, time.March, 4, 9, 0, 0, 0, time.Local)

	if w := EventWindow(start, 90, time.Date(2024, time.March, 4, 10, 29, 0, 0, time.Local)); !w.IsOpen {
		t.Error("expected window open at 10:29 for a 09:00 + 90min event")
	}
	if w := EventWindow(start, 90, time.Date(2024, time.March, 4, 10, 30, 0, 0, time.Local)); w.IsOpen {
		t.Error("expected window closed at 10:30 for a 09:00 + 90min event")
	}
}

func TestEventWindowZeroStart(t *testing.T) {
	w := EventWindow(time.Time{}, 60, time.Now())
	if w.IsOpen {
		t.Error("expected zero start time to be closed")
	}
	if w.Status != models.StatusClosed {
		t.Errorf("Status = %q, want %q", w.Status, models.StatusClosed)
	}
	if !w.End.IsZero() {
		t.Errorf("expected zero end time, got %v", w.End)
	}
}

func TestEventWindowEnd(t *testing.T) {
	start := time.Date(2024, time.March, 4, 10, 0, 0, 0, time.Local)
	w := EventWindow(start, 45, start)
	if want := start.Add(45 * time.Minute); !w.End.Equal(want) {
		t.Errorf("End = %v, want %v", w.End, want)
	}
}
