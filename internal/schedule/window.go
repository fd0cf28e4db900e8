package schedule

import (
	"time"

	"ms-attendance/internal/models"
)

// Window is the live open/closed state of an event at a single instant.
type Window struct {
	IsOpen bool      `json:"is_open"`
	Status string    `json:"status"`
	Start  time.Time `json:"start_time"`
	End    time.Time `json:"end_time"`
}

// EventWindow answers whether an event is accepting check-ins at now, purely
// from its start time and duration in minutes. The interval is half-open: the
// instant exactly equal to start+duration is already CLOSED. A zero start
// time or a non-positive duration always yields CLOSED; negative durations
// are clamped to zero. The stored event status is never consulted.
func EventWindow(start time.Time, durationMinutes int, now time.Time) Window {
	if start.IsZero() {
		return Window{IsOpen: false, Status: models.StatusClosed}
	}

	if durationMinutes < 0 {
		durationMinutes = 0
	}
	end := start.Add(time.Duration(durationMinutes) * time.Minute)

	open := durationMinutes > 0 && !now.Before(start) && now.Before(end)
	status := models.StatusClosed
	if open {
		status = models.StatusOpen
	}

	return Window{
		IsOpen: open,
		Status: status,
		Start:  start,
		End:    end,
	}
}
