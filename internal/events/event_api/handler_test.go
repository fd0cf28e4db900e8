package event_api

import (
	"testing"
	"time"
)

func TestParseStartTime(t *testing.T) {
	want := time.Date(2024, time.March, 4, 18, 30, 0, 0, time.Local)

	tests := []struct {
		in     string
		want   time.Time
		wantOK bool
	}{
		{"2024-03-04T18:30", want, true},
		{"2024-03-04 18:30", want, true},
		{"2024-03-04T18:30:00", want, true},
		{"  2024-03-04T18:30  ", want, true},
		{"", time.Time{}, false},
		{"04/03/2024 18:30", time.Time{}, false},
		{"2024-03-04", time.Time{}, false},
	}

	for _, tt := range tests {
		got, ok := parseStartTime(tt.in)
		if ok != tt.wantOK {
			t.Errorf("parseStartTime(%q) ok = %v, want %v", tt.in, ok, tt.wantOK)
			continue
		}
		if ok && !got.Equal(tt.want) {
			t.Errorf("parseStartTime(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}
