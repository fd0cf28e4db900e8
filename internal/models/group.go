package models

import (
	"time"

	"github.com/uptrace/bun"
)

// EventGroup is an organizer-owned container of events. When Recurrence is
// anything other than "NONE" the schedule columns drive lazy occurrence
// materialization; when it is "NONE" they are ignored and events under the
// group are created manually.
type EventGroup struct {
	bun.BaseModel `bun:"table:event_groups"`

	ID                  string    `bun:"id,pk" json:"id"`
	Name                string    `bun:"name,notnull" json:"name"`
	OrganizerID         string    `bun:"organizer_id,notnull" json:"organizer_id"`
	Recurrence          string    `bun:"recurrence,notnull" json:"recurrence"`
	RecurrenceStartDate string    `bun:"recurrence_start_date,nullzero" json:"recurrence_start_date,omitempty"`
	RecurrenceTime      string    `bun:"recurrence_time,nullzero" json:"recurrence_time,omitempty"`
	DefaultDuration     int       `bun:"default_duration,nullzero" json:"default_duration,omitempty"`
	DefaultEventName    string    `bun:"default_event_name,nullzero" json:"default_event_name,omitempty"`
	CreatedAt           time.Time `bun:"created_at,notnull,default:current_timestamp" json:"created_at"`
}
