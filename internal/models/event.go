package models

import (
	"time"

	"github.com/uptrace/bun"
)

const (
	StatusOpen   = "OPEN"
	StatusClosed = "CLOSED"
)

// Event is one concrete occurrence. GroupID is empty for standalone events,
// which are owned directly through OrganizerID. The persisted Status column is
// only a cache of the live window computation and is re-derived on every read.
type Event struct {
	bun.BaseModel `bun:"table:events"`

	ID          string    `bun:"id,pk" json:"id"`
	GroupID     string    `bun:"group_id,nullzero,unique:events_group_slot" json:"group_id,omitempty"`
	OrganizerID string    `bun:"organizer_id,nullzero" json:"organizer_id,omitempty"`
	AccessCode  string    `bun:"access_code,unique,notnull" json:"access_code"`
	Name        string    `bun:"name,notnull" json:"name"`
	StartTime   time.Time `bun:"start_time,notnull,unique:events_group_slot" json:"start_time"`
	Duration    int       `bun:"duration,notnull" json:"duration"`
	Status      string    `bun:"status,notnull" json:"status"`
	CreatedAt   time.Time `bun:"created_at,notnull,default:current_timestamp" json:"created_at"`
}

// EventSkip marks one deleted occurrence of a recurring group so the
// materializer never recreates it. Rows are written once and never removed.
type EventSkip struct {
	bun.BaseModel `bun:"table:event_skips"`

	ID        string    `bun:"id,pk" json:"id"`
	GroupID   string    `bun:"group_id,notnull,unique:event_skips_slot" json:"group_id"`
	StartTime time.Time `bun:"start_time,notnull,unique:event_skips_slot" json:"start_time"`
	CreatedAt time.Time `bun:"created_at,notnull,default:current_timestamp" json:"created_at"`
}
