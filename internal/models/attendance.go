package models

import (
	"time"

	"github.com/uptrace/bun"
)

// Attendance is a participant's check-in for one event, at most one row per
// (participant, event) pair. Repeat check-ins are answered with the existing
// row instead of an error.
type Attendance struct {
	bun.BaseModel `bun:"table:attendances,alias:att"`

	ID            string    `bun:"id,pk" json:"id"`
	ParticipantID string    `bun:"participant_id,notnull,unique:attendances_participant_event" json:"participant_id"`
	EventID       string    `bun:"event_id,notnull,unique:attendances_participant_event" json:"event_id"`
	CreatedAt     time.Time `bun:"created_at,notnull,default:current_timestamp" json:"created_at"`

	Participant *User `bun:"rel:belongs-to,join:participant_id=id" json:"participant,omitempty"`
}
