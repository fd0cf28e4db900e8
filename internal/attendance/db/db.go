package db

import (
	"context"

	"github.com/uptrace/bun"

	"ms-attendance/internal/database"
	"ms-attendance/internal/models"
)

type DB struct {
	Bun *bun.DB
}

func (d *DB) GetEventByCode(code string) (*models.Event, error) {
	var event models.Event
	err := d.Bun.NewSelect().
		Model(&event).
		Where("access_code = ?", code).
		Limit(1).
		Scan(context.Background())
	if err != nil {
		return nil, err
	}
	return &event, nil
}

func (d *DB) GetEventByID(id string) (*models.Event, error) {
	var event models.Event
	err := d.Bun.NewSelect().
		Model(&event).
		Where("id = ?", id).
		Limit(1).
		Scan(context.Background())
	if err != nil {
		return nil, err
	}
	return &event, nil
}

func (d *DB) GetGroup(id string) (*models.EventGroup, error) {
	var group models.EventGroup
	err := d.Bun.NewSelect().
		Model(&group).
		Where("id = ?", id).
		Limit(1).
		Scan(context.Background())
	if err != nil {
		return nil, err
	}
	return &group, nil
}

// GetAttendance returns nil without error when the participant has not
// checked in to the event yet.
func (d *DB) GetAttendance(participantID, eventID string) (*models.Attendance, error) {
	var att models.Attendance
	err := d.Bun.NewSelect().
		Model(&att).
		Where("participant_id = ?", participantID).
		Where("event_id = ?", eventID).
		Limit(1).
		Scan(context.Background())
	if err != nil {
		if database.IsNotFound(err) {
			return nil, nil
		}
		return nil, err
	}
	return &att, nil
}

func (d *DB) CreateAttendance(att models.Attendance) error {
	_, err := d.Bun.NewInsert().Model(&att).Exec(context.Background())
	return err
}

func (d *DB) ListAttendanceByEvent(eventID string) ([]models.Attendance, error) {
	var atts []models.Attendance
	err := d.Bun.NewSelect().
		Model(&atts).
		Relation("Participant").
		Where("att.event_id = ?", eventID).
		Order("att.created_at DESC").
		Scan(context.Background())
	if err != nil {
		return nil, err
	}
	return atts, nil
}
