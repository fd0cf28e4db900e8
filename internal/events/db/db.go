package db

import (
	"context"
	"time"

	"github.com/uptrace/bun"

	"ms-attendance/internal/database"
	"ms-attendance/internal/models"
)

type DB struct {
	Bun *bun.DB
}

// ---------------- GROUPS ----------------

func (d *DB) CreateGroup(group models.EventGroup) error {
	_, err := d.Bun.NewInsert().Model(&group).Exec(context.Background())
	return err
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

func (d *DB) GetGroupForOrganizer(id, organizerID string) (*models.EventGroup, error) {
	var group models.EventGroup
	err := d.Bun.NewSelect().
		Model(&group).
		Where("id = ?", id).
		Where("organizer_id = ?", organizerID).
		Limit(1).
		Scan(context.Background())
	if err != nil {
		return nil, err
	}
	return &group, nil
}

func (d *DB) ListGroupsByOrganizer(organizerID string) ([]models.EventGroup, error) {
	var groups []models.EventGroup
	err := d.Bun.NewSelect().
		Model(&groups).
		Where("organizer_id = ?", organizerID).
		Order("created_at DESC").
		Scan(context.Background())
	if err != nil {
		return nil, err
	}
	return groups, nil
}

func (d *DB) UpdateGroup(group models.EventGroup) error {
	_, err := d.Bun.NewUpdate().
		Model(&group).
		Column("name", "recurrence", "recurrence_start_date", "recurrence_time", "default_duration", "default_event_name").
		Where("id = ?", group.ID).
		Exec(context.Background())
	return err
}

// DeleteGroupCascade removes the group with everything under it: attendance
// rows of its events, the events, the skip markers and finally the group row.
// It runs as one transaction so a crash cannot strand attendance rows.
func (d *DB) DeleteGroupCascade(groupID string) error {
	ctx := context.Background()
	return d.Bun.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		_, err := tx.NewDelete().
			Model((*models.Attendance)(nil)).
			Where("event_id IN (SELECT id FROM events WHERE group_id = ?)", groupID).
			Exec(ctx)
		if err != nil {
			return err
		}
		_, err = tx.NewDelete().
			Model((*models.Event)(nil)).
			Where("group_id = ?", groupID).
			Exec(ctx)
		if err != nil {
			return err
		}
		_, err = tx.NewDelete().
			Model((*models.EventSkip)(nil)).
			Where("group_id = ?", groupID).
			Exec(ctx)
		if err != nil {
			return err
		}
		_, err = tx.NewDelete().
			Model((*models.EventGroup)(nil)).
			Where("id = ?", groupID).
			Exec(ctx)
		return err
	})
}

// ---------------- EVENTS ----------------

func (d *DB) CreateEvent(event models.Event) error {
	_, err := d.Bun.NewInsert().Model(&event).Exec(context.Background())
	return err
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

// GetEventAt looks up a group's event at an exact start time. A missing row
// is not an error here: the materializer treats nil as "slot is free".
func (d *DB) GetEventAt(groupID string, start time.Time) (*models.Event, error) {
	var event models.Event
	err := d.Bun.NewSelect().
		Model(&event).
		Where("group_id = ?", groupID).
		Where("start_time = ?", start).
		Limit(1).
		Scan(context.Background())
	if err != nil {
		if database.IsNotFound(err) {
			return nil, nil
		}
		return nil, err
	}
	return &event, nil
}

func (d *DB) ListGroupEvents(groupID string, limit int) ([]models.Event, error) {
	var events []models.Event
	q := d.Bun.NewSelect().
		Model(&events).
		Where("group_id = ?", groupID).
		Order("start_time DESC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	if err := q.Scan(context.Background()); err != nil {
		return nil, err
	}
	return events, nil
}

func (d *DB) ListStandaloneEvents(organizerID string) ([]models.Event, error) {
	var events []models.Event
	err := d.Bun.NewSelect().
		Model(&events).
		Where("organizer_id = ?", organizerID).
		Where("group_id IS NULL").
		Order("start_time DESC").
		Scan(context.Background())
	if err != nil {
		return nil, err
	}
	return events, nil
}

func (d *DB) UpdateEventStatus(id, status string) error {
	_, err := d.Bun.NewUpdate().
		Model((*models.Event)(nil)).
		Set("status = ?", status).
		Where("id = ?", id).
		Exec(context.Background())
	return err
}

// DeleteEventCascade removes an event together with its attendance rows.
func (d *DB) DeleteEventCascade(eventID string) error {
	ctx := context.Background()
	return d.Bun.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		_, err := tx.NewDelete().
			Model((*models.Attendance)(nil)).
			Where("event_id = ?", eventID).
			Exec(ctx)
		if err != nil {
			return err
		}
		_, err = tx.NewDelete().
			Model((*models.Event)(nil)).
			Where("id = ?", eventID).
			Exec(ctx)
		return err
	})
}

func (d *DB) AccessCodeExists(code string) (bool, error) {
	return d.Bun.NewSelect().
		Model((*models.Event)(nil)).
		Where("access_code = ?", code).
		Exists(context.Background())
}

// ---------------- SKIPS ----------------

// CreateSkip records a skip marker. Inserting the same (group, start) twice
// is a no-op, which makes event deletion safely repeatable.
func (d *DB) CreateSkip(skip models.EventSkip) error {
	_, err := d.Bun.NewInsert().
		Model(&skip).
		On("CONFLICT DO NOTHING").
		Exec(context.Background())
	return err
}

func (d *DB) SkipExists(groupID string, start time.Time) (bool, error) {
	return d.Bun.NewSelect().
		Model((*models.EventSkip)(nil)).
		Where("group_id = ?", groupID).
		Where("start_time = ?", start).
		Exists(context.Background())
}
