package main

import (
	"context"
	"database/sql"
	"log"
	"time"

	_ "github.com/lib/pq"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"

	"ms-attendance/internal/config"
	"ms-attendance/internal/models"
	"ms-attendance/internal/schedule"
	"ms-attendance/internal/utils"
)

// Development helper: recreates the schema from the bun models and seeds a
// couple of rows to click around with. Production schemas come from the SQL
// migrations instead.
func main() {
	ctx := context.Background()
	cfg := config.Load()

	if cfg.Database.DSN == "" {
		log.Fatal("POSTGRES_DSN not set")
	}

	sqldb, err := sql.Open("postgres", cfg.Database.DSN)
	if err != nil {
		log.Fatalf("failed to open Postgres: %v", err)
	}
	defer sqldb.Close()

	if err := sqldb.Ping(); err != nil {
		log.Fatalf("failed to connect to Postgres: %v", err)
	}

	db := bun.NewDB(sqldb, pgdialect.New())

	tables := []interface{}{
		(*models.Attendance)(nil),
		(*models.EventSkip)(nil),
		(*models.Event)(nil),
		(*models.EventGroup)(nil),
		(*models.User)(nil),
	}

	for _, model := range tables {
		if _, err := db.NewDropTable().Model(model).IfExists().Cascade().Exec(ctx); err != nil {
			log.Fatalf("drop table failed: %v", err)
		}
	}

	// Create in dependency order
	for i := len(tables) - 1; i >= 0; i-- {
		if _, err := db.NewCreateTable().Model(tables[i]).IfNotExists().Exec(ctx); err != nil {
			log.Fatalf("create table failed: %v", err)
		}
	}
	log.Println("✅ schema created")

	now := time.Now()

	organizer := &models.User{
		ID:        "organizer001",
		Email:     "organizer@attendly.dev",
		FullName:  "Olivia Organizer",
		Role:      models.RoleOrganizer,
		CreatedAt: now,
	}
	participant := &models.User{
		ID:        "participant001",
		Email:     "participant@attendly.dev",
		FullName:  "Pat Participant",
		Role:      models.RoleParticipant,
		CreatedAt: now,
	}
	for _, user := range []*models.User{organizer, participant} {
		if _, err := db.NewInsert().Model(user).Exec(ctx); err != nil {
			log.Fatalf("seed user failed: %v", err)
		}
	}

	group := &models.EventGroup{
		ID:                  "group001",
		Name:                "Morning Standup",
		OrganizerID:         organizer.ID,
		Recurrence:          schedule.RecurrenceWeekly.String(),
		RecurrenceStartDate: schedule.FormatDateOnly(now),
		RecurrenceTime:      "09:00",
		DefaultDuration:     30,
		DefaultEventName:    "Standup",
		CreatedAt:           now,
	}
	if _, err := db.NewInsert().Model(group).Exec(ctx); err != nil {
		log.Fatalf("seed group failed: %v", err)
	}

	event := &models.Event{
		ID:          "event001",
		OrganizerID: organizer.ID,
		AccessCode:  utils.GenerateAccessCode(),
		Name:        "Kickoff Session",
		StartTime:   now.Add(-10 * time.Minute),
		Duration:    120,
		Status:      models.StatusOpen,
		CreatedAt:   now,
	}
	if _, err := db.NewInsert().Model(event).Exec(ctx); err != nil {
		log.Fatalf("seed event failed: %v", err)
	}

	log.Printf("✅ sample data seeded (join code: %s)", event.AccessCode)
}
