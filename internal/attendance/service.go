package attendance

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"ms-attendance/internal/database"
	"ms-attendance/internal/logger"
	"ms-attendance/internal/models"
	"ms-attendance/internal/schedule"
	"ms-attendance/internal/utils"
)

var (
	ErrNotFound     = errors.New("event not found")
	ErrClosed       = errors.New("event is not open for check-in")
	ErrInvalidInput = errors.New("invalid input")
)

type DBLayer interface {
	GetEventByCode(code string) (*models.Event, error)
	GetEventByID(id string) (*models.Event, error)
	GetGroup(id string) (*models.EventGroup, error)
	GetAttendance(participantID, eventID string) (*models.Attendance, error)
	CreateAttendance(att models.Attendance) error
	ListAttendanceByEvent(eventID string) ([]models.Attendance, error)
}

// EventCache serves the access-code lookup that every participant hits
// right before check-in.
type EventCache interface {
	GetEvent(code string) (*models.Event, error)
	SetEvent(event models.Event) error
}

type KafkaPublisher interface {
	PublishCheckedIn(att models.Attendance, event models.Event) error
}

// EventStatus is the participant's view of an event found by access code.
// The window is always recomputed at request time; the cached status column
// is never trusted for the open/closed decision.
type EventStatus struct {
	Event       models.Event `json:"event"`
	IsOpen      bool         `json:"is_open"`
	EndTime     time.Time    `json:"end_time"`
	CheckedIn   bool         `json:"checked_in"`
	CheckedInAt *time.Time   `json:"checked_in_at,omitempty"`
}

type AttendanceService struct {
	DB     DBLayer
	Cache  EventCache     // optional
	Kafka  KafkaPublisher // optional
	Logger *logger.Logger
	Now    func() time.Time
}

func NewAttendanceService(db DBLayer, cache EventCache, kafka KafkaPublisher, log *logger.Logger) *AttendanceService {
	return &AttendanceService{DB: db, Cache: cache, Kafka: kafka, Logger: log}
}

func (s *AttendanceService) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

// EventByCode resolves an access code for a participant and reports whether
// they already checked in.
func (s *AttendanceService) EventByCode(participantID, code string) (*EventStatus, error) {
	event, err := s.eventByCode(code)
	if err != nil {
		return nil, err
	}

	w := schedule.EventWindow(event.StartTime, event.Duration, s.now())
	event.Status = w.Status

	status := &EventStatus{Event: *event, IsOpen: w.IsOpen, EndTime: w.End}
	existing, err := s.DB.GetAttendance(participantID, event.ID)
	if err != nil {
		return nil, fmt.Errorf("attendance lookup: %w", err)
	}
	if existing != nil {
		status.CheckedIn = true
		status.CheckedInAt = &existing.CreatedAt
	}
	return status, nil
}

// CheckIn records attendance for the event behind the code. The open window
// is derived from the event's start and duration at this very instant, and a
// repeat check-in returns the original record instead of an error. The bool
// result reports whether a new record was written.
func (s *AttendanceService) CheckIn(participantID, code string) (*models.Attendance, bool, error) {
	event, err := s.eventByCode(code)
	if err != nil {
		return nil, false, err
	}

	now := s.now()
	if w := schedule.EventWindow(event.StartTime, event.Duration, now); !w.IsOpen {
		return nil, false, ErrClosed
	}

	existing, err := s.DB.GetAttendance(participantID, event.ID)
	if err != nil {
		return nil, false, fmt.Errorf("attendance lookup: %w", err)
	}
	if existing != nil {
		return existing, false, nil
	}

	att := models.Attendance{
		ID:            utils.NewID(),
		ParticipantID: participantID,
		EventID:       event.ID,
		CreatedAt:     now,
	}
	if err := s.DB.CreateAttendance(att); err != nil {
		if database.IsConflict(err) {
			// Lost the race against a double-tap; the winning row is ours.
			existing, ferr := s.DB.GetAttendance(participantID, event.ID)
			if ferr == nil && existing != nil {
				return existing, false, nil
			}
			return nil, false, fmt.Errorf("re-fetch after conflict: %w", err)
		}
		return nil, false, fmt.Errorf("record attendance: %w", err)
	}

	if s.Logger != nil {
		s.Logger.LogCheckIn(event.ID, participantID, "checked in")
	}
	if s.Kafka != nil {
		if err := s.Kafka.PublishCheckedIn(att, *event); err != nil && s.Logger != nil {
			s.Logger.Warn("KAFKA", fmt.Sprintf("publish check-in: %v", err))
		}
	}
	return &att, true, nil
}

// ListForEvent returns the roster of an event the organizer owns, newest
// check-in first.
func (s *AttendanceService) ListForEvent(eventID, organizerID string) (*models.Event, []models.Attendance, error) {
	event, err := s.DB.GetEventByID(eventID)
	if err != nil {
		if database.IsNotFound(err) {
			return nil, nil, ErrNotFound
		}
		return nil, nil, err
	}

	if event.GroupID != "" {
		group, err := s.DB.GetGroup(event.GroupID)
		if err != nil {
			if database.IsNotFound(err) {
				return nil, nil, ErrNotFound
			}
			return nil, nil, err
		}
		if group.OrganizerID != organizerID {
			return nil, nil, ErrNotFound
		}
	} else if event.OrganizerID != organizerID {
		return nil, nil, ErrNotFound
	}

	records, err := s.DB.ListAttendanceByEvent(eventID)
	if err != nil {
		return nil, nil, fmt.Errorf("list attendance for event %s: %w", eventID, err)
	}
	return event, records, nil
}

// eventByCode checks the cache first and falls back to the database,
// refilling the cache on a miss. Cache failures degrade to the database.
func (s *AttendanceService) eventByCode(code string) (*models.Event, error) {
	code = strings.ToUpper(strings.TrimSpace(code))
	if code == "" {
		return nil, fmt.Errorf("%w: code is required", ErrInvalidInput)
	}

	if s.Cache != nil {
		cached, err := s.Cache.GetEvent(code)
		if err != nil && s.Logger != nil {
			s.Logger.Warn("REDIS", fmt.Sprintf("cache lookup for code %s: %v", code, err))
		}
		if cached != nil {
			return cached, nil
		}
	}

	event, err := s.DB.GetEventByCode(code)
	if err != nil {
		if database.IsNotFound(err) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	if s.Cache != nil {
		if err := s.Cache.SetEvent(*event); err != nil && s.Logger != nil {
			s.Logger.Warn("REDIS", fmt.Sprintf("cache fill for code %s: %v", code, err))
		}
	}
	return event, nil
}
