package events

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

const (
	// materializeAttempts bounds the create/re-fetch loop for one occurrence slot.
	materializeAttempts = 3
	// accessCodeAttempts bounds regeneration on access-code collisions.
	accessCodeAttempts = 10
	// defaultRecentLimit bounds a group listing when no limit is configured.
	defaultRecentLimit = 30
	// backfillDurationMinutes is assigned to legacy groups with no duration.
	backfillDurationMinutes = 60
)

var (
	ErrNotFound      = errors.New("not found")
	ErrInvalidInput  = errors.New("invalid input")
	ErrSlotTaken     = errors.New("an event already exists at this start time")
	ErrSlotContended = errors.New("slot still contended after retries")
	ErrCodeExhausted = errors.New("could not allocate a unique access code")
)

type DBLayer interface {
	CreateGroup(group models.EventGroup) error
	GetGroupForOrganizer(id, organizerID string) (*models.EventGroup, error)
	ListGroupsByOrganizer(organizerID string) ([]models.EventGroup, error)
	UpdateGroup(group models.EventGroup) error
	DeleteGroupCascade(groupID string) error

	CreateEvent(event models.Event) error
	GetEventByID(id string) (*models.Event, error)
	GetEventByCode(code string) (*models.Event, error)
	GetEventAt(groupID string, start time.Time) (*models.Event, error)
	ListGroupEvents(groupID string, limit int) ([]models.Event, error)
	ListStandaloneEvents(organizerID string) ([]models.Event, error)
	UpdateEventStatus(id, status string) error
	DeleteEventCascade(eventID string) error
	AccessCodeExists(code string) (bool, error)

	CreateSkip(skip models.EventSkip) error
	SkipExists(groupID string, start time.Time) (bool, error)
}

type KafkaPublisher interface {
	PublishEventCreated(event models.Event) error
	PublishEventDeleted(event models.Event) error
}

// CodeInvalidator drops a cached access-code lookup after an event changes.
type CodeInvalidator interface {
	Invalidate(code string) error
}

// EventView is an event row annotated with its live window state. The cached
// status column is overwritten with the freshly computed one before it ever
// reaches a response.
type EventView struct {
	models.Event
	IsOpen  bool      `json:"is_open"`
	EndTime time.Time `json:"end_time"`
}

// GroupSettings carries a "save schedule" request.
type GroupSettings struct {
	Name                string `json:"name"`
	Recurrence          string `json:"recurrence"`
	RecurrenceStartDate string `json:"recurrence_start_date"`
	RecurrenceTime      string `json:"recurrence_time"`
	DefaultDuration     int    `json:"default_duration"`
	DefaultEventName    string `json:"default_event_name"`
}

type EventService struct {
	DB          DBLayer
	Kafka       KafkaPublisher  // optional
	Cache       CodeInvalidator // optional
	Logger      *logger.Logger
	RecentLimit int
	// Now is the injected clock; defaults to time.Now. Every window and
	// occurrence computation goes through it so tests can pin the instant.
	Now func() time.Time
}

func NewEventService(db DBLayer, kafka KafkaPublisher, cache CodeInvalidator, log *logger.Logger) *EventService {
	return &EventService{
		DB:          db,
		Kafka:       kafka,
		Cache:       cache,
		Logger:      log,
		RecentLimit: defaultRecentLimit,
	}
}

func (s *EventService) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

func (s *EventService) recentLimit() int {
	if s.RecentLimit > 0 {
		return s.RecentLimit
	}
	return defaultRecentLimit
}

// ---------------- GROUPS ----------------

func (s *EventService) ListGroups(organizerID string) ([]models.EventGroup, error) {
	return s.DB.ListGroupsByOrganizer(organizerID)
}

// CreateGroup starts a group with the same defaults the original product
// used: weekly recurrence anchored today at the current wall-clock time,
// hour-long occurrences.
func (s *EventService) CreateGroup(organizerID, name string) (*models.EventGroup, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, fmt.Errorf("%w: name is required", ErrInvalidInput)
	}

	now := s.now()
	group := models.EventGroup{
		ID:                  utils.NewID(),
		Name:                name,
		OrganizerID:         organizerID,
		Recurrence:          schedule.RecurrenceWeekly.String(),
		RecurrenceStartDate: schedule.FormatDateOnly(now),
		RecurrenceTime:      schedule.FormatClock(now),
		DefaultDuration:     backfillDurationMinutes,
		CreatedAt:           now,
	}
	if err := s.DB.CreateGroup(group); err != nil {
		return nil, fmt.Errorf("create group: %w", err)
	}
	return &group, nil
}

func (s *EventService) UpdateGroupSettings(groupID, organizerID string, settings GroupSettings) (*models.EventGroup, error) {
	group, err := s.DB.GetGroupForOrganizer(groupID, organizerID)
	if err != nil {
		if database.IsNotFound(err) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	rec, ok := schedule.ParseRecurrence(settings.Recurrence)
	if !ok {
		return nil, fmt.Errorf("%w: recurrence must be one of NONE, DAILY, WEEKDAY, WEEKLY, BIWEEKLY, MONTHLY", ErrInvalidInput)
	}

	if name := strings.TrimSpace(settings.Name); name != "" {
		group.Name = name
	}
	group.DefaultEventName = strings.TrimSpace(settings.DefaultEventName)

	if rec == schedule.RecurrenceNone {
		group.Recurrence = rec.String()
		group.RecurrenceStartDate = ""
		group.RecurrenceTime = ""
		group.DefaultDuration = 0
	} else {
		if _, ok := schedule.ParseDateOnly(settings.RecurrenceStartDate); !ok {
			return nil, fmt.Errorf("%w: recurrence_start_date must be YYYY-MM-DD", ErrInvalidInput)
		}
		if _, _, ok := schedule.ParseClock(settings.RecurrenceTime); !ok {
			return nil, fmt.Errorf("%w: recurrence_time must be HH:mm", ErrInvalidInput)
		}
		if settings.DefaultDuration <= 0 {
			return nil, fmt.Errorf("%w: default_duration must be a positive number of minutes", ErrInvalidInput)
		}
		group.Recurrence = rec.String()
		group.RecurrenceStartDate = strings.TrimSpace(settings.RecurrenceStartDate)
		group.RecurrenceTime = strings.TrimSpace(settings.RecurrenceTime)
		group.DefaultDuration = settings.DefaultDuration
	}

	if err := s.DB.UpdateGroup(*group); err != nil {
		return nil, fmt.Errorf("save group settings: %w", err)
	}
	return group, nil
}

func (s *EventService) DeleteGroup(groupID, organizerID string) error {
	if _, err := s.DB.GetGroupForOrganizer(groupID, organizerID); err != nil {
		if database.IsNotFound(err) {
			return ErrNotFound
		}
		return err
	}
	if err := s.DB.DeleteGroupCascade(groupID); err != nil {
		return fmt.Errorf("delete group %s: %w", groupID, err)
	}
	s.logInfo("EVENT", fmt.Sprintf("group %s deleted with all events and attendance", groupID))
	return nil
}

// ---------------- LISTING + MATERIALIZATION ----------------

// ListGroupEvents is the materialization trigger: every listing first makes
// sure rows exist for the schedule's current and next occurrence, then
// returns the most recent events annotated with their live window state.
// Materialization is best-effort; its failures are logged and never block
// the listing of events that already exist.
func (s *EventService) ListGroupEvents(groupID, organizerID string) (*models.EventGroup, []EventView, error) {
	group, err := s.DB.GetGroupForOrganizer(groupID, organizerID)
	if err != nil {
		if database.IsNotFound(err) {
			return nil, nil, ErrNotFound
		}
		return nil, nil, err
	}

	s.materializeOccurrences(group)

	events, err := s.DB.ListGroupEvents(groupID, s.recentLimit())
	if err != nil {
		return nil, nil, fmt.Errorf("list events for group %s: %w", groupID, err)
	}
	return group, s.annotate(events), nil
}

func (s *EventService) ListStandaloneEvents(organizerID string) ([]EventView, error) {
	events, err := s.DB.ListStandaloneEvents(organizerID)
	if err != nil {
		return nil, err
	}
	return s.annotate(events), nil
}

// annotate recomputes every event's window at the current instant. The
// persisted status is refreshed opportunistically when it drifted, but the
// response always carries the recomputed value regardless.
func (s *EventService) annotate(events []models.Event) []EventView {
	now := s.now()
	views := make([]EventView, 0, len(events))
	for _, ev := range events {
		w := schedule.EventWindow(ev.StartTime, ev.Duration, now)
		if ev.Status != w.Status {
			if err := s.DB.UpdateEventStatus(ev.ID, w.Status); err != nil {
				s.logWarn("EVENT", fmt.Sprintf("could not refresh cached status of event %s: %v", ev.ID, err))
			}
			ev.Status = w.Status
		}
		views = append(views, EventView{Event: ev, IsOpen: w.IsOpen, EndTime: w.End})
	}
	return views
}

func (s *EventService) materializeOccurrences(group *models.EventGroup) {
	sched := schedule.FromGroup(group)
	if sched == nil {
		rec, ok := schedule.ParseRecurrence(group.Recurrence)
		if ok && rec == schedule.RecurrenceNone {
			return
		}
		// Recurrence is enabled but the schedule fields are unusable
		// (legacy rows). Backfill defaults once and carry on.
		sched = s.backfillSchedule(group, rec, ok)
		if sched == nil {
			return
		}
	}

	now := s.now()
	starts := make([]time.Time, 0, 2)
	if current, ok := sched.CurrentOccurrence(now); ok {
		starts = append(starts, current)
	}
	if next := sched.NextOccurrence(now); !next.IsZero() {
		duplicate := false
		for _, st := range starts {
			if st.Equal(next) {
				duplicate = true
			}
		}
		if !duplicate {
			starts = append(starts, next)
		}
	}

	for _, start := range starts {
		if err := s.ensureOccurrence(group, sched, start, now); err != nil {
			// Swallowed on purpose: the listing must still serve whatever
			// rows already exist, and the next listing will try again.
			s.logError("MATERIALIZE", fmt.Sprintf("group %s occurrence %s: %v", group.ID, start.Format(time.DateTime), err))
		}
	}
}

// backfillSchedule repairs a recurring group whose schedule fields are
// missing or invalid: today's date, the next 5-minute-rounded wall-clock
// time, the existing duration or an hour, and WEEKLY when the stored pattern
// is unrecognized. The repaired fields are persisted so this happens once.
func (s *EventService) backfillSchedule(group *models.EventGroup, rec schedule.Recurrence, known bool) *schedule.Schedule {
	now := s.now()

	if !known {
		rec = schedule.RecurrenceWeekly
	}
	group.Recurrence = rec.String()
	// Rounding up near midnight lands on the next day, and the anchor date
	// has to follow the rounded clock or the schedule anchors a day early.
	anchor := now
	if _, _, ok := schedule.ParseClock(group.RecurrenceTime); !ok {
		anchor = nextFiveMinutes(now)
		group.RecurrenceTime = schedule.FormatClock(anchor)
	}
	if _, ok := schedule.ParseDateOnly(group.RecurrenceStartDate); !ok {
		group.RecurrenceStartDate = schedule.FormatDateOnly(anchor)
	}
	if group.DefaultDuration <= 0 {
		group.DefaultDuration = backfillDurationMinutes
	}

	if err := s.DB.UpdateGroup(*group); err != nil {
		s.logWarn("MATERIALIZE", fmt.Sprintf("could not persist backfilled schedule for group %s: %v", group.ID, err))
		return nil
	}
	s.logMaterialize(group.ID, "backfilled incomplete recurrence schedule")
	return schedule.FromGroup(group)
}

// ensureOccurrence makes sure exactly one event row exists for the slot,
// unless the organizer deleted that occurrence before. A unique-constraint
// violation means a concurrent request claimed the slot (or the access code)
// first, so the loop re-fetches instead of failing.
func (s *EventService) ensureOccurrence(group *models.EventGroup, sched *schedule.Schedule, start, now time.Time) error {
	skipped, err := s.DB.SkipExists(group.ID, start)
	if err != nil {
		return fmt.Errorf("skip lookup: %w", err)
	}
	if skipped {
		return nil
	}

	name := sched.EventName
	if name == "" {
		name = group.Name
	}
	duration := int(sched.Duration / time.Minute)

	for attempt := 0; attempt < materializeAttempts; attempt++ {
		existing, err := s.DB.GetEventAt(group.ID, start)
		if err != nil {
			return fmt.Errorf("slot lookup: %w", err)
		}
		if existing != nil {
			return nil
		}

		code, err := s.generateAccessCode()
		if err != nil {
			return err
		}

		event := models.Event{
			ID:          utils.NewID(),
			GroupID:     group.ID,
			OrganizerID: group.OrganizerID,
			AccessCode:  code,
			Name:        name,
			StartTime:   start,
			Duration:    duration,
			Status:      schedule.EventWindow(start, duration, now).Status,
			CreatedAt:   now,
		}
		err = s.DB.CreateEvent(event)
		if err == nil {
			s.logMaterialize(group.ID, fmt.Sprintf("materialized occurrence at %s (code %s)", start.Format(time.DateTime), code))
			s.publishCreated(event)
			return nil
		}
		if database.IsConflict(err) {
			continue
		}
		return fmt.Errorf("create occurrence: %w", err)
	}
	return ErrSlotContended
}

func (s *EventService) generateAccessCode() (string, error) {
	for attempt := 0; attempt < accessCodeAttempts; attempt++ {
		code := utils.GenerateAccessCode()
		exists, err := s.DB.AccessCodeExists(code)
		if err != nil {
			return "", fmt.Errorf("access code lookup: %w", err)
		}
		if !exists {
			return code, nil
		}
	}
	return "", ErrCodeExhausted
}

// ---------------- EVENTS ----------------

func (s *EventService) CreateGroupEvent(groupID, organizerID, name string, start time.Time, duration int) (*EventView, error) {
	if _, err := s.DB.GetGroupForOrganizer(groupID, organizerID); err != nil {
		if database.IsNotFound(err) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	existing, err := s.DB.GetEventAt(groupID, start)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, ErrSlotTaken
	}
	return s.createEvent(groupID, organizerID, name, start, duration)
}

func (s *EventService) CreateStandaloneEvent(organizerID, name string, start time.Time, duration int) (*EventView, error) {
	return s.createEvent("", organizerID, name, start, duration)
}

func (s *EventService) createEvent(groupID, organizerID, name string, start time.Time, duration int) (*EventView, error) {
	name = strings.TrimSpace(name)
	if name == "" || start.IsZero() || duration <= 0 {
		return nil, fmt.Errorf("%w: name, start_time and a positive duration are required", ErrInvalidInput)
	}

	now := s.now()
	for attempt := 0; attempt < materializeAttempts; attempt++ {
		code, err := s.generateAccessCode()
		if err != nil {
			return nil, err
		}

		w := schedule.EventWindow(start, duration, now)
		event := models.Event{
			ID:          utils.NewID(),
			GroupID:     groupID,
			OrganizerID: organizerID,
			AccessCode:  code,
			Name:        name,
			StartTime:   start,
			Duration:    duration,
			Status:      w.Status,
			CreatedAt:   now,
		}
		err = s.DB.CreateEvent(event)
		if err == nil {
			s.logInfo("EVENT", fmt.Sprintf("event %s created (code %s)", event.ID, code))
			s.publishCreated(event)
			return &EventView{Event: event, IsOpen: w.IsOpen, EndTime: w.End}, nil
		}
		if database.IsConflict(err) {
			continue
		}
		return nil, fmt.Errorf("create event: %w", err)
	}
	return nil, ErrSlotContended
}

// GetEvent returns one event the organizer owns, window-annotated.
func (s *EventService) GetEvent(eventID, organizerID string) (*EventView, error) {
	event, err := s.DB.GetEventByID(eventID)
	if err != nil {
		if database.IsNotFound(err) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	if event.GroupID != "" {
		if _, err := s.DB.GetGroupForOrganizer(event.GroupID, organizerID); err != nil {
			if database.IsNotFound(err) {
				return nil, ErrNotFound
			}
			return nil, err
		}
	} else if event.OrganizerID != organizerID {
		return nil, ErrNotFound
	}

	w := schedule.EventWindow(event.StartTime, event.Duration, s.now())
	event.Status = w.Status
	return &EventView{Event: *event, IsOpen: w.IsOpen, EndTime: w.End}, nil
}

func (s *EventService) GetEventByCode(code string) (*EventView, error) {
	code = strings.ToUpper(strings.TrimSpace(code))
	if code == "" {
		return nil, fmt.Errorf("%w: code is required", ErrInvalidInput)
	}
	event, err := s.DB.GetEventByCode(code)
	if err != nil {
		if database.IsNotFound(err) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	w := schedule.EventWindow(event.StartTime, event.Duration, s.now())
	event.Status = w.Status
	return &EventView{Event: *event, IsOpen: w.IsOpen, EndTime: w.End}, nil
}

// DeleteEvent removes an event. For a recurring group's event the skip
// marker is written before the row goes away, so the materializer cannot
// bring the occurrence back on the next listing.
func (s *EventService) DeleteEvent(eventID, organizerID string) error {
	event, err := s.DB.GetEventByID(eventID)
	if err != nil {
		if database.IsNotFound(err) {
			return ErrNotFound
		}
		return err
	}

	if event.GroupID != "" {
		if _, err := s.DB.GetGroupForOrganizer(event.GroupID, organizerID); err != nil {
			if database.IsNotFound(err) {
				return ErrNotFound
			}
			return err
		}
		skip := models.EventSkip{
			ID:        utils.NewID(),
			GroupID:   event.GroupID,
			StartTime: event.StartTime,
			CreatedAt: s.now(),
		}
		if err := s.DB.CreateSkip(skip); err != nil {
			return fmt.Errorf("record skip marker: %w", err)
		}
	} else if event.OrganizerID != organizerID {
		return ErrNotFound
	}

	if err := s.DB.DeleteEventCascade(eventID); err != nil {
		return fmt.Errorf("delete event %s: %w", eventID, err)
	}

	if s.Cache != nil {
		if err := s.Cache.Invalidate(event.AccessCode); err != nil {
			s.logWarn("REDIS", fmt.Sprintf("could not invalidate cached code %s: %v", event.AccessCode, err))
		}
	}
	s.publishDeleted(*event)
	s.logInfo("EVENT", fmt.Sprintf("event %s deleted", eventID))
	return nil
}

// ---------------- helpers ----------------

func (s *EventService) publishCreated(event models.Event) {
	if s.Kafka == nil {
		return
	}
	if err := s.Kafka.PublishEventCreated(event); err != nil {
		s.logWarn("KAFKA", fmt.Sprintf("publish event created: %v", err))
	}
}

func (s *EventService) publishDeleted(event models.Event) {
	if s.Kafka == nil {
		return
	}
	if err := s.Kafka.PublishEventDeleted(event); err != nil {
		s.logWarn("KAFKA", fmt.Sprintf("publish event deleted: %v", err))
	}
}

func (s *EventService) logInfo(category, message string) {
	if s.Logger != nil {
		s.Logger.Info(category, message)
	}
}

func (s *EventService) logWarn(category, message string) {
	if s.Logger != nil {
		s.Logger.Warn(category, message)
	}
}

func (s *EventService) logError(category, message string) {
	if s.Logger != nil {
		s.Logger.Error(category, message)
	}
}

func (s *EventService) logMaterialize(groupID, message string) {
	if s.Logger != nil {
		s.Logger.LogMaterialize(groupID, message)
	}
}

// nextFiveMinutes rounds up to the next multiple of five minutes.
func nextFiveMinutes(t time.Time) time.Time {
	minutes := ((t.Minute() / 5) + 1) * 5
	return time.Date(t.Year(), t.Month(), t.Day(), t.Hour(), 0, 0, 0, t.Location()).
		Add(time.Duration(minutes) * time.Minute)
}
