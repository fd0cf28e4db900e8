package event_api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"ms-attendance/internal/auth"
	"ms-attendance/internal/events"
	"ms-attendance/internal/logger"
)

type Handler struct {
	EventService *events.EventService
	Logger       *logger.Logger
}

func NewHandler(eventService *events.EventService, log *logger.Logger) *Handler {
	return &Handler{
		EventService: eventService,
		Logger:       log,
	}
}

type createGroupRequest struct {
	Name string `json:"name"`
}

type createEventRequest struct {
	Name      string `json:"name"`
	StartTime string `json:"start_time"`
	Duration  int    `json:"duration"`
}

func (h *Handler) CreateGroup(w http.ResponseWriter, r *http.Request) {
	var req createGroupRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body: "+err.Error(), http.StatusBadRequest)
		return
	}

	group, err := h.EventService.CreateGroup(auth.UserID(r.Context()), req.Name)
	if err != nil {
		h.respondError(w, "CreateGroup", err)
		return
	}
	h.Logger.Info("API", fmt.Sprintf("CreateGroup: group %s created", group.ID))
	h.writeJSON(w, http.StatusCreated, group)
}

func (h *Handler) ListGroups(w http.ResponseWriter, r *http.Request) {
	groups, err := h.EventService.ListGroups(auth.UserID(r.Context()))
	if err != nil {
		h.respondError(w, "ListGroups", err)
		return
	}
	h.writeJSON(w, http.StatusOK, groups)
}

func (h *Handler) UpdateGroupSettings(w http.ResponseWriter, r *http.Request) {
	groupID := chi.URLParam(r, "groupId")

	var req events.GroupSettings
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body: "+err.Error(), http.StatusBadRequest)
		return
	}

	group, err := h.EventService.UpdateGroupSettings(groupID, auth.UserID(r.Context()), req)
	if err != nil {
		h.respondError(w, "UpdateGroupSettings", err)
		return
	}
	h.Logger.Info("API", fmt.Sprintf("UpdateGroupSettings: group %s schedule saved", groupID))
	h.writeJSON(w, http.StatusOK, group)
}

func (h *Handler) DeleteGroup(w http.ResponseWriter, r *http.Request) {
	groupID := chi.URLParam(r, "groupId")

	if err := h.EventService.DeleteGroup(groupID, auth.UserID(r.Context())); err != nil {
		h.respondError(w, "DeleteGroup", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ListGroupEvents returns the group's recent events. Listing is also what
// materializes the schedule's current and next occurrence, so the response
// always includes them.
func (h *Handler) ListGroupEvents(w http.ResponseWriter, r *http.Request) {
	groupID := chi.URLParam(r, "groupId")

	group, views, err := h.EventService.ListGroupEvents(groupID, auth.UserID(r.Context()))
	if err != nil {
		h.respondError(w, "ListGroupEvents", err)
		return
	}
	h.writeJSON(w, http.StatusOK, map[string]interface{}{
		"group":  group,
		"events": views,
	})
}

func (h *Handler) CreateGroupEvent(w http.ResponseWriter, r *http.Request) {
	groupID := chi.URLParam(r, "groupId")

	var req createEventRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body: "+err.Error(), http.StatusBadRequest)
		return
	}
	start, ok := parseStartTime(req.StartTime)
	if !ok {
		http.Error(w, "start_time must be formatted like 2006-01-02T15:04", http.StatusBadRequest)
		return
	}

	view, err := h.EventService.CreateGroupEvent(groupID, auth.UserID(r.Context()), req.Name, start, req.Duration)
	if err != nil {
		h.respondError(w, "CreateGroupEvent", err)
		return
	}
	h.Logger.Info("API", fmt.Sprintf("CreateGroupEvent: event %s created in group %s", view.ID, groupID))
	h.writeJSON(w, http.StatusCreated, view)
}

func (h *Handler) ListStandaloneEvents(w http.ResponseWriter, r *http.Request) {
	views, err := h.EventService.ListStandaloneEvents(auth.UserID(r.Context()))
	if err != nil {
		h.respondError(w, "ListStandaloneEvents", err)
		return
	}
	h.writeJSON(w, http.StatusOK, views)
}

func (h *Handler) CreateStandaloneEvent(w http.ResponseWriter, r *http.Request) {
	var req createEventRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body: "+err.Error(), http.StatusBadRequest)
		return
	}
	start, ok := parseStartTime(req.StartTime)
	if !ok {
		http.Error(w, "start_time must be formatted like 2006-01-02T15:04", http.StatusBadRequest)
		return
	}

	view, err := h.EventService.CreateStandaloneEvent(auth.UserID(r.Context()), req.Name, start, req.Duration)
	if err != nil {
		h.respondError(w, "CreateStandaloneEvent", err)
		return
	}
	h.Logger.Info("API", fmt.Sprintf("CreateStandaloneEvent: event %s created", view.ID))
	h.writeJSON(w, http.StatusCreated, view)
}

func (h *Handler) DeleteEvent(w http.ResponseWriter, r *http.Request) {
	eventID := chi.URLParam(r, "eventId")

	if err := h.EventService.DeleteEvent(eventID, auth.UserID(r.Context())); err != nil {
		h.respondError(w, "DeleteEvent", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		h.Logger.Error("API", fmt.Sprintf("failed to encode response: %v", err))
	}
}

func (h *Handler) respondError(w http.ResponseWriter, operation string, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, events.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, events.ErrInvalidInput):
		status = http.StatusBadRequest
	case errors.Is(err, events.ErrSlotTaken):
		status = http.StatusConflict
	}
	if status == http.StatusInternalServerError {
		h.Logger.Error("API", fmt.Sprintf("%s: %v", operation, err))
	} else {
		h.Logger.Warn("API", fmt.Sprintf("%s: %v", operation, err))
	}
	http.Error(w, err.Error(), status)
}

// parseStartTime accepts the datetime-local wire format, with or without
// seconds, and with a space instead of the T separator.
func parseStartTime(raw string) (time.Time, bool) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return time.Time{}, false
	}
	s = strings.Replace(s, " ", "T", 1)
	for _, layout := range []string{"2006-01-02T15:04:05", "2006-01-02T15:04"} {
		if t, err := time.ParseInLocation(layout, s, time.Local); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}
