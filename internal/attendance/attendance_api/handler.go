package attendance_api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"

	"ms-attendance/internal/attendance"
	"ms-attendance/internal/auth"
	"ms-attendance/internal/logger"
)

type Handler struct {
	AttendanceService *attendance.AttendanceService
	Logger            *logger.Logger
}

func NewHandler(attendanceService *attendance.AttendanceService, log *logger.Logger) *Handler {
	return &Handler{
		AttendanceService: attendanceService,
		Logger:            log,
	}
}

// EventByCode resolves an access code for a participant: the event, whether
// its window is open right now, and whether this participant already
// checked in.
func (h *Handler) EventByCode(w http.ResponseWriter, r *http.Request) {
	code := chi.URLParam(r, "code")

	status, err := h.AttendanceService.EventByCode(auth.UserID(r.Context()), code)
	if err != nil {
		h.respondError(w, "EventByCode", err)
		return
	}
	h.writeJSON(w, http.StatusOK, status)
}

type checkInRequest struct {
	Code string `json:"code"`
}

func (h *Handler) CheckIn(w http.ResponseWriter, r *http.Request) {
	var req checkInRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body: "+err.Error(), http.StatusBadRequest)
		return
	}

	record, created, err := h.AttendanceService.CheckIn(auth.UserID(r.Context()), req.Code)
	if err != nil {
		h.respondError(w, "CheckIn", err)
		return
	}

	status := http.StatusOK
	if created {
		status = http.StatusCreated
	}
	h.writeJSON(w, status, map[string]interface{}{
		"attendance":      record,
		"already_present": !created,
	})
}

// ListForEvent returns the roster of one event for its organizer.
func (h *Handler) ListForEvent(w http.ResponseWriter, r *http.Request) {
	eventID := chi.URLParam(r, "eventId")

	event, records, err := h.AttendanceService.ListForEvent(eventID, auth.UserID(r.Context()))
	if err != nil {
		h.respondError(w, "ListForEvent", err)
		return
	}
	h.writeJSON(w, http.StatusOK, map[string]interface{}{
		"event":      event,
		"attendance": records,
	})
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
	case errors.Is(err, attendance.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, attendance.ErrClosed):
		status = http.StatusConflict
	case errors.Is(err, attendance.ErrInvalidInput):
		status = http.StatusBadRequest
	}
	if status == http.StatusInternalServerError {
		h.Logger.Error("API", fmt.Sprintf("%s: %v", operation, err))
	} else {
		h.Logger.Warn("API", fmt.Sprintf("%s: %v", operation, err))
	}
	http.Error(w, err.Error(), status)
}
