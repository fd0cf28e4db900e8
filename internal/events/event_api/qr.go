package event_api

import (
	"fmt"
	"net/http"
	"os"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/skip2/go-qrcode"

	"ms-attendance/internal/auth"
)

const defaultQRSize = 256

// EventQR renders the event's join link as a QR code PNG for the organizer
// to project or print. The access code itself stays visible in the URL, it
// is the public join mechanism and not a secret.
func (h *Handler) EventQR(w http.ResponseWriter, r *http.Request) {
	eventID := chi.URLParam(r, "eventId")

	view, err := h.EventService.GetEvent(eventID, auth.UserID(r.Context()))
	if err != nil {
		h.respondError(w, "EventQR", err)
		return
	}

	size := defaultQRSize
	if raw := r.URL.Query().Get("size"); raw != "" {
		if parsed, err := strconv.Atoi(raw); err == nil && parsed >= 64 && parsed <= 1024 {
			size = parsed
		}
	}

	png, err := qrcode.Encode(joinURL(view.AccessCode), qrcode.Medium, size)
	if err != nil {
		h.Logger.Error("API", fmt.Sprintf("EventQR: encode failed: %v", err))
		http.Error(w, "Could not generate QR code", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "image/png")
	w.WriteHeader(http.StatusOK)
	w.Write(png)
}

func joinURL(code string) string {
	base := os.Getenv("PUBLIC_BASE_URL")
	if base == "" {
		return code
	}
	return fmt.Sprintf("%s/join/%s", base, code)
}
