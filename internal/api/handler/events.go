package handler

import (
	"net/http"

	"github.com/snapfest/snapfest/internal/api/middleware"
	"github.com/snapfest/snapfest/internal/api/sse"
)

// EventsHandler streams live album updates over SSE
type EventsHandler struct {
	hub *sse.Hub
}

// NewEventsHandler creates a new events handler
func NewEventsHandler(hub *sse.Hub) *EventsHandler {
	return &EventsHandler{hub: hub}
}

// Stream handles GET /api/v1/events
func (h *EventsHandler) Stream(w http.ResponseWriter, r *http.Request) {
	guest := middleware.MustGetGuest(r.Context())
	sse.ServeSSE(w, r, h.hub, guest.ID)
}
