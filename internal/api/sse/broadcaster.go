package sse

import (
	"encoding/json"
	"log/slog"

	"github.com/snapfest/snapfest/internal/api/response"
	"github.com/snapfest/snapfest/internal/model"
	"github.com/snapfest/snapfest/internal/services/directory"
	"github.com/snapfest/snapfest/internal/services/feed"
)

// Event names sent to clients. Each event's payload is the full current
// snapshot of its collection.
const (
	EventGuests = "guests"
	EventPhotos = "photos"
)

// Broadcaster turns directory and feed snapshots into SSE events.
type Broadcaster struct {
	hub    *Hub
	logger *slog.Logger

	unsubGuests func()
	unsubPhotos func()
}

// NewBroadcaster wires the hub into the live snapshot streams. Call Stop
// to detach.
func NewBroadcaster(hub *Hub, dir *directory.Service, feedService *feed.Service, logger *slog.Logger) *Broadcaster {
	b := &Broadcaster{
		hub:    hub,
		logger: logger.With(slog.String("component", "sse-broadcaster")),
	}
	b.unsubGuests = dir.Subscribe(b.broadcastGuests)
	b.unsubPhotos = feedService.Subscribe(b.broadcastPhotos)
	return b
}

// Stop detaches the broadcaster from the snapshot streams.
func (b *Broadcaster) Stop() {
	b.unsubGuests()
	b.unsubPhotos()
}

func (b *Broadcaster) broadcastGuests(guests []*model.Guest) {
	data, err := json.Marshal(response.GuestsFromModel(guests))
	if err != nil {
		b.logger.Error("sse failed to encode guest snapshot", slog.Any("error", err))
		return
	}
	b.hub.BroadcastEvent(EventGuests, string(data))
}

func (b *Broadcaster) broadcastPhotos(photos []*model.Photo) {
	data, err := json.Marshal(response.PhotosFromModel(photos))
	if err != nil {
		b.logger.Error("sse failed to encode photo snapshot", slog.Any("error", err))
		return
	}
	b.hub.BroadcastEvent(EventPhotos, string(data))
}
