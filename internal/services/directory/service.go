// Package directory maintains the live guest list: subscribers receive the
// full, ordered guest snapshot whenever the collection changes.
package directory

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"github.com/snapfest/snapfest/internal/dependencies/clock"
	"github.com/snapfest/snapfest/internal/model"
	"github.com/snapfest/snapfest/internal/storage"
)

// Service handles guest directory snapshots and activity counters
type Service struct {
	store  storage.Store
	clock  clock.Clock
	logger *slog.Logger

	mu          sync.RWMutex
	subscribers map[int]func([]*model.Guest)
	nextID      int

	refresh chan struct{}
}

// New creates a new directory Service
func New(store storage.Store, clock clock.Clock, logger *slog.Logger) *Service {
	return &Service{
		store:       store,
		clock:       clock,
		logger:      logger.With(slog.String("component", "directory")),
		subscribers: make(map[int]func([]*model.Guest)),
		refresh:     make(chan struct{}, 1),
	}
}

// Subscribe registers fn to receive full guest snapshots. A snapshot is
// pushed shortly after subscribing and on every subsequent change. The
// returned function unsubscribes.
func (s *Service) Subscribe(fn func([]*model.Guest)) func() {
	s.mu.Lock()
	id := s.nextID
	s.nextID++
	s.subscribers[id] = fn
	s.mu.Unlock()

	s.requestRefresh()

	return func() {
		s.mu.Lock()
		delete(s.subscribers, id)
		s.mu.Unlock()
	}
}

// Run drives snapshot delivery until ctx is cancelled. Change signals are
// collection-level; every signal triggers a fresh full query.
func (s *Service) Run(ctx context.Context) error {
	changes, err := s.store.Watch(ctx, storage.CollectionGuests)
	if err != nil {
		return err
	}

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case _, ok := <-changes:
			if !ok {
				return nil
			}
			s.broadcast(ctx)
		case <-s.refresh:
			s.broadcast(ctx)
		}
	}
}

// RecordActivity marks the guest as active now. A guest that no longer
// exists is logged and dropped; activity tracking never fails a sign-in.
func (s *Service) RecordActivity(ctx context.Context, id model.GuestID) error {
	err := s.store.TouchGuest(ctx, id, s.clock.Now())
	if errors.Is(err, model.ErrGuestNotFound) {
		s.logger.WarnContext(ctx, "activity for unknown guest dropped",
			slog.String("guest_id", string(id)))
		return nil
	}
	return err
}

// RecordUpload increments the guest's photo counter and stamps the upload
// time. Missing guests are logged and dropped, same as RecordActivity.
func (s *Service) RecordUpload(ctx context.Context, id model.GuestID) error {
	at := s.clock.Now()
	err := s.store.AddGuestPhotoCount(ctx, id, 1, &at)
	if errors.Is(err, model.ErrGuestNotFound) {
		s.logger.WarnContext(ctx, "upload count for unknown guest dropped",
			slog.String("guest_id", string(id)))
		return nil
	}
	return err
}

// RecordDeletion decrements the guest's photo counter, clamped at zero.
func (s *Service) RecordDeletion(ctx context.Context, id model.GuestID) error {
	err := s.store.AddGuestPhotoCount(ctx, id, -1, nil)
	if errors.Is(err, model.ErrGuestNotFound) {
		s.logger.WarnContext(ctx, "deletion count for unknown guest dropped",
			slog.String("guest_id", string(id)))
		return nil
	}
	return err
}

// RecalculatePhotoCount recounts the guest's photos from the photo
// collection and rewrites the stored counter, healing any drift left by
// soft-failed increments.
func (s *Service) RecalculatePhotoCount(ctx context.Context, id model.GuestID) (int, error) {
	if _, err := s.store.GetGuest(ctx, id); err != nil {
		return 0, err
	}

	photos, err := s.store.ListPhotosByUploader(ctx, id)
	if err != nil {
		return 0, err
	}

	if err := s.store.SetGuestPhotoCount(ctx, id, len(photos)); err != nil {
		return 0, err
	}
	return len(photos), nil
}

// List returns the current guest snapshot, display-name ascending.
func (s *Service) List(ctx context.Context) ([]*model.Guest, error) {
	return s.store.ListGuests(ctx)
}

func (s *Service) requestRefresh() {
	select {
	case s.refresh <- struct{}{}:
	default:
	}
}

func (s *Service) broadcast(ctx context.Context) {
	guests, err := s.store.ListGuests(ctx)
	if err != nil {
		s.logger.ErrorContext(ctx, "guest snapshot query failed",
			slog.String("error", err.Error()))
		return
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, fn := range s.subscribers {
		fn(guests)
	}
}
