package memory

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/snapfest/snapfest/internal/model"
	"github.com/snapfest/snapfest/internal/storage"
)

// Storage is an in-memory implementation of the storage interface
type Storage struct {
	mu sync.RWMutex

	guests    map[model.GuestID]*model.Guest
	nameIndex map[string]model.GuestID
	photos    map[model.PhotoID]*model.Photo

	watchers map[storage.Collection]map[chan struct{}]struct{}
}

// New creates a new in-memory storage instance
func New() *Storage {
	return &Storage{
		guests:    make(map[model.GuestID]*model.Guest),
		nameIndex: make(map[string]model.GuestID),
		photos:    make(map[model.PhotoID]*model.Photo),
		watchers: map[storage.Collection]map[chan struct{}]struct{}{
			storage.CollectionGuests: make(map[chan struct{}]struct{}),
			storage.CollectionPhotos: make(map[chan struct{}]struct{}),
		},
	}
}

// Ensure Storage implements the interface
var _ storage.Store = (*Storage)(nil)

// Guest operations

func (s *Storage) CreateGuest(ctx context.Context, guest *model.Guest) error {
	s.mu.Lock()
	if _, taken := s.nameIndex[guest.NormalizedName]; taken {
		s.mu.Unlock()
		return model.ErrNameTaken
	}
	g := cloneGuest(guest)
	s.guests[g.ID] = g
	s.nameIndex[g.NormalizedName] = g.ID
	s.mu.Unlock()

	s.notify(storage.CollectionGuests)
	return nil
}

func (s *Storage) GetGuest(ctx context.Context, id model.GuestID) (*model.Guest, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	g, ok := s.guests[id]
	if !ok {
		return nil, model.ErrGuestNotFound
	}
	return cloneGuest(g), nil
}

func (s *Storage) GetGuestByNormalizedName(ctx context.Context, key string) (*model.Guest, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	id, ok := s.nameIndex[key]
	if !ok {
		return nil, model.ErrGuestNotFound
	}
	g, ok := s.guests[id]
	if !ok {
		return nil, model.ErrGuestNotFound
	}
	return cloneGuest(g), nil
}

func (s *Storage) ListGuests(ctx context.Context) ([]*model.Guest, error) {
	s.mu.RLock()
	guests := make([]*model.Guest, 0, len(s.guests))
	for _, g := range s.guests {
		guests = append(guests, cloneGuest(g))
	}
	s.mu.RUnlock()

	sort.Slice(guests, func(i, j int) bool {
		return strings.ToLower(guests[i].DisplayName) < strings.ToLower(guests[j].DisplayName)
	})
	return guests, nil
}

func (s *Storage) TouchGuest(ctx context.Context, id model.GuestID, at time.Time) error {
	err := s.updateGuest(id, func(g *model.Guest) {
		g.LastActiveAt = at
	})
	if err != nil {
		return err
	}
	s.notify(storage.CollectionGuests)
	return nil
}

func (s *Storage) SetGuestNickname(ctx context.Context, id model.GuestID, nickname string) error {
	err := s.updateGuest(id, func(g *model.Guest) {
		g.Nickname = nickname
	})
	if err != nil {
		return err
	}
	s.notify(storage.CollectionGuests)
	return nil
}

func (s *Storage) SetGuestRole(ctx context.Context, id model.GuestID, role model.Role) error {
	err := s.updateGuest(id, func(g *model.Guest) {
		g.Role = role
	})
	if err != nil {
		return err
	}
	s.notify(storage.CollectionGuests)
	return nil
}

func (s *Storage) AddGuestPhotoCount(ctx context.Context, id model.GuestID, delta int, uploadedAt *time.Time) error {
	err := s.updateGuest(id, func(g *model.Guest) {
		g.PhotoCount += delta
		if g.PhotoCount < 0 {
			g.PhotoCount = 0
		}
		if uploadedAt != nil {
			at := *uploadedAt
			g.LastUploadAt = &at
		}
	})
	if err != nil {
		return err
	}
	s.notify(storage.CollectionGuests)
	return nil
}

func (s *Storage) SetGuestPhotoCount(ctx context.Context, id model.GuestID, count int) error {
	err := s.updateGuest(id, func(g *model.Guest) {
		g.PhotoCount = count
	})
	if err != nil {
		return err
	}
	s.notify(storage.CollectionGuests)
	return nil
}

// updateGuest applies fn to the stored guest under the write lock. The
// mutex makes every read-modify-write here atomic within the process.
func (s *Storage) updateGuest(id model.GuestID, fn func(*model.Guest)) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	g, ok := s.guests[id]
	if !ok {
		return model.ErrGuestNotFound
	}
	fn(g)
	return nil
}

// Photo operations

func (s *Storage) CreatePhoto(ctx context.Context, photo *model.Photo) error {
	s.mu.Lock()
	s.photos[photo.ID] = clonePhoto(photo)
	s.mu.Unlock()

	s.notify(storage.CollectionPhotos)
	return nil
}

func (s *Storage) GetPhoto(ctx context.Context, id model.PhotoID) (*model.Photo, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.photos[id]
	if !ok {
		return nil, model.ErrPhotoNotFound
	}
	return clonePhoto(p), nil
}

func (s *Storage) ListPhotos(ctx context.Context) ([]*model.Photo, error) {
	s.mu.RLock()
	photos := make([]*model.Photo, 0, len(s.photos))
	for _, p := range s.photos {
		photos = append(photos, clonePhoto(p))
	}
	s.mu.RUnlock()

	sort.Slice(photos, func(i, j int) bool {
		return photos[i].UploadedAt.After(photos[j].UploadedAt)
	})
	return photos, nil
}

func (s *Storage) ListPhotosByUploader(ctx context.Context, uploader model.GuestID) ([]*model.Photo, error) {
	all, err := s.ListPhotos(ctx)
	if err != nil {
		return nil, err
	}
	photos := make([]*model.Photo, 0)
	for _, p := range all {
		if p.UploaderID == uploader {
			photos = append(photos, p)
		}
	}
	return photos, nil
}

func (s *Storage) ToggleLike(ctx context.Context, id model.PhotoID, guest model.GuestID) (bool, error) {
	s.mu.Lock()
	p, ok := s.photos[id]
	if !ok {
		s.mu.Unlock()
		return false, model.ErrPhotoNotFound
	}

	liked := false
	if p.LikedByGuest(guest) {
		kept := p.LikedBy[:0]
		for _, g := range p.LikedBy {
			if g != guest {
				kept = append(kept, g)
			}
		}
		p.LikedBy = kept
	} else {
		p.LikedBy = append(p.LikedBy, guest)
		liked = true
	}
	p.LikeCount = len(p.LikedBy)
	s.mu.Unlock()

	s.notify(storage.CollectionPhotos)
	return liked, nil
}

func (s *Storage) DeletePhoto(ctx context.Context, id model.PhotoID) error {
	s.mu.Lock()
	delete(s.photos, id)
	s.mu.Unlock()

	s.notify(storage.CollectionPhotos)
	return nil
}

// Watch operations

func (s *Storage) Watch(ctx context.Context, c storage.Collection) (<-chan struct{}, error) {
	ch := make(chan struct{}, 1)

	s.mu.Lock()
	s.watchers[c][ch] = struct{}{}
	s.mu.Unlock()

	go func() {
		<-ctx.Done()
		s.mu.Lock()
		delete(s.watchers[c], ch)
		s.mu.Unlock()
		close(ch)
	}()

	return ch, nil
}

// notify signals every watcher of the collection. Sends are non-blocking:
// a watcher that already has a pending signal needs no second one, it will
// re-query the full collection anyway.
func (s *Storage) notify(c storage.Collection) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for ch := range s.watchers[c] {
		select {
		case ch <- struct{}{}:
		default:
		}
	}
}

func cloneGuest(g *model.Guest) *model.Guest {
	c := *g
	if g.LastUploadAt != nil {
		at := *g.LastUploadAt
		c.LastUploadAt = &at
	}
	return &c
}

func clonePhoto(p *model.Photo) *model.Photo {
	c := *p
	c.LikedBy = append([]model.GuestID(nil), p.LikedBy...)
	return &c
}
