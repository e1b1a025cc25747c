package storage

import (
	"context"
	"time"

	"github.com/snapfest/snapfest/internal/model"
)

// Collection names the live collections a caller can watch
type Collection string

const (
	CollectionGuests Collection = "guests"
	CollectionPhotos Collection = "photos"
)

// Store defines the interface for the backing document store. It is the
// single source of truth: every mutation below is the only sanctioned writer
// for the field it touches, and the atomic operations (photo-count increment,
// like toggle, create-if-absent guest) must be safe under concurrent
// multi-client access without client-side locking.
type Store interface {
	// Guest operations

	// CreateGuest persists a new guest, atomically claiming its normalized
	// name. Returns model.ErrNameTaken if another guest already holds the
	// name, so at most one guest per normalized name is ever auto-created.
	CreateGuest(ctx context.Context, guest *model.Guest) error
	GetGuest(ctx context.Context, id model.GuestID) (*model.Guest, error)
	GetGuestByNormalizedName(ctx context.Context, key string) (*model.Guest, error)
	// ListGuests returns all guests ordered by display name, ascending.
	ListGuests(ctx context.Context) ([]*model.Guest, error)
	// TouchGuest updates lastActiveAt.
	TouchGuest(ctx context.Context, id model.GuestID, at time.Time) error
	SetGuestNickname(ctx context.Context, id model.GuestID, nickname string) error
	SetGuestRole(ctx context.Context, id model.GuestID, role model.Role) error
	// AddGuestPhotoCount atomically adjusts photoCount (never below zero)
	// and, when uploadedAt is non-nil, records it as lastUploadAt.
	AddGuestPhotoCount(ctx context.Context, id model.GuestID, delta int, uploadedAt *time.Time) error
	SetGuestPhotoCount(ctx context.Context, id model.GuestID, count int) error

	// Photo operations

	CreatePhoto(ctx context.Context, photo *model.Photo) error
	GetPhoto(ctx context.Context, id model.PhotoID) (*model.Photo, error)
	// ListPhotos returns all photos ordered by uploadedAt, newest first.
	ListPhotos(ctx context.Context) ([]*model.Photo, error)
	ListPhotosByUploader(ctx context.Context, uploader model.GuestID) ([]*model.Photo, error)
	// ToggleLike atomically adds or removes the guest from likedBy and
	// adjusts likeCount to match, reporting whether the photo is liked
	// afterwards. Concurrent toggles by distinct guests must both land.
	ToggleLike(ctx context.Context, id model.PhotoID, guest model.GuestID) (liked bool, err error)
	DeletePhoto(ctx context.Context, id model.PhotoID) error

	// Watch returns a channel that receives a signal whenever the given
	// collection changes. Signals are coalesced; consumers re-query the
	// full collection for an authoritative snapshot. The channel is closed
	// when ctx is cancelled.
	Watch(ctx context.Context, c Collection) (<-chan struct{}, error)
}
