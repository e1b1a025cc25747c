package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/snapfest/snapfest/internal/model"
	"github.com/snapfest/snapfest/internal/storage"
)

// txRetries bounds the optimistic-transaction retry loop. A WATCH conflict
// means another client committed between our read and write; re-reading and
// retrying is how the read-modify-write stays lost-update free.
const txRetries = 5

// Storage is a Redis-backed implementation of the storage interface
type Storage struct {
	client *redis.Client
	cfg    Config
}

// New creates a new Redis storage instance
func New(cfg Config) (*Storage, error) {
	opts, err := redis.ParseURL(cfg.URL)
	if err != nil {
		return nil, err
	}

	opts.PoolSize = cfg.PoolSize
	opts.MinIdleConns = cfg.MinIdleConns

	client := redis.NewClient(opts)

	// Verify connection
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, err
	}

	return &Storage{
		client: client,
		cfg:    cfg,
	}, nil
}

// NewWithClient creates a Redis storage with an existing client (for testing)
func NewWithClient(client *redis.Client, cfg Config) *Storage {
	return &Storage{
		client: client,
		cfg:    cfg,
	}
}

// Close closes the Redis connection
func (s *Storage) Close() error {
	return s.client.Close()
}

// Ensure Storage implements the interface
var _ storage.Store = (*Storage)(nil)

// Guest operations

func (s *Storage) CreateGuest(ctx context.Context, guest *model.Guest) error {
	data, err := json.Marshal(guest)
	if err != nil {
		return err
	}

	// SETNX on the name index is what makes auto-creation unique per
	// normalized name under concurrent sign-ins.
	claimed, err := s.client.SetNX(ctx, nameIndexKey(guest.NormalizedName), string(guest.ID), 0).Result()
	if err != nil {
		return err
	}
	if !claimed {
		return model.ErrNameTaken
	}

	pipe := s.client.Pipeline()
	pipe.Set(ctx, guestKey(guest.ID), data, 0)
	pipe.SAdd(ctx, guestsIndexKey(), string(guest.ID))
	if _, err := pipe.Exec(ctx); err != nil {
		return err
	}

	s.publish(ctx, storage.CollectionGuests)
	return nil
}

func (s *Storage) GetGuest(ctx context.Context, id model.GuestID) (*model.Guest, error) {
	data, err := s.client.Get(ctx, guestKey(id)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, model.ErrGuestNotFound
		}
		return nil, err
	}

	var guest model.Guest
	if err := json.Unmarshal(data, &guest); err != nil {
		return nil, err
	}
	return &guest, nil
}

func (s *Storage) GetGuestByNormalizedName(ctx context.Context, key string) (*model.Guest, error) {
	id, err := s.client.Get(ctx, nameIndexKey(key)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, model.ErrGuestNotFound
		}
		return nil, err
	}
	return s.GetGuest(ctx, model.GuestID(id))
}

func (s *Storage) ListGuests(ctx context.Context) ([]*model.Guest, error) {
	ids, err := s.client.SMembers(ctx, guestsIndexKey()).Result()
	if err != nil {
		return nil, err
	}
	if len(ids) == 0 {
		return []*model.Guest{}, nil
	}

	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = guestKey(model.GuestID(id))
	}

	values, err := s.client.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, err
	}

	guests := make([]*model.Guest, 0, len(values))
	for _, val := range values {
		if val == nil {
			continue
		}
		var guest model.Guest
		if err := json.Unmarshal([]byte(val.(string)), &guest); err != nil {
			continue // Skip invalid data
		}
		guests = append(guests, &guest)
	}

	sort.Slice(guests, func(i, j int) bool {
		return strings.ToLower(guests[i].DisplayName) < strings.ToLower(guests[j].DisplayName)
	})
	return guests, nil
}

func (s *Storage) TouchGuest(ctx context.Context, id model.GuestID, at time.Time) error {
	return s.updateGuest(ctx, id, func(g *model.Guest) {
		g.LastActiveAt = at
	})
}

func (s *Storage) SetGuestNickname(ctx context.Context, id model.GuestID, nickname string) error {
	return s.updateGuest(ctx, id, func(g *model.Guest) {
		g.Nickname = nickname
	})
}

func (s *Storage) SetGuestRole(ctx context.Context, id model.GuestID, role model.Role) error {
	return s.updateGuest(ctx, id, func(g *model.Guest) {
		g.Role = role
	})
}

func (s *Storage) AddGuestPhotoCount(ctx context.Context, id model.GuestID, delta int, uploadedAt *time.Time) error {
	return s.updateGuest(ctx, id, func(g *model.Guest) {
		g.PhotoCount += delta
		if g.PhotoCount < 0 {
			g.PhotoCount = 0
		}
		if uploadedAt != nil {
			at := *uploadedAt
			g.LastUploadAt = &at
		}
	})
}

func (s *Storage) SetGuestPhotoCount(ctx context.Context, id model.GuestID, count int) error {
	return s.updateGuest(ctx, id, func(g *model.Guest) {
		g.PhotoCount = count
	})
}

// updateGuest performs an optimistic WATCH transaction over the guest
// document: read, apply fn, write. Retried on conflict so concurrent
// updates are never lost.
func (s *Storage) updateGuest(ctx context.Context, id model.GuestID, fn func(*model.Guest)) error {
	key := guestKey(id)

	txf := func(tx *redis.Tx) error {
		data, err := tx.Get(ctx, key).Bytes()
		if err != nil {
			if errors.Is(err, redis.Nil) {
				return model.ErrGuestNotFound
			}
			return err
		}

		var guest model.Guest
		if err := json.Unmarshal(data, &guest); err != nil {
			return err
		}

		fn(&guest)

		updated, err := json.Marshal(&guest)
		if err != nil {
			return err
		}

		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, key, updated, 0)
			return nil
		})
		return err
	}

	for i := 0; i < txRetries; i++ {
		err := s.client.Watch(ctx, txf, key)
		if err == nil {
			s.publish(ctx, storage.CollectionGuests)
			return nil
		}
		if errors.Is(err, redis.TxFailedErr) {
			continue
		}
		return err
	}
	return fmt.Errorf("guest %s: update did not commit after %d attempts", id, txRetries)
}

// Photo operations

func (s *Storage) CreatePhoto(ctx context.Context, photo *model.Photo) error {
	data, err := json.Marshal(photo)
	if err != nil {
		return err
	}

	pipe := s.client.Pipeline()
	pipe.Set(ctx, photoKey(photo.ID), data, 0)
	pipe.SAdd(ctx, photosIndexKey(), string(photo.ID))
	if _, err := pipe.Exec(ctx); err != nil {
		return err
	}

	s.publish(ctx, storage.CollectionPhotos)
	return nil
}

func (s *Storage) GetPhoto(ctx context.Context, id model.PhotoID) (*model.Photo, error) {
	data, err := s.client.Get(ctx, photoKey(id)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, model.ErrPhotoNotFound
		}
		return nil, err
	}

	var photo model.Photo
	if err := json.Unmarshal(data, &photo); err != nil {
		return nil, err
	}
	return &photo, nil
}

func (s *Storage) ListPhotos(ctx context.Context) ([]*model.Photo, error) {
	ids, err := s.client.SMembers(ctx, photosIndexKey()).Result()
	if err != nil {
		return nil, err
	}
	if len(ids) == 0 {
		return []*model.Photo{}, nil
	}

	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = photoKey(model.PhotoID(id))
	}

	values, err := s.client.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, err
	}

	photos := make([]*model.Photo, 0, len(values))
	for _, val := range values {
		if val == nil {
			continue // Photo may have been deleted between SMEMBERS and MGET
		}
		var photo model.Photo
		if err := json.Unmarshal([]byte(val.(string)), &photo); err != nil {
			continue // Skip invalid data
		}
		photos = append(photos, &photo)
	}

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
	key := photoKey(id)
	var liked bool

	txf := func(tx *redis.Tx) error {
		data, err := tx.Get(ctx, key).Bytes()
		if err != nil {
			if errors.Is(err, redis.Nil) {
				return model.ErrPhotoNotFound
			}
			return err
		}

		var photo model.Photo
		if err := json.Unmarshal(data, &photo); err != nil {
			return err
		}

		if photo.LikedByGuest(guest) {
			kept := photo.LikedBy[:0]
			for _, g := range photo.LikedBy {
				if g != guest {
					kept = append(kept, g)
				}
			}
			photo.LikedBy = kept
			liked = false
		} else {
			photo.LikedBy = append(photo.LikedBy, guest)
			liked = true
		}
		photo.LikeCount = len(photo.LikedBy)

		updated, err := json.Marshal(&photo)
		if err != nil {
			return err
		}

		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, key, updated, 0)
			return nil
		})
		return err
	}

	for i := 0; i < txRetries; i++ {
		err := s.client.Watch(ctx, txf, key)
		if err == nil {
			s.publish(ctx, storage.CollectionPhotos)
			return liked, nil
		}
		if errors.Is(err, redis.TxFailedErr) {
			continue
		}
		return false, err
	}
	return false, fmt.Errorf("photo %s: like toggle did not commit after %d attempts", id, txRetries)
}

func (s *Storage) DeletePhoto(ctx context.Context, id model.PhotoID) error {
	pipe := s.client.Pipeline()
	pipe.Del(ctx, photoKey(id))
	pipe.SRem(ctx, photosIndexKey(), string(id))
	if _, err := pipe.Exec(ctx); err != nil {
		return err
	}

	s.publish(ctx, storage.CollectionPhotos)
	return nil
}

// Watch operations

func (s *Storage) Watch(ctx context.Context, c storage.Collection) (<-chan struct{}, error) {
	pubsub := s.client.Subscribe(ctx, changeChannel(c))

	// Wait for the subscription to be confirmed so no change published
	// after Watch returns is missed.
	if _, err := pubsub.Receive(ctx); err != nil {
		_ = pubsub.Close()
		return nil, err
	}

	ch := make(chan struct{}, 1)
	go func() {
		defer close(ch)
		defer func() { _ = pubsub.Close() }()

		msgs := pubsub.Channel()
		for {
			select {
			case <-ctx.Done():
				return
			case _, ok := <-msgs:
				if !ok {
					return
				}
				// Coalesce: a watcher with a pending signal re-queries anyway
				select {
				case ch <- struct{}{}:
				default:
				}
			}
		}
	}()

	return ch, nil
}

// publish signals collection watchers. The signal is advisory (watchers
// re-query), so a failed publish is not surfaced to the mutation's caller.
func (s *Storage) publish(ctx context.Context, c storage.Collection) {
	_ = s.client.Publish(ctx, changeChannel(c), "changed").Err()
}
