// Package feed manages the shared photo feed: uploads, likes, deletion,
// and live newest-first snapshots for subscribers.
package feed

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"strings"
	"sync"

	"github.com/google/uuid"

	"github.com/snapfest/snapfest/internal/blob"
	"github.com/snapfest/snapfest/internal/dependencies/clock"
	"github.com/snapfest/snapfest/internal/imaging"
	"github.com/snapfest/snapfest/internal/model"
	"github.com/snapfest/snapfest/internal/services/directory"
	"github.com/snapfest/snapfest/internal/storage"
)

// Extensions accepted when the browser supplies no usable MIME type.
// Camera formats (heic, dng, raw, raf) are stored as-is even though no
// thumbnail can be rendered for them.
var supportedExtensions = map[string]struct{}{
	"heic": {}, "heif": {}, "dng": {}, "raw": {}, "raf": {},
	"jpg": {}, "jpeg": {}, "png": {}, "webp": {}, "bmp": {},
}

// ProgressFunc receives upload progress as a 0..100 percentage.
type ProgressFunc func(percent float64)

// UploadRequest describes one photo to add to the feed.
type UploadRequest struct {
	FileName    string
	ContentType string
	Size        int64
	// Body must be seekable: after streaming to the blob store it is
	// rewound to probe dimensions and render a thumbnail.
	Body     io.ReadSeeker
	Uploader *model.Guest
}

// Service handles the photo feed
type Service struct {
	store     storage.Store
	blobs     blob.Store
	directory *directory.Service
	clock     clock.Clock
	logger    *slog.Logger

	mu          sync.RWMutex
	subscribers map[int]func([]*model.Photo)
	nextID      int

	refresh chan struct{}
}

// New creates a new feed Service
func New(store storage.Store, blobs blob.Store, dir *directory.Service, clock clock.Clock, logger *slog.Logger) *Service {
	return &Service{
		store:       store,
		blobs:       blobs,
		directory:   dir,
		clock:       clock,
		logger:      logger.With(slog.String("component", "feed")),
		subscribers: make(map[int]func([]*model.Photo)),
		refresh:     make(chan struct{}, 1),
	}
}

// Subscribe registers fn to receive full newest-first photo snapshots. The
// returned function unsubscribes.
func (s *Service) Subscribe(fn func([]*model.Photo)) func() {
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

// Run drives snapshot delivery until ctx is cancelled.
func (s *Service) Run(ctx context.Context) error {
	changes, err := s.store.Watch(ctx, storage.CollectionPhotos)
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

// List returns the current photo snapshot, newest first.
func (s *Service) List(ctx context.Context) ([]*model.Photo, error) {
	return s.store.ListPhotos(ctx)
}

// Upload validates, stores and records one photo. Dimension probing and
// thumbnail rendering are best-effort: an undecodable format still uploads.
func (s *Service) Upload(ctx context.Context, req UploadRequest, onProgress ProgressFunc) (*model.Photo, error) {
	if !isSupportedImage(req.ContentType, req.FileName) {
		return nil, &model.UploadError{FileName: req.FileName, Err: model.ErrUnsupportedFileType}
	}

	id := model.PhotoID(uuid.NewString())
	key := objectKey(id, req.FileName)

	var progress blob.ProgressFunc
	if onProgress != nil && req.Size > 0 {
		progress = func(written int64) {
			percent := float64(written) * 100 / float64(req.Size)
			if percent > 100 {
				percent = 100
			}
			onProgress(percent)
		}
	}

	url, err := s.blobs.Upload(ctx, key, req.Body, req.Size, req.ContentType, progress)
	if err != nil {
		return nil, &model.UploadError{FileName: req.FileName, Err: err}
	}
	if onProgress != nil {
		onProgress(100)
	}

	photo := &model.Photo{
		ID:           id,
		BlobKey:      key,
		BlobURL:      url,
		UploaderID:   req.Uploader.ID,
		UploaderName: req.Uploader.DisplayName,
		UploaderRole: req.Uploader.Role,
		UploadedAt:   s.clock.Now(),
		LikedBy:      []model.GuestID{},
	}

	if dims, ok := s.probeDimensions(ctx, req); ok {
		photo.Width = dims.Width
		photo.Height = dims.Height
	}
	if thumbKey, thumbURL, ok := s.renderThumbnail(ctx, id, req); ok {
		photo.ThumbKey = thumbKey
		photo.ThumbnailURL = thumbURL
	}

	if err := s.store.CreatePhoto(ctx, photo); err != nil {
		return nil, err
	}

	if err := s.directory.RecordUpload(ctx, photo.UploaderID); err != nil {
		s.logger.WarnContext(ctx, "upload counter update failed",
			slog.String("guest_id", string(photo.UploaderID)),
			slog.String("error", err.Error()))
	}

	s.logger.InfoContext(ctx, "photo uploaded",
		slog.String("photo_id", string(photo.ID)),
		slog.String("uploader_id", string(photo.UploaderID)))
	return photo, nil
}

// ToggleLike flips the guest's like on the photo, returning the new state.
func (s *Service) ToggleLike(ctx context.Context, photoID model.PhotoID, guestID model.GuestID) (bool, error) {
	return s.store.ToggleLike(ctx, photoID, guestID)
}

// DeletePhoto removes a photo and its binaries. Only the uploader may
// delete; the record is kept if the blob deletion fails so the operation
// stays retryable.
func (s *Service) DeletePhoto(ctx context.Context, photoID model.PhotoID, requester model.GuestID) error {
	photo, err := s.store.GetPhoto(ctx, photoID)
	if err != nil {
		return err
	}
	if photo.UploaderID != requester {
		return model.ErrNotPhotoOwner
	}

	if photo.BlobKey != "" {
		if err := s.blobs.Delete(ctx, photo.BlobKey); err != nil {
			return fmt.Errorf("deleting photo blob: %w", err)
		}
	}
	if photo.ThumbKey != "" {
		if err := s.blobs.Delete(ctx, photo.ThumbKey); err != nil {
			s.logger.WarnContext(ctx, "thumbnail deletion failed",
				slog.String("photo_id", string(photoID)),
				slog.String("error", err.Error()))
		}
	}

	if err := s.store.DeletePhoto(ctx, photoID); err != nil {
		return err
	}

	if err := s.directory.RecordDeletion(ctx, photo.UploaderID); err != nil {
		s.logger.WarnContext(ctx, "deletion counter update failed",
			slog.String("guest_id", string(photo.UploaderID)),
			slog.String("error", err.Error()))
	}
	return nil
}

func (s *Service) probeDimensions(ctx context.Context, req UploadRequest) (imaging.Dimensions, bool) {
	if _, err := req.Body.Seek(0, io.SeekStart); err != nil {
		return imaging.Dimensions{}, false
	}
	dims, err := imaging.Probe(req.Body)
	if err != nil {
		s.logger.DebugContext(ctx, "dimension probe failed",
			slog.String("file_name", req.FileName),
			slog.String("error", err.Error()))
		return imaging.Dimensions{}, false
	}
	return dims, true
}

func (s *Service) renderThumbnail(ctx context.Context, id model.PhotoID, req UploadRequest) (string, string, bool) {
	if _, err := req.Body.Seek(0, io.SeekStart); err != nil {
		return "", "", false
	}
	thumb, err := imaging.Thumbnail(req.Body)
	if err != nil {
		s.logger.DebugContext(ctx, "thumbnail render failed",
			slog.String("file_name", req.FileName),
			slog.String("error", err.Error()))
		return "", "", false
	}

	key := thumbKey(id)
	url, err := s.blobs.Upload(ctx, key, bytes.NewReader(thumb), int64(len(thumb)), "image/jpeg", nil)
	if err != nil {
		s.logger.WarnContext(ctx, "thumbnail upload failed",
			slog.String("photo_id", string(id)),
			slog.String("error", err.Error()))
		return "", "", false
	}
	return key, url, true
}

func (s *Service) requestRefresh() {
	select {
	case s.refresh <- struct{}{}:
	default:
	}
}

func (s *Service) broadcast(ctx context.Context) {
	photos, err := s.store.ListPhotos(ctx)
	if err != nil {
		s.logger.ErrorContext(ctx, "photo snapshot query failed",
			slog.String("error", err.Error()))
		return
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, fn := range s.subscribers {
		fn(photos)
	}
}

func isSupportedImage(contentType, fileName string) bool {
	if strings.HasPrefix(contentType, "image/") {
		return true
	}
	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(fileName), "."))
	_, ok := supportedExtensions[ext]
	return ok
}

func objectKey(id model.PhotoID, fileName string) string {
	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(fileName), "."))
	if ext == "" {
		ext = "bin"
	}
	return fmt.Sprintf("event-photos/%s.%s", id, ext)
}

func thumbKey(id model.PhotoID) string {
	return fmt.Sprintf("thumbs/%s.jpg", id)
}
