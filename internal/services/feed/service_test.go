package feed

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/color"
	"image/png"
	"io"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"github.com/snapfest/snapfest/internal/blob"
	blobmemory "github.com/snapfest/snapfest/internal/blob/memory"
	"github.com/snapfest/snapfest/internal/dependencies/mocks"
	"github.com/snapfest/snapfest/internal/model"
	"github.com/snapfest/snapfest/internal/services/directory"
	"github.com/snapfest/snapfest/internal/storage/memory"
	"github.com/snapfest/snapfest/internal/testutil"
)

type FeedSuite struct {
	suite.Suite
	store   *memory.Storage
	blobs   *blobmemory.Store
	clock   *mocks.MockClock
	service *Service
	ctx     context.Context
}

func TestFeedSuite(t *testing.T) {
	suite.Run(t, new(FeedSuite))
}

func (s *FeedSuite) SetupTest() {
	s.store = memory.New()
	s.blobs = blobmemory.New()
	s.clock = mocks.NewMockClock(time.Date(2025, 6, 1, 18, 0, 0, 0, time.UTC))
	dir := directory.New(s.store, s.clock, testutil.NopLogger())
	s.service = New(s.store, s.blobs, dir, s.clock, testutil.NopLogger())
	s.ctx = context.Background()
}

func (s *FeedSuite) addGuest(id, name string) *model.Guest {
	guest := &model.Guest{
		ID:             model.GuestID(id),
		DisplayName:    name,
		NormalizedName: name,
		Role:           model.RoleGuest,
		CreatedAt:      s.clock.Now(),
		LastActiveAt:   s.clock.Now(),
	}
	s.Require().NoError(s.store.CreateGuest(s.ctx, guest))
	return guest
}

func (s *FeedSuite) pngBytes(w, h int) []byte {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for x := 0; x < w; x++ {
		img.Set(x, 0, color.RGBA{R: 200, A: 255})
	}
	var buf bytes.Buffer
	s.Require().NoError(png.Encode(&buf, img))
	return buf.Bytes()
}

func (s *FeedSuite) uploadReq(guest *model.Guest, fileName, contentType string, data []byte) UploadRequest {
	return UploadRequest{
		FileName:    fileName,
		ContentType: contentType,
		Size:        int64(len(data)),
		Body:        bytes.NewReader(data),
		Uploader:    guest,
	}
}

// Upload tests

func (s *FeedSuite) TestUploadDecodableImage() {
	guest := s.addGuest("g1", "pedro")
	data := s.pngBytes(800, 600)

	photo, err := s.service.Upload(s.ctx, s.uploadReq(guest, "party.png", "image/png", data), nil)
	s.Require().NoError(err)

	s.Equal(model.GuestID("g1"), photo.UploaderID)
	s.Equal("pedro", photo.UploaderName)
	s.Equal(s.clock.Now(), photo.UploadedAt)
	s.Equal(800, photo.Width)
	s.Equal(600, photo.Height)
	s.NotEmpty(photo.BlobURL)
	s.NotEmpty(photo.ThumbnailURL)

	// Original and thumbnail both stored
	s.Equal(2, s.blobs.Len())
	stored, ok := s.blobs.Get(photo.BlobKey)
	s.True(ok)
	s.Equal(data, stored)

	g, _ := s.store.GetGuest(s.ctx, "g1")
	s.Equal(1, g.PhotoCount)
	s.Require().NotNil(g.LastUploadAt)
}

func (s *FeedSuite) TestUploadUndecodableFormatFailsSoft() {
	guest := s.addGuest("g1", "pedro")
	data := []byte("raw sensor payload, not decodable")

	photo, err := s.service.Upload(s.ctx, s.uploadReq(guest, "shot.heic", "image/heic", data), nil)
	s.Require().NoError(err)

	s.Zero(photo.Width)
	s.Zero(photo.Height)
	s.Empty(photo.ThumbnailURL)
	s.NotEmpty(photo.BlobURL)
	s.Equal(1, s.blobs.Len())
}

func (s *FeedSuite) TestUploadAcceptsByExtensionWhenMIMEMissing() {
	guest := s.addGuest("g1", "pedro")

	photo, err := s.service.Upload(s.ctx, s.uploadReq(guest, "IMG_0042.HEIC", "", []byte("bytes")), nil)
	s.Require().NoError(err)
	s.NotEmpty(photo.BlobURL)
}

func (s *FeedSuite) TestUploadRejectsUnsupportedFile() {
	guest := s.addGuest("g1", "pedro")

	_, err := s.service.Upload(s.ctx, s.uploadReq(guest, "speech", "application/pdf", []byte("%PDF")), nil)

	s.ErrorIs(err, model.ErrUnsupportedFileType)
	var uploadErr *model.UploadError
	s.Require().ErrorAs(err, &uploadErr)
	s.Equal("speech", uploadErr.FileName)

	photos, _ := s.store.ListPhotos(s.ctx)
	s.Empty(photos)
	s.Equal(0, s.blobs.Len())

	g, _ := s.store.GetGuest(s.ctx, "g1")
	s.Equal(0, g.PhotoCount)
}

func (s *FeedSuite) TestUploadReportsProgress() {
	guest := s.addGuest("g1", "pedro")
	data := s.pngBytes(64, 64)

	var percents []float64
	_, err := s.service.Upload(s.ctx, s.uploadReq(guest, "a.png", "image/png", data), func(p float64) {
		percents = append(percents, p)
	})
	s.Require().NoError(err)

	s.Require().NotEmpty(percents)
	for _, p := range percents {
		s.GreaterOrEqual(p, 0.0)
		s.LessOrEqual(p, 100.0)
	}
	s.Equal(100.0, percents[len(percents)-1])
}

func (s *FeedSuite) TestUploadUnknownUploaderStillSucceeds() {
	ghost := &model.Guest{ID: "ghost", DisplayName: "Ghost", Role: model.RoleGuest}

	photo, err := s.service.Upload(s.ctx, s.uploadReq(ghost, "a.png", "image/png", s.pngBytes(10, 10)), nil)
	s.Require().NoError(err)
	s.NotEmpty(photo.BlobURL)
}

// Like tests

func (s *FeedSuite) TestToggleLike() {
	s.addGuest("g1", "pedro")
	_ = s.store.CreatePhoto(s.ctx, &model.Photo{ID: "p1", UploaderID: "g1", UploadedAt: s.clock.Now()})

	liked, err := s.service.ToggleLike(s.ctx, "p1", "g2")
	s.Require().NoError(err)
	s.True(liked)

	liked, err = s.service.ToggleLike(s.ctx, "p1", "g2")
	s.Require().NoError(err)
	s.False(liked)
}

func (s *FeedSuite) TestToggleLikeVanishedPhoto() {
	_, err := s.service.ToggleLike(s.ctx, "gone", "g1")
	s.ErrorIs(err, model.ErrPhotoNotFound)
}

// Deletion tests

func (s *FeedSuite) TestDeletePhotoByOwner() {
	guest := s.addGuest("g1", "pedro")
	photo, err := s.service.Upload(s.ctx, s.uploadReq(guest, "a.png", "image/png", s.pngBytes(20, 20)), nil)
	s.Require().NoError(err)

	s.Require().NoError(s.service.DeletePhoto(s.ctx, photo.ID, "g1"))

	_, err = s.store.GetPhoto(s.ctx, photo.ID)
	s.ErrorIs(err, model.ErrPhotoNotFound)
	s.Equal(0, s.blobs.Len())

	g, _ := s.store.GetGuest(s.ctx, "g1")
	s.Equal(0, g.PhotoCount)
}

func (s *FeedSuite) TestDeletePhotoNotOwner() {
	guest := s.addGuest("g1", "pedro")
	photo, err := s.service.Upload(s.ctx, s.uploadReq(guest, "a.png", "image/png", s.pngBytes(20, 20)), nil)
	s.Require().NoError(err)

	err = s.service.DeletePhoto(s.ctx, photo.ID, "g2")
	s.ErrorIs(err, model.ErrNotPhotoOwner)

	_, err = s.store.GetPhoto(s.ctx, photo.ID)
	s.NoError(err)
}

func (s *FeedSuite) TestDeletePhotoNotFound() {
	err := s.service.DeletePhoto(s.ctx, "gone", "g1")
	s.ErrorIs(err, model.ErrPhotoNotFound)
}

func (s *FeedSuite) TestDeletePhotoKeepsRecordWhenBlobDeleteFails() {
	guest := s.addGuest("g1", "pedro")
	photo, err := s.service.Upload(s.ctx, s.uploadReq(guest, "a.png", "image/png", s.pngBytes(20, 20)), nil)
	s.Require().NoError(err)

	dir := directory.New(s.store, s.clock, testutil.NopLogger())
	broken := New(s.store, &failingBlobStore{}, dir, s.clock, testutil.NopLogger())

	err = broken.DeletePhoto(s.ctx, photo.ID, "g1")
	s.Error(err)

	// Record survives so the deletion can be retried
	_, err = s.store.GetPhoto(s.ctx, photo.ID)
	s.NoError(err)
}

// failingBlobStore fails every operation.
type failingBlobStore struct{}

func (f *failingBlobStore) Upload(ctx context.Context, key string, body io.Reader, size int64, contentType string, onProgress blob.ProgressFunc) (string, error) {
	return "", errors.New("blob store unavailable")
}

func (f *failingBlobStore) Delete(ctx context.Context, key string) error {
	return errors.New("blob store unavailable")
}
