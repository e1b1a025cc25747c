package factory

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/png"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"github.com/snapfest/snapfest/internal/model"
	"github.com/snapfest/snapfest/internal/services/feed"
)

type IntegrationSuite struct {
	suite.Suite
	app    *TestApp
	ctx    context.Context
	cancel context.CancelFunc
}

func TestIntegrationSuite(t *testing.T) {
	suite.Run(t, new(IntegrationSuite))
}

func (s *IntegrationSuite) SetupTest() {
	s.app = NewTestApp(Config{})
	s.ctx, s.cancel = context.WithCancel(context.Background())
}

func (s *IntegrationSuite) TearDownTest() {
	s.cancel()
	_ = s.app.Close()
}

func (s *IntegrationSuite) pngUpload(guest *model.Guest, fileName string) feed.UploadRequest {
	img := image.NewRGBA(image.Rect(0, 0, 32, 24))
	img.Set(0, 0, color.RGBA{R: 255, A: 255})
	var buf bytes.Buffer
	s.Require().NoError(png.Encode(&buf, img))

	return feed.UploadRequest{
		FileName:    fileName,
		ContentType: "image/png",
		Size:        int64(buf.Len()),
		Body:        bytes.NewReader(buf.Bytes()),
		Uploader:    guest,
	}
}

// Test: a full evening at the event, from sign-ins to likes and cleanup
func (s *IntegrationSuite) TestEventAlbumFlow() {
	// Step 1: José arrives and signs in for the first time
	jose, err := s.app.IdentityService.SignIn(s.ctx, "José", "")
	s.Require().NoError(err)
	s.False(jose.Returning)
	s.Equal("José", jose.Guest.DisplayName)

	// Step 2: He reopens the page later, typed without the accent
	s.app.MockClock.Advance(30 * time.Minute)
	back, err := s.app.IdentityService.SignIn(s.ctx, "jose", "")
	s.Require().NoError(err)
	s.True(back.Returning)
	s.Equal(jose.Guest.ID, back.Guest.ID)

	// Step 3: Ana Clara signs in; a friend typing "Ana Klara" is challenged
	ana, err := s.app.IdentityService.SignIn(s.ctx, "Ana Clara", "")
	s.Require().NoError(err)

	_, err = s.app.IdentityService.SignIn(s.ctx, "Ana Klara", "")
	var ambiguous *model.AmbiguousNameError
	s.Require().ErrorAs(err, &ambiguous)
	s.Require().Len(ambiguous.Suggestions, 1)

	confirmed, err := s.app.IdentityService.ConfirmSuggestion(s.ctx, ambiguous.Suggestions[0].ID, "")
	s.Require().NoError(err)
	s.Equal(ana.Guest.ID, confirmed.ID)

	// Step 4: José uploads a photo, progress tracked end to end
	taskID := s.app.UploadCoordinator.Begin("dancefloor.png")
	photo, err := s.app.FeedService.Upload(s.ctx, s.pngUpload(jose.Guest, "dancefloor.png"), func(p float64) {
		_ = s.app.UploadCoordinator.SetProgress(taskID, p)
	})
	s.Require().NoError(err)
	s.Require().NoError(s.app.UploadCoordinator.Complete(taskID))

	tasks := s.app.UploadCoordinator.Tasks()
	s.Require().Len(tasks, 1)
	s.Equal(model.UploadStatusCompleted, tasks[0].Status)
	s.Equal(100.0, tasks[0].Progress)

	s.Equal(32, photo.Width)
	s.Equal(24, photo.Height)
	s.NotEmpty(photo.ThumbnailURL)

	uploader, err := s.app.Store.GetGuest(s.ctx, jose.Guest.ID)
	s.Require().NoError(err)
	s.Equal(1, uploader.PhotoCount)

	// Step 5: Ana likes it, José likes it, Ana changes her mind
	liked, err := s.app.FeedService.ToggleLike(s.ctx, photo.ID, ana.Guest.ID)
	s.Require().NoError(err)
	s.True(liked)

	liked, err = s.app.FeedService.ToggleLike(s.ctx, photo.ID, jose.Guest.ID)
	s.Require().NoError(err)
	s.True(liked)

	liked, err = s.app.FeedService.ToggleLike(s.ctx, photo.ID, ana.Guest.ID)
	s.Require().NoError(err)
	s.False(liked)

	current, err := s.app.Store.GetPhoto(s.ctx, photo.ID)
	s.Require().NoError(err)
	s.Equal(1, current.LikeCount)
	s.Equal(len(current.LikedBy), current.LikeCount)
	s.True(current.LikedByGuest(jose.Guest.ID))

	// Step 6: Ana cannot delete José's photo; José can
	err = s.app.FeedService.DeletePhoto(s.ctx, photo.ID, ana.Guest.ID)
	s.ErrorIs(err, model.ErrNotPhotoOwner)

	s.Require().NoError(s.app.FeedService.DeletePhoto(s.ctx, photo.ID, jose.Guest.ID))

	photos, err := s.app.FeedService.List(s.ctx)
	s.Require().NoError(err)
	s.Empty(photos)
	s.Equal(0, s.app.MemBlobs.Len())

	uploader, err = s.app.Store.GetGuest(s.ctx, jose.Guest.ID)
	s.Require().NoError(err)
	s.Equal(0, uploader.PhotoCount)
}

// Test: live snapshots reach subscribers as guests and photos change
func (s *IntegrationSuite) TestLiveSnapshots() {
	s.app.Start(s.ctx)

	guestSnapshots := make(chan []*model.Guest, 16)
	unsubGuests := s.app.DirectoryService.Subscribe(func(guests []*model.Guest) {
		guestSnapshots <- guests
	})
	defer unsubGuests()

	photoSnapshots := make(chan []*model.Photo, 16)
	unsubPhotos := s.app.FeedService.Subscribe(func(photos []*model.Photo) {
		photoSnapshots <- photos
	})
	defer unsubPhotos()

	result, err := s.app.IdentityService.SignIn(s.ctx, "Maria", "")
	s.Require().NoError(err)

	s.waitForGuests(guestSnapshots, 1)

	_, err = s.app.FeedService.Upload(s.ctx, s.pngUpload(result.Guest, "toast.png"), nil)
	s.Require().NoError(err)

	s.waitForPhotos(photoSnapshots, 1)
}

func (s *IntegrationSuite) waitForGuests(ch chan []*model.Guest, want int) {
	deadline := time.After(time.Second)
	for {
		select {
		case snapshot := <-ch:
			if len(snapshot) == want {
				return
			}
		case <-deadline:
			s.FailNow("timed out waiting for guest snapshot")
		}
	}
}

func (s *IntegrationSuite) waitForPhotos(ch chan []*model.Photo, want int) {
	deadline := time.After(time.Second)
	for {
		select {
		case snapshot := <-ch:
			if len(snapshot) == want {
				return
			}
		case <-deadline:
			s.FailNow("timed out waiting for photo snapshot")
		}
	}
}
