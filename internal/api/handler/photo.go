package handler

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/snapfest/snapfest/internal/api/middleware"
	"github.com/snapfest/snapfest/internal/api/response"
	"github.com/snapfest/snapfest/internal/model"
	"github.com/snapfest/snapfest/internal/services/feed"
	"github.com/snapfest/snapfest/internal/services/uploads"
)

// maxUploadBytes bounds a single multipart upload
const maxUploadBytes = 64 << 20

// PhotoHandler handles photo feed endpoints
type PhotoHandler struct {
	feedService *feed.Service
	coordinator *uploads.Coordinator
}

// NewPhotoHandler creates a new photo handler
func NewPhotoHandler(feedService *feed.Service, coordinator *uploads.Coordinator) *PhotoHandler {
	return &PhotoHandler{
		feedService: feedService,
		coordinator: coordinator,
	}
}

// List handles GET /api/v1/photos
func (h *PhotoHandler) List(w http.ResponseWriter, r *http.Request) {
	photos, err := h.feedService.List(r.Context())
	if err != nil {
		WriteError(w, err)
		return
	}
	response.JSON(w, http.StatusOK, response.PhotosFromModel(photos))
}

// Upload handles POST /api/v1/photos
// Expects a multipart form with the photo under the "file" field.
func (h *PhotoHandler) Upload(w http.ResponseWriter, r *http.Request) {
	uploader := middleware.MustGetGuest(r.Context())

	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)
	file, header, err := r.FormFile("file")
	if err != nil {
		WriteError(w, NewInvalidRequestError("multipart field 'file' is required"))
		return
	}
	defer func() { _ = file.Close() }()

	taskID := h.coordinator.Begin(header.Filename)

	photo, err := h.feedService.Upload(r.Context(), feed.UploadRequest{
		FileName:    header.Filename,
		ContentType: header.Header.Get("Content-Type"),
		Size:        header.Size,
		Body:        file,
		Uploader:    uploader,
	}, func(percent float64) {
		_ = h.coordinator.SetProgress(taskID, percent)
	})
	if err != nil {
		_ = h.coordinator.Fail(taskID, err)
		WriteError(w, err)
		return
	}
	_ = h.coordinator.Complete(taskID)

	response.JSON(w, http.StatusCreated, response.PhotoFromModel(photo))
}

// ToggleLike handles POST /api/v1/photos/{photo_id}/like
func (h *PhotoHandler) ToggleLike(w http.ResponseWriter, r *http.Request) {
	requester := middleware.MustGetGuest(r.Context())
	photoID := model.PhotoID(mux.Vars(r)["photo_id"])

	liked, err := h.feedService.ToggleLike(r.Context(), photoID, requester.ID)
	if err != nil {
		WriteError(w, err)
		return
	}
	response.JSON(w, http.StatusOK, response.LikeResponse{Liked: liked})
}

// Delete handles DELETE /api/v1/photos/{photo_id}
func (h *PhotoHandler) Delete(w http.ResponseWriter, r *http.Request) {
	requester := middleware.MustGetGuest(r.Context())
	photoID := model.PhotoID(mux.Vars(r)["photo_id"])

	if err := h.feedService.DeletePhoto(r.Context(), photoID, requester.ID); err != nil {
		WriteError(w, err)
		return
	}
	response.NoContent(w)
}

// UploadTasks handles GET /api/v1/uploads
func (h *PhotoHandler) UploadTasks(w http.ResponseWriter, r *http.Request) {
	response.JSON(w, http.StatusOK, response.UploadTasksFromModel(h.coordinator.Tasks()))
}
