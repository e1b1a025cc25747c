package response

import (
	"time"

	"github.com/snapfest/snapfest/internal/model"
)

// Guest represents a guest in API responses
type Guest struct {
	ID           string     `json:"id"`
	DisplayName  string     `json:"display_name"`
	Nickname     string     `json:"nickname,omitempty"`
	Role         string     `json:"role"`
	CreatedAt    time.Time  `json:"created_at"`
	LastActiveAt time.Time  `json:"last_active_at"`
	PhotoCount   int        `json:"photo_count"`
	LastUploadAt *time.Time `json:"last_upload_at,omitempty"`
}

// GuestFromModel converts a model.Guest to a response Guest
func GuestFromModel(g *model.Guest) Guest {
	return Guest{
		ID:           string(g.ID),
		DisplayName:  g.DisplayName,
		Nickname:     g.Nickname,
		Role:         string(g.Role),
		CreatedAt:    g.CreatedAt,
		LastActiveAt: g.LastActiveAt,
		PhotoCount:   g.PhotoCount,
		LastUploadAt: g.LastUploadAt,
	}
}

// GuestsFromModel converts a guest list
func GuestsFromModel(guests []*model.Guest) []Guest {
	out := make([]Guest, len(guests))
	for i, g := range guests {
		out[i] = GuestFromModel(g)
	}
	return out
}

// SignInResponse is the response for sign-in endpoints
type SignInResponse struct {
	Guest     Guest `json:"guest"`
	Returning bool  `json:"returning"`
}

// Photo represents a photo in API responses
type Photo struct {
	ID           string    `json:"id"`
	URL          string    `json:"url"`
	ThumbnailURL string    `json:"thumbnail_url,omitempty"`
	UploaderID   string    `json:"uploader_id"`
	UploaderName string    `json:"uploader_name"`
	UploaderRole string    `json:"uploader_role"`
	UploadedAt   time.Time `json:"uploaded_at"`
	LikeCount    int       `json:"like_count"`
	LikedBy      []string  `json:"liked_by"`
	Width        int       `json:"width,omitempty"`
	Height       int       `json:"height,omitempty"`
}

// PhotoFromModel converts a model.Photo to a response Photo
func PhotoFromModel(p *model.Photo) Photo {
	likedBy := make([]string, len(p.LikedBy))
	for i, id := range p.LikedBy {
		likedBy[i] = string(id)
	}
	return Photo{
		ID:           string(p.ID),
		URL:          p.BlobURL,
		ThumbnailURL: p.ThumbnailURL,
		UploaderID:   string(p.UploaderID),
		UploaderName: p.UploaderName,
		UploaderRole: string(p.UploaderRole),
		UploadedAt:   p.UploadedAt,
		LikeCount:    p.LikeCount,
		LikedBy:      likedBy,
		Width:        p.Width,
		Height:       p.Height,
	}
}

// PhotosFromModel converts a photo list
func PhotosFromModel(photos []*model.Photo) []Photo {
	out := make([]Photo, len(photos))
	for i, p := range photos {
		out[i] = PhotoFromModel(p)
	}
	return out
}

// LikeResponse is the response after toggling a like
type LikeResponse struct {
	Liked bool `json:"liked"`
}

// PhotoCountResponse is the response after recounting a guest's photos
type PhotoCountResponse struct {
	PhotoCount int `json:"photo_count"`
}

// UploadTask represents an in-flight upload in API responses
type UploadTask struct {
	ID       string  `json:"id"`
	FileName string  `json:"file_name"`
	Progress float64 `json:"progress"`
	Status   string  `json:"status"`
	Error    string  `json:"error,omitempty"`
}

// UploadTaskFromModel converts a model.UploadTask
func UploadTaskFromModel(t model.UploadTask) UploadTask {
	return UploadTask{
		ID:       string(t.ID),
		FileName: t.FileName,
		Progress: t.Progress,
		Status:   string(t.Status),
		Error:    t.Error,
	}
}

// UploadTasksFromModel converts an upload task list
func UploadTasksFromModel(tasks []model.UploadTask) []UploadTask {
	out := make([]UploadTask, len(tasks))
	for i, t := range tasks {
		out[i] = UploadTaskFromModel(t)
	}
	return out
}
