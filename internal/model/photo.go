package model

import "time"

// PhotoID uniquely identifies a photo record
type PhotoID string

// Photo represents one uploaded photo in the shared feed.
// UploaderName and UploaderRole are snapshots taken at upload time so the
// feed stays renderable even if the guest record changes later.
type Photo struct {
	ID           PhotoID
	BlobKey      string
	BlobURL      string
	ThumbKey     string
	ThumbnailURL string
	UploaderID   GuestID
	UploaderName string
	UploaderRole Role
	UploadedAt   time.Time
	LikeCount    int
	LikedBy      []GuestID
	Width        int
	Height       int
}

// LikedByGuest reports whether the given guest has liked this photo
func (p *Photo) LikedByGuest(id GuestID) bool {
	for _, g := range p.LikedBy {
		if g == id {
			return true
		}
	}
	return false
}
