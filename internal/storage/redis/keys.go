package redis

import (
	"fmt"

	"github.com/snapfest/snapfest/internal/model"
	"github.com/snapfest/snapfest/internal/storage"
)

// Key prefix for all album data
const keyPrefix = "snapfest"

// guestKey returns the Redis key for a Guest document
func guestKey(id model.GuestID) string {
	return fmt.Sprintf("%s:guest:%s", keyPrefix, id)
}

// nameIndexKey returns the Redis key for the normalized_name -> guest_id index
func nameIndexKey(normalized string) string {
	return fmt.Sprintf("%s:idx:name:%s", keyPrefix, normalized)
}

// guestsIndexKey returns the Redis key for the SET of all guest ids
func guestsIndexKey() string {
	return fmt.Sprintf("%s:idx:guests", keyPrefix)
}

// photoKey returns the Redis key for a Photo document
func photoKey(id model.PhotoID) string {
	return fmt.Sprintf("%s:photo:%s", keyPrefix, id)
}

// photosIndexKey returns the Redis key for the SET of all photo ids
func photosIndexKey() string {
	return fmt.Sprintf("%s:idx:photos", keyPrefix)
}

// changeChannel returns the pub/sub channel used to signal collection changes
func changeChannel(c storage.Collection) string {
	return fmt.Sprintf("%s:changes:%s", keyPrefix, c)
}
