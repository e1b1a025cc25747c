package memory

import (
	"context"
	"io"
	"sync"

	"github.com/snapfest/snapfest/internal/blob"
)

// Store is an in-memory blob store for tests and local development.
type Store struct {
	mu      sync.RWMutex
	objects map[string][]byte
	baseURL string
}

func New() *Store {
	return &Store{
		objects: make(map[string][]byte),
		baseURL: "memory://blobs",
	}
}

var _ blob.Store = (*Store)(nil)

func (s *Store) Upload(ctx context.Context, key string, body io.Reader, size int64, contentType string, onProgress blob.ProgressFunc) (string, error) {
	data, err := io.ReadAll(body)
	if err != nil {
		return "", err
	}

	s.mu.Lock()
	s.objects[key] = data
	s.mu.Unlock()

	if onProgress != nil {
		onProgress(int64(len(data)))
	}
	return s.baseURL + "/" + key, nil
}

// Delete removes an object. Deleting a missing key is not an error, which
// keeps photo deletion retryable after a partial failure.
func (s *Store) Delete(ctx context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.objects, key)
	return nil
}

// Get returns a stored object's bytes, for test assertions.
func (s *Store) Get(key string) ([]byte, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	data, ok := s.objects[key]
	return data, ok
}

// Len reports the number of stored objects.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.objects)
}
