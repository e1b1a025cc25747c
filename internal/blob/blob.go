// Package blob abstracts binary object storage for photo files.
package blob

import (
	"context"
	"io"
)

// ProgressFunc receives the cumulative number of bytes written so far.
// Implementations may invoke it from another goroutine.
type ProgressFunc func(written int64)

// Store holds photo binaries. Keys are opaque object paths; the returned
// URL is where the object can be fetched from afterwards.
type Store interface {
	Upload(ctx context.Context, key string, body io.Reader, size int64, contentType string, onProgress ProgressFunc) (string, error)
	Delete(ctx context.Context, key string) error
}
