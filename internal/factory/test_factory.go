package factory

import (
	"time"

	blobmemory "github.com/snapfest/snapfest/internal/blob/memory"
	"github.com/snapfest/snapfest/internal/dependencies/mocks"
	"github.com/snapfest/snapfest/internal/storage/memory"
	"github.com/snapfest/snapfest/internal/testutil"
)

// TestApp extends App with test-specific helpers
type TestApp struct {
	*App

	// Mocks for test control
	MockClock *mocks.MockClock
	MemStore  *memory.Storage
	MemBlobs  *blobmemory.Store
}

// NewTestApp creates an App configured for testing with mocked dependencies
func NewTestApp(cfg Config) *TestApp {
	store := memory.New()
	blobs := blobmemory.New()
	mockClock := mocks.NewMockClock(time.Date(2025, 6, 1, 18, 0, 0, 0, time.UTC))

	if cfg.Logger == nil {
		cfg.Logger = testutil.NopLogger()
	}
	app := newWithDependencies(store, blobs, mockClock, cfg, cfg.Logger)

	return &TestApp{
		App:       app,
		MockClock: mockClock,
		MemStore:  store,
		MemBlobs:  blobs,
	}
}
