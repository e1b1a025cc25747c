// Package factory wires storage, blob, and service dependencies into a
// running application.
package factory

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"time"

	"github.com/snapfest/snapfest/internal/blob"
	blobmemory "github.com/snapfest/snapfest/internal/blob/memory"
	blobs3 "github.com/snapfest/snapfest/internal/blob/s3"
	"github.com/snapfest/snapfest/internal/dependencies/clock"
	"github.com/snapfest/snapfest/internal/services/directory"
	"github.com/snapfest/snapfest/internal/services/feed"
	"github.com/snapfest/snapfest/internal/services/identity"
	"github.com/snapfest/snapfest/internal/services/uploads"
	"github.com/snapfest/snapfest/internal/storage"
	"github.com/snapfest/snapfest/internal/storage/memory"
	redisstorage "github.com/snapfest/snapfest/internal/storage/redis"
)

// Storage type constants
const (
	StorageTypeMemory = "memory"
	StorageTypeRedis  = "redis"
)

// Blob store type constants
const (
	BlobTypeMemory = "memory"
	BlobTypeS3     = "s3"
)

// App contains all wired application components
type App struct {
	Store storage.Store
	Blobs blob.Store
	Clock clock.Clock

	IdentityService   *identity.Service
	DirectoryService  *directory.Service
	FeedService       *feed.Service
	UploadCoordinator *uploads.Coordinator

	logger *slog.Logger
}

// Config holds configuration for the application factory
type Config struct {
	// Logger is the application logger (optional)
	// If nil, a no-op logger is used
	Logger *slog.Logger

	// StorageType selects the document store ("memory" or "redis")
	// If empty, defaults to "memory"
	StorageType string
	// RedisConfig holds Redis connection settings (required if StorageType is "redis")
	RedisConfig *redisstorage.Config

	// BlobType selects the blob store ("memory" or "s3")
	// If empty, defaults to "memory"
	BlobType string
	// S3Config holds blob store settings (required if BlobType is "s3")
	S3Config *blobs3.Config

	// IdentityConfig holds sign-in settings (optional)
	IdentityConfig identity.Config

	// UploadRetention is how long finished upload tasks stay listed (optional)
	UploadRetention time.Duration
}

// New creates a new application with all dependencies wired
func New(ctx context.Context, cfg Config) (*App, error) {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.NewJSONHandler(io.Discard, nil))
	}

	store, err := newStore(cfg)
	if err != nil {
		return nil, err
	}

	blobs, err := newBlobStore(ctx, cfg)
	if err != nil {
		return nil, err
	}

	return newWithDependencies(store, blobs, clock.New(), cfg, logger), nil
}

func newStore(cfg Config) (storage.Store, error) {
	storageType := cfg.StorageType
	if storageType == "" {
		storageType = StorageTypeMemory
	}

	switch storageType {
	case StorageTypeMemory:
		return memory.New(), nil
	case StorageTypeRedis:
		if cfg.RedisConfig == nil {
			return nil, errors.New("RedisConfig required when StorageType is redis")
		}
		return redisstorage.New(*cfg.RedisConfig)
	default:
		return nil, errors.New("invalid StorageType: must be 'memory' or 'redis'")
	}
}

func newBlobStore(ctx context.Context, cfg Config) (blob.Store, error) {
	blobType := cfg.BlobType
	if blobType == "" {
		blobType = BlobTypeMemory
	}

	switch blobType {
	case BlobTypeMemory:
		return blobmemory.New(), nil
	case BlobTypeS3:
		if cfg.S3Config == nil {
			return nil, errors.New("S3Config required when BlobType is s3")
		}
		return blobs3.New(ctx, *cfg.S3Config)
	default:
		return nil, errors.New("invalid BlobType: must be 'memory' or 's3'")
	}
}

// newWithDependencies creates an App with the given dependencies (useful for testing)
func newWithDependencies(store storage.Store, blobs blob.Store, clk clock.Clock, cfg Config, logger *slog.Logger) *App {
	directoryService := directory.New(store, clk, logger)
	feedService := feed.New(store, blobs, directoryService, clk, logger)
	identityService := identity.New(store, clk, cfg.IdentityConfig, logger)
	uploadCoordinator := uploads.New(cfg.UploadRetention)

	return &App{
		Store:             store,
		Blobs:             blobs,
		Clock:             clk,
		IdentityService:   identityService,
		DirectoryService:  directoryService,
		FeedService:       feedService,
		UploadCoordinator: uploadCoordinator,
		logger:            logger,
	}
}

// Start launches the snapshot delivery loops. They run until ctx is
// cancelled.
func (a *App) Start(ctx context.Context) {
	go func() {
		if err := a.DirectoryService.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
			a.logger.Error("directory loop stopped", slog.String("error", err.Error()))
		}
	}()
	go func() {
		if err := a.FeedService.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
			a.logger.Error("feed loop stopped", slog.String("error", err.Error()))
		}
	}()
}

// Close releases held resources.
func (a *App) Close() error {
	a.UploadCoordinator.Close()
	if closer, ok := a.Store.(io.Closer); ok {
		return closer.Close()
	}
	return nil
}
