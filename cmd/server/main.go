package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/snapfest/snapfest/internal/api"
	"github.com/snapfest/snapfest/internal/api/sse"
	blobs3 "github.com/snapfest/snapfest/internal/blob/s3"
	"github.com/snapfest/snapfest/internal/config"
	"github.com/snapfest/snapfest/internal/factory"
	"github.com/snapfest/snapfest/internal/services/identity"
	redisstorage "github.com/snapfest/snapfest/internal/storage/redis"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// Set up logging with JSON output
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: logLevel(cfg.LogLevel),
	}))
	slog.SetDefault(logger)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	app, err := factory.New(ctx, factoryConfig(cfg, logger))
	if err != nil {
		logger.Error("failed to create application", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer func() { _ = app.Close() }()

	app.Start(ctx)

	hub := sse.NewHub(logger)
	go hub.Run()
	defer hub.Close()

	broadcaster := sse.NewBroadcaster(hub, app.DirectoryService, app.FeedService, logger)
	defer broadcaster.Stop()

	router := api.NewRouter(api.RouterConfig{
		Logger:            logger,
		IdentityService:   app.IdentityService,
		DirectoryService:  app.DirectoryService,
		FeedService:       app.FeedService,
		UploadCoordinator: app.UploadCoordinator,
		GuestResolver:     app.Store,
		Hub:               hub,
	})

	serverConfig := api.DefaultServerConfig()
	serverConfig.Addr = cfg.ListenAddr
	server := api.NewServer(router, serverConfig, logger)

	// Handle graceful shutdown
	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh
		logger.Info("shutdown signal received")
		cancel()
	}()

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.Start()
	}()

	logger.Info("server started", slog.String("addr", server.Addr()))

	select {
	case err := <-errCh:
		if err != nil {
			logger.Error("server error", slog.String("error", err.Error()))
			os.Exit(1)
		}
	case <-ctx.Done():
		if err := server.Shutdown(context.Background()); err != nil {
			logger.Error("shutdown error", slog.String("error", err.Error()))
			os.Exit(1)
		}
	}

	logger.Info("server stopped")
}

func factoryConfig(cfg *config.Config, logger *slog.Logger) factory.Config {
	fc := factory.Config{
		Logger:          logger,
		StorageType:     cfg.StorageType,
		BlobType:        cfg.BlobType,
		UploadRetention: cfg.UploadRetention,
		IdentityConfig: identity.Config{
			NicknamePolicy:     identity.NicknamePolicy(cfg.Identity.NicknamePolicy),
			HostCodeHash:       cfg.Identity.HostCodeHash,
			AuthorizedCodeHash: cfg.Identity.AuthorizedCodeHash,
		},
	}

	if cfg.StorageType == factory.StorageTypeRedis {
		redisCfg := redisstorage.DefaultConfig()
		redisCfg.URL = cfg.Redis.URL
		redisCfg.PoolSize = cfg.Redis.PoolSize
		redisCfg.MinIdleConns = cfg.Redis.MinIdleConns
		fc.RedisConfig = &redisCfg
	}

	if cfg.BlobType == factory.BlobTypeS3 {
		fc.S3Config = &blobs3.Config{
			Endpoint:        cfg.S3.Endpoint,
			Region:          cfg.S3.Region,
			Bucket:          cfg.S3.Bucket,
			AccessKeyID:     cfg.S3.AccessKeyID,
			SecretAccessKey: cfg.S3.SecretAccessKey,
			UseSSL:          cfg.S3.UseSSL,
			PublicBaseURL:   cfg.S3.PublicBaseURL,
		}
	}

	return fc
}

func logLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
