// Package config loads service configuration from the environment, with an
// optional .env file for local development.
package config

import (
	"fmt"
	"os"
	"time"

	"github.com/caarlos0/env/v6"
	"github.com/joho/godotenv"
)

// Config holds all runtime settings for the server.
type Config struct {
	ListenAddr string `env:"SNAPFEST_LISTEN_ADDR" envDefault:":8080"`
	LogLevel   string `env:"SNAPFEST_LOG_LEVEL" envDefault:"info"`

	// StorageType selects the document store backend ("memory" or "redis")
	StorageType string `env:"SNAPFEST_STORAGE_TYPE" envDefault:"memory"`

	Redis struct {
		URL          string `env:"SNAPFEST_REDIS_URL" envDefault:"redis://localhost:6379"`
		PoolSize     int    `env:"SNAPFEST_REDIS_POOL_SIZE" envDefault:"10"`
		MinIdleConns int    `env:"SNAPFEST_REDIS_MIN_IDLE_CONNS" envDefault:"2"`
	}

	// BlobType selects the blob store backend ("memory" or "s3")
	BlobType string `env:"SNAPFEST_BLOB_TYPE" envDefault:"memory"`

	S3 struct {
		Endpoint        string `env:"SNAPFEST_S3_ENDPOINT"`
		Region          string `env:"SNAPFEST_S3_REGION" envDefault:"us-east-1"`
		Bucket          string `env:"SNAPFEST_S3_BUCKET" envDefault:"snapfest-photos"`
		AccessKeyID     string `env:"SNAPFEST_S3_ACCESS_KEY_ID"`
		SecretAccessKey string `env:"SNAPFEST_S3_SECRET_ACCESS_KEY"`
		UseSSL          bool   `env:"SNAPFEST_S3_USE_SSL" envDefault:"false"`
		PublicBaseURL   string `env:"SNAPFEST_S3_PUBLIC_BASE_URL"`
	}

	Identity struct {
		// NicknamePolicy is "overwrite" or "fill-empty"
		NicknamePolicy string `env:"SNAPFEST_NICKNAME_POLICY" envDefault:"overwrite"`
		// Bcrypt hashes of the role access codes; empty disables the role
		HostCodeHash       string `env:"SNAPFEST_HOST_CODE_HASH"`
		AuthorizedCodeHash string `env:"SNAPFEST_AUTHORIZED_CODE_HASH"`
	}

	// UploadRetention is how long finished upload tasks stay listed
	UploadRetention time.Duration `env:"SNAPFEST_UPLOAD_RETENTION" envDefault:"3s"`
}

// Load reads configuration from the environment. A .env file in the working
// directory is loaded first when present.
func Load() (*Config, error) {
	if _, err := os.Stat(".env"); err == nil {
		if err := godotenv.Load(); err != nil {
			return nil, fmt.Errorf("loading .env file: %w", err)
		}
	}

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parsing environment config: %w", err)
	}
	return cfg, nil
}
