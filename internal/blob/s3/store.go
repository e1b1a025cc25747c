// Package s3 provides a blob store backed by any S3-compatible object
// storage (AWS S3, MinIO, and friends).
package s3

import (
	"context"
	"fmt"
	"io"
	"sync/atomic"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/snapfest/snapfest/internal/blob"
)

// Config holds connection settings for an S3-compatible endpoint.
type Config struct {
	Endpoint        string
	Region          string
	Bucket          string
	AccessKeyID     string
	SecretAccessKey string
	UseSSL          bool

	// PublicBaseURL is the URL prefix clients fetch objects from. Empty
	// means objects are served straight from the endpoint.
	PublicBaseURL string
}

// Store uploads and deletes photo binaries in a single bucket.
type Store struct {
	client   *s3.Client
	uploader *manager.Uploader
	cfg      Config
	baseURL  string
}

func New(ctx context.Context, cfg Config) (*Store, error) {
	if cfg.Bucket == "" || cfg.Endpoint == "" {
		return nil, fmt.Errorf("blob store requires an endpoint and bucket")
	}

	scheme := "http"
	if cfg.UseSSL {
		scheme = "https"
	}
	endpointURL := fmt.Sprintf("%s://%s", scheme, cfg.Endpoint)

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx,
		awsconfig.WithRegion(cfg.Region),
		awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKeyID, cfg.SecretAccessKey, ""),
		),
	)
	if err != nil {
		return nil, fmt.Errorf("loading blob store config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		o.BaseEndpoint = aws.String(endpointURL)
		// MinIO and most self-hosted gateways only speak path-style
		o.UsePathStyle = true
	})

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if _, err := client.HeadBucket(pingCtx, &s3.HeadBucketInput{
		Bucket: aws.String(cfg.Bucket),
	}); err != nil {
		return nil, fmt.Errorf("bucket %q not reachable: %w", cfg.Bucket, err)
	}

	baseURL := cfg.PublicBaseURL
	if baseURL == "" {
		baseURL = fmt.Sprintf("%s/%s", endpointURL, cfg.Bucket)
	}

	return &Store{
		client:   client,
		uploader: manager.NewUploader(client),
		cfg:      cfg,
		baseURL:  baseURL,
	}, nil
}

var _ blob.Store = (*Store)(nil)

func (s *Store) Upload(ctx context.Context, key string, body io.Reader, size int64, contentType string, onProgress blob.ProgressFunc) (string, error) {
	if onProgress != nil {
		body = &progressReader{r: body, onProgress: onProgress}
	}

	_, err := s.uploader.Upload(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.cfg.Bucket),
		Key:         aws.String(key),
		Body:        body,
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return "", fmt.Errorf("uploading %s: %w", key, err)
	}

	return fmt.Sprintf("%s/%s", s.baseURL, key), nil
}

func (s *Store) Delete(ctx context.Context, key string) error {
	_, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.cfg.Bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return fmt.Errorf("deleting %s: %w", key, err)
	}
	return nil
}

// progressReader reports cumulative bytes read through it. The uploader may
// read parts concurrently, so the counter is atomic.
type progressReader struct {
	r          io.Reader
	written    atomic.Int64
	onProgress blob.ProgressFunc
}

func (p *progressReader) Read(buf []byte) (int, error) {
	n, err := p.r.Read(buf)
	if n > 0 {
		p.onProgress(p.written.Add(int64(n)))
	}
	return n, err
}
