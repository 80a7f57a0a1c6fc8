package storage

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	miniogo "github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"seoul-news-harvester/pkg/logger"
)

// defaultUploadTimeout bounds a single PutObject call.
const defaultUploadTimeout = 60 * time.Second

// MinioConfig configures an S3-compatible bucket. Google Cloud Storage is
// reachable through its interoperability endpoint with HMAC keys.
type MinioConfig struct {
	Endpoint      string
	AccessKey     string
	SecretKey     string
	UseSSL        bool
	Region        string
	Bucket        string
	PublicBaseURL string
	UploadTimeout time.Duration
}

// Validate checks the fields required to build a client.
func (c MinioConfig) Validate() error {
	switch {
	case c.Endpoint == "":
		return errors.New("storage endpoint required")
	case c.Bucket == "":
		return errors.New("storage bucket required")
	case c.AccessKey == "" || c.SecretKey == "":
		return errors.New("storage access_key and secret_key required")
	}
	return nil
}

// MinioStore uploads objects with minio-go.
type MinioStore struct {
	client  *miniogo.Client
	cfg     MinioConfig
	baseURL string
	logger  logger.Logger
}

// NewMinioStore creates the client. It does not contact the server.
func NewMinioStore(cfg MinioConfig, log logger.Logger) (*MinioStore, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	client, err := miniogo.New(cfg.Endpoint, &miniogo.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
		Region: cfg.Region,
	})
	if err != nil {
		return nil, fmt.Errorf("create minio client: %w", err)
	}
	if cfg.UploadTimeout <= 0 {
		cfg.UploadTimeout = defaultUploadTimeout
	}

	log.Info("object store initialized",
		logger.String("endpoint", cfg.Endpoint),
		logger.String("bucket", cfg.Bucket))

	return &MinioStore{
		client:  client,
		cfg:     cfg,
		baseURL: publicBaseURL(cfg),
		logger:  log,
	}, nil
}

// Put uploads data under key with a public-read ACL.
func (s *MinioStore) Put(ctx context.Context, key string, data []byte, contentType string) (string, error) {
	if key == "" {
		return "", ErrEmptyKey
	}
	ctx, cancel := context.WithTimeout(ctx, s.cfg.UploadTimeout)
	defer cancel()

	_, err := s.client.PutObject(ctx, s.cfg.Bucket, key, bytes.NewReader(data), int64(len(data)),
		miniogo.PutObjectOptions{
			ContentType: contentType,
			UserMetadata: map[string]string{
				"x-amz-acl": "public-read",
			},
		})
	if err != nil {
		return "", fmt.Errorf("put object %s: %w", key, err)
	}

	s.logger.Debug("object uploaded",
		logger.String("key", key),
		logger.Int("size", len(data)),
		logger.String("content_type", contentType))

	return s.PublicURL(key), nil
}

// PublicURL is the externally reachable URL of key.
func (s *MinioStore) PublicURL(key string) string {
	return s.baseURL + "/" + escapeKey(key)
}

// HealthCheck verifies that the bucket exists.
func (s *MinioStore) HealthCheck(ctx context.Context) error {
	ok, err := s.client.BucketExists(ctx, s.cfg.Bucket)
	if err != nil {
		return fmt.Errorf("bucket check: %w", err)
	}
	if !ok {
		return fmt.Errorf("bucket %s does not exist", s.cfg.Bucket)
	}
	return nil
}

func publicBaseURL(cfg MinioConfig) string {
	if cfg.PublicBaseURL != "" {
		return strings.TrimRight(cfg.PublicBaseURL, "/") + "/" + cfg.Bucket
	}
	scheme := "http"
	if cfg.UseSSL {
		scheme = "https"
	}
	return scheme + "://" + cfg.Endpoint + "/" + cfg.Bucket
}

func escapeKey(key string) string {
	parts := strings.Split(key, "/")
	for i, p := range parts {
		parts[i] = url.PathEscape(p)
	}
	return strings.Join(parts, "/")
}
