// Package storage issues presigned URLs for course media (course card
// images, chapter roadmap images) held in S3-compatible object storage.
// Browsers upload directly against the presigned URL; the API server never
// proxies file bytes.
package storage

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"github.com/rs/zerolog"
)

const uploadURLTTL = 15 * time.Minute

// Options carry the S3 connection settings resolved from config.
type Options struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
	Region    string
	UseSSL    bool
}

// UploadTicket is handed to the admin panel: PUT the file to UploadURL,
// then store PublicURL in the course or chapter record.
type UploadTicket struct {
	UploadURL string    `json:"upload_url"`
	PublicURL string    `json:"public_url"`
	Key       string    `json:"key"`
	ExpiresAt time.Time `json:"expires_at"`
}

type Service struct {
	client *minio.Client
	opts   Options
	log    zerolog.Logger
}

// NewService creates the storage service and ensures the media bucket
// exists.
func NewService(opts Options, logger zerolog.Logger) (*Service, error) {
	client, err := minio.New(opts.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(opts.AccessKey, opts.SecretKey, ""),
		Secure: opts.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create S3 client: %w", err)
	}

	s := &Service{client: client, opts: opts, log: logger}
	if err := s.ensureBucket(context.Background()); err != nil {
		return nil, fmt.Errorf("failed to ensure bucket: %w", err)
	}

	return s, nil
}

func (s *Service) ensureBucket(ctx context.Context) error {
	exists, err := s.client.BucketExists(ctx, s.opts.Bucket)
	if err != nil {
		return err
	}
	if !exists {
		err = s.client.MakeBucket(ctx, s.opts.Bucket, minio.MakeBucketOptions{Region: s.opts.Region})
		if err != nil {
			return err
		}
		s.log.Info().Str("bucket", s.opts.Bucket).Msg("created media bucket")
	}
	return nil
}

// NewUploadTicket generates a presigned PUT URL for one media file. kind
// scopes the storage key ("course", "roadmap"); fileName only contributes
// its extension.
func (s *Service) NewUploadTicket(ctx context.Context, kind, fileName string) (*UploadTicket, error) {
	kind = sanitizeKind(kind)
	key := fmt.Sprintf("%s/%s%s", kind, uuid.New().String(), filepath.Ext(fileName))

	uploadURL, err := s.client.PresignedPutObject(ctx, s.opts.Bucket, key, uploadURLTTL)
	if err != nil {
		return nil, fmt.Errorf("failed to presign upload: %w", err)
	}

	scheme := "http"
	if s.opts.UseSSL {
		scheme = "https"
	}

	return &UploadTicket{
		UploadURL: uploadURL.String(),
		PublicURL: fmt.Sprintf("%s://%s/%s/%s", scheme, s.opts.Endpoint, s.opts.Bucket, key),
		Key:       key,
		ExpiresAt: time.Now().Add(uploadURLTTL),
	}, nil
}

// PresignedGet generates a time-limited download URL for a stored object.
func (s *Service) PresignedGet(ctx context.Context, key string, ttl time.Duration) (string, error) {
	u, err := s.client.PresignedGetObject(ctx, s.opts.Bucket, key, ttl, nil)
	if err != nil {
		return "", fmt.Errorf("failed to presign download: %w", err)
	}
	return u.String(), nil
}

func sanitizeKind(kind string) string {
	kind = strings.ToLower(strings.TrimSpace(kind))
	switch kind {
	case "course", "roadmap":
		return kind
	default:
		return "misc"
	}
}
