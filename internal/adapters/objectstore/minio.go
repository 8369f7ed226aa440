// Package objectstore adapts MinIO (or any S3-compatible store) to the
// ports.FileStore interface used for course materials and assignment files.
package objectstore

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"strings"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"github.com/pulse-camp/portal-api/internal/ports"
)

// objectAPI is the slice of the MinIO client the store needs; tests inject a
// memory implementation instead of a live server.
type objectAPI interface {
	BucketExists(ctx context.Context, bucket string) (bool, error)
	MakeBucket(ctx context.Context, bucket string, opts minio.MakeBucketOptions) error
	PutObject(ctx context.Context, bucket, object string, r io.Reader, size int64, opts minio.PutObjectOptions) (minio.UploadInfo, error)
	RemoveObject(ctx context.Context, bucket, object string, opts minio.RemoveObjectOptions) error
}

type clientWrapper struct{ c *minio.Client }

func (w clientWrapper) BucketExists(ctx context.Context, bucket string) (bool, error) {
	return w.c.BucketExists(ctx, bucket)
}

func (w clientWrapper) MakeBucket(ctx context.Context, bucket string, opts minio.MakeBucketOptions) error {
	return w.c.MakeBucket(ctx, bucket, opts)
}

func (w clientWrapper) PutObject(ctx context.Context, bucket, object string, r io.Reader, size int64, opts minio.PutObjectOptions) (minio.UploadInfo, error) {
	return w.c.PutObject(ctx, bucket, object, r, size, opts)
}

func (w clientWrapper) RemoveObject(ctx context.Context, bucket, object string, opts minio.RemoveObjectOptions) error {
	return w.c.RemoveObject(ctx, bucket, object, opts)
}

// Config holds the connection parameters for the object store.
type Config struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
	UseSSL    bool
	// PublicBaseURL overrides the URL prefix handed to browsers, for setups
	// where the store sits behind a CDN or reverse proxy. Defaults to the
	// endpoint itself.
	PublicBaseURL string
}

// Store implements ports.FileStore on a MinIO bucket.
type Store struct {
	api     objectAPI
	bucket  string
	baseURL string
}

var _ ports.FileStore = (*Store)(nil)

// New connects to the object store and ensures the bucket exists.
func New(ctx context.Context, cfg Config) (*Store, error) {
	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("connecting to object store: %w", err)
	}
	base := cfg.PublicBaseURL
	if base == "" {
		scheme := "http"
		if cfg.UseSSL {
			scheme = "https"
		}
		base = scheme + "://" + cfg.Endpoint
	}
	return newWithAPI(ctx, clientWrapper{c: client}, cfg.Bucket, base)
}

func newWithAPI(ctx context.Context, api objectAPI, bucket, baseURL string) (*Store, error) {
	s := &Store{api: api, bucket: bucket, baseURL: strings.TrimRight(baseURL, "/")}
	exists, err := api.BucketExists(ctx, bucket)
	if err != nil {
		return nil, fmt.Errorf("checking bucket %q: %w", bucket, err)
	}
	if !exists {
		if err := api.MakeBucket(ctx, bucket, minio.MakeBucketOptions{}); err != nil {
			return nil, fmt.Errorf("creating bucket %q: %w", bucket, err)
		}
	}
	return s, nil
}

// Upload stores the object and returns its public URL.
func (s *Store) Upload(ctx context.Context, path, contentType string, r io.Reader, size int64) (string, error) {
	_, err := s.api.PutObject(ctx, s.bucket, path, r, size, minio.PutObjectOptions{
		ContentType: contentType,
	})
	if err != nil {
		return "", fmt.Errorf("uploading %q: %w", path, err)
	}
	return s.PublicURL(path), nil
}

// PublicURL returns the browser-facing URL for a stored object.
func (s *Store) PublicURL(path string) string {
	escaped := url.PathEscape(strings.TrimLeft(path, "/"))
	// PathEscape encodes the separators too; put them back.
	escaped = strings.ReplaceAll(escaped, "%2F", "/")
	return fmt.Sprintf("%s/%s/%s", s.baseURL, s.bucket, escaped)
}

// Remove deletes the object.
func (s *Store) Remove(ctx context.Context, path string) error {
	if err := s.api.RemoveObject(ctx, s.bucket, path, minio.RemoveObjectOptions{}); err != nil {
		return fmt.Errorf("removing %q: %w", path, err)
	}
	return nil
}
