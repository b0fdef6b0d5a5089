package storage

import (
	"context"
	"fmt"
	"io"
)

const (
	MiB int64 = 1 << 20
	GiB int64 = 1 << 30
)

// ObjectStore is the binary side of an upload: buckets of opaque blobs keyed by filename.
type ObjectStore interface {
	// EnsureBucket creates the bucket if it is missing. Safe to call repeatedly.
	EnsureBucket(ctx context.Context, bucket string) error

	// PutObject writes exactly length bytes from body under bucket/key.
	// partSize is the chunk size the backend uses for multipart transfer.
	PutObject(ctx context.Context, bucket, key string, body io.Reader, length, partSize int64, contentType string) error

	// Exists reports whether bucket/key is present.
	Exists(ctx context.Context, bucket, key string) (bool, error)

	// ListKeys returns every key in the bucket.
	ListKeys(ctx context.Context, bucket string) ([]string, error)
}

// Config holds storage configuration
type Config struct {
	Type      string // s3, local
	BasePath  string // For local storage
	Endpoint  string // host:port or URL of the S3-compatible server
	Region    string
	AccessKey string
	SecretKey string
	UseSSL    bool
}

// NewStorage creates a new storage instance based on configuration
func NewStorage(cfg Config) (ObjectStore, error) {
	switch cfg.Type {
	case "local":
		return NewLocalStorage(cfg)
	case "s3", "minio", "":
		return NewS3Storage(cfg)
	default:
		return nil, fmt.Errorf("unsupported storage type: %s", cfg.Type)
	}
}

// PartSizeFor picks the multipart chunk size for a payload of the given length.
// Tier boundaries belong to the larger tier.
func PartSizeFor(length int64) int64 {
	switch {
	case length >= GiB:
		return 25 * MiB
	case length >= 100*MiB:
		return 10 * MiB
	default:
		return 5 * MiB
	}
}

// Error is returned by every ObjectStore operation that fails on the backend.
// Its message carries the backend detail.
type Error struct {
	Op     string
	Bucket string
	Key    string
	Err    error
}

func (e *Error) Error() string {
	if e.Key != "" {
		return fmt.Sprintf("%s %s/%s: %v", e.Op, e.Bucket, e.Key, e.Err)
	}
	return fmt.Sprintf("%s %s: %v", e.Op, e.Bucket, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

func storeErr(op, bucket, key string, err error) error {
	return &Error{Op: op, Bucket: bucket, Key: key, Err: err}
}
