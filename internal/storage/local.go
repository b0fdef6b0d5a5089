package storage

import (
	"context"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// LocalStorage implements ObjectStore on the local filesystem.
// Each bucket is a directory under basePath.
type LocalStorage struct {
	basePath string
}

// NewLocalStorage creates a new local storage instance
func NewLocalStorage(cfg Config) (*LocalStorage, error) {
	if cfg.BasePath == "" {
		cfg.BasePath = "./uploads"
	}

	if err := os.MkdirAll(cfg.BasePath, 0755); err != nil {
		return nil, fmt.Errorf("failed to create storage directory: %w", err)
	}

	return &LocalStorage{basePath: cfg.BasePath}, nil
}

func (s *LocalStorage) bucketPath(bucket string) (string, error) {
	if bucket == "" || strings.ContainsAny(bucket, `/\`) || bucket == "." || bucket == ".." {
		return "", fmt.Errorf("invalid bucket name %q", bucket)
	}
	return filepath.Join(s.basePath, bucket), nil
}

func (s *LocalStorage) objectPath(bucket, key string) (string, error) {
	dir, err := s.bucketPath(bucket)
	if err != nil {
		return "", err
	}
	clean := filepath.Clean("/" + key)
	if clean == "/" {
		return "", fmt.Errorf("invalid object key %q", key)
	}
	return filepath.Join(dir, clean), nil
}

func (s *LocalStorage) EnsureBucket(ctx context.Context, bucket string) error {
	dir, err := s.bucketPath(bucket)
	if err != nil {
		return storeErr("create bucket", bucket, "", err)
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return storeErr("create bucket", bucket, "", err)
	}
	return nil
}

// PutObject writes the object to a temp file and renames it into place,
// so a failed write never leaves a partial object behind.
// partSize has no meaning for a single local write.
func (s *LocalStorage) PutObject(ctx context.Context, bucket, key string, body io.Reader, length, partSize int64, contentType string) error {
	fullPath, err := s.objectPath(bucket, key)
	if err != nil {
		return storeErr("put object", bucket, key, err)
	}

	dir, _ := s.bucketPath(bucket)
	if _, err := os.Stat(dir); err != nil {
		return storeErr("put object", bucket, key, fmt.Errorf("bucket does not exist"))
	}

	if err := os.MkdirAll(filepath.Dir(fullPath), 0755); err != nil {
		return storeErr("put object", bucket, key, err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(fullPath), ".upload-*")
	if err != nil {
		return storeErr("put object", bucket, key, err)
	}
	defer os.Remove(tmp.Name())

	written, err := io.Copy(tmp, body)
	if closeErr := tmp.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		return storeErr("put object", bucket, key, err)
	}
	if length >= 0 && written != length {
		return storeErr("put object", bucket, key, fmt.Errorf("short write: got %d bytes, want %d", written, length))
	}
	if err := ctx.Err(); err != nil {
		return storeErr("put object", bucket, key, err)
	}

	if err := os.Rename(tmp.Name(), fullPath); err != nil {
		return storeErr("put object", bucket, key, err)
	}
	return nil
}

func (s *LocalStorage) Exists(ctx context.Context, bucket, key string) (bool, error) {
	fullPath, err := s.objectPath(bucket, key)
	if err != nil {
		return false, storeErr("head object", bucket, key, err)
	}

	_, err = os.Stat(fullPath)
	if err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, storeErr("head object", bucket, key, err)
	}
	return true, nil
}

func (s *LocalStorage) ListKeys(ctx context.Context, bucket string) ([]string, error) {
	dir, err := s.bucketPath(bucket)
	if err != nil {
		return nil, storeErr("list objects", bucket, "", err)
	}

	var keys []string
	err = filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || strings.HasPrefix(d.Name(), ".upload-") {
			return nil
		}
		rel, err := filepath.Rel(dir, path)
		if err != nil {
			return err
		}
		keys = append(keys, filepath.ToSlash(rel))
		return nil
	})
	if err != nil {
		return nil, storeErr("list objects", bucket, "", err)
	}
	sort.Strings(keys)
	return keys, nil
}
