package services

import (
	"context"
	"errors"
	"io"
	"strings"
	"sync"

	"video_ingest/internal/models"
	"video_ingest/internal/repositories"
	"video_ingest/internal/services/dto"

	"gorm.io/gorm"
)

type putCall struct {
	Bucket      string
	Key         string
	Data        []byte
	Length      int64
	PartSize    int64
	ContentType string
}

type fakeStore struct {
	mu      sync.Mutex
	puts    []putCall
	failFor map[string]error // bucket -> error
	ensured []string
}

func newFakeStore() *fakeStore {
	return &fakeStore{failFor: map[string]error{}}
}

func (f *fakeStore) EnsureBucket(_ context.Context, bucket string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.ensured = append(f.ensured, bucket)
	return nil
}

func (f *fakeStore) PutObject(_ context.Context, bucket, key string, body io.Reader, length, partSize int64, contentType string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.failFor[bucket]; err != nil {
		return err
	}
	data, err := io.ReadAll(body)
	if err != nil {
		return err
	}
	f.puts = append(f.puts, putCall{bucket, key, data, length, partSize, contentType})
	return nil
}

func (f *fakeStore) Exists(_ context.Context, bucket, key string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, p := range f.puts {
		if p.Bucket == bucket && p.Key == key {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeStore) ListKeys(_ context.Context, bucket string) ([]string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var keys []string
	for _, p := range f.puts {
		if p.Bucket == bucket {
			keys = append(keys, p.Key)
		}
	}
	return keys, nil
}

type fakeRepo struct {
	mu      sync.Mutex
	records map[string]*models.VideoRecord
	err     error
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{records: map[string]*models.VideoRecord{}}
}

func (r *fakeRepo) Create(_ *gorm.DB, record *models.VideoRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return r.err
	}
	if _, ok := r.records[record.ID]; ok {
		return repositories.ErrDuplicateVideoID
	}
	r.records[record.ID] = record
	return nil
}

func (r *fakeRepo) FindByID(_ *gorm.DB, id string) (*models.VideoRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return nil, r.err
	}
	rec, ok := r.records[id]
	if !ok {
		return nil, repositories.ErrVideoNotFound
	}
	return rec, nil
}

func (r *fakeRepo) ListFilenames(_ *gorm.DB) ([]repositories.StoredFilenames, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []repositories.StoredFilenames
	for _, rec := range r.records {
		out = append(out, repositories.StoredFilenames{ID: rec.ID, CoverFilename: rec.CoverFilename, VideoFilename: rec.VideoFilename})
	}
	return out, nil
}

func payload(filename, contentType, content string) *dto.FilePayload {
	return dto.NewFilePayload(filename, contentType, int64(len(content)), func() (io.ReadCloser, error) {
		return io.NopCloser(strings.NewReader(content)), nil
	})
}

func failingPayload(filename string) *dto.FilePayload {
	return dto.NewFilePayload(filename, "", 0, func() (io.ReadCloser, error) {
		return nil, errors.New("temp file vanished")
	})
}

func uploadRequest() *dto.UploadRequest {
	return &dto.UploadRequest{
		Title:   "Holiday",
		Creator: "Alice",
		Cover:   payload("My Cover.PNG", "image/png", "cover-bytes"),
		Video:   payload("clip.MP4", "video/mp4", "video-bytes"),
	}
}
