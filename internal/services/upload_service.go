package services

import (
	"bytes"
	"context"
	"fmt"

	"video_ingest/internal/logger"
	"video_ingest/internal/repositories"
	"video_ingest/internal/services/dto"
	"video_ingest/internal/storage"
	"video_ingest/pkg/apperrors"

	"gorm.io/gorm"
)

const UploadSuccessMessage = "File uploaded successfully"

// ============================================
// ЗАГРУЗКА ВИДЕО
// ============================================

// Buckets - бакеты для видео и обложек
type Buckets struct {
	Video string
	Cover string
}

type UploadService interface {
	// Загрузка: обложка, затем видео, затем запись метаданных.
	// При ошибке на любом шаге уже записанное не удаляется.
	Upload(ctx context.Context, db *gorm.DB, req *dto.UploadRequest) (*dto.UploadResponse, error)
}

type uploadService struct {
	videoRepo repositories.VideoRepository
	store     storage.ObjectStore
	namer     *Namer
	buckets   Buckets
}

func NewUploadService(
	videoRepo repositories.VideoRepository,
	store storage.ObjectStore,
	namer *Namer,
	buckets Buckets,
) UploadService {
	if namer == nil {
		namer = NewNamer()
	}
	return &uploadService{
		videoRepo: videoRepo,
		store:     store,
		namer:     namer,
		buckets:   buckets,
	}
}

func (s *uploadService) Upload(ctx context.Context, db *gorm.DB, req *dto.UploadRequest) (*dto.UploadResponse, error) {
	record, err := s.namer.Assign(req)
	if err != nil {
		return nil, err
	}
	ctx = logger.WithUploadID(ctx, record.ID)

	if err := s.storeFile(ctx, s.buckets.Cover, record.CoverFilename, req.Cover); err != nil {
		return nil, err
	}
	if err := s.storeFile(ctx, s.buckets.Video, record.VideoFilename, req.Video); err != nil {
		return nil, err
	}

	if err := s.videoRepo.Create(db, record); err != nil {
		logger.CtxWithError(ctx, "Failed to save video metadata", err,
			"cover_filename", record.CoverFilename,
			"video_filename", record.VideoFilename,
		)
		return nil, apperrors.PersistenceFailed(err)
	}
	logger.CtxInfo(ctx, "Stored video metadata", "title", record.Title, "creator", record.Creator)

	return &dto.UploadResponse{
		Message: UploadSuccessMessage,
		FileID:  record.ID,
	}, nil
}

// storeFile читает файл целиком в память и пишет его под ключом key
func (s *uploadService) storeFile(ctx context.Context, bucket, key string, file *dto.FilePayload) error {
	data, err := readAll(file)
	if err != nil {
		logger.CtxWithError(ctx, "Failed to read uploaded file", err, "filename", file.Filename)
		return apperrors.StoreFailed(err)
	}
	logger.CtxDebug(ctx, "Buffered uploaded file",
		"filename", file.Filename,
		"declared_size", file.Size,
		"read_bytes", len(data),
	)

	length := int64(len(data))
	partSize := storage.PartSizeFor(length)

	if err := s.store.PutObject(ctx, bucket, key, bytes.NewReader(data), length, partSize, file.ContentType); err != nil {
		logger.CtxWithError(ctx, "Failed to store file", err, "bucket", bucket, "key", key)
		return apperrors.StoreFailed(err)
	}

	logger.CtxInfo(ctx, fmt.Sprintf("Stored file %s into bucket %s", key, bucket),
		"size_bytes", length,
		"part_size", partSize,
		"content_type", file.ContentType,
	)
	return nil
}

func readAll(file *dto.FilePayload) ([]byte, error) {
	src, err := file.Open()
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", file.Filename, err)
	}
	defer src.Close()

	var buf bytes.Buffer
	if file.Size > 0 {
		buf.Grow(int(file.Size))
	}
	if _, err := buf.ReadFrom(src); err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", file.Filename, err)
	}
	return buf.Bytes(), nil
}
