package services

import (
	"context"
	"errors"

	"video_ingest/internal/repositories"
	"video_ingest/internal/services/dto"
	"video_ingest/pkg/apperrors"

	"gorm.io/gorm"
)

type VideoService interface {
	GetVideo(ctx context.Context, db *gorm.DB, id string) (*dto.VideoResponse, error)
}

type videoService struct {
	videoRepo repositories.VideoRepository
}

func NewVideoService(videoRepo repositories.VideoRepository) VideoService {
	return &videoService{videoRepo: videoRepo}
}

func (s *videoService) GetVideo(ctx context.Context, db *gorm.DB, id string) (*dto.VideoResponse, error) {
	record, err := s.videoRepo.FindByID(db, id)
	if err != nil {
		if errors.Is(err, repositories.ErrVideoNotFound) {
			return nil, apperrors.ErrVideoNotFound
		}
		return nil, apperrors.PersistenceFailed(err)
	}

	return &dto.VideoResponse{
		ID:            record.ID,
		Title:         record.Title,
		Creator:       record.Creator,
		Description:   record.Description,
		CoverFilename: record.CoverFilename,
		VideoFilename: record.VideoFilename,
		CoverMimeType: record.CoverMimeType,
		VideoMimeType: record.VideoMimeType,
		UploadDate:    record.UploadDate,
	}, nil
}
