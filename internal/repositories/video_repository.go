package repositories

import (
	"errors"
	"fmt"

	"video_ingest/internal/models"

	"gorm.io/gorm"
)

var (
	// ErrVideoNotFound - записи с таким ID нет
	ErrVideoNotFound = errors.New("video not found")
	// ErrDuplicateVideoID - нарушение первичного ключа при вставке
	ErrDuplicateVideoID = errors.New("video id already exists")
)

// StoredFilenames - часть записи со ссылками на объекты в хранилище
type StoredFilenames struct {
	ID            string
	CoverFilename string
	VideoFilename string
}

// VideoRepository хранит метаданные видео. db несет контекст запроса.
type VideoRepository interface {
	// Создание записи (записи не изменяются)
	Create(db *gorm.DB, record *models.VideoRecord) error

	FindByID(db *gorm.DB, id string) (*models.VideoRecord, error)

	// Ключи объектов, на которые ссылаются все записи
	ListFilenames(db *gorm.DB) ([]StoredFilenames, error)
}

type VideoRepositoryImpl struct{}

func NewVideoRepository() VideoRepository {
	return &VideoRepositoryImpl{}
}

func (r *VideoRepositoryImpl) Create(db *gorm.DB, record *models.VideoRecord) error {
	if err := db.Create(record).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return fmt.Errorf("%w: %s", ErrDuplicateVideoID, record.ID)
		}
		return err
	}
	return nil
}

func (r *VideoRepositoryImpl) FindByID(db *gorm.DB, id string) (*models.VideoRecord, error) {
	var record models.VideoRecord
	if err := db.Where("id = ?", id).First(&record).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrVideoNotFound
		}
		return nil, err
	}
	return &record, nil
}

func (r *VideoRepositoryImpl) ListFilenames(db *gorm.DB) ([]StoredFilenames, error) {
	var rows []StoredFilenames
	err := db.Model(&models.VideoRecord{}).
		Select("id", "cover_filename", "video_filename").
		Order("upload_date").
		Scan(&rows).Error
	return rows, err
}
