package models

import (
	"time"
)

// VideoRecord - запись метаданных, создается один раз на успешную загрузку.
// CoverFilename и VideoFilename - ключи объектов в бакетах обложек и видео.
type VideoRecord struct {
	ID            string    `gorm:"type:varchar(36);primaryKey" json:"id"`
	Title         string    `gorm:"size:255;not null" json:"title"`
	Creator       string    `gorm:"size:255;not null" json:"creator"`
	Description   *string   `gorm:"type:text" json:"description"`
	CoverFilename string    `gorm:"size:255;not null" json:"cover_filename"`
	VideoFilename string    `gorm:"size:255;not null" json:"video_filename"`
	CoverMimeType string    `gorm:"size:255" json:"cover_mime_type"`
	VideoMimeType string    `gorm:"size:255" json:"video_mime_type"`
	UploadDate    time.Time `gorm:"not null" json:"upload_date"`
}

func (VideoRecord) TableName() string {
	return "video_metadata"
}
