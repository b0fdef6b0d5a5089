package services

import (
	"strings"
	"time"

	"video_ingest/internal/models"
	"video_ingest/internal/services/dto"
	"video_ingest/pkg/apperrors"

	"github.com/google/uuid"
)

const (
	ReasonCoverNoExtension = "Cover filename has no extension"
	ReasonVideoNoExtension = "Video filename has no extension"
)

// Namer выдает ID записи и имена файлов для одной загрузки
type Namer struct {
	newID func() string
	now   func() time.Time
}

func NewNamer() *Namer {
	return &Namer{
		newID: uuid.NewString,
		now:   time.Now,
	}
}

// Assign собирает запись метаданных для req.
// Оба файла хранятся как "{id}.{ext}", где ext - расширение исходного имени в нижнем регистре.
// Content-Type копируется как есть.
func (n *Namer) Assign(req *dto.UploadRequest) (*models.VideoRecord, error) {
	coverExt, ok := FileExtension(req.Cover.Filename)
	if !ok {
		return nil, apperrors.NamingFailed(ReasonCoverNoExtension)
	}
	videoExt, ok := FileExtension(req.Video.Filename)
	if !ok {
		return nil, apperrors.NamingFailed(ReasonVideoNoExtension)
	}

	id := n.newID()
	return &models.VideoRecord{
		ID:            id,
		Title:         req.Title,
		Creator:       req.Creator,
		Description:   req.Description,
		CoverFilename: id + "." + coverExt,
		VideoFilename: id + "." + videoExt,
		CoverMimeType: req.Cover.ContentType,
		VideoMimeType: req.Video.ContentType,
		UploadDate:    n.now().UTC(),
	}, nil
}

// FileExtension возвращает текст после последней точки в нижнем регистре.
// ok == false, если точки нет или после нее пусто.
func FileExtension(filename string) (ext string, ok bool) {
	i := strings.LastIndexByte(filename, '.')
	if i < 0 || i == len(filename)-1 {
		return "", false
	}
	return strings.ToLower(filename[i+1:]), true
}
