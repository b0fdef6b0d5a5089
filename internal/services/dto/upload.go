package dto

import (
	"io"
	"mime/multipart"
	"time"
)

// UploadRequest is a validated upload payload. It lives for one request only.
type UploadRequest struct {
	Title       string  `form:"title" json:"title" validate:"required"`
	Creator     string  `form:"creator" json:"creator" validate:"required"`
	Description *string `form:"description" json:"description,omitempty"`

	Cover *FilePayload `json:"-"`
	Video *FilePayload `json:"-"`
}

// FilePayload is one uploaded file as declared by the client.
type FilePayload struct {
	Filename    string
	ContentType string
	Size        int64
	open        func() (io.ReadCloser, error)
}

// NewFilePayload wraps an arbitrary byte source.
func NewFilePayload(filename, contentType string, size int64, open func() (io.ReadCloser, error)) *FilePayload {
	return &FilePayload{Filename: filename, ContentType: contentType, Size: size, open: open}
}

// FilePayloadFromHeader wraps a multipart file part. The declared content type is copied verbatim.
func FilePayloadFromHeader(fh *multipart.FileHeader) *FilePayload {
	return &FilePayload{
		Filename:    fh.Filename,
		ContentType: fh.Header.Get("Content-Type"),
		Size:        fh.Size,
		open: func() (io.ReadCloser, error) {
			return fh.Open()
		},
	}
}

// Open returns a fresh reader over the payload bytes.
func (p *FilePayload) Open() (io.ReadCloser, error) {
	return p.open()
}

// UploadResponse is returned with 201 Created.
type UploadResponse struct {
	Message string `json:"message"`
	FileID  string `json:"file_id"`
}

// VideoResponse is the read-side view of a stored record.
type VideoResponse struct {
	ID            string    `json:"id"`
	Title         string    `json:"title"`
	Creator       string    `json:"creator"`
	Description   *string   `json:"description"`
	CoverFilename string    `json:"cover_filename"`
	VideoFilename string    `json:"video_filename"`
	CoverMimeType string    `json:"cover_mime_type"`
	VideoMimeType string    `json:"video_mime_type"`
	UploadDate    time.Time `json:"upload_date"`
}
