package handlers

import (
	"errors"
	"mime/multipart"
	"net/http"

	"video_ingest/internal/services"
	"video_ingest/internal/validator"
	"video_ingest/pkg/apperrors"

	"github.com/gin-gonic/gin"
)

const defaultMaxMemory = 32 << 20

type UploadHandler struct {
	*BaseHandler
	uploadService services.UploadService
	maxMemory     int64
}

// NewUploadHandler создает обработчик загрузки.
// maxMemory - сколько байт multipart-формы держать в памяти, остальное уходит во временные файлы.
func NewUploadHandler(base *BaseHandler, uploadService services.UploadService, maxMemory int64) *UploadHandler {
	if maxMemory <= 0 {
		maxMemory = defaultMaxMemory
	}
	return &UploadHandler{
		BaseHandler:   base,
		uploadService: uploadService,
		maxMemory:     maxMemory,
	}
}

func (h *UploadHandler) RegisterRoutes(r *gin.RouterGroup) {
	r.POST("/upload", h.Upload)
}

// Upload принимает title, creator, description, обложку и видео
func (h *UploadHandler) Upload(c *gin.Context) {
	form, err := h.parseForm(c)
	if err != nil {
		h.HandleServiceError(c, apperrors.NewBadRequestError("Invalid multipart form: "+err.Error()))
		return
	}

	req, err := h.validator.ValidateUpload(form)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	response, err := h.uploadService.Upload(c.Request.Context(), h.GetDB(c), req)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, response)
}

// parseForm читает тело запроса. Не-multipart тело считается формой без файлов,
// чтобы валидация сообщила, чего не хватает.
// Текстовые поля с именем cover или video файлами не считаются.
func (h *UploadHandler) parseForm(c *gin.Context) (*multipart.Form, error) {
	watcher := watchFileParts(c.Request)
	err := c.Request.ParseMultipartForm(h.maxMemory)
	fileParts := watcher.wait()

	var form *multipart.Form
	switch {
	case err == nil:
		form = c.Request.MultipartForm
	case errors.Is(err, http.ErrNotMultipart), errors.Is(err, http.ErrMissingBoundary):
		form = &multipart.Form{Value: c.Request.PostForm}
	default:
		return nil, err
	}
	if form.Value != nil {
		dropTextFields(form, fileParts, validator.FieldCover, validator.FieldVideo)
	}
	return form, nil
}
