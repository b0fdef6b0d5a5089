package handlers

import (
	"net/http"

	"video_ingest/internal/services"

	"github.com/gin-gonic/gin"
)

type VideoHandler struct {
	*BaseHandler
	videoService services.VideoService
}

func NewVideoHandler(base *BaseHandler, videoService services.VideoService) *VideoHandler {
	return &VideoHandler{
		BaseHandler:  base,
		videoService: videoService,
	}
}

func (h *VideoHandler) RegisterRoutes(r *gin.RouterGroup) {
	r.GET("/videos/:id", h.GetVideo)
}

func (h *VideoHandler) GetVideo(c *gin.Context) {
	video, err := h.videoService.GetVideo(c.Request.Context(), h.GetDB(c), c.Param("id"))
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, video)
}
