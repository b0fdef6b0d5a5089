package routes

import (
	"net/http"

	"video_ingest/internal/handlers"
	"video_ingest/internal/logger"

	"github.com/gin-gonic/gin"
)

// RegisterRoutes регистрирует все HTTP маршруты.
// API загрузки висит на корне, клиенты шлют POST /upload.
func RegisterRoutes(
	ginRouter *gin.Engine,
	appHandlers *handlers.AppHandlers,
	metricsHandler http.Handler,
) {
	root := ginRouter.Group("/")
	{
		appHandlers.HealthHandler.RegisterRoutes(root)
		appHandlers.UploadHandler.RegisterRoutes(root)
		appHandlers.VideoHandler.RegisterRoutes(root)
	}

	if metricsHandler != nil {
		ginRouter.GET("/metrics", gin.WrapH(metricsHandler))
		logger.Debug("Metrics route /metrics registered")
	}
}
