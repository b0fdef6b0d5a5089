package handlers

// AppHandlers содержит все HTTP-обработчики приложения
type AppHandlers struct {
	HealthHandler *HealthHandler
	UploadHandler *UploadHandler
	VideoHandler  *VideoHandler
}
