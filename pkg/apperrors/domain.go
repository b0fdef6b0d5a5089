package apperrors

import "net/http"

// ============================================
// ОШИБКИ ЗАГРУЗКИ ВИДЕО
// ============================================
// Сообщение каждой ошибки уходит клиенту в поле "error".

// ValidationFailed - неполный запрос на загрузку (400).
// Возвращается до любых записей в хранилища.
func ValidationFailed(reason string) *AppError {
	return New(CodeValidationFailed, "validation", reason, http.StatusBadRequest)
}

// NamingFailed - у имени файла нет расширения (400)
func NamingFailed(reason string) *AppError {
	return New(CodeInvalidFilename, "naming", reason, http.StatusBadRequest)
}

// StoreFailed - ошибка записи в объектное хранилище (500).
// Сообщение содержит текст ошибки бэкенда.
func StoreFailed(err error) *AppError {
	return Wrap(err, CodeStorageError, "storage", err.Error(), http.StatusInternalServerError)
}

// PersistenceFailed - ошибка записи метаданных (500).
// Уже записанные файлы остаются в хранилище.
func PersistenceFailed(err error) *AppError {
	return Wrap(err, CodeDatabaseError, "database", err.Error(), http.StatusInternalServerError)
}

// ErrVideoNotFound - запись с таким ID не найдена
var ErrVideoNotFound = New(
	CodeNotFound,
	"video",
	"Video not found",
	http.StatusNotFound,
)
