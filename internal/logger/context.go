package logger

import (
	"context"
	"log/slog"
)

type contextKey string

const (
	requestIDKey contextKey = "request_id"
	uploadIDKey  contextKey = "upload_id"
)

// WithRequestID сохраняет request ID в контексте
func WithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, requestIDKey, requestID)
}

// WithUploadID сохраняет ID загрузки в контексте,
// чтобы связать все логи одной загрузки
func WithUploadID(ctx context.Context, uploadID string) context.Context {
	return context.WithValue(ctx, uploadIDKey, uploadID)
}

func GetRequestID(ctx context.Context) string {
	if requestID, ok := ctx.Value(requestIDKey).(string); ok {
		return requestID
	}
	return ""
}

func GetUploadID(ctx context.Context) string {
	if uploadID, ok := ctx.Value(uploadIDKey).(string); ok {
		return uploadID
	}
	return ""
}

// FromContext возвращает логгер с request_id и upload_id из контекста
func FromContext(ctx context.Context) *slog.Logger {
	logger := GetLogger()

	var fields []any
	if requestID := GetRequestID(ctx); requestID != "" {
		fields = append(fields, "request_id", requestID)
	}
	if uploadID := GetUploadID(ctx); uploadID != "" {
		fields = append(fields, "upload_id", uploadID)
	}

	if len(fields) > 0 {
		logger = logger.With(fields...)
	}
	return logger
}

func CtxDebug(ctx context.Context, msg string, args ...any) {
	logAt(ctx, FromContext(ctx), slog.LevelDebug, msg, args...)
}

func CtxInfo(ctx context.Context, msg string, args ...any) {
	logAt(ctx, FromContext(ctx), slog.LevelInfo, msg, args...)
}

func CtxWarn(ctx context.Context, msg string, args ...any) {
	logAt(ctx, FromContext(ctx), slog.LevelWarn, msg, args...)
}

func CtxError(ctx context.Context, msg string, args ...any) {
	logAt(ctx, FromContext(ctx), slog.LevelError, msg, args...)
}

// CtxWithError логирует ошибку вместе с контекстом
func CtxWithError(ctx context.Context, msg string, err error, args ...any) {
	fields := append([]any{"error", err.Error()}, args...)
	logAt(ctx, FromContext(ctx), slog.LevelError, msg, fields...)
}
