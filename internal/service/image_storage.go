package service

import (
	"context"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ImageStorage is the object store holding event images
type ImageStorage interface {
	GeneratePresignedURL(ctx context.Context, eventID uuid.UUID, fileName, contentType string, fileSize int64) (string, string, error)
	FileExists(ctx context.Context, key string) (bool, error)
	DeleteFile(ctx context.Context, key string) error
	GetFileURL(key string) string
	KeyFromURL(fileURL string) string
}

// deleteEventImage removes an image that is no longer referenced.
// Failures are logged only; the event change has already been committed.
func deleteEventImage(ctx context.Context, storage ImageStorage, logger *zap.Logger, imageURL string) {
	if storage == nil || imageURL == "" {
		return
	}
	key := storage.KeyFromURL(imageURL)
	if key == "" {
		logger.Warn("Event image is not stored in the configured bucket", zap.String("image_url", imageURL))
		return
	}
	deleteImageKey(ctx, storage, logger, key)
}

// deleteImageKey removes an object by key, logging failures
func deleteImageKey(ctx context.Context, storage ImageStorage, logger *zap.Logger, key string) {
	if storage == nil || key == "" {
		return
	}
	if err := storage.DeleteFile(ctx, key); err != nil {
		logger.Warn("Failed to delete event image",
			zap.String("file_key", key),
			zap.Error(err))
	}
}
