package client

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/google/uuid"
)

// MockS3Client implements S3ClientInterface for testing without AWS credentials
type MockS3Client struct {
	Bucket string
	Region string

	// Optional function overrides for custom test behavior
	GeneratePresignedURLFunc func(ctx context.Context, eventID uuid.UUID, fileName, contentType string, fileSize int64) (string, string, error)
	FileExistsFunc           func(ctx context.Context, key string) (bool, error)
	DeleteFileFunc           func(ctx context.Context, key string) error

	// UploadedKeys simulates objects PUT by clients; FileExists consults it
	UploadedKeys map[string]bool
	DeletedKeys  []string
}

// NewMockS3Client creates a new mock S3 client for testing
func NewMockS3Client() *MockS3Client {
	return &MockS3Client{
		Bucket:       "test-bucket",
		Region:       "ap-northeast-2",
		UploadedKeys: make(map[string]bool),
	}
}

func (m *MockS3Client) GenerateFileKey(eventID uuid.UUID, fileExt string) string {
	return generateEventImageKey(eventID, fileExt, time.Now())
}

// GeneratePresignedURL returns a URL shaped like a real presigned PUT
func (m *MockS3Client) GeneratePresignedURL(ctx context.Context, eventID uuid.UUID, fileName, contentType string, fileSize int64) (string, string, error) {
	if m.GeneratePresignedURLFunc != nil {
		return m.GeneratePresignedURLFunc(ctx, eventID, fileName, contentType, fileSize)
	}

	fileKey := m.GenerateFileKey(eventID, filepath.Ext(fileName))
	presignedURL := fmt.Sprintf("%s?X-Amz-Algorithm=AWS4-HMAC-SHA256&X-Amz-Expires=300&X-Amz-Signature=mocksignature",
		m.GetFileURL(fileKey))

	return presignedURL, fileKey, nil
}

// Upload marks key as uploaded, as a client PUT to the presigned URL would
func (m *MockS3Client) Upload(key string) {
	if m.UploadedKeys == nil {
		m.UploadedKeys = make(map[string]bool)
	}
	m.UploadedKeys[key] = true
}

func (m *MockS3Client) FileExists(ctx context.Context, key string) (bool, error) {
	if m.FileExistsFunc != nil {
		return m.FileExistsFunc(ctx, key)
	}
	return m.UploadedKeys[key], nil
}

func (m *MockS3Client) DeleteFile(ctx context.Context, key string) error {
	m.DeletedKeys = append(m.DeletedKeys, key)
	delete(m.UploadedKeys, key)
	if m.DeleteFileFunc != nil {
		return m.DeleteFileFunc(ctx, key)
	}
	return nil
}

func (m *MockS3Client) GetFileURL(key string) string {
	return fmt.Sprintf("https://%s.s3.%s.amazonaws.com/%s", m.Bucket, m.Region, key)
}

func (m *MockS3Client) KeyFromURL(fileURL string) string {
	return keyFromURL(fileURL, m.GetFileURL(""))
}

// Ensure MockS3Client implements S3ClientInterface
var _ S3ClientInterface = (*MockS3Client)(nil)
