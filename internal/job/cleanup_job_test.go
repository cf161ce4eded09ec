package job

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"campus-events-api/internal/domain"
)

// MockEventRepository is a mock implementation of ExpiredUploadFinder
type MockEventRepository struct {
	mock.Mock
}

func (m *MockEventRepository) FindWithExpiredImageUploads(ctx context.Context, now time.Time) ([]*domain.Event, error) {
	args := m.Called(ctx, now)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Event), args.Error(1)
}

// MockEventService is a mock implementation of ImageUploadDiscarder
type MockEventService struct {
	mock.Mock
}

func (m *MockEventService) DiscardExpiredImageUpload(ctx context.Context, eventID uuid.UUID) (string, error) {
	args := m.Called(ctx, eventID)
	return args.String(0), args.Error(1)
}

// MockS3Client is a mock implementation of FileDeleter
type MockS3Client struct {
	mock.Mock
}

func (m *MockS3Client) DeleteFile(ctx context.Context, key string) error {
	args := m.Called(ctx, key)
	return args.Error(0)
}

var jobNow = time.Date(2026, 4, 1, 12, 0, 0, 0, time.UTC)

func newTestJob() (*CleanupJob, *MockEventRepository, *MockEventService, *MockS3Client) {
	mockRepo := new(MockEventRepository)
	mockService := new(MockEventService)
	mockS3 := new(MockS3Client)

	job := NewCleanupJob(mockRepo, mockService, mockS3, "", zap.NewNop())
	job.now = func() time.Time { return jobNow }
	return job, mockRepo, mockService, mockS3
}

func expiredEvent(key string) *domain.Event {
	expiredAt := jobNow.Add(-2 * time.Hour)
	return &domain.Event{
		BaseModel:             domain.BaseModel{ID: uuid.New()},
		Title:                 "Poster Session",
		PendingImageKey:       key,
		PendingImageExpiresAt: &expiredAt,
	}
}

func TestCleanupJob_Run_ExpiredUploadsDeleted(t *testing.T) {
	job, mockRepo, mockService, mockS3 := newTestJob()

	event1 := expiredEvent("events/e1/2026/03/file1.png")
	event2 := expiredEvent("events/e2/2026/03/file2.jpg")

	mockRepo.On("FindWithExpiredImageUploads", mock.Anything, jobNow).Return([]*domain.Event{event1, event2}, nil)
	mockService.On("DiscardExpiredImageUpload", mock.Anything, event1.ID).Return(event1.PendingImageKey, nil)
	mockService.On("DiscardExpiredImageUpload", mock.Anything, event2.ID).Return(event2.PendingImageKey, nil)
	mockS3.On("DeleteFile", mock.Anything, "events/e1/2026/03/file1.png").Return(nil)
	mockS3.On("DeleteFile", mock.Anything, "events/e2/2026/03/file2.jpg").Return(nil)

	job.Run()

	mockRepo.AssertExpectations(t)
	mockService.AssertExpectations(t)
	mockS3.AssertExpectations(t)
}

func TestCleanupJob_Run_NoExpiredUploads(t *testing.T) {
	job, mockRepo, mockService, mockS3 := newTestJob()

	mockRepo.On("FindWithExpiredImageUploads", mock.Anything, jobNow).Return([]*domain.Event{}, nil)

	job.Run()

	mockRepo.AssertExpectations(t)
	mockService.AssertNotCalled(t, "DiscardExpiredImageUpload")
	mockS3.AssertNotCalled(t, "DeleteFile")
}

func TestCleanupJob_Run_ConfirmedSinceScanIsKept(t *testing.T) {
	job, mockRepo, mockService, mockS3 := newTestJob()

	event := expiredEvent("events/e1/2026/03/confirmed.png")

	mockRepo.On("FindWithExpiredImageUploads", mock.Anything, jobNow).Return([]*domain.Event{event}, nil)
	mockService.On("DiscardExpiredImageUpload", mock.Anything, event.ID).Return("", nil)

	job.Run()

	mockService.AssertExpectations(t)
	mockS3.AssertNotCalled(t, "DeleteFile")
}

func TestCleanupJob_Run_DiscardFailureSkipsDelete(t *testing.T) {
	job, mockRepo, mockService, mockS3 := newTestJob()

	event1 := expiredEvent("events/e1/2026/03/locked.png")
	event2 := expiredEvent("events/e2/2026/03/file2.png")

	mockRepo.On("FindWithExpiredImageUploads", mock.Anything, jobNow).Return([]*domain.Event{event1, event2}, nil)
	mockService.On("DiscardExpiredImageUpload", mock.Anything, event1.ID).Return("", errors.New("lock timeout"))
	mockService.On("DiscardExpiredImageUpload", mock.Anything, event2.ID).Return(event2.PendingImageKey, nil)
	mockS3.On("DeleteFile", mock.Anything, "events/e2/2026/03/file2.png").Return(nil)

	job.Run()

	mockService.AssertExpectations(t)
	mockS3.AssertExpectations(t)
	mockS3.AssertNotCalled(t, "DeleteFile", mock.Anything, "events/e1/2026/03/locked.png")
}

func TestCleanupJob_Run_S3DeleteFailure(t *testing.T) {
	job, mockRepo, mockService, mockS3 := newTestJob()

	event1 := expiredEvent("events/e1/2026/03/file1.png")
	event2 := expiredEvent("events/e2/2026/03/file2.png")

	// the first delete fails, the second still runs
	mockRepo.On("FindWithExpiredImageUploads", mock.Anything, jobNow).Return([]*domain.Event{event1, event2}, nil)
	mockService.On("DiscardExpiredImageUpload", mock.Anything, event1.ID).Return(event1.PendingImageKey, nil)
	mockService.On("DiscardExpiredImageUpload", mock.Anything, event2.ID).Return(event2.PendingImageKey, nil)
	mockS3.On("DeleteFile", mock.Anything, "events/e1/2026/03/file1.png").Return(errors.New("S3 error"))
	mockS3.On("DeleteFile", mock.Anything, "events/e2/2026/03/file2.png").Return(nil)

	job.Run()

	mockService.AssertExpectations(t)
	mockS3.AssertExpectations(t)
}

func TestCleanupJob_Run_RepositoryFindError(t *testing.T) {
	job, mockRepo, mockService, mockS3 := newTestJob()

	mockRepo.On("FindWithExpiredImageUploads", mock.Anything, jobNow).Return(nil, errors.New("database error"))

	job.Run()

	mockRepo.AssertExpectations(t)
	mockService.AssertNotCalled(t, "DiscardExpiredImageUpload")
	mockS3.AssertNotCalled(t, "DeleteFile")
}

func TestCleanupJob_StartRejectsInvalidSchedule(t *testing.T) {
	job := NewCleanupJob(new(MockEventRepository), new(MockEventService), new(MockS3Client), "not a schedule", zap.NewNop())

	require.Error(t, job.Start())
}

func TestCleanupJob_StartAndStop(t *testing.T) {
	job := NewCleanupJob(new(MockEventRepository), new(MockEventService), new(MockS3Client), "@every 1h", zap.NewNop())

	require.NoError(t, job.Start())
	job.Stop()
	assert.Equal(t, "@every 1h", job.schedule)
}
