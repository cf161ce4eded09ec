package job

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"campus-events-api/internal/domain"
)

const defaultCleanupSchedule = "@every 10m"

// ExpiredUploadFinder lists events holding an unconfirmed image upload past its window
type ExpiredUploadFinder interface {
	FindWithExpiredImageUploads(ctx context.Context, now time.Time) ([]*domain.Event, error)
}

// ImageUploadDiscarder clears an expired pending upload under the event lock
// and returns the key that is no longer referenced
type ImageUploadDiscarder interface {
	DiscardExpiredImageUpload(ctx context.Context, eventID uuid.UUID) (string, error)
}

// FileDeleter removes objects from the image bucket
type FileDeleter interface {
	DeleteFile(ctx context.Context, key string) error
}

// CleanupJob removes image uploads that were presigned but never confirmed
type CleanupJob struct {
	finder    ExpiredUploadFinder
	discarder ImageUploadDiscarder
	files     FileDeleter
	logger    *zap.Logger
	cron      *cron.Cron
	schedule  string
	now       func() time.Time
}

// NewCleanupJob creates a new CleanupJob instance
func NewCleanupJob(
	finder ExpiredUploadFinder,
	discarder ImageUploadDiscarder,
	files FileDeleter,
	schedule string,
	logger *zap.Logger,
) *CleanupJob {
	if schedule == "" {
		schedule = defaultCleanupSchedule
	}
	return &CleanupJob{
		finder:    finder,
		discarder: discarder,
		files:     files,
		logger:    logger,
		cron:      cron.New(),
		schedule:  schedule,
		now:       time.Now,
	}
}

// Start runs the job on every tick of the schedule
func (j *CleanupJob) Start() error {
	if _, err := j.cron.AddFunc(j.schedule, j.Run); err != nil {
		return err
	}
	j.cron.Start()
	return nil
}

// Stop waits for a running cleanup to finish
func (j *CleanupJob) Stop() {
	<-j.cron.Stop().Done()
}

// Run executes the cleanup job.
// A pending key is cleared under the event lock before its object is deleted.
func (j *CleanupJob) Run() {
	ctx := context.Background()

	j.logger.Info("Starting cleanup job for expired image uploads")

	events, err := j.finder.FindWithExpiredImageUploads(ctx, j.now())
	if err != nil {
		j.logger.Error("Failed to find expired image uploads",
			zap.Error(err),
		)
		return
	}

	if len(events) == 0 {
		j.logger.Info("No expired image uploads found")
		return
	}

	j.logger.Info("Found expired image uploads",
		zap.Int("count", len(events)),
	)

	successCount := 0
	skipCount := 0
	failCount := 0

	for _, event := range events {
		fileKey, err := j.discarder.DiscardExpiredImageUpload(ctx, event.ID)
		if err != nil {
			j.logger.Error("Failed to clear expired image upload",
				zap.String("event_id", event.ID.String()),
				zap.Error(err),
			)
			failCount++
			continue
		}
		if fileKey == "" {
			// confirmed or replaced since the scan
			skipCount++
			continue
		}

		if err := j.files.DeleteFile(ctx, fileKey); err != nil {
			j.logger.Error("Failed to delete file from S3",
				zap.String("event_id", event.ID.String()),
				zap.String("file_key", fileKey),
				zap.Error(err),
			)
			failCount++
			continue
		}
		successCount++

		j.logger.Debug("Deleted expired image upload",
			zap.String("event_id", event.ID.String()),
			zap.String("file_key", fileKey),
		)
	}

	j.logger.Info("Cleanup job completed",
		zap.Int("total_expired", len(events)),
		zap.Int("success", successCount),
		zap.Int("skipped", skipCount),
		zap.Int("failed", failCount),
	)
}
