package service

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"campus-events-api/internal/lock"
	"campus-events-api/internal/metrics"
	"campus-events-api/internal/repository"
	"campus-events-api/internal/response"
)

// eventGuard runs every mutation of an event while holding the event's lock
// and inside a single database transaction
type eventGuard struct {
	locker  lock.Locker
	uow     repository.UnitOfWork
	metrics *metrics.Metrics
	logger  *zap.Logger
}

func newEventGuard(locker lock.Locker, uow repository.UnitOfWork, m *metrics.Metrics, logger *zap.Logger) *eventGuard {
	return &eventGuard{
		locker:  locker,
		uow:     uow,
		metrics: m,
		logger:  logger,
	}
}

// run acquires event:lock:<eventID>, then executes fn in one transaction.
// AppErrors returned by fn roll the transaction back and are passed through unchanged.
func (g *eventGuard) run(ctx context.Context, eventID uuid.UUID, fn repository.TxFunc) error {
	start := time.Now()
	release, err := g.locker.Acquire(ctx, lock.EventKey(eventID))
	wait := time.Since(start)
	if err != nil {
		if g.metrics != nil {
			g.metrics.ObserveLockWait(wait, errors.Is(err, lock.ErrLockTimeout))
		}
		g.logger.Warn("Failed to acquire event lock",
			zap.String("event_id", eventID.String()),
			zap.Duration("waited", wait),
			zap.Error(err))
		return response.NewAppError(response.ErrCodeLockTimeout, "Event is busy, please retry", err.Error())
	}
	defer release()

	if g.metrics != nil {
		g.metrics.ObserveLockWait(wait, false)
	}

	if err := g.uow.Do(ctx, fn); err != nil {
		var appErr *response.AppError
		if errors.As(err, &appErr) {
			return appErr
		}
		return response.NewInternalError("Failed to complete event operation", err.Error())
	}
	return nil
}

// eventLookupError translates a repository lookup failure
func eventLookupError(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return response.NewNotFoundError("Event not found", "")
	}
	return response.NewInternalError("Failed to load event", err.Error())
}
