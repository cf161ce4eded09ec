package lock

import (
	"context"
	"errors"

	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"campus-events-api/internal/config"
)

// ErrLockTimeout is returned when a lock could not be acquired within the wait timeout
var ErrLockTimeout = errors.New("timed out waiting for lock")

const eventKeyPrefix = "event:lock:"

// Release frees a held lock. Calling it more than once is a no-op.
type Release func()

// Locker grants exclusive access per key
type Locker interface {
	Acquire(ctx context.Context, key string) (Release, error)
}

// EventKey returns the lock key guarding all mutations of one event
func EventKey(eventID uuid.UUID) string {
	return eventKeyPrefix + eventID.String()
}

// New returns a Redis backed locker when client is non-nil, an in-process one otherwise
func New(cfg config.LockConfig, client *redis.Client, logger *zap.Logger) Locker {
	if client != nil {
		logger.Info("Using distributed event locks", zap.Duration("lease", cfg.LeaseTime))
		return NewRedisLocker(client, cfg, logger)
	}
	logger.Info("Using in-process event locks")
	return NewKeyedMutex(cfg.WaitTimeout)
}
