package lock

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"campus-events-api/internal/config"
)

// releaseScript deletes the key only if it still holds our token
var releaseScript = redis.NewScript(`
if redis.call("get", KEYS[1]) == ARGV[1] then
	return redis.call("del", KEYS[1])
else
	return 0
end`)

// RedisLocker is a distributed lock based on SET NX PX.
// A lock that is never released expires after the lease time.
type RedisLocker struct {
	client        *redis.Client
	lease         time.Duration
	waitTimeout   time.Duration
	retryInterval time.Duration
	logger        *zap.Logger
}

func NewRedisLocker(client *redis.Client, cfg config.LockConfig, logger *zap.Logger) *RedisLocker {
	retry := cfg.RetryInterval
	if retry <= 0 {
		retry = 50 * time.Millisecond
	}
	return &RedisLocker{
		client:        client,
		lease:         cfg.LeaseTime,
		waitTimeout:   cfg.WaitTimeout,
		retryInterval: retry,
		logger:        logger,
	}
}

// Acquire polls until the key is set by us, ctx is done, or the wait timeout elapses
func (l *RedisLocker) Acquire(ctx context.Context, key string) (Release, error) {
	token := uuid.NewString()

	waitCtx, cancel := context.WithTimeout(ctx, l.waitTimeout)
	defer cancel()

	ticker := time.NewTicker(l.retryInterval)
	defer ticker.Stop()

	for {
		ok, err := l.client.SetNX(waitCtx, key, token, l.lease).Result()
		if err != nil && waitCtx.Err() == nil {
			return nil, fmt.Errorf("acquire %s: %w", key, err)
		}
		if ok {
			return l.releaseFunc(key, token), nil
		}

		select {
		case <-ticker.C:
		case <-waitCtx.Done():
			if ctx.Err() != nil {
				return nil, fmt.Errorf("acquire %s: %w", key, ctx.Err())
			}
			return nil, fmt.Errorf("acquire %s: %w", key, ErrLockTimeout)
		}
	}
}

func (l *RedisLocker) releaseFunc(key, token string) Release {
	var once sync.Once
	return func() {
		once.Do(func() {
			// the request context may already be cancelled
			ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
			defer cancel()

			if err := releaseScript.Run(ctx, l.client, []string{key}, token).Err(); err != nil {
				l.logger.Warn("Failed to release lock, it will expire with its lease",
					zap.String("key", key),
					zap.Error(err),
				)
			}
		})
	}
}
