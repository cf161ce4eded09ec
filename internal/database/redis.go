package database

import (
	"context"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"

	"campus-events-api/internal/config"
)

// NewRedis connects to Redis using a redis:// URL when present, the plain address otherwise
func NewRedis(cfg config.RedisConfig, log *zap.Logger) (*redis.Client, error) {
	var client *redis.Client

	if cfg.URL != "" {
		opts, err := redis.ParseURL(cfg.URL)
		if err != nil {
			return nil, fmt.Errorf("invalid redis url: %w", err)
		}
		if cfg.Password != "" {
			opts.Password = cfg.Password
		}
		client = redis.NewClient(opts)
	} else {
		client = redis.NewClient(&redis.Options{
			Addr:     cfg.Addr,
			Password: cfg.Password,
			DB:       cfg.DB,
		})
	}

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to ping redis: %w", err)
	}

	log.Info("Redis connection established", zap.String("addr", client.Options().Addr), zap.Int("db", client.Options().DB))
	return client, nil
}
