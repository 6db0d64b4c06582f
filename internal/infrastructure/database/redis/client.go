// Package redis provides the Redis client and the code-mapping cache built
// on it.
package redis

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/lexicon-health/lexicon/internal/config"
	apperrors "github.com/lexicon-health/lexicon/pkg/errors"
)

// NewClient connects to Redis with the given configuration and verifies the
// connection with a ping.
func NewClient(ctx context.Context, cfg config.RedisConfig) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:         cfg.Addr,
		Password:     cfg.Password,
		DB:           cfg.DB,
		PoolSize:     cfg.PoolSize,
		DialTimeout:  cfg.DialTimeout,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		client.Close()
		return nil, apperrors.Wrap(err, apperrors.ErrCodeCacheError, "cannot connect to redis")
	}
	return client, nil
}
