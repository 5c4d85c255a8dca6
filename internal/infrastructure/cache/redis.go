// Package cache provides the caching layer used to memoize language-model
// responses. Redis backs production; the memory implementation covers
// tests and deployments without a cache.
package cache

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/mirepoix/v1/internal/ports/outbound"
)

// ErrCacheMiss marks a missing key. Callers treat any error as a miss and
// fall through to the source.
var ErrCacheMiss = redis.Nil

// Config holds the Redis connection settings.
type Config struct {
	Host     string
	Port     string
	Password string
	Database int
}

// NewRedisClient connects to Redis and verifies the connection.
func NewRedisClient(cfg Config, logger *zap.Logger) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:         cfg.Host + ":" + cfg.Port,
		Password:     cfg.Password,
		DB:           cfg.Database,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, err
	}

	logger.Info("Redis connection established",
		zap.String("host", cfg.Host),
		zap.String("port", cfg.Port),
		zap.Int("database", cfg.Database))
	return client, nil
}

// RedisRepository implements outbound.CacheRepository on go-redis.
type RedisRepository struct {
	client *redis.Client
	logger *zap.Logger
}

// NewRedisRepository creates a Redis-backed cache repository.
func NewRedisRepository(client *redis.Client, logger *zap.Logger) outbound.CacheRepository {
	return &RedisRepository{
		client: client,
		logger: logger.Named("redis-cache"),
	}
}

// Get retrieves a value; a missing key returns ErrCacheMiss.
func (r *RedisRepository) Get(ctx context.Context, key string) ([]byte, error) {
	data, err := r.client.Get(ctx, key).Bytes()
	if err != nil {
		if err != redis.Nil {
			r.logger.Debug("cache get failed", zap.String("key", key), zap.Error(err))
		}
		return nil, err
	}
	return data, nil
}

// Set stores a value with a TTL.
func (r *RedisRepository) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if err := r.client.Set(ctx, key, value, ttl).Err(); err != nil {
		r.logger.Error("cache set failed", zap.String("key", key), zap.Error(err))
		return err
	}
	return nil
}

// Delete removes a value.
func (r *RedisRepository) Delete(ctx context.Context, key string) error {
	if err := r.client.Del(ctx, key).Err(); err != nil {
		r.logger.Error("cache delete failed", zap.String("key", key), zap.Error(err))
		return err
	}
	return nil
}
