package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/hireflowdev/interview-assistant/pkg/config"
)

// Store is the key-value surface shared by the in-memory and Redis backends.
// Both the one-time invite ledger and the live read-model write through it.
type Store interface {
	Set(key string, value string, expiration time.Duration)
	Get(key string) (string, bool)
	Delete(key string)
}

// NewRedisClient connects to Redis and verifies the connection.
func NewRedisClient(cfg *config.Config) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.GetRedisAddr(),
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to redis at %s: %w", cfg.GetRedisAddr(), err)
	}
	return client, nil
}

// opTimeout bounds individual cache operations so a slow Redis cannot stall
// the capture event loop that writes snapshots through this store.
const opTimeout = 2 * time.Second

// RedisStore adapts go-redis to the Store interface. Failures degrade to
// cache misses: the read-model is advisory and must never break capture.
type RedisStore struct {
	client *redis.Client
	logger *zap.Logger
}

// NewRedisStore wraps an already-connected Redis client.
func NewRedisStore(client *redis.Client, logger *zap.Logger) *RedisStore {
	return &RedisStore{client: client, logger: logger}
}

// Set stores a key-value pair with expiration.
func (rs *RedisStore) Set(key string, value string, expiration time.Duration) {
	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()

	if err := rs.client.Set(ctx, key, value, expiration).Err(); err != nil && rs.logger != nil {
		rs.logger.Warn("⚠️ Redis SET failed", zap.String("key", key), zap.Error(err))
	}
}

// Get retrieves a value by key.
func (rs *RedisStore) Get(key string) (string, bool) {
	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()

	value, err := rs.client.Get(ctx, key).Result()
	if err != nil {
		if !errors.Is(err, redis.Nil) && rs.logger != nil {
			rs.logger.Warn("⚠️ Redis GET failed", zap.String("key", key), zap.Error(err))
		}
		return "", false
	}
	return value, true
}

// Delete removes a key.
func (rs *RedisStore) Delete(key string) {
	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()

	if err := rs.client.Del(ctx, key).Err(); err != nil && rs.logger != nil {
		rs.logger.Warn("⚠️ Redis DEL failed", zap.String("key", key), zap.Error(err))
	}
}
