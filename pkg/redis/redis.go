package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/foodmarket/provision-backend/config"
	"github.com/foodmarket/provision-backend/pkg/logger"
	"github.com/redis/go-redis/v9"
)

var client *redis.Client

// Init initializes Redis connection
func Init(cfg *config.RedisConfig) error {
	logger.Info("Initializing Redis connection", map[string]interface{}{
		"host": cfg.Host,
		"port": cfg.Port,
		"db":   cfg.DB,
	})

	client = redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%s", cfg.Host, cfg.Port),
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	// Test connection
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		logger.Error("Failed to connect to Redis", err, map[string]interface{}{
			"host": cfg.Host,
			"port": cfg.Port,
		})
		return fmt.Errorf("failed to connect to Redis: %w", err)
	}

	logger.Info("Redis connection established successfully", nil)
	return nil
}

// GetClient returns the Redis client instance
func GetClient() *redis.Client {
	return client
}

// Close closes the Redis connection
func Close() error {
	if client != nil {
		logger.Info("Closing Redis connection", nil)
		return client.Close()
	}
	return nil
}

// HoldBackend stores held carts as plain string values. Keys never expire;
// stale holds are removed by the scheduled sweep.
type HoldBackend struct {
	client redis.Cmdable
}

func NewHoldBackend(c redis.Cmdable) *HoldBackend {
	return &HoldBackend{client: c}
}

func (b *HoldBackend) Get(ctx context.Context, key string) (string, bool, error) {
	val, err := b.client.Get(ctx, key).Result()
	if err == redis.Nil {
		return "", false, nil
	}
	if err != nil {
		logger.Error("Failed to read hold from Redis", err, map[string]interface{}{
			"key": key,
		})
		return "", false, err
	}
	return val, true, nil
}

func (b *HoldBackend) Set(ctx context.Context, key, value string) error {
	if err := b.client.Set(ctx, key, value, 0).Err(); err != nil {
		logger.Error("Failed to write hold to Redis", err, map[string]interface{}{
			"key": key,
		})
		return err
	}
	return nil
}

func (b *HoldBackend) Delete(ctx context.Context, key string) error {
	if err := b.client.Del(ctx, key).Err(); err != nil {
		logger.Error("Failed to delete hold from Redis", err, map[string]interface{}{
			"key": key,
		})
		return err
	}
	return nil
}

// Keys lists keys starting with prefix using SCAN so a large keyspace does
// not block the server.
func (b *HoldBackend) Keys(ctx context.Context, prefix string) ([]string, error) {
	var (
		keys   []string
		cursor uint64
	)
	for {
		batch, next, err := b.client.Scan(ctx, cursor, prefix+"*", 100).Result()
		if err != nil {
			logger.Error("Failed to scan holds in Redis", err, map[string]interface{}{
				"prefix": prefix,
			})
			return nil, err
		}
		keys = append(keys, batch...)
		if next == 0 {
			return keys, nil
		}
		cursor = next
	}
}
