// internal/common/database/redis.go
package database

import (
	"context"
	"fmt"
	"time"

	"lead-qualifier/internal/common/config"

	"github.com/redis/go-redis/v9"
)

const redisConnectTimeout = 5 * time.Second

// RedisClient holds the fund catalog and the persisted sink URL.
type RedisClient struct {
	Client *redis.Client
}

// NewRedis dials Redis and fails when the server does not answer a PING, so
// callers can fall back to in-memory state at startup.
func NewRedis(ctx context.Context, cfg config.RedisConfig) (*RedisClient, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:         cfg.Address,
		Password:     cfg.Password,
		DB:           cfg.DB,
		DialTimeout:  redisConnectTimeout,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
		PoolSize:     10,
		MinIdleConns: 2,
	})

	c := &RedisClient{Client: rdb}
	pingCtx, cancel := context.WithTimeout(ctx, redisConnectTimeout)
	defer cancel()
	if err := c.Ping(pingCtx); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis %s: %w", cfg.Address, err)
	}
	return c, nil
}

func (c *RedisClient) Ping(ctx context.Context) error {
	if err := c.Client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("redis ping failed: %w", err)
	}
	return nil
}

func (c *RedisClient) Close() error {
	if c.Client != nil {
		return c.Client.Close()
	}
	return nil
}

func (c *RedisClient) GetClient() *redis.Client {
	return c.Client
}
