package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/erp/invoicing/internal/domain/report"
	"github.com/erp/invoicing/internal/infrastructure/config"
	"github.com/redis/go-redis/v9"
)

const defaultKeyPrefix = "inv:"

// RedisDashboardCache implements report.DashboardCache using Redis.
// Values are JSON encoded and expire after the configured TTL.
type RedisDashboardCache struct {
	client    redis.UniversalClient
	ttl       time.Duration
	keyPrefix string
}

// NewRedisClient connects to Redis and verifies the connection
func NewRedisClient(cfg config.RedisConfig) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr(),
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}
	return client, nil
}

// NewRedisDashboardCache creates a cache with its own Redis connection
func NewRedisDashboardCache(redisCfg config.RedisConfig, cacheCfg config.CacheConfig) (*RedisDashboardCache, error) {
	client, err := NewRedisClient(redisCfg)
	if err != nil {
		return nil, err
	}
	return NewRedisDashboardCacheWithClient(client, cacheCfg.DashboardTTL, cacheCfg.KeyPrefix), nil
}

// NewRedisDashboardCacheWithClient creates a cache on an existing client.
// Useful for tests and for sharing one client with the invoice lock.
func NewRedisDashboardCacheWithClient(client redis.UniversalClient, ttl time.Duration, keyPrefix string) *RedisDashboardCache {
	if keyPrefix == "" {
		keyPrefix = defaultKeyPrefix
	}
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &RedisDashboardCache{
		client:    client,
		ttl:       ttl,
		keyPrefix: keyPrefix,
	}
}

// Get returns the cached dashboard, or nil on a miss
func (c *RedisDashboardCache) Get(ctx context.Context, key string) (*report.Dashboard, error) {
	raw, err := c.client.Get(ctx, c.keyPrefix+key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read dashboard cache: %w", err)
	}

	var dashboard report.Dashboard
	if err := json.Unmarshal(raw, &dashboard); err != nil {
		// A stale or foreign value is treated as a miss and dropped
		_ = c.client.Del(ctx, c.keyPrefix+key).Err()
		return nil, nil
	}
	return &dashboard, nil
}

// Set stores the dashboard with the cache TTL
func (c *RedisDashboardCache) Set(ctx context.Context, key string, dashboard *report.Dashboard) error {
	if dashboard == nil {
		return nil
	}
	raw, err := json.Marshal(dashboard)
	if err != nil {
		return fmt.Errorf("failed to encode dashboard: %w", err)
	}
	if err := c.client.Set(ctx, c.keyPrefix+key, raw, c.ttl).Err(); err != nil {
		return fmt.Errorf("failed to write dashboard cache: %w", err)
	}
	return nil
}

// InvalidatePrefix removes every key starting with prefix. SCAN keeps the
// server responsive on large keyspaces.
func (c *RedisDashboardCache) InvalidatePrefix(ctx context.Context, prefix string) error {
	iter := c.client.Scan(ctx, 0, c.keyPrefix+prefix+"*", 100).Iterator()
	var batch []string
	for iter.Next(ctx) {
		batch = append(batch, iter.Val())
		if len(batch) == 100 {
			if err := c.client.Del(ctx, batch...).Err(); err != nil {
				return fmt.Errorf("failed to invalidate dashboard cache: %w", err)
			}
			batch = batch[:0]
		}
	}
	if err := iter.Err(); err != nil {
		return fmt.Errorf("failed to scan dashboard cache: %w", err)
	}
	if len(batch) > 0 {
		if err := c.client.Del(ctx, batch...).Err(); err != nil {
			return fmt.Errorf("failed to invalidate dashboard cache: %w", err)
		}
	}
	return nil
}
