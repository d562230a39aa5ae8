// Package lock provides the cross-replica invoice lock backed by Redis.
package lock

import (
	"context"
	"errors"
	"fmt"

	"github.com/bsm/redislock"
	"github.com/erp/invoicing/internal/domain/shared"
	"github.com/erp/invoicing/internal/infrastructure/config"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// ErrBusy is returned when another request holds the invoice lock for longer than the retry budget
var ErrBusy = shared.NewConflictError("INVOICE_BUSY", "Invoice is being updated by another request, please retry")

// RedisLocker implements invoicing.Locker with bsm/redislock
type RedisLocker struct {
	client *redislock.Client
	cfg    config.LockConfig
	logger *zap.Logger
}

// NewRedisLocker creates a locker on an existing Redis client
func NewRedisLocker(client redis.UniversalClient, cfg config.LockConfig, logger *zap.Logger) *RedisLocker {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RedisLocker{
		client: redislock.New(client),
		cfg:    cfg,
		logger: logger,
	}
}

// Acquire obtains key, retrying at a fixed interval up to the configured count
func (l *RedisLocker) Acquire(ctx context.Context, key string) (func(), error) {
	opts := &redislock.Options{
		RetryStrategy: redislock.LimitRetry(redislock.LinearBackoff(l.cfg.RetryDelay), l.cfg.RetryCount),
	}
	held, err := l.client.Obtain(ctx, key, l.cfg.TTL, opts)
	if errors.Is(err, redislock.ErrNotObtained) {
		l.logger.Warn("Invoice lock not obtained", zap.String("key", key))
		return nil, ErrBusy
	}
	if err != nil {
		return nil, fmt.Errorf("failed to obtain lock %s: %w", key, err)
	}

	release := func() {
		// The caller's context may already be cancelled
		if err := held.Release(context.Background()); err != nil && !errors.Is(err, redislock.ErrLockNotHeld) {
			l.logger.Warn("Failed to release invoice lock", zap.String("key", key), zap.Error(err))
		}
	}
	return release, nil
}
