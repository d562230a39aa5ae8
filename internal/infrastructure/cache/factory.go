package cache

import (
	"context"
	"fmt"

	"github.com/erp/invoicing/internal/domain/report"
	"github.com/erp/invoicing/internal/infrastructure/config"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// DashboardCache is a report.DashboardCache that can also be invalidated
type DashboardCache interface {
	Get(ctx context.Context, key string) (*report.Dashboard, error)
	Set(ctx context.Context, key string, dashboard *report.Dashboard) error
	PrefixInvalidator
}

// Factory creates dashboard caches based on configuration
type Factory struct {
	cfg                   config.CacheConfig
	logger                *zap.Logger
	allowInMemoryFallback bool
}

// FactoryOption is a functional option for configuring the factory
type FactoryOption func(*Factory)

// WithLogger sets the logger for the factory
func WithLogger(logger *zap.Logger) FactoryOption {
	return func(f *Factory) {
		f.logger = logger
	}
}

// WithInMemoryFallback controls whether to fall back to an in-memory cache
// when Redis is unavailable. Default is true.
func WithInMemoryFallback(allow bool) FactoryOption {
	return func(f *Factory) {
		f.allowInMemoryFallback = allow
	}
}

// NewFactory creates a new factory
func NewFactory(cfg config.CacheConfig, opts ...FactoryOption) *Factory {
	f := &Factory{
		cfg:                   cfg,
		logger:                zap.NewNop(),
		allowInMemoryFallback: true,
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// CreateInMemory creates an in-memory cache. Entries are not shared between
// instances, so a multi-instance deployment may serve a stale dashboard until the TTL.
func (f *Factory) CreateInMemory() DashboardCache {
	return NewInMemoryDashboardCache(f.cfg.DashboardTTL)
}

// Create returns a Redis cache when client is non-nil and reachable,
// otherwise an in-memory cache if fallback is allowed.
func (f *Factory) Create(ctx context.Context, client redis.UniversalClient) (DashboardCache, error) {
	if client != nil {
		err := client.Ping(ctx).Err()
		if err == nil {
			f.logger.Info("using Redis dashboard cache")
			return NewRedisDashboardCacheWithClient(client, f.cfg.DashboardTTL, f.cfg.KeyPrefix), nil
		}
		if !f.allowInMemoryFallback {
			return nil, fmt.Errorf("Redis required for dashboard cache but unavailable: %w", err)
		}
		f.logger.Warn("Redis unavailable, falling back to in-memory dashboard cache", zap.Error(err))
	} else if !f.allowInMemoryFallback {
		return nil, fmt.Errorf("Redis required for dashboard cache but not configured")
	}
	return f.CreateInMemory(), nil
}
