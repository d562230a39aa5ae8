package cache

import (
	"context"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/erp/invoicing/internal/domain/report"
)

// InMemoryDashboardCache implements report.DashboardCache in process memory.
// Suitable for single-instance deployments and tests.
type InMemoryDashboardCache struct {
	mu      sync.RWMutex
	entries map[string]cacheEntry
	ttl     time.Duration
	now     func() time.Time

	hits   int64
	misses int64
}

type cacheEntry struct {
	value     report.Dashboard
	expiresAt time.Time
}

// InMemoryOption configures an InMemoryDashboardCache
type InMemoryOption func(*InMemoryDashboardCache)

// WithClock overrides the time source used for expiry
func WithClock(now func() time.Time) InMemoryOption {
	return func(c *InMemoryDashboardCache) { c.now = now }
}

// NewInMemoryDashboardCache creates a new in-memory dashboard cache
func NewInMemoryDashboardCache(ttl time.Duration, opts ...InMemoryOption) *InMemoryDashboardCache {
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	c := &InMemoryDashboardCache{
		entries: make(map[string]cacheEntry),
		ttl:     ttl,
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Get returns a copy of the cached dashboard, or nil on a miss
func (c *InMemoryDashboardCache) Get(_ context.Context, key string) (*report.Dashboard, error) {
	c.mu.RLock()
	entry, ok := c.entries[key]
	c.mu.RUnlock()

	if !ok || !c.now().Before(entry.expiresAt) {
		if ok {
			c.mu.Lock()
			delete(c.entries, key)
			c.mu.Unlock()
		}
		atomic.AddInt64(&c.misses, 1)
		return nil, nil
	}
	atomic.AddInt64(&c.hits, 1)
	value := entry.value
	return &value, nil
}

// Set stores the dashboard until the TTL elapses
func (c *InMemoryDashboardCache) Set(_ context.Context, key string, dashboard *report.Dashboard) error {
	if dashboard == nil {
		return nil
	}
	c.mu.Lock()
	c.entries[key] = cacheEntry{value: *dashboard, expiresAt: c.now().Add(c.ttl)}
	c.mu.Unlock()
	return nil
}

// InvalidatePrefix drops every entry whose key starts with prefix
func (c *InMemoryDashboardCache) InvalidatePrefix(_ context.Context, prefix string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	for key := range c.entries {
		if strings.HasPrefix(key, prefix) {
			delete(c.entries, key)
		}
	}
	return nil
}

// Stats returns hit and miss counters
func (c *InMemoryDashboardCache) Stats() (hits, misses int64) {
	return atomic.LoadInt64(&c.hits), atomic.LoadInt64(&c.misses)
}

// Len returns the number of stored entries, expired ones included
func (c *InMemoryDashboardCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}
