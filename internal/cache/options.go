// Package cache provides a Redis read-through cache for options records.
package cache

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/Clark-Hu/post-rating/internal/domain"
)

// Backend is the authoritative options storage behind the cache.
type Backend interface {
	Get(ctx context.Context, name string) (domain.Options, error)
	Put(ctx context.Context, name string, value domain.Options) error
}

// Store is the subset of Cache the options decorator needs.
type Store interface {
	Get(ctx context.Context, key string, dest any) error
	Set(ctx context.Context, key string, value any, expiration time.Duration) error
	Delete(ctx context.Context, key string) error
}

// CachedOptions serves options records from the cache and writes through to
// the backend. Cache failures are logged and never fail the call.
type CachedOptions struct {
	backend Backend
	cache   Store
	ttl     time.Duration
	logger  *zap.Logger
}

// NewCachedOptions wraps backend with cache.
func NewCachedOptions(backend Backend, cache Store, ttl time.Duration, logger *zap.Logger) *CachedOptions {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CachedOptions{backend: backend, cache: cache, ttl: ttl, logger: logger}
}

func optionsKey(name string) string {
	return "options:" + name
}

// Get implements rating.OptionsStore.
func (c *CachedOptions) Get(ctx context.Context, name string) (domain.Options, error) {
	var cached domain.Options
	err := c.cache.Get(ctx, optionsKey(name), &cached)
	if err == nil {
		return cached, nil
	}
	if !errors.Is(err, ErrMiss) {
		c.logger.Warn("options cache read failed", zap.String("name", name), zap.Error(err))
	}

	value, err := c.backend.Get(ctx, name)
	if err != nil {
		return nil, err
	}
	// Absent records are not cached so the first write is seen immediately.
	if value.IsEmpty() {
		return value, nil
	}
	if err := c.cache.Set(ctx, optionsKey(name), value, c.ttl); err != nil {
		c.logger.Warn("options cache fill failed", zap.String("name", name), zap.Error(err))
	}
	return value, nil
}

// Put implements rating.OptionsStore.
func (c *CachedOptions) Put(ctx context.Context, name string, value domain.Options) error {
	if err := c.backend.Put(ctx, name, value); err != nil {
		return err
	}
	if err := c.cache.Set(ctx, optionsKey(name), value, c.ttl); err != nil {
		c.logger.Warn("options cache update failed, evicting", zap.String("name", name), zap.Error(err))
		if err := c.cache.Delete(ctx, optionsKey(name)); err != nil {
			c.logger.Error("options cache eviction failed", zap.String("name", name), zap.Error(err))
		}
	}
	return nil
}
