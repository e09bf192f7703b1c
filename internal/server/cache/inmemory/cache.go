// Package inmemory is a process-local cache backend over patrickmn/go-cache.
package inmemory

import (
	"bytes"
	"context"
	"time"

	"github.com/dmitrijs2005/suggestionapp/internal/server/cache"
	gocache "github.com/patrickmn/go-cache"
)

// Config controls expiry housekeeping.
type Config struct {
	// DefaultExpiration applies to entries stored without a ttl.
	DefaultExpiration time.Duration
	// CleanupInterval is how often expired entries are purged.
	CleanupInterval time.Duration
}

func getDefaultConfig() *Config {
	return &Config{
		DefaultExpiration: gocache.NoExpiration,
		CleanupInterval:   10 * time.Minute,
	}
}

// Cache keeps copies of the stored bytes so neither writers nor readers can
// alter an entry after the fact.
type Cache struct {
	store *gocache.Cache
}

var _ cache.Cache = (*Cache)(nil)

func NewCache(config *Config) *Cache {
	if config == nil {
		config = getDefaultConfig()
	}
	return &Cache{store: gocache.New(config.DefaultExpiration, config.CleanupInterval)}
}

func (c *Cache) Get(_ context.Context, key string) ([]byte, error) {
	v, ok := c.store.Get(key)
	if !ok {
		return nil, cache.ErrCacheMiss
	}
	return bytes.Clone(v.([]byte)), nil
}

func (c *Cache) Set(_ context.Context, key string, value []byte, ttl time.Duration) error {
	if ttl <= 0 {
		ttl = gocache.NoExpiration
	}
	c.store.Set(key, bytes.Clone(value), ttl)
	return nil
}

func (c *Cache) Delete(_ context.Context, key string) error {
	c.store.Delete(key)
	return nil
}

// Len reports the number of stored entries, expired ones included until the
// next cleanup.
func (c *Cache) Len() int {
	return c.store.ItemCount()
}
