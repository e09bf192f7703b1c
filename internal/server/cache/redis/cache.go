// Package redis is a shared cache backend over go-redis, for deployments
// running more than one server instance.
package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/suggestionapp/internal/server/cache"
	"github.com/redis/go-redis/v9"
)

// Config holds all required info for initializing the redis client.
type Config struct {
	Addr      string `json:"addr"`
	Username  string `json:"username"`
	Password  string `json:"password"`
	Database  int    `json:"database"`
	KeyPrefix string `json:"key_prefix"`
}

// RedisCache holds the handler for the redis client.
type RedisCache struct {
	client redis.UniversalClient
	prefix string
}

var _ cache.Cache = (*RedisCache)(nil)

// NewCache dials redis and verifies the connection.
func NewCache(ctx context.Context, config *Config) (*RedisCache, error) {
	if config == nil {
		config = getDefaultConfig()
	}

	client := redis.NewUniversalClient(&redis.UniversalOptions{
		Addrs:    []string{config.Addr},
		Username: config.Username,
		Password: config.Password,
		DB:       config.Database,
	})

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("ping failed: %w", err)
	}

	return NewWithClient(client, config.KeyPrefix), nil
}

// NewWithClient wraps an existing client. Every key is stored under prefix.
func NewWithClient(client redis.UniversalClient, prefix string) *RedisCache {
	return &RedisCache{client: client, prefix: prefix}
}

func getDefaultConfig() *Config {
	return &Config{
		Addr:      "localhost:6379",
		KeyPrefix: "suggestionapp:",
	}
}

func (rc *RedisCache) Get(ctx context.Context, key string) ([]byte, error) {
	val, err := rc.client.Get(ctx, rc.prefix+key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, cache.ErrCacheMiss
		}
		return nil, err
	}
	return val, nil
}

// Set stores value; a ttl <= 0 stores it without expiry.
func (rc *RedisCache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if ttl < 0 {
		ttl = 0
	}
	return rc.client.Set(ctx, rc.prefix+key, value, ttl).Err()
}

func (rc *RedisCache) Delete(ctx context.Context, key string) error {
	return rc.client.Del(ctx, rc.prefix+key).Err()
}

// Close disconnects from the redis server.
func (rc *RedisCache) Close() error {
	return rc.client.Close()
}
