// Package services contains the server-side stores: category and status
// tags, users, and suggestions. Stores read through an injected cache and
// open transactions through dbx.WithTx when a write spans aggregates.
package services

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"time"

	"github.com/dmitrijs2005/suggestionapp/internal/logging"
	"github.com/dmitrijs2005/suggestionapp/internal/server/cache"
	"github.com/dmitrijs2005/suggestionapp/internal/server/metrics"
	"github.com/dmitrijs2005/suggestionapp/internal/server/repositories/repomanager"
	"golang.org/x/sync/singleflight"
)

// Cache keys.
const (
	CategoryCacheKey   = "CategoryData"
	StatusCacheKey     = "StatusData"
	SuggestionCacheKey = "SuggestionData"
)

// Default entry lifetimes.
const (
	DefaultTagTTL        = 24 * time.Hour
	DefaultSuggestionTTL = time.Minute
)

// authorCacheKey namespaces the per-author view so a user id can never
// collide with one of the fixed keys.
func authorCacheKey(userID string) string {
	return SuggestionCacheKey + ":author:" + userID
}

// Deps bundles the collaborators shared by every store.
type Deps struct {
	DB      *sql.DB
	Repos   repomanager.RepositoryManager
	Cache   cache.Cache
	Logger  logging.Logger
	Metrics metrics.Recorder
}

func (d Deps) withDefaults() Deps {
	if d.Logger == nil {
		d.Logger = logging.NewNopLogger()
	}
	if d.Metrics == nil {
		d.Metrics = metrics.Nop{}
	}
	return d
}

// readThrough serves values from the cache and populates it on a miss.
type readThrough struct {
	cache   cache.Cache
	logger  logging.Logger
	metrics metrics.Recorder
	group   singleflight.Group
}

func newReadThrough(d Deps) *readThrough {
	return &readThrough{cache: d.Cache, logger: d.Logger, metrics: d.Metrics}
}

// load returns the value cached under key or computes it with fetch and
// caches it for ttl. name labels the key in logs and metrics. Cache failures
// degrade to a fetch and never fail the read. Concurrent misses on one key
// share a single fetch; every caller decodes its own copy. A caller whose ctx
// ends gets ctx.Err() while the others keep waiting for the fetch.
func load[T any](ctx context.Context, rt *readThrough, name, key string, ttl time.Duration, fetch func(context.Context) (T, error)) (T, error) {
	var zero T

	raw, err := rt.cache.Get(ctx, key)
	switch {
	case err == nil:
		var v T
		decErr := json.Unmarshal(raw, &v)
		if decErr == nil {
			rt.metrics.RecordCacheHit(name)
			rt.logger.Debug(ctx, "cache hit", "key", key)
			return v, nil
		}
		rt.metrics.RecordCacheError(name)
		rt.logger.Warn(ctx, "discarding undecodable cache entry", "key", key, "error", decErr)
	case errors.Is(err, cache.ErrCacheMiss):
		rt.metrics.RecordCacheMiss(name)
		rt.logger.Debug(ctx, "cache miss", "key", key)
	default:
		rt.metrics.RecordCacheError(name)
		rt.logger.Warn(ctx, "cache read failed", "key", key, "error", err)
	}

	// The shared fetch is detached from any one caller's cancellation; each
	// caller stops waiting when its own ctx is done.
	ch := rt.group.DoChan(key, func() (any, error) {
		fctx := context.WithoutCancel(ctx)
		v, err := fetch(fctx)
		if err != nil {
			return nil, err
		}
		raw, err := json.Marshal(v)
		if err != nil {
			return nil, err
		}
		if err := rt.cache.Set(fctx, key, raw, ttl); err != nil {
			rt.metrics.RecordCacheError(name)
			rt.logger.Warn(fctx, "cache write failed", "key", key, "error", err)
		}
		return raw, nil
	})

	select {
	case <-ctx.Done():
		return zero, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return zero, res.Err
		}
		var v T
		if err := json.Unmarshal(res.Val.([]byte), &v); err != nil {
			return zero, err
		}
		return v, nil
	}
}

// invalidate drops key. A failed delete is logged; the entry then lives out
// its ttl.
func (rt *readThrough) invalidate(ctx context.Context, name, key string) {
	if err := rt.cache.Delete(ctx, key); err != nil {
		rt.metrics.RecordCacheError(name)
		rt.logger.Warn(ctx, "cache invalidation failed", "key", key, "error", err)
	}
}
