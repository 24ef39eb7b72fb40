// Package cache keeps computed aggregation views in Redis.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/stemsi/faculty-backend/internal/metrics"
)

// StatsCache stores aggregation results as JSON with a TTL. A nil
// *StatsCache, or one built on a nil client, is valid and caches nothing.
//
// Entries are namespaced by a generation counter kept in Redis. Invalidate
// bumps the counter, so a value computed from data read before the bump is
// written under the old generation and never served again.
type StatsCache struct {
	rdb *redis.Client
	ttl time.Duration
	log zerolog.Logger
}

// NewStatsCache creates a StatsCache. rdb may be nil.
func NewStatsCache(rdb *redis.Client, ttl time.Duration, log zerolog.Logger) *StatsCache {
	return &StatsCache{
		rdb: rdb,
		ttl: ttl,
		log: log.With().Str("component", "stats_cache").Logger(),
	}
}

// Enabled reports whether lookups can ever hit.
func (c *StatsCache) Enabled() bool {
	return c != nil && c.rdb != nil && c.ttl > 0
}

// Load returns the cached value for name, or calls compute and caches its
// result. Redis failures fall back to compute.
func Load[T any](ctx context.Context, c *StatsCache, name string, compute func() (T, error)) (T, error) {
	gen, ok := c.generation(ctx)
	if !ok {
		return compute()
	}

	key := entryKey(gen, name)
	var v T
	if c.get(ctx, key, &v) {
		return v, nil
	}

	v, err := compute()
	if err != nil {
		return v, err
	}
	c.set(ctx, key, v)
	return v, nil
}

func (c *StatsCache) generation(ctx context.Context) (int64, bool) {
	if !c.Enabled() {
		return 0, false
	}

	gen, err := c.rdb.Get(ctx, generationKey).Int64()
	switch {
	case errors.Is(err, redis.Nil):
		return 0, true
	case err != nil:
		c.log.Warn().Err(err).Msg("Cache generation read failed")
		return 0, false
	}
	return gen, true
}

func (c *StatsCache) get(ctx context.Context, key string, dst interface{}) bool {
	data, err := c.rdb.Get(ctx, key).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			c.log.Warn().Err(err).Str("key", key).Msg("Cache read failed")
		}
		metrics.StatsCacheLookups.WithLabelValues("miss").Inc()
		return false
	}

	if err := json.Unmarshal(data, dst); err != nil {
		c.log.Warn().Err(err).Str("key", key).Msg("Discarding undecodable cache entry")
		metrics.StatsCacheLookups.WithLabelValues("miss").Inc()
		return false
	}
	metrics.StatsCacheLookups.WithLabelValues("hit").Inc()
	return true
}

func (c *StatsCache) set(ctx context.Context, key string, v interface{}) {
	data, err := json.Marshal(v)
	if err != nil {
		c.log.Warn().Err(err).Str("key", key).Msg("Cache encode failed")
		return
	}
	if err := c.rdb.Set(ctx, key, data, c.ttl).Err(); err != nil {
		c.log.Warn().Err(err).Str("key", key).Msg("Cache write failed")
	}
}

// Invalidate starts a new generation and drops the entries of older ones.
// It is called after each write to a table an aggregation reads.
func (c *StatsCache) Invalidate(ctx context.Context) {
	if !c.Enabled() {
		return
	}

	if err := c.rdb.Incr(ctx, generationKey).Err(); err != nil {
		c.log.Warn().Err(err).Msg("Cache generation bump failed")
	}

	var keys []string
	iter := c.rdb.Scan(ctx, 0, entryPattern, 100).Iterator()
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		c.log.Warn().Err(err).Msg("Cache scan failed")
		return
	}
	if len(keys) == 0 {
		return
	}

	if err := c.rdb.Del(ctx, keys...).Err(); err != nil {
		c.log.Warn().Err(err).Int("keys", len(keys)).Msg("Cache invalidation failed")
		return
	}
	c.log.Debug().Int("keys", len(keys)).Msg("Cache invalidated")
}
