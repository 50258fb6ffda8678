package search

import (
	"context"
	"crypto/md5"
	"encoding/hex"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/Wayfarer-core-poc-v1/server/internal/agent/model"
	errx "github.com/Wayfarer-core-poc-v1/server/internal/core/error"
	logx "github.com/Wayfarer-core-poc-v1/server/pkg/logger"
)

const (
	cacheKeyPrefix  = "search:"
	DefaultCacheTTL = 7 * 24 * time.Hour
)

// Cached wraps a provider with a Redis result cache. Empty results are cached too;
// cache failures are logged and never fail a search.
type Cached struct {
	next model.SearchProvider
	rdb  *redis.Client
	ttl  time.Duration
}

func NewCached(next model.SearchProvider, rdb *redis.Client, ttl time.Duration) *Cached {
	if ttl <= 0 {
		ttl = DefaultCacheTTL
	}
	return &Cached{next: next, rdb: rdb, ttl: ttl}
}

// CacheKey returns the Redis key of query.
func CacheKey(query string) string {
	sum := md5.Sum([]byte(query))
	return cacheKeyPrefix + hex.EncodeToString(sum[:])[:12]
}

func (c *Cached) Search(ctx context.Context, query string, limit int) ([]model.SearchNote, error) {
	key := CacheKey(query)

	if notes, ok := c.lookup(ctx, key); ok {
		logx.Debug().Str("query", query).Int("notes", len(notes)).Msg("search cache hit")
		return notes, nil
	}

	notes, err := c.next.Search(ctx, query, limit)
	if err != nil {
		return nil, err
	}
	if notes == nil {
		notes = []model.SearchNote{}
	}
	if b, err := json.Marshal(notes); err == nil {
		if err := c.rdb.Set(ctx, key, b, c.ttl).Err(); err != nil {
			logx.Warn().Err(errx.WrapRedis(err)).Str("key", key).Msg("search cache write failed")
		}
	}
	return notes, nil
}

func (c *Cached) lookup(ctx context.Context, key string) ([]model.SearchNote, bool) {
	raw, err := c.rdb.Get(ctx, key).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			logx.Warn().Err(errx.WrapRedis(err)).Str("key", key).Msg("search cache read failed")
		}
		return nil, false
	}
	var notes []model.SearchNote
	if err := json.Unmarshal(raw, &notes); err != nil {
		logx.Warn().Err(err).Str("key", key).Msg("search cache entry unreadable")
		return nil, false
	}
	return notes, true
}
