package esi

import (
	"context"
	"encoding/json"
	"time"

	"github.com/go-redis/redis/v8"
)

// ResponseCache stores raw page responses keyed by request URL.
// Implementations are best-effort: a failed read is a miss, a failed
// write is ignored.
type ResponseCache interface {
	Get(ctx context.Context, key string) (page, bool)
	Set(ctx context.Context, key string, p page)
}

// cachedPage is the stored wire form of a page.
type cachedPage struct {
	Body       []byte `json:"body"`
	TotalPages int    `json:"total_pages"`
}

// RedisCache caches responses in Redis with a fixed TTL.
type RedisCache struct {
	rdb *redis.Client
	ttl time.Duration
}

// NewRedisCache creates a cache backed by the given Redis client.
func NewRedisCache(rdb *redis.Client, ttl time.Duration) *RedisCache {
	return &RedisCache{rdb: rdb, ttl: ttl}
}

func (rc *RedisCache) Get(ctx context.Context, key string) (page, bool) {
	data, err := rc.rdb.Get(ctx, "esi:"+key).Bytes()
	if err != nil {
		return page{}, false
	}

	var cp cachedPage
	if err := json.Unmarshal(data, &cp); err != nil {
		return page{}, false
	}

	return page{body: cp.Body, totalPages: cp.TotalPages}, true
}

func (rc *RedisCache) Set(ctx context.Context, key string, p page) {
	data, err := json.Marshal(cachedPage{Body: p.body, TotalPages: p.totalPages})
	if err != nil {
		return
	}
	rc.rdb.Set(ctx, "esi:"+key, data, rc.ttl)
}
