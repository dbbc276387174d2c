// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// browse.go caches rendered JSON bodies of the public catalog endpoints.
// Any catalog mutation clears the whole namespace: a single poster write can
// change list results, category and collection pages, and the tag list.
package cache

import (
	"context"
	"log/slog"
	"net/url"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	// browseKeyPrefix is the Valkey key prefix for cached browse responses.
	browseKeyPrefix = "browse:"

	// DefaultBrowseTTL is how long a browse response stays cached.
	DefaultBrowseTTL = 2 * time.Minute
)

// InvalidationLog records cache invalidations. The PostgreSQL store's
// CacheLogStore satisfies it.
type InvalidationLog interface {
	Log(ctx context.Context, entityType, entityID, action string)
}

// BrowseCache stores public API responses in Valkey. A nil *BrowseCache is
// valid and never hits.
type BrowseCache struct {
	client *redis.Client
	ttl    time.Duration
	log    InvalidationLog
}

// NewBrowseCache creates a browse cache backed by the given Valkey client.
// log may be nil.
func NewBrowseCache(client *redis.Client, ttl time.Duration, log InvalidationLog) *BrowseCache {
	if ttl == 0 {
		ttl = DefaultBrowseTTL
	}
	return &BrowseCache{client: client, ttl: ttl, log: log}
}

// Get retrieves a cached body. Errors are logged and reported as a miss.
func (bc *BrowseCache) Get(ctx context.Context, key string) ([]byte, bool) {
	if bc == nil {
		return nil, false
	}
	val, err := bc.client.Get(ctx, browseKeyPrefix+key).Bytes()
	if err == redis.Nil {
		return nil, false
	}
	if err != nil {
		slog.Warn("browse cache get error", "key", key, "error", err)
		return nil, false
	}
	slog.Debug("browse cache hit", "key", key)
	return val, true
}

// Set stores a body under key with the configured TTL.
func (bc *BrowseCache) Set(ctx context.Context, key string, body []byte) {
	if bc == nil {
		return
	}
	if err := bc.client.Set(ctx, browseKeyPrefix+key, body, bc.ttl).Err(); err != nil {
		slog.Warn("browse cache set error", "key", key, "error", err)
	}
}

// InvalidateAll removes every cached browse response and records why.
// entityType and entityID name the record whose change triggered it.
func (bc *BrowseCache) InvalidateAll(ctx context.Context, entityType, entityID, action string) {
	if bc == nil {
		return
	}
	var cursor uint64
	var deleted int
	for {
		keys, next, err := bc.client.Scan(ctx, cursor, browseKeyPrefix+"*", 100).Result()
		if err != nil {
			slog.Warn("browse cache scan error", "error", err)
			return
		}
		if len(keys) > 0 {
			if err := bc.client.Del(ctx, keys...).Err(); err != nil {
				slog.Warn("browse cache bulk delete error", "error", err)
			}
			deleted += len(keys)
		}
		cursor = next
		if cursor == 0 {
			break
		}
	}
	if bc.log != nil {
		bc.log.Log(ctx, entityType, entityID, action)
	}
	slog.Debug("browse cache cleared", "deleted", deleted, "entity_type", entityType, "entity_id", entityID)
}

// PosterKey returns the cache key for a single poster.
func PosterKey(id string) string {
	return "poster:" + id
}

// ListKey returns the cache key for a poster listing. Query parameters are
// re-encoded so that parameter order does not matter.
func ListKey(query url.Values) string {
	return "posters?" + query.Encode()
}

// GroupsKey returns the cache key for all groups of a kind.
func GroupsKey(kind string) string {
	return kind
}

// GroupKey returns the cache key for a single group.
func GroupKey(kind, key string) string {
	return kind + ":" + key
}

// TagsKey returns the cache key for the tag list.
func TagsKey() string {
	return "tags"
}
