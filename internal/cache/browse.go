// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// browse.go provides a Valkey-backed cache for public catalog pages.
// Serialized browse responses are stored per page number so repeated
// catalog requests skip the DB join. The whole cache is dropped on any
// mutation that can change the catalog (create, delete, visibility).
package cache

import (
	"context"
	"log/slog"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	// browseKeyPrefix is the Valkey key prefix for cached catalog pages.
	browseKeyPrefix = "browse:"

	// DefaultBrowseTTL bounds staleness even if an invalidation is missed.
	DefaultBrowseTTL = 1 * time.Minute
)

// BrowseCache manages cached public catalog pages in Valkey.
type BrowseCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewBrowseCache creates a browse cache backed by the given Valkey client.
func NewBrowseCache(client *redis.Client, ttl time.Duration) *BrowseCache {
	if ttl == 0 {
		ttl = DefaultBrowseTTL
	}
	return &BrowseCache{client: client, ttl: ttl}
}

// PageKey returns the cache key for a catalog page number.
func PageKey(page int) string {
	return strconv.Itoa(page)
}

// Get retrieves a cached catalog page. Returns false on miss.
func (bc *BrowseCache) Get(ctx context.Context, key string) ([]byte, bool) {
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

// Set stores a serialized catalog page with the configured TTL.
func (bc *BrowseCache) Set(ctx context.Context, key string, payload []byte) {
	if err := bc.client.Set(ctx, browseKeyPrefix+key, payload, bc.ttl).Err(); err != nil {
		slog.Warn("browse cache set error", "key", key, "error", err)
	}
}

// InvalidateAll removes all cached catalog pages by scanning for the
// prefix. Called after any theme create, delete, or visibility change;
// a mutation can shift every page behind it.
func (bc *BrowseCache) InvalidateAll(ctx context.Context) {
	var cursor uint64
	var deleted int
	for {
		keys, nextCursor, err := bc.client.Scan(ctx, cursor, browseKeyPrefix+"*", 100).Result()
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
		cursor = nextCursor
		if cursor == 0 {
			break
		}
	}
	if deleted > 0 {
		slog.Debug("browse cache cleared", "deleted", deleted)
	}
}
