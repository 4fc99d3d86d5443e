package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/garden-market/internal/models"
	"github.com/redis/go-redis/v9"
)

const feedVersionKey = "feed:version"

// FeedCache caches feed query results in Redis for a short TTL. Every listing
// mutation bumps a version counter, so stale entries are simply never read
// again; no key scanning is needed.
type FeedCache struct {
	rdb *redis.Client
	ttl time.Duration
}

// NewFeedCache creates a FeedCache. A zero ttl falls back to 30 seconds.
func NewFeedCache(rdb *redis.Client, ttl time.Duration) *FeedCache {
	if ttl <= 0 {
		ttl = 30 * time.Second
	}
	return &FeedCache{rdb: rdb, ttl: ttl}
}

func (c *FeedCache) key(ctx context.Context, viewerEmail string, limit int) (string, error) {
	version, err := c.rdb.Get(ctx, feedVersionKey).Int64()
	if err != nil && !errors.Is(err, redis.Nil) {
		return "", err
	}
	return fmt.Sprintf("feed:v%d:%s:%d", version, viewerEmail, limit), nil
}

// Get returns a cached feed and whether it was present
func (c *FeedCache) Get(ctx context.Context, viewerEmail string, limit int) ([]models.Listing, bool) {
	key, err := c.key(ctx, viewerEmail, limit)
	if err != nil {
		return nil, false
	}
	data, err := c.rdb.Get(ctx, key).Bytes()
	if err != nil {
		return nil, false
	}
	var listings []models.Listing
	if err := json.Unmarshal(data, &listings); err != nil {
		return nil, false
	}
	return listings, true
}

// Set stores a feed result under the current version
func (c *FeedCache) Set(ctx context.Context, viewerEmail string, limit int, listings []models.Listing) error {
	key, err := c.key(ctx, viewerEmail, limit)
	if err != nil {
		return err
	}
	data, err := json.Marshal(listings)
	if err != nil {
		return err
	}
	return c.rdb.Set(ctx, key, data, c.ttl).Err()
}

// Invalidate bumps the version counter, orphaning all cached feeds
func (c *FeedCache) Invalidate(ctx context.Context) error {
	return c.rdb.Incr(ctx, feedVersionKey).Err()
}
