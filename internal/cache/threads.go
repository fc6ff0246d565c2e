// Package cache provides a best-effort Redis cache for flat thread listings.
package cache

import (
	"context"
	"encoding/json"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/example/discussion-service/internal/store"
)

// ThreadCache caches ListByThread results per (thread, limit) behind a
// per-thread version counter; bumping the version on any write invalidates
// every cached page of that thread at once. A nil *ThreadCache is a safe
// no-op, so the service runs without Redis.
type ThreadCache struct {
	client *redis.Client
	ttl    time.Duration
}

func New(url string, ttl time.Duration) (*ThreadCache, error) {
	opt, err := redis.ParseURL(url)
	if err != nil {
		return nil, err
	}
	return &ThreadCache{client: redis.NewClient(opt), ttl: ttl}, nil
}

func versionKey(threadID string) string {
	return "discussion:thread:" + threadID + ":ver"
}

func (c *ThreadCache) listKey(ctx context.Context, threadID string, limit int) string {
	ver, err := c.client.Get(ctx, versionKey(threadID)).Result()
	if err != nil {
		ver = "0"
	}
	return "discussion:thread:" + threadID + ":v" + ver + ":limit:" + strconv.Itoa(limit)
}

// Get returns the cached listing, or false on miss or any Redis error.
func (c *ThreadCache) Get(ctx context.Context, threadID string, limit int) ([]store.Comment, bool) {
	if c == nil {
		return nil, false
	}
	val, err := c.client.Get(ctx, c.listKey(ctx, threadID, limit)).Result()
	if err != nil {
		return nil, false
	}
	var comments []store.Comment
	if err := json.Unmarshal([]byte(val), &comments); err != nil {
		return nil, false
	}
	return comments, true
}

// Set stores a listing best-effort; errors are dropped.
func (c *ThreadCache) Set(ctx context.Context, threadID string, limit int, comments []store.Comment) {
	if c == nil {
		return
	}
	b, err := json.Marshal(comments)
	if err != nil {
		return
	}
	_ = c.client.Set(ctx, c.listKey(ctx, threadID, limit), b, c.ttl).Err()
}

// Invalidate bumps the thread's version so all cached pages go stale.
func (c *ThreadCache) Invalidate(ctx context.Context, threadID string) {
	if c == nil {
		return
	}
	_ = c.client.Incr(ctx, versionKey(threadID)).Err()
}
