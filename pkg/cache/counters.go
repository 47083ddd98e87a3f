package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const counterTTL = 24 * time.Hour

// CounterCache is the write-through side channel for the denormalized
// counters surfaced to other users. The relational store stays authoritative;
// everything here is best effort and may lag by design.
type CounterCache struct {
	client *redis.Client
}

func NewCounterCache(client *redis.Client) *CounterCache {
	return &CounterCache{client: client}
}

func userKey(userID int64) string { return fmt.Sprintf("user:%d:counters", userID) }
func postKey(postID int64) string { return fmt.Sprintf("post:%d:likes", postID) }

// IncrUserField atomically bumps one cached user counter
// (followerCount / followingCount / postCount) by delta.
// HINCRBY keeps concurrent bumps from losing updates.
func (c *CounterCache) IncrUserField(ctx context.Context, userID int64, field string, delta int64) error {
	key := userKey(userID)
	pipe := c.client.Pipeline()
	pipe.HIncrBy(ctx, key, field, delta)
	pipe.Expire(ctx, key, counterTTL)
	_, err := pipe.Exec(ctx)
	return err
}

// GetUserCounters returns the cached counter hash; a missing key yields an
// empty map, which callers treat as "fall back to the aggregate query".
func (c *CounterCache) GetUserCounters(ctx context.Context, userID int64) (map[string]string, error) {
	return c.client.HGetAll(ctx, userKey(userID)).Result()
}

// SetUserCounters overwrites the cached hash with freshly aggregated values.
func (c *CounterCache) SetUserCounters(ctx context.Context, userID int64, followers, following, posts int64) error {
	key := userKey(userID)
	pipe := c.client.Pipeline()
	pipe.HSet(ctx, key,
		"followerCount", followers,
		"followingCount", following,
		"postCount", posts,
	)
	pipe.Expire(ctx, key, counterTTL)
	_, err := pipe.Exec(ctx)
	return err
}

// IncrPostLikes bumps the cached like counter for a post.
func (c *CounterCache) IncrPostLikes(ctx context.Context, postID int64, delta int64) error {
	key := postKey(postID)
	pipe := c.client.Pipeline()
	pipe.IncrBy(ctx, key, delta)
	pipe.Expire(ctx, key, counterTTL)
	_, err := pipe.Exec(ctx)
	return err
}

// InvalidateUser drops a user's cached counters (used on deactivation).
func (c *CounterCache) InvalidateUser(ctx context.Context, userID int64) error {
	return c.client.Del(ctx, userKey(userID)).Err()
}
