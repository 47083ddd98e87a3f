package cache

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupCache(t *testing.T) *CounterCache {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	return NewCounterCache(client)
}

func TestIncrUserField(t *testing.T) {
	c := setupCache(t)
	ctx := context.Background()

	require.NoError(t, c.IncrUserField(ctx, 1, "followerCount", 1))
	require.NoError(t, c.IncrUserField(ctx, 1, "followerCount", 1))
	require.NoError(t, c.IncrUserField(ctx, 1, "followerCount", -1))

	vals, err := c.GetUserCounters(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, "1", vals["followerCount"])
}

func TestSetAndInvalidateUserCounters(t *testing.T) {
	c := setupCache(t)
	ctx := context.Background()

	require.NoError(t, c.SetUserCounters(ctx, 7, 10, 20, 30))
	vals, err := c.GetUserCounters(ctx, 7)
	require.NoError(t, err)
	assert.Equal(t, "10", vals["followerCount"])
	assert.Equal(t, "20", vals["followingCount"])
	assert.Equal(t, "30", vals["postCount"])

	require.NoError(t, c.InvalidateUser(ctx, 7))
	vals, err = c.GetUserCounters(ctx, 7)
	require.NoError(t, err)
	assert.Empty(t, vals, "missing key reads as empty map")
}

func TestIncrPostLikes(t *testing.T) {
	c := setupCache(t)
	ctx := context.Background()

	require.NoError(t, c.IncrPostLikes(ctx, 42, 1))
	require.NoError(t, c.IncrPostLikes(ctx, 42, 1))
	require.NoError(t, c.IncrPostLikes(ctx, 42, -1))

	got, err := c.client.Get(ctx, postKey(42)).Result()
	require.NoError(t, err)
	assert.Equal(t, "1", got)
}
