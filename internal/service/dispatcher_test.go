package service

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/d60-Lab/placefeed/pkg/cache"
)

func TestAsyncDispatcherCounterWrites(t *testing.T) {
	mr := miniredis.RunT(t)
	counters := cache.NewCounterCache(redis.NewClient(&redis.Options{Addr: mr.Addr()}))

	d := NewAsyncDispatcher(LogPushSender{}, counters, 100)
	stop := d.Start(2)
	defer stop(context.Background())

	d.IncrUserCounter(1, "followerCount", 1)
	d.IncrUserCounter(1, "followerCount", 1)
	d.IncrPostLikes(9, 1)

	require.Eventually(t, func() bool {
		vals, err := counters.GetUserCounters(context.Background(), 1)
		return err == nil && vals["followerCount"] == "2"
	}, 2*time.Second, 10*time.Millisecond)

	d.InvalidateUserCounters(1)
	require.Eventually(t, func() bool {
		vals, err := counters.GetUserCounters(context.Background(), 1)
		return err == nil && len(vals) == 0
	}, 2*time.Second, 10*time.Millisecond)
}

func TestAsyncDispatcherQueueFullDrops(t *testing.T) {
	// worker 未启动，队列装满后继续入队不能阻塞
	d := NewAsyncDispatcher(LogPushSender{}, nil, 2)
	done := make(chan struct{})
	go func() {
		for i := 0; i < 10; i++ {
			d.NotifyFollow(1, 2)
		}
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("enqueue blocked on a full queue")
	}
	assert.Equal(t, 2, d.QueueLen())
}
