package redis

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testClient(t *testing.T) *redis.Client {
	addr := os.Getenv("TEST_REDIS_ADDR")
	if testing.Short() || addr == "" {
		t.Skip("TEST_REDIS_ADDR not set")
	}
	c := redis.NewClient(&redis.Options{Addr: addr, DB: 15})
	require.NoError(t, c.Ping(context.Background()).Err())
	t.Cleanup(func() {
		c.FlushDB(context.Background())
		_ = c.Close()
	})
	return c
}

func TestCache(t *testing.T) {
	ctx := context.Background()
	c := NewCache(testClient(t), ListCachePrefix, time.Minute)

	_, ok, err := c.Get(ctx, "followers:1")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, c.Set(ctx, "followers:1", []byte("[2,3]")))
	v, ok, err := c.Get(ctx, "followers:1")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "[2,3]", string(v))

	require.NoError(t, c.Delete(ctx, "followers:1"))
	_, ok, err = c.Get(ctx, "followers:1")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestOfflineEvents(t *testing.T) {
	ctx := context.Background()
	o := NewOfflineEvents(testClient(t))

	require.NoError(t, o.Push(ctx, 7, []byte("a")))
	require.NoError(t, o.Push(ctx, 7, []byte("b")))

	events, err := o.Drain(ctx, 7)
	require.NoError(t, err)
	require.Len(t, events, 2)
	assert.Equal(t, "a", string(events[0]))
	assert.Equal(t, "b", string(events[1]))

	events, err = o.Drain(ctx, 7)
	require.NoError(t, err)
	assert.Empty(t, events)
}

func TestPresence(t *testing.T) {
	ctx := context.Background()
	p := NewPresence(testClient(t))

	online, err := p.IsOnline(ctx, 3)
	require.NoError(t, err)
	assert.False(t, online)

	require.NoError(t, p.SetOnline(ctx, 3))
	online, err = p.IsOnline(ctx, 3)
	require.NoError(t, err)
	assert.True(t, online)

	require.NoError(t, p.SetOffline(ctx, 3))
	online, err = p.IsOnline(ctx, 3)
	require.NoError(t, err)
	assert.False(t, online)
}
