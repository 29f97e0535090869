package cache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRedis(t *testing.T) *redis.Client {
	t.Helper()
	mr := miniredis.RunT(t)
	return redis.NewClient(&redis.Options{Addr: mr.Addr()})
}

func TestGetSetJSON(t *testing.T) {
	ctx := context.Background()
	rdb := newTestRedis(t)

	type payload struct {
		Name string `json:"name"`
	}

	found, err := GetJSON(ctx, rdb, "missing", &payload{})
	require.NoError(t, err)
	assert.False(t, found)

	require.NoError(t, SetJSON(ctx, rdb, "p", payload{Name: "alice"}, time.Minute))

	var got payload
	found, err = GetJSON(ctx, rdb, "p", &got)
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, "alice", got.Name)
}

func TestCacheAside(t *testing.T) {
	ctx := context.Background()
	rdb := newTestRedis(t)

	calls := 0
	fetch := func(dest *[]string) func() error {
		return func() error {
			calls++
			*dest = []string{"a", "b"}
			return nil
		}
	}

	var first []string
	require.NoError(t, CacheAside(ctx, rdb, "list", &first, time.Minute, fetch(&first)))
	assert.Equal(t, 1, calls)
	assert.Equal(t, []string{"a", "b"}, first)

	// Second read is served from the cache
	var second []string
	require.NoError(t, CacheAside(ctx, rdb, "list", &second, time.Minute, fetch(&second)))
	assert.Equal(t, 1, calls)
	assert.Equal(t, []string{"a", "b"}, second)

	// Invalidation forces a refetch
	Invalidate(ctx, rdb, "list")
	var third []string
	require.NoError(t, CacheAside(ctx, rdb, "list", &third, time.Minute, fetch(&third)))
	assert.Equal(t, 2, calls)
}

func TestNilClientIsDisabledCache(t *testing.T) {
	ctx := context.Background()

	found, err := GetJSON(ctx, nil, "k", &struct{}{})
	require.NoError(t, err)
	assert.False(t, found)

	require.NoError(t, SetJSON(ctx, nil, "k", "v", time.Minute))
	Invalidate(ctx, nil, "k")

	calls := 0
	var out string
	require.NoError(t, CacheAside(ctx, nil, "k", &out, time.Minute, func() error {
		calls++
		out = "fresh"
		return nil
	}))
	require.NoError(t, CacheAside(ctx, nil, "k", &out, time.Minute, func() error {
		calls++
		return nil
	}))
	assert.Equal(t, 2, calls)
}
