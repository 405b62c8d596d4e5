package gym

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestQueryCacheExpires(t *testing.T) {
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	cache := NewQueryCache(time.Minute)
	cache.now = func() time.Time { return now }

	cache.Set("plans", 1)
	value, ok := cache.Get("plans")
	require.True(t, ok)
	assert.Equal(t, 1, value)

	now = now.Add(2 * time.Minute)
	_, ok = cache.Get("plans")
	assert.False(t, ok)
	assert.Zero(t, cache.Len())
}

func TestQueryCacheInvalidateByPrefix(t *testing.T) {
	cache := NewQueryCache(time.Minute)
	cache.Set("members:abc", 1)
	cache.Set("member:m1", 2)
	cache.Set("plans", 3)

	assert.Equal(t, 2, cache.Invalidate("member"))
	_, ok := cache.Get("plans")
	assert.True(t, ok)

	assert.Equal(t, 1, cache.Invalidate())
	assert.Zero(t, cache.Len())
}

func TestQueryCacheDisabled(t *testing.T) {
	cache := NewQueryCache(0)
	cache.Set("plans", 1)
	_, ok := cache.Get("plans")
	assert.False(t, ok)

	var nilCache *QueryCache
	assert.Zero(t, nilCache.Invalidate())
	_, ok = nilCache.Get("plans")
	assert.False(t, ok)
}

func TestLoadCachedOnlyStoresSuccess(t *testing.T) {
	cache := NewQueryCache(time.Minute)
	calls := 0
	load := func(context.Context) (string, error) {
		calls++
		if calls == 1 {
			return "", assert.AnError
		}
		return "ok", nil
	}

	_, err := loadCached(context.Background(), cache, "k", load)
	require.ErrorIs(t, err, assert.AnError)
	value, err := loadCached(context.Background(), cache, "k", load)
	require.NoError(t, err)
	assert.Equal(t, "ok", value)
	value, err = loadCached(context.Background(), cache, "k", load)
	require.NoError(t, err)
	assert.Equal(t, "ok", value)
	assert.Equal(t, 2, calls)
}

func TestQueryKeyIsDeterministic(t *testing.T) {
	a := queryKey("members", MemberQuery{Status: "Active", Limit: 10})
	b := queryKey("members", MemberQuery{Status: "Active", Limit: 10})
	c := queryKey("members", MemberQuery{Status: "Expired", Limit: 10})
	assert.Equal(t, a, b)
	assert.NotEqual(t, a, c)
	assert.Equal(t, "plans", queryKey("plans", nil))
	assert.Equal(t, "plans", queryKey("plans", map[string]string{}))
}
