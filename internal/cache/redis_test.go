package cache

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/baharkarakas/blog-backend/internal/models"
)

func newTestCache(t *testing.T) (*miniredis.Miniredis, *PostCache) {
	t.Helper()
	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)

	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	return mr, NewPostCache(rdb, time.Minute, nil)
}

func TestPostCache_AsideCachesResult(t *testing.T) {
	ctx := context.Background()
	mr, c := newTestCache(t)

	calls := 0
	fetch := func(dest *models.Post) func() error {
		return func() error {
			calls++
			*dest = models.Post{ID: "p-1", Title: "T"}
			return nil
		}
	}

	var first models.Post
	require.NoError(t, c.Aside(ctx, PostKey("p-1"), &first, fetch(&first)))
	var second models.Post
	require.NoError(t, c.Aside(ctx, PostKey("p-1"), &second, fetch(&second)))

	assert.Equal(t, 1, calls)
	assert.Equal(t, "T", second.Title)
	assert.True(t, mr.Exists("posts:p-1"))
	assert.Equal(t, time.Minute, mr.TTL("posts:p-1"))
}

func TestPostCache_Invalidate(t *testing.T) {
	ctx := context.Background()
	mr, c := newTestCache(t)

	require.NoError(t, mr.Set(ListKey, "[]"))
	require.NoError(t, mr.Set(PostKey("p-1"), "{}"))

	c.Invalidate(ctx, ListKey, PostKey("p-1"))

	assert.False(t, mr.Exists(ListKey))
	assert.False(t, mr.Exists(PostKey("p-1")))
}

func TestPostCache_FetchErrorNotCached(t *testing.T) {
	ctx := context.Background()
	mr, c := newTestCache(t)

	boom := errors.New("db down")
	var dest []models.Post
	err := c.Aside(ctx, ListKey, &dest, func() error { return boom })

	assert.ErrorIs(t, err, boom)
	assert.False(t, mr.Exists(ListKey))
}

func TestPostCache_RedisDownFallsThrough(t *testing.T) {
	ctx := context.Background()
	mr, c := newTestCache(t)
	mr.Close()

	var dest models.Post
	err := c.Aside(ctx, PostKey("p-1"), &dest, func() error {
		dest = models.Post{ID: "p-1"}
		return nil
	})

	require.NoError(t, err)
	assert.Equal(t, "p-1", dest.ID)
}

func TestPostCache_NilIsNoop(t *testing.T) {
	var c *PostCache
	calls := 0
	var dest models.Post
	require.NoError(t, c.Aside(context.Background(), "k", &dest, func() error { calls++; return nil }))
	c.Invalidate(context.Background(), "k")

	assert.Equal(t, 1, calls)
	assert.NoError(t, c.Close())
}

func TestConnect(t *testing.T) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	defer mr.Close()

	for _, raw := range []string{mr.Addr(), "redis://" + mr.Addr() + "/0"} {
		client, err := Connect(context.Background(), raw)
		require.NoError(t, err, raw)
		_ = client.Close()
	}

	_, err = Connect(context.Background(), "redis://%zz")
	assert.Error(t, err)
}

func TestPostCache_FillDroppedWhenInvalidatedDuringFetch(t *testing.T) {
	ctx := context.Background()
	mr, c := newTestCache(t)

	var dest models.Post
	err := c.Aside(ctx, PostKey("p-1"), &dest, func() error {
		dest = models.Post{ID: "p-1", Title: "stale"}
		// a writer commits and invalidates after the row was read
		c.Invalidate(ctx, PostKey("p-1"), ListKey)
		return nil
	})

	require.NoError(t, err)
	assert.Equal(t, "stale", dest.Title)
	assert.False(t, mr.Exists(PostKey("p-1")))

	calls := 0
	var next models.Post
	require.NoError(t, c.Aside(ctx, PostKey("p-1"), &next, func() error {
		calls++
		next = models.Post{ID: "p-1", Title: "fresh"}
		return nil
	}))
	assert.Equal(t, 1, calls)
	assert.True(t, mr.Exists(PostKey("p-1")))
}

func TestPostCache_InvalidateBumpsGeneration(t *testing.T) {
	ctx := context.Background()
	mr, c := newTestCache(t)

	c.Invalidate(ctx, PostKey("p-1"))
	c.Invalidate(ctx, PostKey("p-1"))

	gen, err := mr.Get(genKey(PostKey("p-1")))
	require.NoError(t, err)
	assert.Equal(t, "2", gen)
	assert.Equal(t, time.Hour, mr.TTL(genKey(PostKey("p-1"))))
}
