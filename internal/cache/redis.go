// Package cache is a best-effort Redis read-through cache for public post
// reads. A nil *PostCache, or one without a client, is a valid no-op cache.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/baharkarakas/blog-backend/internal/metrics"
)

const ListKey = "posts:list"

func PostKey(id string) string { return "posts:" + id }

// Connect accepts either host:port or a redis:// URL and pings the server.
func Connect(ctx context.Context, raw string) (*redis.Client, error) {
	var opts *redis.Options
	if strings.Contains(raw, "://") {
		parsed, err := redis.ParseURL(raw)
		if err != nil {
			return nil, err
		}
		opts = parsed
	} else {
		opts = &redis.Options{Addr: raw}
	}
	client := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, err
	}
	return client, nil
}

type PostCache struct {
	rdb *redis.Client
	ttl time.Duration
	log *slog.Logger
}

func NewPostCache(rdb *redis.Client, ttl time.Duration, log *slog.Logger) *PostCache {
	if log == nil {
		log = slog.Default()
	}
	return &PostCache{rdb: rdb, ttl: ttl, log: log}
}

func (c *PostCache) enabled() bool { return c != nil && c.rdb != nil }

func (c *PostCache) getJSON(ctx context.Context, key string, dest any) (bool, error) {
	s, err := c.rdb.Get(ctx, key).Result()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	if err := json.Unmarshal([]byte(s), dest); err != nil {
		return false, err
	}
	return true, nil
}

// genKey counts invalidations of key. A fill only lands if the count did
// not move while the value was being fetched.
func genKey(key string) string { return key + ":gen" }

// generation returns the invalidation count for key, 0 if never invalidated.
func (c *PostCache) generation(ctx context.Context, key string) (int64, error) {
	n, err := c.rdb.Get(ctx, genKey(key)).Int64()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	return n, err
}

// setIfGeneration stores v under key unless an invalidation ran since gen
// was read. It reports whether the value was written.
func (c *PostCache) setIfGeneration(ctx context.Context, key string, gen int64, v any) (bool, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return false, err
	}
	written := false
	err = c.rdb.Watch(ctx, func(tx *redis.Tx) error {
		cur, err := tx.Get(ctx, genKey(key)).Int64()
		if err != nil && !errors.Is(err, redis.Nil) {
			return err
		}
		if cur != gen {
			return nil
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, key, b, c.ttl)
			return nil
		})
		if err != nil {
			return err
		}
		written = true
		return nil
	}, genKey(key))
	if errors.Is(err, redis.TxFailedErr) {
		// an invalidation committed between WATCH and EXEC
		return false, nil
	}
	return written, err
}

// Aside serves key from Redis when present, otherwise calls fetch (which
// must fill dest) and stores the result. Redis errors fall through to fetch.
// A fill that races with Invalidate is dropped rather than cached.
func (c *PostCache) Aside(ctx context.Context, key string, dest any, fetch func() error) error {
	if !c.enabled() {
		return fetch()
	}
	found, err := c.getJSON(ctx, key, dest)
	switch {
	case err != nil:
		metrics.CacheLookups.WithLabelValues("error").Inc()
		c.log.Warn("cache get", "key", key, "err", err)
	case found:
		metrics.CacheLookups.WithLabelValues("hit").Inc()
		return nil
	default:
		metrics.CacheLookups.WithLabelValues("miss").Inc()
	}

	gen, genErr := c.generation(ctx, key)
	if err := fetch(); err != nil {
		return err
	}
	if genErr != nil {
		return nil
	}
	if ok, err := c.setIfGeneration(ctx, key, gen, dest); err != nil {
		c.log.Warn("cache set", "key", key, "err", err)
	} else if !ok {
		c.log.Debug("cache fill dropped, key invalidated during fetch", "key", key)
	}
	return nil
}

// Invalidate bumps each key's generation, then deletes it, in one
// transaction.
func (c *PostCache) Invalidate(ctx context.Context, keys ...string) {
	if !c.enabled() || len(keys) == 0 {
		return
	}
	_, err := c.rdb.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		for _, k := range keys {
			pipe.Incr(ctx, genKey(k))
			pipe.Expire(ctx, genKey(k), c.genTTL())
		}
		pipe.Del(ctx, keys...)
		return nil
	})
	if err != nil {
		c.log.Warn("cache invalidate", "keys", keys, "err", err)
	}
}

// genTTL is how long an invalidation counter lives: ten cache TTLs, at
// least an hour.
func (c *PostCache) genTTL() time.Duration {
	if d := 10 * c.ttl; d > time.Hour {
		return d
	}
	return time.Hour
}

func (c *PostCache) Close() error {
	if !c.enabled() {
		return nil
	}
	return c.rdb.Close()
}
