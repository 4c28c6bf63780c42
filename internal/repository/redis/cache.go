package redis

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/singleflight"
)

// Cache is a small JSON cache for coupon price quotes. Concurrent loads of a
// cold key collapse into a single upstream call.
type Cache struct {
	rdb *redis.Client
	sf  singleflight.Group
}

func NewCache(client *redis.Client) *Cache {
	return &Cache{rdb: client}
}

func getJSON[T any](ctx context.Context, c *Cache, key string) (T, bool, error) {
	var out T

	b, err := c.rdb.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return out, false, nil
	}
	if err != nil {
		return out, false, err
	}

	if err := json.Unmarshal(b, &out); err != nil {
		return out, false, err
	}

	return out, true, nil
}

func setJSON(ctx context.Context, c *Cache, key string, val any, ttl time.Duration) error {
	b, err := json.Marshal(val)
	if err != nil {
		return err
	}

	return c.rdb.Set(ctx, key, b, ttl).Err()
}

// GetOrSetJSON answers key from the cache, falling back to loader. The load
// runs once per key regardless of how many callers race; loader errors are
// returned but never cached.
func GetOrSetJSON[T any](
	ctx context.Context,
	c *Cache,
	key string,
	ttl time.Duration,
	loader func(ctx context.Context) (T, error),
) (T, error) {
	if v, ok, err := getJSON[T](ctx, c, key); err != nil || ok {
		return v, err
	}

	got, err, _ := c.sf.Do(key, func() (any, error) {
		// Re-check under singleflight: another caller may have filled the
		// key while we waited.
		if v, ok, err := getJSON[T](ctx, c, key); err != nil || ok {
			return v, err
		}

		v, err := loader(ctx)
		if err != nil {
			return nil, err
		}
		_ = setJSON(ctx, c, key, v, ttl)

		return v, nil
	})

	var zero T
	if err != nil {
		return zero, err
	}

	v, ok := got.(T)
	if !ok {
		return zero, errors.New("cache: unexpected value type")
	}

	return v, nil
}
