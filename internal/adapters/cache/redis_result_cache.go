package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"cash-routing-service/internal/domain"
	"cash-routing-service/internal/platform/obs"

	redis "github.com/redis/go-redis/v9"
)

// RedisResultCache stores solved results as JSON under "cashplan:result:<fingerprint>".
type RedisResultCache struct {
	rdb *redis.Client
	ttl time.Duration
}

// NewRedisResultCache connects to url (redis://...). A zero ttl keeps entries
// until they are evicted.
func NewRedisResultCache(url string, ttl time.Duration) (*RedisResultCache, error) {
	opt, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("redis result cache: parse url: %w", err)
	}
	return NewRedisResultCacheWithClient(redis.NewClient(opt), ttl), nil
}

func NewRedisResultCacheWithClient(rdb *redis.Client, ttl time.Duration) *RedisResultCache {
	return &RedisResultCache{rdb: rdb, ttl: ttl}
}

func (c *RedisResultCache) GetResult(ctx context.Context, fingerprint string) (_ *domain.SolveResult, _ bool, err error) {
	defer obs.Time(ctx, "result.cache.redis.Get")(&err)

	if fingerprint == "" {
		return nil, false, errors.New("get result cache: fingerprint must not be empty")
	}

	data, err := c.rdb.Get(ctx, c.key(fingerprint)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("get result cache: %w", err)
	}

	var res domain.SolveResult
	if err := json.Unmarshal(data, &res); err != nil {
		return nil, false, fmt.Errorf("get result cache: decode %s: %w", fingerprint, err)
	}
	return &res, true, nil
}

func (c *RedisResultCache) PutResult(ctx context.Context, fingerprint string, res *domain.SolveResult) (err error) {
	defer obs.Time(ctx, "result.cache.redis.Put")(&err)

	if fingerprint == "" || res == nil {
		return errors.New("put result cache: fingerprint and result are required")
	}

	data, err := json.Marshal(res)
	if err != nil {
		return fmt.Errorf("put result cache: encode: %w", err)
	}
	if err := c.rdb.Set(ctx, c.key(fingerprint), data, c.ttl).Err(); err != nil {
		return fmt.Errorf("put result cache: %w", err)
	}
	return nil
}

func (c *RedisResultCache) Close() error {
	return c.rdb.Close()
}

func (c *RedisResultCache) key(fingerprint string) string { return "cashplan:result:" + fingerprint }
