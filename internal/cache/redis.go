package cache

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/avelin/pairwise/internal/config"
)

// ErrMiss is returned by Get when the key is absent.
var ErrMiss = errors.New("cache miss")

type RedisCache struct {
	Client *redis.Client
}

// NewRedisCache initializes Redis client from config.
// Only Addr is mandatory, Password/DB are optional.
func NewRedisCache(cfg *config.Config) *RedisCache {
	opts := &redis.Options{
		Addr: cfg.Redis.Addr,
	}
	if cfg.Redis.Password != "" {
		opts.Password = cfg.Redis.Password
	}
	if cfg.Redis.DB != 0 {
		opts.DB = cfg.Redis.DB
	}
	return &RedisCache{Client: redis.NewClient(opts)}
}

func (c *RedisCache) Ping(ctx context.Context) error {
	return c.Client.Ping(ctx).Err()
}

func (c *RedisCache) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	return c.Client.Set(ctx, key, value, ttl).Err()
}

// Get returns the cached string for key, or ErrMiss when absent.
func (c *RedisCache) Get(ctx context.Context, key string) (string, error) {
	val, err := c.Client.Get(ctx, key).Result()
	if errors.Is(err, redis.Nil) {
		return "", ErrMiss
	}
	return val, err
}

func (c *RedisCache) Del(ctx context.Context, key string) error {
	return c.Client.Del(ctx, key).Err()
}

// KeyForClientList generates the Redis key for a cached directory
// listing. digest is the canonical hash of the listing parameters.
func (c *RedisCache) KeyForClientList(digest string) string {
	return "clients:list:" + digest
}

// KeyForLikeQuota generates the Redis key for a liker's daily-quota
// counter.
func (c *RedisCache) KeyForLikeQuota(likerID uint64) string {
	return fmt.Sprintf("likes:quota:%d", likerID)
}

// GetLikeQuota returns the cached daily like count for a liker.
// A miss is reported as (0, ErrMiss), not an error worth logging.
func (c *RedisCache) GetLikeQuota(ctx context.Context, likerID uint64) (int64, error) {
	val, err := c.Get(ctx, c.KeyForLikeQuota(likerID))
	if err != nil {
		return 0, err
	}
	return strconv.ParseInt(val, 10, 64)
}

// SetLikeQuota stores the daily like count for a liker with a TTL.
func (c *RedisCache) SetLikeQuota(ctx context.Context, likerID uint64, count int64, ttl time.Duration) error {
	return c.Set(ctx, c.KeyForLikeQuota(likerID), count, ttl)
}

// IncrLikeQuota bumps the cached daily like count after a successful
// insert and refreshes the TTL. A missing key stays missing so the
// next check recounts from the store.
func (c *RedisCache) IncrLikeQuota(ctx context.Context, likerID uint64, ttl time.Duration) error {
	key := c.KeyForLikeQuota(likerID)
	exists, err := c.Client.Exists(ctx, key).Result()
	if err != nil || exists == 0 {
		return err
	}
	if err := c.Client.Incr(ctx, key).Err(); err != nil {
		return err
	}
	return c.Client.Expire(ctx, key, ttl).Err()
}
