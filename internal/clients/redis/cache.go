package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/emaratgreen/esg-backend/internal/logger"
	"github.com/emaratgreen/esg-backend/internal/utils"
)

// Cache is a thin JSON cache over redis. A nil Cache is valid and disables
// caching, so callers never branch on availability.
type Cache struct {
	client *goredis.Client
	log    *logger.Logger
}

func NewCache(log *logger.Logger) (*Cache, error) {
	cacheLog := log.With("client", "RedisCache")
	addr := utils.GetEnv("REDIS_ADDR", "", cacheLog)
	if addr == "" {
		cacheLog.Info("REDIS_ADDR not set, caching disabled")
		return nil, nil
	}
	client := goredis.NewClient(&goredis.Options{
		Addr:     addr,
		Password: utils.GetEnv("REDIS_PASSWORD", "", cacheLog),
		DB:       utils.GetEnvAsInt("REDIS_DB", 0, cacheLog),
	})
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("pinging redis at %s: %w", addr, err)
	}
	cacheLog.Info("Connected to redis", "addr", addr)
	return &Cache{client: client, log: cacheLog}, nil
}

// Get unmarshals the cached value into dest. The bool reports a hit.
func (c *Cache) Get(ctx context.Context, key string, dest interface{}) (bool, error) {
	if c == nil {
		return false, nil
	}
	raw, err := c.client.Get(ctx, key).Bytes()
	if err == goredis.Nil {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	if err := json.Unmarshal(raw, dest); err != nil {
		return false, err
	}
	return true, nil
}

func (c *Cache) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	if c == nil {
		return nil
	}
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, key, raw, ttl).Err()
}

func (c *Cache) Delete(ctx context.Context, keys ...string) error {
	if c == nil || len(keys) == 0 {
		return nil
	}
	return c.client.Del(ctx, keys...).Err()
}

// DeleteByPrefix removes every key under prefix. Used to invalidate a
// company's dashboard entries after a write.
func (c *Cache) DeleteByPrefix(ctx context.Context, prefix string) error {
	if c == nil {
		return nil
	}
	iter := c.client.Scan(ctx, 0, prefix+"*", 0).Iterator()
	var keys []string
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		return err
	}
	if len(keys) == 0 {
		return nil
	}
	return c.client.Del(ctx, keys...).Err()
}

func (c *Cache) Close() error {
	if c == nil {
		return nil
	}
	return c.client.Close()
}
