package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	"hotel-curator/internal/domain"
	"hotel-curator/internal/infra/metrics"
)

const (
	redisBackend   = "redis"
	redisKeyPrefix = "hotel-curator:content:"
)

// RedisContentCache shares static hotel content between replicas. Redis failures degrade
// to cache misses.
type RedisContentCache struct {
	client *redis.Client
	ttl    time.Duration
	logger *slog.Logger
}

func NewRedisContentCache(client *redis.Client, ttl time.Duration, logger *slog.Logger) *RedisContentCache {
	return &RedisContentCache{client: client, ttl: ttl, logger: logger}
}

// NewRedisClient builds a client from a redis:// URL.
func NewRedisClient(url string) (*redis.Client, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	return redis.NewClient(opts), nil
}

var _ domain.ContentCache = (*RedisContentCache)(nil)

func (c *RedisContentCache) Get(ctx context.Context, hid int64, language string) (domain.RawContent, bool) {
	raw, err := c.client.Get(ctx, redisKeyPrefix+contentKey(hid, language)).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			c.logger.WarnContext(ctx, "content cache read failed", slog.Int64("hid", hid), slog.String("error", err.Error()))
		}
		metrics.RecordCacheLookup(redisBackend, false)
		return domain.RawContent{}, false
	}
	var content domain.RawContent
	if err := json.Unmarshal(raw, &content); err != nil {
		c.logger.WarnContext(ctx, "content cache entry corrupt", slog.Int64("hid", hid), slog.String("error", err.Error()))
		metrics.RecordCacheLookup(redisBackend, false)
		return domain.RawContent{}, false
	}
	metrics.RecordCacheLookup(redisBackend, true)
	return content, true
}

func (c *RedisContentCache) Set(ctx context.Context, language string, content domain.RawContent) {
	raw, err := json.Marshal(content)
	if err != nil {
		return
	}
	if err := c.client.Set(ctx, redisKeyPrefix+contentKey(content.HID, language), raw, c.ttl).Err(); err != nil {
		c.logger.WarnContext(ctx, "content cache write failed", slog.Int64("hid", content.HID), slog.String("error", err.Error()))
	}
}

// Ping checks connectivity for the readiness endpoint.
func (c *RedisContentCache) Ping(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}
