package llm

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/abhisek/quizgenius/internal/logger"
)

// Cache stores serialized completions keyed by request fingerprint.
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, val []byte, ttl time.Duration) error
}

// RedisCache is a Cache backed by Redis.
type RedisCache struct {
	client *redis.Client
	prefix string
}

// NewRedisCache connects to the Redis instance at url (redis://host:port/db)
// and verifies it with a PING.
func NewRedisCache(ctx context.Context, url string) (*RedisCache, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}
	return &RedisCache{client: client, prefix: "quizgenius:llm:"}, nil
}

func (c *RedisCache) Get(ctx context.Context, key string) ([]byte, bool, error) {
	val, err := c.client.Get(ctx, c.prefix+key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return val, true, nil
}

func (c *RedisCache) Set(ctx context.Context, key string, val []byte, ttl time.Duration) error {
	return c.client.Set(ctx, c.prefix+key, val, ttl).Err()
}

// Close releases the Redis connection pool.
func (c *RedisCache) Close() error {
	return c.client.Close()
}

// CacheProvider serves repeated identical requests from a Cache. Cache
// failures are logged and never fail the call.
type CacheProvider struct {
	inner Provider
	cache Cache
	ttl   time.Duration
	log   *logger.Logger
}

// WithCache wraps p with a completion cache. A nil cache returns p as-is.
func WithCache(p Provider, cache Cache, ttl time.Duration, log *logger.Logger) Provider {
	if cache == nil {
		return p
	}
	if log == nil {
		log = logger.Nop()
	}
	return &CacheProvider{inner: p, cache: cache, ttl: ttl, log: log}
}

func (c *CacheProvider) Generate(ctx context.Context, req Request) (*Response, error) {
	key, err := cacheKey(c.inner.ModelID(), req)
	if err != nil {
		return c.inner.Generate(ctx, req)
	}

	if raw, ok, err := c.cache.Get(ctx, key); err != nil {
		c.log.Warn("llm cache get failed", "error", err)
	} else if ok {
		var entry cacheEntry
		if err := json.Unmarshal(raw, &entry); err == nil {
			return &Response{
				Content:    json.RawMessage(entry.Content),
				Usage:      entry.Usage,
				Model:      entry.Model,
				StopReason: entry.StopReason,
				Cached:     true,
			}, nil
		}
		c.log.Warn("llm cache entry undecodable", "key", key)
	}

	resp, err := c.inner.Generate(ctx, req)
	if err != nil {
		return nil, err
	}

	entry := cacheEntry{
		Content:    string(resp.Content),
		Usage:      resp.Usage,
		Model:      resp.Model,
		StopReason: resp.StopReason,
	}
	if raw, err := json.Marshal(entry); err == nil {
		if err := c.cache.Set(ctx, key, raw, c.ttl); err != nil {
			c.log.Warn("llm cache set failed", "error", err)
		}
	}
	return resp, nil
}

func (c *CacheProvider) ModelID() string {
	return c.inner.ModelID()
}

// cacheEntry keeps Content as a string since completions are not always JSON.
type cacheEntry struct {
	Content    string `json:"content"`
	Usage      Usage  `json:"usage"`
	Model      string `json:"model"`
	StopReason string `json:"stop_reason"`
}

func cacheKey(model string, req Request) (string, error) {
	b, err := json.Marshal(struct {
		Model string
		Req   Request
	}{model, req})
	if err != nil {
		return "", err
	}
	sum := sha256.Sum256(b)
	return hex.EncodeToString(sum[:]), nil
}
