package views

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

// Config holds view cache settings
type Config struct {
	Prefix string
	TTL    time.Duration
}

func DefaultConfig() Config {
	return Config{
		Prefix: "view",
		TTL:    time.Hour,
	}
}

// Cache stores rendered pages in Redis. Every render of a path lives in one
// hash keyed by scope (a guest id or "anon"), so a path goes stale in a
// single DEL regardless of how many guests rendered it.
type Cache struct {
	client redis.Cmdable
	config Config
}

func New(client redis.Cmdable, config Config) *Cache {
	if config.Prefix == "" {
		config.Prefix = DefaultConfig().Prefix
	}
	if config.TTL <= 0 {
		config.TTL = DefaultConfig().TTL
	}
	return &Cache{client: client, config: config}
}

func (c *Cache) key(path string) string {
	return c.config.Prefix + ":" + path
}

// Get returns the cached render of path for scope, if any.
func (c *Cache) Get(ctx context.Context, path, scope string) ([]byte, bool, error) {
	body, err := c.client.HGet(ctx, c.key(path), scope).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return body, true, nil
}

// Put stores a render and refreshes the path's TTL.
func (c *Cache) Put(ctx context.Context, path, scope string, body []byte) error {
	key := c.key(path)
	_, err := c.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.HSet(ctx, key, scope, body)
		pipe.Expire(ctx, key, c.config.TTL)
		return nil
	})
	return err
}

// MarkStale drops every cached render of path.
func (c *Cache) MarkStale(ctx context.Context, path string) error {
	return c.client.Del(ctx, c.key(path)).Err()
}
