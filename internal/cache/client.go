package cache

import (
	"context"
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"
)

// Client wraps a Redis connection shared by the permission cache, the event
// bus and the rate limiter.
type Client struct {
	rdb *goredis.Client
}

// NewClient creates a Redis client from a URL and verifies the connection.
func NewClient(redisURL string) (*Client, error) {
	opts, err := goredis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("parsing redis URL: %w", err)
	}
	rdb := goredis.NewClient(opts)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("connecting to redis: %w", err)
	}
	return &Client{rdb: rdb}, nil
}

// Ping checks the Redis connection.
func (c *Client) Ping(ctx context.Context) error {
	return c.rdb.Ping(ctx).Err()
}

// Close closes the Redis connection.
func (c *Client) Close() error {
	return c.rdb.Close()
}

// Redis exposes the underlying connection for collaborators that speak
// redis directly, such as the event bus.
func (c *Client) Redis() *goredis.Client {
	return c.rdb
}

// rateLimitScript atomically increments a counter, sets its TTL on first use
// and returns the count together with the remaining window in milliseconds.
var rateLimitScript = goredis.NewScript(`
local count = redis.call("INCR", KEYS[1])
if count == 1 then
    redis.call("PEXPIRE", KEYS[1], ARGV[1])
end
local ttl = redis.call("PTTL", KEYS[1])
return {count, ttl}
`)

// CheckRateLimit runs a fixed-window counter for key. It returns whether the
// request is allowed, the current count and the window's remaining TTL in
// milliseconds.
func (c *Client) CheckRateLimit(ctx context.Context, key string, limit int, window time.Duration) (bool, int64, int64, error) {
	res, err := rateLimitScript.Run(ctx, c.rdb, []string{key}, window.Milliseconds()).Int64Slice()
	if err != nil {
		return false, 0, 0, fmt.Errorf("checking rate limit: %w", err)
	}
	if len(res) != 2 {
		return false, 0, 0, fmt.Errorf("checking rate limit: unexpected script reply %v", res)
	}
	count, ttlMs := res[0], res[1]
	return count <= int64(limit), count, ttlMs, nil
}
