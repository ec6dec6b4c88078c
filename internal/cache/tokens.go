package cache

import (
	"context"
	"fmt"
	"strconv"
	"time"

	goredis "github.com/redis/go-redis/v9"
)

const refreshTokenPrefix = "refresh:"

// StoreRefreshToken maps an opaque refresh token to a user ID with an expiry.
func (c *Client) StoreRefreshToken(ctx context.Context, token string, userID int64, expiry time.Duration) error {
	return c.rdb.Set(ctx, refreshTokenPrefix+token, userID, expiry).Err()
}

// GetRefreshTokenUserID returns the user ID associated with a refresh token.
func (c *Client) GetRefreshTokenUserID(ctx context.Context, token string) (int64, error) {
	val, err := c.rdb.Get(ctx, refreshTokenPrefix+token).Result()
	if err == goredis.Nil {
		return 0, fmt.Errorf("refresh token not found")
	}
	if err != nil {
		return 0, fmt.Errorf("getting refresh token: %w", err)
	}

	userID, err := strconv.ParseInt(val, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("parsing user ID: %w", err)
	}
	return userID, nil
}

// DeleteRefreshToken removes a refresh token.
func (c *Client) DeleteRefreshToken(ctx context.Context, token string) error {
	return c.rdb.Del(ctx, refreshTokenPrefix+token).Err()
}
