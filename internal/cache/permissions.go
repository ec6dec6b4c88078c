package cache

import (
	"context"
	"fmt"
	"strconv"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/avelinov/parley/internal/events"
	"github.com/avelinov/parley/internal/permissions"
)

// DefaultPermissionTTL bounds how stale a cached mask can get when an
// invalidation is lost (process crash between DB commit and invalidation).
const DefaultPermissionTTL = 60 * time.Second

const permKeyPrefix = "perms"

// scanPageSize keeps invalidation scans paged so a large keyspace never
// blocks redis on a single call.
const scanPageSize = 100

// PermissionCache stores computed permission masks keyed by
// (guild, channel, user). It is purely an optimization layer: the repository
// and the resolver remain the source of truth at every moment.
type PermissionCache struct {
	rdb *goredis.Client
	ttl time.Duration
}

// NewPermissionCache creates a PermissionCache with the given entry TTL.
// A zero or negative ttl falls back to DefaultPermissionTTL.
func NewPermissionCache(client *Client, ttl time.Duration) *PermissionCache {
	if ttl <= 0 {
		ttl = DefaultPermissionTTL
	}
	return &PermissionCache{rdb: client.rdb, ttl: ttl}
}

func permKey(guildID, channelID, userID int64) string {
	return fmt.Sprintf("%s:%d:%d:%d", permKeyPrefix, guildID, channelID, userID)
}

// Get returns the cached mask for (guild, channel, user). The second return
// value reports a hit; a backend error is returned alongside a miss so the
// caller can log it and compute from source.
func (c *PermissionCache) Get(ctx context.Context, guildID, channelID, userID int64) (permissions.Permission, bool, error) {
	val, err := c.rdb.Get(ctx, permKey(guildID, channelID, userID)).Result()
	if err == goredis.Nil {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, fmt.Errorf("getting cached permissions: %w", err)
	}
	mask, err := strconv.ParseInt(val, 10, 64)
	if err != nil {
		return 0, false, fmt.Errorf("parsing cached permissions: %w", err)
	}
	return permissions.Permission(mask), true, nil
}

// Set stores a computed mask with the cache's TTL.
func (c *PermissionCache) Set(ctx context.Context, guildID, channelID, userID int64, mask permissions.Permission) error {
	key := permKey(guildID, channelID, userID)
	if err := c.rdb.Set(ctx, key, strconv.FormatInt(int64(mask), 10), c.ttl).Err(); err != nil {
		return fmt.Errorf("caching permissions: %w", err)
	}
	return nil
}

// InvalidateUser removes every cached entry for one user across all channels
// of a guild.
func (c *PermissionCache) InvalidateUser(ctx context.Context, guildID, userID int64) error {
	pattern := fmt.Sprintf("%s:%d:*:%d", permKeyPrefix, guildID, userID)
	return c.scanDelete(ctx, pattern)
}

// InvalidateChannel removes every cached entry for one channel of a guild.
func (c *PermissionCache) InvalidateChannel(ctx context.Context, guildID, channelID int64) error {
	pattern := fmt.Sprintf("%s:%d:%d:*", permKeyPrefix, guildID, channelID)
	return c.scanDelete(ctx, pattern)
}

// InvalidateGuild removes every cached entry for a guild.
func (c *PermissionCache) InvalidateGuild(ctx context.Context, guildID int64) error {
	pattern := fmt.Sprintf("%s:%d:*", permKeyPrefix, guildID)
	return c.scanDelete(ctx, pattern)
}

// InvalidateByEvent maps a mutation event to its invalidation scope:
//
//	role.created / role.updated / role.deleted / guild.deleted → entire guild
//	member_roles.updated / member.removed / member.banned → that user in the guild
//	channel_overwrite.updated / channel_overwrite.deleted → that channel in the guild
//
// Unknown event types fail safe to a full guild invalidation. Entries of
// other guilds, channels and users are never touched.
func (c *PermissionCache) InvalidateByEvent(ctx context.Context, typ events.Type, guildID, channelID, userID int64) error {
	switch typ {
	case events.TypeRoleCreated, events.TypeRoleUpdated, events.TypeRoleDeleted, events.TypeGuildDeleted:
		return c.InvalidateGuild(ctx, guildID)
	case events.TypeMemberRolesUpdated, events.TypeMemberRemoved, events.TypeMemberBanned:
		return c.InvalidateUser(ctx, guildID, userID)
	case events.TypeChannelOverwriteUpdated, events.TypeChannelOverwriteDeleted:
		return c.InvalidateChannel(ctx, guildID, channelID)
	default:
		return c.InvalidateGuild(ctx, guildID)
	}
}

// scanDelete removes all keys matching pattern using a cursor-paged SCAN.
// Deleting zero keys is not an error.
func (c *PermissionCache) scanDelete(ctx context.Context, pattern string) error {
	var cursor uint64
	for {
		keys, next, err := c.rdb.Scan(ctx, cursor, pattern, scanPageSize).Result()
		if err != nil {
			return fmt.Errorf("scanning cache keys: %w", err)
		}
		if len(keys) > 0 {
			if err := c.rdb.Del(ctx, keys...).Err(); err != nil {
				return fmt.Errorf("deleting cache keys: %w", err)
			}
		}
		cursor = next
		if cursor == 0 {
			return nil
		}
	}
}
