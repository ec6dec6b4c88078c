package service

import (
	"context"
	"log/slog"

	"github.com/avelinov/parley/internal/cache"
	"github.com/avelinov/parley/internal/events"
	"github.com/avelinov/parley/internal/models"
	"github.com/avelinov/parley/internal/permissions"
)

// PermissionService is the cache-aware facade over RoleService. Reads go
// through the permission cache; every write that can change an evaluation
// result invalidates the affected cache scope and publishes the mutation on
// the event bus, synchronously, before the call returns.
//
// Cache and bus failures never fail the write: the database is the source of
// truth and a missed invalidation heals itself when the TTL expires. They are
// logged and swallowed. Both cache and bus may be nil, which turns the
// service into a plain pass-through to RoleService.
type PermissionService struct {
	roles  *RoleService
	cache  *cache.PermissionCache
	bus    events.Bus
	logger *slog.Logger
}

// NewPermissionService creates a PermissionService. cache and bus may be nil.
func NewPermissionService(roles *RoleService, c *cache.PermissionCache, bus events.Bus, logger *slog.Logger) *PermissionService {
	if logger == nil {
		logger = slog.Default()
	}
	return &PermissionService{roles: roles, cache: c, bus: bus, logger: logger}
}

// fanout invalidates the cache scope for the event and then publishes it.
// Invalidation runs first so that a subscriber reacting to the event cannot
// observe a stale entry this process was still about to delete.
func (s *PermissionService) fanout(ctx context.Context, typ events.Type, guildID, channelID, userID int64) {
	if s.cache != nil {
		if err := s.cache.InvalidateByEvent(ctx, typ, guildID, channelID, userID); err != nil {
			s.logger.Error("permission cache invalidation failed",
				"event", typ, "guild_id", guildID, "error", err)
		}
	}
	if s.bus != nil {
		if err := s.bus.Publish(ctx, events.New(typ, guildID, channelID, userID)); err != nil {
			s.logger.Error("event publish failed",
				"event", typ, "guild_id", guildID, "error", err)
		}
	}
}

// GetPermissions returns the member's effective permissions in a channel,
// serving from cache when possible. A cache read error counts as a miss.
func (s *PermissionService) GetPermissions(ctx context.Context, userID, channelID int64) (permissions.Permission, error) {
	var guildID int64
	if s.cache != nil {
		ch, err := s.roles.channels.GetByID(ctx, channelID)
		if err != nil {
			return 0, Internal("INTERNAL", "internal server error")
		}
		if ch == nil {
			return 0, ChannelNotFound()
		}
		guildID = ch.GuildID

		mask, ok, err := s.cache.Get(ctx, guildID, channelID, userID)
		if err != nil {
			s.logger.Warn("permission cache read failed",
				"guild_id", guildID, "channel_id", channelID, "error", err)
		} else if ok {
			return mask, nil
		}
	}

	mask, err := s.roles.ComputeChannelPermissions(ctx, userID, channelID)
	if err != nil {
		return 0, err
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, guildID, channelID, userID, mask); err != nil {
			s.logger.Warn("permission cache write failed",
				"guild_id", guildID, "channel_id", channelID, "error", err)
		}
	}
	return mask, nil
}

// RequireChannelPermission resolves the member's effective permissions and
// fails with a forbidden error naming the missing permission.
func (s *PermissionService) RequireChannelPermission(ctx context.Context, userID, channelID int64, perm permissions.Permission) error {
	mask, err := s.GetPermissions(ctx, userID, channelID)
	if err != nil {
		return err
	}
	if !mask.Has(perm) {
		return MissingPermission(perm)
	}
	return nil
}

// RequireGuildPermission gates guild-level operations on the member's base
// permissions. Base permissions are cheap to compute and depend on no
// channel, so this path is uncached.
func (s *PermissionService) RequireGuildPermission(ctx context.Context, userID, guildID int64, perm permissions.Permission) error {
	mask, err := s.roles.ComputeGuildPermissions(ctx, userID, guildID)
	if err != nil {
		return err
	}
	if !mask.Has(perm) {
		return MissingPermission(perm)
	}
	return nil
}

// GetMemberRoles exposes the underlying role list, @everyone included.
func (s *PermissionService) GetMemberRoles(ctx context.Context, guildID, userID int64) ([]models.Role, error) {
	return s.roles.GetMemberRoles(ctx, guildID, userID)
}

// ListRoles exposes the guild's roles ordered by position.
func (s *PermissionService) ListRoles(ctx context.Context, guildID int64) ([]models.Role, error) {
	return s.roles.ListRoles(ctx, guildID)
}

func (s *PermissionService) CreateRole(ctx context.Context, guildID int64, name string, permBits int64, color int) (*models.Role, error) {
	role, err := s.roles.CreateRole(ctx, guildID, name, permBits, color)
	if err != nil {
		return nil, err
	}
	s.fanout(ctx, events.TypeRoleCreated, guildID, 0, 0)
	return role, nil
}

func (s *PermissionService) UpdateRole(ctx context.Context, guildID, roleID int64, name *string, permBits *int64, color *int) (*models.Role, error) {
	role, err := s.roles.UpdateRole(ctx, guildID, roleID, name, permBits, color)
	if err != nil {
		return nil, err
	}
	s.fanout(ctx, events.TypeRoleUpdated, role.GuildID, 0, 0)
	return role, nil
}

func (s *PermissionService) DeleteRole(ctx context.Context, guildID, roleID int64) error {
	role, err := s.roles.DeleteRole(ctx, guildID, roleID)
	if err != nil {
		return err
	}
	s.fanout(ctx, events.TypeRoleDeleted, role.GuildID, 0, 0)
	return nil
}

func (s *PermissionService) ReorderRoles(ctx context.Context, guildID int64, updates []RolePosition) error {
	if err := s.roles.ReorderRoles(ctx, guildID, updates); err != nil {
		return err
	}
	s.fanout(ctx, events.TypeRoleUpdated, guildID, 0, 0)
	return nil
}

func (s *PermissionService) AssignRole(ctx context.Context, guildID, userID, roleID int64) error {
	if err := s.roles.AssignRole(ctx, guildID, userID, roleID); err != nil {
		return err
	}
	s.fanout(ctx, events.TypeMemberRolesUpdated, guildID, 0, userID)
	return nil
}

func (s *PermissionService) RemoveRole(ctx context.Context, guildID, userID, roleID int64) error {
	if err := s.roles.RemoveRole(ctx, guildID, userID, roleID); err != nil {
		return err
	}
	s.fanout(ctx, events.TypeMemberRolesUpdated, guildID, 0, userID)
	return nil
}

// SetChannelOverwrite upserts an overwrite. The invalidation scope is the
// channel's own guild, resolved here; it is never trusted from the caller.
func (s *PermissionService) SetChannelOverwrite(ctx context.Context, channelID, targetID int64, targetType models.OverwriteTarget, allow, deny int64) (*models.ChannelOverwrite, error) {
	ch, err := s.roles.channels.GetByID(ctx, channelID)
	if err != nil {
		return nil, Internal("INTERNAL", "internal server error")
	}
	if ch == nil {
		return nil, ChannelNotFound()
	}

	o, err := s.roles.SetChannelOverwrite(ctx, channelID, targetID, targetType, allow, deny)
	if err != nil {
		return nil, err
	}
	s.fanout(ctx, events.TypeChannelOverwriteUpdated, ch.GuildID, channelID, 0)
	return o, nil
}

func (s *PermissionService) DeleteChannelOverwrite(ctx context.Context, channelID, targetID int64) error {
	ch, err := s.roles.channels.GetByID(ctx, channelID)
	if err != nil {
		return Internal("INTERNAL", "internal server error")
	}
	if ch == nil {
		return ChannelNotFound()
	}

	if err := s.roles.DeleteChannelOverwrite(ctx, channelID, targetID); err != nil {
		return err
	}
	s.fanout(ctx, events.TypeChannelOverwriteDeleted, ch.GuildID, channelID, 0)
	return nil
}

// NotifyMembershipChange lets the member service announce removals and bans
// through the same invalidate-then-publish path role mutations use.
func (s *PermissionService) NotifyMembershipChange(ctx context.Context, typ events.Type, guildID, userID int64) {
	s.fanout(ctx, typ, guildID, 0, userID)
}

// NotifyGuildDeleted drops every cached entry of a deleted guild and tells
// replicas to do the same.
func (s *PermissionService) NotifyGuildDeleted(ctx context.Context, guildID int64) {
	s.fanout(ctx, events.TypeGuildDeleted, guildID, 0, 0)
}
