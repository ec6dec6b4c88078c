package service

import (
	"context"
	"time"

	"github.com/avelinov/parley/internal/database"
	"github.com/avelinov/parley/internal/models"
	"github.com/avelinov/parley/internal/permissions"
	"github.com/avelinov/parley/internal/snowflake"
)

// RoleService owns role CRUD, role assignment and channel overwrite state
// for a guild, and assembles the inputs the permission resolver needs. It
// talks straight to the repositories; cache invalidation and event fan-out
// live one layer up in PermissionService.
type RoleService struct {
	guilds     database.GuildRepository
	roles      database.RoleRepository
	members    database.MemberRepository
	channels   database.ChannelRepository
	overwrites database.ChannelOverwriteRepository
	snowflake  *snowflake.Generator
}

// NewRoleService creates a RoleService.
func NewRoleService(
	guilds database.GuildRepository,
	roles database.RoleRepository,
	members database.MemberRepository,
	channels database.ChannelRepository,
	overwrites database.ChannelOverwriteRepository,
	sf *snowflake.Generator,
) *RoleService {
	return &RoleService{
		guilds:     guilds,
		roles:      roles,
		members:    members,
		channels:   channels,
		overwrites: overwrites,
		snowflake:  sf,
	}
}

// CreateRole creates a new role in a guild. The role is placed above every
// existing role: position = 1 + the guild's current maximum.
func (s *RoleService) CreateRole(ctx context.Context, guildID int64, name string, permBits int64, color int) (*models.Role, error) {
	if name == "" || len(name) > 100 {
		return nil, BadRequest("INVALID_NAME", "name must be 1-100 characters")
	}

	guild, err := s.guilds.GetByID(ctx, guildID)
	if err != nil {
		return nil, Internal("INTERNAL", "internal server error")
	}
	if guild == nil {
		return nil, GuildNotFound()
	}

	maxPos, err := s.roles.MaxPosition(ctx, guildID)
	if err != nil {
		return nil, Internal("INTERNAL", "internal server error")
	}

	role := &models.Role{
		ID:          s.snowflake.Generate().Int64(),
		GuildID:     guildID,
		Name:        name,
		Color:       color,
		Permissions: permBits,
		Position:    maxPos + 1,
		CreatedAt:   time.Now().UTC(),
	}

	if err := s.roles.Create(ctx, role); err != nil {
		return nil, Internal("INTERNAL", "internal server error")
	}
	return role, nil
}

// ListRoles returns all roles of a guild, ordered by position.
func (s *RoleService) ListRoles(ctx context.Context, guildID int64) ([]models.Role, error) {
	roles, err := s.roles.GetByGuildID(ctx, guildID)
	if err != nil {
		return nil, Internal("INTERNAL", "internal server error")
	}
	if roles == nil {
		roles = []models.Role{}
	}
	return roles, nil
}

// UpdateRole applies a partial update; nil fields stay unchanged. The role
// must belong to the given guild, so an authorization check against one
// guild can never reach into another.
func (s *RoleService) UpdateRole(ctx context.Context, guildID, roleID int64, name *string, permBits *int64, color *int) (*models.Role, error) {
	role, err := s.roles.GetByID(ctx, roleID)
	if err != nil {
		return nil, Internal("INTERNAL", "internal server error")
	}
	if role == nil || role.GuildID != guildID {
		return nil, RoleNotFound()
	}

	if name != nil {
		if *name == "" || len(*name) > 100 {
			return nil, BadRequest("INVALID_NAME", "name must be 1-100 characters")
		}
		role.Name = *name
	}
	if permBits != nil {
		role.Permissions = *permBits
	}
	if color != nil {
		role.Color = *color
	}

	if err := s.roles.Update(ctx, role); err != nil {
		return nil, Internal("INTERNAL", "internal server error")
	}
	return role, nil
}

// DeleteRole deletes a role and returns it. The role must belong to the
// given guild, and the @everyone role is protected.
func (s *RoleService) DeleteRole(ctx context.Context, guildID, roleID int64) (*models.Role, error) {
	role, err := s.roles.GetByID(ctx, roleID)
	if err != nil {
		return nil, Internal("INTERNAL", "internal server error")
	}
	if role == nil || role.GuildID != guildID {
		return nil, RoleNotFound()
	}
	if role.IsEveryone() {
		return nil, CannotModifyEveryone()
	}

	if err := s.roles.Delete(ctx, roleID); err != nil {
		return nil, Internal("INTERNAL", "internal server error")
	}
	return role, nil
}

// RolePosition pairs a role with its new hierarchy rank.
type RolePosition struct {
	RoleID   int64 `json:"role_id,string"`
	Position int   `json:"position"`
}

// ReorderRoles applies the given position updates in one transaction. Every
// referenced role must exist and belong to the guild.
func (s *RoleService) ReorderRoles(ctx context.Context, guildID int64, updates []RolePosition) error {
	guild, err := s.guilds.GetByID(ctx, guildID)
	if err != nil {
		return Internal("INTERNAL", "internal server error")
	}
	if guild == nil {
		return GuildNotFound()
	}

	positions := make(map[int64]int, len(updates))
	for _, u := range updates {
		role, err := s.roles.GetByID(ctx, u.RoleID)
		if err != nil {
			return Internal("INTERNAL", "internal server error")
		}
		if role == nil || role.GuildID != guildID {
			return RoleNotFound()
		}
		positions[u.RoleID] = u.Position
	}

	if err := s.roles.UpdatePositions(ctx, guildID, positions); err != nil {
		return Internal("INTERNAL", "internal server error")
	}
	return nil
}

// AssignRole gives a member an explicit role. Assigning a role the member
// already has fails; the operation is not idempotent on success. The
// @everyone role is implicit for every member and never stored as an
// assignment row.
func (s *RoleService) AssignRole(ctx context.Context, guildID, userID, roleID int64) error {
	if roleID == guildID {
		return CannotModifyEveryone()
	}

	role, err := s.roles.GetByID(ctx, roleID)
	if err != nil {
		return Internal("INTERNAL", "internal server error")
	}
	if role == nil || role.GuildID != guildID {
		return RoleNotFound()
	}

	member, err := s.members.GetByGuildAndUser(ctx, guildID, userID)
	if err != nil {
		return Internal("INTERNAL", "internal server error")
	}
	if member == nil {
		return MemberNotFound()
	}

	added, err := s.members.AddRole(ctx, guildID, userID, roleID)
	if err != nil {
		return Internal("INTERNAL", "internal server error")
	}
	if !added {
		return RoleAlreadyAssigned()
	}
	return nil
}

// RemoveRole takes an explicit role away from a member. The @everyone role
// cannot be removed, and removing a role the member does not have fails.
func (s *RoleService) RemoveRole(ctx context.Context, guildID, userID, roleID int64) error {
	if roleID == guildID {
		return CannotModifyEveryone()
	}

	removed, err := s.members.RemoveRole(ctx, guildID, userID, roleID)
	if err != nil {
		return Internal("INTERNAL", "internal server error")
	}
	if !removed {
		return RoleNotAssigned()
	}
	return nil
}

// GetMemberRoles returns the member's explicit roles with the guild's
// @everyone role prepended. This is the canonical input for the permission
// resolver; callers must never feed the resolver a role list without the
// @everyone role.
func (s *RoleService) GetMemberRoles(ctx context.Context, guildID, userID int64) ([]models.Role, error) {
	assigned, err := s.roles.GetByMember(ctx, guildID, userID)
	if err != nil {
		return nil, Internal("INTERNAL", "internal server error")
	}

	for _, r := range assigned {
		if r.IsEveryone() {
			return assigned, nil
		}
	}

	everyone, err := s.roles.GetByID(ctx, guildID)
	if err != nil {
		return nil, Internal("INTERNAL", "internal server error")
	}
	if everyone == nil {
		// Every guild is seeded with its @everyone role at creation; a guild
		// without one cannot be evaluated.
		return nil, GuildNotFound()
	}

	return append([]models.Role{*everyone}, assigned...), nil
}

// SetChannelOverwrite creates or fully replaces the overwrite for
// (channel, target). Allow and deny are not merged with any previous value.
func (s *RoleService) SetChannelOverwrite(ctx context.Context, channelID, targetID int64, targetType models.OverwriteTarget, allow, deny int64) (*models.ChannelOverwrite, error) {
	if targetType != models.OverwriteTargetRole && targetType != models.OverwriteTargetMember {
		return nil, BadRequest("INVALID_TARGET_TYPE", "target_type must be role or member")
	}

	ch, err := s.channels.GetByID(ctx, channelID)
	if err != nil {
		return nil, Internal("INTERNAL", "internal server error")
	}
	if ch == nil {
		return nil, ChannelNotFound()
	}

	overwrite := &models.ChannelOverwrite{
		ChannelID:  channelID,
		TargetID:   targetID,
		TargetType: targetType,
		Allow:      allow,
		Deny:       deny,
	}

	if err := s.overwrites.Upsert(ctx, overwrite); err != nil {
		return nil, Internal("INTERNAL", "internal server error")
	}
	return overwrite, nil
}

// DeleteChannelOverwrite removes the overwrite for (channel, target).
// Deleting an overwrite that does not exist is not an error.
func (s *RoleService) DeleteChannelOverwrite(ctx context.Context, channelID, targetID int64) error {
	ch, err := s.channels.GetByID(ctx, channelID)
	if err != nil {
		return Internal("INTERNAL", "internal server error")
	}
	if ch == nil {
		return ChannelNotFound()
	}

	if err := s.overwrites.Delete(ctx, channelID, targetID); err != nil {
		return Internal("INTERNAL", "internal server error")
	}
	return nil
}

// ComputeChannelPermissions loads everything the resolver needs for
// (user, channel) and evaluates it. No cache is involved; this is the
// ground-truth path.
func (s *RoleService) ComputeChannelPermissions(ctx context.Context, userID, channelID int64) (permissions.Permission, error) {
	ch, err := s.channels.GetByID(ctx, channelID)
	if err != nil {
		return 0, Internal("INTERNAL", "internal server error")
	}
	if ch == nil {
		return 0, ChannelNotFound()
	}

	guild, err := s.guilds.GetByID(ctx, ch.GuildID)
	if err != nil {
		return 0, Internal("INTERNAL", "internal server error")
	}
	if guild == nil {
		return 0, GuildNotFound()
	}

	memberRoles, err := s.GetMemberRoles(ctx, guild.ID, userID)
	if err != nil {
		return 0, err
	}

	overwrites, err := s.overwrites.GetByChannel(ctx, channelID)
	if err != nil {
		return 0, Internal("INTERNAL", "internal server error")
	}

	return permissions.Compute(userID, *guild, memberRoles, overwrites), nil
}

// ComputeGuildPermissions evaluates a member's base permissions in a guild
// without channel overwrites. Used to gate guild-level operations such as
// role management.
func (s *RoleService) ComputeGuildPermissions(ctx context.Context, userID, guildID int64) (permissions.Permission, error) {
	guild, err := s.guilds.GetByID(ctx, guildID)
	if err != nil {
		return 0, Internal("INTERNAL", "internal server error")
	}
	if guild == nil {
		return 0, GuildNotFound()
	}

	memberRoles, err := s.GetMemberRoles(ctx, guildID, userID)
	if err != nil {
		return 0, err
	}

	return permissions.Compute(userID, *guild, memberRoles, nil), nil
}
