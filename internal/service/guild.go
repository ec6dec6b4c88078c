package service

import (
	"context"
	"time"

	"github.com/avelinov/parley/internal/database"
	"github.com/avelinov/parley/internal/models"
	"github.com/avelinov/parley/internal/permissions"
	"github.com/avelinov/parley/internal/snowflake"
)

type GuildService struct {
	guilds    database.GuildRepository
	channels  database.ChannelRepository
	perms     *PermissionService
	snowflake *snowflake.Generator
}

// NewGuildService creates a GuildService. perms may be nil, in which case
// guild deletions rely on the cache TTL alone.
func NewGuildService(guilds database.GuildRepository, channels database.ChannelRepository, perms *PermissionService, sf *snowflake.Generator) *GuildService {
	return &GuildService{guilds: guilds, channels: channels, perms: perms, snowflake: sf}
}

// CreateGuild creates a guild with its seed rows in one transaction: the
// @everyone role (same ID as the guild, position 0, the default permission
// set), a #general text channel and the owner's membership.
func (s *GuildService) CreateGuild(ctx context.Context, ownerID int64, name string) (*models.Guild, error) {
	if name == "" || len(name) > 100 {
		return nil, BadRequest("INVALID_NAME", "name must be 1-100 characters")
	}

	now := time.Now().UTC()
	guild := &models.Guild{
		ID:        s.snowflake.Generate().Int64(),
		Name:      name,
		OwnerID:   ownerID,
		CreatedAt: now,
	}
	everyone := &models.Role{
		ID:          guild.ID,
		GuildID:     guild.ID,
		Name:        "@everyone",
		Permissions: int64(permissions.DefaultEveryonePerms),
		Position:    0,
		CreatedAt:   now,
	}
	general := &models.Channel{
		ID:      s.snowflake.Generate().Int64(),
		GuildID: guild.ID,
		Name:    "general",
		Type:    models.ChannelTypeText,
	}
	owner := &models.Member{
		GuildID:  guild.ID,
		UserID:   ownerID,
		JoinedAt: now,
	}

	if err := s.guilds.CreateWithDefaults(ctx, guild, everyone, general, owner); err != nil {
		return nil, Internal("INTERNAL", "internal server error")
	}
	return guild, nil
}

func (s *GuildService) GetGuild(ctx context.Context, guildID int64) (*models.Guild, error) {
	guild, err := s.guilds.GetByID(ctx, guildID)
	if err != nil {
		return nil, Internal("INTERNAL", "internal server error")
	}
	if guild == nil {
		return nil, GuildNotFound()
	}
	return guild, nil
}

func (s *GuildService) ListUserGuilds(ctx context.Context, userID int64) ([]models.Guild, error) {
	guilds, err := s.guilds.GetByUserID(ctx, userID)
	if err != nil {
		return nil, Internal("INTERNAL", "internal server error")
	}
	if guilds == nil {
		guilds = []models.Guild{}
	}
	return guilds, nil
}

// DeleteGuild removes a guild. Only the owner may delete it; membership rows,
// roles, channels and overwrites go with it via foreign keys.
func (s *GuildService) DeleteGuild(ctx context.Context, userID, guildID int64) error {
	guild, err := s.guilds.GetByID(ctx, guildID)
	if err != nil {
		return Internal("INTERNAL", "internal server error")
	}
	if guild == nil {
		return GuildNotFound()
	}
	if guild.OwnerID != userID {
		return Forbidden("NOT_OWNER", "only the guild owner can delete the guild")
	}

	if err := s.guilds.Delete(ctx, guildID); err != nil {
		return Internal("INTERNAL", "internal server error")
	}

	if s.perms != nil {
		s.perms.NotifyGuildDeleted(ctx, guildID)
	}
	return nil
}

func (s *GuildService) ListChannels(ctx context.Context, guildID int64) ([]models.Channel, error) {
	channels, err := s.channels.GetByGuildID(ctx, guildID)
	if err != nil {
		return nil, Internal("INTERNAL", "internal server error")
	}
	if channels == nil {
		channels = []models.Channel{}
	}
	return channels, nil
}

func (s *GuildService) CreateChannel(ctx context.Context, guildID int64, name string, chType models.ChannelType) (*models.Channel, error) {
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

	channel := &models.Channel{
		ID:      s.snowflake.Generate().Int64(),
		GuildID: guildID,
		Name:    name,
		Type:    chType,
	}
	if err := s.channels.Create(ctx, channel); err != nil {
		return nil, Internal("INTERNAL", "internal server error")
	}
	return channel, nil
}
