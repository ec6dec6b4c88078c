package service

import (
	"context"
	"time"

	"github.com/avelinov/parley/internal/database"
	"github.com/avelinov/parley/internal/events"
	"github.com/avelinov/parley/internal/models"
)

// MemberService manages guild membership. Removals and bans change who a
// cached permission entry can apply to, so they fan out through the
// permission service like role mutations do.
type MemberService struct {
	guilds  database.GuildRepository
	members database.MemberRepository
	bans    database.BanRepository
	perms   *PermissionService
}

func NewMemberService(guilds database.GuildRepository, members database.MemberRepository, bans database.BanRepository, perms *PermissionService) *MemberService {
	return &MemberService{guilds: guilds, members: members, bans: bans, perms: perms}
}

// JoinGuild adds a user to a guild. Banned users cannot join.
func (s *MemberService) JoinGuild(ctx context.Context, guildID, userID int64) (*models.Member, error) {
	guild, err := s.guilds.GetByID(ctx, guildID)
	if err != nil {
		return nil, Internal("INTERNAL", "internal server error")
	}
	if guild == nil {
		return nil, GuildNotFound()
	}

	ban, err := s.bans.Get(ctx, guildID, userID)
	if err != nil {
		return nil, Internal("INTERNAL", "internal server error")
	}
	if ban != nil {
		return nil, Forbidden("BANNED", "you are banned from this guild")
	}

	existing, err := s.members.GetByGuildAndUser(ctx, guildID, userID)
	if err != nil {
		return nil, Internal("INTERNAL", "internal server error")
	}
	if existing != nil {
		return nil, Conflict("ALREADY_MEMBER", "already a member of this guild")
	}

	member := &models.Member{
		GuildID:  guildID,
		UserID:   userID,
		JoinedAt: time.Now().UTC(),
	}
	if err := s.members.Create(ctx, member); err != nil {
		return nil, Internal("INTERNAL", "internal server error")
	}
	return member, nil
}

// LeaveGuild removes the caller's own membership. The owner cannot leave;
// they delete the guild instead.
func (s *MemberService) LeaveGuild(ctx context.Context, guildID, userID int64) error {
	guild, err := s.guilds.GetByID(ctx, guildID)
	if err != nil {
		return Internal("INTERNAL", "internal server error")
	}
	if guild == nil {
		return GuildNotFound()
	}
	if guild.OwnerID == userID {
		return BadRequest("OWNER_CANNOT_LEAVE", "the owner cannot leave their own guild")
	}

	return s.remove(ctx, guildID, userID, events.TypeMemberRemoved)
}

// KickMember removes another member. The owner cannot be kicked.
func (s *MemberService) KickMember(ctx context.Context, guildID, userID int64) error {
	guild, err := s.guilds.GetByID(ctx, guildID)
	if err != nil {
		return Internal("INTERNAL", "internal server error")
	}
	if guild == nil {
		return GuildNotFound()
	}
	if guild.OwnerID == userID {
		return Forbidden("CANNOT_KICK_OWNER", "the guild owner cannot be kicked")
	}

	return s.remove(ctx, guildID, userID, events.TypeMemberRemoved)
}

// BanMember records a ban and removes the membership in the same call.
func (s *MemberService) BanMember(ctx context.Context, guildID, userID int64, reason *string) error {
	guild, err := s.guilds.GetByID(ctx, guildID)
	if err != nil {
		return Internal("INTERNAL", "internal server error")
	}
	if guild == nil {
		return GuildNotFound()
	}
	if guild.OwnerID == userID {
		return Forbidden("CANNOT_BAN_OWNER", "the guild owner cannot be banned")
	}

	ban := &models.Ban{
		GuildID:  guildID,
		UserID:   userID,
		Reason:   reason,
		BannedAt: time.Now().UTC(),
	}
	if err := s.bans.Create(ctx, ban); err != nil {
		return Internal("INTERNAL", "internal server error")
	}

	return s.remove(ctx, guildID, userID, events.TypeMemberBanned)
}

// UnbanMember lifts a ban. The user has to rejoin on their own.
func (s *MemberService) UnbanMember(ctx context.Context, guildID, userID int64) error {
	ban, err := s.bans.Get(ctx, guildID, userID)
	if err != nil {
		return Internal("INTERNAL", "internal server error")
	}
	if ban == nil {
		return NotFound("BAN_NOT_FOUND", "no ban for this user")
	}

	if err := s.bans.Delete(ctx, guildID, userID); err != nil {
		return Internal("INTERNAL", "internal server error")
	}
	return nil
}

func (s *MemberService) ListMembers(ctx context.Context, guildID int64, limit, offset int) ([]models.Member, error) {
	if limit <= 0 || limit > 1000 {
		limit = 100
	}
	if offset < 0 {
		offset = 0
	}
	members, err := s.members.GetByGuildID(ctx, guildID, limit, offset)
	if err != nil {
		return nil, Internal("INTERNAL", "internal server error")
	}
	if members == nil {
		members = []models.Member{}
	}
	return members, nil
}

func (s *MemberService) ListBans(ctx context.Context, guildID int64) ([]models.Ban, error) {
	bans, err := s.bans.GetByGuildID(ctx, guildID)
	if err != nil {
		return nil, Internal("INTERNAL", "internal server error")
	}
	if bans == nil {
		bans = []models.Ban{}
	}
	return bans, nil
}

func (s *MemberService) remove(ctx context.Context, guildID, userID int64, typ events.Type) error {
	member, err := s.members.GetByGuildAndUser(ctx, guildID, userID)
	if err != nil {
		return Internal("INTERNAL", "internal server error")
	}
	if member == nil {
		return MemberNotFound()
	}

	if err := s.members.Delete(ctx, guildID, userID); err != nil {
		return Internal("INTERNAL", "internal server error")
	}

	if s.perms != nil {
		s.perms.NotifyMembershipChange(ctx, typ, guildID, userID)
	}
	return nil
}
