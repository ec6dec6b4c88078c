package database

import (
	"context"

	"github.com/avelinov/parley/internal/models"
)

// Repositories return (nil, nil) when a single requested row does not exist;
// a non-nil error always means the query itself failed.

type UserRepository interface {
	Create(ctx context.Context, user *models.User) error
	GetByID(ctx context.Context, id int64) (*models.User, error)
	GetByUsername(ctx context.Context, username string) (*models.User, error)
}

type GuildRepository interface {
	// CreateWithDefaults creates the guild together with its @everyone role,
	// its first channel and the owner's membership row in one transaction.
	CreateWithDefaults(ctx context.Context, guild *models.Guild, everyone *models.Role, channel *models.Channel, owner *models.Member) error
	GetByID(ctx context.Context, id int64) (*models.Guild, error)
	Delete(ctx context.Context, id int64) error
	GetByUserID(ctx context.Context, userID int64) ([]models.Guild, error)
}

type ChannelRepository interface {
	Create(ctx context.Context, channel *models.Channel) error
	GetByID(ctx context.Context, id int64) (*models.Channel, error)
	GetByGuildID(ctx context.Context, guildID int64) ([]models.Channel, error)
	Delete(ctx context.Context, id int64) error
}

type RoleRepository interface {
	Create(ctx context.Context, role *models.Role) error
	GetByID(ctx context.Context, id int64) (*models.Role, error)
	GetByGuildID(ctx context.Context, guildID int64) ([]models.Role, error)
	GetByMember(ctx context.Context, guildID, userID int64) ([]models.Role, error)
	MaxPosition(ctx context.Context, guildID int64) (int, error)
	Update(ctx context.Context, role *models.Role) error
	// UpdatePositions applies all position changes in one transaction.
	UpdatePositions(ctx context.Context, guildID int64, positions map[int64]int) error
	Delete(ctx context.Context, id int64) error
}

type MemberRepository interface {
	Create(ctx context.Context, member *models.Member) error
	GetByGuildAndUser(ctx context.Context, guildID, userID int64) (*models.Member, error)
	GetByGuildID(ctx context.Context, guildID int64, limit, offset int) ([]models.Member, error)
	Delete(ctx context.Context, guildID, userID int64) error
	// AddRole reports false if the assignment already existed.
	AddRole(ctx context.Context, guildID, userID, roleID int64) (bool, error)
	// RemoveRole reports false if the assignment did not exist.
	RemoveRole(ctx context.Context, guildID, userID, roleID int64) (bool, error)
}

type BanRepository interface {
	Create(ctx context.Context, ban *models.Ban) error
	Get(ctx context.Context, guildID, userID int64) (*models.Ban, error)
	GetByGuildID(ctx context.Context, guildID int64) ([]models.Ban, error)
	Delete(ctx context.Context, guildID, userID int64) error
}

type ChannelOverwriteRepository interface {
	// Upsert fully replaces the overwrite for (channel, target): last writer
	// wins, allow/deny are not merged.
	Upsert(ctx context.Context, o *models.ChannelOverwrite) error
	Get(ctx context.Context, channelID, targetID int64) (*models.ChannelOverwrite, error)
	GetByChannel(ctx context.Context, channelID int64) ([]models.ChannelOverwrite, error)
	// Delete is a no-op when the overwrite does not exist.
	Delete(ctx context.Context, channelID, targetID int64) error
}
