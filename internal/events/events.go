package events

import (
	"time"

	"github.com/google/uuid"
)

// Type names a mutation announced on the bus. The names are part of the
// wire contract: cache replicas in other processes key their invalidation
// scope off them.
type Type string

const (
	TypeRoleCreated             Type = "role.created"
	TypeRoleUpdated             Type = "role.updated"
	TypeRoleDeleted             Type = "role.deleted"
	TypeMemberRolesUpdated      Type = "member_roles.updated"
	TypeMemberRemoved           Type = "member.removed"
	TypeMemberBanned            Type = "member.banned"
	TypeChannelOverwriteUpdated Type = "channel_overwrite.updated"
	TypeChannelOverwriteDeleted Type = "channel_overwrite.deleted"
	TypeGuildDeleted            Type = "guild.deleted"
)

// Event describes a single role/assignment/overwrite mutation. ChannelID and
// UserID are zero when the event type does not concern a channel or user.
type Event struct {
	ID        string    `json:"id"`
	Type      Type      `json:"type"`
	GuildID   int64     `json:"guild_id,string"`
	ChannelID int64     `json:"channel_id,string,omitempty"`
	UserID    int64     `json:"user_id,string,omitempty"`
	At        time.Time `json:"at"`
}

// New builds an event with a fresh ID and timestamp.
func New(typ Type, guildID, channelID, userID int64) Event {
	return Event{
		ID:        uuid.NewString(),
		Type:      typ,
		GuildID:   guildID,
		ChannelID: channelID,
		UserID:    userID,
		At:        time.Now().UTC(),
	}
}
