package permissions

import "strings"

// Permission is a bitfield representing a set of permissions.
//
// The underlying type is int64; the sign bit is never used, which leaves 63
// usable flag bits and keeps every mask positive so the `,string` JSON
// encoding round-trips without precision or sign surprises.
type Permission int64

const (
	PermViewChannel        Permission = 1 << 0
	PermSendMessages       Permission = 1 << 1
	PermManageMessages     Permission = 1 << 2
	PermManageChannels     Permission = 1 << 3
	PermManageRoles        Permission = 1 << 4
	PermKickMembers        Permission = 1 << 5
	PermBanMembers         Permission = 1 << 6
	PermManageGuild        Permission = 1 << 7
	PermMentionEveryone    Permission = 1 << 8
	PermAttachFiles        Permission = 1 << 9
	PermReadMessageHistory Permission = 1 << 10
	PermCreateInvites      Permission = 1 << 11
	PermAdministrator      Permission = 1 << 31 // bypasses all checks

	// PermAll is every usable bit (all bits except the sign bit).
	PermAll Permission = 0x7FFFFFFFFFFFFFFF

	// PermNone is the empty set.
	PermNone Permission = 0
)

// DefaultEveryonePerms is the permission set seeded onto the @everyone role
// when a guild is created.
const DefaultEveryonePerms = PermViewChannel | PermSendMessages | PermReadMessageHistory | PermCreateInvites

// Has returns true if p contains all bits in perm.
// A mask carrying PermAdministrator passes every check.
func (p Permission) Has(perm Permission) bool {
	if p&PermAdministrator != 0 {
		return true
	}
	return p&perm == perm
}

// HasAny returns true if p contains all bits of at least one of the given
// permissions. A mask carrying PermAdministrator passes every check.
func (p Permission) HasAny(perms ...Permission) bool {
	if p&PermAdministrator != 0 {
		return true
	}
	for _, perm := range perms {
		if p&perm == perm {
			return true
		}
	}
	return false
}

// Add returns p with the bits from perm set.
func (p Permission) Add(perm Permission) Permission { return p | perm }

// Remove returns p with the bits from perm cleared.
func (p Permission) Remove(perm Permission) Permission { return p &^ perm }

// Toggle returns p with the bits from perm flipped.
func (p Permission) Toggle(perm Permission) Permission { return p ^ perm }

// Combine returns the union of the given masks. Combining nothing yields
// PermNone.
func Combine(perms ...Permission) Permission {
	var out Permission
	for _, p := range perms {
		out |= p
	}
	return out
}

// Intersect returns the bits common to all the given masks.
//
// Callers must pass at least one mask; folding AND over nothing has no
// natural identity, so an empty argument list returns PermAll by convention
// rather than by contract. Do not rely on that value.
func Intersect(perms ...Permission) Permission {
	out := PermAll
	for _, p := range perms {
		out &= p
	}
	return out
}

// permNames maps individual permission bits to their string names.
var permNames = map[Permission]string{
	PermViewChannel:        "VIEW_CHANNEL",
	PermSendMessages:       "SEND_MESSAGES",
	PermManageMessages:     "MANAGE_MESSAGES",
	PermManageChannels:     "MANAGE_CHANNELS",
	PermManageRoles:        "MANAGE_ROLES",
	PermKickMembers:        "KICK_MEMBERS",
	PermBanMembers:         "BAN_MEMBERS",
	PermManageGuild:        "MANAGE_GUILD",
	PermMentionEveryone:    "MENTION_EVERYONE",
	PermAttachFiles:        "ATTACH_FILES",
	PermReadMessageHistory: "READ_MESSAGE_HISTORY",
	PermCreateInvites:      "CREATE_INVITES",
	PermAdministrator:      "ADMINISTRATOR",
}

// Name returns the canonical name of a single permission bit, or "UNKNOWN"
// if perm is not one of the defined flags.
func Name(perm Permission) string {
	if name, ok := permNames[perm]; ok {
		return name
	}
	return "UNKNOWN"
}

// String returns a human-readable representation of the permission set,
// listing all set permission names separated by " | ".
func (p Permission) String() string {
	if p == 0 {
		return "NONE"
	}

	var names []string
	for bit, name := range permNames {
		if p&bit == bit {
			names = append(names, name)
		}
	}

	if len(names) == 0 {
		return "UNKNOWN"
	}
	return strings.Join(names, " | ")
}
