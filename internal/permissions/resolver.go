package permissions

import (
	"sort"

	"github.com/avelinov/parley/internal/models"
)

// Compute resolves a member's effective permission mask for a channel.
// It is a pure function over its inputs; callers are responsible for
// supplying the member's full role list including the @everyone role.
//
// Evaluation order:
//  1. The guild owner holds every permission; nothing else applies.
//  2. Seed with the @everyone role's mask (the role whose ID equals the
//     guild's ID), or zero if it is missing from the list.
//  3. OR in the member's other role masks.
//  4. If the result includes ADMINISTRATOR, return PermAll; channel
//     overwrites never apply to administrators.
//  5. Apply the @everyone channel overwrite: deny first, then allow.
//  6. Apply role overwrites for roles the member holds, ordered by role
//     position ascending. Allow and deny bits are accumulated across all
//     matched overwrites and applied as one deny-then-allow step.
//  7. Apply the member-specific overwrite last; it outranks every other
//     layer.
func Compute(userID int64, guild models.Guild, memberRoles []models.Role, overwrites []models.ChannelOverwrite) Permission {
	if userID == guild.OwnerID {
		return PermAll
	}

	var perms Permission
	for _, r := range memberRoles {
		if r.ID == guild.ID {
			perms = Permission(r.Permissions)
			break
		}
	}

	for _, r := range memberRoles {
		if r.ID == guild.ID {
			continue
		}
		perms = perms.Add(Permission(r.Permissions))
	}

	if perms&PermAdministrator != 0 {
		return PermAll
	}

	for _, o := range overwrites {
		if o.TargetType == models.OverwriteTargetRole && o.TargetID == guild.ID {
			perms = perms.Remove(Permission(o.Deny))
			perms = perms.Add(Permission(o.Allow))
			break
		}
	}

	rolePos := make(map[int64]int, len(memberRoles))
	for _, r := range memberRoles {
		rolePos[r.ID] = r.Position
	}

	var matched []models.ChannelOverwrite
	for _, o := range overwrites {
		if o.TargetType != models.OverwriteTargetRole || o.TargetID == guild.ID {
			continue
		}
		if _, held := rolePos[o.TargetID]; held {
			matched = append(matched, o)
		}
	}
	// Lower positions accumulate first. The accumulation is a pure OR so the
	// order does not change the result today, but the ordering is part of the
	// resolution contract and must stay.
	sort.SliceStable(matched, func(i, j int) bool {
		return rolePos[matched[i].TargetID] < rolePos[matched[j].TargetID]
	})

	var roleAllow, roleDeny Permission
	for _, o := range matched {
		roleAllow = roleAllow.Add(Permission(o.Allow))
		roleDeny = roleDeny.Add(Permission(o.Deny))
	}
	perms = perms.Remove(roleDeny)
	perms = perms.Add(roleAllow)

	for _, o := range overwrites {
		if o.TargetType == models.OverwriteTargetMember && o.TargetID == userID {
			perms = perms.Remove(Permission(o.Deny))
			perms = perms.Add(Permission(o.Allow))
			break
		}
	}

	return perms
}

// HasChannelPermission computes the member's effective permissions for a
// channel and checks them against perm.
func HasChannelPermission(userID int64, guild models.Guild, memberRoles []models.Role, overwrites []models.ChannelOverwrite, perm Permission) bool {
	return Compute(userID, guild, memberRoles, overwrites).Has(perm)
}
