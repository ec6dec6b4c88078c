package models

import "time"

type Role struct {
	ID          int64     `json:"id,string"`
	GuildID     int64     `json:"guild_id,string"`
	Name        string    `json:"name"`
	Color       int       `json:"color"`
	Permissions int64     `json:"permissions,string"`
	Position    int       `json:"position"`
	CreatedAt   time.Time `json:"created_at"`
}

// IsEveryone reports whether this is the guild's implicit @everyone role.
// The @everyone role shares its ID with the guild that owns it.
func (r Role) IsEveryone() bool { return r.ID == r.GuildID }
