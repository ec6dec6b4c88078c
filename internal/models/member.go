package models

import "time"

type Member struct {
	GuildID  int64     `json:"guild_id,string"`
	UserID   int64     `json:"user_id,string"`
	JoinedAt time.Time `json:"joined_at"`
}
