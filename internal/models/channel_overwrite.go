package models

// OverwriteTarget distinguishes what a channel overwrite applies to.
type OverwriteTarget string

const (
	OverwriteTargetRole   OverwriteTarget = "role"
	OverwriteTargetMember OverwriteTarget = "member"
)

// ChannelOverwrite is a per-channel allow/deny mask for a role or a single
// member. At most one overwrite exists per (channel, target) pair.
type ChannelOverwrite struct {
	ChannelID  int64           `json:"channel_id,string"`
	TargetID   int64           `json:"target_id,string"`
	TargetType OverwriteTarget `json:"target_type"`
	Allow      int64           `json:"allow,string"`
	Deny       int64           `json:"deny,string"`
}
