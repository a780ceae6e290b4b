package models

import (
	"time"
)

// CommandUsage records a single slash command invocation
type CommandUsage struct {
	GuildID   *int64    `db:"guild_id" json:"guild"`
	ChannelID int64     `db:"channel_id" json:"channel"`
	AuthorID  int64     `db:"author_id" json:"author"`
	UsedAt    time.Time `db:"used_at" json:"used"`
	Command   string    `db:"command" json:"command"`
	Failed    bool      `db:"failed" json:"failed"`
}

// SocketStat is the running count of one gateway event type
type SocketStat struct {
	Name  string `db:"name" json:"name"`
	Count int64  `db:"count" json:"count"`
}

// NicknameChange records a member setting a new nickname in a guild
type NicknameChange struct {
	GuildID  int64  `db:"guild_id" json:"guild"`
	MemberID int64  `db:"member_id" json:"member"`
	Nickname string `db:"nickname" json:"nickname"`
}

// BotSummary is the read-only overview served to the dashboard
type BotSummary struct {
	Users         int   `json:"users"`
	Bots          int   `json:"bots"`
	Guilds        int   `json:"guilds"`
	TextChannels  int   `json:"text_channels"`
	VoiceChannels int   `json:"voice_channels"`
	CommandsTotal int64 `json:"commands_total"`
	CommandsSince int64 `json:"commands_since_restart"`
	SocketTotal   int64 `json:"socket_total"`
	MessagesSeen  int64 `json:"messages_seen"`
}
