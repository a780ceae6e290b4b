package testutil

import (
	"encoding/json"
	"time"

	"walrus/models"
)

// ReminderPayload returns an encoded reminder payload for tests
func ReminderPayload(content string) json.RawMessage {
	data, _ := json.Marshal(models.ReminderPayload{
		AuthorID:  "111111111111111111",
		GuildID:   "222222222222222222",
		ChannelID: "333333333333333333",
		MessageID: "444444444444444444",
		Content:   content,
	})
	return data
}

// GiveawayPayload returns an encoded giveaway payload for tests
func GiveawayPayload(prize string, winners int) json.RawMessage {
	data, _ := json.Marshal(models.GiveawayPayload{
		ChannelID: "333333333333333333",
		MessageID: "555555555555555555",
		Prize:     prize,
		Winners:   winners,
		Emoji:     "🎉",
	})
	return data
}

// CreateTestCommandUsage creates a command usage with sensible defaults
func CreateTestCommandUsage(command string, failed bool) models.CommandUsage {
	guildID := int64(222222222222222222)
	return models.CommandUsage{
		GuildID:   &guildID,
		ChannelID: 333333333333333333,
		AuthorID:  111111111111111111,
		UsedAt:    time.Now().UTC(),
		Command:   command,
		Failed:    failed,
	}
}
