package reminders

import (
	"fmt"
	"time"

	"walrus/bot/common"
	"walrus/models"
)

// FormatConfirmation is the reply sent when a reminder is scheduled
func FormatConfirmation(createdAt, expiresAt time.Time, content string) string {
	return fmt.Sprintf("In %s: %s", common.HumanTimedelta(expiresAt, createdAt, 3), content)
}

// FormatReminder is the message posted when a reminder fires
func FormatReminder(payload models.ReminderPayload, createdAt, now time.Time) string {
	return fmt.Sprintf("%s, %s: %s\n\n<%s>",
		common.FormatUserMention(payload.AuthorID),
		common.HumanTimedelta(createdAt, now, 3),
		payload.Content,
		common.FormatDiscordMessageLink(payload.GuildID, payload.ChannelID, payload.MessageID),
	)
}
