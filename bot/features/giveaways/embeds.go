package giveaways

import (
	"fmt"
	"strings"
	"time"

	"walrus/bot/common"

	"github.com/bwmarrin/discordgo"
)

const (
	colorBlurple = 0x5865F2
	colorRed     = 0xED4245
	colorGreen   = 0x57F287

	// lastChanceWindow turns the embed red when the giveaway ends this soon
	lastChanceWindow = 15 * time.Second

	endedFooter  = "Ended at"
	endedContent = Emoji + " __**GIVEAWAY ENDED**__ " + Emoji
)

// buildActiveEmbed creates the embed members react to while a giveaway runs
func buildActiveEmbed(prize string, winners int, expiresAt, now time.Time) *discordgo.MessageEmbed {
	embed := &discordgo.MessageEmbed{
		Author: &discordgo.MessageEmbedAuthor{Name: prize},
		Description: fmt.Sprintf("React with %s to enter.\nThere will be %s.",
			Emoji, common.Plural(fmt.Sprintf("%d winner(s)", winners), int64(winners))),
		Color:     colorBlurple,
		Timestamp: expiresAt.UTC().Format(time.RFC3339),
		Footer:    &discordgo.MessageEmbedFooter{Text: "Ends at"},
	}

	if now.Add(lastChanceWindow).After(expiresAt) {
		embed.Color = colorRed
		embed.Title = "Last chance to enter!"
	}
	return embed
}

// buildEndedEmbed replaces the giveaway embed once winners are drawn
func buildEndedEmbed(prize string, winnerIDs []string, expiresAt time.Time) *discordgo.MessageEmbed {
	embed := &discordgo.MessageEmbed{
		Author:    &discordgo.MessageEmbedAuthor{Name: prize},
		Color:     colorGreen,
		Timestamp: expiresAt.UTC().Format(time.RFC3339),
		Footer:    &discordgo.MessageEmbedFooter{Text: endedFooter},
	}

	switch len(winnerIDs) {
	case 0:
		embed.Description = "Nobody entered the giveaway! :("
	case 1:
		embed.Description = "Winner: " + common.FormatUserMention(winnerIDs[0])
	default:
		embed.Description = "Winners: " + mentions(winnerIDs)
	}
	return embed
}

// buildAnnouncement is the reply posted under an ended giveaway
func buildAnnouncement(prize string, winnerIDs []string) string {
	switch len(winnerIDs) {
	case 0:
		return "Not enough entrants to determine a winner!"
	case 1:
		return fmt.Sprintf("%s Giveaway finished! %s, you win the **%s**! Congratulations!",
			Emoji, common.FormatUserMention(winnerIDs[0]), prize)
	default:
		return fmt.Sprintf("%s Giveaway ended! Winners: %s You all win the **%s**! :tada:",
			Emoji, mentions(winnerIDs), prize)
	}
}

// isEndedGiveaway reports whether msg is a giveaway this bot has already ended
func isEndedGiveaway(msg *discordgo.Message, botID string) bool {
	if msg.Author == nil || msg.Author.ID != botID || len(msg.Embeds) == 0 {
		return false
	}
	footer := msg.Embeds[0].Footer
	if footer == nil || footer.Text != endedFooter {
		return false
	}
	return strings.Contains(msg.Content, "GIVEAWAY ENDED")
}

func mentions(userIDs []string) string {
	parts := make([]string, len(userIDs))
	for i, id := range userIDs {
		parts[i] = common.FormatUserMention(id)
	}
	return strings.Join(parts, ", ")
}
