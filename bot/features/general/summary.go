package general

import (
	"fmt"
	"math"
	"strings"
	"time"

	"walrus/bot/common"
	"walrus/models"

	"github.com/bwmarrin/discordgo"
)

// Summarize counts guilds, members and channels visible in the gateway state.
// Members and channels of unavailable guilds are not counted.
func Summarize(state *discordgo.State) models.BotSummary {
	var summary models.BotSummary

	state.RLock()
	defer state.RUnlock()

	for _, guild := range state.Guilds {
		summary.Guilds++
		if guild.Unavailable {
			continue
		}

		for _, member := range guild.Members {
			if member.User == nil {
				continue
			}
			if member.User.Bot {
				summary.Bots++
			} else {
				summary.Users++
			}
		}

		for _, channel := range guild.Channels {
			switch channel.Type {
			case discordgo.ChannelTypeGuildText, discordgo.ChannelTypeGuildNews:
				summary.TextChannels++
			case discordgo.ChannelTypeGuildVoice, discordgo.ChannelTypeGuildStageVoice:
				summary.VoiceChannels++
			}
		}
	}
	return summary
}

// ApplySocketTotals fills the socket and message counters from all-time stats
func ApplySocketTotals(summary *models.BotSummary, totals []models.SocketStat) {
	for _, stat := range totals {
		summary.SocketTotal += stat.Count
		if stat.Name == "MESSAGE_CREATE" {
			summary.MessagesSeen = stat.Count
		}
	}
}

// FormatSocketStats renders a yaml code block of event counts. Per-minute
// rates are included when elapsed is positive.
func FormatSocketStats(stats []models.SocketStat, elapsed time.Duration) string {
	minutes := elapsed.Minutes()
	withRate := minutes > 0

	var b strings.Builder
	var total int64
	for _, stat := range stats {
		total += stat.Count
		writeSocketLine(&b, stat.Name, stat.Count, minutes, withRate)
	}
	b.WriteString("\n")
	writeSocketLine(&b, "TOTAL", total, minutes, withRate)

	return "```yaml\n" + strings.TrimRight(b.String(), "\n") + "\n```"
}

func writeSocketLine(b *strings.Builder, name string, count int64, minutes float64, withRate bool) {
	if withRate {
		fmt.Fprintf(b, "%-30s%-18d%d / minute\n", name, count, int64(math.Round(float64(count)/minutes)))
		return
	}
	fmt.Fprintf(b, "%-30s%d\n", name, count)
}

// buildAboutEmbed renders the /about summary
func buildAboutEmbed(summary models.BotSummary, botName string) *discordgo.MessageEmbed {
	return &discordgo.MessageEmbed{
		Author: &discordgo.MessageEmbedAuthor{Name: botName},
		Color:  0x7289DA,
		Fields: []*discordgo.MessageEmbedField{
			{
				Name: "Users",
				Value: fmt.Sprintf("%s total\n%s humans\n%s robots",
					common.FormatCount(int64(summary.Users+summary.Bots)), common.FormatCount(int64(summary.Users)), common.FormatCount(int64(summary.Bots))),
				Inline: true,
			},
			{
				Name: "Channels",
				Value: fmt.Sprintf("%s total\n%s text\n%s voice",
					common.FormatCount(int64(summary.TextChannels+summary.VoiceChannels)), common.FormatCount(int64(summary.TextChannels)), common.FormatCount(int64(summary.VoiceChannels))),
				Inline: true,
			},
			{
				Name:   "Guilds",
				Value:  common.FormatCount(int64(summary.Guilds)),
				Inline: true,
			},
			{
				Name:   "Command Usage",
				Value:  fmt.Sprintf("%s total\n%s since restart", common.FormatCount(summary.CommandsTotal), common.FormatCount(summary.CommandsSince)),
				Inline: true,
			},
			{
				Name:   "Events",
				Value:  fmt.Sprintf("%s total messages seen\n%s total socket events", common.FormatCount(summary.MessagesSeen), common.FormatCount(summary.SocketTotal)),
				Inline: true,
			},
		},
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	}
}
