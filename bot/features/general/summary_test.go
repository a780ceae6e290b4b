package general

import (
	"testing"
	"time"

	"walrus/models"

	"github.com/bwmarrin/discordgo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSummarize(t *testing.T) {
	state := discordgo.NewState()
	require.NoError(t, state.GuildAdd(&discordgo.Guild{
		ID: "1",
		Members: []*discordgo.Member{
			{User: &discordgo.User{ID: "10"}},
			{User: &discordgo.User{ID: "11"}},
			{User: &discordgo.User{ID: "12", Bot: true}},
		},
		Channels: []*discordgo.Channel{
			{ID: "100", Type: discordgo.ChannelTypeGuildText},
			{ID: "101", Type: discordgo.ChannelTypeGuildVoice},
			{ID: "102", Type: discordgo.ChannelTypeGuildCategory},
		},
	}))
	require.NoError(t, state.GuildAdd(&discordgo.Guild{
		ID:          "2",
		Unavailable: true,
	}))

	summary := Summarize(state)

	assert.Equal(t, 2, summary.Guilds)
	assert.Equal(t, 2, summary.Users)
	assert.Equal(t, 1, summary.Bots)
	assert.Equal(t, 1, summary.TextChannels)
	assert.Equal(t, 1, summary.VoiceChannels)
}

func TestApplySocketTotals(t *testing.T) {
	var summary models.BotSummary
	ApplySocketTotals(&summary, []models.SocketStat{
		{Name: "MESSAGE_CREATE", Count: 40},
		{Name: "TYPING_START", Count: 2},
	})

	assert.Equal(t, int64(42), summary.SocketTotal)
	assert.Equal(t, int64(40), summary.MessagesSeen)
}

func TestFormatSocketStats(t *testing.T) {
	stats := []models.SocketStat{
		{Name: "MESSAGE_CREATE", Count: 120},
		{Name: "GUILD_CREATE", Count: 2},
	}

	t.Run("session rates", func(t *testing.T) {
		out := FormatSocketStats(stats, 2*time.Minute)
		assert.Contains(t, out, "MESSAGE_CREATE                120               60 / minute")
		assert.Contains(t, out, "TOTAL                         122               61 / minute")
		assert.True(t, len(out) > 0 && out[:7] == "```yaml")
	})

	t.Run("totals omit rates", func(t *testing.T) {
		out := FormatSocketStats(stats, 0)
		assert.Contains(t, out, "GUILD_CREATE                  2\n")
		assert.NotContains(t, out, "/ minute")
	})
}
