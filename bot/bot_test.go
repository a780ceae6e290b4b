package bot

import (
	"testing"

	"github.com/bwmarrin/discordgo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func commandInteraction(guildID string, data discordgo.ApplicationCommandInteractionData) *discordgo.InteractionCreate {
	return &discordgo.InteractionCreate{
		Interaction: &discordgo.Interaction{
			ID:        "1100000000000000000",
			Type:      discordgo.InteractionApplicationCommand,
			GuildID:   guildID,
			ChannelID: "300",
			Member:    &discordgo.Member{User: &discordgo.User{ID: "100"}},
			Data:      data,
		},
	}
}

func TestCommandUsage(t *testing.T) {
	t.Run("guild subcommand", func(t *testing.T) {
		i := commandInteraction("200", discordgo.ApplicationCommandInteractionData{
			Name: "giveaway",
			Options: []*discordgo.ApplicationCommandInteractionDataOption{
				{Name: "create", Type: discordgo.ApplicationCommandOptionSubCommand},
			},
		})

		usage, err := commandUsage(i, true)
		require.NoError(t, err)

		assert.Equal(t, "giveaway create", usage.Command)
		assert.Equal(t, int64(300), usage.ChannelID)
		assert.Equal(t, int64(100), usage.AuthorID)
		require.NotNil(t, usage.GuildID)
		assert.Equal(t, int64(200), *usage.GuildID)
		assert.True(t, usage.Failed)
		assert.False(t, usage.UsedAt.IsZero())
	})

	t.Run("direct message", func(t *testing.T) {
		i := commandInteraction("", discordgo.ApplicationCommandInteractionData{Name: "remind"})
		i.Member = nil
		i.User = &discordgo.User{ID: "101"}

		usage, err := commandUsage(i, false)
		require.NoError(t, err)

		assert.Equal(t, "remind", usage.Command)
		assert.Equal(t, int64(101), usage.AuthorID)
		assert.Nil(t, usage.GuildID)
	})
}

func TestNicknameChange(t *testing.T) {
	update := &discordgo.GuildMemberUpdate{
		Member:       &discordgo.Member{GuildID: "200", Nick: "tusk", User: &discordgo.User{ID: "100"}},
		BeforeUpdate: &discordgo.Member{Nick: "walrus"},
	}

	change, ok := nicknameChange(update)
	require.True(t, ok)
	assert.Equal(t, int64(200), change.GuildID)
	assert.Equal(t, int64(100), change.MemberID)
	assert.Equal(t, "tusk", change.Nickname)

	update.BeforeUpdate.Nick = "tusk"
	_, ok = nicknameChange(update)
	assert.False(t, ok, "unchanged nickname")

	update.BeforeUpdate = nil
	_, ok = nicknameChange(update)
	assert.False(t, ok, "no cached member")
}

func TestCommandsAreUnique(t *testing.T) {
	seen := make(map[string]bool)
	for _, cmd := range commands() {
		assert.False(t, seen[cmd.Name], "duplicate command %s", cmd.Name)
		seen[cmd.Name] = true
	}
	assert.ElementsMatch(t, []string{"ping", "about", "socket", "remind", "giveaway"}, keys(seen))
}

func keys(m map[string]bool) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	return out
}
