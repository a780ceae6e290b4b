package giveaways

import (
	"math/rand/v2"
	"testing"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDrawWinners(t *testing.T) {
	entrants := []string{"1", "2", "3", "4", "5", "6"}
	rng := rand.New(rand.NewPCG(1, 2))

	t.Run("draws distinct entrants", func(t *testing.T) {
		winners := DrawWinners(entrants, 3, rng)
		require.Len(t, winners, 3)

		seen := make(map[string]bool)
		for _, w := range winners {
			assert.Contains(t, entrants, w)
			assert.False(t, seen[w], "winner %s drawn twice", w)
			seen[w] = true
		}
	})

	t.Run("caps at number of entrants", func(t *testing.T) {
		winners := DrawWinners(entrants[:2], 15, rng)
		assert.ElementsMatch(t, entrants[:2], winners)
	})

	t.Run("no entrants", func(t *testing.T) {
		assert.Empty(t, DrawWinners(nil, 1, rng))
	})

	t.Run("does not reorder input", func(t *testing.T) {
		DrawWinners(entrants, 6, rng)
		assert.Equal(t, []string{"1", "2", "3", "4", "5", "6"}, entrants)
	})

	t.Run("every entrant can win", func(t *testing.T) {
		wins := make(map[string]int)
		for i := 0; i < 600; i++ {
			wins[DrawWinners(entrants, 1, rng)[0]]++
		}
		assert.Len(t, wins, len(entrants))
	})
}

func TestBuildActiveEmbed(t *testing.T) {
	now := time.Date(2026, 7, 1, 18, 0, 0, 0, time.UTC)

	embed := buildActiveEmbed("Nitro", 1, now.Add(time.Hour), now)
	assert.Equal(t, "Nitro", embed.Author.Name)
	assert.Equal(t, "React with 🎉 to enter.\nThere will be 1 winner.", embed.Description)
	assert.Equal(t, colorBlurple, embed.Color)
	assert.Empty(t, embed.Title)

	embed = buildActiveEmbed("Nitro", 3, now.Add(10*time.Second), now)
	assert.Equal(t, "React with 🎉 to enter.\nThere will be 3 winners.", embed.Description)
	assert.Equal(t, colorRed, embed.Color)
	assert.Equal(t, "Last chance to enter!", embed.Title)
}

func TestBuildEndedEmbedAndAnnouncement(t *testing.T) {
	expires := time.Date(2026, 7, 1, 18, 0, 0, 0, time.UTC)

	tests := []struct {
		name         string
		winners      []string
		description  string
		announcement string
	}{
		{"nobody", nil, "Nobody entered the giveaway! :(", "Not enough entrants to determine a winner!"},
		{"single", []string{"7"}, "Winner: <@7>", "🎉 Giveaway finished! <@7>, you win the **Nitro**! Congratulations!"},
		{"several", []string{"7", "8"}, "Winners: <@7>, <@8>", "🎉 Giveaway ended! Winners: <@7>, <@8> You all win the **Nitro**! :tada:"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			embed := buildEndedEmbed("Nitro", tt.winners, expires)
			assert.Equal(t, tt.description, embed.Description)
			assert.Equal(t, endedFooter, embed.Footer.Text)
			assert.Equal(t, colorGreen, embed.Color)
			assert.Equal(t, tt.announcement, buildAnnouncement("Nitro", tt.winners))
		})
	}
}

func TestIsEndedGiveaway(t *testing.T) {
	ended := &discordgo.Message{
		Author:  &discordgo.User{ID: "bot"},
		Content: endedContent,
		Embeds:  []*discordgo.MessageEmbed{buildEndedEmbed("Nitro", nil, time.Now())},
	}
	assert.True(t, isEndedGiveaway(ended, "bot"))
	assert.False(t, isEndedGiveaway(ended, "someone-else"))

	running := &discordgo.Message{
		Author: &discordgo.User{ID: "bot"},
		Embeds: []*discordgo.MessageEmbed{buildActiveEmbed("Nitro", 1, time.Now().Add(time.Hour), time.Now())},
	}
	assert.False(t, isEndedGiveaway(running, "bot"))
	assert.False(t, isEndedGiveaway(&discordgo.Message{Author: &discordgo.User{ID: "bot"}}, "bot"))
}
