package giveaways

import (
	"math/rand/v2"
	"sync"

	"walrus/service"

	"github.com/bwmarrin/discordgo"
)

const (
	// Emoji is the reaction members add to enter a giveaway
	Emoji = "🎉"

	MaxWinners     = 15
	MaxPrizeLength = 255
)

// Feature represents the giveaways feature
type Feature struct {
	session   *discordgo.Session
	scheduler service.TimerScheduler

	mu  sync.Mutex
	rng *rand.Rand
}

// NewFeature creates a new giveaways feature instance
func NewFeature(session *discordgo.Session, scheduler service.TimerScheduler) *Feature {
	return &Feature{
		session:   session,
		scheduler: scheduler,
		rng:       rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64())),
	}
}

// Command returns the slash command definition for /giveaway
func Command() *discordgo.ApplicationCommand {
	minWinners := float64(1)
	manageGuild := int64(discordgo.PermissionManageGuild)
	dmPermission := false

	return &discordgo.ApplicationCommand{
		Name:                     "giveaway",
		Description:              "Run giveaways in this server",
		DefaultMemberPermissions: &manageGuild,
		DMPermission:             &dmPermission,
		Options: []*discordgo.ApplicationCommandOption{
			{
				Type:        discordgo.ApplicationCommandOptionSubCommand,
				Name:        "create",
				Description: "Start a giveaway",
				Options: []*discordgo.ApplicationCommandOption{
					{
						Type:         discordgo.ApplicationCommandOptionChannel,
						Name:         "channel",
						Description:  "Channel to hold the giveaway in",
						Required:     true,
						ChannelTypes: []discordgo.ChannelType{discordgo.ChannelTypeGuildText, discordgo.ChannelTypeGuildNews},
					},
					{
						Type:        discordgo.ApplicationCommandOptionInteger,
						Name:        "winners",
						Description: "Number of winners",
						Required:    true,
						MinValue:    &minWinners,
						MaxValue:    MaxWinners,
					},
					{
						Type:        discordgo.ApplicationCommandOptionString,
						Name:        "prize",
						Description: "What the winners get",
						Required:    true,
						MaxLength:   MaxPrizeLength,
					},
					{
						Type:        discordgo.ApplicationCommandOptionString,
						Name:        "duration",
						Description: "When the giveaway ends, e.g. 30 minutes or 12/25/2026",
						Required:    true,
					},
				},
			},
			{
				Type:        discordgo.ApplicationCommandOptionSubCommand,
				Name:        "reroll",
				Description: "Draw a new winner for an ended giveaway",
				Options: []*discordgo.ApplicationCommandOption{
					{
						Type:        discordgo.ApplicationCommandOptionString,
						Name:        "message_id",
						Description: "ID of the ended giveaway message",
						Required:    true,
					},
					{
						Type:         discordgo.ApplicationCommandOptionChannel,
						Name:         "channel",
						Description:  "Channel the giveaway was in (defaults to this one)",
						Required:     false,
						ChannelTypes: []discordgo.ChannelType{discordgo.ChannelTypeGuildText, discordgo.ChannelTypeGuildNews},
					},
				},
			},
		},
	}
}

// draw picks winners with the feature's random source
func (f *Feature) draw(entrants []string, n int) []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return DrawWinners(entrants, n, f.rng)
}

// DrawWinners picks min(n, len(entrants)) distinct entrants uniformly at random
func DrawWinners(entrants []string, n int, rng *rand.Rand) []string {
	if n > len(entrants) {
		n = len(entrants)
	}
	if n <= 0 {
		return nil
	}

	pool := append([]string(nil), entrants...)
	for i := 0; i < n; i++ {
		j := i + rng.IntN(len(pool)-i)
		pool[i], pool[j] = pool[j], pool[i]
	}
	return pool[:n]
}
