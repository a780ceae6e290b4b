package general

import (
	"walrus/service"

	"github.com/bwmarrin/discordgo"
)

// Feature represents the general bot information commands
type Feature struct {
	session *discordgo.Session
	stats   service.StatsService
}

// NewFeature creates a new general feature instance
func NewFeature(session *discordgo.Session, stats service.StatsService) *Feature {
	return &Feature{
		session: session,
		stats:   stats,
	}
}

// Commands returns the slash command definitions owned by this feature
func Commands() []*discordgo.ApplicationCommand {
	return []*discordgo.ApplicationCommand{
		{
			Name:        "ping",
			Description: "Check the bot's gateway latency",
		},
		{
			Name:        "about",
			Description: "Things about the bot",
		},
		{
			Name:        "socket",
			Description: "Gateway event statistics",
			Options: []*discordgo.ApplicationCommandOption{
				{
					Type:        discordgo.ApplicationCommandOptionSubCommand,
					Name:        "session",
					Description: "Events received since the bot started",
				},
				{
					Type:        discordgo.ApplicationCommandOptionSubCommand,
					Name:        "total",
					Description: "Events received over the bot's lifetime",
				},
			},
		},
	}
}
