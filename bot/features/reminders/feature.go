package reminders

import (
	"walrus/service"

	"github.com/bwmarrin/discordgo"
)

// Feature represents the reminders feature
type Feature struct {
	session   *discordgo.Session
	scheduler service.TimerScheduler
}

// NewFeature creates a new reminders feature instance
func NewFeature(session *discordgo.Session, scheduler service.TimerScheduler) *Feature {
	return &Feature{
		session:   session,
		scheduler: scheduler,
	}
}

// Command returns the slash command definition for /remind
func Command() *discordgo.ApplicationCommand {
	return &discordgo.ApplicationCommand{
		Name:        "remind",
		Description: "Remind yourself of something later. Times are in UTC.",
		Options: []*discordgo.ApplicationCommandOption{
			{
				Type:        discordgo.ApplicationCommandOptionString,
				Name:        "when",
				Description: "When to remind you, e.g. 1w, \"4 months and 2 days\" or 12/25/2026",
				Required:    true,
			},
			{
				Type:        discordgo.ApplicationCommandOptionString,
				Name:        "what",
				Description: "The thing you want to be reminded of",
				Required:    false,
				MaxLength:   1500,
			},
		},
	}
}
