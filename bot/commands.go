package bot

import (
	"fmt"

	"walrus/bot/features/general"
	"walrus/bot/features/giveaways"
	"walrus/bot/features/reminders"

	"github.com/bwmarrin/discordgo"
	log "github.com/sirupsen/logrus"
)

// commands returns every slash command the bot serves
func commands() []*discordgo.ApplicationCommand {
	cmds := general.Commands()
	cmds = append(cmds, reminders.Command(), giveaways.Command())
	return cmds
}

// registerCommands registers all slash commands with Discord
func (b *Bot) registerCommands() error {
	for _, cmd := range commands() {
		_, err := b.session.ApplicationCommandCreate(b.session.State.User.ID, b.config.GuildID, cmd)
		if err != nil {
			return fmt.Errorf("cannot create '%s' command: %w", cmd.Name, err)
		}
	}

	log.WithFields(log.Fields{
		"count":   len(commands()),
		"guildID": b.config.GuildID,
	}).Info("Registered slash commands")
	return nil
}
