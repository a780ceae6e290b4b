package general

import (
	"context"
	"fmt"
	"time"

	"walrus/bot/common"
	"walrus/models"

	"github.com/bwmarrin/discordgo"
)

// HandleCommand routes /ping, /about and /socket. The returned error reports
// an internal failure.
func (f *Feature) HandleCommand(s *discordgo.Session, i *discordgo.InteractionCreate) error {
	switch i.ApplicationCommandData().Name {
	case "ping":
		return f.handlePing(s, i)
	case "about":
		return f.handleAbout(s, i)
	case "socket":
		return f.handleSocket(s, i)
	}
	return nil
}

func (f *Feature) handlePing(s *discordgo.Session, i *discordgo.InteractionCreate) error {
	latency := s.HeartbeatLatency().Round(time.Millisecond)
	return common.RespondWithMessage(s, i, fmt.Sprintf("🏓 Pong! Gateway latency: %s", latency), false)
}

func (f *Feature) handleAbout(s *discordgo.Session, i *discordgo.InteractionCreate) error {
	ctx := context.Background()

	summary, err := f.Summary(ctx)
	if err != nil {
		common.RespondWithError(s, i, "Unable to load bot statistics. Please try again.")
		return err
	}

	name := "walrus"
	if s.State.User != nil {
		name = s.State.User.Username
	}
	return common.RespondWithEmbed(s, i, buildAboutEmbed(summary, name), false)
}

func (f *Feature) handleSocket(s *discordgo.Session, i *discordgo.InteractionCreate) error {
	options := i.ApplicationCommandData().Options
	if len(options) > 0 && options[0].Name == "total" {
		totals, err := f.stats.SocketTotals(context.Background())
		if err != nil {
			common.RespondWithError(s, i, "Unable to load socket statistics. Please try again.")
			return err
		}
		return common.RespondWithMessage(s, i, FormatSocketStats(totals, 0), false)
	}

	elapsed := time.Since(f.stats.StartedAt())
	return common.RespondWithMessage(s, i, FormatSocketStats(f.stats.SessionSocketStats(), elapsed), false)
}

// Summary combines gateway state counts with persisted usage statistics
func (f *Feature) Summary(ctx context.Context) (models.BotSummary, error) {
	summary := Summarize(f.session.State)

	total, err := f.stats.CommandCount(ctx)
	if err != nil {
		return summary, err
	}
	summary.CommandsTotal = total
	summary.CommandsSince = f.stats.CommandsSinceRestart()

	totals, err := f.stats.SocketTotals(ctx)
	if err != nil {
		return summary, err
	}
	ApplySocketTotals(&summary, totals)
	return summary, nil
}
