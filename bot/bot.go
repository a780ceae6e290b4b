package bot

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"walrus/bot/common"
	"walrus/bot/features/general"
	"walrus/bot/features/giveaways"
	"walrus/bot/features/reminders"
	"walrus/events"
	"walrus/models"
	"walrus/service"

	"github.com/bwmarrin/discordgo"
	log "github.com/sirupsen/logrus"
)

// Config holds bot configuration
type Config struct {
	Token    string
	GuildID  string   // Commands are registered globally when empty
	Observer Observer // Optional
}

// Observer is told about handled commands and gateway traffic
type Observer interface {
	CommandUsed(ctx context.Context, command string, failed bool)
	GatewayEvent(ctx context.Context, eventType string)
}

type noopObserver struct{}

func (noopObserver) CommandUsed(context.Context, string, bool) {}
func (noopObserver) GatewayEvent(context.Context, string)      {}

// Bot manages the Discord session and all feature modules
type Bot struct {
	// Core components
	config  Config
	session *discordgo.Session
	stats   service.StatsService
	guilds  service.GuildRepository

	// Feature modules
	general   *general.Feature
	reminders *reminders.Feature
	giveaways *giveaways.Feature
}

// New creates a bot, subscribes its timer handlers to sink and connects to the gateway
func New(config Config, scheduler service.TimerScheduler, stats service.StatsService, guilds service.GuildRepository, sink *events.Sink) (*Bot, error) {
	dg, err := discordgo.New("Bot " + config.Token)
	if err != nil {
		return nil, fmt.Errorf("error creating discord session: %w", err)
	}
	dg.Identify.Intents = discordgo.IntentsAll

	if config.Observer == nil {
		config.Observer = noopObserver{}
	}

	bot := &Bot{
		config:  config,
		session: dg,
		stats:   stats,
		guilds:  guilds,
	}

	// Create feature modules
	bot.general = general.NewFeature(dg, stats)
	bot.reminders = reminders.NewFeature(dg, scheduler)
	bot.giveaways = giveaways.NewFeature(dg, scheduler)

	// Fired timers are routed here by the dispatcher
	sink.Subscribe(models.EventKindReminder, bot.reminders.HandleTimer)
	sink.Subscribe(models.EventKindGiveaway, bot.giveaways.HandleTimer)

	// Register handlers
	dg.AddHandler(bot.handleCommands)
	dg.AddHandler(bot.handleReady)
	dg.AddHandler(bot.handleGuildCreate)
	dg.AddHandler(bot.handleGuildMemberUpdate)
	dg.AddHandler(bot.handleSocketEvent)

	// Open websocket connection
	if err := dg.Open(); err != nil {
		return nil, fmt.Errorf("error opening connection: %w", err)
	}

	// Register slash commands with Discord
	if err := bot.registerCommands(); err != nil {
		dg.Close()
		return nil, fmt.Errorf("error registering commands: %w", err)
	}

	return bot, nil
}

// Close gracefully shuts down the bot
func (b *Bot) Close() error {
	return b.session.Close()
}

// Summary returns guild, member, channel and usage counts for the dashboard
func (b *Bot) Summary(ctx context.Context) (models.BotSummary, error) {
	return b.general.Summary(ctx)
}

// handleCommands routes slash commands to appropriate features and records usage
func (b *Bot) handleCommands(s *discordgo.Session, i *discordgo.InteractionCreate) {
	if i.Type != discordgo.InteractionApplicationCommand {
		return
	}

	data := i.ApplicationCommandData()

	var err error
	switch data.Name {
	case "ping", "about", "socket":
		err = b.general.HandleCommand(s, i)
	case "remind":
		err = b.reminders.HandleCommand(s, i)
	case "giveaway":
		err = b.giveaways.HandleCommand(s, i)
	default:
		log.Warnf("Unknown command: %s", data.Name)
		return
	}

	if err != nil {
		log.WithError(err).WithFields(log.Fields{
			"command":   data.Name,
			"guildID":   i.GuildID,
			"channelID": i.ChannelID,
		}).Error("Command failed")
	}

	usage, parseErr := commandUsage(i, err != nil)
	b.config.Observer.CommandUsed(context.Background(), usage.Command, usage.Failed)
	if parseErr != nil {
		log.WithError(parseErr).Warn("Failed to record command usage")
		return
	}
	b.stats.RecordCommand(usage)
}

// handleReady records every guild the bot is a member of on connect
func (b *Bot) handleReady(s *discordgo.Session, r *discordgo.Ready) {
	log.WithFields(log.Fields{
		"user":   r.User.Username,
		"guilds": len(r.Guilds),
	}).Info("Connected to Discord")

	ids := make([]int64, 0, len(r.Guilds))
	for _, g := range r.Guilds {
		if id, err := strconv.ParseInt(g.ID, 10, 64); err == nil {
			ids = append(ids, id)
		}
	}
	b.ensureGuilds(ids...)
}

// handleGuildCreate handles when the bot joins or reconnects to a guild
func (b *Bot) handleGuildCreate(s *discordgo.Session, g *discordgo.GuildCreate) {
	guildID, err := strconv.ParseInt(g.ID, 10, 64)
	if err != nil {
		log.Errorf("Failed to parse guild ID %s: %v", g.ID, err)
		return
	}
	b.ensureGuilds(guildID)
}

func (b *Bot) ensureGuilds(ids ...int64) {
	if len(ids) == 0 {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := b.guilds.EnsureGuilds(ctx, ids); err != nil {
		log.WithError(err).WithField("guilds", len(ids)).Error("Failed to record guilds")
	}
}

// handleGuildMemberUpdate records nickname changes
func (b *Bot) handleGuildMemberUpdate(s *discordgo.Session, m *discordgo.GuildMemberUpdate) {
	change, ok := nicknameChange(m)
	if ok {
		b.stats.RecordNickname(change)
	}
}

// handleSocketEvent counts every gateway dispatch by type
func (b *Bot) handleSocketEvent(s *discordgo.Session, e *discordgo.Event) {
	b.stats.RecordSocketEvent(e.Type)
	if e.Type != "" {
		b.config.Observer.GatewayEvent(context.Background(), e.Type)
	}
}

// commandUsage builds the usage record for a completed slash command
func commandUsage(i *discordgo.InteractionCreate, failed bool) (models.CommandUsage, error) {
	usage := models.CommandUsage{
		UsedAt:  common.InteractionTime(i),
		Command: qualifiedName(i.ApplicationCommandData()),
		Failed:  failed,
	}

	channelID, err := strconv.ParseInt(i.ChannelID, 10, 64)
	if err != nil {
		return usage, fmt.Errorf("invalid channel ID %q: %w", i.ChannelID, err)
	}
	usage.ChannelID = channelID

	user := common.InteractionUser(i)
	if user == nil {
		return usage, fmt.Errorf("interaction %s has no user", i.ID)
	}
	authorID, err := strconv.ParseInt(user.ID, 10, 64)
	if err != nil {
		return usage, fmt.Errorf("invalid user ID %q: %w", user.ID, err)
	}
	usage.AuthorID = authorID

	if i.GuildID != "" {
		guildID, err := strconv.ParseInt(i.GuildID, 10, 64)
		if err != nil {
			return usage, fmt.Errorf("invalid guild ID %q: %w", i.GuildID, err)
		}
		usage.GuildID = &guildID
	}
	return usage, nil
}

// qualifiedName joins the command with its subcommand, e.g. "giveaway create"
func qualifiedName(data discordgo.ApplicationCommandInteractionData) string {
	name := data.Name
	for _, opt := range data.Options {
		if opt.Type == discordgo.ApplicationCommandOptionSubCommand {
			return name + " " + opt.Name
		}
	}
	return name
}

// nicknameChange reports a member's new nickname when it differs from the cached one
func nicknameChange(m *discordgo.GuildMemberUpdate) (models.NicknameChange, bool) {
	if m.Member == nil || m.User == nil || m.BeforeUpdate == nil {
		return models.NicknameChange{}, false
	}
	if m.Nick == "" || m.Nick == m.BeforeUpdate.Nick {
		return models.NicknameChange{}, false
	}

	guildID, err := strconv.ParseInt(m.GuildID, 10, 64)
	if err != nil {
		return models.NicknameChange{}, false
	}
	memberID, err := strconv.ParseInt(m.User.ID, 10, 64)
	if err != nil {
		return models.NicknameChange{}, false
	}

	return models.NicknameChange{GuildID: guildID, MemberID: memberID, Nickname: m.Nick}, true
}
