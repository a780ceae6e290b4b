package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"walrus/bot"
	"walrus/config"
	"walrus/database"
	"walrus/events"
	"walrus/ipc"
	"walrus/models"
	"walrus/observability"
	"walrus/repository"
	"walrus/service"

	log "github.com/sirupsen/logrus"
)

// timerOverview is the payload of the "timers" IPC route
type timerOverview struct {
	service.DispatcherStatus
	Pending  int64              `json:"pending"`
	Handlers []models.EventKind `json:"handlers"`
}

// Run initializes and starts the bot process
func Run(ctx context.Context) error {
	cfg := config.Get()
	log.SetLevel(cfg.LogLevel)
	if err := cfg.ValidateBot(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	log.Info("Starting walrus bot...")

	// Initialize database connection
	log.Info("Connecting to database...")
	db, err := database.NewConnection(ctx, cfg.GetDatabaseURL())
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer db.Close()
	log.Info("Database connection established successfully")

	// Metrics
	metrics, shutdownMetrics, err := observability.Setup(ctx, observability.Settings{
		Enabled:        cfg.OTelEnabled,
		ServiceName:    cfg.OTelServiceName,
		Environment:    cfg.Environment,
		ExporterType:   cfg.OTelExporterType,
		OTLPEndpoint:   cfg.OTelOTLPEndpoint,
		ExportInterval: cfg.OTelExportInterval,
	})
	if err != nil {
		return fmt.Errorf("failed to initialize metrics: %w", err)
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdownMetrics(shutdownCtx); err != nil {
			log.WithError(err).Warn("Failed to flush metrics")
		}
	}()

	timerRepo := repository.NewTimerRepository(db)
	statsRepo := repository.NewStatsRepository(db)
	guildRepo := repository.NewGuildRepository(db)

	// Timer dispatch
	sink := events.NewSink()
	dispatcher := service.NewTimerDispatcher(timerRepo, sink,
		service.WithLookahead(cfg.TimerLookahead),
		service.WithObserver(metrics),
	)

	// Stats
	stats := service.NewStatsService(statsRepo)
	stopStats := stats.Start(ctx, cfg.StatsFlushInterval)
	defer stopStats()

	// Initialize Discord bot
	log.Info("Initializing Discord bot...")
	discordBot, err := bot.New(bot.Config{
		Token:    cfg.DiscordToken,
		GuildID:  cfg.GuildID,
		Observer: metrics,
	}, dispatcher, stats, guildRepo, sink)
	if err != nil {
		return fmt.Errorf("failed to initialize Discord bot: %w", err)
	}
	defer func() {
		if err := discordBot.Close(); err != nil {
			log.WithError(err).Error("Error closing Discord bot")
		}
	}()
	log.Info("Discord bot initialized successfully")

	// Handlers are subscribed by bot.New, so timers that fire from here on have somewhere to go
	stopDispatcher := dispatcher.Start(ctx)
	defer stopDispatcher()

	// Dashboard IPC
	nc, err := ipc.Connect(cfg.NATSServers, "walrus-bot")
	if err != nil {
		return err
	}
	defer nc.Close()

	server := ipc.NewServer(nc, cfg.IPCSubjectPrefix, ipc.WithObserver(metrics))
	server.Route("test", func(ctx context.Context, data json.RawMessage) (any, error) {
		return data, nil
	})
	server.Route("stats", func(ctx context.Context, data json.RawMessage) (any, error) {
		return discordBot.Summary(ctx)
	})
	server.Route("timers", func(ctx context.Context, data json.RawMessage) (any, error) {
		pending, err := timerRepo.Count(ctx)
		if err != nil {
			return nil, err
		}
		return timerOverview{
			DispatcherStatus: dispatcher.Status(),
			Pending:          pending,
			Handlers:         sink.Kinds(),
		}, nil
	})
	if err := server.Start(); err != nil {
		return err
	}
	defer server.Close()

	log.WithField("environment", cfg.Environment).Info("Bot is running")
	<-ctx.Done()

	log.Info("Shutting down bot...")
	return nil
}
