package service

import (
	"context"
	"encoding/json"
	"time"

	"walrus/models"
)

// TimerRepository defines durable storage for timers
type TimerRepository interface {
	// Create persists a new timer and returns it with its assigned ID
	Create(ctx context.Context, event models.EventKind, createdAt, expiresAt time.Time, payload json.RawMessage) (*models.Timer, error)

	// Earliest returns the timer expiring soonest within window of now, or nil when there is none
	Earliest(ctx context.Context, window time.Duration) (*models.Timer, error)

	// Delete removes a timer. Deleting an unknown ID is not an error.
	Delete(ctx context.Context, id int64) error

	// Count returns the number of pending timers
	Count(ctx context.Context) (int64, error)
}

// TimerSink receives timers once they have fired
type TimerSink interface {
	Dispatch(ctx context.Context, timer *models.Timer)
}

// DispatcherObserver is told about fired timers and loop restarts
type DispatcherObserver interface {
	TimerFired(ctx context.Context, event models.EventKind, late time.Duration)
	DispatcherRestarted(ctx context.Context)
}

// TimerScheduler is the registration surface exposed to feature modules
type TimerScheduler interface {
	// CreateTimer persists a timer and wakes the dispatcher if it is due sooner than the armed one
	CreateTimer(ctx context.Context, event models.EventKind, createdAt, expiresAt time.Time, payload any) (*models.Timer, error)
}

// StatsRepository defines persistence for bot usage statistics
type StatsRepository interface {
	// Flush writes pending command usages, socket counts and nickname changes in one transaction
	Flush(ctx context.Context, usages []models.CommandUsage, socket map[string]int64, nicknames []models.NicknameChange) error

	// SocketTotals returns all-time socket event counts ordered by count descending
	SocketTotals(ctx context.Context) ([]models.SocketStat, error)

	// CommandCount returns the all-time number of recorded command uses
	CommandCount(ctx context.Context) (int64, error)
}

// GuildRepository tracks guilds the bot has joined
type GuildRepository interface {
	// EnsureGuilds inserts any guild IDs not already known
	EnsureGuilds(ctx context.Context, guildIDs []int64) error
}

// StatsService collects and reports process-wide usage counters
type StatsService interface {
	RecordCommand(usage models.CommandUsage)
	RecordSocketEvent(name string)
	RecordNickname(change models.NicknameChange)

	// SessionSocketStats returns counts since process start ordered by count descending
	SessionSocketStats() []models.SocketStat
	CommandsSinceRestart() int64
	StartedAt() time.Time

	SocketTotals(ctx context.Context) ([]models.SocketStat, error)
	CommandCount(ctx context.Context) (int64, error)
	Flush(ctx context.Context) error
}
