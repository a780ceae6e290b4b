package repository

import (
	"context"
	"fmt"

	"walrus/database"
	"walrus/models"
	"walrus/service"

	"github.com/jackc/pgx/v5"
)

// StatsRepository implements service.StatsRepository on Postgres
type StatsRepository struct {
	db *database.DB
}

// NewStatsRepository creates a new stats repository
func NewStatsRepository(db *database.DB) *StatsRepository {
	return &StatsRepository{db: db}
}

// Flush writes all pending statistics in a single transaction
func (r *StatsRepository) Flush(ctx context.Context, usages []models.CommandUsage, socket map[string]int64, nicknames []models.NicknameChange) error {
	if len(usages) == 0 && len(socket) == 0 && len(nicknames) == 0 {
		return nil
	}

	err := r.db.WithTransaction(ctx, func(tx pgx.Tx) error {
		batch := &pgx.Batch{}

		for _, u := range usages {
			batch.Queue(`
				INSERT INTO command_stats (guild_id, channel_id, author_id, used_at, command, failed)
				VALUES ($1, $2, $3, $4, $5, $6)
			`, u.GuildID, u.ChannelID, u.AuthorID, u.UsedAt, u.Command, u.Failed)
		}

		for name, count := range socket {
			batch.Queue(`
				INSERT INTO socket_stats (name, count)
				VALUES ($1, $2)
				ON CONFLICT (name)
				DO UPDATE SET count = socket_stats.count + EXCLUDED.count
			`, name, count)
		}

		for _, n := range nicknames {
			batch.Queue(`
				INSERT INTO nicknames (guild_id, member_id, nickname)
				VALUES ($1, $2, $3)
			`, n.GuildID, n.MemberID, n.Nickname)
		}

		if err := tx.SendBatch(ctx, batch).Close(); err != nil {
			return fmt.Errorf("failed to execute stats batch of %d statements: %w", batch.Len(), err)
		}
		return nil
	})
	return service.NewStorageError("flush stats", err)
}

// SocketTotals returns all-time socket counts, most frequent first
func (r *StatsRepository) SocketTotals(ctx context.Context) ([]models.SocketStat, error) {
	rows, err := r.db.Query(ctx, `SELECT name, count FROM socket_stats ORDER BY count DESC, name`)
	if err != nil {
		return nil, service.NewStorageError("select socket totals", err)
	}

	stats, err := pgx.CollectRows(rows, pgx.RowToStructByName[models.SocketStat])
	if err != nil {
		return nil, service.NewStorageError("scan socket totals", err)
	}
	return stats, nil
}

// CommandCount returns the all-time number of recorded commands
func (r *StatsRepository) CommandCount(ctx context.Context) (int64, error) {
	var count int64
	if err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM command_stats`).Scan(&count); err != nil {
		return 0, service.NewStorageError("count commands", err)
	}
	return count, nil
}
