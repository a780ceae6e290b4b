package repository

import (
	"context"

	"walrus/database"
	"walrus/service"
)

// GuildRepository implements service.GuildRepository on Postgres
type GuildRepository struct {
	db *database.DB
}

// NewGuildRepository creates a new guild repository
func NewGuildRepository(db *database.DB) *GuildRepository {
	return &GuildRepository{db: db}
}

// EnsureGuilds inserts the given guild IDs, ignoring ones already present
func (r *GuildRepository) EnsureGuilds(ctx context.Context, guildIDs []int64) error {
	if len(guildIDs) == 0 {
		return nil
	}

	_, err := r.db.Exec(ctx, `
		INSERT INTO guilds (id)
		SELECT UNNEST($1::BIGINT[])
		ON CONFLICT (id) DO NOTHING
	`, guildIDs)
	return service.NewStorageError("ensure guilds", err)
}
