package repository

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"walrus/database"
	"walrus/models"
	"walrus/service"

	"github.com/jackc/pgx/v5"
)

// TimerRepository implements service.TimerRepository on Postgres
type TimerRepository struct {
	db *database.DB
}

// NewTimerRepository creates a new timer repository
func NewTimerRepository(db *database.DB) *TimerRepository {
	return &TimerRepository{db: db}
}

// Create inserts a timer and returns the stored row
func (r *TimerRepository) Create(ctx context.Context, event models.EventKind, createdAt, expiresAt time.Time, payload json.RawMessage) (*models.Timer, error) {
	if len(payload) == 0 {
		payload = json.RawMessage(`{}`)
	}

	query := `
		INSERT INTO timers (event, created_at, expires_at, payload)
		VALUES ($1, $2, $3, $4)
		RETURNING id, event, created_at, expires_at, payload
	`

	timer, err := scanTimer(r.db.QueryRow(ctx, query, string(event), createdAt, expiresAt, []byte(payload)))
	if err != nil {
		return nil, service.NewStorageError("create timer", err)
	}
	return timer, nil
}

// Earliest returns the timer with the smallest expiry within window of the
// database clock. Ties on expiry are broken by id.
func (r *TimerRepository) Earliest(ctx context.Context, window time.Duration) (*models.Timer, error) {
	query := `
		SELECT id, event, created_at, expires_at, payload
		FROM timers
		WHERE expires_at < NOW() + $1::interval
		ORDER BY expires_at, id
		LIMIT 1
	`

	timer, err := scanTimer(r.db.QueryRow(ctx, query, window))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, service.NewStorageError("select earliest timer", err)
	}
	return timer, nil
}

// Delete removes a timer by ID; unknown IDs are ignored
func (r *TimerRepository) Delete(ctx context.Context, id int64) error {
	_, err := r.db.Exec(ctx, `DELETE FROM timers WHERE id = $1`, id)
	return service.NewStorageError("delete timer", err)
}

// Count returns the number of pending timers
func (r *TimerRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	if err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM timers`).Scan(&count); err != nil {
		return 0, service.NewStorageError("count timers", err)
	}
	return count, nil
}

func scanTimer(row pgx.Row) (*models.Timer, error) {
	var timer models.Timer
	var event string
	var payload []byte

	if err := row.Scan(&timer.ID, &event, &timer.CreatedAt, &timer.ExpiresAt, &payload); err != nil {
		return nil, err
	}

	timer.Event = models.EventKind(event)
	timer.CreatedAt = timer.CreatedAt.UTC()
	timer.ExpiresAt = timer.ExpiresAt.UTC()
	timer.Payload = json.RawMessage(payload)
	return &timer, nil
}
