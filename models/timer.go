package models

import (
	"encoding/json"
	"fmt"
	"time"
)

// EventKind selects which handler receives a fired timer
type EventKind string

const (
	EventKindReminder EventKind = "reminder"
	EventKindGiveaway EventKind = "giveaway"
)

// Timer is a persisted event scheduled to be dispatched once at ExpiresAt
type Timer struct {
	ID        int64           `db:"id" json:"id"`
	Event     EventKind       `db:"event" json:"event"`
	CreatedAt time.Time       `db:"created_at" json:"created_at"`
	ExpiresAt time.Time       `db:"expires_at" json:"expires_at"`
	Payload   json.RawMessage `db:"payload" json:"payload"`
}

// DecodePayload unmarshals the timer payload into v
func (t *Timer) DecodePayload(v any) error {
	if len(t.Payload) == 0 {
		return fmt.Errorf("timer %d has no payload", t.ID)
	}
	if err := json.Unmarshal(t.Payload, v); err != nil {
		return fmt.Errorf("failed to decode %s payload of timer %d: %w", t.Event, t.ID, err)
	}
	return nil
}

// Until returns how long until the timer is due, never negative
func (t *Timer) Until(now time.Time) time.Duration {
	if d := t.ExpiresAt.Sub(now); d > 0 {
		return d
	}
	return 0
}

// ReminderPayload is stored with reminder timers
type ReminderPayload struct {
	AuthorID  string `json:"author"`
	GuildID   string `json:"guild"`
	ChannelID string `json:"channel"`
	MessageID string `json:"message"`
	Content   string `json:"reminder_content"`
}

// GiveawayPayload is stored with giveaway timers
type GiveawayPayload struct {
	ChannelID string `json:"channel"`
	MessageID string `json:"message"`
	Prize     string `json:"prize"`
	Winners   int    `json:"winners"`
	Emoji     string `json:"emoji"`
}
