package ipc

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/nats-io/nats.go"
	log "github.com/sirupsen/logrus"
)

// ErrUnknownRoute is returned for requests to a route no handler is registered for
var ErrUnknownRoute = errors.New("unknown ipc route")

// Request is the envelope sent from the dashboard to the bot
type Request struct {
	ID    uuid.UUID       `json:"id"`
	Route string          `json:"route"`
	Data  json.RawMessage `json:"data,omitempty"`
}

// Response is the envelope returned for a Request with the same ID
type Response struct {
	ID    uuid.UUID       `json:"id"`
	Data  json.RawMessage `json:"data,omitempty"`
	Error string          `json:"error,omitempty"`
}

// RemoteError carries a handler failure back to the requester
type RemoteError struct {
	Route   string
	Message string
}

func (e *RemoteError) Error() string {
	return fmt.Sprintf("ipc route %s failed: %s", e.Route, e.Message)
}

// Connect opens a NATS connection with reconnect handling and logging
func Connect(servers, name string) (*nats.Conn, error) {
	opts := []nats.Option{
		nats.Name(name),
		nats.MaxReconnects(10),
		nats.ReconnectWait(2 * time.Second),
		nats.DisconnectErrHandler(func(nc *nats.Conn, err error) {
			if err != nil {
				log.WithError(err).Error("NATS disconnected with error")
			} else {
				log.Warn("NATS disconnected")
			}
		}),
		nats.ReconnectHandler(func(nc *nats.Conn) {
			log.Info("NATS reconnected")
		}),
		nats.ErrorHandler(func(nc *nats.Conn, sub *nats.Subscription, err error) {
			fields := log.Fields{"error": err}
			if sub != nil {
				fields["subject"] = sub.Subject
			}
			log.WithFields(fields).Error("NATS async error")
		}),
	}

	nc, err := nats.Connect(servers, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to NATS: %w", err)
	}

	log.WithField("servers", servers).Info("Connected to NATS")
	return nc, nil
}

func subject(prefix, route string) string {
	return prefix + "." + route
}
