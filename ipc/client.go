package ipc

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/nats-io/nats.go"
	log "github.com/sirupsen/logrus"
)

// Client sends requests to a Server over NATS request-reply
type Client struct {
	nc     *nats.Conn
	prefix string
}

// NewClient creates a client for the server listening under prefix
func NewClient(nc *nats.Conn, prefix string) *Client {
	return &Client{nc: nc, prefix: prefix}
}

// Request calls route with data and decodes the result into out, which may be nil.
// The deadline comes from ctx.
func (c *Client) Request(ctx context.Context, route string, data any, out any) error {
	req := Request{ID: uuid.New(), Route: route}
	if data != nil {
		raw, err := json.Marshal(data)
		if err != nil {
			return fmt.Errorf("failed to encode %s request: %w", route, err)
		}
		req.Data = raw
	}

	payload, err := json.Marshal(req)
	if err != nil {
		return fmt.Errorf("failed to encode %s request: %w", route, err)
	}

	msg, err := c.nc.RequestWithContext(ctx, subject(c.prefix, route), payload)
	if err != nil {
		return fmt.Errorf("ipc request %s failed: %w", route, err)
	}

	var resp Response
	if err := json.Unmarshal(msg.Data, &resp); err != nil {
		return fmt.Errorf("failed to decode %s response: %w", route, err)
	}
	if resp.ID != req.ID {
		log.WithFields(log.Fields{
			"route":    route,
			"expected": req.ID,
			"got":      resp.ID,
		}).Warn("IPC response ID mismatch")
		return fmt.Errorf("ipc response for %s has mismatched id %s", route, resp.ID)
	}
	if resp.Error != "" {
		return &RemoteError{Route: route, Message: resp.Error}
	}

	if out == nil || len(resp.Data) == 0 {
		return nil
	}
	if err := json.Unmarshal(resp.Data, out); err != nil {
		return fmt.Errorf("failed to decode %s result: %w", route, err)
	}
	return nil
}
