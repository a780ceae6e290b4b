package ipc

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestServerServe(t *testing.T) {
	server := NewServer(nil, "walrus.test")
	server.Route("test", func(ctx context.Context, data json.RawMessage) (any, error) {
		return map[string]string{"hello": "world"}, nil
	})
	server.Route("broken", func(ctx context.Context, data json.RawMessage) (any, error) {
		return nil, errors.New("database unavailable")
	})

	ctx := context.Background()
	id := uuid.New()

	t.Run("routes to handler", func(t *testing.T) {
		resp := server.Serve(ctx, Request{ID: id, Route: "test"})
		assert.Equal(t, id, resp.ID)
		assert.Empty(t, resp.Error)
		require.NotEmpty(t, resp.Data)
		assert.JSONEq(t, `{"hello":"world"}`, string(resp.Data))
	})

	t.Run("handler error is reported", func(t *testing.T) {
		resp := server.Serve(ctx, Request{ID: id, Route: "broken"})
		assert.Equal(t, "database unavailable", resp.Error)
		assert.Empty(t, resp.Data)
	})

	t.Run("unknown route", func(t *testing.T) {
		resp := server.Serve(ctx, Request{ID: id, Route: "missing"})
		assert.Contains(t, resp.Error, ErrUnknownRoute.Error())
	})

	assert.Equal(t, []string{"broken", "test"}, server.Routes())
}
