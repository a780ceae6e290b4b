package ipc

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

func setupNATS(t *testing.T) string {
	t.Helper()
	ctx := context.Background()

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        "nats:2.10-alpine",
			ExposedPorts: []string{"4222/tcp"},
			WaitingFor:   wait.ForLog("Server is ready").WithStartupTimeout(30 * time.Second),
			Labels: map[string]string{
				"walrus.test": "true",
			},
		},
		Started: true,
	})
	require.NoError(t, err)
	t.Cleanup(func() {
		if err := container.Terminate(context.Background()); err != nil {
			t.Logf("failed to terminate nats container: %v", err)
		}
	})

	endpoint, err := container.PortEndpoint(ctx, "4222/tcp", "nats")
	require.NoError(t, err)
	return endpoint
}

type recordingObserver struct {
	mu     sync.Mutex
	routes map[string]bool
}

func (o *recordingObserver) IPCRequest(ctx context.Context, route string, duration time.Duration, failed bool) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.routes[route] = failed
}

func TestRequestReplyOverNATS(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping NATS integration test in short mode")
	}

	url := setupNATS(t)

	serverConn, err := Connect(url, "walrus-bot-test")
	require.NoError(t, err)
	t.Cleanup(serverConn.Close)

	clientConn, err := Connect(url, "walrus-dashboard-test")
	require.NoError(t, err)
	t.Cleanup(clientConn.Close)

	observer := &recordingObserver{routes: make(map[string]bool)}
	server := NewServer(serverConn, "walrus.test", WithObserver(observer))
	server.Route("test", func(ctx context.Context, data json.RawMessage) (any, error) {
		var in map[string]any
		if err := json.Unmarshal(data, &in); err != nil {
			return nil, err
		}
		return in, nil
	})
	server.Route("fail", func(ctx context.Context, data json.RawMessage) (any, error) {
		return nil, errors.New("not ready")
	})
	require.NoError(t, server.Start())
	t.Cleanup(func() { _ = server.Close() })
	require.NoError(t, serverConn.Flush())

	client := NewClient(clientConn, "walrus.test")

	t.Run("echo", func(t *testing.T) {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		var out map[string]any
		err := client.Request(ctx, "test", map[string]any{"ping": "pong"}, &out)
		require.NoError(t, err)
		assert.Equal(t, "pong", out["ping"])
	})

	t.Run("remote error", func(t *testing.T) {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		err := client.Request(ctx, "fail", nil, nil)
		var remoteErr *RemoteError
		require.ErrorAs(t, err, &remoteErr)
		assert.Equal(t, "not ready", remoteErr.Message)
	})

	t.Run("observed", func(t *testing.T) {
		observer.mu.Lock()
		defer observer.mu.Unlock()
		assert.Equal(t, map[string]bool{"test": false, "fail": true}, observer.routes)
	})

	t.Run("no responder after close", func(t *testing.T) {
		require.NoError(t, server.Close())
		require.NoError(t, serverConn.Flush())

		ctx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()

		err := client.Request(ctx, "test", map[string]any{}, nil)
		assert.Error(t, err)
	})
}
