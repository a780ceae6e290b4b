package dashboard

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockRequester struct {
	mock.Mock
}

func (m *mockRequester) Request(ctx context.Context, route string, data any, out any) error {
	args := m.Called(ctx, route, data, out)
	if raw, ok := args.Get(0).(string); ok && raw != "" {
		*(out.(*json.RawMessage)) = json.RawMessage(raw)
	}
	return args.Error(1)
}

func get(t *testing.T, handler http.Handler, path string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec
}

func TestDashboardStaticRoutes(t *testing.T) {
	handler := NewServer(new(mockRequester)).Handler()

	rec := get(t, handler, "/")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Hello, World!", rec.Body.String())

	rec = get(t, handler, "/health")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "OK", rec.Body.String())

	rec = get(t, handler, "/missing")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestDashboardProxiesToIPC(t *testing.T) {
	ipc := new(mockRequester)
	ipc.On("Request", mock.Anything, "stats", nil, mock.Anything).Return(`{"users":12,"guilds":3}`, nil)
	ipc.On("Request", mock.Anything, "timers", nil, mock.Anything).Return("", errors.New("nats: no responders available for request"))

	handler := NewServer(ipc).Handler()

	t.Run("success", func(t *testing.T) {
		rec := get(t, handler, "/api/stats")
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "application/json; charset=utf-8", rec.Header().Get("Content-Type"))

		var resp APIResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.True(t, resp.Success)
		assert.JSONEq(t, `{"users":12,"guilds":3}`, string(resp.Data))
	})

	t.Run("bot unreachable", func(t *testing.T) {
		rec := get(t, handler, "/api/timers")
		assert.Equal(t, http.StatusBadGateway, rec.Code)

		var resp APIResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.False(t, resp.Success)
		assert.Contains(t, resp.Error, "no responders")
	})

	ipc.AssertExpectations(t)
}
