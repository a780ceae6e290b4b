package service

import (
	"context"
	"encoding/json"
	"time"

	"walrus/models"

	"github.com/stretchr/testify/mock"
)

// MockTimerRepository is a mock implementation of TimerRepository
type MockTimerRepository struct {
	mock.Mock
}

func (m *MockTimerRepository) Create(ctx context.Context, event models.EventKind, createdAt, expiresAt time.Time, payload json.RawMessage) (*models.Timer, error) {
	args := m.Called(ctx, event, createdAt, expiresAt, payload)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Timer), args.Error(1)
}

func (m *MockTimerRepository) Earliest(ctx context.Context, window time.Duration) (*models.Timer, error) {
	args := m.Called(ctx, window)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Timer), args.Error(1)
}

func (m *MockTimerRepository) Delete(ctx context.Context, id int64) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockTimerRepository) Count(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

// MockStatsRepository is a mock implementation of StatsRepository
type MockStatsRepository struct {
	mock.Mock
}

func (m *MockStatsRepository) Flush(ctx context.Context, usages []models.CommandUsage, socket map[string]int64, nicknames []models.NicknameChange) error {
	args := m.Called(ctx, usages, socket, nicknames)
	return args.Error(0)
}

func (m *MockStatsRepository) SocketTotals(ctx context.Context) ([]models.SocketStat, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.SocketStat), args.Error(1)
}

func (m *MockStatsRepository) CommandCount(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

// MockGuildRepository is a mock implementation of GuildRepository
type MockGuildRepository struct {
	mock.Mock
}

func (m *MockGuildRepository) EnsureGuilds(ctx context.Context, guildIDs []int64) error {
	args := m.Called(ctx, guildIDs)
	return args.Error(0)
}

// MockTimerSink is a mock implementation of TimerSink
type MockTimerSink struct {
	mock.Mock
}

func (m *MockTimerSink) Dispatch(ctx context.Context, timer *models.Timer) {
	m.Called(ctx, timer)
}
