package config

import (
	"testing"
	"time"

	log "github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("ENVIRONMENT", "test")
	t.Setenv("TIMER_LOOKAHEAD_DAYS", "")
	t.Setenv("STATS_FLUSH_SECONDS", "")
	t.Setenv("LOG_LEVEL", "")
	t.Setenv("NATS_SERVERS", "")
	t.Setenv("OTEL_ENABLED", "")
	t.Setenv("OTEL_EXPORTER_TYPE", "")
	t.Setenv("OTEL_EXPORT_INTERVAL_SECONDS", "")

	cfg, err := load()
	require.NoError(t, err)

	assert.Equal(t, 10*24*time.Hour, cfg.TimerLookahead)
	assert.Equal(t, 10*time.Second, cfg.StatsFlushInterval)
	assert.Equal(t, log.InfoLevel, cfg.LogLevel)
	assert.Equal(t, "nats://nats:4222", cfg.NATSServers)
	assert.Equal(t, "walrus.ipc", cfg.IPCSubjectPrefix)
	assert.False(t, cfg.OTelEnabled)
	assert.Equal(t, "console", cfg.OTelExporterType)
	assert.Equal(t, 60*time.Second, cfg.OTelExportInterval)
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("ENVIRONMENT", "test")
	t.Setenv("TIMER_LOOKAHEAD_DAYS", "3")
	t.Setenv("STATS_FLUSH_SECONDS", "30")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("OTEL_ENABLED", "true")
	t.Setenv("OTEL_EXPORT_INTERVAL_SECONDS", "15")

	cfg, err := load()
	require.NoError(t, err)

	assert.Equal(t, 3*24*time.Hour, cfg.TimerLookahead)
	assert.Equal(t, 30*time.Second, cfg.StatsFlushInterval)
	assert.Equal(t, log.DebugLevel, cfg.LogLevel)
	assert.True(t, cfg.OTelEnabled)
	assert.Equal(t, 15*time.Second, cfg.OTelExportInterval)
}

func TestLoadValidation(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
	}{
		{"bad lookahead", map[string]string{"ENVIRONMENT": "test", "TIMER_LOOKAHEAD_DAYS": "soon"}},
		{"zero flush interval", map[string]string{"ENVIRONMENT": "test", "STATS_FLUSH_SECONDS": "0"}},
		{"bad export interval", map[string]string{"ENVIRONMENT": "test", "OTEL_EXPORT_INTERVAL_SECONDS": "-1"}},
		{"bad log level", map[string]string{"ENVIRONMENT": "test", "LOG_LEVEL": "chatty"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			_, err := load()
			assert.Error(t, err)
		})
	}
}

func TestValidateBot(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr bool
	}{
		{"complete", Config{Environment: "production", DiscordToken: "token", DatabaseURL: "postgres://db"}, false},
		{"missing token", Config{Environment: "production", DatabaseURL: "postgres://db"}, true},
		{"missing database", Config{Environment: "production", DiscordToken: "token"}, true},
		{"blank database name", Config{Environment: "production", DiscordToken: "token", DatabaseURL: "postgres://db", DatabaseName: "  "}, true},
		{"test environment", Config{Environment: "test"}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.ValidateBot()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestGetReturnsTestConfig(t *testing.T) {
	t.Cleanup(ResetConfig)

	cfg := NewTestConfig()
	cfg.GuildID = "1234"
	SetTestConfig(cfg)

	assert.Same(t, cfg, Get())
}
