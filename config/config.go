package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"

	"walrus/database"

	"github.com/joho/godotenv"
	log "github.com/sirupsen/logrus"
)

// Config holds all application configuration
type Config struct {
	// Discord configuration
	DiscordToken string
	GuildID      string // Guild to register commands in, global when empty

	// Database configuration
	DatabaseURL  string
	DatabaseName string

	// NATS configuration
	NATSServers      string // NATS server addresses (comma-separated)
	IPCSubjectPrefix string

	// Dashboard configuration
	DashboardAddr string

	// Timer configuration
	TimerLookahead time.Duration // How far ahead the dispatcher looks for timers

	// Stats configuration
	StatsFlushInterval time.Duration

	// Logging
	LogLevel log.Level

	// OpenTelemetry metrics
	OTelEnabled        bool
	OTelServiceName    string
	OTelExporterType   string // "console", "otlp" or "none"
	OTelOTLPEndpoint   string
	OTelExportInterval time.Duration

	// Environment
	Environment string // "development", "production" or "test"
}

var (
	instance *Config
	once     sync.Once
	mu       sync.Mutex // Protects instance for test setup
)

// Get returns the global configuration instance
func Get() *Config {
	mu.Lock()
	defer mu.Unlock()

	if instance != nil {
		return instance
	}

	once.Do(func() {
		var err error
		instance, err = load()
		if err != nil {
			if os.Getenv("ENVIRONMENT") == "test" {
				instance = NewTestConfig()
			} else {
				panic(fmt.Sprintf("failed to load config: %v", err))
			}
		}
	})
	return instance
}

// GetDatabaseURL constructs the full database URL by combining base URL and database name
func (c *Config) GetDatabaseURL() string {
	return database.ConstructDatabaseURL(c.DatabaseURL, c.DatabaseName)
}

// load loads configuration from a .env file, if present, and the environment
func load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("failed to load .env file: %w", err)
	}

	config := &Config{
		// Discord
		DiscordToken: os.Getenv("DISCORD_TOKEN"),
		GuildID:      os.Getenv("GUILD_ID"),

		// Database
		DatabaseURL:  os.Getenv("DATABASE_URL"),
		DatabaseName: os.Getenv("DATABASE_NAME"),

		// NATS
		NATSServers:      getEnvWithDefault("NATS_SERVERS", "nats://nats:4222"),
		IPCSubjectPrefix: getEnvWithDefault("IPC_SUBJECT_PREFIX", "walrus.ipc"),

		// Dashboard
		DashboardAddr: getEnvWithDefault("DASHBOARD_ADDR", ":8080"),

		TimerLookahead:     10 * 24 * time.Hour,
		StatsFlushInterval: 10 * time.Second,
		LogLevel:           log.InfoLevel,

		// OpenTelemetry
		OTelEnabled:        os.Getenv("OTEL_ENABLED") == "true",
		OTelServiceName:    getEnvWithDefault("OTEL_SERVICE_NAME", "walrus-bot"),
		OTelExporterType:   getEnvWithDefault("OTEL_EXPORTER_TYPE", "console"),
		OTelOTLPEndpoint:   getEnvWithDefault("OTEL_EXPORTER_OTLP_ENDPOINT", "localhost:4317"),
		OTelExportInterval: 60 * time.Second,

		// Environment
		Environment: os.Getenv("ENVIRONMENT"),
	}

	if days := os.Getenv("TIMER_LOOKAHEAD_DAYS"); days != "" {
		parsed, err := strconv.Atoi(days)
		if err != nil || parsed <= 0 {
			return nil, fmt.Errorf("TIMER_LOOKAHEAD_DAYS must be a positive integer, got %q", days)
		}
		config.TimerLookahead = time.Duration(parsed) * 24 * time.Hour
	}
	if seconds := os.Getenv("STATS_FLUSH_SECONDS"); seconds != "" {
		parsed, err := strconv.Atoi(seconds)
		if err != nil || parsed <= 0 {
			return nil, fmt.Errorf("STATS_FLUSH_SECONDS must be a positive integer, got %q", seconds)
		}
		config.StatsFlushInterval = time.Duration(parsed) * time.Second
	}
	if seconds := os.Getenv("OTEL_EXPORT_INTERVAL_SECONDS"); seconds != "" {
		parsed, err := strconv.Atoi(seconds)
		if err != nil || parsed <= 0 {
			return nil, fmt.Errorf("OTEL_EXPORT_INTERVAL_SECONDS must be a positive integer, got %q", seconds)
		}
		config.OTelExportInterval = time.Duration(parsed) * time.Second
	}
	if level := os.Getenv("LOG_LEVEL"); level != "" {
		parsed, err := log.ParseLevel(level)
		if err != nil {
			return nil, fmt.Errorf("invalid LOG_LEVEL: %w", err)
		}
		config.LogLevel = parsed
	}

	// Set default environment if not specified
	if config.Environment == "" {
		config.Environment = "development"
	}

	return config, nil
}

// ValidateBot checks the settings the bot process cannot start without.
// The dashboard only talks to NATS and skips this.
func (c *Config) ValidateBot() error {
	if c.Environment == "test" {
		return nil
	}
	if c.DiscordToken == "" {
		return fmt.Errorf("DISCORD_TOKEN is required")
	}
	if c.DatabaseURL == "" {
		return fmt.Errorf("DATABASE_URL is required")
	}
	if c.DatabaseName != "" && strings.TrimSpace(c.DatabaseName) == "" {
		return fmt.Errorf("DATABASE_NAME cannot be empty when provided")
	}
	return nil
}

// getEnvWithDefault returns the environment variable value or a default if not set
func getEnvWithDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// Test helpers - only use in tests

// SetTestConfig overrides the global config instance for testing
func SetTestConfig(testConfig *Config) {
	mu.Lock()
	defer mu.Unlock()
	instance = testConfig
}

// ResetConfig resets the global config instance and sync.Once for testing
func ResetConfig() {
	mu.Lock()
	defer mu.Unlock()
	instance = nil
	once = sync.Once{}
}

// NewTestConfig creates a minimal config suitable for unit tests
func NewTestConfig() *Config {
	return &Config{
		DiscordToken:       "test-token",
		IPCSubjectPrefix:   "walrus.test",
		DashboardAddr:      "127.0.0.1:0",
		TimerLookahead:     10 * 24 * time.Hour,
		StatsFlushInterval: 10 * time.Second,
		LogLevel:           log.DebugLevel,
		OTelExporterType:   "none",
		OTelExportInterval: 60 * time.Second,
		Environment:        "test",
	}
}
