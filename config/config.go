package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"

	"casino/database"

	"github.com/joho/godotenv"
	log "github.com/sirupsen/logrus"
)

// Config holds all application configuration
type Config struct {
	// Database configuration
	DatabaseURL  string
	DatabaseName string
	DBMaxConns   int // Pool size upper bound
	DBMinConns   int // Connections kept open while idle

	// HTTP configuration
	HTTPAddr string // Address the API listens on, e.g. ":8080"

	// NATS configuration
	NATSServers string // NATS server addresses (comma-separated)
	NATSEnabled bool   // Publish domain events to NATS; events are dropped when false

	// Operation configuration
	OperationTimeout        time.Duration // Upper bound for a single money operation
	BonusExpiryInterval     time.Duration // How often pending bonuses are checked for expiry
	BonusExpiryBatchSize    int           // Max bonuses expired per worker tick
	PlayerSettlementEnabled bool          // Allow bet owners (not only admins) to settle their own bets

	// Logging
	LogLevel string

	// Observability configuration
	MetricsEnabled       bool
	MetricsExporter      string // "console", "otlp" or "none"
	OTLPEndpoint         string
	MetricsExportSeconds int

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

	// If instance is already set (e.g., by tests), return it
	if instance != nil {
		return instance
	}

	once.Do(func() {
		var err error
		instance, err = load()
		if err != nil {
			// In test environment, use a default test config instead of panicking
			if os.Getenv("GO_TEST") == "1" || os.Getenv("ENVIRONMENT") == "test" {
				instance = NewTestConfig()
			} else {
				panic(fmt.Sprintf("failed to load config: %v", err))
			}
		}
	})
	return instance
}

// PoolOptions returns the connection pool settings. Lock waits are capped at the
// operation timeout so a blocked FOR UPDATE fails on the server as well.
func (c *Config) PoolOptions() database.PoolOptions {
	return database.PoolOptions{
		MaxConns:    int32(c.DBMaxConns),
		MinConns:    int32(c.DBMinConns),
		LockTimeout: c.OperationTimeout,
	}
}

// GetDatabaseURL constructs the full database URL by combining base URL and database name
func (c *Config) GetDatabaseURL() string {
	return database.ConstructDatabaseURL(c.DatabaseURL, c.DatabaseName)
}

// IsProduction reports whether the service runs in production
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

// load loads configuration from environment variables, reading .env first if present
func load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		log.WithError(err).Warn("Failed to load .env file")
	}

	config := &Config{
		// Database
		DatabaseURL:  os.Getenv("DATABASE_URL"),
		DatabaseName: os.Getenv("DATABASE_NAME"),
		DBMaxConns:   getIntWithDefault("DB_MAX_CONNS", 20),
		DBMinConns:   getIntWithDefault("DB_MIN_CONNS", 2),

		// HTTP
		HTTPAddr: getEnvWithDefault("HTTP_ADDR", ":8080"),

		// NATS
		NATSServers: getEnvWithDefault("NATS_SERVERS", "nats://nats:4222"),
		NATSEnabled: getBoolWithDefault("NATS_ENABLED", true),

		// Operations
		OperationTimeout:        getDurationWithDefault("OPERATION_TIMEOUT", 5*time.Second),
		BonusExpiryInterval:     getDurationWithDefault("BONUS_EXPIRY_INTERVAL", time.Minute),
		BonusExpiryBatchSize:    getIntWithDefault("BONUS_EXPIRY_BATCH_SIZE", 500),
		PlayerSettlementEnabled: getBoolWithDefault("PLAYER_SETTLEMENT_ENABLED", true),

		// Logging
		LogLevel: getEnvWithDefault("LOG_LEVEL", "info"),

		// Observability
		MetricsEnabled:       getBoolWithDefault("OTEL_METRICS_ENABLED", false),
		MetricsExporter:      getEnvWithDefault("OTEL_METRICS_EXPORTER", "console"),
		OTLPEndpoint:         getEnvWithDefault("OTEL_EXPORTER_OTLP_ENDPOINT", "localhost:4317"),
		MetricsExportSeconds: getIntWithDefault("OTEL_METRIC_EXPORT_INTERVAL_SECONDS", 30),

		// Environment
		Environment: os.Getenv("ENVIRONMENT"),
	}

	// Set default environment if not specified
	if config.Environment == "" {
		config.Environment = "development"
	}

	if config.Environment != "test" {
		// Validate required configuration
		if config.DatabaseURL == "" {
			return nil, fmt.Errorf("DATABASE_URL is required")
		}
		// If DatabaseName is provided, ensure it's not empty
		if config.DatabaseName != "" && strings.TrimSpace(config.DatabaseName) == "" {
			return nil, fmt.Errorf("DATABASE_NAME cannot be empty when provided")
		}
	}

	if config.OperationTimeout <= 0 {
		return nil, fmt.Errorf("OPERATION_TIMEOUT must be positive")
	}
	if config.BonusExpiryInterval <= 0 {
		return nil, fmt.Errorf("BONUS_EXPIRY_INTERVAL must be positive")
	}
	if config.DBMaxConns <= 0 || config.DBMinConns < 0 || config.DBMinConns > config.DBMaxConns {
		return nil, fmt.Errorf("DB_MIN_CONNS must be between 0 and DB_MAX_CONNS (%d)", config.DBMaxConns)
	}

	return config, nil
}

// ConfigureLogging applies the configured log level and formatter to logrus
func (c *Config) ConfigureLogging() {
	level, err := log.ParseLevel(c.LogLevel)
	if err != nil {
		log.WithField("level", c.LogLevel).Warn("Unknown log level, falling back to info")
		level = log.InfoLevel
	}
	log.SetLevel(level)

	if c.IsProduction() {
		log.SetFormatter(&log.JSONFormatter{})
	} else {
		log.SetFormatter(&log.TextFormatter{FullTimestamp: true})
	}
}

// getEnvWithDefault returns the environment variable value or a default if not set
func getEnvWithDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getIntWithDefault(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.Atoi(value); err == nil {
			return parsed
		}
		log.WithField("key", key).Warn("Invalid integer in environment, using default")
	}
	return defaultValue
}

func getBoolWithDefault(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.ParseBool(value); err == nil {
			return parsed
		}
		log.WithField("key", key).Warn("Invalid boolean in environment, using default")
	}
	return defaultValue
}

// getDurationWithDefault accepts Go durations ("5s") or a bare number of seconds
func getDurationWithDefault(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	if parsed, err := time.ParseDuration(value); err == nil {
		return parsed
	}
	if seconds, err := strconv.Atoi(value); err == nil {
		return time.Duration(seconds) * time.Second
	}
	log.WithField("key", key).Warn("Invalid duration in environment, using default")
	return defaultValue
}

// Test helpers - only use in tests

// SetTestConfig overrides the global config instance for testing
// This should only be called from test files
func SetTestConfig(testConfig *Config) {
	mu.Lock()
	defer mu.Unlock()
	instance = testConfig
}

// ResetConfig resets the global config instance and sync.Once for testing
// This should only be called from test files
func ResetConfig() {
	mu.Lock()
	defer mu.Unlock()
	instance = nil
	once = sync.Once{}
}

// NewTestConfig creates a minimal config suitable for unit tests
func NewTestConfig() *Config {
	return &Config{
		Environment:             "test",
		HTTPAddr:                ":0",
		DBMaxConns:              10,
		OperationTimeout:        5 * time.Second,
		BonusExpiryInterval:     time.Minute,
		BonusExpiryBatchSize:    100,
		PlayerSettlementEnabled: true,
		LogLevel:                "debug",
		MetricsExporter:         "none",
	}
}
