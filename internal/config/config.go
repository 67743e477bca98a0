package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds application configuration. Vendor credentials are
// deliberately NOT read here — they live in the Setting entity and are
// resolved through the repository layer, so they can be rotated without
// a restart.
type Config struct {
	// Server
	Port    int
	DevMode bool

	// Database
	DatabasePath string

	// Logging
	LogLevel string

	// Default job intervals, overridable per environment
	MarketRefreshInterval time.Duration
	PositionRevalInterval time.Duration
	OrderMatcherInterval  time.Duration
	TradingBotInterval    time.Duration
	MaintenanceSchedule   string // cron expression for the housekeeping job
}

// Load reads configuration from environment variables, falling back to
// a .env file if present.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		Port:                  getEnvAsInt("PORT", 8080),
		DevMode:               getEnvAsBool("DEV_MODE", false),
		DatabasePath:          getEnv("DATABASE_PATH", "./data/papertrader.db"),
		LogLevel:              getEnv("LOG_LEVEL", "info"),
		MarketRefreshInterval: getEnvAsDuration("MARKET_REFRESH_INTERVAL", 60*time.Second),
		PositionRevalInterval: getEnvAsDuration("POSITION_REVAL_INTERVAL", 30*time.Second),
		OrderMatcherInterval:  getEnvAsDuration("ORDER_MATCHER_INTERVAL", 5*time.Second),
		TradingBotInterval:    getEnvAsDuration("TRADING_BOT_INTERVAL", 300*time.Second),
		MaintenanceSchedule:   getEnv("MAINTENANCE_SCHEDULE", "@every 1h"),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks if required configuration is present.
func (c *Config) Validate() error {
	if c.DatabasePath == "" {
		return fmt.Errorf("DATABASE_PATH is required")
	}
	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
		}
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
