package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Stock policies accepted by STOCK_POLICY.
const (
	StockPolicyAllow  = "allow"
	StockPolicyStrict = "strict"
)

// Config represents the full application configuration surface.
type Config struct {
	Server    ServerConfig
	Database  DatabaseConfig
	Inventory InventoryConfig
	Reporting ReportingConfig
	Log       LogConfig
}

// ServerConfig holds HTTP server related options.
type ServerConfig struct {
	Port           string
	AllowedOrigins string
}

// DatabaseConfig holds the PostgreSQL connection settings.
type DatabaseConfig struct {
	URL string
	// Timezone is the session time zone; report date windows and sales buckets
	// are evaluated in it.
	Timezone string
	// MigrateOnStart applies pending migrations when the server boots.
	MigrateOnStart bool
}

// InventoryConfig controls how the stock engine treats shortfalls.
type InventoryConfig struct {
	StockPolicy string
}

// ReportingConfig holds report defaults.
type ReportingConfig struct {
	DefaultWindowDays int
}

// LogConfig holds logger settings.
type LogConfig struct {
	Level string
}

// Load reads environment variables (optionally from the provided file) and
// materializes a Config instance.
func Load(envFile string) (*Config, error) {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil {
			if !errors.Is(err, os.ErrNotExist) {
				return nil, fmt.Errorf("failed loading env file %s: %w", envFile, err)
			}
		}
	} else {
		// A missing .env is fine when configuration comes from the environment.
		_ = godotenv.Load()
	}

	windowDays, err := strconv.Atoi(getenvWithDefault("REPORT_DEFAULT_DAYS", "30"))
	if err != nil {
		return nil, fmt.Errorf("REPORT_DEFAULT_DAYS must be an integer: %w", err)
	}

	migrateOnStart, err := strconv.ParseBool(getenvWithDefault("MIGRATE_ON_START", "false"))
	if err != nil {
		return nil, fmt.Errorf("MIGRATE_ON_START must be a boolean: %w", err)
	}

	cfg := &Config{
		Server: ServerConfig{
			Port:           getenvWithDefault("APP_PORT", "8080"),
			AllowedOrigins: os.Getenv("ALLOWED_ORIGINS"),
		},
		Database: DatabaseConfig{
			URL:            os.Getenv("DATABASE_URL"),
			Timezone:       getenvWithDefault("DB_TIMEZONE", "UTC"),
			MigrateOnStart: migrateOnStart,
		},
		Inventory: InventoryConfig{
			StockPolicy: strings.ToLower(getenvWithDefault("STOCK_POLICY", StockPolicyAllow)),
		},
		Reporting: ReportingConfig{
			DefaultWindowDays: windowDays,
		},
		Log: LogConfig{
			Level: strings.ToLower(getenvWithDefault("LOG_LEVEL", "info")),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate ensures that required configuration fields are populated.
func (c *Config) Validate() error {
	if c == nil {
		return errors.New("config is nil")
	}

	if c.Server.Port == "" {
		return errors.New("APP_PORT must be provided")
	}

	if c.Database.URL == "" {
		return errors.New("DATABASE_URL must be provided")
	}

	if _, err := time.LoadLocation(c.Database.Timezone); err != nil {
		return fmt.Errorf("DB_TIMEZONE %q is not a valid IANA zone: %w", c.Database.Timezone, err)
	}

	switch c.Inventory.StockPolicy {
	case StockPolicyAllow, StockPolicyStrict:
	default:
		return fmt.Errorf("STOCK_POLICY must be %q or %q, got %q", StockPolicyAllow, StockPolicyStrict, c.Inventory.StockPolicy)
	}

	if c.Reporting.DefaultWindowDays <= 0 {
		return errors.New("REPORT_DEFAULT_DAYS must be positive")
	}

	return nil
}

// AllowNegativeStock reports whether decrements may drive stock below zero.
func (c *Config) AllowNegativeStock() bool {
	return c.Inventory.StockPolicy != StockPolicyStrict
}

func getenvWithDefault(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}
