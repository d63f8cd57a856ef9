// Package config provides configuration management functionality.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/joho/godotenv"

	"github.com/aristath/assetsim/internal/scheduler"
	"github.com/aristath/assetsim/internal/utils"
)

// Config holds application configuration
type Config struct {
	DataDir          string // Base directory for scenarios.db (always absolute)
	LogLevel         string
	Port             int
	DevMode          bool
	CORSOrigins      []string
	SimRuns          int    // Default runs per batch
	SimYears         int    // Default years per batch
	SimSeed          uint64 // 0 = entropy-seeded
	SnapshotSchedule string // Cron spec for the default snapshot refresh, empty disables it
}

// Load reads .env (if present) and the environment
func Load() (*Config, error) {
	_ = godotenv.Load()

	absDataDir, err := filepath.Abs(getEnv("ASSETSIM_DATA_DIR", "./data"))
	if err != nil {
		return nil, fmt.Errorf("failed to resolve data directory path: %w", err)
	}
	if err := os.MkdirAll(absDataDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}

	cfg := &Config{
		DataDir:          absDataDir,
		LogLevel:         getEnv("LOG_LEVEL", "info"),
		Port:             getEnvAsInt("ASSETSIM_PORT", 8080),
		DevMode:          getEnvAsBool("DEV_MODE", false),
		CORSOrigins:      utils.ParseCSV(getEnv("CORS_ORIGINS", "*")),
		SimRuns:          getEnvAsInt("SIM_RUNS", 200),
		SimYears:         getEnvAsInt("SIM_YEARS", 5),
		SimSeed:          getEnvAsUint64("SIM_SEED", 0),
		SnapshotSchedule: os.Getenv("SIM_SNAPSHOT_SCHEDULE"),
	}
	if _, set := os.LookupEnv("SIM_SNAPSHOT_SCHEDULE"); !set {
		cfg.SnapshotSchedule = "@every 10m"
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks value ranges
func (c *Config) Validate() error {
	if c.Port < 1 || c.Port > 65535 {
		return fmt.Errorf("invalid port %d", c.Port)
	}
	if c.SimRuns < 1 || c.SimRuns > 10000 {
		return fmt.Errorf("SIM_RUNS must be between 1 and 10000, got %d", c.SimRuns)
	}
	if c.SimYears < 1 || c.SimYears > 50 {
		return fmt.Errorf("SIM_YEARS must be between 1 and 50, got %d", c.SimYears)
	}
	if c.SnapshotSchedule != "" {
		if _, err := scheduler.Parser.Parse(c.SnapshotSchedule); err != nil {
			return fmt.Errorf("invalid SIM_SNAPSHOT_SCHEDULE %q: %w", c.SnapshotSchedule, err)
		}
	}
	return nil
}

// ScenariosDBPath is the scenario store location
func (c *Config) ScenariosDBPath() string {
	return filepath.Join(c.DataDir, "scenarios.db")
}

// Helper functions
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

func getEnvAsUint64(key string, defaultValue uint64) uint64 {
	if value := os.Getenv(key); value != "" {
		if v, err := strconv.ParseUint(value, 10, 64); err == nil {
			return v
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
