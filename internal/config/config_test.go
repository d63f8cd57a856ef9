package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	dataDir := t.TempDir()
	t.Setenv("ASSETSIM_DATA_DIR", dataDir)
	t.Setenv("SIM_SNAPSHOT_SCHEDULE", "")
	require.NoError(t, os.Unsetenv("SIM_SNAPSHOT_SCHEDULE"))
	t.Setenv("ASSETSIM_PORT", "")
	t.Setenv("SIM_RUNS", "")
	t.Setenv("SIM_YEARS", "")
	t.Setenv("SIM_SEED", "")
	t.Setenv("CORS_ORIGINS", "")
	t.Setenv("LOG_LEVEL", "")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, dataDir, cfg.DataDir)
	assert.Equal(t, "@every 10m", cfg.SnapshotSchedule)
	assert.Equal(t, 8080, cfg.Port)
	assert.Equal(t, 200, cfg.SimRuns)
	assert.Equal(t, 5, cfg.SimYears)
	assert.Equal(t, uint64(0), cfg.SimSeed)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, []string{"*"}, cfg.CORSOrigins)
	assert.Equal(t, filepath.Join(cfg.DataDir, "scenarios.db"), cfg.ScenariosDBPath())
}

func TestLoad_FromEnvironment(t *testing.T) {
	dataDir := filepath.Join(t.TempDir(), "sim")
	t.Setenv("ASSETSIM_DATA_DIR", dataDir)
	t.Setenv("ASSETSIM_PORT", "9090")
	t.Setenv("DEV_MODE", "true")
	t.Setenv("SIM_RUNS", "1000")
	t.Setenv("SIM_YEARS", "10")
	t.Setenv("SIM_SEED", "42")
	t.Setenv("SIM_SNAPSHOT_SCHEDULE", "0 */5 * * * *")
	t.Setenv("CORS_ORIGINS", "http://localhost:5173, https://sim.example")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, dataDir, cfg.DataDir)
	assert.DirExists(t, dataDir)
	assert.Equal(t, 9090, cfg.Port)
	assert.True(t, cfg.DevMode)
	assert.Equal(t, 1000, cfg.SimRuns)
	assert.Equal(t, 10, cfg.SimYears)
	assert.Equal(t, uint64(42), cfg.SimSeed)
	assert.Equal(t, "0 */5 * * * *", cfg.SnapshotSchedule)
	assert.Equal(t, []string{"http://localhost:5173", "https://sim.example"}, cfg.CORSOrigins)
}

func TestLoad_EmptyScheduleDisablesRefresh(t *testing.T) {
	t.Setenv("ASSETSIM_DATA_DIR", t.TempDir())
	t.Setenv("SIM_SNAPSHOT_SCHEDULE", "")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Empty(t, cfg.SnapshotSchedule)
}

func TestValidate(t *testing.T) {
	valid := func() *Config {
		return &Config{Port: 8080, SimRuns: 200, SimYears: 5, SnapshotSchedule: "@every 10m"}
	}
	require.NoError(t, valid().Validate())

	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"port zero", func(c *Config) { c.Port = 0 }},
		{"port too high", func(c *Config) { c.Port = 70000 }},
		{"no runs", func(c *Config) { c.SimRuns = 0 }},
		{"too many years", func(c *Config) { c.SimYears = 51 }},
		{"bad schedule", func(c *Config) { c.SnapshotSchedule = "every ten minutes" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}
