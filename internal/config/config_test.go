package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"codeberg.org/mutker/waterforcectl/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad(t *testing.T) {
	tempDir := t.TempDir()

	configContent := []byte(`
interval = 2
fanspeed = 1800
pumpspeed = 2400
cputemp = 45
monitor = false
log_level = "debug"
telemetry = true
database = "/path/to/telemetry.db"
`)
	configPath := filepath.Join(tempDir, "waterforcectl.toml")
	err := os.WriteFile(configPath, configContent, 0o600)
	require.NoError(t, err)

	t.Setenv("WATERFORCECTL_CONFIG", configPath)

	cfg, err := config.Load()
	require.NoError(t, err)

	assert.Equal(t, 2, cfg.Interval, "Expected Interval 2")
	assert.Equal(t, 1800, cfg.FanSpeed, "Expected FanSpeed 1800")
	assert.Equal(t, 2400, cfg.PumpSpeed, "Expected PumpSpeed 2400")
	assert.Equal(t, 45, cfg.CPUTemp, "Expected CPUTemp 45")
	assert.False(t, cfg.Monitor, "Expected Monitor false")
	assert.Equal(t, "debug", cfg.LogLevel, "Expected LogLevel debug")
	assert.True(t, cfg.Telemetry, "Expected Telemetry true")
	assert.Equal(t, "/path/to/telemetry.db", cfg.TelemetryDB, "Expected TelemetryDB /path/to/telemetry.db")
}

func TestLoadDefaults(t *testing.T) {
	// Ensure no config file is used
	t.Setenv("WATERFORCECTL_CONFIG", filepath.Join(t.TempDir(), "missing.toml"))

	cfg, err := config.Load()
	require.NoError(t, err, "Failed to load config")

	assert.Equal(t, 5, cfg.Interval, "Expected default Interval 5")
	assert.Equal(t, 0, cfg.FanSpeed, "Expected default FanSpeed 0")
	assert.Equal(t, 0, cfg.PumpSpeed, "Expected default PumpSpeed 0")
	assert.Equal(t, -1, cfg.CPUTemp, "Expected default CPUTemp -1")
	assert.False(t, cfg.Monitor, "Expected default Monitor false")
	assert.Equal(t, config.DefaultLogLevel, cfg.LogLevel, "Expected default LogLevel info")
	assert.False(t, cfg.Telemetry, "Expected default Telemetry false")
}

func TestLoadConfigFileInvalidFormat(t *testing.T) {
	tempDir := t.TempDir()

	configContent := []byte(`
This is not a valid TOML file
`)
	configPath := filepath.Join(tempDir, "waterforcectl.toml")
	err := os.WriteFile(configPath, configContent, 0o600)
	require.NoError(t, err)

	t.Setenv("WATERFORCECTL_CONFIG", configPath)

	_, err = config.Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Failed to read config file")
}

func TestInvalidLogLevel(t *testing.T) {
	tempDir := t.TempDir()

	configContent := []byte(`
log_level = "invalid"
`)
	configPath := filepath.Join(tempDir, "waterforcectl.toml")
	err := os.WriteFile(configPath, configContent, 0o600)
	require.NoError(t, err)

	t.Setenv("WATERFORCECTL_CONFIG", configPath)

	_, err = config.Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid")
}

func TestInvalidInterval(t *testing.T) {
	tempDir := t.TempDir()

	configContent := []byte(`
interval = 0
`)
	configPath := filepath.Join(tempDir, "waterforcectl.toml")
	err := os.WriteFile(configPath, configContent, 0o600)
	require.NoError(t, err)

	t.Setenv("WATERFORCECTL_CONFIG", configPath)

	_, err = config.Load()
	require.Error(t, err)
}

func TestLogLevelFlag(t *testing.T) {
	t.Setenv("WATERFORCECTL_CONFIG", filepath.Join(t.TempDir(), "missing.toml"))

	// Save original args and restore after test
	oldArgs := os.Args
	defer func() { os.Args = oldArgs }()

	os.Args = []string{"cmd", "--log-level", "debug"}

	cfg, err := config.Load()
	require.NoError(t, err)
	assert.Equal(t, "debug", cfg.LogLevel, "Expected LogLevel to be set by flag")
}
