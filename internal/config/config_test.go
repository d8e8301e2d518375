package config_test

import (
	"io"
	"os"
	"path/filepath"
	"testing"
	"time"

	"codeberg.org/mutker/stackchart/internal/config"
	"codeberg.org/mutker/stackchart/internal/errors"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "stackchart.toml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	return path
}

func TestLoad(t *testing.T) {
	configPath := writeConfig(t, `
log_level = "debug"
source = "nvml"
gpu_metric = "utilization"
max_samples = 900
update_period = 500
time_window = "15m"
history = true
history_db = "/path/to/history.db"
batch_timeout = "5s"
timezone = "UTC"
`)

	t.Setenv("STACKCHART_CONFIG", configPath)

	cfg, err := config.Load(nil)
	require.NoError(t, err)

	assert.Equal(t, config.LogLevelDebug, cfg.LogLevel)
	assert.Equal(t, config.SourceNVML, cfg.Source)
	assert.Equal(t, "utilization", cfg.GPUMetric)
	assert.Equal(t, 900, cfg.MaxSamples)
	assert.Equal(t, 500, cfg.UpdatePeriod)
	assert.Equal(t, "15m", cfg.TimeWindow)
	assert.True(t, cfg.History)
	assert.Equal(t, "/path/to/history.db", cfg.HistoryDB)
	assert.Equal(t, 5*time.Second, cfg.BatchTimeout)
	assert.Equal(t, time.UTC, cfg.Location())
}

func TestLoadDefaults(t *testing.T) {
	t.Setenv("STACKCHART_CONFIG", "")
	t.Setenv("HOME", t.TempDir())

	cfg, err := config.Load(nil)
	require.NoError(t, err, "Failed to load config")

	assert.Equal(t, config.DefaultLogLevel, cfg.LogLevel)
	assert.Equal(t, config.SourceSynthetic, cfg.Source)
	assert.Equal(t, []string{"system", "user", "iowait"}, cfg.Metrics)
	assert.Equal(t, 1800, cfg.MaxSamples)
	assert.Equal(t, 1000, cfg.UpdatePeriod)
	assert.Equal(t, "5m", cfg.TimeWindow)
	assert.False(t, cfg.History)
	assert.Equal(t, 30, cfg.BatchSize)
	assert.Equal(t, 10*time.Second, cfg.BatchTimeout)
	assert.Equal(t, 24*time.Hour, cfg.Retention)
	assert.Equal(t, 1150, cfg.ChartWidth)
	assert.Equal(t, 250, cfg.ChartHeight)
	assert.Equal(t, time.Local, cfg.Location())
	assert.NotEmpty(t, cfg.SettingsDB)
}

func TestLoadPrecedence(t *testing.T) {
	configPath := writeConfig(t, `
update_period = 500
time_window = "15m"
`)
	t.Setenv("STACKCHART_CONFIG", configPath)
	t.Setenv("STACKCHART_UPDATE_PERIOD", "250")
	t.Setenv("STACKCHART_TIME_WINDOW", "1m")

	cfg, err := config.Load([]string{"--update-period", "100"})
	require.NoError(t, err)

	assert.Equal(t, 100, cfg.UpdatePeriod, "flag wins over env")
	assert.Equal(t, "1m", cfg.TimeWindow, "env wins over file")
}

func TestLoadConfigFlag(t *testing.T) {
	t.Setenv("STACKCHART_CONFIG", "")
	configPath := writeConfig(t, `source = "nvml"`)

	cfg, err := config.Load([]string{"--config", configPath})
	require.NoError(t, err)
	assert.Equal(t, config.SourceNVML, cfg.Source)

	cfg, err = config.Load(nil, config.WithConfigFile(configPath))
	require.NoError(t, err)
	assert.Equal(t, config.SourceNVML, cfg.Source)
}

func TestLoadConfigFileInvalidFormat(t *testing.T) {
	configPath := writeConfig(t, `
This is not a valid TOML file
`)
	t.Setenv("STACKCHART_CONFIG", configPath)

	_, err := config.Load(nil)
	require.Error(t, err)
	assert.True(t, errors.HasCode(err, errors.ErrReadConfig))
	assert.Contains(t, err.Error(), "Failed to read config file")
}

func TestLoadMissingExplicitFile(t *testing.T) {
	t.Setenv("STACKCHART_CONFIG", "")

	_, err := config.Load([]string{"--config", filepath.Join(t.TempDir(), "missing.toml")})
	assert.True(t, errors.HasCode(err, errors.ErrReadConfig))
}

func TestLoadValidation(t *testing.T) {
	t.Setenv("STACKCHART_CONFIG", "")

	tests := []struct {
		name string
		args []string
		code errors.ErrorCode
	}{
		{"log level", []string{"--log-level", "invalid"}, errors.ErrInvalidLogLevel},
		{"source", []string{"--source", "serial"}, errors.ErrInvalidSource},
		{"update period", []string{"--update-period", "0"}, errors.ErrInvalidInterval},
		{"time window", []string{"--time-window", "2h"}, errors.ErrInvalidConfig},
		{"gpu metric", []string{"--source", "nvml", "--gpu-metric", "fan"}, errors.ErrInvalidConfig},
		{"chart size", []string{"--width", "10"}, errors.ErrInvalidConfig},
		{"timezone", []string{"--timezone", "Mars/Olympus"}, errors.ErrInvalidConfig},
		{"history path", []string{"--history", "--history-db", ""}, errors.ErrInvalidConfig},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := config.Load(tt.args)
			require.Error(t, err)
			assert.True(t, errors.HasCode(err, tt.code), "got %v", err)
		})
	}
}

func TestLoadRetentionCoversWindow(t *testing.T) {
	t.Setenv("STACKCHART_CONFIG", "")
	t.Setenv("STACKCHART_RETENTION", "10m")

	_, err := config.Load([]string{"--time-window", "15m"})
	require.Error(t, err)
	assert.True(t, errors.HasCode(err, errors.ErrInvalidConfig), "got %v", err)

	cfg, err := config.Load([]string{"--time-window", "5m"})
	require.NoError(t, err)
	assert.Equal(t, 10*time.Minute, cfg.Retention)
}

func TestLogLevelFlag(t *testing.T) {
	t.Setenv("STACKCHART_CONFIG", "")

	cfg, err := config.Load([]string{"--log-level", "debug"})
	require.NoError(t, err)
	assert.Equal(t, config.LogLevelDebug, cfg.LogLevel, "Expected LogLevel to be set by flag")
}

func TestHelp(t *testing.T) {
	t.Setenv("STACKCHART_CONFIG", "")

	_, err := config.Load([]string{"--help"}, config.WithOutput(io.Discard))
	assert.ErrorIs(t, err, pflag.ErrHelp)
}
