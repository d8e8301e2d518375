package settings

import (
	"context"
	"path/filepath"
	"testing"

	"codeberg.org/mutker/stackchart/internal/chart"
	"codeberg.org/mutker/stackchart/internal/errors"
	"codeberg.org/mutker/stackchart/internal/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var _ chart.Settings = (*Store)(nil)

func openMemory(t *testing.T) *Store {
	t.Helper()

	s, err := Open(context.Background(), DefaultConfig(), logger.Default())
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })

	return s
}

func TestStoreDefaults(t *testing.T) {
	s := openMemory(t)

	assert.Equal(t, "5m", s.Get(chart.KeyTimeWindow))
	assert.Equal(t, "1000", s.Get(chart.KeyUpdatingPeriod))
	assert.Empty(t, s.Get("unknown"))
}

func TestStoreSubscribe(t *testing.T) {
	s := openMemory(t)

	var got []string
	token := s.Subscribe(chart.KeyTimeWindow, func(v string) { got = append(got, v) })
	s.Subscribe(chart.KeyUpdatingPeriod, func(string) { t.Fatal("wrong key notified") })

	require.NoError(t, s.Set(chart.KeyTimeWindow, "15m"))
	require.NoError(t, s.Set(chart.KeyTimeWindow, "15m"))
	assert.Equal(t, []string{"15m"}, got)
	assert.Equal(t, "15m", s.Get(chart.KeyTimeWindow))

	s.Unsubscribe(token)
	s.Unsubscribe(token)
	require.NoError(t, s.Set(chart.KeyTimeWindow, "1m"))
	assert.Equal(t, []string{"15m"}, got)
}

func TestStoreSetDefaultValue(t *testing.T) {
	s := openMemory(t)

	calls := 0
	s.Subscribe(chart.KeyTimeWindow, func(string) { calls++ })

	require.NoError(t, s.Set(chart.KeyTimeWindow, "5m"))
	assert.Zero(t, calls)
	assert.Equal(t, "5m", s.Get(chart.KeyTimeWindow))
}

func TestStoreInvalidKey(t *testing.T) {
	s := openMemory(t)

	err := s.Set("", "x")
	assert.True(t, errors.HasCode(err, ErrInvalidKey))
}

func TestStorePersists(t *testing.T) {
	ctx := context.Background()
	cfg := DefaultConfig()
	cfg.DBPath = filepath.Join(t.TempDir(), "settings.db")

	s, err := Open(ctx, cfg, logger.Default())
	require.NoError(t, err)
	require.NoError(t, s.Set(chart.KeyTimeWindow, "1m"))
	require.NoError(t, s.Set(chart.KeyUpdatingPeriod, "250"))
	require.NoError(t, s.Set(chart.KeyUpdatingPeriod, "500"))
	require.NoError(t, s.Close())

	s, err = Open(ctx, cfg, logger.Default())
	require.NoError(t, err)
	defer s.Close()

	assert.Equal(t, "1m", s.Get(chart.KeyTimeWindow))
	assert.Equal(t, "500", s.Get(chart.KeyUpdatingPeriod))
}

func TestConfigValidate(t *testing.T) {
	assert.NoError(t, DefaultConfig().Validate())

	err := Config{Defaults: map[string]string{"": "x"}}.Validate()
	assert.True(t, errors.HasCode(err, ErrInvalidConfig))
}
