package history

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"codeberg.org/mutker/stackchart/internal/chart"
	"codeberg.org/mutker/stackchart/internal/errors"
	"codeberg.org/mutker/stackchart/internal/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig(t *testing.T) Config {
	t.Helper()

	cfg := DefaultConfig()
	cfg.Enabled = true
	cfg.DBPath = filepath.Join(t.TempDir(), "history.db")

	return cfg
}

func sample(ts float64, values map[chart.MetricKey]float64) chart.Sample {
	return chart.Sample{Timestamp: ts, Values: values}
}

func TestNewServiceDisabled(t *testing.T) {
	rec, err := NewService(DefaultConfig(), logger.Default())
	require.NoError(t, err)

	assert.NoError(t, rec.Record(context.Background(), sample(1, map[chart.MetricKey]float64{"a": 1})))
	samples, err := rec.Load(context.Background(), 10)
	assert.NoError(t, err)
	assert.Empty(t, samples)
	assert.NoError(t, rec.Close())
}

func TestConfigValidate(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Enabled = true
	assert.True(t, errors.HasCode(cfg.Validate(), ErrInvalidDBPath))

	cfg = DefaultConfig()
	cfg.BatchSize = -1
	assert.True(t, errors.HasCode(cfg.Validate(), ErrInvalidConfig))
}

func TestRecordAndLoad(t *testing.T) {
	ctx := context.Background()
	cfg := testConfig(t)

	rec, err := NewService(cfg, logger.Default())
	require.NoError(t, err)

	for i := 0; i < 5; i++ {
		ts := 1000 + float64(i)
		require.NoError(t, rec.Record(ctx, sample(ts, map[chart.MetricKey]float64{"a": float64(i), "b": 2})))
	}

	samples, err := rec.Load(ctx, 3)
	require.NoError(t, err)
	require.Len(t, samples, 3)
	assert.Equal(t, 1002.0, samples[0].Timestamp)
	assert.Equal(t, 1004.0, samples[2].Timestamp)
	assert.Equal(t, map[chart.MetricKey]float64{"a": 4, "b": 2}, samples[2].Values)

	require.NoError(t, rec.Close())

	rec, err = NewService(cfg, logger.Default())
	require.NoError(t, err)
	defer rec.Close()

	samples, err = rec.Load(ctx, 100)
	require.NoError(t, err)
	assert.Len(t, samples, 5)
}

func TestRecordRejectsEmptySample(t *testing.T) {
	rec, err := NewService(testConfig(t), logger.Default())
	require.NoError(t, err)
	defer rec.Close()

	err = rec.Record(context.Background(), sample(1, nil))
	assert.True(t, errors.HasCode(err, ErrInvalidSample))
}

func TestRecordCancelledContext(t *testing.T) {
	rec, err := NewService(testConfig(t), logger.Default())
	require.NoError(t, err)
	defer rec.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err = rec.Record(ctx, sample(1, map[chart.MetricKey]float64{"a": 1}))
	assert.True(t, errors.HasCode(err, ErrOperationTimeout))
}

func TestRetention(t *testing.T) {
	ctx := context.Background()
	cfg := testConfig(t)
	cfg.BatchSize = 1
	cfg.Retention = time.Minute

	rec, err := NewService(cfg, logger.Default())
	require.NoError(t, err)
	defer rec.Close()

	values := map[chart.MetricKey]float64{"a": 1}
	require.NoError(t, rec.Record(ctx, sample(0, values)))
	require.NoError(t, rec.Record(ctx, sample(30, values)))
	require.NoError(t, rec.Record(ctx, sample(100, values)))

	samples, err := rec.Load(ctx, 10)
	require.NoError(t, err)
	require.Len(t, samples, 1)
	assert.Equal(t, 100.0, samples[0].Timestamp)
}
