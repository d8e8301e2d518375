package sampler

import (
	"context"
	"sync"
	"testing"
	"time"

	"codeberg.org/mutker/stackchart/internal/chart"
	"codeberg.org/mutker/stackchart/internal/errors"
	"codeberg.org/mutker/stackchart/internal/series"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubSource struct {
	mu    sync.Mutex
	reads int
	err   error
}

func (*stubSource) Metrics() []chart.Metric {
	return []chart.Metric{{Key: "a"}}
}

func (s *stubSource) Read(context.Context) (map[chart.MetricKey]float64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.reads++
	if s.err != nil {
		return nil, s.err
	}
	return map[chart.MetricKey]float64{"a": float64(s.reads)}, nil
}

func (*stubSource) Close() error { return nil }

type stubRecorder struct {
	mu      sync.Mutex
	samples []chart.Sample
}

func (r *stubRecorder) Record(_ context.Context, s chart.Sample) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.samples = append(r.samples, s)
	return nil
}

type staticPeriod string

func (p staticPeriod) Get(string) string { return string(p) }

func newBuffer(t *testing.T) *series.Buffer {
	t.Helper()
	buf, err := series.New(10)
	require.NoError(t, err)
	return buf
}

func TestNew(t *testing.T) {
	_, err := New(nil, newBuffer(t))
	assert.True(t, errors.HasCode(err, ErrInvalidSource))
}

func TestSample(t *testing.T) {
	src := &stubSource{}
	rec := &stubRecorder{}
	var snaps []series.Snapshot
	clock := time.Unix(1000, 500_000_000)

	s, err := New(src, newBuffer(t),
		WithRecorder(rec),
		WithListener(func(snap series.Snapshot) { snaps = append(snaps, snap) }),
		WithClock(func() time.Time { return clock }),
	)
	require.NoError(t, err)

	require.NoError(t, s.Sample(context.Background()))

	require.Len(t, snaps, 1)
	assert.Equal(t, 1000.5, snaps[0].TimeEnd)
	assert.Equal(t, 1.0, snaps[0].Samples[0].Values["a"])
	require.Len(t, rec.samples, 1)
	assert.Equal(t, 1000.5, rec.samples[0].Timestamp)

	clock = clock.Add(-time.Second)
	err = s.Sample(context.Background())
	assert.True(t, errors.HasCode(err, ErrAppendFailed))
}

func TestSampleReadError(t *testing.T) {
	src := &stubSource{err: assert.AnError}
	s, err := New(src, newBuffer(t))
	require.NoError(t, err)

	err = s.Sample(context.Background())
	assert.True(t, errors.HasCode(err, ErrReadFailed))
	assert.ErrorIs(t, err, assert.AnError)
}

func TestInterval(t *testing.T) {
	tests := []struct {
		setting string
		want    time.Duration
	}{
		{"250", 250 * time.Millisecond},
		{"", time.Second},
		{"-5", time.Second},
		{"fast", time.Second},
	}

	for _, tt := range tests {
		s, err := New(&stubSource{}, newBuffer(t), WithPeriod(staticPeriod(tt.setting)))
		require.NoError(t, err)
		assert.Equal(t, tt.want, s.Interval(), "setting %q", tt.setting)
	}
}

func TestRun(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	got := make(chan series.Snapshot, 16)
	s, err := New(&stubSource{}, newBuffer(t),
		WithPeriod(staticPeriod("5")),
		WithListener(func(snap series.Snapshot) {
			select {
			case got <- snap:
			default:
			}
		}),
	)
	require.NoError(t, err)

	done := make(chan error, 1)
	go func() { done <- s.Run(ctx) }()

	for i := 0; i < 3; i++ {
		select {
		case <-got:
		case <-time.After(2 * time.Second):
			t.Fatal("no sample")
		}
	}

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("sampler did not stop")
	}
}

func TestRunGivesUp(t *testing.T) {
	s, err := New(&stubSource{err: assert.AnError}, newBuffer(t), WithPeriod(staticPeriod("1")))
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	err = s.Run(ctx)
	assert.True(t, errors.HasCode(err, ErrTooManyErrors))
}

func TestSynthetic(t *testing.T) {
	src := NewSynthetic([]string{"cpu", "gpu"}, 42)
	defer src.Close()

	require.Len(t, src.Metrics(), 2)
	assert.Equal(t, chart.MetricKey("cpu"), src.Metrics()[0].Key)

	prev := map[chart.MetricKey]float64{"cpu": syntheticMax / 2, "gpu": syntheticMax / 2}
	for i := 0; i < 200; i++ {
		values, err := src.Read(context.Background())
		require.NoError(t, err)
		require.Len(t, values, 2)

		for k, v := range values {
			assert.GreaterOrEqual(t, v, 0.0)
			assert.LessOrEqual(t, v, syntheticMax)
			assert.LessOrEqual(t, v-prev[k], syntheticStep)
			assert.GreaterOrEqual(t, v-prev[k], -syntheticStep)
		}
		prev = values
	}
}
