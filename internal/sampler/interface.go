package sampler

import (
	"context"

	"codeberg.org/mutker/stackchart/internal/chart"
	"codeberg.org/mutker/stackchart/internal/series"
)

// Source produces one value per metric on every read.
type Source interface {
	// Metrics lists the metrics in stacking order. It does not change after
	// the source is created.
	Metrics() []chart.Metric
	Read(ctx context.Context) (map[chart.MetricKey]float64, error)
	Close() error
}

// Recorder persists samples.
type Recorder interface {
	Record(ctx context.Context, sample chart.Sample) error
}

// PeriodSource provides the current sampling interval setting.
type PeriodSource interface {
	Get(key string) string
}

// Listener is notified after every appended sample with a consistent
// snapshot of the buffer.
type Listener func(snap series.Snapshot)
