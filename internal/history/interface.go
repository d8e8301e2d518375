package history

import (
	"context"

	"codeberg.org/mutker/stackchart/internal/chart"
)

// Recorder keeps samples across restarts.
type Recorder interface {
	Record(ctx context.Context, sample chart.Sample) error
	// Load returns up to limit of the newest samples, oldest first.
	Load(ctx context.Context, limit int) ([]chart.Sample, error)
	Close() error
}

// Repository is the storage behind a Recorder.
type Repository interface {
	Record(sample chart.Sample) error
	Load(ctx context.Context, limit int) ([]chart.Sample, error)
	Close() error
}
