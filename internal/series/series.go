// Package series holds the bounded sample buffer the chart reads from.
package series

import (
	"sync"

	"codeberg.org/mutker/stackchart/internal/chart"
	"codeberg.org/mutker/stackchart/internal/errors"
)

const (
	ErrInvalidCapacity = errors.ErrorCode("series_invalid_capacity")
	ErrOutOfOrder      = errors.ErrorCode("series_out_of_order")
)

// DefaultMax is the retained sample count: fifteen minutes at one sample per
// second plus headroom for panning.
const DefaultMax = 1800

// Snapshot is a consistent copy of the buffer.
type Snapshot struct {
	Samples []chart.Sample
	// TimeEnd is the timestamp of the newest sample.
	TimeEnd float64
	// AtCapacity is set when the buffer is full, so the next append evicts.
	AtCapacity bool
}

// Buffer is a bounded, append-only series. Appending to a full buffer drops
// the oldest sample. It is safe for concurrent use.
type Buffer struct {
	mu      sync.RWMutex
	max     int
	samples []chart.Sample
}

// New returns an empty buffer holding at most capacity samples.
func New(capacity int) (*Buffer, error) {
	if capacity <= 0 {
		return nil, errors.New().WithData(ErrInvalidCapacity, capacity)
	}

	return &Buffer{max: capacity, samples: make([]chart.Sample, 0, capacity)}, nil
}

// Append adds s. Samples not newer than the newest one are rejected.
func (b *Buffer) Append(s chart.Sample) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if n := len(b.samples); n > 0 && s.Timestamp <= b.samples[n-1].Timestamp {
		return errors.New().WithData(ErrOutOfOrder, s.Timestamp)
	}

	if len(b.samples) == b.max {
		// Shift in place; the backing array never grows past max.
		copy(b.samples, b.samples[1:])
		b.samples[len(b.samples)-1] = s
		return nil
	}

	b.samples = append(b.samples, s)

	return nil
}

// Len returns the number of retained samples.
func (b *Buffer) Len() int {
	b.mu.RLock()
	defer b.mu.RUnlock()

	return len(b.samples)
}

// Max returns the capacity.
func (b *Buffer) Max() int {
	return b.max
}

// Snapshot copies the buffer. The copy is never mutated by later appends.
func (b *Buffer) Snapshot() Snapshot {
	b.mu.RLock()
	defer b.mu.RUnlock()

	snap := Snapshot{
		Samples:    make([]chart.Sample, len(b.samples)),
		AtCapacity: len(b.samples) == b.max,
	}
	copy(snap.Samples, b.samples)
	if n := len(b.samples); n > 0 {
		snap.TimeEnd = b.samples[n-1].Timestamp
	}

	return snap
}
