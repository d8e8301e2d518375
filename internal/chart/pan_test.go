package chart

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDragSessionMove(t *testing.T) {
	t.Run("whole samples only", func(t *testing.T) {
		d := NewDragSession(0)

		assert.Equal(t, 0, d.Move(9, 10))
		assert.Equal(t, 1, d.Move(15, 10))
		assert.Equal(t, 10.0, d.Anchor)
		assert.Equal(t, 15.0, d.Last)
	})

	t.Run("200px under five minutes is twenty samples", func(t *testing.T) {
		d := NewDragSession(0)

		assert.Equal(t, 20, d.Move(200, 10))
		assert.Equal(t, 200.0, d.Anchor)
	})

	t.Run("leftwards is negative", func(t *testing.T) {
		d := NewDragSession(100)

		assert.Equal(t, -4, d.Move(55, 10))
		assert.Equal(t, 60.0, d.Anchor)
	})

	t.Run("reversal re-anchors", func(t *testing.T) {
		d := NewDragSession(0)
		require.Equal(t, 1, d.Move(15, 10))

		assert.Equal(t, 0, d.Move(12, 10))
		assert.Equal(t, 12.0, d.Anchor)
		assert.Equal(t, -1, d.Move(2, 10))
	})
}

func TestShiftRange(t *testing.T) {
	tests := []struct {
		name    string
		r       Range
		steps   int
		max     int
		want    Range
		changed bool
	}{
		{"towards older", Range{29, 329}, 20, 329, Range{9, 309}, true},
		{"clamped at oldest", Range{9, 309}, 20, 329, Range{0, 300}, true},
		{"already at oldest", Range{0, 300}, 20, 329, Range{0, 300}, false},
		{"towards newer", Range{0, 300}, -10, 329, Range{10, 310}, true},
		{"clamped at newest", Range{0, 300}, -60, 329, Range{29, 329}, true},
		{"already at newest", Range{29, 329}, -5, 329, Range{29, 329}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, changed := ShiftRange(tt.r, tt.steps, tt.max)

			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.changed, changed)
		})
	}
}

func TestShiftRangeProperties(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	const maxIndex = 499

	r := Range{Start: 200, End: 499}
	width := r.Width()

	for i := 0; i < 2000; i++ {
		steps := rng.Intn(121) - 60
		next, changed := ShiftRange(r, steps, maxIndex)

		require.True(t, next.ValidFor(maxIndex+1), "range %v after %d steps", next, steps)
		if changed {
			assert.Equal(t, width, next.Width())
		}
		r = next
	}
}

func TestStepRange(t *testing.T) {
	t.Run("back one window", func(t *testing.T) {
		got := StepRange(Range{Start: 600, End: 900}, -1, false, 999)

		require.NotNil(t, got)
		assert.Equal(t, Range{Start: 300, End: 600}, *got)
	})

	t.Run("back reaching the oldest data jumps there", func(t *testing.T) {
		got := StepRange(Range{Start: 250, End: 550}, -1, false, 999)

		require.NotNil(t, got)
		assert.Equal(t, Range{Start: 0, End: 300}, *got)
	})

	t.Run("forward one window", func(t *testing.T) {
		got := StepRange(Range{Start: 0, End: 300}, 1, false, 999)

		require.NotNil(t, got)
		assert.Equal(t, Range{Start: 300, End: 600}, *got)
	})

	t.Run("forward reaching live returns to live", func(t *testing.T) {
		assert.Nil(t, StepRange(Range{Start: 400, End: 700}, 1, false, 999))
		assert.Nil(t, StepRange(Range{Start: 0, End: 300}, 1, true, 999))
	})

	t.Run("oldest edge keeps width within the series", func(t *testing.T) {
		got := StepRange(Range{Start: 5, End: 20}, -1, true, 10)

		require.NotNil(t, got)
		assert.Equal(t, Range{Start: 0, End: 10}, *got)
	})
}

func TestReanchorPin(t *testing.T) {
	values := map[MetricKey]float64{"a": 1}
	prev := makeSeries(330, 0, values)

	t.Run("follows evicted samples", func(t *testing.T) {
		next := makeSeries(330, 5, values)

		got := ReanchorPin(Range{Start: 9, End: 309}, prev, next)

		assert.Equal(t, Range{Start: 4, End: 304}, got)
		assert.Equal(t, prev[9].Timestamp, next[got.Start].Timestamp)
	})

	t.Run("irregular sampling uses timestamps", func(t *testing.T) {
		next := append([]Sample(nil), prev[7:]...)
		next = append(next, Sample{Timestamp: 331.5, Values: values}, Sample{Timestamp: 340, Values: values})

		got := ReanchorPin(Range{Start: 20, End: 40}, prev, next)

		assert.Equal(t, Range{Start: 13, End: 33}, got)
	})

	t.Run("repeated timestamps count every evicted sample", func(t *testing.T) {
		at := func(ts ...float64) []Sample {
			out := make([]Sample, len(ts))
			for i, v := range ts {
				out[i] = Sample{Timestamp: v, Values: values}
			}
			return out
		}
		prev := at(0, 1, 1, 2, 3, 4)
		next := at(1, 2, 3, 4, 5, 6)

		got := ReanchorPin(Range{Start: 3, End: 5}, prev, next)

		assert.Equal(t, Range{Start: 1, End: 3}, got)
		assert.Equal(t, 2.0, next[got.Start].Timestamp)
	})

	t.Run("evicted start slides to oldest", func(t *testing.T) {
		next := makeSeries(330, 10, values)

		got := ReanchorPin(Range{Start: 4, End: 104}, prev, next)

		assert.Equal(t, Range{Start: 0, End: 100}, got)
	})

	t.Run("no overlap keeps width at oldest", func(t *testing.T) {
		next := makeSeries(330, 1000, values)

		got := ReanchorPin(Range{Start: 4, End: 104}, prev, next)

		assert.Equal(t, Range{Start: 0, End: 100}, got)
		assert.True(t, got.ValidFor(len(next)))
	})

	t.Run("short series clamps end", func(t *testing.T) {
		next := makeSeries(50, 0, values)

		got := ReanchorPin(Range{Start: 20, End: 120}, prev, next)

		assert.Equal(t, Range{Start: 0, End: 49}, got)
		assert.True(t, got.ValidFor(len(next)))
	})
}
