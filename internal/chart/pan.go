package chart

import (
	"math"
	"sort"
)

// DragSession is the state of a held pointer button on the plot.
type DragSession struct {
	Anchor float64
	Last   float64
}

// NewDragSession starts a drag at pointer position x.
func NewDragSession(x float64) *DragSession {
	return &DragSession{Anchor: x, Last: x}
}

// Move records a pointer move to x and returns the whole number of samples
// the pointer has travelled from the anchor. Positive values mean the pointer
// moved right, which reveals older samples. Travelled pixels are consumed by
// advancing the anchor. A move back towards the anchor re-anchors at x and
// returns zero so small reversals near the start do not oscillate.
func (d *DragSession) Move(x, pixelsPerIndex float64) int {
	if math.Abs(d.Anchor-x) < math.Abs(d.Anchor-d.Last) {
		d.Anchor = x
		d.Last = x
		return 0
	}

	d.Last = x
	if pixelsPerIndex <= 0 {
		return 0
	}

	dist := x - d.Anchor
	steps := int(math.Floor(math.Abs(dist) / pixelsPerIndex))
	if dist < 0 {
		steps = -steps
	}
	if steps != 0 {
		d.Anchor += float64(steps) * pixelsPerIndex
	}

	return steps
}

// ShiftRange moves r by steps samples towards older data (steps > 0) or
// newer data (steps < 0). Nothing happens when r already touches the
// boundary being approached. Overflow past either end is folded back so the
// width is kept unless the range is wider than the series.
func ShiftRange(r Range, steps, maxIndex int) (Range, bool) {
	if !(steps > 0 && r.Start > 0 || steps < 0 && r.End < maxIndex) {
		return r, false
	}

	start := r.Start - steps
	end := r.End - steps

	if start < 0 {
		return Range{Start: 0, End: r.Width()}, true
	}

	if end > maxIndex {
		overflow := end - maxIndex
		return Range{Start: start - overflow, End: maxIndex}, true
	}

	return Range{Start: start, End: end}, true
}

// StepRange moves current by one full width in direction (negative is
// older). When that would reach or pass a boundary, or toEdge is set, it
// jumps to the edge instead: the oldest range of the same width, or nil for
// live mode.
func StepRange(current Range, direction int, toEdge bool, maxIndex int) *Range {
	width := current.Width()
	step := max(width, 1)

	if !toEdge && (direction > 0 && maxIndex-current.End <= step ||
		direction < 0 && current.Start <= step) {
		toEdge = true
	}

	if toEdge {
		if direction > 0 {
			return nil
		}
		return &Range{Start: 0, End: min(width, maxIndex)}
	}

	if direction < 0 {
		step = -step
	}
	next := Range{Start: current.Start + step, End: current.End + step}

	return &next
}

// ReanchorPin keeps a pin on the same samples after the oldest samples of
// prev were evicted to produce next. The eviction count is found by locating
// the first timestamp of next inside prev, so irregular sampling does not
// skew the result. When the pinned start itself was evicted the pin slides
// to the oldest sample, keeping its width.
func ReanchorPin(pin Range, prev, next []Sample) Range {
	shift := evicted(prev, next)
	width := pin.Width()

	r := Range{Start: pin.Start - shift, End: pin.End - shift}
	if r.Start < 0 {
		r = Range{Start: 0, End: width}
	}

	if maxIndex := len(next) - 1; r.End > maxIndex {
		r.End = maxIndex
		r.Start = max(0, maxIndex-width)
	}

	return r
}

func evicted(prev, next []Sample) int {
	if len(next) == 0 {
		return len(prev)
	}

	first := next[0].Timestamp
	i := sort.Search(len(prev), func(i int) bool {
		return prev[i].Timestamp >= first
	})
	if i == len(prev) || prev[i].Timestamp != first {
		return len(prev)
	}

	// Repeated timestamps: take the first candidate whose tail lines up
	// with next.
	for j := i; j < len(prev) && prev[j].Timestamp == first; j++ {
		if aligned(prev[j:], next) {
			return j
		}
	}

	return i
}

func aligned(tail, next []Sample) bool {
	n := min(len(tail), len(next))
	for k := 0; k < n; k++ {
		if tail[k].Timestamp != next[k].Timestamp {
			return false
		}
	}

	return true
}
