package chart

import "sort"

const (
	// guardFraction of one update period is added to the window so the
	// oldest edge does not flicker as samples arrive.
	guardFraction = 0.2
	// snapPeriods is how close, in update periods, the first in-window sample
	// has to be to the window start for the start to snap onto it.
	snapPeriods = 2
)

// Selection is the part of a series visible in one frame.
type Selection struct {
	// Points is a read-only view into the series.
	Points    []Sample
	TimeStart float64
	TimeDiff  float64
	// Found is false when no sample lies inside the window; nothing is drawn.
	Found bool
	// PanAllowed is set when history exists before the live window.
	PanAllowed bool
	// Live is the index range of the live window, (first in-window, last).
	Live    Range
	HasLive bool
	// PinDiscarded is set when the pin did not address the series.
	PinDiscarded bool
	Pinned       bool
}

// Frame returns the coordinate frame of the selection.
func (s Selection) Frame(d Dimensions) Frame {
	return Frame{TimeStart: s.TimeStart, TimeDiff: s.TimeDiff, Dimensions: d}
}

// SelectWindow resolves the visible slice of series for a window of
// windowSeconds ending at timeEnd. updatePeriod is the sampling interval in
// seconds. A non-nil pin overrides the live window.
func SelectWindow(series []Sample, windowSeconds, updatePeriod, timeEnd float64, pin *Range) Selection {
	sel := Selection{TimeDiff: windowSeconds + guardFraction*updatePeriod}
	sel.TimeStart = timeEnd - sel.TimeDiff

	if len(series) == 0 {
		return sel
	}

	if pin != nil && !pin.ValidFor(len(series)) {
		sel.PinDiscarded = true
		pin = nil
	}

	first := firstAtOrAfter(series, sel.TimeStart)
	if first < len(series) {
		sel.Found = true
		sel.Live = Range{Start: first, End: len(series) - 1}
		sel.HasLive = true

		if first > 0 {
			sel.PanAllowed = true

			if series[first].Timestamp-sel.TimeStart < snapPeriods*updatePeriod {
				sel.TimeStart = series[first].Timestamp
				sel.TimeDiff = timeEnd - sel.TimeStart
			}
		}
	}

	if pin == nil {
		if sel.Found {
			sel.Points = series[first:]
		}
		return sel
	}

	end := pin.End
	if end == pin.Start {
		end++
	}
	sel.Points = series[pin.Start:end]
	sel.Pinned = true
	sel.Found = true
	sel.TimeStart = sel.Points[0].Timestamp
	sel.TimeDiff = sel.Points[len(sel.Points)-1].Timestamp - sel.TimeStart

	return sel
}

// firstAtOrAfter returns the index of the first sample with a timestamp at or
// after ts, or len(series) if there is none.
func firstAtOrAfter(series []Sample, ts float64) int {
	return sort.Search(len(series), func(i int) bool {
		return series[i].Timestamp >= ts
	})
}
