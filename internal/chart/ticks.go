package chart

import (
	"math"
	"time"
)

const tickLabelFormat = "15:04:05"

// Tick is a labelled mark on the time axis.
type Tick struct {
	Timestamp float64
	X         float64
	// Y is where the label baseline goes, below the axis.
	Y     float64
	Label string
}

// BuildTicks emits a tick at every multiple of step seconds inside the frame.
func BuildTicks(frame Frame, step float64, loc *time.Location) []Tick {
	if step <= 0 {
		return nil
	}
	if loc == nil {
		loc = time.Local
	}

	dims := frame.Dimensions
	end := frame.TimeEnd()
	first := math.Ceil(frame.TimeStart/step) * step
	labelY := dims.Baseline() + 3*dims.TickSize

	var ticks []Tick
	for k := 0; ; k++ {
		ts := first + float64(k)*step
		if ts > end {
			break
		}
		ticks = append(ticks, Tick{
			Timestamp: ts,
			X:         frame.X(ts),
			Y:         labelY,
			Label:     FormatTime(ts, loc),
		})
	}

	return ticks
}

// FormatTime renders a timestamp in seconds as 24-hour wall-clock time.
func FormatTime(ts float64, loc *time.Location) string {
	sec, frac := math.Modf(ts)
	return time.Unix(int64(sec), int64(frac*1e9)).In(loc).Format(tickLabelFormat)
}
