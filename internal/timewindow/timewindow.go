// Package timewindow enumerates the look-back windows a chart can display.
package timewindow

import "time"

// Window is one of the supported look-back spans.
type Window int

const (
	OneMinute Window = iota
	FiveMinutes
	FifteenMinutes
)

// Default is used whenever no valid window has been persisted.
const Default = FiveMinutes

// All returns the supported windows in display order.
func All() []Window {
	return []Window{OneMinute, FiveMinutes, FifteenMinutes}
}

// Parse maps a persisted label onto a Window. Unknown or empty labels fall
// back to Default.
func Parse(label string) Window {
	w, ok := Lookup(label)
	if !ok {
		return Default
	}

	return w
}

// Lookup reports whether label names a supported window.
func Lookup(label string) (Window, bool) {
	for _, w := range All() {
		if w.String() == label {
			return w, true
		}
	}

	return Default, false
}

// String returns the persisted and displayed label.
func (w Window) String() string {
	switch w {
	case OneMinute:
		return "1m"
	case FiveMinutes:
		return "5m"
	case FifteenMinutes:
		return "15m"
	default:
		return Default.String()
	}
}

// Seconds returns the window length in seconds.
func (w Window) Seconds() float64 {
	switch w {
	case OneMinute:
		return 60
	case FiveMinutes:
		return 5 * 60
	case FifteenMinutes:
		return 15 * 60
	default:
		return Default.Seconds()
	}
}

// Duration returns the window length.
func (w Window) Duration() time.Duration {
	return time.Duration(w.Seconds()) * time.Second
}

// PixelsPerIndex is how far the pointer has to travel while dragging to shift
// the visible range by one sample.
func (w Window) PixelsPerIndex() float64 {
	switch w {
	case OneMinute:
		return 20
	case FiveMinutes:
		return 10
	case FifteenMinutes:
		return 5
	default:
		return Default.PixelsPerIndex()
	}
}

// TickStep returns the spacing of time axis ticks in seconds.
func (w Window) TickStep() float64 {
	switch w {
	case OneMinute:
		return 10
	case FiveMinutes:
		return 60
	case FifteenMinutes:
		return 180
	default:
		return Default.TickStep()
	}
}
