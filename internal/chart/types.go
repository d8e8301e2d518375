package chart

import "time"

// MetricKey identifies one stacked metric.
type MetricKey string

// Metric describes a metric in stacking order. Label falls back to Key when
// empty. Color is a "#rrggbb" hex string.
type Metric struct {
	Key   MetricKey
	Label string
	Color string
}

var palette = []string{
	"#76b900", "#1f77b4", "#ff7f0e", "#d62728",
	"#9467bd", "#8c564b", "#e377c2", "#17becf",
}

// AssignColors returns a copy of metrics where every metric without a
// color gets one from a fixed palette, by position.
func AssignColors(metrics []Metric) []Metric {
	out := make([]Metric, len(metrics))
	for i, m := range metrics {
		if m.Color == "" {
			m.Color = palette[i%len(palette)]
		}
		out[i] = m
	}

	return out
}

// Name returns the label shown to the user.
func (m Metric) Name() string {
	if m.Label != "" {
		return m.Label
	}

	return string(m.Key)
}

// Sample is one timestamped observation of every metric. Timestamps are in
// seconds and never decrease along a series. Samples are never mutated once
// appended.
type Sample struct {
	Timestamp float64
	Values    map[MetricKey]float64
}

// Range is an index range into a series.
type Range struct {
	Start int
	End   int
}

// Width returns End - Start.
func (r Range) Width() int {
	return r.End - r.Start
}

// ValidFor reports whether the range addresses a series of length n.
func (r Range) ValidFor(n int) bool {
	return r.Start >= 0 && r.Start <= r.End && r.End <= n-1
}

// Dimensions is the chart box in pixels.
type Dimensions struct {
	Width        float64
	Height       float64
	OffsetTop    float64
	OffsetLeft   float64
	OffsetBottom float64
	OffsetRight  float64
	TextOffset   float64
	TickSize     float64
}

// DefaultDimensions returns the stock chart box.
func DefaultDimensions() Dimensions {
	return Dimensions{
		Width:        1150,
		Height:       250,
		OffsetTop:    70,
		OffsetLeft:   50,
		OffsetBottom: 30,
		OffsetRight:  20,
		TextOffset:   5,
		TickSize:     6,
	}
}

func (d Dimensions) PlotWidth() float64 {
	return d.Width - d.OffsetLeft - d.OffsetRight
}

func (d Dimensions) PlotHeight() float64 {
	return d.Height - d.OffsetTop - d.OffsetBottom
}

// Baseline is the y coordinate of the time axis.
func (d Dimensions) Baseline() float64 {
	return d.Height - d.OffsetBottom
}

// Layout holds everything about presentation that the engine needs to
// produce coordinates and labels.
type Layout struct {
	Dimensions Dimensions
	Location   *time.Location
}

// DefaultLayout uses DefaultDimensions and the local time zone.
func DefaultLayout() Layout {
	return Layout{
		Dimensions: DefaultDimensions(),
		Location:   time.Local,
	}
}
