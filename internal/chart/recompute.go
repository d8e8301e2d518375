package chart

import (
	"fmt"

	"codeberg.org/mutker/stackchart/internal/timewindow"
)

// State is everything a frame is derived from.
type State struct {
	Window timewindow.Window
	// UpdatePeriod is the sampling interval in seconds.
	UpdatePeriod float64
	TimeEnd      float64
	Series       []Sample
	Metrics      []Metric
	Disabled     map[MetricKey]bool
	// Highlighted is the empty key when nothing is highlighted.
	Highlighted MetricKey
	// Pin is nil in live mode.
	Pin      *Range
	Dragging bool
	// CursorX is the committed pointer position in chart coordinates, nil
	// when the pointer is off the plot.
	CursorX *float64
}

// Guide is a horizontal value line with its label.
type Guide struct {
	Value float64
	Label string
	Y     float64
	X1    float64
	X2    float64
}

// WindowControl is one entry of the window selector.
type WindowControl struct {
	Window   timewindow.Window
	Label    string
	Selected bool
}

// PanControl is one of the step buttons.
type PanControl struct {
	Symbol    string
	Title     string
	Direction int
	ToEdge    bool
	Enabled   bool
}

// RenderModel is everything the presentation layer draws for one frame.
type RenderModel struct {
	Window  timewindow.Window
	Windows []WindowControl

	// Empty is set when no sample lies inside the window.
	Empty     bool
	TimeStart float64
	TimeDiff  float64
	YMax      float64
	Guides    []Guide
	Layers    []Layer
	Ticks     []Tick
	Legend    []LegendEntry
	Points    []PlotPoint
	Tooltip   *Tooltip

	PanAllowed bool
	Dragging   bool
	Controls   []PanControl
	// BackAllowed and ForwardAllowed mirror the enablement of Controls.
	BackAllowed    bool
	ForwardAllowed bool

	Live    Range
	HasLive bool
	// Pin is the pin the frame was drawn with, nil in live mode.
	Pin          *Range
	PinDiscarded bool
}

// Recompute derives a frame from state. It has no side effects.
func Recompute(s State, layout Layout) RenderModel {
	dims := layout.Dimensions
	sel := SelectWindow(s.Series, s.Window.Seconds(), s.UpdatePeriod, s.TimeEnd, s.Pin)

	m := RenderModel{
		Window:       s.Window,
		Windows:      windowControls(s.Window),
		Empty:        !sel.Found,
		TimeStart:    sel.TimeStart,
		TimeDiff:     sel.TimeDiff,
		Legend:       BuildLegend(s.Metrics, s.Disabled, s.Highlighted),
		PanAllowed:   sel.PanAllowed,
		Dragging:     s.Dragging,
		Live:         sel.Live,
		HasLive:      sel.HasLive,
		PinDiscarded: sel.PinDiscarded,
	}
	if sel.Pinned {
		pin := *s.Pin
		m.Pin = &pin
	}

	if sel.Found {
		frame := sel.Frame(dims)
		st := BuildStack(sel.Points, StackInput{
			Metrics:     s.Metrics,
			Disabled:    s.Disabled,
			Highlighted: s.Highlighted,
			Frame:       frame,
		})

		m.YMax = st.YMax
		m.Layers = st.Layers
		m.Points = st.Points
		m.Guides = guides(st.YMax, dims)
		m.Ticks = BuildTicks(frame, s.Window.TickStep(), layout.Location)

		if s.CursorX != nil && !s.Dragging {
			m.Tooltip = buildTooltip(st.Points, s.Metrics, *s.CursorX, layout)
		}
	}

	m.Controls = panControls(s.Window, m, len(s.Series))
	m.BackAllowed = m.Controls[0].Enabled
	m.ForwardAllowed = m.Controls[2].Enabled

	return m
}

// visibleRange returns the pinned range, or the live range in live mode.
func (m RenderModel) visibleRange() (Range, bool) {
	if m.Pin != nil {
		return *m.Pin, true
	}

	return m.Live, m.HasLive
}

func guides(yMax float64, dims Dimensions) []Guide {
	if yMax <= 0 {
		return nil
	}

	x1 := dims.OffsetLeft
	x2 := dims.OffsetLeft + dims.PlotWidth()

	return []Guide{
		{Value: yMax, Label: formatValue(yMax), Y: dims.OffsetTop, X1: x1, X2: x2},
		{Value: yMax / 2, Label: formatValue(yMax / 2), Y: dims.OffsetTop + dims.PlotHeight()/2, X1: x1, X2: x2},
	}
}

func windowControls(selected timewindow.Window) []WindowControl {
	all := timewindow.All()
	controls := make([]WindowControl, 0, len(all))
	for _, w := range all {
		controls = append(controls, WindowControl{Window: w, Label: w.String(), Selected: w == selected})
	}

	return controls
}

func panControls(w timewindow.Window, m RenderModel, n int) []PanControl {
	back, forward := false, false
	if m.PanAllowed {
		if r, ok := m.visibleRange(); ok {
			back = r.Start > 0
			forward = r.End < n-1
		}
	}

	return []PanControl{
		{Symbol: "«", Title: "Click to view the oldest data", Direction: -1, ToEdge: true, Enabled: back},
		{Symbol: "‹", Title: fmt.Sprintf("Click to go back for %s", w), Direction: -1, Enabled: back},
		{Symbol: "›", Title: fmt.Sprintf("Click to go forward for %s", w), Direction: 1, Enabled: forward},
		{Symbol: "»", Title: "Click to return to live mode", Direction: 1, ToEdge: true, Enabled: forward},
	}
}
