package chart

import (
	"strconv"
	"time"

	"codeberg.org/mutker/stackchart/internal/errors"
	"codeberg.org/mutker/stackchart/internal/logger"
	"codeberg.org/mutker/stackchart/internal/timewindow"
)

const (
	cursorDelay    = 100 * time.Millisecond
	highlightDelay = 200 * time.Millisecond

	// DefaultUpdatingPeriod is used when the persisted period is missing or
	// not a positive number of milliseconds.
	DefaultUpdatingPeriod = 1000
)

// Options configures an Engine.
type Options struct {
	Metrics   []Metric
	Settings  Settings
	Scheduler Scheduler
	Layout    Layout
	Logger    logger.Logger
	// OnRender is called with every new frame.
	OnRender func(RenderModel)
}

// Engine owns the interactive chart state. It is not safe for concurrent
// use: every method, and every timer callback, has to run on one event loop.
type Engine struct {
	settings Settings
	log      logger.Logger
	layout   Layout
	onRender func(RenderModel)

	state State
	drag  *DragSession
	model RenderModel

	hasData bool
	tokens  []string

	cursor        *debouncer
	pendingCursor float64

	highlight        *debouncer
	pendingHighlight MetricKey
}

// NewEngine creates an engine in live mode and computes its first frame.
func NewEngine(opts Options) (*Engine, error) {
	errFactory := errors.New()

	if len(opts.Metrics) == 0 {
		return nil, errFactory.New(ErrMissingMetrics)
	}
	if opts.Settings == nil {
		return nil, errFactory.WithData(ErrMissingOption, "settings")
	}
	if opts.Scheduler == nil {
		return nil, errFactory.WithData(ErrMissingOption, "scheduler")
	}
	if opts.Logger == nil {
		opts.Logger = logger.Default()
	}
	if opts.Layout.Dimensions == (Dimensions{}) {
		opts.Layout.Dimensions = DefaultDimensions()
	}
	if opts.Layout.Location == nil {
		opts.Layout.Location = time.Local
	}

	metrics := make([]Metric, len(opts.Metrics))
	copy(metrics, opts.Metrics)

	e := &Engine{
		settings:  opts.Settings,
		log:       opts.Logger,
		layout:    opts.Layout,
		onRender:  opts.OnRender,
		cursor:    newDebouncer(opts.Scheduler, cursorDelay),
		highlight: newDebouncer(opts.Scheduler, highlightDelay),
		state: State{
			Window:   timewindow.Parse(opts.Settings.Get(KeyTimeWindow)),
			Metrics:  metrics,
			Disabled: map[MetricKey]bool{},
		},
	}
	e.redraw()

	return e, nil
}

// Mount subscribes to setting changes.
func (e *Engine) Mount() {
	if len(e.tokens) > 0 {
		return
	}

	e.tokens = append(e.tokens,
		e.settings.Subscribe(KeyTimeWindow, e.onWindowSetting),
		e.settings.Subscribe(KeyUpdatingPeriod, func(string) { e.redraw() }),
	)
}

// Close unsubscribes and cancels pending timers.
func (e *Engine) Close() {
	for _, token := range e.tokens {
		e.settings.Unsubscribe(token)
	}
	e.tokens = nil
	e.cursor.Cancel()
	e.highlight.Cancel()
}

// Model returns the current frame.
func (e *Engine) Model() RenderModel {
	return e.model
}

// State returns a copy of the engine state.
func (e *Engine) State() State {
	s := e.state
	if s.Pin != nil {
		pin := *s.Pin
		s.Pin = &pin
	}

	return s
}

// SetLayout changes the chart box, e.g. after a terminal resize.
func (e *Engine) SetLayout(layout Layout) {
	if layout.Location == nil {
		layout.Location = e.layout.Location
	}
	e.layout = layout
	e.redraw()
}

// PushData replaces the series with a newer snapshot. atCapacity tells the
// engine that the source evicted its oldest samples to make room, in which
// case a pin is moved so it keeps showing the same samples. Snapshots that
// are not newer than the current one are ignored.
func (e *Engine) PushData(series []Sample, timeEnd float64, atCapacity bool) {
	if e.hasData && timeEnd <= e.state.TimeEnd {
		return
	}

	if e.state.Pin != nil {
		switch {
		case len(series) == 0:
			e.state.Pin = nil
		case atCapacity:
			pin := ReanchorPin(*e.state.Pin, e.state.Series, series)
			e.log.Debug().
				Int("start", e.state.Pin.Start).
				Int("end", e.state.Pin.End).
				Int("new_start", pin.Start).
				Int("new_end", pin.End).
				Msg("Re-anchored pinned range")
			e.state.Pin = &pin
		}
	}

	e.hasData = true
	e.state.Series = series
	e.state.TimeEnd = timeEnd
	e.redraw()
}

// PointerDown starts a drag at offsetX, measured from the plot's left edge.
// It is ignored when there is no history to pan into.
func (e *Engine) PointerDown(offsetX float64) error {
	if e.drag != nil {
		return errors.New().New(ErrDragInProgress)
	}
	if !e.model.PanAllowed {
		return nil
	}

	e.drag = NewDragSession(offsetX)
	e.state.Dragging = true
	e.state.CursorX = nil

	if e.state.Pin == nil && e.model.HasLive {
		pin := e.model.Live
		e.state.Pin = &pin
	}

	e.log.Debug().Float64("x", offsetX).Msg("Drag started")
	e.redraw()

	return nil
}

// PointerMove pans while dragging and otherwise moves the cursor.
func (e *Engine) PointerMove(offsetX float64) {
	if e.drag != nil {
		e.dragTo(offsetX)
		return
	}

	e.pendingCursor = e.layout.Dimensions.OffsetLeft + offsetX
	e.cursor.Arm(e.commitCursor)
}

func (e *Engine) dragTo(offsetX float64) {
	steps := e.drag.Move(offsetX, e.state.Window.PixelsPerIndex())
	if steps == 0 || e.state.Pin == nil {
		return
	}

	next, ok := ShiftRange(*e.state.Pin, steps, len(e.state.Series)-1)
	if !ok {
		return
	}

	e.state.Pin = &next
	e.redraw()
}

func (e *Engine) commitCursor() {
	if e.drag != nil {
		return
	}

	x := e.pendingCursor
	e.state.CursorX = &x
	e.redraw()
}

// PointerUp ends a drag. A pin that reaches the newest sample is released
// back to live mode.
func (e *Engine) PointerUp() {
	if e.drag == nil {
		return
	}

	e.drag = nil
	e.state.Dragging = false
	e.rejoinLive()

	e.log.Debug().Bool("live", e.state.Pin == nil).Msg("Drag finished")
	e.redraw()
}

// PointerLeave aborts a drag, keeping the shifts already applied, and hides
// the cursor.
func (e *Engine) PointerLeave() {
	e.cursor.Cancel()
	e.drag = nil
	e.state.Dragging = false
	e.state.CursorX = nil
	e.rejoinLive()
	e.redraw()
}

// Dragging reports whether a drag session is active.
func (e *Engine) Dragging() bool {
	return e.drag != nil
}

// Step moves the visible range by one window in direction (negative is
// older), or to the oldest data / live mode when toEdge is set. It does
// nothing when the matching control is disabled.
func (e *Engine) Step(direction int, toEdge bool) {
	if direction < 0 && !e.model.BackAllowed || direction > 0 && !e.model.ForwardAllowed || direction == 0 {
		return
	}

	current, ok := e.model.visibleRange()
	if !ok {
		return
	}

	e.state.Pin = StepRange(current, direction, toEdge, len(e.state.Series)-1)
	e.rejoinLive()

	e.log.Debug().
		Int("direction", direction).
		Bool("to_edge", toEdge).
		Bool("live", e.state.Pin == nil).
		Msg("Stepped visible range")
	e.redraw()
}

// ToggleMetric shows or hides key and clears the highlight.
func (e *Engine) ToggleMetric(key MetricKey) {
	if !hasMetric(e.state.Metrics, key) {
		return
	}

	e.state.Disabled = toggled(e.state.Disabled, key)
	e.state.Highlighted = ""
	e.pendingHighlight = ""
	e.highlight.Cancel()
	e.redraw()
}

// HoverLegend requests a highlight of key after the highlight delay.
// Hovering a hidden metric does nothing.
func (e *Engine) HoverLegend(key MetricKey) {
	if e.state.Disabled[key] || !hasMetric(e.state.Metrics, key) {
		return
	}

	e.deferHighlight(key)
}

// LeaveLegend requests the highlight be cleared after the highlight delay.
func (e *Engine) LeaveLegend(key MetricKey) {
	if e.state.Disabled[key] {
		return
	}

	e.deferHighlight("")
}

func (e *Engine) deferHighlight(key MetricKey) {
	e.pendingHighlight = key
	e.highlight.Arm(e.commitHighlight)
}

func (e *Engine) commitHighlight() {
	if e.state.Disabled[e.pendingHighlight] {
		e.pendingHighlight = ""
	}
	if e.pendingHighlight == e.state.Highlighted {
		return
	}

	e.state.Highlighted = e.pendingHighlight
	e.redraw()
}

// SelectWindow persists w as the selected window. The change is applied
// through the settings subscription.
func (e *Engine) SelectWindow(w timewindow.Window) error {
	if w == e.state.Window {
		return nil
	}

	if err := e.settings.Set(KeyTimeWindow, w.String()); err != nil {
		return errors.New().Wrap(ErrSettingsWrite, err)
	}

	return nil
}

func (e *Engine) onWindowSetting(value string) {
	e.state.Window = timewindow.Parse(value)
	e.state.Pin = nil
	e.log.Debug().Str("window", e.state.Window.String()).Msg("Time window changed")
	e.redraw()
}

func (e *Engine) rejoinLive() {
	if e.state.Pin != nil && e.state.Pin.End >= len(e.state.Series)-1 {
		e.state.Pin = nil
	}
}

// updatePeriod reads the sampling interval in seconds.
func (e *Engine) updatePeriod() float64 {
	ms, err := strconv.Atoi(e.settings.Get(KeyUpdatingPeriod))
	if err != nil || ms <= 0 {
		ms = DefaultUpdatingPeriod
	}

	return float64(ms) / 1000
}

func (e *Engine) redraw() {
	e.state.UpdatePeriod = e.updatePeriod()
	e.model = Recompute(e.state, e.layout)

	if e.model.PinDiscarded {
		e.log.Warn().
			Int("start", e.state.Pin.Start).
			Int("end", e.state.Pin.End).
			Int("series_len", len(e.state.Series)).
			Msg("Discarded invalid pinned range")
		e.state.Pin = nil
	}

	if e.onRender != nil {
		e.onRender(e.model)
	}
}
