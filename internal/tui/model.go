package tui

import (
	"time"

	"codeberg.org/mutker/stackchart/internal/chart"
	"codeberg.org/mutker/stackchart/internal/logger"
	"codeberg.org/mutker/stackchart/internal/series"
	"codeberg.org/mutker/stackchart/internal/timewindow"
	tea "github.com/charmbracelet/bubbletea"
)

type (
	// timerMsg carries an expired engine timer onto the update loop.
	timerMsg struct{ fn func() }

	snapshotMsg struct{ snap series.Snapshot }

	stopMsg struct{ err error }
)

// Model drives a chart.Engine from terminal input. All engine calls happen
// inside Update, which bubbletea runs on a single goroutine.
type Model struct {
	engine *chart.Engine
	frame  chart.RenderModel
	grid   grid
	loc    *time.Location
	log    logger.Logger
	title  string

	inPlot  bool
	hovered chart.MetricKey
	notice  string
	err     error
}

func newModel(opts Options, sched chart.Scheduler) (*Model, error) {
	if opts.Logger == nil {
		opts.Logger = logger.Default()
	}
	if opts.Location == nil {
		opts.Location = time.Local
	}
	if opts.Title == "" {
		opts.Title = "stackchart"
	}

	m := &Model{
		loc:   opts.Location,
		log:   opts.Logger,
		title: opts.Title,
	}

	engine, err := chart.NewEngine(chart.Options{
		Metrics:   opts.Metrics,
		Settings:  opts.Settings,
		Scheduler: sched,
		Layout:    chart.Layout{Dimensions: chart.DefaultDimensions(), Location: opts.Location},
		Logger:    opts.Logger,
		OnRender:  func(f chart.RenderModel) { m.frame = f },
	})
	if err != nil {
		return nil, err
	}

	m.engine = engine
	m.engine.Mount()

	return m, nil
}

func (m *Model) Init() tea.Cmd {
	return nil
}

func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.resize(msg.Width, msg.Height)
	case tea.KeyMsg:
		return m, m.handleKey(msg)
	case tea.MouseMsg:
		m.handleMouse(msg)
	case timerMsg:
		msg.fn()
	case snapshotMsg:
		m.engine.PushData(msg.snap.Samples, msg.snap.TimeEnd, msg.snap.AtCapacity)
	case stopMsg:
		m.err = msg.err
		return m, tea.Quit
	}

	return m, nil
}

func (m *Model) resize(cols, rows int) {
	m.grid = newGrid(cols, rows)
	if !m.grid.usable() {
		return
	}

	m.engine.SetLayout(chart.Layout{Dimensions: m.grid.dims, Location: m.loc})
}

func (m *Model) handleKey(msg tea.KeyMsg) tea.Cmd {
	switch msg.String() {
	case "q", "esc", "ctrl+c":
		return tea.Quit
	case "1", "2", "3":
		windows := timewindow.All()
		if i := int(msg.Runes[0] - '1'); i < len(windows) {
			m.selectWindow(windows[i])
		}
	case "left":
		m.engine.Step(-1, false)
	case "right":
		m.engine.Step(1, false)
	case "home":
		m.engine.Step(-1, true)
	case "end":
		m.engine.Step(1, true)
	}

	return nil
}

func (m *Model) selectWindow(w timewindow.Window) {
	m.notice = ""
	if err := m.engine.SelectWindow(w); err != nil {
		m.log.Error().Err(err).Str("window", w.String()).Msg("Failed to store time window")
		m.notice = "settings not saved"
	}
}

func (m *Model) handleMouse(msg tea.MouseMsg) {
	if !m.grid.usable() {
		return
	}

	col, row := msg.X, msg.Y
	inPlot := m.grid.inPlot(col, row)

	switch msg.Action {
	case tea.MouseActionPress:
		if msg.Button != tea.MouseButtonLeft {
			return
		}
		if inPlot {
			m.inPlot = true
			if err := m.engine.PointerDown(m.grid.offsetX(col)); err != nil {
				m.log.Debug().Err(err).Msg("Ignored pointer down")
			}
			return
		}
		if seg, ok := m.hit(col, row); ok {
			m.click(seg)
		}

	case tea.MouseActionMotion:
		m.hover(col, row)
		switch {
		case inPlot:
			m.inPlot = true
			m.engine.PointerMove(m.grid.offsetX(col))
		case m.inPlot:
			m.inPlot = false
			m.engine.PointerLeave()
		}

	case tea.MouseActionRelease:
		m.engine.PointerUp()
	}
}

func (m *Model) click(seg segment) {
	switch seg.kind {
	case segmentWindow:
		m.selectWindow(seg.window)
	case segmentPan:
		m.engine.Step(seg.control.Direction, seg.control.ToEdge)
	case segmentLegend:
		m.engine.ToggleMetric(seg.metric)
	}
}

func (m *Model) hover(col, row int) {
	var key chart.MetricKey
	if seg, ok := m.hit(col, row); ok && seg.kind == segmentLegend {
		key = seg.metric
	}
	if key == m.hovered {
		return
	}

	if m.hovered != "" {
		m.engine.LeaveLegend(m.hovered)
	}
	if key != "" {
		m.engine.HoverLegend(key)
	}
	m.hovered = key
}

// hit returns the header or legend segment under a cell.
func (m *Model) hit(col, row int) (segment, bool) {
	var segs []segment
	switch row {
	case headerRow:
		segs = m.headerSegments()
	case legendRow:
		segs = m.legendSegments()
	}

	for _, seg := range segs {
		if seg.kind != segmentText && col >= seg.x && col < seg.x+seg.width() {
			return seg, true
		}
	}

	return segment{}, false
}
