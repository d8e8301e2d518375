package tui

import (
	"strings"
	"unicode/utf8"

	"codeberg.org/mutker/stackchart/internal/chart"
	"codeberg.org/mutker/stackchart/internal/timewindow"
	"github.com/NimbleMarkets/ntcharts/canvas"
	"github.com/NimbleMarkets/ntcharts/canvas/runes"
	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"
)

type segmentKind int

const (
	segmentText segmentKind = iota
	segmentWindow
	segmentPan
	segmentLegend
)

// segment is a run of text on the header or legend row. Everything but
// plain text reacts to clicks.
type segment struct {
	x       int
	text    string
	style   lipgloss.Style
	kind    segmentKind
	window  timewindow.Window
	control chart.PanControl
	metric  chart.MetricKey
}

func (s segment) width() int {
	return utf8.RuneCountInString(s.text)
}

var (
	titleStyle    = lipgloss.NewStyle().Bold(true)
	selectedStyle = lipgloss.NewStyle().Bold(true).Reverse(true)
	disabledStyle = lipgloss.NewStyle().Faint(true)
	noticeStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#d62728"))
	axisStyle     = lipgloss.NewStyle().Faint(true)
	tooltipStyle  = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#ffffff")).
			Background(lipgloss.Color("#303030"))
)

func metricStyle(m chart.Metric) lipgloss.Style {
	s := lipgloss.NewStyle()
	if m.Color != "" {
		s = s.Foreground(lipgloss.Color(m.Color))
	}

	return s
}

// layoutSegments places segments left to right from x with gap columns
// between them.
func layoutSegments(x, gap int, segs []segment) []segment {
	for i := range segs {
		segs[i].x = x
		x += segs[i].width() + gap
	}

	return segs
}

func (m *Model) headerSegments() []segment {
	f := m.frame
	segs := []segment{{text: " " + m.title + " ", style: titleStyle}}

	for _, w := range f.Windows {
		seg := segment{text: " " + w.Label + " ", kind: segmentWindow, window: w.Window}
		if w.Selected {
			seg.text = "[" + w.Label + "]"
			seg.style = selectedStyle
		}
		segs = append(segs, seg)
	}

	for _, c := range f.Controls {
		seg := segment{text: " " + c.Symbol + " ", kind: segmentPan, control: c}
		if !c.Enabled {
			seg.style = disabledStyle
		}
		segs = append(segs, seg)
	}

	status := "live"
	switch {
	case f.Dragging:
		status = "dragging"
	case f.Pin != nil:
		status = "paused"
	}
	segs = append(segs, segment{text: status, style: disabledStyle})

	if m.notice != "" {
		segs = append(segs, segment{text: m.notice, style: noticeStyle})
	}

	return layoutSegments(0, 1, segs)
}

func (m *Model) legendSegments() []segment {
	segs := make([]segment, 0, len(m.frame.Legend))
	for _, entry := range m.frame.Legend {
		style := metricStyle(entry.Metric)
		marker := "●"
		switch {
		case entry.Disabled:
			marker = "○"
			style = style.Faint(true).Strikethrough(true)
		case entry.Highlighted:
			style = style.Bold(true).Underline(true)
		}

		segs = append(segs, segment{
			text:   marker + " " + entry.Metric.Name(),
			style:  style,
			kind:   segmentLegend,
			metric: entry.Metric.Key,
		})
	}

	return layoutSegments(axisCols, 3, segs)
}

func (m *Model) View() string {
	if m.grid.cols == 0 {
		return ""
	}
	if !m.grid.usable() {
		return "Terminal too small"
	}

	c := canvas.New(m.grid.cols, m.grid.rows)
	for _, seg := range m.headerSegments() {
		text(&c, seg.x, headerRow, seg.text, seg.style)
	}
	for _, seg := range m.legendSegments() {
		text(&c, seg.x, legendRow, seg.text, seg.style)
	}

	m.drawAxes(&c)
	if m.frame.Empty {
		m.drawEmpty(&c)
		return c.View()
	}

	m.drawGuides(&c)
	m.drawLayers(&c)
	m.drawCursor(&c)

	return c.View()
}

func set(c *canvas.Model, x, y int, r rune, style lipgloss.Style) {
	c.SetCell(canvas.Point{X: x, Y: y}, canvas.NewCellWithStyle(r, style))
}

// text writes s from x and returns the column after it.
func text(c *canvas.Model, x, y int, s string, style lipgloss.Style) int {
	c.SetStringWithStyle(canvas.Point{X: x, Y: y}, s, style)
	return x + utf8.RuneCountInString(s)
}

func empty(c *canvas.Model, x, y int) bool {
	if x < 0 || x >= c.Width() || y < 0 || y >= c.Height() {
		return false
	}

	return c.Cell(canvas.Point{X: x, Y: y}).Rune == runes.Null
}

func valueLabel(v float64) string {
	return humanize.FtoaWithDigits(v, 2)
}

func (m *Model) drawAxes(c *canvas.Model) {
	g := m.grid
	first, last := g.plotCols()
	axisRow := g.axisRow()

	for row := plotTop; row < axisRow; row++ {
		set(c, axisCols-1, row, '│', axisStyle)
	}
	set(c, axisCols-1, axisRow, '└', axisStyle)
	for col := first; col <= last; col++ {
		set(c, col, axisRow, '─', axisStyle)
	}
	rightAlign(c, axisRow, "0", axisStyle)

	labelEnd := -1
	for _, tick := range m.frame.Ticks {
		col := g.col(tick.X)
		if col < first || col > last {
			continue
		}
		set(c, col, axisRow, '┬', axisStyle)

		start := col - utf8.RuneCountInString(tick.Label)/2
		if start <= labelEnd {
			continue
		}
		labelEnd = text(c, start, g.labelRow(), tick.Label, axisStyle)
	}
}

func rightAlign(c *canvas.Model, row int, label string, style lipgloss.Style) {
	start := axisCols - 2 - utf8.RuneCountInString(label)
	if start < 0 {
		start = 0
	}
	text(c, start, row, label, style)
}

func (m *Model) drawEmpty(c *canvas.Model) {
	msg := "No data for the last " + m.frame.Window.String()
	first, last := m.grid.plotCols()
	col := first + (last-first-utf8.RuneCountInString(msg))/2
	row := plotTop + (m.grid.axisRow()-plotTop)/2
	text(c, col, row, msg, disabledStyle)
}

func (m *Model) drawGuides(c *canvas.Model) {
	first, last := m.grid.plotCols()

	for _, guide := range m.frame.Guides {
		row := m.grid.row(guide.Y)
		rightAlign(c, row, valueLabel(guide.Value), axisStyle)
		for col := first; col <= last; col++ {
			set(c, col, row, '┄', axisStyle)
		}
	}
}

// drawLayers fills every plot cell whose center lies on or under a layer's
// upper line. Layers are ordered bottom to top, so the first match owns the
// cell.
func (m *Model) drawLayers(c *canvas.Model) {
	g := m.grid
	first, last := g.plotCols()

	type layerStyle struct {
		fill  rune
		style lipgloss.Style
	}
	styles := make([]layerStyle, len(m.frame.Layers))
	for i, layer := range m.frame.Layers {
		s := metricStyle(layer.Metric)
		fill := '█'
		if layer.Faded {
			fill = '░'
			s = s.Faint(true)
		}
		styles[i] = layerStyle{fill: fill, style: s}
	}

	tops := make([]float64, len(m.frame.Layers))
	present := make([]bool, len(m.frame.Layers))
	for col := first; col <= last; col++ {
		x := g.centerX(col)
		for i, layer := range m.frame.Layers {
			tops[i], present[i] = yAt(layer.Line, x)
		}

		for row := plotTop; row < g.axisRow(); row++ {
			y := g.centerY(row)
			for i := range m.frame.Layers {
				if present[i] && tops[i] <= y {
					set(c, col, row, styles[i].fill, styles[i].style)
					break
				}
			}
		}
	}
}

func (m *Model) drawCursor(c *canvas.Model) {
	tip := m.frame.Tooltip
	if tip == nil {
		return
	}

	g := m.grid
	col := g.col(tip.X)
	for row := plotTop; row < g.axisRow(); row++ {
		if empty(c, col, row) {
			set(c, col, row, '│', axisStyle)
		}
	}

	lines := []string{tip.TimeLabel}
	for _, e := range tip.Entries {
		lines = append(lines, "● "+e.Metric.Name()+" "+valueLabel(e.Value))
	}

	width := 0
	for _, l := range lines {
		width = max(width, utf8.RuneCountInString(l))
	}
	width += 2

	var x int
	if tip.Align == chart.AlignRight {
		x = g.col(g.dims.Width-tip.Offset) - width
	} else {
		x = g.col(tip.Offset) + 1
	}
	x = max(0, min(x, g.cols-width))

	for i, l := range lines {
		row := plotTop + i
		text(c, x, row, " "+l+strings.Repeat(" ", width-1-utf8.RuneCountInString(l)), tooltipStyle)
		if i > 0 {
			e := tip.Entries[i-1]
			set(c, x+1, row, '●', metricStyle(e.Metric).Background(lipgloss.Color("#303030")))
		}
	}
}
