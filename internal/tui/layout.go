package tui

import (
	"math"

	"codeberg.org/mutker/stackchart/internal/chart"
)

// Terminal cells are mapped onto chart pixels at a fixed scale, so the
// engine's pixel based drag thresholds keep their feel.
const (
	cellWidth  = 10
	cellHeight = 20

	headerRow = 0
	legendRow = 1
	plotTop   = 2
	// axis row and tick label row
	footerRows = 2
	axisCols   = 7

	minCols = 40
	minRows = 8
)

// grid converts between terminal cells and chart pixels.
type grid struct {
	cols, rows int
	dims       chart.Dimensions
}

func newGrid(cols, rows int) grid {
	return grid{
		cols: cols,
		rows: rows,
		dims: chart.Dimensions{
			Width:        float64(cols * cellWidth),
			Height:       float64(rows * cellHeight),
			OffsetTop:    plotTop * cellHeight,
			OffsetLeft:   axisCols * cellWidth,
			OffsetBottom: footerRows * cellHeight,
			OffsetRight:  cellWidth,
			TextOffset:   5,
			TickSize:     6,
		},
	}
}

func (g grid) usable() bool {
	return g.cols >= minCols && g.rows >= minRows
}

func (g grid) centerX(col int) float64 {
	return (float64(col) + 0.5) * cellWidth
}

func (g grid) centerY(row int) float64 {
	return (float64(row) + 0.5) * cellHeight
}

func (g grid) col(x float64) int {
	return int(math.Floor(x / cellWidth))
}

func (g grid) row(y float64) int {
	return int(math.Floor(y / cellHeight))
}

func (g grid) axisRow() int {
	return g.rows - footerRows
}

func (g grid) labelRow() int {
	return g.rows - 1
}

// plotCols returns the first and last column inside the plot.
func (g grid) plotCols() (int, int) {
	return axisCols, g.col(g.dims.OffsetLeft+g.dims.PlotWidth()) - 1
}

func (g grid) inPlot(col, row int) bool {
	first, last := g.plotCols()
	return col >= first && col <= last && row >= plotTop && row < g.axisRow()
}

// offsetX is the pointer position relative to the plot's left edge.
func (g grid) offsetX(col int) float64 {
	return g.centerX(col) - g.dims.OffsetLeft
}

// yAt interpolates the y coordinate of line at x. Points are sorted by X.
func yAt(line []chart.Point, x float64) (float64, bool) {
	if len(line) == 1 && math.Abs(line[0].X-x) <= cellWidth/2 {
		return line[0].Y, true
	}
	if len(line) == 0 || x < line[0].X || x > line[len(line)-1].X {
		return 0, false
	}

	for i := 1; i < len(line); i++ {
		a, b := line[i-1], line[i]
		if x > b.X {
			continue
		}
		if b.X == a.X {
			return b.Y, true
		}

		return a.Y + (b.Y-a.Y)*(x-a.X)/(b.X-a.X), true
	}

	return line[0].Y, true
}
