package chart

import "time"

// Align tells the presentation layer which side of the cursor line the
// tooltip box is attached to.
type Align int

const (
	AlignLeft Align = iota
	AlignRight
)

const tooltipGap = 8

// TooltipEntry is one metric value under the cursor.
type TooltipEntry struct {
	Metric Metric
	Value  float64
}

// Tooltip describes the point the cursor snapped to.
type Tooltip struct {
	X         float64
	Timestamp float64
	TimeLabel string
	Entries   []TooltipEntry
	Align     Align
	// Offset is the distance from the chart's left edge (AlignLeft) or
	// right edge (AlignRight) to the tooltip box.
	Offset float64
}

// NearestPoint returns the index of the point closest to x. Points must be
// sorted by X. It scans to the first point at or past x and compares it with
// its predecessor; ties go to the later point. A pointer past the last point
// matches nothing.
func NearestPoint(points []PlotPoint, x float64) (int, bool) {
	for i, p := range points {
		if p.X == x {
			return i, true
		}
		if p.X > x {
			if i == 0 || p.X-x <= x-points[i-1].X {
				return i, true
			}
			return i - 1, true
		}
	}

	return 0, false
}

// buildTooltip snaps cursorX onto the plotted points. cursorX is in chart
// coordinates (plot offset already applied).
func buildTooltip(points []PlotPoint, metrics []Metric, cursorX float64, layout Layout) *Tooltip {
	dims := layout.Dimensions
	if cursorX < dims.OffsetLeft || cursorX > dims.OffsetLeft+dims.PlotWidth() {
		return nil
	}

	i, ok := NearestPoint(points, cursorX)
	if !ok {
		return nil
	}
	p := points[i]

	loc := layout.Location
	if loc == nil {
		loc = time.Local
	}

	tip := &Tooltip{
		X:         p.X,
		Timestamp: p.Timestamp,
		TimeLabel: FormatTime(p.Timestamp, loc),
	}
	for _, m := range metrics {
		if v, ok := p.Values[m.Key]; ok {
			tip.Entries = append(tip.Entries, TooltipEntry{Metric: m, Value: v})
		}
	}

	if p.X > dims.PlotWidth()/2 {
		tip.Align = AlignRight
		tip.Offset = dims.Width - p.X + tooltipGap
	} else {
		tip.Align = AlignLeft
		tip.Offset = p.X + tooltipGap
	}

	return tip
}
