package chart

import (
	"math"
	"strconv"
	"strings"
)

// Point is a plot coordinate in pixels.
type Point struct {
	X float64
	Y float64
}

// Frame maps timestamps onto the horizontal plot axis.
type Frame struct {
	TimeStart  float64
	TimeDiff   float64
	Dimensions Dimensions
}

// XStep returns pixels per second. A zero-length span collapses every
// timestamp onto the left edge.
func (f Frame) XStep() float64 {
	if f.TimeDiff <= 0 {
		return 0
	}

	return f.Dimensions.PlotWidth() / f.TimeDiff
}

// X returns the horizontal coordinate of timestamp ts.
func (f Frame) X(ts float64) float64 {
	return f.Dimensions.OffsetLeft + (ts-f.TimeStart)*f.XStep()
}

// TimeEnd returns the last timestamp covered by the frame.
func (f Frame) TimeEnd() float64 {
	return f.TimeStart + f.TimeDiff
}

// PathOf renders points as path commands ("M x y L x y ...").
func PathOf(points []Point) string {
	var b strings.Builder
	for i, p := range points {
		if i == 0 {
			b.WriteString("M ")
		} else {
			b.WriteString(" L ")
		}
		b.WriteString(formatCoord(p.X))
		b.WriteByte(' ')
		b.WriteString(formatCoord(p.Y))
	}

	return b.String()
}

// ClosedPathOf renders a closed boundary, terminated with Z.
func ClosedPathOf(points []Point) string {
	if len(points) == 0 {
		return ""
	}

	return PathOf(points) + " Z"
}

func formatCoord(v float64) string {
	return strconv.FormatFloat(math.Round(v*100)/100, 'f', -1, 64)
}

func formatValue(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
