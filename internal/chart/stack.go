package chart

import "math"

// StackPoint is one sample of a layer in value space.
type StackPoint struct {
	Timestamp float64
	Value     float64
	// Top is Value plus everything stacked below it.
	Top float64
}

// Layer is the geometry of one enabled metric.
type Layer struct {
	Metric   Metric
	Line     []Point
	LinePath string
	// Area is a closed boundary: its last point equals its first.
	Area     []Point
	AreaPath string
	Faded    bool
	Stack    []StackPoint
}

// PlotPoint is a plotted sample, used for cursor snapping and tooltips.
type PlotPoint struct {
	X         float64
	Timestamp float64
	Values    map[MetricKey]float64
}

// Stack is the stacked geometry of a selection.
type Stack struct {
	// Layers are ordered bottom to top, i.e. last metric first.
	Layers []Layer
	// Total is the largest stacked total over the slice.
	Total float64
	// YMax is Total rounded up to an even number; zero suppresses all
	// scale-dependent geometry.
	YMax   float64
	Points []PlotPoint
}

// StackInput collects what BuildStack needs besides the samples.
type StackInput struct {
	Metrics     []Metric
	Disabled    map[MetricKey]bool
	Highlighted MetricKey
	Frame       Frame
}

// BuildStack stacks enabled metrics from last to first for every point. A
// metric missing from a point is left out of that point entirely.
func BuildStack(points []Sample, in StackInput) Stack {
	st := Stack{Total: stackedMax(points, in.Metrics, in.Disabled)}
	st.YMax = roundUpEven(st.Total)

	dims := in.Frame.Dimensions
	baseline := dims.Baseline()

	yStep := 0.0
	if st.YMax > 0 {
		yStep = dims.PlotHeight() / st.YMax
	}

	lines := make(map[MetricKey]*Layer, len(in.Metrics))
	st.Points = make([]PlotPoint, 0, len(points))

	for _, p := range points {
		x := in.Frame.X(p.Timestamp)
		values := make(map[MetricKey]float64, len(in.Metrics))
		stacked := 0.0

		for j := len(in.Metrics) - 1; j >= 0; j-- {
			m := in.Metrics[j]
			if in.Disabled[m.Key] {
				continue
			}
			v, ok := p.Values[m.Key]
			if !ok {
				continue
			}

			stacked += v
			values[m.Key] = v

			layer, ok := lines[m.Key]
			if !ok {
				layer = &Layer{Metric: m}
				lines[m.Key] = layer
			}
			layer.Line = append(layer.Line, Point{X: x, Y: baseline - yStep*stacked})
			layer.Stack = append(layer.Stack, StackPoint{Timestamp: p.Timestamp, Value: v, Top: stacked})
		}

		st.Points = append(st.Points, PlotPoint{X: x, Timestamp: p.Timestamp, Values: values})
	}

	if st.YMax == 0 {
		return st
	}

	for i := len(in.Metrics) - 1; i >= 0; i-- {
		m := in.Metrics[i]
		layer, ok := lines[m.Key]
		if !ok {
			continue
		}

		layer.Faded = in.Highlighted != "" && in.Highlighted != m.Key
		layer.LinePath = PathOf(layer.Line)
		layer.Area = closeArea(layer.Line, lowerLine(i, in.Metrics, lines), baseline)
		layer.AreaPath = ClosedPathOf(layer.Area)

		st.Layers = append(st.Layers, *layer)
	}

	return st
}

// lowerLine returns the polyline of the nearest enabled metric stacked below
// metrics[i], or nil when metrics[i] sits on the baseline.
func lowerLine(i int, metrics []Metric, lines map[MetricKey]*Layer) []Point {
	for j := i + 1; j < len(metrics); j++ {
		if layer, ok := lines[metrics[j].Key]; ok {
			return layer.Line
		}
	}

	return nil
}

func closeArea(line, lower []Point, baseline float64) []Point {
	if len(line) == 0 {
		return nil
	}

	area := make([]Point, 0, len(line)+len(lower)+3)
	area = append(area, line...)

	if lower == nil {
		area = append(area,
			Point{X: line[len(line)-1].X, Y: baseline},
			Point{X: line[0].X, Y: baseline},
		)
	} else {
		for k := len(lower) - 1; k >= 0; k-- {
			area = append(area, lower[k])
		}
	}

	return append(area, line[0])
}

func stackedMax(points []Sample, metrics []Metric, disabled map[MetricKey]bool) float64 {
	total := 0.0
	for _, p := range points {
		sum := 0.0
		for _, m := range metrics {
			if v, ok := p.Values[m.Key]; ok && !disabled[m.Key] {
				sum += v
			}
		}
		total = math.Max(total, sum)
	}

	return total
}

// roundUpEven rounds a positive total up to the next even integer so the
// midline label stays whole.
func roundUpEven(v float64) float64 {
	if v <= 0 {
		return 0
	}

	r := math.Ceil(v)
	if math.Mod(r, 2) == 1 {
		r++
	}

	return r
}
