// Package snapshot exports a chart frame as a PNG image.
package snapshot

import (
	"bytes"
	"os"
	"path/filepath"

	"codeberg.org/mutker/stackchart/internal/chart"
	"codeberg.org/mutker/stackchart/internal/errors"
	"github.com/dustin/go-humanize"
	gochart "github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"
)

const (
	fadedAlpha = 64
	fillAlpha  = 200
)

type Options struct {
	Title  string
	Width  int
	Height int
}

// Render draws frame as a PNG. Layers are filled from zero up to their
// cumulative value, topmost first, so each one shows as a band on top of
// the layers below it.
func Render(frame chart.RenderModel, opts Options) ([]byte, error) {
	errFactory := errors.New()

	if frame.Empty || len(frame.Points) == 0 {
		return nil, errFactory.WithData(ErrNoData, frame.Window.String())
	}

	c := gochart.Chart{
		Title:  opts.Title,
		Width:  opts.Width,
		Height: opts.Height,
		Background: gochart.Style{
			Padding: gochart.Box{Top: 40, Left: 20, Right: 20, Bottom: 20},
		},
		XAxis: gochart.XAxis{
			Range: &gochart.ContinuousRange{Min: frame.TimeStart, Max: frame.TimeStart + max(frame.TimeDiff, 1)},
			Ticks: xTicks(frame),
		},
		YAxis: gochart.YAxis{
			Range: &gochart.ContinuousRange{Min: 0, Max: max(frame.YMax, 1)},
			Ticks: yTicks(frame),
		},
		Series: series(frame),
	}
	c.Elements = []gochart.Renderable{gochart.LegendLeft(&c)}

	var buf bytes.Buffer
	if err := c.Render(gochart.PNG, &buf); err != nil {
		return nil, errFactory.Wrap(ErrRender, err)
	}

	return buf.Bytes(), nil
}

// WriteFile renders frame and writes the image to path.
func WriteFile(path string, frame chart.RenderModel, opts Options) error {
	img, err := Render(frame, opts)
	if err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return errors.New().Wrap(ErrWriteImage, err)
	}
	if err := os.WriteFile(path, img, 0o644); err != nil {
		return errors.New().Wrap(ErrWriteImage, err)
	}

	return nil
}

func series(frame chart.RenderModel) []gochart.Series {
	if len(frame.Layers) == 0 {
		// All values are zero or every metric is hidden: draw the baseline.
		xs := make([]float64, len(frame.Points))
		for i, p := range frame.Points {
			xs[i] = p.Timestamp
		}
		return []gochart.Series{gochart.ContinuousSeries{
			XValues: xs,
			YValues: make([]float64, len(xs)),
			Style:   gochart.Style{StrokeColor: drawing.ColorFromHex("999999"), StrokeWidth: 1},
		}}
	}

	out := make([]gochart.Series, 0, len(frame.Layers))
	for i := len(frame.Layers) - 1; i >= 0; i-- {
		layer := frame.Layers[i]

		xs := make([]float64, len(layer.Stack))
		ys := make([]float64, len(layer.Stack))
		for j, p := range layer.Stack {
			xs[j] = p.Timestamp
			ys[j] = p.Top
		}

		color := gochart.GetDefaultColor(i)
		if layer.Metric.Color != "" {
			color = drawing.ParseColor(layer.Metric.Color)
		}
		alpha := uint8(fillAlpha)
		if layer.Faded {
			alpha = fadedAlpha
		}

		out = append(out, gochart.ContinuousSeries{
			Name:    layer.Metric.Name(),
			XValues: xs,
			YValues: ys,
			Style: gochart.Style{
				StrokeColor: color,
				StrokeWidth: 1,
				FillColor:   color.WithAlpha(alpha),
			},
		})
	}

	return out
}

func xTicks(frame chart.RenderModel) []gochart.Tick {
	ticks := make([]gochart.Tick, 0, len(frame.Ticks))
	for _, t := range frame.Ticks {
		ticks = append(ticks, gochart.Tick{Value: t.Timestamp, Label: t.Label})
	}

	return ticks
}

func yTicks(frame chart.RenderModel) []gochart.Tick {
	ticks := []gochart.Tick{{Value: 0, Label: "0"}}
	for i := len(frame.Guides) - 1; i >= 0; i-- {
		g := frame.Guides[i]
		ticks = append(ticks, gochart.Tick{Value: g.Value, Label: humanize.FtoaWithDigits(g.Value, 2)})
	}
	if len(frame.Guides) == 0 {
		ticks = append(ticks, gochart.Tick{Value: 1, Label: "1"})
	}

	return ticks
}
