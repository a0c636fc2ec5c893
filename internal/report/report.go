// Package report renders the training history as a 2x2 grid of charts.
package report

import (
	"errors"
	"fmt"
	"image/color"
	"math"
	"os"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
	"gonum.org/v1/plot/vg/vgimg"

	"linreg-metrics/internal/metrics"
)

// Options controls the rendered image.
type Options struct {
	Path   string
	DPI    int
	Width  vg.Length
	Height vg.Length
}

// DefaultOptions returns a 12x10 inch figure at 300 DPI.
func DefaultOptions(path string) Options {
	return Options{
		Path:   path,
		DPI:    300,
		Width:  12 * vg.Inch,
		Height: 10 * vg.Inch,
	}
}

var (
	blue   = color.RGBA{B: 255, A: 255}
	red    = color.RGBA{R: 255, A: 255}
	green  = color.RGBA{G: 128, A: 255}
	purple = color.RGBA{R: 128, B: 128, A: 255}
	orange = color.RGBA{R: 255, G: 165, A: 255}
)

// Render draws the four charts for h and writes a PNG to opts.Path.
func Render(h *metrics.History, opts Options) error {
	if h == nil || h.Len() == 0 {
		return metrics.ErrEmptyHistory
	}
	if opts.Path == "" {
		return errors.New("report: output path is empty")
	}
	if opts.DPI <= 0 {
		opts.DPI = 300
	}
	if opts.Width <= 0 || opts.Height <= 0 {
		opts.Width, opts.Height = 12*vg.Inch, 10*vg.Inch
	}

	panels, err := Panels(h)
	if err != nil {
		return err
	}

	img := vgimg.NewWith(vgimg.UseWH(opts.Width, opts.Height), vgimg.UseDPI(opts.DPI))
	dc := draw.New(img)
	tiles := draw.Tiles{
		Rows:      2,
		Cols:      2,
		PadX:      vg.Millimeter * 4,
		PadY:      vg.Millimeter * 4,
		PadTop:    vg.Millimeter * 2,
		PadBottom: vg.Millimeter * 2,
		PadLeft:   vg.Millimeter * 2,
		PadRight:  vg.Millimeter * 2,
	}
	canvases := plot.Align(panels, tiles, dc)
	for j := range panels {
		for i := range panels[j] {
			panels[j][i].Draw(canvases[j][i])
		}
	}

	f, err := os.Create(opts.Path)
	if err != nil {
		return fmt.Errorf("create image: %w", err)
	}
	png := vgimg.PngCanvas{Canvas: img}
	if _, err := png.WriteTo(f); err != nil {
		f.Close()
		return fmt.Errorf("encode png: %w", err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("close image: %w", err)
	}
	return nil
}

// Panels builds the chart grid: loss and parameters over epochs on the top
// row, memory over time and loss against w on the bottom row.
func Panels(h *metrics.History) ([][]*plot.Plot, error) {
	epochs := make([]float64, h.Len())
	for i, e := range h.Epochs() {
		epochs[i] = float64(e)
	}
	losses := h.Losses()
	weights := h.Weights()

	lossPlot, err := lossPanel(epochs, losses)
	if err != nil {
		return nil, err
	}
	paramPlot, err := paramPanel(epochs, weights, h.Biases())
	if err != nil {
		return nil, err
	}
	memPlot, err := memoryPanel(h.Timestamps(), h.MemoryUsage())
	if err != nil {
		return nil, err
	}
	convPlot, err := convergencePanel(weights, losses)
	if err != nil {
		return nil, err
	}

	return [][]*plot.Plot{
		{lossPlot, paramPlot},
		{memPlot, convPlot},
	}, nil
}

func lossPanel(epochs, losses []float64) (*plot.Plot, error) {
	p := newPanel("Loss (MSE)", "Epoch", "MSE")
	if err := addLine(p, epochs, losses, blue, ""); err != nil {
		return nil, fmt.Errorf("loss panel: %w", err)
	}
	return p, nil
}

func paramPanel(epochs, weights, biases []float64) (*plot.Plot, error) {
	p := newPanel("Parameters", "Epoch", "Parameter value")
	if err := addLine(p, epochs, weights, red, "w (slope)"); err != nil {
		return nil, fmt.Errorf("parameter panel: %w", err)
	}
	if err := addLine(p, epochs, biases, green, "b (intercept)"); err != nil {
		return nil, fmt.Errorf("parameter panel: %w", err)
	}
	p.Legend.Top = true
	return p, nil
}

func memoryPanel(timestamps, memory []float64) (*plot.Plot, error) {
	p := newPanel("Memory usage", "Time (s)", "Memory (KB)")
	if err := addLine(p, timestamps, memory, purple, ""); err != nil {
		return nil, fmt.Errorf("memory panel: %w", err)
	}
	return p, nil
}

func convergencePanel(weights, losses []float64) (*plot.Plot, error) {
	p := newPanel("Convergence", "w", "MSE")
	xys := finiteXYs(weights, losses)
	if len(xys) == 0 {
		return p, nil
	}
	line, points, err := plotter.NewLinePoints(xys)
	if err != nil {
		return nil, fmt.Errorf("convergence panel: %w", err)
	}
	line.LineStyle.Color = orange
	line.LineStyle.Width = vg.Points(2)
	points.GlyphStyle.Color = orange
	points.GlyphStyle.Shape = draw.CircleGlyph{}
	points.GlyphStyle.Radius = vg.Points(2)
	p.Add(line, points)
	return p, nil
}

func newPanel(title, xLabel, yLabel string) *plot.Plot {
	p := plot.New()
	p.Title.Text = title
	p.X.Label.Text = xLabel
	p.Y.Label.Text = yLabel
	p.Add(plotter.NewGrid())
	return p
}

func addLine(p *plot.Plot, xs, ys []float64, c color.Color, legend string) error {
	xys := finiteXYs(xs, ys)
	if len(xys) == 0 {
		return nil
	}
	line, err := plotter.NewLine(xys)
	if err != nil {
		return err
	}
	line.LineStyle.Color = c
	line.LineStyle.Width = vg.Points(2)
	p.Add(line)
	if legend != "" {
		p.Legend.Add(legend, line)
	}
	return nil
}

// finiteXYs pairs xs with ys, dropping points where either coordinate is NaN
// or infinite so a diverged run still renders.
func finiteXYs(xs, ys []float64) plotter.XYs {
	n := min(len(xs), len(ys))
	out := make(plotter.XYs, 0, n)
	for i := 0; i < n; i++ {
		if !finite(xs[i]) || !finite(ys[i]) {
			continue
		}
		out = append(out, plotter.XY{X: xs[i], Y: ys[i]})
	}
	return out
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
