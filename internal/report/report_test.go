package report

import (
	"image/png"
	"math"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/plot/vg"

	"linreg-metrics/internal/metrics"
)

func history(losses, weights []float64) *metrics.History {
	h := metrics.NewHistory(len(losses))
	for i := range losses {
		h.Record(metrics.Snapshot{
			Epoch:    i * 50,
			Loss:     losses[i],
			W:        weights[i],
			B:        0.1 * float64(i),
			MemoryKB: 100 + float64(i),
			Elapsed:  time.Duration(i+1) * time.Millisecond,
		})
	}
	return h
}

func TestPanelsLayout(t *testing.T) {
	panels, err := Panels(history([]float64{44, 1, 0.5}, []float64{0.44, 1.8, 1.9}))
	require.NoError(t, err)
	require.Len(t, panels, 2)
	require.Len(t, panels[0], 2)
	require.Len(t, panels[1], 2)

	assert.Equal(t, "Loss (MSE)", panels[0][0].Title.Text)
	assert.Equal(t, "Parameters", panels[0][1].Title.Text)
	assert.Equal(t, "Memory usage", panels[1][0].Title.Text)
	assert.Equal(t, "Convergence", panels[1][1].Title.Text)
	assert.Equal(t, "Time (s)", panels[1][0].X.Label.Text)
}

func TestRenderWritesPNG(t *testing.T) {
	path := filepath.Join(t.TempDir(), "metrics.png")
	opts := Options{Path: path, DPI: 50, Width: 4 * vg.Inch, Height: 3 * vg.Inch}
	require.NoError(t, Render(history([]float64{44, 1, 0.5}, []float64{0.44, 1.8, 1.9}), opts))

	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()
	cfg, err := png.DecodeConfig(f)
	require.NoError(t, err)
	assert.Equal(t, 200, cfg.Width)
	assert.Equal(t, 150, cfg.Height)
}

func TestRenderSkipsNonFinitePoints(t *testing.T) {
	path := filepath.Join(t.TempDir(), "diverged.png")
	h := history(
		[]float64{44, math.Inf(1), math.NaN()},
		[]float64{0.44, math.Inf(-1), math.NaN()},
	)
	opts := Options{Path: path, DPI: 50, Width: 4 * vg.Inch, Height: 3 * vg.Inch}
	require.NoError(t, Render(h, opts))
	_, err := os.Stat(path)
	require.NoError(t, err)
}

func TestRenderEmptyHistory(t *testing.T) {
	err := Render(metrics.NewHistory(0), DefaultOptions(filepath.Join(t.TempDir(), "x.png")))
	require.ErrorIs(t, err, metrics.ErrEmptyHistory)
}

func TestDefaultOptions(t *testing.T) {
	opts := DefaultOptions("python_metrics.png")
	assert.Equal(t, 300, opts.DPI)
	assert.Equal(t, 12*vg.Inch, opts.Width)
	assert.Equal(t, 10*vg.Inch, opts.Height)
}

func TestFiniteXYs(t *testing.T) {
	xys := finiteXYs([]float64{1, math.NaN(), 3, 4}, []float64{1, 2, math.Inf(1), 4})
	require.Len(t, xys, 2)
	assert.Equal(t, 4.0, xys[1].X)
}

func TestViewerCommand(t *testing.T) {
	noEnv := func(string) string { return "" }
	_, _, err := viewerCommand("linux", noEnv)
	require.ErrorIs(t, err, ErrNoDisplay)

	withX := func(k string) string {
		if k == "DISPLAY" {
			return ":0"
		}
		return ""
	}
	name, _, err := viewerCommand("linux", withX)
	require.NoError(t, err)
	assert.Equal(t, "xdg-open", name)

	name, _, err = viewerCommand("darwin", noEnv)
	require.NoError(t, err)
	assert.Equal(t, "open", name)
}
