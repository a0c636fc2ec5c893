package trainer

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"linreg-metrics/internal/dataset"
	"linreg-metrics/internal/memtrace"
	"linreg-metrics/internal/metrics"
	"linreg-metrics/internal/model"
)

const (
	defaultSampleEvery = 50
	defaultLogEvery    = 200
)

// Observer receives every recorded snapshot.
type Observer interface {
	Observe(s metrics.Snapshot)
}

// RunConfig captures the knobs required by the training loop.
type RunConfig struct {
	LearningRate float64
	Epochs       int
	SampleEvery  int
	LogEvery     int
	// Progress receives the periodic "Epoch ..." lines. Nil discards them.
	Progress io.Writer
	Observer Observer
	Logger   *slog.Logger
}

// Result is the outcome of a training run.
type Result struct {
	W               float64
	B               float64
	Epochs          int
	Start           time.Time
	ExecutionTime   time.Duration
	PeakMemoryBytes uint64
	MemorySource    string
	History         *metrics.History
}

// Predict evaluates the learned line at x.
func (r *Result) Predict(x float64) float64 {
	return r.W*x + r.B
}

// PeakMemoryKB returns the peak memory in kilobytes.
func (r *Result) PeakMemoryKB() float64 {
	return float64(r.PeakMemoryBytes) / 1024
}

// WriteSummary prints the final parameters, timing and peak memory.
func (r *Result) WriteSummary(w io.Writer) error {
	_, err := fmt.Fprintf(w, "\nResults:\nw ≈ %.6f, b ≈ %.6f\nTotal time: %.6f seconds\nPeak memory: %.2f KB\n",
		r.W, r.B, r.ExecutionTime.Seconds(), r.PeakMemoryKB())
	return err
}

// Train runs fixed-epoch batch gradient descent over ds while sampling memory
// from src. The tracker wrapping src is released exactly once, even if the
// loop panics.
func Train(ds *dataset.Dataset, cfg RunConfig, src memtrace.Source) (*Result, error) {
	if ds == nil || ds.Len() == 0 {
		return nil, dataset.ErrEmpty
	}
	if cfg.LearningRate <= 0 {
		return nil, fmt.Errorf("trainer: learning rate must be > 0 (got %g)", cfg.LearningRate)
	}
	if cfg.Epochs <= 0 {
		return nil, errors.New("trainer: epochs must be > 0")
	}
	if cfg.SampleEvery <= 0 {
		cfg.SampleEvery = defaultSampleEvery
	}
	if cfg.LogEvery <= 0 {
		cfg.LogEvery = defaultLogEvery
	}
	if cfg.Progress == nil {
		cfg.Progress = io.Discard
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	tracker := memtrace.Start(src)
	defer tracker.Stop()

	res := run(ds, cfg, tracker)

	tracker.Stop()
	res.PeakMemoryBytes = tracker.Peak()
	res.MemorySource = tracker.SourceName()
	cfg.Logger.Debug("memory tracing stopped",
		"source", res.MemorySource,
		"samples", tracker.Samples(),
		"peak_bytes", res.PeakMemoryBytes,
	)
	if err := tracker.Err(); err != nil {
		cfg.Logger.Warn("memory sampling failed", "source", res.MemorySource, "err", err)
	}
	return res, nil
}

// run is the training loop proper; it only sees the narrow Probe interface.
func run(ds *dataset.Dataset, cfg RunConfig, mem memtrace.Probe) *Result {
	var mdl model.Model = model.NewLinear(cfg.LearningRate)
	history := metrics.NewHistory((cfg.Epochs + cfg.SampleEvery - 1) / cfg.SampleEvery)
	start := time.Now()

	for epoch := 0; epoch < cfg.Epochs; epoch++ {
		loss := mdl.TrainStep(ds)
		w, b := mdl.Params()

		memoryKB := float64(mem.Current()) / 1024
		elapsed := time.Since(start)

		if epoch%cfg.SampleEvery == 0 {
			snap := metrics.Snapshot{
				Epoch:    epoch,
				Loss:     loss,
				W:        w,
				B:        b,
				MemoryKB: memoryKB,
				Elapsed:  elapsed,
			}
			history.Record(snap)
			if cfg.Observer != nil {
				cfg.Observer.Observe(snap)
			}
			cfg.Logger.Debug("snapshot",
				"epoch", epoch,
				"loss", loss,
				"w", w,
				"b", b,
				"memory_kb", memoryKB,
				"elapsed", elapsed,
			)
		}

		if (epoch+1)%cfg.LogEvery == 0 {
			fmt.Fprintf(cfg.Progress, "Epoch %d, MSE: %.4f, w: %.4f, b: %.4f\n", epoch+1, loss, w, b)
		}
	}

	w, b := mdl.Params()
	return &Result{
		W:             w,
		B:             b,
		Epochs:        cfg.Epochs,
		Start:         start,
		ExecutionTime: time.Since(start),
		History:       history,
	}
}
