package metrics

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Gauges mirrors the latest snapshot into a private Prometheus registry.
type Gauges struct {
	reg *prometheus.Registry

	loss      prometheus.Gauge
	weight    prometheus.Gauge
	bias      prometheus.Gauge
	memory    prometheus.Gauge
	elapsed   prometheus.Gauge
	snapshots prometheus.Counter

	epochs   prometheus.Gauge
	peak     prometheus.Gauge
	duration prometheus.Gauge
}

// NewGauges registers the training gauges, labelled with runID.
func NewGauges(runID string) *Gauges {
	reg := prometheus.NewRegistry()
	f := promauto.With(reg)
	labels := prometheus.Labels{"run_id": runID}

	gauge := func(name, help string) prometheus.Gauge {
		return f.NewGauge(prometheus.GaugeOpts{
			Namespace:   "linreg",
			Name:        name,
			Help:        help,
			ConstLabels: labels,
		})
	}

	return &Gauges{
		reg:     reg,
		loss:    gauge("loss", "Mean squared error at the last snapshot."),
		weight:  gauge("weight", "Model weight at the last snapshot."),
		bias:    gauge("bias", "Model bias at the last snapshot."),
		memory:  gauge("memory_kilobytes", "Memory usage at the last snapshot."),
		elapsed: gauge("elapsed_seconds", "Training time at the last snapshot."),
		snapshots: f.NewCounter(prometheus.CounterOpts{
			Namespace:   "linreg",
			Name:        "snapshots_total",
			Help:        "Snapshots recorded.",
			ConstLabels: labels,
		}),
		epochs:   gauge("epochs", "Epochs completed."),
		peak:     gauge("peak_memory_bytes", "Peak memory observed during training."),
		duration: gauge("execution_seconds", "Total training time."),
	}
}

// Observe updates the gauges from s.
func (g *Gauges) Observe(s Snapshot) {
	g.loss.Set(s.Loss)
	g.weight.Set(s.W)
	g.bias.Set(s.B)
	g.memory.Set(s.MemoryKB)
	g.elapsed.Set(s.Elapsed.Seconds())
	g.snapshots.Inc()
}

// Finish records end-of-run totals.
func (g *Gauges) Finish(epochs int, peakBytes uint64, executionSeconds float64) {
	g.epochs.Set(float64(epochs))
	g.peak.Set(float64(peakBytes))
	g.duration.Set(executionSeconds)
}

// Registry exposes the underlying registry.
func (g *Gauges) Registry() *prometheus.Registry { return g.reg }

// WriteTextfile writes the registry in the Prometheus text format.
func (g *Gauges) WriteTextfile(path string) error {
	if err := prometheus.WriteToTextfile(path, g.reg); err != nil {
		return fmt.Errorf("write prometheus textfile: %w", err)
	}
	return nil
}
