package metrics

import (
	"errors"
	"time"
)

// ErrEmptyHistory is returned by exporters when nothing was recorded.
var ErrEmptyHistory = errors.New("metrics: history is empty")

// Snapshot represents the metrics recorded at a sampled epoch.
type Snapshot struct {
	Epoch    int
	Loss     float64
	W        float64
	B        float64
	MemoryKB float64
	Elapsed  time.Duration
}

// History accumulates snapshots as parallel append-only sequences.
type History struct {
	epochs    []int
	losses    []float64
	weights   []float64
	biases    []float64
	memory    []float64
	timestamp []float64
}

// NewHistory preallocates room for n snapshots.
func NewHistory(n int) *History {
	if n < 0 {
		n = 0
	}
	return &History{
		epochs:    make([]int, 0, n),
		losses:    make([]float64, 0, n),
		weights:   make([]float64, 0, n),
		biases:    make([]float64, 0, n),
		memory:    make([]float64, 0, n),
		timestamp: make([]float64, 0, n),
	}
}

// Record appends s to every sequence.
func (h *History) Record(s Snapshot) {
	h.epochs = append(h.epochs, s.Epoch)
	h.losses = append(h.losses, s.Loss)
	h.weights = append(h.weights, s.W)
	h.biases = append(h.biases, s.B)
	h.memory = append(h.memory, s.MemoryKB)
	h.timestamp = append(h.timestamp, s.Elapsed.Seconds())
}

// Len returns the number of recorded snapshots.
func (h *History) Len() int { return len(h.losses) }

// Epochs returns the epoch index of each snapshot.
func (h *History) Epochs() []int { return append([]int(nil), h.epochs...) }

// Losses returns the MSE of each snapshot.
func (h *History) Losses() []float64 { return clone(h.losses) }

// Weights returns w of each snapshot.
func (h *History) Weights() []float64 { return clone(h.weights) }

// Biases returns b of each snapshot.
func (h *History) Biases() []float64 { return clone(h.biases) }

// MemoryUsage returns the memory sample of each snapshot in KB.
func (h *History) MemoryUsage() []float64 { return clone(h.memory) }

// Timestamps returns the elapsed seconds of each snapshot.
func (h *History) Timestamps() []float64 { return clone(h.timestamp) }

// At returns the i-th snapshot.
func (h *History) At(i int) Snapshot {
	return Snapshot{
		Epoch:    h.epochs[i],
		Loss:     h.losses[i],
		W:        h.weights[i],
		B:        h.biases[i],
		MemoryKB: h.memory[i],
		Elapsed:  time.Duration(h.timestamp[i] * float64(time.Second)),
	}
}

func clone(s []float64) []float64 {
	return append([]float64(nil), s...)
}
