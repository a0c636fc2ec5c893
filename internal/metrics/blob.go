package metrics

import (
	"fmt"
	"os"
	"time"

	"github.com/arloliu/mebo"
)

// Metric names used in the encoded blob.
const (
	MetricLoss    = "linreg.loss"
	MetricWeight  = "linreg.weight"
	MetricBias    = "linreg.bias"
	MetricMemory  = "linreg.memory_kb"
	MetricElapsed = "linreg.elapsed_seconds"
)

// EncodeBlob packs the history into a mebo numeric blob. Each sequence is a
// metric whose timestamps are start plus the snapshot's elapsed time, in
// microseconds.
func EncodeBlob(h *History, start time.Time) ([]byte, error) {
	n := h.Len()
	if n == 0 {
		return nil, ErrEmptyHistory
	}

	enc, err := mebo.NewDefaultNumericEncoder(start)
	if err != nil {
		return nil, fmt.Errorf("create encoder: %w", err)
	}

	ts := make([]int64, n)
	for i, sec := range h.timestamp {
		ts[i] = start.Add(time.Duration(sec * float64(time.Second))).UnixMicro()
	}

	series := []struct {
		name   string
		values []float64
	}{
		{MetricLoss, h.losses},
		{MetricWeight, h.weights},
		{MetricBias, h.biases},
		{MetricMemory, h.memory},
		{MetricElapsed, h.timestamp},
	}
	for _, s := range series {
		if err := enc.StartMetricName(s.name, n); err != nil {
			return nil, fmt.Errorf("start %s: %w", s.name, err)
		}
		if err := enc.AddDataPoints(ts, s.values, nil); err != nil {
			return nil, fmt.Errorf("add %s: %w", s.name, err)
		}
		if err := enc.EndMetric(); err != nil {
			return nil, fmt.Errorf("end %s: %w", s.name, err)
		}
	}

	data, err := enc.Finish()
	if err != nil {
		return nil, fmt.Errorf("finish blob: %w", err)
	}
	return data, nil
}

// WriteBlob encodes h and writes it to path.
func WriteBlob(path string, h *History, start time.Time) error {
	data, err := EncodeBlob(h, start)
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write blob: %w", err)
	}
	return nil
}

// DecodeBlob reads a blob produced by EncodeBlob back into the five value
// sequences, keyed by metric name.
func DecodeBlob(data []byte) (map[string][]float64, error) {
	dec, err := mebo.NewNumericDecoder(data)
	if err != nil {
		return nil, fmt.Errorf("open blob: %w", err)
	}
	blob, err := dec.Decode()
	if err != nil {
		return nil, fmt.Errorf("decode blob: %w", err)
	}

	out := make(map[string][]float64, 5)
	for _, name := range []string{MetricLoss, MetricWeight, MetricBias, MetricMemory, MetricElapsed} {
		values := make([]float64, 0, blob.LenByName(name))
		for v := range blob.AllValuesByName(name) {
			values = append(values, v)
		}
		out[name] = values
	}
	return out, nil
}
