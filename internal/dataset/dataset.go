package dataset

import (
	"errors"
	"fmt"
)

var (
	// ErrDimensionMismatch indicates X and y have different lengths.
	ErrDimensionMismatch = errors.New("dataset: dimension mismatch")
	// ErrEmpty indicates a dataset without samples.
	ErrEmpty = errors.New("dataset: no samples")
)

// Dataset is an immutable pair of equal-length input and target sequences.
type Dataset struct {
	x []float64
	y []float64
}

// New copies x and y into a Dataset.
func New(x, y []float64) (*Dataset, error) {
	if len(x) != len(y) {
		return nil, fmt.Errorf("%w: len(X)=%d len(y)=%d", ErrDimensionMismatch, len(x), len(y))
	}
	if len(x) == 0 {
		return nil, ErrEmpty
	}
	return &Dataset{
		x: append([]float64(nil), x...),
		y: append([]float64(nil), y...),
	}, nil
}

// Toy returns the 5-point dataset y = 2x.
func Toy() *Dataset {
	ds, err := New([]float64{1, 2, 3, 4, 5}, []float64{2, 4, 6, 8, 10})
	if err != nil {
		panic(err)
	}
	return ds
}

// Len returns the number of samples.
func (d *Dataset) Len() int { return len(d.x) }

// X returns a copy of the inputs.
func (d *Dataset) X() []float64 { return append([]float64(nil), d.x...) }

// Y returns a copy of the targets.
func (d *Dataset) Y() []float64 { return append([]float64(nil), d.y...) }

// View exposes the backing slices without copying. Callers must not mutate them.
func (d *Dataset) View() (x, y []float64) { return d.x, d.y }
