package model

import (
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"linreg-metrics/internal/dataset"
)

// Linear is a single-variable linear model y = w*x + b trained by batch
// gradient descent on mean squared error.
type Linear struct {
	w        float64
	b        float64
	lr       float64
	residual []float64
}

// NewLinear constructs the model with w = b = 0.
func NewLinear(lr float64) *Linear {
	return &Linear{lr: lr}
}

// Params returns the current weight and bias.
func (m *Linear) Params() (w, b float64) {
	return m.w, m.b
}

// Predict evaluates the model at x.
func (m *Linear) Predict(x float64) float64 {
	return m.w*x + m.b
}

// TrainStep executes one gradient descent step over the whole dataset and
// returns the MSE of the parameters that entered the step.
func (m *Linear) TrainStep(ds *dataset.Dataset) float64 {
	x, y := ds.View()
	n := float64(len(x))
	if cap(m.residual) < len(x) {
		m.residual = make([]float64, len(x))
	}
	residual := m.residual[:len(x)]

	// residual = w*x + b - y
	floats.ScaleTo(residual, m.w, x)
	floats.AddConst(m.b, residual)
	floats.Sub(residual, y)

	dw := (2 / n) * floats.Dot(residual, x)
	db := (2 / n) * floats.Sum(residual)

	m.w -= m.lr * dw
	m.b -= m.lr * db

	return floats.Dot(residual, residual) / n
}

// ClosedForm returns the ordinary least squares fit of ds.
func ClosedForm(ds *dataset.Dataset) (w, b float64) {
	x, y := ds.View()
	b, w = stat.LinearRegression(x, y, nil, false)
	return w, b
}
