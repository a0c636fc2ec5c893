package model

import "linreg-metrics/internal/dataset"

// Model defines the minimal training functionality required by the trainer.
type Model interface {
	// TrainStep performs one full-batch update and returns the loss measured
	// before the update was applied.
	TrainStep(ds *dataset.Dataset) float64
	Params() (w, b float64)
}
