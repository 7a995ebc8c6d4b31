// Package gbm implements histogram gradient boosted regression trees with a
// squared error objective, plus per-prediction path attribution.
package gbm

import (
	"errors"
	"fmt"
	"runtime"
)

// Params are the boosting hyperparameters
type Params struct {
	MaxDepth            int     `json:"max_depth"`
	LearningRate        float64 `json:"learning_rate"`
	NumTrees            int     `json:"n_estimators"`
	Subsample           float64 `json:"subsample"`
	ColSample           float64 `json:"colsample_bytree"`
	Lambda              float64 `json:"reg_lambda"`
	MinChildWeight      float64 `json:"min_child_weight"`
	Gamma               float64 `json:"gamma"`
	MaxBins             int     `json:"max_bin"`
	EarlyStoppingRounds int     `json:"early_stopping_rounds"`
	Seed                uint64  `json:"random_state"`
	Workers             int     `json:"-"`
	LogEvery            int     `json:"-"`
}

// DefaultParams returns the production hyperparameters
func DefaultParams() Params {
	return Params{
		MaxDepth:            8,
		LearningRate:        0.1,
		NumTrees:            200,
		Subsample:           0.8,
		ColSample:           0.8,
		Lambda:              1,
		MinChildWeight:      1,
		Gamma:               0,
		MaxBins:             256,
		EarlyStoppingRounds: 20,
		Seed:                42,
		LogEvery:            50,
	}
}

// ErrInvalidParams is returned by Validate
var ErrInvalidParams = errors.New("invalid boosting parameters")

// Validate checks parameter ranges
func (p Params) Validate() error {
	switch {
	case p.MaxDepth < 1:
		return fmt.Errorf("%w: max depth %d", ErrInvalidParams, p.MaxDepth)
	case p.LearningRate <= 0:
		return fmt.Errorf("%w: learning rate %v", ErrInvalidParams, p.LearningRate)
	case p.NumTrees < 1:
		return fmt.Errorf("%w: %d trees", ErrInvalidParams, p.NumTrees)
	case p.Subsample <= 0 || p.Subsample > 1:
		return fmt.Errorf("%w: subsample %v", ErrInvalidParams, p.Subsample)
	case p.ColSample <= 0 || p.ColSample > 1:
		return fmt.Errorf("%w: colsample %v", ErrInvalidParams, p.ColSample)
	case p.Lambda < 0 || p.MinChildWeight < 0 || p.Gamma < 0:
		return fmt.Errorf("%w: negative regularisation", ErrInvalidParams)
	case p.MaxBins < 2 || p.MaxBins > 256:
		return fmt.Errorf("%w: max bins %d", ErrInvalidParams, p.MaxBins)
	case p.EarlyStoppingRounds < 0:
		return fmt.Errorf("%w: early stopping %d", ErrInvalidParams, p.EarlyStoppingRounds)
	}
	return nil
}

func (p Params) workers() int {
	if p.Workers > 0 {
		return p.Workers
	}
	return runtime.GOMAXPROCS(0)
}
