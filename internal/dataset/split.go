package dataset

import (
	"errors"
	"fmt"
	"math"
)

var (
	// ErrInvalidFraction is returned for a test fraction outside (0, 1)
	ErrInvalidFraction = errors.New("test fraction must be in (0, 1)")
	// ErrLengthMismatch is returned when features and target differ in length
	ErrLengthMismatch = errors.New("feature and target lengths differ")
)

// Partition is a chronological train/test split
type Partition struct {
	TrainX [][]float64
	TestX  [][]float64
	TrainY []float64
	TestY  []float64
}

// SplitIndex returns floor(n * (1 - testFraction))
func SplitIndex(n int, testFraction float64) (int, error) {
	if math.IsNaN(testFraction) || testFraction <= 0 || testFraction >= 1 {
		return 0, fmt.Errorf("%w: %v", ErrInvalidFraction, testFraction)
	}
	return int(math.Floor(float64(n) * (1 - testFraction))), nil
}

// Split partitions rows that are already in chronological order. The first
// rows become the training set and the remainder the test set; rows are
// never shuffled.
func Split(x [][]float64, y []float64, testFraction float64) (Partition, error) {
	if len(x) != len(y) {
		return Partition{}, fmt.Errorf("%w: %d rows, %d targets", ErrLengthMismatch, len(x), len(y))
	}

	idx, err := SplitIndex(len(x), testFraction)
	if err != nil {
		return Partition{}, err
	}

	return Partition{
		TrainX: x[:idx],
		TestX:  x[idx:],
		TrainY: y[:idx],
		TestY:  y[idx:],
	}, nil
}
