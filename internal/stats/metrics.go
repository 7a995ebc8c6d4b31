package stats

import (
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// RMSE is the root mean squared error between actual and predicted
func RMSE(actual, predicted []float64) float64 {
	if len(actual) == 0 {
		return 0
	}
	return floats.Distance(actual, predicted, 2) / math.Sqrt(float64(len(actual)))
}

// MAE is the mean absolute error between actual and predicted
func MAE(actual, predicted []float64) float64 {
	if len(actual) == 0 {
		return 0
	}
	return floats.Distance(actual, predicted, 1) / float64(len(actual))
}

// R2 is the coefficient of determination. A constant actual series scores 0.
func R2(actual, predicted []float64) float64 {
	if len(actual) == 0 {
		return 0
	}

	mean := stat.Mean(actual, nil)
	var ssRes, ssTot float64
	for i, y := range actual {
		r := y - predicted[i]
		d := y - mean
		ssRes += r * r
		ssTot += d * d
	}
	if ssTot == 0 {
		return 0
	}
	return 1 - ssRes/ssTot
}

// MedianAbsoluteError is the median of the absolute residuals
func MedianAbsoluteError(actual, predicted []float64) float64 {
	return Median(absResiduals(actual, predicted))
}

// ExplainedVariance is 1 - Var(actual - predicted) / Var(actual)
func ExplainedVariance(actual, predicted []float64) float64 {
	if len(actual) == 0 {
		return 0
	}

	residuals := make([]float64, len(actual))
	floats.SubTo(residuals, actual, predicted)

	varActual := populationVariance(actual)
	if varActual == 0 {
		return 0
	}
	return 1 - populationVariance(residuals)/varActual
}

// MAPE is the mean absolute percentage error in percent. Rows with a zero
// actual value are skipped.
func MAPE(actual, predicted []float64) float64 {
	var sum float64
	var n int
	for i, y := range actual {
		if y == 0 {
			continue
		}
		sum += math.Abs((y - predicted[i]) / y)
		n++
	}
	if n == 0 {
		return 0
	}
	return sum / float64(n) * 100
}

func absResiduals(actual, predicted []float64) []float64 {
	out := make([]float64, len(actual))
	for i, y := range actual {
		out[i] = math.Abs(y - predicted[i])
	}
	return out
}

func populationVariance(values []float64) float64 {
	_, variance := stat.PopMeanVariance(values, nil)
	return variance
}
