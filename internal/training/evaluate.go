package training

import (
	"github.com/jengzang/flight-delay-backend-go/internal/models"
	"github.com/jengzang/flight-delay-backend-go/internal/stats"
)

// Evaluate scores predictions against the held-out targets
func Evaluate(actual, predicted []float64) models.EvaluationMetrics {
	a := stats.Describe(actual)
	p := stats.Describe(predicted)

	return models.EvaluationMetrics{
		RMSE:                stats.RMSE(actual, predicted),
		MAE:                 stats.MAE(actual, predicted),
		R2:                  stats.R2(actual, predicted),
		MedianAbsoluteError: stats.MedianAbsoluteError(actual, predicted),
		ExplainedVariance:   stats.ExplainedVariance(actual, predicted),
		MAPE:                stats.MAPE(actual, predicted),
		MeanActual:          a.Mean,
		MeanPredicted:       p.Mean,
		StdActual:           a.Std,
		StdPredicted:        p.Std,
		MinActual:           a.Min,
		MaxActual:           a.Max,
		MinPredicted:        p.Min,
		MaxPredicted:        p.Max,
		TestRows:            len(actual),
	}
}
