package training

import (
	"errors"
	"fmt"

	"github.com/sajari/regression"

	"github.com/jengzang/flight-delay-backend-go/internal/dataset"
	"github.com/jengzang/flight-delay-backend-go/internal/models"
	"github.com/jengzang/flight-delay-backend-go/internal/stats"
)

// BaselineRowCap bounds the rows fed to the least squares baseline
const BaselineRowCap = 50000

// ErrBaselineData is returned when there are too few rows for the baseline
var ErrBaselineData = errors.New("not enough rows for linear baseline")

// LinearBaseline fits ordinary least squares on the training rows and scores
// it on the test rows
func LinearBaseline(part dataset.Partition, names []string) (*models.BaselineMetrics, error) {
	trainX, trainY := part.TrainX, part.TrainY
	if len(trainX) > BaselineRowCap {
		trainX, trainY = trainX[:BaselineRowCap], trainY[:BaselineRowCap]
	}
	if len(trainX) <= len(names) || len(part.TestX) == 0 {
		return nil, fmt.Errorf("%w: %d train rows for %d features", ErrBaselineData, len(trainX), len(names))
	}

	var r regression.Regression
	r.SetObserved("ArrDelayMinutes")
	for i, name := range names {
		r.SetVar(i, name)
	}
	for i, row := range trainX {
		r.Train(regression.DataPoint(trainY[i], row))
	}
	if err := r.Run(); err != nil {
		return nil, fmt.Errorf("fit linear baseline: %w", err)
	}

	predicted := make([]float64, len(part.TestX))
	for i, row := range part.TestX {
		p, err := r.Predict(row)
		if err != nil {
			return nil, fmt.Errorf("predict linear baseline: %w", err)
		}
		predicted[i] = p
	}

	return &models.BaselineMetrics{
		RMSE: stats.RMSE(part.TestY, predicted),
		MAE:  stats.MAE(part.TestY, predicted),
	}, nil
}
