package models

import "time"

// Training run statuses
const (
	RunStatusRunning   = "running"
	RunStatusCompleted = "completed"
	RunStatusFailed    = "failed"
)

// TrainingRun is one execution of the training pipeline
type TrainingRun struct {
	ID     string `json:"id" db:"id"`
	Status string `json:"status" db:"status"` // running, completed, failed

	RowsLoaded  int `json:"rows_loaded" db:"rows_loaded"`
	RowsDropped int `json:"rows_dropped" db:"rows_dropped"` // Missing target
	TrainRows   int `json:"train_rows" db:"train_rows"`
	TestRows    int `json:"test_rows" db:"test_rows"`

	RMSE float64 `json:"rmse" db:"rmse"`
	MAE  float64 `json:"mae" db:"mae"`
	R2   float64 `json:"r2_score" db:"r2"`
	MAPE float64 `json:"mape" db:"mape"`

	ErrorMessage string     `json:"error_message,omitempty" db:"error_message"`
	StartedAt    time.Time  `json:"started_at" db:"started_at"`
	CompletedAt  *time.Time `json:"completed_at,omitempty" db:"completed_at"`
}

// EvaluationMetrics is the persisted evaluation summary of a trained model.
// Per-row predictions and residuals are deliberately not part of it.
type EvaluationMetrics struct {
	RunID     string    `json:"run_id"`
	CreatedAt time.Time `json:"created_at"`

	RMSE                float64 `json:"rmse"`
	MAE                 float64 `json:"mae"`
	R2                  float64 `json:"r2_score"`
	MedianAbsoluteError float64 `json:"median_absolute_error"`
	ExplainedVariance   float64 `json:"explained_variance"`
	MAPE                float64 `json:"mape"`

	MeanActual    float64 `json:"mean_actual"`
	MeanPredicted float64 `json:"mean_predicted"`
	StdActual     float64 `json:"std_actual"`
	StdPredicted  float64 `json:"std_predicted"`
	MinActual     float64 `json:"min_actual"`
	MaxActual     float64 `json:"max_actual"`
	MinPredicted  float64 `json:"min_predicted"`
	MaxPredicted  float64 `json:"max_predicted"`

	TrainRows     int `json:"train_rows"`
	TestRows      int `json:"test_rows"`
	BestIteration int `json:"best_iteration"`

	Baseline *BaselineMetrics `json:"linear_baseline,omitempty"`
}

// BaselineMetrics scores the ordinary least squares baseline on the test split
type BaselineMetrics struct {
	RMSE float64 `json:"rmse"`
	MAE  float64 `json:"mae"`
}

// Headline returns the short summary used by the model status endpoint
func (m *EvaluationMetrics) Headline() *Headline {
	if m == nil {
		return nil
	}
	return &Headline{R2Score: m.R2, RMSE: m.RMSE, MAE: m.MAE, MAPE: m.MAPE}
}
