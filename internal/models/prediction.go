package models

import "time"

// RiskLevel is the coarse delay risk tier shown to users
type RiskLevel string

const (
	RiskLow    RiskLevel = "low"
	RiskMedium RiskLevel = "medium"
	RiskHigh   RiskLevel = "high"
)

// Attribution is one feature's signed contribution to a prediction
type Attribution struct {
	Feature      string  `json:"feature"`
	DisplayName  string  `json:"displayName"`
	Value        string  `json:"value"`
	Contribution float64 `json:"shap"`
}

// PredictionInput echoes the resolved request back to the caller
type PredictionInput struct {
	Origin      string  `json:"origin"`
	Destination string  `json:"destination"`
	Airline     string  `json:"airline"`
	Distance    float64 `json:"distance"`
}

// PredictionResult is the outcome of a single prediction request
type PredictionResult struct {
	Probability        float64         `json:"probability"`
	ProbabilityPercent float64         `json:"probabilityPercent"`
	ExpectedDelay      float64         `json:"expectedDelay"`
	RiskLevel          RiskLevel       `json:"riskLevel"`
	RiskText           string          `json:"riskText"`
	Attributions       []Attribution   `json:"shapValues"`
	ModelUsed          bool            `json:"modelUsed"`
	Input              PredictionInput `json:"input"`
}

// ModelStatus reports which artifacts the serving state was built from
type ModelStatus struct {
	ModelLoaded        bool      `json:"modelLoaded"`
	ModelFitted        bool      `json:"modelFitted"`
	EncodersLoaded     bool      `json:"encodersLoaded"`
	ExplainerAvailable bool      `json:"shapAvailable"`
	ExplainerMode      string    `json:"explainerMode"`
	LoadedAt           time.Time `json:"loadedAt"`
	Metrics            *Headline `json:"metrics,omitempty"`
}

// Headline is the short metric summary shown next to the model status
type Headline struct {
	R2Score float64 `json:"r2Score"`
	RMSE    float64 `json:"rmse"`
	MAE     float64 `json:"mae"`
	MAPE    float64 `json:"mape"`
}
