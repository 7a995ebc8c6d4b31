package service

import (
	"time"

	"github.com/jengzang/flight-delay-backend-go/internal/encoder"
	"github.com/jengzang/flight-delay-backend-go/internal/explain"
	"github.com/jengzang/flight-delay-backend-go/internal/gbm"
	"github.com/jengzang/flight-delay-backend-go/internal/models"
)

// Serving modes
const (
	ModeModel     = "model"
	ModeHeuristic = "heuristic"
)

// State is one immutable bundle of everything a prediction reads. A reload
// builds a new State and swaps it in whole.
type State struct {
	Model     *gbm.Model   // nil in heuristic mode
	Encoders  *encoder.Set // nil when no encoders were loaded
	Explainer explain.Explainer
	Metrics   *models.EvaluationMetrics
	LoadedAt  time.Time
}

// HeuristicState is the state used when no model is available
func HeuristicState(now time.Time) *State {
	return &State{Explainer: explain.NewSimulated(), LoadedAt: now}
}

// ModelLoaded reports whether predictions use the duration model
func (s *State) ModelLoaded() bool {
	return s != nil && s.Model != nil
}

// Mode returns ModeModel or ModeHeuristic
func (s *State) Mode() string {
	if s.ModelLoaded() {
		return ModeModel
	}
	return ModeHeuristic
}

// Status summarizes the state for the model info endpoint
func (s *State) Status() models.ModelStatus {
	if s == nil {
		return models.ModelStatus{ExplainerMode: explain.ModeSimulated}
	}
	status := models.ModelStatus{
		ModelLoaded:    s.ModelLoaded(),
		ModelFitted:    s.ModelLoaded() && s.Model.Fitted(),
		EncodersLoaded: s.Encoders != nil,
		LoadedAt:       s.LoadedAt,
		Metrics:        s.Metrics.Headline(),
	}
	if s.Explainer != nil {
		status.ExplainerMode = s.Explainer.Mode()
		status.ExplainerAvailable = status.ExplainerMode == explain.ModeModel
	}
	return status
}
