package service

import (
	"errors"
	"fmt"
	"io/fs"
	"time"

	"go.uber.org/zap"

	"github.com/jengzang/flight-delay-backend-go/internal/artifact"
	"github.com/jengzang/flight-delay-backend-go/internal/explain"
	"github.com/jengzang/flight-delay-backend-go/internal/features"
	"github.com/jengzang/flight-delay-backend-go/internal/gbm"
	"github.com/jengzang/flight-delay-backend-go/internal/telemetry"
)

// Loader builds serving states from an artifact directory
type Loader struct {
	store   *artifact.Store
	logger  *zap.Logger
	metrics *telemetry.Metrics
	now     func() time.Time
}

// NewLoader creates a loader. logger and metrics may be nil.
func NewLoader(store *artifact.Store, logger *zap.Logger, metrics *telemetry.Metrics) *Loader {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Loader{store: store, logger: logger, metrics: metrics, now: time.Now}
}

// Load reads every artifact and returns a complete state. The state is never
// nil: when the model cannot be used the state runs in heuristic mode and the
// returned error says why.
func (l *Loader) Load() (*State, error) {
	st := HeuristicState(l.now().UTC())
	var errs []error

	enc, err := l.store.LoadEncoders()
	switch {
	case err == nil:
		st.Encoders = enc
	case errors.Is(err, fs.ErrNotExist):
		l.logger.Warn("encoders not found, unseen codes map to 0", zap.String("dir", l.store.Dir()))
	default:
		l.logger.Error("failed to load encoders", zap.Error(err))
		errs = append(errs, err)
	}

	metrics, err := l.store.LoadMetrics()
	if err == nil {
		st.Metrics = metrics
	} else if !errors.Is(err, fs.ErrNotExist) {
		l.logger.Warn("failed to load metrics", zap.Error(err))
	}

	model, err := l.loadModel()
	if err != nil {
		l.logger.Warn("duration model unavailable, running in heuristic mode", zap.Error(err))
		errs = append(errs, err)
		return st, errors.Join(errs...)
	}
	st.Model = model

	tree, err := explain.NewTree(model,
		explain.WithLogger(l.logger.Named("explain")),
		explain.WithFallbackHook(func(error) { l.metrics.ExplainerFallback() }),
	)
	if err != nil {
		l.logger.Warn("model explainer unavailable, using simulated attributions", zap.Error(err))
	} else {
		st.Explainer = tree
	}

	l.logger.Info("serving state loaded",
		zap.String("mode", st.Mode()),
		zap.String("explainer", st.Explainer.Mode()),
		zap.Int("trees", model.NumTrees()),
		zap.Bool("encoders", st.Encoders != nil),
	)
	return st, errors.Join(errs...)
}

func (l *Loader) loadModel() (*gbm.Model, error) {
	model, err := l.store.LoadModel(gbm.WithLogger(l.logger.Named("gbm")))
	if err != nil {
		return nil, err
	}
	if !model.Fitted() {
		return nil, gbm.ErrNotFitted
	}
	if !features.MatchesColumns(model.FeatureNames()) {
		return nil, fmt.Errorf("%w: model features %v", gbm.ErrFeatureMismatch, model.FeatureNames())
	}
	return model, nil
}
