// Package training runs the offline pipeline that turns delayed flight
// records into a persisted delay duration model.
package training

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/jengzang/flight-delay-backend-go/internal/artifact"
	"github.com/jengzang/flight-delay-backend-go/internal/dataset"
	"github.com/jengzang/flight-delay-backend-go/internal/encoder"
	"github.com/jengzang/flight-delay-backend-go/internal/features"
	"github.com/jengzang/flight-delay-backend-go/internal/gbm"
	"github.com/jengzang/flight-delay-backend-go/internal/models"
)

// DefaultTestSize is the fraction of the newest rows held out for evaluation
const DefaultTestSize = 0.2

// ErrNoData is returned when the source yields no usable rows
var ErrNoData = errors.New("no training data")

// FlightSource yields delayed flights in chronological order
type FlightSource interface {
	LoadDelayed(ctx context.Context) ([]models.FlightRecord, error)
}

// RunStore records training runs
type RunStore interface {
	Create(ctx context.Context, run *models.TrainingRun) error
	Update(ctx context.Context, run *models.TrainingRun) error
}

// Result is the outcome of a successful run
type Result struct {
	Run          *models.TrainingRun
	Metrics      models.EvaluationMetrics
	Importance   []gbm.Importance
	Imputations  []dataset.Imputation
	Correlations []Correlation
	Model        *gbm.Model
	Encoders     *encoder.Set
}

// Pipeline orchestrates load, feature engineering, imputation, encoding,
// split, fit, evaluation and persistence
type Pipeline struct {
	source   FlightSource
	store    *artifact.Store
	runs     RunStore
	logger   *zap.Logger
	params   gbm.Params
	testSize float64
	save     bool
	report   bool
	baseline bool
	now      func() time.Time
}

// Option configures a Pipeline
type Option func(*Pipeline)

// WithRunStore records every run in the given ledger
func WithRunStore(runs RunStore) Option {
	return func(p *Pipeline) { p.runs = runs }
}

// WithLogger sets the pipeline logger
func WithLogger(logger *zap.Logger) Option {
	return func(p *Pipeline) {
		if logger != nil {
			p.logger = logger
		}
	}
}

// WithParams overrides the boosting hyperparameters
func WithParams(params gbm.Params) Option {
	return func(p *Pipeline) { p.params = params }
}

// WithTestSize sets the held-out fraction
func WithTestSize(fraction float64) Option {
	return func(p *Pipeline) { p.testSize = fraction }
}

// WithSave toggles artifact persistence
func WithSave(save bool) Option {
	return func(p *Pipeline) { p.save = save }
}

// WithReport toggles the xlsx training report
func WithReport(report bool) Option {
	return func(p *Pipeline) { p.report = report }
}

// WithBaseline toggles the linear baseline
func WithBaseline(baseline bool) Option {
	return func(p *Pipeline) { p.baseline = baseline }
}

// NewPipeline creates a pipeline reading from source and writing to store
func NewPipeline(source FlightSource, store *artifact.Store, opts ...Option) *Pipeline {
	p := &Pipeline{
		source:   source,
		store:    store,
		logger:   zap.NewNop(),
		params:   gbm.DefaultParams(),
		testSize: DefaultTestSize,
		save:     true,
		baseline: true,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Run executes the pipeline once
func (p *Pipeline) Run(ctx context.Context) (*Result, error) {
	run := &models.TrainingRun{
		ID:        uuid.NewString(),
		Status:    models.RunStatusRunning,
		StartedAt: p.now().UTC(),
	}
	log := p.logger.With(zap.String("run_id", run.ID))
	p.record(ctx, log, run, true)

	result, err := p.execute(ctx, log, run)
	completed := p.now().UTC()
	run.CompletedAt = &completed
	if err != nil {
		run.Status = models.RunStatusFailed
		run.ErrorMessage = err.Error()
		p.record(ctx, log, run, false)
		log.Error("training failed", zap.Error(err))
		return nil, err
	}

	run.Status = models.RunStatusCompleted
	run.RMSE = result.Metrics.RMSE
	run.MAE = result.Metrics.MAE
	run.R2 = result.Metrics.R2
	run.MAPE = result.Metrics.MAPE
	p.record(ctx, log, run, false)

	log.Info("training completed",
		zap.Float64("rmse", run.RMSE),
		zap.Float64("mae", run.MAE),
		zap.Float64("r2", run.R2),
		zap.Duration("elapsed", completed.Sub(run.StartedAt)),
	)
	return result, nil
}

func (p *Pipeline) execute(ctx context.Context, log *zap.Logger, run *models.TrainingRun) (*Result, error) {
	records, err := p.source.LoadDelayed(ctx)
	if err != nil {
		return nil, fmt.Errorf("load flights: %w", err)
	}
	run.RowsLoaded = len(records)
	log.Info("loaded delayed flights", zap.Int("rows", len(records)))
	if len(records) == 0 {
		return nil, ErrNoData
	}

	frame := dataset.NewFrame(features.EngineerAll(records))
	if err := frame.Err(); err != nil {
		return nil, fmt.Errorf("build training table: %w", err)
	}

	frame, dropped := frame.DropMissingTarget()
	run.RowsDropped = dropped
	if dropped > 0 {
		log.Warn("dropped rows without delay minutes", zap.Int("rows", dropped))
	}
	if frame.Len() == 0 {
		return nil, ErrNoData
	}

	frame, imputations, err := frame.Impute()
	if err != nil {
		return nil, fmt.Errorf("handle missing values: %w", err)
	}
	for _, imp := range imputations {
		log.Info("imputed missing values",
			zap.String("column", imp.Column),
			zap.String("strategy", imp.Strategy),
			zap.Float64("value", imp.Value),
			zap.Int("rows", imp.Filled),
		)
	}

	enc := frame.FitEncoders()
	log.Info("fitted encoders",
		zap.Int("airlines", enc.Airline.Len()),
		zap.Int("origins", enc.Origin.Len()),
		zap.Int("destinations", enc.Dest.Len()),
	)

	x, y, err := frame.Matrix(enc)
	if err != nil {
		return nil, fmt.Errorf("build feature matrix: %w", err)
	}
	part, err := dataset.Split(x, y, p.testSize)
	if err != nil {
		return nil, fmt.Errorf("split: %w", err)
	}
	run.TrainRows = len(part.TrainY)
	run.TestRows = len(part.TestY)
	log.Info("split chronologically", zap.Int("train", run.TrainRows), zap.Int("test", run.TestRows))

	var eval *gbm.EvalSet
	if len(part.TestY) > 0 {
		eval = &gbm.EvalSet{X: part.TestX, Y: part.TestY}
	}
	model := gbm.New(p.params, gbm.WithLogger(log.Named("gbm")))
	names := features.ColumnNames()
	if err := model.Fit(ctx, part.TrainX, part.TrainY, names, eval); err != nil {
		return nil, fmt.Errorf("fit model: %w", err)
	}

	metrics := models.EvaluationMetrics{}
	if len(part.TestY) > 0 {
		predicted, err := model.Predict(part.TestX)
		if err != nil {
			return nil, fmt.Errorf("predict test split: %w", err)
		}
		metrics = Evaluate(part.TestY, predicted)
	}
	metrics.RunID = run.ID
	metrics.CreatedAt = p.now().UTC()
	metrics.TrainRows = run.TrainRows
	metrics.TestRows = run.TestRows
	metrics.BestIteration = model.BestIteration()

	if p.baseline {
		baseline, err := LinearBaseline(part, names)
		if err != nil {
			log.Warn("linear baseline skipped", zap.Error(err))
		} else {
			metrics.Baseline = baseline
		}
	}

	importance, err := model.FeatureImportance()
	if err != nil {
		return nil, fmt.Errorf("feature importance: %w", err)
	}

	result := &Result{
		Run:          run,
		Metrics:      metrics,
		Importance:   importance,
		Imputations:  imputations,
		Correlations: TargetCorrelations(part.TrainX, part.TrainY, names),
		Model:        model,
		Encoders:     enc,
	}

	if p.save {
		if err := p.persist(result); err != nil {
			return nil, err
		}
		log.Info("saved artifacts", zap.String("dir", p.store.Dir()))
	}
	if p.report {
		path := p.store.Path(artifact.ReportFile)
		if err := WriteReport(path, Report{
			Metrics:      metrics,
			Importance:   importance,
			Imputations:  imputations,
			Correlations: result.Correlations,
		}); err != nil {
			log.Warn("training report not written", zap.Error(err))
		} else {
			log.Info("wrote training report", zap.String("path", path))
		}
	}
	return result, nil
}

func (p *Pipeline) persist(r *Result) error {
	if err := p.store.SaveModel(r.Model); err != nil {
		return fmt.Errorf("save model: %w", err)
	}
	if err := p.store.SaveEncoders(r.Encoders); err != nil {
		return fmt.Errorf("save encoders: %w", err)
	}
	if err := p.store.SaveMetrics(&r.Metrics); err != nil {
		return fmt.Errorf("save metrics: %w", err)
	}
	return nil
}

// record writes the run to the ledger. Ledger failures are logged and never
// fail the run.
func (p *Pipeline) record(ctx context.Context, log *zap.Logger, run *models.TrainingRun, create bool) {
	if p.runs == nil {
		return
	}
	ctx = context.WithoutCancel(ctx)

	var err error
	if create {
		err = p.runs.Create(ctx, run)
	} else {
		err = p.runs.Update(ctx, run)
	}
	if err != nil {
		log.Warn("training run ledger write failed", zap.Error(err))
	}
}
