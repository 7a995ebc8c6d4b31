package service

import (
	"context"
	"errors"
	"io/fs"
	"math/rand/v2"
	"os"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jengzang/flight-delay-backend-go/internal/artifact"
	"github.com/jengzang/flight-delay-backend-go/internal/encoder"
	"github.com/jengzang/flight-delay-backend-go/internal/explain"
	"github.com/jengzang/flight-delay-backend-go/internal/features"
	"github.com/jengzang/flight-delay-backend-go/internal/gbm"
	"github.com/jengzang/flight-delay-backend-go/internal/heuristic"
	"github.com/jengzang/flight-delay-backend-go/internal/models"
	"github.com/jengzang/flight-delay-backend-go/internal/telemetry"
	"github.com/jengzang/flight-delay-backend-go/internal/training"
)

func fitModel(t *testing.T, names []string) *gbm.Model {
	t.Helper()
	rng := rand.New(rand.NewPCG(5, 6))
	x := make([][]float64, 200)
	y := make([]float64, 200)
	for i := range x {
		row := make([]float64, len(names))
		for j := range row {
			row[j] = rng.Float64() * 24
		}
		x[i] = row
		y[i] = 30 + 2*row[0]
	}
	p := gbm.DefaultParams()
	p.NumTrees = 10
	p.MaxDepth = 3
	p.LogEvery = 0
	m := gbm.New(p)
	require.NoError(t, m.Fit(context.Background(), x, y, names, nil))
	return m
}

func writeArtifacts(t *testing.T, store *artifact.Store, names []string) {
	t.Helper()
	require.NoError(t, store.SaveModel(fitModel(t, names)))
	require.NoError(t, store.SaveEncoders(encoder.FitSet([]string{"AA", "DL"}, []string{"ATL", "JFK"}, []string{"LAX", "ORD"})))
	require.NoError(t, store.SaveMetrics(&models.EvaluationMetrics{RMSE: 20, MAE: 14, R2: 0.5, MAPE: 30}))
}

func fixedEstimator() *heuristic.Estimator {
	return heuristic.New(heuristic.WithRand(func() float64 { return 0.5 }))
}

func newTestPredictor(dir string) *Predictor {
	loader := NewLoader(artifact.NewStore(dir), nil, telemetry.New())
	return NewPredictor(loader, WithEstimator(fixedEstimator()), WithMetrics(telemetry.New()))
}

func request() models.FlightRequest {
	month, dow, dep := 7, 5, 18
	return models.FlightRequest{
		Origin:      "jfk",
		Destination: "LAX",
		Airline:     "DL",
		Month:       &month,
		DayOfWeek:   &dow,
		DepHour:     &dep,
	}
}

func TestPredictHeuristicMode(t *testing.T) {
	p := newTestPredictor(t.TempDir())

	result := p.Predict(request())
	assert.False(t, result.ModelUsed)
	assert.Equal(t, ModeHeuristic, p.State().Mode())

	_, c := features.Prepare(request(), nil)
	prob := heuristic.Score(c)
	assert.InDelta(t, prob, result.Probability, 1e-4)
	assert.InDelta(t, prob*100, result.ProbabilityPercent, 0.05)
	assert.InDelta(t, 15+prob*60+10, result.ExpectedDelay, 0.05)

	assert.Len(t, result.Attributions, explain.MaxAttributions)
	assert.Equal(t, "JFK", result.Input.Origin)
	assert.Equal(t, "LAX", result.Input.Destination)
	assert.Greater(t, result.Input.Distance, 2000.0)
}

func TestReloadWithoutArtifacts(t *testing.T) {
	p := newTestPredictor(t.TempDir())

	st, err := p.Reload()
	assert.ErrorIs(t, err, fs.ErrNotExist)
	assert.False(t, st.ModelLoaded())
	assert.Same(t, st, p.State())

	status := p.Status()
	assert.False(t, status.ModelLoaded)
	assert.False(t, status.ExplainerAvailable)
	assert.Equal(t, explain.ModeSimulated, status.ExplainerMode)
}

func TestReloadLoadsModel(t *testing.T) {
	dir := t.TempDir()
	writeArtifacts(t, artifact.NewStore(dir), features.ColumnNames())
	p := newTestPredictor(dir)

	st, err := p.Reload()
	require.NoError(t, err)
	assert.Equal(t, ModeModel, st.Mode())

	result := p.Predict(request())
	assert.True(t, result.ModelUsed)
	assert.GreaterOrEqual(t, result.ExpectedDelay, 0.0)
	assert.LessOrEqual(t, len(result.Attributions), explain.MaxAttributions)

	status := p.Status()
	assert.True(t, status.ModelLoaded)
	assert.True(t, status.ModelFitted)
	assert.True(t, status.EncodersLoaded)
	assert.True(t, status.ExplainerAvailable)
	require.NotNil(t, status.Metrics)
	assert.Equal(t, 20.0, status.Metrics.RMSE)
}

func TestReloadRejectsForeignFeatures(t *testing.T) {
	dir := t.TempDir()
	writeArtifacts(t, artifact.NewStore(dir), []string{"a", "b", "c"})
	p := newTestPredictor(dir)

	st, err := p.Reload()
	assert.ErrorIs(t, err, gbm.ErrFeatureMismatch)
	assert.Equal(t, ModeHeuristic, st.Mode())
	assert.True(t, st.Encoders != nil)
	assert.False(t, p.Predict(request()).ModelUsed)
}

func TestFailedReloadKeepsWorkingModel(t *testing.T) {
	dir := t.TempDir()
	store := artifact.NewStore(dir)
	writeArtifacts(t, store, features.ColumnNames())
	p := newTestPredictor(dir)

	before, err := p.Reload()
	require.NoError(t, err)
	require.NoError(t, os.Remove(store.Path(artifact.ModelFile)))

	_, err = p.Reload()
	require.Error(t, err)
	assert.Same(t, before, p.State())
	assert.True(t, p.Predict(request()).ModelUsed)
}

func TestSwapInstallsState(t *testing.T) {
	p := newTestPredictor(t.TempDir())
	require.False(t, p.Predict(request()).ModelUsed)

	model := fitModel(t, features.ColumnNames())
	tree, err := explain.NewTree(model)
	require.NoError(t, err)
	st := &State{Model: model, Explainer: tree, LoadedAt: time.Now()}

	p.Swap(st)
	assert.Same(t, st, p.State())
	assert.True(t, p.Predict(request()).ModelUsed)

	p.Swap(nil)
	assert.Same(t, st, p.State())
}

type fakeTrainer struct {
	store   *artifact.Store
	t       *testing.T
	release chan struct{}
	calls   atomic.Int32
	err     error
}

func (f *fakeTrainer) Run(context.Context) (*training.Result, error) {
	f.calls.Add(1)
	if f.release != nil {
		<-f.release
	}
	if f.err != nil {
		return nil, f.err
	}
	writeArtifacts(f.t, f.store, features.ColumnNames())
	return &training.Result{Run: &models.TrainingRun{ID: "run-1"}}, nil
}

func TestRetrainReloadsState(t *testing.T) {
	dir := t.TempDir()
	p := newTestPredictor(dir)
	r := NewRetrainer(&fakeTrainer{store: artifact.NewStore(dir), t: t}, p, nil, nil)

	result, err := r.Retrain(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "run-1", result.Run.ID)
	assert.Equal(t, ModeModel, p.State().Mode())
}

func TestRetrainFailureKeepsState(t *testing.T) {
	p := newTestPredictor(t.TempDir())
	before := p.State()
	boom := errors.New("boom")
	r := NewRetrainer(&fakeTrainer{err: boom}, p, nil, nil)

	_, err := r.Retrain(context.Background())
	assert.ErrorIs(t, err, boom)
	assert.Same(t, before, p.State())
	assert.False(t, r.Running())
}

func TestOnlyOneRetrainAtATime(t *testing.T) {
	dir := t.TempDir()
	trainer := &fakeTrainer{store: artifact.NewStore(dir), t: t, release: make(chan struct{})}
	r := NewRetrainer(trainer, newTestPredictor(dir), nil, nil)

	require.NoError(t, r.Start(context.Background()))
	require.Eventually(t, func() bool { return trainer.calls.Load() == 1 }, time.Second, 5*time.Millisecond)

	assert.ErrorIs(t, r.Start(context.Background()), ErrRetrainRunning)
	_, err := r.Retrain(context.Background())
	assert.ErrorIs(t, err, ErrRetrainRunning)

	close(trainer.release)
	require.Eventually(t, func() bool { return !r.Running() }, 5*time.Second, 5*time.Millisecond)
	assert.Equal(t, int32(1), trainer.calls.Load())
}

func TestSchedulerSpec(t *testing.T) {
	r := NewRetrainer(&fakeTrainer{}, newTestPredictor(t.TempDir()), nil, nil)

	_, err := NewScheduler("not a schedule", r, nil)
	assert.Error(t, err)

	s, err := NewScheduler("@every 1h", r, nil)
	require.NoError(t, err)
	s.Start()
	s.Stop()
}

func TestWatcherReloadsOnChange(t *testing.T) {
	dir := t.TempDir()
	var reloads atomic.Int32
	w := NewWatcher(dir, func() error {
		reloads.Add(1)
		return nil
	}, 50*time.Millisecond, nil)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- w.Run(ctx) }()
	time.Sleep(100 * time.Millisecond)

	require.NoError(t, os.WriteFile(dir+"/unrelated.txt", []byte("x"), 0o644))
	require.NoError(t, artifact.NewStore(dir).SaveMetrics(&models.EvaluationMetrics{RMSE: 1}))

	require.Eventually(t, func() bool { return reloads.Load() == 1 }, 2*time.Second, 10*time.Millisecond)
	cancel()
	assert.NoError(t, <-done)
	assert.Equal(t, int32(1), reloads.Load())
}
