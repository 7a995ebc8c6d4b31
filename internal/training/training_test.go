package training

import (
	"context"
	"errors"
	"fmt"
	"math"
	"math/rand/v2"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/jengzang/flight-delay-backend-go/internal/artifact"
	"github.com/jengzang/flight-delay-backend-go/internal/dataset"
	"github.com/jengzang/flight-delay-backend-go/internal/features"
	"github.com/jengzang/flight-delay-backend-go/internal/gbm"
	"github.com/jengzang/flight-delay-backend-go/internal/models"
)

type fakeSource struct {
	records []models.FlightRecord
	err     error
}

func (s *fakeSource) LoadDelayed(context.Context) ([]models.FlightRecord, error) {
	return s.records, s.err
}

type fakeRuns struct {
	created []models.TrainingRun
	updated []models.TrainingRun
}

func (r *fakeRuns) Create(_ context.Context, run *models.TrainingRun) error {
	r.created = append(r.created, *run)
	return nil
}

func (r *fakeRuns) Update(_ context.Context, run *models.TrainingRun) error {
	r.updated = append(r.updated, *run)
	return nil
}

func ptr(v float64) *float64 { return &v }

func syntheticFlights(n int) []models.FlightRecord {
	rng := rand.New(rand.NewPCG(3, 4))
	airlines := []string{"AA", "DL", "UA", "NK"}
	airports := []string{"ATL", "ORD", "DFW", "BOS", "SEA"}

	records := make([]models.FlightRecord, n)
	for i := range records {
		month := i*12/n + 1
		dep := 5 + rng.IntN(17)
		arr := (dep + 1 + rng.IntN(5)) % 24
		airline := airlines[rng.IntN(len(airlines))]
		delay := 20 + float64(dep) + rng.Float64()*10
		if airline == "NK" {
			delay += 60
		}
		records[i] = models.FlightRecord{
			Year:            2015,
			Month:           month,
			DayofMonth:      1 + rng.IntN(28),
			DayOfWeek:       1 + rng.IntN(7),
			Airline:         airline,
			Origin:          airports[rng.IntN(len(airports))],
			Dest:            airports[rng.IntN(len(airports))],
			Distance:        ptr(200 + rng.Float64()*2000),
			CRSDepTime:      fmt.Sprintf("%d%02d", dep, rng.IntN(60)),
			CRSArrTime:      fmt.Sprintf("%d%02d", arr, rng.IntN(60)),
			CRSElapsedTime:  ptr(60 + rng.Float64()*300),
			ArrDel15:        1,
			ArrDelayMinutes: ptr(delay),
		}
	}

	records[3].ArrDelayMinutes = nil
	records[7].ArrDelayMinutes = nil
	records[10].Distance = nil
	records[11].CRSDepTime = ""
	return records
}

func testParams() gbm.Params {
	p := gbm.DefaultParams()
	p.NumTrees = 30
	p.MaxDepth = 4
	p.LogEvery = 0
	p.Workers = 2
	return p
}

func TestEvaluate(t *testing.T) {
	m := Evaluate([]float64{10, 20, 30}, []float64{10, 20, 30})
	assert.Equal(t, 0.0, m.RMSE)
	assert.Equal(t, 1.0, m.R2)
	assert.Equal(t, 3, m.TestRows)
	assert.Equal(t, 20.0, m.MeanActual)
	assert.Equal(t, 10.0, m.MinPredicted)
	assert.Equal(t, 30.0, m.MaxActual)
}

func TestLinearBaseline(t *testing.T) {
	rng := rand.New(rand.NewPCG(1, 2))
	var x [][]float64
	var y []float64
	for i := 0; i < 200; i++ {
		a, b := rng.Float64()*10, rng.Float64()*10
		x = append(x, []float64{a, b})
		y = append(y, 2*a-b+5)
	}
	part, err := dataset.Split(x, y, 0.25)
	require.NoError(t, err)

	metrics, err := LinearBaseline(part, []string{"a", "b"})
	require.NoError(t, err)
	assert.InDelta(t, 0, metrics.RMSE, 1e-6)
	assert.InDelta(t, 0, metrics.MAE, 1e-6)
}

func TestLinearBaselineTooFewRows(t *testing.T) {
	part := dataset.Partition{
		TrainX: [][]float64{{1, 2}},
		TrainY: []float64{1},
		TestX:  [][]float64{{1, 2}},
		TestY:  []float64{1},
	}
	_, err := LinearBaseline(part, []string{"a", "b"})
	assert.ErrorIs(t, err, ErrBaselineData)
}

func TestPipelineRun(t *testing.T) {
	store := artifact.NewStore(t.TempDir())
	runs := &fakeRuns{}
	records := syntheticFlights(300)

	p := NewPipeline(&fakeSource{records: records}, store,
		WithRunStore(runs),
		WithParams(testParams()),
		WithReport(true),
	)
	result, err := p.Run(context.Background())
	require.NoError(t, err)

	run := result.Run
	assert.Equal(t, models.RunStatusCompleted, run.Status)
	assert.Equal(t, 300, run.RowsLoaded)
	assert.Equal(t, 2, run.RowsDropped)
	assert.Equal(t, 298, run.TrainRows+run.TestRows)
	assert.Equal(t, int(math.Floor(298*0.8)), run.TrainRows)
	require.NotNil(t, run.CompletedAt)

	require.Len(t, runs.created, 1)
	require.Len(t, runs.updated, 1)
	assert.Equal(t, models.RunStatusRunning, runs.created[0].Status)
	assert.Equal(t, models.RunStatusCompleted, runs.updated[0].Status)
	assert.Equal(t, run.ID, runs.updated[0].ID)

	assert.Equal(t, run.ID, result.Metrics.RunID)
	assert.Equal(t, run.TestRows, result.Metrics.TestRows)
	assert.Greater(t, result.Metrics.R2, 0.0)
	assert.Len(t, result.Importance, features.NumFeatures)
	assert.Equal(t, features.ColumnNames(), result.Model.FeatureNames())

	model, err := store.LoadModel()
	require.NoError(t, err)
	assert.True(t, model.Fitted())
	enc, err := store.LoadEncoders()
	require.NoError(t, err)
	assert.True(t, enc.Airline.Known("NK"))
	metrics, err := store.LoadMetrics()
	require.NoError(t, err)
	assert.Equal(t, result.Metrics.RMSE, metrics.RMSE)

	f, err := excelize.OpenFile(store.Path(artifact.ReportFile))
	require.NoError(t, err)
	defer f.Close()
	assert.Equal(t, []string{SheetMetrics, SheetImportance, SheetImputation, SheetCorrelation}, f.GetSheetList())
	rows, err := f.GetRows(SheetImportance)
	require.NoError(t, err)
	assert.Len(t, rows, features.NumFeatures+1)
}

func TestPipelineWithoutSave(t *testing.T) {
	dir := t.TempDir()
	p := NewPipeline(&fakeSource{records: syntheticFlights(120)}, artifact.NewStore(dir),
		WithParams(testParams()),
		WithSave(false),
		WithBaseline(false),
	)
	result, err := p.Run(context.Background())
	require.NoError(t, err)
	assert.Nil(t, result.Metrics.Baseline)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestPipelineFailures(t *testing.T) {
	boom := errors.New("boom")
	noDepTimes := syntheticFlights(50)
	for i := range noDepTimes {
		noDepTimes[i].CRSDepTime = ""
	}

	tests := []struct {
		name   string
		source *fakeSource
		want   error
	}{
		{"source error", &fakeSource{err: boom}, boom},
		{"no rows", &fakeSource{}, ErrNoData},
		{"no targets", &fakeSource{records: []models.FlightRecord{{Year: 2015, Month: 1, Airline: "AA"}}}, ErrNoData},
		{"no departure times", &fakeSource{records: noDepTimes}, dataset.ErrNoObservedValues},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			runs := &fakeRuns{}
			p := NewPipeline(tt.source, artifact.NewStore(t.TempDir()), WithRunStore(runs), WithParams(testParams()))
			_, err := p.Run(context.Background())
			require.ErrorIs(t, err, tt.want)

			require.Len(t, runs.updated, 1)
			assert.Equal(t, models.RunStatusFailed, runs.updated[0].Status)
			assert.NotEmpty(t, runs.updated[0].ErrorMessage)
		})
	}
}

func TestPipelineHonoursCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	p := NewPipeline(&fakeSource{records: syntheticFlights(120)}, artifact.NewStore(t.TempDir()), WithParams(testParams()))
	_, err := p.Run(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestTargetCorrelations(t *testing.T) {
	x := [][]float64{{1, 5}, {2, 5}, {3, 5}, {4, 5}}
	y := []float64{10, 20, 30, 40}

	got := TargetCorrelations(x, y, []string{"a", "b"})
	require.Len(t, got, 2)
	assert.Equal(t, "a", got[0].Feature)
	assert.InDelta(t, 1, got[0].Pearson, 1e-12)
	assert.InDelta(t, 1, got[0].Spearman, 1e-12)
	assert.Equal(t, 0.0, got[1].Pearson)
}
