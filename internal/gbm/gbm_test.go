package gbm

import (
	"bytes"
	"context"
	"math"
	"math/rand/v2"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testNames = []string{"a", "b", "c"}

// synthetic returns rows where y depends on a (step) and b (linear) but not c
func synthetic(n int, seed uint64) ([][]float64, []float64) {
	rng := rand.New(rand.NewPCG(seed, seed+1))
	x := make([][]float64, n)
	y := make([]float64, n)
	for i := range x {
		a := rng.Float64() * 10
		b := rng.Float64() * 5
		c := rng.Float64()
		x[i] = []float64{a, b, c}
		y[i] = 3*b + 0.1*c
		if a > 5 {
			y[i] += 40
		}
	}
	return x, y
}

func smallParams() Params {
	p := DefaultParams()
	p.NumTrees = 60
	p.MaxDepth = 4
	p.LogEvery = 0
	p.Workers = 2
	return p
}

func fitted(t *testing.T) (*Model, [][]float64, []float64) {
	t.Helper()
	x, y := synthetic(400, 7)
	m := New(smallParams())
	require.NoError(t, m.Fit(context.Background(), x, y, testNames, nil))
	return m, x, y
}

func TestBuildCuts(t *testing.T) {
	cuts := buildCuts([]float64{3, 1, 2, math.NaN(), 2}, 256)
	assert.Equal(t, []float64{1.5, 2.5}, cuts)

	assert.Equal(t, uint8(0), binOf(cuts, 1))
	assert.Equal(t, uint8(1), binOf(cuts, 1.5))
	assert.Equal(t, uint8(2), binOf(cuts, 3))
	assert.Equal(t, uint8(missingBin), binOf(cuts, math.NaN()))

	assert.Empty(t, buildCuts([]float64{4, 4, 4}, 256))
	assert.Nil(t, buildCuts([]float64{math.NaN()}, 256))
}

func TestBuildCutsQuantiles(t *testing.T) {
	column := make([]float64, 1000)
	for i := range column {
		column[i] = float64(i)
	}

	cuts := buildCuts(column, 10)
	require.NotEmpty(t, cuts)
	assert.LessOrEqual(t, len(cuts), 9)
	for i := 1; i < len(cuts); i++ {
		assert.Less(t, cuts[i-1], cuts[i])
	}
}

func TestFitReducesError(t *testing.T) {
	m, x, y := fitted(t)

	assert.True(t, m.Fitted())
	assert.Equal(t, 60, m.NumTrees())
	assert.Equal(t, 59, m.BestIteration())
	assert.Equal(t, testNames, m.FeatureNames())

	pred, err := m.Predict(x)
	require.NoError(t, err)

	var sse, sst float64
	mean := m.BaseScore()
	for i := range y {
		sse += (y[i] - pred[i]) * (y[i] - pred[i])
		sst += (y[i] - mean) * (y[i] - mean)
	}
	assert.Less(t, sse/sst, 0.05)
}

func TestFitIsDeterministic(t *testing.T) {
	x, y := synthetic(200, 3)

	a := New(smallParams())
	b := New(smallParams())
	require.NoError(t, a.Fit(context.Background(), x, y, testNames, nil))
	require.NoError(t, b.Fit(context.Background(), x, y, testNames, nil))

	pa, err := a.Predict(x)
	require.NoError(t, err)
	pb, err := b.Predict(x)
	require.NoError(t, err)
	assert.Equal(t, pa, pb)
}

func TestUnfittedModel(t *testing.T) {
	m := New(DefaultParams())

	_, err := m.Predict([][]float64{{1, 2, 3}})
	assert.ErrorIs(t, err, ErrNotFitted)
	_, err = m.FeatureImportance()
	assert.ErrorIs(t, err, ErrNotFitted)
	_, err = m.Contributions([]float64{1, 2, 3})
	assert.ErrorIs(t, err, ErrNotFitted)
	assert.ErrorIs(t, m.Save(&bytes.Buffer{}), ErrNotFitted)
}

func TestFeatureMismatch(t *testing.T) {
	m, _, _ := fitted(t)

	_, err := m.Predict([][]float64{{1, 2}})
	assert.ErrorIs(t, err, ErrFeatureMismatch)
	_, err = m.PredictOne([]float64{1, 2, 3, 4})
	assert.ErrorIs(t, err, ErrFeatureMismatch)
	_, err = m.Contributions([]float64{1})
	assert.ErrorIs(t, err, ErrFeatureMismatch)
}

func TestFitRejectsBadInput(t *testing.T) {
	m := New(smallParams())
	ctx := context.Background()

	assert.ErrorIs(t, m.Fit(ctx, nil, nil, testNames, nil), ErrInvalidInput)
	assert.ErrorIs(t, m.Fit(ctx, [][]float64{{1, 2, 3}}, []float64{1, 2}, testNames, nil), ErrInvalidInput)
	assert.ErrorIs(t, m.Fit(ctx, [][]float64{{1, 2, 3}}, []float64{math.NaN()}, testNames, nil), ErrInvalidInput)
	assert.ErrorIs(t, m.Fit(ctx, [][]float64{{1, 2}}, []float64{1}, testNames, nil), ErrFeatureMismatch)

	bad := smallParams()
	bad.Subsample = 0
	assert.ErrorIs(t, New(bad).Fit(ctx, [][]float64{{1, 2, 3}}, []float64{1}, testNames, nil), ErrInvalidParams)
	assert.False(t, m.Fitted())
}

func TestFitHonoursContext(t *testing.T) {
	x, y := synthetic(50, 1)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := New(smallParams()).Fit(ctx, x, y, testNames, nil)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestEarlyStoppingTruncates(t *testing.T) {
	n := 100
	x := make([][]float64, n)
	y := make([]float64, n)
	evalY := make([]float64, n)
	for i := range x {
		x[i] = []float64{float64(i), 0, 0}
		y[i] = float64(i)
		evalY[i] = 49.5
	}

	p := DefaultParams()
	p.Subsample = 1
	p.ColSample = 1
	p.LogEvery = 0
	m := New(p)
	require.NoError(t, m.Fit(context.Background(), x, y, testNames, &EvalSet{X: x, Y: evalY}))

	assert.Less(t, m.NumTrees(), p.NumTrees)
	assert.Equal(t, m.BestIteration()+1, m.NumTrees())
}

func TestFeatureImportance(t *testing.T) {
	m, _, _ := fitted(t)

	imp, err := m.FeatureImportance()
	require.NoError(t, err)
	require.Len(t, imp, 3)

	assert.Equal(t, "a", imp[0].Feature)
	var sum float64
	for i, it := range imp {
		assert.GreaterOrEqual(t, it.Score, 0.0)
		if i > 0 {
			assert.LessOrEqual(t, it.Score, imp[i-1].Score)
		}
		sum += it.Score
	}
	assert.InDelta(t, 1.0, sum, 1e-9)
}

func TestContributionsSumToPrediction(t *testing.T) {
	m, x, _ := fitted(t)

	for _, row := range x[:25] {
		pred, err := m.PredictOne(row)
		require.NoError(t, err)

		c, err := m.Contributions(row)
		require.NoError(t, err)
		require.Len(t, c.Values, 3)

		total := c.Bias
		for _, v := range c.Values {
			total += v
		}
		assert.InDelta(t, pred, total, 1e-9)
	}
}

func TestMissingValuesGoRight(t *testing.T) {
	x, y := synthetic(300, 11)
	for i := 0; i < len(x); i += 7 {
		x[i][0] = math.NaN()
	}

	m := New(smallParams())
	require.NoError(t, m.Fit(context.Background(), x, y, testNames, nil))

	pred, err := m.PredictOne([]float64{math.NaN(), 1, 0.5})
	require.NoError(t, err)
	assert.False(t, math.IsNaN(pred))

	c, err := m.Contributions([]float64{math.NaN(), 1, 0.5})
	require.NoError(t, err)
	assert.InDelta(t, pred, c.Bias+c.Values[0]+c.Values[1]+c.Values[2], 1e-9)
}

func TestSaveLoadRoundTrip(t *testing.T) {
	m, x, _ := fitted(t)

	var buf bytes.Buffer
	require.NoError(t, m.Save(&buf))

	loaded, err := Load(&buf)
	require.NoError(t, err)
	assert.True(t, loaded.Fitted())
	assert.Equal(t, m.FeatureNames(), loaded.FeatureNames())
	assert.Equal(t, m.BestIteration(), loaded.BestIteration())

	want, err := m.Predict(x)
	require.NoError(t, err)
	got, err := loaded.Predict(x)
	require.NoError(t, err)
	for i := range want {
		assert.Equal(t, math.Float64bits(want[i]), math.Float64bits(got[i]))
	}
}

func TestLoadRejectsBadDocuments(t *testing.T) {
	tests := []struct {
		name string
		doc  string
	}{
		{"version", `{"version":2,"fitted":true,"feature_names":["a"],"trees":[]}`},
		{"unfitted", `{"version":1,"fitted":false,"feature_names":["a"],"trees":[]}`},
		{"empty tree", `{"version":1,"fitted":true,"feature_names":["a"],"trees":[{"nodes":[]}]}`},
		{"bad child", `{"version":1,"fitted":true,"feature_names":["a"],"trees":[{"nodes":[{"feature":0,"left":5,"right":6,"value":0,"cover":1}]}]}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(strings.NewReader(tt.doc))
			assert.ErrorIs(t, err, ErrFormat)
		})
	}

	_, err := Load(strings.NewReader("{"))
	assert.Error(t, err)
}
