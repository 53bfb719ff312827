package timegen

import (
	"context"
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Charestlab/MVPA-Light/crossval"
	"github.com/Charestlab/MVPA-Light/metrics"
	"github.com/Charestlab/MVPA-Light/pkg/errors"
	"github.com/Charestlab/MVPA-Light/preprocessing"
	"github.com/Charestlab/MVPA-Light/tensor"
)

// makeTimeData builds a two-class dataset [2n × features × times] whose
// class means are separated only at the given signal time points. At
// those times the classes should be decodable; elsewhere performance
// should hover near chance.
func makeTimeData(n, features, times int, signal []int, sep float64, seed uint64) (*tensor.Tensor, []int) {
	rng := rand.New(rand.NewPCG(seed, seed+1))
	isSignal := make(map[int]bool, len(signal))
	for _, k := range signal {
		isSignal[k] = true
	}

	t := tensor.New(2*n, features, times)
	labels := make([]int, 2*n)
	for i := 0; i < 2*n; i++ {
		class := 1
		if i >= n {
			class = 2
		}
		labels[i] = class
		for j := 0; j < features; j++ {
			for k := 0; k < times; k++ {
				v := rng.NormFloat64()
				if isSignal[k] {
					if class == 1 {
						v += sep
					} else {
						v -= sep
					}
				}
				t.Set(i, j, k, v)
			}
		}
	}
	return t, labels
}

func TestClassifyTimeByTimeShape(t *testing.T) {
	X, labels := makeTimeData(20, 4, 5, []int{2}, 2.0, 7)

	res, err := ClassifyTimeByTime(context.Background(), Config{Seed: 1}, X, labels)
	require.NoError(t, err)

	assert.Equal(t, CrossValidated, res.Mode)
	assert.Equal(t, 5, res.NTime1)
	assert.Equal(t, 5, res.NTime2)
	r, c := res.Perf.Dims()
	assert.Equal(t, 5, r)
	assert.Equal(t, 5, c)
	r, c = res.PerfStd.Dims()
	assert.Equal(t, 5, r)
	assert.Equal(t, 5, c)

	// Defaults: 5 repeats of 5-fold CV.
	assert.Equal(t, 5, res.Raw.Repeats())
	assert.Equal(t, 5, res.Raw.Folds())

	for i := 0; i < 5; i++ {
		for j := 0; j < 5; j++ {
			v := res.Perf.At(i, j)
			assert.GreaterOrEqual(t, v, 0.0)
			assert.LessOrEqual(t, v, 1.0)
		}
	}
}

func TestClassifyTimeByTimeDiagonalAdvantage(t *testing.T) {
	// Signal at time point 2 only: the classifier trained there must
	// decode well at that time and near chance at the signal-free edges.
	X, labels := makeTimeData(20, 4, 5, []int{2}, 2.5, 11)

	res, err := ClassifyTimeByTime(context.Background(), Config{
		Classifier: "lda",
		Metric:     metrics.MetricAccuracy,
		Seed:       3,
	}, X, labels)
	require.NoError(t, err)

	assert.Greater(t, res.Perf.At(2, 2), 0.85)
	assert.Less(t, res.Perf.At(0, 0), 0.75)
	assert.Less(t, res.Perf.At(2, 4), 0.75)
	assert.Less(t, res.Perf.At(4, 2), 0.75)
}

func TestClassifyTimeByTimeTimeSubsets(t *testing.T) {
	X, labels := makeTimeData(15, 3, 6, []int{1, 2}, 1.5, 5)

	res, err := ClassifyTimeByTime(context.Background(), Config{
		Time1: []int{1, 3, 5},
		Time2: []int{0, 2},
		Seed:  2,
	}, X, labels)
	require.NoError(t, err)

	r, c := res.Perf.Dims()
	assert.Equal(t, 3, r)
	assert.Equal(t, 2, c)
}

func TestClassifyTimeByTimeTwoDatasets(t *testing.T) {
	// Train and test sets drawn from the same distribution; test tensor
	// may have its own number of time points.
	X, labels := makeTimeData(20, 4, 5, []int{1}, 2.0, 21)
	X2, labels2 := makeTimeData(12, 4, 7, []int{1}, 2.0, 22)

	res, err := ClassifyTimeByTimeTwoDatasets(context.Background(), Config{Seed: 4}, X, labels, X2, labels2)
	require.NoError(t, err)

	assert.Equal(t, TrainTestSplit, res.Mode)
	r, c := res.Perf.Dims()
	assert.Equal(t, 5, r)
	assert.Equal(t, 7, c)
	// No cross-validation in this mode, whatever the config said.
	assert.Equal(t, crossval.None, res.CV.Kind)
	assert.Equal(t, 1, res.Raw.Repeats())
	assert.Equal(t, 1, res.Raw.Folds())

	assert.Greater(t, res.Perf.At(1, 1), 0.8)
}

func TestClassifyTimeByTimeTwoDatasetsDeterministic(t *testing.T) {
	X, labels := makeTimeData(16, 3, 4, []int{0}, 1.5, 31)
	X2, labels2 := makeTimeData(10, 3, 4, []int{0}, 1.5, 32)

	cfg := Config{
		Seed:    9,
		Balance: preprocessing.Balance{Policy: preprocessing.BalanceUndersample},
	}
	a, err := ClassifyTimeByTimeTwoDatasets(context.Background(), cfg, X, labels, X2, labels2)
	require.NoError(t, err)
	b, err := ClassifyTimeByTimeTwoDatasets(context.Background(), cfg, X, labels, X2, labels2)
	require.NoError(t, err)

	assert.True(t, a.Perf.RawMatrix().Rows == b.Perf.RawMatrix().Rows)
	for i := 0; i < a.NTime1; i++ {
		for j := 0; j < a.NTime2; j++ {
			assert.Equal(t, a.Perf.At(i, j), b.Perf.At(i, j))
		}
	}
}

func TestClassifyTimeByTimeNoCV(t *testing.T) {
	X, labels := makeTimeData(10, 3, 3, []int{0, 1, 2}, 1.0, 41)

	res, err := ClassifyTimeByTime(context.Background(), Config{
		CV:   crossval.Spec{Kind: crossval.None},
		Seed: 6,
	}, X, labels)
	require.NoError(t, err)

	assert.Equal(t, NoCrossValidation, res.Mode)
	assert.Equal(t, 1, res.Raw.Repeats())
	assert.Equal(t, 1, res.Raw.Folds())
	// Training data evaluated on itself: with signal everywhere the
	// diagonal should be clearly above chance.
	assert.Greater(t, res.Perf.At(0, 0), 0.6)
}

func TestClassifyTimeByTimeMetricNone(t *testing.T) {
	X, labels := makeTimeData(10, 3, 4, []int{1}, 1.5, 51)

	res, err := ClassifyTimeByTime(context.Background(), Config{
		Metric: metrics.MetricNone,
		CV:     crossval.Spec{Kind: crossval.KFold, K: 5, Repeat: 2},
		Seed:   8,
	}, X, labels)
	require.NoError(t, err)

	assert.Nil(t, res.Perf)
	assert.Nil(t, res.PerfStd)
	require.NotNil(t, res.Raw)

	// Raw shape: [repeats × folds × |time1|] cells of [foldTestSize × |time2|].
	require.Equal(t, 2, res.Raw.Repeats())
	require.Equal(t, 5, res.Raw.Folds())
	for r := range res.Raw.Cells {
		for f := range res.Raw.Cells[r] {
			require.Len(t, res.Raw.Cells[r][f], 4)
			for _, cell := range res.Raw.Cells[r][f] {
				require.NotNil(t, cell)
				rows, cols := cell.Dims()
				assert.Equal(t, len(res.Raw.TestLabels[r][f]), rows)
				assert.Equal(t, 4, cols)
			}
		}
	}
}

func TestResultRecompute(t *testing.T) {
	X, labels := makeTimeData(15, 3, 3, []int{1}, 2.0, 61)

	// Decision values support both auc and, via Recompute, nothing else
	// that needs labels.
	res, err := ClassifyTimeByTime(context.Background(), Config{
		Metric: metrics.MetricAUC,
		Seed:   5,
	}, X, labels)
	require.NoError(t, err)
	assert.Greater(t, res.Perf.At(1, 1), 0.8)

	perf, std, err := res.Recompute(metrics.MetricAUC)
	require.NoError(t, err)
	require.NotNil(t, std)
	for i := 0; i < res.NTime1; i++ {
		for j := 0; j < res.NTime2; j++ {
			assert.Equal(t, res.Perf.At(i, j), perf.At(i, j))
		}
	}

	// Accuracy needs predicted labels; this run stored decision values.
	_, _, err = res.Recompute(metrics.MetricAccuracy)
	require.Error(t, err)
}

func TestClassifyAcrossTime(t *testing.T) {
	X, labels := makeTimeData(20, 4, 5, []int{2}, 2.5, 71)

	res, err := ClassifyAcrossTime(context.Background(), Config{Seed: 12}, X, labels)
	require.NoError(t, err)

	r, c := res.Perf.Dims()
	assert.Equal(t, 5, r)
	assert.Equal(t, 1, c)
	assert.Greater(t, res.Perf.At(2, 0), 0.85)
	assert.Less(t, res.Perf.At(0, 0), 0.75)
}

func TestClassifyTimeByTimeBalancing(t *testing.T) {
	// Imbalanced dataset: 24 of class 1, 8 of class 2.
	rng := rand.New(rand.NewPCG(81, 82))
	X := tensor.New(32, 3, 2)
	labels := make([]int, 32)
	for i := 0; i < 32; i++ {
		class := 1
		if i >= 24 {
			class = 2
		}
		labels[i] = class
		for j := 0; j < 3; j++ {
			for k := 0; k < 2; k++ {
				v := rng.NormFloat64()
				if class == 1 {
					v += 1.5
				} else {
					v -= 1.5
				}
				X.Set(i, j, k, v)
			}
		}
	}

	for _, policy := range []preprocessing.BalancePolicy{
		preprocessing.BalanceUndersample,
		preprocessing.BalanceOversample,
	} {
		res, err := ClassifyTimeByTime(context.Background(), Config{
			Balance: preprocessing.Balance{Policy: policy},
			CV:      crossval.Spec{Kind: crossval.KFold, K: 4, Repeat: 2},
			Seed:    13,
		}, X, labels)
		require.NoError(t, err, "policy %s", policy)
		r, c := res.Perf.Dims()
		assert.Equal(t, 2, r)
		assert.Equal(t, 2, c)
		assert.Greater(t, res.Perf.At(0, 0), 0.8, "policy %s", policy)
	}
}

func TestClassifyTimeByTimeValidation(t *testing.T) {
	X, labels := makeTimeData(10, 3, 3, nil, 0, 91)
	ctx := context.Background()

	t.Run("label count mismatch", func(t *testing.T) {
		_, err := ClassifyTimeByTime(ctx, Config{}, X, labels[:5])
		require.Error(t, err)
		var shapeErr *errors.DataShapeError
		assert.True(t, errors.As(err, &shapeErr))
	})

	t.Run("non-positive label", func(t *testing.T) {
		bad := append([]int(nil), labels...)
		bad[0] = 0
		_, err := ClassifyTimeByTime(ctx, Config{}, X, bad)
		require.Error(t, err)
		var cfgErr *errors.ConfigurationError
		assert.True(t, errors.As(err, &cfgErr))
	})

	t.Run("single class", func(t *testing.T) {
		ones := make([]int, len(labels))
		for i := range ones {
			ones[i] = 1
		}
		_, err := ClassifyTimeByTime(ctx, Config{}, X, ones)
		require.Error(t, err)
	})

	t.Run("time index out of range", func(t *testing.T) {
		_, err := ClassifyTimeByTime(ctx, Config{Time1: []int{0, 3}}, X, labels)
		require.Error(t, err)
	})

	t.Run("unknown classifier", func(t *testing.T) {
		_, err := ClassifyTimeByTime(ctx, Config{Classifier: "svm"}, X, labels)
		require.Error(t, err)
		var cfgErr *errors.ConfigurationError
		assert.True(t, errors.As(err, &cfgErr))
	})

	t.Run("unknown output kind", func(t *testing.T) {
		_, err := ClassifyTimeByTime(ctx, Config{Output: "logits"}, X, labels)
		require.Error(t, err)
	})

	t.Run("metric needs matching output", func(t *testing.T) {
		_, err := ClassifyTimeByTime(ctx, Config{
			Metric: metrics.MetricAccuracy,
			Output: "dval",
		}, X, labels)
		require.Error(t, err)
	})

	t.Run("feature mismatch across datasets", func(t *testing.T) {
		X2, labels2 := makeTimeData(8, 4, 3, nil, 0, 92)
		_, err := ClassifyTimeByTimeTwoDatasets(ctx, Config{}, X, labels, X2, labels2)
		require.Error(t, err)
		var shapeErr *errors.DataShapeError
		assert.True(t, errors.As(err, &shapeErr))
	})
}

func TestClassifyTimeByTimeCancellation(t *testing.T) {
	X, labels := makeTimeData(20, 4, 6, []int{2}, 2.0, 101)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := ClassifyTimeByTime(ctx, Config{Seed: 14}, X, labels)
	require.Error(t, err)
	assert.True(t, errors.Is(err, context.Canceled))
}

func TestTrainingErrorCarriesPosition(t *testing.T) {
	// Constant features make the pooled covariance singular for lda.
	X := tensor.New(12, 3, 2)
	labels := make([]int, 12)
	for i := range labels {
		labels[i] = 1 + i%2
	}

	_, err := ClassifyTimeByTime(context.Background(), Config{
		Classifier: "lda",
		Normalise:  preprocessing.NormNone,
		CV:         crossval.Spec{Kind: crossval.KFold, K: 2, Repeat: 1},
		Seed:       15,
	}, X, labels)
	require.Error(t, err)

	var trainErr *errors.TrainingError
	require.True(t, errors.As(err, &trainErr))
	assert.Equal(t, "lda", trainErr.Classifier)
	assert.GreaterOrEqual(t, trainErr.Repeat, 0)
	assert.GreaterOrEqual(t, trainErr.Fold, 0)
	assert.GreaterOrEqual(t, trainErr.TimePoint, 0)
	assert.True(t, errors.Is(err, errors.ErrSingularMatrix))
}

func TestProbabilityOutput(t *testing.T) {
	X, labels := makeTimeData(15, 3, 3, []int{1}, 2.0, 111)

	res, err := ClassifyTimeByTime(context.Background(), Config{
		Metric: metrics.MetricNone,
		Output: "prob",
		CV:     crossval.Spec{Kind: crossval.KFold, K: 3, Repeat: 1},
		Seed:   16,
	}, X, labels)
	require.NoError(t, err)

	for r := range res.Raw.Cells {
		for f := range res.Raw.Cells[r] {
			for _, cell := range res.Raw.Cells[r][f] {
				rows, cols := cell.Dims()
				for i := 0; i < rows; i++ {
					for j := 0; j < cols; j++ {
						v := cell.At(i, j)
						assert.GreaterOrEqual(t, v, 0.0)
						assert.LessOrEqual(t, v, 1.0)
					}
				}
			}
		}
	}
}
