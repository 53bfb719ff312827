package preprocessing

import (
	"math"
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Charestlab/MVPA-Light/pkg/errors"
	"github.com/Charestlab/MVPA-Light/tensor"
)

func randomTensor(samples, features, times int, seed uint64) *tensor.Tensor {
	rng := rand.New(rand.NewPCG(seed, seed))
	t := tensor.New(samples, features, times)
	for i := 0; i < samples; i++ {
		for j := 0; j < features; j++ {
			for k := 0; k < times; k++ {
				t.Set(i, j, k, 3+2*rng.NormFloat64())
			}
		}
	}
	return t
}

func TestNormaliseZScore(t *testing.T) {
	tn := randomTensor(50, 3, 4, 17)
	out, err := Normalise(NormZScore, tn)
	require.NoError(t, err)

	samples, features, times := out.Dims()
	for j := 0; j < features; j++ {
		for k := 0; k < times; k++ {
			mean, ss := 0.0, 0.0
			for i := 0; i < samples; i++ {
				mean += out.At(i, j, k)
			}
			mean /= float64(samples)
			for i := 0; i < samples; i++ {
				d := out.At(i, j, k) - mean
				ss += d * d
			}
			std := math.Sqrt(ss / float64(samples))
			assert.InDelta(t, 0, mean, 1e-10, "feature %d time %d", j, k)
			assert.InDelta(t, 1, std, 1e-10, "feature %d time %d", j, k)
		}
	}
	// Input untouched.
	assert.NotEqual(t, tn.At(0, 0, 0), out.At(0, 0, 0))
}

func TestNormaliseDemean(t *testing.T) {
	tn := randomTensor(30, 2, 3, 4)
	out, err := Normalise(NormDemean, tn)
	require.NoError(t, err)

	samples, _, _ := out.Dims()
	mean := 0.0
	for i := 0; i < samples; i++ {
		mean += out.At(i, 1, 2)
	}
	assert.InDelta(t, 0, mean/float64(samples), 1e-10)

	// Demeaning must not rescale.
	spread := out.At(0, 1, 2) - out.At(1, 1, 2)
	orig := tn.At(0, 1, 2) - tn.At(1, 1, 2)
	assert.InDelta(t, orig, spread, 1e-12)
}

func TestNormaliseConstantFeature(t *testing.T) {
	tn := tensor.New(10, 1, 1)
	for i := 0; i < 10; i++ {
		tn.Set(i, 0, 0, 7)
	}
	out, err := Normalise(NormZScore, tn)
	require.NoError(t, err)
	// Constant columns are centered but not scaled.
	assert.Equal(t, 0.0, out.At(3, 0, 0))
}

func TestNormaliseNoneAndUnknown(t *testing.T) {
	tn := randomTensor(5, 2, 2, 1)
	out, err := Normalise(NormNone, tn)
	require.NoError(t, err)
	assert.Same(t, tn, out)

	_, err = Normalise(NormMode("minmax"), tn)
	require.Error(t, err)
	var cfgErr *errors.ConfigurationError
	assert.True(t, errors.As(err, &cfgErr))
}

func makeImbalanced(n1, n2 int) (*tensor.Tensor, []int) {
	tn := tensor.New(n1+n2, 2, 3)
	labels := make([]int, n1+n2)
	for i := range labels {
		if i < n1 {
			labels[i] = 1
		} else {
			labels[i] = 2
		}
		for j := 0; j < 2; j++ {
			for k := 0; k < 3; k++ {
				tn.Set(i, j, k, float64(i))
			}
		}
	}
	return tn, labels
}

func counts(labels []int) map[int]int {
	c := map[int]int{}
	for _, l := range labels {
		c[l]++
	}
	return c
}

func TestRebalanceOversample(t *testing.T) {
	tn, labels := makeImbalanced(8, 20)
	rng := rand.New(rand.NewPCG(1, 1))

	outX, outLabels, err := Rebalance(Balance{Policy: BalanceOversample, Replace: true}, tn, labels, rng)
	require.NoError(t, err)

	c := counts(outLabels)
	assert.Equal(t, 20, c[1])
	assert.Equal(t, 20, c[2])
	s, f, tp := outX.Dims()
	assert.Equal(t, []int{40, 2, 3}, []int{s, f, tp})
}

func TestRebalanceOversampleWithoutReplacement(t *testing.T) {
	// 5 → 17 means three whole copies plus two random draws.
	tn, labels := makeImbalanced(5, 17)
	rng := rand.New(rand.NewPCG(2, 2))

	_, outLabels, err := Rebalance(Balance{Policy: BalanceOversample}, tn, labels, rng)
	require.NoError(t, err)
	c := counts(outLabels)
	assert.Equal(t, 17, c[1])
	assert.Equal(t, 17, c[2])
}

func TestRebalanceUndersample(t *testing.T) {
	tn, labels := makeImbalanced(8, 20)
	rng := rand.New(rand.NewPCG(3, 3))

	outX, outLabels, err := Rebalance(Balance{Policy: BalanceUndersample}, tn, labels, rng)
	require.NoError(t, err)

	c := counts(outLabels)
	assert.Equal(t, 8, c[1])
	assert.Equal(t, 8, c[2])
	s, _, _ := outX.Dims()
	assert.Equal(t, 16, s)
}

func TestRebalanceTarget(t *testing.T) {
	tn, labels := makeImbalanced(8, 20)

	t.Run("undersample to target", func(t *testing.T) {
		rng := rand.New(rand.NewPCG(4, 4))
		_, outLabels, err := Rebalance(Balance{Policy: BalanceTarget, Target: 6}, tn, labels, rng)
		require.NoError(t, err)
		c := counts(outLabels)
		assert.Equal(t, 6, c[1])
		assert.Equal(t, 6, c[2])
	})

	t.Run("oversample to target", func(t *testing.T) {
		rng := rand.New(rand.NewPCG(5, 5))
		_, outLabels, err := Rebalance(Balance{Policy: BalanceTarget, Target: 25, Replace: true}, tn, labels, rng)
		require.NoError(t, err)
		c := counts(outLabels)
		assert.Equal(t, 25, c[1])
		assert.Equal(t, 25, c[2])
	})

	t.Run("target between class counts", func(t *testing.T) {
		rng := rand.New(rand.NewPCG(6, 6))
		_, _, err := Rebalance(Balance{Policy: BalanceTarget, Target: 15}, tn, labels, rng)
		require.Error(t, err)
		var cfgErr *errors.ConfigurationError
		assert.True(t, errors.As(err, &cfgErr))
	})
}

func TestRebalanceDeterministic(t *testing.T) {
	tn, labels := makeImbalanced(8, 20)

	_, labelsA, err := Rebalance(Balance{Policy: BalanceUndersample}, tn, labels, rand.New(rand.NewPCG(7, 7)))
	require.NoError(t, err)
	_, labelsB, err := Rebalance(Balance{Policy: BalanceUndersample}, tn, labels, rand.New(rand.NewPCG(7, 7)))
	require.NoError(t, err)
	assert.Equal(t, labelsA, labelsB)
}

func TestRebalanceNone(t *testing.T) {
	tn, labels := makeImbalanced(3, 5)
	outX, outLabels, err := Rebalance(Balance{Policy: BalanceNone}, tn, labels, rand.New(rand.NewPCG(8, 8)))
	require.NoError(t, err)
	assert.Same(t, tn, outX)
	assert.Equal(t, labels, outLabels)
}
