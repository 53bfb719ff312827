package parallel

import (
	"context"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Charestlab/MVPA-Light/pkg/errors"
)

func TestParallelizeCoversAllItems(t *testing.T) {
	const n = 1000
	hits := make([]int32, n)

	Parallelize(n, func(start, end int) {
		for i := start; i < end; i++ {
			atomic.AddInt32(&hits[i], 1)
		}
	})

	for i, h := range hits {
		require.EqualValues(t, 1, h, "item %d visited %d times", i, h)
	}
}

func TestParallelizeZeroItems(t *testing.T) {
	called := false
	Parallelize(0, func(start, end int) { called = true })
	assert.False(t, called)
}

func TestForEachWritesDisjointSlots(t *testing.T) {
	const n = 64
	out := make([]int, n)

	err := ForEach(context.Background(), n, func(i int) error {
		out[i] = i * i
		return nil
	})
	require.NoError(t, err)

	for i := range out {
		assert.Equal(t, i*i, out[i])
	}
}

func TestForEachFirstErrorWins(t *testing.T) {
	boom := errors.New("fit failed")

	err := ForEach(context.Background(), 100, func(i int) error {
		if i == 3 {
			return boom
		}
		return nil
	})
	require.Error(t, err)
	assert.True(t, errors.Is(err, boom))
}

func TestForEachCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	var visited atomic.Int32
	err := ForEach(ctx, 1000, func(i int) error {
		visited.Add(1)
		return nil
	})
	require.Error(t, err)
	assert.True(t, errors.Is(err, context.Canceled))
	// Each worker stops at its next item boundary, so only a bounded
	// number of items can have run.
	assert.Less(t, visited.Load(), int32(1000))
}
