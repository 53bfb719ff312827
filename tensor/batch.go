package tensor

import (
	"gonum.org/v1/gonum/mat"

	"github.com/Charestlab/MVPA-Light/pkg/errors"
)

// FlattenTimeBatch builds the batched test matrix for one fold: the given
// sample rows at every test time point, flattened into a single
// [(len(rows)·len(times)) × features] matrix. This is what lets the
// engine call Predict once per training time point instead of once per
// (training, testing) time pair.
//
// Ordering contract, relied on by UnflattenValues: sample-major,
// time-minor. Output row r corresponds to sample rows[r/len(times)] at
// time times[r%len(times)].
func FlattenTimeBatch(t *Tensor, rows []int, times []int) (*mat.Dense, error) {
	if len(rows) == 0 || len(times) == 0 {
		return nil, errors.Wrap(errors.ErrEmptyData, "tensor.FlattenTimeBatch")
	}
	if err := t.ValidateTimeIndices("tensor.FlattenTimeBatch", times); err != nil {
		return nil, err
	}

	out := mat.NewDense(len(rows)*len(times), t.features, nil)
	stride := t.features * t.times
	for r, i := range rows {
		if i < 0 || i >= t.samples {
			return nil, errors.NewDataShapeError("tensor.FlattenTimeBatch", "sample index", t.samples-1, i)
		}
		base := i * stride
		for k, tp := range times {
			row := r*len(times) + k
			for j := 0; j < t.features; j++ {
				out.Set(row, j, t.data[base+j*t.times+tp])
			}
		}
	}
	return out, nil
}

// UnflattenValues reverses the FlattenTimeBatch ordering for per-row
// classifier outputs: a flat vector of length samples·times becomes a
// [samples × times] matrix with out.At(i, k) holding the output for
// flat row i·times+k.
func UnflattenValues(flat []float64, samples, times int) (*mat.Dense, error) {
	if len(flat) != samples*times {
		return nil, errors.NewDataShapeError("tensor.UnflattenValues", "output length", samples*times, len(flat))
	}
	// The flat slice is already in row-major [samples × times] order;
	// mat.NewDense adopts it directly.
	data := make([]float64, len(flat))
	copy(data, flat)
	return mat.NewDense(samples, times, data), nil
}

// UnflattenLabels is UnflattenValues for integer label outputs.
func UnflattenLabels(flat []int, samples, times int) (*mat.Dense, error) {
	if len(flat) != samples*times {
		return nil, errors.NewDataShapeError("tensor.UnflattenLabels", "output length", samples*times, len(flat))
	}
	data := make([]float64, len(flat))
	for i, v := range flat {
		data[i] = float64(v)
	}
	return mat.NewDense(samples, times, data), nil
}
