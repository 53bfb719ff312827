// Package tensor provides the 3-D sample tensor used throughout the
// toolbox: samples × features × time, the standard layout for epoched
// multivariate recordings. The engine only ever reads subsets or copies;
// a Tensor is treated as immutable once filled.
package tensor

import (
	"gonum.org/v1/gonum/mat"

	"github.com/Charestlab/MVPA-Light/pkg/errors"
)

// Tensor is a dense 3-D array of shape [samples × features × time],
// stored row-major with time as the fastest axis.
type Tensor struct {
	data     []float64
	samples  int
	features int
	times    int
}

// New allocates a zeroed tensor of the given shape.
func New(samples, features, times int) *Tensor {
	if samples <= 0 || features <= 0 || times <= 0 {
		panic("tensor: non-positive dimension")
	}
	return &Tensor{
		data:     make([]float64, samples*features*times),
		samples:  samples,
		features: features,
		times:    times,
	}
}

// FromSlice wraps data as a tensor of the given shape. The layout is
// row-major, time fastest: data[i*features*times + j*times + t].
// The slice is used directly, not copied.
func FromSlice(samples, features, times int, data []float64) (*Tensor, error) {
	if len(data) != samples*features*times {
		return nil, errors.NewDataShapeError("tensor.FromSlice", "element count", samples*features*times, len(data))
	}
	return &Tensor{data: data, samples: samples, features: features, times: times}, nil
}

// Dims returns (samples, features, times).
func (t *Tensor) Dims() (samples, features, times int) {
	return t.samples, t.features, t.times
}

// At returns the value for sample i, feature j, time point k.
func (t *Tensor) At(i, j, k int) float64 {
	return t.data[t.index(i, j, k)]
}

// Set stores v at sample i, feature j, time point k.
func (t *Tensor) Set(i, j, k int, v float64) {
	t.data[t.index(i, j, k)] = v
}

func (t *Tensor) index(i, j, k int) int {
	if i < 0 || i >= t.samples || j < 0 || j >= t.features || k < 0 || k >= t.times {
		panic("tensor: index out of range")
	}
	return i*t.features*t.times + j*t.times + k
}

// Clone returns a deep copy.
func (t *Tensor) Clone() *Tensor {
	data := make([]float64, len(t.data))
	copy(data, t.data)
	return &Tensor{data: data, samples: t.samples, features: t.features, times: t.times}
}

// TimeSlice copies the [samples × features] matrix at one time point.
func (t *Tensor) TimeSlice(k int) *mat.Dense {
	rows := make([]int, t.samples)
	for i := range rows {
		rows[i] = i
	}
	return t.GatherTime(rows, k)
}

// GatherTime copies the given sample rows at one time point into a
// [len(rows) × features] matrix, preserving row order.
func (t *Tensor) GatherTime(rows []int, k int) *mat.Dense {
	out := mat.NewDense(len(rows), t.features, nil)
	for r, i := range rows {
		base := i*t.features*t.times + k
		for j := 0; j < t.features; j++ {
			out.Set(r, j, t.data[base+j*t.times])
		}
	}
	return out
}

// GatherRows copies the given sample rows across all features and time
// points into a new tensor, preserving row order. Used to materialise a
// resampled or fold-restricted dataset.
func (t *Tensor) GatherRows(rows []int) *Tensor {
	stride := t.features * t.times
	out := &Tensor{
		data:     make([]float64, len(rows)*stride),
		samples:  len(rows),
		features: t.features,
		times:    t.times,
	}
	for r, i := range rows {
		copy(out.data[r*stride:(r+1)*stride], t.data[i*stride:(i+1)*stride])
	}
	return out
}

// ValidateTimeIndices checks that every index addresses the time axis.
func (t *Tensor) ValidateTimeIndices(op string, idx []int) error {
	for _, k := range idx {
		if k < 0 || k >= t.times {
			return errors.NewDataShapeError(op, "time index", t.times-1, k)
		}
	}
	return nil
}
