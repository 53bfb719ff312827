// Package preprocessing provides per-time-point normalization and
// class-balancing resampling for the sample tensor.
package preprocessing

import (
	"math"

	"github.com/Charestlab/MVPA-Light/pkg/errors"
	"github.com/Charestlab/MVPA-Light/tensor"
)

// NormMode selects the normalization applied independently to each
// (feature, time) column across the sample axis.
type NormMode string

const (
	// NormZScore centers each column and divides by its standard
	// deviation.
	NormZScore NormMode = "zscore"
	// NormDemean centers each column.
	NormDemean NormMode = "demean"
	// NormNone leaves the data untouched.
	NormNone NormMode = "none"
)

// Normalise returns a normalized copy of the tensor. The input is never
// modified. Columns with near-zero standard deviation are divided by 1
// instead, so constant features pass through centered but unscaled.
func Normalise(mode NormMode, t *tensor.Tensor) (*tensor.Tensor, error) {
	switch mode {
	case NormNone:
		return t, nil
	case NormZScore, NormDemean:
	default:
		return nil, errors.NewConfigurationError("normalise", "unknown normalization mode", string(mode))
	}

	samples, features, times := t.Dims()
	out := t.Clone()
	for j := 0; j < features; j++ {
		for k := 0; k < times; k++ {
			mean := 0.0
			for i := 0; i < samples; i++ {
				mean += t.At(i, j, k)
			}
			mean /= float64(samples)

			scale := 1.0
			if mode == NormZScore {
				ss := 0.0
				for i := 0; i < samples; i++ {
					d := t.At(i, j, k) - mean
					ss += d * d
				}
				scale = math.Sqrt(ss / float64(samples))
				if math.Abs(scale) < 1e-8 {
					scale = 1.0
				}
			}

			for i := 0; i < samples; i++ {
				out.Set(i, j, k, (t.At(i, j, k)-mean)/scale)
			}
		}
	}
	return out, nil
}
