package metrics

import (
	"math"

	"gonum.org/v1/gonum/mat"

	"github.com/Charestlab/MVPA-Light/core/model"
	"github.com/Charestlab/MVPA-Light/pkg/errors"
)

// Aggregate reduces raw classifier outputs into train-time × test-time
// mean and standard-deviation performance matrices.
//
// cells[r][f][t1] is the [foldTestSize × nTime2] output matrix produced
// for repeat r, fold f, training time point t1: predicted labels (kind
// OutputLabel) or decision values (kind OutputDval), one column per test
// time point. labels[r][f] holds the fold's true test labels, aligned
// with the cell's rows. In the no-cross-validation modes there is exactly
// one (repeat, fold) cell covering all test samples.
//
// The metric is computed per (repeat, fold, t1, t2) and averaged over the
// (repeat, fold) axes; the std matrix is the sample standard deviation
// over the same axes and all zeros when there is only one cell.
func Aggregate(metric Metric, kind model.OutputKind, cells [][][]*mat.Dense, labels [][][]int, nTime1, nTime2 int) (perf, std *mat.Dense, err error) {
	if metric == MetricNone {
		return nil, nil, errors.NewConfigurationError("metric", "nothing to aggregate for metric none", nil)
	}
	if err := Validate(metric, kind); err != nil {
		return nil, nil, err
	}
	if len(cells) == 0 || len(cells[0]) == 0 {
		return nil, nil, errors.Wrap(errors.ErrEmptyData, "metrics.Aggregate")
	}

	perf = mat.NewDense(nTime1, nTime2, nil)
	std = mat.NewDense(nTime1, nTime2, nil)
	values := make([]float64, 0, len(cells)*len(cells[0]))

	for t1 := 0; t1 < nTime1; t1++ {
		for t2 := 0; t2 < nTime2; t2++ {
			values = values[:0]
			for r := range cells {
				for f := range cells[r] {
					cell := cells[r][f][t1]
					truth := labels[r][f]
					rows, cols := cell.Dims()
					if rows != len(truth) {
						return nil, nil, errors.NewDimensionError("metrics.Aggregate", len(truth), rows, 0)
					}
					if cols != nTime2 {
						return nil, nil, errors.NewDimensionError("metrics.Aggregate", nTime2, cols, 1)
					}

					v, err := scoreColumn(metric, cell, t2, truth)
					if err != nil {
						return nil, nil, err
					}
					values = append(values, v)
				}
			}
			m, s := meanStd(values)
			perf.Set(t1, t2, m)
			std.Set(t1, t2, s)
		}
	}
	return perf, std, nil
}

func scoreColumn(metric Metric, cell *mat.Dense, col int, truth []int) (float64, error) {
	n, _ := cell.Dims()
	switch metric {
	case MetricAccuracy:
		pred := make([]int, n)
		for i := 0; i < n; i++ {
			pred[i] = int(cell.At(i, col))
		}
		return Accuracy(pred, truth)
	case MetricAUC:
		dvals := make([]float64, n)
		for i := 0; i < n; i++ {
			dvals[i] = cell.At(i, col)
		}
		return AUC(dvals, truth)
	}
	return 0, errors.NewConfigurationError("metric", "unknown metric", string(metric))
}

func meanStd(values []float64) (mean, std float64) {
	for _, v := range values {
		mean += v
	}
	mean /= float64(len(values))
	if len(values) < 2 {
		return mean, 0
	}
	ss := 0.0
	for _, v := range values {
		d := v - mean
		ss += d * d
	}
	return mean, math.Sqrt(ss / float64(len(values)-1))
}
