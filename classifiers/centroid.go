package classifiers

import (
	"math"

	"gonum.org/v1/gonum/mat"

	"github.com/Charestlab/MVPA-Light/core/model"
	"github.com/Charestlab/MVPA-Light/pkg/errors"
)

func init() {
	Register("centroid", func(params Params) (model.Classifier, error) {
		return NewNearestCentroid(), nil
	})
}

// NearestCentroid assigns each sample to the class with the closest
// (Euclidean) training mean. It is the multi-class fallback: LDA and
// logreg are binary only.
type NearestCentroid struct {
	model.BaseEstimator

	centroids *mat.Dense // nClasses × features
	classes   []int
	nFeatures int
}

// NewNearestCentroid builds an untrained nearest-centroid classifier.
func NewNearestCentroid() *NearestCentroid {
	return &NearestCentroid{}
}

// Train computes one centroid per class.
func (nc *NearestCentroid) Train(X mat.Matrix, labels []int) error {
	n, p := X.Dims()
	if n != len(labels) {
		return errors.NewDimensionError("NearestCentroid.Train", n, len(labels), 0)
	}
	classes, counts := classCounts(labels)
	if len(classes) < 2 {
		return errors.NewConfigurationError("classifier", "need at least two classes", len(classes))
	}

	centroids := mat.NewDense(len(classes), p, nil)
	classIdx := make(map[int]int, len(classes))
	for ci, c := range classes {
		classIdx[c] = ci
	}
	for i := 0; i < n; i++ {
		ci := classIdx[labels[i]]
		for j := 0; j < p; j++ {
			centroids.Set(ci, j, centroids.At(ci, j)+X.At(i, j))
		}
	}
	for ci, c := range classes {
		inv := 1 / float64(counts[c])
		for j := 0; j < p; j++ {
			centroids.Set(ci, j, centroids.At(ci, j)*inv)
		}
	}

	nc.centroids = centroids
	nc.classes = classes
	nc.nFeatures = p
	nc.SetFitted()
	return nil
}

func (nc *NearestCentroid) distances(X mat.Matrix) (*mat.Dense, error) {
	if !nc.IsFitted() {
		return nil, errors.NewNotFittedError("NearestCentroid", "PredictLabels")
	}
	n, p := X.Dims()
	if p != nc.nFeatures {
		return nil, errors.NewDimensionError("NearestCentroid", nc.nFeatures, p, 1)
	}
	d := mat.NewDense(n, len(nc.classes), nil)
	for i := 0; i < n; i++ {
		for ci := range nc.classes {
			s := 0.0
			for j := 0; j < p; j++ {
				diff := X.At(i, j) - nc.centroids.At(ci, j)
				s += diff * diff
			}
			d.Set(i, ci, s)
		}
	}
	return d, nil
}

// PredictLabels assigns each row to the nearest centroid.
func (nc *NearestCentroid) PredictLabels(X mat.Matrix) ([]int, error) {
	d, err := nc.distances(X)
	if err != nil {
		return nil, err
	}
	n, _ := d.Dims()
	labels := make([]int, n)
	for i := 0; i < n; i++ {
		best := 0
		for ci := 1; ci < len(nc.classes); ci++ {
			if d.At(i, ci) < d.At(i, best) {
				best = ci
			}
		}
		labels[i] = nc.classes[best]
	}
	return labels, nil
}

// DecisionValues is defined for the binary case only: half the squared
// distance difference, positive when the row is closer to the
// lower-numbered class.
func (nc *NearestCentroid) DecisionValues(X mat.Matrix) ([]float64, error) {
	if nc.IsFitted() && len(nc.classes) != 2 {
		return nil, errors.NewConfigurationError("output", "decision values require a binary classifier", len(nc.classes))
	}
	d, err := nc.distances(X)
	if err != nil {
		return nil, err
	}
	n, _ := d.Dims()
	dvals := make([]float64, n)
	for i := 0; i < n; i++ {
		dvals[i] = (d.At(i, 1) - d.At(i, 0)) / 2
	}
	return dvals, nil
}

// Probabilities applies a softmax over negative squared distances.
func (nc *NearestCentroid) Probabilities(X mat.Matrix) (*mat.Dense, error) {
	d, err := nc.distances(X)
	if err != nil {
		return nil, err
	}
	n, k := d.Dims()
	out := mat.NewDense(n, k, nil)
	for i := 0; i < n; i++ {
		maxNeg := math.Inf(-1)
		for ci := 0; ci < k; ci++ {
			if -d.At(i, ci) > maxNeg {
				maxNeg = -d.At(i, ci)
			}
		}
		sum := 0.0
		for ci := 0; ci < k; ci++ {
			v := math.Exp(-d.At(i, ci) - maxNeg)
			out.Set(i, ci, v)
			sum += v
		}
		for ci := 0; ci < k; ci++ {
			out.Set(i, ci, out.At(i, ci)/sum)
		}
	}
	return out, nil
}

// Classes returns the class labels seen during training, ascending.
func (nc *NearestCentroid) Classes() []int {
	return nc.classes
}
