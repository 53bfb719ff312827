package model

import (
	"gonum.org/v1/gonum/mat"
)

// OutputKind selects what a classifier emits at test time.
type OutputKind int

const (
	// OutputLabel requests predicted class labels.
	OutputLabel OutputKind = iota
	// OutputDval requests signed decision values (binary classifiers).
	OutputDval
	// OutputProb requests class-probability estimates.
	OutputProb
)

// String returns the identifier used in configuration and logs.
func (k OutputKind) String() string {
	switch k {
	case OutputLabel:
		return "clabel"
	case OutputDval:
		return "dval"
	case OutputProb:
		return "prob"
	default:
		return "unknown"
	}
}

// Classifier is the training/prediction contract the engine consumes.
// One instance is created per (repeat, fold, training time point), trained
// on a single [n × features] slice, queried once against the flattened
// test batch, and discarded.
//
// Labels are 1-based class indices {1..C}, aligned positionally with the
// rows of X.
type Classifier interface {
	// Train fits the classifier. A numerical failure (e.g. singular
	// covariance) is returned as an error and aborts the whole analysis.
	Train(X mat.Matrix, labels []int) error

	// PredictLabels returns one predicted class label per row of X.
	PredictLabels(X mat.Matrix) ([]int, error)

	// DecisionValues returns one signed decision value per row of X.
	// Positive values vote for class 1. Only binary classifiers
	// implement this meaningfully; others return an error.
	DecisionValues(X mat.Matrix) ([]float64, error)

	// Probabilities returns an [n × nClasses] matrix of class
	// probabilities, columns ordered by class label.
	Probabilities(X mat.Matrix) (*mat.Dense, error)

	// Classes returns the distinct class labels seen during training,
	// ascending.
	Classes() []int
}
