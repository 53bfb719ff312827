package classifiers

import (
	"math"

	"gonum.org/v1/gonum/mat"

	"github.com/Charestlab/MVPA-Light/core/model"
	"github.com/Charestlab/MVPA-Light/pkg/errors"
)

func init() {
	Register("lda", func(params Params) (model.Classifier, error) {
		return NewLDA(params), nil
	})
}

// LDA is a binary linear discriminant analysis classifier with shrinkage
// regularization of the pooled within-class covariance. It is the default
// classifier for time-generalization analysis: fast to train and robust
// for the small-sample, correlated-feature regime of neural recordings.
//
// Hyperparameters:
//   - "lambda": shrinkage in [0, 1], or "auto" for a Ledoit-Wolf style
//     estimate. Default 0.01.
type LDA struct {
	model.BaseEstimator

	lambda     float64
	autoLambda bool

	// Learned parameters.
	weights   *mat.VecDense // discriminant direction
	threshold float64       // projected midpoint between class means
	classes   []int
	nFeatures int
}

// NewLDA builds an untrained LDA classifier.
func NewLDA(params Params) *LDA {
	lda := &LDA{lambda: 0.01}
	if params.String("lambda", "") == "auto" {
		lda.autoLambda = true
	} else {
		lda.lambda = params.Float("lambda", 0.01)
	}
	return lda
}

// Train fits the discriminant on X [n × features] with binary labels.
// A covariance matrix that stays non-positive-definite after shrinkage is
// a TrainingError.
func (lda *LDA) Train(X mat.Matrix, labels []int) (err error) {
	defer errors.Recover(&err, "LDA.Train")

	n, p := X.Dims()
	if n != len(labels) {
		return errors.NewDimensionError("LDA.Train", n, len(labels), 0)
	}
	classes, counts := classCounts(labels)
	if len(classes) != 2 {
		return errors.NewConfigurationError("classifier", "lda requires exactly two classes", len(classes))
	}
	c1, c2 := classes[0], classes[1]
	if counts[c1] < 2 || counts[c2] < 2 {
		return errors.NewDataShapeError("LDA.Train", "samples per class", 2, min(counts[c1], counts[c2]))
	}

	// Class means.
	mu1 := classMean(X, labels, c1)
	mu2 := classMean(X, labels, c2)

	// Pooled within-class covariance.
	cov := mat.NewSymDense(p, nil)
	for i := 0; i < n; i++ {
		mu := mu1
		if labels[i] == c2 {
			mu = mu2
		}
		for a := 0; a < p; a++ {
			da := X.At(i, a) - mu.AtVec(a)
			for b := a; b < p; b++ {
				db := X.At(i, b) - mu.AtVec(b)
				cov.SetSym(a, b, cov.At(a, b)+da*db)
			}
		}
	}
	denom := float64(n - 2)
	for a := 0; a < p; a++ {
		for b := a; b < p; b++ {
			cov.SetSym(a, b, cov.At(a, b)/denom)
		}
	}

	lambda := lda.lambda
	if lda.autoLambda {
		lambda = ledoitWolfShrinkage(X, labels, mu1, mu2, c2, cov)
	}

	// Shrink towards a scaled identity, preserving the average variance.
	nu := 0.0
	for a := 0; a < p; a++ {
		nu += cov.At(a, a)
	}
	nu /= float64(p)
	for a := 0; a < p; a++ {
		for b := a; b < p; b++ {
			v := (1 - lambda) * cov.At(a, b)
			if a == b {
				v += lambda * nu
			}
			cov.SetSym(a, b, v)
		}
	}

	// w solves cov·w = mu1 − mu2. The discriminant points towards the
	// first (lower-numbered) class.
	diff := mat.NewVecDense(p, nil)
	diff.SubVec(mu1, mu2)

	var chol mat.Cholesky
	if ok := chol.Factorize(cov); !ok {
		return errors.NewTrainingError("lda", -1, -1, -1, errors.ErrSingularMatrix)
	}
	w := mat.NewVecDense(p, nil)
	if err := chol.SolveVecTo(w, diff); err != nil {
		return errors.NewTrainingError("lda", -1, -1, -1, err)
	}

	mid := mat.NewVecDense(p, nil)
	mid.AddVec(mu1, mu2)
	mid.ScaleVec(0.5, mid)

	lda.weights = w
	lda.threshold = mat.Dot(w, mid)
	lda.classes = classes
	lda.nFeatures = p
	lda.SetFitted()
	return nil
}

// DecisionValues returns w·x − b per row; positive values vote for the
// lower-numbered class.
func (lda *LDA) DecisionValues(X mat.Matrix) ([]float64, error) {
	if !lda.IsFitted() {
		return nil, errors.NewNotFittedError("LDA", "DecisionValues")
	}
	n, p := X.Dims()
	if p != lda.nFeatures {
		return nil, errors.NewDimensionError("LDA.DecisionValues", lda.nFeatures, p, 1)
	}
	dvals := make([]float64, n)
	for i := 0; i < n; i++ {
		s := -lda.threshold
		for j := 0; j < p; j++ {
			s += lda.weights.AtVec(j) * X.At(i, j)
		}
		dvals[i] = s
	}
	return dvals, nil
}

// PredictLabels thresholds the decision values at zero.
func (lda *LDA) PredictLabels(X mat.Matrix) ([]int, error) {
	dvals, err := lda.DecisionValues(X)
	if err != nil {
		return nil, err
	}
	labels := make([]int, len(dvals))
	for i, d := range dvals {
		if d > 0 {
			labels[i] = lda.classes[0]
		} else {
			labels[i] = lda.classes[1]
		}
	}
	return labels, nil
}

// Probabilities maps decision values through a logistic link. Column
// order follows Classes().
func (lda *LDA) Probabilities(X mat.Matrix) (*mat.Dense, error) {
	dvals, err := lda.DecisionValues(X)
	if err != nil {
		return nil, err
	}
	out := mat.NewDense(len(dvals), 2, nil)
	for i, d := range dvals {
		p1 := 1 / (1 + math.Exp(-d))
		out.Set(i, 0, p1)
		out.Set(i, 1, 1-p1)
	}
	return out, nil
}

// Classes returns the two class labels, ascending.
func (lda *LDA) Classes() []int {
	return lda.classes
}

func classMean(X mat.Matrix, labels []int, class int) *mat.VecDense {
	n, p := X.Dims()
	mu := mat.NewVecDense(p, nil)
	count := 0
	for i := 0; i < n; i++ {
		if labels[i] != class {
			continue
		}
		count++
		for j := 0; j < p; j++ {
			mu.SetVec(j, mu.AtVec(j)+X.At(i, j))
		}
	}
	mu.ScaleVec(1/float64(count), mu)
	return mu
}

// ledoitWolfShrinkage estimates the shrinkage intensity from the
// dispersion of per-sample outer products around the pooled covariance.
func ledoitWolfShrinkage(X mat.Matrix, labels []int, mu1, mu2 *mat.VecDense, c2 int, cov *mat.SymDense) float64 {
	n, p := X.Dims()

	num := 0.0
	for i := 0; i < n; i++ {
		mu := mu1
		if labels[i] == c2 {
			mu = mu2
		}
		// Squared Frobenius distance between this sample's outer
		// product and the pooled covariance.
		for a := 0; a < p; a++ {
			da := X.At(i, a) - mu.AtVec(a)
			for b := 0; b < p; b++ {
				db := X.At(i, b) - mu.AtVec(b)
				d := da*db - cov.At(a, b)
				num += d * d
			}
		}
	}
	num /= float64(n * n)

	nu := 0.0
	for a := 0; a < p; a++ {
		nu += cov.At(a, a)
	}
	nu /= float64(p)
	den := 0.0
	for a := 0; a < p; a++ {
		for b := 0; b < p; b++ {
			t := cov.At(a, b)
			if a == b {
				t -= nu
			}
			den += t * t
		}
	}
	if den <= 0 {
		return 1
	}
	lambda := num / den
	return math.Max(0, math.Min(1, lambda))
}
