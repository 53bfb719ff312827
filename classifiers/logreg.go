package classifiers

import (
	"math"

	"gonum.org/v1/gonum/mat"

	"github.com/Charestlab/MVPA-Light/core/model"
	"github.com/Charestlab/MVPA-Light/pkg/errors"
)

func init() {
	Register("logreg", func(params Params) (model.Classifier, error) {
		return NewLogReg(params), nil
	})
}

// LogReg is a binary L2-regularized logistic regression classifier
// trained by gradient descent.
//
// Hyperparameters:
//   - "lambda": L2 regularization strength. Default 0.01.
//   - "max_iter": iteration limit. Default 1000.
//   - "tol": gradient-norm stopping tolerance. Default 1e-6.
//   - "learning_rate": gradient step size. Default 0.1, which is stable
//     for z-scored features.
//
// Hitting the iteration limit reports a ConvergenceWarning through
// pkg/errors and keeps the current weights; it never fails the analysis.
type LogReg struct {
	model.BaseEstimator

	lambda  float64
	maxIter int
	tol     float64
	step    float64

	weights   *mat.VecDense
	intercept float64
	classes   []int
	nFeatures int
}

// NewLogReg builds an untrained logistic regression classifier.
func NewLogReg(params Params) *LogReg {
	return &LogReg{
		lambda:  params.Float("lambda", 0.01),
		maxIter: params.Int("max_iter", 1000),
		tol:     params.Float("tol", 1e-6),
		step:    params.Float("learning_rate", 0.1),
	}
}

// Train fits the weights on X [n × features] with binary labels.
func (lr *LogReg) Train(X mat.Matrix, labels []int) (err error) {
	defer errors.Recover(&err, "LogReg.Train")

	n, p := X.Dims()
	if n != len(labels) {
		return errors.NewDimensionError("LogReg.Train", n, len(labels), 0)
	}
	classes, _ := classCounts(labels)
	if len(classes) != 2 {
		return errors.NewConfigurationError("classifier", "logreg requires exactly two classes", len(classes))
	}

	// The lower-numbered class is the positive one, matching LDA's
	// decision-value convention.
	y := make([]float64, n)
	for i, l := range labels {
		if l == classes[0] {
			y[i] = 1
		}
	}

	w := mat.NewVecDense(p, nil)
	b := 0.0
	grad := mat.NewVecDense(p, nil)
	step := lr.step

	converged := false
	for iter := 0; iter < lr.maxIter; iter++ {
		grad.Zero()
		gradB := 0.0
		for i := 0; i < n; i++ {
			z := b
			for j := 0; j < p; j++ {
				z += w.AtVec(j) * X.At(i, j)
			}
			resid := 1/(1+math.Exp(-z)) - y[i]
			for j := 0; j < p; j++ {
				grad.SetVec(j, grad.AtVec(j)+resid*X.At(i, j))
			}
			gradB += resid
		}
		norm := 0.0
		for j := 0; j < p; j++ {
			g := grad.AtVec(j)/float64(n) + lr.lambda*w.AtVec(j)
			grad.SetVec(j, g)
			norm += g * g
		}
		gradB /= float64(n)
		norm += gradB * gradB

		if math.Sqrt(norm) < lr.tol {
			converged = true
			break
		}
		for j := 0; j < p; j++ {
			w.SetVec(j, w.AtVec(j)-step*grad.AtVec(j))
		}
		b -= step * gradB
	}
	if !converged {
		errors.Warn(errors.NewConvergenceWarning("logreg", lr.maxIter))
	}

	lr.weights = w
	lr.intercept = b
	lr.classes = classes
	lr.nFeatures = p
	lr.SetFitted()
	return nil
}

// DecisionValues returns w·x + b per row; positive values vote for the
// lower-numbered class.
func (lr *LogReg) DecisionValues(X mat.Matrix) ([]float64, error) {
	if !lr.IsFitted() {
		return nil, errors.NewNotFittedError("LogReg", "DecisionValues")
	}
	n, p := X.Dims()
	if p != lr.nFeatures {
		return nil, errors.NewDimensionError("LogReg.DecisionValues", lr.nFeatures, p, 1)
	}
	dvals := make([]float64, n)
	for i := 0; i < n; i++ {
		s := lr.intercept
		for j := 0; j < p; j++ {
			s += lr.weights.AtVec(j) * X.At(i, j)
		}
		dvals[i] = s
	}
	return dvals, nil
}

// PredictLabels thresholds the decision values at zero.
func (lr *LogReg) PredictLabels(X mat.Matrix) ([]int, error) {
	dvals, err := lr.DecisionValues(X)
	if err != nil {
		return nil, err
	}
	labels := make([]int, len(dvals))
	for i, d := range dvals {
		if d > 0 {
			labels[i] = lr.classes[0]
		} else {
			labels[i] = lr.classes[1]
		}
	}
	return labels, nil
}

// Probabilities returns the logistic probabilities, columns ordered by
// Classes().
func (lr *LogReg) Probabilities(X mat.Matrix) (*mat.Dense, error) {
	dvals, err := lr.DecisionValues(X)
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
func (lr *LogReg) Classes() []int {
	return lr.classes
}
