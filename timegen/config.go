// Package timegen implements time-generalization classification
// analysis: a classifier is trained at each training time point and
// evaluated at every test time point, producing a train-time × test-time
// performance matrix that shows whether a pattern learned at one moment
// generalizes to others.
package timegen

import (
	"github.com/Charestlab/MVPA-Light/classifiers"
	"github.com/Charestlab/MVPA-Light/core/model"
	"github.com/Charestlab/MVPA-Light/crossval"
	"github.com/Charestlab/MVPA-Light/metrics"
	"github.com/Charestlab/MVPA-Light/pkg/errors"
	"github.com/Charestlab/MVPA-Light/pkg/log"
	"github.com/Charestlab/MVPA-Light/preprocessing"
	"github.com/Charestlab/MVPA-Light/tensor"
)

// EvaluationMode identifies how train and test data relate. It is
// selected once at entry and fixed for the whole run.
type EvaluationMode int

const (
	// CrossValidated trains and tests on folds of a single dataset.
	CrossValidated EvaluationMode = iota
	// TrainTestSplit trains on one dataset and tests on an independent
	// second dataset; no cross-validation.
	TrainTestSplit
	// NoCrossValidation trains and tests on the same, unsplit dataset.
	// Performance estimates are optimistically biased; use for sanity
	// checks only.
	NoCrossValidation
)

// String returns the identifier used in logs and result descriptors.
func (m EvaluationMode) String() string {
	switch m {
	case CrossValidated:
		return "cross_validation"
	case TrainTestSplit:
		return "train_test_split"
	case NoCrossValidation:
		return "no_cross_validation"
	default:
		return "unknown"
	}
}

// Config collects the analysis settings. The zero value is not usable;
// unset fields are filled with defaults by the entry points:
// classifier "lda", metric accuracy, z-score normalization, stratified
// 5-fold cross-validation with 5 repeats, no balancing, and all time
// points for both axes.
type Config struct {
	// Classifier is the registry identifier, e.g. "lda", "logreg".
	Classifier string
	// Params holds classifier hyperparameters.
	Params classifiers.Params

	// Metric selects the performance measure, or metrics.MetricNone to
	// return raw classifier outputs.
	Metric metrics.Metric
	// Output overrides the classifier output kind: "clabel", "dval" or
	// "prob". Empty selects the kind the metric needs (labels for
	// accuracy, decision values for auc and for metric none).
	Output string

	// Time1 and Time2 are the training and testing time indices.
	// Nil means every time point of the respective tensor.
	Time1, Time2 []int

	// Normalise is applied per (feature, time point) across samples
	// before anything else.
	Normalise preprocessing.NormMode
	// Balance equalizes class counts by resampling. Undersampling is
	// re-applied to the whole dataset at every repeat; oversampling is
	// applied to the training fold only. This asymmetry avoids test-set
	// leakage for oversampling while averaging out sampling variance
	// for undersampling.
	Balance preprocessing.Balance

	// CV configures cross-validation. Kind crossval.None evaluates on
	// the training data itself.
	CV crossval.Spec

	// Seed fixes all randomness (balancing and fold assignment).
	Seed uint64

	// Feedback enables Info-level progress logging; the engine's
	// results never depend on it.
	Feedback bool
	// Logger receives progress output. Nil uses log.GetLogger().
	Logger log.Logger
}

// resolved is the internal configuration after defaulting and
// validation: every field filled, output kind parsed, mode fixed.
type resolved struct {
	Config
	mode     EvaluationMode
	kind     model.OutputKind
	nClasses int
	logger   log.Logger
}

func (cfg Config) resolve(mode EvaluationMode, X *tensor.Tensor, labels []int, X2 *tensor.Tensor, labels2 []int) (*resolved, error) {
	r := &resolved{Config: cfg, mode: mode}

	if r.Classifier == "" {
		r.Classifier = "lda"
	}
	if r.Metric == "" {
		r.Metric = metrics.MetricAccuracy
	}
	if r.Normalise == "" {
		r.Normalise = preprocessing.NormZScore
	}
	if r.Balance.Policy == "" {
		r.Balance.Policy = preprocessing.BalanceNone
	}
	if mode == CrossValidated {
		if r.CV.Kind == "" {
			r.CV.Kind = crossval.KFold
			r.CV.Stratify = true
		}
		if r.CV.Kind == crossval.KFold && r.CV.K == 0 {
			r.CV.K = 5
		}
		if r.CV.Kind == crossval.Holdout && r.CV.P == 0 {
			r.CV.P = 0.1
		}
		if r.CV.Repeat == 0 {
			r.CV.Repeat = 5
		}
	} else {
		// The other modes have no folds by definition.
		r.CV = crossval.Spec{Kind: crossval.None, Repeat: 1}
	}

	r.logger = r.Logger
	if r.logger == nil {
		r.logger = log.GetLogger()
	}

	if err := r.validate(X, labels, X2, labels2); err != nil {
		return nil, err
	}
	return r, nil
}

func (r *resolved) validate(X *tensor.Tensor, labels []int, X2 *tensor.Tensor, labels2 []int) error {
	samples, _, times := X.Dims()
	if samples != len(labels) {
		return errors.NewDataShapeError("timegen", "label count", samples, len(labels))
	}

	counts := map[int]int{}
	for _, l := range labels {
		if l < 1 {
			return errors.NewConfigurationError("labels", "class labels must be positive integers", l)
		}
		counts[l]++
	}
	if len(counts) < 2 {
		return errors.NewDataShapeError("timegen", "class count", 2, len(counts))
	}
	r.nClasses = len(counts)

	// Default time axes: everything.
	if r.Time1 == nil {
		r.Time1 = indexRange(times)
	}
	if err := X.ValidateTimeIndices("timegen", r.Time1); err != nil {
		return err
	}
	testTensor := X
	if r.mode == TrainTestSplit {
		testTensor = X2
		samples2, features2, _ := X2.Dims()
		_, features, _ := X.Dims()
		if features2 != features {
			return errors.NewDataShapeError("timegen", "feature count", features, features2)
		}
		if samples2 != len(labels2) {
			return errors.NewDataShapeError("timegen", "test label count", samples2, len(labels2))
		}
	}
	_, _, testTimes := testTensor.Dims()
	if r.Time2 == nil {
		r.Time2 = indexRange(testTimes)
	}
	if err := testTensor.ValidateTimeIndices("timegen", r.Time2); err != nil {
		return err
	}
	if len(r.Time1) == 0 || len(r.Time2) == 0 {
		return errors.NewConfigurationError("time", "time index sets must not be empty", nil)
	}

	// Balancing target sanity before any fold is generated.
	if err := r.Balance.Validate(labels); err != nil {
		return err
	}
	if r.mode == CrossValidated {
		if err := r.CV.Validate(labels); err != nil {
			return err
		}
	}

	// Output kind and metric compatibility.
	switch r.Output {
	case "":
		if r.Metric == metrics.MetricNone {
			r.kind = model.OutputDval
		} else {
			r.kind = metrics.DefaultOutputKind(r.Metric)
		}
	case "clabel":
		r.kind = model.OutputLabel
	case "dval":
		r.kind = model.OutputDval
	case "prob":
		r.kind = model.OutputProb
	default:
		return errors.NewConfigurationError("output", "unknown output kind", r.Output)
	}
	if r.kind == model.OutputProb && r.nClasses > 2 {
		return errors.NewConfigurationError("output", "probability output is supported for binary problems only", r.nClasses)
	}
	if err := metrics.Validate(r.Metric, r.kind); err != nil {
		return err
	}

	// Fail on unknown classifiers before the main loop.
	if _, err := classifiers.New(r.Classifier, r.Params); err != nil {
		return err
	}
	return nil
}

func indexRange(n int) []int {
	out := make([]int, n)
	for i := range out {
		out[i] = i
	}
	return out
}
