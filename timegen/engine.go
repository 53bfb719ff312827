package timegen

import (
	"context"
	"math/rand/v2"
	"time"

	"gonum.org/v1/gonum/mat"

	"github.com/Charestlab/MVPA-Light/classifiers"
	"github.com/Charestlab/MVPA-Light/core/model"
	"github.com/Charestlab/MVPA-Light/core/parallel"
	"github.com/Charestlab/MVPA-Light/crossval"
	"github.com/Charestlab/MVPA-Light/pkg/errors"
	"github.com/Charestlab/MVPA-Light/pkg/log"
	"github.com/Charestlab/MVPA-Light/preprocessing"
	"github.com/Charestlab/MVPA-Light/tensor"
)

// ClassifyTimeByTime runs time-generalization analysis on a single
// dataset X [samples × features × time] with one label per sample.
// With cross-validation configured (the default) every (training time,
// testing time) pair is scored on held-out folds; with cfg.CV.Kind set
// to crossval.None the classifier is evaluated on its own training data,
// which overfits by construction.
//
// Cancellation is checked between training time points; no partial
// result is returned.
func ClassifyTimeByTime(ctx context.Context, cfg Config, X *tensor.Tensor, labels []int) (*Result, error) {
	mode := CrossValidated
	if cfg.CV.Kind == crossval.None {
		mode = NoCrossValidation
	}
	r, err := cfg.resolve(mode, X, labels, nil, nil)
	if err != nil {
		return nil, err
	}
	e := &engine{cfg: r, X: X, labels: labels}
	return e.run(ctx)
}

// ClassifyTimeByTimeTwoDatasets trains on (X, labels) and tests on the
// independent dataset (X2, labels2). Cross-validation is forced off;
// balancing, if requested, is applied once to the training dataset and
// never to the test dataset.
func ClassifyTimeByTimeTwoDatasets(ctx context.Context, cfg Config, X *tensor.Tensor, labels []int, X2 *tensor.Tensor, labels2 []int) (*Result, error) {
	r, err := cfg.resolve(TrainTestSplit, X, labels, X2, labels2)
	if err != nil {
		return nil, err
	}
	e := &engine{cfg: r, X: X, labels: labels, X2: X2, labels2: labels2}
	return e.run(ctx)
}

// ClassifyAcrossTime is the diagonal-only variant: the classifier is
// trained and tested at the same time point, yielding a |time1| × 1
// performance matrix instead of the full generalization surface.
func ClassifyAcrossTime(ctx context.Context, cfg Config, X *tensor.Tensor, labels []int) (*Result, error) {
	mode := CrossValidated
	if cfg.CV.Kind == crossval.None {
		mode = NoCrossValidation
	}
	cfg.Time2 = []int{0} // placeholder; the diagonal loop ignores Time2
	r, err := cfg.resolve(mode, X, labels, nil, nil)
	if err != nil {
		return nil, err
	}
	e := &engine{cfg: r, X: X, labels: labels, diagonal: true}
	return e.run(ctx)
}

type engine struct {
	cfg     *resolved
	X       *tensor.Tensor
	labels  []int
	X2      *tensor.Tensor
	labels2 []int

	// diagonal restricts testing to the training time point.
	diagonal bool
}

func (e *engine) run(ctx context.Context) (*Result, error) {
	cfg := e.cfg
	start := time.Now()
	if cfg.Feedback {
		samples, features, times := e.X.Dims()
		cfg.logger.Info("time-generalization analysis started",
			log.ClassifierKey, cfg.Classifier,
			log.MetricKey, string(cfg.Metric),
			log.ModeKey, cfg.mode.String(),
			log.SamplesKey, samples,
			log.FeaturesKey, features,
			log.TimePointsKey, times,
			log.TrainTimeKey, len(cfg.Time1),
			log.TestTimeKey, e.nTime2(),
			log.CVKey, string(cfg.CV.Kind),
			log.FoldsKey, cfg.CV.K,
			log.RepeatsKey, cfg.CV.Repeat,
		)
	}

	var err error
	if e.X, err = preprocessing.Normalise(cfg.Normalise, e.X); err != nil {
		return nil, err
	}
	if e.cfg.mode == TrainTestSplit {
		// The test dataset is normalized independently; its statistics
		// must not mix with the training dataset's.
		if e.X2, err = preprocessing.Normalise(cfg.Normalise, e.X2); err != nil {
			return nil, err
		}
	}

	var raw *RawOutput
	if cfg.mode == CrossValidated {
		raw, err = e.runCrossValidated(ctx)
	} else {
		raw, err = e.runNoCV(ctx)
	}
	if err != nil {
		return nil, err
	}

	result, err := assemble(cfg, raw, len(e.labels))
	if err != nil {
		return nil, err
	}
	if cfg.Feedback {
		cfg.logger.Info("time-generalization analysis finished",
			log.ClassifierKey, cfg.Classifier,
			log.DurationMsKey, time.Since(start).Milliseconds(),
		)
	}
	return result, nil
}

func (e *engine) nTime2() int {
	if e.diagonal {
		return 1
	}
	return len(e.cfg.Time2)
}

// runCrossValidated is the cross-validated single-dataset mode. Per
// repeat: optional undersampling of the whole dataset, a fresh fold
// partition, then per fold optional oversampling of the training fold
// and one classifier fit per training time point, each scored against
// the batched test matrix covering every test time point at once.
func (e *engine) runCrossValidated(ctx context.Context) (*RawOutput, error) {
	cfg := e.cfg
	rng := rand.New(rand.NewPCG(cfg.Seed, cfg.Seed^0x9e3779b97f4a7c15))

	undersample := cfg.Balance.Policy != preprocessing.BalanceNone && cfg.Balance.IsUndersample(e.labels)
	oversample := cfg.Balance.Policy != preprocessing.BalanceNone && !undersample

	folds, err := e.foldCount(undersample)
	if err != nil {
		return nil, err
	}
	raw := newRawOutput(CrossValidated, cfg.kind, cfg.CV.Repeat, folds, len(cfg.Time1), e.nTime2())

	for rr := 0; rr < cfg.CV.Repeat; rr++ {
		Xr, labelsR := e.X, e.labels
		if undersample {
			// Whole-dataset resampling, redone every repeat so the
			// discarded majority samples differ between repeats.
			if Xr, labelsR, err = preprocessing.Rebalance(cfg.Balance, e.X, e.labels, rng); err != nil {
				return nil, err
			}
		}

		part, err := crossval.Make(cfg.CV, labelsR, rng)
		if err != nil {
			return nil, err
		}
		if part.NumSets() != folds {
			return nil, errors.NewDataShapeError("timegen", "fold count", folds, part.NumSets())
		}

		for ff := 0; ff < part.NumSets(); ff++ {
			trainIdx, testIdx := part.Train(ff), part.Test(ff)

			trainT := Xr.GatherRows(trainIdx)
			trainLabels := gather(labelsR, trainIdx)
			if oversample {
				// Training fold only: duplicating samples before the
				// split would leak copies into the test fold.
				if trainT, trainLabels, err = preprocessing.Rebalance(cfg.Balance, trainT, trainLabels, rng); err != nil {
					return nil, err
				}
			}

			raw.TestLabels[rr][ff] = gather(labelsR, testIdx)
			if err := e.fillCells(ctx, raw, rr, ff, trainT, trainLabels, Xr, testIdx); err != nil {
				return nil, err
			}
			cfg.logger.Debug("fold finished",
				log.OperationKey, "classify_timextime",
				log.RepeatKey, rr,
				log.FoldKey, ff,
			)
		}
	}
	return raw, nil
}

// runNoCV covers the TrainTestSplit and NoCrossValidation modes: one
// fit per training time point on the full training data, one batched
// prediction over the full test data.
func (e *engine) runNoCV(ctx context.Context) (*RawOutput, error) {
	cfg := e.cfg
	rng := rand.New(rand.NewPCG(cfg.Seed, cfg.Seed^0x9e3779b97f4a7c15))

	trainT, trainLabels := e.X, e.labels
	testT, testLabels := e.X, e.labels
	if cfg.mode == TrainTestSplit {
		testT, testLabels = e.X2, e.labels2
	}

	if cfg.Balance.Policy != preprocessing.BalanceNone {
		// Balancing touches the training data only; the test dataset
		// is taken as given.
		var err error
		if trainT, trainLabels, err = preprocessing.Rebalance(cfg.Balance, trainT, trainLabels, rng); err != nil {
			return nil, err
		}
	}

	testSamples, _, _ := testT.Dims()
	raw := newRawOutput(cfg.mode, cfg.kind, 1, 1, len(cfg.Time1), e.nTime2())
	raw.TestLabels[0][0] = testLabels

	if err := e.fillCells(ctx, raw, 0, 0, trainT, trainLabels, testT, indexRange(testSamples)); err != nil {
		return nil, err
	}
	return raw, nil
}

// fillCells trains one classifier per training time point and writes the
// unflattened predictions into raw.Cells[rr][ff]. Training time points
// run in parallel; each task owns its cell slot, and cancellation is
// honored between tasks.
func (e *engine) fillCells(ctx context.Context, raw *RawOutput, rr, ff int, trainT *tensor.Tensor, trainLabels []int, testT *tensor.Tensor, testIdx []int) error {
	cfg := e.cfg

	// The core batching step: all test samples at all test time points
	// in a single [(samples·|time2|) × features] matrix, so Predict is
	// invoked once per training time point.
	var testFlat *mat.Dense
	if !e.diagonal {
		var err error
		if testFlat, err = tensor.FlattenTimeBatch(testT, testIdx, cfg.Time2); err != nil {
			return err
		}
	}

	errRepeat, errFold := rr, ff
	if cfg.mode != CrossValidated {
		errRepeat, errFold = -1, -1
	}

	cells := raw.Cells[rr][ff]
	return parallel.ForEach(ctx, len(cfg.Time1), func(i int) error {
		t1 := cfg.Time1[i]

		clf, err := classifiers.New(cfg.Classifier, cfg.Params)
		if err != nil {
			return err
		}
		if err := clf.Train(trainT.TimeSlice(t1), trainLabels); err != nil {
			return trainContext(cfg.Classifier, errRepeat, errFold, t1, err)
		}

		flat := mat.Matrix(testFlat)
		nT2 := len(cfg.Time2)
		if e.diagonal {
			d, err := tensor.FlattenTimeBatch(testT, testIdx, []int{t1})
			if err != nil {
				return err
			}
			flat, nT2 = d, 1
		}

		cell, err := predictCell(clf, cfg.kind, flat, len(testIdx), nT2)
		if err != nil {
			return err
		}
		cells[i] = cell
		return nil
	})
}

// predictCell runs one batched prediction and reshapes the flat outputs
// back to [testSamples × nTimes].
func predictCell(clf model.Classifier, kind model.OutputKind, X mat.Matrix, samples, times int) (*mat.Dense, error) {
	switch kind {
	case model.OutputLabel:
		pred, err := clf.PredictLabels(X)
		if err != nil {
			return nil, err
		}
		return tensor.UnflattenLabels(pred, samples, times)
	case model.OutputDval:
		dvals, err := clf.DecisionValues(X)
		if err != nil {
			return nil, err
		}
		return tensor.UnflattenValues(dvals, samples, times)
	case model.OutputProb:
		prob, err := clf.Probabilities(X)
		if err != nil {
			return nil, err
		}
		// Binary only: keep the probability of the lower-numbered class.
		n, _ := prob.Dims()
		flat := make([]float64, n)
		for i := 0; i < n; i++ {
			flat[i] = prob.At(i, 0)
		}
		return tensor.UnflattenValues(flat, samples, times)
	}
	return nil, errors.NewConfigurationError("output", "unknown output kind", kind.String())
}

// trainContext attaches the loop position to a classifier fit failure.
func trainContext(classifier string, rr, ff, t1 int, err error) error {
	var trainErr *errors.TrainingError
	if errors.As(err, &trainErr) {
		return errors.NewTrainingError(classifier, rr, ff, t1, trainErr.Err)
	}
	return errors.NewTrainingError(classifier, rr, ff, t1, err)
}

// foldCount computes the fold-axis length before any allocation. With
// repeat-level undersampling the effective sample count shrinks, which
// matters for leave-one-out.
func (e *engine) foldCount(undersample bool) (int, error) {
	cfg := e.cfg
	switch cfg.CV.Kind {
	case crossval.KFold:
		return cfg.CV.K, nil
	case crossval.Holdout:
		return 1, nil
	case crossval.LeaveOut:
		n := len(e.labels)
		if undersample {
			n = balancedCount(cfg.Balance, e.labels)
		}
		return n, nil
	}
	return 0, errors.NewConfigurationError("cv", "unknown cross-validation kind", string(cfg.CV.Kind))
}

// balancedCount is the total sample count after undersampling.
func balancedCount(b preprocessing.Balance, labels []int) int {
	counts := map[int]int{}
	for _, l := range labels {
		counts[l]++
	}
	minCount := len(labels)
	for _, c := range counts {
		if c < minCount {
			minCount = c
		}
	}
	per := minCount
	if b.Policy == preprocessing.BalanceTarget {
		per = b.Target
	}
	return per * len(counts)
}

func gather(labels []int, idx []int) []int {
	out := make([]int, len(idx))
	for i, j := range idx {
		out[i] = labels[j]
	}
	return out
}
