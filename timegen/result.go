package timegen

import (
	"gonum.org/v1/gonum/mat"

	"github.com/Charestlab/MVPA-Light/core/model"
	"github.com/Charestlab/MVPA-Light/crossval"
	"github.com/Charestlab/MVPA-Light/metrics"
	"github.com/Charestlab/MVPA-Light/pkg/errors"
)

// Result is the outcome of a time-generalization run.
//
// Perf is the [|time1| × |time2|] performance matrix, averaged over
// repeats and folds; PerfStd holds the matching sample standard
// deviations. Both are nil when the run was configured with
// metrics.MetricNone, in which case Raw carries the unaggregated
// classifier outputs instead.
type Result struct {
	Mode       EvaluationMode
	Metric     metrics.Metric
	Classifier string
	CV         crossval.Spec

	Perf    *mat.Dense
	PerfStd *mat.Dense

	// Raw holds the per-(repeat, fold, training time point) classifier
	// outputs. Always populated so that Recompute can re-score the run
	// under a different metric without re-training.
	Raw *RawOutput

	NSamples int
	NClasses int
	NTime1   int
	NTime2   int
}

func assemble(cfg *resolved, raw *RawOutput, nSamples int) (*Result, error) {
	res := &Result{
		Mode:       cfg.mode,
		Metric:     cfg.Metric,
		Classifier: cfg.Classifier,
		CV:         cfg.CV,
		Raw:        raw,
		NSamples:   nSamples,
		NClasses:   cfg.nClasses,
		NTime1:     raw.NTime1,
		NTime2:     raw.NTime2,
	}
	if cfg.Metric == metrics.MetricNone {
		return res, nil
	}
	perf, std, err := metrics.Aggregate(cfg.Metric, raw.Kind, raw.Cells, raw.TestLabels, raw.NTime1, raw.NTime2)
	if err != nil {
		return nil, err
	}
	res.Perf, res.PerfStd = perf, std
	return res, nil
}

// Recompute re-scores the stored raw outputs under a different metric
// and returns the new performance matrices. The metric must be
// computable from the output kind the run was configured with; e.g. a
// run that produced predicted labels cannot be re-scored as auc.
// The receiver is not modified.
func (r *Result) Recompute(metric metrics.Metric) (perf, std *mat.Dense, err error) {
	if r.Raw == nil {
		return nil, nil, errors.Wrap(errors.ErrEmptyData, "timegen.Recompute")
	}
	if metric == metrics.MetricNone {
		return nil, nil, errors.NewConfigurationError("metric", "nothing to recompute for metric none", nil)
	}
	return metrics.Aggregate(metric, r.Raw.Kind, r.Raw.Cells, r.Raw.TestLabels, r.Raw.NTime1, r.Raw.NTime2)
}

// OutputKind reports what the raw cell values are: predicted labels,
// decision values or class probabilities.
func (r *Result) OutputKind() model.OutputKind { return r.Raw.Kind }
