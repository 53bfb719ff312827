// Package metrics computes classification performance and reduces raw
// classifier outputs over cross-validation repeats and folds.
package metrics

import (
	"sort"

	"github.com/Charestlab/MVPA-Light/core/model"
	"github.com/Charestlab/MVPA-Light/pkg/errors"
)

// Metric names a performance measure.
type Metric string

const (
	// MetricAccuracy is the fraction of correctly predicted labels.
	MetricAccuracy Metric = "accuracy"
	// MetricAUC is the area under the ROC curve, computed from decision
	// values.
	MetricAUC Metric = "auc"
	// MetricNone requests the raw classifier outputs instead of a
	// reduced performance value.
	MetricNone Metric = "none"
)

// Validate checks that the metric can be computed from the requested
// classifier output kind.
func Validate(metric Metric, kind model.OutputKind) error {
	switch metric {
	case MetricNone:
		return nil
	case MetricAccuracy:
		if kind != model.OutputLabel {
			return errors.NewConfigurationError("metric", "accuracy requires label outputs", kind.String())
		}
		return nil
	case MetricAUC:
		if kind != model.OutputDval {
			return errors.NewConfigurationError("metric", "auc requires decision-value outputs", kind.String())
		}
		return nil
	default:
		return errors.NewConfigurationError("metric", "unknown metric", string(metric))
	}
}

// DefaultOutputKind returns the classifier output kind a metric is
// computed from.
func DefaultOutputKind(metric Metric) model.OutputKind {
	if metric == MetricAUC {
		return model.OutputDval
	}
	return model.OutputLabel
}

// Accuracy returns the fraction of predictions matching the true labels.
func Accuracy(pred, truth []int) (float64, error) {
	if len(pred) == 0 {
		return 0, errors.Wrap(errors.ErrEmptyData, "metrics.Accuracy")
	}
	if len(pred) != len(truth) {
		return 0, errors.NewDimensionError("metrics.Accuracy", len(truth), len(pred), 0)
	}
	correct := 0
	for i := range pred {
		if pred[i] == truth[i] {
			correct++
		}
	}
	return float64(correct) / float64(len(pred)), nil
}

// AUC computes the area under the ROC curve from signed decision values,
// where positive values vote for the lower-numbered class. Ties count
// half. If only one class is present the AUC is undefined and 0.5 is
// returned.
func AUC(dvals []float64, truth []int) (float64, error) {
	if len(dvals) == 0 {
		return 0, errors.Wrap(errors.ErrEmptyData, "metrics.AUC")
	}
	if len(dvals) != len(truth) {
		return 0, errors.NewDimensionError("metrics.AUC", len(truth), len(dvals), 0)
	}

	classes := map[int]bool{}
	for _, l := range truth {
		classes[l] = true
	}
	if len(classes) != 2 {
		if len(classes) == 1 {
			return 0.5, nil
		}
		return 0, errors.NewConfigurationError("metric", "auc requires binary labels", len(classes))
	}
	labels := make([]int, 0, 2)
	for l := range classes {
		labels = append(labels, l)
	}
	sort.Ints(labels)
	positive := labels[0] // dval > 0 votes for the lower-numbered class

	// Mann-Whitney U over (positive, negative) pairs.
	var pairs, wins float64
	for i := range dvals {
		if truth[i] != positive {
			continue
		}
		for j := range dvals {
			if truth[j] == positive {
				continue
			}
			pairs++
			switch {
			case dvals[i] > dvals[j]:
				wins++
			case dvals[i] == dvals[j]:
				wins += 0.5
			}
		}
	}
	return wins / pairs, nil
}

// ConfusionMatrix returns counts[trueClass][predictedClass] over the
// given class list (ascending label order).
func ConfusionMatrix(pred, truth []int, classes []int) ([][]int, error) {
	if len(pred) != len(truth) {
		return nil, errors.NewDimensionError("metrics.ConfusionMatrix", len(truth), len(pred), 0)
	}
	idx := make(map[int]int, len(classes))
	for i, c := range classes {
		idx[c] = i
	}
	out := make([][]int, len(classes))
	for i := range out {
		out[i] = make([]int, len(classes))
	}
	for i := range pred {
		ti, ok1 := idx[truth[i]]
		pi, ok2 := idx[pred[i]]
		if !ok1 || !ok2 {
			return nil, errors.NewConfigurationError("metric", "label outside the class list", pred[i])
		}
		out[ti][pi]++
	}
	return out, nil
}
