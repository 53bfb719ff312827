package timegen

import (
	"gonum.org/v1/gonum/mat"

	"github.com/Charestlab/MVPA-Light/core/model"
)

// RawOutput holds the classifier outputs of a whole run before metric
// aggregation. Its shape is fixed by the evaluation mode and allocated
// once before the main loop; cells are filled exactly once and never
// resized.
//
// In CrossValidated mode, Cells[r][f][i] is the [foldTestSize × |time2|]
// output matrix for repeat r, fold f and the i-th training time point,
// and TestLabels[r][f] are the fold's true labels, aligned with the
// cell's rows. The shape intentionally differs in the other modes: a
// single (repeat, fold) pair covering every test sample, with TestLabels
// holding the plain label vector of the test dataset.
//
// Cell values are predicted labels, decision values or class-one
// probabilities depending on Kind.
type RawOutput struct {
	Mode EvaluationMode
	Kind model.OutputKind

	// NTime1 and NTime2 are the lengths of the training and testing
	// time index sets.
	NTime1, NTime2 int

	Cells      [][][]*mat.Dense
	TestLabels [][][]int
}

// newRawOutput allocates the container for the given shape. Inner cell
// matrices are filled later, one per (repeat, fold, training time point).
func newRawOutput(mode EvaluationMode, kind model.OutputKind, repeats, folds, nTime1, nTime2 int) *RawOutput {
	raw := &RawOutput{
		Mode:       mode,
		Kind:       kind,
		NTime1:     nTime1,
		NTime2:     nTime2,
		Cells:      make([][][]*mat.Dense, repeats),
		TestLabels: make([][][]int, repeats),
	}
	for r := range raw.Cells {
		raw.Cells[r] = make([][]*mat.Dense, folds)
		raw.TestLabels[r] = make([][]int, folds)
		for f := range raw.Cells[r] {
			raw.Cells[r][f] = make([]*mat.Dense, nTime1)
		}
	}
	return raw
}

// Repeats returns the repeat-axis length.
func (r *RawOutput) Repeats() int { return len(r.Cells) }

// Folds returns the fold-axis length.
func (r *RawOutput) Folds() int {
	if len(r.Cells) == 0 {
		return 0
	}
	return len(r.Cells[0])
}
