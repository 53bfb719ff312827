package preprocessing

import (
	"math/rand/v2"
	"sort"

	"github.com/Charestlab/MVPA-Light/pkg/errors"
	"github.com/Charestlab/MVPA-Light/tensor"
)

// BalancePolicy selects how class counts are equalized.
type BalancePolicy string

const (
	// BalanceNone leaves class counts untouched.
	BalanceNone BalancePolicy = "none"
	// BalanceOversample draws extra samples of the minority classes
	// until all classes match the majority count.
	BalanceOversample BalancePolicy = "oversample"
	// BalanceUndersample discards samples of the majority classes until
	// all classes match the minority count.
	BalanceUndersample BalancePolicy = "undersample"
	// BalanceTarget resamples every class to an explicit count; see
	// Balance.Target.
	BalanceTarget BalancePolicy = "target"
)

// Balance describes a resampling request.
type Balance struct {
	Policy BalancePolicy
	// Target is the per-class sample count for BalanceTarget. A target
	// lying strictly between the smallest and largest class counts would
	// require over- and undersampling at once and is rejected.
	Target int
	// Replace selects sampling with replacement for oversampling.
	// Without replacement, whole copies of a class are duplicated first
	// and only the remainder is drawn randomly.
	Replace bool
}

// IsUndersample reports whether the request shrinks classes: plain
// undersampling, or a target at or below the smallest class count.
func (b Balance) IsUndersample(labels []int) bool {
	switch b.Policy {
	case BalanceUndersample:
		return true
	case BalanceTarget:
		minCount, _ := classCountRange(labels)
		return b.Target <= minCount
	}
	return false
}

// Validate checks the request against the label distribution. Must be
// called before any fold generation so an impossible target fails fast.
func (b Balance) Validate(labels []int) error {
	switch b.Policy {
	case BalanceNone, BalanceOversample, BalanceUndersample:
		return nil
	case BalanceTarget:
		if b.Target <= 0 {
			return errors.NewConfigurationError("balance.target", "target count must be positive", b.Target)
		}
		minCount, maxCount := classCountRange(labels)
		if b.Target > minCount && b.Target < maxCount {
			return errors.NewConfigurationError("balance.target",
				"target count lies strictly between class counts; concurrent over- and undersampling is unsupported", b.Target)
		}
		return nil
	default:
		return errors.NewConfigurationError("balance", "unknown balancing policy", string(b.Policy))
	}
}

// Rebalance returns a resampled copy of X and labels with equal class
// counts. The input is never modified. Sample order is deterministic
// given rng: classes ascending, selected rows in draw order.
func Rebalance(b Balance, X *tensor.Tensor, labels []int, rng *rand.Rand) (*tensor.Tensor, []int, error) {
	samples, _, _ := X.Dims()
	if samples != len(labels) {
		return nil, nil, errors.NewDataShapeError("preprocessing.Rebalance", "label count", samples, len(labels))
	}
	if b.Policy == BalanceNone {
		return X, labels, nil
	}
	if err := b.Validate(labels); err != nil {
		return nil, nil, err
	}

	byClass := map[int][]int{}
	for i, l := range labels {
		byClass[l] = append(byClass[l], i)
	}
	classes := make([]int, 0, len(byClass))
	for c := range byClass {
		classes = append(classes, c)
	}
	sort.Ints(classes)

	minCount, maxCount := classCountRange(labels)
	target := 0
	switch b.Policy {
	case BalanceOversample:
		target = maxCount
	case BalanceUndersample:
		target = minCount
	case BalanceTarget:
		target = b.Target
	}

	var rows []int
	for _, c := range classes {
		idx := byClass[c]
		switch {
		case len(idx) == target:
			rows = append(rows, idx...)
		case len(idx) > target:
			rows = append(rows, drawWithoutReplacement(idx, target, rng)...)
		default:
			rows = append(rows, idx...)
			need := target - len(idx)
			if b.Replace {
				for i := 0; i < need; i++ {
					rows = append(rows, idx[rng.IntN(len(idx))])
				}
			} else {
				// Duplicate the whole class as often as it fits, then
				// draw the remainder without replacement.
				for ; need >= len(idx); need -= len(idx) {
					rows = append(rows, idx...)
				}
				if need > 0 {
					rows = append(rows, drawWithoutReplacement(idx, need, rng)...)
				}
			}
		}
	}

	outLabels := make([]int, len(rows))
	for i, r := range rows {
		outLabels[i] = labels[r]
	}
	return X.GatherRows(rows), outLabels, nil
}

func drawWithoutReplacement(idx []int, n int, rng *rand.Rand) []int {
	perm := rng.Perm(len(idx))
	out := make([]int, n)
	for i := 0; i < n; i++ {
		out[i] = idx[perm[i]]
	}
	return out
}

func classCountRange(labels []int) (minCount, maxCount int) {
	counts := map[int]int{}
	for _, l := range labels {
		counts[l]++
	}
	first := true
	for _, c := range counts {
		if first {
			minCount, maxCount = c, c
			first = false
			continue
		}
		if c < minCount {
			minCount = c
		}
		if c > maxCount {
			maxCount = c
		}
	}
	return minCount, maxCount
}
